package repository

import (
	"context"
	"fmt"

	"wardrobe-backend/internal/live"
	"wardrobe-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const outfitColumns = `id, user_id, name, description, garment_ids, occasion, season,
		rating, favorite, created_at, updated_at`

// OutfitRepository handles database operations for outfits
type OutfitRepository struct {
	db  *pgxpool.Pool
	bus *live.Bus
}

var _ OutfitStore = (*OutfitRepository)(nil)

// NewOutfitRepository creates a new outfit repository
func NewOutfitRepository(db *pgxpool.Pool, bus *live.Bus) *OutfitRepository {
	return &OutfitRepository{db: db, bus: bus}
}

func (r *OutfitRepository) publish(userID, id string) {
	r.bus.Publish(live.Event{Entity: live.EntityOutfit, UserID: userID, ID: id})
}

func scanOutfit(row pgx.Row) (*models.Outfit, error) {
	var o models.Outfit
	err := row.Scan(
		&o.ID, &o.UserID, &o.Name, &o.Description, &o.GarmentIDs, &o.Occasion,
		&o.Season, &o.Rating, &o.Favorite, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OutfitRepository) queryOutfits(ctx context.Context, query string, args ...any) ([]*models.Outfit, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outfits: %w", err)
	}
	defer rows.Close()

	var outfits []*models.Outfit
	for rows.Next() {
		o, err := scanOutfit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outfit: %w", err)
		}
		outfits = append(outfits, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outfits: %w", err)
	}

	return outfits, nil
}

// Upsert inserts an outfit, replacing an existing row with the same id.
func (r *OutfitRepository) Upsert(ctx context.Context, outfit *models.Outfit) error {
	query := `
		INSERT INTO outfits (` + outfitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			garment_ids = EXCLUDED.garment_ids,
			occasion = EXCLUDED.occasion,
			season = EXCLUDED.season,
			rating = EXCLUDED.rating,
			favorite = EXCLUDED.favorite,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.Exec(ctx, query,
		outfit.ID, outfit.UserID, outfit.Name, outfit.Description, outfit.GarmentIDs,
		outfit.Occasion, outfit.Season, outfit.Rating, outfit.Favorite,
		outfit.CreatedAt, outfit.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert outfit: %w", err)
	}
	r.publish(outfit.UserID, outfit.ID)
	return nil
}

// Update rewrites the mutable fields of an existing outfit.
func (r *OutfitRepository) Update(ctx context.Context, outfit *models.Outfit) error {
	query := `
		UPDATE outfits
		SET name = $1, description = $2, garment_ids = $3, occasion = $4,
			season = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8
	`
	result, err := r.db.Exec(ctx, query,
		outfit.Name, outfit.Description, outfit.GarmentIDs, outfit.Occasion,
		outfit.Season, outfit.UpdatedAt, outfit.ID, outfit.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update outfit: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("outfit %w", ErrNotFound)
	}
	r.publish(outfit.UserID, outfit.ID)
	return nil
}

// Delete removes an outfit.
func (r *OutfitRepository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM outfits WHERE id = $1 AND user_id = $2`
	result, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete outfit: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("outfit %w", ErrNotFound)
	}
	r.publish(userID, id)
	return nil
}

// SetFavorite flips the favorite flag on an outfit.
func (r *OutfitRepository) SetFavorite(ctx context.Context, userID, id string, favorite bool) error {
	query := `UPDATE outfits SET favorite = $1, updated_at = now() WHERE id = $2 AND user_id = $3`
	result, err := r.db.Exec(ctx, query, favorite, id, userID)
	if err != nil {
		return fmt.Errorf("failed to set outfit favorite: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("outfit %w", ErrNotFound)
	}
	r.publish(userID, id)
	return nil
}

// UpdateRating stores a recomputed derived rating. Only the rating
// synchronizer calls this.
func (r *OutfitRepository) UpdateRating(ctx context.Context, userID, id string, rating int) error {
	query := `UPDATE outfits SET rating = $1, updated_at = now() WHERE id = $2 AND user_id = $3`
	result, err := r.db.Exec(ctx, query, rating, id, userID)
	if err != nil {
		return fmt.Errorf("failed to update outfit rating: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("outfit %w", ErrNotFound)
	}
	r.publish(userID, id)
	return nil
}

// GetByID retrieves an outfit by ID. Returns (nil, nil) when no such outfit
// exists so callers can distinguish absence from storage failure.
func (r *OutfitRepository) GetByID(ctx context.Context, userID, id string) (*models.Outfit, error) {
	query := `SELECT ` + outfitColumns + ` FROM outfits WHERE id = $1 AND user_id = $2`
	o, err := scanOutfit(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get outfit: %w", err)
	}
	return o, nil
}

// ListByUser retrieves all outfits for a user, newest first.
func (r *OutfitRepository) ListByUser(ctx context.Context, userID string) ([]*models.Outfit, error) {
	query := `SELECT ` + outfitColumns + ` FROM outfits WHERE user_id = $1 ORDER BY created_at DESC`
	return r.queryOutfits(ctx, query, userID)
}

// ListByOccasion retrieves a user's outfits tagged with an occasion, newest first.
func (r *OutfitRepository) ListByOccasion(ctx context.Context, userID, occasion string) ([]*models.Outfit, error) {
	query := `SELECT ` + outfitColumns + ` FROM outfits
		WHERE user_id = $1 AND occasion = $2 ORDER BY created_at DESC`
	return r.queryOutfits(ctx, query, userID, occasion)
}

// ListFavorites retrieves a user's favorite outfits, newest first.
func (r *OutfitRepository) ListFavorites(ctx context.Context, userID string) ([]*models.Outfit, error) {
	query := `SELECT ` + outfitColumns + ` FROM outfits
		WHERE user_id = $1 AND favorite ORDER BY created_at DESC`
	return r.queryOutfits(ctx, query, userID)
}

// Count returns the number of outfits a user owns.
func (r *OutfitRepository) Count(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM outfits WHERE user_id = $1`
	var count int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count outfits: %w", err)
	}
	return count, nil
}
