package repository

import (
	"context"
	"fmt"

	"wardrobe-backend/internal/live"
	"wardrobe-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const garmentColumns = `id, user_id, name, category, subcategory, color, brand, season,
		image_url, favorite, rating, created_at, updated_at`

// GarmentRepository handles database operations for garments
type GarmentRepository struct {
	db  *pgxpool.Pool
	bus *live.Bus
}

var _ GarmentStore = (*GarmentRepository)(nil)

// NewGarmentRepository creates a new garment repository
func NewGarmentRepository(db *pgxpool.Pool, bus *live.Bus) *GarmentRepository {
	return &GarmentRepository{db: db, bus: bus}
}

func (r *GarmentRepository) publish(userID, id string) {
	r.bus.Publish(live.Event{Entity: live.EntityGarment, UserID: userID, ID: id})
}

func scanGarment(row pgx.Row) (*models.Garment, error) {
	var g models.Garment
	err := row.Scan(
		&g.ID, &g.UserID, &g.Name, &g.Category, &g.Subcategory, &g.Color, &g.Brand,
		&g.Season, &g.ImageURL, &g.Favorite, &g.Rating, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GarmentRepository) queryGarments(ctx context.Context, query string, args ...any) ([]*models.Garment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query garments: %w", err)
	}
	defer rows.Close()

	var garments []*models.Garment
	for rows.Next() {
		g, err := scanGarment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan garment: %w", err)
		}
		garments = append(garments, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating garments: %w", err)
	}

	return garments, nil
}

// Upsert inserts a garment, replacing an existing row with the same id.
func (r *GarmentRepository) Upsert(ctx context.Context, garment *models.Garment) error {
	query := `
		INSERT INTO garments (` + garmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			subcategory = EXCLUDED.subcategory,
			color = EXCLUDED.color,
			brand = EXCLUDED.brand,
			season = EXCLUDED.season,
			image_url = EXCLUDED.image_url,
			favorite = EXCLUDED.favorite,
			rating = EXCLUDED.rating,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.Exec(ctx, query,
		garment.ID, garment.UserID, garment.Name, garment.Category, garment.Subcategory,
		garment.Color, garment.Brand, garment.Season, garment.ImageURL,
		garment.Favorite, garment.Rating, garment.CreatedAt, garment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert garment: %w", err)
	}
	r.publish(garment.UserID, garment.ID)
	return nil
}

// Update rewrites the mutable fields of an existing garment.
func (r *GarmentRepository) Update(ctx context.Context, garment *models.Garment) error {
	query := `
		UPDATE garments
		SET name = $1, category = $2, subcategory = $3, color = $4, brand = $5,
			season = $6, image_url = $7, updated_at = $8
		WHERE id = $9 AND user_id = $10
	`
	result, err := r.db.Exec(ctx, query,
		garment.Name, garment.Category, garment.Subcategory, garment.Color, garment.Brand,
		garment.Season, garment.ImageURL, garment.UpdatedAt, garment.ID, garment.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update garment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("garment %w", ErrNotFound)
	}
	r.publish(garment.UserID, garment.ID)
	return nil
}

// Delete removes a garment. Outfits referencing it keep their dangling id;
// the next rating recomputation simply omits it.
func (r *GarmentRepository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM garments WHERE id = $1 AND user_id = $2`
	result, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete garment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("garment %w", ErrNotFound)
	}
	r.publish(userID, id)
	return nil
}

// SetFavorite flips the favorite flag on a garment.
func (r *GarmentRepository) SetFavorite(ctx context.Context, userID, id string, favorite bool) error {
	query := `UPDATE garments SET favorite = $1, updated_at = now() WHERE id = $2 AND user_id = $3`
	result, err := r.db.Exec(ctx, query, favorite, id, userID)
	if err != nil {
		return fmt.Errorf("failed to set garment favorite: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("garment %w", ErrNotFound)
	}
	r.publish(userID, id)
	return nil
}

// SetRating stores a garment rating. Callers clamp to the valid range.
func (r *GarmentRepository) SetRating(ctx context.Context, userID, id string, rating int) error {
	query := `UPDATE garments SET rating = $1, updated_at = now() WHERE id = $2 AND user_id = $3`
	result, err := r.db.Exec(ctx, query, rating, id, userID)
	if err != nil {
		return fmt.Errorf("failed to set garment rating: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("garment %w", ErrNotFound)
	}
	r.publish(userID, id)
	return nil
}

// GetByID retrieves a garment by ID
func (r *GarmentRepository) GetByID(ctx context.Context, userID, id string) (*models.Garment, error) {
	query := `SELECT ` + garmentColumns + ` FROM garments WHERE id = $1 AND user_id = $2`
	g, err := scanGarment(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("garment %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get garment: %w", err)
	}
	return g, nil
}

// GetByIDs retrieves the garments matching a set of ids. Ids with no
// matching row are silently absent from the result.
func (r *GarmentRepository) GetByIDs(ctx context.Context, userID string, ids []string) ([]*models.Garment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + garmentColumns + ` FROM garments WHERE user_id = $1 AND id = ANY($2)`
	return r.queryGarments(ctx, query, userID, ids)
}

// ListByUser retrieves all garments for a user, newest first.
func (r *GarmentRepository) ListByUser(ctx context.Context, userID string) ([]*models.Garment, error) {
	query := `SELECT ` + garmentColumns + ` FROM garments WHERE user_id = $1 ORDER BY created_at DESC`
	return r.queryGarments(ctx, query, userID)
}

// ListByCategory retrieves a user's garments in a category, newest first.
func (r *GarmentRepository) ListByCategory(ctx context.Context, userID, category string) ([]*models.Garment, error) {
	query := `SELECT ` + garmentColumns + ` FROM garments
		WHERE user_id = $1 AND category = $2 ORDER BY created_at DESC`
	return r.queryGarments(ctx, query, userID, category)
}

// ListFavorites retrieves a user's favorite garments, newest first.
func (r *GarmentRepository) ListFavorites(ctx context.Context, userID string) ([]*models.Garment, error) {
	query := `SELECT ` + garmentColumns + ` FROM garments
		WHERE user_id = $1 AND favorite ORDER BY created_at DESC`
	return r.queryGarments(ctx, query, userID)
}

// Count returns the number of garments a user owns.
func (r *GarmentRepository) Count(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM garments WHERE user_id = $1`
	var count int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count garments: %w", err)
	}
	return count, nil
}
