package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wardrobe-backend/internal/models"
	"wardrobe-backend/internal/repository"

	"github.com/google/uuid"
)

// Outfit composition errors, surfaced verbatim to the user. Validation
// short-circuits in this order: name, then any selection, then enough
// distinct garments.
var (
	ErrOutfitNameRequired = errors.New("name required")
	ErrNoGarmentsSelected = errors.New("select at least one garment")
	ErrNeedTwoGarments    = errors.New("need at least two garments")
)

// OutfitInput carries the user-editable outfit fields.
type OutfitInput struct {
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	Occasion    *string  `json:"occasion,omitempty"`
	Season      *string  `json:"season,omitempty"`
	GarmentIDs  []string `json:"garment_ids"`
}

// validate enforces the composition rules and returns the distinct garment
// ids in selection order.
func (in *OutfitInput) validate() ([]string, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrOutfitNameRequired
	}
	if len(in.GarmentIDs) == 0 {
		return nil, ErrNoGarmentsSelected
	}

	seen := make(map[string]struct{}, len(in.GarmentIDs))
	distinct := make([]string, 0, len(in.GarmentIDs))
	for _, id := range in.GarmentIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}

	if len(distinct) < 2 {
		return nil, ErrNeedTwoGarments
	}
	return distinct, nil
}

// OutfitService handles outfit composition and lifecycle.
type OutfitService struct {
	outfitRepo repository.OutfitStore
	sync       *RatingSynchronizer
}

// NewOutfitService creates a new outfit service
func NewOutfitService(outfitRepo repository.OutfitStore, sync *RatingSynchronizer) *OutfitService {
	return &OutfitService{outfitRepo: outfitRepo, sync: sync}
}

// CreateOutfit composes a new outfit from a garment selection. The two-
// garment minimum is enforced here only; garments deleted later leave
// dangling references, which is accepted. The rating starts at 0 and is
// derived on first load.
func (s *OutfitService) CreateOutfit(ctx context.Context, userID string, in OutfitInput) (*models.Outfit, error) {
	ids, err := in.validate()
	if err != nil {
		return nil, err
	}

	encoded, err := models.EncodeGarmentIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to encode garment ids: %w", err)
	}

	now := time.Now()
	outfit := &models.Outfit{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		GarmentIDs:  encoded,
		Occasion:    in.Occasion,
		Season:      in.Season,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.outfitRepo.Upsert(ctx, outfit); err != nil {
		return nil, fmt.Errorf("failed to create outfit: %w", err)
	}

	return outfit, nil
}

// UpdateOutfit rewrites the user-editable fields, re-validating the garment
// selection the same way creation does.
func (s *OutfitService) UpdateOutfit(ctx context.Context, userID, id string, in OutfitInput) (*models.Outfit, error) {
	ids, err := in.validate()
	if err != nil {
		return nil, err
	}

	outfit, err := s.outfitRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if outfit == nil {
		return nil, fmt.Errorf("outfit %w", repository.ErrNotFound)
	}

	encoded, err := models.EncodeGarmentIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to encode garment ids: %w", err)
	}

	outfit.Name = strings.TrimSpace(in.Name)
	outfit.Description = in.Description
	outfit.GarmentIDs = encoded
	outfit.Occasion = in.Occasion
	outfit.Season = in.Season
	outfit.UpdatedAt = time.Now()

	if err := s.outfitRepo.Update(ctx, outfit); err != nil {
		return nil, err
	}

	// The edited selection may carry a different derived rating.
	return s.sync.SyncOnce(ctx, userID, id)
}

// GetOutfit loads an outfit and opportunistically resyncs its derived
// rating. Returns (nil, nil) when the outfit does not exist.
func (s *OutfitService) GetOutfit(ctx context.Context, userID, id string) (*models.Outfit, error) {
	return s.sync.SyncOnce(ctx, userID, id)
}

// DeleteOutfit removes an outfit.
func (s *OutfitService) DeleteOutfit(ctx context.Context, userID, id string) error {
	return s.outfitRepo.Delete(ctx, userID, id)
}

// SetFavorite flips the favorite flag.
func (s *OutfitService) SetFavorite(ctx context.Context, userID, id string, favorite bool) error {
	return s.outfitRepo.SetFavorite(ctx, userID, id, favorite)
}

// ListOutfits retrieves a user's outfits, optionally filtered by occasion or
// narrowed to favorites. Listing does not resync ratings; a stale value is
// corrected when the outfit is next opened.
func (s *OutfitService) ListOutfits(ctx context.Context, userID, occasion string, favoritesOnly bool) ([]*models.Outfit, error) {
	switch {
	case favoritesOnly:
		return s.outfitRepo.ListFavorites(ctx, userID)
	case occasion != "":
		return s.outfitRepo.ListByOccasion(ctx, userID, occasion)
	default:
		return s.outfitRepo.ListByUser(ctx, userID)
	}
}

// CountOutfits returns the number of outfits a user owns.
func (s *OutfitService) CountOutfits(ctx context.Context, userID string) (int, error) {
	return s.outfitRepo.Count(ctx, userID)
}
