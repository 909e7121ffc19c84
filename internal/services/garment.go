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

// Garment validation errors surfaced verbatim to the user.
var (
	ErrGarmentNameRequired = errors.New("name required")
	ErrCategoryRequired    = errors.New("category required")
	ErrImageRequired       = errors.New("image required")
)

// GarmentInput carries the user-editable garment fields.
type GarmentInput struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Subcategory *string `json:"subcategory,omitempty"`
	Color       *string `json:"color,omitempty"`
	Brand       *string `json:"brand,omitempty"`
	Season      *string `json:"season,omitempty"`
	ImageURL    string  `json:"image_url"`
}

func (in *GarmentInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrGarmentNameRequired
	}
	if strings.TrimSpace(in.Category) == "" {
		return ErrCategoryRequired
	}
	if strings.TrimSpace(in.ImageURL) == "" {
		return ErrImageRequired
	}
	return nil
}

// GarmentService handles garment-related business logic
type GarmentService struct {
	garmentRepo repository.GarmentStore
}

// NewGarmentService creates a new garment service
func NewGarmentService(garmentRepo repository.GarmentStore) *GarmentService {
	return &GarmentService{garmentRepo: garmentRepo}
}

// CreateGarment creates a garment record after its image has been uploaded.
// New garments start unrated and unfavorited.
func (s *GarmentService) CreateGarment(ctx context.Context, userID string, in GarmentInput) (*models.Garment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	garment := &models.Garment{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        strings.TrimSpace(in.Name),
		Category:    strings.TrimSpace(in.Category),
		Subcategory: in.Subcategory,
		Color:       in.Color,
		Brand:       in.Brand,
		Season:      in.Season,
		ImageURL:    in.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.garmentRepo.Upsert(ctx, garment); err != nil {
		return nil, fmt.Errorf("failed to create garment: %w", err)
	}

	return garment, nil
}

// UpdateGarment rewrites the user-editable fields of a garment.
func (s *GarmentService) UpdateGarment(ctx context.Context, userID, id string, in GarmentInput) (*models.Garment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	garment, err := s.garmentRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	garment.Name = strings.TrimSpace(in.Name)
	garment.Category = strings.TrimSpace(in.Category)
	garment.Subcategory = in.Subcategory
	garment.Color = in.Color
	garment.Brand = in.Brand
	garment.Season = in.Season
	garment.ImageURL = in.ImageURL
	garment.UpdatedAt = time.Now()

	if err := s.garmentRepo.Update(ctx, garment); err != nil {
		return nil, err
	}

	return garment, nil
}

// DeleteGarment removes a garment. Outfits referencing it are left alone.
func (s *GarmentService) DeleteGarment(ctx context.Context, userID, id string) error {
	return s.garmentRepo.Delete(ctx, userID, id)
}

// SetFavorite flips the favorite flag.
func (s *GarmentService) SetFavorite(ctx context.Context, userID, id string, favorite bool) error {
	return s.garmentRepo.SetFavorite(ctx, userID, id, favorite)
}

// RateGarment stores a user's rating for a garment, clamped to the valid
// range. Outfits containing the garment pick the change up through their
// live subscription, not through this call.
func (s *GarmentService) RateGarment(ctx context.Context, userID, id string, rating int) error {
	return s.garmentRepo.SetRating(ctx, userID, id, models.ClampRating(rating))
}

// GetGarment retrieves a single garment.
func (s *GarmentService) GetGarment(ctx context.Context, userID, id string) (*models.Garment, error) {
	return s.garmentRepo.GetByID(ctx, userID, id)
}

// ListGarments retrieves a user's garments, optionally filtered by category
// or narrowed to favorites.
func (s *GarmentService) ListGarments(ctx context.Context, userID, category string, favoritesOnly bool) ([]*models.Garment, error) {
	switch {
	case favoritesOnly:
		return s.garmentRepo.ListFavorites(ctx, userID)
	case category != "":
		return s.garmentRepo.ListByCategory(ctx, userID, category)
	default:
		return s.garmentRepo.ListByUser(ctx, userID)
	}
}

// CountGarments returns the number of garments a user owns.
func (s *GarmentService) CountGarments(ctx context.Context, userID string) (int, error) {
	return s.garmentRepo.Count(ctx, userID)
}
