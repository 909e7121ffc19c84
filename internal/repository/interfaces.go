// Package repository handles database persistence for wardrobe records.
package repository

import (
	"context"
	"errors"

	"wardrobe-backend/internal/models"
)

// ErrNotFound is returned by point lookups when no row matches.
var ErrNotFound = errors.New("not found")

// UserStore persists locally cached user profiles.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, userID, displayName string, photoURL *string) error
}

// GarmentStore persists garment records. Mutations publish a change event
// so live subscriptions re-emit.
type GarmentStore interface {
	Upsert(ctx context.Context, garment *models.Garment) error
	Update(ctx context.Context, garment *models.Garment) error
	Delete(ctx context.Context, userID, id string) error
	SetFavorite(ctx context.Context, userID, id string, favorite bool) error
	SetRating(ctx context.Context, userID, id string, rating int) error
	GetByID(ctx context.Context, userID, id string) (*models.Garment, error)
	GetByIDs(ctx context.Context, userID string, ids []string) ([]*models.Garment, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Garment, error)
	ListByCategory(ctx context.Context, userID, category string) ([]*models.Garment, error)
	ListFavorites(ctx context.Context, userID string) ([]*models.Garment, error)
	Count(ctx context.Context, userID string) (int, error)
}

// OutfitStore persists outfit records. GetByID returns (nil, nil) when the
// outfit was deleted or never existed.
type OutfitStore interface {
	Upsert(ctx context.Context, outfit *models.Outfit) error
	Update(ctx context.Context, outfit *models.Outfit) error
	Delete(ctx context.Context, userID, id string) error
	SetFavorite(ctx context.Context, userID, id string, favorite bool) error
	UpdateRating(ctx context.Context, userID, id string, rating int) error
	GetByID(ctx context.Context, userID, id string) (*models.Outfit, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Outfit, error)
	ListByOccasion(ctx context.Context, userID, occasion string) ([]*models.Outfit, error)
	ListFavorites(ctx context.Context, userID string) ([]*models.Outfit, error)
	Count(ctx context.Context, userID string) (int, error)
}
