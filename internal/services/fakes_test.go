package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"wardrobe-backend/internal/live"
	"wardrobe-backend/internal/models"
	"wardrobe-backend/internal/repository"
)

// In-memory stores backing the service tests. When a bus is set they publish
// change events the same way the real repositories do.

type fakeGarmentStore struct {
	mu       sync.Mutex
	garments map[string]*models.Garment
	bus      *live.Bus
}

func newFakeGarmentStore(bus *live.Bus) *fakeGarmentStore {
	return &fakeGarmentStore{garments: make(map[string]*models.Garment), bus: bus}
}

func (f *fakeGarmentStore) publish(userID, id string) {
	if f.bus != nil {
		f.bus.Publish(live.Event{Entity: live.EntityGarment, UserID: userID, ID: id})
	}
}

func (f *fakeGarmentStore) Upsert(ctx context.Context, g *models.Garment) error {
	f.mu.Lock()
	copied := *g
	f.garments[g.ID] = &copied
	f.mu.Unlock()
	f.publish(g.UserID, g.ID)
	return nil
}

func (f *fakeGarmentStore) Update(ctx context.Context, g *models.Garment) error {
	return f.Upsert(ctx, g)
}

func (f *fakeGarmentStore) Delete(ctx context.Context, userID, id string) error {
	f.mu.Lock()
	delete(f.garments, id)
	f.mu.Unlock()
	f.publish(userID, id)
	return nil
}

func (f *fakeGarmentStore) SetFavorite(ctx context.Context, userID, id string, favorite bool) error {
	f.mu.Lock()
	if g, ok := f.garments[id]; ok {
		g.Favorite = favorite
	}
	f.mu.Unlock()
	f.publish(userID, id)
	return nil
}

func (f *fakeGarmentStore) SetRating(ctx context.Context, userID, id string, rating int) error {
	f.mu.Lock()
	g, ok := f.garments[id]
	if !ok {
		f.mu.Unlock()
		return fmt.Errorf("garment %w", repository.ErrNotFound)
	}
	g.Rating = rating
	f.mu.Unlock()
	f.publish(userID, id)
	return nil
}

func (f *fakeGarmentStore) GetByID(ctx context.Context, userID, id string) (*models.Garment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.garments[id]
	if !ok || g.UserID != userID {
		return nil, fmt.Errorf("garment %w", repository.ErrNotFound)
	}
	copied := *g
	return &copied, nil
}

func (f *fakeGarmentStore) GetByIDs(ctx context.Context, userID string, ids []string) ([]*models.Garment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Garment
	for _, id := range ids {
		if g, ok := f.garments[id]; ok && g.UserID == userID {
			copied := *g
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeGarmentStore) ListByUser(ctx context.Context, userID string) ([]*models.Garment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Garment
	for _, g := range f.garments {
		if g.UserID == userID {
			copied := *g
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeGarmentStore) ListByCategory(ctx context.Context, userID, category string) ([]*models.Garment, error) {
	all, _ := f.ListByUser(ctx, userID)
	var out []*models.Garment
	for _, g := range all {
		if g.Category == category {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGarmentStore) ListFavorites(ctx context.Context, userID string) ([]*models.Garment, error) {
	all, _ := f.ListByUser(ctx, userID)
	var out []*models.Garment
	for _, g := range all {
		if g.Favorite {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGarmentStore) Count(ctx context.Context, userID string) (int, error) {
	all, _ := f.ListByUser(ctx, userID)
	return len(all), nil
}

type fakeOutfitStore struct {
	mu           sync.Mutex
	outfits      map[string]*models.Outfit
	ratingWrites []int
	bus          *live.Bus
}

func newFakeOutfitStore(bus *live.Bus) *fakeOutfitStore {
	return &fakeOutfitStore{outfits: make(map[string]*models.Outfit), bus: bus}
}

func (f *fakeOutfitStore) publish(userID, id string) {
	if f.bus != nil {
		f.bus.Publish(live.Event{Entity: live.EntityOutfit, UserID: userID, ID: id})
	}
}

func (f *fakeOutfitStore) Upsert(ctx context.Context, o *models.Outfit) error {
	f.mu.Lock()
	copied := *o
	f.outfits[o.ID] = &copied
	f.mu.Unlock()
	f.publish(o.UserID, o.ID)
	return nil
}

func (f *fakeOutfitStore) Update(ctx context.Context, o *models.Outfit) error {
	f.mu.Lock()
	stored, ok := f.outfits[o.ID]
	if !ok {
		f.mu.Unlock()
		return fmt.Errorf("outfit %w", repository.ErrNotFound)
	}
	copied := *o
	copied.Rating = stored.Rating
	f.outfits[o.ID] = &copied
	f.mu.Unlock()
	f.publish(o.UserID, o.ID)
	return nil
}

func (f *fakeOutfitStore) Delete(ctx context.Context, userID, id string) error {
	f.mu.Lock()
	delete(f.outfits, id)
	f.mu.Unlock()
	f.publish(userID, id)
	return nil
}

func (f *fakeOutfitStore) SetFavorite(ctx context.Context, userID, id string, favorite bool) error {
	f.mu.Lock()
	if o, ok := f.outfits[id]; ok {
		o.Favorite = favorite
	}
	f.mu.Unlock()
	f.publish(userID, id)
	return nil
}

func (f *fakeOutfitStore) UpdateRating(ctx context.Context, userID, id string, rating int) error {
	f.mu.Lock()
	o, ok := f.outfits[id]
	if !ok {
		f.mu.Unlock()
		return fmt.Errorf("outfit %w", repository.ErrNotFound)
	}
	o.Rating = rating
	f.ratingWrites = append(f.ratingWrites, rating)
	f.mu.Unlock()
	f.publish(userID, id)
	return nil
}

func (f *fakeOutfitStore) ratingWriteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ratingWrites)
}

func (f *fakeOutfitStore) GetByID(ctx context.Context, userID, id string) (*models.Outfit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.outfits[id]
	if !ok || o.UserID != userID {
		return nil, nil
	}
	copied := *o
	return &copied, nil
}

func (f *fakeOutfitStore) ListByUser(ctx context.Context, userID string) ([]*models.Outfit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Outfit
	for _, o := range f.outfits {
		if o.UserID == userID {
			copied := *o
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeOutfitStore) ListByOccasion(ctx context.Context, userID, occasion string) ([]*models.Outfit, error) {
	all, _ := f.ListByUser(ctx, userID)
	var out []*models.Outfit
	for _, o := range all {
		if o.Occasion != nil && *o.Occasion == occasion {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOutfitStore) ListFavorites(ctx context.Context, userID string) ([]*models.Outfit, error) {
	all, _ := f.ListByUser(ctx, userID)
	var out []*models.Outfit
	for _, o := range all {
		if o.Favorite {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOutfitStore) Count(ctx context.Context, userID string) (int, error) {
	all, _ := f.ListByUser(ctx, userID)
	return len(all), nil
}

var (
	_ repository.GarmentStore = (*fakeGarmentStore)(nil)
	_ repository.OutfitStore  = (*fakeOutfitStore)(nil)
)
