package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"wardrobe-backend/internal/live"
	"wardrobe-backend/internal/metrics"
	"wardrobe-backend/internal/models"
	"wardrobe-backend/internal/repository"
	"wardrobe-backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memOutfitStore is the minimal in-memory store the handler tests need.
type memOutfitStore struct {
	mu      sync.Mutex
	outfits map[string]*models.Outfit
}

func newMemOutfitStore() *memOutfitStore {
	return &memOutfitStore{outfits: make(map[string]*models.Outfit)}
}

func (m *memOutfitStore) Upsert(ctx context.Context, o *models.Outfit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *o
	m.outfits[o.ID] = &copied
	return nil
}

func (m *memOutfitStore) Update(ctx context.Context, o *models.Outfit) error {
	return m.Upsert(ctx, o)
}

func (m *memOutfitStore) Delete(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.outfits, id)
	return nil
}

func (m *memOutfitStore) SetFavorite(ctx context.Context, userID, id string, favorite bool) error {
	return nil
}

func (m *memOutfitStore) UpdateRating(ctx context.Context, userID, id string, rating int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.outfits[id]; ok {
		o.Rating = rating
	}
	return nil
}

func (m *memOutfitStore) GetByID(ctx context.Context, userID, id string) (*models.Outfit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.outfits[id]
	if !ok {
		return nil, nil
	}
	copied := *o
	return &copied, nil
}

func (m *memOutfitStore) ListByUser(ctx context.Context, userID string) ([]*models.Outfit, error) {
	return nil, nil
}

func (m *memOutfitStore) ListByOccasion(ctx context.Context, userID, occasion string) ([]*models.Outfit, error) {
	return nil, nil
}

func (m *memOutfitStore) ListFavorites(ctx context.Context, userID string) ([]*models.Outfit, error) {
	return nil, nil
}

func (m *memOutfitStore) Count(ctx context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.outfits), nil
}

// memGarmentStore only serves GetByIDs for the synchronizer.
type memGarmentStore struct {
	garments map[string]*models.Garment
}

func (m *memGarmentStore) Upsert(ctx context.Context, g *models.Garment) error  { return nil }
func (m *memGarmentStore) Update(ctx context.Context, g *models.Garment) error  { return nil }
func (m *memGarmentStore) Delete(ctx context.Context, userID, id string) error  { return nil }
func (m *memGarmentStore) SetFavorite(ctx context.Context, userID, id string, favorite bool) error {
	return nil
}
func (m *memGarmentStore) SetRating(ctx context.Context, userID, id string, rating int) error {
	return nil
}
func (m *memGarmentStore) GetByID(ctx context.Context, userID, id string) (*models.Garment, error) {
	return nil, repository.ErrNotFound
}
func (m *memGarmentStore) GetByIDs(ctx context.Context, userID string, ids []string) ([]*models.Garment, error) {
	var out []*models.Garment
	for _, id := range ids {
		if g, ok := m.garments[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}
func (m *memGarmentStore) ListByUser(ctx context.Context, userID string) ([]*models.Garment, error) {
	return nil, nil
}
func (m *memGarmentStore) ListByCategory(ctx context.Context, userID, category string) ([]*models.Garment, error) {
	return nil, nil
}
func (m *memGarmentStore) ListFavorites(ctx context.Context, userID string) ([]*models.Garment, error) {
	return nil, nil
}
func (m *memGarmentStore) Count(ctx context.Context, userID string) (int, error) { return 0, nil }

func newOutfitHandler(garments map[string]*models.Garment) (*OutfitHandler, *memOutfitStore) {
	store := newMemOutfitStore()
	sync := services.NewRatingSynchronizer(
		store, &memGarmentStore{garments: garments}, live.NewBus(), metrics.NewCollector())
	return NewOutfitHandler(services.NewOutfitService(store, sync)), store
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/outfits", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestCreateOutfitHandlerValidation(t *testing.T) {
	handler, _ := newOutfitHandler(nil)

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"blank name", `{"name":"","garment_ids":["a","b"]}`, "name required"},
		{"no garments", `{"name":"Look A"}`, "select at least one garment"},
		{"one garment", `{"name":"Look A","garment_ids":["a"]}`, "need at least two garments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, handler.CreateOutfit, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantMsg, resp.Error)
		})
	}
}

func TestCreateOutfitHandlerBadBody(t *testing.T) {
	handler, _ := newOutfitHandler(nil)

	rec := postJSON(t, handler.CreateOutfit, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOutfitHandlerSuccess(t *testing.T) {
	handler, store := newOutfitHandler(nil)

	rec := postJSON(t, handler.CreateOutfit, `{"name":"Look A","garment_ids":["a","b"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var outfit models.Outfit
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outfit))
	assert.Equal(t, 0, outfit.Rating)
	assert.Equal(t, []string{"a", "b"}, models.DecodeGarmentIDs(outfit.GarmentIDs))

	count, _ := store.Count(context.Background(), "")
	assert.Equal(t, 1, count)
}
