package services

import (
	"context"
	"testing"
	"time"

	"wardrobe-backend/internal/live"
	"wardrobe-backend/internal/metrics"
	"wardrobe-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUser = "user-1"

func garment(id string, rating int) *models.Garment {
	return &models.Garment{
		ID:     id,
		UserID: testUser,
		Name:   id,
		Rating: rating,
	}
}

func outfitWith(id string, rating int, garmentIDs ...string) *models.Outfit {
	encoded, _ := models.EncodeGarmentIDs(garmentIDs)
	return &models.Outfit{
		ID:         id,
		UserID:     testUser,
		Name:       id,
		GarmentIDs: encoded,
		Rating:     rating,
	}
}

func newSyncFixture(bus *live.Bus) (*RatingSynchronizer, *fakeGarmentStore, *fakeOutfitStore) {
	garments := newFakeGarmentStore(bus)
	outfits := newFakeOutfitStore(bus)
	sync := NewRatingSynchronizer(outfits, garments, bus, metrics.NewCollector())
	return sync, garments, outfits
}

func TestDeriveRating(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		want    int
	}{
		{"no garments", nil, 0},
		{"all unrated", []int{0, 0, 0}, 0},
		{"unrated excluded from mean", []int{4, 0, 2}, 3},
		{"single rated", []int{3}, 3},
		{"uniform", []int{4, 4}, 4},
		{"half rounds up", []int{1, 2}, 2},
		{"half rounds up high", []int{5, 4}, 5},
		{"rounds down below half", []int{1, 1, 2}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var garments []*models.Garment
			for i, r := range tt.ratings {
				garments = append(garments, garment(string(rune('a'+i)), r))
			}
			assert.Equal(t, tt.want, DeriveRating(garments))
		})
	}
}

func TestSyncOnceConverges(t *testing.T) {
	sync, garments, outfits := newSyncFixture(live.NewBus())
	ctx := context.Background()

	garments.Upsert(ctx, garment("a", 4))
	garments.Upsert(ctx, garment("b", 0))
	garments.Upsert(ctx, garment("c", 2))
	outfits.Upsert(ctx, outfitWith("weekend", 0, "a", "b", "c"))

	outfit, err := sync.SyncOnce(ctx, testUser, "weekend")
	require.NoError(t, err)
	require.NotNil(t, outfit)

	assert.Equal(t, 3, outfit.Rating)
	assert.Equal(t, []int{3}, outfits.ratingWrites)

	stored, _ := outfits.GetByID(ctx, testUser, "weekend")
	assert.Equal(t, 3, stored.Rating)
}

func TestSyncOnceIdempotent(t *testing.T) {
	sync, garments, outfits := newSyncFixture(live.NewBus())
	ctx := context.Background()

	garments.Upsert(ctx, garment("a", 4))
	garments.Upsert(ctx, garment("b", 2))
	outfits.Upsert(ctx, outfitWith("weekend", 0, "a", "b"))

	_, err := sync.SyncOnce(ctx, testUser, "weekend")
	require.NoError(t, err)
	assert.Equal(t, 1, outfits.ratingWriteCount())

	// Re-running against a converged outfit performs no write.
	outfit, err := sync.SyncOnce(ctx, testUser, "weekend")
	require.NoError(t, err)
	assert.Equal(t, 3, outfit.Rating)
	assert.Equal(t, 1, outfits.ratingWriteCount())
}

func TestSyncOnceMalformedGarmentIDs(t *testing.T) {
	sync, _, outfits := newSyncFixture(live.NewBus())
	ctx := context.Background()

	bad := outfitWith("broken", 4)
	bad.GarmentIDs = "not json at all"
	outfits.Upsert(ctx, bad)

	// Malformed encoding means zero garments: rating forced to 0, no error.
	outfit, err := sync.SyncOnce(ctx, testUser, "broken")
	require.NoError(t, err)
	assert.Equal(t, 0, outfit.Rating)
	assert.Equal(t, []int{0}, outfits.ratingWrites)
}

func TestSyncOnceMissingOutfit(t *testing.T) {
	sync, _, _ := newSyncFixture(live.NewBus())

	outfit, err := sync.SyncOnce(context.Background(), testUser, "gone")
	assert.NoError(t, err)
	assert.Nil(t, outfit)
}

func TestSyncOnceDeletedGarmentOmitted(t *testing.T) {
	sync, garments, outfits := newSyncFixture(live.NewBus())
	ctx := context.Background()

	garments.Upsert(ctx, garment("a", 4))
	garments.Upsert(ctx, garment("b", 2))
	outfits.Upsert(ctx, outfitWith("weekend", 3, "a", "b"))

	// Deleting a referenced garment does not repair the outfit; its rating
	// contribution just disappears on the next recomputation.
	require.NoError(t, garments.Delete(ctx, testUser, "b"))

	outfit, err := sync.SyncOnce(ctx, testUser, "weekend")
	require.NoError(t, err)
	assert.Equal(t, 4, outfit.Rating)
}

func TestWatchRecomputesOnGarmentChange(t *testing.T) {
	bus := live.NewBus()
	sync, garments, outfits := newSyncFixture(bus)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	garments.Upsert(ctx, garment("a", 4))
	garments.Upsert(ctx, garment("b", 2))
	outfits.Upsert(ctx, outfitWith("weekend", 0, "a", "b"))

	updates := make(chan int, 16)
	done := make(chan error, 1)
	go func() {
		done <- sync.Watch(ctx, testUser, "weekend", func(o *models.Outfit) {
			updates <- o.Rating
		})
	}()

	// Initial convergence: round(mean(4,2)) = 3.
	assert.Equal(t, 3, waitForUpdate(t, updates))

	// A garment rating change re-fires the subscription.
	require.NoError(t, garments.SetRating(ctx, testUser, "a", 5))
	assert.Equal(t, 4, waitForUpdate(t, updates)) // round(mean(5,2)) = 4

	// Cancellation tears the watch down.
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}

func TestWatchStopsWhenOutfitDeleted(t *testing.T) {
	bus := live.NewBus()
	sync, garments, outfits := newSyncFixture(bus)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	garments.Upsert(ctx, garment("a", 4))
	garments.Upsert(ctx, garment("b", 2))
	outfits.Upsert(ctx, outfitWith("weekend", 3, "a", "b"))

	updates := make(chan int, 16)
	done := make(chan error, 1)
	go func() {
		done <- sync.Watch(ctx, testUser, "weekend", func(o *models.Outfit) {
			updates <- o.Rating
		})
	}()

	waitForUpdate(t, updates)

	require.NoError(t, outfits.Delete(ctx, testUser, "weekend"))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after outfit deletion")
	}
}

func waitForUpdate(t *testing.T, updates chan int) int {
	t.Helper()
	select {
	case r := <-updates:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a rating update")
		return 0
	}
}
