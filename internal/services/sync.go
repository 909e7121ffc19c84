package services

import (
	"context"
	"fmt"
	"math"

	"wardrobe-backend/internal/live"
	"wardrobe-backend/internal/metrics"
	"wardrobe-backend/internal/models"
	"wardrobe-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// DeriveRating computes an outfit's aggregate rating: the round-half-up mean
// of the ratings of its garments, counting only garments that have been
// rated. Unrated garments (rating 0) are excluded from the mean, not treated
// as zero-valued votes. Returns 0 when no garment has a rating.
func DeriveRating(garments []*models.Garment) int {
	sum, n := 0, 0
	for _, g := range garments {
		if g.Rating > 0 {
			sum += g.Rating
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}

// RatingSynchronizer keeps an outfit's derived rating consistent with its
// constituent garments. SyncOnce converges opportunistically on outfit load;
// Watch holds a continuous subscription for as long as a client is viewing
// the outfit.
type RatingSynchronizer struct {
	outfitRepo  repository.OutfitStore
	garmentRepo repository.GarmentStore
	bus         *live.Bus
	collector   *metrics.Collector
}

// NewRatingSynchronizer creates a new rating synchronizer
func NewRatingSynchronizer(
	outfitRepo repository.OutfitStore,
	garmentRepo repository.GarmentStore,
	bus *live.Bus,
	collector *metrics.Collector,
) *RatingSynchronizer {
	return &RatingSynchronizer{
		outfitRepo:  outfitRepo,
		garmentRepo: garmentRepo,
		bus:         bus,
		collector:   collector,
	}
}

// SyncOnce recomputes one outfit's rating and persists it if it changed.
// The returned outfit carries the recomputed value so callers don't need a
// reload. Returns (nil, nil) when the outfit does not exist.
func (s *RatingSynchronizer) SyncOnce(ctx context.Context, userID, outfitID string) (*models.Outfit, error) {
	outfit, err := s.outfitRepo.GetByID(ctx, userID, outfitID)
	if err != nil {
		return nil, fmt.Errorf("failed to load outfit: %w", err)
	}
	if outfit == nil {
		return nil, nil
	}
	if err := s.converge(ctx, outfit); err != nil {
		return nil, err
	}
	return outfit, nil
}

// converge recomputes the rating for an already-loaded outfit, persisting
// and updating the in-memory copy when the value changed. A malformed
// garment-id encoding decodes to no garments, forcing the rating to 0.
func (s *RatingSynchronizer) converge(ctx context.Context, outfit *models.Outfit) error {
	ids := models.DecodeGarmentIDs(outfit.GarmentIDs)

	var garments []*models.Garment
	if len(ids) > 0 {
		var err error
		garments, err = s.garmentRepo.GetByIDs(ctx, outfit.UserID, ids)
		if err != nil {
			return fmt.Errorf("failed to load outfit garments: %w", err)
		}
	}

	newRating := DeriveRating(garments)
	if newRating == outfit.Rating {
		s.collector.RecordRecompute(false)
		return nil
	}

	if err := s.outfitRepo.UpdateRating(ctx, outfit.UserID, outfit.ID, newRating); err != nil {
		return fmt.Errorf("failed to persist outfit rating: %w", err)
	}
	s.collector.RecordRecompute(true)

	log.Debug().
		Str("outfit_id", outfit.ID).
		Int("old_rating", outfit.Rating).
		Int("new_rating", newRating).
		Msg("Outfit rating resynced")

	outfit.Rating = newRating
	return nil
}

// Watch subscribes to the outfit's garments and re-runs the rating
// computation on every upstream mutation until ctx is cancelled. Updates
// are not coalesced: several garments changing in quick succession trigger
// one recomputation each. onUpdate is called with the current outfit after
// the initial convergence and after every recomputation that changed the
// persisted rating.
func (s *RatingSynchronizer) Watch(ctx context.Context, userID, outfitID string, onUpdate func(*models.Outfit)) error {
	events := s.bus.Subscribe(ctx)
	s.collector.WatchStarted()
	defer s.collector.WatchStopped()

	outfit, err := s.SyncOnce(ctx, userID, outfitID)
	if err != nil {
		return err
	}
	if outfit == nil {
		return fmt.Errorf("outfit %w", repository.ErrNotFound)
	}
	onUpdate(outfit)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !s.relevant(ev, outfit) {
				continue
			}
			s.collector.RecordLiveEvent()

			fresh, err := s.SyncOnce(ctx, userID, outfitID)
			if err != nil {
				return err
			}
			if fresh == nil {
				// Outfit deleted out from under the watch.
				return nil
			}
			changed := fresh.Rating != outfit.Rating || fresh.GarmentIDs != outfit.GarmentIDs
			outfit = fresh
			if changed {
				onUpdate(outfit)
			}
		}
	}
}

// relevant reports whether a change event can affect the watched outfit:
// a mutation of the outfit itself, or of any garment it references.
func (s *RatingSynchronizer) relevant(ev live.Event, outfit *models.Outfit) bool {
	if ev.UserID != outfit.UserID {
		return false
	}
	if ev.Entity == live.EntityOutfit {
		return ev.ID == outfit.ID
	}
	for _, id := range models.DecodeGarmentIDs(outfit.GarmentIDs) {
		if id == ev.ID {
			return true
		}
	}
	return false
}
