package handlers

import (
	"encoding/json"
	"net/http"

	"wardrobe-backend/internal/middleware"
	"wardrobe-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// OutfitHandler handles outfit-related HTTP requests
type OutfitHandler struct {
	outfitService *services.OutfitService
}

// NewOutfitHandler creates a new outfit handler
func NewOutfitHandler(outfitService *services.OutfitService) *OutfitHandler {
	return &OutfitHandler{outfitService: outfitService}
}

// ListOutfits handles GET /api/v1/outfits?occasion=&favorites=
func (h *OutfitHandler) ListOutfits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	occasion := r.URL.Query().Get("occasion")
	favoritesOnly := r.URL.Query().Get("favorites") == "true"

	outfits, err := h.outfitService.ListOutfits(ctx, userID, occasion, favoritesOnly)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list outfits")
		respondServiceError(w, err)
		return
	}

	total, err := h.outfitService.CountOutfits(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to count outfits")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, map[string]interface{}{
		"outfits": outfits,
		"total":   total,
	}, http.StatusOK)
}

// GetOutfit handles GET /api/v1/outfits/{outfit_id}. Loading the detail
// resyncs the derived rating before responding.
func (h *OutfitHandler) GetOutfit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	outfitID := chi.URLParam(r, "outfit_id")

	outfit, err := h.outfitService.GetOutfit(ctx, userID, outfitID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("outfit_id", outfitID).
			Msg("Failed to get outfit")
		respondServiceError(w, err)
		return
	}
	if outfit == nil {
		respondError(w, "not found", http.StatusNotFound)
		return
	}

	respondJSON(w, outfit, http.StatusOK)
}

// CreateOutfit handles POST /api/v1/outfits
func (h *OutfitHandler) CreateOutfit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var in services.OutfitInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	outfit, err := h.outfitService.CreateOutfit(ctx, userID, in)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("outfit_id", outfit.ID).
		Int("garments", len(in.GarmentIDs)).
		Msg("Outfit created")

	respondJSON(w, outfit, http.StatusCreated)
}

// UpdateOutfit handles PUT /api/v1/outfits/{outfit_id}
func (h *OutfitHandler) UpdateOutfit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	outfitID := chi.URLParam(r, "outfit_id")

	var in services.OutfitInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	outfit, err := h.outfitService.UpdateOutfit(ctx, userID, outfitID, in)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, outfit, http.StatusOK)
}

// DeleteOutfit handles DELETE /api/v1/outfits/{outfit_id}
func (h *OutfitHandler) DeleteOutfit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	outfitID := chi.URLParam(r, "outfit_id")

	if err := h.outfitService.DeleteOutfit(ctx, userID, outfitID); err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("outfit_id", outfitID).
			Msg("Failed to delete outfit")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Str("outfit_id", outfitID).Msg("Outfit deleted")

	w.WriteHeader(http.StatusNoContent)
}

// SetFavorite handles PUT /api/v1/outfits/{outfit_id}/favorite
func (h *OutfitHandler) SetFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	outfitID := chi.URLParam(r, "outfit_id")

	var req FavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.outfitService.SetFavorite(ctx, userID, outfitID, req.Favorite); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
