package handlers

import (
	"encoding/json"
	"net/http"

	"wardrobe-backend/internal/middleware"
	"wardrobe-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// GarmentHandler handles garment-related HTTP requests
type GarmentHandler struct {
	garmentService *services.GarmentService
}

// NewGarmentHandler creates a new garment handler
func NewGarmentHandler(garmentService *services.GarmentService) *GarmentHandler {
	return &GarmentHandler{garmentService: garmentService}
}

// ListGarments handles GET /api/v1/garments?category=&favorites=
func (h *GarmentHandler) ListGarments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	category := r.URL.Query().Get("category")
	favoritesOnly := r.URL.Query().Get("favorites") == "true"

	garments, err := h.garmentService.ListGarments(ctx, userID, category, favoritesOnly)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list garments")
		respondServiceError(w, err)
		return
	}

	total, err := h.garmentService.CountGarments(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to count garments")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, map[string]interface{}{
		"garments": garments,
		"total":    total,
	}, http.StatusOK)
}

// GetGarment handles GET /api/v1/garments/{garment_id}
func (h *GarmentHandler) GetGarment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	garmentID := chi.URLParam(r, "garment_id")

	garment, err := h.garmentService.GetGarment(ctx, userID, garmentID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, garment, http.StatusOK)
}

// CreateGarment handles POST /api/v1/garments
func (h *GarmentHandler) CreateGarment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var in services.GarmentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	garment, err := h.garmentService.CreateGarment(ctx, userID, in)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("garment_id", garment.ID).
		Str("category", garment.Category).
		Msg("Garment created")

	respondJSON(w, garment, http.StatusCreated)
}

// UpdateGarment handles PUT /api/v1/garments/{garment_id}
func (h *GarmentHandler) UpdateGarment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	garmentID := chi.URLParam(r, "garment_id")

	var in services.GarmentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	garment, err := h.garmentService.UpdateGarment(ctx, userID, garmentID, in)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, garment, http.StatusOK)
}

// DeleteGarment handles DELETE /api/v1/garments/{garment_id}
func (h *GarmentHandler) DeleteGarment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	garmentID := chi.URLParam(r, "garment_id")

	if err := h.garmentService.DeleteGarment(ctx, userID, garmentID); err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("garment_id", garmentID).
			Msg("Failed to delete garment")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Str("garment_id", garmentID).Msg("Garment deleted")

	w.WriteHeader(http.StatusNoContent)
}

// RateRequest represents the request body for rating a garment
type RateRequest struct {
	Rating int `json:"rating"`
}

// RateGarment handles PUT /api/v1/garments/{garment_id}/rating
func (h *GarmentHandler) RateGarment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	garmentID := chi.URLParam(r, "garment_id")

	var req RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.garmentService.RateGarment(ctx, userID, garmentID, req.Rating); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// FavoriteRequest represents the request body for the favorite flag
type FavoriteRequest struct {
	Favorite bool `json:"favorite"`
}

// SetFavorite handles PUT /api/v1/garments/{garment_id}/favorite
func (h *GarmentHandler) SetFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	garmentID := chi.URLParam(r, "garment_id")

	var req FavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.garmentService.SetFavorite(ctx, userID, garmentID, req.Favorite); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
