package handlers

import (
	"encoding/json"
	"net/http"

	"wardrobe-backend/internal/middleware"
	"wardrobe-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// UploadHandler handles image upload HTTP requests
type UploadHandler struct {
	uploadService *services.UploadService
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploadService *services.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// PresignUpload handles POST /api/v1/uploads
func (h *UploadHandler) PresignUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Filename == "" {
		respondError(w, "filename is required", http.StatusBadRequest)
		return
	}
	if req.ContentType == "" {
		req.ContentType = "image/jpeg"
	}

	response, err := h.uploadService.GetPreSignedURL(ctx, userID, req.Filename, req.ContentType)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("filename", req.Filename).
			Msg("Failed to generate pre-signed URL")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("filename", req.Filename).
		Msg("Pre-signed URL generated")

	respondJSON(w, response, http.StatusOK)
}
