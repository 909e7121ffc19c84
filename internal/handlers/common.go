package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"wardrobe-backend/internal/repository"
	"wardrobe-backend/internal/services"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, payload interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// validationErrors are surfaced to the user with their exact message; all
// other failures collapse to a generic one.
var validationErrors = []error{
	services.ErrOutfitNameRequired,
	services.ErrNoGarmentsSelected,
	services.ErrNeedTwoGarments,
	services.ErrGarmentNameRequired,
	services.ErrCategoryRequired,
	services.ErrImageRequired,
	services.ErrEmailRequired,
	services.ErrPasswordTooShort,
}

// respondServiceError maps a service error to an HTTP response.
func respondServiceError(w http.ResponseWriter, err error) {
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			respondError(w, v.Error(), http.StatusBadRequest)
			return
		}
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		respondError(w, "not found", http.StatusNotFound)
	case errors.Is(err, services.ErrEmailTaken):
		respondError(w, services.ErrEmailTaken.Error(), http.StatusConflict)
	case errors.Is(err, services.ErrBadCredentials):
		respondError(w, services.ErrBadCredentials.Error(), http.StatusUnauthorized)
	default:
		respondError(w, "action failed", http.StatusInternalServerError)
	}
}
