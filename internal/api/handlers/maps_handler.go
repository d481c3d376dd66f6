package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/zatekoja/ridemaps/backend/internal/domain/providers"
)

// MapsService is the maps surface the handler depends on
type MapsService interface {
	GetCoordinates(ctx context.Context, address string) (*providers.Coordinate, error)
	GetDistanceTime(ctx context.Context, origin, destination string) (*providers.DistanceTimeResult, error)
	GetAutocompleteSuggestions(ctx context.Context, input string) ([]string, error)
}

// MapsHandler handles map-related endpoints.
type MapsHandler struct {
	service MapsService
}

// NewMapsHandler creates a new maps handler.
func NewMapsHandler(service MapsService) *MapsHandler {
	return &MapsHandler{service: service}
}

// GetCoordinates handles GET /api/maps/coordinates?address=...
func (h *MapsHandler) GetCoordinates(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		respondWithError(w, http.StatusBadRequest, "address parameter is required")
		return
	}

	coords, err := h.service.GetCoordinates(r.Context(), address)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, coords)
}

// GetDistanceTime handles GET /api/maps/distance-time?origin=...&destination=...
func (h *MapsHandler) GetDistanceTime(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	result, err := h.service.GetDistanceTime(r.Context(), query.Get("origin"), query.Get("destination"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// GetSuggestions handles GET /api/maps/suggestions?input=...
func (h *MapsHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.service.GetAutocompleteSuggestions(r.Context(), r.URL.Query().Get("input"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}
