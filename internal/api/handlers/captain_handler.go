package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/zatekoja/ridemaps/backend/internal/domain/entities"
)

// CaptainService is the captain surface the handler depends on
type CaptainService interface {
	GetCaptainsInRadius(ctx context.Context, latitude, longitude, radiusKm float64) ([]*entities.Captain, error)
	UpdateCaptainLocation(ctx context.Context, captainID string, location entities.Location) error
}

// CaptainHandler handles captain-related HTTP requests
type CaptainHandler struct {
	service CaptainService
}

// NewCaptainHandler creates a new captain handler
func NewCaptainHandler(service CaptainService) *CaptainHandler {
	return &CaptainHandler{service: service}
}

// locationRequest uses pointers so a missing coordinate is distinguishable from 0
type locationRequest struct {
	Latitude  *float64 `json:"lat"`
	Longitude *float64 `json:"lng"`
}

// GetNearbyCaptains handles GET /api/captains/nearby?lat=...&lng=...&radius=...
func (h *CaptainHandler) GetNearbyCaptains(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	lat, ok := parseFloatParam(w, query.Get("lat"), "lat")
	if !ok {
		return
	}
	lng, ok := parseFloatParam(w, query.Get("lng"), "lng")
	if !ok {
		return
	}
	radius, ok := parseFloatParam(w, query.Get("radius"), "radius")
	if !ok {
		return
	}

	captains, err := h.service.GetCaptainsInRadius(r.Context(), lat, lng, radius)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"captains": captains,
		"count":    len(captains),
	})
}

// UpdateLocation handles PUT /api/captains/{id}/location
func (h *CaptainHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	captainID := r.PathValue("id")
	if captainID == "" {
		respondWithError(w, http.StatusBadRequest, "captain ID is required")
		return
	}

	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		respondWithError(w, http.StatusBadRequest, "lat and lng are required")
		return
	}

	location := entities.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
	if err := h.service.UpdateCaptainLocation(r.Context(), captainID, location); err != nil {
		respondWithAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseFloatParam(w http.ResponseWriter, raw, name string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		respondWithError(w, http.StatusBadRequest, name+" parameter is required")
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid "+name+" parameter")
		return 0, false
	}
	return value, true
}
