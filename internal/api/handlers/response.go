package handlers

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/zatekoja/ridemaps/backend/pkg/errors"
	"github.com/zatekoja/ridemaps/backend/pkg/retry"
)

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps a service error onto its HTTP status
func respondWithAppError(w http.ResponseWriter, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		respondWithError(w, http.StatusBadRequest, appErr.Message)
	case apperrors.ErrorTypeNotFound, apperrors.ErrorTypeNoRoute:
		respondWithError(w, http.StatusNotFound, appErr.Message)
	case apperrors.ErrorTypeLookup:
		respondWithError(w, http.StatusBadGateway, appErr.Message)
	case apperrors.ErrorTypeTransport:
		if retry.IsTimeout(appErr) {
			respondWithError(w, http.StatusGatewayTimeout, appErr.Message)
			return
		}
		respondWithError(w, http.StatusBadGateway, appErr.Message)
	default:
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
