package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"casino/economy-bot/domain/entities"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

// Response is the envelope of every JSON reply
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("Failed to encode admin API response")
	}
}

func respondWithData(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, Response{Success: true, Data: data})
}

func respondWithSuccess(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, Response{Success: true, Message: message})
}

func respondWithError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, Response{Success: false, Error: message})
}

// respondWithDomainError maps economy errors onto HTTP status codes
func respondWithDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, entities.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, entities.ErrInvalidAmount),
		errors.Is(err, entities.ErrInvalidAction),
		errors.Is(err, entities.ErrMisconfiguredReward):
		status = http.StatusBadRequest
	case errors.Is(err, entities.ErrAlreadyOwned),
		errors.Is(err, entities.ErrConcurrencyConflict):
		status = http.StatusConflict
	case errors.Is(err, entities.ErrForbidden):
		status = http.StatusForbidden
	}
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("Admin API request failed")
	}
	respondWithError(w, err.Error(), status)
}

// idParam reads a numeric path parameter, writing a 400 when it is malformed
func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, "invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
