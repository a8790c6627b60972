package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"assistant-backend/internal/conversation"
	"assistant-backend/internal/middleware"
	"assistant-backend/internal/models"
	"assistant-backend/internal/services"
)

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get(middleware.RequestIDHeader),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: r.Header.Get(middleware.RequestIDHeader),
		},
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(v)
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr  *services.ValidationError
		notFoundErr    *services.NotFoundError
		unavailableErr *services.UnavailableError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", validationErr.Fields, r))
	case errors.As(err, &notFoundErr):
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", notFoundErr.Message, r))
	case errors.As(err, &unavailableErr):
		writeJSON(w, http.StatusServiceUnavailable, errorResp("UNAVAILABLE", unavailableErr.Message, r))
	case errors.Is(err, services.ErrTransport), errors.Is(err, conversation.ErrMalformedResponse):
		logrus.WithError(err).WithField("request_id", middleware.GetRequestID(r.Context())).Error("upstream call failed")
		writeJSON(w, http.StatusBadGateway, errorResp("UPSTREAM_ERROR", "Upstream service failed", r))
	default:
		logrus.WithError(err).WithField("request_id", middleware.GetRequestID(r.Context())).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}

// Health reports liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
