package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"assistant-backend/internal/models"
	"assistant-backend/internal/repository"
)

type assistantRepository interface {
	Create(ctx context.Context, a *models.Assistant) error
	List(ctx context.Context) ([]*models.Assistant, error)
	GetByID(ctx context.Context, id int64) (*models.Assistant, error)
}

type AssistantHandler struct {
	repo assistantRepository
}

func NewAssistantHandler(repo assistantRepository) *AssistantHandler {
	return &AssistantHandler{repo: repo}
}

func (h *AssistantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAssistantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	a := &models.Assistant{
		Name:        req.Name,
		Description: req.Description,
		UserRole:    req.UserRole,
		ModelInfo:   req.ModelInfo,
	}
	if err := h.repo.Create(r.Context(), a); err != nil {
		logrus.WithError(err).Error("failed to create assistant")
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create assistant", r))
		return
	}

	writeJSON(w, http.StatusCreated, a)
}

func (h *AssistantHandler) List(w http.ResponseWriter, r *http.Request) {
	assistants, err := h.repo.List(r.Context())
	if err != nil {
		logrus.WithError(err).Error("failed to list assistants")
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to retrieve assistants", r))
		return
	}
	if assistants == nil {
		assistants = []*models.Assistant{}
	}

	writeJSON(w, http.StatusOK, assistants)
}

func (h *AssistantHandler) Get(w http.ResponseWriter, r *http.Request) {
	// A non-numeric id can never match a record.
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Assistant not found", r))
		return
	}

	a, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Assistant not found", r))
			return
		}
		logrus.WithError(err).WithField("assistant_id", id).Error("failed to load assistant")
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to retrieve assistant", r))
		return
	}

	writeJSON(w, http.StatusOK, a)
}
