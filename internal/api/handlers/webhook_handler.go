package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	apiContext "hookstash/internal/api/context"
	"hookstash/internal/engine/tasks"
	"hookstash/internal/pkg/errors"
	"hookstash/internal/platform/audit"
	"hookstash/internal/platform/auth"
	"hookstash/internal/platform/models"
	"hookstash/internal/platform/repositories"
)

type WebhookHandler struct {
	repo   *repositories.WebhookRepository
	broker tasks.Broker
	audit  *audit.Logger
}

func NewWebhookHandler(repo *repositories.WebhookRepository, broker tasks.Broker, auditLog *audit.Logger) *WebhookHandler {
	return &WebhookHandler{repo: repo, broker: broker, audit: auditLog}
}

func (h *WebhookHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	var req struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if !isJSONObject(req.Data) {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Validation failed",
			map[string]string{"data": "must be a JSON object"})
		return
	}

	webhook := &models.Webhook{
		UserID: claims.UserID,
		Data:   req.Data,
	}

	if err := h.repo.Create(webhook); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create webhook", nil)
		return
	}

	h.audit.Log(r.Context(), "webhook.create", "webhook", webhook.ID, nil)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(webhook)
}

func (h *WebhookHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	webhooks, err := h.repo.ListByUser(claims.UserID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list webhooks", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(webhooks)
}

func (h *WebhookHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	id := params.ByName("webhook_id")

	webhook, err := h.repo.GetByIDAndUser(id, claims.UserID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if webhook == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Webhook not found", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(webhook)
}

func (h *WebhookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	id := params.ByName("webhook_id")

	deleted, err := h.repo.Delete(id, claims.UserID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to delete webhook", nil)
		return
	}
	if !deleted {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Webhook not found", nil)
		return
	}

	h.audit.Log(r.Context(), "webhook.delete", "webhook", id, nil)

	w.WriteHeader(http.StatusNoContent)
}

// Write submits the stored payload to the task queue and returns the task
// id immediately; the caller polls /api/v1/tasks/:task_id for the outcome.
func (h *WebhookHandler) Write(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	id := params.ByName("webhook_id")

	webhook, err := h.repo.GetByIDAndUser(id, claims.UserID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if webhook == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Webhook not found", nil)
		return
	}

	task, err := h.broker.Enqueue(r.Context(), webhook.Data)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to enqueue task", nil)
		return
	}

	h.audit.Log(r.Context(), "webhook.write", "task", task.ID, map[string]interface{}{"webhook_id": id})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"task_id": task.ID})
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	var m map[string]json.RawMessage
	return json.Unmarshal(raw, &m) == nil
}
