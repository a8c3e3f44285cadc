package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	apiContext "hash402/internal/api/context"
	apiErrors "hash402/internal/pkg/errors"
	"hash402/internal/platform/auth"
	"hash402/internal/platform/models"
	"hash402/internal/platform/repositories"
)

type WebhookHandler struct {
	repo *repositories.WebhookRepository
}

func NewWebhookHandler(repo *repositories.WebhookRepository) *WebhookHandler {
	return &WebhookHandler{repo: repo}
}

type CreateWebhookRequest struct {
	URL    string   `json:"url"`
	Events []string `json:"events"`
}

func (h *WebhookHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	var req CreateWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiErrors.WriteError(w, http.StatusBadRequest, apiErrors.ErrCodeInvalidBody, "Invalid request body", "")
		return
	}
	if req.URL == "" || len(req.Events) == 0 {
		apiErrors.WriteError(w, http.StatusBadRequest, apiErrors.ErrCodeInvalidBody, "URL and events required", "")
		return
	}
	if !strings.HasPrefix(req.URL, "https://") && !strings.HasPrefix(req.URL, "http://") {
		apiErrors.WriteError(w, http.StatusBadRequest, apiErrors.ErrCodeInvalidBody, "URL must be http(s)", "")
		return
	}

	secretBytes := make([]byte, 24)
	if _, err := rand.Read(secretBytes); err != nil {
		apiErrors.WriteError(w, http.StatusInternalServerError, apiErrors.ErrCodeInternal, "Failed to create webhook", "")
		return
	}

	endpoint := &models.WebhookEndpoint{
		OrganizationID: claims.OrganizationID,
		URL:            req.URL,
		Events:         req.Events,
		Secret:         "whsec_" + hex.EncodeToString(secretBytes),
	}

	if err := h.repo.Create(endpoint); err != nil {
		apiErrors.WriteError(w, http.StatusInternalServerError, apiErrors.ErrCodeInternal, "Failed to create webhook", "")
		return
	}

	// The signing secret is shown once, at creation.
	response := struct {
		*models.WebhookEndpoint
		Secret string `json:"secret"`
	}{endpoint, endpoint.Secret}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (h *WebhookHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	endpoints, err := h.repo.ListByOrg(claims.OrganizationID)
	if err != nil {
		apiErrors.WriteError(w, http.StatusInternalServerError, apiErrors.ErrCodeInternal, "Failed to fetch webhooks", "")
		return
	}
	if endpoints == nil {
		endpoints = []*models.WebhookEndpoint{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"webhooks": endpoints})
}

func (h *WebhookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	webhookID := params.ByName("webhook_id")

	deleted, err := h.repo.DeleteForOrg(webhookID, claims.OrganizationID)
	if err != nil {
		apiErrors.WriteError(w, http.StatusInternalServerError, apiErrors.ErrCodeInternal, "Failed to delete webhook", "")
		return
	}
	if !deleted {
		apiErrors.WriteError(w, http.StatusNotFound, apiErrors.ErrCodeNotFound, "Webhook not found", "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
