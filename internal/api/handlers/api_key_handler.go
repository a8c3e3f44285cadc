package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"

	apiContext "hash402/internal/api/context"
	"hash402/internal/engine/keys"
	apiErrors "hash402/internal/pkg/errors"
	"hash402/internal/platform/auth"
	"hash402/internal/platform/models"
	"hash402/internal/platform/repositories"
)

type APIKeyHandler struct {
	issuer  *keys.Service
	keyRepo *repositories.APIKeyRepository
}

func NewAPIKeyHandler(issuer *keys.Service, keyRepo *repositories.APIKeyRepository) *APIKeyHandler {
	return &APIKeyHandler{issuer: issuer, keyRepo: keyRepo}
}

type CreateKeyRequest struct {
	Name   string   `json:"name"`
	Env    string   `json:"env"`
	Scopes []string `json:"scopes"`
}

type createKeyResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Env       string   `json:"env"`
	Scopes    []string `json:"scopes"`
	Key       string   `json:"key"` // raw secret, shown only here
	KeyPrefix string   `json:"key_prefix"`
	CreatedAt int64    `json:"created_at"`
}

func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	var req CreateKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiErrors.WriteError(w, http.StatusBadRequest, apiErrors.ErrCodeInvalidBody, "Invalid request body", "")
		return
	}
	if req.Name == "" || req.Env == "" || len(req.Scopes) == 0 {
		apiErrors.WriteError(w, http.StatusBadRequest, apiErrors.ErrCodeInvalidBody, "Name, env, and scopes required", "")
		return
	}
	if req.Env != models.EnvSandbox && req.Env != models.EnvMainnet {
		apiErrors.WriteError(w, http.StatusBadRequest, apiErrors.ErrCodeInvalidBody, "Env must be sandbox or mainnet", "")
		return
	}

	key, secret, err := h.issuer.Issue(claims.OrganizationID, req.Name, req.Env, req.Scopes)
	if err != nil {
		if errors.Is(err, keys.ErrGenerationExhausted) {
			log.Error().Str("org_id", claims.OrganizationID).Msg("api key generation exhausted retries")
		}
		apiErrors.WriteError(w, http.StatusInternalServerError, apiErrors.ErrCodeInternal, "Failed to create API key", "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(createKeyResponse{
		ID:        key.ID,
		Name:      key.Name,
		Env:       key.Env,
		Scopes:    key.Scopes,
		Key:       secret,
		KeyPrefix: key.KeyPrefix,
		CreatedAt: key.CreatedAt,
	})
}

func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	list, err := h.keyRepo.ListByOrg(claims.OrganizationID)
	if err != nil {
		apiErrors.WriteError(w, http.StatusInternalServerError, apiErrors.ErrCodeInternal, "Failed to fetch API keys", "")
		return
	}
	if list == nil {
		list = []*models.APIKey{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"apiKeys": list})
}

type rotateKeyResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Key       string `json:"key"` // raw secret, shown only here
	KeyPrefix string `json:"key_prefix"`
}

func (h *APIKeyHandler) Rotate(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	keyID := params.ByName("key_id")

	key, err := h.keyRepo.GetByIDForOrg(keyID, claims.OrganizationID)
	if err != nil {
		apiErrors.WriteError(w, http.StatusInternalServerError, apiErrors.ErrCodeInternal, "Database error", "")
		return
	}
	if key == nil {
		apiErrors.WriteError(w, http.StatusNotFound, apiErrors.ErrCodeNotFound, "API key not found", "")
		return
	}

	secret, err := h.issuer.Rotate(key.ID)
	if err != nil {
		apiErrors.WriteError(w, http.StatusInternalServerError, apiErrors.ErrCodeInternal, "Failed to rotate API key", "")
		return
	}

	// Re-read for the updated prefix.
	rotated, err := h.keyRepo.GetByIDForOrg(keyID, claims.OrganizationID)
	if err != nil || rotated == nil {
		rotated = key
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rotateKeyResponse{
		ID:        rotated.ID,
		Name:      rotated.Name,
		Key:       secret,
		KeyPrefix: rotated.KeyPrefix,
	})
}

func (h *APIKeyHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	keyID := params.ByName("key_id")

	key, err := h.keyRepo.GetByIDForOrg(keyID, claims.OrganizationID)
	if err != nil {
		apiErrors.WriteError(w, http.StatusInternalServerError, apiErrors.ErrCodeInternal, "Database error", "")
		return
	}
	if key == nil {
		apiErrors.WriteError(w, http.StatusNotFound, apiErrors.ErrCodeNotFound, "API key not found", "")
		return
	}

	if err := h.issuer.Revoke(key.ID); err != nil {
		apiErrors.WriteError(w, http.StatusInternalServerError, apiErrors.ErrCodeInternal, "Failed to revoke API key", "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
