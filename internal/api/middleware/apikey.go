package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	apiContext "hash402/internal/api/context"
	"hash402/internal/engine/keys"
	"hash402/internal/pkg/errors"
	"hash402/internal/platform/auth"
	"hash402/internal/platform/models"
	"hash402/internal/platform/repositories"
)

type APIKeyMiddleware struct {
	keyRepo *repositories.APIKeyRepository
}

func NewAPIKeyMiddleware(keyRepo *repositories.APIKeyRepository) *APIKeyMiddleware {
	return &APIKeyMiddleware{keyRepo: keyRepo}
}

// Handle authenticates bearer API keys. The raw secret is hashed and
// looked up by digest; only active keys resolve. Revoked keys fail
// exactly like unknown ones.
func (m *APIKeyMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		secret, ok := bearerToken(r)
		if !ok {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "API key required", "")
			return
		}

		key, err := m.keyRepo.GetActiveByHash(keys.Hash(secret))
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Authentication failed", "")
			return
		}
		if key == nil {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid API key", "")
			return
		}

		go func() {
			if err := m.keyRepo.TouchLastUsed(key.ID); err != nil {
				log.Warn().Err(err).Str("key_id", key.ID).Msg("failed to update key last-used")
			}
		}()

		ctx := context.WithValue(r.Context(), apiContext.APIKey, key)
		next(w, r.WithContext(ctx))
	}
}

// RequireScope gates an operation on the authenticated key's scopes;
// the admin scope satisfies everything.
func RequireScope(scope string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key, ok := r.Context().Value(apiContext.APIKey).(*models.APIKey)
			if !ok {
				errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "API key required", "")
				return
			}

			if !auth.HasScope(key.Scopes, scope) {
				errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, fmt.Sprintf("Scope '%s' required", scope), "")
				return
			}

			next(w, r)
		}
	}
}
