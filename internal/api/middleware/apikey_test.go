package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	apiContext "hash402/internal/api/context"
	"hash402/internal/engine/keys"
	"hash402/internal/platform/models"
	"hash402/internal/platform/repositories"
)

func setupKeyMiddleware(t *testing.T) (*APIKeyMiddleware, *keys.Service) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
	CREATE TABLE api_keys (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		name TEXT NOT NULL,
		env TEXT NOT NULL,
		scopes TEXT NOT NULL,
		key_prefix TEXT NOT NULL UNIQUE,
		key_hash TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL DEFAULT 'active',
		last_used_at INTEGER,
		created_at INTEGER NOT NULL
	);
	`)
	if err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	repo := repositories.NewAPIKeyRepository(db)
	return NewAPIKeyMiddleware(repo), keys.NewService(repo)
}

func TestAPIKeyMiddleware(t *testing.T) {
	mid, issuer := setupKeyMiddleware(t)

	key, secret, err := issuer.Issue("org_1", "test", models.EnvSandbox, []string{"write"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	var seen *models.APIKey
	handler := mid.Handle(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(apiContext.APIKey).(*models.APIKey)
		w.WriteHeader(http.StatusOK)
	})

	do := func(authorization string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/validate", nil)
		if authorization != "" {
			r.Header.Set("Authorization", authorization)
		}
		w := httptest.NewRecorder()
		handler(w, r)
		return w
	}

	if w := do(""); w.Code != http.StatusUnauthorized {
		t.Errorf("Missing credential: expected 401, got %d", w.Code)
	}
	if w := do("Bearer hsh402_" + "0000000000000000000000000000000000000000000000000000000000000000"); w.Code != http.StatusUnauthorized {
		t.Errorf("Unknown secret: expected 401, got %d", w.Code)
	}

	if w := do("Bearer " + secret); w.Code != http.StatusOK {
		t.Fatalf("Valid secret: expected 200, got %d", w.Code)
	}
	if seen == nil || seen.ID != key.ID {
		t.Fatal("Authenticated key not placed on the request context")
	}
	if len(seen.Scopes) != 1 || seen.Scopes[0] != "write" {
		t.Errorf("Scopes not round-tripped: %v", seen.Scopes)
	}

	if err := issuer.Revoke(key.ID); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if w := do("Bearer " + secret); w.Code != http.StatusUnauthorized {
		t.Errorf("Revoked secret: expected 401, got %d", w.Code)
	}
}

func TestRequireScope(t *testing.T) {
	handler := RequireScope("write")(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	do := func(key *models.APIKey) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/validate", nil)
		if key != nil {
			r = r.WithContext(context.WithValue(r.Context(), apiContext.APIKey, key))
		}
		w := httptest.NewRecorder()
		handler(w, r)
		return w
	}

	if w := do(&models.APIKey{Scopes: []string{"write"}}); w.Code != http.StatusOK {
		t.Errorf("Matching scope: expected 200, got %d", w.Code)
	}
	if w := do(&models.APIKey{Scopes: []string{"admin"}}); w.Code != http.StatusOK {
		t.Errorf("Admin scope: expected 200, got %d", w.Code)
	}
	if w := do(&models.APIKey{Scopes: []string{"read"}}); w.Code != http.StatusForbidden {
		t.Errorf("Missing scope: expected 403, got %d", w.Code)
	}
	if w := do(nil); w.Code != http.StatusForbidden {
		t.Errorf("No key on context: expected 403, got %d", w.Code)
	}
}
