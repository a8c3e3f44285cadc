package keys

import (
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"hash402/internal/platform/auth"
	"hash402/internal/platform/models"
	"hash402/internal/platform/repositories"
)

func setupKeyDB(t *testing.T) *sql.DB {
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
	return db
}

// Issue -> authorize -> rotate -> revoke against a real store, checking
// that exactly one secret validates at any point in the lifecycle.
func TestKeyLifecycle(t *testing.T) {
	db := setupKeyDB(t)
	repo := repositories.NewAPIKeyRepository(db)
	svc := NewService(repo)

	key, secret, err := svc.Issue("org_1", "deploy key", models.EnvSandbox, []string{"write"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	resolved, err := repo.GetActiveByHash(Hash(secret))
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if resolved == nil || resolved.ID != key.ID {
		t.Fatal("Fresh secret did not resolve to its credential")
	}
	if !auth.HasScope(resolved.Scopes, "write") {
		t.Error("Expected write scope to be granted")
	}
	if auth.HasScope(resolved.Scopes, "admin") {
		t.Error("Key without admin scope must not pass admin-gated checks")
	}

	newSecret, err := svc.Rotate(key.ID)
	if err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}

	if old, _ := repo.GetActiveByHash(Hash(secret)); old != nil {
		t.Error("Pre-rotation secret still resolves after rotation")
	}
	rotated, err := repo.GetActiveByHash(Hash(newSecret))
	if err != nil || rotated == nil {
		t.Fatalf("Post-rotation secret does not resolve: %v", err)
	}
	if rotated.LastUsedAt != nil {
		t.Error("Rotation must clear last-used")
	}

	if err := svc.Revoke(key.ID); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if revoked, _ := repo.GetActiveByHash(Hash(newSecret)); revoked != nil {
		t.Error("Secret still resolves immediately after revocation")
	}
}

func TestCreateReportsPrefixCollision(t *testing.T) {
	db := setupKeyDB(t)
	repo := repositories.NewAPIKeyRepository(db)

	first := &models.APIKey{
		OrganizationID: "org_1",
		Name:           "a",
		Env:            models.EnvSandbox,
		Scopes:         []string{"read"},
		KeyPrefix:      "hsh402_aaaaaaaa",
		KeyHash:        Hash("secret-a"),
		Status:         models.KeyStatusActive,
	}
	if err := repo.Create(first); err != nil {
		t.Fatalf("First create failed: %v", err)
	}

	second := &models.APIKey{
		OrganizationID: "org_1",
		Name:           "b",
		Env:            models.EnvSandbox,
		Scopes:         []string{"read"},
		KeyPrefix:      "hsh402_aaaaaaaa",
		KeyHash:        Hash("secret-b"),
		Status:         models.KeyStatusActive,
	}
	if err := repo.Create(second); !errors.Is(err, repositories.ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate on prefix collision, got %v", err)
	}

	// The existing record must be untouched by the failed insert.
	got, err := repo.GetActiveByHash(Hash("secret-a"))
	if err != nil || got == nil || got.ID != first.ID {
		t.Errorf("Existing record corrupted by collision: %v", err)
	}
}
