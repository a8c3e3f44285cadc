package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"hash402/internal/platform/models"
)

func setupDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
	CREATE TABLE organizations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		plan TEXT NOT NULL DEFAULT 'free',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE users (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL REFERENCES organizations(id),
		email TEXT UNIQUE,
		wallet_address TEXT UNIQUE,
		password_hash TEXT,
		last_login_at INTEGER,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`)
	if err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return db
}

func TestCreateOrganizationAndUser(t *testing.T) {
	db := setupDB(t)
	accounts := NewAccountRepository(db)
	users := NewUserRepository(db)

	wallet := "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	user, err := accounts.CreateOrganizationAndUser(wallet, "9WzD...AWWM Org")
	if err != nil {
		t.Fatalf("CreateOrganizationAndUser failed: %v", err)
	}
	if user.Organization == nil || user.Organization.Plan != "free" {
		t.Errorf("Expected free plan org, got %+v", user.Organization)
	}

	got, err := users.GetByWallet(wallet)
	if err != nil {
		t.Fatalf("GetByWallet failed: %v", err)
	}
	if got == nil || got.ID != user.ID {
		t.Fatal("Provisioned user not found by wallet")
	}
	if got.Organization.Name != "9WzD...AWWM Org" {
		t.Errorf("Org name = %q", got.Organization.Name)
	}
}

func TestCreateOrganizationAndUserDuplicateWallet(t *testing.T) {
	db := setupDB(t)
	accounts := NewAccountRepository(db)

	wallet := "4Nd1mY5ZkPQR7sT2uVwXyZaBcDeFgHiJkLmNoPqRpQrs"
	if _, err := accounts.CreateOrganizationAndUser(wallet, "4Nd1...pQrs Org"); err != nil {
		t.Fatalf("First provisioning failed: %v", err)
	}

	_, err := accounts.CreateOrganizationAndUser(wallet, "4Nd1...pQrs Org")
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("Expected ErrDuplicate for an already-provisioned wallet, got %v", err)
	}

	// The losing transaction must not leave an orphaned organization.
	var orgs int
	if err := db.QueryRow(`SELECT COUNT(*) FROM organizations`).Scan(&orgs); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if orgs != 1 {
		t.Errorf("Expected 1 organization after collision, got %d", orgs)
	}
}

func TestWalletOnlyUsersDoNotCollideOnEmail(t *testing.T) {
	db := setupDB(t)
	accounts := NewAccountRepository(db)

	if _, err := accounts.CreateOrganizationAndUser("walletA11111111111111111111111111111111111111", "A Org"); err != nil {
		t.Fatalf("First provisioning failed: %v", err)
	}
	if _, err := accounts.CreateOrganizationAndUser("walletB11111111111111111111111111111111111111", "B Org"); err != nil {
		t.Fatalf("Second wallet-only user rejected: %v", err)
	}
}

func TestGetByEmailAndLastLogin(t *testing.T) {
	db := setupDB(t)
	users := NewUserRepository(db)
	orgs := NewOrganizationRepository(db)

	now := time.Now().Unix()
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	org := &models.Organization{ID: "org_" + uuid.NewString(), Name: "Acme", Plan: "free", CreatedAt: now, UpdatedAt: now}
	if err := orgs.CreateTx(tx, org); err != nil {
		t.Fatalf("Org create failed: %v", err)
	}
	user := &models.User{
		ID:             "usr_" + uuid.NewString(),
		OrganizationID: org.ID,
		Email:          "a@b.co",
		PasswordHash:   "digest",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := users.CreateTx(tx, user); err != nil {
		t.Fatalf("User create failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	got, err := users.GetByEmail("a@b.co")
	if err != nil || got == nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.PasswordHash != "digest" {
		t.Errorf("Password digest lost: %q", got.PasswordHash)
	}
	if got.LastLoginAt != nil {
		t.Error("Fresh user must have no last login")
	}

	if err := users.UpdateLastLogin(got.ID, now); err != nil {
		t.Fatalf("UpdateLastLogin failed: %v", err)
	}
	got, _ = users.GetByEmail("a@b.co")
	if got.LastLoginAt == nil || *got.LastLoginAt != now {
		t.Error("Last login not persisted")
	}

	missing, err := users.GetByEmail("nobody@b.co")
	if err != nil {
		t.Fatalf("Unexpected error for missing user: %v", err)
	}
	if missing != nil {
		t.Error("Expected nil for unknown email")
	}
}
