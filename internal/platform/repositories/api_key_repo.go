package repositories

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"hash402/internal/platform/models"
)

type APIKeyRepository struct {
	db *sql.DB
}

func NewAPIKeyRepository(db *sql.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

func (r *APIKeyRepository) Create(key *models.APIKey) error {
	if key.ID == "" {
		key.ID = "key_" + uuid.NewString()
	}
	key.CreatedAt = time.Now().Unix()

	scopesJSON, err := json.Marshal(key.Scopes)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		INSERT INTO api_keys (id, organization_id, name, env, scopes, key_prefix, key_hash, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, key.ID, key.OrganizationID, key.Name, key.Env, string(scopesJSON), key.KeyPrefix, key.KeyHash, key.Status, key.CreatedAt)
	return translateErr(err)
}

// GetActiveByHash resolves a bearer secret's digest to its credential.
// Only active keys match: a revoked key is indistinguishable from an
// unknown one on this path.
func (r *APIKeyRepository) GetActiveByHash(hash string) (*models.APIKey, error) {
	row := r.db.QueryRow(`
		SELECT id, organization_id, name, env, scopes, key_prefix, status, last_used_at, created_at
		FROM api_keys WHERE key_hash = ? AND status = ?
	`, hash, models.KeyStatusActive)

	key, err := scanKey(row)
	if err != nil {
		return nil, err
	}
	if key != nil {
		key.KeyHash = hash
	}
	return key, nil
}

func (r *APIKeyRepository) GetByIDForOrg(id, orgID string) (*models.APIKey, error) {
	row := r.db.QueryRow(`
		SELECT id, organization_id, name, env, scopes, key_prefix, status, last_used_at, created_at
		FROM api_keys WHERE id = ? AND organization_id = ?
	`, id, orgID)
	return scanKey(row)
}

func (r *APIKeyRepository) ListByOrg(orgID string) ([]*models.APIKey, error) {
	rows, err := r.db.Query(`
		SELECT id, organization_id, name, env, scopes, key_prefix, status, last_used_at, created_at
		FROM api_keys WHERE organization_id = ? ORDER BY created_at DESC
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		key, err := scanKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// UpdateSecret swaps the key's prefix and digest and clears last-used
// in a single statement, so concurrent lookups see either the old
// secret or the new one, never both.
func (r *APIKeyRepository) UpdateSecret(id, prefix, hash string) error {
	_, err := r.db.Exec(`
		UPDATE api_keys SET key_prefix = ?, key_hash = ?, last_used_at = NULL WHERE id = ?
	`, prefix, hash, id)
	return translateErr(err)
}

func (r *APIKeyRepository) SetStatus(id, status string) error {
	_, err := r.db.Exec(`UPDATE api_keys SET status = ? WHERE id = ?`, status, id)
	return err
}

func (r *APIKeyRepository) TouchLastUsed(id string) error {
	_, err := r.db.Exec(`UPDATE api_keys SET last_used_at = ? WHERE id = ?`, time.Now().Unix(), id)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanKey(row rowScanner) (*models.APIKey, error) {
	var k models.APIKey
	var scopesStr string
	var lastUsedAt sql.NullInt64

	err := row.Scan(&k.ID, &k.OrganizationID, &k.Name, &k.Env, &scopesStr, &k.KeyPrefix, &k.Status, &lastUsedAt, &k.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if lastUsedAt.Valid {
		k.LastUsedAt = &lastUsedAt.Int64
	}
	if err := json.Unmarshal([]byte(scopesStr), &k.Scopes); err != nil {
		return nil, err
	}
	return &k, nil
}
