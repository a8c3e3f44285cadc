package models

const (
	KeyStatusActive  = "active"
	KeyStatusRevoked = "revoked"

	EnvSandbox = "sandbox"
	EnvMainnet = "mainnet"
)

type APIKey struct {
	ID             string   `json:"id"`
	OrganizationID string   `json:"organization_id"`
	Name           string   `json:"name"`
	Env            string   `json:"env"`
	Scopes         []string `json:"scopes"` // JSON array in DB, parsed once on load
	KeyPrefix      string   `json:"key_prefix"`
	KeyHash        string   `json:"-"`
	Status         string   `json:"status"`
	LastUsedAt     *int64   `json:"last_used_at,omitempty"`
	CreatedAt      int64    `json:"created_at"`
}
