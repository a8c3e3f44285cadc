package models

type WebhookEndpoint struct {
	ID              string   `json:"id"`
	OrganizationID  string   `json:"organization_id"`
	URL             string   `json:"url"`
	Events          []string `json:"events"` // JSON array in DB
	Secret          string   `json:"-"`
	LastDeliveredAt *int64   `json:"last_delivered_at,omitempty"`
	CreatedAt       int64    `json:"created_at"`
}

type RequestLog struct {
	ID               string `json:"id"`
	OrganizationID   string `json:"organization_id"`
	APIKeyID         string `json:"api_key_id"`
	Endpoint         string `json:"endpoint"`
	Status           int    `json:"status"`
	LatencyMs        int64  `json:"latency_ms"`
	RequestID        string `json:"request_id"`
	Env              string `json:"env"`
	Wallet           string `json:"wallet,omitempty"`
	BodyRedacted     string `json:"body_redacted,omitempty"`
	ResponseRedacted string `json:"response_redacted,omitempty"`
	CreatedAt        int64  `json:"created_at"`
}
