package repositories

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"hash402/internal/platform/models"
)

type WebhookRepository struct {
	db *sql.DB
}

func NewWebhookRepository(db *sql.DB) *WebhookRepository {
	return &WebhookRepository{db: db}
}

func (r *WebhookRepository) Create(endpoint *models.WebhookEndpoint) error {
	if endpoint.ID == "" {
		endpoint.ID = "wh_" + uuid.NewString()
	}
	endpoint.CreatedAt = time.Now().Unix()

	eventsJSON, err := json.Marshal(endpoint.Events)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		INSERT INTO webhook_endpoints (id, organization_id, url, events, secret, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, endpoint.ID, endpoint.OrganizationID, endpoint.URL, string(eventsJSON), endpoint.Secret, endpoint.CreatedAt)
	return translateErr(err)
}

func (r *WebhookRepository) ListByOrg(orgID string) ([]*models.WebhookEndpoint, error) {
	rows, err := r.db.Query(`
		SELECT id, organization_id, url, events, secret, last_delivered_at, created_at
		FROM webhook_endpoints WHERE organization_id = ? ORDER BY created_at DESC
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var endpoints []*models.WebhookEndpoint
	for rows.Next() {
		var e models.WebhookEndpoint
		var eventsStr string
		var lastDeliveredAt sql.NullInt64

		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.URL, &eventsStr, &e.Secret, &lastDeliveredAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		if lastDeliveredAt.Valid {
			e.LastDeliveredAt = &lastDeliveredAt.Int64
		}
		if err := json.Unmarshal([]byte(eventsStr), &e.Events); err != nil {
			return nil, err
		}
		endpoints = append(endpoints, &e)
	}
	return endpoints, rows.Err()
}

// DeleteForOrg removes an endpoint only if the caller's organization
// owns it; returns false when nothing matched.
func (r *WebhookRepository) DeleteForOrg(id, orgID string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM webhook_endpoints WHERE id = ? AND organization_id = ?`, id, orgID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *WebhookRepository) UpdateLastDelivered(id string, timestamp int64) error {
	_, err := r.db.Exec(`UPDATE webhook_endpoints SET last_delivered_at = ? WHERE id = ?`, timestamp, id)
	return err
}
