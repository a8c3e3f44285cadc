package repositories

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"hash402/internal/platform/models"
)

type RequestLogRepository struct {
	db *sql.DB
}

func NewRequestLogRepository(db *sql.DB) *RequestLogRepository {
	return &RequestLogRepository{db: db}
}

func (r *RequestLogRepository) Insert(entry *models.RequestLog) error {
	if entry.ID == "" {
		entry.ID = "log_" + uuid.NewString()
	}
	if entry.CreatedAt == 0 {
		entry.CreatedAt = time.Now().Unix()
	}

	_, err := r.db.Exec(`
		INSERT INTO request_logs (id, organization_id, api_key_id, endpoint, status, latency_ms, request_id, env, wallet, body_redacted, response_redacted, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.OrganizationID, entry.APIKeyID, entry.Endpoint, entry.Status, entry.LatencyMs,
		entry.RequestID, entry.Env, entry.Wallet, entry.BodyRedacted, entry.ResponseRedacted, entry.CreatedAt)
	return err
}

func (r *RequestLogRepository) ListByOrg(orgID string, limit, offset int) ([]*models.RequestLog, error) {
	rows, err := r.db.Query(`
		SELECT id, organization_id, api_key_id, endpoint, status, latency_ms, request_id, env, wallet, body_redacted, response_redacted, created_at
		FROM request_logs WHERE organization_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?
	`, orgID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.RequestLog
	for rows.Next() {
		var l models.RequestLog
		if err := rows.Scan(&l.ID, &l.OrganizationID, &l.APIKeyID, &l.Endpoint, &l.Status, &l.LatencyMs,
			&l.RequestID, &l.Env, &l.Wallet, &l.BodyRedacted, &l.ResponseRedacted, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}

// HasAnchor reports whether a validate response for the given
// tx_hash402 was ever logged for this organization.
func (r *RequestLogRepository) HasAnchor(orgID, txHash string) (bool, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM request_logs
		WHERE organization_id = ? AND response_redacted LIKE '%' || ? || '%'
	`, orgID, txHash).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type UsageStats struct {
	Requests24h   int     `json:"requests_24h"`
	AvgLatencyMs  int     `json:"avg_latency_ms"`
	ErrorRate     float64 `json:"error_rate"`
	RequestsMonth int     `json:"requests_month"`
}

func (r *RequestLogRepository) Stats(orgID string, now time.Time) (*UsageStats, error) {
	yesterday := now.Add(-24 * time.Hour).Unix()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Unix()

	stats := &UsageStats{}
	var avgLatency sql.NullFloat64
	var errors24h int

	err := r.db.QueryRow(`
		SELECT COUNT(*), AVG(latency_ms), COALESCE(SUM(CASE WHEN status >= 400 THEN 1 ELSE 0 END), 0)
		FROM request_logs WHERE organization_id = ? AND created_at >= ?
	`, orgID, yesterday).Scan(&stats.Requests24h, &avgLatency, &errors24h)
	if err != nil {
		return nil, err
	}
	if avgLatency.Valid {
		stats.AvgLatencyMs = int(avgLatency.Float64 + 0.5)
	}
	if stats.Requests24h > 0 {
		stats.ErrorRate = float64(errors24h) / float64(stats.Requests24h) * 100
	}

	err = r.db.QueryRow(`
		SELECT COUNT(*) FROM request_logs WHERE organization_id = ? AND created_at >= ?
	`, orgID, monthStart).Scan(&stats.RequestsMonth)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
