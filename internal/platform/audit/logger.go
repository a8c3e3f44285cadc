package audit

import (
	"github.com/rs/zerolog/log"

	"hash402/internal/platform/models"
	"hash402/internal/platform/repositories"
)

// Logger records per-request audit entries for the authorized API
// surface. Writes happen off the request path; a failed insert is
// logged and dropped rather than failing the request.
type Logger struct {
	repo *repositories.RequestLogRepository
}

func NewLogger(repo *repositories.RequestLogRepository) *Logger {
	return &Logger{repo: repo}
}

func (l *Logger) Log(entry *models.RequestLog) {
	go func() {
		if err := l.repo.Insert(entry); err != nil {
			log.Error().Err(err).
				Str("request_id", entry.RequestID).
				Str("endpoint", entry.Endpoint).
				Msg("failed to write request log")
		}
	}()
}
