package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apiContext "hash402/internal/api/context"
	apiErrors "hash402/internal/pkg/errors"
	"hash402/internal/platform/auth"
	"hash402/internal/platform/repositories"
)

// Per-request mock price used for the spend figure.
const requestUnitPrice = 0.01

type AdminHandler struct {
	logRepo *repositories.RequestLogRepository
}

func NewAdminHandler(logRepo *repositories.RequestLogRepository) *AdminHandler {
	return &AdminHandler{logRepo: logRepo}
}

func (h *AdminHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	stats, err := h.logRepo.Stats(claims.OrganizationID, time.Now())
	if err != nil {
		apiErrors.WriteError(w, http.StatusInternalServerError, apiErrors.ErrCodeInternal, "Failed to fetch metrics", "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"requests_24h":   stats.Requests24h,
		"avg_latency_ms": stats.AvgLatencyMs,
		"error_rate":     fmt.Sprintf("%.2f", stats.ErrorRate),
		"requests_month": stats.RequestsMonth,
		"spend_month":    fmt.Sprintf("%.2f", float64(stats.RequestsMonth)*requestUnitPrice),
		"currency":       "X402",
	})
}
