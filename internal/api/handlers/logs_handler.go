package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	apiContext "hash402/internal/api/context"
	apiErrors "hash402/internal/pkg/errors"
	"hash402/internal/platform/auth"
	"hash402/internal/platform/models"
	"hash402/internal/platform/repositories"
)

type LogsHandler struct {
	repo *repositories.RequestLogRepository
}

func NewLogsHandler(repo *repositories.RequestLogRepository) *LogsHandler {
	return &LogsHandler{repo: repo}
}

func (h *LogsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	logs, err := h.repo.ListByOrg(claims.OrganizationID, limit, offset)
	if err != nil {
		apiErrors.WriteError(w, http.StatusInternalServerError, apiErrors.ErrCodeInternal, "Failed to fetch logs", "")
		return
	}
	if logs == nil {
		logs = []*models.RequestLog{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"logs": logs})
}
