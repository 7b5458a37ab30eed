package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"citizenpress/internal/service"
)

// Health reports 200 when the database answers and every table exists, 503 otherwise.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	report, err := h.HealthService.Check(r.Context())
	if err != nil {
		h.Log.Warn("health check failed", zap.Error(err))
		WriteJSON(w, service.HealthReport{Status: "unavailable"}, http.StatusServiceUnavailable)
		return
	}

	status := http.StatusOK
	if len(report.MissingTables) > 0 {
		status = http.StatusServiceUnavailable
	}

	WriteJSON(w, report, status)
}
