package api

import (
	"net/http"

	"github.com/aiagentrag/ragserver/internal/log"
)

// statsHandler reports vector store statistics.
type statsHandler struct {
	pipeline Pipeline
	logger   log.Logger
}

// stats handles GET /api/v1/stats.
func (h *statsHandler) stats(w http.ResponseWriter, r *http.Request) {
	s, err := h.pipeline.Stats(r.Context())
	if err != nil {
		h.logger.Error("stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, "stats_failed", "failed to get store statistics")
		return
	}
	writeJSON(w, http.StatusOK, s)
}
