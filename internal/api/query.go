package api

import (
	"net/http"
	"strings"

	"github.com/aiagentrag/ragserver/internal/log"
)

// queryHandler serves grounded question answering.
type queryHandler struct {
	pipeline Pipeline
	logger   log.Logger
}

type queryRequest struct {
	Question string `json:"question"`
	K        int    `json:"k"`
}

type queryResponse struct {
	Answer  string       `json:"answer"`
	Sources []searchItem `json:"sources"`
}

// query handles POST /api/v1/query.
func (h *queryHandler) query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, "missing_question", "question is required")
		return
	}
	if len(question) > maxQueryLength {
		writeError(w, http.StatusBadRequest, "question_too_long", "question must be 1000 characters or fewer")
		return
	}
	if req.K < 0 || req.K > maxTopK {
		writeError(w, http.StatusBadRequest, "invalid_k", "k must be an integer between 1 and 100")
		return
	}

	answer, results, err := h.pipeline.Ask(r.Context(), question, req.K)
	if err != nil {
		h.logger.Error("query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "query_failed", "failed to answer question")
		return
	}

	sources := make([]searchItem, len(results))
	for i, res := range results {
		sources[i] = toSearchItem(res)
	}

	writeJSON(w, http.StatusOK, queryResponse{Answer: answer, Sources: sources})
}
