package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/aiagentrag/ragserver/internal/log"
	"github.com/aiagentrag/ragserver/internal/vectorstore"
)

const (
	maxQueryLength = 1000
	maxTopK        = 100
)

// searchHandler serves similarity search over the vector store.
type searchHandler struct {
	pipeline Pipeline
	logger   log.Logger
}

type searchItem struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
	Score    float32           `json:"score"`
}

// search handles GET /api/v1/search.
// Query parameters: q (required), k, plus any metadata filter pairs.
func (h *searchHandler) search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing_query", "query parameter 'q' is required")
		return
	}
	if len(query) > maxQueryLength {
		writeError(w, http.StatusBadRequest, "query_too_long", "query must be 1000 characters or fewer")
		return
	}

	k, ok := parseTopK(w, r.URL.Query().Get("k"))
	if !ok {
		return
	}

	// Remaining query parameters act as metadata filter pairs.
	filter := make(map[string]string)
	for key, values := range r.URL.Query() {
		if key == "q" || key == "k" || len(values) == 0 {
			continue
		}
		filter[key] = values[0]
	}
	if len(filter) == 0 {
		filter = nil
	}

	results, err := h.pipeline.Search(r.Context(), query, k, filter)
	if err != nil {
		h.logger.Error("search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "search_failed", "failed to search documents")
		return
	}

	items := make([]searchItem, len(results))
	for i, res := range results {
		items[i] = toSearchItem(res)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
	})
}

func toSearchItem(res vectorstore.Result) searchItem {
	return searchItem{
		ID:       res.Chunk.ID,
		Content:  res.Chunk.Content,
		Metadata: res.Chunk.Metadata,
		Score:    res.Similarity,
	}
}

// parseTopK parses the k parameter, writing the error response itself
// on failure. Empty input selects 0, which the pipeline replaces with
// its default.
func parseTopK(w http.ResponseWriter, raw string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	k, err := strconv.Atoi(raw)
	if err != nil || k < 1 || k > maxTopK {
		writeError(w, http.StatusBadRequest, "invalid_k", "k must be an integer between 1 and 100")
		return 0, false
	}
	return k, true
}
