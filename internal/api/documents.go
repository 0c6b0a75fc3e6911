package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aiagentrag/ragserver/internal/document"
	"github.com/aiagentrag/ragserver/internal/log"
)

// maxDocumentBody caps ingestion request bodies. Raw text documents are
// the largest payload the API accepts.
const maxDocumentBody = 10 << 20 // 10 MB

// documentsHandler serves the ingestion and deletion endpoints.
type documentsHandler struct {
	pipeline Pipeline
	logger   log.Logger
}

type addTextRequest struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}

type addFileRequest struct {
	Path string `json:"path"`
}

type addURLRequest struct {
	URL string `json:"url"`
}

type addResponse struct {
	IDs   []string `json:"ids"`
	Count int      `json:"count"`
}

type deleteRequest struct {
	Source string `json:"source"`
}

type deleteResponse struct {
	Deleted int `json:"deleted"`
}

// addText handles POST /api/v1/documents.
func (h *documentsHandler) addText(w http.ResponseWriter, r *http.Request) {
	var req addTextRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "missing_content", "content is required")
		return
	}

	ids, err := h.pipeline.AddText(r.Context(), req.Content, req.Metadata)
	if err != nil {
		h.logger.Error("adding text", "error", err)
		writeError(w, http.StatusInternalServerError, "ingest_failed", "failed to ingest content")
		return
	}

	writeJSON(w, http.StatusCreated, addResponse{IDs: ids, Count: len(ids)})
}

// addFile handles POST /api/v1/documents/file.
func (h *documentsHandler) addFile(w http.ResponseWriter, r *http.Request) {
	var req addFileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "missing_path", "path is required")
		return
	}

	ids, err := h.pipeline.AddFile(r.Context(), req.Path)
	if err != nil {
		if errors.Is(err, document.ErrUnsupportedFormat) {
			writeError(w, http.StatusUnprocessableEntity, "unsupported_format", err.Error())
			return
		}
		h.logger.Error("adding file", "path", req.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "ingest_failed", "failed to ingest file")
		return
	}

	writeJSON(w, http.StatusCreated, addResponse{IDs: ids, Count: len(ids)})
}

// addURL handles POST /api/v1/documents/url.
func (h *documentsHandler) addURL(w http.ResponseWriter, r *http.Request) {
	var req addURLRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "missing_url", "url is required")
		return
	}

	ids, err := h.pipeline.AddURL(r.Context(), req.URL)
	if err != nil {
		h.logger.Error("adding url", "url", req.URL, "error", err)
		writeError(w, http.StatusBadGateway, "fetch_failed", "failed to fetch or ingest URL")
		return
	}

	writeJSON(w, http.StatusCreated, addResponse{IDs: ids, Count: len(ids)})
}

// deleteBySource handles DELETE /api/v1/documents.
func (h *documentsHandler) deleteBySource(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Source == "" {
		writeError(w, http.StatusBadRequest, "missing_source", "source is required")
		return
	}

	deleted, err := h.pipeline.DeleteBySource(r.Context(), req.Source)
	if err != nil {
		h.logger.Error("deleting by source", "source", req.Source, "error", err)
		writeError(w, http.StatusInternalServerError, "delete_failed", "failed to delete documents")
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{Deleted: deleted})
}

// decodeBody reads a size-capped JSON body into dst, writing the error
// response itself on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return false
	}
	return true
}
