// Package api exposes the RAG pipeline over a JSON HTTP API.
//
// Routes are registered on a net/http ServeMux with method+path
// patterns; the middleware stack (outermost first) is
// recovery → requestID → logging → rate limit.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/aiagentrag/ragserver/internal/log"
	"github.com/aiagentrag/ragserver/internal/rag"
	"github.com/aiagentrag/ragserver/internal/vectorstore"
)

// Pipeline is the RAG pipeline contract the API depends on.
// Satisfied by *rag.Pipeline.
type Pipeline interface {
	AddText(ctx context.Context, content string, metadata map[string]string) ([]string, error)
	AddFile(ctx context.Context, path string) ([]string, error)
	AddURL(ctx context.Context, url string) ([]string, error)
	Search(ctx context.Context, query string, k int, filter map[string]string) ([]vectorstore.Result, error)
	Ask(ctx context.Context, question string, k int) (string, []vectorstore.Result, error)
	DeleteBySource(ctx context.Context, source string) (int, error)
	Stats(ctx context.Context) (*rag.Stats, error)
}

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger     log.Logger
	Pipeline   Pipeline // Required
	TrustProxy bool     // Trust X-Real-IP/X-Forwarded-For headers
	RateBurst  int      // Rate limiter burst size per IP (0 = default 60)
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates an API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Pipeline == nil {
		return nil, errors.New("pipeline is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	dh := &documentsHandler{pipeline: cfg.Pipeline, logger: logger}
	sh := &searchHandler{pipeline: cfg.Pipeline, logger: logger}
	qh := &queryHandler{pipeline: cfg.Pipeline, logger: logger}
	st := &statsHandler{pipeline: cfg.Pipeline, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/documents", dh.addText)
	mux.HandleFunc("POST /api/v1/documents/file", dh.addFile)
	mux.HandleFunc("POST /api/v1/documents/url", dh.addURL)
	mux.HandleFunc("DELETE /api/v1/documents", dh.deleteBySource)
	mux.HandleFunc("GET /api/v1/search", sh.search)
	mux.HandleFunc("POST /api/v1/query", qh.query)
	mux.HandleFunc("GET /api/v1/stats", st.stats)

	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 60
	}
	rl := newRateLimiter(1.0, burst)

	// Middleware stack (outermost first):
	//   Recovery → RequestID → Logging → RateLimit → Routes
	// RequestID must be before Logging so request_id is available in
	// log attributes.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, cfg.TrustProxy, logger)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Health probes bypass the middleware stack so monitoring traffic
	// is never rate limited.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health)
	topMux.Handle("GET /ready", readiness(cfg.Pipeline))
	topMux.Handle("/", handler)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
