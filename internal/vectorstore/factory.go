package vectorstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/aiagentrag/ragserver/internal/config"
	"github.com/aiagentrag/ragserver/internal/log"
)

// New creates the vector store backend selected by
// cfg.VectorStoreType.
func New(ctx context.Context, cfg *config.Config, embedder Embedder, logger log.Logger) (Store, error) {
	switch strings.ToLower(cfg.VectorStoreType) {
	case config.StorePgvector:
		return NewPgStore(ctx, cfg.PostgresConnectionString(), embedder, logger)
	case config.StoreLocal:
		return NewLocalStore(cfg.PersistDirectory, embedder, logger)
	default:
		return nil, fmt.Errorf("unknown vector store type %q", cfg.VectorStoreType)
	}
}
