package cmd

import (
	"context"
	"fmt"

	"github.com/aiagentrag/ragserver/db"
	"github.com/aiagentrag/ragserver/internal/config"
	"github.com/aiagentrag/ragserver/internal/llm"
	"github.com/aiagentrag/ragserver/internal/log"
	"github.com/aiagentrag/ragserver/internal/rag"
	"github.com/aiagentrag/ragserver/internal/vectorstore"
)

// app holds the wired components shared by every command.
type app struct {
	cfg      *config.Config
	logger   log.Logger
	store    vectorstore.Store
	pipeline *rag.Pipeline
}

// setup loads configuration and wires the LLM client, vector store,
// and RAG pipeline. For the pgvector backend it also runs the schema
// migrations so a fresh database is usable immediately.
func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.ValidateOpenAI(); err != nil {
		return nil, err
	}

	logger, err := log.New(log.Config{
		Level: log.ParseLevel(cfg.LogLevel),
		File:  cfg.LogFile,
	})
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	if cfg.UsesPgvector() {
		if err := db.Migrate(cfg.PostgresURL()); err != nil {
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	client := llm.New(cfg, logger)

	store, err := vectorstore.New(ctx, cfg, client, logger)
	if err != nil {
		return nil, fmt.Errorf("opening vector store: %w", err)
	}

	pipeline, err := rag.New(rag.Config{
		EmbeddingModel: cfg.EmbeddingModel,
		ChunkSize:      cfg.ChunkSize,
		ChunkOverlap:   cfg.ChunkOverlap,
	}, store, client, nil, logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("creating pipeline: %w", err)
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		pipeline: pipeline,
	}, nil
}

// Close releases the vector store.
func (a *app) Close() error {
	return a.store.Close()
}
