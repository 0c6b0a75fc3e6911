package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// runStats prints vector store statistics.
func runStats() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			a.logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	stats, err := a.pipeline.Stats(ctx)
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Collection:      %s\n", stats.Collection)
	fmt.Fprintf(os.Stdout, "Documents:       %d\n", stats.Documents)
	fmt.Fprintf(os.Stdout, "Embedding model: %s\n", stats.EmbeddingModel)
	fmt.Fprintf(os.Stdout, "Backend:         %s\n", a.cfg.VectorStoreType)
	return nil
}
