package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aiagentrag/ragserver/internal/rag"
	"github.com/aiagentrag/ragserver/internal/vectorstore"
)

// runSearch performs a similarity search and prints the matches.
func runSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	k := fs.Int("k", rag.DefaultTopK, "number of results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		return fmt.Errorf("usage: ragserver search <query> [-k N]")
	}

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

	results, err := a.pipeline.Search(ctx, query, *k, nil)
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	for i, r := range results {
		fmt.Fprintf(os.Stdout, "%d. [%.3f] %s\n", i+1, r.Similarity, resultSource(r))
		fmt.Fprintf(os.Stdout, "   %s\n", truncate(r.Chunk.Content, 200))
	}
	return nil
}

func resultSource(r vectorstore.Result) string {
	if name := r.Chunk.Metadata[vectorstore.MetaFileName]; name != "" {
		return name
	}
	if url := r.Chunk.Metadata[vectorstore.MetaSourceURL]; url != "" {
		return url
	}
	return r.Chunk.ID
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
