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
)

// runAsk answers a question grounded in the stored documents.
func runAsk(args []string) error {
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	k := fs.Int("k", rag.DefaultTopK, "number of context chunks")
	if err := fs.Parse(args); err != nil {
		return err
	}

	question := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if question == "" {
		return fmt.Errorf("usage: ragserver ask <question> [-k N]")
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

	answer, results, err := a.pipeline.Ask(ctx, question, *k)
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	fmt.Fprintln(os.Stdout, answer)

	if len(results) > 0 {
		fmt.Fprintln(os.Stdout)
		fmt.Fprintln(os.Stdout, "Sources:")
		for i, r := range results {
			fmt.Fprintf(os.Stdout, "  %d. [%.3f] %s\n", i+1, r.Similarity, resultSource(r))
		}
	}
	return nil
}
