package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// runAdd ingests content into the vector store.
// Exactly one of --text, --file, --dir, --url must be given.
func runAdd(args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	text := fs.String("text", "", "raw text content to ingest")
	file := fs.String("file", "", "path of a file to ingest")
	dir := fs.String("dir", "", "path of a directory to ingest")
	url := fs.String("url", "", "URL of a web page to ingest")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sources := 0
	for _, v := range []string{*text, *file, *dir, *url} {
		if v != "" {
			sources++
		}
	}
	if sources != 1 {
		return fmt.Errorf("exactly one of --text, --file, --dir, --url is required")
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

	var ids []string
	switch {
	case *text != "":
		ids, err = a.pipeline.AddText(ctx, *text, nil)
	case *file != "":
		ids, err = a.pipeline.AddFile(ctx, *file)
	case *dir != "":
		ids, err = a.pipeline.AddDirectory(ctx, *dir)
	case *url != "":
		ids, err = a.pipeline.AddURL(ctx, *url)
	}
	if err != nil {
		return fmt.Errorf("ingesting content: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Added %d chunks\n", len(ids))
	return nil
}
