// Package cmd provides CLI commands for ragserver.
//
// Commands:
//   - serve: HTTP API server exposing the RAG pipeline
//   - add: ingest text, files, directories, or URLs
//   - search: similarity search over the vector store
//   - ask: grounded question answering
//   - stats: vector store statistics
//
// Signal handling and graceful shutdown are implemented via context
// cancellation.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
)

// Execute is the main entry point for the ragserver CLI.
func Execute() error {
	// Initialize logger once at entry point
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if len(os.Args) < 2 {
		runHelp()
		return nil
	}

	switch os.Args[1] {
	case "serve":
		return runServe()
	case "add":
		return runAdd(os.Args[2:])
	case "search":
		return runSearch(os.Args[2:])
	case "ask":
		return runAsk(os.Args[2:])
	case "stats":
		return runStats()
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("ragserver - Retrieval-augmented generation over your documents")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  ragserver serve                    Start the HTTP API server")
	fmt.Println("  ragserver add --text <content>     Ingest raw text")
	fmt.Println("  ragserver add --file <path>        Ingest a single file")
	fmt.Println("  ragserver add --dir <path>         Ingest a directory")
	fmt.Println("  ragserver add --url <url>          Ingest a web page")
	fmt.Println("  ragserver search <query> [-k N]    Similarity search")
	fmt.Println("  ragserver ask <question> [-k N]    Ask a grounded question")
	fmt.Println("  ragserver stats                    Show vector store statistics")
	fmt.Println("  ragserver --version                Show version information")
	fmt.Println("  ragserver --help                   Show this help")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  OPENAI_API_KEY     Required: OpenAI API key")
	fmt.Println("  OPENAI_BASE_URL    Optional: OpenAI-compatible endpoint")
	fmt.Println("  VECTOR_STORE_TYPE  pgvector (default) or local")
	fmt.Println("  DEBUG              Optional: Enable debug logging")
	fmt.Println()
	fmt.Println("See .env.example for the full configuration schema.")
}
