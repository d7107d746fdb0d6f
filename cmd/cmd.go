// Package cmd provides the CLI commands for the second brain.
//
// Commands:
//   - serve: HTTP API server
//   - ingest: ingest a file or URL from the command line
//   - ask: one-shot question against the knowledge base
//
// Signal handling and graceful shutdown are implemented for all
// commands via context cancellation.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/koopa0/secondbrain/internal/log"
)

// Execute is the main entry point for the CLI application.
func Execute() error {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := log.New(log.Config{Level: level})

	return run(os.Args[1:], logger)
}

// run dispatches to the named command. Split from Execute for testing.
func run(args []string, logger log.Logger) error {
	if len(args) < 1 {
		runHelp()
		return nil
	}

	switch args[0] {
	case "serve":
		return runServe(args[1:], logger)
	case "ingest":
		return runIngest(args[1:], logger)
	case "ask":
		return runAsk(args[1:], logger)
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("secondbrain - personal knowledge base with retrieval-augmented chat")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  secondbrain serve [addr]         Start HTTP API server (default: 127.0.0.1:8080)")
	fmt.Println("  secondbrain ingest <file|url>    Ingest a text file or web page")
	fmt.Println("  secondbrain ask <question>       Ask a one-shot question")
	fmt.Println("  secondbrain --version            Show version information")
	fmt.Println("  secondbrain --help               Show this help")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  GEMINI_API_KEY     Required: Gemini API key")
	fmt.Println("  DATABASE_URL       Optional: overrides postgres_* config values")
	fmt.Println("  DEBUG              Optional: enable debug logging")
}
