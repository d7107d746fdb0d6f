package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/koopa0/secondbrain/api"
	"github.com/koopa0/secondbrain/internal/log"
)

// runServe initializes and starts the HTTP API server.
func runServe(args []string, logger log.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := setup(ctx, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.cfg.ServerAddr
	if len(args) > 0 {
		addr = args[0]
	}

	srv := api.NewServer(
		api.NewHealthHandler(a.pool, logger),
		api.NewChatHandler(a.orchestrator, logger),
		api.NewIngestHandler(a.pipeline, http.DefaultClient, logger),
		logger,
	)

	logger.Info("HTTP server ready",
		"addr", addr,
		"api", "/api/*",
		"health", "/health, /ready")

	if err := srv.Run(ctx, addr); err != nil {
		return fmt.Errorf("HTTP server: %w", err)
	}
	return nil
}
