package cmd

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"

	"github.com/koopa0/secondbrain/db"
	"github.com/koopa0/secondbrain/internal/chat"
	"github.com/koopa0/secondbrain/internal/config"
	"github.com/koopa0/secondbrain/internal/database"
	"github.com/koopa0/secondbrain/internal/gemini"
	"github.com/koopa0/secondbrain/internal/ingest"
	"github.com/koopa0/secondbrain/internal/knowledge"
	"github.com/koopa0/secondbrain/internal/log"
	"github.com/koopa0/secondbrain/internal/search"
	"github.com/koopa0/secondbrain/internal/temporal"
)

// app holds the wired application components shared by all commands.
type app struct {
	cfg    *config.Config
	pool   *pgxpool.Pool
	client *gemini.Client

	pipeline     *ingest.Pipeline
	orchestrator *chat.Orchestrator
}

// setup loads configuration, migrates the schema, and wires the
// component graph. Callers must Close the returned app.
func setup(ctx context.Context, logger log.Logger) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := db.Migrate(cfg.PostgresURL(), logger); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	pool, err := database.NewPool(ctx, cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	client, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:          cfg.GeminiAPIKey,
		ChatModel:       cfg.ChatModel,
		ClassifierModel: cfg.ClassifierModel,
		EmbedModel:      cfg.EmbedModel,
	}, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	store := knowledge.NewStore(pool, logger)
	engine := search.NewExhaustive(store, logger)
	classifier := temporal.NewClassifier(client, logger)
	retry := gemini.DefaultRetryPolicy()

	pipeline := ingest.New(store, client, ingest.Options{
		WindowSize: cfg.ChunkSize,
		Overlap:    cfg.ChunkOverlap,
		Workers:    cfg.IngestWorkers,
		EmbedRate:  rate.Limit(cfg.EmbedRate),
		Retry:      retry,
	}, logger)

	orchestrator := chat.NewOrchestrator(client, classifier, engine, cfg.RetrieveLimit, retry, logger)

	return &app{
		cfg:          cfg,
		pool:         pool,
		client:       client,
		pipeline:     pipeline,
		orchestrator: orchestrator,
	}, nil
}

// Close releases held resources.
func (a *app) Close() {
	a.pool.Close()
}
