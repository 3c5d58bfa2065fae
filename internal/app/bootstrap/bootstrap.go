package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	consensusservice "classconsensus/contexts/classroom/consensus-service"
	"classconsensus/contexts/classroom/consensus-service/adapters/memory"
	postgresadapter "classconsensus/contexts/classroom/consensus-service/adapters/postgres"
	"classconsensus/contexts/classroom/consensus-service/application/workers"
	"classconsensus/contexts/classroom/consensus-service/domain/entities"
	"classconsensus/contexts/classroom/consensus-service/domain/services"
	"classconsensus/contexts/classroom/consensus-service/ports"
	"classconsensus/internal/platform/config"
	"classconsensus/internal/platform/db"
	"classconsensus/internal/platform/httpserver"
	"classconsensus/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	// embedded is set when the API runs on the in-memory store and therefore
	// relays its own outbox.
	embedded *eventPipeline
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	pipeline     *eventPipeline
	pollInterval time.Duration
	logger       *slog.Logger
}

type eventPipeline struct {
	relay    workers.OutboxRelay
	results  workers.ResultNotificationConsumer
	interval time.Duration
}

// store is the persistence wiring shared by the API and the worker.
type store struct {
	repository ports.Repository
	outbox     ports.OutboxRepository
	clock      ports.Clock
	idGen      ports.IDGenerator
	postgres   *db.Postgres
}

func BuildAPI(ctx context.Context) (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return BuildAPIFromConfig(ctx, cfg)
}

func BuildAPIFromConfig(ctx context.Context, cfg config.Config) (*APIApp, error) {
	logger := NewLogger(cfg, os.Stdout).With("service", cfg.ServiceName, "process", "api")

	secret, err := ResolveTASecret(cfg)
	if err != nil {
		return nil, err
	}
	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	module := consensusservice.NewModule(consensusservice.Dependencies{
		Repository: st.repository,
		Clock:      st.clock,
		IDGen:      st.idGen,
		TASecret:   secret,
		Categories: entities.NewCategories(cfg.Categories),
		Logger:     logger,
	})
	if err := module.Registry.InitializeClassroom(ctx, cfg.ProfessorAddress); err != nil {
		_ = st.postgres.Close()
		return nil, fmt.Errorf("initialize classroom: %w", err)
	}

	app := &APIApp{
		server:   httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort)),
		postgres: st.postgres,
		logger:   logger,
	}
	if st.postgres == nil {
		pipeline, err := newEventPipeline(cfg, st.outbox, st.clock, logger)
		if err != nil {
			return nil, err
		}
		app.embedded = pipeline
	}
	return app, nil
}

func BuildWorker(ctx context.Context) (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return BuildWorkerFromConfig(ctx, cfg)
}

func BuildWorkerFromConfig(ctx context.Context, cfg config.Config) (*WorkerApp, error) {
	logger := NewLogger(cfg, os.Stdout).With("service", cfg.ServiceName, "process", "worker")
	if !cfg.UsesPostgres() {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	pipeline, err := newEventPipeline(cfg, st.outbox, st.clock, logger)
	if err != nil {
		_ = st.postgres.Close()
		return nil, err
	}
	return &WorkerApp{
		postgres:     st.postgres,
		pipeline:     pipeline,
		pollInterval: cfg.OutboxPollInterval,
		logger:       logger,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts the server down.
func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"embedded_relay", a.embedded != nil,
	)
	if a.embedded != nil {
		if err := a.embedded.start(ctx); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	}
}

func (a *APIApp) Close() error {
	return a.postgres.Close()
}

func (w *WorkerApp) Run(ctx context.Context) error {
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)
	if err := w.pipeline.results.Start(ctx); err != nil {
		return err
	}
	return w.pipeline.relay.Run(ctx, w.pollInterval)
}

func (w *WorkerApp) Close() error {
	return w.postgres.Close()
}

func newEventPipeline(
	cfg config.Config,
	outbox ports.OutboxRepository,
	clock ports.Clock,
	logger *slog.Logger,
) (*eventPipeline, error) {
	bus, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}
	relay := consensusservice.NewOutboxRelay(outbox, bus, cfg.OutboxBatchSize, logger)
	relay.Clock = clock
	return &eventPipeline{
		relay: relay,
		results: workers.ResultNotificationConsumer{
			Subscriber: bus,
			Logger:     logger,
		},
		interval: cfg.OutboxPollInterval,
	}, nil
}

func (p *eventPipeline) start(ctx context.Context) error {
	if err := p.results.Start(ctx); err != nil {
		return err
	}
	go func() {
		_ = p.relay.Run(ctx, p.interval)
	}()
	return nil
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (store, error) {
	if !cfg.UsesPostgres() {
		logger.Warn("POSTGRES_DSN not set, using in-memory store",
			"event", "bootstrap_memory_store",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		mem := memory.NewStore()
		return store{
			repository: mem,
			outbox:     mem,
			clock:      mem,
			idGen:      mem,
		}, nil
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return store{}, err
	}
	if err := pg.Migrate(ctx, postgresadapter.Models()...); err != nil {
		_ = pg.Close()
		return store{}, err
	}
	repo := postgresadapter.NewRepository(pg.DB, logger)
	return store{
		repository: repo,
		outbox:     repo,
		clock:      postgresadapter.SystemClock{},
		idGen:      postgresadapter.UUIDGenerator{},
		postgres:   pg,
	}, nil
}

// ResolveTASecret returns the configured TA secret digest. A plaintext
// TA_SECRET is hashed the same way the published digest was produced.
func ResolveTASecret(cfg config.Config) (services.SecretDigest, error) {
	if cfg.TASecretHash != "" {
		digest, err := services.ParseSecretDigest(cfg.TASecretHash)
		if err != nil {
			return services.SecretDigest{}, fmt.Errorf("parse TA_SECRET_HASH: %w", err)
		}
		return digest, nil
	}
	if cfg.TASecret == "" {
		return services.SecretDigest{}, errors.New("TA_SECRET or TA_SECRET_HASH is required")
	}
	return services.DigestSecret(cfg.TASecret), nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
