package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"jobmate/hiring-service/internal/config"
	"jobmate/hiring-service/internal/db"
	"jobmate/hiring-service/internal/events"
	"jobmate/hiring-service/internal/identity"
	"jobmate/hiring-service/internal/jobs"
	"jobmate/hiring-service/internal/kanban"
	"jobmate/hiring-service/internal/pipeline"
	"jobmate/hiring-service/internal/prompt"
	"jobmate/hiring-service/internal/resume"
	"jobmate/hiring-service/internal/screening"
	"jobmate/hiring-service/internal/seed"
	"jobmate/hiring-service/internal/session"
	"jobmate/hiring-service/internal/store"
	"jobmate/hiring-service/internal/store/memory"
	"jobmate/hiring-service/internal/store/postgres"
	"jobmate/hiring-service/internal/store/sqlite"
)

// app is the fully wired service graph shared by every command.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *store.Store
	pipelines *pipeline.Registry
	catalog   *jobs.Catalog
	identity  *identity.Resolver
	kanban    *kanban.Service
	screening *screening.Service
	sessions  *session.Issuer
	closers   []func()
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, logger: newLogger(cfg.LogLevel)}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	st, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	a.store = st

	pub, err := a.openPublisher(ctx)
	if err != nil {
		return nil, err
	}

	exec, closer, err := prompt.New(ctx, prompt.Settings{
		Provider:     cfg.Prompt.Provider,
		Model:        cfg.Prompt.Model,
		OllamaURL:    cfg.Prompt.OllamaURL,
		GeminiAPIKey: cfg.Prompt.GeminiAPIKey,
		Timeout:      cfg.Prompt.Timeout,
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("prompt provider: %w", err)
	}
	a.closers = append(a.closers, func() { _ = closer.Close() })

	a.pipelines = pipeline.NewRegistry(st.Pipelines, a.logger)
	a.catalog = jobs.NewCatalog(st.Jobs, st.Pipelines, jobs.WithPublisher(pub), jobs.WithLogger(a.logger))
	a.identity = identity.NewResolver(st.Applicants, identity.WithLogger(a.logger))
	a.kanban = kanban.NewService(st, a.identity, kanban.WithPublisher(pub), kanban.WithLogger(a.logger))

	opts := []screening.Option{
		screening.WithFetcher(resume.NewFetcher(nil)),
		screening.WithPublisher(pub),
		screening.WithLogger(a.logger),
	}
	if cfg.AutoAdvance {
		opts = append(opts, screening.WithAutoAdvance(a.kanban))
	}
	a.screening = screening.NewService(st, exec, opts...)
	a.sessions = session.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)

	if cfg.SeedDemo {
		if _, err := seed.Load(ctx, st, seed.Options{AdminPassword: cfg.AdminPassword, Logger: a.logger}); err != nil {
			return nil, err
		}
	}
	ok = true
	return a, nil
}

func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	switch a.cfg.Store {
	case config.StorePostgres:
		log.Println("[hiring-service] Connecting to PostgreSQL…")
		pool, err := db.NewPostgresPool(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("PostgreSQL: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		if err := db.MigratePostgres(ctx, pool); err != nil {
			return nil, err
		}
		log.Println("[hiring-service] PostgreSQL connected ✓")
		return store.FromBackend(postgres.New(pool)), nil

	case config.StoreSQLite:
		conn, err := db.OpenSQLite(ctx, a.cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("SQLite: %w", err)
		}
		a.closers = append(a.closers, func() { _ = conn.Close() })
		log.Printf("[hiring-service] SQLite opened at %s ✓", a.cfg.SQLitePath)
		return store.FromBackend(sqlite.New(conn, a.logger)), nil

	default:
		return store.FromBackend(memory.New(memory.WithLatency(a.cfg.SimulatedLatency))), nil
	}
}

// openPublisher returns a Redis publisher when REDIS_URL is set and a
// log-only publisher otherwise.
func (a *app) openPublisher(ctx context.Context) (events.Publisher, error) {
	if a.cfg.RedisURL == "" {
		return events.LogPublisher{Logger: a.logger}, nil
	}
	log.Println("[hiring-service] Connecting to Redis…")
	pub, err := events.DialRedis(ctx, a.cfg.RedisURL, a.logger)
	if err != nil {
		return nil, fmt.Errorf("Redis: %w", err)
	}
	a.closers = append(a.closers, func() { _ = pub.Close() })
	log.Println("[hiring-service] Redis connected ✓")
	return pub, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func loadApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return newApp(ctx, cfg)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
