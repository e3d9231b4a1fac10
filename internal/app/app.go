package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"ContentMachine/internal/config"
	"ContentMachine/internal/infrastructure/collector"
	"ContentMachine/internal/infrastructure/llm"
	"ContentMachine/internal/infrastructure/scheduler"
	"ContentMachine/internal/infrastructure/storage"
	"ContentMachine/internal/infrastructure/telegram"
	"ContentMachine/internal/logging"
	"ContentMachine/internal/ports"
	"ContentMachine/internal/scanner"
	"ContentMachine/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg          config.Config
	orchestrator *usecase.Orchestrator
	store        ports.Store
	db           *sql.DB
	logger       *slog.Logger
}

// New builds every adapter from cfg. With no database DSN, published content
// is kept in memory for the life of the process.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := scanner.NewRegistry()
	collector.RegisterAll(registry, nil, collector.Credentials{
		GitHubToken:      cfg.Credentials.GitHubToken,
		StackExchangeKey: cfg.Credentials.StackExchangeKey,
	})

	generator := llm.NewClient(llm.Config{
		Endpoint:     cfg.LLM.Endpoint,
		Model:        cfg.LLM.Model,
		APIKey:       cfg.LLM.APIKey,
		SystemPrompt: cfg.LLM.SystemPrompt,
		Timeout:      cfg.LLM.Timeout,
	})

	a := &Application{cfg: cfg, logger: baseLogger}

	if cfg.Database.DSN != "" {
		db, err := storage.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		pg := storage.NewPostgresStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		a.db, a.store = db, pg
	} else {
		baseLogger.Warn("no database configured, published content is kept in memory")
		a.store = storage.NewMemoryStore()
	}

	var notifier ports.Notifier
	if tg := telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID); tg.Configured() {
		notifier = tg
	}

	a.orchestrator = usecase.NewOrchestrator(usecase.Deps{
		Registry:  registry,
		Generator: generator,
		Store:     a.store,
		Notifier:  notifier,
		Logger:    logging.Component(baseLogger, "orchestrator"),
	}, usecase.Options{
		Sources: sourceSpecs(cfg.Sources),
		Workers: cfg.Generation.Workers,
		Author:  cfg.Generation.Author,
		SiteURL: cfg.Generation.SiteURL,
	})

	return a, nil
}

// Start launches one run and returns its handle.
func (a *Application) Start(ctx context.Context, req usecase.RunRequest) *usecase.Run {
	return a.orchestrator.Start(ctx, req)
}

// Schedule starts a run on every configured interval until ctx is done.
func (a *Application) Schedule(ctx context.Context, req usecase.RunRequest) error {
	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval)
	sched := usecase.NewScheduler(driver, a.orchestrator, req, logging.Component(a.logger, "scheduler"))
	if err := sched.Start(ctx); err != nil {
		return err
	}
	a.logger.Info("scheduler started", "interval", a.cfg.Scheduler.Interval)

	<-ctx.Done()
	return sched.Stop(context.WithoutCancel(ctx))
}

// SelectSources returns the configured sources named in names, in
// configuration order. No names selects every source.
func (a *Application) SelectSources(names []string) ([]usecase.SourceSpec, error) {
	all := sourceSpecs(a.cfg.Sources)
	if len(names) == 0 {
		return all, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	var out []usecase.SourceSpec
	for _, spec := range all {
		if wanted[spec.Name] {
			out = append(out, spec)
			delete(wanted, spec.Name)
		}
	}
	for n := range wanted {
		return nil, fmt.Errorf("source %q is not configured", n)
	}
	return out, nil
}

// Close releases the database connection, if any.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func sourceSpecs(cfg []config.SourceConfig) []usecase.SourceSpec {
	specs := make([]usecase.SourceSpec, 0, len(cfg))
	for _, src := range cfg {
		specs = append(specs, usecase.SourceSpec{
			Name:      src.Name,
			Collector: src.Collector,
			FocusHint: src.FocusHint,
			Limit:     src.Limit,
			Options:   src.Options,
		})
	}
	return specs
}
