package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"MediaCurator/internal/config"
	"MediaCurator/internal/dedup"
	"MediaCurator/internal/infrastructure/export"
	"MediaCurator/internal/infrastructure/feeds"
	"MediaCurator/internal/infrastructure/llm"
	"MediaCurator/internal/infrastructure/mail"
	"MediaCurator/internal/infrastructure/scheduler"
	"MediaCurator/internal/infrastructure/search"
	"MediaCurator/internal/infrastructure/storage"
	"MediaCurator/internal/logging"
	"MediaCurator/internal/ports"
	"MediaCurator/internal/resolve"
	"MediaCurator/internal/rules"
	"MediaCurator/internal/scoring"
	"MediaCurator/internal/usecase"
)

// Application wires configuration into the curation pipeline and its
// lifecycle.
type Application struct {
	cfg       config.Config
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	db        *sql.DB
	logger    *slog.Logger
}

// New builds a runnable application. A missing model API key is a hard
// startup error; a missing database or search key only disables the
// corresponding stage.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	if cfg.Anthropic.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key is not configured")
	}
	model := llm.NewClient(cfg.Anthropic)

	var db *sql.DB
	var archive ports.Archive
	if cfg.Database.DSN != "" {
		opened, err := storage.Open(cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		db = opened
		archive = storage.NewArchiveRepository(db)
	} else {
		baseLogger.Warn("database not configured, archive and duplicate detection disabled")
	}

	var searcher ports.Searcher
	if cfg.Search.APIKey != "" {
		searcher = search.NewBraveClient(cfg.Search)
	} else {
		baseLogger.Warn("search api key not configured, search-context resolution disabled")
	}

	source := feeds.NewRSSSource(cfg.Feeds, cfg.Newsletter.MaxPerFeed, baseLogger.With("component", "feeds"))
	scorer := scoring.New(model, cfg.Themes, baseLogger.With("component", "scoring"))

	var detector *dedup.Detector
	if archive != nil {
		detector = dedup.New(archive, dedup.DefaultThreshold, baseLogger.With("component", "dedup"))
	}

	resolver := resolve.NewChain(baseLogger.With("component", "resolve"),
		resolve.FeedDescription{MinLen: cfg.Resolver.MinDescriptionLen},
		resolve.NewFulltext(nil, cfg.Resolver.MinFulltextLen, cfg.Resolver.GoodFulltextLen, cfg.Resolver.MaxContentLen),
		&resolve.SearchContext{
			Searcher:    searcher,
			MaxResults:  cfg.Search.MaxResults,
			QuerySuffix: cfg.Search.QuerySuffix,
		},
	)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:       source,
		Scorer:       scorer,
		Detector:     detector,
		Resolver:     resolver,
		Summarizer:   model,
		Exporter:     export.NewJSONWriter(cfg.Newsletter.OutputDir),
		Notifier:     mail.NewNotifier(cfg.Mail, cfg.Newsletter.URL, baseLogger.With("component", "mail")),
		Archive:      archive,
		Rules:        rules.NewFileStore(cfg.Rules.Path),
		Region:       cfg.Newsletter.Region,
		MinScore:     cfg.Newsletter.MinScore,
		ScoreDelay:   cfg.Newsletter.ScoreDelay,
		SummaryDelay: cfg.Newsletter.SummaryDelay,
		Logger:       baseLogger.With("component", "pipeline"),
	})

	var sched *usecase.Scheduler
	if cfg.Scheduler.CronExpression != "" {
		driver := scheduler.NewCronScheduler(
			cfg.Scheduler.CronExpression,
			cfg.Scheduler.Location(),
			baseLogger.With("component", "scheduler"),
		)
		sched = usecase.NewScheduler(driver, pipeline)
	}

	return &Application{
		cfg:       cfg,
		pipeline:  pipeline,
		scheduler: sched,
		db:        db,
		logger:    baseLogger,
	}, nil
}

// Run executes a single curation pass for the current day.
func (a *Application) Run(ctx context.Context) error {
	now := time.Now().In(a.cfg.Scheduler.Location())
	return a.pipeline.Run(ctx, now)
}

// RunScheduled starts recurring runs and blocks until the context ends.
func (a *Application) RunScheduled(ctx context.Context) error {
	if a.scheduler == nil {
		return a.Run(ctx)
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.scheduler.Stop(stopCtx)
}

// Close releases long-lived resources.
func (a *Application) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
