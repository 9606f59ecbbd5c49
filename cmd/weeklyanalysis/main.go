package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"MediaCurator/internal/config"
	"MediaCurator/internal/infrastructure/storage"
	"MediaCurator/internal/learning"
	"MediaCurator/internal/logging"
	"MediaCurator/internal/rules"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	if err := run(cfg, logger); err != nil {
		logger.Error("analysis stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	if cfg.Database.DSN == "" {
		return fmt.Errorf("database dsn is not configured")
	}
	db, err := storage.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	store := rules.NewFileStore(cfg.Rules.Path)
	previous, err := store.Load()
	if err != nil {
		return fmt.Errorf("load current rules: %w", err)
	}

	learner := learning.New(
		storage.NewFeedbackRepository(db),
		learning.Config{
			Window:            time.Duration(cfg.Learning.WindowDays) * 24 * time.Hour,
			MinKeywordSamples: cfg.Learning.MinKeywordSamples,
			MinSourceSamples:  cfg.Learning.MinSourceSamples,
			MinTotalFeedback:  cfg.Learning.MinTotalFeedback,
			HighThreshold:     cfg.Learning.HighThreshold,
			LowThreshold:      cfg.Learning.LowThreshold,
			StrongHigh:        cfg.Learning.StrongHigh,
			StrongLow:         cfg.Learning.StrongLow,
			Themes:            cfg.Themes,
		},
		logger.With("component", "learning"),
	)

	ctx := context.Background()
	next, changed, err := learner.Regenerate(ctx, time.Now().In(cfg.Scheduler.Location()), previous)
	if err != nil {
		return fmt.Errorf("regenerate rules: %w", err)
	}
	if !changed {
		logger.Info("rule set unchanged", "version", previous.Version)
		return nil
	}

	if err := store.Save(next); err != nil {
		return fmt.Errorf("save rules: %w", err)
	}
	logger.Info("rule set replaced", "version", next.Version, "rules", len(next.Rules))
	return nil
}
