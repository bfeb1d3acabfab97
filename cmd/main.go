package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/voidframe/internal/adapters/export"
	"github.com/okian/voidframe/internal/adapters/repository"
	app "github.com/okian/voidframe/internal/app"
	"github.com/okian/voidframe/internal/config"
	"github.com/okian/voidframe/internal/domain/aggregate"
	"github.com/okian/voidframe/internal/domain/gapmodel"
	"github.com/okian/voidframe/internal/domain/metric"
	"github.com/okian/voidframe/internal/domain/playfilter"
	"github.com/okian/voidframe/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Load the pre-parsed input tables.
	frames, plays, err := loadDataset(cfg)
	if err != nil {
		log.Error(ctx, "failed to load dataset", logger.Error(err))
		return 1
	}
	log.Info(ctx, "dataset loaded",
		logger.Int("plays", len(plays)),
		logger.Int("tracked_plays", frames.Len()),
	)

	// Open the results store and CSV writer.
	store, err := repository.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		log.Error(ctx, "failed to open results store", logger.Error(err))
		return 1
	}
	defer store.Close()

	writer, err := export.NewCSVWriter(cfg.OutputDir)
	if err != nil {
		log.Error(ctx, "failed to create output dir", logger.Error(err))
		return 1
	}

	pipeline := app.New(
		app.WithLogger(log.Named("pipeline")),
		app.WithFilter(filterFromConfig(cfg)),
		app.WithMetricConfig(metric.Config{
			NearestK:     cfg.NearestK,
			NearestKMan:  cfg.NearestKMan,
			NearestKZone: cfg.NearestKZone,
		}),
		app.WithModelConfig(gapmodel.Config{
			Seed:          cfg.Seed,
			TestFraction:  cfg.TestFraction,
			AccuracyFloor: cfg.AccuracyFloor,
		}),
		app.WithAggregateConfig(aggregate.Config{MinPlays: cfg.MinSampleSize}),
		app.WithWorkers(cfg.Workers),
		app.WithStore(store),
		app.WithExporter(writer),
	)

	result, err := pipeline.Run(ctx, frames, plays)
	if err != nil {
		log.Error(ctx, "pipeline failed", logger.Error(err))
		return 1
	}

	log.Info(ctx, "artifacts written",
		logger.String("run_id", result.RunID.String()),
		logger.String("output_dir", cfg.OutputDir),
		logger.String("database", cfg.DatabasePath),
	)
	return 0
}

// filterFromConfig resolves the named filter and applies overrides.
func filterFromConfig(cfg *config.Config) playfilter.Config {
	var f playfilter.Config
	if cfg.Filter == "neutral" {
		f = playfilter.NeutralSituations()
		f.WinProbMin = cfg.WinProbMin
		f.WinProbMax = cfg.WinProbMax
	} else {
		f = playfilter.BaseSubset()
	}
	if len(cfg.Downs) > 0 {
		f.Downs = cfg.Downs
	}
	return f
}
