package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/embellish/internal/boundary"
	"github.com/UnknownOlympus/embellish/internal/config"
	"github.com/UnknownOlympus/embellish/internal/metrics"
	"github.com/UnknownOlympus/embellish/internal/repository"
	"github.com/UnknownOlympus/embellish/internal/service"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

const pushTimeout = 10 * time.Second

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	code := execute(ctx, newRootCmd(), os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "embellish",
		Short: "Tag bike docks with their council district, community district and borough",
		Long: "Loads the NYC council district, community district and borough boundaries, " +
			"finds the boundaries containing every dock of the input CSV and writes the enriched CSV.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), config.MustLoad(cmd.Flags()))
		},
	}
	config.RegisterFlags(rootCmd.Flags())

	return rootCmd
}

// execute runs the command and returns the process exit code. Errors are
// printed to stderr since some of them occur before a logger exists.
func execute(ctx context.Context, cmd *cobra.Command, args []string, stderr io.Writer) int {
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "embellish:", err)
		return 1
	}

	return 0
}

func run(ctx context.Context, cfg *config.Config) error {
	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env).With(slog.String("run_id", uuid.NewString()))

	// Create a separate registry for the metrics of this run.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	provider, err := boundary.NewProvider(boundary.ProviderConfig{
		Type:      boundary.ProviderType(cfg.ProviderType),
		Timeout:   cfg.HTTPTimeout,
		RateLimit: cfg.RateLimit,
		Logger:    logger,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create boundary provider", "error", err)
		return err
	}

	logger.InfoContext(ctx, "Boundary provider initialized", "type", cfg.ProviderType)

	// Districts are only persisted when a database is configured.
	var repo repository.Interface
	if cfg.Database.Enabled() {
		dtb, errDB := repository.NewDatabase(
			ctx, cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
		)
		if errDB != nil {
			logger.ErrorContext(ctx, "Failed to connect to DB", "error", errDB)
			return errDB
		}
		defer dtb.Close()

		repo = repository.NewRepository(dtb, logger)
	}

	enrichment := service.NewEnrichmentService(logger, provider, repo, appMetrics, service.Options{
		Input:        cfg.Input,
		Output:       cfg.Output,
		Layers:       cfg.Layers,
		SpatialIndex: cfg.SpatialIndex,
		Workers:      cfg.Workers,
		DockKey:      cfg.DockKey,
	})

	report, err := enrichment.Run(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Enrichment failed", "error", err)
	} else {
		logger.InfoContext(ctx, "Enrichment completed",
			"docks", report.Docks,
			"matched", report.Matched,
			"unassigned", report.Unassigned,
			"persisted", report.Persisted,
			"duration", report.Duration,
		)
	}

	if cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
		defer cancel()

		if errPush := metrics.Push(pushCtx, cfg.PushgatewayURL, reg); errPush != nil {
			logger.WarnContext(ctx, "Metrics were not pushed", "error", errPush)
		}
	}

	if err != nil {
		return fmt.Errorf("enrichment run: %w", err)
	}

	return nil
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelWarn,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelError,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
