package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/compscan/compscan/internal/config"
	"github.com/compscan/compscan/internal/database"
	"github.com/compscan/compscan/internal/diff"
	"github.com/compscan/compscan/internal/embedding"
	"github.com/compscan/compscan/internal/log"
	"github.com/compscan/compscan/internal/pipeline"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a monitoring pass over all configured competitors",
		Long: `Run captures every configured competitor page, compares it against the
most recent archived baseline, and writes a dated markdown intelligence
report into the reports directory.

A competitor without a prior baseline is recorded as newly monitored; its
captured text becomes the baseline for the next run. Failures are
isolated per competitor and listed in the report's error summary.

Examples:
  # Run with the .compscan config in the current or home directory
  compscan run

  # Use a custom configuration file
  compscan run -c myconfig.yaml

  # Override the similarity threshold for this run
  compscan run --threshold 0.9

  # Print the rendered report to stdout as well
  compscan run --print`,
		Args: cobra.NoArgs,
		RunE: runRunCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .compscan in current or home directory)")
	cmd.Flags().Float64P("threshold", "t", 0,
		"Similarity threshold in (0,1]; scores below it are strategic shifts")
	cmd.Flags().StringP("reports-dir", "r", "",
		"Directory for archived reports (overrides config file)")
	cmd.Flags().IntP("concurrency", "b", 0,
		"Maximum number of competitors processed concurrently")
	cmd.Flags().BoolP("print", "p", false,
		"Print the rendered markdown report to stdout")
	cmd.Flags().Bool("no-db", false,
		"Skip indexing the run in the history database")

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, _ []string) error {
	// A .env file may carry the embedding API key during development.
	_ = godotenv.Load()

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging. The secure handler keeps API keys out
	// of log output.
	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	printReport, err := cmd.Flags().GetBool("print")
	if err != nil {
		return err
	}

	return runMonitoring(ctx, cmd, cfg, logger, printReport)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the config file, environment, and
// cobra command flags, in increasing order of precedence.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user explicitly specified a config file path, error if not
	// found. Otherwise search the usual locations.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := cfg.ApplyFile(file); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
		cfg.ConfigFilePath = configPath
	} else if explicitConfigPath {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	cfg.ApplyEnvOverrides()

	// Flags override the file.
	if threshold, err := cmd.Flags().GetFloat64("threshold"); err != nil {
		return nil, err
	} else if threshold != 0 {
		cfg.Threshold = threshold
	}

	if reportsDir, err := cmd.Flags().GetString("reports-dir"); err != nil {
		return nil, err
	} else if reportsDir != "" {
		cfg.ReportsDir = reportsDir
	}

	if concurrency, err := cmd.Flags().GetInt("concurrency"); err != nil {
		return nil, err
	} else if concurrency != 0 {
		cfg.Concurrency = concurrency
	}

	if noDB, err := cmd.Flags().GetBool("no-db"); err != nil {
		return nil, err
	} else if noDB {
		cfg.SaveToDB = false
	}

	return cfg, nil
}

// newEmbedder creates the embedding provider selected by the config.
func newEmbedder(ctx context.Context, cfg *config.Config) (embedding.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "gemini":
		return embedding.NewGeminiEmbedder(ctx, cfg.Embedding.APIKey, cfg.Embedding.Model)
	case "http":
		return embedding.NewHTTPEmbedder(cfg.Embedding.Endpoint, cfg.Embedding.APIKey, cfg.EmbedTimeout), nil
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnknownEmbeddingProvider, cfg.Embedding.Provider)
	}
}

// runMonitoring executes the monitoring run.
func runMonitoring(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, printReport bool) error {
	logger.Info("starting monitoring run",
		"competitors", len(cfg.Entities),
		"threshold", cfg.Threshold,
		"reportsDir", cfg.ReportsDir,
		"saveToDB", cfg.SaveToDB,
	)

	embedder, err := newEmbedder(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedding provider: %w", err)
	}

	engine := diff.NewEngine(embedder,
		diff.WithThreshold(cfg.Threshold),
		diff.WithEmbedTimeout(cfg.EmbedTimeout),
	)

	opts := []pipeline.RunnerOption{pipeline.WithRunnerLogger(logger)}
	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
		opts = append(opts, pipeline.WithRunDB(db))
	}

	runner := pipeline.NewRunner(cfg, engine, opts...)
	result, err := runner.Run(ctx)
	if err != nil {
		if result != nil && result.Status == pipeline.StatusNotPersisted {
			// The run itself finished; surface the report before
			// reporting the archive failure.
			fmt.Fprintln(cmd.OutOrStdout(), result.Markdown)
		}
		return err
	}

	if printReport {
		fmt.Fprintln(cmd.OutOrStdout(), result.Markdown)
	}

	summary := result.Report.Summary
	fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", result.Path)
	fmt.Fprintf(cmd.OutOrStdout(),
		"Competitors: %d  Strategic shifts: %d  Minor updates: %d  Newly monitored: %d  Errors: %d\n",
		summary.Entities, summary.StrategicShifts, summary.MinorUpdates, summary.NewlyMonitored, summary.Errors)

	for _, name := range result.Report.StrategicShiftEntities() {
		fmt.Fprintf(cmd.OutOrStdout(), "  strategic shift: %s\n", name)
	}
	if result.Status == pipeline.StatusCompletedWithErrors {
		for _, e := range result.Report.Errors {
			fmt.Fprintf(cmd.OutOrStdout(), "  failed: %s (%s): %s\n", e.Entity, e.Stage, e.Message)
		}
	}

	return nil
}
