// CrushCourt - two-player relationship court server
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ashureev/crushcourt/internal/config"
	"github.com/ashureev/crushcourt/internal/points"
	"github.com/ashureev/crushcourt/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "crushcourt",
	Short:         "crushcourt - a two-player court for serves, returns and points",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			slog.Debug("No .env file found, using environment variables")
		}
		return nil
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server (default)",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE:  runMigrate,
}

var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Print both participants' point totals and tiers",
	RunE:  runPoints,
}

var windowDaysFlag int

func init() {
	pointsCmd.Flags().IntVar(&windowDaysFlag, "window-days", 0, "Trailing window in days (default from POINTS_WINDOW_DAYS)")
	rootCmd.AddCommand(serveCmd, migrateCmd, pointsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads configuration and installs the default logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func openStore(ctx context.Context, cfg *config.Config) (*store.SQLiteStore, error) {
	repo, err := store.NewSQLite(ctx, cfg.DBPath, store.Options{
		MaxRetries:     cfg.Retry.DatabaseMaxRetries,
		RetryBaseDelay: cfg.Retry.DatabaseRetryBaseDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	return repo, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	repo, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	v, err := repo.SchemaVersion(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", v, cfg.DBPath)
	return nil
}

func runPoints(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	repo, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	ledger := points.NewService(logger, repo, points.Config{Pair: cfg.Pair(), WindowDays: cfg.Points.WindowDays})
	window := windowDaysFlag
	if window <= 0 {
		window = cfg.Points.WindowDays
	}
	ranking, err := ledger.Ranking(cmd.Context(), window)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "points over the last %d days\n", window)
	for _, st := range ranking {
		fmt.Fprintf(out, "%-8s %6d  %s\n", st.User, st.Total, st.Tier)
	}
	return nil
}

func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
