package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sandeepkv93/villageclock/internal/app"
	"github.com/sandeepkv93/villageclock/internal/clock"
	"github.com/sandeepkv93/villageclock/internal/config"
	"github.com/sandeepkv93/villageclock/internal/storage"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "villageclock",
	Short: "Track upgrade timers across game accounts",
	Long: `villageclock keeps per-account worker slots with countdowns, applies the
daily time reductions of special helper tasks, and shows one agenda of
everything finishing soon.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

var (
	storeFlag    string
	dbPathFlag   string
	stateDirFlag string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", "", "storage backend: sqlite or file (overrides VILLAGECLOCK_STORE)")
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "", "sqlite database path (overrides VILLAGECLOCK_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&stateDirFlag, "state-dir", "", "file store directory (overrides VILLAGECLOCK_STATE_DIR)")

	rootCmd.AddCommand(agendaCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(deductionsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env is everything a command needs once configuration is resolved.
type env struct {
	cfg    config.RuntimeConfig
	logger *slog.Logger
	store  storage.Store
	app    *app.App
	logs   io.Closer
}

func loadConfig() (config.RuntimeConfig, error) {
	cfg := config.RuntimeConfigFromEnv(config.DefaultRuntimeConfig())
	if storeFlag != "" {
		cfg.Store = storeFlag
	}
	if dbPathFlag != "" {
		cfg.DBPath = dbPathFlag
	}
	if stateDirFlag != "" {
		cfg.StateDir = stateDirFlag
	}
	return cfg, cfg.Validate()
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, logs, err := cfg.NewLogger()
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		_ = logs.Close()
		return nil, err
	}
	store, err := cfg.OpenStore()
	if err != nil {
		_ = logs.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	a := app.New(app.OptionsFromConfig(cfg), store, clock.System{Location: loc}, logger)
	if err := a.Load(ctx); err != nil {
		_ = store.Close()
		_ = logs.Close()
		return nil, err
	}
	if res, err := a.CheckDeductions(ctx); err != nil {
		logger.Error("startup deduction check failed", slog.Any("error", err))
	} else if res.Dirty() {
		logger.Info("startup deductions applied", slog.Int("count", len(res.Applied)), slog.Int("minutes", res.TotalMinutes()))
	}
	logger.Info("villageclock ready", slog.String("store", cfg.Store), slog.Int("accounts", len(cfg.Accounts)))
	return &env{cfg: cfg, logger: logger, store: store, app: a, logs: logs}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.logger.Warn("close store", slog.Any("error", err))
	}
	_ = e.logs.Close()
}

// withEnv opens the runtime for one command invocation.
func withEnv(fn func(ctx context.Context, e *env, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()
		return fn(ctx, e, cmd, args)
	}
}
