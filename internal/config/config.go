// Package config resolves the runtime configuration from the environment
// and builds the logger and store it names.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/villageclock/internal/countdown"
	"github.com/sandeepkv93/villageclock/internal/model"
	"github.com/sandeepkv93/villageclock/internal/storage"
)

const (
	StoreSQLite = "sqlite"
	StoreFile   = "file"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type RuntimeConfig struct {
	Store                string
	DBPath               string
	StateDir             string
	Accounts             []model.AccountConfig
	HorizonHours         int
	ClusterMinutes       int
	Display              countdown.DisplayPolicy
	Timezone             string
	TickSeconds          int
	SchedulerBuffer      int
	LogFile              string
	LogLevel             string
	DesktopNotifications bool
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		Store:           StoreSQLite,
		DBPath:          filepath.Join(".villageclock", "villageclock.db"),
		StateDir:        filepath.Join(".villageclock", "state"),
		Accounts:        []model.AccountConfig{{Name: "main"}},
		HorizonHours:    24,
		ClusterMinutes:  60,
		Display:         countdown.DisplaySameDay,
		TickSeconds:     30,
		SchedulerBuffer: 64,
		LogFile:         filepath.Join(".villageclock", "villageclock.log"),
		LogLevel:        "info",
	}
}

// RuntimeConfigFromEnv overlays VILLAGECLOCK_* variables on base. Unset or
// unparsable numeric values keep the base value.
func RuntimeConfigFromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v := getEnvString("VILLAGECLOCK_STORE"); v != "" {
		cfg.Store = strings.ToLower(v)
	}
	if v := getEnvString("VILLAGECLOCK_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := getEnvString("VILLAGECLOCK_STATE_DIR"); v != "" {
		cfg.StateDir = v
	}
	if v := getEnvString("VILLAGECLOCK_ACCOUNTS"); v != "" {
		if accounts := ParseAccounts(v); len(accounts) > 0 {
			cfg.Accounts = accounts
		}
	}
	if v, ok := getEnvInt("VILLAGECLOCK_HORIZON_HOURS"); ok && v > 0 {
		cfg.HorizonHours = v
	}
	if v, ok := getEnvInt("VILLAGECLOCK_CLUSTER_MINUTES"); ok && v >= 0 {
		cfg.ClusterMinutes = v
	}
	if v := getEnvString("VILLAGECLOCK_DISPLAY"); v != "" {
		if p, err := countdown.ParseDisplayPolicy(v); err == nil {
			cfg.Display = p
		}
	}
	if v := getEnvString("VILLAGECLOCK_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v, ok := getEnvInt("VILLAGECLOCK_TICK_SECONDS"); ok && v > 0 {
		cfg.TickSeconds = v
	}
	if v, ok := getEnvInt("VILLAGECLOCK_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	if v := getEnvString("VILLAGECLOCK_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := getEnvString("VILLAGECLOCK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := getEnvBool("VILLAGECLOCK_DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	return cfg
}

// ParseAccounts reads "name[:avatar],..." skipping blanks and repeated names.
func ParseAccounts(raw string) []model.AccountConfig {
	out := make([]model.AccountConfig, 0)
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		name, avatar, _ := strings.Cut(part, ":")
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, model.AccountConfig{Name: name, Avatar: strings.TrimSpace(avatar)})
	}
	return out
}

func (c RuntimeConfig) Validate() error {
	if c.Store != StoreSQLite && c.Store != StoreFile {
		return fmt.Errorf("%w: store %q", ErrInvalidConfig, c.Store)
	}
	if len(c.Accounts) == 0 {
		return fmt.Errorf("%w: no accounts configured", ErrInvalidConfig)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone, falling back to time.Local.
func (c RuntimeConfig) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

func (c RuntimeConfig) Horizon() time.Duration {
	return time.Duration(c.HorizonHours) * time.Hour
}

func (c RuntimeConfig) ClusterWindow() time.Duration {
	return time.Duration(c.ClusterMinutes) * time.Minute
}

func (c RuntimeConfig) TickInterval() time.Duration {
	return time.Duration(c.TickSeconds) * time.Second
}

func (c RuntimeConfig) Sections() []model.SectionConfig {
	return model.DefaultSections()
}

// OpenStore opens the configured backend.
func (c RuntimeConfig) OpenStore() (storage.Store, error) {
	switch c.Store {
	case StoreFile:
		return storage.OpenFileStore(c.StateDir)
	case StoreSQLite:
		return storage.OpenSQLite(c.DBPath)
	default:
		return nil, fmt.Errorf("%w: store %q", ErrInvalidConfig, c.Store)
	}
}

// NewLogger returns a JSON slog logger writing to LogFile. The TUI owns
// stdout, so an empty LogFile discards output.
func (c RuntimeConfig) NewLogger() (*slog.Logger, io.Closer, error) {
	opts := &slog.HandlerOptions{Level: parseLevel(c.LogLevel)}
	if strings.TrimSpace(c.LogFile) == "" {
		return slog.New(slog.NewJSONHandler(io.Discard, opts)), io.NopCloser(nil), nil
	}
	if dir := filepath.Dir(c.LogFile); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewJSONHandler(f, opts)), f, nil
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnvString(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}

func getEnvInt(name string) (int, bool) {
	raw := getEnvString(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.ToLower(getEnvString(name))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
