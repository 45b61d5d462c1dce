// Package config resolves runtime configuration from defaults and CFAPREP_*
// environment variables. Command-line flags are applied on top by cmd.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cfaprep/cfaprep/internal/progress"
)

const appName = "cfaprep"

// Supported store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all runtime configuration.
type Config struct {
	// ServerURL is the remote progress service. Empty runs offline against
	// the local bank and store.
	ServerURL string
	// Token is the bearer token for ServerURL.
	Token string

	DBDriver string
	// DBDSN is the SQLite file path or Postgres connection string. Empty
	// means the default SQLite path.
	DBDSN string
	// DataDir holds the local question bank.
	DataDir string

	HTTPAddr    string
	CORSOrigins []string

	// Timeout bounds a single remote request including retries.
	Timeout time.Duration
	// ReportTimeout bounds one background result submission.
	ReportTimeout time.Duration
	Retry         progress.RetryConfig

	LogPath  string
	LogLevel string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DBDriver:      DriverSQLite,
		HTTPAddr:      ":8080",
		CORSOrigins:   []string{"http://localhost:3000", "http://localhost:8080"},
		Timeout:       30 * time.Second,
		ReportTimeout: 15 * time.Second,
		Retry:         progress.DefaultRetryConfig(),
		LogLevel:      "info",
	}
}

// FromEnv builds a Config from environment variables, falling back to
// defaults for unset or unparsable values.
func FromEnv() Config {
	cfg := DefaultConfig()

	cfg.ServerURL = envOr("CFAPREP_SERVER", cfg.ServerURL)
	cfg.Token = envOr("CFAPREP_TOKEN", cfg.Token)
	cfg.DBDriver = envOr("CFAPREP_DB_DRIVER", cfg.DBDriver)
	cfg.DBDSN = envOr("CFAPREP_DB", cfg.DBDSN)
	cfg.DataDir = envOr("CFAPREP_DATA", cfg.DataDir)
	cfg.HTTPAddr = envOr("CFAPREP_HTTP_ADDR", cfg.HTTPAddr)
	cfg.CORSOrigins = csvOr("CFAPREP_CORS_ORIGINS", cfg.CORSOrigins)
	cfg.Timeout = durationOr("CFAPREP_TIMEOUT", cfg.Timeout)
	cfg.ReportTimeout = durationOr("CFAPREP_REPORT_TIMEOUT", cfg.ReportTimeout)
	cfg.Retry.MaxAttempts = intOr("CFAPREP_RETRY_ATTEMPTS", cfg.Retry.MaxAttempts)
	cfg.LogPath = envOr("CFAPREP_LOG", cfg.LogPath)
	cfg.LogLevel = envOr("CFAPREP_LOG_LEVEL", cfg.LogLevel)

	return cfg
}

// Offline reports whether the local backend serves the session.
func (c Config) Offline() bool { return c.ServerURL == "" }

// Validate checks the values that cannot be defaulted.
func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("db driver %q needs a DSN (--db or CFAPREP_DB)", c.DBDriver)
		}
	default:
		return fmt.Errorf("unsupported db driver %q (want %s or %s)", c.DBDriver, DriverSQLite, DriverPostgres)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	return nil
}

// ResolveDataDir returns DataDir or, when unset, $XDG_DATA_HOME/cfaprep/bank.
func (c Config) ResolveDataDir() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}
	dir, err := xdgDir("XDG_DATA_HOME", ".local/share")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "bank"), nil
}

// ResolveLogPath returns LogPath or, when unset,
// $XDG_STATE_HOME/cfaprep/cfaprep.log.
func (c Config) ResolveLogPath() (string, error) {
	if c.LogPath != "" {
		return c.LogPath, nil
	}
	dir, err := xdgDir("XDG_STATE_HOME", ".local/state")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, appName+".log"), nil
}

func xdgDir(env, fallback string) (string, error) {
	if d := os.Getenv(env); d != "" {
		return d, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, filepath.FromSlash(fallback)), nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func intOr(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return n
}

func durationOr(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(k))
	if err != nil {
		return def
	}
	return d
}

func csvOr(k string, def []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
