package config

import (
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// DSN, when set, is passed to the sqlite3 driver as-is and Path is ignored.
	DSN             string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// WindowStart and WindowEnd bound the precipitation and tobs queries (YYYY-MM-DD, inclusive).
	WindowStart string
	WindowEnd   string
	// WindowTrailingDays > 0 replaces the fixed window with one that starts N
	// days before the newest measurement date and ends on it, both inclusive.
	WindowTrailingDays int

	CORSAllowedOrigins []string
}

// fileConfig is the optional YAML overlay named by CONFIG_FILE.
// Environment variables take precedence over it.
type fileConfig struct {
	AppEnv     string `yaml:"app_env"`
	LogLevel   string `yaml:"log_level"`
	HTTPAddr   string `yaml:"http_addr"`
	SQLitePath string `yaml:"sqlite_path"`
	DSN        string `yaml:"dsn"`
	Window     struct {
		Start        string `yaml:"start"`
		End          string `yaml:"end"`
		TrailingDays int    `yaml:"trailing_days"`
	} `yaml:"window"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

// LoadDotEnv loads variables from a .env file without overriding the ones
// already set. A missing file is not an error.
func LoadDotEnv(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func LoadFromEnv() (Config, error) {
	var file fileConfig
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("CONFIG_FILE %q: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &file); err != nil {
			return Config{}, fmt.Errorf("CONFIG_FILE %q: %w", path, err)
		}
	}

	appEnv := setting("APP_ENV", file.AppEnv, "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(setting("LOG_LEVEL", file.LogLevel, "info"))
	if err != nil {
		return Config{}, err
	}

	httpAddr := setting("HTTP_ADDR", file.HTTPAddr, ":8080")
	dsn := setting("DB_DSN", file.DSN, "")
	path := setting("SQLITE_PATH", file.SQLitePath, "Resources/hawaii.sqlite")

	maxOpenConns, err := parseInt("DB_MAX_OPEN_CONNS", "4")
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := parseInt("DB_MAX_IDLE_CONNS", "2")
	if err != nil {
		return Config{}, err
	}

	connMaxLifetimeStr := setting("DB_CONN_MAX_LIFETIME", "", "0s")
	connMaxLifetime, err := time.ParseDuration(connMaxLifetimeStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME %q: %w", connMaxLifetimeStr, err)
	}

	windowStart := setting("WINDOW_START", file.Window.Start, "2016-08-23")
	windowEnd := setting("WINDOW_END", file.Window.End, "2017-08-23")
	if err := validateWindow(windowStart, windowEnd); err != nil {
		return Config{}, err
	}

	trailingDefault := "0"
	if file.Window.TrailingDays != 0 {
		trailingDefault = strconv.Itoa(file.Window.TrailingDays)
	}
	trailingDays, err := parseInt("WINDOW_TRAILING_DAYS", trailingDefault)
	if err != nil {
		return Config{}, err
	}
	if trailingDays < 0 {
		return Config{}, fmt.Errorf("invalid WINDOW_TRAILING_DAYS %d (must be >= 0)", trailingDays)
	}

	origins := file.CORSAllowedOrigins
	if s := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); s != "" {
		origins = splitList(s)
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return Config{
		AppEnv:             appEnv,
		LogLevel:           level,
		HTTPAddr:           httpAddr,
		DSN:                dsn,
		Path:               path,
		MaxOpenConns:       maxOpenConns,
		MaxIdleConns:       maxIdleConns,
		ConnMaxLifetime:    connMaxLifetime,
		WindowStart:        windowStart,
		WindowEnd:          windowEnd,
		WindowTrailingDays: trailingDays,
		CORSAllowedOrigins: origins,
	}, nil
}

// setting returns the trimmed env value, else the file value, else def.
func setting(key, fromFile, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	if v := strings.TrimSpace(fromFile); v != "" {
		return v
	}
	return def
}

func parseInt(key, def string) (int, error) {
	s := setting(key, "", def)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func validateWindow(start, end string) error {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return fmt.Errorf("invalid WINDOW_START %q (expected YYYY-MM-DD): %w", start, err)
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return fmt.Errorf("invalid WINDOW_END %q (expected YYYY-MM-DD): %w", end, err)
	}
	if s.After(e) {
		return fmt.Errorf("WINDOW_START %s must be <= WINDOW_END %s", start, end)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
