package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robalobadob/numbergame/internal/grid"
)

// Config is everything the server reads from the environment.
type Config struct {
	Port         string
	LogLevel     string
	Env          string // "production" enables secure cookies and JSON logs
	DBPath       string
	JWTSecret    string
	TokenTTL     time.Duration
	CookieName   string
	ClientOrigin string
	DailySalt    string
	Grid         grid.Config
}

// Production reports whether APP_ENV is production.
func (c Config) Production() bool { return c.Env == "production" }

// FromEnv loads configuration from environment variables.
// Falls back to defaults for anything unset; grid settings are validated.
func FromEnv() (Config, error) {
	cfg := Config{
		Port:         getEnv("PORT", "5175"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Env:          getEnv("APP_ENV", "development"),
		DBPath:       getEnv("DB_PATH", "./data/numbergame.db"),
		JWTSecret:    getEnv("JWT_SECRET", "dev_secret_change_me"),
		TokenTTL:     time.Duration(getEnvInt("JWT_EXPIRES_DAYS", 14)) * 24 * time.Hour,
		CookieName:   getEnv("COOKIE_NAME", "numbergame_token"),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		DailySalt:    getEnv("DAILY_SALT", "local_dev_salt"),
		Grid:         grid.DefaultConfig(),
	}

	if val := getEnvInt("GRID_ROWS", 0); val != 0 {
		cfg.Grid.Rows = val
	}
	if val := getEnvInt("GRID_COLS", 0); val != 0 {
		cfg.Grid.Cols = val
	}
	if val := getEnvInt("DRAW_MIN", 0); val != 0 {
		cfg.Grid.Min = val
	}
	if val := getEnvInt("DRAW_MAX", 0); val != 0 {
		cfg.Grid.Max = val
	}
	if err := cfg.Grid.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.Production() && cfg.JWTSecret == "dev_secret_change_me" {
		return Config{}, fmt.Errorf("config: JWT_SECRET must be set in production")
	}
	return cfg, nil
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getEnvInt parses k as an int, returning def when unset or malformed.
func getEnvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
