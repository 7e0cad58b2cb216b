package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds service configuration.
type Config struct {
	DatabaseURL    string
	ServerAddr     string
	SessionTTL     time.Duration
	AllowedOrigins []string
}

// Load reads configuration from environment.
func Load() (*Config, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		user := getenv("POSTGRES_USER", "puzzle_hub")
		pass := getenv("POSTGRES_PASSWORD", "puzzle_hub_pass")
		db := getenv("POSTGRES_DB", "puzzle_hub")
		host := getenv("POSTGRES_HOST", "localhost")
		port := getenv("POSTGRES_PORT", "5432")
		sslmode := getenv("DATABASE_SSLMODE", "disable")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, pass, host, port, db, sslmode)
	}
	addr := getenv("SERVER_ADDR", "0.0.0.0:8080")
	ttl := parseDuration(getenv("SESSION_TTL", "720h"), 720*time.Hour)
	origins := splitCSV(os.Getenv("ALLOWED_ORIGINS"))

	return &Config{
		DatabaseURL:    dsn,
		ServerAddr:     addr,
		SessionTTL:     ttl,
		AllowedOrigins: origins,
	}, nil
}

func getenv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func parseDuration(val string, def time.Duration) time.Duration {
	if val == "" {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(val string) []string {
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
