// Package config reads process configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	defaultPort    = "10000"
	defaultRoom    = "baden"
	defaultMaxLogs = 2000
	defaultStatic  = "public"
)

type Config struct {
	Addr        string // listen address, ":" + PORT
	DefaultRoom string // room used when the attach request names none
	LogToken    string // shared secret for /logs; empty means unprotected
	MaxLogs     int    // audit log capacity
	StaticDir   string // directory holding the controller page
	Env         string // "dev" switches zap to development config
}

// FromEnv builds a Config from the environment. Missing or malformed
// values fall back to defaults; nothing here is fatal.
func FromEnv() Config {
	return Config{
		Addr:        ":" + envOr("PORT", defaultPort),
		DefaultRoom: envOr("DEFAULT_ROOM", defaultRoom),
		LogToken:    os.Getenv("LOG_TOKEN"),
		MaxLogs:     envIntOr("MAX_LOGS", defaultMaxLogs),
		StaticDir:   envOr("STATIC_DIR", defaultStatic),
		Env:         os.Getenv("APP_ENV"),
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}
