package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	DBPath        string
	LogLevel      string
	RemoteURL     string
	PlayerID      string
	AutoPush      bool
	RemoteTimeout time.Duration

	MirrorAddr   string
	MirrorDBPath string
}

// Load reads .env (if present) and the process environment.
func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	dbPath := getEnv("NRPG_DB_PATH", "")
	if dbPath == "" {
		p, err := DefaultDBPath()
		if err != nil {
			return nil, err
		}
		dbPath = p
	}

	timeout, err := time.ParseDuration(getEnv("NRPG_REMOTE_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("NRPG_REMOTE_TIMEOUT: %w", err)
	}
	autoPush, err := strconv.ParseBool(getEnv("NRPG_AUTO_PUSH", "false"))
	if err != nil {
		return nil, fmt.Errorf("NRPG_AUTO_PUSH: %w", err)
	}

	cfg := &Config{
		DBPath:        dbPath,
		LogLevel:      getEnv("NRPG_LOG_LEVEL", "warn"),
		RemoteURL:     getEnv("NRPG_REMOTE_URL", ""),
		PlayerID:      getEnv("NRPG_PLAYER_ID", "local"),
		AutoPush:      autoPush,
		RemoteTimeout: timeout,
		MirrorAddr:    getEnv("NRPG_MIRROR_ADDR", ":8787"),
		MirrorDBPath:  getEnv("NRPG_MIRROR_DB_PATH", "neon-mirror.db"),
	}

	logger.Debug().
		Str("db_path", cfg.DBPath).
		Str("log_level", cfg.LogLevel).
		Str("remote_url", cfg.RemoteURL).
		Str("player_id", cfg.PlayerID).
		Bool("auto_push", cfg.AutoPush).
		Dur("remote_timeout", cfg.RemoteTimeout).
		Msg("configuration loaded")

	return cfg, nil
}

// SyncEnabled reports whether a remote is configured.
func (c *Config) SyncEnabled() bool {
	return c.RemoteURL != ""
}

// DefaultDBPath returns the default local database location.
func DefaultDBPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(homeDir, ".neon-rpg.db"), nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
