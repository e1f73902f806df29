package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/park285/offline-puzzles/internal/settings"
)

const (
	DefaultListenAddr      = "127.0.0.1:7878"
	DefaultPuzzleDBURL     = "https://database.lichess.org/lichess_db_puzzle.csv.zst"
	DefaultDownloadTimeout = 10 * time.Minute
)

// AppConfig is process-level configuration. User-facing settings live in the
// settings file named by SettingsPath.
type AppConfig struct {
	SettingsPath string
	ListenAddr   string

	RedisURL    string
	MessagesDir string

	PuzzleDBURL     string
	DownloadTimeout time.Duration
}

// Load reads the environment. Malformed numbers keep their defaults.
func Load() *AppConfig {
	cfg := &AppConfig{
		SettingsPath:    settings.DefaultPath,
		ListenAddr:      DefaultListenAddr,
		PuzzleDBURL:     DefaultPuzzleDBURL,
		DownloadTimeout: DefaultDownloadTimeout,
	}

	if v := strings.TrimSpace(os.Getenv("SETTINGS_PATH")); v != "" {
		cfg.SettingsPath = v
	}
	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))

	if v := strings.TrimSpace(os.Getenv("PUZZLE_DB_URL")); v != "" {
		cfg.PuzzleDBURL = v
	}
	if v := strings.TrimSpace(os.Getenv("DOWNLOAD_TIMEOUT_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DownloadTimeout = time.Duration(n) * time.Second
		}
	}
	return cfg
}
