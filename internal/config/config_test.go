package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"SETTINGS_PATH", "LISTEN_ADDR", "REDIS_URL", "MESSAGES_DIR", "PUZZLE_DB_URL", "DOWNLOAD_TIMEOUT_SEC"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.SettingsPath != "settings.json" || cfg.ListenAddr != DefaultListenAddr {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.PuzzleDBURL != DefaultPuzzleDBURL || cfg.DownloadTimeout != DefaultDownloadTimeout {
		t.Fatalf("unexpected download defaults: %+v", cfg)
	}
	if cfg.RedisURL != "" || cfg.MessagesDir != "" {
		t.Fatalf("optional values should be empty: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SETTINGS_PATH", " /etc/puzzles/settings.yaml ")
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("REDIS_URL", "redis://localhost:6379/2")
	t.Setenv("MESSAGES_DIR", "/etc/puzzles/messages")
	t.Setenv("PUZZLE_DB_URL", "http://mirror.local/puzzles.csv")
	t.Setenv("DOWNLOAD_TIMEOUT_SEC", "30")

	cfg := Load()
	if cfg.SettingsPath != "/etc/puzzles/settings.yaml" || cfg.ListenAddr != ":9000" {
		t.Fatalf("unexpected: %+v", cfg)
	}
	if cfg.RedisURL != "redis://localhost:6379/2" || cfg.MessagesDir != "/etc/puzzles/messages" {
		t.Fatalf("unexpected: %+v", cfg)
	}
	if cfg.PuzzleDBURL != "http://mirror.local/puzzles.csv" || cfg.DownloadTimeout != 30*time.Second {
		t.Fatalf("unexpected: %+v", cfg)
	}
}

func TestLoadBadTimeoutKeepsDefault(t *testing.T) {
	for _, v := range []string{"soon", "-5", "0"} {
		t.Setenv("DOWNLOAD_TIMEOUT_SEC", v)
		if got := Load().DownloadTimeout; got != DefaultDownloadTimeout {
			t.Fatalf("DOWNLOAD_TIMEOUT_SEC=%q gave %v", v, got)
		}
	}
}
