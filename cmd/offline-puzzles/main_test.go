package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/park285/offline-puzzles/internal/settings"
	"github.com/park285/offline-puzzles/internal/theme"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_TO_FILE", "false")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("MESSAGES_DIR", "")
	importDB, importReplace, searchFormat = "", false, "links"
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSettingsSetAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	out, err := execute(t, "settings", "set", "board_theme", "purple", "--settings", path)
	if err != nil {
		t.Fatalf("settings set: %v", err)
	}
	if !strings.Contains(out, "Settings saved!") {
		t.Fatalf("output = %q", out)
	}
	cfg, err := settings.NewStore(path).Read()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if cfg.BoardTheme != theme.Purple {
		t.Fatalf("board theme = %v", cfg.BoardTheme)
	}

	out, err = execute(t, "settings", "show", "--settings", path)
	if err != nil {
		t.Fatalf("settings show: %v", err)
	}
	if !strings.Contains(out, `"board_theme": "purple"`) {
		t.Fatalf("show output = %q", out)
	}
}

func TestSettingsSetRejectsBadValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if _, err := execute(t, "settings", "set", "search_results_limit", "lots", "--settings", path); err == nil {
		t.Fatalf("expected a validation error")
	}
	if _, err := execute(t, "settings", "set", "volume", "3", "--settings", path); err == nil {
		t.Fatalf("expected an unknown field error")
	}
}

func TestSettingsWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	out, err := execute(t, "settings", "window", "640", "480", "--settings", path)
	if err != nil {
		t.Fatalf("settings window: %v", err)
	}
	if !strings.Contains(out, "640x480") {
		t.Fatalf("output = %q", out)
	}
	cfg, err := settings.NewStore(path).Read()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if cfg.WindowWidth != 640 || cfg.WindowHeight != 480 {
		t.Fatalf("window = %dx%d", cfg.WindowWidth, cfg.WindowHeight)
	}
}

func TestSettingsShowReportsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"flip_board": tru`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := execute(t, "settings", "show", "--settings", path)
	if err != nil {
		t.Fatalf("settings show: %v", err)
	}
	if !strings.Contains(out, "Config file is corrupt") || strings.Contains(out, "Error reading config file.") {
		t.Fatalf("output = %q", out)
	}

	out, err = execute(t, "settings", "show", "--settings", filepath.Join(t.TempDir(), "missing", "settings.json"))
	if err != nil {
		t.Fatalf("settings show: %v", err)
	}
	if !strings.Contains(out, "Error reading config file.") {
		t.Fatalf("output = %q", out)
	}
}

func TestPuzzlesImportArguments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	cfg := settings.Default()
	cfg.PuzzleDBLocation = filepath.Join(dir, "puzzles.csv")
	if err := settings.NewStore(path).Save(cfg); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	if _, err := execute(t, "puzzles", "import", "--settings", path); err == nil {
		t.Fatalf("missing file argument should fail")
	}

	_, err := execute(t, "puzzles", "import", "dump.csv", "--settings", path)
	if err == nil || !strings.Contains(err.Error(), "not a postgres:// URL") {
		t.Fatalf("csv puzzle_db_location should be rejected, got %v", err)
	}

	// the source file is opened before the database is dialled
	_, err = execute(t, "puzzles", "import", filepath.Join(dir, "absent.csv"),
		"--db", "postgres://puzzles@127.0.0.1:1/puzzles?sslmode=disable", "--settings", path)
	if err == nil || !strings.Contains(err.Error(), "open puzzle db") {
		t.Fatalf("missing source should fail first, got %v", err)
	}
}

func TestPuzzlesSearchFormats(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "puzzles.csv")
	body := "PuzzleId,FEN,Moves,Rating,RatingDeviation,Popularity,NbPlays,Themes,GameUrl,OpeningTags\n" +
		"0000D,5rk1/1p3ppp/pq3b2/8/8/1P1Q1N2/P4PPP/3R2K1 w - - 2 27,d3d6 f8d8 d6d8 f6d8,1426,500,2,0,advantage endgame short,https://lichess.org/F8M8OS71#53,\n"
	if err := os.WriteFile(csvPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	path := filepath.Join(dir, "settings.json")
	cfg := settings.Default()
	cfg.PuzzleDBLocation = csvPath
	cfg.LastMaxRating = 0
	if err := settings.NewStore(path).Save(cfg); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	out, err := execute(t, "puzzles", "search", "--settings", path)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "https://lichess.org/training/0000D") {
		t.Fatalf("output = %q", out)
	}

	out, err = execute(t, "puzzles", "search", "--format", "csv", "--settings", path)
	if err != nil {
		t.Fatalf("search csv: %v", err)
	}
	if !strings.HasPrefix(out, "PuzzleId,FEN,Moves") || !strings.Contains(out, "0000D,") {
		t.Fatalf("csv output = %q", out)
	}

	if _, err := execute(t, "puzzles", "search", "--format", "xml", "--settings", path); err == nil {
		t.Fatalf("unknown format should fail")
	}
}
