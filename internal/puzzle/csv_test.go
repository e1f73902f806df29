package puzzle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zstd"
	"github.com/park285/offline-puzzles/internal/settings"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func ids(ps []Puzzle) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.PuzzleID
	}
	return out
}

func TestCSVRepositorySearch(t *testing.T) {
	repo := NewCSVRepository(writeFile(t, "puzzles.csv", []byte(sampleCSV)))
	ctx := context.Background()

	got, err := repo.Search(ctx, Query{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if diff := cmp.Diff(samplePuzzles(), got); diff != "" {
		t.Fatalf("parsed puzzles mismatch (-want +got):\n%s", diff)
	}

	got, err = repo.Search(ctx, Query{Side: settings.SideWhite, Limit: 1})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if diff := cmp.Diff([]string{"00008"}, ids(got)); diff != "" {
		t.Fatalf("limited search (-want +got):\n%s", diff)
	}

	got, err = repo.Search(ctx, Query{Theme: "nonexistent"})
	if err != nil || len(got) != 0 {
		t.Fatalf("expected no results, got %v err=%v", ids(got), err)
	}
}

func TestCSVRepositoryWithoutHeader(t *testing.T) {
	body := sampleCSV[strings.IndexByte(sampleCSV, '\n')+1:]
	repo := NewCSVRepository(writeFile(t, "noheader.csv", []byte(body)))
	got, err := repo.Search(context.Background(), Query{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 puzzles, got %v", ids(got))
	}
}

func TestCSVRepositoryZstd(t *testing.T) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	if _, err := enc.Write([]byte(sampleCSV)); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	repo := NewCSVRepository(writeFile(t, "lichess_db_puzzle.csv.zst", buf.Bytes()))
	p, err := repo.Get(context.Background(), "0009B")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.OpeningTags != "Kings_Pawn_Game Kings_Pawn_Game_Leonardis_Variation" {
		t.Fatalf("unexpected puzzle: %+v", p)
	}
}

func TestCSVRepositoryGetMissing(t *testing.T) {
	repo := NewCSVRepository(writeFile(t, "puzzles.csv", []byte(sampleCSV)))
	if _, err := repo.Get(context.Background(), "zzzzz"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestCSVRepositoryMissingFile(t *testing.T) {
	repo := NewCSVRepository(filepath.Join(t.TempDir(), "absent.csv"))
	if _, err := repo.Search(context.Background(), Query{}); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestReadCSVHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ReadCSV(ctx, strings.NewReader(sampleCSV), func(Puzzle) bool { return true })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, samplePuzzles()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	var got []Puzzle
	skipped, err := ReadCSV(context.Background(), &buf, func(p Puzzle) bool {
		got = append(got, p)
		return true
	})
	if err != nil || skipped != 0 {
		t.Fatalf("ReadCSV: skipped=%d err=%v", skipped, err)
	}
	if diff := cmp.Diff(samplePuzzles(), got); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
}

func TestCSVRepositoryCapsUnlimitedSearch(t *testing.T) {
	var b strings.Builder
	for i := 0; i < MaxResults+5; i++ {
		fmt.Fprintf(&b, "p%06d,5rk1/1p3ppp/pq3b2/8/8/1P1Q1N2/P4PPP/3R2K1 w - - 2 27,d3d6 f8d8 d6d8 f6d8,1426,500,2,0,short,,\n", i)
	}
	repo := NewCSVRepository(writeFile(t, "many.csv", []byte(b.String())))
	got, err := repo.Search(context.Background(), Query{Limit: 0})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != MaxResults {
		t.Fatalf("got %d puzzles, want the %d cap", len(got), MaxResults)
	}
}
