package puzzle

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
)

func newTestDownloader() *Downloader {
	return NewDownloader(WithDownloadRetry(3), WithDownloadBackoff(time.Millisecond), WithDownloadTimeout(5*time.Second))
}

func TestDownloadRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "puzzles.csv")
	n, err := newTestDownloader().Download(context.Background(), srv.URL+"/puzzles.csv", dest)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if hits.Load() != 2 {
		t.Fatalf("hits = %d, want 2", hits.Load())
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != sampleCSV || n != int64(len(sampleCSV)) {
		t.Fatalf("unexpected body (%d bytes)", n)
	}
	assertNoTempFiles(t, filepath.Dir(dest), 1)
}

func TestDownloadDoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dir := t.TempDir()
	if _, err := newTestDownloader().Download(context.Background(), srv.URL, filepath.Join(dir, "p.csv")); err == nil {
		t.Fatalf("expected an error for 404")
	}
	if hits.Load() != 1 {
		t.Fatalf("hits = %d, want 1", hits.Load())
	}
	assertNoTempFiles(t, dir, 0)
}

func TestDownloadFollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/latest", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/files/puzzles.csv", http.StatusFound)
	})
	mux.HandleFunc("/files/puzzles.csv", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleCSV))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "puzzles.csv")
	if _, err := newTestDownloader().Download(context.Background(), srv.URL+"/latest", dest); err != nil {
		t.Fatalf("Download: %v", err)
	}
	got, _ := os.ReadFile(dest)
	if string(got) != sampleCSV {
		t.Fatalf("redirect target not saved")
	}
}

func TestDownloadDecompressesZstd(t *testing.T) {
	var buf bytes.Buffer
	enc, _ := zstd.NewWriter(&buf)
	_, _ = enc.Write([]byte(sampleCSV))
	_ = enc.Close()
	compressed := buf.Bytes()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(compressed)
	}))
	defer srv.Close()

	dir := t.TempDir()
	plain := filepath.Join(dir, "puzzles.csv")
	if _, err := newTestDownloader().Download(context.Background(), srv.URL+"/dump.csv.zst", plain); err != nil {
		t.Fatalf("Download: %v", err)
	}
	got, _ := os.ReadFile(plain)
	if string(got) != sampleCSV {
		t.Fatalf("zstd body not decompressed")
	}

	raw := filepath.Join(dir, "puzzles.csv.zst")
	if _, err := newTestDownloader().Download(context.Background(), srv.URL+"/dump.csv.zst", raw); err != nil {
		t.Fatalf("Download: %v", err)
	}
	got, _ = os.ReadFile(raw)
	if !bytes.Equal(got, compressed) {
		t.Fatalf("compressed destination should keep the raw body")
	}

	repo := NewCSVRepository(raw)
	ps, err := repo.Search(context.Background(), Query{})
	if err != nil || len(ps) != 3 {
		t.Fatalf("search downloaded dump: %d puzzles, err=%v", len(ps), err)
	}
}

func assertNoTempFiles(t *testing.T, dir string, want int) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != want {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("dir has %v, want %d entries", names, want)
	}
}
