package puzzle

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/park285/offline-puzzles/internal/obslog"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const maxRedirects = 5

// Downloader fetches the lichess puzzle dump.
type Downloader struct {
	http    *fasthttp.Client
	timeout time.Duration
	retries int
	backoff time.Duration
	logger  *zap.Logger
}

type DownloadOption func(*Downloader)

func WithDownloadTimeout(d time.Duration) DownloadOption {
	return func(dl *Downloader) {
		if d > 0 {
			dl.timeout = d
		}
	}
}

func WithDownloadRetry(max int) DownloadOption {
	return func(dl *Downloader) { dl.retries = max }
}

func WithDownloadBackoff(base time.Duration) DownloadOption {
	return func(dl *Downloader) { dl.backoff = base }
}

func NewDownloader(opts ...DownloadOption) *Downloader {
	dl := &Downloader{
		timeout: 10 * time.Minute,
		retries: 3,
		backoff: 500 * time.Millisecond,
		logger:  obslog.L(),
	}
	for _, opt := range opts {
		opt(dl)
	}
	dl.http = &fasthttp.Client{
		Name:               "offline-puzzles",
		ReadTimeout:        dl.timeout,
		WriteTimeout:       30 * time.Second,
		StreamResponseBody: true,
	}
	return dl
}

// Download writes the body at url to dest through a temp file in dest's
// directory. A .zst source is decompressed unless dest also ends in .zst.
// It returns the number of bytes written to dest.
func (dl *Downloader) Download(ctx context.Context, url, dest string) (int64, error) {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	attempts := dl.retries
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if _, err := tmp.Seek(0, io.SeekStart); err != nil {
			tmp.Close()
			return 0, err
		}
		if err := tmp.Truncate(0); err != nil {
			tmp.Close()
			return 0, err
		}
		retry, err := dl.fetch(ctx, url, tmp)
		if err == nil {
			lastErr = nil
			break
		}
		lastErr = err
		if !retry || attempt == attempts {
			break
		}
		dl.logger.Warn("puzzle download retry", zap.String("url", url), zap.Int("attempt", attempt), zap.Error(err))
		if err := sleepContext(ctx, dl.backoffFor(attempt)); err != nil {
			lastErr = err
			break
		}
	}
	if lastErr != nil {
		tmp.Close()
		return 0, lastErr
	}

	if isZst(url) && !isZst(dest) {
		n, err := decompressInto(tmp, dir, dest)
		tmp.Close()
		return n, err
	}

	size, err := tmp.Seek(0, io.SeekCurrent)
	if err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return 0, fmt.Errorf("move download into place: %w", err)
	}
	return size, nil
}

// fetch does one GET, following redirects. retry reports whether the failure
// is worth another attempt.
func (dl *Downloader) fetch(ctx context.Context, url string, w io.Writer) (retry bool, err error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	for hop := 0; ; hop++ {
		req.Reset()
		resp.Reset()
		req.Header.SetMethod(fasthttp.MethodGet)
		req.SetRequestURI(url)

		if err := dl.http.DoDeadline(req, resp, deadline(ctx, dl.timeout)); err != nil {
			return ctx.Err() == nil, fmt.Errorf("get %s: %w", url, err)
		}
		status := resp.StatusCode()
		if fasthttp.StatusCodeIsRedirect(status) {
			loc := string(resp.Header.Peek(fasthttp.HeaderLocation))
			if loc == "" || hop >= maxRedirects {
				return false, fmt.Errorf("get %s: bad redirect (status=%d)", url, status)
			}
			u := fasthttp.AcquireURI()
			u.Update(url)
			u.Update(loc)
			url = u.String()
			fasthttp.ReleaseURI(u)
			continue
		}
		if status < 200 || status >= 300 {
			var body strings.Builder
			_ = resp.BodyWriteTo(&limitWriter{w: &body, n: 512})
			return shouldRetryStatus(status), fmt.Errorf("get %s: status=%d body=%s", url, status, body.String())
		}
		if err := resp.BodyWriteTo(w); err != nil {
			return ctx.Err() == nil, fmt.Errorf("read body: %w", err)
		}
		return false, nil
	}
}

func decompressInto(src *os.File, dir, dest string) (int64, error) {
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	dec, err := zstd.NewReader(src)
	if err != nil {
		return 0, fmt.Errorf("open zstd stream: %w", err)
	}
	defer dec.Close()

	out, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	outName := out.Name()
	defer os.Remove(outName)

	n, err := io.Copy(out, dec)
	if err != nil {
		out.Close()
		return 0, fmt.Errorf("decompress: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return 0, err
	}
	if err := out.Close(); err != nil {
		return 0, err
	}
	if err := os.Rename(outName, dest); err != nil {
		return 0, fmt.Errorf("move download into place: %w", err)
	}
	return n, nil
}

func isZst(name string) bool {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	return strings.EqualFold(filepath.Ext(name), ".zst")
}

func deadline(ctx context.Context, d time.Duration) time.Time {
	dl := time.Now().Add(d)
	if ctxDL, ok := ctx.Deadline(); ok && ctxDL.Before(dl) {
		return ctxDL
	}
	return dl
}

func (dl *Downloader) backoffFor(attempt int) time.Duration {
	if attempt > 6 {
		attempt = 6
	}
	return dl.backoff << uint(attempt-1)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func shouldRetryStatus(code int) bool {
	switch code {
	case fasthttp.StatusTooManyRequests,
		fasthttp.StatusInternalServerError,
		fasthttp.StatusBadGateway,
		fasthttp.StatusServiceUnavailable,
		fasthttp.StatusGatewayTimeout:
		return true
	}
	return false
}

// limitWriter keeps the first n bytes and drops the rest.
type limitWriter struct {
	w io.Writer
	n int
}

func (l *limitWriter) Write(p []byte) (int, error) {
	total := len(p)
	if l.n <= 0 {
		return total, nil
	}
	if len(p) > l.n {
		p = p[:l.n]
	}
	n, err := l.w.Write(p)
	l.n -= n
	if err != nil {
		return n, err
	}
	return total, nil
}
