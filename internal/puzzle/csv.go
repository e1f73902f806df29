package puzzle

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/park285/offline-puzzles/internal/obslog"
	"go.uber.org/zap"
)

// lichess column order; OpeningTags is missing in older dumps.
const (
	colID = iota
	colFEN
	colMoves
	colRating
	colRatingDeviation
	colPopularity
	colNbPlays
	colThemes
	colGameURL
	colOpeningTags
	minColumns = colGameURL + 1
)

// CSVRepository scans a lichess puzzle CSV on every call. Files ending in
// .zst are decompressed on the fly.
type CSVRepository struct {
	path   string
	logger *zap.Logger
}

func NewCSVRepository(path string) *CSVRepository {
	return &CSVRepository{path: path, logger: obslog.L()}
}

func (r *CSVRepository) Path() string { return r.path }

func (r *CSVRepository) Search(ctx context.Context, q Query) ([]Puzzle, error) {
	var out []Puzzle
	limit := q.EffectiveLimit()
	err := r.scan(ctx, func(p Puzzle) bool {
		if q.Matches(p) {
			out = append(out, p)
		}
		return len(out) < limit
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CSVRepository) Get(ctx context.Context, id string) (Puzzle, error) {
	var (
		found Puzzle
		ok    bool
	)
	err := r.scan(ctx, func(p Puzzle) bool {
		if p.PuzzleID == id {
			found, ok = p, true
			return false
		}
		return true
	})
	if err != nil {
		return Puzzle{}, err
	}
	if !ok {
		return Puzzle{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return found, nil
}

func (r *CSVRepository) Close() error { return nil }

func (r *CSVRepository) scan(ctx context.Context, fn func(Puzzle) bool) error {
	src, err := OpenCSV(r.path)
	if err != nil {
		return err
	}
	defer src.Close()

	skipped, err := ReadCSV(ctx, src, fn)
	if skipped > 0 {
		r.logger.Warn("skipped malformed puzzle rows", zap.String("path", r.path), zap.Int("rows", skipped))
	}
	return err
}

// OpenCSV opens a lichess CSV for reading, decompressing .zst files.
func OpenCSV(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open puzzle db: %w", err)
	}
	buf := bufio.NewReaderSize(f, 1<<20)
	if !strings.EqualFold(filepath.Ext(path), ".zst") {
		return &csvFile{Reader: buf, f: f}, nil
	}
	dec, err := zstd.NewReader(buf)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open zstd stream: %w", err)
	}
	return &csvFile{Reader: dec, f: f, dec: dec}, nil
}

type csvFile struct {
	io.Reader
	f   *os.File
	dec *zstd.Decoder
}

func (c *csvFile) Close() error {
	if c.dec != nil {
		c.dec.Close()
	}
	return c.f.Close()
}

// ReadCSV streams puzzles from a lichess CSV until fn returns false or input
// ends. A header row is optional. Malformed rows are skipped and counted.
func ReadCSV(ctx context.Context, src io.Reader, fn func(Puzzle) bool) (skipped int, err error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	for line := 0; ; line++ {
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return skipped, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return skipped, nil
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skipped++
				continue
			}
			return skipped, fmt.Errorf("read puzzle db: %w", err)
		}
		if line == 0 && strings.EqualFold(rec[colID], "PuzzleId") {
			continue
		}
		p, err := parseRecord(rec)
		if err != nil {
			skipped++
			continue
		}
		if !fn(p) {
			return skipped, nil
		}
	}
}

func parseRecord(rec []string) (Puzzle, error) {
	if len(rec) < minColumns {
		return Puzzle{}, fmt.Errorf("%w: %d columns", ErrMalformedRow, len(rec))
	}
	var nums [4]int
	for i, col := range []int{colRating, colRatingDeviation, colPopularity, colNbPlays} {
		n, err := strconv.Atoi(strings.TrimSpace(rec[col]))
		if err != nil {
			return Puzzle{}, fmt.Errorf("%w: column %d: %w", ErrMalformedRow, col, err)
		}
		nums[i] = n
	}
	p := Puzzle{
		PuzzleID:        rec[colID],
		FEN:             rec[colFEN],
		Moves:           rec[colMoves],
		Rating:          nums[0],
		RatingDeviation: nums[1],
		Popularity:      nums[2],
		NbPlays:         nums[3],
		Themes:          rec[colThemes],
		GameURL:         rec[colGameURL],
	}
	if len(rec) > colOpeningTags {
		p.OpeningTags = rec[colOpeningTags]
	}
	return p, nil
}

// WriteCSV writes puzzles in lichess column order with a header row.
func WriteCSV(w io.Writer, puzzles []Puzzle) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"PuzzleId", "FEN", "Moves", "Rating", "RatingDeviation", "Popularity", "NbPlays", "Themes", "GameUrl", "OpeningTags"}); err != nil {
		return err
	}
	for _, p := range puzzles {
		rec := []string{
			p.PuzzleID, p.FEN, p.Moves,
			strconv.Itoa(p.Rating), strconv.Itoa(p.RatingDeviation),
			strconv.Itoa(p.Popularity), strconv.Itoa(p.NbPlays),
			p.Themes, p.GameURL, p.OpeningTags,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
