package progress

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrNotFound = errors.New("no progress for puzzle")

// Entry is the solving history of one puzzle.
type Entry struct {
	PuzzleID   string
	Attempts   int
	Failures   int
	Solved     bool
	LastPlayed time.Time
}

// Stats aggregates every recorded attempt.
type Stats struct {
	Puzzles  int // distinct puzzles attempted
	Solved   int // distinct puzzles solved at least once
	Attempts int
	Failures int
}

type Store interface {
	Record(ctx context.Context, puzzleID string, solved bool) error
	Get(ctx context.Context, puzzleID string) (Entry, error)
	Stats(ctx context.Context) (Stats, error)
	Close() error
}

// Open returns a Redis store for a non-empty URL and a memory store otherwise.
func Open(ctx context.Context, redisURL string) (Store, error) {
	if strings.TrimSpace(redisURL) == "" {
		return NewMemoryStore(), nil
	}
	return NewRedisStore(ctx, redisURL)
}

func validID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.New("empty puzzle id")
	}
	return id, nil
}
