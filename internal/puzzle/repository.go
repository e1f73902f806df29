package puzzle

import (
	"context"
	"strings"
)

// Repository is a source of puzzles.
type Repository interface {
	Search(ctx context.Context, q Query) ([]Puzzle, error)
	Get(ctx context.Context, id string) (Puzzle, error)
	Close() error
}

// OpenRepository picks a backend for the puzzle_db_location setting:
// postgres:// and postgresql:// URLs use PostgreSQL, anything else is a CSV
// path.
func OpenRepository(ctx context.Context, location string) (Repository, error) {
	loc := strings.TrimSpace(location)
	if IsPostgresURL(loc) {
		return OpenPostgres(ctx, loc)
	}
	return NewCSVRepository(loc), nil
}
