package puzzle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/park285/offline-puzzles/internal/settings"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS puzzles (
	puzzle_id        TEXT PRIMARY KEY,
	fen              TEXT NOT NULL,
	moves            TEXT NOT NULL,
	rating           INTEGER NOT NULL,
	rating_deviation INTEGER NOT NULL,
	popularity       INTEGER NOT NULL,
	nb_plays         INTEGER NOT NULL,
	themes           TEXT NOT NULL DEFAULT '',
	game_url         TEXT NOT NULL DEFAULT '',
	opening_tags     TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS puzzles_rating_idx ON puzzles (rating);`

const puzzleColumns = "puzzle_id, fen, moves, rating, rating_deviation, popularity, nb_plays, themes, game_url, opening_tags"

// PostgresRepository serves puzzles from a "puzzles" table.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// OpenPostgres connects with lib/pq and checks the connection.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresRepository(db), nil
}

func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create puzzles schema: %w", err)
	}
	return nil
}

// Truncate removes every puzzle.
func (r *PostgresRepository) Truncate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "TRUNCATE puzzles"); err != nil {
		return fmt.Errorf("truncate puzzles: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Search(ctx context.Context, q Query) ([]Puzzle, error) {
	query, args := buildSearchSQL(q)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search puzzles: %w", err)
	}
	defer rows.Close()

	var out []Puzzle
	for rows.Next() {
		p, err := scanPuzzle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search puzzles: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (Puzzle, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+puzzleColumns+" FROM puzzles WHERE puzzle_id = $1", id)
	p, err := scanPuzzle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Puzzle{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, err
}

// Import bulk-loads puzzles with COPY inside one transaction. Existing ids
// make the whole batch fail.
func (r *PostgresRepository) Import(ctx context.Context, puzzles []Puzzle) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("puzzles",
		"puzzle_id", "fen", "moves", "rating", "rating_deviation",
		"popularity", "nb_plays", "themes", "game_url", "opening_tags"))
	if err != nil {
		return 0, fmt.Errorf("prepare copy: %w", err)
	}
	for _, p := range puzzles {
		if _, err := stmt.ExecContext(ctx, p.PuzzleID, p.FEN, p.Moves, p.Rating, p.RatingDeviation,
			p.Popularity, p.NbPlays, p.Themes, p.GameURL, p.OpeningTags); err != nil {
			_ = stmt.Close()
			return 0, fmt.Errorf("copy puzzle %s: %w", p.PuzzleID, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return 0, fmt.Errorf("flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return 0, fmt.Errorf("close copy: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return len(puzzles), nil
}

func (r *PostgresRepository) Close() error { return r.db.Close() }

// IsPostgresURL reports whether location names a PostgreSQL database.
func IsPostgresURL(location string) bool {
	lower := strings.ToLower(strings.TrimSpace(location))
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPuzzle(s rowScanner) (Puzzle, error) {
	var p Puzzle
	err := s.Scan(&p.PuzzleID, &p.FEN, &p.Moves, &p.Rating, &p.RatingDeviation,
		&p.Popularity, &p.NbPlays, &p.Themes, &p.GameURL, &p.OpeningTags)
	if err != nil {
		return Puzzle{}, err
	}
	return p, nil
}

// buildSearchSQL renders q as a parameterised SELECT. Theme and opening tags
// match case-insensitively, like Query.Matches. The solver side is the
// opposite of the side to move recorded in the FEN.
func buildSearchSQL(q Query) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	where = append(where, "rating >= "+arg(q.MinRating))
	if q.MaxRating > 0 {
		where = append(where, "rating <= "+arg(q.MaxRating))
	}
	if q.Theme != "" {
		where = append(where, "lower("+arg(q.Theme)+") = ANY(string_to_array(lower(themes), ' '))")
	}
	if q.Opening != "" {
		where = append(where, "lower("+arg(q.Opening)+") = ANY(string_to_array(lower(opening_tags), ' '))")
	}
	switch q.Side {
	case settings.SideWhite:
		where = append(where, "split_part(fen, ' ', 2) = "+arg("b"))
	case settings.SideBlack:
		where = append(where, "split_part(fen, ' ', 2) = "+arg("w"))
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(puzzleColumns)
	b.WriteString(" FROM puzzles WHERE ")
	b.WriteString(strings.Join(where, " AND "))
	b.WriteString(" ORDER BY puzzle_id LIMIT ")
	b.WriteString(arg(q.EffectiveLimit()))
	return b.String(), args
}
