package puzzle

import (
	"errors"
	"strings"

	"github.com/park285/offline-puzzles/internal/settings"
)

const trainingURL = "https://lichess.org/training/"

var (
	ErrNotFound     = errors.New("puzzle not found")
	ErrMalformedRow = errors.New("malformed puzzle row")
)

// Puzzle is one row of the lichess puzzle database.
type Puzzle struct {
	PuzzleID        string `json:"puzzle_id"`
	FEN             string `json:"fen"`
	Moves           string `json:"moves"`
	Rating          int    `json:"rating"`
	RatingDeviation int    `json:"rating_deviation"`
	Popularity      int    `json:"popularity"`
	NbPlays         int    `json:"nb_plays"`
	Themes          string `json:"themes"`
	GameURL         string `json:"game_url"`
	OpeningTags     string `json:"opening_tags"`
}

// Link is the puzzle's page on lichess.
func (p Puzzle) Link() string { return trainingURL + p.PuzzleID }

// MoveList splits Moves into UCI moves. The first one is the opponent's.
func (p Puzzle) MoveList() []string { return strings.Fields(p.Moves) }

// SolverSide is the color the solver plays: the side not to move in FEN.
func (p Puzzle) SolverSide() settings.OpeningSide {
	fields := strings.Fields(p.FEN)
	if len(fields) < 2 {
		return settings.SideAny
	}
	switch fields[1] {
	case "w":
		return settings.SideBlack
	case "b":
		return settings.SideWhite
	}
	return settings.SideAny
}

func (p Puzzle) HasTheme(theme string) bool { return hasToken(p.Themes, theme) }
func (p Puzzle) HasOpening(tag string) bool { return hasToken(p.OpeningTags, tag) }

func hasToken(list, tok string) bool {
	for _, f := range strings.Fields(list) {
		if strings.EqualFold(f, tok) {
			return true
		}
	}
	return false
}

// Query selects puzzles. Zero values disable a filter.
type Query struct {
	MinRating int
	MaxRating int // <= 0 means no upper bound
	Theme     string
	Opening   string
	Side      settings.OpeningSide
	Limit     int // <= 0 means MaxResults
}

// MaxResults caps a search whose Limit is not positive.
const MaxResults = settings.DefaultSearchResultsLimit

// EffectiveLimit is the number of rows a search may return.
func (q Query) EffectiveLimit() int {
	if q.Limit <= 0 {
		return MaxResults
	}
	return q.Limit
}

// QueryFromConfig builds the search the puzzle tab runs from the last-used
// filters and the configured result limit.
func QueryFromConfig(cfg settings.Config) Query {
	q := Query{
		MinRating: cfg.LastMinRating,
		MaxRating: cfg.LastMaxRating,
		Theme:     strings.TrimSpace(cfg.LastTheme),
		Opening:   strings.TrimSpace(cfg.LastOpening),
		Side:      cfg.LastOpeningSide,
		Limit:     cfg.SearchResultsLimit,
	}
	if strings.EqualFold(q.Theme, settings.DefaultTheme) {
		q.Theme = ""
	}
	if strings.EqualFold(q.Opening, "any") {
		q.Opening = ""
	}
	if q.Side == "" {
		q.Side = settings.SideAny
	}
	return q
}

// Matches reports whether p passes every filter in q. Limit is not applied.
func (q Query) Matches(p Puzzle) bool {
	if p.Rating < q.MinRating {
		return false
	}
	if q.MaxRating > 0 && p.Rating > q.MaxRating {
		return false
	}
	if q.Theme != "" && !p.HasTheme(q.Theme) {
		return false
	}
	if q.Opening != "" && !p.HasOpening(q.Opening) {
		return false
	}
	if q.Side != "" && q.Side != settings.SideAny && p.SolverSide() != q.Side {
		return false
	}
	return true
}
