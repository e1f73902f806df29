package puzzle

import (
	"fmt"

	"github.com/park285/offline-puzzles/internal/obslog"
	"go.uber.org/zap"
)

// Info is what the puzzle-info tab shows for the current puzzle.
type Info struct {
	Loaded          bool
	ID              string
	Link            string
	FEN             string
	Rating          int
	RatingDeviation int
	Popularity      int
	NbPlays         int
	Themes          string
	GameURL         string
	Side            string
	MoveIndex       int
	Playing         bool
}

// Messages renders catalog text; *msgcat.Catalog satisfies it.
type Messages interface {
	RenderOr(key, fallback string, data any) string
}

const noPuzzleLoaded = "No puzzle loaded"

// Text renders info for a plain-text surface.
func (i Info) Text(m Messages) string {
	if !i.Loaded {
		if m == nil {
			return noPuzzleLoaded
		}
		return m.RenderOr("puzzle.none_loaded", noPuzzleLoaded, nil)
	}
	fallback := fmt.Sprintf("Puzzle link: %s\nFEN: %s\nRating: %d\nRating Deviation: %d\n"+
		"Popularity (-100 to 100): %d\nTimes Played (on lichess): %d\nThemes: %s\nGame url: %s",
		i.Link, i.FEN, i.Rating, i.RatingDeviation, i.Popularity, i.NbPlays, i.Themes, i.GameURL)
	if m == nil {
		return fallback
	}
	return m.RenderOr("puzzle.info", fallback, i)
}

// Tab holds the search results and the session for the selected puzzle.
type Tab struct {
	puzzles []Puzzle
	current int
	session *Session
	logger  *zap.Logger
}

func NewTab() *Tab { return &Tab{logger: obslog.L()} }

// Load replaces the result list and starts the first puzzle.
func (t *Tab) Load(puzzles []Puzzle) {
	t.puzzles = append([]Puzzle(nil), puzzles...)
	t.current = 0
	t.start()
}

func (t *Tab) start() {
	t.session = nil
	p, ok := t.Current()
	if !ok {
		return
	}
	s, err := NewSession(p)
	if err != nil {
		t.logger.Warn("puzzle session not started", zap.String("puzzle_id", p.PuzzleID), zap.Error(err))
		return
	}
	t.session = s
}

func (t *Tab) Current() (Puzzle, bool) {
	if t.current < 0 || t.current >= len(t.puzzles) {
		return Puzzle{}, false
	}
	return t.puzzles[t.current], true
}

// Next moves to the following puzzle; false at the end of the list.
func (t *Tab) Next() bool {
	if t.current+1 >= len(t.puzzles) {
		return false
	}
	t.current++
	t.start()
	return true
}

func (t *Tab) Prev() bool {
	if t.current <= 0 || len(t.puzzles) == 0 {
		return false
	}
	t.current--
	t.start()
	return true
}

// Session is nil when no puzzle is loaded or the puzzle could not be set up.
func (t *Tab) Session() *Session { return t.session }

func (t *Tab) Len() int   { return len(t.puzzles) }
func (t *Tab) Index() int { return t.current }

func (t *Tab) Info() Info {
	p, ok := t.Current()
	if !ok {
		return Info{}
	}
	info := Info{
		Loaded:          true,
		ID:              p.PuzzleID,
		Link:            p.Link(),
		FEN:             p.FEN,
		Rating:          p.Rating,
		RatingDeviation: p.RatingDeviation,
		Popularity:      p.Popularity,
		NbPlays:         p.NbPlays,
		Themes:          p.Themes,
		GameURL:         p.GameURL,
		Side:            string(p.SolverSide()),
	}
	if s := t.session; s != nil {
		info.FEN = s.FEN()
		info.MoveIndex = s.MoveIndex()
		info.Playing = !s.Solved()
	}
	return info
}
