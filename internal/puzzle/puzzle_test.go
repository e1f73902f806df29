package puzzle

import (
	"testing"

	"github.com/park285/offline-puzzles/internal/settings"
)

func TestSolverSide(t *testing.T) {
	ps := samplePuzzles()
	want := []settings.OpeningSide{settings.SideWhite, settings.SideBlack, settings.SideWhite}
	for i, p := range ps {
		if got := p.SolverSide(); got != want[i] {
			t.Fatalf("%s: side = %s, want %s", p.PuzzleID, got, want[i])
		}
	}
	if got := (Puzzle{FEN: "garbage"}).SolverSide(); got != settings.SideAny {
		t.Fatalf("bad FEN side = %s", got)
	}
}

func TestLink(t *testing.T) {
	if got := (Puzzle{PuzzleID: "00sHx"}).Link(); got != "https://lichess.org/training/00sHx" {
		t.Fatalf("link = %q", got)
	}
}

func TestQueryFromConfig(t *testing.T) {
	cfg := settings.Default()
	cfg.SearchResultsLimit = 50
	cfg.SearchFilters = settings.SearchFilters{LastMinRating: 1000, LastMaxRating: 1500, LastTheme: "mix", LastOpening: "Any"}
	q := QueryFromConfig(cfg)
	want := Query{MinRating: 1000, MaxRating: 1500, Side: settings.SideAny, Limit: 50}
	if q != want {
		t.Fatalf("query = %+v, want %+v", q, want)
	}

	cfg.LastTheme = "short"
	cfg.LastOpening = "Kings_Pawn_Game"
	cfg.LastOpeningSide = settings.SideWhite
	q = QueryFromConfig(cfg)
	if q.Theme != "short" || q.Opening != "Kings_Pawn_Game" || q.Side != settings.SideWhite {
		t.Fatalf("query = %+v", q)
	}
}

func TestEffectiveLimit(t *testing.T) {
	cases := map[int]int{-3: MaxResults, 0: MaxResults, 1: 1, 50000: 50000}
	for limit, want := range cases {
		if got := (Query{Limit: limit}).EffectiveLimit(); got != want {
			t.Fatalf("limit %d: got %d, want %d", limit, got, want)
		}
	}
}

func TestQueryMatches(t *testing.T) {
	ps := samplePuzzles()
	cases := []struct {
		name string
		q    Query
		want []string
	}{
		{"all", Query{}, []string{"00008", "0000D", "0009B"}},
		{"rating window", Query{MinRating: 1200, MaxRating: 1500}, []string{"0000D"}},
		{"theme", Query{Theme: "short"}, []string{"0000D", "0009B"}},
		{"theme case", Query{Theme: "HANGINGPIECE"}, []string{"00008"}},
		{"opening", Query{Opening: "Kings_Pawn_Game"}, []string{"0009B"}},
		{"white", Query{Side: settings.SideWhite}, []string{"00008", "0009B"}},
		{"black", Query{Side: settings.SideBlack}, []string{"0000D"}},
	}
	for _, tc := range cases {
		var got []string
		for _, p := range ps {
			if tc.q.Matches(p) {
				got = append(got, p.PuzzleID)
			}
		}
		if len(got) != len(tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
			}
		}
	}
}
