package puzzle

import (
	"errors"
	"testing"

	nchess "github.com/corentings/chess/v2"
)

func TestSessionSolvesWithSAN(t *testing.T) {
	s, err := NewSession(samplePuzzles()[1])
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if s.Side() != nchess.Black {
		t.Fatalf("solver side = %v, want black", s.Side())
	}
	if s.MoveIndex() != 1 {
		t.Fatalf("opponent move not applied, index = %d", s.MoveIndex())
	}

	res, err := s.Play("Rd8")
	if err != nil || res != Correct {
		t.Fatalf("Play Rd8 = %v, %v", res, err)
	}
	if s.MoveIndex() != 3 {
		t.Fatalf("reply not applied, index = %d", s.MoveIndex())
	}
	res, err = s.Play("Bxd8")
	if err != nil || res != Solved {
		t.Fatalf("Play Bxd8 = %v, %v", res, err)
	}
	if !s.Solved() {
		t.Fatalf("session should be solved")
	}
	if _, err := s.Play("Kf8"); !errors.Is(err, ErrSessionOver) {
		t.Fatalf("play after solve: %v", err)
	}
}

func TestSessionSolvesWithUCI(t *testing.T) {
	s, err := NewSession(samplePuzzles()[2])
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if s.Side() != nchess.White {
		t.Fatalf("solver side = %v", s.Side())
	}
	for i, mv := range []string{"e2g4", "D1G4"} {
		res, err := s.Play(mv)
		if err != nil {
			t.Fatalf("move %d: %v", i, err)
		}
		want := Correct
		if i == 1 {
			want = Solved
		}
		if res != want {
			t.Fatalf("move %d = %v, want %v", i, res, want)
		}
	}
}

func TestSessionWrongMoveKeepsPosition(t *testing.T) {
	s, err := NewSession(samplePuzzles()[1])
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	before := s.FEN()
	res, err := s.Play("a6a5")
	if err != nil || res != Wrong {
		t.Fatalf("Play a6a5 = %v, %v", res, err)
	}
	if s.FEN() != before || s.Mistakes() != 1 {
		t.Fatalf("wrong move changed state: fen=%s mistakes=%d", s.FEN(), s.Mistakes())
	}
	if exp, ok := s.Expected(); !ok || exp != "f8d8" {
		t.Fatalf("expected = %q, %v", exp, ok)
	}
}

func TestSessionRejectsGarbage(t *testing.T) {
	s, err := NewSession(samplePuzzles()[1])
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	for _, in := range []string{"", "zz", "e2e9", "Qh9"} {
		if _, err := s.Play(in); !errors.Is(err, ErrInvalidMove) {
			t.Fatalf("Play(%q): want ErrInvalidMove, got %v", in, err)
		}
	}
}

func TestSessionPromotion(t *testing.T) {
	s, err := NewSession(promotionPuzzle)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if res, err := s.Play("b7b8n"); err != nil || res != Wrong {
		t.Fatalf("underpromotion = %v, %v", res, err)
	}
	if res, err := s.Play("b8=Q"); err != nil || res != Solved {
		t.Fatalf("queen promotion = %v, %v", res, err)
	}
}

func TestSessionAcceptsAlternativeMate(t *testing.T) {
	s, err := NewSession(twoMatesPuzzle)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if res, err := s.Play("g1f2"); err != nil || res != Wrong {
		t.Fatalf("quiet move = %v, %v", res, err)
	}
	if res, err := s.Play("Rb8"); err != nil || res != Solved {
		t.Fatalf("alternative mate = %v, %v", res, err)
	}
}

func TestSessionLastMove(t *testing.T) {
	s, err := NewSession(samplePuzzles()[1])
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	from, to, ok := s.LastMove()
	if !ok || from != nchess.D3 || to != nchess.D6 {
		t.Fatalf("last move = %v-%v %v", from, to, ok)
	}
}

func TestNewSessionRejectsBadPuzzles(t *testing.T) {
	for _, p := range []Puzzle{
		{PuzzleID: "short", FEN: promotionPuzzle.FEN, Moves: "h8g8"},
		{PuzzleID: "fen", FEN: "not a fen", Moves: "e2e4 e7e5"},
		{PuzzleID: "illegal", FEN: promotionPuzzle.FEN, Moves: "a1a8 b7b8q"},
	} {
		if _, err := NewSession(p); !errors.Is(err, ErrBadPuzzle) {
			t.Fatalf("%s: want ErrBadPuzzle, got %v", p.PuzzleID, err)
		}
	}
}
