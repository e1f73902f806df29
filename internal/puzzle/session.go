package puzzle

import (
	"errors"
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/offline-puzzles/internal/notation"
)

var (
	ErrBadPuzzle   = errors.New("puzzle cannot be played")
	ErrInvalidMove = errors.New("invalid move")
	ErrSessionOver = errors.New("puzzle already solved")
)

// Result is the outcome of one solver move.
type Result int

const (
	Wrong Result = iota
	Correct
	Solved
)

func (r Result) String() string {
	switch r {
	case Correct:
		return "correct"
	case Solved:
		return "solved"
	default:
		return "wrong"
	}
}

// Session plays one puzzle. The opponent's first move is applied on
// creation; afterwards the solver and the scripted replies alternate.
type Session struct {
	puzzle   Puzzle
	game     *nchess.Game
	moves    []string
	next     int
	side     nchess.Color
	last     *nchess.Move
	mistakes int
}

func NewSession(p Puzzle) (*Session, error) {
	moves := p.MoveList()
	if len(moves) < 2 {
		return nil, fmt.Errorf("%w: %s has %d moves", ErrBadPuzzle, p.PuzzleID, len(moves))
	}
	opt, err := nchess.FEN(p.FEN)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBadPuzzle, p.PuzzleID, err)
	}
	s := &Session{puzzle: p, game: nchess.NewGame(opt), moves: moves}
	if err := s.applyScripted(); err != nil {
		return nil, err
	}
	s.side = s.game.Position().Turn()
	return s, nil
}

func (s *Session) applyScripted() error {
	pos := s.game.Position()
	mv, err := nchess.UCINotation{}.Decode(pos, strings.ToLower(s.moves[s.next]))
	if err != nil {
		return fmt.Errorf("%w: %s move %d %q: %w", ErrBadPuzzle, s.puzzle.PuzzleID, s.next, s.moves[s.next], err)
	}
	if err := s.game.Move(mv, nil); err != nil {
		return fmt.Errorf("%w: %s move %d: %w", ErrBadPuzzle, s.puzzle.PuzzleID, s.next, err)
	}
	s.last = mv
	s.next++
	return nil
}

// Play checks a solver move given in SAN or UCI. A wrong move leaves the
// position unchanged. On the final move any checkmate is accepted.
func (s *Session) Play(input string) (Result, error) {
	if s.Solved() {
		return Solved, ErrSessionOver
	}
	input = strings.TrimSpace(input)
	pos := s.game.Position()
	mv, err := nchess.AlgebraicNotation{}.Decode(pos, input)
	if err != nil {
		mv, err = nchess.UCINotation{}.Decode(pos, strings.ToLower(input))
		if err != nil {
			return Wrong, fmt.Errorf("%w: %q", ErrInvalidMove, input)
		}
	}
	played := nchess.UCINotation{}.Encode(pos, mv)

	if !notation.SameMove(played, s.moves[s.next]) && !s.matesOnFinalMove(played) {
		s.mistakes++
		return Wrong, nil
	}
	if err := s.game.Move(mv, nil); err != nil {
		return Wrong, fmt.Errorf("%w: %q: %w", ErrInvalidMove, input, err)
	}
	s.last = mv
	s.next++
	if s.Solved() {
		return Solved, nil
	}
	if err := s.applyScripted(); err != nil {
		return Correct, err
	}
	if s.Solved() {
		return Solved, nil
	}
	return Correct, nil
}

func (s *Session) matesOnFinalMove(uci string) bool {
	if s.next != len(s.moves)-1 {
		return false
	}
	opt, err := nchess.FEN(s.game.FEN())
	if err != nil {
		return false
	}
	probe := nchess.NewGame(opt)
	mv, err := nchess.UCINotation{}.Decode(probe.Position(), uci)
	if err != nil || probe.Move(mv, nil) != nil {
		return false
	}
	return probe.Method() == nchess.Checkmate
}

// Expected is the next solution move in UCI, for hints.
func (s *Session) Expected() (string, bool) {
	if s.Solved() {
		return "", false
	}
	return s.moves[s.next], true
}

// LastMove is the most recently applied move.
func (s *Session) LastMove() (from, to nchess.Square, ok bool) {
	if s.last == nil {
		return nchess.NoSquare, nchess.NoSquare, false
	}
	return s.last.S1(), s.last.S2(), true
}

func (s *Session) Solved() bool { return s.next >= len(s.moves) }
func (s *Session) FEN() string { return s.game.FEN() }
func (s *Session) Position() *nchess.Position { return s.game.Position() }
func (s *Session) Side() nchess.Color { return s.side }
func (s *Session) MoveIndex() int { return s.next }
func (s *Session) Mistakes() int { return s.mistakes }
func (s *Session) Puzzle() Puzzle { return s.puzzle }
