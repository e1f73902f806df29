package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/offline-puzzles/internal/obslog"
	"github.com/park285/offline-puzzles/internal/progress"
	"github.com/park285/offline-puzzles/internal/puzzle"
	"github.com/park285/offline-puzzles/internal/settings"
	"github.com/park285/offline-puzzles/pkg/shellproto"
	"go.uber.org/zap"
)

const queueSize = 64

// EventMsg wraps a shell event for the loop.
type EventMsg struct{ Event shellproto.Event }

// SearchResultMsg delivers the outcome of a background search.
type SearchResultMsg struct {
	Puzzles []puzzle.Puzzle
	Err     error
}

// RepositoryOpener opens the puzzle source named by the puzzle_db_location
// setting.
type RepositoryOpener func(ctx context.Context, location string) (puzzle.Repository, error)

// Messages renders catalog text; *msgcat.Catalog satisfies it.
type Messages interface {
	settings.Messages
	puzzle.Messages
}

// Loop is the single event queue that owns the settings editor and the puzzle
// tab. Commands run on their own goroutines and post their results back.
type Loop struct {
	store    *settings.Store
	editor   *settings.Editor
	tab      *puzzle.Tab
	open     RepositoryOpener
	progress progress.Store
	messages Messages
	logger   *zap.Logger

	queue chan settings.Msg
	done  chan struct{}
	ctx   context.Context

	// set only by the loop goroutine
	result    string
	message   string
	lastErr   string
	hint      string
	searching bool

	mu     sync.RWMutex
	seq    uint64
	state  shellproto.State
	subs   map[int]chan shellproto.State
	nextID int
}

type LoopOption func(*Loop)

func WithRepositoryOpener(fn RepositoryOpener) LoopOption {
	return func(l *Loop) {
		if fn != nil {
			l.open = fn
		}
	}
}

func WithProgress(s progress.Store) LoopOption {
	return func(l *Loop) { l.progress = s }
}

func WithLoopMessages(m Messages) LoopOption {
	return func(l *Loop) { l.messages = m }
}

func WithLoopLogger(lg *zap.Logger) LoopOption {
	return func(l *Loop) {
		if lg != nil {
			l.logger = lg
		}
	}
}

func NewLoop(store *settings.Store, opts ...LoopOption) *Loop {
	l := &Loop{
		store:  store,
		tab:    puzzle.NewTab(),
		open:   puzzle.OpenRepository,
		logger: obslog.L(),
		queue:  make(chan settings.Msg, queueSize),
		done:   make(chan struct{}),
		ctx:    context.Background(),
		subs:   make(map[int]chan shellproto.State),
	}
	for _, opt := range opts {
		opt(l)
	}
	var eopts []settings.EditorOption
	if l.messages != nil {
		eopts = append(eopts, settings.WithMessages(l.messages))
	}
	eopts = append(eopts, settings.WithEditorLogger(l.logger))
	l.editor = settings.NewEditor(store, eopts...)
	l.publish()
	return l
}

// Post enqueues msg. It reports false once the loop has stopped.
func (l *Loop) Post(msg settings.Msg) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- msg:
		return true
	case <-l.done:
		return false
	}
}

// Run processes messages one at a time until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	l.ctx = ctx
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-l.queue:
			l.handle(msg)
			l.publish()
		}
	}
}

// run executes cmd off the loop and posts a non-nil result back. Commands
// are never cancelled; a late result still applies.
func (l *Loop) run(cmd settings.Cmd) {
	if cmd == nil {
		return
	}
	go func() {
		if msg := cmd(); msg != nil {
			l.Post(msg)
		}
	}()
}

func (l *Loop) handle(msg settings.Msg) {
	switch m := msg.(type) {
	case EventMsg:
		l.lastErr = ""
		l.handleEvent(m.Event)
	case settings.ConfigChangedMsg, settings.FileChangedMsg:
		l.editor.Update(m)
	case SearchResultMsg:
		l.searching = false
		if m.Err != nil {
			l.lastErr = m.Err.Error()
			return
		}
		l.tab.Load(m.Puzzles)
		l.result = ""
		l.hint = ""
		if len(m.Puzzles) == 0 {
			l.message = l.text("puzzle.search.none", "No puzzles match the current filters.", nil)
		} else {
			l.message = l.text("puzzle.search.found", fmt.Sprintf("Found %d puzzles.", len(m.Puzzles)), map[string]any{"Count": len(m.Puzzles)})
		}
	default:
		l.logger.Debug("bridge: unhandled message", zap.Any("msg", msg))
	}
}

func (l *Loop) handleEvent(ev shellproto.Event) {
	switch ev.Type {
	case shellproto.EventField:
		field, err := settings.ParseField(ev.Field)
		if err != nil {
			l.lastErr = err.Error()
			return
		}
		cmd, err := l.editor.ApplyFieldChange(field, ev.Value)
		if err != nil {
			l.lastErr = err.Error()
			return
		}
		l.run(cmd)
	case shellproto.EventSave:
		_ = l.editor.Save()
	case shellproto.EventResize:
		if err := l.editor.SetWindowSize(ev.Width, ev.Height); err != nil {
			l.lastErr = err.Error()
		}
	case shellproto.EventSearch:
		l.search()
	case shellproto.EventNext:
		l.tab.Next()
		l.result = ""
		l.hint = ""
	case shellproto.EventPrev:
		l.tab.Prev()
		l.result = ""
		l.hint = ""
	case shellproto.EventMove:
		l.hint = ""
		l.play(ev.Value)
	case shellproto.EventHint:
		l.showHint()
	default:
		l.lastErr = "unknown event type " + string(ev.Type)
	}
}

func (l *Loop) search() {
	if l.searching {
		return
	}
	cfg := l.editor.Record()
	q := puzzle.QueryFromConfig(cfg)
	location := cfg.PuzzleDBLocation
	ctx := l.ctx
	l.searching = true
	l.run(func() settings.Msg {
		repo, err := l.open(ctx, location)
		if err != nil {
			return SearchResultMsg{Err: err}
		}
		defer repo.Close()
		ps, err := repo.Search(ctx, q)
		return SearchResultMsg{Puzzles: ps, Err: err}
	})
}

func (l *Loop) play(move string) {
	s := l.tab.Session()
	if s == nil {
		l.lastErr = l.text("puzzle.none_loaded", "No puzzle loaded", nil)
		return
	}
	res, err := s.Play(move)
	if err != nil {
		l.lastErr = err.Error()
		return
	}
	l.result = res.String()
	switch res {
	case puzzle.Correct:
		l.message = l.text("puzzle.result.correct", "Correct! Keep going.", nil)
	case puzzle.Wrong:
		l.message = l.text("puzzle.result.wrong", "That's not the move. Try again.", nil)
	case puzzle.Solved:
		l.message = l.text("puzzle.result.solved", "Puzzle solved!", nil)
		l.record(s.Puzzle().PuzzleID, s.Mistakes() == 0)
		if l.editor.View().AutoLoadNext {
			l.tab.Next()
		}
	}
}

// showHint exposes the next solution move; the board draws it as an arrow.
func (l *Loop) showHint() {
	s := l.tab.Session()
	if s == nil {
		l.lastErr = l.text("puzzle.none_loaded", "No puzzle loaded", nil)
		return
	}
	mv, ok := s.Expected()
	if !ok {
		l.lastErr = puzzle.ErrSessionOver.Error()
		return
	}
	l.hint = mv
}

func (l *Loop) record(id string, clean bool) {
	if l.progress == nil {
		return
	}
	store, ctx, logger := l.progress, l.ctx, l.logger
	l.run(func() settings.Msg {
		if err := store.Record(ctx, id, clean); err != nil {
			logger.Warn("progress record failed", zap.String("puzzle_id", id), zap.Error(err))
		}
		return nil
	})
}

func (l *Loop) text(key, fallback string, data any) string {
	if l.messages == nil {
		return fallback
	}
	s, err := l.messages.Render(key, data)
	if err != nil || s == "" {
		return fallback
	}
	return s
}

// Subscribe returns a channel that always holds the latest state. The
// channel is closed by cancel.
func (l *Loop) Subscribe() (<-chan shellproto.State, func()) {
	ch := make(chan shellproto.State, 1)
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.subs[id] = ch
	ch <- l.state
	l.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, id)
			l.mu.Unlock()
			close(ch)
		})
	}
}

// Snapshot returns the latest published state.
func (l *Loop) Snapshot() shellproto.State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

func (l *Loop) publish() {
	st := l.build()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	st.Seq = l.seq
	l.state = st
	for _, ch := range l.subs {
		select {
		case <-ch:
		default:
		}
		ch <- st
	}
}

func (l *Loop) build() shellproto.State {
	v := l.editor.View()
	st := shellproto.State{
		Settings: shellproto.SettingsView{
			EnginePath:         v.EnginePath,
			PieceTheme:         v.PieceTheme.String(),
			BoardTheme:         v.BoardTheme.String(),
			PlaySound:          v.PlaySound,
			AutoLoadNext:       v.AutoLoadNext,
			FlipBoard:          v.FlipBoard,
			PuzzleDBLocation:   v.PuzzleDBLocation,
			SearchResultsLimit: v.SearchResultsLimit,
			WindowWidth:        v.WindowWidth,
			WindowHeight:       v.WindowHeight,
			Status:             v.Status,
			Dirty:              v.State == settings.StateDirty,
		},
		Result:    l.result,
		Message:   l.message,
		Error:     l.lastErr,
		Searching: l.searching,
	}

	info := l.tab.Info()
	pv := shellproto.PuzzleView{
		Loaded:          info.Loaded,
		ID:              info.ID,
		Link:            info.Link,
		FEN:             info.FEN,
		Rating:          info.Rating,
		RatingDeviation: info.RatingDeviation,
		Popularity:      info.Popularity,
		NbPlays:         info.NbPlays,
		Themes:          info.Themes,
		GameURL:         info.GameURL,
		Side:            info.Side,
		MoveIndex:       info.MoveIndex,
		Playing:         info.Playing,
		Index:           l.tab.Index(),
		Total:           l.tab.Len(),
		Text:            info.Text(l.messages),
	}
	if s := l.tab.Session(); s != nil {
		if from, to, ok := s.LastMove(); ok {
			pv.LastMove = from.String() + to.String()
		}
		pv.Hint = l.hint
	}
	st.Puzzle = pv
	return st
}

// errNoPuzzle is returned by board rendering when nothing is loaded.
var errNoPuzzle = errors.New("no puzzle loaded")

// boardFromState rebuilds the displayed board from a snapshot.
func boardFromState(st shellproto.State) (*nchess.Board, error) {
	if !st.Puzzle.Loaded || st.Puzzle.FEN == "" {
		return nil, errNoPuzzle
	}
	opt, err := nchess.FEN(st.Puzzle.FEN)
	if err != nil {
		return nil, err
	}
	return nchess.NewGame(opt).Position().Board(), nil
}
