package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/park285/offline-puzzles/internal/obslog"
	"github.com/park285/offline-puzzles/internal/theme"
	"go.uber.org/zap"
)

// Field names an editable setting.
type Field string

const (
	FieldPlaySound          Field = "play_sound"
	FieldAutoLoadNext       Field = "auto_load_next"
	FieldFlipBoard          Field = "flip_board"
	FieldPieceTheme         Field = "piece_theme"
	FieldBoardTheme         Field = "board_theme"
	FieldPuzzleDBLocation   Field = "puzzle_db_location"
	FieldSearchResultsLimit Field = "search_results_limit"
	FieldEnginePath         Field = "engine_path"
)

var fields = []Field{
	FieldPlaySound,
	FieldAutoLoadNext,
	FieldFlipBoard,
	FieldPieceTheme,
	FieldBoardTheme,
	FieldPuzzleDBLocation,
	FieldSearchResultsLimit,
	FieldEnginePath,
}

// Fields lists the editable settings.
func Fields() []Field { return append([]Field(nil), fields...) }

func ParseField(s string) (Field, error) {
	key := Field(strings.ToLower(strings.TrimSpace(s)))
	for _, f := range fields {
		if f == key {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown field %q", ErrValidation, s)
}

// Msg is a result delivered back to the event loop that owns an Editor.
type Msg any

// Cmd is deferred work. The owner runs it off the event loop and posts the
// returned Msg back.
type Cmd func() Msg

// ConfigChangedMsg carries a record recomputed after a live settings change.
type ConfigChangedMsg struct{ Config Config }

// FileChangedMsg carries a record re-read after the settings file changed
// outside the editor.
type FileChangedMsg struct{ Config Config }

// State tracks whether the editor holds unsaved changes.
type State int

const (
	StateClean State = iota
	StateDirty
)

func (s State) String() string {
	if s == StateDirty {
		return "dirty"
	}
	return "clean"
}

// Overlay is the set of live fields applied on top of the persisted record.
type Overlay struct {
	PlaySound    bool
	AutoLoadNext bool
	FlipBoard    bool
	PieceTheme   theme.PieceTheme
	BoardTheme   theme.BoardTheme
	EnginePath   string
}

// Apply returns cfg with the overlay fields replaced. Search filters and every
// other field are left as given.
func (o Overlay) Apply(cfg Config) Config {
	cfg.PlaySound = o.PlaySound
	cfg.AutoLoadNext = o.AutoLoadNext
	cfg.FlipBoard = o.FlipBoard
	cfg.PieceTheme = o.PieceTheme
	cfg.BoardTheme = o.BoardTheme
	cfg.EnginePath = enginePathFromText(o.EnginePath)
	return cfg
}

// RecomputeDerived re-reads the persisted record and overlays o. Reading
// first keeps filter changes made elsewhere since the last edit.
func RecomputeDerived(store *Store, o Overlay) Cmd {
	return func() Msg {
		return ConfigChangedMsg{Config: o.Apply(store.Load())}
	}
}

// Messages renders user-facing status strings. *msgcat.Catalog satisfies it.
type Messages interface {
	Render(key string, data any) (string, error)
}

const (
	msgSaved            = "settings.saved"
	msgSaveFailed       = "settings.save_failed"
	msgStoreUnreachable = "settings.store_unreachable"

	fallbackSaved            = "Settings saved!"
	fallbackSaveFailed       = "Error saving config file."
	fallbackStoreUnreachable = "Error reading config file."
)

// Editor is the settings tab state. It is not safe for concurrent use; one
// event loop owns it.
type Editor struct {
	store    *Store
	messages Messages
	logger   *zap.Logger

	enginePath         string
	windowWidth        uint32
	windowHeight       uint32
	pieceTheme         theme.PieceTheme
	boardTheme         theme.BoardTheme
	playSound          bool
	autoLoadNext       bool
	flipBoard          bool
	puzzleDBLocation   string
	searchResultsLimit string

	status string
	state  State
	saved  Config
}

type EditorOption func(*Editor)

func WithMessages(m Messages) EditorOption {
	return func(e *Editor) { e.messages = m }
}

func WithEditorLogger(l *zap.Logger) EditorOption {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEditor loads the persisted record once and seeds the fields from it.
func NewEditor(store *Store, opts ...EditorOption) *Editor {
	e := &Editor{store: store, logger: obslog.L()}
	for _, opt := range opts {
		opt(e)
	}
	e.reset(store.Load())
	return e
}

func (e *Editor) reset(cfg Config) {
	e.saved = cfg
	e.enginePath = cfg.EnginePathText()
	e.windowWidth = cfg.WindowWidth
	e.windowHeight = cfg.WindowHeight
	e.pieceTheme = cfg.PieceTheme
	e.boardTheme = cfg.BoardTheme
	e.playSound = cfg.PlaySound
	e.autoLoadNext = cfg.AutoLoadNext
	e.flipBoard = cfg.FlipBoard
	e.puzzleDBLocation = cfg.PuzzleDBLocation
	e.searchResultsLimit = strconv.Itoa(cfg.SearchResultsLimit)
}

func (e *Editor) overlay() Overlay {
	return Overlay{
		PlaySound:    e.playSound,
		AutoLoadNext: e.autoLoadNext,
		FlipBoard:    e.flipBoard,
		PieceTheme:   e.pieceTheme,
		BoardTheme:   e.boardTheme,
		EnginePath:   e.enginePath,
	}
}

// ApplyFieldChange updates one field from its text form. Live fields return a
// Cmd recomputing the active record. Rejected input leaves the field and the
// status untouched and returns an error wrapping ErrValidation.
func (e *Editor) ApplyFieldChange(field Field, value string) (Cmd, error) {
	switch field {
	case FieldPlaySound, FieldAutoLoadNext, FieldFlipBoard:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q", ErrValidation, field, value)
		}
		switch field {
		case FieldPlaySound:
			e.playSound = b
		case FieldAutoLoadNext:
			e.autoLoadNext = b
		default:
			e.flipBoard = b
		}
	case FieldPieceTheme:
		pt, err := theme.ParsePieceTheme(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		e.pieceTheme = pt
	case FieldBoardTheme:
		bt, err := theme.ParseBoardTheme(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		e.boardTheme = bt
	case FieldEnginePath:
		e.enginePath = value
	case FieldPuzzleDBLocation:
		e.puzzleDBLocation = value
		e.state = StateDirty
		return nil, nil
	case FieldSearchResultsLimit:
		if value == "" {
			e.searchResultsLimit = "0"
			e.state = StateDirty
			return nil, nil
		}
		n, err := strconv.ParseUint(value, 10, 31)
		if err != nil {
			e.logger.Debug("search results limit rejected", zap.String("value", value))
			return nil, fmt.Errorf("%w: %s=%q", ErrValidation, field, value)
		}
		e.searchResultsLimit = strconv.FormatUint(n, 10)
		e.status = ""
		e.state = StateDirty
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unknown field %q", ErrValidation, field)
	}
	e.state = StateDirty
	return RecomputeDerived(e.store, e.overlay()), nil
}

// Record builds the full settings record from the editor fields. Engine
// limit and search filters come from the latest persisted snapshot.
func (e *Editor) Record() Config {
	limit, err := strconv.Atoi(e.searchResultsLimit)
	if err != nil {
		limit = e.saved.SearchResultsLimit
	}
	return Config{
		EnginePath:         enginePathFromText(e.enginePath),
		EngineLimit:        e.saved.EngineLimit,
		WindowWidth:        e.windowWidth,
		WindowHeight:       e.windowHeight,
		PuzzleDBLocation:   e.puzzleDBLocation,
		PieceTheme:         e.pieceTheme,
		BoardTheme:         e.boardTheme,
		SearchResultsLimit: limit,
		PlaySound:          e.playSound,
		AutoLoadNext:       e.autoLoadNext,
		FlipBoard:          e.flipBoard,
		SearchFilters:      e.saved.SearchFilters,
	}
}

// Save writes the full record and sets the status line.
func (e *Editor) Save() error {
	cfg := e.Record()
	err := e.store.Save(cfg)
	switch {
	case err == nil:
		e.saved = cfg
		e.state = StateClean
		e.status = e.render(msgSaved, fallbackSaved)
	case errors.Is(err, ErrSerialization):
		e.status = e.render(msgSaveFailed, fallbackSaveFailed)
	default:
		e.status = e.render(msgStoreUnreachable, fallbackStoreUnreachable)
	}
	if err != nil {
		e.logger.Warn("settings save failed", zap.String("path", e.store.Path()), zap.Error(err))
	}
	return err
}

// Update applies a message produced by a Cmd or the file watcher.
func (e *Editor) Update(msg Msg) {
	switch m := msg.(type) {
	case ConfigChangedMsg:
		e.saved = m.Config
		e.windowWidth = m.Config.WindowWidth
		e.windowHeight = m.Config.WindowHeight
	case FileChangedMsg:
		if e.state == StateDirty {
			e.saved = m.Config
			e.windowWidth = m.Config.WindowWidth
			e.windowHeight = m.Config.WindowHeight
			return
		}
		e.reset(m.Config)
	}
}

// SetWindowSize persists a resized window without touching the edit flow.
func (e *Editor) SetWindowSize(width, height uint32) error {
	if err := e.store.SaveWindowSize(width, height); err != nil {
		return err
	}
	e.windowWidth = width
	e.windowHeight = height
	e.saved.WindowWidth = width
	e.saved.WindowHeight = height
	return nil
}

func (e *Editor) render(key, fallback string) string {
	if e.messages == nil {
		return fallback
	}
	s, err := e.messages.Render(key, nil)
	if err != nil || strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// EditorView is a read-only snapshot of the settings tab.
type EditorView struct {
	EnginePath         string
	WindowWidth        uint32
	WindowHeight       uint32
	PieceTheme         theme.PieceTheme
	BoardTheme         theme.BoardTheme
	PlaySound          bool
	AutoLoadNext       bool
	FlipBoard          bool
	PuzzleDBLocation   string
	SearchResultsLimit string
	Status             string
	State              State
}

func (e *Editor) View() EditorView {
	return EditorView{
		EnginePath:         e.enginePath,
		WindowWidth:        e.windowWidth,
		WindowHeight:       e.windowHeight,
		PieceTheme:         e.pieceTheme,
		BoardTheme:         e.boardTheme,
		PlaySound:          e.playSound,
		AutoLoadNext:       e.autoLoadNext,
		FlipBoard:          e.flipBoard,
		PuzzleDBLocation:   e.puzzleDBLocation,
		SearchResultsLimit: e.searchResultsLimit,
		Status:             e.status,
		State:              e.state,
	}
}

// Saved returns the latest persisted snapshot the editor knows about.
func (e *Editor) Saved() Config { return e.saved }

func (e *Editor) Status() string { return e.status }

func (e *Editor) State() State { return e.state }
