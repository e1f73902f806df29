package settings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/park285/offline-puzzles/internal/theme"
)

const (
	DefaultEngineLimit        = "depth 20"
	DefaultWindowWidth        = 1010
	DefaultWindowHeight       = 710
	DefaultPuzzleDBLocation   = "lichess_db_puzzle.csv"
	DefaultSearchResultsLimit = 20000
	DefaultTheme              = "mix"
)

// OpeningSide restricts a search to puzzles solved as one color.
type OpeningSide string

const (
	SideAny   OpeningSide = "any"
	SideWhite OpeningSide = "white"
	SideBlack OpeningSide = "black"
)

func ParseOpeningSide(s string) (OpeningSide, error) {
	switch v := OpeningSide(strings.ToLower(strings.TrimSpace(s))); v {
	case SideAny, SideWhite, SideBlack:
		return v, nil
	case "":
		return SideAny, nil
	default:
		return "", fmt.Errorf("%w: unknown opening side %q", ErrValidation, s)
	}
}

// SearchFilters are the last-used search parameters. The settings tab never
// edits them; they are carried forward on every save.
type SearchFilters struct {
	LastMinRating   int         `json:"last_min_rating" yaml:"last_min_rating"`
	LastMaxRating   int         `json:"last_max_rating" yaml:"last_max_rating"`
	LastTheme       string      `json:"last_theme" yaml:"last_theme"`
	LastOpening     string      `json:"last_opening" yaml:"last_opening"`
	LastOpeningSide OpeningSide `json:"last_opening_side" yaml:"last_opening_side"`
}

// Config is the persisted settings record.
type Config struct {
	EnginePath         *string          `json:"engine_path" yaml:"engine_path"`
	EngineLimit        string           `json:"engine_limit" yaml:"engine_limit"`
	WindowWidth        uint32           `json:"window_width" yaml:"window_width"`
	WindowHeight       uint32           `json:"window_height" yaml:"window_height"`
	PuzzleDBLocation   string           `json:"puzzle_db_location" yaml:"puzzle_db_location"`
	PieceTheme         theme.PieceTheme `json:"piece_theme" yaml:"piece_theme"`
	BoardTheme         theme.BoardTheme `json:"board_theme" yaml:"board_theme"`
	SearchResultsLimit int              `json:"search_results_limit" yaml:"search_results_limit"`
	PlaySound          bool             `json:"play_sound" yaml:"play_sound"`
	AutoLoadNext       bool             `json:"auto_load_next" yaml:"auto_load_next"`
	FlipBoard          bool             `json:"flip_board" yaml:"flip_board"`

	SearchFilters `yaml:",inline"`
}

func Default() Config {
	return Config{
		EngineLimit:        DefaultEngineLimit,
		WindowWidth:        DefaultWindowWidth,
		WindowHeight:       DefaultWindowHeight,
		PuzzleDBLocation:   DefaultPuzzleDBLocation,
		PieceTheme:         theme.Cburnett,
		BoardTheme:         theme.Brown,
		SearchResultsLimit: DefaultSearchResultsLimit,
		PlaySound:          true,
		AutoLoadNext:       true,
		SearchFilters: SearchFilters{
			LastMinRating:   0,
			LastMaxRating:   1000,
			LastTheme:       DefaultTheme,
			LastOpeningSide: SideAny,
		},
	}
}

// Validate checks the record invariants.
func (c Config) Validate() error {
	if c.EnginePath != nil && *c.EnginePath == "" {
		return fmt.Errorf("%w: engine_path must be null when empty", ErrValidation)
	}
	if c.SearchResultsLimit < 0 {
		return fmt.Errorf("%w: search_results_limit %d is negative", ErrValidation, c.SearchResultsLimit)
	}
	if c.LastMinRating < 0 || c.LastMaxRating < 0 {
		return fmt.Errorf("%w: rating range %d..%d is negative", ErrValidation, c.LastMinRating, c.LastMaxRating)
	}
	if !c.PieceTheme.Valid() {
		return fmt.Errorf("%w: piece theme %d", ErrValidation, uint8(c.PieceTheme))
	}
	if !c.BoardTheme.Valid() {
		return fmt.Errorf("%w: board theme %d", ErrValidation, uint8(c.BoardTheme))
	}
	if _, err := ParseOpeningSide(string(c.LastOpeningSide)); err != nil {
		return err
	}
	if strings.TrimSpace(c.EngineLimit) != "" {
		if _, err := EngineGoTokens(c.EngineLimit); err != nil {
			return err
		}
	}
	return nil
}

// EnginePathText is the user-facing form of the engine path.
func (c Config) EnginePathText() string {
	if c.EnginePath == nil {
		return ""
	}
	return *c.EnginePath
}

func enginePathFromText(s string) *string {
	if s == "" {
		return nil
	}
	v := s
	return &v
}

// EngineGoTokens turns a stored limit such as "depth 20" or
// "movetime 5000 nodes 100000" into the tokens of a UCI go command.
func EngineGoTokens(limit string) ([]string, error) {
	fields := strings.Fields(strings.ToLower(limit))
	if len(fields) == 0 || len(fields)%2 != 0 {
		return nil, fmt.Errorf("%w: engine limit %q", ErrValidation, limit)
	}
	args := []string{"go"}
	seen := make(map[string]bool, 3)
	for i := 0; i < len(fields); i += 2 {
		key := fields[i]
		switch key {
		case "depth", "movetime", "nodes":
		default:
			return nil, fmt.Errorf("%w: engine limit %q has unknown key %q", ErrValidation, limit, key)
		}
		if seen[key] {
			return nil, fmt.Errorf("%w: engine limit %q repeats %q", ErrValidation, limit, key)
		}
		seen[key] = true
		n, err := strconv.Atoi(fields[i+1])
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: engine limit %q needs a positive %s", ErrValidation, limit, key)
		}
		args = append(args, key, strconv.Itoa(n))
	}
	return args, nil
}
