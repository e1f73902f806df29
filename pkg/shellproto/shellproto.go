// Package shellproto defines the JSON messages exchanged between the puzzle
// core and a GUI shell over the bridge websocket.
package shellproto

// EventType names an input event sent by the shell.
type EventType string

const (
	EventField  EventType = "field"
	EventSave   EventType = "save"
	EventResize EventType = "resize"
	EventSearch EventType = "search"
	EventNext   EventType = "next"
	EventPrev   EventType = "prev"
	EventMove   EventType = "move"
	EventHint   EventType = "hint"
)

// Event is one shell input. field uses Field and Value, resize uses Width and
// Height, move carries a SAN or UCI move in Value. hint asks for the next
// solution move.
type Event struct {
	Type   EventType `json:"type"`
	Field  string    `json:"field,omitempty"`
	Value  string    `json:"value,omitempty"`
	Width  uint32    `json:"width,omitempty"`
	Height uint32    `json:"height,omitempty"`
}

// SettingsView mirrors the settings tab.
type SettingsView struct {
	EnginePath         string `json:"engine_path"`
	PieceTheme         string `json:"piece_theme"`
	BoardTheme         string `json:"board_theme"`
	PlaySound          bool   `json:"play_sound"`
	AutoLoadNext       bool   `json:"auto_load_next"`
	FlipBoard          bool   `json:"flip_board"`
	PuzzleDBLocation   string `json:"puzzle_db_location"`
	SearchResultsLimit string `json:"search_results_limit"`
	WindowWidth        uint32 `json:"window_width"`
	WindowHeight       uint32 `json:"window_height"`
	Status             string `json:"status"`
	Dirty              bool   `json:"dirty"`
}

// PuzzleView mirrors the puzzle-info tab and the board.
type PuzzleView struct {
	Loaded          bool   `json:"loaded"`
	ID              string `json:"id,omitempty"`
	Link            string `json:"link,omitempty"`
	FEN             string `json:"fen,omitempty"`
	Rating          int    `json:"rating,omitempty"`
	RatingDeviation int    `json:"rating_deviation,omitempty"`
	Popularity      int    `json:"popularity,omitempty"`
	NbPlays         int    `json:"nb_plays,omitempty"`
	Themes          string `json:"themes,omitempty"`
	GameURL         string `json:"game_url,omitempty"`
	Side            string `json:"side,omitempty"`
	MoveIndex       int    `json:"move_index,omitempty"`
	Playing         bool   `json:"playing"`
	LastMove        string `json:"last_move,omitempty"`
	Hint            string `json:"hint,omitempty"`
	Index           int    `json:"index"`
	Total           int    `json:"total"`
	Text            string `json:"text"`
}

// State is the full snapshot pushed after every processed event.
type State struct {
	Seq       uint64       `json:"seq"`
	ConnID    string       `json:"conn_id,omitempty"`
	Settings  SettingsView `json:"settings"`
	Puzzle    PuzzleView   `json:"puzzle"`
	Result    string       `json:"result,omitempty"`
	Message   string       `json:"message,omitempty"`
	Error     string       `json:"error,omitempty"`
	Searching bool         `json:"searching"`
}
