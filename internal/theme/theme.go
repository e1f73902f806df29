package theme

import (
	"fmt"
	"image/color"
	"strings"
)

// PieceTheme names a piece set.
type PieceTheme uint8

const (
	Cburnett PieceTheme = iota
	Merida
	Alpha
	Mono
)

var pieceThemeNames = [...]string{
	Cburnett: "cburnett",
	Merida:   "merida",
	Alpha:    "alpha",
	Mono:     "mono",
}

// PiecePalette holds the colors a piece set paints with.
type PiecePalette struct {
	WhiteFill    color.NRGBA
	WhiteOutline color.NRGBA
	BlackFill    color.NRGBA
	BlackOutline color.NRGBA
	StrokeWidth  float64
}

var piecePalettes = [...]PiecePalette{
	Cburnett: {
		WhiteFill: color.NRGBA{255, 255, 255, 255}, WhiteOutline: color.NRGBA{0, 0, 0, 255},
		BlackFill: color.NRGBA{0, 0, 0, 255}, BlackOutline: color.NRGBA{0, 0, 0, 255},
		StrokeWidth: 1.5,
	},
	Merida: {
		WhiteFill: color.NRGBA{250, 246, 235, 255}, WhiteOutline: color.NRGBA{40, 34, 28, 255},
		BlackFill: color.NRGBA{40, 34, 28, 255}, BlackOutline: color.NRGBA{12, 10, 8, 255},
		StrokeWidth: 2,
	},
	Alpha: {
		WhiteFill: color.NRGBA{246, 246, 246, 255}, WhiteOutline: color.NRGBA{30, 30, 30, 255},
		BlackFill: color.NRGBA{60, 60, 60, 255}, BlackOutline: color.NRGBA{0, 0, 0, 255},
		StrokeWidth: 1,
	},
	Mono: {
		WhiteFill: color.NRGBA{210, 210, 210, 255}, WhiteOutline: color.NRGBA{90, 90, 90, 255},
		BlackFill: color.NRGBA{90, 90, 90, 255}, BlackOutline: color.NRGBA{30, 30, 30, 255},
		StrokeWidth: 1.5,
	},
}

// PieceThemes lists every piece set in display order.
func PieceThemes() []PieceTheme {
	return []PieceTheme{Cburnett, Merida, Alpha, Mono}
}

func (p PieceTheme) Valid() bool { return int(p) < len(pieceThemeNames) }

func (p PieceTheme) String() string {
	if !p.Valid() {
		return fmt.Sprintf("PieceTheme(%d)", uint8(p))
	}
	return pieceThemeNames[p]
}

// Palette returns the colors for p, falling back to cburnett.
func (p PieceTheme) Palette() PiecePalette {
	if !p.Valid() {
		return piecePalettes[Cburnett]
	}
	return piecePalettes[p]
}

func ParsePieceTheme(s string) (PieceTheme, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, name := range pieceThemeNames {
		if name == key {
			return PieceTheme(i), nil
		}
	}
	return 0, fmt.Errorf("unknown piece theme %q", s)
}

func (p PieceTheme) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid piece theme %d", uint8(p))
	}
	return []byte(pieceThemeNames[p]), nil
}

func (p *PieceTheme) UnmarshalText(b []byte) error {
	v, err := ParsePieceTheme(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// BoardTheme names a square color scheme.
type BoardTheme uint8

const (
	Blue BoardTheme = iota
	Brown
	Green
	Purple
	Grey
)

var boardThemeNames = [...]string{
	Blue:   "blue",
	Brown:  "brown",
	Green:  "green",
	Purple: "purple",
	Grey:   "grey",
}

var boardSquares = [...][2]color.RGBA{
	Blue:   {{222, 227, 230, 255}, {140, 162, 173, 255}},
	Brown:  {{240, 217, 181, 255}, {181, 136, 99, 255}},
	Green:  {{255, 255, 221, 255}, {134, 166, 102, 255}},
	Purple: {{159, 144, 176, 255}, {125, 74, 141, 255}},
	Grey:   {{185, 185, 185, 255}, {130, 130, 130, 255}},
}

// BoardThemes lists every board theme in display order.
func BoardThemes() []BoardTheme {
	return []BoardTheme{Blue, Brown, Green, Purple, Grey}
}

func (b BoardTheme) Valid() bool { return int(b) < len(boardThemeNames) }

func (b BoardTheme) String() string {
	if !b.Valid() {
		return fmt.Sprintf("BoardTheme(%d)", uint8(b))
	}
	return boardThemeNames[b]
}

// Squares returns the light and dark square colors, falling back to brown.
func (b BoardTheme) Squares() (light, dark color.RGBA) {
	if !b.Valid() {
		b = Brown
	}
	return boardSquares[b][0], boardSquares[b][1]
}

func ParseBoardTheme(s string) (BoardTheme, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "gray" {
		key = "grey"
	}
	for i, name := range boardThemeNames {
		if name == key {
			return BoardTheme(i), nil
		}
	}
	return 0, fmt.Errorf("unknown board theme %q", s)
}

func (b BoardTheme) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("invalid board theme %d", uint8(b))
	}
	return []byte(boardThemeNames[b]), nil
}

func (b *BoardTheme) UnmarshalText(text []byte) error {
	v, err := ParseBoardTheme(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}
