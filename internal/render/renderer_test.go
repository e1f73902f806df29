package render

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"strings"
	"testing"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/offline-puzzles/internal/theme"
)

func startBoard() *nchess.Board {
	return nchess.NewGame().Position().Board()
}

func TestRenderPNGDecodes(t *testing.T) {
	r := New(WithSquareSize(32))
	data, err := r.RenderPNG(context.Background(), startBoard(), Options{
		BoardTheme:  theme.Blue,
		PieceTheme:  theme.Merida,
		Coordinates: true,
		Highlight:   &Highlight{From: nchess.E2, To: nchess.E4},
		Hint:        &Highlight{From: nchess.G1, To: nchess.F3},
	})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 8*32+coordMargin || b.Dy() != 8*32+coordMargin {
		t.Fatalf("bounds = %v", b)
	}
}

func centerRGB(t *testing.T, r *Renderer, board *nchess.Board, opts Options, col, row int) (uint8, uint8, uint8) {
	t.Helper()
	img, err := r.Render(context.Background(), board, opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	c := img.RGBAAt(col*r.squareSize+r.squareSize/2, row*r.squareSize+r.squareSize/2)
	return c.R, c.G, c.B
}

func TestFlipPutsBlackAtBottom(t *testing.T) {
	r := New(WithSquareSize(45))
	board := startBoard()

	// bottom-left cell: a1 white rook normally, h8 black rook when flipped
	red, _, _ := centerRGB(t, r, board, Options{PieceTheme: theme.Cburnett}, 0, 7)
	if red < 200 {
		t.Fatalf("expected a white piece at bottom-left, red=%d", red)
	}
	red, _, _ = centerRGB(t, r, board, Options{PieceTheme: theme.Cburnett, Flip: true}, 0, 7)
	if red > 80 {
		t.Fatalf("expected a black piece at bottom-left when flipped, red=%d", red)
	}
}

func TestBoardThemeColors(t *testing.T) {
	r := New(WithSquareSize(16))
	empty := nchess.NewBoard(map[nchess.Square]nchess.Piece{})
	for _, bt := range theme.BoardThemes() {
		light, dark := bt.Squares()
		img, err := r.Render(context.Background(), empty, Options{BoardTheme: bt})
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		// a8 is light, a1 is dark
		if got := img.RGBAAt(1, 1); got != light {
			t.Fatalf("%s: a8 = %v, want %v", bt, got, light)
		}
		if got := img.RGBAAt(1, 7*16+1); got != dark {
			t.Fatalf("%s: a1 = %v, want %v", bt, got, dark)
		}
	}
}

func TestPieceCacheReused(t *testing.T) {
	r := New(WithSquareSize(24))
	opts := Options{PieceTheme: theme.Alpha}
	if _, err := r.Render(context.Background(), startBoard(), opts); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if n := r.pieces.len(); n != 12 {
		t.Fatalf("cache size = %d, want 12", n)
	}
	if _, err := r.Render(context.Background(), startBoard(), opts); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if n := r.pieces.len(); n != 12 {
		t.Fatalf("cache grew on re-render: %d", n)
	}
	opts.PieceTheme = theme.Mono
	if _, err := r.Render(context.Background(), startBoard(), opts); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if n := r.pieces.len(); n != 24 {
		t.Fatalf("cache size after theme change = %d, want 24", n)
	}
}

func TestPieceSVGUsesPalette(t *testing.T) {
	doc, err := pieceSVG(nchess.WhiteQueen, theme.Merida)
	if err != nil {
		t.Fatalf("pieceSVG: %v", err)
	}
	if !strings.Contains(doc, `fill="#faf6eb"`) || !strings.Contains(doc, `stroke-width="2"`) {
		t.Fatalf("palette not applied: %s", doc)
	}
}

func TestRenderErrors(t *testing.T) {
	r := New()
	if _, err := r.RenderPNG(context.Background(), nil, Options{}); !errors.Is(err, ErrNilBoard) {
		t.Fatalf("want ErrNilBoard, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.RenderPNG(ctx, startBoard(), Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}
