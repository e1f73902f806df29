package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/offline-puzzles/internal/theme"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	DefaultSquareSize = 64
	coordMargin       = 20
)

var ErrNilBoard = errors.New("board is nil")

// Highlight marks a move by its squares.
type Highlight struct {
	From nchess.Square
	To   nchess.Square
}

type Options struct {
	BoardTheme  theme.BoardTheme
	PieceTheme  theme.PieceTheme
	Flip        bool       // draw from Black's side
	Highlight   *Highlight // last move, shaded squares
	Hint        *Highlight // suggested move, arrow
	Coordinates bool
}

// Renderer draws boards as PNG. It is safe for concurrent use.
type Renderer struct {
	squareSize int
	pieces     *pieceCache
}

type Option func(*Renderer)

func WithSquareSize(px int) Option {
	return func(r *Renderer) {
		if px >= 16 {
			r.squareSize = px
		}
	}
}

func New(opts ...Option) *Renderer {
	r := &Renderer{squareSize: DefaultSquareSize, pieces: newPieceCache()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) RenderPNG(ctx context.Context, board *nchess.Board, opts Options) ([]byte, error) {
	img, err := r.Render(ctx, board, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Render draws board into a new image.
func (r *Renderer) Render(ctx context.Context, board *nchess.Board, opts Options) (*image.RGBA, error) {
	if board == nil {
		return nil, ErrNilBoard
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g := geometry{size: r.squareSize, flip: opts.Flip}
	if opts.Coordinates {
		g.origin = image.Pt(coordMargin, 0)
	}
	bounds := g.boardRect()
	if opts.Coordinates {
		bounds.Max.Y += coordMargin
	}
	img := image.NewRGBA(image.Rect(0, 0, bounds.Max.X, bounds.Max.Y))
	draw.Draw(img, img.Bounds(), image.NewUniform(frameColor), image.Point{}, draw.Src)

	light, dark := opts.BoardTheme.Squares()
	for sq := nchess.A1; sq <= nchess.H8; sq++ {
		clr := light
		if (int(sq.File())+int(sq.Rank()))%2 == 0 {
			clr = dark
		}
		draw.Draw(img, g.squareRect(sq), image.NewUniform(clr), image.Point{}, draw.Src)
	}

	if h := opts.Highlight; h != nil {
		fillSquare(img, g.squareRect(h.From), lastMoveColor)
		fillSquare(img, g.squareRect(h.To), lastMoveColor)
	}

	for sq, piece := range board.SquareMap() {
		if piece == nchess.NoPiece {
			continue
		}
		pimg, err := r.pieces.get(piece, opts.PieceTheme, g.size)
		if err != nil {
			return nil, err
		}
		draw.Draw(img, g.squareRect(sq), pimg, image.Point{}, draw.Over)
	}

	if h := opts.Hint; h != nil && h.From != h.To {
		drawArrow(img, g.center(h.From), g.center(h.To), float64(g.size), hintColor)
	}
	if opts.Coordinates {
		drawCoordinates(img, g)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return img, nil
}

var (
	frameColor     = color.RGBA{38, 36, 33, 255}
	lastMoveColor  = color.NRGBA{R: 155, G: 199, B: 0, A: 105}
	hintColor      = color.NRGBA{R: 21, G: 120, B: 27, A: 170}
	coordTextColor = color.RGBA{200, 200, 200, 255}
)

// geometry maps squares to pixels.
type geometry struct {
	size   int
	flip   bool
	origin image.Point
}

func (g geometry) boardRect() image.Rectangle {
	return image.Rect(g.origin.X, g.origin.Y, g.origin.X+8*g.size, g.origin.Y+8*g.size)
}

// cell returns the column and row of sq as drawn, row 0 at the top.
func (g geometry) cell(sq nchess.Square) (col, row int) {
	col, row = int(sq.File()), 7-int(sq.Rank())
	if g.flip {
		col, row = 7-col, 7-row
	}
	return col, row
}

func (g geometry) squareRect(sq nchess.Square) image.Rectangle {
	col, row := g.cell(sq)
	x := g.origin.X + col*g.size
	y := g.origin.Y + row*g.size
	return image.Rect(x, y, x+g.size, y+g.size)
}

func (g geometry) center(sq nchess.Square) pointF {
	r := g.squareRect(sq)
	return pointF{X: float64(r.Min.X) + float64(g.size)/2, Y: float64(r.Min.Y) + float64(g.size)/2}
}

func drawCoordinates(img *image.RGBA, g geometry) {
	d := &font.Drawer{Dst: img, Src: image.NewUniform(coordTextColor), Face: basicfont.Face7x13}
	ascent := basicfont.Face7x13.Metrics().Ascent.Ceil()
	board := g.boardRect()

	for i := 0; i < 8; i++ {
		rank := nchess.Rank(7 - i)
		file := nchess.File(i)
		if g.flip {
			rank, file = nchess.Rank(i), nchess.File(7-i)
		}
		rowCenter := board.Min.Y + i*g.size + g.size/2
		drawCentered(d, rank.String(), board.Min.X-coordMargin/2, rowCenter+ascent/2)

		colCenter := board.Min.X + i*g.size + g.size/2
		drawCentered(d, file.String(), colCenter, board.Max.Y+ascent+2)
	}
}

func drawCentered(d *font.Drawer, text string, centerX, baseline int) {
	w := d.MeasureString(text).Round()
	d.Dot = fixed.P(centerX-w/2, baseline)
	d.DrawString(text)
}
