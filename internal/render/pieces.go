package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/offline-puzzles/internal/theme"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

const svgHeader = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 45 45" width="45" height="45">` +
	`<g fill="{FILL}" stroke="{STROKE}" stroke-width="{WIDTH}" stroke-linejoin="round" stroke-linecap="round">`

const svgFooter = `</g></svg>`

// Piece outlines on a 45x45 grid. {STROKE} is also used for interior detail.
var pieceShapes = map[nchess.PieceType]string{
	nchess.Pawn: `<path d="M 22.5,9 C 20.3,9 18.5,10.8 18.5,13 C 18.5,13.9 18.8,14.7 19.3,15.4 ` +
		`C 17.3,16.5 16,18.6 16,21 C 16,23 16.9,24.8 18.4,26 C 15.4,27.1 11,31.6 11,39.5 L 34,39.5 ` +
		`C 34,31.6 29.6,27.1 26.6,26 C 28.1,24.8 29,23 29,21 C 29,18.6 27.7,16.5 25.7,15.4 ` +
		`C 26.2,14.7 26.5,13.9 26.5,13 C 26.5,10.8 24.7,9 22.5,9 Z"/>`,
	nchess.Rook: `<path d="M 9,39 L 36,39 L 36,36 L 33,36 L 31,29 L 31,17 L 34,14 L 34,9 L 30,9 L 30,11 ` +
		`L 25,11 L 25,9 L 20,9 L 20,11 L 15,11 L 15,9 L 11,9 L 11,14 L 14,17 L 14,29 L 12,36 L 9,36 Z"/>` +
		`<path d="M 14,17 L 31,17 M 14,29 L 31,29" fill="none"/>`,
	nchess.Knight: `<path d="M 12,39 L 34,39 C 34,30 32,22 28,15 C 26,11 22,9 18,10 L 17,7 L 14,11 ` +
		`C 11,13 9,17 10,21 C 11,23 13,23 15,21 L 19,20 C 17,24 13,28 12,39 Z"/>` +
		`<circle cx="16" cy="14" r="1.2" fill="{STROKE}"/>`,
	nchess.Bishop: `<path d="M 9,36 L 36,36 L 36,39 L 9,39 Z"/>` +
		`<path d="M 15,33 C 13,27 14,20 22.5,11 C 31,20 32,27 30,33 Z"/>` +
		`<circle cx="22.5" cy="8" r="2.5"/>` +
		`<path d="M 22.5,17 L 22.5,25 M 18.5,21 L 26.5,21" fill="none"/>`,
	nchess.Queen: `<path d="M 9,26 L 12,13 L 16.5,24 L 18.5,11 L 22.5,24 L 26.5,11 L 28.5,24 L 33,13 L 36,26 ` +
		`C 33,29 32,32 32,36 L 13,36 C 13,32 12,29 9,26 Z"/>` +
		`<path d="M 11,36 L 34,36 L 34,39 L 11,39 Z"/>` +
		`<circle cx="12" cy="12" r="2"/><circle cx="18.5" cy="10" r="2"/>` +
		`<circle cx="26.5" cy="10" r="2"/><circle cx="33" cy="12" r="2"/>`,
	nchess.King: `<path d="M 22.5,6 L 22.5,13 M 19,9.5 L 26,9.5" fill="none"/>` +
		`<path d="M 22.5,22 C 21,17 21,14 22.5,13 C 24,14 24,17 22.5,22 Z"/>` +
		`<path d="M 12,36 C 9,30 9,24 14,21 C 18,19 21,19 22.5,22 C 24,19 27,19 31,21 ` +
		`C 36,24 36,30 33,36 Z"/>` +
		`<path d="M 11,36 L 34,36 L 34,39 L 11,39 Z"/>`,
}

// pieceSVG renders the SVG document for piece in the colors of pt.
func pieceSVG(piece nchess.Piece, pt theme.PieceTheme) (string, error) {
	shape, ok := pieceShapes[piece.Type()]
	if !ok {
		return "", fmt.Errorf("no shape for piece %v", piece)
	}
	pal := pt.Palette()
	fill, stroke := pal.WhiteFill, pal.WhiteOutline
	if piece.Color() == nchess.Black {
		fill, stroke = pal.BlackFill, pal.BlackOutline
		if fill == stroke {
			// detail lines would vanish on a solid black piece
			stroke = pal.WhiteFill
		}
	}
	r := strings.NewReplacer(
		"{FILL}", hexColor(fill),
		"{STROKE}", hexColor(stroke),
		"{WIDTH}", strconv.FormatFloat(pal.StrokeWidth, 'f', -1, 64),
	)
	return r.Replace(svgHeader + shape + svgFooter), nil
}

func hexColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

type pieceKey struct {
	piece nchess.Piece
	theme theme.PieceTheme
	size  int
}

// pieceCache holds rasterized pieces; entries never expire.
type pieceCache struct {
	mu     sync.RWMutex
	images map[pieceKey]*image.RGBA
}

func newPieceCache() *pieceCache {
	return &pieceCache{images: make(map[pieceKey]*image.RGBA)}
}

func (c *pieceCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

func (c *pieceCache) get(piece nchess.Piece, pt theme.PieceTheme, size int) (*image.RGBA, error) {
	key := pieceKey{piece: piece, theme: pt, size: size}

	c.mu.RLock()
	img, ok := c.images[key]
	c.mu.RUnlock()
	if ok {
		return img, nil
	}

	doc, err := pieceSVG(piece, pt)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img = image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.Transparent, image.Point{}, draw.Src)
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1.0)

	c.mu.Lock()
	if prev, ok := c.images[key]; ok {
		img = prev
	} else {
		c.images[key] = img
	}
	c.mu.Unlock()
	return img, nil
}
