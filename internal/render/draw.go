package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

type pointF struct {
	X float64
	Y float64
}

func fillSquare(img *image.RGBA, rect image.Rectangle, clr color.Color) {
	draw.Draw(img, rect, image.NewUniform(clr), image.Point{}, draw.Over)
}

// drawArrow draws a shaft and head from start to end, stopping short of the
// target center so the piece stays visible.
func drawArrow(img *image.RGBA, start, end pointF, squareSize float64, clr color.Color) {
	dx, dy := end.X-start.X, end.Y-start.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	dirX, dirY := dx/length, dy/length
	perpX, perpY := -dirY, dirX

	baseLen := length - squareSize*0.45
	if baseLen < squareSize*0.35 {
		baseLen = length * 0.6
	}
	half := squareSize * 0.1
	head := squareSize * 0.32

	base := pointF{X: start.X + dirX*baseLen, Y: start.Y + dirY*baseLen}
	offset := func(p pointF, d float64) pointF {
		return pointF{X: p.X + perpX*d, Y: p.Y + perpY*d}
	}

	fillTriangle(img, offset(start, -half), offset(start, half), offset(base, half), clr)
	fillTriangle(img, offset(start, -half), offset(base, half), offset(base, -half), clr)
	fillTriangle(img, end, offset(base, -head), offset(base, head), clr)
}

func fillTriangle(img *image.RGBA, a, b, c pointF, clr color.Color) {
	minX := int(math.Floor(math.Min(a.X, math.Min(b.X, c.X))))
	maxX := int(math.Ceil(math.Max(a.X, math.Max(b.X, c.X))))
	minY := int(math.Floor(math.Min(a.Y, math.Min(b.Y, c.Y))))
	maxY := int(math.Ceil(math.Max(a.Y, math.Max(b.Y, c.Y))))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if inTriangle(float64(x)+0.5, float64(y)+0.5, a, b, c) {
				blend(img, x, y, clr)
			}
		}
	}
}

func inTriangle(x, y float64, a, b, c pointF) bool {
	denom := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if denom == 0 {
		return false
	}
	alpha := ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / denom
	beta := ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / denom
	return alpha >= 0 && beta >= 0 && 1-alpha-beta >= 0
}

// blend composites clr over one pixel.
func blend(img *image.RGBA, x, y int, clr color.Color) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}
	sr, sg, sb, sa := clr.RGBA()
	if sa == 0 {
		return
	}
	dst := img.RGBAAt(x, y)
	inv := 0xffff - sa
	mix := func(s uint32, d uint8) uint8 {
		return uint8((s + uint32(d)*0x101*inv/0xffff) >> 8)
	}
	img.SetRGBA(x, y, color.RGBA{
		R: mix(sr, dst.R),
		G: mix(sg, dst.G),
		B: mix(sb, dst.B),
		A: mix(sa, dst.A),
	})
}
