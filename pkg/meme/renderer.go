// renderer.go - Outlined caption drawing onto a mutable canvas.
// Each line is centred horizontally and drawn twice over: first the stroke
// colour at every offset inside a disc of the stroke radius, then the fill
// colour at the origin, so the fill always sits on top of its outline.
package meme

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Style describes how caption glyphs are painted.
type Style struct {
	Fill        color.Color
	Stroke      color.Color
	StrokeWidth int // outline radius in pixels; 0 disables the outline
}

// DefaultStyle is white text with a 2px black outline.
var DefaultStyle = Style{
	Fill:        color.White,
	Stroke:      color.Black,
	StrokeWidth: 2,
}

// CenterX returns the left edge that centres a line of lineWidth pixels on a
// canvas of canvasWidth pixels. Integer division may leave the line 1px left
// of true centre.
func CenterX(canvasWidth, lineWidth int) int {
	return (canvasWidth - lineWidth) / 2
}

// DrawLines paints lines onto canvas at the vertical positions in p. p.Y[i]
// is the top of line i; the baseline sits one ascent below it. An empty
// block leaves the canvas untouched.
func DrawLines(canvas draw.Image, lines LineBlock, p Placement, face font.Face, style Style) {
	if len(lines) == 0 {
		return
	}

	bounds := canvas.Bounds()
	m := FaceMeasurer{Face: face}
	ascent := face.Metrics().Ascent.Ceil()
	offsets := strokeOffsets(style.StrokeWidth)

	for i, line := range lines {
		if i >= len(p.Y) {
			break
		}
		w, _ := m.Measure(line)
		x := bounds.Min.X + CenterX(bounds.Dx(), w)
		baseline := bounds.Min.Y + p.Y[i] + ascent

		if style.Stroke != nil {
			for _, off := range offsets {
				drawString(canvas, line, x+off.X, baseline+off.Y, style.Stroke, face)
			}
		}
		drawString(canvas, line, x, baseline, style.Fill, face)
	}
}

// strokeOffsets lists every non-zero integer offset within radius r.
func strokeOffsets(r int) []image.Point {
	var pts []image.Point
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if dx*dx+dy*dy > r*r {
				continue
			}
			pts = append(pts, image.Point{X: dx, Y: dy})
		}
	}
	return pts
}

// drawString draws text with its baseline origin at (x, y).
func drawString(img draw.Image, text string, x, y int, col color.Color, face font.Face) {
	if col == nil {
		col = color.White
	}
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}
