package meme

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func TestCenterX(t *testing.T) {
	tests := []struct {
		canvas, line, want int
	}{
		{500, 200, 150},
		{500, 201, 149},
		{100, 100, 0},
		{100, 140, -20},
	}
	for _, tt := range tests {
		if got := CenterX(tt.canvas, tt.line); got != tt.want {
			t.Fatalf("CenterX(%d, %d) = %d, want %d", tt.canvas, tt.line, got, tt.want)
		}
	}
}

func TestStrokeOffsets(t *testing.T) {
	if got := strokeOffsets(0); len(got) != 0 {
		t.Fatalf("strokeOffsets(0) = %v, want none", got)
	}
	// Radius 1 covers the four orthogonal neighbours.
	if got := strokeOffsets(1); len(got) != 4 {
		t.Fatalf("strokeOffsets(1) has %d points, want 4", len(got))
	}
	// Radius 2: the 5x5 square minus four corners and the centre.
	if got := strokeOffsets(2); len(got) != 20 {
		t.Fatalf("strokeOffsets(2) has %d points, want 20", len(got))
	}
}

func grayCanvas(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.NRGBA{128, 128, 128, 255}), image.Point{}, draw.Src)
	return img
}

func testFace(t *testing.T) *FaceMeasurer {
	t.Helper()
	face, err := NewFontCache().Face("", 24, 72)
	if err != nil {
		t.Fatalf("load embedded font: %v", err)
	}
	t.Cleanup(func() { face.Close() })
	return &FaceMeasurer{Face: face}
}

func TestDrawLinesEmptyBlockLeavesCanvas(t *testing.T) {
	m := testFace(t)
	canvas := grayCanvas(200, 100)
	before := append([]byte(nil), canvas.Pix...)

	DrawLines(canvas, nil, Place(nil, 100, 20), m.Face, DefaultStyle)

	for i := range before {
		if canvas.Pix[i] != before[i] {
			t.Fatalf("pixel byte %d changed for an empty block", i)
		}
	}
}

func TestDrawLinesPaintsFillAndStroke(t *testing.T) {
	m := testFace(t)
	canvas := grayCanvas(400, 200)

	lines := LineBlock{"HELLO MEME"}
	_, h := m.Measure(lines[0])
	p := Place([]int{h}, 200, 20)
	DrawLines(canvas, lines, p, m.Face, DefaultStyle)

	var white, black int
	for y := 0; y < 200; y++ {
		for x := 0; x < 400; x++ {
			c := canvas.NRGBAAt(x, y)
			switch {
			case c.R > 240 && c.G > 240 && c.B > 240:
				white++
				if y < p.StartY-2 {
					t.Fatalf("fill pixel at (%d,%d) above the caption block starting at %d", x, y, p.StartY)
				}
			case c.R < 15 && c.G < 15 && c.B < 15:
				black++
			}
		}
	}
	if white == 0 {
		t.Fatal("no fill pixels drawn")
	}
	if black == 0 {
		t.Fatal("no stroke pixels drawn")
	}
}

func TestDrawLinesWithoutStroke(t *testing.T) {
	m := testFace(t)
	canvas := grayCanvas(300, 100)

	style := DefaultStyle
	style.StrokeWidth = 0
	lines := LineBlock{"plain"}
	_, h := m.Measure(lines[0])
	DrawLines(canvas, lines, Place([]int{h}, 100, 20), m.Face, style)

	for y := 0; y < 100; y++ {
		for x := 0; x < 300; x++ {
			if c := canvas.NRGBAAt(x, y); c.R < 15 && c.G < 15 && c.B < 15 {
				t.Fatalf("stroke pixel at (%d,%d) with stroke disabled", x, y)
			}
		}
	}
}
