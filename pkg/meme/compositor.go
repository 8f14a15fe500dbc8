// compositor.go - The caption compositing pipeline.
// Fetch picture -> decode -> wrap caption -> place lines -> draw -> save.
// Everything runs sequentially on the calling goroutine; cancellation and
// deadlines come from the caller's context.
package meme

import (
	"context"
	"fmt"
	"image"
	"image/draw"
)

// Options configures layout and styling for one compositor.
type Options struct {
	FontPath         string  // empty selects the embedded Go font
	FontSize         float64 // points
	DPI              float64
	HorizontalMargin int // pixels kept clear on each side of a line
	BottomMargin     int // pixels between the last line and the bottom edge
	MaxPixels        int // decoded picture size limit; 0 selects DefaultMaxPixels
	Style            Style
}

// DefaultOptions returns 24pt text with 20px margins in DefaultStyle.
func DefaultOptions() Options {
	return Options{
		FontSize:         24,
		DPI:              72,
		HorizontalMargin: 20,
		BottomMargin:     20,
		MaxPixels:        DefaultMaxPixels,
		Style:            DefaultStyle,
	}
}

// Saver persists a finished canvas and reports where it went.
type Saver interface {
	Save(img image.Image) (string, error)
}

// Artifact describes a persisted meme.
type Artifact struct {
	Path   string
	Width  int
	Height int
	Lines  LineBlock
}

// Compositor puts captions on pictures.
type Compositor struct {
	source ImageSource
	saver  Saver
	fonts  *FontCache
	opts   Options
}

// NewCompositor creates a compositor. saver may be nil when only Render and
// Caption are used.
func NewCompositor(source ImageSource, saver Saver, opts Options) *Compositor {
	return &Compositor{
		source: source,
		saver:  saver,
		fonts:  NewFontCache(),
		opts:   opts,
	}
}

// Options returns the compositor's configuration.
func (c *Compositor) Options() Options {
	return c.opts
}

// CheckFont loads the configured font once so a broken font path is
// reported at startup rather than on the first request.
func (c *Compositor) CheckFont() error {
	face, err := c.fonts.Face(c.opts.FontPath, c.opts.FontSize, c.opts.DPI)
	if err != nil {
		return err
	}
	return face.Close()
}

// Compose renders caption onto the picture at imageURL and saves the result.
func (c *Compositor) Compose(ctx context.Context, imageURL, caption string) (*Artifact, error) {
	if c.saver == nil {
		return nil, fmt.Errorf("compose: no artifact saver configured")
	}

	canvas, lines, err := c.Render(ctx, imageURL, caption)
	if err != nil {
		return nil, err
	}

	path, err := c.saver.Save(canvas)
	if err != nil {
		return nil, fmt.Errorf("save meme: %w", err)
	}

	b := canvas.Bounds()
	return &Artifact{
		Path:   path,
		Width:  b.Dx(),
		Height: b.Dy(),
		Lines:  lines,
	}, nil
}

// Render fetches and decodes the picture at imageURL and draws caption on it
// without persisting anything.
func (c *Compositor) Render(ctx context.Context, imageURL, caption string) (*image.NRGBA, LineBlock, error) {
	data, err := c.source.Fetch(ctx, imageURL)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch image: %w", err)
	}

	canvas, err := DecodeLimited(data, c.opts.MaxPixels)
	if err != nil {
		return nil, nil, fmt.Errorf("decode image: %w", err)
	}

	lines, err := c.Caption(canvas, caption)
	if err != nil {
		return nil, nil, err
	}
	return canvas, lines, nil
}

// Caption lays out caption against canvas and draws it in place, anchored
// to the bottom edge. It returns the lines that were drawn.
func (c *Compositor) Caption(canvas draw.Image, caption string) (LineBlock, error) {
	face, err := c.fonts.Face(c.opts.FontPath, c.opts.FontSize, c.opts.DPI)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	m := FaceMeasurer{Face: face}
	b := canvas.Bounds()

	lines := Wrap(caption, m, b.Dx()-2*c.opts.HorizontalMargin)
	heights := make([]int, len(lines))
	for i, line := range lines {
		_, heights[i] = m.Measure(line)
	}

	p := Place(heights, b.Dy(), c.opts.BottomMargin)
	DrawLines(canvas, lines, p, face, c.opts.Style)
	return lines, nil
}
