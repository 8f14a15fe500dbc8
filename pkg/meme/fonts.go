// fonts.go - Font loading with an embedded fallback and per-path caching.
// Uses golang.org/x/image/font/opentype for OpenType parsing. An empty font
// path selects the embedded Go Regular font; a configured path that cannot be
// read or parsed is reported as ErrFontLoad rather than silently replaced.
package meme

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontCache parses each font file once and hands out faces at any size.
// Cached fonts produce exactly the same faces as freshly parsed ones.
type FontCache struct {
	mu     sync.Mutex
	parsed map[string]*opentype.Font
}

// NewFontCache creates an empty font cache.
func NewFontCache() *FontCache {
	return &FontCache{parsed: make(map[string]*opentype.Font)}
}

// Face returns a font.Face at the specified size for the font at path.
// If path is empty, uses the embedded Go font.
func (fc *FontCache) Face(path string, size, dpi float64) (font.Face, error) {
	if dpi <= 0 {
		dpi = 72
	}

	f, err := fc.load(path)
	if err != nil {
		return nil, err
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create face for %s: %w", ErrFontLoad, fontName(path), err)
	}
	return face, nil
}

func (fc *FontCache) load(path string) (*opentype.Font, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if f, ok := fc.parsed[path]; ok {
		return f, nil
	}

	fontData := goregular.TTF
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFontLoad, err)
		}
		fontData = data
	}

	f, err := opentype.Parse(fontData)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrFontLoad, fontName(path), err)
	}

	fc.parsed[path] = f
	return f, nil
}

func fontName(path string) string {
	if path == "" {
		return "embedded Go Regular"
	}
	return path
}

// Measurer is the single text-measurement primitive the layout relies on.
// It returns the pixel bounding box of s drawn from a line's left origin,
// with height measured from the ascender line down to the lowest ink.
type Measurer interface {
	Measure(s string) (width, height int)
}

// FaceMeasurer measures strings with a font.Face.
type FaceMeasurer struct {
	Face font.Face
}

// Measure implements Measurer.
func (m FaceMeasurer) Measure(s string) (width, height int) {
	if s == "" {
		return 0, 0
	}
	bounds, _ := font.BoundString(m.Face, s)
	ascent := m.Face.Metrics().Ascent
	return bounds.Max.X.Ceil(), (ascent + bounds.Max.Y).Ceil()
}
