// placeholder.go - Offline generators used when no API key is configured.
// Pictures are gradient cards drawn with fogleman/gg and written into the
// upload directory; the compositor reads them back through file:// URLs.
package provider

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"

	"github.com/xob0t/GoMeme/pkg/meme"
)

// Placeholder produces deterministic captions and pictures without any
// network access.
type Placeholder struct {
	Dir    string // where pictures are written; must exist
	Width  int
	Height int

	fonts *meme.FontCache
}

// NewPlaceholder creates a placeholder generator writing into dir.
func NewPlaceholder(dir string, width, height int) *Placeholder {
	if width <= 0 {
		width = 512
	}
	if height <= 0 {
		height = 512
	}
	return &Placeholder{Dir: dir, Width: width, Height: height, fonts: meme.NewFontCache()}
}

// Caption implements CaptionGenerator.
func (p *Placeholder) Caption(ctx context.Context, topic, style string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	topic = strings.TrimSpace(topic)
	if style == "" {
		style = DefaultStyle
	}
	return fmt.Sprintf("Me trying to be %s about %s 😅", strings.ToLower(style), topic), nil
}

// Image implements ImageGenerator. The same prompt always maps to the same
// file, so repeated requests reuse one picture. Pictures are written under a
// temporary name and renamed into place, so the returned file is always
// complete.
func (p *Placeholder) Image(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	sum := sha1.Sum([]byte(prompt))
	path := filepath.Join(p.Dir, "placeholder-"+hex.EncodeToString(sum[:6])+".png")

	if _, err := os.Stat(path); err != nil {
		if err := p.render(path, prompt, sum); err != nil {
			return "", fmt.Errorf("%w: placeholder image: %w", ErrGeneration, err)
		}
	}

	u, err := meme.FileURL(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	return u, nil
}

func (p *Placeholder) render(path, prompt string, seed [20]byte) error {
	dc, err := p.draw(prompt, seed)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(p.Dir, ".placeholder-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := dc.EncodePNG(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (p *Placeholder) draw(prompt string, seed [20]byte) (*gg.Context, error) {
	w, h := float64(p.Width), float64(p.Height)
	dc := gg.NewContext(p.Width, p.Height)

	grad := gg.NewLinearGradient(0, 0, w, h)
	grad.AddColorStop(0, color.RGBA{R: seed[0], G: seed[1], B: seed[2], A: 255})
	grad.AddColorStop(1, color.RGBA{R: seed[3], G: seed[4], B: seed[5], A: 255})
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	dc.SetRGBA(1, 1, 1, 0.15)
	dc.DrawCircle(w*0.5, h*0.4, min(w, h)*0.3)
	dc.Fill()

	fonts := p.fonts
	if fonts == nil {
		fonts = meme.NewFontCache()
	}
	face, err := fonts.Face("", 16, 72)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	dc.SetFontFace(face)
	dc.SetRGBA(1, 1, 1, 0.85)
	dc.DrawStringWrapped(trimText(prompt, 160), w/2, 24, 0.5, 0, w-48, 1.4, gg.AlignCenter)
	return dc, nil
}

func trimText(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	if max < 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
