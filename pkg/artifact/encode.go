// encode.go - Format selection and encoding via disintegration/imaging.
package artifact

import (
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// jpegQuality keeps JPEG output near-lossless.
const jpegQuality = 95

// Encode writes img to w in the format implied by ext (".png", ".jpg", ...).
// An empty ext selects PNG.
func Encode(w io.Writer, img image.Image, ext string) error {
	format, err := formatFor("meme" + ext)
	if err != nil {
		return err
	}
	return encode(w, img, format)
}

// ContentType returns the MIME type for an artifact file name.
func ContentType(name string) string {
	format, err := formatFor(name)
	if err != nil {
		return "application/octet-stream"
	}
	switch format {
	case imaging.JPEG:
		return "image/jpeg"
	case imaging.GIF:
		return "image/gif"
	case imaging.BMP:
		return "image/bmp"
	case imaging.TIFF:
		return "image/tiff"
	default:
		return "image/png"
	}
}

func formatFor(name string) (imaging.Format, error) {
	if filepath.Ext(name) == "" {
		return imaging.PNG, nil
	}
	format, err := imaging.FormatFromFilename(name)
	if err != nil {
		return 0, fmt.Errorf("unsupported artifact format %q", strings.ToLower(filepath.Ext(name)))
	}
	return format, nil
}

func encode(w io.Writer, img image.Image, format imaging.Format) error {
	return imaging.Encode(w, img, format, imaging.JPEGQuality(jpegQuality))
}
