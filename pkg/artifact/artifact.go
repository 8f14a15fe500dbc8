// Package artifact persists finished memes as raster files.
//
// The output format is inferred from the file extension:
//   - ".png" (or no extension) → PNG, lossless
//   - ".jpg", ".jpeg" → JPEG at quality 95
//   - ".gif", ".bmp", ".tif", ".tiff"
//
// Writes overwrite in place. There is no atomic rename, so a crash mid-write
// can leave a truncated file behind; callers that need durability must write
// elsewhere and rename themselves.
package artifact

import (
	"errors"
	"fmt"
	"image"
	"os"
)

// ErrWrite marks a failure to persist an artifact.
var ErrWrite = errors.New("write error")

// Save encodes img to path and returns path. The parent directory must
// already exist.
func Save(img image.Image, path string) (string, error) {
	format, err := formatFor(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrWrite, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrWrite, err)
	}

	if err := encode(f, img, format); err != nil {
		f.Close()
		return "", fmt.Errorf("%w: encode %s: %w", ErrWrite, path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: close %s: %w", ErrWrite, path, err)
	}
	return path, nil
}
