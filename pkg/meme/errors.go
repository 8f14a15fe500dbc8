// errors.go - Failure classes surfaced by the compositing pipeline.
package meme

import "errors"

// Layout and placement never fail; every error below originates at an
// I/O, decoding or font boundary and is wrapped with context by the caller.
var (
	// ErrNetwork marks a failed image fetch (transport error or non-2xx status).
	ErrNetwork = errors.New("network error")

	// ErrImageDecode marks source bytes that are not a decodable raster image.
	ErrImageDecode = errors.New("image decode error")

	// ErrFontLoad marks a font resource that cannot be opened or parsed.
	// It is a configuration error, not a per-request one.
	ErrFontLoad = errors.New("font load error")
)
