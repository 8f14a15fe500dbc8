// source.go - Fetching and decoding the background picture.
// HTTPSource downloads http(s) URLs with a size cap and refuses to dial
// loopback, private or link-local addresses unless told otherwise. File URLs
// are read from a single confined directory, which is where the offline image
// generator leaves its pictures.
package meme

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultMaxBytes caps a downloaded picture at 16 MiB.
const DefaultMaxBytes int64 = 16 << 20

// DefaultMaxPixels caps a decoded picture at 40 megapixels (160 MB as NRGBA).
const DefaultMaxPixels = 40_000_000

// ImageSource retrieves the raw bytes of a picture by URL.
type ImageSource interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// HTTPSource is the default ImageSource.
type HTTPSource struct {
	Client   *http.Client
	MaxBytes int64

	// LocalRoot enables file:// URLs for paths inside this directory.
	// Empty disables file URLs entirely.
	LocalRoot string

	// AllowPrivate lets the client created by NewHTTPSource dial loopback,
	// private and link-local addresses.
	AllowPrivate bool
}

// NewHTTPSource creates a source with its own client and the given timeout.
// The client checks every resolved address it dials, redirects included.
func NewHTTPSource(timeout time.Duration, maxBytes int64, localRoot string) *HTTPSource {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	s := &HTTPSource{
		MaxBytes:  maxBytes,
		LocalRoot: localRoot,
	}
	dialer := &net.Dialer{
		Timeout: 10 * time.Second,
		Control: func(network, address string, _ syscall.RawConn) error {
			if s.AllowPrivate {
				return nil
			}
			return checkPublic(address)
		},
	}
	s.Client = &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	return s
}

// checkPublic rejects a dial address that is not a public unicast IP.
func checkPublic(address string) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return fmt.Errorf("refusing to dial unresolved host %q", host)
	}
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() || ip.IsMulticast() {
		return fmt.Errorf("refusing to dial non-public address %s", ip)
	}
	return nil
}

// Fetch implements ImageSource. Every failure wraps ErrNetwork.
func (s *HTTPSource) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse url: %w", ErrNetwork, err)
	}

	switch u.Scheme {
	case "http", "https":
		return s.fetchHTTP(ctx, u.String())
	case "file":
		return s.fetchFile(u)
	default:
		return nil, fmt.Errorf("%w: unsupported url scheme %q", ErrNetwork, u.Scheme)
	}
}

func (s *HTTPSource) fetchHTTP(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrNetwork, err)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", ErrNetwork, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: get %s: status %d", ErrNetwork, target, resp.StatusCode)
	}

	return s.readLimited(resp.Body)
}

func (s *HTTPSource) fetchFile(u *url.URL) ([]byte, error) {
	if s.LocalRoot == "" {
		return nil, fmt.Errorf("%w: file urls are disabled", ErrNetwork)
	}

	root, err := filepath.Abs(s.LocalRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve root: %w", ErrNetwork, err)
	}
	path := filepath.Clean(filepath.FromSlash(u.Path))
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("%w: %s is outside %s", ErrNetwork, path, root)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer f.Close()

	return s.readLimited(f)
}

func (s *HTTPSource) readLimited(r io.Reader) ([]byte, error) {
	limit := s.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrNetwork, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrNetwork, limit)
	}
	return data, nil
}

// FileURL returns the file:// URL of a local path.
func FileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

// Decode is DecodeLimited with DefaultMaxPixels.
func Decode(data []byte) (*image.NRGBA, error) {
	return DecodeLimited(data, DefaultMaxPixels)
}

// DecodeLimited turns raw bytes into a mutable canvas. The header is checked
// first so a picture larger than maxPixels (<= 0 selects DefaultMaxPixels)
// is rejected before any pixel buffer is allocated. Failures are reported as
// ErrImageDecode.
func DecodeLimited(data []byte, maxPixels int) (*image.NRGBA, error) {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImageDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageDecode, cfg.Width, cfg.Height, maxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImageDecode, err)
	}
	return imaging.Clone(img), nil
}
