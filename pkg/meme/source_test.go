package meme

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x), uint8(y), 90, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestHTTPSourceFetch(t *testing.T) {
	body := pngBytes(t, 32, 16)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(body)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := NewHTTPSource(5*time.Second, 0, "")
	src.AllowPrivate = true

	got, err := src.Fetch(context.Background(), srv.URL+"/ok.png")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !bytes.Equal(got, body) {
		t.Fatalf("Fetch returned %d bytes, want %d", len(got), len(body))
	}

	if _, err := src.Fetch(context.Background(), srv.URL+"/missing.png"); !errors.Is(err, ErrNetwork) {
		t.Fatalf("404 err = %v, want ErrNetwork", err)
	}
}

func TestHTTPSourceSizeLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte{0xff}, 2048))
	}))
	defer srv.Close()

	src := NewHTTPSource(5*time.Second, 1024, "")
	src.AllowPrivate = true
	if _, err := src.Fetch(context.Background(), srv.URL); !errors.Is(err, ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork for oversize body", err)
	}
}

func TestHTTPSourceUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	src := NewHTTPSource(2*time.Second, 0, "")
	src.AllowPrivate = true
	if _, err := src.Fetch(context.Background(), addr+"/gone.png"); !errors.Is(err, ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
}

func TestHTTPSourceRejectsScheme(t *testing.T) {
	src := NewHTTPSource(time.Second, 0, "")
	if _, err := src.Fetch(context.Background(), "ftp://example.com/a.png"); !errors.Is(err, ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
}

func TestHTTPSourceFileURLs(t *testing.T) {
	root := t.TempDir()
	inside := filepath.Join(root, "pic.png")
	if err := os.WriteFile(inside, pngBytes(t, 4, 4), 0o644); err != nil {
		t.Fatal(err)
	}
	outsideDir := t.TempDir()
	outside := filepath.Join(outsideDir, "secret.png")
	if err := os.WriteFile(outside, []byte("secret"), 0o644); err != nil {
		t.Fatal(err)
	}

	src := NewHTTPSource(time.Second, 0, root)

	u, err := FileURL(inside)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := src.Fetch(context.Background(), u); err != nil {
		t.Fatalf("Fetch inside root: %v", err)
	}

	u, err = FileURL(outside)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := src.Fetch(context.Background(), u); !errors.Is(err, ErrNetwork) {
		t.Fatalf("outside root err = %v, want ErrNetwork", err)
	}

	disabled := NewHTTPSource(time.Second, 0, "")
	u, _ = FileURL(inside)
	if _, err := disabled.Fetch(context.Background(), u); !errors.Is(err, ErrNetwork) {
		t.Fatalf("disabled file urls err = %v, want ErrNetwork", err)
	}
}

func TestDecode(t *testing.T) {
	img, err := Decode(pngBytes(t, 10, 6))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 10 || b.Dy() != 6 {
		t.Fatalf("bounds = %v, want 10x6", b)
	}

	if _, err := Decode([]byte("<html>not a picture</html>")); !errors.Is(err, ErrImageDecode) {
		t.Fatalf("err = %v, want ErrImageDecode", err)
	}
}

func TestHTTPSourceRefusesInternalAddresses(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("instance-id"))
	}))
	defer srv.Close()

	src := NewHTTPSource(5*time.Second, 0, "")
	_, err := src.Fetch(context.Background(), srv.URL+"/latest/meta-data")
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
	if n := hits.Load(); n != 0 {
		t.Fatalf("internal server received %d requests", n)
	}
}

func TestCheckPublic(t *testing.T) {
	blocked := []string{
		"127.0.0.1:80",
		"[::1]:443",
		"10.1.2.3:80",
		"172.16.0.9:80",
		"192.168.1.1:80",
		"169.254.169.254:80",
		"[fe80::1]:80",
		"0.0.0.0:80",
		"[fd00::1]:80",
		"localhost:80",
	}
	for _, addr := range blocked {
		if err := checkPublic(addr); err == nil {
			t.Fatalf("checkPublic(%q) allowed", addr)
		}
	}
	for _, addr := range []string{"93.184.216.34:443", "[2606:4700::6810:84e5]:443"} {
		if err := checkPublic(addr); err != nil {
			t.Fatalf("checkPublic(%q): %v", addr, err)
		}
	}
}

// pngHeader returns a PNG signature and IHDR chunk declaring w x h pixels,
// with no image data behind it.
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA

	chunk := append([]byte("IHDR"), ihdr...)
	binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	buf.Write(chunk)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestDecodeRejectsHugeDimensions(t *testing.T) {
	data := pngHeader(30000, 30000)
	if len(data) > 64 {
		t.Fatalf("header is %d bytes", len(data))
	}
	if _, err := Decode(data); !errors.Is(err, ErrImageDecode) {
		t.Fatalf("err = %v, want ErrImageDecode", err)
	}
}

func TestDecodeLimited(t *testing.T) {
	data := pngBytes(t, 20, 10)
	if _, err := DecodeLimited(data, 200); err != nil {
		t.Fatalf("picture at the limit rejected: %v", err)
	}
	if _, err := DecodeLimited(data, 199); !errors.Is(err, ErrImageDecode) {
		t.Fatalf("err = %v, want ErrImageDecode", err)
	}
}
