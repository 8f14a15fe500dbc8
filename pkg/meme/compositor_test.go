package meme

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"
)

type fakeSource struct {
	data []byte
	err  error
	urls []string
}

func (f *fakeSource) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	f.urls = append(f.urls, rawURL)
	return f.data, f.err
}

type fakeSaver struct {
	saved image.Image
	err   error
}

func (f *fakeSaver) Save(img image.Image) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.saved = img
	return "memes/out.png", nil
}

func TestComposeEndToEnd(t *testing.T) {
	src := &fakeSource{data: pngBytes(t, 512, 512)}
	saver := &fakeSaver{}
	c := NewCompositor(src, saver, DefaultOptions())

	caption := "When the generated meme finally renders on the first try after three days of debugging"
	art, err := c.Compose(context.Background(), "https://images.example/abc.png", caption)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	if art.Path != "memes/out.png" {
		t.Fatalf("Path = %q", art.Path)
	}
	if art.Width != 512 || art.Height != 512 {
		t.Fatalf("size = %dx%d, want 512x512", art.Width, art.Height)
	}
	if len(art.Lines) < 2 {
		t.Fatalf("Lines = %q, want the long caption wrapped", art.Lines)
	}
	if got := strings.Join(art.Lines.Words(), " "); got != caption {
		t.Fatalf("wrapped words = %q, want %q", got, caption)
	}
	if saver.saved == nil {
		t.Fatal("nothing saved")
	}
	if len(src.urls) != 1 || src.urls[0] != "https://images.example/abc.png" {
		t.Fatalf("fetched %v", src.urls)
	}
}

func TestComposeEmptyCaptionKeepsPicture(t *testing.T) {
	data := pngBytes(t, 64, 64)
	want, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}

	saver := &fakeSaver{}
	c := NewCompositor(&fakeSource{data: data}, saver, DefaultOptions())
	art, err := c.Compose(context.Background(), "https://x/y.png", "   ")
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if len(art.Lines) != 0 {
		t.Fatalf("Lines = %q, want none", art.Lines)
	}

	got := saver.saved.(*image.NRGBA)
	for i := range want.Pix {
		if got.Pix[i] != want.Pix[i] {
			t.Fatalf("pixel byte %d differs from the source picture", i)
		}
	}
}

func TestComposeErrors(t *testing.T) {
	saveErr := errors.New("disk full")
	tests := []struct {
		name  string
		src   *fakeSource
		saver *fakeSaver
		opts  func(*Options)
		want  error
	}{
		{"network", &fakeSource{err: ErrNetwork}, &fakeSaver{}, nil, ErrNetwork},
		{"decode", &fakeSource{data: []byte("nope")}, &fakeSaver{}, nil, ErrImageDecode},
		{"font", nil, &fakeSaver{}, func(o *Options) { o.FontPath = "/does/not/exist.ttf" }, ErrFontLoad},
		{"save", nil, &fakeSaver{err: saveErr}, nil, saveErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := tt.src
			if src == nil {
				src = &fakeSource{data: pngBytes(t, 100, 100)}
			}
			opts := DefaultOptions()
			if tt.opts != nil {
				tt.opts(&opts)
			}
			c := NewCompositor(src, tt.saver, opts)
			_, err := c.Compose(context.Background(), "https://x/y.png", "caption")
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestComposeWithoutSaver(t *testing.T) {
	c := NewCompositor(&fakeSource{data: pngBytes(t, 8, 8)}, nil, DefaultOptions())
	if _, err := c.Compose(context.Background(), "https://x/y.png", "hi"); err == nil {
		t.Fatal("Compose without saver succeeded")
	}
}

func TestCheckFont(t *testing.T) {
	if err := NewCompositor(nil, nil, DefaultOptions()).CheckFont(); err != nil {
		t.Fatalf("CheckFont with embedded font: %v", err)
	}
	opts := DefaultOptions()
	opts.FontPath = "/does/not/exist.ttf"
	if err := NewCompositor(nil, nil, opts).CheckFont(); !errors.Is(err, ErrFontLoad) {
		t.Fatalf("err = %v, want ErrFontLoad", err)
	}
}
