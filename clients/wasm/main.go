//go:build js && wasm

// GoMeme WASM: client-side caption preview.
// Compiled with: GOOS=js GOARCH=wasm go build -o gomeme.wasm ./clients/wasm/
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"syscall/js"

	"github.com/xob0t/GoMeme/pkg/artifact"
	"github.com/xob0t/GoMeme/pkg/meme"
)

// previewOptions mirrors the layout and style sections of gomeme.yaml.
type previewOptions struct {
	FontSize         float64 `json:"font_size"`
	HorizontalMargin *int    `json:"horizontal_margin"`
	BottomMargin     *int    `json:"bottom_margin"`
	Fill             string  `json:"fill"`
	Stroke           string  `json:"stroke"`
	StrokeWidth      *int    `json:"stroke_width"`
}

// One compositor per options JSON; fonts stay parsed between previews.
var (
	compositorsMu sync.Mutex
	compositors   = make(map[string]*meme.Compositor)
)

func main() {
	fmt.Println("GoMeme WASM loaded")

	// Register JS-callable functions.
	js.Global().Set("goRenderMeme", js.FuncOf(renderMeme))
	js.Global().Set("goReady", js.ValueOf(true))

	// Block forever (WASM must not exit).
	select {}
}

// goRenderMeme(base64Image, caption, optionsJSON) returns a base64 PNG or
// a string starting with "error:".
func renderMeme(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("error: need base64Image, caption")
	}

	data, err := base64.StdEncoding.DecodeString(args[0].String())
	if err != nil {
		return js.ValueOf("error: invalid base64: " + err.Error())
	}

	var raw string
	if len(args) > 2 && args[2].Type() == js.TypeString {
		raw = args[2].String()
	}

	compositor, err := compositorFor(raw)
	if err != nil {
		return js.ValueOf("error: " + err.Error())
	}

	canvas, err := meme.Decode(data)
	if err != nil {
		return js.ValueOf("error: " + err.Error())
	}
	if _, err := compositor.Caption(canvas, args[1].String()); err != nil {
		return js.ValueOf("error: " + err.Error())
	}

	var buf bytes.Buffer
	if err := artifact.Encode(&buf, canvas, ".png"); err != nil {
		return js.ValueOf("error: encode: " + err.Error())
	}
	return js.ValueOf(base64.StdEncoding.EncodeToString(buf.Bytes()))
}

func compositorFor(raw string) (*meme.Compositor, error) {
	compositorsMu.Lock()
	defer compositorsMu.Unlock()

	if c, ok := compositors[raw]; ok {
		return c, nil
	}

	var p previewOptions
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("parse options: %w", err)
		}
	}

	opts := meme.DefaultOptions()
	if p.FontSize > 0 {
		opts.FontSize = p.FontSize
	}
	if p.HorizontalMargin != nil {
		opts.HorizontalMargin = *p.HorizontalMargin
	}
	if p.BottomMargin != nil {
		opts.BottomMargin = *p.BottomMargin
	}
	if p.StrokeWidth != nil {
		opts.Style.StrokeWidth = *p.StrokeWidth
	}
	if p.Fill != "" {
		fill, err := meme.ParseHexColor(p.Fill)
		if err != nil {
			return nil, err
		}
		opts.Style.Fill = fill
	}
	if p.Stroke != "" {
		stroke, err := meme.ParseHexColor(p.Stroke)
		if err != nil {
			return nil, err
		}
		opts.Style.Stroke = stroke
	}

	// Previews never fetch or save; the canvas comes from the page.
	c := meme.NewCompositor(nil, nil, opts)
	compositors[raw] = c
	return c, nil
}
