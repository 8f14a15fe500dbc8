// Package config loads GoMeme settings from defaults, an optional YAML file
// and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xob0t/GoMeme/pkg/artifact"
	"github.com/xob0t/GoMeme/pkg/meme"
	"github.com/xob0t/GoMeme/pkg/provider"
)

// Config is the complete application configuration.
type Config struct {
	Addr         string        `yaml:"addr"`
	MemeDir      string        `yaml:"meme_dir"`
	UploadDir    string        `yaml:"upload_dir"`
	ArtifactMode artifact.Mode `yaml:"artifact_mode"`
	ArtifactName string        `yaml:"artifact_name"`
	ArtifactKeep int           `yaml:"artifact_keep"`
	LogDir       string        `yaml:"log_dir"`
	Font         Font          `yaml:"font"`
	Layout       Layout        `yaml:"layout"`
	Style        Style         `yaml:"style"`
	Fetch        Fetch         `yaml:"fetch"`
	OpenAI       OpenAI        `yaml:"openai"`
}

// Font selects the caption font.
type Font struct {
	Path string  `yaml:"path"` // empty = embedded Go Regular
	Size float64 `yaml:"size"`
	DPI  float64 `yaml:"dpi"`
}

// Layout holds caption margins in pixels.
type Layout struct {
	HorizontalMargin int `yaml:"horizontal_margin"`
	BottomMargin     int `yaml:"bottom_margin"`
}

// Style holds caption colours as hex strings.
type Style struct {
	Fill        string `yaml:"fill"`
	Stroke      string `yaml:"stroke"`
	StrokeWidth int    `yaml:"stroke_width"`
}

// Fetch bounds background picture downloads.
type Fetch struct {
	Timeout   time.Duration `yaml:"timeout"`
	MaxBytes  int64         `yaml:"max_bytes"`
	MaxPixels int           `yaml:"max_pixels"`

	// AllowPrivateHosts permits downloads from loopback, private and
	// link-local addresses. Off by default since /api/render takes URLs
	// from clients.
	AllowPrivateHosts bool `yaml:"allow_private_hosts"`
}

// OpenAI configures the generation services. Without an API key the
// offline placeholder generators are used.
type OpenAI struct {
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url"`
	ChatModel  string        `yaml:"chat_model"`
	ImageModel string        `yaml:"image_model"`
	ImageSize  string        `yaml:"image_size"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:         ":5000",
		MemeDir:      "static/memes",
		UploadDir:    "static/uploads",
		ArtifactMode: artifact.ModeUnique,
		ArtifactName: "meme.png",
		ArtifactKeep: artifact.DefaultKeep,
		Font:         Font{Size: 24, DPI: 72},
		Layout:       Layout{HorizontalMargin: 20, BottomMargin: 20},
		Style:        Style{Fill: "#ffffff", Stroke: "#000000", StrokeWidth: 2},
		Fetch:        Fetch{Timeout: 30 * time.Second, MaxBytes: meme.DefaultMaxBytes, MaxPixels: meme.DefaultMaxPixels},
		OpenAI: OpenAI{
			BaseURL:    "https://api.openai.com/v1",
			ChatModel:  "gpt-4o-mini",
			ImageModel: "dall-e-2",
			ImageSize:  "512x512",
			Timeout:    60 * time.Second,
		},
	}
}

// Load returns defaults overlaid with the YAML file at path (if non-empty)
// and then with environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	str("GOMEME_ADDR", &c.Addr)
	str("GOMEME_MEME_DIR", &c.MemeDir)
	str("GOMEME_UPLOAD_DIR", &c.UploadDir)
	str("GOMEME_ARTIFACT_NAME", &c.ArtifactName)
	str("GOMEME_LOG_DIR", &c.LogDir)
	str("GOMEME_FONT", &c.Font.Path)
	str("GOMEME_FILL", &c.Style.Fill)
	str("GOMEME_STROKE", &c.Style.Stroke)
	num("GOMEME_STROKE_WIDTH", &c.Style.StrokeWidth)
	num("GOMEME_ARTIFACT_KEEP", &c.ArtifactKeep)
	str("OPENAI_API_KEY", &c.OpenAI.APIKey)
	str("OPENAI_BASE_URL", &c.OpenAI.BaseURL)

	if v, ok := lookup("GOMEME_ARTIFACT_MODE"); ok && v != "" {
		c.ArtifactMode = artifact.Mode(strings.ToLower(v))
	}
	if v, ok := lookup("GOMEME_FONT_SIZE"); ok && v != "" {
		size, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("GOMEME_FONT_SIZE: %w", err))
		} else {
			c.Font.Size = size
		}
	}

	return errors.Join(errs...)
}

// Source builds the picture fetcher described by the fetch section, with
// file URLs confined to localRoot.
func (c Config) Source(localRoot string) *meme.HTTPSource {
	source := meme.NewHTTPSource(c.Fetch.Timeout, c.Fetch.MaxBytes, localRoot)
	source.AllowPrivate = c.Fetch.AllowPrivateHosts
	return source
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.MemeDir == "" {
		errs = append(errs, errors.New("meme_dir is required"))
	}
	switch c.ArtifactMode {
	case artifact.ModeUnique, artifact.ModeShared:
	default:
		errs = append(errs, fmt.Errorf("artifact_mode must be %q or %q, got %q", artifact.ModeUnique, artifact.ModeShared, c.ArtifactMode))
	}
	if c.Font.Size <= 0 {
		errs = append(errs, fmt.Errorf("font.size must be positive, got %v", c.Font.Size))
	}
	if c.Layout.HorizontalMargin < 0 || c.Layout.BottomMargin < 0 {
		errs = append(errs, errors.New("layout margins must not be negative"))
	}
	if c.Style.StrokeWidth < 0 {
		errs = append(errs, fmt.Errorf("style.stroke_width must not be negative, got %d", c.Style.StrokeWidth))
	}
	if c.Fetch.MaxPixels < 0 {
		errs = append(errs, fmt.Errorf("fetch.max_pixels must not be negative, got %d", c.Fetch.MaxPixels))
	}
	if _, err := meme.ParseHexColor(c.Style.Fill); err != nil {
		errs = append(errs, fmt.Errorf("style.fill: %w", err))
	}
	if _, err := meme.ParseHexColor(c.Style.Stroke); err != nil {
		errs = append(errs, fmt.Errorf("style.stroke: %w", err))
	}
	return errors.Join(errs...)
}

// MemeOptions converts the layout, font and style sections for the
// compositor. Call Validate first; invalid colours fall back to defaults.
func (c Config) MemeOptions() meme.Options {
	opts := meme.DefaultOptions()
	opts.FontPath = c.Font.Path
	opts.FontSize = c.Font.Size
	if c.Font.DPI > 0 {
		opts.DPI = c.Font.DPI
	}
	opts.HorizontalMargin = c.Layout.HorizontalMargin
	opts.BottomMargin = c.Layout.BottomMargin
	if c.Fetch.MaxPixels > 0 {
		opts.MaxPixels = c.Fetch.MaxPixels
	}
	opts.Style.StrokeWidth = c.Style.StrokeWidth
	if fill, err := meme.ParseHexColor(c.Style.Fill); err == nil {
		opts.Style.Fill = fill
	}
	if stroke, err := meme.ParseHexColor(c.Style.Stroke); err == nil {
		opts.Style.Stroke = stroke
	}
	return opts
}

// OpenAIConfig converts the openai section for the provider client.
func (c Config) OpenAIConfig() provider.OpenAIConfig {
	return provider.OpenAIConfig{
		APIKey:     c.OpenAI.APIKey,
		BaseURL:    c.OpenAI.BaseURL,
		ChatModel:  c.OpenAI.ChatModel,
		ImageModel: c.OpenAI.ImageModel,
		ImageSize:  c.OpenAI.ImageSize,
		Timeout:    c.OpenAI.Timeout,
	}
}

// ImageSize parses openai.image_size ("WxH"), defaulting to 512x512.
func (c Config) ImageSize() (int, int) {
	w, h, ok := strings.Cut(c.OpenAI.ImageSize, "x")
	if !ok {
		return 512, 512
	}
	wi, err1 := strconv.Atoi(w)
	hi, err2 := strconv.Atoi(h)
	if err1 != nil || err2 != nil || wi <= 0 || hi <= 0 {
		return 512, 512
	}
	return wi, hi
}
