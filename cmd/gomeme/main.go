// GoMeme: AI meme generator.
//
// Usage:
//
//	gomeme serve [--config gomeme.yaml] [--addr :5000]
//	gomeme generate --context <text> [--style <name>]
//	gomeme render --image <url|path> --caption <text> -o <file>
//	gomeme styles
//	gomeme init
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xob0t/GoMeme/clients/server"
	"github.com/xob0t/GoMeme/pkg/artifact"
	"github.com/xob0t/GoMeme/pkg/chain"
	"github.com/xob0t/GoMeme/pkg/config"
	"github.com/xob0t/GoMeme/pkg/logging"
	"github.com/xob0t/GoMeme/pkg/meme"
	"github.com/xob0t/GoMeme/pkg/provider"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = server.RunServe(os.Args[2:])
	case "generate":
		err = runGenerate(os.Args[2:])
	case "render":
		err = runRender(os.Args[2:])
	case "styles":
		for _, s := range provider.HumorStyles {
			fmt.Println(s)
		}
	case "init":
		err = runInit(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", os.Args[1])
	}
	if err != nil {
		fatal(err)
	}
}

func runGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var configPath, topic, style string
	var timeout time.Duration
	fs.StringVar(&configPath, "config", "", "Path to gomeme.yaml (optional)")
	fs.StringVar(&topic, "context", "", "What the meme is about")
	fs.StringVar(&topic, "c", "", "What the meme is about")
	fs.StringVar(&style, "style", provider.DefaultStyle, "Humor style (see `gomeme styles`)")
	fs.DurationVar(&timeout, "timeout", 3*time.Minute, "Overall deadline")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if topic == "" {
		topic = strings.Join(fs.Args(), " ")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logFile, err := logging.Setup("gomeme", cfg.LogDir)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}
	if err := chain.Provision(cfg); err != nil {
		return err
	}
	c, _, err := chain.FromConfig(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	res, err := c.Run(ctx, topic, style)
	if err != nil {
		return err
	}
	fmt.Printf("Caption: %s\n", res.Caption)
	fmt.Printf("Done: %s\n", res.Artifact.Path)
	return nil
}

func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	var configPath, image, caption, output string
	fs.StringVar(&configPath, "config", "", "Path to gomeme.yaml (optional)")
	fs.StringVar(&image, "image", "", "Picture URL (http/https) or local file")
	fs.StringVar(&image, "i", "", "Picture URL (http/https) or local file")
	fs.StringVar(&caption, "caption", "", "Caption text")
	fs.StringVar(&output, "o", "meme.png", "Output file (.png or .jpg)")
	fs.StringVar(&output, "output", "meme.png", "Output file (.png or .jpg)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if image == "" {
		return fmt.Errorf("picture is required (--image)")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	imageURL, root, err := resolveImage(image)
	if err != nil {
		return err
	}
	compositor := meme.NewCompositor(cfg.Source(root), nil, cfg.MemeOptions())

	canvas, lines, err := compositor.Render(context.Background(), imageURL, caption)
	if err != nil {
		return err
	}
	path, err := artifact.Save(canvas, output)
	if err != nil {
		return err
	}
	fmt.Printf("Lines: %d\n", len(lines))
	fmt.Printf("Done: %s\n", path)
	return nil
}

// resolveImage turns a local path into a file URL confined to its own
// directory. Remote URLs pass through unchanged.
func resolveImage(arg string) (imageURL, root string, err error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return arg, "", nil
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", "", err
	}
	imageURL, err = meme.FileURL(abs)
	if err != nil {
		return "", "", err
	}
	return imageURL, filepath.Dir(abs), nil
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	var out string
	var force bool
	fs.StringVar(&out, "o", "gomeme.yaml", "Output path for the sample config")
	fs.BoolVar(&force, "force", false, "Overwrite an existing file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := os.Stat(out); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", out)
	}
	if err := os.WriteFile(out, []byte(config.Sample), 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	cfg := config.Default()
	if err := chain.Provision(cfg); err != nil {
		return err
	}

	fmt.Printf("Created: %s, %s, %s\n", out, cfg.MemeDir, cfg.UploadDir)
	fmt.Printf("Run: gomeme serve --config %s\n", out)
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Print(`GoMeme: AI meme generator

USAGE:
    gomeme serve [--config <path>] [--addr :5000]
    gomeme generate --context <text> [--style <name>] [--config <path>]
    gomeme render --image <url|path> --caption <text> [-o meme.png]
    gomeme styles
    gomeme init [-o gomeme.yaml] [--force]

SERVE:
    Starts the web UI and JSON API (POST /api/memes, POST /api/render).

GENERATE:
    -c, --context <text>   What the meme is about
    --style <name>         Humor style (default: Witty)
    --timeout <dur>        Overall deadline (default: 3m)

RENDER:
    -i, --image <src>      http(s) URL or local picture
    --caption <text>       Caption drawn at the bottom
    -o, --output <path>    Output file (.png or .jpg)

ENVIRONMENT:
    OPENAI_API_KEY         Enables the OpenAI generators
    GOMEME_*               Overrides config values (see gomeme init)

EXAMPLES:
    gomeme init
    gomeme serve
    gomeme generate -c "monday morning standups" --style Sarcastic
    gomeme render -i cat.jpg --caption "when the build is green" -o out.png
`)
}
