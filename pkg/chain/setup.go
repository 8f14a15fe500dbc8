// setup.go - Building a ready-to-run chain from configuration.
package chain

import (
	"fmt"
	"log"
	"os"

	"github.com/xob0t/GoMeme/pkg/artifact"
	"github.com/xob0t/GoMeme/pkg/config"
	"github.com/xob0t/GoMeme/pkg/meme"
	"github.com/xob0t/GoMeme/pkg/provider"
)

// Provision creates the meme and upload directories. The compositor never
// creates directories itself.
func Provision(cfg config.Config) error {
	for _, dir := range []string{cfg.MemeDir, cfg.UploadDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// FromConfig builds the store, compositor and generators described by cfg.
// The configured font is loaded once here so a broken font path fails fast.
func FromConfig(cfg config.Config) (*Chain, *artifact.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	store, err := artifact.NewStore(cfg.MemeDir, cfg.ArtifactName, cfg.ArtifactMode, cfg.ArtifactKeep)
	if err != nil {
		return nil, nil, err
	}

	compositor := meme.NewCompositor(cfg.Source(cfg.UploadDir), store, cfg.MemeOptions())
	if err := compositor.CheckFont(); err != nil {
		return nil, nil, err
	}

	c := &Chain{Compositor: compositor}
	if cfg.OpenAI.APIKey != "" {
		client := provider.NewOpenAI(cfg.OpenAIConfig())
		c.Captions, c.Images = client, client
		log.Printf("using OpenAI generators chat=%s image=%s", cfg.OpenAI.ChatModel, cfg.OpenAI.ImageModel)
	} else {
		w, h := cfg.ImageSize()
		placeholder := provider.NewPlaceholder(cfg.UploadDir, w, h)
		c.Captions, c.Images = placeholder, placeholder
		log.Printf("no OpenAI API key configured, using offline placeholder generators")
	}

	return c, store, nil
}
