// Package chain runs the full meme workflow: generate a picture and a
// caption for a topic, then composite them.
package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/creachadair/taskgroup"

	"github.com/xob0t/GoMeme/pkg/meme"
	"github.com/xob0t/GoMeme/pkg/provider"
)

// ErrEmptyTopic is returned when the user supplied no context.
var ErrEmptyTopic = errors.New("meme context is empty")

// Chain wires the generators to a compositor.
type Chain struct {
	Captions   provider.CaptionGenerator
	Images     provider.ImageGenerator
	Compositor *meme.Compositor
}

// Result is everything produced by one run.
type Result struct {
	Topic    string
	Style    string
	Caption  string
	ImageURL string
	Artifact *meme.Artifact
}

// Run generates a meme for topic in the given humor style. The caption and
// the picture are requested concurrently; the first failure cancels the
// other request.
func (c *Chain) Run(ctx context.Context, topic, style string) (*Result, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}
	style = strings.TrimSpace(style)
	if style == "" {
		style = provider.DefaultStyle
	}

	genCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var imageURL, caption string
	g := taskgroup.New(func(err error) error {
		cancel()
		return err
	})
	g.Go(func() error {
		u, err := c.Images.Image(genCtx, provider.ImagePrompt(topic))
		if err != nil {
			return fmt.Errorf("generate image: %w", err)
		}
		imageURL = u
		return nil
	})
	g.Go(func() error {
		text, err := c.Captions.Caption(genCtx, topic, style)
		if err != nil {
			return fmt.Errorf("generate caption: %w", err)
		}
		caption = text
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	art, err := c.Compositor.Compose(ctx, imageURL, caption)
	if err != nil {
		return nil, err
	}

	return &Result{
		Topic:    topic,
		Style:    style,
		Caption:  caption,
		ImageURL: imageURL,
		Artifact: art,
	}, nil
}
