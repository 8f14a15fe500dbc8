// Package provider talks to the caption and image generation services that
// feed the meme compositor.
package provider

import (
	"context"
	"errors"
	"fmt"
)

// ErrGeneration marks a failed or unusable response from a generation service.
var ErrGeneration = errors.New("generation failed")

// CaptionGenerator writes a caption for a topic in a humor style.
type CaptionGenerator interface {
	Caption(ctx context.Context, topic, style string) (string, error)
}

// ImageGenerator produces a picture for a prompt and returns its URL.
type ImageGenerator interface {
	Image(ctx context.Context, prompt string) (string, error)
}

// DefaultStyle is used when no humor style is supplied.
const DefaultStyle = "Witty"

// HumorStyles lists the styles offered to users.
var HumorStyles = []string{
	"Witty",
	"Sarcastic",
	"Pun-based",
	"Dark Humor",
	"Dad Jokes",
	"Absurd",
	"Dry Humor",
	"Self-deprecating",
	"Slapstick",
	"Cringe-worthy",
	"Playful",
	"Intellectual",
	"Meta",
	"Surreal",
	"Mocking",
	"Nerdy/Geeky",
	"Observational",
	"Parody",
	"Satire",
	"Hyperbole",
}

// ImagePrompt builds the picture prompt for a meme topic.
func ImagePrompt(topic string) string {
	return fmt.Sprintf("A photorealistic picture that humorously reflects this situation: %s. "+
		"Vibrant and engaging, suitable for a meme, with clear focal elements.", topic)
}

// captionPrompts returns the system and user messages for a caption request.
func captionPrompts(topic, style string) (system, user string) {
	system = fmt.Sprintf("You write meme captions for a living. Create %s, engaging and humorous text.", style)
	user = fmt.Sprintf("Write one funny caption with emojis for a picture of: %s", topic)
	return system, user
}
