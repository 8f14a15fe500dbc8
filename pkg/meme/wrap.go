package meme

import "strings"

// LineBlock is the ordered set of display lines produced for one caption.
type LineBlock []string

// Wrap breaks caption into lines whose measured width fits within maxWidth
// pixels. Words are split on whitespace and re-joined with single spaces.
//
// Every line starts by taking its first word unconditionally, so a word
// wider than maxWidth occupies a line of its own instead of stalling the
// loop. An empty or whitespace-only caption yields an empty block.
func Wrap(caption string, m Measurer, maxWidth int) LineBlock {
	words := strings.Fields(caption)
	if len(words) == 0 {
		return nil
	}

	lines := make(LineBlock, 0, len(words))
	for i := 0; i < len(words); {
		line := words[i]
		i++
		for i < len(words) {
			candidate := line + " " + words[i]
			if w, _ := m.Measure(candidate); w > maxWidth {
				break
			}
			line = candidate
			i++
		}
		lines = append(lines, line)
	}
	return lines
}

// Words returns the words of every line in order.
func (b LineBlock) Words() []string {
	var words []string
	for _, line := range b {
		words = append(words, strings.Fields(line)...)
	}
	return words
}
