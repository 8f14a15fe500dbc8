package meme

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

// runeMeasurer gives every rune a fixed width and every string a fixed height.
type runeMeasurer struct {
	perRune int
	height  int
}

func (m runeMeasurer) Measure(s string) (int, int) {
	if s == "" {
		return 0, 0
	}
	return utf8.RuneCountInString(s) * m.perRune, m.height
}

func TestWrapSplitsAtWidth(t *testing.T) {
	m := runeMeasurer{perRune: 10, height: 20}
	got := Wrap("Hello wonderful world of memes", m, 160)
	want := LineBlock{"Hello wonderful", "world of memes"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Wrap = %q, want %q", got, want)
	}
}

func TestWrapEmptyCaption(t *testing.T) {
	m := runeMeasurer{perRune: 10, height: 20}
	for _, caption := range []string{"", "   ", "\t\n"} {
		if got := Wrap(caption, m, 100); len(got) != 0 {
			t.Fatalf("Wrap(%q) = %q, want no lines", caption, got)
		}
	}
}

func TestWrapOversizedWordsGetOwnLine(t *testing.T) {
	m := runeMeasurer{perRune: 10, height: 20}
	got := Wrap("supercalifragilistic expialidocious", m, 50)
	want := LineBlock{"supercalifragilistic", "expialidocious"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Wrap = %q, want %q", got, want)
	}
}

func TestWrapNonPositiveWidth(t *testing.T) {
	m := runeMeasurer{perRune: 10, height: 20}
	got := Wrap("a b c", m, 0)
	want := LineBlock{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Wrap = %q, want %q", got, want)
	}
}

func TestWrapCollapsesWhitespace(t *testing.T) {
	m := runeMeasurer{perRune: 10, height: 20}
	got := Wrap("  when   the\tbuild\n is green ", m, 1000)
	want := LineBlock{"when the build is green"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Wrap = %q, want %q", got, want)
	}
}

func TestWrapProperties(t *testing.T) {
	m := runeMeasurer{perRune: 7, height: 12}
	captions := []string{
		"One does not simply walk into Mordor",
		"me explaining to my mom why I need another mechanical keyboard",
		"a",
		"pneumonoultramicroscopicsilicovolcanoconiosis is a word",
		"😅 emoji 🚀 should count as runes",
	}
	for _, caption := range captions {
		for _, width := range []int{0, 20, 70, 150, 400} {
			lines := Wrap(caption, m, width)

			if got, want := lines.Words(), strings.Fields(caption); !reflect.DeepEqual(got, want) {
				t.Fatalf("Wrap(%q, %d) words = %q, want %q", caption, width, got, want)
			}
			for _, line := range lines {
				if line == "" {
					t.Fatalf("Wrap(%q, %d) produced an empty line", caption, width)
				}
				w, _ := m.Measure(line)
				if w > width && len(strings.Fields(line)) != 1 {
					t.Fatalf("Wrap(%q, %d) line %q is %dpx wide with several words", caption, width, line, w)
				}
			}
			// Greedy: the first word of each following line would not have fit.
			for i := 1; i < len(lines); i++ {
				next := strings.Fields(lines[i])[0]
				if w, _ := m.Measure(lines[i-1] + " " + next); w <= width {
					t.Fatalf("Wrap(%q, %d) line %q could have taken %q", caption, width, lines[i-1], next)
				}
			}
		}
	}
}
