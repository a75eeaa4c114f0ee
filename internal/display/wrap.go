package display

import (
	"strings"

	"github.com/muesli/reflow/padding"
	"github.com/muesli/reflow/wordwrap"
)

const DefaultWidth = 80

// Wrap word-wraps text to DefaultWidth, preserving ANSI escape sequences.
func Wrap(text string) string {
	return wordwrap.String(text, DefaultWidth)
}

// Banner draws lines inside a box sized to the widest of them.
func Banner(lines ...string) string {
	inner := 0
	for _, l := range lines {
		if w := len([]rune(l)); w > inner {
			inner = w
		}
	}
	inner += 4

	var sb strings.Builder
	sb.WriteString("╔" + strings.Repeat("═", inner) + "╗\n")
	for _, l := range lines {
		sb.WriteString("║  " + padding.String(l, uint(inner-2)) + "║\n")
	}
	sb.WriteString("╚" + strings.Repeat("═", inner) + "╝")
	return sb.String()
}
