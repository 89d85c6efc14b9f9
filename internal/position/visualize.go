package position

import (
	"strings"
	"unicode/utf8"
)

// Highlight renders text with a caret line under the span, for example
//
//	P → → Q
//	    ^
func Highlight(text string, span Span) string {
	if !span.IsValid() {
		return text
	}

	var b strings.Builder
	b.WriteString(text)
	b.WriteByte('\n')

	width := span.End.Column - span.Start.Column
	if width < 1 {
		width = 1
	}
	if limit := utf8.RuneCountInString(text) + 1; span.Start.Column+width-1 > limit {
		width = max(1, limit-span.Start.Column+1)
	}

	b.WriteString(strings.Repeat(" ", span.Start.Column-1))
	b.WriteString(strings.Repeat("^", width))

	return b.String()
}
