// Package outline extracts the heading outline of a Markdown note.
package outline

import (
	"regexp"
	"strings"
)

// Heading is one entry in a note's outline.
type Heading struct {
	Text        string  `json:"text"`
	Level       int     `json:"level"`        // 1..6
	ScrollRatio float64 `json:"scroll_ratio"` // 0..1, position of the heading line in the note
}

// ATX headings only: up to three leading spaces, 1-6 hashes, required
// whitespace, text, optional closing hashes.
var headingRe = regexp.MustCompile(`^\s{0,3}(#{1,6})\s+(.*?)(\s+#+\s*)?$`)

// NewHeading builds a Heading with level and ratio clamped to their ranges.
func NewHeading(text string, level int, ratio float64) Heading {
	return Heading{
		Text:        text,
		Level:       min(max(level, 1), 6),
		ScrollRatio: min(max(ratio, 0), 1),
	}
}

// Extract scans text line by line and returns its headings in document order.
// A heading's ScrollRatio is its line index divided by the last line index,
// which assumes roughly uniform line height in the rendered output.
func Extract(text string) []Heading {
	headings := []Heading{}
	if text == "" {
		return headings
	}

	lines := SplitLines(text)
	last := max(1, len(lines)-1)

	for i, line := range lines {
		m := headingRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		title := strings.TrimSpace(m[2])
		if title == "" {
			continue
		}
		headings = append(headings, NewHeading(title, len(m[1]), float64(i)/float64(last)))
	}
	return headings
}

// SplitLines normalizes CRLF and lone CR line endings before splitting.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// Nearest returns the index of the last heading whose ratio is at or before
// ratio, or -1 if ratio precedes every heading.
func Nearest(headings []Heading, ratio float64) int {
	idx := -1
	for i, h := range headings {
		if h.ScrollRatio > ratio {
			break
		}
		idx = i
	}
	return idx
}
