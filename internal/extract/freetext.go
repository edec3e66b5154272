package extract

import (
	"regexp"
	"strings"
)

// TextExtractor is the free-text tier. Implementations return the fields
// they could find and whether anything at all was found.
type TextExtractor interface {
	ExtractText(text string) (map[string]any, bool)
}

// TextExtractorFunc adapts a function to TextExtractor.
type TextExtractorFunc func(text string) (map[string]any, bool)

// ExtractText calls f.
func (f TextExtractorFunc) ExtractText(text string) (map[string]any, bool) {
	return f(text)
}

// markupPrefix matches lines that are headings, bullets or rules.
var markupPrefix = regexp.MustCompile(`^[#*=\-]`)

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
