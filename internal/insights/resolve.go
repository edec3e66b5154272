package insights

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/radiusdt/campaign-insights/internal/extract"
	"github.com/radiusdt/campaign-insights/internal/models"
	"github.com/shopspring/decimal"
)

// ResolveMetric returns primary if it is a number or numeric string, else
// secondary under the same rule, else def.
func ResolveMetric(primary, secondary any, def float64) float64 {
	if v, ok := models.ToFloat(primary); ok {
		return v
	}
	if v, ok := models.ToFloat(secondary); ok {
		return v
	}
	return def
}

// resolveField applies ResolveMetric to a primary key and its alias.
func resolveField(p extract.Partial, primary, alias string, def float64) float64 {
	return ResolveMetric(p.Fields[primary], p.Fields[alias], def)
}

// MinRecommendationChars is the least number of non-space characters a
// recommendation needs to be kept.
const MinRecommendationChars = 10

var enumerationPrefix = regexp.MustCompile(`^[\d.\s\-)•]*`)

func meaningful(s string) bool {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n >= MinRecommendationChars
}

// splitText breaks a text block into lines with leading enumeration
// stripped, dropping lines that are too short to carry meaning.
func splitText(text string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(enumerationPrefix.ReplaceAllString(strings.TrimSpace(line), ""))
		if meaningful(line) {
			out = append(out, line)
		}
	}
	return out
}

// textList accepts a sequence (kept as-is apart from blank and too-short
// items) or a text block (split into lines).
func textList(v any) []string {
	switch t := v.(type) {
	case string:
		return splitText(t)
	case []string:
		return keepMeaningful(t)
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
		return keepMeaningful(items)
	}
	return nil
}

func keepMeaningful(items []string) []string {
	var out []string
	for _, s := range items {
		if s = strings.TrimSpace(s); meaningful(s) {
			out = append(out, s)
		}
	}
	return out
}

// stringList accepts a sequence of strings or a single string, keeping
// every non-blank item.
func stringList(v any) ([]string, bool) {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}, true
		}
	case []string:
		return nonBlank(t), true
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
		return nonBlank(items), true
	}
	return nil, false
}

func nonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func stringField(m map[string]any, def string, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return def
}

func roundTo(f float64, places int32) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return decimal.NewFromFloat(f).Round(places).InexactFloat64()
}
