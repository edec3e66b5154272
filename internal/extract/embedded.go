package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var fenceRe = regexp.MustCompile("(?s)```[ \\t]*([A-Za-z0-9_-]*)[^\\n]*\\n(.*?)```")

type block struct {
	lang string
	body string
}

// embeddedBlocks lists parse candidates in priority order: fenced blocks,
// the first balanced brace span, then the widest brace span.
func embeddedBlocks(text string) []block {
	var blocks []block
	for _, m := range fenceRe.FindAllStringSubmatch(text, -1) {
		blocks = append(blocks, block{lang: strings.ToLower(m[1]), body: strings.TrimSpace(m[2])})
	}
	if span, ok := balancedSpan(text); ok {
		blocks = append(blocks, block{lang: "json", body: span})
	}
	if first, last := strings.Index(text, "{"), strings.LastIndex(text, "}"); first >= 0 && last > first {
		if wide := text[first : last+1]; len(blocks) == 0 || blocks[len(blocks)-1].body != wide {
			blocks = append(blocks, block{lang: "json", body: wide})
		}
	}
	return blocks
}

// balancedSpan returns the first top-level {...} span, honoring JSON
// string literals.
func balancedSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// parseEmbedded tries each candidate as JSON, then as YAML, and returns the
// first object carrying a recognized key. When none does, the first object
// that parsed as JSON is returned with known false. YAML results are never
// returned unrecognized since almost any text is valid YAML.
func parseEmbedded(text string, kind Kind) (obj map[string]any, known bool) {
	var fallback map[string]any
	for _, b := range embeddedBlocks(text) {
		if b.body == "" {
			continue
		}
		if b.lang != "yaml" && b.lang != "yml" {
			var candidate map[string]any
			if err := json.Unmarshal([]byte(b.body), &candidate); err == nil && candidate != nil {
				if recognized(Normalize(candidate, kind), kind) {
					return candidate, true
				}
				if fallback == nil {
					fallback = candidate
				}
				continue
			}
		}
		switch b.lang {
		case "", "json", "yaml", "yml":
			var candidate map[string]any
			if err := yaml.Unmarshal([]byte(b.body), &candidate); err == nil && candidate != nil {
				candidate = stringKeys(candidate).(map[string]any)
				if recognized(Normalize(candidate, kind), kind) {
					return candidate, true
				}
			}
		}
	}
	return fallback, false
}

// stringKeys converts any map[any]any left by the YAML decoder.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = stringKeys(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if ks, ok := k.(string); ok {
				out[ks] = stringKeys(val)
			}
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = stringKeys(val)
		}
		return out
	}
	return v
}
