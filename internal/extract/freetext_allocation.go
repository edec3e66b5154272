package extract

import (
	"regexp"
	"strings"

	"github.com/radiusdt/campaign-insights/internal/models"
)

const channelNames = `search|social|display|video|google|facebook|instagram|youtube|tiktok|linkedin|email`

var (
	// "social at 30%", "Display: 20 %"
	channelThenShare = regexp.MustCompile(`(?i)\b(` + channelNames + `)\b[^\n%\d,;.]{0,40}?(\d+(?:\.\d+)?)\s*%`)
	// "50% into search", "20% of the budget to display"
	shareThenChannel = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*%\s*(?:of (?:the )?budget\s*)?(?:to|into|for|on|in)\s+(?:the\s+)?(` + channelNames + `)\b`)
)

// AllocationText is the free-text tier for budget allocations.
type AllocationText struct{}

// ExtractText implements TextExtractor.
func (AllocationText) ExtractText(text string) (map[string]any, bool) {
	alloc := make(map[string]any)
	add := func(name, share string) {
		name = strings.ToLower(name)
		if _, seen := alloc[name]; seen {
			return
		}
		if v, ok := models.ToFloat(share); ok && v <= 100 {
			alloc[name] = v
		}
	}
	for _, m := range shareThenChannel.FindAllStringSubmatch(text, -1) {
		add(m[2], m[1])
	}
	for _, m := range channelThenShare.FindAllStringSubmatch(text, -1) {
		add(m[1], m[2])
	}
	if len(alloc) == 0 {
		return nil, false
	}
	return map[string]any{
		"allocation": alloc,
		"rationale":  "Allocation extracted from a free-text response",
		"source":     "text_analysis",
		"confidence": "medium",
	}, true
}
