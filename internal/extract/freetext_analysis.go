package extract

import (
	"regexp"
)

type section struct {
	name    string
	heading *regexp.Regexp
	minLen  int
}

// Section headings are matched in this order; the first hit switches the
// current section.
var analysisSections = []section{
	{"strengths", regexp.MustCompile(`(?i)strength|positive|advantage|pontos? fortes?|\bforte|positivo|vantage`), 10},
	{"weaknesses", regexp.MustCompile(`(?i)weakness|improve|challenge|concern|\bfraco|melhorar|desafio`), 10},
	{"alerts", regexp.MustCompile(`(?i)\balert|\brisk|warning|alerta|risco`), 10},
	{"recommendations", regexp.MustCompile(`(?i)recommend|suggest|action|next[- ]step|recomendo|sugiro|pr[oó]ximo passo`), 10},
	{"strategic_insights", regexp.MustCompile(`(?i)insight|opportunit|strateg|oportunidade|estrat[eé]gia`), 20},
}

var (
	analysisMarkup = regexp.MustCompile(`^[#=\-]`)
	headingOnly    = regexp.MustCompile(`^[#*\s]*[^:]{1,40}:[*\s]*$`)
)

// AnalysisText is the free-text tier for analyses. It classifies lines into
// sections by the most recent heading-like keyword.
type AnalysisText struct {
	// Score assigned to analyses recovered from prose.
	Score float64
}

// DefaultAnalysisText returns the analysis extractor.
func DefaultAnalysisText() *AnalysisText {
	return &AnalysisText{Score: 70}
}

// ExtractText implements TextExtractor.
func (a *AnalysisText) ExtractText(text string) (map[string]any, bool) {
	buckets := make(map[string][]any)
	current := ""
	var summary string

	for _, line := range splitLines(text) {
		switched := false
		for _, s := range analysisSections {
			if s.heading.MatchString(line) {
				current, switched = s.name, true
				break
			}
		}
		if switched && headingOnly.MatchString(line) {
			continue
		}
		if current == "" {
			if summary == "" && len(line) > 20 && !analysisMarkup.MatchString(line) {
				summary = line
			}
			continue
		}
		minLen := 10
		for _, s := range analysisSections {
			if s.name == current {
				minLen = s.minLen
			}
		}
		if len(line) > minLen && !analysisMarkup.MatchString(line) {
			buckets[current] = append(buckets[current], line)
		}
	}

	if len(buckets) == 0 {
		return nil, false
	}

	fields := map[string]any{
		"overall_score": a.Score,
		"source":        "text_analysis",
		"confidence":    "medium",
		"note":          "Analysis extracted from a free-text response",
	}
	if summary != "" {
		fields["summary"] = summary
	}
	for name, lines := range buckets {
		fields[name] = lines
	}
	return fields, true
}
