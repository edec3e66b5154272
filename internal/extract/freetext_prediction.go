package extract

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// metricPattern locates one labeled metric in prose.
type metricPattern struct {
	key      string
	keywords *regexp.Regexp
	// fraction metrics are rates; percentages are divided by 100
	fraction bool
}

var predictionPatterns = []metricPattern{
	{
		key:      "ctr",
		keywords: regexp.MustCompile(`(?i)\bctr\b|click[- ]?through(?:[- ]rate)?|taxa de cliques?`),
		fraction: true,
	},
	{
		key:      "conversion_rate",
		keywords: regexp.MustCompile(`(?i)\bconversions?[- ]rate\b|\bconversion\b|taxa de convers[aã]o|\bconvers[aã]o`),
		fraction: true,
	},
	{
		key:      "roi",
		keywords: regexp.MustCompile(`(?i)\broi\b|return on investment|\bretorno\b`),
	},
	{
		key:      "cpa",
		keywords: regexp.MustCompile(`(?i)\bcpa\b|cost[- ]per[- ]acquisition|custo por aquisi[cç][aã]o`),
	},
}

// valueAfter matches "ROI of 210%", "CTR: 3.5%", "CPA around $35".
var valueAfter = regexp.MustCompile(`(?i)^[\s:=~()\-]*(?:(?:of|is|at|around|about|approx\.?|approximately|estimated|expected|near|roughly|to|be|will|should|could|reach|de|em|ser[aá]|aproximadamente)[\s:=~()\-]*)*(?:US\$|R\$|[$€£])?\s*(\d+(?:\.\d+)?)\s*(%)?`)

// valueBefore matches "3.2% CTR", "a 2.1 % conversion rate".
var valueBefore = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(%)?([^\d\n]{0,30})$`)

// PredictionText is the free-text tier for predictions.
type PredictionText struct {
	Defaults map[string]float64
	// RevenueBase is the reference budget used to derive estimated revenue
	// from the extracted roi.
	RevenueBase float64
	// MinRecommendationLen is the minimum length of a kept recommendation line.
	MinRecommendationLen int
}

// DefaultPredictionText returns the extractor with its documented defaults.
func DefaultPredictionText() *PredictionText {
	return &PredictionText{
		Defaults: map[string]float64{
			"ctr":             0.035,
			"conversion_rate": 0.025,
			"roi":             180,
			"cpa":             40,
		},
		RevenueBase:          1000,
		MinRecommendationLen: 20,
	}
}

var recommendationHeading = regexp.MustCompile(`(?i)recommend|suggest|next[- ]step|recomenda|sugest|pr[oó]ximos? passos?`)

// ExtractText implements TextExtractor.
func (p *PredictionText) ExtractText(text string) (map[string]any, bool) {
	fields := make(map[string]any)
	found := false

	for _, pat := range predictionPatterns {
		if v, ok := pat.find(text); ok {
			fields[pat.key] = v
			found = true
		} else {
			fields[pat.key] = p.Defaults[pat.key]
		}
	}
	roi := fields["roi"].(float64)
	fields["estimated_revenue"] = p.RevenueBase*roi/100 + p.RevenueBase

	if recs := headedLines(text, recommendationHeading, p.MinRecommendationLen); len(recs) > 0 {
		fields["recommendations"] = recs
		found = true
	}
	if !found {
		return nil, false
	}

	fields["source"] = "text_analysis"
	fields["confidence"] = "medium"
	fields["note"] = "Prediction extracted from a free-text response"
	return fields, true
}

func (m metricPattern) find(text string) (float64, bool) {
	hits := m.keywords.FindAllStringIndex(text, -1)
	for _, h := range hits {
		if sub := valueAfter.FindStringSubmatch(text[h[1]:]); sub != nil {
			if v, ok := m.convert(sub[1], sub[2] != ""); ok {
				return v, true
			}
		}
	}
	for _, h := range hits {
		sub := valueBefore.FindStringSubmatch(text[:h[0]])
		if sub == nil || mentionsOtherMetric(sub[3], m.key) {
			continue
		}
		if v, ok := m.convert(sub[1], sub[2] != ""); ok {
			return v, true
		}
	}
	return 0, false
}

func (m metricPattern) convert(num string, percent bool) (float64, bool) {
	d, err := decimal.NewFromString(num)
	if err != nil {
		return 0, false
	}
	if !m.fraction {
		return d.InexactFloat64(), true
	}
	if percent || d.GreaterThan(decimal.NewFromInt(1)) {
		d = d.Div(decimal.NewFromInt(100))
	}
	if d.GreaterThan(decimal.NewFromInt(1)) {
		return 0, false
	}
	return d.InexactFloat64(), true
}

func mentionsOtherMetric(gap, key string) bool {
	for _, p := range predictionPatterns {
		if p.key != key && p.keywords.MatchString(gap) {
			return true
		}
	}
	return false
}

// headedLines keeps the lines following a heading that matches heading,
// skipping markup lines and lines of minLen characters or fewer.
func headedLines(text string, heading *regexp.Regexp, minLen int) []any {
	var out []any
	inSection := false
	for _, line := range splitLines(text) {
		if heading.MatchString(line) {
			inSection = true
			continue
		}
		if inSection && len(line) > minLen && !markupPrefix.MatchString(line) {
			out = append(out, line)
		}
	}
	return out
}
