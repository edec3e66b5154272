package extract

import (
	"strings"
)

// Extractor runs the tiers in order; the first success wins.
type Extractor struct {
	text map[Kind]TextExtractor
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithTextExtractor replaces the free-text tier for a kind.
func WithTextExtractor(kind Kind, te TextExtractor) Option {
	return func(e *Extractor) {
		e.text[kind] = te
	}
}

// NewExtractor creates an extractor with the default free-text tiers.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		text: map[Kind]TextExtractor{
			KindPrediction: DefaultPredictionText(),
			KindAnalysis:   DefaultAnalysisText(),
			KindAllocation: AllocationText{},
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns a partial for content, or TierNone and false when no tier
// found anything. Tier failures fall through silently.
func (e *Extractor) Extract(c Content, kind Kind) (Partial, bool) {
	switch v := c.(type) {
	case Structured:
		if v.Value == nil {
			return Partial{Tier: TierNone}, false
		}
		return NewPartial(Normalize(v.Value, kind), TierStructured), true
	case RawText:
		return e.extractText(string(v), kind)
	}
	return Partial{Tier: TierNone}, false
}

func (e *Extractor) extractText(text string, kind Kind) (Partial, bool) {
	if strings.TrimSpace(text) == "" {
		return Partial{Tier: TierNone}, false
	}
	obj, known := parseEmbedded(text, kind)
	if known {
		return NewPartial(Normalize(obj, kind), TierEmbedded), true
	}
	if te, ok := e.text[kind]; ok && te != nil {
		if fields, ok := te.ExtractText(text); ok {
			return NewPartial(fields, TierFreeText), true
		}
	}
	// An object with no recognized key still beats nothing.
	if obj != nil {
		return NewPartial(Normalize(obj, kind), TierEmbedded), true
	}
	return Partial{Tier: TierNone}, false
}
