// Package extract pulls tentative results out of generative-service output.
//
// Content arrives as one of three variants and is tried against four tiers
// in order: already structured, a structured block embedded in prose,
// labeled metrics in free text, and nothing found.
package extract

// Content is the generative service's output as seen by the pipeline.
type Content interface {
	isContent()
}

// Structured is content that is already a decoded object.
type Structured struct {
	Value map[string]any
}

// RawText is generated text of unknown shape.
type RawText string

// Absent means the service failed, timed out or returned nothing.
type Absent struct{}

func (Structured) isContent() {}
func (RawText) isContent()    {}
func (Absent) isContent()     {}

// Kind selects the result schema a partial is shaped for.
type Kind string

const (
	KindPrediction Kind = "prediction"
	KindAnalysis   Kind = "analysis"
	KindAllocation Kind = "allocation"
)

// Tier names the extraction strategy that produced a partial.
type Tier string

const (
	TierStructured Tier = "structured"
	TierEmbedded   Tier = "embedded"
	TierFreeText   Tier = "free_text"
	TierNone       Tier = "none"
)
