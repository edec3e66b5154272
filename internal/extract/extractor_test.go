package extract

import (
	"reflect"
	"testing"
)

func TestExtractStructured(t *testing.T) {
	e := NewExtractor()
	p, ok := e.Extract(Structured{Value: map[string]any{
		"predictions":     map[string]any{"ctr": 0.05},
		"recommendations": []any{"x too short"},
	}}, KindPrediction)

	if !ok || p.Tier != TierStructured {
		t.Fatalf("got tier %s ok=%v", p.Tier, ok)
	}
	if p.Fields["ctr"] != 0.05 {
		t.Fatalf("wrapper not lifted: %v", p.Fields)
	}
	if _, ok := p.Fields["predictions"]; ok {
		t.Fatalf("wrapper key should be removed")
	}
}

func TestExtractAbsentAndEmpty(t *testing.T) {
	e := NewExtractor()
	for _, c := range []Content{Absent{}, RawText(""), RawText("   \n"), Structured{}} {
		if p, ok := e.Extract(c, KindPrediction); ok || p.Tier != TierNone {
			t.Fatalf("%#v: expected no content, got %s", c, p.Tier)
		}
	}
}

func TestExtractFencedJSON(t *testing.T) {
	text := "Here is my forecast:\n```json\n{\"ctr\":0.04,\"roi\":200}\n```\nLet me know."
	p, ok := NewExtractor().Extract(RawText(text), KindPrediction)
	if !ok || p.Tier != TierEmbedded {
		t.Fatalf("got tier %s ok=%v", p.Tier, ok)
	}
	if p.Fields["ctr"] != 0.04 || p.Fields["roi"] != float64(200) {
		t.Fatalf("unexpected fields: %v", p.Fields)
	}
}

func TestWrappedAndFlatShapesMatch(t *testing.T) {
	e := NewExtractor()
	wrapped := "```json\n{\"predictions\":{\"ctr\":0.04,\"roi\":200},\"recommendations\":[\"Shift budget toward search campaigns\"]}\n```"
	flat := "Result: {\"ctr\":0.04,\"roi\":200,\"recommendations\":[\"Shift budget toward search campaigns\"]} done"

	a, okA := e.Extract(RawText(wrapped), KindPrediction)
	b, okB := e.Extract(RawText(flat), KindPrediction)
	if !okA || !okB {
		t.Fatalf("extraction failed: %v %v", okA, okB)
	}
	if !reflect.DeepEqual(a.Fields, b.Fields) {
		t.Fatalf("shapes differ:\n%v\n%v", a.Fields, b.Fields)
	}
}

func TestBalancedSpanIgnoresBracesInStrings(t *testing.T) {
	text := `prefix {"note":"use {braces} freely","ctr":0.02} trailing {"roi": 1}`
	span, ok := balancedSpan(text)
	if !ok || span != `{"note":"use {braces} freely","ctr":0.02}` {
		t.Fatalf("span = %q", span)
	}
	p, ok := NewExtractor().Extract(RawText(text), KindPrediction)
	if !ok || p.Fields["ctr"] != 0.02 {
		t.Fatalf("unexpected partial: %+v", p)
	}
}

func TestUnrecognizedObjectYieldsToFreeText(t *testing.T) {
	text := "Budget note: {\"campaign\":\"spring\"}\nWe expect a 3.2% CTR and ROI of 210%."
	p, ok := NewExtractor().Extract(RawText(text), KindPrediction)
	if !ok || p.Tier != TierFreeText {
		t.Fatalf("got tier %s ok=%v", p.Tier, ok)
	}
	if p.Fields["ctr"] != 0.032 || p.Fields["roi"] != float64(210) {
		t.Fatalf("unexpected fields: %v", p.Fields)
	}
}

func TestUnrecognizedObjectKeptWhenTextHasNothing(t *testing.T) {
	p, ok := NewExtractor().Extract(RawText(`Reply: {"campaign":"spring"}`), KindPrediction)
	if !ok || p.Tier != TierEmbedded {
		t.Fatalf("got tier %s ok=%v", p.Tier, ok)
	}
	if p.Fields["campaign"] != "spring" {
		t.Fatalf("unexpected fields: %v", p.Fields)
	}
}

func TestExtractYAMLBlock(t *testing.T) {
	text := "Forecast below.\n```yaml\npredictions:\n  ctr: 0.045\n  roi: 175\nrecommendations:\n  - Increase bids on high intent keywords\n```"
	p, ok := NewExtractor().Extract(RawText(text), KindPrediction)
	if !ok || p.Tier != TierEmbedded {
		t.Fatalf("got tier %s ok=%v", p.Tier, ok)
	}
	if p.Fields["ctr"] != 0.045 || p.Fields["roi"] != 175 {
		t.Fatalf("unexpected fields: %#v", p.Fields)
	}
}

func TestRelaxedObjectParsedAsYAML(t *testing.T) {
	p, ok := NewExtractor().Extract(RawText("estimate {ctr: 0.03, roi: 150}"), KindPrediction)
	if !ok || p.Tier != TierEmbedded {
		t.Fatalf("got tier %s ok=%v", p.Tier, ok)
	}
	if p.Fields["ctr"] != 0.03 {
		t.Fatalf("unexpected fields: %#v", p.Fields)
	}
}

func TestExtractFreeTextPrediction(t *testing.T) {
	text := "We expect a 3.2% CTR for the launch. Expect an ROI of 210% over the quarter."
	p, ok := NewExtractor().Extract(RawText(text), KindPrediction)
	if !ok || p.Tier != TierFreeText {
		t.Fatalf("got tier %s ok=%v", p.Tier, ok)
	}
	if p.Fields["ctr"] != 0.032 {
		t.Fatalf("ctr = %v, want 0.032", p.Fields["ctr"])
	}
	if p.Fields["roi"] != float64(210) {
		t.Fatalf("roi = %v, want 210", p.Fields["roi"])
	}
	if p.Fields["conversion_rate"] != 0.025 || p.Fields["cpa"] != float64(40) {
		t.Fatalf("defaults not applied: %v", p.Fields)
	}
	if p.Fields["estimated_revenue"] != float64(3100) {
		t.Fatalf("estimated_revenue = %v, want 3100", p.Fields["estimated_revenue"])
	}
	if p.Fields["source"] != "text_analysis" {
		t.Fatalf("source = %v", p.Fields["source"])
	}
}

func TestFreeTextMetricsDoNotCrossKeywords(t *testing.T) {
	text := "Conversion rate 2.5%, CPA of $32.50 and 3% CTR; the ROI looks healthy."
	fields, ok := DefaultPredictionText().ExtractText(text)
	if !ok {
		t.Fatalf("nothing extracted")
	}
	if fields["conversion_rate"] != 0.025 {
		t.Errorf("conversion_rate = %v", fields["conversion_rate"])
	}
	if fields["cpa"] != 32.5 {
		t.Errorf("cpa = %v", fields["cpa"])
	}
	if fields["ctr"] != 0.03 {
		t.Errorf("ctr = %v", fields["ctr"])
	}
	if fields["roi"] != float64(180) {
		t.Errorf("roi should fall back to default, got %v", fields["roi"])
	}

	volume := "We expect 80 conversions next month with a CTR of 2.5%."
	fields, ok = DefaultPredictionText().ExtractText(volume)
	if !ok {
		t.Fatalf("nothing extracted from %q", volume)
	}
	if fields["ctr"] != 0.025 {
		t.Errorf("ctr = %v", fields["ctr"])
	}
	if want := DefaultPredictionText().Defaults["conversion_rate"]; fields["conversion_rate"] != want {
		t.Errorf("conversion count read as a rate: conversion_rate = %v, want default %v", fields["conversion_rate"], want)
	}
}

func TestFreeTextRecommendations(t *testing.T) {
	text := `Summary of the campaign.
Recommendations:
- short bullet that is skipped by design
Increase the daily budget on search by twenty percent
Pause creatives with a CTR below one percent
ok`
	fields, ok := DefaultPredictionText().ExtractText(text)
	if !ok {
		t.Fatalf("nothing extracted")
	}
	recs, _ := fields["recommendations"].([]any)
	if len(recs) != 2 {
		t.Fatalf("recommendations = %v", recs)
	}
	if recs[0] != "Increase the daily budget on search by twenty percent" {
		t.Fatalf("unexpected first recommendation %q", recs[0])
	}
}

func TestIrrelevantProseFindsNothing(t *testing.T) {
	if p, ok := NewExtractor().Extract(RawText("The service is overloaded, please retry later."), KindPrediction); ok {
		t.Fatalf("expected nothing, got %+v", p)
	}
}

func TestCustomTextExtractor(t *testing.T) {
	e := NewExtractor(WithTextExtractor(KindPrediction, TextExtractorFunc(func(string) (map[string]any, bool) {
		return map[string]any{"ctr": 0.07}, true
	})))
	p, ok := e.Extract(RawText("nothing structured here"), KindPrediction)
	if !ok || p.Fields["ctr"] != 0.07 {
		t.Fatalf("custom extractor not used: %+v", p)
	}
}

func TestExtractAnalysisText(t *testing.T) {
	text := `The account delivered steady growth over the period.
Strengths:
Search campaigns return a strong ROI above 250%
Weaknesses:
Display CPA is well above the account target
Insights:
There is an opportunity to expand remarketing audiences this quarter
Recommendations:
Move 15% of display budget into search`
	p, ok := NewExtractor().Extract(RawText(text), KindAnalysis)
	if !ok || p.Tier != TierFreeText {
		t.Fatalf("got tier %s ok=%v", p.Tier, ok)
	}
	if p.Fields["summary"] != "The account delivered steady growth over the period." {
		t.Fatalf("summary = %v", p.Fields["summary"])
	}
	for _, key := range []string{"strengths", "weaknesses", "strategic_insights", "recommendations"} {
		if lines, _ := p.Fields[key].([]any); len(lines) != 1 {
			t.Errorf("%s = %v", key, p.Fields[key])
		}
	}
}

func TestExtractAllocationText(t *testing.T) {
	text := "Put 50% into Search, social at 30% and display 20%."
	p, ok := NewExtractor().Extract(RawText(text), KindAllocation)
	if !ok {
		t.Fatalf("nothing extracted")
	}
	alloc := p.Fields["allocation"].(map[string]any)
	if alloc["search"] != float64(50) || alloc["social"] != float64(30) || alloc["display"] != float64(20) {
		t.Fatalf("allocation = %v", alloc)
	}
}

func TestNormalizeAllocationWrapper(t *testing.T) {
	got := Normalize(map[string]any{"budget_allocation": map[string]any{"search": 60.0}}, KindAllocation)
	if _, ok := got["allocation"].(map[string]any); !ok {
		t.Fatalf("allocation not normalized: %v", got)
	}
	if _, ok := got["budget_allocation"]; ok {
		t.Fatalf("alias key should be removed")
	}
}
