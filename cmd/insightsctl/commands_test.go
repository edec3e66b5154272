package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/radiusdt/campaign-insights/internal/extract"
	"github.com/radiusdt/campaign-insights/internal/models"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAggregateFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.json")
	rows := `[
		{"impressions":1000,"clicks":40,"conversions":2,"cost":50,"dimension_tags":{"channel_name":"search"}},
		{"impressions":1000,"clicks":10,"conversions":0,"cost":30,"dimension_tags":{"channel_name":"display"}}
	]`
	if err := os.WriteFile(path, []byte(rows), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "", "aggregate", "--file", path)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	var resp struct {
		KPIs models.KPISet `json:"kpis"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if resp.KPIs.Basic.Impressions != 2000 || resp.KPIs.Basic.Revenue != 200 {
		t.Errorf("basic = %+v", resp.KPIs.Basic)
	}
	if len(resp.KPIs.Advanced.ByDimension) != 2 {
		t.Errorf("by_dimension = %+v", resp.KPIs.Advanced.ByDimension)
	}
}

func TestAggregateFromStdinWithUnitValue(t *testing.T) {
	out, err := run(t, `{"rows":[{"impressions":100,"clicks":5,"conversions":3,"cost":10}]}`, "aggregate", "--unit-value", "50")
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	var resp struct {
		KPIs models.KPISet `json:"kpis"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.KPIs.Basic.Revenue != 150 {
		t.Errorf("revenue = %v", resp.KPIs.Basic.Revenue)
	}
}

func TestAggregateRejectsBadJSON(t *testing.T) {
	if _, err := run(t, `[{"impressions":`, "aggregate"); err == nil {
		t.Error("expected decode error")
	}
}

func TestNormalizePredictionText(t *testing.T) {
	text := "Based on similar launches we expect a 3.2% CTR in the first month, with an ROI of 210% once the audience warms up."
	out, err := run(t, text, "normalize", "prediction", "--budget", "2000")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	var res models.PredictionResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if res.Source != models.SourceTextAnalysis || res.Predictions.CTR != 0.032 {
		t.Errorf("result = %+v", res)
	}
}

func TestNormalizeAllocationFallback(t *testing.T) {
	out, err := run(t, "", "normalize", "allocation", "--channels", "search,social")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	var res models.BudgetAllocation
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if res.Source != models.SourceBalanced || res.Allocation["search"] != 50 || res.Allocation["social"] != 50 {
		t.Errorf("allocation = %+v", res)
	}
}

func TestNormalizeRejectsUnknownKind(t *testing.T) {
	if _, err := run(t, "", "normalize", "forecast"); err == nil {
		t.Error("expected an argument error")
	}
}

func TestContentFromBytes(t *testing.T) {
	if _, ok := contentFromBytes([]byte("  ")).(extract.Absent); !ok {
		t.Error("blank input should be absent")
	}
	if _, ok := contentFromBytes([]byte(`{"roi":120}`)).(extract.Structured); !ok {
		t.Error("object should be structured")
	}
	if _, ok := contentFromBytes([]byte(`{"roi": 12`)).(extract.RawText); !ok {
		t.Error("broken object should fall back to text")
	}
}
