package analytics

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func round2(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}

func clampPct(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 100:
		return 100
	}
	return f
}

func floor0(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}

func dayUTC(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
