package extract

// wrapperKeys are outer keys whose object value holds the result proper.
var wrapperKeys = map[Kind][]string{
	KindPrediction: {"predictions", "prediction", "previsao_detalhada"},
	KindAnalysis:   {"performance_analysis", "analise_performance"},
	KindAllocation: {"allocation", "budget_allocation", "alocacao"},
}

// knownKeys are the keys that mark an object as a plausible result.
var knownKeys = map[Kind][]string{
	KindPrediction: {
		"ctr", "ctr_esperado", "conversion_rate", "taxa_conversao", "roi", "roi_estimado",
		"cpa", "custo_por_aquisicao", "estimated_revenue", "receita_estimada",
		"recommendations", "recomendacoes_otimizacao",
	},
	KindAnalysis: {
		"summary", "strengths", "weaknesses", "overall_score", "score", "alerts", "alertas",
		"strategic_insights", "insights", "recommendations", "recomendacoes",
	},
	KindAllocation: {"search", "social", "display", "video", "rationale", "expected_roi_improvement"},
}

// Normalize lifts a wrapper object into the top level so wrapped and flat
// shapes produce the same fields. Values inside the wrapper win. For
// allocations the channel map stays nested under "allocation".
func Normalize(obj map[string]any, kind Kind) map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = v
	}

	if kind == KindAllocation {
		for _, k := range wrapperKeys[kind] {
			if m, ok := obj[k].(map[string]any); ok {
				for _, alias := range wrapperKeys[kind] {
					delete(out, alias)
				}
				out["allocation"] = m
				return out
			}
		}
		return out
	}

	for _, k := range wrapperKeys[kind] {
		inner, ok := obj[k].(map[string]any)
		if !ok {
			continue
		}
		delete(out, k)
		for ik, iv := range inner {
			out[ik] = iv
		}
		break
	}
	return out
}

// recognized reports whether obj carries at least one key of the kind.
func recognized(obj map[string]any, kind Kind) bool {
	for _, k := range wrapperKeys[kind] {
		if _, ok := obj[k]; ok {
			return true
		}
	}
	for _, k := range knownKeys[kind] {
		if _, ok := obj[k]; ok {
			return true
		}
	}
	return false
}
