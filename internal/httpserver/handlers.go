package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radiusdt/campaign-insights/internal/analytics"
	"github.com/radiusdt/campaign-insights/internal/extract"
	"github.com/radiusdt/campaign-insights/internal/middleware"
	"github.com/radiusdt/campaign-insights/internal/storage"
)

// ---- KPI Handlers ----

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	var req AggregateRequest
	if !s.decode(w, r, &req) {
		return
	}

	kpis := s.service.Aggregate(req.Rows, req.GroupBy)
	s.jsonResponse(w, map[string]any{
		"kpis":               kpis,
		"optimization_hints": analytics.OptimizationHints(kpis),
	})
}

func (s *Server) handleProjectKPIs(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	q := r.URL.Query()

	from, err := parseTime(q.Get("from"))
	if err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	to, err := parseTime(q.Get("to"))
	if err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !from.IsZero() && !to.IsZero() && !to.After(from) {
		s.errorResponse(w, "to must be after from", http.StatusBadRequest)
		return
	}

	kpis, err := s.service.KPIs(r.Context(), projectID, from, to, q.Get("group_by"))
	if err != nil {
		s.upstreamError(w, r, "failed to load KPIs", err)
		return
	}
	s.jsonResponse(w, map[string]any{
		"project_id":         projectID,
		"kpis":               kpis,
		"optimization_hints": analytics.OptimizationHints(kpis),
	})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	writer, ok := s.deps.Store.(storage.RecordWriter)
	if !ok {
		s.errorResponse(w, "record store is read-only", http.StatusNotImplemented)
		return
	}

	var req IngestRequest
	if !s.decode(w, r, &req) {
		return
	}

	projectID := chi.URLParam(r, "projectID")
	if err := writer.AddRows(r.Context(), projectID, req.Rows); err != nil {
		s.upstreamError(w, r, "failed to store rows", err)
		return
	}
	resp := map[string]any{
		"project_id": projectID,
		"accepted":   len(req.Rows),
	}
	if counter, ok := s.deps.Store.(storage.RowCounter); ok {
		total, err := counter.CountRows(r.Context(), projectID)
		if err != nil {
			s.logger.Warn("failed to count rows",
				zap.String("project_id", projectID),
				zap.Error(err),
			)
		} else {
			resp["total_rows"] = total
		}
	}
	s.writeJSON(w, http.StatusCreated, resp)
}

// ---- Normalization Handlers ----

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	kind := extract.Kind(chi.URLParam(r, "kind"))
	switch kind {
	case extract.KindPrediction, extract.KindAnalysis, extract.KindAllocation:
	default:
		s.errorResponse(w, "unknown result kind: "+string(kind), http.StatusNotFound)
		return
	}

	var req NormalizeRequest
	if !s.decode(w, r, &req) {
		return
	}
	content, err := decodeContent(req.Content)
	if err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	pipeline := s.service.Pipeline()
	var result any
	switch kind {
	case extract.KindPrediction:
		result = pipeline.NormalizePrediction(content, req.Historical, req.Campaign.WithDefaults())
	case extract.KindAnalysis:
		result = pipeline.NormalizeAnalysis(content, req.KPIs)
	case extract.KindAllocation:
		result = pipeline.NormalizeAllocation(content, req.Channels)
	}

	s.jsonResponse(w, NormalizeResponse{
		Kind:        kind,
		Result:      result,
		GeneratedAt: s.now().UTC(),
	})
}

// ---- Generative Handlers ----

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	var req PredictRequest
	if !s.decode(w, r, &req) {
		return
	}

	prediction, err := s.service.Predict(r.Context(), projectID, req.Campaign)
	if err != nil {
		s.upstreamError(w, r, "failed to predict", err)
		return
	}
	s.jsonResponse(w, map[string]any{
		"project_id":   projectID,
		"prediction":   prediction,
		"generated_at": s.now().UTC(),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	var req AnalyzeRequest
	if !s.decode(w, r, &req) {
		return
	}

	window := time.Duration(req.WindowDays) * 24 * time.Hour
	report, err := s.service.Analyze(r.Context(), projectID, window, req.Objective)
	if err != nil {
		s.upstreamError(w, r, "failed to analyze", err)
		return
	}
	s.jsonResponse(w, report)
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	var req OptimizeRequest
	if !s.decode(w, r, &req) {
		return
	}

	report, err := s.service.Allocate(r.Context(), projectID, req.Budget)
	if err != nil {
		s.upstreamError(w, r, "failed to allocate budget", err)
		return
	}
	s.jsonResponse(w, report)
}

// ---- Usage Handlers ----

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	day := s.now().UTC()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.Parse(time.DateOnly, d)
		if err != nil {
			s.errorResponse(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		day = parsed
	}

	usage, err := s.service.Usage(r.Context(), day)
	if err != nil {
		s.upstreamError(w, r, "failed to load usage", err)
		return
	}
	s.jsonResponse(w, map[string]any{
		"date":   day.Format(time.DateOnly),
		"models": usage,
	})
}

func (s *Server) upstreamError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.Error(msg,
		zap.String("request_id", middleware.RequestID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	s.errorResponse(w, msg, http.StatusBadGateway)
}
