// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/caliper/internal/domain/analytics"
	"github.com/okian/caliper/internal/domain/model"
	"github.com/okian/caliper/internal/domain/types"
	"github.com/okian/caliper/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Default pagination bounds for GET /evaluations.
const (
	defaultPageLimit = 100
	defaultMaxLimit  = 500
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// RunPrompt generates one response per parameter pair, scores each,
	// persists successful pairs, and returns per-pair results.
	RunPrompt(ctx context.Context, prompt, modelName string, pairs []types.ParamPair) ([]types.GenerationResult, error)

	// ListEvaluations returns stored rows, paginated.
	ListEvaluations(ctx context.Context, skip, limit int) ([]model.Evaluation, error)

	// Analytics aggregates the full stored row set into the chart payload.
	Analytics(ctx context.Context) (analytics.Payload, error)
}

// StatsProvider defines the interface for service statistics.
type StatsProvider interface {
	GetStats() map[string]any
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxPageLimit caps GET /evaluations?limit.
func WithMaxPageLimit(limit int) Option {
	return func(s *Server) {
		if limit > 0 {
			s.maxPageLimit = limit
		}
	}
}

// WithCORSOrigin sets the Access-Control-Allow-Origin header value.
func WithCORSOrigin(origin string) Option {
	return func(s *Server) {
		if origin != "" {
			s.corsOrigin = origin
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps  Dependencies
	stats StatsProvider

	maxPageLimit int
	corsOrigin   string
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, stats StatsProvider, opts ...Option) *Server {
	s := &Server{
		deps:         deps,
		stats:        stats,
		maxPageLimit: defaultMaxLimit,
		corsOrigin:   "*",
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Register attaches all HTTP routes to mux. Every route passes through the
// CORS and metrics middleware.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.wrap(s.handleHealth, "healthz"))
	mux.HandleFunc("/stats", s.wrap(s.handleStats, "stats"))
	mux.HandleFunc("/test-prompt", s.wrap(s.handleTestPrompt, "test_prompt"))
	mux.HandleFunc("/evaluations", s.wrap(s.handleListEvaluations, "evaluations"))
	mux.HandleFunc("/analytics", s.wrap(s.handleAnalytics, "analytics"))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
}

func (s *Server) wrap(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return CORSMiddleware(MetricsMiddleware(next, endpoint), s.corsOrigin)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
