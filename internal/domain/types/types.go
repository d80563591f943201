// Package types contains common types used across the application
package types

import "github.com/okian/caliper/internal/domain/model"

// ParamPair is one (temperature, top_p) combination to test a prompt with.
type ParamPair struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

// GenerationResult is the per-pair outcome of a prompt test. A failed
// generation carries Error and no metrics; such pairs are never persisted.
type GenerationResult struct {
	Temperature float64             `json:"temperature"`
	TopP        float64             `json:"top_p"`
	Output      string              `json:"output"`
	Metrics     *model.MetricRecord `json:"metrics"`
	LatencyMS   int64               `json:"latency_ms"`
	Error       string              `json:"error,omitempty"`
}
