// Package model contains domain models passed between layers.
package model

import "time"

// MetricRecord holds the four objective scores computed for one
// prompt/response pair. All fields are always present; degenerate inputs
// resolve to numeric defaults rather than absent values.
type MetricRecord struct {
	// LexicalDiversity is the percentage of unique tokens in the response.
	LexicalDiversity float64 `json:"lexical_diversity"`
	// QueryCoverage is the percentage of prompt keywords echoed in the
	// response. Defined as 100 when the prompt contributes no keywords.
	QueryCoverage float64 `json:"query_coverage"`
	// FleschKincaidGrade is the estimated reading grade level. Unbounded;
	// may be negative for very short or simple text.
	FleschKincaidGrade float64 `json:"flesch_kincaid_grade"`
	// RepetitionPenalty is the percentage of repeated n-grams.
	RepetitionPenalty float64 `json:"repetition_penalty"`
}

// Evaluation is one persisted scoring of a generation run. Rows are
// immutable once written; they are only ever superseded by new rows.
type Evaluation struct {
	ID          int64   `json:"id"`
	Prompt      string  `json:"prompt"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`

	MetricRecord

	CreatedAt time.Time `json:"created_at"`
}
