// Package analytics groups persisted metric records by generation
// parameters and rescales the group averages onto comparable 0-100 axes
// for visualization.
//
// Normalization is dataset-aware: min-max ranges are taken from the set of
// groups present in the records passed to a single BuildPayload call, never
// from any global historical range. Two calls over different subsets can
// legitimately produce different normalized values for the same underlying
// group, so consumers must not treat normalized values as stable historical
// constants.
package analytics

import (
	"math"
	"sort"

	"github.com/okian/caliper/internal/domain/model"
)

// normalizationEpsilon substitutes for a zero min-max range so degenerate
// views (single group, or all groups tied) resolve near 100 instead of
// dividing by zero.
const normalizationEpsilon = 1e-9

// Record is one stored scoring tagged with its generation parameters. The
// input sequence is assumed to be an immutable snapshot for the duration of
// a BuildPayload call.
type Record struct {
	Model       string
	Temperature float64
	TopP        float64
	Metrics     model.MetricRecord
}

// ScatterRow is the averaged and normalized shape for one
// (model, temperature, top_p) group.
type ScatterRow struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`

	AvgLexicalDiversity  float64 `json:"avg_lexical_diversity"`
	AvgQueryCoverage     float64 `json:"avg_query_coverage"`
	AvgFKGrade           float64 `json:"avg_fk_grade"`
	AvgRepetitionPenalty float64 `json:"avg_repetition_penalty"`

	RunCount int `json:"run_count"`

	NormLexicalDiversity  float64 `json:"norm_lexical_diversity"`
	NormQueryCoverage     float64 `json:"norm_query_coverage"`
	NormFKGrade           float64 `json:"norm_fk_grade"`
	NormRepetitionPenalty float64 `json:"norm_repetition_penalty"`
}

// ComparisonRow is the averaged and normalized shape for one model group.
type ComparisonRow struct {
	Model string `json:"model"`

	AvgLexicalDiversity  float64 `json:"avg_lexical_diversity"`
	AvgQueryCoverage     float64 `json:"avg_query_coverage"`
	AvgFKGrade           float64 `json:"avg_fk_grade"`
	AvgRepetitionPenalty float64 `json:"avg_repetition_penalty"`

	NormLexicalDiversity  float64 `json:"norm_lexical_diversity"`
	NormQueryCoverage     float64 `json:"norm_query_coverage"`
	NormFKGrade           float64 `json:"norm_fk_grade"`
	NormRepetitionPenalty float64 `json:"norm_repetition_penalty"`
}

// KPI carries the global means of each metric across all input records,
// rounded for presentation, or zeros when there is nothing to measure.
type KPI struct {
	OverallAvgLexicalDiversity  float64 `json:"overall_avg_lexical_diversity"`
	OverallAvgQueryCoverage     float64 `json:"overall_avg_query_coverage"`
	OverallAvgFKGrade           float64 `json:"overall_avg_fk_grade"`
	OverallAvgRepetitionPenalty float64 `json:"overall_avg_repetition_penalty"`
}

// Payload is the chart-ready aggregation result. ScatterData and
// ModelComparison never share a normalization range, even when built from
// the same underlying records.
type Payload struct {
	ScatterData     []ScatterRow    `json:"scatter_data"`
	ModelComparison []ComparisonRow `json:"model_comparison"`
	KPI             KPI             `json:"kpi"`
}

// accumulator sums metric values for one group.
type accumulator struct {
	lexicalDiversity  float64
	queryCoverage     float64
	fkGrade           float64
	repetitionPenalty float64
	count             int
}

func (a *accumulator) add(m model.MetricRecord) {
	a.lexicalDiversity += m.LexicalDiversity
	a.queryCoverage += m.QueryCoverage
	a.fkGrade += m.FleschKincaidGrade
	a.repetitionPenalty += m.RepetitionPenalty
	a.count++
}

func (a *accumulator) mean() model.MetricRecord {
	n := float64(a.count)
	return model.MetricRecord{
		LexicalDiversity:   a.lexicalDiversity / n,
		QueryCoverage:      a.queryCoverage / n,
		FleschKincaidGrade: a.fkGrade / n,
		RepetitionPenalty:  a.repetitionPenalty / n,
	}
}

// scatterKey identifies a fine-grained scatter group.
type scatterKey struct {
	model       string
	temperature float64
	topP        float64
}

// BuildPayload aggregates records into the scatter view, the per-model
// comparison view, and the overall KPI block. It is a single synchronous
// in-memory pass; concurrent calls over overlapping data are independent.
// Empty input yields empty (non-nil) view lists and a zero KPI block.
func BuildPayload(records []Record) Payload {
	scatterAcc := make(map[scatterKey]*accumulator)
	compareAcc := make(map[string]*accumulator)
	var overall accumulator

	for _, r := range records {
		sk := scatterKey{model: r.Model, temperature: r.Temperature, topP: r.TopP}
		if scatterAcc[sk] == nil {
			scatterAcc[sk] = &accumulator{}
		}
		scatterAcc[sk].add(r.Metrics)

		if compareAcc[r.Model] == nil {
			compareAcc[r.Model] = &accumulator{}
		}
		compareAcc[r.Model].add(r.Metrics)

		overall.add(r.Metrics)
	}

	scatter := make([]ScatterRow, 0, len(scatterAcc))
	for key, acc := range scatterAcc {
		m := acc.mean()
		scatter = append(scatter, ScatterRow{
			Model:                key.model,
			Temperature:          key.temperature,
			TopP:                 key.topP,
			AvgLexicalDiversity:  m.LexicalDiversity,
			AvgQueryCoverage:     m.QueryCoverage,
			AvgFKGrade:           m.FleschKincaidGrade,
			AvgRepetitionPenalty: m.RepetitionPenalty,
			RunCount:             acc.count,
		})
	}
	sort.Slice(scatter, func(i, j int) bool {
		a, b := scatter[i], scatter[j]
		if a.Model != b.Model {
			return a.Model < b.Model
		}
		if a.Temperature != b.Temperature {
			return a.Temperature < b.Temperature
		}
		return a.TopP < b.TopP
	})
	normalizeScatter(scatter)

	comparison := make([]ComparisonRow, 0, len(compareAcc))
	for name, acc := range compareAcc {
		m := acc.mean()
		comparison = append(comparison, ComparisonRow{
			Model:                name,
			AvgLexicalDiversity:  m.LexicalDiversity,
			AvgQueryCoverage:     m.QueryCoverage,
			AvgFKGrade:           m.FleschKincaidGrade,
			AvgRepetitionPenalty: m.RepetitionPenalty,
		})
	}
	sort.Slice(comparison, func(i, j int) bool {
		return comparison[i].Model < comparison[j].Model
	})
	normalizeComparison(comparison)

	var kpi KPI
	if overall.count > 0 {
		m := overall.mean()
		kpi = KPI{
			OverallAvgLexicalDiversity:  round2(m.LexicalDiversity),
			OverallAvgQueryCoverage:     round2(m.QueryCoverage),
			OverallAvgFKGrade:           round2(m.FleschKincaidGrade),
			OverallAvgRepetitionPenalty: round2(m.RepetitionPenalty),
		}
	}

	return Payload{
		ScatterData:     scatter,
		ModelComparison: comparison,
		KPI:             kpi,
	}
}

// normalizeScatter rescales the scatter view against its own group set.
// Lexical diversity and query coverage are already percentages on a
// comparable scale and pass through unrescaled.
func normalizeScatter(rows []ScatterRow) {
	if len(rows) == 0 {
		return
	}

	fkMin, fkMax := minMax(rows, func(r ScatterRow) float64 { return r.AvgFKGrade })
	rpMin, rpMax := minMax(rows, func(r ScatterRow) float64 { return r.AvgRepetitionPenalty })

	for i := range rows {
		rows[i].NormLexicalDiversity = round2(rows[i].AvgLexicalDiversity)
		rows[i].NormQueryCoverage = round2(rows[i].AvgQueryCoverage)
		rows[i].NormFKGrade = round2(normHigherIsBetter(rows[i].AvgFKGrade, fkMin, fkMax))
		rows[i].NormRepetitionPenalty = round2(normLowerIsBetter(rows[i].AvgRepetitionPenalty, rpMin, rpMax))
	}
}

// normalizeComparison rescales the comparison view against its own group
// set, independently of the scatter view.
func normalizeComparison(rows []ComparisonRow) {
	if len(rows) == 0 {
		return
	}

	fkMin, fkMax := minMax(rows, func(r ComparisonRow) float64 { return r.AvgFKGrade })
	rpMin, rpMax := minMax(rows, func(r ComparisonRow) float64 { return r.AvgRepetitionPenalty })

	for i := range rows {
		rows[i].NormLexicalDiversity = round2(rows[i].AvgLexicalDiversity)
		rows[i].NormQueryCoverage = round2(rows[i].AvgQueryCoverage)
		rows[i].NormFKGrade = round2(normHigherIsBetter(rows[i].AvgFKGrade, fkMin, fkMax))
		rows[i].NormRepetitionPenalty = round2(normLowerIsBetter(rows[i].AvgRepetitionPenalty, rpMin, rpMax))
	}
}

func minMax[T any](rows []T, value func(T) float64) (float64, float64) {
	lo, hi := value(rows[0]), value(rows[0])
	for _, r := range rows[1:] {
		v := value(r)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// normHigherIsBetter maps the highest group average to 100 and the lowest
// to 0. Written as a distance from the max so a degenerate range (x == min
// == max) resolves to 100: a tie means no group is worse than any other.
func normHigherIsBetter(x, lo, hi float64) float64 {
	rng := hi - lo
	if rng == 0 {
		rng = normalizationEpsilon
	}
	return 100.0 - 100.0*(hi-x)/rng
}

// normLowerIsBetter maps the lowest group average to 100 and the highest
// to 0, with the same degenerate-range behavior as normHigherIsBetter.
func normLowerIsBetter(x, lo, hi float64) float64 {
	rng := hi - lo
	if rng == 0 {
		rng = normalizationEpsilon
	}
	return 100.0 - 100.0*(x-lo)/rng
}

// round2 rounds to two decimal places. Rounding happens only at the output
// boundary, never between aggregation and normalization steps.
func round2(x float64) float64 {
	return math.Round(x*100.0) / 100.0
}
