package analytics_test

import (
	"testing"

	"github.com/okian/caliper/internal/domain/analytics"
	"github.com/okian/caliper/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func record(modelName string, temp, topP float64, m model.MetricRecord) analytics.Record {
	return analytics.Record{Model: modelName, Temperature: temp, TopP: topP, Metrics: m}
}

func TestBuildPayloadEmptyInput(t *testing.T) {
	Convey("Given no input records", t, func() {
		payload := analytics.BuildPayload(nil)

		Convey("Then both views are empty but non-nil and the KPI is zero", func() {
			So(payload.ScatterData, ShouldNotBeNil)
			So(payload.ScatterData, ShouldBeEmpty)
			So(payload.ModelComparison, ShouldNotBeNil)
			So(payload.ModelComparison, ShouldBeEmpty)
			So(payload.KPI, ShouldResemble, analytics.KPI{})
		})
	})
}

func TestBuildPayloadGrouping(t *testing.T) {
	Convey("Given records across two models and two parameter pairs", t, func() {
		records := []analytics.Record{
			record("alpha", 0.2, 0.9, model.MetricRecord{LexicalDiversity: 60, QueryCoverage: 80, FleschKincaidGrade: 4, RepetitionPenalty: 10}),
			record("alpha", 0.2, 0.9, model.MetricRecord{LexicalDiversity: 70, QueryCoverage: 90, FleschKincaidGrade: 6, RepetitionPenalty: 20}),
			record("alpha", 0.8, 0.9, model.MetricRecord{LexicalDiversity: 50, QueryCoverage: 70, FleschKincaidGrade: 8, RepetitionPenalty: 30}),
			record("beta", 0.2, 0.9, model.MetricRecord{LexicalDiversity: 40, QueryCoverage: 60, FleschKincaidGrade: 10, RepetitionPenalty: 40}),
		}

		payload := analytics.BuildPayload(records)

		Convey("Then the scatter view has one row per (model, temperature, top_p)", func() {
			So(payload.ScatterData, ShouldHaveLength, 3)

			first := payload.ScatterData[0]
			So(first.Model, ShouldEqual, "alpha")
			So(first.Temperature, ShouldEqual, 0.2)
			So(first.RunCount, ShouldEqual, 2)
			So(first.AvgLexicalDiversity, ShouldEqual, 65)
			So(first.AvgQueryCoverage, ShouldEqual, 85)
			So(first.AvgFKGrade, ShouldEqual, 5)
			So(first.AvgRepetitionPenalty, ShouldEqual, 15)
		})

		Convey("Then rows sort by model, then temperature, then top_p", func() {
			So(payload.ScatterData[0].Model, ShouldEqual, "alpha")
			So(payload.ScatterData[1].Model, ShouldEqual, "alpha")
			So(payload.ScatterData[1].Temperature, ShouldEqual, 0.8)
			So(payload.ScatterData[2].Model, ShouldEqual, "beta")
		})

		Convey("Then the comparison view has one row per model", func() {
			So(payload.ModelComparison, ShouldHaveLength, 2)
			alpha := payload.ModelComparison[0]
			So(alpha.Model, ShouldEqual, "alpha")
			So(alpha.AvgLexicalDiversity, ShouldEqual, 60) // (60+70+50)/3
			So(alpha.AvgFKGrade, ShouldEqual, 6)           // (4+6+8)/3
		})

		Convey("Then the KPI block carries global means", func() {
			So(payload.KPI.OverallAvgLexicalDiversity, ShouldEqual, 55)
			So(payload.KPI.OverallAvgQueryCoverage, ShouldEqual, 75)
			So(payload.KPI.OverallAvgFKGrade, ShouldEqual, 7)
			So(payload.KPI.OverallAvgRepetitionPenalty, ShouldEqual, 25)
		})
	})
}

func TestNormalization(t *testing.T) {
	Convey("Given two comparison groups with distinct averages", t, func() {
		records := []analytics.Record{
			record("low", 0.2, 0.9, model.MetricRecord{LexicalDiversity: 42.555, QueryCoverage: 80, FleschKincaidGrade: 4, RepetitionPenalty: 5}),
			record("high", 0.2, 0.9, model.MetricRecord{LexicalDiversity: 61.124, QueryCoverage: 90, FleschKincaidGrade: 10, RepetitionPenalty: 25}),
		}

		payload := analytics.BuildPayload(records)
		So(payload.ModelComparison, ShouldHaveLength, 2)
		high := payload.ModelComparison[0]
		low := payload.ModelComparison[1]

		Convey("FK grade normalizes higher-is-better onto [0, 100]", func() {
			So(high.NormFKGrade, ShouldEqual, 100)
			So(low.NormFKGrade, ShouldEqual, 0)
		})

		Convey("Repetition penalty normalizes lower-is-better onto [0, 100]", func() {
			So(high.NormRepetitionPenalty, ShouldEqual, 0)
			So(low.NormRepetitionPenalty, ShouldEqual, 100)
		})

		Convey("Lexical diversity and coverage pass through, rounded to 2dp", func() {
			So(low.NormLexicalDiversity, ShouldEqual, 42.56)
			So(high.NormLexicalDiversity, ShouldEqual, 61.12)
			So(low.NormQueryCoverage, ShouldEqual, 80)
		})
	})

	Convey("Given a single group, degenerate ranges resolve to 100", t, func() {
		payload := analytics.BuildPayload([]analytics.Record{
			record("solo", 0.2, 0.9, model.MetricRecord{LexicalDiversity: 50, QueryCoverage: 50, FleschKincaidGrade: 7, RepetitionPenalty: 12}),
		})

		So(payload.ScatterData, ShouldHaveLength, 1)
		row := payload.ScatterData[0]
		So(row.NormFKGrade, ShouldEqual, 100)
		So(row.NormRepetitionPenalty, ShouldEqual, 100)

		So(payload.ModelComparison[0].NormFKGrade, ShouldEqual, 100)
		So(payload.ModelComparison[0].NormRepetitionPenalty, ShouldEqual, 100)
	})

	Convey("Given tied groups, everyone normalizes to 100", t, func() {
		payload := analytics.BuildPayload([]analytics.Record{
			record("a", 0.2, 0.9, model.MetricRecord{FleschKincaidGrade: 7, RepetitionPenalty: 12}),
			record("b", 0.5, 0.9, model.MetricRecord{FleschKincaidGrade: 7, RepetitionPenalty: 12}),
		})

		for _, row := range payload.ScatterData {
			So(row.NormFKGrade, ShouldEqual, 100)
			So(row.NormRepetitionPenalty, ShouldEqual, 100)
		}
	})

	Convey("Given both views over the same records, ranges are independent", t, func() {
		// Scatter groups: alpha has two parameter pairs with FK 4 and 10;
		// comparison collapses alpha to FK 7 against beta's 7, a tie.
		records := []analytics.Record{
			record("alpha", 0.2, 0.9, model.MetricRecord{FleschKincaidGrade: 4}),
			record("alpha", 0.8, 0.9, model.MetricRecord{FleschKincaidGrade: 10}),
			record("beta", 0.5, 0.9, model.MetricRecord{FleschKincaidGrade: 7}),
		}

		payload := analytics.BuildPayload(records)

		// Scatter: FK range [4, 10] spreads the groups.
		So(payload.ScatterData[0].NormFKGrade, ShouldEqual, 0)
		So(payload.ScatterData[1].NormFKGrade, ShouldEqual, 100)
		So(payload.ScatterData[2].NormFKGrade, ShouldEqual, 50)

		// Comparison: both models average FK 7, so both normalize to 100.
		So(payload.ModelComparison[0].NormFKGrade, ShouldEqual, 100)
		So(payload.ModelComparison[1].NormFKGrade, ShouldEqual, 100)
	})
}

func TestRounding(t *testing.T) {
	Convey("Given averages with long fractions", t, func() {
		// Three records so the mean has a repeating fraction.
		records := []analytics.Record{
			record("m", 0.2, 0.9, model.MetricRecord{LexicalDiversity: 10}),
			record("m", 0.2, 0.9, model.MetricRecord{LexicalDiversity: 10}),
			record("m", 0.2, 0.9, model.MetricRecord{LexicalDiversity: 11}),
		}

		payload := analytics.BuildPayload(records)

		Convey("Then normalized outputs are rounded to two decimals", func() {
			// 31/3 = 10.333...
			So(payload.ScatterData[0].NormLexicalDiversity, ShouldEqual, 10.33)
			So(payload.KPI.OverallAvgLexicalDiversity, ShouldEqual, 10.33)
		})

		Convey("And the raw averages stay unrounded", func() {
			So(payload.ScatterData[0].AvgLexicalDiversity, ShouldAlmostEqual, 31.0/3.0, 1e-12)
		})
	})
}
