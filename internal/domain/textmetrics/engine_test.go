package textmetrics_test

import (
	"strings"
	"testing"

	"github.com/okian/caliper/internal/domain/textmetrics"
	. "github.com/smartystreets/goconvey/convey"
)

func TestComputeDegenerateInputs(t *testing.T) {
	Convey("Given a metrics engine", t, func() {
		engine := textmetrics.NewEngine()

		Convey("When both prompt and response are empty", func() {
			record := engine.Compute("", "")

			Convey("Then every metric is zero", func() {
				So(record.LexicalDiversity, ShouldEqual, 0)
				So(record.QueryCoverage, ShouldEqual, 0)
				So(record.FleschKincaidGrade, ShouldEqual, 0)
				So(record.RepetitionPenalty, ShouldEqual, 0)
			})
		})

		Convey("When the response is whitespace only", func() {
			record := engine.Compute("why is the sky blue", "   \n\t ")
			So(record, ShouldResemble, engine.Compute("", ""))
		})

		Convey("When the same pair is scored twice", func() {
			a := engine.Compute("why is the sky blue", "light scatters in the sky")
			b := engine.Compute("why is the sky blue", "light scatters in the sky")
			So(a, ShouldResemble, b)
		})
	})
}

func TestLexicalDiversity(t *testing.T) {
	Convey("Given a metrics engine", t, func() {
		engine := textmetrics.NewEngine()

		Convey("When every token is unique", func() {
			record := engine.Compute("", "one two three four")
			So(record.LexicalDiversity, ShouldEqual, 100)
		})

		Convey("When half the tokens repeat", func() {
			record := engine.Compute("", "one two one two")
			So(record.LexicalDiversity, ShouldEqual, 50)
		})

		Convey("When the response is non-empty diversity stays in (0, 100]", func() {
			record := engine.Compute("", strings.Repeat("same ", 30))
			So(record.LexicalDiversity, ShouldBeGreaterThan, 0)
			So(record.LexicalDiversity, ShouldBeLessThanOrEqualTo, 100)
		})

		Convey("When tokenization lowercases, case differences do not inflate diversity", func() {
			record := engine.Compute("", "Word word WORD word")
			So(record.LexicalDiversity, ShouldEqual, 25)
		})
	})
}

func TestQueryCoverage(t *testing.T) {
	Convey("Given a metrics engine", t, func() {
		engine := textmetrics.NewEngine()

		Convey("When the prompt contains only stop words", func() {
			record := engine.Compute("what is the of and", "anything at all")

			Convey("Then there is nothing to cover and coverage is 100", func() {
				So(record.QueryCoverage, ShouldEqual, 100)
			})
		})

		Convey("When half the keywords appear in the response", func() {
			// Keywords after stop-word removal: "sky", "blue".
			record := engine.Compute("why is the sky blue", "the sky contains air")
			So(record.QueryCoverage, ShouldEqual, 50)
		})

		Convey("When every keyword appears", func() {
			record := engine.Compute("why is the sky blue", "the sky looks blue because of scattering")
			So(record.QueryCoverage, ShouldEqual, 100)
		})

		Convey("When no keyword appears", func() {
			record := engine.Compute("why is the sky blue", "photosynthesis converts sunlight")
			So(record.QueryCoverage, ShouldEqual, 0)
		})

		Convey("When a custom stop-word table is configured", func() {
			custom := textmetrics.NewEngine(textmetrics.WithStopwords([]string{"sky"}))

			// Only "blue" survives as a keyword; the rest of the prompt's
			// default stop words now count as keywords too.
			record := custom.Compute("sky blue", "blue paint")
			So(record.QueryCoverage, ShouldEqual, 100)
		})
	})
}

func TestFleschKincaidGrade(t *testing.T) {
	Convey("Given a metrics engine", t, func() {
		engine := textmetrics.NewEngine()

		Convey("When scoring a known short sentence", func() {
			// Tokens: "the", "cat", "sat", "." = 4 words, 4 syllables,
			// 1 sentence: 0.39*4 + 11.8*1 - 15.59 = -2.23.
			record := engine.Compute("", "the cat sat.")
			So(record.FleschKincaidGrade, ShouldAlmostEqual, -2.23, 0.0001)
		})

		Convey("When text has no sentence terminator it counts as one sentence", func() {
			a := engine.Compute("", "the cat sat")
			b := engine.Compute("", "the cat sat.")
			// The terminator adds one token but not a second sentence.
			So(a.FleschKincaidGrade, ShouldNotEqual, 0)
			So(b.FleschKincaidGrade, ShouldNotEqual, 0)
		})

		Convey("When sentences are longer and words polysyllabic the grade rises", func() {
			simple := engine.Compute("", "the cat sat on the mat.")
			dense := engine.Compute("", "atmospheric refraction phenomena demonstrate considerable electromagnetic complexity throughout observable meteorological interactions.")
			So(dense.FleschKincaidGrade, ShouldBeGreaterThan, simple.FleschKincaidGrade)
		})
	})
}

func TestRepetitionPenalty(t *testing.T) {
	Convey("Given a metrics engine", t, func() {
		engine := textmetrics.NewEngine()

		Convey("When a three-token phrase repeats five times", func() {
			record := engine.Compute("", strings.TrimSpace(strings.Repeat("the cat sat ", 5)))

			Convey("Then the trigram penalty is positive", func() {
				// 15 tokens, 13 trigram windows, 3 unique: (13-3)/13*100.
				So(record.RepetitionPenalty, ShouldAlmostEqual, 10.0/13.0*100.0, 0.0001)
			})
		})

		Convey("When a short text only repeats bigrams", func() {
			// Trigrams "red blue red" and "blue red blue" are unique, so the
			// trigram ratio is zero and the short-text bigram fallback kicks in.
			record := engine.Compute("", "red blue red blue")
			So(record.RepetitionPenalty, ShouldAlmostEqual, 1.0/3.0*100.0, 0.0001)
		})

		Convey("When a short text has no repeated n-grams at all", func() {
			record := engine.Compute("", "every token here differs completely")
			So(record.RepetitionPenalty, ShouldEqual, 0)
		})

		Convey("When a long text has zero trigram repeats the fallback does not apply", func() {
			words := make([]string, 60)
			for i := range words {
				words[i] = "w" + string(rune('a'+i%26)) + string(rune('a'+i/26))
			}
			record := engine.Compute("", strings.Join(words, " "))
			So(record.RepetitionPenalty, ShouldEqual, 0)
		})
	})
}
