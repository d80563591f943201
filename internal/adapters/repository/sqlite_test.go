package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	repository "github.com/okian/caliper/internal/adapters/repository"
	"github.com/okian/caliper/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestStore(t *testing.T) *repository.SQLiteStore {
	t.Helper()
	store, err := repository.NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleEvaluation(modelName string, temp, topP float64) model.Evaluation {
	return model.Evaluation{
		Prompt:      "explain photosynthesis",
		Model:       modelName,
		Temperature: temp,
		TopP:        topP,
		MetricRecord: model.MetricRecord{
			LexicalDiversity:   82.5,
			QueryCoverage:      100.0,
			FleschKincaidGrade: 7.3,
			RepetitionPenalty:  4.2,
		},
	}
}

func TestSQLiteStore(t *testing.T) {
	Convey("Given an empty store", t, func() {
		store := newTestStore(t)
		ctx := context.Background()

		Convey("Then it has no rows", func() {
			n, err := store.Count(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 0)

			rows, err := store.MetricRows(ctx)
			So(err, ShouldBeNil)
			So(rows, ShouldBeEmpty)
		})

		Convey("When inserting evaluations", func() {
			first, err := store.Insert(ctx, sampleEvaluation("alpha", 0.2, 0.9))
			So(err, ShouldBeNil)
			second, err := store.Insert(ctx, sampleEvaluation("beta", 0.7, 0.95))
			So(err, ShouldBeNil)

			Convey("Then ids and timestamps are assigned", func() {
				So(first.ID, ShouldEqual, 1)
				So(second.ID, ShouldEqual, 2)
				So(first.CreatedAt.IsZero(), ShouldBeFalse)
			})

			Convey("Then List pages in id order", func() {
				page, err := store.List(ctx, 0, 10)
				So(err, ShouldBeNil)
				So(page, ShouldHaveLength, 2)
				So(page[0].Model, ShouldEqual, "alpha")
				So(page[0].LexicalDiversity, ShouldAlmostEqual, 82.5, 1e-9)
				So(page[0].CreatedAt.IsZero(), ShouldBeFalse)

				page, err = store.List(ctx, 1, 10)
				So(err, ShouldBeNil)
				So(page, ShouldHaveLength, 1)
				So(page[0].Model, ShouldEqual, "beta")
			})

			Convey("Then MetricRows exposes the analytics projection", func() {
				rows, err := store.MetricRows(ctx)
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 2)
				So(rows[0].Model, ShouldEqual, "alpha")
				So(rows[0].Metrics.FleschKincaidGrade, ShouldAlmostEqual, 7.3, 1e-9)
			})

			Convey("Then Count reflects inserts", func() {
				n, err := store.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 2)
			})
		})

		Convey("When paginating with invalid parameters", func() {
			_, err := store.List(ctx, -1, 10)
			So(err, ShouldEqual, repository.ErrInvalidPage)

			_, err = store.List(ctx, 0, 0)
			So(err, ShouldEqual, repository.ErrInvalidPage)
		})
	})
}

func TestSeedFromCSV(t *testing.T) {
	Convey("Given a seed CSV", t, func() {
		dir := t.TempDir()
		seedPath := filepath.Join(dir, "seed.csv")
		csvBody := "prompt,model,temperature,top_p,lexical_diversity,query_coverage,flesch_kincaid_grade,repetition_penalty\n" +
			"\"what is rain?\",alpha,0.2,0.9,80.1,100,5.5,0\n" +
			"\"what is snow?\",beta,0.7,0.95,75.4,66.67,8.2,12.5\n"
		So(os.WriteFile(seedPath, []byte(csvBody), 0o600), ShouldBeNil)

		store := newTestStore(t)
		ctx := context.Background()

		Convey("When seeding an empty store", func() {
			n, err := store.SeedFromCSV(ctx, seedPath)

			Convey("Then all rows are inserted", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 2)

				count, err := store.Count(ctx)
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 2)
			})

			Convey("And seeding again is a no-op", func() {
				again, err := store.SeedFromCSV(ctx, seedPath)
				So(err, ShouldBeNil)
				So(again, ShouldEqual, 0)
			})
		})

		Convey("When the seed file is missing", func() {
			n, err := store.SeedFromCSV(ctx, filepath.Join(dir, "absent.csv"))

			Convey("Then seeding is skipped without error", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 0)
			})
		})

		Convey("When the header is missing a column", func() {
			badPath := filepath.Join(dir, "bad.csv")
			So(os.WriteFile(badPath, []byte("prompt,model\nhi,alpha\n"), 0o600), ShouldBeNil)

			_, err := store.SeedFromCSV(ctx, badPath)

			Convey("Then seeding fails with a seed error", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
