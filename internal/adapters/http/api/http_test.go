package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	api "github.com/okian/caliper/internal/adapters/http/api"
	"github.com/okian/caliper/internal/domain/analytics"
	"github.com/okian/caliper/internal/domain/model"
	"github.com/okian/caliper/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

type stubDeps struct {
	runPromptFn func(ctx context.Context, prompt, modelName string, pairs []types.ParamPair) ([]types.GenerationResult, error)
	listFn      func(ctx context.Context, skip, limit int) ([]model.Evaluation, error)
	analyticsFn func(ctx context.Context) (analytics.Payload, error)

	lastSkip  int
	lastLimit int
}

func (d *stubDeps) RunPrompt(ctx context.Context, prompt, modelName string, pairs []types.ParamPair) ([]types.GenerationResult, error) {
	if d.runPromptFn != nil {
		return d.runPromptFn(ctx, prompt, modelName, pairs)
	}
	results := make([]types.GenerationResult, 0, len(pairs))
	for _, p := range pairs {
		results = append(results, types.GenerationResult{
			Temperature: p.Temperature,
			TopP:        p.TopP,
			Output:      "stub output",
			Metrics:     &model.MetricRecord{LexicalDiversity: 100},
		})
	}
	return results, nil
}

func (d *stubDeps) ListEvaluations(ctx context.Context, skip, limit int) ([]model.Evaluation, error) {
	d.lastSkip, d.lastLimit = skip, limit
	if d.listFn != nil {
		return d.listFn(ctx, skip, limit)
	}
	return []model.Evaluation{}, nil
}

func (d *stubDeps) Analytics(ctx context.Context) (analytics.Payload, error) {
	if d.analyticsFn != nil {
		return d.analyticsFn(ctx)
	}
	return analytics.Payload{
		ScatterData:     []analytics.ScatterRow{},
		ModelComparison: []analytics.ComparisonRow{},
	}, nil
}

type stubStats struct{}

func (stubStats) GetStats() map[string]any {
	return map[string]any{"queue_size": 0}
}

func newTestMux(deps api.Dependencies, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, stubStats{}, opts...).Register(context.Background(), mux)
	return mux
}

func TestHealthAndStats(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newTestMux(&stubDeps{})

		Convey("GET /healthz returns ok", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("GET /stats returns service statistics", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			var body map[string]any
			So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
			So(body, ShouldContainKey, "queue_size")
		})

		Convey("OPTIONS preflight short-circuits with CORS headers", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/healthz", nil))

			So(rec.Code, ShouldEqual, http.StatusNoContent)
			So(rec.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
		})
	})
}

func TestTestPrompt(t *testing.T) {
	Convey("Given the POST /test-prompt endpoint", t, func() {
		deps := &stubDeps{}
		mux := newTestMux(deps)

		post := func(body string) *httptest.ResponseRecorder {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/test-prompt", bytes.NewBufferString(body))
			req.Header.Set("Content-Type", "application/json")
			mux.ServeHTTP(rec, req)
			return rec
		}

		Convey("When the request is valid", func() {
			rec := post(`{"prompt":"why is the sky blue?","model":"tiny","param_pairs":[{"temperature":0.2,"top_p":0.9},{"temperature":1.0,"top_p":0.5}]}`)

			So(rec.Code, ShouldEqual, http.StatusOK)
			var resp struct {
				Prompt  string                   `json:"prompt"`
				Model   string                   `json:"model"`
				Results []types.GenerationResult `json:"results"`
			}
			So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Model, ShouldEqual, "tiny")
			So(resp.Results, ShouldHaveLength, 2)
			So(resp.Results[0].Metrics, ShouldNotBeNil)
		})

		Convey("When the prompt is blank", func() {
			rec := post(`{"prompt":"   ","model":"tiny","param_pairs":[{"temperature":0.2,"top_p":0.9}]}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the model is blank", func() {
			rec := post(`{"prompt":"hi","model":"","param_pairs":[{"temperature":0.2,"top_p":0.9}]}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When no pairs are provided", func() {
			rec := post(`{"prompt":"hi","model":"tiny","param_pairs":[]}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the body is not JSON", func() {
			rec := post(`{not json`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the method is GET", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test-prompt", nil))
			So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("When the service is overloaded", func() {
			deps.runPromptFn = func(context.Context, string, string, []types.ParamPair) ([]types.GenerationResult, error) {
				return nil, api.NewKind("run prompt", api.ErrBackpressure)
			}
			rec := post(`{"prompt":"hi","model":"tiny","param_pairs":[{"temperature":0.2,"top_p":0.9}]}`)
			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestListEvaluations(t *testing.T) {
	Convey("Given the GET /evaluations endpoint", t, func() {
		deps := &stubDeps{}
		mux := newTestMux(deps, api.WithMaxPageLimit(200))

		get := func(target string) *httptest.ResponseRecorder {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
			return rec
		}

		Convey("When no parameters are given defaults apply", func() {
			rec := get("/evaluations")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(deps.lastSkip, ShouldEqual, 0)
			So(deps.lastLimit, ShouldEqual, 100)
		})

		Convey("When limit exceeds the cap it is clamped", func() {
			rec := get("/evaluations?limit=9999")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(deps.lastLimit, ShouldEqual, 200)
		})

		Convey("When skip is negative the request is rejected", func() {
			rec := get("/evaluations?skip=-1")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When limit is not a number the request is rejected", func() {
			rec := get("/evaluations?limit=abc")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the store fails a 500 is returned", func() {
			deps.listFn = func(context.Context, int, int) ([]model.Evaluation, error) {
				return nil, errors.New("db closed")
			}
			rec := get("/evaluations")
			So(rec.Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestAnalyticsEndpoint(t *testing.T) {
	Convey("Given the GET /analytics endpoint", t, func() {
		deps := &stubDeps{}
		mux := newTestMux(deps)

		Convey("When the build succeeds the payload is returned", func() {
			deps.analyticsFn = func(context.Context) (analytics.Payload, error) {
				return analytics.Payload{
					ScatterData:     []analytics.ScatterRow{{Model: "tiny", Temperature: 0.2, TopP: 0.9, RunCount: 1}},
					ModelComparison: []analytics.ComparisonRow{{Model: "tiny"}},
					KPI:             analytics.KPI{OverallAvgLexicalDiversity: 50},
				}, nil
			}

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analytics", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"scatter_data"`)
			So(rec.Body.String(), ShouldContainSubstring, `"model_comparison"`)
			So(rec.Body.String(), ShouldContainSubstring, `"kpi"`)
		})

		Convey("When the build fails a 500 is returned", func() {
			deps.analyticsFn = func(context.Context) (analytics.Payload, error) {
				return analytics.Payload{}, errors.New("query failed")
			}

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analytics", nil))
			So(rec.Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}
