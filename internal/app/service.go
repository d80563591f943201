// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/caliper/internal/adapters/llm"
	jobqueue "github.com/okian/caliper/internal/adapters/mq/queue"
	workerpool "github.com/okian/caliper/internal/adapters/mq/worker"
	repository "github.com/okian/caliper/internal/adapters/repository"
	"github.com/okian/caliper/internal/domain/analytics"
	"github.com/okian/caliper/internal/domain/model"
	"github.com/okian/caliper/internal/domain/textmetrics"
	"github.com/okian/caliper/internal/domain/types"
	"github.com/okian/caliper/pkg/logger"
	"github.com/okian/caliper/pkg/metrics"
)

// generatorAdapter adapts llm.Generator to the worker.Generator contract.
type generatorAdapter struct {
	generator llm.Generator
}

func (a *generatorAdapter) Generate(ctx context.Context, modelName, prompt string, temperature, topP float64) (string, time.Duration, error) {
	result, err := a.generator.Generate(ctx, llm.Request{
		Model:       modelName,
		Prompt:      prompt,
		Temperature: temperature,
		TopP:        topP,
	})
	if err != nil {
		return "", 0, err
	}

	return result.Output, result.Latency, nil
}

// Service implements the API dependencies for the evaluation system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	generator llm.Generator
	jobQueue  jobqueue.Queue
	engine    *textmetrics.Engine
	pool      *workerpool.Pool

	// Configuration
	workerCount  int
	queueSize    int
	dbPath       string
	seedCSVPath  string
	llmBaseURL   string
	llmAPIKey    string
	llmTimeout   time.Duration
	maxPageLimit int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the generation job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDBPath sets the SQLite database file path.
func WithDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dbPath = path
		}
	}
}

// WithSeedCSVPath sets the CSV snapshot used to seed an empty database.
func WithSeedCSVPath(path string) Option {
	return func(s *Service) {
		s.seedCSVPath = path
	}
}

// WithLLM configures the upstream generation endpoint.
func WithLLM(baseURL, apiKey string, timeout time.Duration) Option {
	return func(s *Service) {
		if baseURL != "" {
			s.llmBaseURL = baseURL
		}
		s.llmAPIKey = apiKey
		if timeout > 0 {
			s.llmTimeout = timeout
		}
	}
}

// WithGenerator replaces the upstream generator, e.g. for tests.
func WithGenerator(g llm.Generator) Option {
	return func(s *Service) {
		if g != nil {
			s.generator = g
		}
	}
}

// WithStore replaces the evaluation store, e.g. for tests.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithMaxPageLimit caps the page size for listing evaluations.
func WithMaxPageLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxPageLimit = limit
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  0, // worker pool falls back to NumCPU-based sizing
		queueSize:    1024,
		dbPath:       "caliper.db",
		seedCSVPath:  "mock_data.csv",
		llmBaseURL:   "http://localhost:11434",
		llmTimeout:   2 * time.Minute,
		maxPageLimit: 500,
		logger:       nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting evaluation service...")

	if s.store == nil {
		store, err := repository.NewSQLiteStore(ctx, s.dbPath)
		if err != nil {
			return err
		}
		s.store = store
		s.logger.Info(ctx, "using sqlite store", logger.String("path", s.dbPath))
	}

	s.seed(ctx)

	if s.generator == nil {
		s.generator = llm.NewClient(s.llmBaseURL,
			llm.WithAPIKey(s.llmAPIKey),
			llm.WithTimeout(s.llmTimeout),
		)
	}

	s.engine = textmetrics.NewEngine()
	s.jobQueue = jobqueue.NewInMemoryQueue(
		jobqueue.WithCapacity(s.queueSize),
	)

	s.pool = workerpool.NewPool(s.workerCount, s.jobQueue,
		&generatorAdapter{generator: s.generator},
		s.engine,
		s.store,
	)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "evaluation service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.String("llmBaseURL", s.llmBaseURL),
	)

	return nil
}

// seed populates an empty store from the configured CSV snapshot. Seeding is
// best-effort: a failure is logged and the service still starts.
func (s *Service) seed(ctx context.Context) {
	if s.seedCSVPath == "" {
		return
	}

	seeder, ok := s.store.(repository.Seeder)
	if !ok {
		return
	}

	n, err := seeder.SeedFromCSV(ctx, s.seedCSVPath)
	if err != nil {
		s.logger.Warn(ctx, "failed to seed database",
			logger.String("path", s.seedCSVPath),
			logger.Error(err),
		)
		return
	}
	if n > 0 {
		s.logger.Info(ctx, "seeded database from csv",
			logger.String("path", s.seedCSVPath),
			logger.Int("rows", n),
		)
	}
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping evaluation service...")

	if s.jobQueue != nil {
		_ = s.jobQueue.Close()
	}

	// Stop worker pool after closing the queue so in-flight jobs drain.
	if s.pool != nil {
		s.pool.Stop()
	}

	if s.store != nil {
		_ = s.store.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "evaluation service stopped")
}

// RunPrompt generates one response per parameter pair, scores each, persists
// successful pairs, and returns per-pair results in input order. A pair that
// fails to generate, or that cannot be enqueued because the queue is full,
// is reported inline via the Error field rather than failing the batch.
func (s *Service) RunPrompt(ctx context.Context, prompt, modelName string, pairs []types.ParamPair) ([]types.GenerationResult, error) {
	jobID := uuid.NewString()
	reply := make(chan jobqueue.Outcome, len(pairs))

	results := make([]types.GenerationResult, len(pairs))
	pending := 0
	for i, pair := range pairs {
		results[i] = types.GenerationResult{
			Temperature: pair.Temperature,
			TopP:        pair.TopP,
		}

		ok := s.jobQueue.Enqueue(ctx, jobqueue.Job{
			ID:          jobID,
			Index:       i,
			Model:       modelName,
			Prompt:      prompt,
			Temperature: pair.Temperature,
			TopP:        pair.TopP,
			Reply:       reply,
		})
		if !ok {
			s.logger.Warn(ctx, "job queue full, rejecting pair",
				logger.String("jobID", jobID),
				logger.Int("pair", i),
			)
			results[i].Error = "server overloaded, try again later"
			continue
		}
		pending++
	}

	for ; pending > 0; pending-- {
		select {
		case out := <-reply:
			r := &results[out.Index]
			if out.Err != nil {
				r.Error = out.Err.Error()
				continue
			}
			r.Output = out.Output
			r.Metrics = out.Metrics
			r.LatencyMS = out.LatencyMS
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return results, nil
}

// ListEvaluations returns stored evaluations, paginated.
func (s *Service) ListEvaluations(ctx context.Context, skip, limit int) ([]model.Evaluation, error) {
	if limit > s.maxPageLimit {
		limit = s.maxPageLimit
	}
	return s.store.List(ctx, skip, limit)
}

// Analytics aggregates the full stored row set into the chart payload.
func (s *Service) Analytics(ctx context.Context) (analytics.Payload, error) {
	start := time.Now()

	rows, err := s.store.MetricRows(ctx)
	if err != nil {
		return analytics.Payload{}, err
	}

	records := make([]analytics.Record, len(rows))
	for i, row := range rows {
		records[i] = analytics.Record{
			Model:       row.Model,
			Temperature: row.Temperature,
			TopP:        row.TopP,
			Metrics:     row.Metrics,
		}
	}

	payload := analytics.BuildPayload(records)
	metrics.RecordAnalyticsBuild(float64(time.Since(start).Milliseconds()))

	return payload, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
	}

	if s.started {
		queueLen := s.jobQueue.Len(ctx)
		stats["queueLength"] = queueLen
		metrics.UpdateQueueSize(queueLen)

		if count, err := s.store.Count(ctx); err == nil {
			stats["totalEvaluations"] = count
			metrics.UpdateTotalEvaluations(count)
		}
	}

	return stats
}
