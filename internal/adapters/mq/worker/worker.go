// Package worker defines worker contracts for asynchronous generation and
// scoring.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/caliper/internal/adapters/mq/queue"
	"github.com/okian/caliper/internal/domain/model"
	"github.com/okian/caliper/pkg/logger"
	"github.com/okian/caliper/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
)

// Generator produces one completion for a generation job.
type Generator interface {
	Generate(ctx context.Context, modelName, prompt string, temperature, topP float64) (output string, latency time.Duration, err error)
}

// Scorer computes metric scores for a prompt/response pair.
type Scorer interface {
	Compute(prompt, response string) model.MetricRecord
}

// Inserter persists one scored evaluation.
type Inserter interface {
	Insert(ctx context.Context, ev model.Evaluation) (model.Evaluation, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes generation jobs: call the upstream model, score the
// response, persist the evaluation, and deliver the outcome to the waiting
// request.
type Worker struct {
	queue     Queue
	generator Generator
	scorer    Scorer
	inserter  Inserter
	name      string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewWorker creates a worker with configuration options.
func NewWorker(q Queue, generator Generator, scorer Scorer, inserter Inserter, opts ...Option) *Worker {
	w := &Worker{
		queue:     q,
		generator: generator,
		scorer:    scorer,
		inserter:  inserter,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}

	return w
}

// Run starts the worker loop until ctx is canceled, the worker is shut
// down, or the queue closes.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.processJob(ctx, job)
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker shutdown timed out: %w", ctx.Err())
	}
}

// processJob handles one generation job end to end. Failed generations are
// delivered as error outcomes and never persisted; a persistence failure is
// logged but does not fail the pair, the scores are still returned.
func (w *Worker) processJob(ctx context.Context, job queue.Job) {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerJobLatency(float64(time.Since(start).Milliseconds()))
	}()

	output, latency, err := w.generator.Generate(ctx, job.Model, job.Prompt, job.Temperature, job.TopP)
	if err != nil {
		metrics.RecordGenerationError()
		metrics.RecordWorkerError()
		w.logger.Error(ctx, "generation failed",
			logger.String("jobID", job.ID),
			logger.String("model", job.Model),
			logger.Float64("temperature", job.Temperature),
			logger.Float64("top_p", job.TopP),
			logger.Error(err),
		)
		w.deliver(ctx, job, queue.Outcome{Index: job.Index, Err: err})
		return
	}
	metrics.RecordGeneration()
	metrics.RecordGenerationLatency(float64(latency.Milliseconds()))

	scoreStart := time.Now()
	record := w.scorer.Compute(job.Prompt, output)
	metrics.RecordScoringLatency(float64(time.Since(scoreStart).Milliseconds()))

	if _, err := w.inserter.Insert(ctx, model.Evaluation{
		Prompt:       job.Prompt,
		Model:        job.Model,
		Temperature:  job.Temperature,
		TopP:         job.TopP,
		MetricRecord: record,
	}); err != nil {
		metrics.RecordWorkerError()
		w.logger.Error(ctx, "failed to persist evaluation",
			logger.String("jobID", job.ID),
			logger.Error(err),
		)
	}

	w.deliver(ctx, job, queue.Outcome{
		Index:     job.Index,
		Output:    output,
		Metrics:   &record,
		LatencyMS: latency.Milliseconds(),
	})
}

func (w *Worker) deliver(ctx context.Context, job queue.Job, out queue.Outcome) {
	if job.Reply == nil {
		return
	}
	select {
	case job.Reply <- out:
	case <-ctx.Done():
	}
}

// Pool manages multiple workers.
type Pool struct {
	workers []*Worker
	queue   Queue

	logger logger.Logger
}

// NewPool creates a worker pool of the given size.
func NewPool(workerCount int, q Queue, generator Generator, scorer Scorer, inserter Inserter) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers: make([]*Worker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		p.workers[i] = NewWorker(q, generator, scorer, inserter,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)

	return p
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop gracefully stops all workers, waiting up to a bounded timeout each.
func (p *Pool) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
	defer cancel()

	for _, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.String("worker", w.name))
		}
	}
}
