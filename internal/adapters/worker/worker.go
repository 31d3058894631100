// Package worker runs batches of profile recompute jobs on a bounded pool.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/dkp/internal/domain/scoring"
	"github.com/okian/dkp/pkg/logger"
	"github.com/okian/dkp/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	maxWorkers              = 64
)

// Job asks for one stored profile to be rescored.
type Job struct {
	Name     string
	Settings scoring.Config
}

// Result reports the outcome of a Job.
type Result struct {
	Name     string `json:"name"`
	Entities int    `json:"entities"`
	Err      error  `json:"-"`
	Error    string `json:"error,omitempty"`
}

// Processor executes a single job and returns the number of rescored entities.
type Processor interface {
	Process(ctx context.Context, job Job) (int, error)
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, job Job) (int, error)

// Process calls f.
func (f ProcessorFunc) Process(ctx context.Context, job Job) (int, error) { return f(ctx, job) }

// Pool fans jobs out to a fixed number of workers.
type Pool struct {
	size   int
	proc   Processor
	logger logger.Logger
}

// NewPool creates a pool; a non-positive size picks a CPU-based default.
func NewPool(size int, proc Processor, opts ...Option) *Pool {
	if size < 1 {
		size = runtime.NumCPU() * defaultWorkerMultiplier
	}
	if size > maxWorkers {
		size = maxWorkers
	}

	p := &Pool{
		size: size,
		proc: proc,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("worker-pool")
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// Run processes every job and returns results in job order. Jobs not started
// before ctx is canceled report ctx.Err().
func (p *Pool) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	workers := min(p.size, len(jobs))
	idx := make(chan int)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			log := p.logger.Named(name)
			for n := range idx {
				results[n] = p.runOne(ctx, log, jobs[n])
			}
		}("worker-" + strconv.Itoa(i))
	}

feed:
	for n := range jobs {
		select {
		case <-ctx.Done():
			for rest := n; rest < len(jobs); rest++ {
				results[rest] = failed(jobs[rest].Name, ctx.Err())
			}
			break feed
		case idx <- n:
		}
	}
	close(idx)
	wg.Wait()

	return results
}

func (p *Pool) runOne(ctx context.Context, log logger.Logger, job Job) Result {
	metrics.AddWorkersBusy(1)
	defer metrics.AddWorkersBusy(-1)

	start := time.Now()
	n, err := p.proc.Process(ctx, job)
	latency := float64(time.Since(start).Microseconds()) / 1000

	if err != nil {
		metrics.RecordRecomputeJob("error", latency)
		metrics.RecordErrorByComponent("worker", "recompute_error")
		log.Error(ctx, "recompute failed",
			logger.String("profile", job.Name),
			logger.Error(err),
		)
		return failed(job.Name, fmt.Errorf("recompute %s: %w", job.Name, err))
	}

	metrics.RecordRecomputeJob("ok", latency)
	log.Debug(ctx, "profile recomputed",
		logger.String("profile", job.Name),
		logger.Int("entities", n),
		logger.Float64("latency_ms", latency),
	)
	return Result{Name: job.Name, Entities: n}
}

func failed(name string, err error) Result {
	return Result{Name: name, Err: err, Error: err.Error()}
}
