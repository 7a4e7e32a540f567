package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gnana997/observing-components/pkg/util"
)

// FileJob is a file queued for processing.
type FileJob struct {
	FilePath string
	JobID    int
}

// FileResult is the report produced for a job.
type FileResult struct {
	Report FileReport
	JobID  int
}

// ProcessFunc handles one file. A non-nil error is delivered on the errors
// channel instead of a result.
type ProcessFunc func(path string) (FileReport, error)

// WorkerPool runs a fixed number of goroutines that apply a ProcessFunc to
// submitted files.
//
// Usage:
//
//	pool := NewWorkerPool(ctx, workers, process, logger)
//	pool.Start()
//	defer pool.Stop()
//
//	for i, file := range files {
//	    pool.Submit(FileJob{FilePath: file, JobID: i})
//	}
//	pool.FinishSubmitting()
//
// Results and errors must be drained while jobs are submitted.
type WorkerPool struct {
	numWorkers int
	jobs       chan FileJob
	results    chan FileResult
	errors     chan FileError
	wg         sync.WaitGroup
	process    ProcessFunc
	logger     *slog.Logger

	ctx        context.Context
	cancel     context.CancelFunc
	started    atomic.Bool
	stopped    atomic.Bool
	jobsClosed atomic.Bool

	jobsSubmitted atomic.Int64
	jobsProcessed atomic.Int64
	jobsFailed    atomic.Int64
}

// NewWorkerPool creates a pool bound to ctx. numWorkers <= 0 selects
// util.GetOptimalPoolSize, the same size as the parser pools, so workers
// never wait on a parser.
func NewWorkerPool(ctx context.Context, numWorkers int, process ProcessFunc, logger *slog.Logger) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = util.GetOptimalPoolSize()
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(ctx)
	return &WorkerPool{
		numWorkers: numWorkers,
		jobs:       make(chan FileJob, numWorkers*2),
		results:    make(chan FileResult, numWorkers),
		errors:     make(chan FileError, numWorkers),
		process:    process,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start spawns the workers. It must be called before Submit.
func (wp *WorkerPool) Start() {
	if !wp.started.CompareAndSwap(false, true) {
		wp.logger.Warn("WorkerPool already started")
		return
	}

	wp.logger.Debug("Starting worker pool", "workers", wp.numWorkers)
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			wp.logger.Debug("Worker cancelled", "worker_id", id)
			return

		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			wp.processJob(id, job)
		}
	}
}

func (wp *WorkerPool) processJob(workerID int, job FileJob) {
	wp.logger.Debug("Processing file", "worker_id", workerID, "file", job.FilePath, "job_id", job.JobID)

	report, err := wp.process(job.FilePath)
	if err != nil {
		wp.jobsFailed.Add(1)
		select {
		case wp.errors <- FileError{FilePath: job.FilePath, Error: err}:
		case <-wp.ctx.Done():
		}
		return
	}

	wp.jobsProcessed.Add(1)
	select {
	case wp.results <- FileResult{Report: report, JobID: job.JobID}:
	case <-wp.ctx.Done():
	}
}

// Submit enqueues a job. It blocks while the queue is full and fails once
// the pool is stopped or its context is cancelled.
func (wp *WorkerPool) Submit(job FileJob) error {
	if wp.stopped.Load() || wp.jobsClosed.Load() {
		return fmt.Errorf("worker pool is stopped")
	}

	select {
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool cancelled: %w", wp.ctx.Err())
	case wp.jobs <- job:
		wp.jobsSubmitted.Add(1)
		return nil
	}
}

// Results returns the results channel. It is closed by Stop.
func (wp *WorkerPool) Results() <-chan FileResult {
	return wp.results
}

// Errors returns the errors channel. It is closed by Stop.
func (wp *WorkerPool) Errors() <-chan FileError {
	return wp.errors
}

// FinishSubmitting closes the jobs channel so workers exit once the queue
// is drained. Safe to call more than once.
func (wp *WorkerPool) FinishSubmitting() {
	if wp.jobsClosed.CompareAndSwap(false, true) {
		close(wp.jobs)
		wp.logger.Debug("Jobs channel closed", "total_submitted", wp.jobsSubmitted.Load())
	}
}

// Wait blocks until every worker has returned.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// Stop closes the queue, waits for in-flight jobs and closes the result and
// error channels. Consumers must keep draining until both are closed. Safe to
// call more than once.
func (wp *WorkerPool) Stop() {
	if !wp.stopped.CompareAndSwap(false, true) {
		return
	}

	wp.FinishSubmitting()
	wp.wg.Wait()
	wp.cancel()

	close(wp.results)
	close(wp.errors)

	wp.logger.Debug("Worker pool stopped",
		"jobs_submitted", wp.jobsSubmitted.Load(),
		"jobs_processed", wp.jobsProcessed.Load(),
		"jobs_failed", wp.jobsFailed.Load())
}

// GetStats returns current worker pool statistics.
func (wp *WorkerPool) GetStats() WorkerPoolStats {
	return WorkerPoolStats{
		NumWorkers:    wp.numWorkers,
		JobsSubmitted: wp.jobsSubmitted.Load(),
		JobsProcessed: wp.jobsProcessed.Load(),
		JobsFailed:    wp.jobsFailed.Load(),
		QueueLength:   len(wp.jobs),
	}
}

// WorkerPoolStats contains statistics about the worker pool.
type WorkerPoolStats struct {
	NumWorkers    int
	JobsSubmitted int64
	JobsProcessed int64
	JobsFailed    int64
	QueueLength   int
}
