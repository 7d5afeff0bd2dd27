package batch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Worker-count ceiling derived from available parallelism. A misconfigured
// caller cannot starve the host: requested counts are clamped to
// min(GOMAXPROCS * threadMultiplier, maxThreadCeiling).
const (
	threadMultiplier = 4
	maxThreadCeiling = 32
)

// UnitFunc is one independently-scheduled unit of work. It receives its
// worker index and the effective worker total. Returning ErrUserQuit,
// ErrSkipTarget, or a context error stops the batch; any other error is
// recorded as this unit's failure without affecting siblings.
type UnitFunc func(ctx context.Context, worker, total int) error

// Runner is a bounded concurrent executor for batches of supervised units.
// A Runner is safe for concurrent use; each Run invocation is an independent
// batch.
//
// A Runner is an explicitly constructed object owned by process startup, not
// package-global state.
type Runner struct {
	logger  *slog.Logger
	limiter *rate.Limiter

	// maxWorkers is the runtime-mutable ceiling override; zero means auto.
	maxWorkers atomic.Int64

	// active counts live workers of multi-worker batches. Other components
	// read it through MultiThreadActive to decide whether to serialize
	// console output.
	active atomic.Int64
}

// NewRunner creates a runner with the given options.
func NewRunner(opts ...Option) *Runner {
	cfg := &config{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	r := &Runner{
		logger:  cfg.logger,
		limiter: cfg.limiter,
	}
	r.maxWorkers.Store(int64(cfg.maxWorkers))
	return r
}

// MultiThreadActive reports whether any batch with more than one effective
// worker still has live workers.
func (r *Runner) MultiThreadActive() bool {
	return r.active.Load() > 0
}

// SetMaxWorkers changes the worker ceiling at runtime. Zero restores the
// automatic ceiling. The new value applies to subsequent Run calls.
func (r *Runner) SetMaxWorkers(n int) {
	if n >= 0 {
		r.maxWorkers.Store(int64(n))
	}
}

// clampWorkers normalizes a requested worker count: non-positive requests
// become 1, and the result never exceeds the ceiling.
func (r *Runner) clampWorkers(requested int) int {
	if requested <= 0 {
		requested = 1
	}
	ceiling := int(r.maxWorkers.Load())
	if ceiling <= 0 {
		ceiling = min(runtime.GOMAXPROCS(0)*threadMultiplier, maxThreadCeiling)
	}
	return min(requested, ceiling)
}

// Run executes one batch: it dispatches one unit per effective worker,
// collects every outcome, runs cleanup exactly once, and returns the
// aggregate result.
//
// Error propagation: cancellation and abort signals are always returned,
// after cleanup has executed. Unit failures are returned only when
// propagateFirstError is set, resolved in ascending worker-index order.
// cleanup may be nil; its own failure is logged and never replaces the
// batch's primary result.
func (r *Runner) Run(
	ctx context.Context,
	workers int,
	unit UnitFunc,
	cleanup func(),
	propagateFirstError bool,
) (*BatchResult, error) {
	n := r.clampWorkers(workers)
	res := &BatchResult{
		Requested: workers,
		Effective: n,
		Outcomes:  make([]Outcome, n),
	}

	multi := n > 1
	if multi {
		r.active.Add(int64(n))
		r.logger.Info("starting workers", "count", n)
	}

	// One goroutine per unit. Each records exactly one outcome
	// at its own index; a returned error cancels the group context so units
	// that have not started yet are never launched.
	g, gctx := errgroup.WithContext(ctx)
	for i := range n {
		g.Go(func() error {
			if multi {
				defer r.active.Add(-1)
			}
			return r.runWorker(gctx, i, n, unit, &res.Outcomes[i])
		})
	}

	runErr := g.Wait()

	// Cleanup runs exactly once, whether the batch succeeded, partially
	// failed, or was cancelled.
	r.runCleanup(cleanup)

	for _, o := range res.Outcomes {
		if o.Kind == Failure {
			res.Failed = true
			if res.FirstErr == nil {
				res.FirstErr = o.Err
			}
		}
	}

	if runErr != nil {
		return res, runErr
	}
	if propagateFirstError && res.FirstErr != nil {
		return res, res.FirstErr
	}
	return res, nil
}

// runWorker supervises one unit: it refuses to start after cancellation,
// waits for the rate limiter, and normalizes the unit's error into an
// outcome. Only cancellation-kind errors are returned to the group.
func (r *Runner) runWorker(ctx context.Context, worker, total int, unit UnitFunc, out *Outcome) error {
	out.Worker = worker

	if err := ctx.Err(); err != nil {
		out.Kind = Cancelled
		out.Err = err
		return err
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			out.Kind = Cancelled
			out.Err = err
			return err
		}
	}

	err := runUnit(ctx, unit, worker, total)
	switch {
	case err == nil:
		out.Kind = Success
		return nil
	case isCancellation(err):
		out.Kind = Cancelled
		out.Err = err
		return err
	default:
		r.logger.Error("worker failed", "worker", worker, "err", err)
		out.Kind = Failure
		out.Err = err
		return nil
	}
}

// runUnit executes one unit with panic recovery, so a single bad unit cannot
// crash its worker.
func runUnit(ctx context.Context, unit UnitFunc, worker, total int) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			buf := make([]byte, 4096)
			sz := runtime.Stack(buf, false)
			err = fmt.Errorf("worker panic: %v\nstack trace:\n%s", rec, buf[:sz])
		}
	}()
	return unit(ctx, worker, total)
}

// runCleanup invokes the batch cleanup callback, catching and logging any
// panic so cleanup can never mask the batch's primary outcome.
func (r *Runner) runCleanup(cleanup func()) {
	if cleanup == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("error occurred during batch cleanup", "err", rec)
		}
	}()
	cleanup()
}
