// Package batch provides a supervised, bounded worker pool for running flat
// fan-out/fan-in batches of work.
//
// The primary type is Runner. One call to Run covers a whole batch: it clamps
// the requested worker count, dispatches one supervised unit per worker,
// collects exactly one outcome per unit, runs the batch's cleanup callback
// exactly once, and decides what to propagate.
//
// # Basic Usage
//
//	r := batch.NewRunner()
//	res, err := r.Run(ctx, 8, func(ctx context.Context, worker, total int) error {
//	    return scanTarget(ctx, worker, total)
//	}, cleanupFn, true)
//
// # Failure semantics
//
// A unit failure is isolated: it is logged with the worker's identity,
// recorded as that unit's outcome, and never stops sibling units. When
// propagateFirstError is set, the first recorded failure in worker-index
// order is returned after every unit has finished and cleanup has run.
//
// Cancellation is different: context cancellation and the intentional abort
// signals ErrUserQuit and ErrSkipTarget stop the batch, are never logged as
// errors, and are always returned to the caller after cleanup — regardless
// of propagateFirstError. Units that have not started when cancellation is
// observed are never launched.
//
// Panics inside a unit are recovered and recorded as that unit's failure
// with a stack trace, so a single bad unit cannot crash the batch.
package batch
