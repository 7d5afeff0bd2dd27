package batch

// Kind classifies the outcome of one unit of work.
type Kind int

const (
	// Success: the unit completed without error.
	Success Kind = iota
	// Failure: the unit returned an error or panicked. Isolated to the unit.
	Failure
	// Cancelled: the unit was interrupted, aborted, or never started because
	// cancellation had already been observed.
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome records the result of one unit of work. Exactly one outcome is
// produced per submitted unit.
type Outcome struct {
	Worker int
	Kind   Kind
	Err    error
}

// BatchResult is the aggregate result of one Run invocation. It is created
// per batch and not reused across calls.
type BatchResult struct {
	// Requested is the worker count the caller asked for.
	Requested int
	// Effective is the worker count after clamping.
	Effective int
	// Outcomes is index-aligned with worker ids.
	Outcomes []Outcome
	// Failed reports whether any unit recorded a failure.
	Failed bool
	// FirstErr is the first recorded failure in worker-index order.
	FirstErr error
}
