package profiler

import "errors"

var (
	// ErrNoTracePath means a Config with an empty TracePath was supplied.
	ErrNoTracePath = errors.New("profiler: empty trace path")

	// ErrAlreadyFinished means Finish was called more than once for this
	// pid; the finalizer is documented idempotent (spec §4.I), so a second
	// call is a no-op returning this error rather than double-emitting
	// PID_END.
	ErrAlreadyFinished = errors.New("profiler: already finished")
)
