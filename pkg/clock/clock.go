// Package clock abstracts the monotonic time source the statement hook
// samples: wall-clock microseconds, or (on Linux) this process's CPU time
// in jiffies. The clock mode is fixed for the lifetime of a profile and its
// ticks-per-second rate is recorded in the trace header (spec §4.C).
package clock

import (
	"time"

	"github.com/ja7ad/nytprof/pkg/types"
)

// Mode selects the clock backing a Clock.
type Mode int

const (
	// Wall is microsecond-resolution wall-clock time (1_000_000 ticks/sec).
	Wall Mode = iota
	// CPU is user+system CPU time for this process, in platform jiffies.
	CPU
)

// Clock is the abstract monotonic time source the statement hook reads.
// Now saturates rather than panicking on overflow between calls, since
// samples are always deltas (spec §4.C).
type Clock interface {
	Now() types.Ticks
	TicksPerSec() uint64
	Mode() Mode
}

// wallClock reports elapsed microseconds since the clock was constructed.
// Measuring from a fixed epoch (rather than calling a libc gettimeofday
// equivalent directly) keeps Now monotonic even across a system clock step.
type wallClock struct {
	start time.Time
}

// NewWallClock returns a Clock ticking in microseconds, 1_000_000 ticks/sec.
func NewWallClock() Clock {
	return &wallClock{start: time.Now()}
}

func (w *wallClock) Now() types.Ticks {
	us := time.Since(w.start).Microseconds()
	if us < 0 {
		us = 0
	}
	return types.Ticks(uint64(us))
}

func (w *wallClock) TicksPerSec() uint64 { return 1_000_000 }
func (w *wallClock) Mode() Mode          { return Wall }
