// Package types holds small value types shared across the profiler and the
// trace codec.
package types

// Ticks is a raw clock delta as written on the wire: either wall-clock
// microseconds or CPU jiffies, depending on the clock mode recorded in the
// trace header's ticks_per_sec attribute. The writer never normalizes a
// Ticks value; only the reader converts it, by dividing by ticks_per_sec.
type Ticks uint64

// Seconds converts the raw tick count to seconds using the ticks_per_sec
// conversion factor recorded in the trace's header attributes.
func (t Ticks) Seconds(ticksPerSec uint64) float64 {
	if ticksPerSec == 0 {
		return 0
	}
	return float64(t) / float64(ticksPerSec)
}

// Uint64 returns the raw tick count.
func (t Ticks) Uint64() uint64 { return uint64(t) }

// DeltaTicks returns now-prev, saturating at 0 instead of wrapping when
// now < prev (a clock source that isn't strictly monotonic). Spec §4.C
// permits this: "samples are deltas", so an occasional clamped-to-zero
// delta is preferable to a huge wrapped one.
func DeltaTicks(now, prev Ticks) uint64 {
	if uint64(now) >= uint64(prev) {
		return uint64(now) - uint64(prev)
	}
	return 0
}
