//go:build !linux

package clock

// NewCPUClock fails on non-Linux platforms: there is no portable
// user+system CPU-time source wired here, and the profiler must fail
// fast at startup rather than silently degrade to wall-clock mode
// (spec §4.C, §7).
func NewCPUClock() (Clock, error) {
	return nil, ErrUnsupportedPlatform
}
