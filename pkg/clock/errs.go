package clock

import "errors"

var (
	// ErrUnsupportedPlatform is returned by NewCPUClock on a platform with
	// no CPU-time backend wired (spec §4.C, §7: "missing clock on platform"
	// is fatal at profiler startup, never a silent fallback to wall-clock).
	ErrUnsupportedPlatform = errors.New("clock: cpu-time mode unsupported on this platform")

	// ErrNoStat indicates that /proc/<pid>/stat was empty or malformed.
	ErrNoStat = errors.New("clock: malformed or empty /proc stat")

	// ErrShortStat indicates that /proc/<pid>/stat had fewer fields than expected.
	ErrShortStat = errors.New("clock: short /proc stat")
)
