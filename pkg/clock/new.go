package clock

// New constructs the Clock for the given mode. CPU-time mode can fail
// (ErrUnsupportedPlatform); callers should treat that as a fatal
// configuration error rather than falling back to Wall (spec §7).
func New(mode Mode) (Clock, error) {
	switch mode {
	case CPU:
		return NewCPUClock()
	default:
		return NewWallClock(), nil
	}
}
