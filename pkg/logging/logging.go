package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Verbosity mirrors the `trace` configuration option (spec.md §6): 0 is
// quiet (warnings and errors only), 1 is debug. RecordTrace (2+) selects
// the same debug-level logger as Debug; the trace writer emits no log
// output at any level.
type Verbosity int

const (
	Quiet Verbosity = iota
	Debug
	RecordTrace
)

// New returns a logger for the given component ("profiler", "trace",
// "config", ...), pre-populated with a component field the way the
// teacher's logger attaches debug/version/commit fields.
func New(component string, v Verbosity) *logrus.Entry {
	var log *logrus.Logger
	if v >= Debug {
		log = newDevelopmentLogger()
	} else {
		log = newProductionLogger()
	}
	return log.WithFields(logrus.Fields{
		"component": component,
	})
}

func newDevelopmentLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.DebugLevel)
	log.SetOutput(os.Stderr)
	return log
}

func newProductionLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	log.Out = io.Discard
	// Warnings still need somewhere to land even in the quiet logger;
	// route WarnLevel+ to stderr instead of discarding everything.
	log.SetOutput(os.Stderr)
	return log
}

// WithPidFid returns a derived entry tagging the current pid and fid, for
// the hot-path warnings the statement/call hooks occasionally emit
// (optimized-away line, unresolved sub name).
func WithPidFid(e *logrus.Entry, pid int, fid uint32) *logrus.Entry {
	return e.WithFields(logrus.Fields{"pid": pid, "fid": fid})
}
