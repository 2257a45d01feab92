// Package logging wires the profiler's diagnostics through logrus. A
// quiet "production" logger (warn and above, written to stderr) is the
// default; the `trace` configuration
// option raises it to a verbose development logger, matching the
// dual-mode pattern used elsewhere in the pack.
package logging
