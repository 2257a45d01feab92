// Package profiler implements the three interpreter hooks (statement,
// call, and the fork guard the statement hook runs) and the end-of-process finalizer
// that together produce a trace file (spec.md §4.D-§4.G, §4.I).
//
// Profiler is NOT safe for concurrent use from multiple goroutines: it
// mirrors the host's single-threaded op-dispatch assumption, the same way
// the underlying interpreter itself is single-threaded per process.
package profiler
