// Package clock provides the two time sources the statement hook samples
// from: wall-clock microseconds (portable) and per-process CPU jiffies
// (Linux only). The chosen mode is fixed for the life of a profiling run;
// its ticks-per-second rate is written once into the trace header and
// never renormalized by the writer (spec §4.C).
package clock
