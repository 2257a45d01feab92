// Package config parses the profiler's configuration surface: the
// colon-separated NYTPROF-style environment string (spec.md §6) and an
// optional YAML sidecar for hosts that prefer a file. The env string, key
// by key, always wins over the YAML file.
package config
