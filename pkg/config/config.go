package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ja7ad/nytprof/pkg/logging"
)

// Options is the profiler's full configuration surface (spec.md §6).
type Options struct {
	File       string `yaml:"file"`
	UseCPUTime bool   `yaml:"useCpuTime"`
	Begin      bool   `yaml:"begin"`
	Blocks     bool   `yaml:"blocks"`
	Trace      int    `yaml:"trace"`
	AllowFork  bool   `yaml:"allowFork"`
	UseDBSub   bool   `yaml:"useDbSub"`
}

// Default returns the profiler's built-in defaults, applied before any
// YAML file or environment string is layered on top.
func Default() Options {
	return Options{
		File:      "nytprof.out",
		Begin:     true,
		AllowFork: true,
	}
}

var knownKeys = map[string]bool{
	"file": true, "usecputime": true, "begin": true, "blocks": true,
	"trace": true, "allowfork": true, "use_db_sub": true,
}

// Load builds Options from Default(), a YAML sidecar (if yamlPath is
// non-empty), and finally the colon-separated environment string — each
// layer overriding the one before it, key by key. It returns the
// resolved Options plus any non-fatal warnings (unknown env keys,
// unreadable YAML file).
func Load(envString, yamlPath string) (Options, []string) {
	opt := Default()
	var warnings []string

	if yamlPath != "" {
		if err := mergeYAML(&opt, yamlPath); err != nil {
			warnings = append(warnings, fmt.Sprintf("config: reading %s: %v", yamlPath, err))
		}
	}

	warnings = append(warnings, applyEnvString(&opt, envString)...)
	return opt, warnings
}

func mergeYAML(opt *Options, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, opt)
}

// applyEnvString parses a colon-separated list of `key=value` or bare
// boolean `key` entries (spec.md §6) and overlays them onto opt. Unknown
// keys produce a warning and are otherwise ignored.
func applyEnvString(opt *Options, s string) []string {
	var warnings []string
	if s == "" {
		return nil
	}

	for _, tok := range strings.Split(s, ":") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		key, value, hasValue := strings.Cut(tok, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		if !knownKeys[key] {
			warnings = append(warnings, fmt.Sprintf("config: unknown option %q, ignored", key))
			continue
		}

		switch key {
		case "file":
			if hasValue {
				opt.File = value
			}
		case "usecputime":
			opt.UseCPUTime = boolOf(value, hasValue)
		case "begin":
			opt.Begin = boolOf(value, hasValue)
		case "blocks":
			opt.Blocks = boolOf(value, hasValue)
		case "allowfork":
			opt.AllowFork = boolOf(value, hasValue)
		case "use_db_sub":
			opt.UseDBSub = boolOf(value, hasValue)
		case "trace":
			if hasValue {
				if v, err := strconv.Atoi(value); err == nil {
					opt.Trace = v
				} else {
					warnings = append(warnings, fmt.Sprintf("config: trace=%q is not an integer, ignored", value))
				}
			} else {
				opt.Trace = 1
			}
		}
	}
	return warnings
}

// boolOf treats a bare key (no "=value") as true, matching NYTPROF's
// "key" vs "key=0"/"key=1" option syntax.
func boolOf(value string, hasValue bool) bool {
	if !hasValue {
		return true
	}
	v, err := strconv.ParseBool(value)
	if err != nil {
		return value != "0" && value != ""
	}
	return v
}

// VerbosityOf maps the Trace option to a logging.Verbosity: trace=0 is
// warn-level, trace>=1 is debug, trace>=2 is logging.RecordTrace, which
// logs at the same debug level as trace=1.
func VerbosityOf(trace int) logging.Verbosity {
	switch {
	case trace >= 2:
		return logging.RecordTrace
	case trace >= 1:
		return logging.Debug
	default:
		return logging.Quiet
	}
}
