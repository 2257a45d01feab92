// Command nytprofdemo drives internal/fakehost through a small scripted
// program under pkg/profiler and writes a trace file, so the reader and
// the on-disk format can be exercised without a real interpreter.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ja7ad/nytprof/internal/fakehost"
	"github.com/ja7ad/nytprof/internal/hostiface"
	"github.com/ja7ad/nytprof/pkg/clock"
	"github.com/ja7ad/nytprof/pkg/config"
	"github.com/ja7ad/nytprof/pkg/profiler"
)

type opts struct {
	configPath string
}

func main() {
	var o opts

	root := &cobra.Command{
		Use:   "nytprofdemo",
		Short: "Run a scripted fake program under the profiler and write a trace",
		Long: `nytprofdemo drives a small fake interpreter (internal/fakehost) through a
scripted sequence of statements and subroutine calls under pkg/profiler,
producing a trace file in the same on-disk format pkg/trace/reader decodes.

It exists to exercise the statement hook, call hook, and finalizer end to
end without a real dynamic-language runtime attached.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o)
		},
	}

	root.Flags().StringVar(&o.configPath, "config", "", "optional YAML config sidecar (overridden key-by-key by $NYTPROF)")

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func run(o opts) error {
	cfg, warnings := config.Load(os.Getenv("NYTPROF"), o.configPath)
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, w)
	}

	mode := clock.Wall
	if cfg.UseCPUTime {
		mode = clock.CPU
	}

	host := fakehost.NewHost()
	host.SubMap["main::greet"] = "demo.pl:10-14"

	p, err := profiler.New(profiler.Config{
		TracePath:  cfg.File,
		Comment:    "nytprofdemo scripted run",
		ClockMode:  mode,
		Blocks:     cfg.Blocks,
		AllowFork:  cfg.AllowFork,
		ModuleName: "nytprof.profiler",
		Verbosity:  config.VerbosityOf(cfg.Trace),
	}, host)
	if err != nil {
		return fmt.Errorf("nytprofdemo: %w", err)
	}
	if !cfg.Begin {
		p.DisableProfile()
	}

	script(host, p)

	if err := p.Finish(); err != nil {
		return fmt.Errorf("nytprofdemo: finish: %w", err)
	}
	fmt.Printf("wrote trace to %s\n", cfg.File)
	return nil
}

// script runs a fixed sequence of statements and one subroutine call,
// mimicking what a real interpreter's dispatch loop would feed the hooks.
func script(host *fakehost.Host, p *profiler.Profiler) {
	for _, line := range []int{1, 2, 3} {
		host.Current = fakehost.NewOp("demo.pl", line)
		p.OnStatement()
	}

	host.Current = fakehost.NewOp("demo.pl", 4)
	p.OnCall(fakehost.NamedCallable("main", "greet"), func() hostiface.Op {
		return fakehost.NewOp("demo.pl", 10)
	})

	for _, line := range []int{5, 6} {
		host.Current = fakehost.NewOp("demo.pl", line)
		p.OnStatement()
	}
}
