// Command nytprofdump decodes a trace file written by pkg/trace and
// prints a plain-text per-line summary. It is deliberately not a report
// engine: no CSV/HTML output, no aggregation beyond what pkg/trace/reader
// already computes — that kind of presentation layer is out of scope for
// this module (spec.md §1 Non-goals).
package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ja7ad/nytprof/pkg/trace"
	"github.com/ja7ad/nytprof/pkg/trace/reader"
)

func main() {
	root := &cobra.Command{
		Use:   "nytprofdump <trace-file>",
		Short: "Decode a trace file and print a per-line time/count summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0])
		},
	}

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func run(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("nytprofdump: %w", err)
	}
	defer f.Close()

	prof, err := reader.Decode(f)
	if err != nil {
		return fmt.Errorf("nytprofdump: %w", err)
	}

	for _, w := range prof.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tLINE\tTIME(s)\tCOUNT")

	fids := make([]trace.Fid, 0, len(prof.FidLineTime))
	for fid := range prof.FidLineTime {
		fids = append(fids, fid)
	}
	sort.Slice(fids, func(i, j int) bool { return fids[i] < fids[j] })

	for _, fid := range fids {
		name := fmt.Sprintf("fid%d", fid)
		if info := prof.FidInfo[fid]; info != nil {
			name = info.Key
		}
		lines := make([]uint32, 0, len(prof.FidLineTime[fid]))
		for line := range prof.FidLineTime[fid] {
			lines = append(lines, line)
		}
		sort.Slice(lines, func(i, j int) bool { return lines[i] < lines[j] })

		for _, line := range lines {
			e := prof.FidLineTime[fid][line]
			fmt.Fprintf(tw, "%s\t%d\t%.6f\t%d\n", name, line, e.Time, e.Count)
		}
	}
	return tw.Flush()
}
