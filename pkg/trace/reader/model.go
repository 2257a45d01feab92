// Package reader streams a trace produced by pkg/trace and builds the
// aggregated profile model: fids, per-line time tables (with eval nesting),
// per-subroutine definition/caller tables, and live-pid bookkeeping.
package reader

import "github.com/ja7ad/nytprof/pkg/trace"

// FidInfo is what the reader remembers about one declared fid: enough to
// redirect eval-nested samples to their outer (fid, line).
type FidInfo struct {
	Key      string
	EvalFid  trace.Fid
	EvalLine uint32
}

// IsEval reports whether this fid is a string-eval synthetic source unit.
func (fi FidInfo) IsEval() bool { return fi.EvalFid != 0 }

// LineEntry is one (fid, line) slot of the per-line time table. Evals, when
// non-nil, holds the nested per-inner-line table for string-eval code that
// ran while executing this line (spec §3, §4.J).
type LineEntry struct {
	Time  float64
	Count uint64
	Evals map[uint32]*LineStat
}

// LineStat is a bare (time, count) pair, used for nested eval lines and for
// the block/sub time tables.
type LineStat struct {
	Time  float64
	Count uint64
}

// SubRange is where a subroutine is defined: owning fid and first/last line.
type SubRange struct {
	Fid   trace.Fid
	First uint32
	Last  uint32
}

// Profile is the aggregated, in-memory result of decoding one trace stream.
type Profile struct {
	FidInfo map[trace.Fid]*FidInfo

	// FidLineTime[fid][line] accumulates elapsed time and call count for
	// every statement sample attributed to that line.
	FidLineTime map[trace.Fid]map[uint32]*LineEntry

	// FidBlockTime / FidSubTime are populated only when STMT_BLOCK records
	// are present in the stream (spec §4.J).
	FidBlockTime map[trace.Fid]map[uint32]*LineStat
	FidSubTime   map[trace.Fid]map[uint32]*LineStat

	// SubFidLine maps a fully-qualified sub name to where it is defined.
	SubFidLine map[string]SubRange

	// SubCaller[name][callerFid][callerLine] is the call count recorded at
	// that call site.
	SubCaller map[string]map[trace.Fid]map[uint32]uint64

	Attributes map[string]string
	LivePids   map[int]int

	// Warnings accumulates non-fatal diagnostics: truncated streams,
	// redeclared fids with a differing path, a 'p' record for a pid that
	// was never seen with 'P'.
	Warnings []string
}

func newProfile() *Profile {
	return &Profile{
		FidInfo:      make(map[trace.Fid]*FidInfo),
		FidLineTime:  make(map[trace.Fid]map[uint32]*LineEntry),
		FidBlockTime: make(map[trace.Fid]map[uint32]*LineStat),
		FidSubTime:   make(map[trace.Fid]map[uint32]*LineStat),
		SubFidLine:   make(map[string]SubRange),
		SubCaller:    make(map[string]map[trace.Fid]map[uint32]uint64),
		Attributes:   make(map[string]string),
		LivePids:     make(map[int]int),
	}
}

func (p *Profile) lineEntry(fid trace.Fid, line uint32) *LineEntry {
	byLine, ok := p.FidLineTime[fid]
	if !ok {
		byLine = make(map[uint32]*LineEntry)
		p.FidLineTime[fid] = byLine
	}
	e, ok := byLine[line]
	if !ok {
		e = &LineEntry{}
		byLine[line] = e
	}
	return e
}

func (p *Profile) blockStat(table map[trace.Fid]map[uint32]*LineStat, fid trace.Fid, line uint32) *LineStat {
	byLine, ok := table[fid]
	if !ok {
		byLine = make(map[uint32]*LineStat)
		table[fid] = byLine
	}
	s, ok := byLine[line]
	if !ok {
		s = &LineStat{}
		byLine[line] = s
	}
	return s
}
