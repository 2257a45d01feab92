package profiler

import (
	"fmt"
	"os"

	"github.com/ja7ad/nytprof/internal/hostiface"
	"github.com/ja7ad/nytprof/pkg/clock"
	"github.com/ja7ad/nytprof/pkg/logging"
	"github.com/ja7ad/nytprof/pkg/trace"
	"github.com/ja7ad/nytprof/pkg/types"
	"github.com/sirupsen/logrus"
)

// Config selects the profiler's clock mode and trace output, mirroring
// the env-var option blob described in spec.md §6.
type Config struct {
	TracePath string // base path; fork children write "<TracePath>.<pid>"
	Comment   string
	ClockMode clock.Mode
	Blocks    bool // enable STMT_BLOCK + context walker (spec §4.D step 6)
	AllowFork bool
	UseDBSub  bool // accepted, not specially handled — see Open Question decisions
	// ModuleName is the profiler's own package name, so the context
	// walker can skip its own frames (spec §4.F).
	ModuleName string
	Verbosity  logging.Verbosity
}

// Profiler holds all per-pid state the statement hook, call hook, fork
// guard, and finalizer share. It is the single owner of the trace Writer.
type Profiler struct {
	cfg  Config
	host hostiface.Host
	clk  clock.Clock
	w    *trace.Writer
	log  *logrus.Entry

	pidFunc func() int

	isProfiling bool
	finished    bool

	lastPid int

	// lastExecutedFid doubles as the "have we taken a sample yet" flag
	// (spec §4.D step 3: "if last_executed_fid != 0"); 0 is never a valid
	// fid, so its zero value correctly means "no prior statement".
	lastExecutedFid  trace.Fid
	lastExecutedLine uint32
	lastBlockLine    uint32
	lastSubLine      uint32
	lastSampleTime   types.Ticks

	// subCallers[calleeName][callerFid][callerLine] = count (spec §4.E step 5).
	subCallers map[string]map[trace.Fid]map[uint32]uint64
}

// New constructs a Profiler, opens its trace file, and enables profiling.
func New(cfg Config, host hostiface.Host) (*Profiler, error) {
	if cfg.TracePath == "" {
		return nil, ErrNoTracePath
	}

	clk, err := clock.New(cfg.ClockMode)
	if err != nil {
		return nil, fmt.Errorf("profiler: clock: %w", err)
	}

	pid := os.Getpid()
	ppid := os.Getppid()

	attrs := []trace.Attr{
		trace.NewAttr("ticks_per_sec", fmt.Sprintf("%d", clk.TicksPerSec())),
	}
	if cfg.Blocks {
		attrs = append(attrs, trace.NewAttr("blocks", "1"))
	}

	w, err := trace.NewWriter(cfg.TracePath, cfg.Comment, attrs, pid, ppid)
	if err != nil {
		return nil, err
	}
	w.Fids().SetCWDResolver(host.CWD)

	p := &Profiler{
		cfg:         cfg,
		host:        host,
		clk:         clk,
		w:           w,
		log:         logging.New("profiler", cfg.Verbosity),
		pidFunc:     os.Getpid,
		isProfiling: true,
		lastPid:     pid,
		subCallers:  make(map[string]map[trace.Fid]map[uint32]uint64),
	}
	return p, nil
}

// EnableProfile turns sampling back on after DisableProfile.
func (p *Profiler) EnableProfile() { p.isProfiling = true }

// DisableProfile stops the statement hook: per spec §4.D step 2, a
// disabled hook returns immediately without updating any bookkeeping.
// The state from before the disable is kept, so the first statement after
// a re-enable emits a sample for the last statement seen before the
// disable, timed from that statement's sample start.
func (p *Profiler) DisableProfile() { p.isProfiling = false }
