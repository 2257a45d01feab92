package profiler

import (
	"strconv"
	"strings"

	"github.com/ja7ad/nytprof/pkg/types"
)

// Finish is the finalizer (spec §4.I): invoked once per process at
// interpreter end, and once per child before that child's exit. It is
// idempotent per pid — a second call is a no-op error, never a double
// PID_END.
func (p *Profiler) Finish() error {
	if p.finished {
		return ErrAlreadyFinished
	}
	p.finished = true

	p.emitFinalSample()
	p.DisableProfile()
	p.emitSubRanges()
	p.emitSubCallers()

	pid := p.lastPid
	if err := p.w.WritePidEnd(pid); err != nil {
		p.log.WithError(err).Error("finalizer: PID_END write failed")
	}
	if err := p.w.Close(); err != nil {
		p.log.WithError(err).Error("finalizer: close failed")
		return err
	}
	return nil
}

// emitFinalSample generates one last statement sample so the final line
// executed is accounted for (spec §4.I step 1).
func (p *Profiler) emitFinalSample() {
	if p.lastExecutedFid == 0 {
		return
	}
	now := p.clk.Now()
	elapsed := types.DeltaTicks(now, p.lastSampleTime)
	if p.cfg.Blocks {
		_ = p.w.WriteStmtBlock(types.Ticks(elapsed), p.lastExecutedFid, p.lastExecutedLine, p.lastBlockLine, p.lastSubLine)
	} else {
		_ = p.w.WriteStmt(types.Ticks(elapsed), p.lastExecutedFid, p.lastExecutedLine)
	}
}

// emitSubRanges iterates the host's known-subroutines map; for each entry
// whose string value parses as "filename:first-last", it interns the
// file without creating a new fid, skipping entries whose file has no
// recorded samples (spec §4.I step 3).
func (p *Profiler) emitSubRanges() {
	for name, loc := range p.host.Subs() {
		file, first, last, ok := parseSubLocation(loc)
		if !ok {
			p.log.Warnf("finalizer: sub %q has unparsable location %q, skipping", name, loc)
			continue
		}
		fid := p.w.Fids().Lookup(file, false)
		if fid == 0 {
			continue
		}
		if err := p.w.WriteSubRange(fid, first, last, name); err != nil {
			p.log.WithError(err).Error("finalizer: SUB_RANGE write failed")
		}
	}
}

// emitSubCallers serializes the in-memory sub-caller aggregate built by
// the call hook (spec §4.I step 4).
func (p *Profiler) emitSubCallers() {
	for name, byFid := range p.subCallers {
		for fid, byLine := range byFid {
			for line, count := range byLine {
				if err := p.w.WriteSubCaller(fid, line, count, name); err != nil {
					p.log.WithError(err).Error("finalizer: SUB_CALLER write failed")
				}
			}
		}
	}
}

// parseSubLocation parses "<file>:<first>-<last>" (spec §4.I step 3). The
// file component may itself contain colons (Windows drive letters, eval
// synthetic names), so the split anchors on the last colon that precedes
// a "first-last" numeric pair.
func parseSubLocation(loc string) (file string, first, last uint32, ok bool) {
	i := strings.LastIndex(loc, ":")
	if i < 0 {
		return "", 0, 0, false
	}
	file = loc[:i]
	rangePart := loc[i+1:]

	dash := strings.LastIndex(rangePart, "-")
	if dash < 0 {
		return "", 0, 0, false
	}
	f, err1 := strconv.ParseUint(rangePart[:dash], 10, 32)
	l, err2 := strconv.ParseUint(rangePart[dash+1:], 10, 32)
	if err1 != nil || err2 != nil {
		return "", 0, 0, false
	}
	return file, uint32(f), uint32(l), true
}
