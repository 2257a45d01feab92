package profiler

import (
	"github.com/ja7ad/nytprof/pkg/logging"
	"github.com/ja7ad/nytprof/pkg/types"
)

// OnStatement is the statement hook (spec §4.D): the handler all three of
// the host's "begin next source statement" dispatch variants route to.
// The invariant it maintains: between two statement dispatches, the
// elapsed time belongs to the *earlier* statement.
func (p *Profiler) OnStatement() {
	now := p.clk.Now()
	elapsed := types.DeltaTicks(now, p.lastSampleTime)

	if !p.isProfiling || p.w == nil {
		return
	}

	if p.lastExecutedFid != 0 {
		// Captured before the fork guard runs: a reopen clears
		// lastExecutedFid so the child's first sample starts fresh, but
		// this pending sample (for time already elapsed) must still be
		// written — to whichever stream is open once the guard returns,
		// per the literal ordering in spec §4.D step 3 / §4.G.
		prevFid, prevLine, prevBlockLine, prevSubLine := p.lastExecutedFid, p.lastExecutedLine, p.lastBlockLine, p.lastSubLine

		p.forkGuard()

		if p.cfg.Blocks {
			_ = p.w.WriteStmtBlock(types.Ticks(elapsed), prevFid, prevLine, prevBlockLine, prevSubLine)
		} else {
			_ = p.w.WriteStmt(types.Ticks(elapsed), prevFid, prevLine)
		}
	}

	file, line := p.currentStatementLocation()

	p.lastExecutedFid = p.w.Fids().Lookup(file, true)
	p.lastExecutedLine = line

	if p.cfg.Blocks {
		blockLine, subLine, ok := p.contextWalker(file, line)
		if !ok {
			blockLine, subLine = line, line
		}
		p.lastBlockLine = blockLine
		p.lastSubLine = subLine
	}

	// The second clock read is deliberately taken after all hook work
	// above, so the hook's own overhead is charged to itself rather than
	// to the user statement it just recorded (spec §4.D edge case 1).
	p.lastSampleTime = p.clk.Now()
}

// currentStatementLocation resolves (file, line) from the host's
// current-op pointer. If the op has been optimized away (line == 0), it
// walks the op's sibling subtree for the closest reachable op with a
// non-zero line; failing that, it warns and falls back to line 1 (spec
// §4.D step 4).
func (p *Profiler) currentStatementLocation() (string, uint32) {
	op := p.host.CurrentOp()
	if op == nil {
		return "", 1
	}
	if op.Line() != 0 {
		return op.File(), uint32(op.Line())
	}

	for next := op.Next(); next != nil; next = next.Next() {
		if next.Line() != 0 {
			return next.File(), uint32(next.Line())
		}
	}

	logging.WithPidFid(p.log, p.lastPid, uint32(p.lastExecutedFid)).
		Warn("statement hook: optimized-away op has no reachable non-zero line, defaulting to line 1")
	return op.File(), 1
}
