package profiler

import (
	"fmt"

	"github.com/ja7ad/nytprof/internal/hostiface"
	"github.com/ja7ad/nytprof/pkg/logging"
	"github.com/ja7ad/nytprof/pkg/trace"
)

// OnCall is the call hook (spec §4.E): intercepts "enter subroutine"
// dispatch. It never writes to the trace directly — it only updates the
// in-memory sub-caller aggregate; the finalizer serializes it (§4.I).
//
// invoke runs the original op and returns the op the interpreter would
// dispatch to next, matching the host's actual call semantics.
func (p *Profiler) OnCall(callee hostiface.Callable, invoke func() hostiface.Op) {
	callerOp := p.host.CurrentOp()
	var callerFid trace.Fid
	var callerLine uint32
	if callerOp != nil {
		callerFid = p.w.Fids().Lookup(callerOp.File(), true)
		callerLine = uint32(callerOp.Line())
	}

	beforeNext := op2Next(callerOp)
	nextOp := invoke()

	name := p.resolveSubName(callee, callerFid)

	// Whether the callee was a non-native routine (interpreter entered its
	// body, so the dispatched-to op differs from what would have run next
	// had the call not recursed) or a native extension that ran to
	// completion within the op is observable only via this divergence; it
	// does not change how the call is recorded, only the diagnostic below
	// (spec §4.E step 3).
	if nextOp == beforeNext {
		logging.WithPidFid(p.log, p.lastPid, uint32(callerFid)).
			Debugf("call hook: %q ran as a native call (no interpreter re-entry)", name)
	}

	byFid, ok := p.subCallers[name]
	if !ok {
		byFid = make(map[trace.Fid]map[uint32]uint64)
		p.subCallers[name] = byFid
	}
	byLine, ok := byFid[callerFid]
	if !ok {
		byLine = make(map[uint32]uint64)
		byFid[callerFid] = byLine
	}
	byLine[callerLine]++
}

func op2Next(op hostiface.Op) hostiface.Op {
	if op == nil {
		return nil
	}
	return op.Next()
}

// resolveSubName implements the precedence chain of spec §4.E step 4.
// callerFid is only used to annotate the fallback warning with the call
// site that produced it.
func (p *Profiler) resolveSubName(c hostiface.Callable, callerFid trace.Fid) string {
	switch {
	case c.HasStash:
		return c.StashPackage + "::" + c.StashName
	case c.HasSymbol:
		return c.SymbolFullName
	case c.Anonymous:
		return "__ANON__"
	case c.HasString:
		return c.StringName
	default:
		logging.WithPidFid(p.log, p.lastPid, uint32(callerFid)).
			Warnf("call hook: unresolved sub callable, using synthetic name for %q", c.Repr)
		return fmt.Sprintf("(unknown sub %s)", c.Repr)
	}
}
