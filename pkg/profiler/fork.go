package profiler

import "fmt"

// forkGuard implements spec §4.G. The statement hook runs it immediately
// before each sample it emits: if the pid hasn't
// changed since the last check, it's a no-op; otherwise the child
// discards any buffered-but-unwritten bytes inherited from the parent
// (without flushing them — the parent already flushed its own view),
// opens a fresh "<base>.<pid>" trace file, and re-emits every cached fid.
func (p *Profiler) forkGuard() {
	pid := p.pidFunc()
	if pid == p.lastPid {
		return
	}

	if !p.cfg.AllowFork {
		p.log.Warnf("fork detected (pid %d -> %d) but allowfork is disabled; continuing to write to the parent's stream", p.lastPid, pid)
		p.lastPid = pid
		return
	}

	childPath := fmt.Sprintf("%s.%d", p.cfg.TracePath, pid)
	if err := p.w.Reopen(childPath, pid, p.lastPid); err != nil {
		p.log.WithError(err).Error("fork guard: reopen failed, profiling disabled for child")
		p.isProfiling = false
		p.lastPid = pid
		return
	}

	p.lastPid = pid
	// The statement hook captured the pending sample's fid and lines before
	// calling the guard, so the sample for the statement in flight at fork
	// time is still written, to the child's new stream.
	p.lastExecutedFid = 0
}
