package profiler

import "github.com/ja7ad/nytprof/internal/hostiface"

// contextWalker recovers last_block_line and last_sub_line for the
// current statement by scanning the host's call-frame stack from
// innermost to outermost (spec §4.F). It returns ok == false when neither
// a sub frame nor a block-like frame was found, in which case the caller
// defaults both to the current statement's own line.
//
// Known limitation (reproduced, not fixed — see design notes): a loop
// frame whose "redo" target sits in the loop's condition rather than its
// body can attribute the block's starting line to the condition
// statement instead of the body's first statement.
func (p *Profiler) contextWalker(currentFile string, currentLine uint32) (blockLine, subLine uint32, ok bool) {
	var haveSub, haveBlock bool

	for _, frame := range p.host.Frames() {
		if frame.Package == p.cfg.ModuleName {
			continue
		}

		line, file, found := startLine(frame.StartOp)
		if !found {
			continue
		}
		if file != currentFile {
			// Approximate with the executing line rather than aborting
			// outright: the frame is real, just not locatable in this
			// file (typically a string eval boundary).
			line = currentLine
		}

		switch frame.Kind {
		case hostiface.FrameSub, hostiface.FrameFormat:
			if !haveSub {
				subLine = line
				haveSub = true
			}
		default: // FrameLoop, FrameEval, FrameBlock
			if !haveBlock {
				blockLine = line
				haveBlock = true
			}
		}

		if haveSub && haveBlock {
			break
		}
	}

	switch {
	case haveSub && haveBlock:
		return blockLine, subLine, true
	case haveSub:
		return subLine, subLine, true
	case haveBlock:
		return blockLine, 0, true
	default:
		return 0, 0, false
	}
}

// startLine scans forward from op (inclusive) for the first op with a
// non-zero line, returning its line and file.
func startLine(op hostiface.Op) (line uint32, file string, found bool) {
	for o := op; o != nil; o = o.Next() {
		if o.Line() != 0 {
			return uint32(o.Line()), o.File(), true
		}
	}
	return 0, "", false
}
