// Package hostiface is the contract a dynamic-language interpreter
// implements to be profiled: a current-op cursor, an op tree the context
// walker can scan, a call-frame stack, and enough of its callable/symbol
// table to resolve a fully-qualified sub name at call time. A real host
// wires its own op/frame representation to these interfaces; internal/fakehost
// is a minimal stand-in used by this repository's own tests and demo.
package hostiface

// FrameKind distinguishes the call-frame shapes the context walker (spec
// §4.F) must recognize when looking for an enclosing sub or block.
type FrameKind int

const (
	FrameSub FrameKind = iota
	FrameFormat
	FrameLoop
	FrameEval
	FrameBlock
)

// Op is one node of the host's op tree: the unit the statement/call hooks
// observe and the context walker scans forward through.
type Op interface {
	// File is the source file this op belongs to (host-resolved path or
	// eval-synthetic name, e.g. "(eval 3)").
	File() string
	// Line is the source line this op starts, or 0 if the optimizer folded
	// it away (spec §4.D step 4).
	Line() int
	// Next is the op the interpreter would execute after this one, or nil
	// at the end of a sequence. Used both to walk forward for a non-zero
	// line (§4.D) and to detect whether a call entered the callee's body
	// (§4.E step 3).
	Next() Op
}

// Frame is one entry of the host's call-frame stack, innermost first.
type Frame struct {
	Kind FrameKind
	// Package is the frame's owning namespace; frames whose Package matches
	// the profiler's own registered module name are skipped by the walker
	// (spec §4.F: "skipping any frame belonging to the profiler's own
	// module").
	Package string
	// StartOp is the scope's entry op: a sub/format's first op, a loop's
	// redo target, or an eval/block's old-cop pointer (spec §4.F).
	StartOp Op
}

// Callable is what a call hook's invoked argument exposes for sub-name
// resolution (spec §4.E step 4).
type Callable struct {
	// StashPackage/StashName are the callee's defining package and short
	// name, when statically known (highest-precedence resolution path).
	StashPackage string
	StashName    string
	HasStash     bool

	// SymbolFullName is the argument's symbol-table entry's effective full
	// name, used when the stash pair is unavailable.
	SymbolFullName string
	HasSymbol      bool

	// Anonymous marks an unnamed callable (closure/coderef literal).
	Anonymous bool

	// StringName is set when the call argument was itself a string (a
	// symbolic sub call by name).
	StringName string
	HasString  bool

	// Repr is a human-readable fallback used only when none of the above
	// resolved, to build the "(unknown sub <repr>)" synthetic name.
	Repr string
}

// Host is the live interpreter state the profiler hooks read each call.
type Host interface {
	// CurrentOp is the op about to execute (statement hook reads this to
	// find the next statement's file/line).
	CurrentOp() Op
	// Frames returns the call-frame stack, innermost first.
	Frames() []Frame
	// CWD is the interpreter's working directory at the moment it's asked,
	// used to resolve relative source paths to absolute on first sight
	// (spec §4.B).
	CWD() string
	// Subs returns the host's known-subroutines map: fully-qualified sub
	// name to a "<file>:<first>-<last>" location string, as read by the
	// finalizer (spec §4.I step 3).
	Subs() map[string]string
}
