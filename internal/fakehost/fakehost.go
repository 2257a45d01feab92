// Package fakehost is a minimal stand-in interpreter implementing
// internal/hostiface, used to drive the statement/call hooks end to end
// in tests and in cmd/nytprofdemo without a real dynamic-language runtime.
package fakehost

import "github.com/ja7ad/nytprof/internal/hostiface"

// Op is a fakehost op: a node of a singly-linked sibling list, optionally
// with a zero Line to simulate an optimized-away statement.
type Op struct {
	file string
	line int
	next *Op
}

// NewOp creates a standalone op.
func NewOp(file string, line int) *Op { return &Op{file: file, line: line} }

// Chain links next after o and returns o, for building op sequences
// inline: NewOp("f", 1).Chain(NewOp("f", 2)).
func (o *Op) Chain(next *Op) *Op {
	o.next = next
	return o
}

func (o *Op) File() string { return o.file }
func (o *Op) Line() int    { return o.line }
func (o *Op) Next() hostiface.Op {
	if o.next == nil {
		return nil
	}
	return o.next
}

// Host is a fake interpreter: a mutable current-op pointer, a call-frame
// stack, a known-subroutines map, and a working directory.
type Host struct {
	Current *Op
	FrameStack []hostiface.Frame
	SubMap     map[string]string
	Wd         string
}

// NewHost returns an empty fake host.
func NewHost() *Host {
	return &Host{SubMap: make(map[string]string)}
}

func (h *Host) CurrentOp() hostiface.Op {
	if h.Current == nil {
		return nil
	}
	return h.Current
}

func (h *Host) Frames() []hostiface.Frame { return h.FrameStack }
func (h *Host) CWD() string               { return h.Wd }
func (h *Host) Subs() map[string]string   { return h.SubMap }

// PushFrame prepends a frame so index 0 is always innermost.
func (h *Host) PushFrame(f hostiface.Frame) {
	h.FrameStack = append([]hostiface.Frame{f}, h.FrameStack...)
}

// NamedCallable builds a Callable resolved via the stash+name path (the
// highest-precedence branch of spec §4.E step 4).
func NamedCallable(pkg, name string) hostiface.Callable {
	return hostiface.Callable{StashPackage: pkg, StashName: name, HasStash: true}
}

// AnonCallable builds an unnamed (closure) Callable.
func AnonCallable() hostiface.Callable {
	return hostiface.Callable{Anonymous: true}
}
