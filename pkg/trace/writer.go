package trace

import (
	"bufio"
	"fmt"
	"os"

	"github.com/ja7ad/nytprof/pkg/types"
)

// Attr keeps header attributes in insertion order; a map would lose that
// order across a fork re-emission.
type Attr struct{ name, value string }

// Writer is a thin buffered layer over an append-only trace file. It owns
// the file handle for the current pid (see Reopen for fork handling) and
// the FidTable, so that interning a new fid immediately emits its FID_DECL
// record, per spec.
type Writer struct {
	f      *os.File
	bw     *bufio.Writer
	fids   *FidTable
	closed bool

	comment string
	attrs   []Attr
	pid     int
	ppid    int
}

// NewWriter creates (or truncates) the trace file at path and writes the
// textual header: magic line, comment line, attribute lines, then the
// binary PID_BEGIN record.
func NewWriter(path, comment string, attrs []Attr, pid, ppid int) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("trace: create %s: %w", path, err)
	}

	w := &Writer{
		f:       f,
		bw:      bufio.NewWriter(f),
		comment: comment,
		attrs:   attrs,
		pid:     pid,
		ppid:    ppid,
	}
	w.fids = NewFidTable(w.writeFidDecl)

	if err := w.writeHeader(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}

// Fids returns the fid table backing this writer.
func (w *Writer) Fids() *FidTable { return w.fids }

func (w *Writer) writeHeader() error {
	if _, err := fmt.Fprintf(w.bw, "%s %d %d\n", HeaderMagic, HeaderMajor, HeaderMinor); err != nil {
		return err
	}
	if w.comment != "" {
		if _, err := fmt.Fprintf(w.bw, "# %s\n", w.comment); err != nil {
			return err
		}
	}
	for _, kv := range w.attrs {
		if _, err := fmt.Fprintf(w.bw, ":%s=%s\n", kv.name, kv.value); err != nil {
			return err
		}
	}
	return w.writePidBegin(w.pid, w.ppid)
}

func (w *Writer) writeTag(tag Tag) error {
	return w.bw.WriteByte(byte(tag))
}

func (w *Writer) writeVarint(v uint32) error {
	_, err := w.bw.Write(EncodeVarint(nil, v))
	return err
}

func (w *Writer) writeString(s string) error {
	if _, err := w.bw.WriteString(s); err != nil {
		return err
	}
	return w.bw.WriteByte('\n')
}

func (w *Writer) writePidBegin(pid, ppid int) error {
	if err := w.writeTag(TagPidBegin); err != nil {
		return err
	}
	if err := w.writeVarint(uint32(pid)); err != nil {
		return err
	}
	return w.writeVarint(uint32(ppid))
}

func (w *Writer) writeFidDecl(info *FidInfo) {
	if w.closed {
		return
	}
	_ = w.writeTag(TagFidDecl)
	_ = w.writeVarint(uint32(info.Fid))
	_ = w.writeVarint(uint32(info.EvalFid))
	_ = w.writeVarint(info.EvalLine)
	_ = w.writeString(info.Key)
}

// WriteStmt emits a STMT record: elapsed, fid, line.
func (w *Writer) WriteStmt(elapsed types.Ticks, fid Fid, line uint32) error {
	if w.closed {
		return ErrWriterClosed
	}
	if err := w.writeTag(TagStmt); err != nil {
		return err
	}
	if err := w.writeVarint(uint32(elapsed)); err != nil {
		return err
	}
	if err := w.writeVarint(uint32(fid)); err != nil {
		return err
	}
	return w.writeVarint(line)
}

// WriteStmtBlock emits a STMT_BLOCK record: elapsed, fid, line, block_line, sub_line.
func (w *Writer) WriteStmtBlock(elapsed types.Ticks, fid Fid, line, blockLine, subLine uint32) error {
	if w.closed {
		return ErrWriterClosed
	}
	if err := w.writeTag(TagStmtBlock); err != nil {
		return err
	}
	for _, v := range []uint32{uint32(elapsed), uint32(fid), line, blockLine, subLine} {
		if err := w.writeVarint(v); err != nil {
			return err
		}
	}
	return nil
}

// WriteSubRange emits an 's' record for a subroutine definition.
func (w *Writer) WriteSubRange(fid Fid, first, last uint32, name string) error {
	if w.closed {
		return ErrWriterClosed
	}
	if err := w.writeTag(TagSubRange); err != nil {
		return err
	}
	if err := w.writeVarint(uint32(fid)); err != nil {
		return err
	}
	if err := w.writeVarint(first); err != nil {
		return err
	}
	if err := w.writeVarint(last); err != nil {
		return err
	}
	return w.writeString(name)
}

// WriteSubCaller emits a 'c' record for a sub-caller aggregate entry.
func (w *Writer) WriteSubCaller(callerFid Fid, callerLine uint32, count uint64, name string) error {
	if w.closed {
		return ErrWriterClosed
	}
	if err := w.writeTag(TagSubCaller); err != nil {
		return err
	}
	if err := w.writeVarint(uint32(callerFid)); err != nil {
		return err
	}
	if err := w.writeVarint(callerLine); err != nil {
		return err
	}
	if err := w.writeVarint(uint32(count)); err != nil {
		return err
	}
	return w.writeString(name)
}

// Flush flushes the buffered writer to the underlying file.
func (w *Writer) Flush() error { return w.bw.Flush() }

// WritePidEnd emits the 'p' record for pid and flushes, per spec ("followed
// by flush").
func (w *Writer) WritePidEnd(pid int) error {
	if w.closed {
		return ErrWriterClosed
	}
	if err := w.writeTag(TagPidEnd); err != nil {
		return err
	}
	if err := w.writeVarint(uint32(pid)); err != nil {
		return err
	}
	return w.bw.Flush()
}

// Close flushes and closes the underlying file. It does not write PID_END;
// callers (the finalizer) are responsible for that ordering.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.bw.Flush(); err != nil {
		_ = w.f.Close()
		return err
	}
	return w.f.Close()
}

// Reopen implements the fork-guard protocol (spec §4.G): any buffered but
// unwritten bytes inherited from the parent's in-process buffer are
// discarded WITHOUT flushing (the parent already flushed its own view), a
// fresh file is opened at path, and the full header — including a
// re-emission of every previously cached fid, in insertion order — is
// written to it.
func (w *Writer) Reopen(path string, pid, ppid int) error {
	// Drop the parent's buffered bytes unflushed; replace the file handle.
	_ = w.f.Close()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("trace: reopen %s: %w", path, err)
	}
	w.f = f
	w.bw = bufio.NewWriter(f)
	w.closed = false
	w.pid, w.ppid = pid, ppid

	if err := w.writeHeader(); err != nil {
		return err
	}
	for _, info := range w.fids.All() {
		w.writeFidDecl(info)
	}
	return nil
}

// NewAttr is a convenience constructor for header attribute pairs.
func NewAttr(name, value string) Attr { return Attr{name: name, value: value} }
