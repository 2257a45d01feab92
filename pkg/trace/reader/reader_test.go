package reader

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ja7ad/nytprof/pkg/trace"
	"github.com/ja7ad/nytprof/pkg/types"
)

func openFile(t *testing.T, path string) *os.File {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	return f
}

func buildTrace(t *testing.T, path string, build func(w *trace.Writer)) {
	t.Helper()
	w, err := trace.NewWriter(path, "", []trace.Attr{trace.NewAttr("ticks_per_sec", "1000000")}, 1, 0)
	require.NoError(t, err)
	build(w)
	require.NoError(t, w.WritePidEnd(1))
	require.NoError(t, w.Close())
}

// S1 — single-file straight-line program.
func TestDecode_StraightLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nytprof.out")

	buildTrace(t, path, func(w *trace.Writer) {
		fid := w.Fids().Lookup("t1.src", true)
		require.NoError(t, w.WriteStmt(types.Ticks(10), fid, 1))
		require.NoError(t, w.WriteStmt(types.Ticks(10), fid, 2))
		require.NoError(t, w.WriteStmt(types.Ticks(10), fid, 3))
		require.NoError(t, w.WriteStmt(types.Ticks(10), fid, 4))
	})

	f := openFile(t, path)
	defer f.Close()

	p, err := Decode(f)
	require.NoError(t, err)

	require.Len(t, p.FidInfo, 1)
	lines := p.FidLineTime[1]
	require.Len(t, lines, 4)
	for _, ln := range []uint32{1, 2, 3, 4} {
		require.InDelta(t, 1e-5, lines[ln].Time, 1e-9)
		require.EqualValues(t, 1, lines[ln].Count)
	}
}

// S3 — string eval nesting.
func TestDecode_EvalNesting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nytprof.out")

	buildTrace(t, path, func(w *trace.Writer) {
		outer := w.Fids().Lookup("t2outer.src", true)
		inner := w.Fids().Lookup("(eval 1)[t2outer.src:5]", true)

		require.NoError(t, w.WriteStmt(types.Ticks(20), outer, 5)) // the eval-triggering line
		require.NoError(t, w.WriteStmt(types.Ticks(5), inner, 1))  // one line inside the eval
	})

	f := openFile(t, path)
	defer f.Close()

	p, err := Decode(f)
	require.NoError(t, err)

	entry := p.FidLineTime[1][5]
	require.NotNil(t, entry)
	require.InDelta(t, 20e-6, entry.Time, 1e-9) // outer excludes inner
	require.EqualValues(t, 1, entry.Count)

	require.NotNil(t, entry.Evals)
	inner := entry.Evals[1]
	require.NotNil(t, inner)
	require.InDelta(t, 5e-6, inner.Time, 1e-9)
	require.EqualValues(t, 1, inner.Count)
}

// S5 — caller aggregation.
func TestDecode_SubCallerAggregation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nytprof.out")

	buildTrace(t, path, func(w *trace.Writer) {
		fid := w.Fids().Lookup("t5.src", true)
		require.NoError(t, w.WriteSubRange(fid, 10, 12, "main::foo"))
		require.NoError(t, w.WriteSubRange(fid, 20, 22, "main::bar"))
		require.NoError(t, w.WriteSubCaller(fid, 21, 3, "main::foo"))
		require.NoError(t, w.WriteSubCaller(fid, 22, 1, "main::foo"))
	})

	f := openFile(t, path)
	defer f.Close()

	p, err := Decode(f)
	require.NoError(t, err)

	require.Equal(t, SubRange{Fid: 1, First: 10, Last: 12}, p.SubFidLine["main::foo"])
	require.Equal(t, SubRange{Fid: 1, First: 20, Last: 22}, p.SubFidLine["main::bar"])
	require.EqualValues(t, 3, p.SubCaller["main::foo"][1][21])
	require.EqualValues(t, 1, p.SubCaller["main::foo"][1][22])
}

// S6 — truncation: a trace with a PID_BEGIN but no matching PID_END yields
// a warning, not an error.
func TestDecode_TruncatedStream_Warns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nytprof.out")

	w, err := trace.NewWriter(path, "", []trace.Attr{trace.NewAttr("ticks_per_sec", "1000000")}, 1, 0)
	require.NoError(t, err)
	fid := w.Fids().Lookup("t6.src", true)
	require.NoError(t, w.WriteStmt(types.Ticks(10), fid, 1))
	require.NoError(t, w.Flush())
	require.NoError(t, w.Close()) // no WritePidEnd — simulates a kill

	f := openFile(t, path)
	defer f.Close()

	p, err := Decode(f)
	require.NoError(t, err)
	require.Len(t, p.LivePids, 1)
	require.NotEmpty(t, p.Warnings)
}

func TestDecode_UnknownTagIsFatal(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("NYTProf 5 1\n")
	buf.WriteByte('Z')

	_, err := Decode(&buf)
	require.Error(t, err)
}

func TestDecode_BadHeaderIsFatal(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("not a trace\n")
	_, err := Decode(&buf)
	require.Error(t, err)
}

// Idempotence: decoding a trace twice yields equal profile models.
func TestDecode_Idempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nytprof.out")

	buildTrace(t, path, func(w *trace.Writer) {
		fid := w.Fids().Lookup("t7.src", true)
		require.NoError(t, w.WriteStmt(types.Ticks(10), fid, 1))
	})

	f1 := openFile(t, path)
	p1, err := Decode(f1)
	require.NoError(t, err)
	f1.Close()

	f2 := openFile(t, path)
	p2, err := Decode(f2)
	require.NoError(t, err)
	f2.Close()

	require.Equal(t, p1.FidLineTime[1][1].Count, p2.FidLineTime[1][1].Count)
	require.InDelta(t, p1.FidLineTime[1][1].Time, p2.FidLineTime[1][1].Time, 1e-12)
}
