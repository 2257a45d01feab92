package profiler

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ja7ad/nytprof/internal/fakehost"
	"github.com/ja7ad/nytprof/internal/hostiface"
	"github.com/ja7ad/nytprof/pkg/trace/reader"
)

// S5 — caller aggregation, driven through the call hook and the
// finalizer rather than constructed directly against the writer.
func TestOnCall_AggregatesAndFinalizerEmits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nytprof.out")

	host := fakehost.NewHost()
	host.SubMap["main::foo"] = "t5.src:10-12"
	p := newTestProfiler(t, path, host)

	// Prime a fid for t5.src by taking one statement sample, so the
	// finalizer's no-autoviv Lookup(createNew=false) finds it.
	host.Current = fakehost.NewOp("t5.src", 20)
	p.OnStatement()

	host.Current = fakehost.NewOp("t5.src", 21)
	p.OnCall(fakehost.NamedCallable("main", "foo"), func() hostiface.Op { return nil })
	host.Current = fakehost.NewOp("t5.src", 21)
	p.OnCall(fakehost.NamedCallable("main", "foo"), func() hostiface.Op { return nil })
	host.Current = fakehost.NewOp("t5.src", 22)
	p.OnCall(fakehost.NamedCallable("main", "foo"), func() hostiface.Op { return nil })

	require.NoError(t, p.Finish())

	f := mustOpen(t, path)
	defer f.Close()
	prof, err := reader.Decode(f)
	require.NoError(t, err)

	require.Equal(t, reader.SubRange{Fid: 1, First: 10, Last: 12}, prof.SubFidLine["main::foo"])
	require.EqualValues(t, 2, prof.SubCaller["main::foo"][1][21])
	require.EqualValues(t, 1, prof.SubCaller["main::foo"][1][22])
}

// Sub-name resolution precedence (spec §4.E step 4): stash+name beats
// symbol table beats anonymous beats string beats the synthetic fallback.
func TestResolveSubName_Precedence(t *testing.T) {
	host := fakehost.NewHost()
	p := newTestProfiler(t, filepath.Join(t.TempDir(), "nytprof.out"), host)

	require.Equal(t, "main::foo", p.resolveSubName(hostiface.Callable{
		HasStash: true, StashPackage: "main", StashName: "foo",
		HasSymbol: true, SymbolFullName: "Other::bar",
	}, 0))
	require.Equal(t, "Other::bar", p.resolveSubName(hostiface.Callable{
		HasSymbol: true, SymbolFullName: "Other::bar", Anonymous: true,
	}, 0))
	require.Equal(t, "__ANON__", p.resolveSubName(hostiface.Callable{Anonymous: true, HasString: true, StringName: "ignored"}, 0))
	require.Equal(t, "literal::name", p.resolveSubName(hostiface.Callable{HasString: true, StringName: "literal::name"}, 0))
	require.Contains(t, p.resolveSubName(hostiface.Callable{Repr: "0xdeadbeef"}, 0), "unknown sub")
}
