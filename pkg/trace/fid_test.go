package trace

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFidTable_InternAssignsDenseIDs(t *testing.T) {
	var decls []*FidInfo
	ft := NewFidTable(func(fi *FidInfo) { decls = append(decls, fi) })

	f1 := ft.Lookup("a.pl", true)
	f2 := ft.Lookup("b.pl", true)
	f3 := ft.Lookup("a.pl", true) // re-lookup, no new decl

	require.Equal(t, Fid(1), f1)
	require.Equal(t, Fid(2), f2)
	require.Equal(t, Fid(1), f3)
	require.Len(t, decls, 2)
}

func TestFidTable_LookupNoCreate(t *testing.T) {
	ft := NewFidTable(nil)
	require.Equal(t, Fid(0), ft.Lookup("unseen.pl", false))
	require.Zero(t, ft.Len())

	fid := ft.Lookup("unseen.pl", true)
	require.Equal(t, Fid(1), fid)
	require.Equal(t, fid, ft.Lookup("unseen.pl", false))
}

func TestFidTable_AbsoluteKeyComputedFromCwd(t *testing.T) {
	ft := NewFidTable(nil)
	fid := ft.Lookup("t1.src", true)
	info := ft.Get(fid)
	require.True(t, filepath.IsAbs(info.AbsKey))
}

func TestFidTable_AbsoluteKeyUsesInstalledCWDResolver(t *testing.T) {
	ft := NewFidTable(nil)
	ft.SetCWDResolver(func() string { return "/sandbox/root" })

	fid := ft.Lookup("rel/t3.src", true)
	info := ft.Get(fid)
	require.Equal(t, filepath.Join("/sandbox/root", "rel/t3.src"), info.AbsKey)
}

func TestFidTable_EvalSynthetic(t *testing.T) {
	ft := NewFidTable(nil)
	outer := ft.Lookup("t2.src", true)
	inner := ft.Lookup("(eval 1)[t2.src:5]", true)

	info := ft.Get(inner)
	require.NotNil(t, info)
	require.Equal(t, outer, info.EvalFid)
	require.EqualValues(t, 5, info.EvalLine)
	require.NotZero(t, info.Flags&FlagEval)
}

func TestFidTable_AutosplitAnnotationStripped(t *testing.T) {
	ft := NewFidTable(nil)
	f1 := ft.Lookup("Foo.pm (autosplit into Foo/bar.al)", true)
	f2 := ft.Lookup("Foo.pm", true)
	require.Equal(t, f1, f2)
	require.Equal(t, 1, ft.Len())
}

func TestFidTable_InsertionOrderPreserved(t *testing.T) {
	ft := NewFidTable(nil)
	ft.Lookup("c.pl", true)
	ft.Lookup("a.pl", true)
	ft.Lookup("b.pl", true)

	all := ft.All()
	require.Len(t, all, 3)
	require.Equal(t, "c.pl", all[0].Key)
	require.Equal(t, "a.pl", all[1].Key)
	require.Equal(t, "b.pl", all[2].Key)
}
