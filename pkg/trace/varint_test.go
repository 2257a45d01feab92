package trace

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVarint_RoundTrip(t *testing.T) {
	values := []uint32{
		0, 1, 127, 128, 16383, 16384,
		2097151, 2097152, 268435455, 268435456,
		4294967295,
	}
	for _, v := range values {
		buf := EncodeVarint(nil, v)
		got, err := DecodeVarint(bufio.NewReader(bytes.NewReader(buf)))
		require.NoError(t, err)
		require.Equal(t, v, got, "round trip for %d", v)
	}
}

func TestVarint_Width(t *testing.T) {
	cases := []struct {
		v     uint32
		width int
	}{
		{0, 1}, {0x7F, 1},
		{0x80, 2}, {0x3FFF, 2},
		{0x4000, 3}, {0x1FFFFF, 3},
		{0x200000, 4}, {0x0FFFFFFF, 4},
		{0x10000000, 5}, {0xFFFFFFFF, 5},
	}
	for _, tc := range cases {
		got := EncodeVarint(nil, tc.v)
		require.Lenf(t, got, tc.width, "value %d", tc.v)
	}
}

func TestVarint_SequenceDecode(t *testing.T) {
	seq := []uint32{0, 127, 128, 16383, 16384, 268435455, 4294967295}
	var buf []byte
	for _, v := range seq {
		buf = EncodeVarint(buf, v)
	}
	r := bufio.NewReader(bytes.NewReader(buf))
	for _, want := range seq {
		got, err := DecodeVarint(r)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestVarint_TruncatedIsFatal(t *testing.T) {
	// A 2-byte encoding with the second byte missing.
	buf := []byte{0x80 | byte(16383>>8)}
	r := bufio.NewReader(bytes.NewReader(buf))
	_, err := DecodeVarint(r)
	require.ErrorIs(t, err, ErrShortVarint)
}
