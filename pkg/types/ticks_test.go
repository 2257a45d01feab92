package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTicks_Seconds(t *testing.T) {
	cases := []struct {
		ticks       Ticks
		ticksPerSec uint64
		want        float64
	}{
		{Ticks(1_000_000), 1_000_000, 1.0},
		{Ticks(500_000), 1_000_000, 0.5},
		{Ticks(100), 100, 1.0},
		{Ticks(0), 1_000_000, 0.0},
		{Ticks(12345), 0, 0.0}, // guards against division by zero
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, tc.ticks.Seconds(tc.ticksPerSec), 1e-9)
	}
}

func TestTicks_Uint64(t *testing.T) {
	assert.Equal(t, uint64(42), Ticks(42).Uint64())
}
