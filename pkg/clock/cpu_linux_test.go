//go:build linux

package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCPUClock_TicksPerSecEnvOverride(t *testing.T) {
	t.Setenv("CLK_TCK", "")
	c, err := NewCPUClock()
	require.NoError(t, err)
	assert.Greater(t, c.TicksPerSec(), uint64(0))

	t.Setenv("CLK_TCK", "250")
	c2, err := NewCPUClock()
	require.NoError(t, err)
	assert.EqualValues(t, 250, c2.TicksPerSec())
}

func TestCPUClock_NonDecreasing(t *testing.T) {
	c, err := New(CPU)
	require.NoError(t, err)
	require.Equal(t, CPU, c.Mode())

	t0 := c.Now()
	// Burn some CPU so utime/stime have a chance to advance; jiffies are
	// coarse so this isn't guaranteed to move, only never to regress.
	deadline := time.Now().Add(20 * time.Millisecond)
	for time.Now().Before(deadline) {
	}
	t1 := c.Now()
	assert.GreaterOrEqual(t, uint64(t1), uint64(t0))
}

func TestReadProcSelfStat(t *testing.T) {
	utime, stime, err := readProcSelfStat()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, utime, uint64(0))
	assert.GreaterOrEqual(t, stime, uint64(0))
}
