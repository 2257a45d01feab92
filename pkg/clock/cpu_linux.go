//go:build linux

package clock

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/ja7ad/nytprof/pkg/types"
)

// clockTicksPerSec returns the kernel's jiffies-per-second rate. It checks
// the CLK_TCK env var first (useful for hermetic tests), otherwise falls
// back to 100, the common default on Linux; calling sysconf(_SC_CLK_TCK)
// directly would require cgo.
func clockTicksPerSec() uint64 {
	if v, _ := strconv.Atoi(os.Getenv("CLK_TCK")); v > 0 {
		return uint64(v)
	}
	return 100
}

// cpuClock reports this process's own user+system CPU time in jiffies.
// unix.Times is tried first since it's a single syscall; readProcSelfStat
// is the fallback for platforms where Times is unavailable in a container
// sandbox.
type cpuClock struct {
	ticksPerSec uint64
}

// NewCPUClock returns a Clock reporting user+system CPU jiffies for the
// current process (spec §4.C CPU-time mode).
func NewCPUClock() (Clock, error) {
	return &cpuClock{ticksPerSec: clockTicksPerSec()}, nil
}

func (c *cpuClock) Now() types.Ticks {
	var tms unix.Tms
	if _, err := unix.Times(&tms); err == nil {
		return types.Ticks(uint64(tms.Utime) + uint64(tms.Stime))
	}
	if utime, stime, err := readProcSelfStat(); err == nil {
		return types.Ticks(utime + stime)
	}
	return 0
}

func (c *cpuClock) TicksPerSec() uint64 { return c.ticksPerSec }
func (c *cpuClock) Mode() Mode          { return CPU }

// readProcSelfStat parses /proc/self/stat and extracts utime/stime, the
// same two fields ReadProcStat in the consumption collector reads for the
// target process; here it's always read for the current process.
func readProcSelfStat() (utime, stime uint64, err error) {
	f, e := os.Open("/proc/self/stat")
	if e != nil {
		return 0, 0, e
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return 0, 0, fmt.Errorf("clock: %w", ErrNoStat)
	}
	line := sc.Text()

	// Everything before ") " is pid + comm; after that are numeric fields.
	i := strings.LastIndex(line, ") ")
	if i < 0 {
		return 0, 0, fmt.Errorf("clock: %w", ErrNoStat)
	}
	fields := strings.Fields(line[i+2:])

	get := func(idx int) (uint64, error) {
		if idx >= len(fields) {
			return 0, fmt.Errorf("clock: %w", ErrShortStat)
		}
		return strconv.ParseUint(fields[idx], 10, 64)
	}

	// utime is the 14th whitespace field overall => fields[11] here;
	// stime is the 15th => fields[12].
	utime, err = get(11)
	if err != nil {
		return 0, 0, err
	}
	stime, err = get(12)
	return utime, stime, err
}
