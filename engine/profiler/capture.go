// Package profiler captures pprof profiles and, in builds tagged "profile",
// aggregates timings of named scopes.
package profiler

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/pkg/profile"
)

// Mode selects what Capture records.
type Mode string

const (
	ModeCPU   Mode = "cpu"
	ModeMem   Mode = "mem"
	ModeTrace Mode = "trace"
	ModeBlock Mode = "block"
	ModeMutex Mode = "mutex"
)

var ErrUnknownMode = errors.New("profiler: unknown mode")

// ParseMode accepts the mode names case-insensitively. The empty string
// parses to the empty Mode, meaning no capture.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case "", ModeCPU, ModeMem, ModeTrace, ModeBlock, ModeMutex:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Stopper ends a capture and flushes it to disk.
type Stopper interface{ Stop() }

type nopStopper struct{}

func (nopStopper) Stop() {}

// Capture starts a pprof capture written under dir. The empty Mode returns a
// Stopper that does nothing.
func Capture(mode Mode, dir string) (Stopper, error) {
	var opt func(*profile.Profile)
	switch mode {
	case "":
		return nopStopper{}, nil
	case ModeCPU:
		opt = profile.CPUProfile
	case ModeMem:
		opt = profile.MemProfile
	case ModeTrace:
		opt = profile.TraceProfile
	case ModeBlock:
		opt = profile.BlockProfile
	case ModeMutex:
		opt = profile.MutexProfile
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, string(mode))
	}
	return profile.Start(opt, profile.ProfilePath(dir), profile.NoShutdownHook, profile.Quiet), nil
}

func MemoryUsage() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc
}

func MemoryAllocs() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Mallocs
}

func NumGoroutine() int { return runtime.NumGoroutine() }
