package profiler

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", "", false},
		{"cpu", ModeCPU, false},
		{" MEM ", ModeMem, false},
		{"trace", ModeTrace, false},
		{"heap", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseMode(%q) err = %v", tt.in, err)
		}
		if err != nil && !errors.Is(err, ErrUnknownMode) {
			t.Fatalf("ParseMode(%q) err = %v, want ErrUnknownMode", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCapture_MemWritesProfile(t *testing.T) {
	dir := t.TempDir()
	stop, err := Capture(ModeMem, dir)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	stop.Stop()
	if _, err := os.Stat(filepath.Join(dir, "mem.pprof")); err != nil {
		t.Fatalf("profile not written: %v", err)
	}
}

func TestCapture_EmptyModeIsNoop(t *testing.T) {
	stop, err := Capture("", t.TempDir())
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	stop.Stop()
	if _, err := Capture("bogus", t.TempDir()); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("err = %v, want ErrUnknownMode", err)
	}
}

func TestScopeStats_Mean(t *testing.T) {
	s := ScopeStats{Name: "x", Count: 4, Total: 8 * time.Millisecond, Max: 3 * time.Millisecond}
	if s.Mean() != 2*time.Millisecond {
		t.Fatalf("Mean = %v", s.Mean())
	}
	if (ScopeStats{}).Mean() != 0 {
		t.Fatalf("empty mean must be 0")
	}
}

func TestStart_Scopes(t *testing.T) {
	Reset()
	for i := 0; i < 3; i++ {
		Start("outer")()
	}
	snap := Snapshot()
	if !Enabled {
		if snap != nil {
			t.Fatalf("disabled profiler returned %v", snap)
		}
		return
	}
	if len(snap) != 1 || snap[0].Name != "outer" || snap[0].Count != 3 {
		t.Fatalf("Snapshot = %v", snap)
	}
}
