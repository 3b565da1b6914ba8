package profiler

import (
	"fmt"
	"time"
)

// ScopeStats aggregates every completed run of one named scope.
type ScopeStats struct {
	Name  string
	Count int
	Total time.Duration
	Max   time.Duration
}

func (s ScopeStats) Mean() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

func (s ScopeStats) String() string {
	return fmt.Sprintf("%s: n=%d mean=%v max=%v", s.Name, s.Count, s.Mean(), s.Max)
}
