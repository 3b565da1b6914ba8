//go:build profile

package profiler

import (
	"sort"
	"sync"
	"time"
)

var (
	mu     sync.Mutex
	scopes = map[string]*ScopeStats{}
)

// Start begins a scope and returns the func that ends it.
//
//	defer profiler.Start("browser.Update")()
func Start(name string) func() {
	begin := time.Now()
	return func() {
		d := time.Since(begin)
		mu.Lock()
		s, ok := scopes[name]
		if !ok {
			s = &ScopeStats{Name: name}
			scopes[name] = s
		}
		s.Count++
		s.Total += d
		if d > s.Max {
			s.Max = d
		}
		mu.Unlock()
	}
}

// Snapshot returns all scopes, most expensive first.
func Snapshot() []ScopeStats {
	mu.Lock()
	out := make([]ScopeStats, 0, len(scopes))
	for _, s := range scopes {
		out = append(out, *s)
	}
	mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func Reset() {
	mu.Lock()
	clear(scopes)
	mu.Unlock()
}

const Enabled = true
