package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/hubastard/webgrove/engine/core"
	"github.com/hubastard/webgrove/engine/profiler"
)

// LayerStats shows frame and renderer statistics in the window title and
// dumps scope timings with Ctrl+P.
type LayerStats struct {
	browsers      *BrowserLayer
	log           *slog.Logger
	title         string
	frameDuration time.Duration
	since         time.Duration
}

func (l *LayerStats) OnAttach(e *core.Engine) {}
func (l *LayerStats) OnDetach(e *core.Engine) {}

func (l *LayerStats) OnUpdate(e *core.Engine, dt float64) {
	l.since += time.Duration(dt * float64(time.Second))
	if l.since < time.Second {
		return
	}
	l.since = 0

	stats := l.browsers.r2d.Stats()
	ms := float64(l.frameDuration) / float64(time.Millisecond)
	fps := 0.0
	if ms > 0 {
		fps = 1000 / ms
	}
	title := fmt.Sprintf("%s | windows %d | quads %d | draws %d | %.2f ms (%.0f FPS) | %.1f MB",
		l.title, len(l.browsers.manager.Windows()), stats.QuadCount, stats.DrawCalls, ms, fps,
		float64(profiler.MemoryUsage())/(1<<20))
	if w := l.browsers.manager.Active(); w != nil && w.Title() != "" {
		title += " | " + w.Title()
	}
	e.Window.SetTitle(title)
}

func (l *LayerStats) OnRender(e *core.Engine, alpha float64) {}

func (l *LayerStats) OnEvent(e *core.Engine, ev core.Event) bool {
	v, ok := ev.(core.EventKey)
	if !ok || !v.Down || v.Key != core.KeyP || v.Mods&core.ModCtrl == 0 {
		return false
	}
	if !profiler.Enabled {
		l.log.Info("scope timings need a build with -tags profile")
		return true
	}
	for _, s := range profiler.Snapshot() {
		l.log.Info("scope", "name", s.Name, "count", s.Count, "mean", s.Mean(), "max", s.Max)
	}
	l.log.Info("runtime", "goroutines", profiler.NumGoroutine(), "allocs", profiler.MemoryAllocs())
	profiler.Reset()
	return true
}
