//go:build !debug

package browser_test

import (
	"log/slog"
	"testing"

	"github.com/hubastard/webgrove/engine/browser"
)

func TestProtocolViolations_AreIgnoredInRelease(t *testing.T) {
	h := newHarness(0)
	w := h.m.NewWindow(h.root, browser.WindowOptions{})

	w.WasResized(640, 480)
	if w.Bound() || len(h.surfaces.Textures) != 0 {
		t.Fatalf("resize of an unbound window must be ignored")
	}

	w.WasCreated(0, 640, 480, browser.PixelFormatRGBA32)
	w.WasCreated(1, 0, 480, browser.PixelFormatRGBA32)
	if w.Bound() {
		t.Fatalf("invalid creation must be ignored")
	}

	w.WasCreated(1, 640, 480, browser.PixelFormatRGBA32)
	w.WasCreated(2, 320, 240, browser.PixelFormatRGBA32)
	if w.Index() != 1 || len(h.surfaces.Textures) != 1 {
		t.Fatalf("second creation must be ignored, index %d", w.Index())
	}
	if w.RequestCreate() {
		t.Fatalf("RequestCreate on a bound window must be refused")
	}

	if n := h.logs.count(slog.LevelWarn, "protocol violation ignored"); n != 5 {
		t.Fatalf("logged %d violations, want 5", n)
	}
}

func TestManager_UnexplainedDuplicateCreationIsReported(t *testing.T) {
	h := newHarness(0)
	w := h.bound(6, 100, 100)
	h.m.Inbox().OnWindowCreated(w.Identity(), 7, 100, 100, browser.PixelFormatRGBA32)
	h.m.Dispatch()

	if w.Index() != 6 {
		t.Fatalf("index changed to %d", w.Index())
	}
	if n := h.logs.count(slog.LevelWarn, "protocol violation ignored"); n != 1 {
		t.Fatalf("logged %d violations, want 1", n)
	}
}
