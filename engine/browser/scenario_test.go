package browser_test

import (
	"testing"

	"github.com/hubastard/webgrove/engine/browser"
)

// Full lifecycle of one window with default options.
func TestWindowLifecycle(t *testing.T) {
	h := newHarness(0)
	w := h.m.NewWindow(h.root, browser.WindowOptions{})

	if !w.RequestCreate() {
		t.Fatalf("RequestCreate did not send")
	}
	h.m.Inbox().OnWindowCreated(w.Identity(), 7, 1280, 720, browser.PixelFormatRGBA32)
	h.m.Dispatch()

	if w.Index() != 7 {
		t.Fatalf("index = %d, want 7", w.Index())
	}
	if !approx(w.DisplayHeight(), 1.6875) {
		t.Fatalf("DisplayHeight = %v, want 1.6875", w.DisplayHeight())
	}
	if w.Texture() == nil {
		t.Fatalf("texture missing")
	}
	if w.Surface() == nil || w.Surface().Node().Parent() != w.Node() {
		t.Fatalf("surface missing or not parented")
	}
	if !w.Visible() || !w.Surface().Node().ActiveInHierarchy() {
		t.Fatalf("window should be visible")
	}
	first := w.Texture()

	h.m.Inbox().OnWindowResized(w.Identity(), 7, 640, 360)
	h.m.Dispatch()
	if !approx(w.DisplayHeight(), 1.6875) {
		t.Fatalf("DisplayHeight after resize = %v, want 1.6875", w.DisplayHeight())
	}
	if w.Texture() == first || w.Texture().Width() != 640 {
		t.Fatalf("texture not reallocated")
	}
	if h.surfaces.releasedTexture(first.NativeHandle()) != 1 {
		t.Fatalf("old texture not released exactly once")
	}

	w.Close()
	w.Close()
	if w.Index() != 0 || h.native.count("close 7") != 1 {
		t.Fatalf("close not idempotent: index %d calls %v", w.Index(), h.native.Calls)
	}

	live := w.Texture()
	w.DestroyLocalResources(browser.ReleaseDeferred)
	if w.Texture() != nil || w.Surface() != nil {
		t.Fatalf("resources not released")
	}
	if h.surfaces.releasedTexture(live.NativeHandle()) != 1 {
		t.Fatalf("final texture not released")
	}
}

func TestWindow_NeverCreatedDestroyIsNoop(t *testing.T) {
	h := newHarness(0)
	w := h.m.NewWindow(h.root, browser.WindowOptions{})
	w.DestroyLocalResources(browser.ReleaseImmediate)
	w.Tick(1)
	w.Close()
	if w.RequestResize(10, 10) {
		t.Fatalf("RequestResize on an unbound window must be false")
	}
	if len(h.surfaces.Releases) != 0 || len(h.native.Calls) != 0 {
		t.Fatalf("unbound window touched collaborators: %v %v", h.surfaces.Releases, h.native.Calls)
	}
}

func TestManager_WindowForNode(t *testing.T) {
	h := newHarness(0)
	w := h.bound(1, 10, 10)
	if got := h.m.WindowForNode(w.Surface().Node()); got != w {
		t.Fatalf("WindowForNode(surface) = %v, want the window", got)
	}
	if h.m.WindowForNode(h.root) != nil {
		t.Fatalf("root belongs to no window")
	}
	h.m.Destroy(w, browser.ReleaseImmediate)
	if h.m.WindowForNode(w.Node()) != nil {
		t.Fatalf("destroyed window must not resolve")
	}
}
