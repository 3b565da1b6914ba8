package browser_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/hubastard/webgrove/engine/browser"
)

func TestManager_DispatchRoutesByIdentity(t *testing.T) {
	h := newHarness(0)
	a := h.m.NewWindow(h.root, browser.WindowOptions{})
	b := h.m.NewWindow(h.root, browser.WindowOptions{})
	a.RequestCreate()
	b.RequestCreate()

	in := h.m.Inbox()
	in.OnWindowCreated(b.Identity(), 11, 200, 100, browser.PixelFormatRGBA32)
	in.OnWindowCreated(a.Identity(), 10, 100, 100, browser.PixelFormatRGBA32)

	if n := h.m.Dispatch(); n != 2 {
		t.Fatalf("Dispatch applied %d, want 2", n)
	}
	if a.Index() != 10 || b.Index() != 11 {
		t.Fatalf("indices = %d/%d, want 10/11", a.Index(), b.Index())
	}
	if h.m.Active() != a {
		t.Fatalf("last created window should be active")
	}
}

func TestManager_DispatchDropsStaleCallbacks(t *testing.T) {
	h := newHarness(0)
	w := h.bound(4, 100, 100)
	h.m.Destroy(w, browser.ReleaseImmediate)

	in := h.m.Inbox()
	in.OnWindowResized(w.Identity(), 4, 300, 300)
	in.OnWindowCreated(999, 8, 10, 10, browser.PixelFormatRGBA32)
	in.OnBrowserEvent(0, 4, browser.BrowserEventTitleChanged, 0, 0, "late")

	if n := h.m.Dispatch(); n != 0 {
		t.Fatalf("Dispatch applied %d stale events", n)
	}
	if len(h.surfaces.Textures) != 1 {
		t.Fatalf("stale resize must not allocate")
	}
	if h.logs.count(slog.LevelWarn, "protocol violation ignored") != 0 {
		t.Fatalf("stale callbacks are not protocol violations")
	}
}

func TestManager_ResizeFallsBackToIndex(t *testing.T) {
	h := newHarness(0)
	w := h.bound(6, 100, 100)
	h.m.Inbox().OnWindowResized(0, 6, 200, 50)
	h.m.Dispatch()
	if pw, ph := w.PixelSize(); pw != 200 || ph != 50 {
		t.Fatalf("PixelSize = %dx%d, want 200x50", pw, ph)
	}
}

// resent returns a window whose first creation request timed out and was
// sent again, so two answers are owed.
func resent(h *harness) *browser.Window {
	w := h.m.NewWindow(h.root, browser.WindowOptions{})
	h.m.OnCreateTimeout = func(win *browser.Window) { win.RequestCreate() }
	w.RequestCreate()
	h.clock.Advance(2 * time.Second)
	h.m.Update(0)
	return w
}

func TestManager_SurplusCreationIsClosed(t *testing.T) {
	h := newHarness(time.Second)
	w := resent(h)
	if h.native.count("new 1 1920x1080") != 2 {
		t.Fatalf("calls = %v", h.native.Calls)
	}

	in := h.m.Inbox()
	in.OnWindowCreated(w.Identity(), 1, 100, 100, browser.PixelFormatRGBA32)
	in.OnWindowCreated(w.Identity(), 2, 100, 100, browser.PixelFormatRGBA32)
	if n := h.m.Dispatch(); n != 1 {
		t.Fatalf("Dispatch applied %d, want 1", n)
	}
	if w.Index() != 1 {
		t.Fatalf("index = %d, want the first answer", w.Index())
	}
	if h.native.count("close 2") != 1 || h.native.count("close 1") != 0 {
		t.Fatalf("surplus native window must be closed: %v", h.native.Calls)
	}
	if h.logs.count(slog.LevelWarn, "protocol violation ignored") != 0 {
		t.Fatalf("answer to a re-sent request is not a protocol violation")
	}

	h.m.Destroy(w, browser.ReleaseImmediate)
	if h.native.count("close 1") != 1 {
		t.Fatalf("calls = %v", h.native.Calls)
	}
}

func TestManager_SurplusCreationAfterCloseIsClosed(t *testing.T) {
	h := newHarness(time.Second)
	w := resent(h)
	in := h.m.Inbox()
	in.OnWindowCreated(w.Identity(), 1, 100, 100, browser.PixelFormatRGBA32)
	h.m.Dispatch()
	w.Close()

	in.OnWindowCreated(w.Identity(), 2, 100, 100, browser.PixelFormatRGBA32)
	h.m.Dispatch()
	if w.Bound() {
		t.Fatalf("late surplus answer must not rebind a closed window")
	}
	if h.native.count("close 2") != 1 {
		t.Fatalf("calls = %v", h.native.Calls)
	}
}

func TestManager_CreationForDestroyedWindowIsClosed(t *testing.T) {
	h := newHarness(0)
	w := h.m.NewWindow(h.root, browser.WindowOptions{})
	w.RequestCreate()
	h.m.Destroy(w, browser.ReleaseImmediate)

	h.m.Inbox().OnWindowCreated(w.Identity(), 9, 100, 100, browser.PixelFormatRGBA32)
	if n := h.m.Dispatch(); n != 0 {
		t.Fatalf("creation for a destroyed window applied")
	}
	if h.native.count("close 9") != 1 {
		t.Fatalf("orphaned native window must be closed: %v", h.native.Calls)
	}
}

func TestManager_OrphanCloseSparesLiveIndex(t *testing.T) {
	h := newHarness(0)
	live := h.bound(3, 10, 10)
	h.m.Inbox().OnWindowCreated(999, 3, 10, 10, browser.PixelFormatRGBA32)
	h.m.Dispatch()
	if h.native.count("close 3") != 0 || !live.Bound() {
		t.Fatalf("index owned by a live window must not be closed: %v", h.native.Calls)
	}
}

func TestManager_BrowserEventsUpdatePageState(t *testing.T) {
	h := newHarness(0)
	w := h.bound(2, 100, 100)
	var seen []browser.BrowserEventKind
	h.m.OnBrowserEvent = func(win *browser.Window, ev browser.BrowserEvent) {
		if win != w {
			t.Fatalf("hook got the wrong window")
		}
		seen = append(seen, ev.Kind)
	}

	in := h.m.Inbox()
	id := w.Identity()
	in.OnBrowserEvent(id, 2, browser.BrowserEventLoadStateChanged, 1, 0, "")
	in.OnBrowserEvent(id, 2, browser.BrowserEventTitleChanged, 0, 0, "Servo")
	in.OnBrowserEvent(id, 2, browser.BrowserEventURLChanged, 0, 0, "https://servo.org/")
	in.OnBrowserEvent(id, 2, browser.BrowserEventHistoryChanged, 1, 0, "")
	in.OnBrowserEvent(id, 2, browser.BrowserEventFullscreenStateChanged, 1, 0, "")
	in.OnBrowserEvent(id, 2, browser.BrowserEventIMEStateChanged, 1, 0, "")
	h.m.Dispatch()

	if !w.Loading() || w.Title() != "Servo" || w.URL() != "https://servo.org/" {
		t.Fatalf("page state = loading %v title %q url %q", w.Loading(), w.Title(), w.URL())
	}
	if !w.CanGoBack() || w.CanGoForward() || !w.Fullscreen() || !w.IMEVisible() {
		t.Fatalf("flags = back %v fwd %v fs %v ime %v", w.CanGoBack(), w.CanGoForward(), w.Fullscreen(), w.IMEVisible())
	}
	if len(seen) != 6 {
		t.Fatalf("hook saw %d events, want 6", len(seen))
	}

	in.OnBrowserEvent(id, 2, browser.BrowserEventLoadStateChanged, 0, 0, "")
	in.OnBrowserEvent(id, 2, browser.BrowserEventFullscreenStateChanged, 2, 0, "")
	h.m.Dispatch()
	if w.Loading() || !w.Fullscreen() {
		t.Fatalf("load end must clear loading; will-exit must keep fullscreen")
	}
	in.OnBrowserEvent(id, 2, browser.BrowserEventFullscreenStateChanged, 3, 0, "")
	h.m.Dispatch()
	if w.Fullscreen() {
		t.Fatalf("did-exit must clear fullscreen")
	}
}

func TestManager_UpdateTicksInRegistrationOrder(t *testing.T) {
	h := newHarness(0)
	h.bound(3, 10, 10)
	h.m.NewWindow(h.root, browser.WindowOptions{})
	h.bound(1, 10, 10)
	h.native.Calls = nil

	h.m.Update(0.016)
	want := []string{"service 3", "update 3", "service 1", "update 1"}
	if len(h.native.Calls) != len(want) {
		t.Fatalf("calls = %v, want %v", h.native.Calls, want)
	}
	for i := range want {
		if h.native.Calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", h.native.Calls, want)
		}
	}
}

func TestManager_UpdateDispatchesBeforeTicking(t *testing.T) {
	h := newHarness(0)
	w := h.m.NewWindow(h.root, browser.WindowOptions{})
	w.RequestCreate()
	h.m.Inbox().OnWindowCreated(w.Identity(), 5, 10, 10, browser.PixelFormatRGBA32)
	h.native.Calls = nil

	h.m.Update(0.016)
	if h.native.count("update 5") != 1 {
		t.Fatalf("window created this frame must tick this frame: %v", h.native.Calls)
	}
}

func TestManager_DestroyOrderAndActive(t *testing.T) {
	h := newHarness(0)
	w := h.bound(8, 10, 10)
	var changes []*browser.Window
	h.m.OnActiveChanged = func(a *browser.Window) { changes = append(changes, a) }

	h.m.Destroy(w, browser.ReleaseDeferred)

	if h.m.Registry().FindByIdentity(w.Identity()) != nil {
		t.Fatalf("destroyed window still registered")
	}
	if h.native.count("close 8") != 1 {
		t.Fatalf("calls = %v", h.native.Calls)
	}
	if w.Texture() != nil || w.Surface() != nil {
		t.Fatalf("resources not released")
	}
	if w.Node().Parent() != nil {
		t.Fatalf("window node still attached")
	}
	if h.m.Active() != nil || len(changes) != 1 || changes[0] != nil {
		t.Fatalf("active window not cleared: %v", changes)
	}

	h.m.Destroy(w, browser.ReleaseDeferred)
	if h.native.count("close 8") != 1 || len(h.surfaces.Releases) != 2 {
		t.Fatalf("second Destroy must be a no-op")
	}
}

func TestManager_ShutdownReleasesImmediately(t *testing.T) {
	h := newHarness(0)
	h.bound(1, 10, 10)
	h.bound(2, 10, 10)
	h.m.NewWindow(h.root, browser.WindowOptions{})

	h.m.Shutdown()
	if h.m.Registry().Len() != 0 {
		t.Fatalf("registry not empty after shutdown")
	}
	if len(h.surfaces.Releases) != 4 {
		t.Fatalf("releases = %+v, want 4", h.surfaces.Releases)
	}
	for _, r := range h.surfaces.Releases {
		if r.mode != browser.ReleaseImmediate {
			t.Fatalf("shutdown must release immediately")
		}
	}
	if len(h.root.Children()) != 0 {
		t.Fatalf("window nodes still attached")
	}
}

func TestManager_CreateTimeout(t *testing.T) {
	h := newHarness(2 * time.Second)
	w := h.m.NewWindow(h.root, browser.WindowOptions{})
	var timedOut int
	h.m.OnCreateTimeout = func(win *browser.Window) { timedOut++ }

	w.RequestCreate()
	h.clock.Advance(time.Second)
	h.m.Update(0)
	if timedOut != 0 || w.RequestCreate() {
		t.Fatalf("request must stay pending before the timeout")
	}

	h.clock.Advance(1500 * time.Millisecond)
	h.m.Update(0)
	h.m.Update(0)
	if timedOut != 1 {
		t.Fatalf("timeout fired %d times, want 1", timedOut)
	}
	if h.logs.count(slog.LevelWarn, "native window creation timed out") != 1 {
		t.Fatalf("expected one timeout warning")
	}

	if !w.RequestCreate() {
		t.Fatalf("expired request may be re-sent")
	}
	if h.native.count("new 1 1920x1080") != 2 {
		t.Fatalf("calls = %v", h.native.Calls)
	}

	h.m.Inbox().OnWindowCreated(w.Identity(), 3, 10, 10, browser.PixelFormatRGBA32)
	h.m.Update(0)
	if !w.Bound() {
		t.Fatalf("callback after re-request must bind")
	}
}

func TestManager_LateCallbackAfterTimeoutStillBinds(t *testing.T) {
	h := newHarness(time.Second)
	w := h.m.NewWindow(h.root, browser.WindowOptions{})
	w.RequestCreate()
	h.clock.Advance(5 * time.Second)
	h.m.Update(0)

	h.m.Inbox().OnWindowCreated(w.Identity(), 4, 10, 10, browser.PixelFormatRGBA32)
	h.m.Update(0)
	if w.Index() != 4 {
		t.Fatalf("late callback must bind an unbound window")
	}
}

func TestManager_ZeroTimeoutWaitsForever(t *testing.T) {
	h := newHarness(0)
	w := h.m.NewWindow(h.root, browser.WindowOptions{})
	h.m.OnCreateTimeout = func(*browser.Window) { t.Fatalf("no timeout expected") }
	w.RequestCreate()
	h.clock.Advance(24 * time.Hour)
	h.m.Update(0)
	if w.RequestCreate() {
		t.Fatalf("request must still be pending")
	}
}

func TestManager_NewManagerRequiresFactory(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	browser.NewManager(nil, browser.ManagerOptions{})
}
