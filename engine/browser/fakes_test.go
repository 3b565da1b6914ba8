package browser_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hubastard/webgrove/engine/browser"
	"github.com/hubastard/webgrove/engine/core"
	"github.com/hubastard/webgrove/engine/scene"
)

// fakeNative records every call as a string and answers resize requests with
// ResizeResult.
type fakeNative struct {
	ResizeResult bool
	Calls        []string
	Handles      map[int]uintptr
}

func newFakeNative() *fakeNative {
	return &fakeNative{ResizeResult: true, Handles: map[int]uintptr{}}
}

func (n *fakeNative) record(format string, args ...any) {
	n.Calls = append(n.Calls, fmt.Sprintf(format, args...))
}

func (n *fakeNative) RequestNewWindow(id browser.Identity, w, h int) {
	n.record("new %d %dx%d", id, w, h)
}

func (n *fakeNative) RequestWindowSizeChange(index, w, h int) bool {
	n.record("resize %d %dx%d", index, w, h)
	return n.ResizeResult
}

func (n *fakeNative) CloseWindow(index int)         { n.record("close %d", index) }
func (n *fakeNative) ServiceWindowEvents(index int) { n.record("service %d", index) }
func (n *fakeNative) CleanupRenderer(index int)     { n.record("cleanup %d", index) }

func (n *fakeNative) RequestWindowUpdate(index int, dt float64) {
	n.record("update %d", index)
}

func (n *fakeNative) SetWindowTextureHandle(index int, handle uintptr) {
	n.Handles[index] = handle
	n.record("handle %d %d", index, handle)
}

func (n *fakeNative) count(call string) int {
	c := 0
	for _, s := range n.Calls {
		if s == call {
			c++
		}
	}
	return c
}

// fakeNavigator adds page navigation to fakeNative.
type fakeNavigator struct{ *fakeNative }

func (n fakeNavigator) Navigate(index int, url string) { n.record("navigate %d %s", index, url) }
func (n fakeNavigator) Reload(index int)               { n.record("reload %d", index) }
func (n fakeNavigator) Stop(index int)                 { n.record("stop %d", index) }
func (n fakeNavigator) GoBack(index int)               { n.record("back %d", index) }
func (n fakeNavigator) GoForward(index int)            { n.record("forward %d", index) }
func (n fakeNavigator) GoHome(index int)               { n.record("home %d", index) }

type fakeTexture struct {
	id   uintptr
	w, h int
	fmt  core.TextureFormat
}

func (t *fakeTexture) Width() int                 { return t.w }
func (t *fakeTexture) Height() int                { return t.h }
func (t *fakeTexture) Format() core.TextureFormat { return t.fmt }
func (t *fakeTexture) NativeHandle() uintptr      { return t.id }

type fakeSurface struct {
	node   *scene.Node
	tex    core.Texture
	params browser.SurfaceParams
}

func (s *fakeSurface) Node() *scene.Node { return s.node }

type release struct {
	what string // "texture" or "surface"
	id   uintptr
	mode browser.ReleaseMode
}

var errNoMemory = errors.New("out of texture memory")

// fakeSurfaces hands out numbered textures and records releases in order.
type fakeSurfaces struct {
	FailTextures bool
	Textures     []*fakeTexture
	Surfaces     []*fakeSurface
	Configures   int
	Releases     []release
	nextID       uintptr
}

func (f *fakeSurfaces) CreateTexture(w, h int, format browser.PixelFormat) (core.Texture, error) {
	if f.FailTextures {
		return nil, errNoMemory
	}
	f.nextID++
	tf, _ := format.TextureFormat()
	t := &fakeTexture{id: f.nextID, w: w, h: h, fmt: tf}
	f.Textures = append(f.Textures, t)
	return t, nil
}

func (f *fakeSurfaces) ReleaseTexture(tex core.Texture, mode browser.ReleaseMode) {
	f.Releases = append(f.Releases, release{what: "texture", id: tex.NativeHandle(), mode: mode})
}

func (f *fakeSurfaces) CreateSurface(tex core.Texture, p browser.SurfaceParams) browser.Surface {
	s := &fakeSurface{node: scene.NewNode("surface"), tex: tex, params: p}
	f.Surfaces = append(f.Surfaces, s)
	return s
}

func (f *fakeSurfaces) ConfigureSurface(s browser.Surface, tex core.Texture, p browser.SurfaceParams) {
	fs := s.(*fakeSurface)
	fs.tex, fs.params = tex, p
	f.Configures++
}

func (f *fakeSurfaces) ReleaseSurface(s browser.Surface, mode browser.ReleaseMode) {
	f.Releases = append(f.Releases, release{what: "surface", mode: mode})
}

func (f *fakeSurfaces) releasedTexture(id uintptr) int {
	n := 0
	for _, r := range f.Releases {
		if r.what == "texture" && r.id == id {
			n++
		}
	}
	return n
}

// recordHandler keeps every log record for inspection.
type recordHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *recordHandler) WithAttrs([]slog.Attr) slog.Handler       { return h }
func (h *recordHandler) WithGroup(string) slog.Handler            { return h }

func (h *recordHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	h.records = append(h.records, r)
	h.mu.Unlock()
	return nil
}

func (h *recordHandler) count(level slog.Level, msg string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, r := range h.records {
		if r.Level == level && r.Message == msg {
			n++
		}
	}
	return n
}

// fakeClock is advanced by hand.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type harness struct {
	m        *browser.Manager
	native   *fakeNative
	surfaces *fakeSurfaces
	logs     *recordHandler
	clock    *fakeClock
	root     *scene.Node
}

func newHarness(timeout time.Duration) *harness {
	h := &harness{
		native:   newFakeNative(),
		surfaces: &fakeSurfaces{},
		logs:     &recordHandler{},
		clock:    &fakeClock{t: time.Unix(1000, 0)},
		root:     scene.NewNode("root"),
	}
	h.m = browser.NewManager(h.surfaces, browser.ManagerOptions{
		CreateTimeout: timeout,
		Clock:         h.clock.Now,
		Logger:        slog.New(h.logs),
	})
	h.m.SetNative(h.native)
	return h
}

// bound returns a window that has been created at index with the given size.
func (h *harness) bound(index, w, ht int) *browser.Window {
	win := h.m.NewWindow(h.root, browser.WindowOptions{})
	win.RequestCreate()
	win.WasCreated(index, w, ht, browser.PixelFormatBGRA32)
	return win
}
