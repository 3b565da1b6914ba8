package browser

import (
	"log/slog"
	"math"
	"time"

	"github.com/hubastard/webgrove/engine/core"
	"github.com/hubastard/webgrove/engine/scene"
)

const (
	DefaultRequestWidth  = 1920
	DefaultRequestHeight = 1080
	DefaultDisplayWidth  = 3.0
)

// WindowOptions configures a Window at construction. Zero sizes take the
// package defaults.
type WindowOptions struct {
	Name          string
	RequestWidth  int
	RequestHeight int
	DisplayWidth  float32
	FlipX, FlipY  bool
	Hidden        bool
	Collider      ColliderKind
}

func (o WindowOptions) withDefaults() WindowOptions {
	if o.RequestWidth <= 0 {
		o.RequestWidth = DefaultRequestWidth
	}
	if o.RequestHeight <= 0 {
		o.RequestHeight = DefaultRequestHeight
	}
	if o.DisplayWidth <= 0 {
		o.DisplayWidth = DefaultDisplayWidth
	}
	if o.Name == "" {
		o.Name = "browser-window"
	}
	return o
}

// Window binds one native browser window to a texture and a surface in the
// scene. It is inert until the native engine reports it created.
//
// Windows are not safe for concurrent use; every method runs on the host thread.
type Window struct {
	id   Identity
	m    *Manager
	node *scene.Node

	index                       int
	requestWidth, requestHeight int
	pixelWidth, pixelHeight     int
	format                      PixelFormat

	defaultDisplayWidth float32
	displayWidth        float32
	displayHeight       float32
	uScale, vScale      float32

	flipX, flipY bool
	visible      bool
	collider     ColliderKind

	texture core.Texture
	surface Surface

	pending     bool
	expired     bool
	requestedAt time.Time
	// surplus counts re-sent creation requests whose answers are still owed.
	surplus int

	title, url              string
	loading                 bool
	canGoBack, canGoForward bool
	fullscreen, imeVisible  bool
}

func newWindow(m *Manager, id Identity, parent *scene.Node, opts WindowOptions) *Window {
	opts = opts.withDefaults()
	w := &Window{
		id:                  id,
		m:                   m,
		node:                scene.NewNode(opts.Name),
		requestWidth:        opts.RequestWidth,
		requestHeight:       opts.RequestHeight,
		defaultDisplayWidth: opts.DisplayWidth,
		displayWidth:        opts.DisplayWidth,
		flipX:               opts.FlipX,
		flipY:               opts.FlipY,
		visible:             !opts.Hidden,
		collider:            opts.Collider,
	}
	w.node.Owner = w
	if parent != nil {
		w.node.SetParent(parent)
	}
	return w
}

func (w *Window) Identity() Identity           { return w.id }
func (w *Window) Index() int                   { return w.index }
func (w *Window) Bound() bool                  { return w.index != 0 }
func (w *Window) Node() *scene.Node            { return w.node }
func (w *Window) PixelSize() (int, int)        { return w.pixelWidth, w.pixelHeight }
func (w *Window) RequestSize() (int, int)      { return w.requestWidth, w.requestHeight }
func (w *Window) Format() PixelFormat          { return w.format }
func (w *Window) DisplayWidth() float32        { return w.displayWidth }
func (w *Window) DisplayHeight() float32       { return w.displayHeight }
func (w *Window) DefaultDisplayWidth() float32 { return w.defaultDisplayWidth }
func (w *Window) UVScale() (float32, float32)  { return w.uScale, w.vScale }
func (w *Window) Flip() (x, y bool)            { return w.flipX, w.flipY }
func (w *Window) Collider() ColliderKind       { return w.collider }
func (w *Window) Texture() core.Texture        { return w.texture }
func (w *Window) Surface() Surface             { return w.surface }
func (w *Window) Pending() bool                { return w.pending }

func (w *Window) Title() string      { return w.title }
func (w *Window) URL() string        { return w.url }
func (w *Window) Loading() bool      { return w.loading }
func (w *Window) CanGoBack() bool    { return w.canGoBack }
func (w *Window) CanGoForward() bool { return w.canGoForward }
func (w *Window) Fullscreen() bool   { return w.fullscreen }
func (w *Window) IMEVisible() bool   { return w.imeVisible }

func (w *Window) logger() *slog.Logger {
	return w.m.logger().With("window", uint64(w.id), "index", w.index)
}

func (w *Window) violation(op, reason string) {
	protocolViolation(w.logger(), op, reason)
}

// RequestCreate asks the native engine for a new browser window. It reports
// whether a request was sent. Nothing else changes until WasCreated.
func (w *Window) RequestCreate() bool {
	if w.index != 0 {
		w.violation("RequestCreate", "window already bound")
		return false
	}
	n := w.m.native
	if n == nil {
		return false
	}
	if w.pending && !w.expired {
		return false
	}
	if w.pending {
		// The expired request may still be answered.
		w.surplus++
	}
	w.pending, w.expired = true, false
	w.requestedAt = w.m.now()
	w.logger().Info("requesting native window", "width", w.requestWidth, "height", w.requestHeight)
	n.RequestNewWindow(w.id, w.requestWidth, w.requestHeight)
	return true
}

// WasCreated binds the window to a native index and builds its texture and
// surface.
func (w *Window) WasCreated(index, width, height int, format PixelFormat) {
	if w.index != 0 {
		w.violation("WasCreated", "window already bound")
		return
	}
	if index == 0 {
		w.violation("WasCreated", "native index 0")
		return
	}
	if width <= 0 || height <= 0 {
		w.violation("WasCreated", "non-positive pixel size")
		return
	}

	w.pending, w.expired = false, false
	w.index = index
	w.pixelWidth, w.pixelHeight = width, height
	w.format = format
	w.rebuild()
	w.logger().Info("native window created",
		"width", width, "height", height, "format", format,
		"displayWidth", w.displayWidth, "displayHeight", w.displayHeight)

	w.m.SetActive(w)
}

// WasResized swaps in a texture of the new pixel size. The surface is reused.
func (w *Window) WasResized(width, height int) {
	if w.index == 0 {
		w.violation("WasResized", "window not bound")
		return
	}
	if width <= 0 || height <= 0 {
		w.violation("WasResized", "non-positive pixel size")
		return
	}

	w.pixelWidth, w.pixelHeight = width, height
	w.rebuild()
	w.logger().Info("native window resized",
		"width", width, "height", height, "displayHeight", w.displayHeight)
}

// rebuild sizes the surface to the current pixel size and replaces the
// texture. The previous texture, if any, is released once, after the frame.
func (w *Window) rebuild() {
	f := w.m.surfaces
	w.displayHeight = DisplayHeight(w.displayWidth, w.pixelWidth, w.pixelHeight)

	old := w.texture
	w.texture = w.allocateTexture()

	if w.surface == nil {
		w.surface = f.CreateSurface(w.texture, w.params())
		n := w.surface.Node()
		n.SetParent(w.node)
		n.ResetLocal()
		n.SetActive(w.visible)
	} else {
		f.ConfigureSurface(w.surface, w.texture, w.params())
	}

	if old != nil {
		f.ReleaseTexture(old, ReleaseDeferred)
	}
}

func (w *Window) allocateTexture() core.Texture {
	tex, err := w.m.surfaces.CreateTexture(w.pixelWidth, w.pixelHeight, w.format)
	if err != nil || tex == nil {
		w.uScale, w.vScale = 0, 0
		w.logger().Warn("texture allocation failed",
			"width", w.pixelWidth, "height", w.pixelHeight, "format", w.format, "err", err)
		return nil
	}
	w.uScale, w.vScale = 1, 1
	if n := w.m.native; n != nil {
		n.SetWindowTextureHandle(w.index, tex.NativeHandle())
	}
	return tex
}

func (w *Window) params() SurfaceParams {
	return SurfaceParams{
		UScale:   w.uScale,
		VScale:   w.vScale,
		Width:    w.displayWidth,
		Height:   w.displayHeight,
		Collider: w.collider,
		FlipX:    w.flipX,
		FlipY:    w.flipY,
	}
}

// RequestResize asks the native engine to resize the window's pixels. It
// returns false when the window is unbound or no engine is attached.
func (w *Window) RequestResize(width, height int) bool {
	n := w.m.native
	if w.index == 0 || n == nil {
		return false
	}
	if width <= 0 || height <= 0 {
		return false
	}
	return n.RequestWindowSizeChange(w.index, width, height)
}

// RequestSizeMultiple scales both the display width and the requested pixel
// size by m relative to their defaults.
func (w *Window) RequestSizeMultiple(m float32) bool {
	if m <= 0 {
		return false
	}
	w.displayWidth = w.defaultDisplayWidth * m
	pw := int(math.Floor(float64(w.requestWidth) * float64(m)))
	ph := int(math.Floor(float64(w.requestHeight) * float64(m)))
	return w.RequestResize(pw, ph)
}

// SetDisplayWidth changes the real-world width of the surface. Height follows
// the pixel aspect ratio.
func (w *Window) SetDisplayWidth(width float32) {
	if width <= 0 {
		return
	}
	w.displayWidth = width
	if w.index == 0 || w.pixelWidth <= 0 {
		return
	}
	w.displayHeight = DisplayHeight(w.displayWidth, w.pixelWidth, w.pixelHeight)
	if w.surface != nil {
		w.m.surfaces.ConfigureSurface(w.surface, w.texture, w.params())
	}
}

// Tick services native events and asks for a new frame. Called once per host
// frame.
func (w *Window) Tick(dt float64) {
	n := w.m.native
	if w.index == 0 || n == nil {
		return
	}
	n.ServiceWindowEvents(w.index)
	n.RequestWindowUpdate(w.index, dt)
}

// Close asks the native engine to close the window and unbinds it. Texture and
// surface stay until DestroyLocalResources.
func (w *Window) Close() {
	if w.index == 0 {
		return
	}
	if n := w.m.native; n != nil {
		n.CloseWindow(w.index)
	}
	w.logger().Info("native window closed")
	w.index = 0
	w.pending = false
}

func (w *Window) CleanupRenderer() {
	if w.index == 0 {
		return
	}
	if n := w.m.native; n != nil {
		n.CleanupRenderer(w.index)
	}
}

// DestroyLocalResources releases the surface and then the texture. Safe to
// call more than once.
func (w *Window) DestroyLocalResources(mode ReleaseMode) {
	f := w.m.surfaces
	if w.surface != nil {
		f.ReleaseSurface(w.surface, mode)
		w.surface = nil
	}
	if w.texture != nil {
		f.ReleaseTexture(w.texture, mode)
		w.texture = nil
	}
}

func (w *Window) Visible() bool { return w.visible }

// SetVisible shows or hides the surface. Showing a bound window makes it the
// active window.
func (w *Window) SetVisible(v bool) {
	w.visible = v
	if w.surface != nil {
		w.surface.Node().SetActive(v)
	}
	if v && w.index != 0 {
		w.m.SetActive(w)
	}
}

func (w *Window) navigator() (Navigator, bool) {
	if w.index == 0 {
		return nil, false
	}
	nav, ok := w.m.native.(Navigator)
	return nav, ok
}

func (w *Window) Navigate(url string) bool {
	nav, ok := w.navigator()
	if ok {
		nav.Navigate(w.index, url)
	}
	return ok
}

func (w *Window) Reload() bool {
	nav, ok := w.navigator()
	if ok {
		nav.Reload(w.index)
	}
	return ok
}

func (w *Window) Stop() bool {
	nav, ok := w.navigator()
	if ok {
		nav.Stop(w.index)
	}
	return ok
}

func (w *Window) GoBack() bool {
	nav, ok := w.navigator()
	if ok {
		nav.GoBack(w.index)
	}
	return ok
}

func (w *Window) GoForward() bool {
	nav, ok := w.navigator()
	if ok {
		nav.GoForward(w.index)
	}
	return ok
}

func (w *Window) GoHome() bool {
	nav, ok := w.navigator()
	if ok {
		nav.GoHome(w.index)
	}
	return ok
}

// applyBrowserEvent folds a browser event into the window's page state.
func (w *Window) applyBrowserEvent(ev BrowserEvent) {
	switch ev.Kind {
	case BrowserEventShutdown:
		w.logger().Info("native renderer shut down")
	case BrowserEventLoadStateChanged:
		w.loading = ev.Data1 == 1
	case BrowserEventFullscreenStateChanged:
		switch ev.Data1 {
		case 1:
			w.fullscreen = true
		case 3:
			w.fullscreen = false
		}
	case BrowserEventIMEStateChanged:
		w.imeVisible = ev.Data1 == 1
	case BrowserEventHistoryChanged:
		w.canGoBack = ev.Data1 == 1
		w.canGoForward = ev.Data2 == 1
	case BrowserEventTitleChanged:
		w.title = ev.Text
	case BrowserEventURLChanged:
		w.url = ev.Text
	}
}
