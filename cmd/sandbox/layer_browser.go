package main

import (
	"fmt"
	"log/slog"

	"github.com/hubastard/webgrove/engine/assets"
	"github.com/hubastard/webgrove/engine/browser"
	"github.com/hubastard/webgrove/engine/config"
	"github.com/hubastard/webgrove/engine/core"
	"github.com/hubastard/webgrove/engine/gfx/renderer2d"
	"github.com/hubastard/webgrove/engine/gfx/surfaces"
	"github.com/hubastard/webgrove/engine/native/loopback"
	"github.com/hubastard/webgrove/engine/profiler"
	"github.com/hubastard/webgrove/engine/scene"
)

const (
	// pixelsPerUnit maps scene units to screen pixels at zoom 1.
	pixelsPerUnit = 300
	windowGap     = 0.25
)

// BrowserLayer lays browser windows out in a row and drives their lifecycle.
//
//	N        open a window
//	C / X    close / destroy the active window
//	1 2 3    resize to 0.5x, 1x, 2x
//	V        toggle visibility
//	R H      reload, home
//	← →      back, forward
//	Tab      next window
//	click    make the window under the cursor active
type BrowserLayer struct {
	cfg     *config.Config
	initial int
	log     *slog.Logger

	cam     *scene.OrthoCamera2D
	ctrl    *scene.OrthoController2D
	r2d     *renderer2d.Renderer2D
	root    *scene.Node
	factory *surfaces.Factory
	manager *browser.Manager
	native  *loopback.Engine
	opened  int
}

func (l *BrowserLayer) OnAttach(e *core.Engine) {
	w, h := e.Window.FramebufferSize()
	l.cam = scene.NewOrtho2D(w, h)
	l.ctrl = scene.NewOrthoController2D(l.cam)

	vs, fs, err := assets.Renderer2DShaders()
	if err != nil {
		panic(err)
	}
	l.r2d, err = renderer2d.New(e.Renderer, vs, fs, 1000)
	if err != nil {
		panic(err)
	}

	l.root = scene.NewNode("browsers")
	l.factory = surfaces.NewFactory(e.Renderer)
	l.manager = browser.NewManager(l.factory, l.cfg.ManagerOptions(l.log))
	l.manager.OnCreateTimeout = func(w *browser.Window) {
		// Lost requests are re-sent once the engine is reachable again.
		w.RequestCreate()
	}
	l.manager.OnActiveChanged = func(w *browser.Window) {
		if w == nil {
			return
		}
		p := w.Node().WorldPosition()
		l.cam.SetPosition(p[0]*pixelsPerUnit, p[1]*pixelsPerUnit)
	}
	l.manager.OnBrowserEvent = func(w *browser.Window, ev browser.BrowserEvent) {
		if ev.Kind == browser.BrowserEventTitleChanged {
			l.log.Info("page title", "window", w.Node().Name, "title", w.Title(), "url", w.URL())
		}
	}

	opts, err := l.cfg.LoopbackOptions(l.log)
	if err != nil {
		panic(err)
	}
	l.native, err = loopback.New(l.manager.Inbox(), l.factory.Upload, opts)
	if err != nil {
		panic(err)
	}
	l.manager.SetNative(l.native)

	l.log.Info("renderer", "vendor", e.Renderer.GPUVendor(), "gpu", e.Renderer.GPURenderer(), "version", e.Renderer.GPUVersion())
	for range l.initial {
		l.open()
	}
}

func (l *BrowserLayer) OnDetach(e *core.Engine) {
	l.manager.Shutdown()
	l.native.Close()
	l.factory.Collect()
	l.r2d.Release()
}

// open adds a window to the right of the last one opened. It becomes active
// once the native window exists.
func (l *BrowserLayer) open() *browser.Window {
	l.opened++
	w := l.manager.NewWindow(l.root, l.cfg.WindowOptions(fmt.Sprintf("browser-%d", l.opened)))
	x := float32(l.opened-1) * (l.cfg.Window.DisplayWidth + windowGap)
	w.Node().SetLocalPosition(x, 0, 0)
	w.RequestCreate()
	return w
}

func (l *BrowserLayer) OnFrame(e *core.Engine, dt float64) {
	l.manager.Update(dt)
}

func (l *BrowserLayer) OnUpdate(e *core.Engine, dt float64) {
	l.ctrl.Update(e, float32(dt))

	fw, fh := e.Window.FramebufferSize()
	for _, c := range e.Input.Clicks() {
		if c.Button != core.MouseLeft {
			continue
		}
		x, y := l.cam.ScreenToWorld(c.X, c.Y, fw, fh)
		if w := l.factory.WindowAt(l.manager, x/pixelsPerUnit, y/pixelsPerUnit); w != nil {
			l.manager.SetActive(w)
		}
	}
}

func (l *BrowserLayer) OnRender(e *core.Engine, alpha float64) {
	defer profiler.Start("BrowserLayer.OnRender")()

	l.r2d.BeginScene(l.cam.VP())
	l.factory.Draw(l.r2d, pixelsPerUnit)
	l.r2d.EndScene()
}

// OnPostFrame frees the textures released during the frame.
func (l *BrowserLayer) OnPostFrame(e *core.Engine) {
	if n := l.factory.Collect(); n > 0 {
		l.log.Debug("textures collected", "count", n)
	}
}

func (l *BrowserLayer) OnEvent(e *core.Engine, ev core.Event) bool {
	switch v := ev.(type) {
	case core.EventKey:
		if !v.Down {
			return false
		}
		return l.handleKey(e, v.Key)
	case core.EventResize:
		l.cam.SetViewportPixels(v.W, v.H)
	case core.EventScroll:
		return l.ctrl.HandleEvent(ev)
	}
	return false
}

func (l *BrowserLayer) handleKey(e *core.Engine, k core.Key) bool {
	if k == core.KeyEscape {
		e.Window.RequestClose()
		return true
	}
	if k == core.KeyN {
		l.open()
		return true
	}
	w := l.manager.Active()
	if w == nil {
		return false
	}
	switch k {
	case core.KeyC:
		w.Close()
	case core.KeyX:
		l.manager.Destroy(w, browser.ReleaseDeferred)
		if ws := l.manager.Windows(); len(ws) > 0 {
			l.manager.SetActive(ws[len(ws)-1])
		}
	case core.Key1:
		w.RequestSizeMultiple(0.5)
	case core.Key2:
		w.RequestSizeMultiple(1)
	case core.Key3:
		w.RequestSizeMultiple(2)
	case core.KeyV:
		w.SetVisible(!w.Visible())
	case core.KeyR:
		w.Reload()
	case core.KeyH:
		w.GoHome()
	case core.KeyLeft:
		w.GoBack()
	case core.KeyRight:
		w.GoForward()
	case core.KeyTab:
		l.manager.SetActive(next(l.manager.Windows(), w))
	default:
		return false
	}
	return true
}

// next returns the window after cur, wrapping around.
func next(ws []*browser.Window, cur *browser.Window) *browser.Window {
	for i, w := range ws {
		if w == cur {
			return ws[(i+1)%len(ws)]
		}
	}
	if len(ws) > 0 {
		return ws[0]
	}
	return nil
}
