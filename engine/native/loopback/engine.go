// Package loopback is an in-process browser.NativeEngine. It answers window
// requests asynchronously, renders a status page for each window with
// golang.org/x/image and uploads it into the texture the host provides.
package loopback

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/hubastard/webgrove/engine/browser"
	"github.com/hubastard/webgrove/engine/core"
	"github.com/hubastard/webgrove/engine/profiler"
)

const DefaultHomepage = "https://servo.org/"

var ErrUnsupportedFormat = errors.New("loopback: unsupported pixel format")

// Uploader copies a rendered page into the host texture named by handle.
type Uploader func(handle uintptr, width, height int, pixels []byte) error

type Options struct {
	// CreateLatency and ResizeLatency delay the matching callbacks.
	CreateLatency time.Duration
	ResizeLatency time.Duration
	// DropCreates silently ignores that many creation requests, starting
	// with the next one.
	DropCreates int
	Homepage    string
	// Format is reported for every window; RGBA32 or BGRA32.
	Format browser.PixelFormat
	// Background is scaled to fill every page when set.
	Background image.Image
	// RefreshInterval re-renders pages that have not changed. Zero
	// defaults to one second.
	RefreshInterval time.Duration
	Logger          *slog.Logger
}

// Engine implements browser.NativeEngine and browser.Navigator.
type Engine struct {
	cb     browser.Callbacks
	upload Uploader
	opts   Options
	log    *slog.Logger

	mu        sync.Mutex
	pages     map[int]*page
	nextIndex int
	dropped   int
	closed    bool
	stop      chan struct{}
	wg        sync.WaitGroup
}

// New returns an engine that reports to cb and draws through upload. upload
// may be nil, in which case pages are rendered but never shown.
func New(cb browser.Callbacks, upload Uploader, opts Options) (*Engine, error) {
	if cb == nil {
		return nil, errors.New("loopback: nil callbacks")
	}
	switch opts.Format {
	case browser.PixelFormatInvalid:
		opts.Format = browser.PixelFormatRGBA32
	case browser.PixelFormatRGBA32, browser.PixelFormatBGRA32:
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, opts.Format)
	}
	if opts.Homepage == "" {
		opts.Homepage = DefaultHomepage
	}
	if _, err := url.Parse(opts.Homepage); err != nil {
		return nil, fmt.Errorf("loopback: homepage: %w", err)
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = time.Second
	}
	log := opts.Logger
	if log == nil {
		log = core.Logger()
	}
	return &Engine{
		cb:     cb,
		upload: upload,
		opts:   opts,
		log:    log.With("component", "loopback"),
		pages:  make(map[int]*page),
		stop:   make(chan struct{}),
	}, nil
}

// after runs f on a new goroutine once d has elapsed, unless the engine is
// closed first. It must be called with e.mu held.
func (e *Engine) after(d time.Duration, f func()) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if d > 0 {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-t.C:
			case <-e.stop:
				return
			}
		}
		f()
	}()
}

func (e *Engine) RequestNewWindow(id browser.Identity, width, height int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	if e.dropped < e.opts.DropCreates {
		e.dropped++
		e.log.Warn("dropping window request", "window", uint64(id))
		return
	}
	e.after(e.opts.CreateLatency, func() {
		e.mu.Lock()
		if e.closed {
			e.mu.Unlock()
			return
		}
		e.nextIndex++
		p := newPage(id, e.nextIndex, width, height)
		e.pages[p.index] = p
		p.navigate(e.opts.Homepage)
		e.mu.Unlock()

		e.log.Info("window created", "window", uint64(id), "index", p.index, "width", width, "height", height)
		e.cb.OnWindowCreated(id, p.index, width, height, e.opts.Format)
	})
}

func (e *Engine) RequestWindowSizeChange(index, width, height int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.pages[index]
	if e.closed || !ok || width <= 0 || height <= 0 {
		return false
	}
	id := p.id
	e.after(e.opts.ResizeLatency, func() {
		e.mu.Lock()
		p, ok := e.pages[index]
		if !ok || e.closed {
			e.mu.Unlock()
			return
		}
		p.resize(width, height)
		e.mu.Unlock()

		e.cb.OnWindowResized(id, index, width, height)
	})
	return true
}

func (e *Engine) CloseWindow(index int) {
	e.mu.Lock()
	_, ok := e.pages[index]
	delete(e.pages, index)
	e.mu.Unlock()
	if ok {
		e.log.Info("window closed", "index", index)
	}
}

// ServiceWindowEvents delivers the page's queued browser events.
func (e *Engine) ServiceWindowEvents(index int) {
	e.mu.Lock()
	p, ok := e.pages[index]
	if !ok {
		e.mu.Unlock()
		return
	}
	id, evs := p.id, p.events
	p.events = nil
	e.mu.Unlock()

	for _, ev := range evs {
		e.cb.OnBrowserEvent(id, index, ev.kind, ev.data1, ev.data2, ev.text)
	}
}

// RequestWindowUpdate re-renders the page when it changed or the refresh
// interval elapsed, and uploads it into the window's texture.
func (e *Engine) RequestWindowUpdate(index int, dt float64) {
	defer profiler.Start("loopback.RequestWindowUpdate")()

	e.mu.Lock()
	p, ok := e.pages[index]
	if !ok || p.handle == 0 {
		e.mu.Unlock()
		return
	}
	p.sinceRender += time.Duration(dt * float64(time.Second))
	if !p.dirty && p.sinceRender < e.opts.RefreshInterval {
		e.mu.Unlock()
		return
	}
	p.render(e.opts.Background)
	pixels := p.pixels(e.opts.Format)
	handle, w, h := p.handle, p.w, p.h
	e.mu.Unlock()

	if e.upload == nil {
		return
	}
	if err := e.upload(handle, w, h, pixels); err != nil {
		e.log.Debug("upload failed", "index", index, "err", err)
	}
}

func (e *Engine) SetWindowTextureHandle(index int, handle uintptr) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p, ok := e.pages[index]; ok {
		p.handle = handle
		p.dirty = true
	}
}

// CleanupRenderer drops pending events and detaches the texture. A Shutdown
// event is queued so the host learns the renderer is gone.
func (e *Engine) CleanupRenderer(index int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p, ok := e.pages[index]; ok {
		p.events = nil
		p.handle = 0
		p.queue(browser.BrowserEventShutdown, 0, 0, "")
	}
}

func (e *Engine) withPage(index int, f func(p *page)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p, ok := e.pages[index]; ok {
		f(p)
	}
}

func (e *Engine) Navigate(index int, rawURL string) {
	e.withPage(index, func(p *page) { p.navigate(rawURL) })
}

func (e *Engine) Reload(index int)    { e.withPage(index, (*page).reload) }
func (e *Engine) Stop(index int)      { e.withPage(index, (*page).stopLoading) }
func (e *Engine) GoBack(index int)    { e.withPage(index, func(p *page) { p.step(-1) }) }
func (e *Engine) GoForward(index int) { e.withPage(index, func(p *page) { p.step(1) }) }
func (e *Engine) GoHome(index int)    { e.Navigate(index, e.opts.Homepage) }

// Windows returns the number of open windows.
func (e *Engine) Windows() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pages)
}

// Wait blocks until every pending callback has been delivered.
func (e *Engine) Wait() { e.wg.Wait() }

// Close cancels pending callbacks and refuses further requests.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.stop)
	e.pages = make(map[int]*page)
	e.mu.Unlock()
	e.wg.Wait()
}
