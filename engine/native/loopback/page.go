package loopback

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"net/url"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/hubastard/webgrove/engine/browser"
	"github.com/hubastard/webgrove/engine/colors"
)

type queuedEvent struct {
	kind         browser.BrowserEventKind
	data1, data2 int
	text         string
}

// page is the state behind one native window. All fields are guarded by
// Engine.mu.
type page struct {
	id    browser.Identity
	index int
	w, h  int
	img   *image.RGBA

	handle      uintptr
	dirty       bool
	sinceRender time.Duration
	frames      int

	history []string
	pos     int
	title   string

	events []queuedEvent
}

func newPage(id browser.Identity, index, w, h int) *page {
	return &page{
		id:    id,
		index: index,
		w:     w,
		h:     h,
		img:   image.NewRGBA(image.Rect(0, 0, w, h)),
		dirty: true,
		pos:   -1,
	}
}

func (p *page) queue(kind browser.BrowserEventKind, data1, data2 int, text string) {
	p.events = append(p.events, queuedEvent{kind: kind, data1: data1, data2: data2, text: text})
}

func (p *page) url() string {
	if p.pos < 0 {
		return ""
	}
	return p.history[p.pos]
}

// titleFor uses the host name of u, or u itself when it has none.
func titleFor(u string) string {
	if pu, err := url.Parse(u); err == nil && pu.Host != "" {
		return pu.Host
	}
	return u
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// show loads the current history entry.
func (p *page) show() {
	u := p.url()
	p.title = titleFor(u)
	p.queue(browser.BrowserEventLoadStateChanged, 1, 0, "")
	p.queue(browser.BrowserEventURLChanged, 0, 0, u)
	p.queue(browser.BrowserEventTitleChanged, 0, 0, p.title)
	p.queue(browser.BrowserEventHistoryChanged, boolInt(p.pos > 0), boolInt(p.pos < len(p.history)-1), "")
	p.queue(browser.BrowserEventLoadStateChanged, 0, 0, "")
	p.dirty = true
}

func (p *page) navigate(u string) {
	p.history = append(p.history[:p.pos+1], u)
	p.pos = len(p.history) - 1
	p.show()
}

// step moves through history by delta entries, ignoring moves past either end.
func (p *page) step(delta int) {
	next := p.pos + delta
	if next < 0 || next >= len(p.history) {
		return
	}
	p.pos = next
	p.show()
}

func (p *page) reload() {
	p.queue(browser.BrowserEventLoadStateChanged, 1, 0, "")
	p.queue(browser.BrowserEventLoadStateChanged, 0, 0, "")
	p.dirty = true
}

func (p *page) stopLoading() {
	p.queue(browser.BrowserEventLoadStateChanged, 0, 0, "")
}

// resize reallocates the page image. The old texture handle no longer fits,
// so nothing is uploaded until the host sets a new one.
func (p *page) resize(w, h int) {
	p.w, p.h = w, h
	p.img = image.NewRGBA(image.Rect(0, 0, w, h))
	p.handle = 0
	p.dirty = true
}

var (
	pageBackground = colors.DarkGray.RGBA8()
	pageAccent     = colors.Cyan.RGBA8()
)

func (p *page) render(bg image.Image) {
	p.frames++
	p.dirty = false
	p.sinceRender = 0

	b := p.img.Bounds()
	draw.Draw(p.img, b, image.NewUniform(pageBackground), image.Point{}, draw.Src)
	if bg != nil {
		xdraw.ApproxBiLinear.Scale(p.img, b, bg, bg.Bounds(), draw.Over, nil)
	}

	// header bar
	bar := image.Rect(0, 0, p.w, min(p.h, 28))
	draw.Draw(p.img, bar, image.NewUniform(pageAccent), image.Point{}, draw.Src)

	d := font.Drawer{
		Dst:  p.img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(8, 19),
	}
	d.DrawString(p.title)

	d.Src = image.NewUniform(color.White)
	lines := []string{
		p.url(),
		fmt.Sprintf("window %d  index %d  %dx%d", p.id, p.index, p.w, p.h),
		fmt.Sprintf("frame %d", p.frames),
	}
	for i, line := range lines {
		d.Dot = fixed.P(8, 48+i*18)
		d.DrawString(line)
	}
}

// pixels returns a copy of the page in the requested byte order.
func (p *page) pixels(format browser.PixelFormat) []byte {
	out := make([]byte, len(p.img.Pix))
	copy(out, p.img.Pix)
	if format == browser.PixelFormatBGRA32 {
		for i := 0; i+3 < len(out); i += 4 {
			out[i], out[i+2] = out[i+2], out[i]
		}
	}
	return out
}
