package browser

import (
	"fmt"

	"github.com/hubastard/webgrove/engine/core"
)

// Identity names a Window for its whole life. The zero Identity is never issued.
type Identity uint64

// PixelFormat is the pixel layout reported by the native engine. Values match
// the native format ids.
type PixelFormat int

const (
	PixelFormatInvalid PixelFormat = iota
	PixelFormatRGBA32
	PixelFormatBGRA32
	PixelFormatARGB32
	PixelFormatABGR32
	PixelFormatRGB24
	PixelFormatBGR24
	PixelFormatRGBA4444
	PixelFormatRGBA5551
	PixelFormatRGB565
)

var pixelFormatNames = [...]string{
	PixelFormatInvalid:  "Invalid",
	PixelFormatRGBA32:   "RGBA32",
	PixelFormatBGRA32:   "BGRA32",
	PixelFormatARGB32:   "ARGB32",
	PixelFormatABGR32:   "ABGR32",
	PixelFormatRGB24:    "RGB24",
	PixelFormatBGR24:    "BGR24",
	PixelFormatRGBA4444: "RGBA4444",
	PixelFormatRGBA5551: "RGBA5551",
	PixelFormatRGB565:   "RGB565",
}

func (f PixelFormat) String() string {
	if f >= 0 && int(f) < len(pixelFormatNames) {
		return pixelFormatNames[f]
	}
	return fmt.Sprintf("PixelFormat(%d)", int(f))
}

// BytesPerPixel returns 0 for formats the engine does not know.
func (f PixelFormat) BytesPerPixel() int {
	tf, _ := f.TextureFormat()
	return tf.BytesPerPixel()
}

// TextureFormat maps f to the renderer's texture format.
func (f PixelFormat) TextureFormat() (core.TextureFormat, bool) {
	switch f {
	case PixelFormatRGBA32:
		return core.TextureRGBA8, true
	case PixelFormatBGRA32:
		return core.TextureBGRA8, true
	case PixelFormatARGB32:
		return core.TextureARGB8, true
	case PixelFormatABGR32:
		return core.TextureABGR8, true
	case PixelFormatRGB24:
		return core.TextureRGB8, true
	case PixelFormatBGR24:
		return core.TextureBGR8, true
	case PixelFormatRGBA4444:
		return core.TextureRGBA4, true
	case PixelFormatRGBA5551:
		return core.TextureRGB5A1, true
	case PixelFormatRGB565:
		return core.TextureRGB565, true
	default:
		return core.TextureFormatUnknown, false
	}
}

// BrowserEventKind mirrors the native browser event ids.
type BrowserEventKind int

const (
	BrowserEventNOP BrowserEventKind = iota
	BrowserEventShutdown
	// Data1: 0 load ended, 1 load started.
	BrowserEventLoadStateChanged
	// Data1: 0 will enter, 1 did enter, 2 will exit, 3 did exit.
	BrowserEventFullscreenStateChanged
	// Data1: 0 hide, 1 show.
	BrowserEventIMEStateChanged
	// Data1: can go back, Data2: can go forward.
	BrowserEventHistoryChanged
	// Text carries the new title.
	BrowserEventTitleChanged
	// Text carries the new URL.
	BrowserEventURLChanged
)

var browserEventNames = [...]string{
	BrowserEventNOP:                    "NOP",
	BrowserEventShutdown:               "Shutdown",
	BrowserEventLoadStateChanged:       "LoadStateChanged",
	BrowserEventFullscreenStateChanged: "FullscreenStateChanged",
	BrowserEventIMEStateChanged:        "IMEStateChanged",
	BrowserEventHistoryChanged:         "HistoryChanged",
	BrowserEventTitleChanged:           "TitleChanged",
	BrowserEventURLChanged:             "URLChanged",
}

func (k BrowserEventKind) String() string {
	if k >= 0 && int(k) < len(browserEventNames) {
		return browserEventNames[k]
	}
	return fmt.Sprintf("BrowserEventKind(%d)", int(k))
}

// NativeEngine is the out-of-process (or in-process) browser engine that owns
// the actual browser windows. Window indices are assigned by the engine; 0
// never names a window.
//
// All methods are called from the host thread. Results of RequestNewWindow and
// RequestWindowSizeChange arrive later through Callbacks, possibly from
// another goroutine.
type NativeEngine interface {
	RequestNewWindow(id Identity, width, height int)
	RequestWindowSizeChange(index, width, height int) bool
	CloseWindow(index int)
	ServiceWindowEvents(index int)
	RequestWindowUpdate(index int, dt float64)
	SetWindowTextureHandle(index int, handle uintptr)
	CleanupRenderer(index int)
}

// Navigator is implemented by engines that support page navigation.
type Navigator interface {
	Navigate(index int, url string)
	Reload(index int)
	Stop(index int)
	GoBack(index int)
	GoForward(index int)
	GoHome(index int)
}

// Callbacks receives native engine notifications. Implementations must be
// safe for use from any goroutine.
type Callbacks interface {
	OnWindowCreated(id Identity, index, width, height int, format PixelFormat)
	OnWindowResized(id Identity, index, width, height int)
	OnBrowserEvent(id Identity, index int, kind BrowserEventKind, data1, data2 int, text string)
}
