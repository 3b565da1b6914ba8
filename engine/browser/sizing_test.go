package browser_test

import (
	"math"
	"testing"

	"github.com/hubastard/webgrove/engine/browser"
)

func TestDisplayHeight(t *testing.T) {
	tests := []struct {
		name   string
		width  float32
		pw, ph int
		want   float32
	}{
		{"hd at default width", 3.0, 1920, 1080, 1.6875},
		{"square", 2.5, 512, 512, 2.5},
		{"portrait", 1, 1080, 1920, 1920.0 / 1080.0},
		{"zero height", 3, 100, 0, 0},
		{"after resize", 3, 1280, 720, 1.6875},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := browser.DisplayHeight(tt.width, tt.pw, tt.ph)
			if math.Abs(float64(got-tt.want)) > 1e-5 {
				t.Fatalf("DisplayHeight(%v, %d, %d) = %v, want %v", tt.width, tt.pw, tt.ph, got, tt.want)
			}
		})
	}
}

func TestDisplayHeight_PreservesAspect(t *testing.T) {
	for pw := 1; pw <= 4096; pw = pw*3 + 7 {
		for ph := 1; ph <= 4096; ph = ph*5 + 3 {
			dw := float32(pw%11) + 0.5
			got := browser.DisplayHeight(dw, pw, ph)
			want := float64(dw) * float64(ph) / float64(pw)
			if math.Abs(float64(got)-want) > want*1e-6 {
				t.Fatalf("DisplayHeight(%v, %d, %d) = %v, want %v", dw, pw, ph, got, want)
			}
		}
	}
}

func TestDisplayHeight_PanicsOnBadPixelSize(t *testing.T) {
	for _, tc := range []struct{ pw, ph int }{{0, 100}, {-5, 100}, {100, -1}} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic for %dx%d", tc.pw, tc.ph)
				}
			}()
			browser.DisplayHeight(3, tc.pw, tc.ph)
		}()
	}
}

func TestPixelFormat_TextureMapping(t *testing.T) {
	tests := []struct {
		f    browser.PixelFormat
		name string
		bpp  int
		ok   bool
	}{
		{browser.PixelFormatInvalid, "Invalid", 0, false},
		{browser.PixelFormatRGBA32, "RGBA32", 4, true},
		{browser.PixelFormatBGRA32, "BGRA32", 4, true},
		{browser.PixelFormatABGR32, "ABGR32", 4, true},
		{browser.PixelFormatRGB24, "RGB24", 3, true},
		{browser.PixelFormatRGBA5551, "RGBA5551", 2, true},
		{browser.PixelFormatRGB565, "RGB565", 2, true},
		{browser.PixelFormat(42), "PixelFormat(42)", 0, false},
	}
	for _, tt := range tests {
		if got := tt.f.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
		if got := tt.f.BytesPerPixel(); got != tt.bpp {
			t.Errorf("%v.BytesPerPixel() = %d, want %d", tt.f, got, tt.bpp)
		}
		if _, ok := tt.f.TextureFormat(); ok != tt.ok {
			t.Errorf("%v.TextureFormat() ok = %v, want %v", tt.f, ok, tt.ok)
		}
	}
}

func TestBrowserEventKind_String(t *testing.T) {
	if got := browser.BrowserEventURLChanged.String(); got != "URLChanged" {
		t.Fatalf("String() = %q", got)
	}
	if got := browser.BrowserEventKind(99).String(); got != "BrowserEventKind(99)" {
		t.Fatalf("String() = %q", got)
	}
}
