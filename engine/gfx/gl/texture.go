package glbackend

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/hubastard/webgrove/engine/core"
)

type glTexture struct {
	id     uint32
	w, h   int
	format core.TextureFormat
	layout pixelLayout
}

func (t *glTexture) Width() int                 { return t.w }
func (t *glTexture) Height() int                { return t.h }
func (t *glTexture) Format() core.TextureFormat { return t.format }
func (t *glTexture) NativeHandle() uintptr      { return uintptr(t.id) }

// pixelLayout is how a core.TextureFormat is described to glTexImage2D.
type pixelLayout struct {
	internal int32
	format   uint32
	xtype    uint32
}

// layoutFor maps byte-order formats onto GL. ARGB and ABGR use the packed
// 8_8_8_8 type so that the little-endian word order lines up with BGRA/RGBA.
func layoutFor(f core.TextureFormat) (pixelLayout, bool) {
	switch f {
	case core.TextureRGBA8:
		return pixelLayout{gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE}, true
	case core.TextureBGRA8:
		return pixelLayout{gl.RGBA8, gl.BGRA, gl.UNSIGNED_BYTE}, true
	case core.TextureARGB8:
		return pixelLayout{gl.RGBA8, gl.BGRA, gl.UNSIGNED_INT_8_8_8_8}, true
	case core.TextureABGR8:
		return pixelLayout{gl.RGBA8, gl.RGBA, gl.UNSIGNED_INT_8_8_8_8}, true
	case core.TextureRGB8:
		return pixelLayout{gl.RGB8, gl.RGB, gl.UNSIGNED_BYTE}, true
	case core.TextureBGR8:
		return pixelLayout{gl.RGB8, gl.BGR, gl.UNSIGNED_BYTE}, true
	case core.TextureRGBA4:
		return pixelLayout{gl.RGBA4, gl.RGBA, gl.UNSIGNED_SHORT_4_4_4_4}, true
	case core.TextureRGB5A1:
		return pixelLayout{gl.RGB5_A1, gl.RGBA, gl.UNSIGNED_SHORT_5_5_5_1}, true
	case core.TextureRGB565:
		return pixelLayout{gl.RGB8, gl.RGB, gl.UNSIGNED_SHORT_5_6_5}, true
	default:
		return pixelLayout{}, false
	}
}

func filterMode(s string) int32 {
	if s == "nearest" {
		return gl.NEAREST
	}
	return gl.LINEAR
}

func wrapMode(s string) int32 {
	if s == "repeat" {
		return gl.REPEAT
	}
	return gl.CLAMP_TO_EDGE
}

func pixelPtr(pixels []byte) unsafe.Pointer {
	if len(pixels) == 0 {
		return nil
	}
	return gl.Ptr(pixels)
}

func (r *RendererGL) CreateTexture(desc core.TextureDesc) (core.Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("glbackend: invalid texture size %dx%d", desc.Width, desc.Height)
	}
	layout, ok := layoutFor(desc.Format)
	if !ok {
		return nil, fmt.Errorf("glbackend: unsupported texture format %d", desc.Format)
	}
	if desc.Pixels != nil {
		if want := desc.Width * desc.Height * desc.Format.BytesPerPixel(); len(desc.Pixels) != want {
			return nil, fmt.Errorf("glbackend: %d bytes for %dx%d texture, want %d", len(desc.Pixels), desc.Width, desc.Height, want)
		}
	}

	var id uint32
	gl.GenTextures(1, &id)
	if id == 0 {
		return nil, fmt.Errorf("glbackend: glGenTextures failed")
	}
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filterMode(desc.MinFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filterMode(desc.MagFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrapMode(desc.WrapU))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrapMode(desc.WrapV))
	gl.TexImage2D(gl.TEXTURE_2D, 0, layout.internal, int32(desc.Width), int32(desc.Height), 0,
		layout.format, layout.xtype, pixelPtr(desc.Pixels))
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if e := gl.GetError(); e != gl.NO_ERROR {
		gl.DeleteTextures(1, &id)
		return nil, fmt.Errorf("glbackend: glTexImage2D %dx%d: error 0x%x", desc.Width, desc.Height, e)
	}

	t := &glTexture{id: id, w: desc.Width, h: desc.Height, format: desc.Format, layout: layout}
	r.textures[id] = t
	return t, nil
}

func (r *RendererGL) UpdateTexture(tex core.Texture, pixels []byte) error {
	t, ok := tex.(*glTexture)
	if !ok {
		return fmt.Errorf("glbackend: foreign texture %T", tex)
	}
	if _, live := r.textures[t.id]; !live {
		return fmt.Errorf("glbackend: texture %d deleted", t.id)
	}
	if want := t.w * t.h * t.format.BytesPerPixel(); len(pixels) != want {
		return fmt.Errorf("glbackend: %d bytes for %dx%d texture, want %d", len(pixels), t.w, t.h, want)
	}
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(t.w), int32(t.h), t.layout.format, t.layout.xtype, gl.Ptr(pixels))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return nil
}

func (r *RendererGL) DeleteTexture(tex core.Texture) {
	t, ok := tex.(*glTexture)
	if !ok || t.id == 0 {
		return
	}
	if _, live := r.textures[t.id]; !live {
		return
	}
	delete(r.textures, t.id)
	gl.DeleteTextures(1, &t.id)
	t.id = 0
}
