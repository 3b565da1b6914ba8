// Package surfaces implements browser.SurfaceFactory on top of a
// core.Renderer. Surfaces are drawn as textured quads by Draw.
package surfaces

import (
	"errors"
	"fmt"

	"github.com/hubastard/webgrove/engine/browser"
	"github.com/hubastard/webgrove/engine/colors"
	"github.com/hubastard/webgrove/engine/core"
	"github.com/hubastard/webgrove/engine/gfx/renderer2d"
	"github.com/hubastard/webgrove/engine/scene"
)

var (
	// ErrUnsupportedFormat is returned for pixel formats the renderer cannot store.
	ErrUnsupportedFormat = errors.New("surfaces: unsupported pixel format")
	// ErrTextureReleased is returned when uploading to a texture that has been released.
	ErrTextureReleased = errors.New("surfaces: texture released")
)

// VideoSurface is a quad in the scene that shows a texture.
type VideoSurface struct {
	node     *scene.Node
	tex      core.Texture
	u0, v0   float32
	u1, v1   float32
	width    float32
	height   float32
	collider browser.ColliderKind
	released bool
}

func (s *VideoSurface) Node() *scene.Node              { return s.node }
func (s *VideoSurface) Texture() core.Texture          { return s.tex }
func (s *VideoSurface) Size() (float32, float32)       { return s.width, s.height }
func (s *VideoSurface) Collider() browser.ColliderKind { return s.collider }

// UV returns the texture coordinates of the top-left and bottom-right corners.
func (s *VideoSurface) UV() (u0, v0, u1, v1 float32) { return s.u0, s.v0, s.u1, s.v1 }

func (s *VideoSurface) configure(tex core.Texture, p browser.SurfaceParams) {
	s.tex = tex
	s.u0, s.u1 = 0, p.UScale
	s.v0, s.v1 = 0, p.VScale
	if p.FlipX {
		s.u0, s.u1 = s.u1, s.u0
	}
	if p.FlipY {
		s.v0, s.v1 = s.v1, s.v0
	}
	s.width, s.height = p.Width, p.Height
	s.collider = p.Collider
}

// Contains reports whether the world-space point (x, y) lies on the surface's
// collider. Surfaces without a collider never contain a point.
func (s *VideoSurface) Contains(x, y float32) bool {
	if s.collider == browser.ColliderNone || !s.node.ActiveInHierarchy() {
		return false
	}
	p := s.node.WorldPosition()
	return x >= p[0]-s.width/2 && x <= p[0]+s.width/2 &&
		y >= p[1]-s.height/2 && y <= p[1]+s.height/2
}

// Factory owns every texture and surface it creates. Deferred releases wait
// for Collect, which the host calls once the frame has been presented.
type Factory struct {
	r        core.Renderer
	live     []*VideoSurface
	textures map[uintptr]core.Texture
	deferred []core.Texture
}

func NewFactory(r core.Renderer) *Factory {
	return &Factory{r: r, textures: make(map[uintptr]core.Texture)}
}

func (f *Factory) CreateTexture(width, height int, format browser.PixelFormat) (core.Texture, error) {
	tf, ok := format.TextureFormat()
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	tex, err := f.r.CreateTexture(core.TextureDesc{
		Width:     width,
		Height:    height,
		Format:    tf,
		MinFilter: "linear",
		MagFilter: "linear",
		WrapU:     "clamp",
		WrapV:     "clamp",
	})
	if err != nil {
		return nil, fmt.Errorf("create %dx%d %v texture: %w", width, height, format, err)
	}
	f.textures[tex.NativeHandle()] = tex
	return tex, nil
}

func (f *Factory) ReleaseTexture(tex core.Texture, mode browser.ReleaseMode) {
	if tex == nil {
		return
	}
	delete(f.textures, tex.NativeHandle())
	if mode == browser.ReleaseImmediate {
		f.r.DeleteTexture(tex)
		return
	}
	f.deferred = append(f.deferred, tex)
}

func (f *Factory) CreateSurface(tex core.Texture, p browser.SurfaceParams) browser.Surface {
	s := &VideoSurface{node: scene.NewNode("video-surface")}
	s.node.Owner = s
	s.configure(tex, p)
	f.live = append(f.live, s)
	return s
}

func (f *Factory) ConfigureSurface(s browser.Surface, tex core.Texture, p browser.SurfaceParams) {
	vs, ok := s.(*VideoSurface)
	if !ok || vs.released {
		return
	}
	vs.configure(tex, p)
}

// ReleaseSurface stops drawing s and detaches its node. Surfaces hold no GPU
// objects of their own, so both modes act at once.
func (f *Factory) ReleaseSurface(s browser.Surface, _ browser.ReleaseMode) {
	vs, ok := s.(*VideoSurface)
	if !ok || vs.released {
		return
	}
	vs.released = true
	vs.tex = nil
	vs.node.Detach()
	for i, k := range f.live {
		if k == vs {
			f.live = append(f.live[:i], f.live[i+1:]...)
			break
		}
	}
}

// Collect deletes textures whose release was deferred and reports how many.
func (f *Factory) Collect() int {
	n := len(f.deferred)
	for i, tex := range f.deferred {
		f.r.DeleteTexture(tex)
		f.deferred[i] = nil
	}
	f.deferred = f.deferred[:0]
	if n > 0 {
		core.Logger().Debug("surfaces: collected textures", "count", n)
	}
	return n
}

// Upload replaces the pixels of the live texture named by handle.
func (f *Factory) Upload(handle uintptr, width, height int, pixels []byte) error {
	tex, ok := f.textures[handle]
	if !ok {
		return fmt.Errorf("%w: handle %d", ErrTextureReleased, handle)
	}
	if tex.Width() != width || tex.Height() != height {
		return fmt.Errorf("surfaces: upload %dx%d into %dx%d texture", width, height, tex.Width(), tex.Height())
	}
	if want := width * height * tex.Format().BytesPerPixel(); len(pixels) != want {
		return fmt.Errorf("surfaces: upload of %d bytes, want %d", len(pixels), want)
	}
	return f.r.UpdateTexture(tex, pixels)
}

// Live returns the surfaces that have not been released, in creation order.
func (f *Factory) Live() []*VideoSurface { return f.live }

// PendingReleases is the number of textures waiting for Collect.
func (f *Factory) PendingReleases() int { return len(f.deferred) }

// SurfaceAt returns the topmost drawn surface whose collider contains the
// world-space point, or nil.
func (f *Factory) SurfaceAt(x, y float32) *VideoSurface {
	for i := len(f.live) - 1; i >= 0; i-- {
		if f.live[i].Contains(x, y) {
			return f.live[i]
		}
	}
	return nil
}

// WindowAt returns the browser window of m whose surface is under the
// world-space point, or nil.
func (f *Factory) WindowAt(m *browser.Manager, x, y float32) *browser.Window {
	s := f.SurfaceAt(x, y)
	if s == nil {
		return nil
	}
	return m.WindowForNode(s.node)
}

// Draw submits every visible surface to r2d. World units are scaled by
// pixelsPerUnit. Surfaces without a texture draw as magenta.
func (f *Factory) Draw(r2d *renderer2d.Renderer2D, pixelsPerUnit float32) {
	for _, s := range f.live {
		if !s.node.ActiveInHierarchy() {
			continue
		}
		p := s.node.WorldPosition()
		x, y := p[0]*pixelsPerUnit, p[1]*pixelsPerUnit
		w, h := s.width*pixelsPerUnit, s.height*pixelsPerUnit
		if s.tex == nil {
			r2d.DrawQuad(x, y, w, h, colors.Magenta, 0)
			continue
		}
		r2d.DrawTexturedQuadUV(x, y, w, h, s.tex, colors.White, 0, s.u0, s.v0, s.u1, s.v1)
	}
}
