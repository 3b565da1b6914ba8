// Package glbackend implements core.Renderer on OpenGL 3.3 core.
package glbackend

import (
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/hubastard/webgrove/engine/core"
)

// RendererGL must be created and used on the thread that owns the GL context.
type RendererGL struct {
	win       core.Window
	pipelines *pipelineCache
	textures  map[uint32]*glTexture
	meshes    map[*glMesh]struct{}
	boundProg uint32
}

func NewRendererGL(win core.Window, _ core.Config) (*RendererGL, error) {
	r := &RendererGL{win: win}
	if err := r.Init(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RendererGL) Init() error {
	pc, err := newPipelineCache(pipelineCacheSize)
	if err != nil {
		return fmt.Errorf("glbackend: %w", err)
	}
	r.pipelines = pc
	r.textures = make(map[uint32]*glTexture)
	r.meshes = make(map[*glMesh]struct{})

	// Browser frames arrive tightly packed, including 3-byte formats.
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.Disable(gl.CULL_FACE)

	core.Logger().Info("gl renderer ready",
		"vendor", r.GPUVendor(), "renderer", r.GPURenderer(), "version", r.GPUVersion())
	return nil
}

func (r *RendererGL) Shutdown() {
	for m := range r.meshes {
		r.DeleteMesh(m)
	}
	for _, t := range r.textures {
		r.DeleteTexture(t)
	}
	r.pipelines.purge()
}

func (r *RendererGL) Resize(w, h int) {
	gl.Viewport(0, 0, int32(w), int32(h))
}

func (r *RendererGL) Clear(rf, gf, bf, af float32) {
	gl.ClearColor(rf, gf, bf, af)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (r *RendererGL) GPUVendor() string   { return gl.GoStr(gl.GetString(gl.VENDOR)) }
func (r *RendererGL) GPURenderer() string { return gl.GoStr(gl.GetString(gl.RENDERER)) }
func (r *RendererGL) GPUVersion() string  { return gl.GoStr(gl.GetString(gl.VERSION)) }
