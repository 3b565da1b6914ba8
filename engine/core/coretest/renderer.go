// Package coretest provides in-memory core.Renderer and core.Window
// implementations for tests that run without a GL context.
package coretest

import (
	"errors"
	"fmt"

	"github.com/hubastard/webgrove/engine/core"
)

// ErrTextureAllocation is returned by CreateTexture while FailTextures is set.
var ErrTextureAllocation = errors.New("coretest: texture allocation failed")

// Texture is the texture type handed out by Renderer.
type Texture struct {
	ID      uintptr
	W, H    int
	Fmt     core.TextureFormat
	Pixels  []byte
	Deleted bool
}

func (t *Texture) Width() int                 { return t.W }
func (t *Texture) Height() int                { return t.H }
func (t *Texture) Format() core.TextureFormat { return t.Fmt }
func (t *Texture) NativeHandle() uintptr      { return t.ID }

type Pipeline struct{ Desc core.PipelineDesc }

type Mesh struct {
	Vertices []float32
	Indices  []uint32
	Deleted  bool
}

// Renderer records every call so tests can assert on resource lifetimes.
type Renderer struct {
	FailTextures bool

	Textures  []*Texture
	Deleted   []*Texture
	Pipelines []*Pipeline
	Meshes    []*Mesh
	Draws     []core.DrawCmd
	Clears    int
	Width     int
	Height    int
	ShutDown  bool

	nextID uintptr
}

func (r *Renderer) Init() error              { return nil }
func (r *Renderer) Resize(w, h int)          { r.Width, r.Height = w, h }
func (r *Renderer) Clear(_, _, _, _ float32) { r.Clears++ }
func (r *Renderer) Shutdown()                { r.ShutDown = true }

func (r *Renderer) CreateTexture(desc core.TextureDesc) (core.Texture, error) {
	if r.FailTextures {
		return nil, ErrTextureAllocation
	}
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("coretest: invalid texture size %dx%d", desc.Width, desc.Height)
	}
	r.nextID++
	t := &Texture{ID: r.nextID, W: desc.Width, H: desc.Height, Fmt: desc.Format}
	if desc.Pixels != nil {
		t.Pixels = append([]byte(nil), desc.Pixels...)
	}
	r.Textures = append(r.Textures, t)
	return t, nil
}

func (r *Renderer) UpdateTexture(t core.Texture, pixels []byte) error {
	ft, ok := t.(*Texture)
	if !ok {
		return fmt.Errorf("coretest: foreign texture %T", t)
	}
	if ft.Deleted {
		return fmt.Errorf("coretest: texture %d deleted", ft.ID)
	}
	ft.Pixels = append(ft.Pixels[:0], pixels...)
	return nil
}

func (r *Renderer) DeleteTexture(t core.Texture) {
	ft, ok := t.(*Texture)
	if !ok {
		return
	}
	ft.Deleted = true
	r.Deleted = append(r.Deleted, ft)
}

// Live returns the textures that have been created and not deleted.
func (r *Renderer) Live() []*Texture {
	var out []*Texture
	for _, t := range r.Textures {
		if !t.Deleted {
			out = append(out, t)
		}
	}
	return out
}

func (r *Renderer) CreatePipeline(desc core.PipelineDesc) (core.Pipeline, error) {
	p := &Pipeline{Desc: desc}
	r.Pipelines = append(r.Pipelines, p)
	return p, nil
}

func (r *Renderer) CreateMesh(desc core.MeshDesc) (core.Mesh, error) {
	m := &Mesh{Vertices: desc.Vertices, Indices: desc.Indices}
	r.Meshes = append(r.Meshes, m)
	return m, nil
}

func (r *Renderer) UpdateMesh(m core.Mesh, vertices []float32, indices []uint32) error {
	fm, ok := m.(*Mesh)
	if !ok {
		return fmt.Errorf("coretest: foreign mesh %T", m)
	}
	fm.Vertices = append(fm.Vertices[:0], vertices...)
	fm.Indices = append(fm.Indices[:0], indices...)
	return nil
}

func (r *Renderer) DeleteMesh(m core.Mesh) {
	if fm, ok := m.(*Mesh); ok {
		fm.Deleted = true
	}
}

func (r *Renderer) Draw(cmd core.DrawCmd) {
	samplers := make(map[string]core.Texture, len(cmd.Samplers))
	for k, v := range cmd.Samplers {
		samplers[k] = v
	}
	cmd.Samplers = samplers
	r.Draws = append(r.Draws, cmd)
}

func (r *Renderer) GPUVendor() string   { return "coretest" }
func (r *Renderer) GPURenderer() string { return "in-memory" }
func (r *Renderer) GPUVersion() string  { return "0" }
