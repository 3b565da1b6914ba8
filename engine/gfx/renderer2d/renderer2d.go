// Package renderer2d batches textured quads into as few draw calls as the
// texture slot limit allows.
package renderer2d

import (
	"math"
	"strconv"

	"github.com/hubastard/webgrove/engine/colors"
	"github.com/hubastard/webgrove/engine/core"
)

// MaxTextureSlots is the number of samplers bound per batch. The fragment
// shader selects among them by index.
const MaxTextureSlots = 8

// Vertex: pos2 + color4 + uv2 + texIndex1 => 9 floats
const (
	vStride      = 9
	vertsPerQuad = 4
	indsPerQuad  = 6
)

var quadVertexLayout = core.VertexLayout{
	Stride: vStride * 4,
	Attributes: []core.VertexAttrib{
		{Location: 0, Size: 2, Type: core.AttribFloat32, Offset: 0},     // pos
		{Location: 1, Size: 4, Type: core.AttribFloat32, Offset: 2 * 4}, // color
		{Location: 2, Size: 2, Type: core.AttribFloat32, Offset: 6 * 4}, // uv
		{Location: 3, Size: 1, Type: core.AttribFloat32, Offset: 8 * 4}, // texIndex
	},
}

// Statistics captures the counts generated during a renderer frame.
type Statistics struct {
	DrawCalls    int
	QuadCount    int
	TextureCount int
}

func (s Statistics) TotalVertexCount() int { return s.QuadCount * vertsPerQuad }
func (s Statistics) TotalIndexCount() int  { return s.QuadCount * indsPerQuad }

type Renderer2D struct {
	r      core.Renderer
	pipe   core.Pipeline
	white  core.Texture // 1x1 white, always slot 0
	texArr [MaxTextureSlots]core.Texture
	texCnt int

	verts     []float32
	inds      []uint32
	quadCount int
	maxQuads  int

	mesh     core.Mesh
	samplers map[string]core.Texture
	uniforms map[string]any
	texNames [MaxTextureSlots]string

	vp    [16]float32
	stats Statistics
}

// New compiles the quad pipeline and allocates a mesh for maxQuads quads.
func New(r core.Renderer, vertSrc, fragSrc string, maxQuads int) (*Renderer2D, error) {
	if maxQuads <= 0 {
		maxQuads = 10000
	}
	pipe, err := r.CreatePipeline(core.PipelineDesc{
		VertexSource:   vertSrc,
		FragmentSource: fragSrc,
		Blend:          true,
	})
	if err != nil {
		return nil, err
	}

	white, err := r.CreateTexture(core.TextureDesc{
		Width: 1, Height: 1,
		Format:    core.TextureRGBA8,
		Pixels:    []byte{255, 255, 255, 255},
		MinFilter: "nearest", MagFilter: "nearest",
		WrapU: "clamp", WrapV: "clamp",
	})
	if err != nil {
		return nil, err
	}

	mesh, err := r.CreateMesh(core.MeshDesc{
		Vertices: make([]float32, maxQuads*vertsPerQuad*vStride),
		Indices:  make([]uint32, maxQuads*indsPerQuad),
		Layout:   quadVertexLayout,
		Dynamic:  true,
	})
	if err != nil {
		r.DeleteTexture(white)
		return nil, err
	}

	rd := &Renderer2D{
		r: r, pipe: pipe, white: white, mesh: mesh, maxQuads: maxQuads,
		verts:    make([]float32, 0, maxQuads*vertsPerQuad*vStride),
		inds:     make([]uint32, 0, maxQuads*indsPerQuad),
		samplers: make(map[string]core.Texture, MaxTextureSlots),
		uniforms: make(map[string]any, 1),
	}
	for i := range rd.texNames {
		rd.texNames[i] = "uTex" + strconv.Itoa(i)
	}
	rd.resetBatch()
	return rd, nil
}

// Release frees the mesh and the white texture.
func (rd *Renderer2D) Release() {
	rd.r.DeleteMesh(rd.mesh)
	rd.r.DeleteTexture(rd.white)
}

func (rd *Renderer2D) BeginScene(vp [16]float32) {
	rd.vp = vp
	rd.stats = Statistics{}
	rd.resetBatch()
}

func (rd *Renderer2D) EndScene()         { rd.flush() }
func (rd *Renderer2D) Stats() Statistics { return rd.stats }

// DrawQuad draws a solid quad centred on (x, y).
func (rd *Renderer2D) DrawQuad(x, y, w, h float32, color colors.Color, rotationRad float32) {
	rd.ensureQuadCapacity()
	rd.drawQuadInternal(x, y, w, h, color, rotationRad, rd.texSlot(rd.white), 0, 0, 1, 1)
}

func (rd *Renderer2D) DrawTexturedQuad(x, y, w, h float32, tex core.Texture, tint colors.Color, rotationRad float32) {
	rd.DrawTexturedQuadUV(x, y, w, h, tex, tint, rotationRad, 0, 0, 1, 1)
}

// DrawTexturedQuadUV maps (u0, v0) to the top-left corner and (u1, v1) to the
// bottom-right corner.
func (rd *Renderer2D) DrawTexturedQuadUV(x, y, w, h float32, tex core.Texture, tint colors.Color, rotationRad float32, u0, v0, u1, v1 float32) {
	rd.ensureQuadCapacity()
	slot := rd.texSlot(tex)
	rd.drawQuadInternal(x, y, w, h, tint, rotationRad, slot, u0, v0, u1, v1)
}

func (rd *Renderer2D) texSlot(t core.Texture) float32 {
	for i := 0; i < rd.texCnt; i++ {
		if rd.texArr[i] == t {
			return float32(i)
		}
	}
	if rd.texCnt >= MaxTextureSlots {
		rd.flush()
	}
	rd.texArr[rd.texCnt] = t
	rd.texCnt++
	if rd.texCnt > rd.stats.TextureCount {
		rd.stats.TextureCount = rd.texCnt
	}
	return float32(rd.texCnt - 1)
}

func (rd *Renderer2D) drawQuadInternal(x, y, w, h float32, color colors.Color, rotationRad float32, texIndex float32, u0, v0, u1, v1 float32) {
	halfW := w * 0.5
	halfH := h * 0.5

	// TL, TR, BL, BR. World Y points up.
	corners := [4][4]float32{
		{-halfW, halfH, u0, v0},
		{halfW, halfH, u1, v0},
		{-halfW, -halfH, u0, v1},
		{halfW, -halfH, u1, v1},
	}
	c, s := float32(math.Cos(float64(rotationRad))), float32(math.Sin(float64(rotationRad)))

	start := uint32(len(rd.verts) / vStride)
	for _, p := range corners {
		rx := p[0]*c - p[1]*s + x
		ry := p[0]*s + p[1]*c + y
		rd.verts = append(rd.verts,
			rx, ry,
			color[0], color[1], color[2], color[3],
			p[2], p[3],
			texIndex,
		)
	}
	rd.inds = append(rd.inds,
		start+0, start+2, start+1,
		start+1, start+2, start+3,
	)
	rd.quadCount++
	rd.stats.QuadCount++
}

func (rd *Renderer2D) flush() {
	if rd.quadCount == 0 {
		return
	}

	if err := rd.r.UpdateMesh(rd.mesh, rd.verts, rd.inds); err != nil {
		core.Logger().Error("renderer2d: dropping batch", "quads", rd.quadCount, "err", err)
		rd.resetBatch()
		return
	}

	clear(rd.samplers)
	for i := 0; i < rd.texCnt; i++ {
		rd.samplers[rd.texNames[i]] = rd.texArr[i]
	}
	rd.uniforms["uVP"] = rd.vp

	rd.r.Draw(core.DrawCmd{
		Pipe:     rd.pipe,
		Mesh:     rd.mesh,
		Uniforms: rd.uniforms,
		Samplers: rd.samplers,
	})
	rd.stats.DrawCalls++

	rd.resetBatch()
}

func (rd *Renderer2D) resetBatch() {
	rd.verts = rd.verts[:0]
	rd.inds = rd.inds[:0]
	rd.quadCount = 0
	clear(rd.texArr[:])
	rd.texArr[0] = rd.white
	rd.texCnt = 1
}

func (rd *Renderer2D) ensureQuadCapacity() {
	if rd.quadCount >= rd.maxQuads {
		rd.flush()
	}
}
