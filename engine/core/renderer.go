package core

// Renderer abstraction. Backends live under engine/gfx.
type Renderer interface {
	Init() error
	Resize(w, h int)
	Clear(r, g, b, a float32)
	Shutdown()

	CreateTexture(desc TextureDesc) (Texture, error)
	UpdateTexture(t Texture, pixels []byte) error
	DeleteTexture(t Texture)

	CreatePipeline(desc PipelineDesc) (Pipeline, error)
	CreateMesh(desc MeshDesc) (Mesh, error)
	UpdateMesh(m Mesh, vertices []float32, indices []uint32) error
	DeleteMesh(m Mesh)
	Draw(cmd DrawCmd)

	GPUVendor() string
	GPURenderer() string
	GPUVersion() string
}

// TextureFormat is the in-memory layout of texture pixels.
type TextureFormat int

const (
	TextureFormatUnknown TextureFormat = iota
	TextureRGBA8
	TextureBGRA8
	TextureARGB8
	TextureABGR8
	TextureRGB8
	TextureBGR8
	TextureRGBA4
	TextureRGB5A1
	TextureRGB565
)

// BytesPerPixel returns the packed pixel size, 0 for unknown formats.
func (f TextureFormat) BytesPerPixel() int {
	switch f {
	case TextureRGBA8, TextureBGRA8, TextureARGB8, TextureABGR8:
		return 4
	case TextureRGB8, TextureBGR8:
		return 3
	case TextureRGBA4, TextureRGB5A1, TextureRGB565:
		return 2
	default:
		return 0
	}
}

// Texture is a GPU texture owned by a Renderer.
type Texture interface {
	Width() int
	Height() int
	Format() TextureFormat
	// NativeHandle is the backend object name (GL texture id) that can be
	// handed to code rendering into the texture outside the engine.
	NativeHandle() uintptr
}

// TextureDesc describes a texture to create. Pixels may be nil to allocate
// uninitialised storage.
type TextureDesc struct {
	Width, Height int
	Format        TextureFormat
	Pixels        []byte
	MinFilter     string // "nearest" | "linear"
	MagFilter     string
	WrapU, WrapV  string // "clamp" | "repeat"
}

type Pipeline interface{}

type PipelineDesc struct {
	VertexSource   string
	FragmentSource string
	DepthTest      bool
	Blend          bool
}

type Mesh interface{}

type AttribType int

const (
	AttribFloat32 AttribType = iota
	AttribUint8Norm
)

type VertexAttrib struct {
	Location int
	Size     int // components
	Type     AttribType
	Offset   int // bytes
}

type VertexLayout struct {
	Stride     int // bytes
	Attributes []VertexAttrib
}

type MeshDesc struct {
	Vertices []float32
	Indices  []uint32
	Layout   VertexLayout
	Dynamic  bool
}

// DrawCmd draws Mesh with Pipe. Uniform values may be float32, int32, int,
// [2]float32, [4]float32 or [16]float32.
type DrawCmd struct {
	Pipe     Pipeline
	Mesh     Mesh
	Uniforms map[string]any
	Samplers map[string]Texture
}
