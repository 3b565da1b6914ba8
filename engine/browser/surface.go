package browser

import (
	"github.com/hubastard/webgrove/engine/core"
	"github.com/hubastard/webgrove/engine/scene"
)

// ColliderKind selects the hit shape attached to a surface.
type ColliderKind int

const (
	ColliderNone ColliderKind = iota
	ColliderBox
	ColliderMesh
)

func (c ColliderKind) String() string {
	switch c {
	case ColliderBox:
		return "box"
	case ColliderMesh:
		return "mesh"
	default:
		return "none"
	}
}

// ReleaseMode picks when a texture or surface is actually freed.
type ReleaseMode int

const (
	// ReleaseDeferred frees after the current frame has been presented.
	ReleaseDeferred ReleaseMode = iota
	// ReleaseImmediate frees during the call. Used for forced teardown.
	ReleaseImmediate
)

// SurfaceParams describes how a texture is laid onto a surface.
type SurfaceParams struct {
	UScale, VScale float32
	Width, Height  float32
	Collider       ColliderKind
	FlipX, FlipY   bool
}

// Surface is a drawable quad in the scene that shows a texture.
type Surface interface {
	Node() *scene.Node
}

// SurfaceFactory allocates textures and surfaces on the host renderer.
type SurfaceFactory interface {
	CreateTexture(width, height int, format PixelFormat) (core.Texture, error)
	ReleaseTexture(tex core.Texture, mode ReleaseMode)
	CreateSurface(tex core.Texture, p SurfaceParams) Surface
	ConfigureSurface(s Surface, tex core.Texture, p SurfaceParams)
	ReleaseSurface(s Surface, mode ReleaseMode)
}
