package scene

import "github.com/hubastard/webgrove/engine/core"

// OrthoController2D pans with WASD and zooms with the scroll wheel.
type OrthoController2D struct {
	MoveSpeed float32 // pixels per second at zoom 1
	ZoomSpeed float32 // zoom factor per scroll notch
	Camera    *OrthoCamera2D
}

func NewOrthoController2D(cam *OrthoCamera2D) *OrthoController2D {
	return &OrthoController2D{
		MoveSpeed: 600,
		ZoomSpeed: 1.1,
		Camera:    cam,
	}
}

func (cc *OrthoController2D) Update(e *core.Engine, dt float32) {
	in := e.Input
	speed := cc.MoveSpeed * dt / cc.Camera.Zoom

	if in.IsKeyDown(core.KeyW) {
		cc.Camera.Move(0, speed)
	}
	if in.IsKeyDown(core.KeyS) {
		cc.Camera.Move(0, -speed)
	}
	if in.IsKeyDown(core.KeyA) {
		cc.Camera.Move(-speed, 0)
	}
	if in.IsKeyDown(core.KeyD) {
		cc.Camera.Move(speed, 0)
	}
}

// HandleEvent applies scroll zoom. Returns true if the event was consumed.
func (cc *OrthoController2D) HandleEvent(ev core.Event) bool {
	s, ok := ev.(core.EventScroll)
	if !ok || s.Yoff == 0 {
		return false
	}
	z := cc.Camera.Zoom
	if s.Yoff > 0 {
		z *= cc.ZoomSpeed
	} else {
		z /= cc.ZoomSpeed
	}
	cc.Camera.SetZoom(z)
	return true
}
