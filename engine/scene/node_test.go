package scene

import (
	"math"
	"testing"
)

func near(a, b float32) bool { return math.Abs(float64(a-b)) < 1e-5 }

func TestNode_SetParentMovesBetweenParents(t *testing.T) {
	a, b, c := NewNode("a"), NewNode("b"), NewNode("c")

	c.SetParent(a)
	if c.Parent() != a || len(a.Children()) != 1 {
		t.Fatalf("expected c under a")
	}

	b.AddChild(c)
	if c.Parent() != b {
		t.Fatalf("expected c under b")
	}
	if len(a.Children()) != 0 || len(b.Children()) != 1 {
		t.Fatalf("expected c removed from a, got a=%d b=%d", len(a.Children()), len(b.Children()))
	}

	c.Detach()
	if c.Parent() != nil || len(b.Children()) != 0 {
		t.Fatalf("expected c detached")
	}
}

func TestNode_SetParentRejectsCycles(t *testing.T) {
	a, b := NewNode("a"), NewNode("b")
	b.SetParent(a)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for cycle")
		}
	}()
	a.SetParent(b)
}

func TestNode_ActiveInHierarchy(t *testing.T) {
	root, child := NewNode("root"), NewNode("child")
	child.SetParent(root)

	if !child.ActiveInHierarchy() {
		t.Fatalf("new nodes are active")
	}
	root.SetActive(false)
	if child.ActiveInHierarchy() {
		t.Fatalf("expected inactive ancestor to hide child")
	}
	if !child.Active() {
		t.Fatalf("child's own flag must be unchanged")
	}
}

func TestNode_WorldPositionComposesRotation(t *testing.T) {
	root, child := NewNode("root"), NewNode("child")
	child.SetParent(root)
	root.SetLocalPosition(10, 0, 0)
	// 90 degrees about Z.
	s := float32(math.Sqrt(0.5))
	root.SetLocalRotation([4]float32{0, 0, s, s})
	child.SetLocalPosition(1, 0, 0)

	p := child.WorldPosition()
	if !near(p[0], 10) || !near(p[1], 1) || !near(p[2], 0) {
		t.Fatalf("WorldPosition = %v, want [10 1 0]", p)
	}
}

func TestNode_ResetLocal(t *testing.T) {
	n := NewNode("n")
	n.SetLocalPosition(1, 2, 3)
	n.SetLocalRotation([4]float32{1, 0, 0, 0})
	n.ResetLocal()

	if n.LocalPosition() != [3]float32{} {
		t.Fatalf("expected origin, got %v", n.LocalPosition())
	}
	if n.LocalRotation() != [4]float32{0, 0, 0, 1} {
		t.Fatalf("expected identity rotation, got %v", n.LocalRotation())
	}
}

func TestOrthoCamera2D_ExtentFollowsZoom(t *testing.T) {
	c := NewOrtho2D(800, 600)
	if c.Width() != 800 || c.Height() != 600 {
		t.Fatalf("extent = %vx%v, want 800x600", c.Width(), c.Height())
	}
	c.SetZoom(2)
	if c.Width() != 400 || c.Height() != 300 {
		t.Fatalf("extent at zoom 2 = %vx%v, want 400x300", c.Width(), c.Height())
	}
	c.SetZoom(0)
	if c.Zoom != 0.05 {
		t.Fatalf("zoom clamp = %v, want 0.05", c.Zoom)
	}
}

func TestOrthoCamera2D_ScreenToWorld(t *testing.T) {
	c := NewOrtho2D(800, 600)
	c.SetPosition(100, 50)
	c.SetZoom(2)

	tests := []struct {
		sx, sy float64
		wx, wy float32
	}{
		{400, 300, 100, 50},   // center
		{0, 0, -100, 200},     // top-left
		{800, 600, 300, -100}, // bottom-right
	}
	for _, tt := range tests {
		x, y := c.ScreenToWorld(tt.sx, tt.sy, 800, 600)
		if !near(x, tt.wx) || !near(y, tt.wy) {
			t.Fatalf("ScreenToWorld(%v, %v) = (%v, %v), want (%v, %v)", tt.sx, tt.sy, x, y, tt.wx, tt.wy)
		}
	}

	c.SetZoom(1)
	c.RotationRad = math.Pi / 2
	// Screen right maps to world up under a quarter turn.
	x, y := c.ScreenToWorld(800, 300, 800, 600)
	if math.Abs(float64(x-100)) > 1e-3 || math.Abs(float64(y-450)) > 1e-3 {
		t.Fatalf("rotated = (%v, %v), want (100, 450)", x, y)
	}
}
