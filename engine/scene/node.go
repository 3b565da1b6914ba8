package scene

// Node is a transform in the scene graph. Rotation is a unit quaternion
// (x, y, z, w). A node is drawn only while it and all its ancestors are active.
type Node struct {
	Name string
	// Owner is the object this node belongs to, if any.
	Owner any

	parent   *Node
	children []*Node

	localPos [3]float32
	localRot [4]float32
	active   bool
}

var identityRot = [4]float32{0, 0, 0, 1}

func NewNode(name string) *Node {
	return &Node{Name: name, localRot: identityRot, active: true}
}

func (n *Node) Parent() *Node     { return n.parent }
func (n *Node) Children() []*Node { return n.children }

// SetParent re-parents n under p (nil detaches). The local transform is kept.
func (n *Node) SetParent(p *Node) {
	if n.parent == p {
		return
	}
	for a := p; a != nil; a = a.parent {
		if a == n {
			panic("scene: SetParent would create a cycle at " + n.Name)
		}
	}
	if n.parent != nil {
		n.parent.removeChild(n)
	}
	n.parent = p
	if p != nil {
		p.children = append(p.children, n)
	}
}

func (n *Node) AddChild(c *Node) { c.SetParent(n) }

// Detach removes n from its parent.
func (n *Node) Detach() { n.SetParent(nil) }

func (n *Node) removeChild(c *Node) {
	for i, k := range n.children {
		if k == c {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

func (n *Node) LocalPosition() [3]float32        { return n.localPos }
func (n *Node) SetLocalPosition(x, y, z float32) { n.localPos = [3]float32{x, y, z} }
func (n *Node) LocalRotation() [4]float32        { return n.localRot }
func (n *Node) SetLocalRotation(q [4]float32)    { n.localRot = q }

// ResetLocal puts n at its parent's origin with identity rotation.
func (n *Node) ResetLocal() {
	n.localPos = [3]float32{}
	n.localRot = identityRot
}

func (n *Node) Active() bool      { return n.active }
func (n *Node) SetActive(on bool) { n.active = on }

// ActiveInHierarchy reports whether n and every ancestor are active.
func (n *Node) ActiveInHierarchy() bool {
	for a := n; a != nil; a = a.parent {
		if !a.active {
			return false
		}
	}
	return true
}

// WorldPosition composes parent rotations and translations up to the root.
func (n *Node) WorldPosition() [3]float32 {
	p := n.localPos
	for a := n.parent; a != nil; a = a.parent {
		p = rotate(a.localRot, p)
		p[0] += a.localPos[0]
		p[1] += a.localPos[1]
		p[2] += a.localPos[2]
	}
	return p
}

// rotate applies unit quaternion q to v.
func rotate(q [4]float32, v [3]float32) [3]float32 {
	// t = 2 * cross(q.xyz, v); v' = v + w*t + cross(q.xyz, t)
	tx := 2 * (q[1]*v[2] - q[2]*v[1])
	ty := 2 * (q[2]*v[0] - q[0]*v[2])
	tz := 2 * (q[0]*v[1] - q[1]*v[0])
	return [3]float32{
		v[0] + q[3]*tx + (q[1]*tz - q[2]*ty),
		v[1] + q[3]*ty + (q[2]*tx - q[0]*tz),
		v[2] + q[3]*tz + (q[0]*ty - q[1]*tx),
	}
}
