package glbackend

import (
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/hubastard/webgrove/engine/core"
)

type glMesh struct {
	vao, vbo, ebo uint32
	vertCap       int // floats
	indCap        int
	indexCount    int32
	usage         uint32
}

func (r *RendererGL) CreateMesh(desc core.MeshDesc) (core.Mesh, error) {
	if len(desc.Vertices) == 0 {
		return nil, fmt.Errorf("glbackend: mesh without vertices")
	}
	m := &glMesh{usage: gl.STATIC_DRAW}
	if desc.Dynamic {
		m.usage = gl.DYNAMIC_DRAW
	}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(desc.Vertices)*4, gl.Ptr(desc.Vertices), m.usage)
	m.vertCap = len(desc.Vertices)

	if len(desc.Indices) > 0 {
		gl.GenBuffers(1, &m.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(desc.Indices)*4, gl.Ptr(desc.Indices), m.usage)
		m.indCap = len(desc.Indices)
		m.indexCount = int32(len(desc.Indices))
	}

	for _, a := range desc.Layout.Attributes {
		xtype, norm := uint32(gl.FLOAT), false
		if a.Type == core.AttribUint8Norm {
			xtype, norm = gl.UNSIGNED_BYTE, true
		}
		gl.EnableVertexAttribArray(uint32(a.Location))
		gl.VertexAttribPointerWithOffset(uint32(a.Location), int32(a.Size), xtype, norm,
			int32(desc.Layout.Stride), uintptr(a.Offset))
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	r.meshes[m] = struct{}{}
	return m, nil
}

// UpdateMesh replaces the mesh contents, growing the buffers when needed.
func (r *RendererGL) UpdateMesh(mesh core.Mesh, vertices []float32, indices []uint32) error {
	m, ok := mesh.(*glMesh)
	if !ok {
		return fmt.Errorf("glbackend: foreign mesh %T", mesh)
	}
	if m.vao == 0 {
		return fmt.Errorf("glbackend: mesh deleted")
	}

	gl.BindVertexArray(m.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	if len(vertices) > m.vertCap {
		gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), m.usage)
		m.vertCap = len(vertices)
	} else if len(vertices) > 0 {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, gl.Ptr(vertices))
	}

	if m.ebo == 0 && len(indices) > 0 {
		gl.GenBuffers(1, &m.ebo)
	}
	if m.ebo != 0 {
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
		if len(indices) > m.indCap {
			gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), m.usage)
			m.indCap = len(indices)
		} else if len(indices) > 0 {
			gl.BufferSubData(gl.ELEMENT_ARRAY_BUFFER, 0, len(indices)*4, gl.Ptr(indices))
		}
	}
	m.indexCount = int32(len(indices))

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return nil
}

func (r *RendererGL) DeleteMesh(mesh core.Mesh) {
	m, ok := mesh.(*glMesh)
	if !ok || m.vao == 0 {
		return
	}
	delete(r.meshes, m)
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
	}
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteVertexArrays(1, &m.vao)
	*m = glMesh{}
}

func (r *RendererGL) Draw(cmd core.DrawCmd) {
	p, ok := cmd.Pipe.(*glPipeline)
	if !ok || p.program == 0 {
		core.Logger().Warn("glbackend: draw with released pipeline")
		return
	}
	m, ok := cmd.Mesh.(*glMesh)
	if !ok || m.vao == 0 || m.indexCount == 0 {
		return
	}

	if p.depthTest {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	if p.blend {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	} else {
		gl.Disable(gl.BLEND)
	}

	if r.boundProg != p.program {
		gl.UseProgram(p.program)
		r.boundProg = p.program
	}

	for name, v := range cmd.Uniforms {
		setUniform(p.uniform(name), v)
	}

	unit := int32(0)
	for name, tex := range cmd.Samplers {
		t, ok := tex.(*glTexture)
		if !ok || t.id == 0 {
			continue
		}
		loc := p.uniform(name)
		if loc < 0 {
			continue
		}
		gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
		gl.BindTexture(gl.TEXTURE_2D, t.id)
		gl.Uniform1i(loc, unit)
		unit++
	}

	gl.BindVertexArray(m.vao)
	gl.DrawElements(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.BindVertexArray(0)
}

func setUniform(loc int32, v any) {
	if loc < 0 {
		return
	}
	switch x := v.(type) {
	case float32:
		gl.Uniform1f(loc, x)
	case int32:
		gl.Uniform1i(loc, x)
	case int:
		gl.Uniform1i(loc, int32(x))
	case [2]float32:
		gl.Uniform2f(loc, x[0], x[1])
	case [4]float32:
		gl.Uniform4f(loc, x[0], x[1], x[2], x[3])
	case [16]float32:
		gl.UniformMatrix4fv(loc, 1, false, &x[0])
	default:
		core.Logger().Warn("glbackend: unsupported uniform type", "type", fmt.Sprintf("%T", v))
	}
}
