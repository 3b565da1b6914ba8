package glbackend

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hubastard/webgrove/engine/core"
)

const (
	pipelineCacheSize = 16
	uniformCacheSize  = 32
)

type pipelineKey struct {
	vs, fs    string
	depthTest bool
	blend     bool
}

type glPipeline struct {
	program   uint32
	depthTest bool
	blend     bool
	uniforms  *lru.Cache[string, int32]
}

// uniform returns the location of name, -1 if the program has no such uniform.
func (p *glPipeline) uniform(name string) int32 {
	if loc, ok := p.uniforms.Get(name); ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.program, gl.Str(name+"\x00"))
	p.uniforms.Add(name, loc)
	return loc
}

// pipelineCache links each distinct shader pair once. Evicted programs are
// deleted; a pipeline handle that outlives its program draws nothing.
type pipelineCache struct {
	cache *lru.Cache[pipelineKey, *glPipeline]
}

func newPipelineCache(size int) (*pipelineCache, error) {
	c, err := lru.NewWithEvict[pipelineKey, *glPipeline](size, deleteProgramOnEviction)
	if err != nil {
		return nil, fmt.Errorf("pipeline cache: %w", err)
	}
	return &pipelineCache{cache: c}, nil
}

func deleteProgramOnEviction(_ pipelineKey, p *glPipeline) {
	if p.program != 0 {
		gl.DeleteProgram(p.program)
		p.program = 0
	}
	p.uniforms.Purge()
}

func (pc *pipelineCache) get(desc core.PipelineDesc) (*glPipeline, error) {
	key := pipelineKey{vs: desc.VertexSource, fs: desc.FragmentSource, depthTest: desc.DepthTest, blend: desc.Blend}
	if p, ok := pc.cache.Get(key); ok {
		return p, nil
	}

	prog, err := makeProgram(desc.VertexSource, desc.FragmentSource)
	if err != nil {
		return nil, err
	}
	uniforms, _ := lru.New[string, int32](uniformCacheSize)
	p := &glPipeline{program: prog, depthTest: desc.DepthTest, blend: desc.Blend, uniforms: uniforms}
	pc.cache.Add(key, p)
	return p, nil
}

func (pc *pipelineCache) purge() { pc.cache.Purge() }

func (r *RendererGL) CreatePipeline(desc core.PipelineDesc) (core.Pipeline, error) {
	return r.pipelines.get(desc)
}

func nullTerminated(src string) string {
	if strings.HasSuffix(src, "\x00") {
		return src
	}
	return src + "\x00"
}

func makeShader(src string, shaderType uint32) (uint32, error) {
	sh := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(nullTerminated(src))
	defer free()
	gl.ShaderSource(sh, 1, csrc, nil)
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen))
		gl.GetShaderInfoLog(sh, logLen, nil, gl.Str(log))
		gl.DeleteShader(sh)
		return 0, fmt.Errorf("shader compile error: %s", strings.TrimRight(log, "\x00"))
	}
	return sh, nil
}

func makeProgram(vsSrc, fsSrc string) (uint32, error) {
	vs, err := makeShader(vsSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fs, err := makeShader(fsSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vs)
		return 0, err
	}
	prog := gl.CreateProgram()
	gl.AttachShader(prog, vs)
	gl.AttachShader(prog, fs)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("program link error: %s", strings.TrimRight(log, "\x00"))
	}
	return prog, nil
}
