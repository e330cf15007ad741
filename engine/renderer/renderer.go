package renderer

import (
	"fmt"
	"maps"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/model"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/shader"
)

// DrawCall is one recorded draw: the geometry and everything bound when it was drawn.
type DrawCall struct {
	Frame    uint64
	Geometry model.Model
	State    shader.DrawState
	Material material.GPUMaterial
	Lights   []light.GPULight
}

// Pipeline describes the GPU pipeline of one program: the module descriptors of both
// stages and the bind group layouts the draw calls fill.
type Pipeline struct {
	Key              string
	Vertex           *wgpu.ShaderModuleDescriptor
	Fragment         *wgpu.ShaderModuleDescriptor
	VertexEntry      string
	FragmentEntry    string
	BindGroupLayouts map[int]wgpu.BindGroupLayoutDescriptor
	SampleCount      MSAASampleCount

	program shader.Program
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	logger      *zap.Logger
	backendType RendererBackendType
	backend     RendererBackend
	msaa        MSAASampleCount

	pipelineCache map[string]*Pipeline
	frame         uint64
	calls         []DrawCall
	width         int
	height        int
}

// Renderer is the draw sink of a scene. It receives one Draw per geometry node visited in a
// traversal pass, derives and caches the pipeline description of every program it sees, and
// submits the draw to its backend.
type Renderer interface {
	// BeginFrame starts a traversal pass, discarding the draw calls of the previous one, and
	// opens a frame on the backend.
	//
	// Parameters:
	//   - frame: the index of the pass
	//
	// Returns:
	//   - error: an error if the backend could not start the frame
	BeginFrame(frame uint64) error

	// EndFrame closes the frame opened by BeginFrame, letting the backend present it.
	//
	// Returns:
	//   - error: an error if the backend could not finish the frame
	EndFrame() error

	// Draw records a draw of g with the bound state and submits it to the backend.
	//
	// Parameters:
	//   - g: the geometry to draw
	//   - state: the program, matrices and vars of the draw
	//   - mat: the material in scope
	//   - lights: the lights visited so far in the pass
	//
	// Returns:
	//   - error: an error if the state carries no program or the backend rejects the draw
	Draw(g model.Model, state shader.DrawState, mat material.GPUMaterial, lights []light.GPULight) error

	// Calls returns the draw calls of the current pass in draw order.
	//
	// Returns:
	//   - []DrawCall: a copy of the recorded calls
	Calls() []DrawCall

	// Reset discards the recorded draw calls and the pipeline cache.
	Reset()

	// Pipeline retrieves the cached pipeline of a program key.
	//
	// Parameters:
	//   - key: the program key
	//
	// Returns:
	//   - *Pipeline: the pipeline, or nil if the program was never drawn
	Pipeline(key string) *Pipeline

	// Pipelines retrieves the entire pipeline cache.
	//
	// Returns:
	//   - map[string]*Pipeline: a copy of the cache keyed by program key
	Pipelines() map[string]*Pipeline

	// Resize updates the size of the render target.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// Size returns the size of the render target.
	//
	// Returns:
	//   - int: the width in pixels
	//   - int: the height in pixels
	Size() (int, int)

	// BackendType returns the type of the backend draws are submitted to.
	//
	// Returns:
	//   - RendererBackendType: the backend type
	BackendType() RendererBackendType
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer. Without WithBackend it submits to a recording backend
// that only keeps the calls.
//
// Parameters:
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the newly created renderer
func NewRenderer(options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		logger:        zap.NewNop(),
		msaa:          MSAA4x,
		pipelineCache: make(map[string]*Pipeline),
	}

	for _, option := range options {
		option(r)
	}

	if r.backend == nil {
		r.backend = &recordingBackend{}
	}
	r.backendType = r.backend.Type()

	return r
}

func (r *renderer) BeginFrame(frame uint64) error {
	r.mu.Lock()
	r.frame = frame
	r.calls = r.calls[:0]
	r.mu.Unlock()

	if err := r.backend.BeginFrame(); err != nil {
		return fmt.Errorf("frame %d: %w", frame, err)
	}
	return nil
}

func (r *renderer) EndFrame() error {
	if err := r.backend.EndFrame(); err != nil {
		return fmt.Errorf("frame %d: %w", r.frame, err)
	}
	return nil
}

func (r *renderer) Draw(g model.Model, state shader.DrawState, mat material.GPUMaterial, lights []light.GPULight) error {
	if state.Program == nil {
		return fmt.Errorf("draw %q: no program bound", g.Name())
	}

	r.mu.Lock()
	key := state.Program.Key()
	p, ok := r.pipelineCache[key]
	if !ok || p.program != state.Program {
		p = newPipeline(state.Program, r.msaa)
		r.pipelineCache[key] = p
		r.logger.Debug("pipeline described", zap.String("program", key), zap.Int("groups", len(p.BindGroupLayouts)))
	}
	call := DrawCall{
		Frame:    r.frame,
		Geometry: g,
		State:    state,
		Material: mat,
		Lights:   append([]light.GPULight(nil), lights...),
	}
	r.calls = append(r.calls, call)
	r.mu.Unlock()

	if err := r.backend.Submit(p, call); err != nil {
		return fmt.Errorf("draw %q: %w", g.Name(), err)
	}
	return nil
}

func (r *renderer) Calls() []DrawCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]DrawCall(nil), r.calls...)
}

func (r *renderer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
	r.pipelineCache = make(map[string]*Pipeline)
}

func (r *renderer) Pipeline(key string) *Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]*Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.pipelineCache)
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	r.width, r.height = width, height
	r.mu.Unlock()
	r.backend.Resize(width, height)
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) BackendType() RendererBackendType {
	return r.backendType
}

// newPipeline derives the pipeline description of a program.
func newPipeline(p shader.Program, msaa MSAASampleCount) *Pipeline {
	return &Pipeline{
		Key:              p.Key(),
		Vertex:           p.Module(shader.StageVertex),
		Fragment:         p.Module(shader.StageFragment),
		VertexEntry:      p.EntryPoint(shader.StageVertex),
		FragmentEntry:    p.EntryPoint(shader.StageFragment),
		BindGroupLayouts: p.BindGroupLayoutDescriptors(),
		SampleCount:      msaa,
		program:          p,
	}
}

// TransformData packs the five transform matrices in Transforms order. Matrices that were
// never exported are uploaded as identity.
func (d DrawCall) TransformData() []float32 {
	identity := make([]float32, 16)
	common.Identity(identity)

	out := make([]float32, 0, shader.TransformsSize/4)
	for _, m := range [][]float32{d.State.Model, d.State.Normal, d.State.View, d.State.ViewNormal, d.State.Projection} {
		if len(m) != 16 {
			m = identity
		}
		out = append(out, m...)
	}
	return out
}

// MaterialData packs the Material uniform.
func (d DrawCall) MaterialData() []float32 {
	return d.Material.Floats()
}

// LightsData packs the Lights uniform. Lights beyond light.MaxGPULights are dropped.
func (d DrawCall) LightsData() []float32 {
	return light.PackLights(d.Lights)
}

// VarsData packs the merged vars into the program's ShaderVars layout.
func (d DrawCall) VarsData() []float32 {
	if d.State.Program == nil {
		return nil
	}
	return d.State.Program.VarsLayout().Pack(d.State.Vars)
}

// UniformData concatenates every uniform block of the draw: transforms, material, lights
// and vars.
func (d DrawCall) UniformData() []float32 {
	out := d.TransformData()
	out = append(out, d.MaterialData()...)
	out = append(out, d.LightsData()...)
	return append(out, d.VarsData()...)
}

// Uniform packs the uniform block bound at group and binding of the program's layout, or
// returns nil for a slot the program does not declare.
func (d DrawCall) Uniform(group int, binding uint32) []float32 {
	switch {
	case group == shader.GroupTransforms && binding == 0:
		return d.TransformData()
	case group == shader.GroupVars && binding == 0:
		return d.VarsData()
	case group == shader.GroupSurface && binding == 0:
		return d.MaterialData()
	case group == shader.GroupSurface && binding == 1:
		return d.LightsData()
	}
	return nil
}

// Bytes returns UniformData as the byte slice uploaded to the uniform buffers.
func (d DrawCall) Bytes() []byte {
	return common.SliceToBytes(d.UniformData())
}
