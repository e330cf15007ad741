// Package scene implements the retained scene graph and its traversal. A Scene owns one
// render session: its event bus, debug store, transform backends, shader backend and
// renderer. Every traversal pass walks the node tree, drives the backends through the
// frame lifecycle and hands one draw per geometry node to the renderer.
package scene

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/Carmen-Shannon/oxy-scene/engine/debug"
	"github.com/Carmen-Shannon/oxy-scene/engine/event"
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-scene/engine/transform"
)

// Bounds is a world-space bounding sphere.
type Bounds struct {
	Center [3]float32
	Radius float32
}

// traversal is the per-pass state threaded through Node.visit.
type traversal struct {
	scene       *scene
	compileOnly bool
	materials   []material.GPUMaterial
	lights      []light.GPULight
	draws       int
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu     sync.Mutex
	logger *zap.Logger

	root       *groupNode
	bus        event.Bus
	debug      debug.Store
	shaders    shader.Backend
	model      transform.Backend
	view       transform.Backend
	projection transform.Backend
	renderer   renderer.Renderer

	frame         uint64
	width         int
	height        int
	modelState    *transform.State
	bounds        map[string]Bounds
	shaderOptions []shader.BackendBuilderOption
}

// Scene is one render session over a retained node tree. Render and Compile serialize on
// the scene; node attributes may be changed between passes through FindNode and Node.Set.
type Scene interface {
	// ID returns the identifier of the scene's root node.
	ID() string

	// Root returns the root node of type "scene".
	Root() Node

	// AddNode appends top-level nodes under the root.
	//
	// Parameters:
	//   - nodes: the nodes to append
	AddNode(nodes ...Node)

	// FindNode looks up a node by ID anywhere in the tree.
	//
	// Parameters:
	//   - id: the node ID
	//
	// Returns:
	//   - Node: the node
	//   - error: *MissingNodeError if no node has that ID
	FindNode(id string) (Node, error)

	// Render runs one traversal pass: fires SceneRendering, walks the tree drawing every
	// geometry node, and deactivates the last bound program.
	//
	// Returns:
	//   - error: the first binding, compile or draw error of the pass
	Render() error

	// Compile assembles the program of every geometry node without drawing or touching
	// the transform backends.
	//
	// Returns:
	//   - error: the first binding or compile error
	Compile() error

	// SetDebugConfigs writes the debug configuration: one argument replaces the whole
	// tree, two arguments set (path, value).
	//
	// Parameters:
	//   - args: (debug.Configs) or (string, any)
	//
	// Returns:
	//   - error: *debug.ConfigurationError for any other argument shape
	SetDebugConfigs(args ...any) error

	// DebugConfigs reads the debug configuration at a dotted path, or the whole tree for "".
	//
	// Parameters:
	//   - path: the dotted path
	//
	// Returns:
	//   - any: the value, or an empty debug.Configs if the path is absent
	DebugConfigs(path string) any

	// Bus returns the session event bus.
	Bus() event.Bus

	// Debug returns the session debug store.
	Debug() debug.Store

	// Shader returns the shader backend.
	Shader() shader.Backend

	// ModelTransform returns the model transform backend.
	ModelTransform() transform.Backend

	// ViewTransform returns the view transform backend.
	ViewTransform() transform.Backend

	// ProjectionTransform returns the projection transform backend.
	ProjectionTransform() transform.Backend

	// Renderer returns the draw sink of the scene.
	Renderer() renderer.Renderer

	// Frame returns the index of the next traversal pass.
	//
	// Returns:
	//   - uint64: the number of completed passes
	Frame() uint64

	// Resize updates the render target size. Camera nodes without an explicit aspect
	// follow it from the next pass.
	//
	// Parameters:
	//   - width: the width in pixels
	//   - height: the height in pixels
	Resize(width, height int)

	// Bounds returns the world-space bounding sphere a geometry node had when it was last
	// drawn in the most recent pass.
	//
	// Parameters:
	//   - id: the geometry node ID
	//
	// Returns:
	//   - Bounds: the bounding sphere
	//   - bool: false if the node was not drawn in the last pass
	Bounds(id string) (Bounds, bool)
}

var _ Scene = &scene{}

// NewScene creates a Scene drawing into r. Every scene gets its own event bus, debug store,
// transform backends and shader backend. Panics if r is nil.
//
// Parameters:
//   - id: the root node ID, generated if empty
//   - r: the renderer that receives the draws
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(id string, r renderer.Renderer, options ...SceneBuilderOption) Scene {
	if r == nil {
		panic("scene: NewScene requires a non-nil renderer")
	}

	s := &scene{
		logger:   zap.NewNop(),
		renderer: r,
		bounds:   make(map[string]Bounds),
	}
	s.root = &groupNode{}
	applyNodeOptions(&s.root.baseNode, NodeTypeScene, []NodeBuilderOption{WithID(id)})

	for _, opt := range options {
		opt(s)
	}
	if s.debug == nil {
		s.debug = debug.NewStore()
	}
	s.width, s.height = r.Size()

	s.bus = event.NewBus(event.WithLogger(s.logger))
	s.shaders = shader.NewBackend(s.bus, s.debug, append([]shader.BackendBuilderOption{shader.WithLogger(s.logger)}, s.shaderOptions...)...)
	s.model = transform.NewBackend(transform.SpaceModel, s.bus, s.shaders, transform.WithLogger(s.logger))
	s.view = transform.NewBackend(transform.SpaceView, s.bus, s.shaders, transform.WithLogger(s.logger))
	s.projection = transform.NewBackend(transform.SpaceProjection, s.bus, s.shaders, transform.WithLogger(s.logger))

	s.bus.AddListener(event.ModelTransformUpdated, func(ev event.Event) {
		if u, ok := ev.(transform.UpdatedEvent); ok {
			s.modelState = u.State
		}
	})
	s.bus.AddListener(event.SceneRendering, func(event.Event) {
		s.modelState = nil
		clear(s.bounds)
	})

	return s
}

func (s *scene) ID() string {
	return s.root.id
}

func (s *scene) Root() Node {
	return s.root
}

func (s *scene) AddNode(nodes ...Node) {
	s.root.AddChild(nodes...)
}

func (s *scene) FindNode(id string) (Node, error) {
	if n := find(s.root, id); n != nil {
		return n, nil
	}
	return nil, &MissingNodeError{ID: id}
}

func (s *scene) Render() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	frame := s.frame
	s.bus.Fire(event.SceneRenderingEvent{Frame: frame})
	if err := s.renderer.BeginFrame(frame); err != nil {
		return fmt.Errorf("scene %q: %w", s.root.id, err)
	}

	t := &traversal{scene: s}
	err := s.root.visit(t)
	s.shaders.Deactivate()
	s.frame++
	if endErr := s.renderer.EndFrame(); endErr != nil {
		err = errors.Join(err, endErr)
	}

	if err != nil {
		return fmt.Errorf("scene %q: frame %d: %w", s.root.id, frame, err)
	}
	s.logger.Debug("scene rendered",
		zap.String("scene", s.root.id),
		zap.Uint64("frame", frame),
		zap.Int("draws", t.draws),
	)
	return nil
}

func (s *scene) Compile() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.root.visit(&traversal{scene: s, compileOnly: true}); err != nil {
		return fmt.Errorf("scene %q: %w", s.root.id, err)
	}
	return nil
}

func (s *scene) SetDebugConfigs(args ...any) error {
	return s.debug.SetConfigs(args...)
}

func (s *scene) DebugConfigs(path string) any {
	return s.debug.Get(path)
}

func (s *scene) Bus() event.Bus {
	return s.bus
}

func (s *scene) Debug() debug.Store {
	return s.debug
}

func (s *scene) Shader() shader.Backend {
	return s.shaders
}

func (s *scene) ModelTransform() transform.Backend {
	return s.model
}

func (s *scene) ViewTransform() transform.Backend {
	return s.view
}

func (s *scene) ProjectionTransform() transform.Backend {
	return s.projection
}

func (s *scene) Renderer() renderer.Renderer {
	return s.renderer
}

func (s *scene) Frame() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

func (s *scene) Resize(width, height int) {
	s.mu.Lock()
	s.width, s.height = width, height
	s.mu.Unlock()
	s.renderer.Resize(width, height)
}

func (s *scene) Bounds(id string) (Bounds, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bounds[id]
	return b, ok
}

// aspect returns width/height of the render target, or 0 when no size is known.
// Called during traversal with s.mu held.
func (s *scene) aspect() float32 {
	if s.width <= 0 || s.height <= 0 {
		return 0
	}
	return float32(s.width) / float32(s.height)
}

// draw binds the program of the current scope and hands the geometry to the renderer.
// Compile-only passes stop after assembling the program.
func (t *traversal) draw(g *geometryNode) error {
	s := t.scene
	if t.compileOnly {
		_, err := s.shaders.Compile()
		return err
	}

	state, err := s.shaders.Render()
	if err != nil {
		return err
	}

	mat := material.Default
	if len(t.materials) > 0 {
		mat = t.materials[len(t.materials)-1]
	}
	s.bounds[g.id] = worldBounds(s.modelState, g.model.BoundingRadius())

	if err := s.renderer.Draw(g.model, state, mat, t.lights); err != nil {
		return err
	}
	t.draws++
	return nil
}

// worldBounds transforms a model-space bounding sphere at the origin by the model state.
// The radius is scaled by the largest axis scale of the matrix.
func worldBounds(state *transform.State, radius float32) Bounds {
	if state == nil || state.Identity {
		return Bounds{Radius: radius}
	}
	m := state.Matrix
	var maxScale float32
	for col := range 3 {
		x, y, z := m[col*4], m[col*4+1], m[col*4+2]
		maxScale = max(maxScale, float32(math.Sqrt(float64(x*x+y*y+z*z))))
	}
	return Bounds{
		Center: [3]float32{m[12], m[13], m[14]},
		Radius: radius * maxScale,
	}
}
