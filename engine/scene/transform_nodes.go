package scene

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/transform"
)

// stateCache memoizes the state a transform node produced. An entry is reused while the
// parent state, the node version and the aspect ratio it was built for are unchanged.
// A nil parent stands for any identity parent.
type stateCache struct {
	parent  *transform.State
	version uint64
	aspect  float32
	state   *transform.State
}

func (c *stateCache) lookup(parent *transform.State, version uint64, aspect float32) *transform.State {
	if c.state == nil || c.parent != parent || c.version != version || c.aspect != aspect {
		return nil
	}
	return c.state
}

func (c *stateCache) store(parent *transform.State, version uint64, aspect float32, m []float32) *transform.State {
	*c = stateCache{
		parent:  parent,
		version: version,
		aspect:  aspect,
		state:   transform.NewState(common.Matrix4(m)),
	}
	return c.state
}

// withState installs state on backend for the duration of the subtree visit and then
// restores the parent state object, so the parent's derived forms are reused. Compile-only
// passes leave the backends untouched.
func withState(t *traversal, backend transform.Backend, state func() *transform.State, visit func() error) error {
	if t.compileOnly {
		return visit()
	}
	parent := backend.Transform()
	backend.SetTransform(state())
	err := visit()
	backend.SetTransform(parent)
	return err
}

// modelNode is a rotate, translate, scale or matrix node. Its local matrix is composed
// onto the model transform of its parent.
type modelNode struct {
	baseNode
	angle    float32
	vec      [3]float32
	elements []float32
	cache    stateCache
}

var _ Node = &modelNode{}

// NewRotate creates a rotate node turning its subtree by angle degrees about (x, y, z).
//
// Parameters:
//   - angle: the rotation in degrees
//   - x, y, z: the rotation axis
//   - options: functional options to configure the node
//
// Returns:
//   - Node: the new node
func NewRotate(angle, x, y, z float32, options ...NodeBuilderOption) Node {
	n := &modelNode{angle: angle, vec: [3]float32{x, y, z}}
	applyNodeOptions(&n.baseNode, NodeTypeRotate, options)
	return n
}

// NewTranslate creates a translate node moving its subtree by (x, y, z).
//
// Parameters:
//   - x, y, z: the offset
//   - options: functional options to configure the node
//
// Returns:
//   - Node: the new node
func NewTranslate(x, y, z float32, options ...NodeBuilderOption) Node {
	n := &modelNode{vec: [3]float32{x, y, z}}
	applyNodeOptions(&n.baseNode, NodeTypeTranslate, options)
	return n
}

// NewScale creates a scale node scaling its subtree by (x, y, z).
//
// Parameters:
//   - x, y, z: the scale factors
//   - options: functional options to configure the node
//
// Returns:
//   - Node: the new node
func NewScale(x, y, z float32, options ...NodeBuilderOption) Node {
	n := &modelNode{vec: [3]float32{x, y, z}}
	applyNodeOptions(&n.baseNode, NodeTypeScale, options)
	return n
}

// NewMatrix creates a matrix node applying an arbitrary column-major 4x4 transform.
//
// Parameters:
//   - elements: 16 column-major floats
//   - options: functional options to configure the node
//
// Returns:
//   - Node: the new node
//   - error: an error if elements does not hold 16 floats
func NewMatrix(elements []float32, options ...NodeBuilderOption) (Node, error) {
	n := &modelNode{}
	applyNodeOptions(&n.baseNode, NodeTypeMatrix, options)
	if len(elements) != 16 {
		return nil, n.invalid("elements", fmt.Errorf("want 16 floats, got %d", len(elements)))
	}
	n.elements = append([]float32(nil), elements...)
	return n, nil
}

func (n *modelNode) Set(attr string, value any) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch {
	case attr == "angle" && n.typ == NodeTypeRotate:
		f, err := toFloat32(value)
		if err != nil {
			return n.invalid(attr, err)
		}
		n.angle = f
	case (attr == "x" || attr == "y" || attr == "z") && n.typ != NodeTypeMatrix:
		f, err := toFloat32(value)
		if err != nil {
			return n.invalid(attr, err)
		}
		n.vec[attr[0]-'x'] = f
	case attr == "xyz" && n.typ != NodeTypeMatrix:
		v, err := toVec3(value, n.vec, xyz)
		if err != nil {
			return n.invalid(attr, err)
		}
		n.vec = v
	case attr == "elements" && n.typ == NodeTypeMatrix:
		fs, err := toFloats(value)
		if err != nil {
			return n.invalid(attr, err)
		}
		if len(fs) != 16 {
			return n.invalid(attr, fmt.Errorf("want 16 floats, got %d", len(fs)))
		}
		n.elements = append(n.elements[:0], fs...)
	default:
		return n.unknown(attr)
	}
	n.touch()
	return nil
}

func (n *modelNode) Get(attr string) (any, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	switch {
	case attr == "angle" && n.typ == NodeTypeRotate:
		return n.angle, nil
	case (attr == "x" || attr == "y" || attr == "z") && n.typ != NodeTypeMatrix:
		return n.vec[attr[0]-'x'], nil
	case attr == "xyz" && n.typ != NodeTypeMatrix:
		return n.vec, nil
	case attr == "elements" && n.typ == NodeTypeMatrix:
		return append([]float32(nil), n.elements...), nil
	default:
		return nil, n.unknown(attr)
	}
}

// local computes the node's own matrix. Callers hold the lock.
func (n *modelNode) local() []float32 {
	out := make([]float32, 16)
	switch n.typ {
	case NodeTypeRotate:
		common.Rotation(out, n.angle, n.vec[0], n.vec[1], n.vec[2])
	case NodeTypeTranslate:
		common.Translation(out, n.vec[0], n.vec[1], n.vec[2])
	case NodeTypeScale:
		common.Scaling(out, n.vec[0], n.vec[1], n.vec[2])
	case NodeTypeMatrix:
		copy(out, n.elements)
	}
	return out
}

// compose returns parent x local, reusing the previous state when nothing it depends on
// has changed.
func (n *modelNode) compose(parent *transform.State) *transform.State {
	n.mu.Lock()
	defer n.mu.Unlock()

	key := parent
	if parent == nil || parent.Identity {
		key = nil
	}
	if st := n.cache.lookup(key, n.version, 0); st != nil {
		return st
	}

	local := n.local()
	if key == nil {
		return n.cache.store(nil, n.version, 0, local)
	}
	out := make([]float32, 16)
	common.Mul4(out, parent.Matrix[:], local)
	return n.cache.store(key, n.version, 0, out)
}

func (n *modelNode) visit(t *traversal) error {
	backend := t.scene.model
	compose := func() *transform.State { return n.compose(backend.Transform()) }
	return withState(t, backend, compose, func() error {
		return n.visitChildren(t)
	})
}

// lookAtNode replaces the view transform for its subtree.
type lookAtNode struct {
	baseNode
	lookAt camera.LookAt
	cache  stateCache
}

var _ Node = &lookAtNode{}

// NewLookAt creates a lookAt node viewing its subtree from l.Eye towards l.Look.
//
// Parameters:
//   - l: the eye, look and up vectors
//   - options: functional options to configure the node
//
// Returns:
//   - Node: the new node
func NewLookAt(l camera.LookAt, options ...NodeBuilderOption) Node {
	n := &lookAtNode{lookAt: l}
	applyNodeOptions(&n.baseNode, NodeTypeLookAt, options)
	return n
}

func (n *lookAtNode) Set(attr string, value any) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	var target *[3]float32
	switch attr {
	case "eye":
		target = &n.lookAt.Eye
	case "look":
		target = &n.lookAt.Look
	case "up":
		target = &n.lookAt.Up
	case "lookAt":
		l, ok := value.(camera.LookAt)
		if !ok {
			return n.invalid(attr, fmt.Errorf("want camera.LookAt, got %T", value))
		}
		n.lookAt = l
		n.touch()
		return nil
	default:
		return n.unknown(attr)
	}

	v, err := toVec3(value, *target, xyz)
	if err != nil {
		return n.invalid(attr, err)
	}
	*target = v
	n.touch()
	return nil
}

func (n *lookAtNode) Get(attr string) (any, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	switch attr {
	case "eye":
		return n.lookAt.Eye, nil
	case "look":
		return n.lookAt.Look, nil
	case "up":
		return n.lookAt.Up, nil
	case "lookAt":
		return n.lookAt, nil
	default:
		return nil, n.unknown(attr)
	}
}

func (n *lookAtNode) state() *transform.State {
	n.mu.Lock()
	defer n.mu.Unlock()
	if st := n.cache.lookup(nil, n.version, 0); st != nil {
		return st
	}
	m := n.lookAt.ViewMatrix()
	return n.cache.store(nil, n.version, 0, m[:])
}

func (n *lookAtNode) visit(t *traversal) error {
	return withState(t, t.scene.view, n.state, func() error {
		return n.visitChildren(t)
	})
}

// cameraNode replaces the projection transform for its subtree.
type cameraNode struct {
	baseNode
	optics camera.Optics
	cache  stateCache
}

var _ Node = &cameraNode{}

// NewCamera creates a camera node projecting its subtree through o. An Aspect of 0 follows
// the aspect ratio of the scene's render target.
//
// Parameters:
//   - o: the camera optics
//   - options: functional options to configure the node
//
// Returns:
//   - Node: the new node
//   - error: an error if the optics are degenerate
func NewCamera(o camera.Optics, options ...NodeBuilderOption) (Node, error) {
	n := &cameraNode{optics: o}
	applyNodeOptions(&n.baseNode, NodeTypeCamera, options)
	if err := opticsForValidation(o).Validate(); err != nil {
		return nil, n.invalid("optics", err)
	}
	return n, nil
}

// opticsForValidation substitutes a placeholder for a deferred aspect ratio.
func opticsForValidation(o camera.Optics) camera.Optics {
	if o.Aspect == 0 {
		return o.WithAspect(1)
	}
	return o
}

func (n *cameraNode) Set(attr string, value any) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if attr != "optics" {
		return n.unknown(attr)
	}
	o, err := opticsFromAny(value, n.optics)
	if err != nil {
		return n.invalid(attr, err)
	}
	if err := opticsForValidation(o).Validate(); err != nil {
		return n.invalid(attr, err)
	}
	n.optics = o
	n.touch()
	return nil
}

func (n *cameraNode) Get(attr string) (any, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if attr != "optics" {
		return nil, n.unknown(attr)
	}
	return n.optics, nil
}

func (n *cameraNode) state(aspect float32) *transform.State {
	n.mu.Lock()
	defer n.mu.Unlock()

	o := n.optics
	if o.Aspect == 0 {
		o = o.WithAspect(common.Coalesce(aspect, 1))
	}
	if st := n.cache.lookup(nil, n.version, o.Aspect); st != nil {
		return st
	}
	m := o.ProjectionMatrix()
	return n.cache.store(nil, n.version, o.Aspect, m[:])
}

func (n *cameraNode) visit(t *traversal) error {
	state := func() *transform.State { return n.state(t.scene.aspect()) }
	return withState(t, t.scene.projection, state, func() error {
		return n.visitChildren(t)
	})
}

// opticsFromAny reads optics from a camera.Optics value or from a mapping with the keys
// type, fovy, aspect, near, far, left, right, bottom and top. Missing keys keep base.
func opticsFromAny(v any, base camera.Optics) (camera.Optics, error) {
	switch x := v.(type) {
	case camera.Optics:
		return x, nil
	case map[string]any:
		o := base
		fields := map[string]*float32{
			"fovy": &o.Fovy, "aspect": &o.Aspect, "near": &o.Near, "far": &o.Far,
			"left": &o.Left, "right": &o.Right, "bottom": &o.Bottom, "top": &o.Top,
		}
		for k, raw := range x {
			if k == "type" {
				s, ok := raw.(string)
				if !ok {
					return base, fmt.Errorf("key %q: want a string, got %T", k, raw)
				}
				o.Type = camera.ProjectionType(s)
				continue
			}
			dst, ok := fields[k]
			if !ok {
				return base, fmt.Errorf("unknown optics key %q", k)
			}
			f, err := toFloat32(raw)
			if err != nil {
				return base, fmt.Errorf("key %q: %w", k, err)
			}
			*dst = f
		}
		return o, nil
	default:
		return base, fmt.Errorf("want camera.Optics or a mapping, got %T", v)
	}
}
