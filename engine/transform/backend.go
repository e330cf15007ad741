package transform

import (
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/event"
)

// backend is the implementation of the Backend interface.
type backend struct {
	space  Space
	bus    event.Bus
	sink   MatrixSink
	logger *zap.Logger

	state          *State
	dirty          bool
	lastGeneration uint64

	// counters for the derived-form computations, read by tests
	packComputations   int
	normalComputations int
}

// Backend manages the current transform of one space. The state machine has two states:
// dirty and clean. SetTransform, SceneRendering, ShaderActivated and ShaderDeactivated make
// it dirty; only a ShaderRendering event received while dirty exports the packed matrices
// to the MatrixSink and makes it clean.
type Backend interface {
	// Space returns the transform space this backend manages.
	//
	// Returns:
	//   - Space: model, view or projection
	Space() Space

	// SetTransform replaces the current state wholesale, marks the backend dirty and
	// fires the space's updated event with the new state. A state that has never been
	// set on a backend receives a fresh generation, which invalidates any derived forms;
	// a state that was current before keeps its derived cache. A nil state is treated
	// as the identity.
	//
	// Parameters:
	//   - t: the new state; the caller must not mutate it afterwards
	SetTransform(t *State)

	// Transform returns the current state by reference. Callers must not mutate it;
	// changes go through SetTransform.
	//
	// Returns:
	//   - *State: the current state
	Transform() *State

	// Dirty reports whether the packed matrices must be exported on the next
	// ShaderRendering event.
	//
	// Returns:
	//   - bool: true if an export is pending
	Dirty() bool

	// Generation returns the generation of the current state.
	//
	// Returns:
	//   - uint64: the current generation
	Generation() uint64
}

var _ Backend = &backend{}

// NewBackend creates a Backend for space and subscribes it to the lifecycle events on bus.
// Panics if bus or sink is nil.
//
// Parameters:
//   - space: the transform space to manage
//   - bus: the session event bus
//   - sink: the receiver of exported matrices (normally the shader backend)
//   - options: functional options to configure the backend
//
// Returns:
//   - Backend: the newly created backend
func NewBackend(space Space, bus event.Bus, sink MatrixSink, options ...BackendBuilderOption) Backend {
	if bus == nil {
		panic("transform: NewBackend requires a non-nil event bus")
	}
	if sink == nil {
		panic("transform: NewBackend requires a non-nil matrix sink")
	}
	b := &backend{
		space:  space,
		bus:    bus,
		sink:   sink,
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		opt(b)
	}
	b.reset()

	bus.AddListener(event.SceneRendering, func(event.Event) {
		b.reset()
	})
	bus.AddListener(event.ShaderActivated, func(event.Event) {
		b.dirty = true
	})
	bus.AddListener(event.ShaderRendering, func(event.Event) {
		if b.dirty {
			b.export()
			b.dirty = false
		}
	})
	bus.AddListener(event.ShaderDeactivated, func(event.Event) {
		b.dirty = true
	})
	return b
}

func (b *backend) Space() Space {
	return b.space
}

func (b *backend) SetTransform(t *State) {
	if t == nil {
		t = IdentityState()
	}
	b.stamp(t)
	b.state = t
	b.dirty = true
	b.bus.Fire(UpdatedEvent{Space: b.space, State: t})
}

func (b *backend) Transform() *State {
	return b.state
}

func (b *backend) Dirty() bool {
	return b.dirty
}

func (b *backend) Generation() uint64 {
	return b.state.generation
}

// reset installs a fresh identity state and marks the backend dirty.
func (b *backend) reset() {
	t := IdentityState()
	b.stamp(t)
	b.state = t
	b.dirty = true
}

// stamp assigns the next generation to a state that has none yet.
func (b *backend) stamp(t *State) {
	if t.generation != 0 {
		return
	}
	b.lastGeneration++
	t.generation = b.lastGeneration
}

// derive fills in whichever packed forms are missing for the current generation.
// The projection space has no normal matrix.
func (b *backend) derive() {
	t := b.state
	c := &t.cache
	if c.generation != t.generation {
		*c = derived{generation: t.generation}
	}
	if c.packed == nil {
		c.packed = common.Pack(&t.Matrix)
		b.packComputations++
	}
	if b.space != SpaceProjection && c.normal == nil {
		normal, ok := common.NormalMatrix(&t.Matrix)
		if !ok {
			b.logger.Warn("singular transform, using identity normal matrix",
				zap.Stringer("space", b.space),
				zap.Uint64("generation", t.generation))
		}
		c.normal = normal
		b.normalComputations++
	}
}

func (b *backend) export() {
	b.derive()
	c := &b.state.cache
	switch b.space {
	case SpaceModel:
		b.sink.AddModelMatrices(c.packed, c.normal)
	case SpaceView:
		b.sink.AddViewMatrices(c.packed, c.normal)
	case SpaceProjection:
		b.sink.AddProjectionMatrix(c.packed)
	}
}
