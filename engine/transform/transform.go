// Package transform implements the model, view and projection transform backends.
// Each backend owns the current transform State of its space, lazily derives the packed
// GPU forms of that state, and exports them to a MatrixSink at most once per shader
// activation.
package transform

import (
	"cogentcore.org/core/math32"

	"github.com/Carmen-Shannon/oxy-scene/engine/event"
)

// Space identifies which transform stack a backend manages.
type Space int

const (
	// SpaceModel is the modelling transform (object to world).
	SpaceModel Space = iota

	// SpaceView is the viewing transform (world to eye).
	SpaceView

	// SpaceProjection is the projection transform (eye to clip).
	SpaceProjection
)

func (s Space) String() string {
	switch s {
	case SpaceModel:
		return "model"
	case SpaceView:
		return "view"
	case SpaceProjection:
		return "projection"
	default:
		return "unknown"
	}
}

// updatedKind maps a space to the event kind fired when its state is replaced.
func (s Space) updatedKind() event.Kind {
	switch s {
	case SpaceView:
		return event.ViewTransformUpdated
	case SpaceProjection:
		return event.ProjectionTransformUpdated
	default:
		return event.ModelTransformUpdated
	}
}

// derived holds the packed forms computed from a State. The forms are valid only while
// generation matches the generation of the owning State.
type derived struct {
	generation uint64
	packed     []float32
	normal     []float32
}

// State is one value of a transform stack. Backends stamp a generation on every State
// they are given; the derived cache is reused for as long as the same State is current.
// Callers must not mutate Matrix after handing the State to a backend.
type State struct {
	// Matrix is the canonical column-major 4x4 transform.
	Matrix math32.Matrix4

	// Identity reports that Matrix is the identity.
	Identity bool

	// Fixed reports that the transform never changes between frames.
	Fixed bool

	generation uint64
	cache      derived
}

// NewState creates a non-fixed State for m with an empty derived cache.
//
// Parameters:
//   - m: the transform matrix
//
// Returns:
//   - *State: the new state
func NewState(m math32.Matrix4) *State {
	return &State{Matrix: m}
}

// IdentityState creates the fixed identity State a backend resets to at the start of
// every frame.
//
// Returns:
//   - *State: the identity state
func IdentityState() *State {
	return &State{
		Matrix:   *math32.Identity4(),
		Identity: true,
		Fixed:    true,
	}
}

// Generation returns the generation stamped on the state by its backend, or 0 if the
// state has never been set on one.
func (t *State) Generation() uint64 {
	return t.generation
}

// Cached reports whether the packed forms are present for the current generation.
func (t *State) Cached() bool {
	return t.generation != 0 && t.cache.generation == t.generation && t.cache.packed != nil
}

// UpdatedEvent is fired by a backend after SetTransform. The kind depends on the space:
// event.ModelTransformUpdated, event.ViewTransformUpdated or event.ProjectionTransformUpdated.
type UpdatedEvent struct {
	// Space is the space of the backend that changed.
	Space Space

	// State is the new current state. Listeners must treat it as read-only.
	State *State
}

func (e UpdatedEvent) Kind() event.Kind { return e.Space.updatedKind() }

// MatrixSink receives the packed matrices exported by transform backends. The shader
// backend implements it. The slices passed are owned by the backend's cache and must be
// treated as read-only.
type MatrixSink interface {
	// AddModelMatrices stores the packed model matrix and its normal matrix.
	//
	// Parameters:
	//   - model: packed model matrix
	//   - normal: packed transpose of the inverse model matrix
	AddModelMatrices(model, normal []float32)

	// AddViewMatrices stores the packed view matrix and its normal matrix.
	//
	// Parameters:
	//   - view: packed view matrix
	//   - normal: packed transpose of the inverse view matrix
	AddViewMatrices(view, normal []float32)

	// AddProjectionMatrix stores the packed projection matrix.
	//
	// Parameters:
	//   - projection: packed projection matrix
	AddProjectionMatrix(projection []float32)
}
