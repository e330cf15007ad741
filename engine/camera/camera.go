package camera

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-scene/common"
)

// ProjectionType selects the projection an Optics describes.
type ProjectionType string

const (
	// ProjectionPerspective is a symmetric perspective frustum.
	ProjectionPerspective ProjectionType = "perspective"

	// ProjectionOrtho is an orthographic box.
	ProjectionOrtho ProjectionType = "ortho"
)

// Optics describes the projection of a camera node. Fovy is in degrees.
type Optics struct {
	Type   ProjectionType
	Fovy   float32
	Aspect float32
	Near   float32
	Far    float32

	// orthographic bounds, used when Type is ProjectionOrtho
	Left, Right, Bottom, Top float32
}

// DefaultOptics is the perspective used by camera nodes that do not specify optics.
var DefaultOptics = Optics{
	Type:   ProjectionPerspective,
	Fovy:   60,
	Aspect: 1,
	Near:   0.1,
	Far:    5000,
}

// Validate checks that the optics describe a non-degenerate projection.
//
// Returns:
//   - error: an error naming the offending parameter
func (o Optics) Validate() error {
	if o.Near <= 0 && o.Type == ProjectionPerspective {
		return fmt.Errorf("optics: near must be positive, got %v", o.Near)
	}
	if o.Far <= o.Near {
		return fmt.Errorf("optics: far (%v) must exceed near (%v)", o.Far, o.Near)
	}
	switch o.Type {
	case ProjectionPerspective:
		if o.Fovy <= 0 || o.Fovy >= 180 {
			return fmt.Errorf("optics: fovy must be in (0, 180) degrees, got %v", o.Fovy)
		}
		if o.Aspect <= 0 {
			return fmt.Errorf("optics: aspect must be positive, got %v", o.Aspect)
		}
	case ProjectionOrtho:
		if o.Right == o.Left || o.Top == o.Bottom {
			return fmt.Errorf("optics: ortho bounds are empty")
		}
	default:
		return fmt.Errorf("optics: unknown type %q", o.Type)
	}
	return nil
}

// ProjectionMatrix computes the column-major projection matrix for WebGPU clip space.
//
// Returns:
//   - [16]float32: the projection matrix
func (o Optics) ProjectionMatrix() [16]float32 {
	var out [16]float32
	switch o.Type {
	case ProjectionOrtho:
		orthographic(out[:], o.Left, o.Right, o.Bottom, o.Top, o.Near, o.Far)
	default:
		common.Perspective(out[:], o.Fovy*(math.Pi/180.0), o.Aspect, o.Near, o.Far)
	}
	return out
}

// WithAspect returns a copy of the optics with a new aspect ratio, used when the render
// target is resized.
func (o Optics) WithAspect(aspect float32) Optics {
	o.Aspect = aspect
	return o
}

// LookAt places the eye of a lookAt node.
type LookAt struct {
	Eye  [3]float32
	Look [3]float32
	Up   [3]float32
}

// DefaultLookAt looks down -Z from the origin's front.
var DefaultLookAt = LookAt{
	Eye:  [3]float32{0, 0, 1},
	Look: [3]float32{0, 0, 0},
	Up:   [3]float32{0, 1, 0},
}

// ViewMatrix computes the column-major view matrix.
//
// Returns:
//   - [16]float32: the view matrix
func (l LookAt) ViewMatrix() [16]float32 {
	var out [16]float32
	common.LookAt(out[:],
		l.Eye[0], l.Eye[1], l.Eye[2],
		l.Look[0], l.Look[1], l.Look[2],
		l.Up[0], l.Up[1], l.Up[2],
	)
	return out
}

// ViewProjectionMatrix combines optics and eye placement into projection × view.
//
// Parameters:
//   - o: the optics
//   - l: the eye placement
//
// Returns:
//   - [16]float32: the combined matrix
func ViewProjectionMatrix(o Optics, l LookAt) [16]float32 {
	proj := o.ProjectionMatrix()
	view := l.ViewMatrix()
	var out [16]float32
	common.Mul4(out[:], proj[:], view[:])
	return out
}

// orthographic writes an orthographic projection mapping depth to [0, 1].
func orthographic(out []float32, left, right, bottom, top, near, far float32) {
	for i := range out {
		out[i] = 0
	}
	out[0] = 2 / (right - left)
	out[5] = 2 / (top - bottom)
	out[10] = 1 / (near - far)
	out[12] = -(right + left) / (right - left)
	out[13] = -(top + bottom) / (top - bottom)
	out[14] = near / (near - far)
	out[15] = 1
}
