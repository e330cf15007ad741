package camera

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-scene/common"
)

func transformPoint(m [16]float32, p [3]float32) [4]float32 {
	var out [4]float32
	for row := range 4 {
		out[row] = m[row]*p[0] + m[4+row]*p[1] + m[8+row]*p[2] + m[12+row]
	}
	return out
}

func TestOpticsValidate(t *testing.T) {
	assert.NoError(t, DefaultOptics.Validate())

	bad := DefaultOptics
	bad.Near = 0
	assert.ErrorContains(t, bad.Validate(), "near")

	bad = DefaultOptics
	bad.Far = 0.05
	assert.ErrorContains(t, bad.Validate(), "far")

	bad = DefaultOptics
	bad.Fovy = 180
	assert.ErrorContains(t, bad.Validate(), "fovy")

	bad = DefaultOptics
	bad.Type = "fisheye"
	assert.ErrorContains(t, bad.Validate(), "unknown type")

	ortho := Optics{Type: ProjectionOrtho, Left: -1, Right: 1, Bottom: -1, Top: 1, Near: 0, Far: 10}
	assert.NoError(t, ortho.Validate())
}

func TestPerspectiveProjection(t *testing.T) {
	o := Optics{Type: ProjectionPerspective, Fovy: 25, Aspect: 1.47, Near: 0.1, Far: 300}
	got := o.ProjectionMatrix()

	want := make([]float32, 16)
	common.Perspective(want, o.Fovy*(math.Pi/180.0), o.Aspect, o.Near, o.Far)
	assert.Equal(t, want, got[:])

	wide := o.WithAspect(2)
	assert.Equal(t, float32(2), wide.Aspect)
	assert.Equal(t, float32(1.47), o.Aspect)
}

func TestOrthographicProjection(t *testing.T) {
	o := Optics{Type: ProjectionOrtho, Left: -2, Right: 2, Bottom: -1, Top: 1, Near: 1, Far: 11}
	m := o.ProjectionMatrix()

	near := transformPoint(m, [3]float32{2, 1, -1})
	assert.InDelta(t, 1, near[0], 1e-6)
	assert.InDelta(t, 1, near[1], 1e-6)
	assert.InDelta(t, 0, near[2], 1e-6)

	far := transformPoint(m, [3]float32{-2, -1, -11})
	assert.InDelta(t, -1, far[0], 1e-6)
	assert.InDelta(t, -1, far[1], 1e-6)
	assert.InDelta(t, 1, far[2], 1e-6)
}

func TestLookAtViewMatrix(t *testing.T) {
	l := LookAt{Eye: [3]float32{0, 10, 15}, Look: [3]float32{0, 1, 0}, Up: [3]float32{0, 1, 0}}
	view := l.ViewMatrix()

	eye := transformPoint(view, l.Eye)
	assert.InDelta(t, 0, eye[0], 1e-5)
	assert.InDelta(t, 0, eye[1], 1e-5)
	assert.InDelta(t, 0, eye[2], 1e-5)

	// the look point lies straight ahead on -Z
	look := transformPoint(view, l.Look)
	assert.InDelta(t, 0, look[0], 1e-5)
	assert.InDelta(t, 0, look[1], 1e-5)
	assert.Less(t, look[2], float32(0))

	vp := ViewProjectionMatrix(DefaultOptics, l)
	proj := DefaultOptics.ProjectionMatrix()
	want := make([]float32, 16)
	common.Mul4(want, proj[:], view[:])
	assert.Equal(t, want, vp[:])
}

func TestOrbitFromLookAt(t *testing.T) {
	start := LookAt{Eye: [3]float32{0, 10, 15}, Look: [3]float32{0, 1, 0}, Up: [3]float32{0, 1, 0}}
	o := NewOrbit(WithLookAt(start))

	got := o.LookAt()
	require.Equal(t, start.Look, got.Look)
	for i := range 3 {
		assert.InDelta(t, start.Eye[i], got.Eye[i], 1e-4)
	}
	assert.InDelta(t, math.Sqrt(81+225), o.Radius(), 1e-4)
	assert.InDelta(t, 0, o.Azimuth(), 1e-6)
}

func TestOrbitStepsAndClamps(t *testing.T) {
	o := NewOrbit(WithOrbitSpeed(1), WithZoomSpeed(10), WithRadiusLimits(5, 20))

	o.OrbitRight()
	assert.InDelta(t, 1, o.Azimuth(), 1e-6)
	o.OrbitLeft()
	o.OrbitLeft()
	assert.InDelta(t, -1, o.Azimuth(), 1e-6)

	for range 5 {
		o.OrbitUp()
	}
	assert.InDelta(t, math.Pi/2-0.1, o.Elevation(), 1e-6)
	for range 10 {
		o.OrbitDown()
	}
	assert.InDelta(t, -math.Pi/2+0.1, o.Elevation(), 1e-6)

	o.Zoom(1)
	assert.Equal(t, float32(5), o.Radius())
	o.Zoom(-5)
	assert.Equal(t, float32(20), o.Radius())

	l := o.LookAt()
	dist := math.Sqrt(float64(l.Eye[0]*l.Eye[0] + l.Eye[1]*l.Eye[1] + l.Eye[2]*l.Eye[2]))
	assert.InDelta(t, 20, dist, 1e-4)
}
