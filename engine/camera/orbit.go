package camera

import (
	"math"
	"sync"
)

// orbit is the implementation of the Orbit interface.
// The eye sits on a sphere around the target, described by radius, azimuth and elevation.
type orbit struct {
	mu *sync.Mutex

	target [3]float32
	eye    [3]float32
	up     [3]float32

	radius    float32
	azimuth   float32 // around Y, 0 = +Z
	elevation float32 // from the horizontal plane

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	orbitSpeed float32
	zoomSpeed  float32
}

// Orbit moves a lookAt eye around its target. The window key bindings drive it and the
// resulting LookAt is written back to the scene's lookAt node.
type Orbit interface {
	// LookAt returns the current eye placement.
	//
	// Returns:
	//   - LookAt: eye on the orbit sphere looking at the target
	LookAt() LookAt

	// OrbitLeft rotates the eye around the target by one orbit step.
	OrbitLeft()

	// OrbitRight rotates the eye around the target by one orbit step.
	OrbitRight()

	// OrbitUp raises the eye by one orbit step, clamped to the maximum elevation.
	OrbitUp()

	// OrbitDown lowers the eye by one orbit step, clamped to the minimum elevation.
	OrbitDown()

	// Zoom moves the eye towards the target for positive delta, clamped to the radius limits.
	//
	// Parameters:
	//   - delta: zoom amount in steps
	Zoom(delta float32)

	// Radius returns the distance between eye and target.
	//
	// Returns:
	//   - float32: the radius
	Radius() float32

	// Azimuth returns the horizontal angle in radians.
	//
	// Returns:
	//   - float32: the azimuth
	Azimuth() float32

	// Elevation returns the vertical angle in radians.
	//
	// Returns:
	//   - float32: the elevation
	Elevation() float32
}

var _ Orbit = &orbit{}

// NewOrbit creates an orbit controller. Without options the eye sits 15 units from the
// origin, 30 degrees above the horizontal plane.
//
// Parameters:
//   - options: functional options to configure the orbit
//
// Returns:
//   - Orbit: the newly created controller
func NewOrbit(options ...OrbitBuilderOption) Orbit {
	o := &orbit{
		mu: &sync.Mutex{},
		up: [3]float32{0, 1, 0},

		radius:    15,
		elevation: float32(math.Pi / 6),

		minRadius:    1,
		maxRadius:    1000,
		minElevation: float32(-math.Pi/2 + 0.1),
		maxElevation: float32(math.Pi/2 - 0.1),

		orbitSpeed: 0.03,
		zoomSpeed:  1,
	}

	for _, option := range options {
		option(o)
	}

	o.clamp()
	o.updateEye()
	return o
}

// updateEye recomputes the eye from the spherical coordinates. Caller must hold the mutex.
func (o *orbit) updateEye() {
	cosElev := float32(math.Cos(float64(o.elevation)))
	sinElev := float32(math.Sin(float64(o.elevation)))
	cosAzim := float32(math.Cos(float64(o.azimuth)))
	sinAzim := float32(math.Sin(float64(o.azimuth)))

	o.eye[0] = o.target[0] + o.radius*cosElev*sinAzim
	o.eye[1] = o.target[1] + o.radius*sinElev
	o.eye[2] = o.target[2] + o.radius*cosElev*cosAzim
}

// clamp applies the radius and elevation limits. Caller must hold the mutex.
func (o *orbit) clamp() {
	o.radius = min(max(o.radius, o.minRadius), o.maxRadius)
	o.elevation = min(max(o.elevation, o.minElevation), o.maxElevation)
}

func (o *orbit) LookAt() LookAt {
	o.mu.Lock()
	defer o.mu.Unlock()
	return LookAt{Eye: o.eye, Look: o.target, Up: o.up}
}

func (o *orbit) OrbitLeft() {
	o.step(-o.orbitSpeed, 0)
}

func (o *orbit) OrbitRight() {
	o.step(o.orbitSpeed, 0)
}

func (o *orbit) OrbitUp() {
	o.step(0, o.orbitSpeed)
}

func (o *orbit) OrbitDown() {
	o.step(0, -o.orbitSpeed)
}

func (o *orbit) step(azimuth, elevation float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.azimuth += azimuth
	o.elevation += elevation
	o.clamp()
	o.updateEye()
}

func (o *orbit) Zoom(delta float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.radius -= delta * o.zoomSpeed
	o.clamp()
	o.updateEye()
}

func (o *orbit) Radius() float32 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.radius
}

func (o *orbit) Azimuth() float32 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.azimuth
}

func (o *orbit) Elevation() float32 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.elevation
}
