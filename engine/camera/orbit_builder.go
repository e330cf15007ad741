package camera

import "math"

// OrbitBuilderOption is a functional option for configuring an Orbit.
type OrbitBuilderOption func(*orbit)

// WithLookAt derives the orbit from an existing eye placement: the target becomes the look
// point and the eye's offset is converted to spherical coordinates.
//
// Parameters:
//   - l: the eye placement to start from
//
// Returns:
//   - OrbitBuilderOption: functional option to set the starting placement
func WithLookAt(l LookAt) OrbitBuilderOption {
	return func(o *orbit) {
		o.target = l.Look
		o.up = l.Up
		dx := float64(l.Eye[0] - l.Look[0])
		dy := float64(l.Eye[1] - l.Look[1])
		dz := float64(l.Eye[2] - l.Look[2])
		r := math.Sqrt(dx*dx + dy*dy + dz*dz)
		if r == 0 {
			return
		}
		o.radius = float32(r)
		o.elevation = float32(math.Asin(dy / r))
		o.azimuth = float32(math.Atan2(dx, dz))
	}
}

// WithRadiusLimits sets the minimum and maximum eye distance.
//
// Parameters:
//   - minRadius: closest allowed distance
//   - maxRadius: farthest allowed distance
//
// Returns:
//   - OrbitBuilderOption: functional option to set the limits
func WithRadiusLimits(minRadius, maxRadius float32) OrbitBuilderOption {
	return func(o *orbit) {
		o.minRadius = minRadius
		o.maxRadius = maxRadius
	}
}

// WithOrbitSpeed sets the angle in radians of one orbit step.
//
// Parameters:
//   - speed: radians per step
//
// Returns:
//   - OrbitBuilderOption: functional option to set the step
func WithOrbitSpeed(speed float32) OrbitBuilderOption {
	return func(o *orbit) {
		o.orbitSpeed = speed
	}
}

// WithZoomSpeed sets the distance of one zoom step.
//
// Parameters:
//   - speed: units per step
//
// Returns:
//   - OrbitBuilderOption: functional option to set the step
func WithZoomSpeed(speed float32) OrbitBuilderOption {
	return func(o *orbit) {
		o.zoomSpeed = speed
	}
}
