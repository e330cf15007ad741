package light

import "math"

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithMode is an option builder that sets the kind of light source.
//
// Parameters:
//   - mode: directional or point
//
// Returns:
//   - LightBuilderOption: a function that applies the mode option to a lightImpl
func WithMode(mode LightMode) LightBuilderOption {
	return func(l *lightImpl) {
		l.mode = mode
	}
}

// WithVector is an option builder that sets the direction or position of the light.
// Directions are normalized once the mode is known.
//
// Parameters:
//   - x: the x component
//   - y: the y component
//   - z: the z component
//
// Returns:
//   - LightBuilderOption: a function that applies the vector option to a lightImpl
func WithVector(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.vector = [3]float32{x, y, z}
	}
}

// WithColor is an option builder that sets the RGB color of the light.
//
// Parameters:
//   - r: the red color component
//   - g: the green color component
//   - b: the blue color component
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a lightImpl
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = [3]float32{r, g, b}
	}
}

// WithDiffuse is an option builder that toggles the diffuse contribution.
//
// Parameters:
//   - enabled: whether the light lights surfaces diffusely
//
// Returns:
//   - LightBuilderOption: a function that applies the diffuse option to a lightImpl
func WithDiffuse(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.diffuse = enabled
	}
}

// WithSpecular is an option builder that toggles the specular contribution.
//
// Parameters:
//   - enabled: whether the light produces highlights
//
// Returns:
//   - LightBuilderOption: a function that applies the specular option to a lightImpl
func WithSpecular(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.specular = enabled
	}
}

// normalize3 returns the unit vector of (x, y, z), or (0, 0, -1) for a zero vector.
func normalize3(x, y, z float32) [3]float32 {
	length := float32(math.Sqrt(float64(x*x + y*y + z*z)))
	if length < 1e-8 {
		return [3]float32{0, 0, -1}
	}
	return [3]float32{x / length, y / length, z / length}
}

func boolToFloat(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
