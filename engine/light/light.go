package light

import "sync"

// LightMode identifies how the light vector is interpreted.
type LightMode int

const (
	// LightModeDir represents a light with no position, only direction. The vector is the
	// direction the light travels in world space.
	LightModeDir LightMode = iota

	// LightModePoint represents a light that emits in all directions from a position. The
	// vector is the world-space position.
	LightModePoint
)

// String returns the scene attribute name of the mode.
func (m LightMode) String() string {
	switch m {
	case LightModeDir:
		return "dir"
	case LightModePoint:
		return "point"
	default:
		return "unknown"
	}
}

// ParseLightMode converts a scene attribute value into a LightMode.
//
// Parameters:
//   - s: "dir" or "point"
//
// Returns:
//   - LightMode: the parsed mode
//   - bool: false if s names no mode
func ParseLightMode(s string) (LightMode, bool) {
	switch s {
	case "dir":
		return LightModeDir, true
	case "point":
		return LightModePoint, true
	default:
		return LightModeDir, false
	}
}

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	mu       sync.RWMutex
	mode     LightMode
	color    [3]float32
	vector   [3]float32
	diffuse  bool
	specular bool
}

// Light defines the interface for a light source in the scene.
//
// A light contributes to every geometry drawn after it in the same traversal pass. The
// fragment skeleton evaluates up to MaxGPULights of them per draw.
type Light interface {
	// Mode returns the kind of light source.
	//
	// Returns:
	//   - LightMode: directional or point
	Mode() LightMode

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - [3]float32: color as (r, g, b)
	Color() [3]float32

	// Vector returns the direction of a directional light or the position of a point light.
	//
	// Returns:
	//   - [3]float32: the vector as (x, y, z)
	Vector() [3]float32

	// Diffuse reports whether the light contributes diffuse reflection.
	Diffuse() bool

	// Specular reports whether the light contributes specular reflection.
	Specular() bool

	// SetMode sets the kind of light source.
	//
	// Parameters:
	//   - mode: the new mode
	SetMode(mode LightMode)

	// SetColor sets the RGB color of the light.
	//
	// Parameters:
	//   - r, g, b: color components
	SetColor(r, g, b float32)

	// SetVector sets the direction or position of the light. Directions are normalized.
	//
	// Parameters:
	//   - x, y, z: vector components
	SetVector(x, y, z float32)

	// SetDiffuse toggles the diffuse contribution.
	SetDiffuse(enabled bool)

	// SetSpecular toggles the specular contribution.
	SetSpecular(enabled bool)

	// GPU returns a snapshot of the light in its uniform layout.
	//
	// Returns:
	//   - GPULight: the GPU-aligned light
	GPU() GPULight
}

var _ Light = &lightImpl{}

// NewLight creates a new Light. Without options the light is a white directional light
// pointing down -Z with diffuse and specular contributions enabled.
//
// Parameters:
//   - options: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: the newly created light
func NewLight(options ...LightBuilderOption) Light {
	l := &lightImpl{
		mode:     LightModeDir,
		color:    [3]float32{1, 1, 1},
		vector:   [3]float32{0, 0, -1},
		diffuse:  true,
		specular: true,
	}
	for _, opt := range options {
		opt(l)
	}
	if l.mode == LightModeDir {
		l.vector = normalize3(l.vector[0], l.vector[1], l.vector[2])
	}
	return l
}

func (l *lightImpl) Mode() LightMode {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.mode
}

func (l *lightImpl) Color() [3]float32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.color
}

func (l *lightImpl) Vector() [3]float32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.vector
}

func (l *lightImpl) Diffuse() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.diffuse
}

func (l *lightImpl) Specular() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.specular
}

func (l *lightImpl) SetMode(mode LightMode) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mode = mode
	if mode == LightModeDir {
		l.vector = normalize3(l.vector[0], l.vector[1], l.vector[2])
	}
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = [3]float32{r, g, b}
}

func (l *lightImpl) SetVector(x, y, z float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.mode == LightModeDir {
		l.vector = normalize3(x, y, z)
		return
	}
	l.vector = [3]float32{x, y, z}
}

func (l *lightImpl) SetDiffuse(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.diffuse = enabled
}

func (l *lightImpl) SetSpecular(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.specular = enabled
}

func (l *lightImpl) GPU() GPULight {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return GPULight{
		Color:    l.color,
		Mode:     float32(l.mode),
		Vector:   l.vector,
		Diffuse:  boolToFloat(l.diffuse),
		Specular: boolToFloat(l.specular),
	}
}
