package material

import "sync"

// material is the implementation of the Material interface.
type material struct {
	mu            sync.RWMutex
	name          string
	baseColor     [3]float32
	specularColor [3]float32
	specular      float32
	shine         float32
	emit          float32
	alpha         float32
}

// Material defines the interface for the surface parameters applied to every geometry drawn
// beneath a material node. The fragment skeleton reads them through the Material uniform and
// exposes the base color and alpha to the materialBaseColor and materialAlpha hooks.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// BaseColor retrieves the diffuse RGB color of the material.
	//
	// Returns:
	//   - [3]float32: the base color
	BaseColor() [3]float32

	// SpecularColor retrieves the RGB color of specular highlights.
	//
	// Returns:
	//   - [3]float32: the specular color
	SpecularColor() [3]float32

	// Specular retrieves the specular intensity factor.
	//
	// Returns:
	//   - float32: the specular factor
	Specular() float32

	// Shine retrieves the specular exponent. Higher values give smaller highlights.
	//
	// Returns:
	//   - float32: the shininess
	Shine() float32

	// Emit retrieves the emissive factor added to the lit color.
	//
	// Returns:
	//   - float32: the emissive factor
	Emit() float32

	// Alpha retrieves the opacity of the material.
	//
	// Returns:
	//   - float32: the alpha value, 1 is opaque
	Alpha() float32

	// SetBaseColor sets the diffuse RGB color.
	SetBaseColor(r, g, b float32)

	// SetSpecularColor sets the RGB color of specular highlights.
	SetSpecularColor(r, g, b float32)

	// SetSpecular sets the specular intensity factor.
	SetSpecular(specular float32)

	// SetShine sets the specular exponent.
	SetShine(shine float32)

	// SetEmit sets the emissive factor.
	SetEmit(emit float32)

	// SetAlpha sets the opacity.
	SetAlpha(alpha float32)

	// GPU returns a snapshot of the material in its uniform layout.
	//
	// Returns:
	//   - GPUMaterial: the GPU-aligned material
	GPU() GPUMaterial
}

var _ Material = &material{}

// NewMaterial creates a new Material with the default surface: white, fully specular,
// shine 70 and opaque.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: the newly created material
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		baseColor:     [3]float32{1, 1, 1},
		specularColor: [3]float32{1, 1, 1},
		specular:      1,
		shine:         70,
		alpha:         1,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Default is the GPU layout of a material with no options, used for geometry outside any
// material node.
var Default = NewMaterial().GPU()

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() [3]float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.baseColor
}

func (m *material) SpecularColor() [3]float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.specularColor
}

func (m *material) Specular() float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.specular
}

func (m *material) Shine() float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.shine
}

func (m *material) Emit() float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.emit
}

func (m *material) Alpha() float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.alpha
}

func (m *material) SetBaseColor(r, g, b float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baseColor = [3]float32{r, g, b}
}

func (m *material) SetSpecularColor(r, g, b float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.specularColor = [3]float32{r, g, b}
}

func (m *material) SetSpecular(specular float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.specular = specular
}

func (m *material) SetShine(shine float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shine = shine
}

func (m *material) SetEmit(emit float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emit = emit
}

func (m *material) SetAlpha(alpha float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alpha = alpha
}

func (m *material) GPU() GPUMaterial {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return GPUMaterial{
		BaseColor:     m.baseColor,
		Alpha:         m.alpha,
		SpecularColor: m.specularColor,
		Specular:      m.specular,
		Shine:         m.shine,
		Emit:          m.emit,
	}
}
