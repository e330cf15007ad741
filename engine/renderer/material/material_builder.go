package material

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithBaseColor is an option builder that sets the diffuse RGB color of the material.
//
// Parameters:
//   - r, g, b: the base color components
//
// Returns:
//   - MaterialBuilderOption: a function that applies the base color option to a material
func WithBaseColor(r, g, b float32) MaterialBuilderOption {
	return func(m *material) {
		m.baseColor = [3]float32{r, g, b}
	}
}

// WithSpecularColor is an option builder that sets the RGB color of specular highlights.
//
// Parameters:
//   - r, g, b: the specular color components
//
// Returns:
//   - MaterialBuilderOption: a function that applies the specular color option to a material
func WithSpecularColor(r, g, b float32) MaterialBuilderOption {
	return func(m *material) {
		m.specularColor = [3]float32{r, g, b}
	}
}

// WithSpecular is an option builder that sets the specular intensity factor.
//
// Parameters:
//   - specular: the specular factor
//
// Returns:
//   - MaterialBuilderOption: a function that applies the specular option to a material
func WithSpecular(specular float32) MaterialBuilderOption {
	return func(m *material) {
		m.specular = specular
	}
}

// WithShine is an option builder that sets the specular exponent.
//
// Parameters:
//   - shine: the shininess
//
// Returns:
//   - MaterialBuilderOption: a function that applies the shine option to a material
func WithShine(shine float32) MaterialBuilderOption {
	return func(m *material) {
		m.shine = shine
	}
}

// WithEmit is an option builder that sets the emissive factor.
//
// Parameters:
//   - emit: the emissive factor
//
// Returns:
//   - MaterialBuilderOption: a function that applies the emit option to a material
func WithEmit(emit float32) MaterialBuilderOption {
	return func(m *material) {
		m.emit = emit
	}
}

// WithAlpha is an option builder that sets the opacity of the material.
//
// Parameters:
//   - alpha: the alpha value, 1 is opaque
//
// Returns:
//   - MaterialBuilderOption: a function that applies the alpha option to a material
func WithAlpha(alpha float32) MaterialBuilderOption {
	return func(m *material) {
		m.alpha = alpha
	}
}
