package model

// ModelBuilderOption is a function that configures a model instance during construction.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithPositions is an option builder that sets the model-space vertex positions.
//
// Parameters:
//   - positions: three floats per vertex
//
// Returns:
//   - ModelBuilderOption: a function that applies the positions option to a model
func WithPositions(positions []float32) ModelBuilderOption {
	return func(m *model) {
		m.positions = positions
	}
}

// WithNormals is an option builder that sets the vertex normals.
//
// Parameters:
//   - normals: three floats per vertex
//
// Returns:
//   - ModelBuilderOption: a function that applies the normals option to a model
func WithNormals(normals []float32) ModelBuilderOption {
	return func(m *model) {
		m.normals = normals
	}
}

// WithIndices is an option builder that sets the triangle list indices.
//
// Parameters:
//   - indices: three indices per triangle
//
// Returns:
//   - ModelBuilderOption: a function that applies the indices option to a model
func WithIndices(indices []uint32) ModelBuilderOption {
	return func(m *model) {
		m.indices = indices
	}
}

// WithBoundingRadius is an option builder that manually sets the bounding sphere radius.
// Use this to override the auto-computed value from ComputeBoundingRadius when a manually
// tuned conservative bound is preferred.
//
// Parameters:
//   - radius: the bounding radius to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the bounding radius option to a model
func WithBoundingRadius(radius float32) ModelBuilderOption {
	return func(m *model) {
		m.boundingRadius = radius
	}
}
