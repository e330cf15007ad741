package model

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/common"
)

// model is the implementation of the Model interface.
type model struct {
	name           string
	positions      []float32
	normals        []float32
	indices        []uint32
	boundingRadius float32
	vertexData     []byte
	indexData      []byte
}

// Model defines the interface for an indexed triangle mesh drawn by geometry nodes.
// A Model is immutable after construction; its GPU buffers are marshaled once by
// NewModel and shared by every draw.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Positions retrieves the model-space vertex positions, three floats per vertex.
	//
	// Returns:
	//   - []float32: the positions
	Positions() []float32

	// Normals retrieves the vertex normals, three floats per vertex.
	//
	// Returns:
	//   - []float32: the normals
	Normals() []float32

	// Indices retrieves the triangle list indices.
	//
	// Returns:
	//   - []uint32: the indices
	Indices() []uint32

	// VertexCount returns the number of vertices.
	//
	// Returns:
	//   - int: the vertex count
	VertexCount() int

	// IndexCount returns the number of indices.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// BoundingRadius returns the bounding sphere radius for this model, measured as the
	// maximum distance of any vertex from the model-space origin.
	//
	// Returns:
	//   - float32: the bounding radius
	BoundingRadius() float32

	// VertexData returns the interleaved GPUVertex buffer.
	//
	// Returns:
	//   - []byte: the vertex buffer contents
	VertexData() []byte

	// IndexData returns the index buffer contents.
	//
	// Returns:
	//   - []byte: the uint32 indices as bytes
	IndexData() []byte
}

var _ Model = &model{}

// NewModel creates a new Model from the configured mesh data. Normals default to +Z when
// absent, and the bounding radius is computed from the positions unless set explicitly.
//
// Parameters:
//   - options: variadic list of ModelBuilderOption functions to configure the model
//
// Returns:
//   - Model: the newly created model
//   - error: an error if the mesh data is inconsistent
func NewModel(options ...ModelBuilderOption) (Model, error) {
	m := &model{}
	for _, opt := range options {
		opt(m)
	}

	if len(m.positions)%3 != 0 {
		return nil, fmt.Errorf("model %q: %d position floats is not a multiple of 3", m.name, len(m.positions))
	}
	count := len(m.positions) / 3
	if m.normals == nil {
		m.normals = make([]float32, len(m.positions))
		for i := range count {
			m.normals[i*3+2] = 1
		}
	}
	if len(m.normals) != len(m.positions) {
		return nil, fmt.Errorf("model %q: %d normal floats for %d vertices", m.name, len(m.normals), count)
	}
	if len(m.indices)%3 != 0 {
		return nil, fmt.Errorf("model %q: %d indices is not a triangle list", m.name, len(m.indices))
	}
	for _, idx := range m.indices {
		if int(idx) >= count {
			return nil, fmt.Errorf("model %q: index %d out of range for %d vertices", m.name, idx, count)
		}
	}

	if m.boundingRadius == 0 {
		m.boundingRadius = ComputeBoundingRadius(m.positions)
	}

	m.vertexData = make([]byte, 0, count*24)
	for i := range count {
		v := GPUVertex{
			Position: [3]float32{m.positions[i*3], m.positions[i*3+1], m.positions[i*3+2]},
			Normal:   [3]float32{m.normals[i*3], m.normals[i*3+1], m.normals[i*3+2]},
		}
		m.vertexData = append(m.vertexData, v.Marshal()...)
	}
	m.indexData = common.SliceToBytes(m.indices)

	return m, nil
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Positions() []float32 {
	return m.positions
}

func (m *model) Normals() []float32 {
	return m.normals
}

func (m *model) Indices() []uint32 {
	return m.indices
}

func (m *model) VertexCount() int {
	return len(m.positions) / 3
}

func (m *model) IndexCount() int {
	return len(m.indices)
}

func (m *model) BoundingRadius() float32 {
	return m.boundingRadius
}

func (m *model) VertexData() []byte {
	return m.vertexData
}

func (m *model) IndexData() []byte {
	return m.indexData
}
