package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModelValidates(t *testing.T) {
	_, err := NewModel(WithName("bad"), WithPositions([]float32{0, 0}))
	assert.ErrorContains(t, err, "multiple of 3")

	_, err = NewModel(WithPositions([]float32{0, 0, 0}), WithNormals([]float32{0, 1}))
	assert.ErrorContains(t, err, "normal floats")

	_, err = NewModel(WithPositions([]float32{0, 0, 0}), WithIndices([]uint32{0, 0}))
	assert.ErrorContains(t, err, "triangle list")

	_, err = NewModel(WithPositions([]float32{0, 0, 0}), WithIndices([]uint32{0, 0, 1}))
	assert.ErrorContains(t, err, "out of range")
}

func TestNewModelBuffers(t *testing.T) {
	m, err := NewModel(
		WithName("tri"),
		WithPositions([]float32{3, 0, 0, 0, 4, 0, 0, 0, 0}),
		WithIndices([]uint32{0, 1, 2}),
	)
	require.NoError(t, err)

	assert.Equal(t, "tri", m.Name())
	assert.Equal(t, 3, m.VertexCount())
	assert.Equal(t, 3, m.IndexCount())
	assert.Equal(t, float32(4), m.BoundingRadius())
	assert.Equal(t, []float32{0, 0, 1, 0, 0, 1, 0, 0, 1}, m.Normals())

	data := m.VertexData()
	require.Len(t, data, 3*24)
	assert.Equal(t, float32(3), math.Float32frombits(binary.LittleEndian.Uint32(data[0:4])))
	// second vertex y position
	assert.Equal(t, float32(4), math.Float32frombits(binary.LittleEndian.Uint32(data[28:32])))
	// first vertex normal z
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(data[20:24])))

	assert.Len(t, m.IndexData(), 12)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(m.IndexData()[4:8]))
}

func TestPrimitives(t *testing.T) {
	box, err := NewBox("box", 2, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 24, box.VertexCount())
	assert.Equal(t, 36, box.IndexCount())
	assert.InDelta(t, math.Sqrt(3), box.BoundingRadius(), 1e-6)

	_, err = NewBox("flat", 1, 0, 1)
	assert.Error(t, err)

	sphere, err := NewSphere("sphere", 2, 8, 4)
	require.NoError(t, err)
	assert.Equal(t, 9*5, sphere.VertexCount())
	assert.Equal(t, 8*4*6, sphere.IndexCount())
	assert.Equal(t, float32(2), sphere.BoundingRadius())
	p := sphere.Positions()
	for i := 0; i < len(p); i += 3 {
		assert.InDelta(t, 2, math.Sqrt(float64(p[i]*p[i]+p[i+1]*p[i+1]+p[i+2]*p[i+2])), 1e-5)
	}

	_, err = NewSphere("s", 1, 2, 2)
	assert.Error(t, err)

	torus, err := NewTorus("torus", 3, 1, 6, 12)
	require.NoError(t, err)
	assert.Equal(t, 7*13, torus.VertexCount())
	assert.Equal(t, 6*12*6, torus.IndexCount())
	assert.Equal(t, float32(4), torus.BoundingRadius())

	_, err = NewTorus("t", 3, 0, 6, 12)
	assert.Error(t, err)
}
