package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMaterialDefaults(t *testing.T) {
	m := NewMaterial()
	assert.Equal(t, [3]float32{1, 1, 1}, m.BaseColor())
	assert.Equal(t, float32(70), m.Shine())
	assert.Equal(t, float32(1), m.Alpha())
	assert.Equal(t, m.GPU(), Default)
}

func TestMaterialOptionsAndSetters(t *testing.T) {
	m := NewMaterial(
		WithName("glaze"),
		WithBaseColor(0.3, 0.3, 0.6),
		WithSpecularColor(0.9, 0.9, 0.9),
		WithSpecular(0.7),
		WithShine(10),
		WithAlpha(0.9),
	)
	assert.Equal(t, "glaze", m.Name())
	assert.Equal(t, float32(0.7), m.Specular())

	g := m.GPU()
	assert.Equal(t, GPUMaterialSize, g.Size())
	assert.Equal(t, []float32{0.3, 0.3, 0.6, 0.9, 0.9, 0.9, 0.9, 0.7, 10, 0, 0, 0}, g.Floats())
	assert.Len(t, g.Marshal(), GPUMaterialSize)

	m.SetEmit(0.5)
	m.SetBaseColor(1, 0, 0)
	assert.Equal(t, float32(0.5), m.Emit())
	assert.Equal(t, [3]float32{1, 0, 0}, m.GPU().BaseColor)
	assert.Equal(t, float32(0), g.Emit)
}
