package material

import (
	"unsafe"

	"github.com/Carmen-Shannon/oxy-scene/common"
)

// GPUMaterialSize is the byte size of the Material uniform.
const GPUMaterialSize = 48

// GPUMaterial is the GPU-aligned uniform for the fragment skeleton's Material struct.
// Size: 48 bytes (three vec4<f32> rows).
type GPUMaterial struct {
	BaseColor     [3]float32 // offset  0: diffuse RGB
	Alpha         float32    // offset 12: opacity
	SpecularColor [3]float32 // offset 16: highlight RGB
	Specular      float32    // offset 28: specular factor
	Shine         float32    // offset 32: specular exponent
	Emit          float32    // offset 36: emissive factor
	_pad          [2]float32 // offset 40: padding to 48 bytes
}

// Size returns the size of the GPUMaterial struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUMaterial) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Floats returns the material as the float block written into the Material uniform.
//
// Returns:
//   - []float32: 12 floats
func (g *GPUMaterial) Floats() []float32 {
	return []float32{
		g.BaseColor[0], g.BaseColor[1], g.BaseColor[2], g.Alpha,
		g.SpecularColor[0], g.SpecularColor[1], g.SpecularColor[2], g.Specular,
		g.Shine, g.Emit, 0, 0,
	}
}

// Marshal serializes the GPUMaterial struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload.
func (g *GPUMaterial) Marshal() []byte {
	return common.SliceToBytes(g.Floats())
}
