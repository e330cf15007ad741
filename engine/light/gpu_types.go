package light

import (
	"unsafe"

	"github.com/Carmen-Shannon/oxy-scene/common"
)

// MaxGPULights is the capacity of the Lights uniform. Lights visited past this count in a
// traversal pass are not evaluated.
const MaxGPULights = 8

// GPULight is the GPU-aligned representation of a single light source.
// Matches the WGSL Light struct of the fragment skeleton.
// Size: 48 bytes (uniform address space, 16 byte aligned).
type GPULight struct {
	Color    [3]float32 // offset  0: RGB color
	Mode     float32    // offset 12: 0 = dir, 1 = point
	Vector   [3]float32 // offset 16: direction (dir) or position (point)
	Diffuse  float32    // offset 28: 1 = diffuse enabled
	Specular float32    // offset 32: 1 = specular enabled
	_pad     [3]float32 // offset 36: padding to 48-byte stride
}

// Size returns the size of the GPULight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPULight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Floats returns the light as the float block written into the Lights uniform.
//
// Returns:
//   - []float32: 12 floats
func (g *GPULight) Floats() []float32 {
	return []float32{
		g.Color[0], g.Color[1], g.Color[2], g.Mode,
		g.Vector[0], g.Vector[1], g.Vector[2], g.Diffuse,
		g.Specular, 0, 0, 0,
	}
}

// Marshal serializes the GPULight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload
func (g *GPULight) Marshal() []byte {
	return common.SliceToBytes(g.Floats())
}

// GPULightsSize is the byte size of the Lights uniform: a 16 byte count header followed by
// MaxGPULights lights.
const GPULightsSize = 16 + MaxGPULights*48

// PackLights builds the Lights uniform from the lights in visit order. Lights beyond
// MaxGPULights are dropped.
//
// Parameters:
//   - lights: the lights visited so far in the pass
//
// Returns:
//   - []float32: GPULightsSize/4 floats, count at index 0
func PackLights(lights []GPULight) []float32 {
	out := make([]float32, GPULightsSize/4)
	n := min(len(lights), MaxGPULights)
	out[0] = float32(n)
	for i := range n {
		copy(out[4+i*12:], lights[i].Floats())
	}
	return out
}
