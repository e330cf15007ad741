package common

import (
	"math"

	"cogentcore.org/core/math32"
)

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// All matrices are stored in column-major order (OpenGL/WebGPU convention).
// Result: out = a * b
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for i := 0; i < 4; i++ { // column of B
		for j := 0; j < 4; j++ { // row of A
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			buf[i*4+j] = sum
		}
	}
	copy(out, buf[:])
}

// Rotation writes a rotation of angleDeg degrees around the axis (x, y, z) into out.
// A zero-length axis produces the identity matrix.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - angleDeg: rotation angle in degrees, counter-clockwise when looking down the axis
//   - x, y, z: rotation axis, normalized internally
func Rotation(out []float32, angleDeg, x, y, z float32) {
	Identity(out)
	length := float32(math.Sqrt(float64(x*x + y*y + z*z)))
	if length == 0 {
		return
	}
	x, y, z = x/length, y/length, z/length

	s, c := math.Sincos(float64(angleDeg) * math.Pi / 180)
	sin, cos := float32(s), float32(c)
	t := 1 - cos

	out[0] = t*x*x + cos
	out[1] = t*x*y + sin*z
	out[2] = t*x*z - sin*y

	out[4] = t*x*y - sin*z
	out[5] = t*y*y + cos
	out[6] = t*y*z + sin*x

	out[8] = t*x*z + sin*y
	out[9] = t*y*z - sin*x
	out[10] = t*z*z + cos
}

// Translation writes a translation by (x, y, z) into out.
func Translation(out []float32, x, y, z float32) {
	Identity(out)
	out[12], out[13], out[14] = x, y, z
}

// Scaling writes a non-uniform scale by (x, y, z) into out.
func Scaling(out []float32, x, y, z float32) {
	Identity(out)
	out[0], out[5], out[10] = x, y, z
}

// Perspective creates a perspective projection matrix.
// Uses the WebGPU clip space depth range [0, 1].
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
func Perspective(out []float32, fovY, aspect, near, far float32) {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))
	Identity(out)

	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	out[15] = 0.0
}

// LookAt creates a view matrix that positions and orients the camera.
// The resulting matrix transforms world coordinates to view/camera space.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - eyeX, eyeY, eyeZ: camera position in world space
//   - centerX, centerY, centerZ: target point the camera looks at
//   - upX, upY, upZ: up vector defining camera orientation (typically 0,1,0)
func LookAt(out []float32, eyeX, eyeY, eyeZ, centerX, centerY, centerZ, upX, upY, upZ float32) {
	z0 := eyeX - centerX
	z1 := eyeY - centerY
	z2 := eyeZ - centerZ
	val := float64(z0*z0 + z1*z1 + z2*z2)
	if val == 0 {
		val = 1
	}
	invLen := 1.0 / float32(math.Sqrt(val))
	z0 *= invLen
	z1 *= invLen
	z2 *= invLen

	x0 := upY*z2 - upZ*z1
	x1 := upZ*z0 - upX*z2
	x2 := upX*z1 - upY*z0
	val = float64(x0*x0 + x1*x1 + x2*x2)
	if val == 0 {
		val = 1
	}
	invLen = 1.0 / float32(math.Sqrt(val))
	x0 *= invLen
	x1 *= invLen
	x2 *= invLen

	y0 := z1*x2 - z2*x1
	y1 := z2*x0 - z0*x2
	y2 := z0*x1 - z1*x0

	out[0], out[4], out[8], out[12] = x0, x1, x2, -(x0*eyeX + x1*eyeY + x2*eyeZ)
	out[1], out[5], out[9], out[13] = y0, y1, y2, -(y0*eyeX + y1*eyeY + y2*eyeZ)
	out[2], out[6], out[10], out[14] = z0, z1, z2, -(z0*eyeX + z1*eyeY + z2*eyeZ)
	out[3], out[7], out[11], out[15] = 0, 0, 0, 1
}

// Pack copies a matrix into a freshly allocated flat slice ready for GPU upload.
//
// Parameters:
//   - m: the source matrix
//
// Returns:
//   - []float32: 16 column-major floats owned by the caller
func Pack(m *math32.Matrix4) []float32 {
	out := make([]float32, 16)
	copy(out, m[:])
	return out
}

// NormalMatrix computes the packed transpose of the inverse of m, the matrix that
// transforms surface normals under non-uniform scale. When m is singular the
// identity is returned together with false.
//
// Parameters:
//   - m: the model (or view) matrix
//
// Returns:
//   - []float32: 16 column-major floats owned by the caller
//   - bool: false if m could not be inverted
func NormalMatrix(m *math32.Matrix4) ([]float32, bool) {
	inv, err := m.Inverse()
	if err != nil || inv == nil {
		out := make([]float32, 16)
		Identity(out)
		return out, false
	}
	inv.SetTranspose()
	return Pack(inv), true
}

// Matrix4 converts a flat column-major slice into a math32.Matrix4.
func Matrix4(m []float32) math32.Matrix4 {
	var out math32.Matrix4
	copy(out[:], m)
	return out
}
