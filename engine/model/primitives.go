package model

import (
	"fmt"
	"math"
)

// NewBox creates an axis-aligned box centered on the origin with flat-shaded faces.
//
// Parameters:
//   - name: the model identifier
//   - width, height, depth: the extents along x, y and z
//
// Returns:
//   - Model: the box model
//   - error: an error if any extent is not positive
func NewBox(name string, width, height, depth float32) (Model, error) {
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil, fmt.Errorf("box %q: extents must be positive, got %gx%gx%g", name, width, height, depth)
	}
	hx, hy, hz := width/2, height/2, depth/2

	// each face: normal, then four corners counter-clockwise seen from outside
	faces := []struct {
		normal  [3]float32
		corners [4][3]float32
	}{
		{[3]float32{0, 0, 1}, [4][3]float32{{-hx, -hy, hz}, {hx, -hy, hz}, {hx, hy, hz}, {-hx, hy, hz}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{hx, -hy, -hz}, {-hx, -hy, -hz}, {-hx, hy, -hz}, {hx, hy, -hz}}},
		{[3]float32{1, 0, 0}, [4][3]float32{{hx, -hy, hz}, {hx, -hy, -hz}, {hx, hy, -hz}, {hx, hy, hz}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-hx, -hy, -hz}, {-hx, -hy, hz}, {-hx, hy, hz}, {-hx, hy, -hz}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-hx, hy, hz}, {hx, hy, hz}, {hx, hy, -hz}, {-hx, hy, -hz}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-hx, -hy, -hz}, {hx, -hy, -hz}, {hx, -hy, hz}, {-hx, -hy, hz}}},
	}

	positions := make([]float32, 0, 6*4*3)
	normals := make([]float32, 0, 6*4*3)
	indices := make([]uint32, 0, 6*6)
	for i, f := range faces {
		for _, c := range f.corners {
			positions = append(positions, c[:]...)
			normals = append(normals, f.normal[:]...)
		}
		base := uint32(i * 4)
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	return NewModel(WithName(name), WithPositions(positions), WithNormals(normals), WithIndices(indices))
}

// NewSphere creates a UV sphere centered on the origin.
//
// Parameters:
//   - name: the model identifier
//   - radius: the sphere radius
//   - slices: the number of segments around the y axis, at least 3
//   - stacks: the number of segments from pole to pole, at least 2
//
// Returns:
//   - Model: the sphere model
//   - error: an error if the radius or tessellation is invalid
func NewSphere(name string, radius float32, slices, stacks int) (Model, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("sphere %q: radius must be positive, got %g", name, radius)
	}
	if slices < 3 || stacks < 2 {
		return nil, fmt.Errorf("sphere %q: need at least 3 slices and 2 stacks, got %d and %d", name, slices, stacks)
	}

	var positions, normals []float32
	for st := 0; st <= stacks; st++ {
		phi := math.Pi * float64(st) / float64(stacks)
		for sl := 0; sl <= slices; sl++ {
			theta := 2 * math.Pi * float64(sl) / float64(slices)
			nx := float32(math.Sin(phi) * math.Sin(theta))
			ny := float32(math.Cos(phi))
			nz := float32(math.Sin(phi) * math.Cos(theta))
			normals = append(normals, nx, ny, nz)
			positions = append(positions, nx*radius, ny*radius, nz*radius)
		}
	}

	return NewModel(
		WithName(name),
		WithPositions(positions),
		WithNormals(normals),
		WithIndices(gridIndices(slices, stacks)),
		WithBoundingRadius(radius),
	)
}

// NewTorus creates a torus around the y axis.
//
// Parameters:
//   - name: the model identifier
//   - radius: the distance from the center to the middle of the tube
//   - tube: the tube radius
//   - radial: the number of segments around the tube, at least 3
//   - tubular: the number of segments around the ring, at least 3
//
// Returns:
//   - Model: the torus model
//   - error: an error if the radii or tessellation are invalid
func NewTorus(name string, radius, tube float32, radial, tubular int) (Model, error) {
	if radius <= 0 || tube <= 0 {
		return nil, fmt.Errorf("torus %q: radii must be positive, got %g and %g", name, radius, tube)
	}
	if radial < 3 || tubular < 3 {
		return nil, fmt.Errorf("torus %q: need at least 3 radial and 3 tubular segments, got %d and %d", name, radial, tubular)
	}

	var positions, normals []float32
	for r := 0; r <= radial; r++ {
		v := 2 * math.Pi * float64(r) / float64(radial)
		for t := 0; t <= tubular; t++ {
			u := 2 * math.Pi * float64(t) / float64(tubular)
			cx := float64(radius) * math.Cos(u)
			cz := float64(radius) * math.Sin(u)
			nx := math.Cos(v) * math.Cos(u)
			ny := math.Sin(v)
			nz := math.Cos(v) * math.Sin(u)
			positions = append(positions,
				float32(cx+float64(tube)*nx),
				float32(float64(tube)*ny),
				float32(cz+float64(tube)*nz),
			)
			normals = append(normals, float32(nx), float32(ny), float32(nz))
		}
	}

	return NewModel(
		WithName(name),
		WithPositions(positions),
		WithNormals(normals),
		WithIndices(gridIndices(tubular, radial)),
		WithBoundingRadius(radius+tube),
	)
}

// gridIndices triangulates a (cols+1) x (rows+1) vertex grid laid out row by row.
func gridIndices(cols, rows int) []uint32 {
	stride := uint32(cols + 1)
	indices := make([]uint32, 0, cols*rows*6)
	for r := range uint32(rows) {
		for c := range uint32(cols) {
			a := r*stride + c
			b := a + stride
			indices = append(indices, a, b, a+1, a+1, b, b+1)
		}
	}
	return indices
}
