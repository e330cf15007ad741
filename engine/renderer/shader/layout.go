package shader

import (
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"
)

// Bind groups of an assembled program. GroupTransforms holds the Transforms uniform,
// GroupVars the ShaderVars uniform (absent without vars) and GroupSurface the Material and
// Lights uniforms at bindings 0 and 1.
const (
	GroupTransforms = 0
	GroupVars       = 1
	GroupSurface    = 2
)

// TransformsSize is the byte size of the Transforms uniform of the vertex skeleton: model,
// normal, view, view normal and projection.
const TransformsSize = 5 * 64

// wgslTypeLayout is the byte size and alignment of a WGSL type.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// varTypeLayouts covers the types a uniform var can take, keyed by component count.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var varTypeLayouts = map[int]struct {
	name   string
	layout wgslTypeLayout
}{
	1:  {"f32", wgslTypeLayout{4, 4}},
	2:  {"vec2<f32>", wgslTypeLayout{8, 8}},
	3:  {"vec3<f32>", wgslTypeLayout{12, 16}},
	4:  {"vec4<f32>", wgslTypeLayout{16, 16}},
	16: {"mat4x4<f32>", wgslTypeLayout{64, 16}},
}

var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// roundUpAlign rounds value up to the next multiple of alignment.
// Alignment must be a power of two.
func roundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// VarField is one member of the generated ShaderVars struct.
type VarField struct {
	Name       string
	Type       string
	Offset     uint64
	Components int
}

// VarsLayout is the uniform-buffer layout of the ShaderVars struct. Members are sorted by
// name so the layout does not depend on map iteration order.
type VarsLayout struct {
	Fields []VarField
	Size   uint64
}

// newVarsLayout derives the ShaderVars layout from the declared initial values. The WGSL
// type of each member follows the number of components of its value.
//
// Parameters:
//   - vars: the declared vars of every shader node in scope
//
// Returns:
//   - VarsLayout: the computed layout, empty when vars is empty
//   - error: an error if a name is not a WGSL identifier or a value has no uniform type
func newVarsLayout(vars Vars) (VarsLayout, error) {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	slices.Sort(names)

	var layout VarsLayout
	offset := uint64(0)
	for _, name := range names {
		if !identifierRegex.MatchString(name) {
			return VarsLayout{}, fmt.Errorf("var %q is not a valid WGSL identifier", name)
		}
		values, ok := floatsOf(vars[name])
		if !ok {
			return VarsLayout{}, fmt.Errorf("var %q has unsupported value type %T", name, vars[name])
		}
		t, ok := varTypeLayouts[len(values)]
		if !ok {
			return VarsLayout{}, fmt.Errorf("var %q has %d components, want 1, 2, 3, 4 or 16", name, len(values))
		}

		offset = roundUpAlign(t.layout.align, offset)
		layout.Fields = append(layout.Fields, VarField{
			Name:       name,
			Type:       t.name,
			Offset:     offset,
			Components: len(values),
		})
		offset += t.layout.size
	}

	// uniform address space structs align to 16 bytes
	layout.Size = roundUpAlign(16, offset)
	return layout, nil
}

// Declaration renders the ShaderVars struct and its binding, or "" for an empty layout.
func (l VarsLayout) Declaration() string {
	if len(l.Fields) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("struct ShaderVars {\n")
	for _, f := range l.Fields {
		fmt.Fprintf(&sb, "    %s: %s,\n", f.Name, f.Type)
	}
	sb.WriteString("};\n\n")
	fmt.Fprintf(&sb, "@group(%d) @binding(0) var<uniform> vars: ShaderVars;", GroupVars)
	return sb.String()
}

// Pack writes the values into a float block matching the layout. Names without a member are
// ignored, members without a value stay zero, and values with a different component count
// are truncated or zero-padded.
//
// Parameters:
//   - vars: the merged vars of the current draw
//
// Returns:
//   - []float32: the uniform block, Size/4 floats long
func (l VarsLayout) Pack(vars Vars) []float32 {
	out := make([]float32, l.Size/4)
	for _, f := range l.Fields {
		values, ok := floatsOf(vars[f.Name])
		if !ok {
			continue
		}
		start := int(f.Offset / 4)
		copy(out[start:start+f.Components], values)
	}
	return out
}

// floatsOf flattens a numeric scalar, slice or array into float32 components.
func floatsOf(v any) ([]float32, bool) {
	switch x := v.(type) {
	case nil:
		return nil, false
	case float32:
		return []float32{x}, true
	case float64:
		return []float32{float32(x)}, true
	case int:
		return []float32{float32(x)}, true
	case []float32:
		return x, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return []float32{float32(rv.Int())}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return []float32{float32(rv.Uint())}, true
	case reflect.Float32, reflect.Float64:
		return []float32{float32(rv.Float())}, true
	case reflect.Slice, reflect.Array:
		out := make([]float32, 0, rv.Len())
		for i := range rv.Len() {
			elem, ok := floatsOf(rv.Index(i).Interface())
			if !ok || len(elem) != 1 {
				return nil, false
			}
			out = append(out, elem[0])
		}
		return out, len(out) > 0
	default:
		return nil, false
	}
}
