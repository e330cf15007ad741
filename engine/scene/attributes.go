package scene

import (
	"fmt"
)

// toFloat32 converts a numeric attribute value.
func toFloat32(v any) (float32, error) {
	switch x := v.(type) {
	case float32:
		return x, nil
	case float64:
		return float32(x), nil
	case int:
		return float32(x), nil
	case int32:
		return float32(x), nil
	case int64:
		return float32(x), nil
	case uint32:
		return float32(x), nil
	default:
		return 0, fmt.Errorf("want a number, got %T", v)
	}
}

// toBool converts a boolean attribute value.
func toBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("want a bool, got %T", v)
	}
	return b, nil
}

// toFloats converts a list attribute value of any numeric element type.
func toFloats(v any) ([]float32, error) {
	switch x := v.(type) {
	case []float32:
		return x, nil
	case [3]float32:
		return x[:], nil
	case [16]float32:
		return x[:], nil
	case []float64:
		out := make([]float32, len(x))
		for i, f := range x {
			out[i] = float32(f)
		}
		return out, nil
	case []any:
		out := make([]float32, len(x))
		for i, e := range x {
			f, err := toFloat32(e)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = f
		}
		return out, nil
	default:
		return nil, fmt.Errorf("want a list of numbers, got %T", v)
	}
}

// toVec3 converts a three component attribute value. Lists must have exactly three
// elements; maps are read by the given keys and missing keys keep the value in base.
func toVec3(v any, base [3]float32, keys [3]string) ([3]float32, error) {
	var m map[string]any
	switch x := v.(type) {
	case map[string]any:
		m = x
	case map[string]float32:
		m = make(map[string]any, len(x))
		for k, f := range x {
			m[k] = f
		}
	case map[string]float64:
		m = make(map[string]any, len(x))
		for k, f := range x {
			m[k] = f
		}
	default:
		fs, err := toFloats(v)
		if err != nil {
			return base, err
		}
		if len(fs) != 3 {
			return base, fmt.Errorf("want 3 components, got %d", len(fs))
		}
		return [3]float32{fs[0], fs[1], fs[2]}, nil
	}

	out := base
	for i, k := range keys {
		raw, ok := m[k]
		if !ok {
			continue
		}
		f, err := toFloat32(raw)
		if err != nil {
			return base, fmt.Errorf("key %q: %w", k, err)
		}
		out[i] = f
	}
	return out, nil
}

var (
	xyz = [3]string{"x", "y", "z"}
	rgb = [3]string{"r", "g", "b"}
)
