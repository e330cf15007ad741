package shader

import "fmt"

// Hook is a named injection point inside a stage skeleton. A shader node binds a hook to the
// name of a WGSL function it defines, and the assembled program calls that function at the
// hook's position.
type Hook int

const (
	// HookModelPos transforms the object-space position, fn(vec4<f32>) -> vec4<f32>.
	HookModelPos Hook = iota
	// HookVertexWorldPos observes the world-space position in the vertex stage, fn(vec4<f32>).
	HookVertexWorldPos
	// HookViewPos transforms the eye-space position, fn(vec4<f32>) -> vec4<f32>.
	HookViewPos
	// HookWorldNormal transforms the world-space normal, fn(vec3<f32>) -> vec3<f32>.
	HookWorldNormal
	// HookFragmentWorldPos observes the interpolated world-space position, fn(vec4<f32>).
	HookFragmentWorldPos
	// HookEyeVec observes the normalized vector towards the eye, fn(vec3<f32>).
	HookEyeVec
	// HookNormal observes the normalized surface normal, fn(vec3<f32>).
	HookNormal
	// HookMaterialBaseColor transforms the base color, fn(vec3<f32>) -> vec3<f32>.
	HookMaterialBaseColor
	// HookMaterialAlpha transforms the alpha, fn(f32) -> f32.
	HookMaterialAlpha
	// HookPixelColor transforms the final color, fn(vec4<f32>) -> vec4<f32>.
	HookPixelColor

	hookCount
)

// hookInfo describes how a hook is named, where it lives and how its call is emitted.
type hookInfo struct {
	name      string
	stage     Stage
	variable  string
	transform bool
}

var hookTable = [hookCount]hookInfo{
	HookModelPos:          {"modelPos", StageVertex, "model_pos", true},
	HookVertexWorldPos:    {"worldPos", StageVertex, "world_pos", false},
	HookViewPos:           {"viewPos", StageVertex, "view_pos", true},
	HookWorldNormal:       {"worldNormal", StageVertex, "world_normal", true},
	HookFragmentWorldPos:  {"worldPos", StageFragment, "world_pos", false},
	HookEyeVec:            {"eyeVec", StageFragment, "eye_vec", false},
	HookNormal:            {"normal", StageFragment, "normal", false},
	HookMaterialBaseColor: {"materialBaseColor", StageFragment, "base_color", true},
	HookMaterialAlpha:     {"materialAlpha", StageFragment, "alpha", true},
	HookPixelColor:        {"pixelColor", StageFragment, "pixel_color", true},
}

// ParseHook resolves a hook name within a stage. The same name may exist in both stages
// (worldPos), so the stage is part of the lookup.
//
// Parameters:
//   - stage: the stage the binding was declared for
//   - name: the hook name as written in the shader node
//
// Returns:
//   - Hook: the resolved hook
//   - error: an error if the stage has no hook with that name
func ParseHook(stage Stage, name string) (Hook, error) {
	for h := range hookCount {
		if hookTable[h].stage == stage && hookTable[h].name == name {
			return h, nil
		}
	}
	return 0, fmt.Errorf("no %s hook named %q", stage, name)
}

// Hooks returns every hook defined for the stage in skeleton order.
func Hooks(stage Stage) []Hook {
	var out []Hook
	for h := range hookCount {
		if hookTable[h].stage == stage {
			out = append(out, h)
		}
	}
	return out
}

// Name returns the hook name used in shader node bindings and skeleton annotations.
func (h Hook) Name() string {
	if h < 0 || h >= hookCount {
		return fmt.Sprintf("hook(%d)", int(h))
	}
	return hookTable[h].name
}

// Stage returns the stage the hook belongs to.
func (h Hook) Stage() Stage {
	return hookTable[h].stage
}

// Transforms reports whether the bound function returns a replacement value.
// Observe hooks only receive the value.
func (h Hook) Transforms() bool {
	return hookTable[h].transform
}

func (h Hook) String() string {
	if h < 0 || h >= hookCount {
		return h.Name()
	}
	return h.Stage().String() + "." + h.Name()
}

// call renders the WGSL statement invoking fn at the hook site.
func (h Hook) call(fn string) string {
	info := hookTable[h]
	if info.transform {
		return fmt.Sprintf("%s = %s(%s);", info.variable, fn, info.variable)
	}
	return fmt.Sprintf("%s(%s);", fn, info.variable)
}
