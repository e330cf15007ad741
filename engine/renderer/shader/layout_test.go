package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarsLayoutOffsets(t *testing.T) {
	layout, err := newVarsLayout(Vars{
		"time":   1.5,
		"color":  [3]float32{1, 0, 0},
		"offset": []float64{1, 2},
	})
	require.NoError(t, err)

	require.Len(t, layout.Fields, 3)
	assert.Equal(t, VarField{Name: "color", Type: "vec3<f32>", Offset: 0, Components: 3}, layout.Fields[0])
	assert.Equal(t, VarField{Name: "offset", Type: "vec2<f32>", Offset: 16, Components: 2}, layout.Fields[1])
	assert.Equal(t, VarField{Name: "time", Type: "f32", Offset: 24, Components: 1}, layout.Fields[2])
	assert.Equal(t, uint64(32), layout.Size)
}

func TestVarsLayoutPack(t *testing.T) {
	layout, err := newVarsLayout(Vars{"a": 0.0, "b": []float32{0, 0, 0, 0}})
	require.NoError(t, err)

	packed := layout.Pack(Vars{"a": 2, "b": []any{1.0, 2.0, 3.0, 4.0}, "unused": 9.0})
	assert.Equal(t, []float32{2, 0, 0, 0, 1, 2, 3, 4}, packed)

	// missing values stay zero
	assert.Equal(t, make([]float32, 8), layout.Pack(nil))
}

func TestVarsLayoutDeclaration(t *testing.T) {
	layout, err := newVarsLayout(Vars{"time": float32(0)})
	require.NoError(t, err)
	assert.Equal(t, "struct ShaderVars {\n    time: f32,\n};\n\n@group(1) @binding(0) var<uniform> vars: ShaderVars;", layout.Declaration())

	empty, err := newVarsLayout(nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Declaration())
	assert.Zero(t, empty.Size)
}

func TestVarsLayoutErrors(t *testing.T) {
	_, err := newVarsLayout(Vars{"not-an-ident": 1.0})
	assert.ErrorContains(t, err, "valid WGSL identifier")

	_, err = newVarsLayout(Vars{"label": "red"})
	assert.ErrorContains(t, err, "unsupported value type")

	_, err = newVarsLayout(Vars{"v5": []float32{1, 2, 3, 4, 5}})
	assert.ErrorContains(t, err, "5 components")
}

func TestVarsMerge(t *testing.T) {
	base := Vars{"time": 0.0, "scale": 1.0}
	merged := base.Merge(Vars{"time": 2.5}, Vars{"extra": 3.0})

	assert.Equal(t, Vars{"time": 2.5, "scale": 1.0, "extra": 3.0}, merged)
	assert.Equal(t, Vars{"time": 0.0, "scale": 1.0}, base)
}

func TestCodeFromAny(t *testing.T) {
	code, err := CodeFromAny("fn a() {}")
	require.NoError(t, err)
	assert.Equal(t, []string{"fn a() {}"}, code)

	code, err = CodeFromAny([]any{"fn a() {}", "fn b() {}"})
	require.NoError(t, err)
	assert.Equal(t, []string{"fn a() {}", "fn b() {}"}, code)

	_, err = CodeFromAny([]any{"fn a() {}", 3})
	assert.ErrorContains(t, err, "fragment 1")

	_, err = CodeFromAny(42)
	assert.Error(t, err)
}

func TestBindingsFromAny(t *testing.T) {
	bindings, err := BindingsFromAny([]any{
		map[string]any{
			"stage": "vertex",
			"code":  "fn wobble(p: vec4<f32>) -> vec4<f32> { return p; }",
			"hooks": map[string]any{"modelPos": "wobble"},
		},
		map[string]any{
			"stage": "fragment",
			"code":  []any{"fn a() {}", "fn b() {}"},
		},
	})
	require.NoError(t, err)
	require.Len(t, bindings, 2)
	assert.Equal(t, StageVertex, bindings[0].Stage)
	assert.Equal(t, map[string]string{"modelPos": "wobble"}, bindings[0].Hooks)
	assert.Equal(t, StageFragment, bindings[1].Stage)
	assert.Len(t, bindings[1].Code, 2)
	assert.Nil(t, bindings[1].Hooks)

	_, err = BindingsFromAny([]any{map[string]any{"stage": "geometry"}})
	assert.ErrorContains(t, err, "shaders[0]")

	_, err = BindingsFromAny([]any{map[string]any{"stage": "vertex", "hooks": map[string]any{"modelPos": 1}}})
	assert.ErrorContains(t, err, "modelPos")

	_, err = BindingsFromAny("nope")
	assert.Error(t, err)
}

func TestHooks(t *testing.T) {
	vertexWorld, err := ParseHook(StageVertex, "worldPos")
	require.NoError(t, err)
	fragmentWorld, err := ParseHook(StageFragment, "worldPos")
	require.NoError(t, err)
	assert.NotEqual(t, vertexWorld, fragmentWorld)
	assert.Equal(t, "vertex.worldPos", vertexWorld.String())

	_, err = ParseHook(StageVertex, "pixelColor")
	assert.Error(t, err)

	assert.Len(t, Hooks(StageVertex), 4)
	assert.Len(t, Hooks(StageFragment), 6)

	assert.Equal(t, "pixel_color = tint(pixel_color);", HookPixelColor.call("tint"))
	assert.Equal(t, "watch(eye_vec);", HookEyeVec.call("watch"))
}

func TestStages(t *testing.T) {
	s, err := ParseStage("fragment")
	require.NoError(t, err)
	assert.Equal(t, StageFragment, s)
	assert.Equal(t, wgpu.ShaderStageFragment, s.ShaderStage())
	assert.Equal(t, "fs_main", s.EntryPoint())

	_, err = ParseStage("compute")
	assert.Error(t, err)
}
