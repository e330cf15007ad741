package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/debug"
	"github.com/Carmen-Shannon/oxy-scene/engine/event"
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/model"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-scene/engine/transform"
)

const wobbleCode = "fn wobble(p: vec4<f32>) -> vec4<f32> { return p * vars.scale; }"

func newBox(t *testing.T) model.Model {
	t.Helper()
	box, err := model.NewBox("box", 2, 2, 2)
	require.NoError(t, err)
	return box
}

func newTestScene(t *testing.T, nodes ...Node) Scene {
	t.Helper()
	return NewScene("root", renderer.NewRenderer(renderer.WithSize(200, 100)), WithNodes(nodes...))
}

func recordKinds(bus event.Bus) *[]string {
	var got []string
	for _, kind := range []event.Kind{
		event.SceneRendering,
		event.ShaderActivated,
		event.ShaderRendering,
		event.ShaderDeactivated,
		event.ModelTransformUpdated,
	} {
		bus.AddListener(kind, func(ev event.Event) {
			got = append(got, ev.Kind().String())
		})
	}
	return &got
}

func TestRenderLifecycle(t *testing.T) {
	s := newTestScene(t,
		NewShader(nil, nil, WithID("s"), WithChildren(
			NewRotate(90, 0, 1, 0, WithID("r"), WithChildren(
				NewGeometry(newBox(t), WithID("g")),
			)),
		)),
	)
	kinds := recordKinds(s.Bus())

	require.NoError(t, s.Render())

	assert.Equal(t, []string{
		"SCENE_RENDERING",
		"MODEL_TRANSFORM_UPDATED",
		"SHADER_ACTIVATED",
		"SHADER_RENDERING",
		"MODEL_TRANSFORM_UPDATED",
		"SHADER_DEACTIVATED",
	}, *kinds)
	assert.Equal(t, uint64(1), s.Frame())
	assert.True(t, s.ModelTransform().Dirty())
	assert.Nil(t, s.Shader().Active())

	calls := s.Renderer().Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "s", calls[0].State.Program.Key())

	want := make([]float32, 16)
	common.Rotation(want, 90, 0, 1, 0)
	assert.Equal(t, want, calls[0].State.Model)
	require.Len(t, calls[0].State.Normal, 16)
	for i := range want {
		// a pure rotation is its own normal matrix
		assert.InDelta(t, want[i], calls[0].State.Normal[i], 1e-6)
	}
}

func TestTransformStateReusedAcrossFrames(t *testing.T) {
	rotate := NewRotate(30, 1, 0, 0, WithID("r"), WithChildren(NewGeometry(newBox(t))))
	s := newTestScene(t, rotate)

	var states []*transform.State
	s.Bus().AddListener(event.ModelTransformUpdated, func(ev event.Event) {
		u := ev.(transform.UpdatedEvent)
		if !u.State.Identity {
			states = append(states, u.State)
		}
	})

	require.NoError(t, s.Render())
	require.NoError(t, s.Render())
	require.Len(t, states, 2)
	assert.Same(t, states[0], states[1])
	assert.True(t, states[1].Cached())

	require.NoError(t, rotate.Set("angle", 45.0))
	require.NoError(t, s.Render())
	require.Len(t, states, 3)
	assert.NotSame(t, states[1], states[2])

	want := make([]float32, 16)
	common.Rotation(want, 45, 1, 0, 0)
	assert.Equal(t, want, s.Renderer().Calls()[0].State.Model)
}

func TestNestedTransformsCompose(t *testing.T) {
	s := newTestScene(t,
		NewTranslate(1, 2, 3, WithChildren(
			NewScale(2, 2, 2, WithChildren(
				NewGeometry(newBox(t), WithID("g")),
			)),
		)),
	)
	require.NoError(t, s.Render())

	calls := s.Renderer().Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []float32{2, 0, 0, 0, 0, 2, 0, 0, 0, 0, 2, 0, 1, 2, 3, 1}, calls[0].State.Model)

	b, ok := s.Bounds("g")
	require.True(t, ok)
	assert.Equal(t, [3]float32{1, 2, 3}, b.Center)
	assert.InDelta(t, 2*math.Sqrt(3), b.Radius, 1e-5)

	_, ok = s.Bounds("missing")
	assert.False(t, ok)
}

func TestViewAndProjectionNodes(t *testing.T) {
	l := camera.LookAt{Eye: [3]float32{0, 10, 15}, Look: [3]float32{0, 1, 0}, Up: [3]float32{0, 1, 0}}
	optics := camera.Optics{Type: camera.ProjectionPerspective, Fovy: 25, Near: 0.1, Far: 300}
	cam, err := NewCamera(optics, WithID("cam"), WithChildren(NewGeometry(newBox(t))))
	require.NoError(t, err)

	s := newTestScene(t, NewLookAt(l, WithID("eye"), WithChildren(cam)))
	require.NoError(t, s.Render())

	state := s.Renderer().Calls()[0].State
	view := l.ViewMatrix()
	assert.Equal(t, view[:], state.View)

	// the aspect follows the 200x100 render target
	proj := optics.WithAspect(2).ProjectionMatrix()
	assert.Equal(t, proj[:], state.Projection)

	s.Resize(100, 100)
	require.NoError(t, s.Render())
	proj = optics.WithAspect(1).ProjectionMatrix()
	assert.Equal(t, proj[:], s.Renderer().Calls()[0].State.Projection)

	eye, err := s.FindNode("eye")
	require.NoError(t, err)
	require.NoError(t, eye.Set("eye", map[string]any{"z": 20.0}))
	got, err := eye.Get("eye")
	require.NoError(t, err)
	assert.Equal(t, [3]float32{0, 10, 20}, got)

	require.NoError(t, cam.Set("optics", map[string]any{"fovy": 45}))
	o, err := cam.Get("optics")
	require.NoError(t, err)
	assert.Equal(t, float32(45), o.(camera.Optics).Fovy)
	assert.Error(t, cam.Set("optics", map[string]any{"near": -1}))

	_, err = NewCamera(camera.Optics{Type: camera.ProjectionPerspective, Fovy: 200, Near: 1, Far: 2})
	assert.Error(t, err)
}

func TestVarsMergeAtDrawTime(t *testing.T) {
	vars := NewShaderVars(shader.Vars{"time": 0.5}, WithID("vars"), WithChildren(NewGeometry(newBox(t))))
	s := newTestScene(t,
		NewShader([]shader.Binding{{
			Stage: shader.StageVertex,
			Code:  []string{wobbleCode},
			Hooks: map[string]string{"modelPos": "wobble"},
		}}, shader.Vars{"time": 0.0, "scale": 1.0}, WithID("s"), WithChildren(vars)),
	)

	require.NoError(t, s.Render())
	assert.Equal(t, shader.Vars{"time": 0.5, "scale": 1.0}, s.Renderer().Calls()[0].State.Vars)

	require.NoError(t, vars.Set("vars", map[string]any{"time": 1.5}))
	require.NoError(t, s.Render())
	call := s.Renderer().Calls()[0]
	assert.Equal(t, shader.Vars{"time": 1.5, "scale": 1.0}, call.State.Vars)
	// members sort by name: scale then time
	assert.Equal(t, []float32{1, 1.5, 0, 0}, call.VarsData())
}

func TestNestedHookPrecedence(t *testing.T) {
	outer := "fn outerColor(c: vec4<f32>) -> vec4<f32> { return c; }"
	inner := "fn innerColor(c: vec4<f32>) -> vec4<f32> { return c; }"
	s := newTestScene(t,
		NewShader([]shader.Binding{{
			Stage: shader.StageFragment,
			Code:  []string{outer},
			Hooks: map[string]string{"pixelColor": "outerColor"},
		}}, nil, WithID("outer"), WithChildren(
			NewGeometry(newBox(t), WithID("a")),
			NewShader([]shader.Binding{{
				Stage: shader.StageFragment,
				Code:  []string{inner},
				Hooks: map[string]string{"pixelColor": "innerColor"},
			}}, nil, WithID("inner"), WithChildren(
				NewGeometry(newBox(t), WithID("b")),
			)),
		)),
	)

	require.NoError(t, s.Render())
	calls := s.Renderer().Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "outer", calls[0].State.Program.Key())
	assert.Equal(t, "outer>inner", calls[1].State.Program.Key())
	assert.Equal(t, "outerColor", calls[0].State.Program.Calls(shader.StageFragment)[shader.HookPixelColor])
	assert.Equal(t, "innerColor", calls[1].State.Program.Calls(shader.StageFragment)[shader.HookPixelColor])
}

func TestValidateToggle(t *testing.T) {
	build := func() Scene {
		return newTestScene(t,
			NewShader([]shader.Binding{{
				Stage: shader.StageVertex,
				Hooks: map[string]string{"modelPos": "missingFn"},
			}}, nil, WithID("s"), WithChildren(NewGeometry(newBox(t), WithID("g")))),
		)
	}

	relaxed := build()
	require.NoError(t, relaxed.Render())

	strict := build()
	require.NoError(t, strict.SetDebugConfigs("shading.validate", true))
	err := strict.Render()
	var bindErr *shader.BindingError
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, "modelPos", bindErr.Hook)
	assert.Equal(t, shader.StageVertex, bindErr.Stage)
	assert.Contains(t, err.Error(), `geometry "g"`)
	assert.Empty(t, strict.Renderer().Calls())
	assert.Nil(t, strict.Shader().Active())
}

func TestValidateSwitchedOnAfterFirstFrame(t *testing.T) {
	s := newTestScene(t,
		NewShader([]shader.Binding{{
			Stage: shader.StageVertex,
			Hooks: map[string]string{"modelPos": "missingFn"},
		}}, nil, WithID("s"), WithChildren(NewGeometry(newBox(t), WithID("g")))),
	)
	require.NoError(t, s.Render())
	require.Len(t, s.Renderer().Calls(), 1)

	// the program cached by the first frame is checked again
	require.NoError(t, s.SetDebugConfigs("shading.validate", true))
	var bindErr *shader.BindingError
	require.ErrorAs(t, s.Render(), &bindErr)
	assert.Equal(t, "missingFn", bindErr.Function)
	assert.Empty(t, s.Renderer().Calls())

	require.NoError(t, s.SetDebugConfigs("shading.validate", false))
	require.NoError(t, s.Render())
}

func TestUnknownHookFailsCompile(t *testing.T) {
	s := newTestScene(t,
		NewShader([]shader.Binding{{
			Stage: shader.StageFragment,
			Hooks: map[string]string{"noSuchHook": "f"},
		}}, nil, WithChildren(NewGeometry(newBox(t)))),
	)
	var bindErr *shader.BindingError
	require.ErrorAs(t, s.Compile(), &bindErr)
	assert.Equal(t, "noSuchHook", bindErr.Hook)
}

func TestCompileAssemblesWithoutDrawing(t *testing.T) {
	s := newTestScene(t,
		NewGeometry(newBox(t)),
		NewShader(nil, nil, WithID("s"), WithChildren(
			NewRotate(10, 0, 0, 1, WithChildren(NewGeometry(newBox(t)))),
		)),
	)
	kinds := recordKinds(s.Bus())

	require.NoError(t, s.Compile())
	assert.Empty(t, *kinds)
	assert.Empty(t, s.Renderer().Calls())

	programs := s.Shader().Programs()
	require.Len(t, programs, 2)
	assert.Equal(t, shader.DefaultProgramKey, programs[0].Key())
	assert.Equal(t, "s", programs[1].Key())
}

func TestMaterialsAndLights(t *testing.T) {
	s := newTestScene(t,
		NewLight(light.NewLight(light.WithColor(1, 0, 0)), WithID("sun")),
		NewMaterial(material.NewMaterial(material.WithBaseColor(0.3, 0.3, 0.6)), WithID("mat"), WithChildren(
			NewGeometry(newBox(t), WithID("a")),
		)),
		NewGeometry(newBox(t), WithID("b")),
		NewLight(nil, WithID("late")),
	)

	require.NoError(t, s.Render())
	calls := s.Renderer().Calls()
	require.Len(t, calls, 2)

	assert.Equal(t, [3]float32{0.3, 0.3, 0.6}, calls[0].Material.BaseColor)
	assert.Equal(t, material.Default, calls[1].Material)
	require.Len(t, calls[0].Lights, 1)
	assert.Equal(t, [3]float32{1, 0, 0}, calls[0].Lights[0].Color)
	assert.Len(t, calls[1].Lights, 1)

	mat, err := s.FindNode("mat")
	require.NoError(t, err)
	require.NoError(t, mat.Set("baseColor", map[string]any{"r": 1.0}))
	require.NoError(t, mat.Set("alpha", 0.9))
	sun, err := s.FindNode("sun")
	require.NoError(t, err)
	require.NoError(t, sun.Set("mode", "point"))
	require.NoError(t, sun.Set("pos", []float32{0, 5, 0}))
	assert.Error(t, sun.Set("mode", "spot"))
	assert.Error(t, sun.Set("diffuse", "yes"))

	require.NoError(t, s.Render())
	calls = s.Renderer().Calls()
	assert.Equal(t, [3]float32{1, 0.3, 0.6}, calls[0].Material.BaseColor)
	assert.Equal(t, float32(0.9), calls[0].Material.Alpha)
	assert.Equal(t, float32(light.LightModePoint), calls[0].Lights[0].Mode)
	assert.Equal(t, [3]float32{0, 5, 0}, calls[0].Lights[0].Vector)
}

func TestFindNodeAndAttributes(t *testing.T) {
	s := newTestScene(t, NewNode(WithID("group"), WithChildren(NewTranslate(1, 0, 0, WithID("t")))))
	assert.Equal(t, "root", s.ID())
	assert.Equal(t, NodeTypeScene, s.Root().Type())

	_, err := s.FindNode("nope")
	var missing *MissingNodeError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "nope", missing.ID)

	tr, err := s.FindNode("t")
	require.NoError(t, err)
	assert.Equal(t, NodeTypeTranslate, tr.Type())
	require.NoError(t, tr.Set("y", 4))
	y, err := tr.Get("y")
	require.NoError(t, err)
	assert.Equal(t, float32(4), y)

	assert.ErrorIs(t, tr.Set("angle", 1.0), ErrUnknownAttribute)
	_, err = tr.Get("elements")
	assert.ErrorIs(t, err, ErrUnknownAttribute)
	assert.Error(t, tr.Set("x", "left"))

	sh := NewShader(nil, shader.Vars{"time": 0.0})
	assert.ErrorIs(t, sh.Set("shaders", nil), ErrReadOnlyAttribute)
	require.NoError(t, sh.Set("vars", shader.Vars{"time2": 1.0}))
	vars, err := sh.Get("vars")
	require.NoError(t, err)
	assert.Equal(t, shader.Vars{"time": 0.0, "time2": 1.0}, vars)

	group, err := s.FindNode("group")
	require.NoError(t, err)
	assert.True(t, group.RemoveChild("t"))
	assert.False(t, group.RemoveChild("t"))
	_, err = s.FindNode("t")
	assert.Error(t, err)
}

func TestMatrixNode(t *testing.T) {
	_, err := NewMatrix([]float32{1, 2, 3})
	assert.Error(t, err)

	elements := []float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 5, 0, 0, 1}
	m, err := NewMatrix(elements, WithChildren(NewGeometry(newBox(t))))
	require.NoError(t, err)
	s := newTestScene(t, m)
	require.NoError(t, s.Render())
	assert.Equal(t, elements, s.Renderer().Calls()[0].State.Model)

	assert.Error(t, m.Set("elements", []any{1.0}))
	require.NoError(t, m.Set("elements", []any{2.0, 0, 0, 0, 0, 2.0, 0, 0, 0, 0, 2.0, 0, 0, 0, 0, 1}))
	got, err := m.Get("elements")
	require.NoError(t, err)
	assert.Equal(t, float32(2), got.([]float32)[0])
}

func TestNodesGetGeneratedIDs(t *testing.T) {
	a, b := NewNode(), NewNode()
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestDebugConfigs(t *testing.T) {
	s := NewScene("", renderer.NewRenderer(), WithDebugConfigs(debug.Configs{
		"shading": debug.Configs{"logScripts": true},
	}))
	assert.NotEmpty(t, s.ID())
	assert.True(t, s.Debug().Bool(debug.PathShadingLogScripts))

	require.NoError(t, s.SetDebugConfigs("shading.validate", true))
	assert.Equal(t, true, s.DebugConfigs("shading.validate"))
	assert.Equal(t, debug.Configs{}, s.DebugConfigs("picking.enabled"))

	var cfgErr *debug.ConfigurationError
	assert.True(t, errors.As(s.SetDebugConfigs("a", 1, 2), &cfgErr))
}

func TestNewScenePanicsWithoutRenderer(t *testing.T) {
	assert.Panics(t, func() { NewScene("x", nil) })
	assert.Panics(t, func() { NewGeometry(nil) })
}
