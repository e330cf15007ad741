package renderer

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/shader"
)

func TestDenseLayoutsFillsMissingGroups(t *testing.T) {
	shaders := newShaders()
	shaders.PushShader("plain", nil, nil)
	p := newPipeline(drawState(t, shaders).Program, MSAAOff)

	// without vars group 1 is absent from the program
	require.NotContains(t, p.BindGroupLayouts, shader.GroupVars)

	dense := denseLayouts(p.BindGroupLayouts)
	require.Len(t, dense, 3)
	assert.Len(t, dense[shader.GroupTransforms].Entries, 1)
	assert.Empty(t, dense[shader.GroupVars].Entries)
	assert.Equal(t, "empty group 1", dense[shader.GroupVars].Label)
	assert.Len(t, dense[shader.GroupSurface].Entries, 2)

	assert.Nil(t, denseLayouts(nil))
}

func TestUniformBytesPadsToBindingSize(t *testing.T) {
	shaders := newShaders()
	shaders.PushShader("s", nil, shader.Vars{"time": 0.0})
	shaders.PushVars(shader.Vars{"time": 2.5})
	call := DrawCall{State: drawState(t, shaders), Material: material.Default}

	vars := uniformBytes(call, shader.GroupVars, wgpu.BindGroupLayoutEntry{
		Binding: 0,
		Buffer:  wgpu.BufferBindingLayout{MinBindingSize: 16},
	})
	require.Len(t, vars, 16)
	assert.Equal(t, float32(2.5), math.Float32frombits(binary.LittleEndian.Uint32(vars[0:4])))

	padded := uniformBytes(call, shader.GroupSurface, wgpu.BindGroupLayoutEntry{
		Binding: 0,
		Buffer:  wgpu.BufferBindingLayout{MinBindingSize: 64},
	})
	assert.Len(t, padded, 64)
	assert.Equal(t, make([]byte, 16), padded[48:])

	assert.Len(t, uniformBytes(call, shader.GroupTransforms, wgpu.BindGroupLayoutEntry{}), shader.TransformsSize)
}

func TestVertexBufferLayoutMatchesGPUVertex(t *testing.T) {
	layout := vertexBufferLayout()
	assert.Equal(t, uint64(24), layout.ArrayStride)
	require.Len(t, layout.Attributes, 2)
	assert.Equal(t, uint32(1), layout.Attributes[1].ShaderLocation)
	assert.Equal(t, uint64(12), layout.Attributes[1].Offset)
}

func TestWGPUBackendOptions(t *testing.T) {
	assert.Equal(t, wgpu.PresentModeFifo, toWGPUPresentMode(PresentModeVSync))
	assert.Equal(t, wgpu.PresentModeImmediate, toWGPUPresentMode(PresentModeUncapped))

	logger := zap.NewExample()
	cfg := wgpuBackendConfig{logger: zap.NewNop()}
	for _, option := range []WGPUBackendOption{
		WithWGPULogger(logger),
		WithWGPULogger(nil),
		WithPresentMode(PresentModeVSync),
		WithSampleCount(MSAAOff),
		WithFallbackAdapter(),
	} {
		option(&cfg)
	}
	assert.Same(t, logger, cfg.logger)
	assert.Equal(t, PresentModeVSync, cfg.presentMode)
	assert.Equal(t, MSAAOff, cfg.sampleCount)
	assert.True(t, cfg.forceFallbackAdapter)

	_, err := NewWGPUBackend(nil)
	assert.ErrorContains(t, err, "nil surface descriptor")
}
