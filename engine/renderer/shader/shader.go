package shader

import (
	"fmt"
	"maps"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/material"
)

// program is the implementation of the Program interface.
// It holds one assembled vertex/fragment pair and the uniform layout they share.
type program struct {
	key     string
	sources map[Stage]string
	calls   map[Stage]map[Hook]string
	layout  VarsLayout
}

// Program is an assembled render program: the generated WGSL of every stage together with
// the hook calls that were spliced in and the layout of its ShaderVars uniform. Programs are
// immutable once assembled and are cached by the scope key of the shader nodes that built them.
type Program interface {
	// Key retrieves the cache key of the program, the joined IDs of the shader nodes in scope.
	//
	// Returns:
	//   - string: the program key
	Key() string

	// Source retrieves the assembled WGSL of a stage.
	//
	// Parameters:
	//   - stage: the stage to retrieve
	//
	// Returns:
	//   - string: the WGSL source, or empty string for an unknown stage
	Source(stage Stage) string

	// EntryPoint retrieves the entry point function of a stage.
	//
	// Parameters:
	//   - stage: the stage to retrieve
	//
	// Returns:
	//   - string: the entry point name
	EntryPoint(stage Stage) string

	// Calls retrieves the hook bindings that were spliced into a stage.
	//
	// Parameters:
	//   - stage: the stage to retrieve
	//
	// Returns:
	//   - map[Hook]string: a copy of the function bound to each hook
	Calls(stage Stage) map[Hook]string

	// VarsLayout retrieves the uniform layout of the ShaderVars struct.
	//
	// Returns:
	//   - VarsLayout: the layout, empty when no vars were declared in scope
	VarsLayout() VarsLayout

	// Module builds the wgpu shader module descriptor of a stage, ready for device.CreateShaderModule.
	//
	// Parameters:
	//   - stage: the stage to build
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the descriptor labelled with the program key and stage
	Module(stage Stage) *wgpu.ShaderModuleDescriptor

	// BindGroupLayoutDescriptors describes the uniform bindings of the program: group 0 holds
	// the transforms, group 1 the ShaderVars block when vars are declared, and group 2 the
	// material and lights.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor
}

var _ Program = &program{}

func (p *program) Key() string {
	return p.key
}

func (p *program) Source(stage Stage) string {
	return p.sources[stage]
}

func (p *program) EntryPoint(stage Stage) string {
	return stage.EntryPoint()
}

func (p *program) Calls(stage Stage) map[Hook]string {
	return maps.Clone(p.calls[stage])
}

func (p *program) VarsLayout() VarsLayout {
	return p.layout
}

func (p *program) Module(stage Stage) *wgpu.ShaderModuleDescriptor {
	return &wgpu.ShaderModuleDescriptor{
		Label: fmt.Sprintf("%s/%s", p.key, stage),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: p.sources[stage],
		},
	}
}

func (p *program) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	result := map[int]wgpu.BindGroupLayoutDescriptor{
		GroupTransforms: {
			Label:   p.key + "/transforms",
			Entries: []wgpu.BindGroupLayoutEntry{uniformEntry(0, wgpu.ShaderStageVertex, TransformsSize)},
		},
		GroupSurface: {
			Label: p.key + "/surface",
			Entries: []wgpu.BindGroupLayoutEntry{
				uniformEntry(0, wgpu.ShaderStageFragment, material.GPUMaterialSize),
				uniformEntry(1, wgpu.ShaderStageFragment, light.GPULightsSize),
			},
		},
	}
	if len(p.layout.Fields) > 0 {
		result[GroupVars] = wgpu.BindGroupLayoutDescriptor{
			Label:   p.key + "/vars",
			Entries: []wgpu.BindGroupLayoutEntry{uniformEntry(0, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, p.layout.Size)},
		}
	}
	return result
}

// uniformEntry describes a uniform buffer binding of at least size bytes.
func uniformEntry(binding uint32, visibility wgpu.ShaderStage, size uint64) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: visibility,
		Buffer: wgpu.BufferBindingLayout{
			Type:           wgpu.BufferBindingTypeUniform,
			MinBindingSize: size,
		},
	}
}
