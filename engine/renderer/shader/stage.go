package shader

import (
	_ "embed"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/vertex.wgsl
var vertexSkeleton string

//go:embed assets/fragment.wgsl
var fragmentSkeleton string

// Stage identifies one programmable stage of a render program.
type Stage int

const (
	// StageVertex is the vertex stage, entry point vs_main in the default skeleton.
	StageVertex Stage = iota

	// StageFragment is the fragment stage, entry point fs_main in the default skeleton.
	StageFragment
)

// Stages lists every stage in assembly order.
var Stages = []Stage{StageVertex, StageFragment}

// String returns the lower-case stage name used in shader node descriptions.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// ShaderStage maps the stage to its WebGPU visibility flag.
//
// Returns:
//   - wgpu.ShaderStage: the wgpu stage flag, or wgpu.ShaderStageNone for unknown stages
func (s Stage) ShaderStage() wgpu.ShaderStage {
	switch s {
	case StageVertex:
		return wgpu.ShaderStageVertex
	case StageFragment:
		return wgpu.ShaderStageFragment
	default:
		return wgpu.ShaderStageNone
	}
}

// EntryPoint returns the entry point function name of the default skeleton for the stage.
func (s Stage) EntryPoint() string {
	switch s {
	case StageVertex:
		return "vs_main"
	case StageFragment:
		return "fs_main"
	default:
		return ""
	}
}

// ParseStage resolves a stage name as written in a shader node description.
//
// Parameters:
//   - name: "vertex" or "fragment"
//
// Returns:
//   - Stage: the parsed stage
//   - error: an error if the name is not a known stage
func ParseStage(name string) (Stage, error) {
	switch name {
	case "vertex":
		return StageVertex, nil
	case "fragment":
		return StageFragment, nil
	default:
		return 0, fmt.Errorf("unknown shader stage %q", name)
	}
}

// DefaultSkeleton returns the embedded WGSL skeleton for the stage.
func DefaultSkeleton(s Stage) string {
	switch s {
	case StageVertex:
		return vertexSkeleton
	case StageFragment:
		return fragmentSkeleton
	default:
		return ""
	}
}
