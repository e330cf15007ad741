package scene

import (
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/oxy-scene/engine/debug"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/shader"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithLogger sets the logger shared by the scene and its backends.
//
// Parameters:
//   - logger: the zap logger
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) SceneBuilderOption {
	return func(s *scene) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNodes adds initial top-level nodes under the root.
//
// Parameters:
//   - nodes: the nodes to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithNodes(nodes ...Node) SceneBuilderOption {
	return func(s *scene) {
		s.root.children = append(s.root.children, nodes...)
	}
}

// WithDebugStore shares an existing debug store with the scene, for example one kept in
// sync with a configuration file by debug.Watch.
//
// Parameters:
//   - store: the debug store
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithDebugStore(store debug.Store) SceneBuilderOption {
	return func(s *scene) {
		s.debug = store
	}
}

// WithDebugConfigs seeds the scene's debug store with a configuration tree.
//
// Parameters:
//   - configs: the initial tree
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithDebugConfigs(configs debug.Configs) SceneBuilderOption {
	return func(s *scene) {
		if s.debug == nil {
			s.debug = debug.NewStore()
		}
		s.debug.Set("", configs)
	}
}

// WithShaderOptions passes options through to the scene's shader backend, such as
// shader.WithSkeleton.
//
// Parameters:
//   - options: the shader backend options
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithShaderOptions(options ...shader.BackendBuilderOption) SceneBuilderOption {
	return func(s *scene) {
		s.shaderOptions = append(s.shaderOptions, options...)
	}
}
