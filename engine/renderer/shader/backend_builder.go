package shader

import "go.uber.org/zap"

// BackendBuilderOption is a functional option for configuring a Backend.
type BackendBuilderOption func(*backend)

// WithLogger sets the logger used for logScripts output.
//
// Parameters:
//   - logger: the zap logger (nil is ignored)
//
// Returns:
//   - BackendBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) BackendBuilderOption {
	return func(b *backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithSkeleton replaces the embedded skeleton of a stage. The skeleton must place its hook
// sites with //@oxy:hook annotations; bindings to hooks it does not place fail to compile.
//
// Parameters:
//   - stage: the stage to replace
//   - source: the WGSL skeleton
//
// Returns:
//   - BackendBuilderOption: option function to apply
func WithSkeleton(stage Stage, source string) BackendBuilderOption {
	return func(b *backend) {
		b.skeletons[stage] = source
	}
}
