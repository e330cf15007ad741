package engine

import (
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithLogger sets the logger of the render loop and the profiler.
//
// Parameters:
//   - logger: the logger; nil keeps the no-op default
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithProfiling enables or disables profiling output.
//
// Parameters:
//   - enabled: if true, samples frame rate and memory once per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithSurface drives the render loop from an on-screen surface, usually a window.Window.
// Surface resizes are forwarded to every scene.
//
// Parameters:
//   - s: the surface
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSurface(s Surface) EngineBuilderOption {
	return func(e *engine) {
		e.surface = s
	}
}

// WithScene registers a scene at the given key during engine construction.
//
// Parameters:
//   - key: the z-index determining render order (lower renders first)
//   - s: the Scene to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(key int, s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scenes[key] = s
	}
}

// WithRenderFrameLimit sets an optional frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.renderFrameLimit = frameDuration(fps)
	}
}

// WithCompileWorkers sets the number of workers Precompile assembles scenes on.
//
// Parameters:
//   - n: worker count; values <= 0 keep the default of 4
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCompileWorkers(n int) EngineBuilderOption {
	return func(e *engine) {
		if n > 0 {
			e.compileWorkers = n
		}
	}
}
