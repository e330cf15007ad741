package renderer

import "go.uber.org/zap"

// wgpuBackendConfig collects the options of NewWGPUBackend.
type wgpuBackendConfig struct {
	logger               *zap.Logger
	presentMode          PresentMode
	sampleCount          MSAASampleCount
	forceFallbackAdapter bool
}

// WGPUBackendOption is a functional option applied during construction via NewWGPUBackend.
type WGPUBackendOption func(*wgpuBackendConfig)

// WithWGPULogger sets the logger used to report pipeline creation and skipped frames.
//
// Parameters:
//   - logger: the zap logger (nil is ignored)
//
// Returns:
//   - WGPUBackendOption: a function that applies the logger option
func WithWGPULogger(logger *zap.Logger) WGPUBackendOption {
	return func(c *wgpuBackendConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPresentMode sets how frames are delivered to the display. Defaults to
// PresentModeUncapped, leaving frame pacing to the engine's frame limit.
//
// Parameters:
//   - mode: the PresentMode to use
//
// Returns:
//   - WGPUBackendOption: a function that applies the present mode option
func WithPresentMode(mode PresentMode) WGPUBackendOption {
	return func(c *wgpuBackendConfig) {
		c.presentMode = mode
	}
}

// WithSampleCount sets the MSAA sample count of the render target. It must match the
// WithMSAA option of the renderers submitting to the backend. Defaults to MSAA4x.
//
// Parameters:
//   - count: the MSAASampleCount to use
//
// Returns:
//   - WGPUBackendOption: a function that applies the sample count option
func WithSampleCount(count MSAASampleCount) WGPUBackendOption {
	return func(c *wgpuBackendConfig) {
		c.sampleCount = count
	}
}

// WithFallbackAdapter forces the software adapter, for machines without a usable GPU.
//
// Returns:
//   - WGPUBackendOption: a function that applies the fallback option
func WithFallbackAdapter() WGPUBackendOption {
	return func(c *wgpuBackendConfig) {
		c.forceFallbackAdapter = true
	}
}
