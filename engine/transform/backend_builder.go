package transform

import "go.uber.org/zap"

// BackendBuilderOption is a functional option for configuring a Backend.
type BackendBuilderOption func(*backend)

// WithLogger sets the logger used to report singular matrices.
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
