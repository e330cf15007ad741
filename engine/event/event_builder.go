package event

import "go.uber.org/zap"

// BusBuilderOption is a functional option for configuring a Bus.
type BusBuilderOption func(*bus)

// WithLogger sets the logger used for dispatch tracing at debug level.
//
// Parameters:
//   - logger: the zap logger (nil is ignored)
//
// Returns:
//   - BusBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) BusBuilderOption {
	return func(b *bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}
