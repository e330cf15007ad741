package renderer

import "fmt"

// RendererBackendType identifies the backend implementation draws are submitted to.
type RendererBackendType int

const (
	// BackendTypeRecording keeps submitted draws in memory without touching a GPU.
	BackendTypeRecording RendererBackendType = iota

	// BackendTypeWGPU draws to a window surface through a WebGPU device. See NewWGPUBackend.
	BackendTypeWGPU
)

func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeRecording:
		return "recording"
	case BackendTypeWGPU:
		return "wgpu"
	default:
		return fmt.Sprintf("backend(%d)", int(t))
	}
}

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// Only specific power-of-two values are valid for GPU hardware. WebGPU guarantees support for
// 1 (off) and 4; higher values (8, 16) are adapter-dependent and may not be available.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4

	// MSAA8x enables 8× multisample anti-aliasing. Adapter-dependent.
	MSAA8x MSAASampleCount = 8

	// MSAA16x enables 16× multisample anti-aliasing. Adapter-dependent.
	MSAA16x MSAASampleCount = 16
)

// RendererBackend receives the draws of a Renderer together with the pipeline they use.
type RendererBackend interface {
	// Type identifies the backend.
	//
	// Returns:
	//   - RendererBackendType: the backend type
	Type() RendererBackendType

	// BeginFrame opens a frame. Every Submit of a traversal pass falls between BeginFrame
	// and EndFrame.
	//
	// Returns:
	//   - error: an error if the render target could not be acquired
	BeginFrame() error

	// EndFrame closes the current frame and presents it.
	//
	// Returns:
	//   - error: an error if the frame could not be submitted
	EndFrame() error

	// Submit executes one draw.
	//
	// Parameters:
	//   - p: the pipeline description of the draw's program
	//   - call: the draw
	//
	// Returns:
	//   - error: an error if the draw could not be executed
	Submit(p *Pipeline, call DrawCall) error

	// Resize updates the backend's render target.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)
}

// recordingBackend is the headless backend. It only counts what it receives.
type recordingBackend struct {
	submitted int
	frames    int
}

var _ RendererBackend = &recordingBackend{}

func (b *recordingBackend) Type() RendererBackendType {
	return BackendTypeRecording
}

func (b *recordingBackend) BeginFrame() error {
	return nil
}

func (b *recordingBackend) EndFrame() error {
	b.frames++
	return nil
}

func (b *recordingBackend) Submit(p *Pipeline, call DrawCall) error {
	if p == nil {
		return fmt.Errorf("submit without pipeline")
	}
	b.submitted++
	return nil
}

func (b *recordingBackend) Resize(int, int) {}
