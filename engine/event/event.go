// Package event implements the per-scene lifecycle event bus. Listeners are kept in an
// explicit subscriber list per Kind and invoked synchronously, in registration order,
// on the goroutine that fires the event.
package event

import "go.uber.org/zap"

// Kind identifies a lifecycle event.
type Kind int

const (
	// SceneRendering fires at the start of every traversal pass. Backends reset their
	// per-frame state when they receive it.
	SceneRendering Kind = iota

	// ShaderActivated fires when a program is about to be bound.
	ShaderActivated

	// ShaderRendering fires once per draw while a program is bound. Transform backends
	// export their matrices in response.
	ShaderRendering

	// ShaderDeactivated fires when a program is unbound.
	ShaderDeactivated

	// ModelTransformUpdated fires after the model transform backend replaces its state.
	ModelTransformUpdated

	// ViewTransformUpdated fires after the view transform backend replaces its state.
	ViewTransformUpdated

	// ProjectionTransformUpdated fires after the projection transform backend replaces its state.
	ProjectionTransformUpdated

	kindCount
)

var kindNames = [...]string{
	SceneRendering:             "SCENE_RENDERING",
	ShaderActivated:            "SHADER_ACTIVATED",
	ShaderRendering:            "SHADER_RENDERING",
	ShaderDeactivated:          "SHADER_DEACTIVATED",
	ModelTransformUpdated:      "MODEL_TRANSFORM_UPDATED",
	ViewTransformUpdated:       "VIEW_TRANSFORM_UPDATED",
	ProjectionTransformUpdated: "PROJECTION_TRANSFORM_UPDATED",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "UNKNOWN"
	}
	return kindNames[k]
}

// Event is the payload delivered to listeners. Concrete event types carry the data for
// their kind; listeners type-switch on the value.
type Event interface {
	// Kind returns the lifecycle kind this event is delivered under.
	//
	// Returns:
	//   - Kind: the event kind
	Kind() Kind
}

// SceneRenderingEvent starts a frame.
type SceneRenderingEvent struct {
	// Frame is the zero-based index of the traversal pass being started.
	Frame uint64
}

func (SceneRenderingEvent) Kind() Kind { return SceneRendering }

// ShaderEvent is delivered for ShaderActivated, ShaderRendering and ShaderDeactivated.
type ShaderEvent struct {
	kind Kind

	// Program is the cache key of the program the event refers to.
	Program string
}

// NewShaderEvent creates a ShaderEvent for one of the three shader lifecycle kinds.
// Panics if kind is not a shader lifecycle kind.
//
// Parameters:
//   - kind: ShaderActivated, ShaderRendering or ShaderDeactivated
//   - program: the program cache key
//
// Returns:
//   - ShaderEvent: the event value
func NewShaderEvent(kind Kind, program string) ShaderEvent {
	switch kind {
	case ShaderActivated, ShaderRendering, ShaderDeactivated:
	default:
		panic("event: NewShaderEvent called with non-shader kind " + kind.String())
	}
	return ShaderEvent{kind: kind, Program: program}
}

func (e ShaderEvent) Kind() Kind { return e.kind }

// Listener receives events of the kind it was registered for.
type Listener func(ev Event)

// bus is the implementation of the Bus interface.
type bus struct {
	listeners [kindCount][]Listener
	logger    *zap.Logger
}

// Bus dispatches lifecycle events to registered listeners.
// Delivery is synchronous and not safe for concurrent use; a listener that fires another
// event recurses into that dispatch immediately.
type Bus interface {
	// AddListener registers a listener for the given kind. Listeners are invoked in the
	// order they were added.
	//
	// Parameters:
	//   - kind: the event kind to listen for
	//   - listener: the callback to invoke
	AddListener(kind Kind, listener Listener)

	// Fire delivers ev to every listener registered for ev.Kind(). Listeners added while
	// the dispatch is in progress are not invoked for this event. Firing a kind with no
	// listeners is a no-op.
	//
	// Parameters:
	//   - ev: the event to deliver
	Fire(ev Event)

	// ListenerCount returns the number of listeners registered for kind.
	//
	// Parameters:
	//   - kind: the event kind
	//
	// Returns:
	//   - int: number of registered listeners
	ListenerCount(kind Kind) int
}

var _ Bus = &bus{}

// NewBus creates an empty Bus.
//
// Parameters:
//   - options: functional options to configure the bus
//
// Returns:
//   - Bus: the newly created bus
func NewBus(options ...BusBuilderOption) Bus {
	b := &bus{
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

func (b *bus) AddListener(kind Kind, listener Listener) {
	if kind < 0 || kind >= kindCount || listener == nil {
		return
	}
	b.listeners[kind] = append(b.listeners[kind], listener)
}

func (b *bus) Fire(ev Event) {
	if ev == nil {
		return
	}
	kind := ev.Kind()
	if kind < 0 || kind >= kindCount {
		return
	}
	// Snapshot the slice header so listeners appended mid-dispatch are skipped.
	listeners := b.listeners[kind]
	if len(listeners) == 0 {
		return
	}
	if ce := b.logger.Check(zap.DebugLevel, "firing event"); ce != nil {
		ce.Write(zap.Stringer("kind", kind), zap.Int("listeners", len(listeners)))
	}
	for _, l := range listeners {
		l(ev)
	}
}

func (b *bus) ListenerCount(kind Kind) int {
	if kind < 0 || kind >= kindCount {
		return 0
	}
	return len(b.listeners[kind])
}
