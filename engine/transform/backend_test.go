package transform

import (
	"testing"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/event"
)

type export struct {
	space  Space
	matrix []float32
	normal []float32
}

type recordingSink struct {
	exports []export
}

func (r *recordingSink) AddModelMatrices(model, normal []float32) {
	r.exports = append(r.exports, export{SpaceModel, model, normal})
}

func (r *recordingSink) AddViewMatrices(view, normal []float32) {
	r.exports = append(r.exports, export{SpaceView, view, normal})
}

func (r *recordingSink) AddProjectionMatrix(projection []float32) {
	r.exports = append(r.exports, export{SpaceProjection, projection, nil})
}

func newTestBackend(t *testing.T, space Space, options ...BackendBuilderOption) (*backend, event.Bus, *recordingSink) {
	t.Helper()
	bus := event.NewBus()
	sink := &recordingSink{}
	b := NewBackend(space, bus, sink, options...).(*backend)
	return b, bus, sink
}

// translateScale returns T(1,2,3) * S(2,2,2).
func translateScale() math32.Matrix4 {
	tr := make([]float32, 16)
	sc := make([]float32, 16)
	out := make([]float32, 16)
	common.Translation(tr, 1, 2, 3)
	common.Scaling(sc, 2, 2, 2)
	common.Mul4(out, tr, sc)
	return common.Matrix4(out)
}

func fireRendering(bus event.Bus) {
	bus.Fire(event.NewShaderEvent(event.ShaderRendering, "p"))
}

func TestLifecycleScenario(t *testing.T) {
	b, bus, sink := newTestBackend(t, SpaceModel)

	bus.Fire(event.SceneRenderingEvent{})
	assert.True(t, b.Transform().Identity)
	assert.True(t, b.Dirty())

	m := translateScale()
	b.SetTransform(NewState(m))
	assert.True(t, b.Dirty())

	bus.Fire(event.NewShaderEvent(event.ShaderActivated, "p"))
	assert.True(t, b.Dirty())

	fireRendering(bus)
	require.Len(t, sink.exports, 1)
	assert.False(t, b.Dirty())

	got := sink.exports[0]
	assert.Equal(t, SpaceModel, got.space)
	assert.InDeltaSlice(t, m[:], got.matrix, 1e-6)
	assert.InDeltaSlice(t, []float32{
		0.5, 0, 0, -0.5,
		0, 0.5, 0, -1,
		0, 0, 0.5, -1.5,
		0, 0, 0, 1,
	}, got.normal, 1e-6)

	fireRendering(bus)
	assert.Len(t, sink.exports, 1, "clean backend must not export again")
}

func TestDirtyAfterEverySetTransformUntilRendering(t *testing.T) {
	b, bus, _ := newTestBackend(t, SpaceModel)
	bus.Fire(event.SceneRenderingEvent{})

	for i := 0; i < 5; i++ {
		for j := 0; j <= i; j++ {
			b.SetTransform(NewState(translateScale()))
			assert.True(t, b.Dirty())
		}
		bus.Fire(event.NewShaderEvent(event.ShaderActivated, "p"))
		assert.True(t, b.Dirty())
		fireRendering(bus)
		assert.False(t, b.Dirty())
	}
}

func TestNormalMatrixCacheHit(t *testing.T) {
	b, bus, sink := newTestBackend(t, SpaceModel)
	bus.Fire(event.SceneRenderingEvent{})
	b.SetTransform(NewState(translateScale()))

	fireRendering(bus)
	bus.Fire(event.NewShaderEvent(event.ShaderDeactivated, "p"))
	bus.Fire(event.NewShaderEvent(event.ShaderActivated, "q"))
	fireRendering(bus)

	assert.Len(t, sink.exports, 2, "each activation exports once")
	assert.Equal(t, 1, b.normalComputations)
	assert.Equal(t, 1, b.packComputations)
	assert.Same(t, &sink.exports[0].normal[0], &sink.exports[1].normal[0])

	b.SetTransform(NewState(translateScale()))
	fireRendering(bus)
	assert.Equal(t, 2, b.normalComputations)
}

func TestRestoredStateKeepsCache(t *testing.T) {
	b, bus, _ := newTestBackend(t, SpaceModel)
	bus.Fire(event.SceneRenderingEvent{})

	parent := NewState(translateScale())
	b.SetTransform(parent)
	fireRendering(bus)

	b.SetTransform(NewState(*math32.Identity4()))
	fireRendering(bus)

	b.SetTransform(parent)
	assert.True(t, parent.Cached())
	fireRendering(bus)
	assert.Equal(t, 2, b.normalComputations)
}

func TestSceneRenderingResets(t *testing.T) {
	b, bus, _ := newTestBackend(t, SpaceModel)
	b.SetTransform(NewState(translateScale()))
	gen := b.Generation()
	fireRendering(bus)
	require.False(t, b.Dirty())

	bus.Fire(event.SceneRenderingEvent{Frame: 1})
	assert.True(t, b.Dirty())
	assert.True(t, b.Transform().Identity)
	assert.True(t, b.Transform().Fixed)
	assert.Greater(t, b.Generation(), gen)
}

func TestSetTransformFiresUpdated(t *testing.T) {
	b, bus, _ := newTestBackend(t, SpaceModel)
	var got []UpdatedEvent
	bus.AddListener(event.ModelTransformUpdated, func(ev event.Event) {
		got = append(got, ev.(UpdatedEvent))
	})

	s := NewState(translateScale())
	b.SetTransform(s)
	require.Len(t, got, 1)
	assert.Same(t, s, got[0].State)
	assert.Same(t, s, b.Transform())
	assert.Equal(t, SpaceModel, got[0].Space)
}

func TestViewAndProjectionExports(t *testing.T) {
	view, vbus, vsink := newTestBackend(t, SpaceView)
	view.SetTransform(NewState(translateScale()))
	fireRendering(vbus)
	require.Len(t, vsink.exports, 1)
	assert.Equal(t, SpaceView, vsink.exports[0].space)
	assert.NotNil(t, vsink.exports[0].normal)

	var updated int
	proj, pbus, psink := newTestBackend(t, SpaceProjection)
	pbus.AddListener(event.ProjectionTransformUpdated, func(event.Event) { updated++ })
	proj.SetTransform(NewState(translateScale()))
	fireRendering(pbus)
	require.Len(t, psink.exports, 1)
	assert.Equal(t, SpaceProjection, psink.exports[0].space)
	assert.Nil(t, psink.exports[0].normal)
	assert.Zero(t, proj.normalComputations)
	assert.Equal(t, 1, updated)
}

func TestSingularMatrixLogsAndUsesIdentity(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	b, bus, sink := newTestBackend(t, SpaceModel, WithLogger(zap.New(core)))

	b.SetTransform(NewState(math32.Matrix4{}))
	fireRendering(bus)

	require.Len(t, sink.exports, 1)
	id := make([]float32, 16)
	common.Identity(id)
	assert.Equal(t, id, sink.exports[0].normal)
	assert.Equal(t, 1, logs.FilterMessage("singular transform, using identity normal matrix").Len())
}

func TestNilStateIsIdentity(t *testing.T) {
	b, _, _ := newTestBackend(t, SpaceModel)
	b.SetTransform(nil)
	assert.True(t, b.Transform().Identity)
}

func TestNewBackendRequiresCollaborators(t *testing.T) {
	assert.Panics(t, func() { NewBackend(SpaceModel, nil, &recordingSink{}) })
	assert.Panics(t, func() { NewBackend(SpaceModel, event.NewBus(), nil) })
}
