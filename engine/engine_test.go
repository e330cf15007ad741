package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Carmen-Shannon/oxy-scene/engine/model"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
)

// The compile pool's workers outlive Precompile; they are reused by later calls.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("github.com/Carmen-Shannon/automation/tools/worker.(*worker).Start.func1"),
	)
}

// fakeSurface runs the update callback a fixed number of times, or until closed.
type fakeSurface struct {
	width, height int
	iterations    int
	closed        bool
	onUpdate      func()
	onResize      func(width, height int)
}

func (f *fakeSurface) SetUpdateCallback(callback func())                  { f.onUpdate = callback }
func (f *fakeSurface) SetResizeCallback(callback func(width, height int)) { f.onResize = callback }
func (f *fakeSurface) IsRunning() bool                                    { return !f.closed }
func (f *fakeSurface) Close() error                                       { f.closed = true; return nil }
func (f *fakeSurface) Width() int                                         { return f.width }
func (f *fakeSurface) Height() int                                        { return f.height }

func (f *fakeSurface) ProcessMessages() {
	for i := 0; i < f.iterations && f.IsRunning(); i++ {
		if f.onUpdate != nil {
			f.onUpdate()
		}
	}
}

func newScene(t *testing.T, id string, nodes ...scene.Node) scene.Scene {
	t.Helper()
	box, err := model.NewBox("box", 1, 1, 1)
	require.NoError(t, err)
	if len(nodes) == 0 {
		nodes = []scene.Node{scene.NewGeometry(box)}
	}
	return scene.NewScene(id, renderer.NewRenderer(), scene.WithNodes(nodes...))
}

func TestStartRendersFrameBudgetInKeyOrder(t *testing.T) {
	back := newScene(t, "back")
	front := newScene(t, "front")
	e := NewEngine(WithScene(10, front), WithScene(-1, back))

	var order []string
	err := e.Start(context.Background(), StartConfig{
		Frames: 3,
		IdleFunc: func(s scene.Scene) error {
			order = append(order, s.ID())
			return nil
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"back", "front", "back", "front", "back", "front"}, order)
	assert.Equal(t, uint64(3), back.Frame())
	assert.Equal(t, uint64(3), front.Frame())
	assert.Len(t, front.Renderer().Calls(), 1)
}

func TestStartStopsOnStopAndContext(t *testing.T) {
	s := newScene(t, "s")
	e := NewEngine(WithScene(0, s))

	err := e.Start(context.Background(), StartConfig{
		IdleFunc: func(sc scene.Scene) error {
			if sc.Frame() == 4 {
				e.Stop()
				e.Stop()
			}
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(5), s.Frame())

	// the engine can be started again after Stop
	ctx, cancel := context.WithCancel(context.Background())
	err = e.Start(ctx, StartConfig{
		IdleFunc: func(sc scene.Scene) error {
			if sc.Frame() == 6 {
				cancel()
			}
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), s.Frame())
}

func TestStartReturnsIdleAndRenderErrors(t *testing.T) {
	s := newScene(t, "s")
	e := NewEngine(WithScene(0, s))

	boom := errors.New("boom")
	err := e.Start(context.Background(), StartConfig{
		IdleFunc: func(scene.Scene) error { return boom },
	})
	require.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, `scene "s": idle`)
	assert.Zero(t, s.Frame())

	broken := newScene(t, "broken", scene.NewShader([]shader.Binding{{
		Stage: shader.StageVertex,
		Hooks: map[string]string{"noSuchHook": "f"},
	}}, nil, scene.WithChildren(scene.NewGeometry(mustBox(t)))))
	e.AddScene(1, broken)

	var bindErr *shader.BindingError
	err = e.Start(context.Background(), StartConfig{Frames: 1})
	require.ErrorAs(t, err, &bindErr)
}

func TestStartRecoversPanics(t *testing.T) {
	e := NewEngine(WithScene(0, newScene(t, "s")))
	err := e.Start(context.Background(), StartConfig{
		IdleFunc: func(scene.Scene) error { panic("idle exploded") },
	})
	assert.ErrorContains(t, err, "panic: idle exploded")
}

func TestStartDrivenBySurface(t *testing.T) {
	surface := &fakeSurface{width: 300, height: 150, iterations: 100}
	s := newScene(t, "s")
	e := NewEngine(WithSurface(surface), WithScene(0, s), WithProfiling(true))
	assert.Equal(t, Surface(surface), e.Surface())

	w, h := s.Renderer().Size()
	assert.Equal(t, 300, w)
	assert.Equal(t, 150, h)

	surface.onResize(640, 480)
	w, h = s.Renderer().Size()
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)

	require.NoError(t, e.Start(context.Background(), StartConfig{Frames: 2}))
	assert.Equal(t, uint64(2), s.Frame())
	assert.True(t, surface.closed)
	assert.Nil(t, surface.onUpdate)

	late := newScene(t, "late")
	e.AddScene(1, late)
	w, _ = late.Renderer().Size()
	assert.Equal(t, 640, w)
}

func TestSurfaceClosedByErrorReturnsIt(t *testing.T) {
	surface := &fakeSurface{iterations: 10}
	e := NewEngine(WithSurface(surface), WithScene(0, newScene(t, "s")))
	boom := errors.New("boom")
	err := e.Start(context.Background(), StartConfig{
		IdleFunc: func(scene.Scene) error { return boom },
	})
	assert.ErrorIs(t, err, boom)
	assert.True(t, surface.closed)
}

func TestPrecompile(t *testing.T) {
	e := NewEngine(WithCompileWorkers(2))
	require.NoError(t, e.Precompile())

	good := newScene(t, "good", scene.NewShader(nil, nil, scene.WithID("lit"), scene.WithChildren(
		scene.NewGeometry(mustBox(t)),
	)))
	bad := newScene(t, "bad", scene.NewShader([]shader.Binding{{
		Stage: shader.StageFragment,
		Hooks: map[string]string{"noSuchHook": "f"},
	}}, nil, scene.WithChildren(scene.NewGeometry(mustBox(t)))))
	e.AddScene(0, good)
	e.AddScene(1, bad)

	err := e.Precompile()
	var bindErr *shader.BindingError
	require.ErrorAs(t, err, &bindErr)
	assert.ErrorContains(t, err, `scene "bad"`)

	programs := good.Shader().Programs()
	require.Len(t, programs, 1)
	assert.Equal(t, "lit", programs[0].Key())
	assert.Empty(t, good.Renderer().Calls())

	e.RemoveScene(1)
	assert.Nil(t, e.Scene(1))
	assert.Len(t, e.Scenes(), 1)
	require.NoError(t, e.Precompile())
}

func TestConcurrentStartIsRejected(t *testing.T) {
	e := NewEngine(WithScene(0, newScene(t, "s")))
	var inner error
	err := e.Start(context.Background(), StartConfig{
		Frames: 1,
		IdleFunc: func(scene.Scene) error {
			inner = e.Start(context.Background(), StartConfig{Frames: 1})
			return nil
		},
	})
	require.NoError(t, err)
	assert.ErrorIs(t, inner, ErrRunning)
}

func TestFrameDuration(t *testing.T) {
	assert.Zero(t, frameDuration(0))
	assert.Zero(t, frameDuration(-5))
	assert.Equal(t, int64(20_000_000), frameDuration(50).Nanoseconds())

	e := NewEngine(WithRenderFrameLimit(1000))
	e.SetRenderFrameLimit(0)
	e.EnableProfiler()
	e.DisableProfiler()
	require.NoError(t, e.Start(context.Background(), StartConfig{Frames: 1}))
}

func mustBox(t *testing.T) model.Model {
	t.Helper()
	box, err := model.NewBox("box", 1, 1, 1)
	require.NoError(t, err)
	return box
}
