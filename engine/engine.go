package engine

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/oxy-scene/engine/profiler"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
)

// ErrRunning is returned by Start while another Start is still running.
var ErrRunning = errors.New("engine: already running")

// Surface is the on-screen target the render loop can be driven from.
// window.Window satisfies it.
type Surface interface {
	SetUpdateCallback(callback func())
	SetResizeCallback(callback func(width, height int))
	IsRunning() bool
	Close() error
	ProcessMessages()
	Width() int
	Height() int
}

// StartConfig controls one run of the render loop.
type StartConfig struct {
	// IdleFunc runs once per frame for every scene, right before the scene is rendered.
	// Use it to animate node attributes. An error stops the loop.
	IdleFunc func(s scene.Scene) error

	// Frames is the number of frames to render. 0 renders until stopped.
	Frames int
}

// engine implements the Engine interface.
type engine struct {
	mu     sync.RWMutex
	logger *zap.Logger

	scenes map[int]scene.Scene

	surface Surface

	profiler         *profiler.Profiler
	profilingEnabled bool

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	compileWorkers int
	compilePool    worker.DynamicWorkerPool

	running  bool
	quit     chan struct{}
	quitOnce *sync.Once
}

// Engine runs the render loop over a set of scenes. Scenes are rendered in ascending key
// order every frame.
type Engine interface {
	// Surface returns the on-screen target, or nil when the engine runs headless.
	//
	// Returns:
	//   - Surface: the surface set with WithSurface
	Surface() Surface

	// EnableProfiler enables frame rate and memory sampling through the logger.
	EnableProfiler()

	// DisableProfiler disables profiling output.
	DisableProfiler()

	// SetRenderFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddScene registers a scene at the given key, replacing any scene already there.
	//
	// Parameters:
	//   - key: the z-index determining render order (lower renders first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given key.
	//
	// Parameters:
	//   - key: the z-index of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given key.
	//
	// Parameters:
	//   - key: the z-index of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// Precompile assembles the shader programs of every scene in parallel, so the first
	// frame does not pay for program assembly.
	//
	// Returns:
	//   - error: the compile errors of all failing scenes joined in key order
	Precompile() error

	// Start runs the render loop and blocks until it stops. The loop stops between frames
	// on Stop, context cancellation, an exhausted frame budget or a closed surface; all of
	// these return nil. With a surface the loop runs inside the surface's message loop on
	// the calling goroutine.
	//
	// Parameters:
	//   - ctx: cancels the loop
	//   - cfg: the idle function and frame budget
	//
	// Returns:
	//   - error: ErrRunning, or the first idle, render or panic error of a frame
	Start(ctx context.Context, cfg StartConfig) error

	// Stop asks a running Start to return after the current frame.
	// Safe to call multiple times and from any goroutine.
	Stop()
}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		logger:         zap.NewNop(),
		scenes:         make(map[int]scene.Scene),
		compileWorkers: 4,
		quit:           make(chan struct{}),
		quitOnce:       &sync.Once{},
	}

	for _, opt := range options {
		opt(e)
	}

	e.profiler = profiler.NewProfiler(e.logger.Named("profiler"))

	if e.surface != nil {
		e.surface.SetResizeCallback(e.resize)
		e.resize(e.surface.Width(), e.surface.Height())
	}

	return e
}

func (e *engine) Surface() Surface {
	return e.surface
}

func (e *engine) EnableProfiler() {
	e.mu.Lock()
	e.profilingEnabled = true
	e.mu.Unlock()
}

func (e *engine) DisableProfiler() {
	e.mu.Lock()
	e.profilingEnabled = false
	e.mu.Unlock()
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderFrameLimit = frameDuration(fps)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenes[key] = s
	if e.surface != nil {
		s.Resize(e.surface.Width(), e.surface.Height())
	}
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return maps.Clone(e.scenes)
}

// sortedScenes snapshots the registered scenes in ascending key order.
func (e *engine) sortedScenes() []scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]scene.Scene, 0, len(e.scenes))
	for _, k := range slices.Sorted(maps.Keys(e.scenes)) {
		out = append(out, e.scenes[k])
	}
	return out
}

func (e *engine) Precompile() error {
	scenes := e.sortedScenes()
	if len(scenes) == 0 {
		return nil
	}

	e.mu.Lock()
	if e.compilePool == nil {
		e.compilePool = worker.NewDynamicWorkerPool(e.compileWorkers, 256, 1*time.Second)
	}
	pool := e.compilePool
	e.mu.Unlock()

	// The pool's Wait blocks until workers idle out, so a WaitGroup is the barrier.
	errs := make([]error, len(scenes))
	var wg sync.WaitGroup
	for i, s := range scenes {
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				start := time.Now()
				errs[i] = s.Compile()
				e.logger.Debug("scene compiled",
					zap.String("scene", s.ID()),
					zap.Duration("took", time.Since(start)),
					zap.Bool("ok", errs[i] == nil))
				return nil, errs[i]
			},
		})
	}
	wg.Wait()

	return errors.Join(errs...)
}

func (e *engine) Start(ctx context.Context, cfg StartConfig) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return ErrRunning
	}
	e.running = true
	quit := e.quit
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.running = false
		e.quit = make(chan struct{})
		e.quitOnce = &sync.Once{}
		e.mu.Unlock()
	}()

	l := &loop{e: e, ctx: ctx, cfg: cfg, quit: quit}
	if e.surface == nil {
		for l.next() {
			if err := l.frame(); err != nil {
				return err
			}
		}
		return nil
	}

	var loopErr error
	e.surface.SetUpdateCallback(func() {
		if !l.next() {
			_ = e.surface.Close()
			return
		}
		if err := l.frame(); err != nil {
			loopErr = err
			_ = e.surface.Close()
		}
	})
	e.surface.ProcessMessages()
	e.surface.SetUpdateCallback(nil)
	return loopErr
}

func (e *engine) Stop() {
	e.mu.RLock()
	once, quit := e.quitOnce, e.quit
	e.mu.RUnlock()
	once.Do(func() {
		close(quit)
	})
}

// resize forwards a surface resize to every scene.
func (e *engine) resize(width, height int) {
	for _, s := range e.Scenes() {
		s.Resize(width, height)
	}
}

// loop is the state of one Start call.
type loop struct {
	e      *engine
	ctx    context.Context
	cfg    StartConfig
	quit   chan struct{}
	frames int
}

// next reports whether another frame should be rendered.
func (l *loop) next() bool {
	if l.cfg.Frames > 0 && l.frames >= l.cfg.Frames {
		return false
	}
	select {
	case <-l.quit:
		return false
	case <-l.ctx.Done():
		return false
	default:
		return true
	}
}

// frame runs the idle function and renders every scene once.
// Panics inside a frame are recovered and returned as errors.
func (l *loop) frame() (err error) {
	defer func() {
		if r := recover(); r != nil {
			l.e.logger.Error("render loop recovered from panic", zap.Any("panic", r))
			err = fmt.Errorf("frame %d: panic: %v", l.frames, r)
		}
	}()

	start := time.Now()
	for _, s := range l.e.sortedScenes() {
		if l.cfg.IdleFunc != nil {
			if err := l.cfg.IdleFunc(s); err != nil {
				return fmt.Errorf("scene %q: idle: %w", s.ID(), err)
			}
		}
		if err := s.Render(); err != nil {
			return err
		}
	}
	l.frames++

	l.e.mu.RLock()
	profiling, limit := l.e.profilingEnabled, l.e.renderFrameLimit
	l.e.mu.RUnlock()

	if profiling {
		l.e.profiler.Tick()
	}
	if limit > 0 {
		if remaining := limit - time.Since(start); remaining > 0 {
			time.Sleep(remaining)
		}
	}
	return nil
}

// frameDuration converts a frame rate cap to a minimum frame duration.
func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
