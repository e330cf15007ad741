package shader

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Carmen-Shannon/oxy-scene/engine/debug"
	"github.com/Carmen-Shannon/oxy-scene/engine/event"
	"github.com/Carmen-Shannon/oxy-scene/engine/transform"
)

// DefaultProgramKey is the key of the program used for geometry outside any shader node.
const DefaultProgramKey = "default"

// DrawState is everything a draw needs from the shader backend: the bound program, the
// matrices exported by the transform backends and the merged uniform values.
type DrawState struct {
	Program    Program
	Model      []float32
	Normal     []float32
	View       []float32
	ViewNormal []float32
	Projection []float32
	Vars       Vars
}

// cachedProgram is a cache entry together with the debug checks it has been through.
type cachedProgram struct {
	program   Program
	validated bool
	logged    bool
}

// scope is one shader node on the traversal stack.
type scope struct {
	id       string
	bindings []Binding
	declared Vars
}

// backend is the implementation of the Backend interface.
type backend struct {
	bus     event.Bus
	configs debug.Store
	logger  *zap.Logger
	pp      PreProcessor

	skeletons map[Stage]string
	sites     map[Stage]map[Hook]int
	siteErr   error

	scopes []scope
	layers []Vars

	mu       sync.Mutex
	programs map[string]*cachedProgram

	active     Program
	model      []float32
	normal     []float32
	view       []float32
	viewNormal []float32
	projection []float32
}

// Backend aggregates the code fragments and hook bindings of the shader nodes in scope,
// assembles and caches the resulting programs, merges uniform values and receives the
// matrices exported by the transform backends. It fires the shader lifecycle events on the
// session bus: ShaderActivated and ShaderDeactivated only when the bound program changes,
// and ShaderRendering before every draw.
type Backend interface {
	transform.MatrixSink

	// PushShader enters the scope of a shader node. Its bindings add to those of the
	// enclosing shader nodes and its vars are declared as uniforms of the program.
	//
	// Parameters:
	//   - id: the shader node ID, part of the program key
	//   - bindings: per-stage code fragments and hook bindings
	//   - vars: initial uniform values; the set of names defines the ShaderVars layout
	PushShader(id string, bindings []Binding, vars Vars)

	// PopShader leaves the innermost shader node scope.
	PopShader()

	// PushVars applies per-frame uniform overrides for the current subtree.
	//
	// Parameters:
	//   - vars: values overriding same-named vars from enclosing nodes
	PushVars(vars Vars)

	// PopVars removes the innermost vars overrides.
	PopVars()

	// Vars merges every vars layer in scope, later layers winning for the same name.
	//
	// Returns:
	//   - Vars: a freshly merged set
	Vars() Vars

	// Compile assembles, or fetches from the cache, the program of the current scope.
	// Hook names absent from the stage skeleton fail with a *BindingError. When
	// shading.validate is set, bound functions must be defined in the stage code and every
	// stage must compile, failing with a *BindingError or *CompileError respectively. When
	// shading.logScripts is set, newly assembled sources are logged.
	//
	// Returns:
	//   - Program: the program of the current scope
	//   - error: an error if the program could not be assembled
	Compile() (Program, error)

	// Render binds the program of the current scope and fires ShaderRendering so the
	// transform backends export their matrices, then returns the state of the draw.
	//
	// Returns:
	//   - DrawState: the program, matrices and merged vars of the draw
	//   - error: an error if the program could not be assembled
	Render() (DrawState, error)

	// Deactivate unbinds the active program, firing ShaderDeactivated if one was bound.
	Deactivate()

	// Active returns the bound program.
	//
	// Returns:
	//   - Program: the active program, or nil
	Active() Program

	// Programs returns every cached program sorted by key.
	//
	// Returns:
	//   - []Program: the cached programs
	Programs() []Program
}

var _ Backend = &backend{}

// NewBackend creates a shader Backend bound to a session bus and debug store. The backend
// clears its scope stacks on every SceneRendering event.
// Panics if bus or configs is nil.
//
// Parameters:
//   - bus: the session event bus
//   - configs: the debug store consulted for shading.validate and shading.logScripts
//   - options: functional options to configure the backend
//
// Returns:
//   - Backend: the newly created backend
func NewBackend(bus event.Bus, configs debug.Store, options ...BackendBuilderOption) Backend {
	if bus == nil {
		panic("shader: NewBackend requires a bus")
	}
	if configs == nil {
		panic("shader: NewBackend requires a debug store")
	}

	b := &backend{
		bus:     bus,
		configs: configs,
		logger:  zap.NewNop(),
		pp:      NewPreProcessor(),
		skeletons: map[Stage]string{
			StageVertex:   DefaultSkeleton(StageVertex),
			StageFragment: DefaultSkeleton(StageFragment),
		},
		programs: make(map[string]*cachedProgram),
	}

	for _, option := range options {
		option(b)
	}

	b.sites = make(map[Stage]map[Hook]int, len(Stages))
	for _, stage := range Stages {
		sites, err := b.pp.HookSites(stage, b.skeletons[stage])
		if err != nil {
			b.siteErr = fmt.Errorf("%s skeleton: %w", stage, err)
			break
		}
		b.sites[stage] = sites
	}

	bus.AddListener(event.SceneRendering, func(event.Event) {
		b.scopes = b.scopes[:0]
		b.layers = b.layers[:0]
	})

	return b
}

func (b *backend) PushShader(id string, bindings []Binding, vars Vars) {
	b.scopes = append(b.scopes, scope{id: id, bindings: bindings, declared: vars})
	b.layers = append(b.layers, vars)
}

func (b *backend) PopShader() {
	if len(b.scopes) == 0 {
		return
	}
	b.scopes = b.scopes[:len(b.scopes)-1]
	b.layers = b.layers[:len(b.layers)-1]
}

func (b *backend) PushVars(vars Vars) {
	b.layers = append(b.layers, vars)
}

func (b *backend) PopVars() {
	if len(b.layers) == 0 {
		return
	}
	b.layers = b.layers[:len(b.layers)-1]
}

func (b *backend) Vars() Vars {
	return Vars(nil).Merge(b.layers...)
}

func (b *backend) Compile() (Program, error) {
	if b.siteErr != nil {
		return nil, b.siteErr
	}

	key := b.scopeKey()
	declared := make(Vars)
	for _, sc := range b.scopes {
		maps.Copy(declared, sc.declared)
	}
	layout, err := newVarsLayout(declared)
	if err != nil {
		return nil, fmt.Errorf("shader %q: %w", key, err)
	}

	// the declared var set is part of the cache identity since nodes may change it at runtime
	cacheKey := key + "\x00" + layoutSignature(layout)
	validate := b.configs.Bool(debug.PathShadingValidate)
	logScripts := b.configs.Bool(debug.PathShadingLogScripts)

	b.mu.Lock()
	entry, ok := b.programs[cacheKey]
	b.mu.Unlock()

	// a program assembled before shading.validate was switched on is checked again
	if !ok || (validate && !entry.validated) {
		p, err := b.assemble(key, layout, validate)
		if err != nil {
			return nil, err
		}
		entry = &cachedProgram{program: p, validated: validate}
		b.mu.Lock()
		b.programs[cacheKey] = entry
		b.mu.Unlock()
	}

	b.mu.Lock()
	logNow := logScripts && !entry.logged
	entry.logged = entry.logged || logScripts
	b.mu.Unlock()

	if logNow {
		for _, stage := range Stages {
			b.logger.Info("assembled shader",
				zap.String("program", key),
				zap.Stringer("stage", stage),
				zap.String("source", entry.program.Source(stage)),
			)
		}
	}

	return entry.program, nil
}

func (b *backend) Render() (DrawState, error) {
	p, err := b.Compile()
	if err != nil {
		return DrawState{}, err
	}

	if b.active != p {
		if b.active != nil {
			b.bus.Fire(event.NewShaderEvent(event.ShaderDeactivated, b.active.Key()))
		}
		b.active = p
		b.bus.Fire(event.NewShaderEvent(event.ShaderActivated, p.Key()))
	}
	b.bus.Fire(event.NewShaderEvent(event.ShaderRendering, p.Key()))

	return DrawState{
		Program:    p,
		Model:      b.model,
		Normal:     b.normal,
		View:       b.view,
		ViewNormal: b.viewNormal,
		Projection: b.projection,
		Vars:       b.Vars(),
	}, nil
}

func (b *backend) Deactivate() {
	if b.active == nil {
		return
	}
	key := b.active.Key()
	b.active = nil
	b.bus.Fire(event.NewShaderEvent(event.ShaderDeactivated, key))
}

func (b *backend) Active() Program {
	return b.active
}

func (b *backend) Programs() []Program {
	b.mu.Lock()
	out := make([]Program, 0, len(b.programs))
	for _, entry := range b.programs {
		out = append(out, entry.program)
	}
	b.mu.Unlock()
	slices.SortFunc(out, func(x, y Program) int {
		return strings.Compare(x.Key(), y.Key())
	})
	return out
}

func (b *backend) AddModelMatrices(model, normal []float32) {
	b.model, b.normal = model, normal
}

func (b *backend) AddViewMatrices(view, normal []float32) {
	b.view, b.viewNormal = view, normal
}

func (b *backend) AddProjectionMatrix(projection []float32) {
	b.projection = projection
}

// keyEscaper escapes the separator of scope keys inside node IDs, so "a>b" as a single ID
// keys differently from "a" enclosing "b".
var keyEscaper = strings.NewReplacer(`\`, `\\`, ">", `\>`)

// scopeKey joins the IDs of the shader nodes in scope, outermost first.
func (b *backend) scopeKey() string {
	if len(b.scopes) == 0 {
		return DefaultProgramKey
	}
	ids := make([]string, len(b.scopes))
	for i, sc := range b.scopes {
		ids[i] = keyEscaper.Replace(sc.id)
	}
	return strings.Join(ids, ">")
}

// assemble builds the program of the current scope. Fragments concatenate outermost first;
// for a hook bound at several levels the innermost binding wins.
func (b *backend) assemble(key string, layout VarsLayout, validate bool) (Program, error) {
	p := &program{
		key:     key,
		sources: make(map[Stage]string, len(Stages)),
		calls:   make(map[Stage]map[Hook]string, len(Stages)),
		layout:  layout,
	}

	for _, stage := range Stages {
		var fragments []string
		calls := make(map[Hook]string)

		for _, sc := range b.scopes {
			for _, bd := range sc.bindings {
				if bd.Stage != stage {
					continue
				}
				fragments = append(fragments, bd.Code...)

				for _, name := range slices.Sorted(maps.Keys(bd.Hooks)) {
					fn := bd.Hooks[name]
					bindErr := &BindingError{Program: key, Stage: stage, Hook: name, Function: fn}

					h, err := ParseHook(stage, name)
					if err != nil {
						bindErr.Reason = "unknown hook"
						return nil, bindErr
					}
					if _, ok := b.sites[stage][h]; !ok {
						bindErr.Reason = "hook has no site in the stage skeleton"
						return nil, bindErr
					}
					if !identifierRegex.MatchString(fn) {
						bindErr.Reason = "function name is not a WGSL identifier"
						return nil, bindErr
					}
					calls[h] = fn
				}
			}
		}

		if validate {
			code := strings.Join(fragments, "\n")
			for _, h := range Hooks(stage) {
				fn, ok := calls[h]
				if !ok || definesFunction(code, fn) {
					continue
				}
				return nil, &BindingError{
					Program:  key,
					Stage:    stage,
					Hook:     h.Name(),
					Function: fn,
					Reason:   "function is not defined in the stage code",
				}
			}
		}

		source, err := b.pp.Process(stage, b.skeletons[stage], Injection{
			Vars:      layout.Declaration(),
			Fragments: fragments,
			Calls:     calls,
		})
		if err != nil {
			return nil, fmt.Errorf("shader %q: %s skeleton: %w", key, stage, err)
		}

		if validate {
			if err := compileWGSL(source); err != nil {
				return nil, &CompileError{Program: key, Stage: stage, Err: err}
			}
		}

		p.sources[stage] = source
		p.calls[stage] = calls
	}

	return p, nil
}

// layoutSignature identifies a vars layout by its member names and types.
func layoutSignature(l VarsLayout) string {
	parts := make([]string, len(l.Fields))
	for i, f := range l.Fields {
		parts[i] = f.Name + ":" + f.Type
	}
	return strings.Join(parts, ",")
}
