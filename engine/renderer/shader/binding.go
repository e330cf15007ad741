package shader

import (
	"fmt"
	"maps"
	"strings"
)

// Binding is the per-stage contribution of one shader node: ordered WGSL code fragments and
// a mapping from hook name to the function the generated program must call at that hook.
type Binding struct {
	// Stage is the stage the fragments and hooks apply to.
	Stage Stage

	// Code holds the WGSL fragments, concatenated in order.
	Code []string

	// Hooks maps a hook name of Stage to a function defined in Code.
	Hooks map[string]string
}

// Source returns the concatenated fragments.
func (b Binding) Source() string {
	return strings.Join(b.Code, "\n")
}

// Vars is a set of uniform values keyed by uniform name.
type Vars map[string]any

// Merge returns a new set holding the receiver overlaid with each override in order.
// Later sets win for the same name; the inputs are not modified.
func (v Vars) Merge(overrides ...Vars) Vars {
	out := make(Vars, len(v))
	maps.Copy(out, v)
	for _, o := range overrides {
		maps.Copy(out, o)
	}
	return out
}

// CodeFromAny normalizes the code attribute of a shader description, which may be a single
// string or a list of strings.
//
// Parameters:
//   - v: a string, []string or []any of strings
//
// Returns:
//   - []string: the code fragments
//   - error: an error if v has any other shape
func CodeFromAny(v any) ([]string, error) {
	switch c := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{c}, nil
	case []string:
		return append([]string(nil), c...), nil
	case []any:
		out := make([]string, 0, len(c))
		for i, item := range c {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("code fragment %d is %T, want string", i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("shader code is %T, want string or list of strings", v)
	}
}

// BindingsFromAny normalizes the shaders attribute of a shader description: a list of
// mappings with a "stage" name, a "code" string or list, and a "hooks" mapping from hook
// name to function name.
//
// Parameters:
//   - v: a []Binding, or a []map[string]any / []any of mappings
//
// Returns:
//   - []Binding: the bindings in order
//   - error: an error naming the first malformed entry
func BindingsFromAny(v any) ([]Binding, error) {
	var entries []any
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []Binding:
		return append([]Binding(nil), x...), nil
	case []map[string]any:
		for _, m := range x {
			entries = append(entries, m)
		}
	case []any:
		entries = x
	default:
		return nil, fmt.Errorf("shaders is %T, want a list of mappings", v)
	}

	out := make([]Binding, 0, len(entries))
	for i, e := range entries {
		m, ok := e.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("shaders[%d] is %T, want a mapping", i, e)
		}
		name, _ := m["stage"].(string)
		stage, err := ParseStage(name)
		if err != nil {
			return nil, fmt.Errorf("shaders[%d]: %w", i, err)
		}
		code, err := CodeFromAny(m["code"])
		if err != nil {
			return nil, fmt.Errorf("shaders[%d]: %w", i, err)
		}
		hooks, err := hooksFromAny(m["hooks"])
		if err != nil {
			return nil, fmt.Errorf("shaders[%d]: %w", i, err)
		}
		out = append(out, Binding{Stage: stage, Code: code, Hooks: hooks})
	}
	return out, nil
}

func hooksFromAny(v any) (map[string]string, error) {
	switch h := v.(type) {
	case nil:
		return nil, nil
	case map[string]string:
		return maps.Clone(h), nil
	case map[string]any:
		out := make(map[string]string, len(h))
		for hook, fn := range h {
			s, ok := fn.(string)
			if !ok {
				return nil, fmt.Errorf("hook %q is bound to %T, want a function name", hook, fn)
			}
			out[hook] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("hooks is %T, want a mapping", v)
	}
}

// BindingError reports a hook binding that cannot be assembled into a program. It halts
// compilation of the program that carries it.
type BindingError struct {
	Program  string
	Stage    Stage
	Hook     string
	Function string
	Reason   string
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("shader %q: %s hook %q bound to %q: %s", e.Program, e.Stage, e.Hook, e.Function, e.Reason)
}

// CompileError wraps a WGSL compiler failure for one stage of an assembled program.
type CompileError struct {
	Program string
	Stage   Stage
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("shader %q: %s stage does not compile: %v", e.Program, e.Stage, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}
