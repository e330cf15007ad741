package scene

import (
	"fmt"
	"maps"

	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/shader"
)

// shaderNode contributes code fragments, hook bindings and declared vars to the program of
// its subtree.
type shaderNode struct {
	baseNode
	bindings []shader.Binding
	vars     shader.Vars
}

var _ Node = &shaderNode{}

// NewShader creates a shader node. The bindings are fixed for the life of the node; the
// vars declare the uniforms the node's code reads and their initial values.
//
// Parameters:
//   - bindings: per-stage code and hook bindings
//   - vars: the declared vars and their initial values
//   - options: functional options to configure the node
//
// Returns:
//   - Node: the new node
func NewShader(bindings []shader.Binding, vars shader.Vars, options ...NodeBuilderOption) Node {
	n := &shaderNode{
		bindings: append([]shader.Binding(nil), bindings...),
		vars:     shader.Vars(nil).Merge(vars),
	}
	applyNodeOptions(&n.baseNode, NodeTypeShader, options)
	return n
}

func (n *shaderNode) Set(attr string, value any) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch attr {
	case "vars":
		v, err := varsFromAny(value)
		if err != nil {
			return n.invalid(attr, err)
		}
		n.vars = n.vars.Merge(v)
	case "shaders":
		return n.readOnly(attr)
	default:
		return n.unknown(attr)
	}
	n.touch()
	return nil
}

func (n *shaderNode) Get(attr string) (any, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	switch attr {
	case "vars":
		return maps.Clone(n.vars), nil
	case "shaders":
		return append([]shader.Binding(nil), n.bindings...), nil
	default:
		return nil, n.unknown(attr)
	}
}

func (n *shaderNode) visit(t *traversal) error {
	n.mu.RLock()
	bindings, vars := n.bindings, n.vars
	n.mu.RUnlock()

	t.scene.shaders.PushShader(n.id, bindings, vars)
	defer t.scene.shaders.PopShader()
	return n.visitChildren(t)
}

// shaderVarsNode overrides uniform values for its subtree without changing the program.
type shaderVarsNode struct {
	baseNode
	vars shader.Vars
}

var _ Node = &shaderVarsNode{}

// NewShaderVars creates a shaderVars node.
//
// Parameters:
//   - vars: the overriding values
//   - options: functional options to configure the node
//
// Returns:
//   - Node: the new node
func NewShaderVars(vars shader.Vars, options ...NodeBuilderOption) Node {
	n := &shaderVarsNode{vars: shader.Vars(nil).Merge(vars)}
	applyNodeOptions(&n.baseNode, NodeTypeShaderVars, options)
	return n
}

func (n *shaderVarsNode) Set(attr string, value any) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if attr != "vars" {
		return n.unknown(attr)
	}
	v, err := varsFromAny(value)
	if err != nil {
		return n.invalid(attr, err)
	}
	n.vars = n.vars.Merge(v)
	n.touch()
	return nil
}

func (n *shaderVarsNode) Get(attr string) (any, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if attr != "vars" {
		return nil, n.unknown(attr)
	}
	return maps.Clone(n.vars), nil
}

func (n *shaderVarsNode) visit(t *traversal) error {
	n.mu.RLock()
	vars := n.vars
	n.mu.RUnlock()

	t.scene.shaders.PushVars(vars)
	defer t.scene.shaders.PopVars()
	return n.visitChildren(t)
}

// varsFromAny accepts shader.Vars or a plain mapping.
func varsFromAny(v any) (shader.Vars, error) {
	switch x := v.(type) {
	case shader.Vars:
		return x, nil
	case map[string]any:
		return shader.Vars(x), nil
	case map[string]float64:
		out := make(shader.Vars, len(x))
		for k, f := range x {
			out[k] = f
		}
		return out, nil
	default:
		return nil, fmt.Errorf("want a mapping of vars, got %T", v)
	}
}
