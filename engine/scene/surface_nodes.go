package scene

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/model"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/material"
)

// materialNode applies its material to every geometry in its subtree.
type materialNode struct {
	baseNode
	material material.Material
}

var _ Node = &materialNode{}

// NewMaterial creates a material node. A nil material uses the defaults.
//
// Parameters:
//   - m: the material
//   - options: functional options to configure the node
//
// Returns:
//   - Node: the new node
func NewMaterial(m material.Material, options ...NodeBuilderOption) Node {
	if m == nil {
		m = material.NewMaterial()
	}
	n := &materialNode{material: m}
	applyNodeOptions(&n.baseNode, NodeTypeMaterial, options)
	return n
}

func (n *materialNode) Set(attr string, value any) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	m := n.material
	switch attr {
	case "baseColor", "specularColor":
		base := m.BaseColor()
		if attr == "specularColor" {
			base = m.SpecularColor()
		}
		c, err := toVec3(value, base, rgb)
		if err != nil {
			return n.invalid(attr, err)
		}
		if attr == "baseColor" {
			m.SetBaseColor(c[0], c[1], c[2])
		} else {
			m.SetSpecularColor(c[0], c[1], c[2])
		}
	case "specular", "shine", "emit", "alpha":
		f, err := toFloat32(value)
		if err != nil {
			return n.invalid(attr, err)
		}
		switch attr {
		case "specular":
			m.SetSpecular(f)
		case "shine":
			m.SetShine(f)
		case "emit":
			m.SetEmit(f)
		default:
			m.SetAlpha(f)
		}
	default:
		return n.unknown(attr)
	}
	n.touch()
	return nil
}

func (n *materialNode) Get(attr string) (any, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	m := n.material
	switch attr {
	case "baseColor":
		return m.BaseColor(), nil
	case "specularColor":
		return m.SpecularColor(), nil
	case "specular":
		return m.Specular(), nil
	case "shine":
		return m.Shine(), nil
	case "emit":
		return m.Emit(), nil
	case "alpha":
		return m.Alpha(), nil
	default:
		return nil, n.unknown(attr)
	}
}

func (n *materialNode) visit(t *traversal) error {
	n.mu.RLock()
	snapshot := n.material.GPU()
	n.mu.RUnlock()

	t.materials = append(t.materials, snapshot)
	defer func() { t.materials = t.materials[:len(t.materials)-1] }()
	return n.visitChildren(t)
}

// lightNode adds its light to every geometry drawn after it in the same pass.
type lightNode struct {
	baseNode
	light light.Light
}

var _ Node = &lightNode{}

// NewLight creates a light node. A nil light uses the defaults.
//
// Parameters:
//   - l: the light
//   - options: functional options to configure the node
//
// Returns:
//   - Node: the new node
func NewLight(l light.Light, options ...NodeBuilderOption) Node {
	if l == nil {
		l = light.NewLight()
	}
	n := &lightNode{light: l}
	applyNodeOptions(&n.baseNode, NodeTypeLight, options)
	return n
}

func (n *lightNode) Set(attr string, value any) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	l := n.light
	switch attr {
	case "mode":
		s, ok := value.(string)
		if !ok {
			return n.invalid(attr, fmt.Errorf("want a string, got %T", value))
		}
		mode, ok := light.ParseLightMode(s)
		if !ok {
			return n.invalid(attr, fmt.Errorf("unknown light mode %q", s))
		}
		l.SetMode(mode)
	case "color":
		c, err := toVec3(value, l.Color(), rgb)
		if err != nil {
			return n.invalid(attr, err)
		}
		l.SetColor(c[0], c[1], c[2])
	case "dir", "pos":
		v, err := toVec3(value, l.Vector(), xyz)
		if err != nil {
			return n.invalid(attr, err)
		}
		l.SetVector(v[0], v[1], v[2])
	case "diffuse", "specular":
		b, err := toBool(value)
		if err != nil {
			return n.invalid(attr, err)
		}
		if attr == "diffuse" {
			l.SetDiffuse(b)
		} else {
			l.SetSpecular(b)
		}
	default:
		return n.unknown(attr)
	}
	n.touch()
	return nil
}

func (n *lightNode) Get(attr string) (any, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	l := n.light
	switch attr {
	case "mode":
		return l.Mode().String(), nil
	case "color":
		return l.Color(), nil
	case "dir", "pos":
		return l.Vector(), nil
	case "diffuse":
		return l.Diffuse(), nil
	case "specular":
		return l.Specular(), nil
	default:
		return nil, n.unknown(attr)
	}
}

func (n *lightNode) visit(t *traversal) error {
	n.mu.RLock()
	t.lights = append(t.lights, n.light.GPU())
	n.mu.RUnlock()
	return n.visitChildren(t)
}

// geometryNode draws its model with everything bound by its ancestors.
type geometryNode struct {
	baseNode
	model model.Model
}

var _ Node = &geometryNode{}

// NewGeometry creates a geometry node. Panics if m is nil.
//
// Parameters:
//   - m: the mesh to draw
//   - options: functional options to configure the node
//
// Returns:
//   - Node: the new node
func NewGeometry(m model.Model, options ...NodeBuilderOption) Node {
	if m == nil {
		panic("scene: NewGeometry requires a non-nil model")
	}
	n := &geometryNode{model: m}
	applyNodeOptions(&n.baseNode, NodeTypeGeometry, options)
	return n
}

func (n *geometryNode) Set(attr string, _ any) error {
	if attr == "model" {
		return n.readOnly(attr)
	}
	return n.unknown(attr)
}

func (n *geometryNode) Get(attr string) (any, error) {
	switch attr {
	case "model":
		return n.model, nil
	case "boundingRadius":
		return n.model.BoundingRadius(), nil
	default:
		return nil, n.unknown(attr)
	}
}

func (n *geometryNode) visit(t *traversal) error {
	if err := t.draw(n); err != nil {
		return fmt.Errorf("geometry %q: %w", n.id, err)
	}
	return n.visitChildren(t)
}
