package scene

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// NodeType identifies the behavior of a node during traversal.
type NodeType string

const (
	NodeTypeScene      NodeType = "scene"
	NodeTypeNode       NodeType = "node"
	NodeTypeLookAt     NodeType = "lookAt"
	NodeTypeCamera     NodeType = "camera"
	NodeTypeRotate     NodeType = "rotate"
	NodeTypeTranslate  NodeType = "translate"
	NodeTypeScale      NodeType = "scale"
	NodeTypeMatrix     NodeType = "matrix"
	NodeTypeShader     NodeType = "shader"
	NodeTypeShaderVars NodeType = "shaderVars"
	NodeTypeMaterial   NodeType = "material"
	NodeTypeLight      NodeType = "light"
	NodeTypeGeometry   NodeType = "geometry"
)

// ErrUnknownAttribute is returned by Node.Set and Node.Get for attributes the node type
// does not have.
var ErrUnknownAttribute = errors.New("unknown attribute")

// ErrReadOnlyAttribute is returned by Node.Set for attributes fixed at construction.
var ErrReadOnlyAttribute = errors.New("attribute is read-only")

// MissingNodeError is returned when a lookup by ID finds no node.
type MissingNodeError struct {
	ID string
}

func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("scene: no node with id %q", e.ID)
}

// Node is one element of the scene graph. Nodes are retained across frames; attributes
// changed through Set take effect on the next traversal pass.
type Node interface {
	// ID returns the node identifier, unique within a scene.
	//
	// Returns:
	//   - string: the node ID
	ID() string

	// Type returns the node type.
	//
	// Returns:
	//   - NodeType: the type
	Type() NodeType

	// Children returns the child nodes in traversal order.
	//
	// Returns:
	//   - []Node: a copy of the child list
	Children() []Node

	// AddChild appends nodes to the child list.
	//
	// Parameters:
	//   - children: the nodes to append
	AddChild(children ...Node)

	// RemoveChild removes the direct child with the given ID.
	//
	// Parameters:
	//   - id: the child ID
	//
	// Returns:
	//   - bool: false if no direct child has that ID
	RemoveChild(id string) bool

	// Set changes one attribute of the node.
	//
	// Parameters:
	//   - attr: the attribute name
	//   - value: the new value
	//
	// Returns:
	//   - error: ErrUnknownAttribute, ErrReadOnlyAttribute, or a conversion error
	Set(attr string, value any) error

	// Get reads one attribute of the node.
	//
	// Parameters:
	//   - attr: the attribute name
	//
	// Returns:
	//   - any: the current value
	//   - error: ErrUnknownAttribute if the node type has no such attribute
	Get(attr string) (any, error)

	// visit renders the node and its subtree into the traversal.
	visit(t *traversal) error
}

// baseNode carries the identity and child list shared by every node type.
type baseNode struct {
	mu       sync.RWMutex
	id       string
	typ      NodeType
	children []Node

	// version increases on every successful Set; transform nodes key their caches on it
	version uint64
}

func (n *baseNode) ID() string {
	return n.id
}

func (n *baseNode) Type() NodeType {
	return n.typ
}

func (n *baseNode) Children() []Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return slices.Clone(n.children)
}

func (n *baseNode) AddChild(children ...Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.children = append(n.children, children...)
}

func (n *baseNode) RemoveChild(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	i := slices.IndexFunc(n.children, func(c Node) bool { return c.ID() == id })
	if i < 0 {
		return false
	}
	n.children = slices.Delete(n.children, i, i+1)
	return true
}

// touch records an attribute change. Callers hold the write lock.
func (n *baseNode) touch() {
	n.version++
}

// visitChildren visits the children in order, stopping at the first error.
func (n *baseNode) visitChildren(t *traversal) error {
	for _, c := range n.Children() {
		if err := c.visit(t); err != nil {
			return err
		}
	}
	return nil
}

func (n *baseNode) unknown(attr string) error {
	return fmt.Errorf("%s node %q: %w %q", n.typ, n.id, ErrUnknownAttribute, attr)
}

func (n *baseNode) readOnly(attr string) error {
	return fmt.Errorf("%s node %q: %q: %w", n.typ, n.id, attr, ErrReadOnlyAttribute)
}

func (n *baseNode) invalid(attr string, err error) error {
	return fmt.Errorf("%s node %q: attribute %q: %w", n.typ, n.id, attr, err)
}

// groupNode is a node with no behavior of its own: the scene root and plain grouping nodes.
type groupNode struct {
	baseNode
}

var _ Node = &groupNode{}

// NewNode creates a plain grouping node.
//
// Parameters:
//   - options: functional options to configure the node
//
// Returns:
//   - Node: the new node
func NewNode(options ...NodeBuilderOption) Node {
	n := &groupNode{}
	applyNodeOptions(&n.baseNode, NodeTypeNode, options)
	return n
}

func (n *groupNode) Set(attr string, _ any) error {
	return n.unknown(attr)
}

func (n *groupNode) Get(attr string) (any, error) {
	return nil, n.unknown(attr)
}

func (n *groupNode) visit(t *traversal) error {
	return n.visitChildren(t)
}

// find searches the subtree rooted at n depth-first for id.
func find(n Node, id string) Node {
	if n.ID() == id {
		return n
	}
	for _, c := range n.Children() {
		if found := find(c, id); found != nil {
			return found
		}
	}
	return nil
}
