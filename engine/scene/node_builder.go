package scene

import "github.com/google/uuid"

// NodeBuilderOption configures the identity and children of a node during construction.
type NodeBuilderOption func(n *baseNode)

// WithID sets the node identifier. Nodes created without one receive a random UUID.
//
// Parameters:
//   - id: the node ID
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithID(id string) NodeBuilderOption {
	return func(n *baseNode) {
		n.id = id
	}
}

// WithChildren sets the initial children of the node.
//
// Parameters:
//   - children: the child nodes in traversal order
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithChildren(children ...Node) NodeBuilderOption {
	return func(n *baseNode) {
		n.children = append(n.children, children...)
	}
}

func applyNodeOptions(n *baseNode, typ NodeType, options []NodeBuilderOption) {
	n.typ = typ
	for _, opt := range options {
		opt(n)
	}
	if n.id == "" {
		n.id = uuid.NewString()
	}
}
