package syntax

import (
	"luasema/internal/source"
	"luasema/internal/token"
)

// NodeID indexes a node in its Tree. 0 is the sentinel.
type NodeID uint32

const NoNodeID NodeID = 0

func (id NodeID) IsValid() bool { return id != NoNodeID }

// Node is one syntax element. Nodes are immutable once the tree is built.
type Node struct {
	Kind     NodeKind
	Op       token.Kind // operator of Binary/Unary, leaf token kind otherwise
	Flags    NodeFlags
	Span     source.Span
	Parent   NodeID
	Children []NodeID
	Text     string
}

// Child returns the i-th child or NoNodeID.
func (n *Node) Child(i int) NodeID {
	if n == nil || i < 0 || i >= len(n.Children) {
		return NoNodeID
	}
	return n.Children[i]
}

// Has reports whether all flags in f are set.
func (n *Node) Has(f NodeFlags) bool {
	return n != nil && n.Flags&f == f
}
