package syntax

import (
	"luasema/internal/source"
)

// Error is a recoverable parse problem.
type Error struct {
	Span source.Span
	Msg  string
}

// Tree is the immutable syntax tree of one document.
type Tree struct {
	Doc      *source.Document
	Root     NodeID
	Errors   []Error
	nodes    *Arena[Node]
	comments map[NodeID]*Comment
}

// Node returns the node for id or nil.
func (t *Tree) Node(id NodeID) *Node {
	if t == nil {
		return nil
	}
	return t.nodes.Get(uint32(id))
}

// Kind returns the kind of id, NodeInvalid for the sentinel.
func (t *Tree) Kind(id NodeID) NodeKind {
	if n := t.Node(id); n != nil {
		return n.Kind
	}
	return NodeInvalid
}

// Children returns the ordered children of id.
func (t *Tree) Children(id NodeID) []NodeID {
	if n := t.Node(id); n != nil {
		return n.Children
	}
	return nil
}

// Child returns the i-th child of id.
func (t *Tree) Child(id NodeID, i int) NodeID {
	return t.Node(id).Child(i)
}

// Parent returns the parent of id.
func (t *Tree) Parent(id NodeID) NodeID {
	if n := t.Node(id); n != nil {
		return n.Parent
	}
	return NoNodeID
}

// Span returns the byte range of id.
func (t *Tree) Span(id NodeID) source.Span {
	if n := t.Node(id); n != nil {
		return n.Span
	}
	return source.Span{}
}

// Text returns the identifier/literal text carried by id.
func (t *Tree) Text(id NodeID) string {
	if n := t.Node(id); n != nil {
		return n.Text
	}
	return ""
}

// Comments returns the doc comment attached to a statement, table field or
// detached doc statement.
func (t *Tree) Comments(id NodeID) *Comment {
	if t == nil {
		return nil
	}
	return t.comments[id]
}

// Len reports the number of nodes.
func (t *Tree) Len() uint32 {
	return t.nodes.Len()
}

// Walk visits id and its descendants in source order. Returning false from
// fn skips the children of that node.
func (t *Tree) Walk(id NodeID, fn func(NodeID, *Node) bool) {
	n := t.Node(id)
	if n == nil {
		return
	}
	if !fn(id, n) {
		return
	}
	for _, c := range n.Children {
		t.Walk(c, fn)
	}
}

// NodeAt returns the innermost node whose span contains off. Spans ending at
// off also match so a cursor right after an identifier selects it.
func (t *Tree) NodeAt(off uint32) NodeID {
	cur := t.Root
	for {
		n := t.Node(cur)
		if n == nil {
			return NoNodeID
		}
		next := NoNodeID
		for _, c := range n.Children {
			sp := t.Span(c)
			if off >= sp.Start && (off < sp.End || (off == sp.End && !sp.Empty())) {
				next = c
				if off < sp.End {
					break
				}
			}
		}
		if !next.IsValid() {
			return cur
		}
		cur = next
	}
}

// EnclosingStat returns the nearest statement ancestor of id (id included).
func (t *Tree) EnclosingStat(id NodeID) NodeID {
	for id.IsValid() {
		if t.Kind(id).IsStat() {
			return id
		}
		id = t.Parent(id)
	}
	return NoNodeID
}

// Builder assembles a Tree bottom-up. Not safe for concurrent use.
type Builder struct {
	tree *Tree
}

// NewBuilder starts a tree for doc.
func NewBuilder(doc *source.Document, capHint uint) *Builder {
	return &Builder{tree: &Tree{
		Doc:      doc,
		nodes:    NewArena[Node](capHint),
		comments: make(map[NodeID]*Comment),
	}}
}

// New allocates a node and links children to it.
func (b *Builder) New(kind NodeKind, span source.Span, children ...NodeID) NodeID {
	id := NodeID(b.tree.nodes.Allocate(Node{Kind: kind, Span: span}))
	b.Attach(id, children...)
	return id
}

// Attach appends children to parent, skipping sentinels.
func (b *Builder) Attach(parent NodeID, children ...NodeID) {
	p := b.tree.Node(parent)
	for _, c := range children {
		if !c.IsValid() {
			continue
		}
		p.Children = append(p.Children, c)
		b.tree.Node(c).Parent = parent
	}
}

// Node gives mutable access while building.
func (b *Builder) Node(id NodeID) *Node {
	return b.tree.Node(id)
}

// SetComment attaches a comment group to id.
func (b *Builder) SetComment(id NodeID, c *Comment) {
	if c != nil && id.IsValid() {
		b.tree.comments[id] = c
	}
}

// Error records a parse error.
func (b *Builder) Error(span source.Span, msg string) {
	b.tree.Errors = append(b.tree.Errors, Error{Span: span, Msg: msg})
}

// Finish seals the tree with root.
func (b *Builder) Finish(root NodeID) *Tree {
	b.tree.Root = root
	t := b.tree
	b.tree = nil
	return t
}
