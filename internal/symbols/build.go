package symbols

import (
	"slices"

	"github.com/rs/zerolog"

	"luasema/internal/source"
	"luasema/internal/syntax"
	"luasema/internal/types"
)

// Options configures Build.
type Options struct {
	// Sink receives globals, type definitions and members. nil discards them.
	Sink Sink
	// Namespace is the namespace in effect before any @namespace tag.
	Namespace string
	Logger    zerolog.Logger
}

// builder drives scope management during the single structural walk.
type builder struct {
	tree  *syntax.Tree
	out   *Table
	sink  Sink
	log   zerolog.Logger
	stack []ScopeID
	ns    *types.NameScope
	// generic parameters of the function currently being walked
	generics []string
}

// Build walks tree once and produces its scope tree, declarations and the
// deferred member attachments. Facts for the workspace go to opts.Sink.
func Build(tree *syntax.Tree, doc source.DocID, opts Options) *Table {
	b := &builder{
		tree: tree,
		out:  newTable(doc, tree),
		sink: opts.Sink,
		log:  opts.Logger,
		ns:   &types.NameScope{Namespace: opts.Namespace},
	}
	if b.sink == nil {
		b.sink = Discard{}
	}

	chunk := tree.Node(tree.Root)
	span := tree.Span(tree.Root)
	root := b.enter(ScopePlain, tree.Root, span)
	b.out.Root = root
	if chunk != nil {
		b.walkBlock(chunk.Child(0))
	}
	b.leave(root)
	b.out.Namespace = b.ns
	return b.out
}

func (b *builder) current() ScopeID {
	if len(b.stack) == 0 {
		return NoScopeID
	}
	return b.stack[len(b.stack)-1]
}

// enter creates a child scope and pushes it onto the stack.
func (b *builder) enter(kind ScopeKind, node syntax.NodeID, span source.Span) ScopeID {
	id := b.out.Scopes.New(kind, b.current(), node, span)
	b.stack = append(b.stack, id)
	return id
}

// leave pops the current scope, validating against the expected one. In debug
// builds a mismatch panics; release builds log and recover.
func (b *builder) leave(expected ScopeID) {
	if len(b.stack) == 0 {
		return
	}
	top := b.stack[len(b.stack)-1]
	if expected.IsValid() && top != expected {
		debugScopeMismatch(expected, top)
		b.log.Warn().Uint32("expected", uint32(expected)).Uint32("actual", uint32(top)).Msg("scope mismatch")
		// отматываем до ожидаемого, если он есть в стеке
		for i := len(b.stack) - 1; i >= 0; i-- {
			if b.stack[i] == expected {
				b.stack = b.stack[:i]
				return
			}
		}
	}
	b.stack = b.stack[:len(b.stack)-1]
}

// leaveTo pops every scope above and including mark.
func (b *builder) leaveTo(mark int) {
	for len(b.stack) > mark {
		b.leave(b.current())
	}
}

// declare allocates d and appends it to scope at pos.
func (b *builder) declare(scope ScopeID, pos uint32, d Decl) DeclID {
	d.Scope = scope
	id := b.out.Decls.New(d)
	if s := b.out.Scopes.Get(scope); s != nil {
		s.Items = append(s.Items, Item{Decl: id, Pos: pos})
	}
	if d.Node.IsValid() {
		b.out.Bindings[d.Node] = id
	}
	return id
}

// member allocates a declaration that lives on an owner, not in a scope.
func (b *builder) member(d Decl) DeclID {
	d.Scope = b.current()
	id := b.out.Decls.New(d)
	if d.Node.IsValid() {
		b.out.Bindings[d.Node] = id
	}
	return id
}

func (b *builder) decl(id DeclID) *Decl {
	return b.out.Decls.Get(id)
}

func (b *builder) lookup(pos uint32, name string) DeclID {
	return b.out.Lookup(b.current(), pos, name)
}

func (b *builder) span(id syntax.NodeID) source.Span {
	return b.tree.Span(id)
}

// scoped applies the current namespace context and generic parameters.
func (b *builder) scoped(t *types.Type, generics []string) *types.Type {
	if t == nil {
		return nil
	}
	return types.WithScope(t, b.ns, slices.Concat(generics, b.generics))
}
