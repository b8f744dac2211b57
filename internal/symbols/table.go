package symbols

import (
	"luasema/internal/source"
	"luasema/internal/syntax"
	"luasema/internal/types"
)

// Deferred is a member assignment whose owner is only known after the whole
// document has been walked: `a.b = v`, `function a.b:c() end`.
type Deferred struct {
	Node      syntax.NodeID // IndexExpr target
	Scope     ScopeID
	Decl      DeclID // member declaration, Owner filled by the deferred pass
	Annotated bool   // carried an explicit @type / @field annotation
}

// Table is the result of one Build: scope tree, declarations and the side
// tables inference needs. It is replaced wholesale on re-analysis.
type Table struct {
	Doc    source.DocID
	Syntax *syntax.Tree
	Scopes *Scopes
	Decls  *Decls
	Root   ScopeID

	Deferred []Deferred
	// Refs maps a Name expression to the declaration it resolved to during
	// the walk. Unresolved names are globals defined elsewhere.
	Refs map[syntax.NodeID]DeclID
	// Bindings maps binding name nodes (locals, params, assignment targets,
	// table keys) to the declaration they create.
	Bindings map[syntax.NodeID]DeclID
	// Signatures holds the annotated signature of every closure.
	Signatures map[syntax.NodeID]*types.Type
	// TableTypes holds the named type a table constructor was bound to.
	TableTypes map[syntax.NodeID]*types.Type
	// SelfOwner maps a method closure to the prefix expression of its name.
	SelfOwner map[syntax.NodeID]syntax.NodeID
	// Namespace is the namespace context in effect at the end of the document.
	Namespace *types.NameScope
}

func newTable(doc source.DocID, tree *syntax.Tree) *Table {
	n := tree.Len()
	return &Table{
		Doc:        doc,
		Syntax:     tree,
		Scopes:     NewScopes(n/8 + 1),
		Decls:      NewDecls(n/4 + 1),
		Refs:       make(map[syntax.NodeID]DeclID),
		Bindings:   make(map[syntax.NodeID]DeclID),
		Signatures: make(map[syntax.NodeID]*types.Type),
		TableTypes: make(map[syntax.NodeID]*types.Type),
		SelfOwner:  make(map[syntax.NodeID]syntax.NodeID),
	}
}

// Decl returns the declaration for id or nil.
func (t *Table) Decl(id DeclID) *Decl {
	if t == nil {
		return nil
	}
	return t.Decls.Get(id)
}

// Scope returns the scope for id or nil.
func (t *Table) Scope(id ScopeID) *Scope {
	if t == nil {
		return nil
	}
	return t.Scopes.Get(id)
}

// Ref returns the cross-document reference to id.
func (t *Table) Ref(id DeclID) DeclRef {
	return DeclRef{Doc: t.Doc, ID: id}
}

// ScopeAt returns the innermost scope whose range contains pos.
func (t *Table) ScopeAt(pos uint32) ScopeID {
	cur := t.Root
	for {
		s := t.Scopes.Get(cur)
		if s == nil {
			return t.Root
		}
		next := NoScopeID
		for i := len(s.Items) - 1; i >= 0; i-- {
			it := s.Items[i]
			if !it.Scope.IsValid() {
				continue
			}
			if child := t.Scopes.Get(it.Scope); child != nil && child.contains(pos) {
				next = it.Scope
				break
			}
		}
		if !next.IsValid() {
			return cur
		}
		cur = next
	}
}

// Lookup resolves name as seen from pos inside scope. The result is the most
// recent binding visible there, or NoDeclID.
func (t *Table) Lookup(scope ScopeID, pos uint32, name string) DeclID {
	var found DeclID
	t.visit(scope, pos, func(id DeclID, d *Decl) bool {
		if d.Name == name {
			found = id
			return false
		}
		return true
	})
	return found
}

// LookupAt is Lookup from the innermost scope at pos.
func (t *Table) LookupAt(pos uint32, name string) DeclID {
	return t.Lookup(t.ScopeAt(pos), pos, name)
}

// VisibleAt lists every binding visible at pos, most-shadowing first, one
// per name.
func (t *Table) VisibleAt(pos uint32) []DeclID {
	seen := make(map[string]struct{})
	var out []DeclID
	t.visit(t.ScopeAt(pos), pos, func(id DeclID, d *Decl) bool {
		if _, ok := seen[d.Name]; ok {
			return true
		}
		seen[d.Name] = struct{}{}
		out = append(out, id)
		return true
	})
	return out
}

// visit walks upward from scope yielding visible declarations nearest-first
// until fn returns false.
func (t *Table) visit(scope ScopeID, pos uint32, fn func(DeclID, *Decl) bool) {
	// Repeat descends into its body only when entered from outside the body.
	from := NoScopeID
	for id := scope; id.IsValid(); {
		s := t.Scopes.Get(id)
		if s == nil {
			return
		}
		switch {
		case s.Kind == ScopeRepeat && s.Body.IsValid() && from != s.Body && !t.inside(from, s.Body):
			if body := t.Scopes.Get(s.Body); body != nil && pos >= body.Span.End {
				tail := t.tail(s.Body)
				if !t.visitChain(tail, s.Body, pos, fn) {
					return
				}
			}
		case s.hides(pos):
			from, id = id, s.Parent
			continue
		}
		for i := len(s.Items) - 1; i >= 0; i-- {
			it := s.Items[i]
			if !it.Decl.IsValid() || it.Pos >= pos {
				continue
			}
			if !fn(it.Decl, t.Decls.Get(it.Decl)) {
				return
			}
		}
		from, id = id, s.Parent
	}
}

// visitChain scans scopes from tail up to and including stop.
func (t *Table) visitChain(tail, stop ScopeID, pos uint32, fn func(DeclID, *Decl) bool) bool {
	for id := tail; id.IsValid(); {
		s := t.Scopes.Get(id)
		for i := len(s.Items) - 1; i >= 0; i-- {
			it := s.Items[i]
			if !it.Decl.IsValid() || it.Pos >= pos {
				continue
			}
			if !fn(it.Decl, t.Decls.Get(it.Decl)) {
				return false
			}
		}
		if id == stop {
			return true
		}
		id = s.Parent
	}
	return true
}

// tail follows the chain of local-declaration scopes opened at the end of a
// block body.
func (t *Table) tail(body ScopeID) ScopeID {
	cur := body
	for {
		s := t.Scopes.Get(cur)
		if s == nil || len(s.Items) == 0 {
			return cur
		}
		last := s.Items[len(s.Items)-1]
		if !last.Scope.IsValid() || t.Scopes.Get(last.Scope).Kind != ScopeLocalDecl {
			return cur
		}
		cur = last.Scope
	}
}

// inside reports whether scope id is nested in ancestor.
func (t *Table) inside(id, ancestor ScopeID) bool {
	for id.IsValid() {
		if id == ancestor {
			return true
		}
		s := t.Scopes.Get(id)
		if s == nil {
			return false
		}
		id = s.Parent
	}
	return false
}

// DeclAt returns the declaration whose name is written at pos.
func (t *Table) DeclAt(pos uint32) DeclID {
	for _, id := range t.Decls.IDs() {
		d := t.Decls.Get(id)
		if d.Span.Doc == t.Doc && pos >= d.Span.Start && pos <= d.Span.End && !d.Span.Empty() {
			return id
		}
	}
	return NoDeclID
}

// RefAt returns the declaration referenced or bound by the name node at pos.
func (t *Table) RefAt(pos uint32) DeclID {
	node := t.Syntax.NodeAt(pos)
	if id, ok := t.Refs[node]; ok {
		return id
	}
	if id, ok := t.Bindings[node]; ok {
		return id
	}
	return NoDeclID
}

// Chain returns id followed by its shadow chain. Prev links always point to
// earlier declarations so the walk terminates.
func (t *Table) Chain(id DeclID) []DeclID {
	var out []DeclID
	for id.IsValid() && len(out) <= t.Decls.Len() {
		out = append(out, id)
		id = t.Decls.Get(id).Prev
	}
	return out
}
