package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"luasema/internal/source"
	"luasema/internal/syntax"
)

// ScopeKind controls how an upward name search crosses the scope.
type ScopeKind uint8

const (
	ScopeInvalid ScopeKind = iota
	// ScopePlain: chunk, block and function bodies.
	ScopePlain
	// ScopeLocalDecl is opened by a `local` statement and runs to the end of
	// the enclosing block. Positions inside Hidden do not see its bindings.
	ScopeLocalDecl
	// ScopeRepeat covers `repeat ... until cond`; cond sees the body.
	ScopeRepeat
	// ScopeForRange holds loop variables; the loop header expressions
	// (Hidden) do not see them.
	ScopeForRange
)

func (k ScopeKind) String() string {
	switch k {
	case ScopePlain:
		return "plain"
	case ScopeLocalDecl:
		return "local"
	case ScopeRepeat:
		return "repeat"
	case ScopeForRange:
		return "for"
	default:
		return "invalid"
	}
}

// Item is one ordered child of a scope: a nested scope or a declaration.
type Item struct {
	Scope ScopeID
	Decl  DeclID
	Pos   uint32 // visible to positions after Pos
}

// Scope models a lexical region.
type Scope struct {
	Kind   ScopeKind
	Parent ScopeID
	Node   syntax.NodeID
	Span   source.Span
	Hidden source.Span
	Body   ScopeID // ScopeRepeat: the loop body
	Items  []Item
}

// hides reports whether pos must not see the scope's own bindings.
func (s *Scope) hides(pos uint32) bool {
	switch s.Kind {
	case ScopeLocalDecl, ScopeForRange:
		return !s.Hidden.Empty() && pos >= s.Hidden.Start && pos < s.Hidden.End
	default:
		return false
	}
}

// contains включает End: курсор сразу за последним токеном блока ещё видит его локальные.
func (s *Scope) contains(pos uint32) bool {
	return pos >= s.Span.Start && pos <= s.Span.End
}

// Scopes stores all allocated scopes in a compact slice-based arena.
type Scopes struct {
	data []Scope
}

// NewScopes creates an arena with optional capacity hint.
func NewScopes(capacity uint32) *Scopes {
	if capacity == 0 {
		capacity = 32
	}
	return &Scopes{
		data: make([]Scope, 1, capacity+1), // index 0 reserved for NoScopeID
	}
}

// New allocates a new scope, links it into its parent and returns its ID.
func (s *Scopes) New(kind ScopeKind, parent ScopeID, node syntax.NodeID, span source.Span) ScopeID {
	value, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Errorf("scopes arena overflow: %w", err))
	}
	id := ScopeID(value)
	s.data = append(s.data, Scope{
		Kind:   kind,
		Parent: parent,
		Node:   node,
		Span:   span,
	})
	if p := s.Get(parent); p != nil {
		p.Items = append(p.Items, Item{Scope: id, Pos: span.Start})
	}
	return id
}

// Get returns the scope pointer or nil if ID is invalid.
func (s *Scopes) Get(id ScopeID) *Scope {
	if !id.IsValid() || int(id) >= len(s.data) {
		return nil
	}
	return &s.data[id]
}

// Len reports total number of scopes excluding the sentinel.
func (s *Scopes) Len() int { return len(s.data) - 1 }

// Decls stores declarations in a compact arena.
type Decls struct {
	data []Decl
}

// NewDecls creates a declaration arena with optional capacity hint.
func NewDecls(capacity uint32) *Decls {
	if capacity == 0 {
		capacity = 64
	}
	return &Decls{
		data: make([]Decl, 1, capacity+1), // index 0 reserved for NoDeclID
	}
}

// New allocates a declaration in the arena and returns its ID.
func (d *Decls) New(decl Decl) DeclID {
	value, err := safecast.Conv[uint32](len(d.data))
	if err != nil {
		panic(fmt.Errorf("decls arena overflow: %w", err))
	}
	d.data = append(d.data, decl)
	return DeclID(value)
}

// Get returns a declaration pointer or nil for invalid ID.
func (d *Decls) Get(id DeclID) *Decl {
	if !id.IsValid() || int(id) >= len(d.data) {
		return nil
	}
	return &d.data[id]
}

// Len reports number of stored declarations excluding sentinel.
func (d *Decls) Len() int { return len(d.data) - 1 }

// IDs lists all declaration ids in allocation order.
func (d *Decls) IDs() []DeclID {
	out := make([]DeclID, 0, d.Len())
	for i := 1; i < len(d.data); i++ {
		out = append(out, DeclID(i)) // #nosec G115 -- bounded by New
	}
	return out
}
