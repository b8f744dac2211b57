package trace

import (
	"strconv"
	"sync/atomic"
	"time"
)

var lastID atomic.Uint64

func nextID() uint64 { return lastID.Add(1) }

// Span measures one operation. The zero span (and a nil *Span) is inert, so
// callers never check whether tracing is on.
type Span struct {
	t      Tracer
	id     uint64
	parent uint64
	scope  Scope
	name   string
	start  time.Time
	fields []Field
}

// Begin opens a span under parent (0 for a root) if t accepts scope.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Level().ShouldEmit(scope) {
		return &Span{}
	}
	s := &Span{t: t, id: nextID(), parent: parent, scope: scope, name: name, start: time.Now()}
	t.Emit(Event{At: s.start, ID: s.id, Parent: parent, Kind: KindBegin, Scope: scope, Name: name})
	return s
}

// Str annotates the end event.
func (s *Span) Str(key, value string) *Span {
	if s != nil && s.t != nil {
		s.fields = append(s.fields, Field{Key: key, Value: value})
	}
	return s
}

// Int is Str for integers.
func (s *Span) Int(key string, value int) *Span {
	return s.Str(key, strconv.Itoa(value))
}

// End closes the span and returns its duration; inert spans return 0.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.t == nil {
		return 0
	}
	now := time.Now()
	elapsed := now.Sub(s.start)
	s.t.Emit(Event{
		At:      now,
		ID:      s.id,
		Parent:  s.parent,
		Kind:    KindEnd,
		Scope:   s.scope,
		Name:    s.name,
		Detail:  detail,
		Elapsed: elapsed,
		Fields:  s.fields,
	})
	return elapsed
}

// ID is the span id, 0 for inert spans.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point emits an instant event.
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	if t == nil || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(Event{At: time.Now(), ID: nextID(), Parent: parent, Kind: KindPoint, Scope: scope, Name: name, Detail: detail})
}
