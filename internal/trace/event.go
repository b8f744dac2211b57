package trace

import (
	"time"

	"github.com/rs/zerolog"
)

// Kind tells span boundaries apart from instant events.
type Kind uint8

const (
	KindBegin Kind = iota + 1
	KindEnd
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindBegin:
		return "begin"
	case KindEnd:
		return "end"
	case KindPoint:
		return "point"
	}
	return "unknown"
}

// Field is a key/value annotation attached to a span end.
type Field struct {
	Key   string
	Value string
}

// Event is a single record. IDs come from one process-wide counter, so they
// also order events.
type Event struct {
	At      time.Time
	ID      uint64
	Parent  uint64 // 0 for roots
	Kind    Kind
	Scope   Scope
	Name    string // "load", "commit", "doc:init.lua"
	Detail  string
	Elapsed time.Duration // KindEnd only
	Fields  []Field
}

// MarshalZerologObject lets events be logged with zerolog's Object/EmbedObject.
func (ev Event) MarshalZerologObject(e *zerolog.Event) {
	e.Uint64("id", ev.ID).
		Str("kind", ev.Kind.String()).
		Str("scope", ev.Scope.String())
	if ev.Parent != 0 {
		e.Uint64("parent", ev.Parent)
	}
	if ev.Detail != "" {
		e.Str("detail", ev.Detail)
	}
	if ev.Kind == KindEnd {
		e.Dur("elapsed", ev.Elapsed)
	}
	for _, f := range ev.Fields {
		e.Str(f.Key, f.Value)
	}
	e.Time("at", ev.At)
}
