package trace

import (
	"sync"

	"github.com/rs/zerolog"
)

// Ring keeps the most recent events in a fixed-size buffer.
type Ring struct {
	mu    sync.Mutex
	buf   []Event
	total int // events ever stored; buf[total%len(buf)] is the next slot
	level Level
}

// NewRing returns a ring holding up to size events (4096 when size <= 0).
func NewRing(size int, level Level) *Ring {
	if size <= 0 {
		size = 4096
	}
	return &Ring{buf: make([]Event, size), level: level}
}

func (r *Ring) Emit(ev Event) {
	if !r.level.ShouldEmit(ev.Scope) {
		return
	}
	r.mu.Lock()
	r.buf[r.total%len(r.buf)] = ev
	r.total++
	r.mu.Unlock()
}

// Events returns the buffered events oldest first.
func (r *Ring) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.total <= len(r.buf) {
		return append([]Event(nil), r.buf[:r.total]...)
	}
	cut := r.total % len(r.buf)
	out := make([]Event, 0, len(r.buf))
	out = append(out, r.buf[cut:]...)
	return append(out, r.buf[:cut]...)
}

// Dropped is the number of events overwritten so far.
func (r *Ring) Dropped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return max(0, r.total-len(r.buf))
}

// Dump writes the buffered events at info level.
func (r *Ring) Dump(l zerolog.Logger) {
	if n := r.Dropped(); n > 0 {
		l.Info().Str("component", "trace").Int("dropped", n).Msg("ring overflow")
	}
	for _, ev := range r.Events() {
		l.Info().Str("component", "trace").EmbedObject(ev).Msg(ev.Name)
	}
}

func (r *Ring) Level() Level { return r.level }
func (r *Ring) Close() error { return nil }
