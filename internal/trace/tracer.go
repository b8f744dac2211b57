package trace

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Tracer receives events. Implementations must be safe for concurrent use:
// the loader emits from its worker goroutines.
type Tracer interface {
	Emit(ev Event)
	Level() Level
	Close() error
}

// Dumper is implemented by tracers that buffer events and can replay them.
type Dumper interface {
	Dump(l zerolog.Logger)
}

type nopTracer struct{}

func (nopTracer) Emit(Event)   {}
func (nopTracer) Level() Level { return LevelOff }
func (nopTracer) Close() error { return nil }

// Nop drops everything.
var Nop Tracer = nopTracer{}

// Config describes the tracer built by New.
type Config struct {
	Level    Level
	Mode     Mode
	Logger   zerolog.Logger // destination for ModeStream
	RingSize int            // 0 means 4096
}

// New builds the tracer for cfg. LevelOff always yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	switch cfg.Mode {
	case 0, ModeStream:
		return Log(cfg.Logger, cfg.Level), nil
	case ModeRing:
		return NewRing(cfg.RingSize, cfg.Level), nil
	case ModeBoth:
		return Tee(Log(cfg.Logger, cfg.Level), NewRing(cfg.RingSize, cfg.Level)), nil
	}
	return nil, fmt.Errorf("trace: unsupported mode %v", cfg.Mode)
}

type logTracer struct {
	log   zerolog.Logger
	level Level
}

// Log writes every event at debug level on l, tagged component=trace.
func Log(l zerolog.Logger, level Level) Tracer {
	return logTracer{log: l.With().Str("component", "trace").Logger(), level: level}
}

func (t logTracer) Emit(ev Event) {
	if t.level.ShouldEmit(ev.Scope) {
		t.log.Debug().EmbedObject(ev).Msg(ev.Name)
	}
}

func (t logTracer) Level() Level { return t.level }
func (t logTracer) Close() error { return nil }

type tee []Tracer

// Tee fans events out to all of ts. Its level is the finest among them.
func Tee(ts ...Tracer) Tracer {
	return tee(ts)
}

func (t tee) Emit(ev Event) {
	for _, tr := range t {
		tr.Emit(ev)
	}
}

func (t tee) Level() Level {
	level := LevelOff
	for _, tr := range t {
		level = max(level, tr.Level())
	}
	return level
}

func (t tee) Close() error {
	var errs []error
	for _, tr := range t {
		errs = append(errs, tr.Close())
	}
	return errors.Join(errs...)
}

// Dump replays every buffering member.
func (t tee) Dump(l zerolog.Logger) {
	for _, tr := range t {
		if d, ok := tr.(Dumper); ok {
			d.Dump(l)
		}
	}
}
