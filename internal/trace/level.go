package trace

import (
	"fmt"
	"strings"
)

// Level controls how fine-grained the recorded events are.
type Level uint8

const (
	LevelOff    Level = iota
	LevelPhase        // load, snapshot and the passes inside them
	LevelDetail       // plus one span per document
	LevelDebug        // plus queries
)

var levelNames = [...]string{"off", "phase", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts the names printed by Level.String. The empty string
// means off so an unset flag can fall through to the config file.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LevelOff, nil
	}
	for l := LevelOff; l <= LevelDebug; l++ {
		if l.String() == s {
			return l, nil
		}
	}
	return LevelOff, fmt.Errorf("unknown trace level %q (want %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope pass the level filter.
func (l Level) ShouldEmit(scope Scope) bool {
	// каждый следующий уровень открывает ещё одну область
	return l != LevelOff && scope != 0 && uint8(scope) <= uint8(l)+1
}

// Scope is the granularity of an event; coarser scopes have lower values.
type Scope uint8

const (
	ScopeWorkspace Scope = iota + 1
	ScopePass
	ScopeDocument
	ScopeQuery
)

var scopeNames = [...]string{"", "workspace", "pass", "document", "query"}

func (s Scope) String() string {
	if s != 0 && int(s) < len(scopeNames) {
		return scopeNames[s]
	}
	return "unknown"
}

// Mode selects where events go.
type Mode uint8

const (
	ModeStream Mode = iota + 1 // straight to the logger
	ModeRing                   // last N events kept in memory
	ModeBoth
)

var modeNames = [...]string{"", "stream", "ring", "both"}

func (m Mode) String() string {
	if m != 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m := ModeStream; m <= ModeBoth; m++ {
		if m.String() == s {
			return m, nil
		}
	}
	return ModeStream, fmt.Errorf("unknown trace mode %q (want stream|ring|both)", s)
}
