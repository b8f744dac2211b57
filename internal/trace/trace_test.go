package trace

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLevelFiltersScopes(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeWorkspace, false},
		{LevelPhase, ScopeWorkspace, true},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeDocument, false},
		{LevelDetail, ScopeDocument, true},
		{LevelDetail, ScopeQuery, false},
		{LevelDebug, ScopeQuery, true},
		{LevelDebug, 0, false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.level.ShouldEmit(tt.scope), "%s/%s", tt.level, tt.scope)
	}
}

func TestParseNames(t *testing.T) {
	for l := LevelOff; l <= LevelDebug; l++ {
		got, err := ParseLevel(l.String())
		require.NoError(t, err)
		require.Equal(t, l, got)
	}
	got, err := ParseLevel(" Detail ")
	require.NoError(t, err)
	require.Equal(t, LevelDetail, got)
	got, err = ParseLevel("")
	require.NoError(t, err)
	require.Equal(t, LevelOff, got)
	_, err = ParseLevel("verbose")
	require.Error(t, err)

	m, err := ParseMode("RING")
	require.NoError(t, err)
	require.Equal(t, ModeRing, m)
	_, err = ParseMode("file")
	require.Error(t, err)
}

func TestRingKeepsLatestEvents(t *testing.T) {
	ring := NewRing(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(ring, ScopePass, name, "", 0)
	}
	events := ring.Events()
	require.Len(t, events, 2)
	require.Equal(t, "b", events[0].Name)
	require.Equal(t, "c", events[1].Name)
	require.Equal(t, 1, ring.Dropped())

	var buf bytes.Buffer
	ring.Dump(zerolog.New(&buf))
	require.Contains(t, buf.String(), `"dropped":1`)
	require.Contains(t, buf.String(), `"message":"c"`)
}

func TestLogTracerWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeStream, Logger: zerolog.New(&buf).Level(zerolog.DebugLevel)})
	require.NoError(t, err)

	ctx := WithTracer(context.Background(), tr)
	span := Begin(FromContext(ctx), ScopePass, "commit", 0).Int("docs", 3)
	Begin(FromContext(ctx), ScopeDocument, "doc:a.lua", span.ID()).End("")
	span.End("ok")

	out := buf.String()
	require.Equal(t, 2, bytes.Count(buf.Bytes(), []byte(`"message":"commit"`)), out)
	require.NotContains(t, out, "doc:a.lua")
	require.Contains(t, out, `"docs":"3"`)
	require.Contains(t, out, `"detail":"ok"`)
}

func TestBothModeDumpsRing(t *testing.T) {
	var stream, dump bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Logger: zerolog.New(&stream), RingSize: 8})
	require.NoError(t, err)
	require.Equal(t, LevelPhase, tr.Level())

	Point(tr, ScopeWorkspace, "done", "", 0)
	d, ok := tr.(Dumper)
	require.True(t, ok)
	d.Dump(zerolog.New(&dump))
	require.Contains(t, stream.String(), `"message":"done"`)
	require.Contains(t, dump.String(), `"message":"done"`)
	require.NoError(t, tr.Close())
}

func TestDisabledTracerIsInert(t *testing.T) {
	tr, err := New(Config{Level: LevelOff, Mode: ModeRing})
	require.NoError(t, err)
	require.Equal(t, Nop, tr)
	require.Zero(t, Begin(tr, ScopeWorkspace, "load", 0).Str("k", "v").End(""))
	require.Equal(t, Nop, FromContext(context.Background()))

	var nilSpan *Span
	require.Zero(t, nilSpan.ID())
	require.Zero(t, nilSpan.End(""))
}
