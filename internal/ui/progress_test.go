package ui

import (
	"errors"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/require"

	"luasema/internal/workspace"
)

func feed(m tea.Model, events ...workspace.Event) *loadModel {
	for _, ev := range events {
		m, _ = m.Update(loadEvent(ev))
	}
	return m.(*loadModel)
}

func TestLoadModelCountsPhases(t *testing.T) {
	files := []string{"/w/a.lua", "/w/b.lua", "/w/c.lua"}
	m := NewProgressModel("indexing /w", files, filepath.Base, make(chan workspace.Event))

	lm := feed(m,
		workspace.Event{File: "/w/a.lua", Stage: workspace.StageParse, Status: workspace.StatusWorking},
		workspace.Event{File: "/w/b.lua", Stage: workspace.StageParse, Status: workspace.StatusWorking},
		workspace.Event{File: "/w/a.lua", Stage: workspace.StageParse, Status: workspace.StatusDone},
		workspace.Event{File: "/w/c.lua", Stage: workspace.StageParse, Status: workspace.StatusError, Err: errors.New("denied")},
	)
	require.Equal(t, 1, lm.parsed)
	require.Equal(t, []string{"b.lua"}, lm.active)
	require.Len(t, lm.failures, 1)

	view := lm.View()
	require.Contains(t, view, "parsed 1/3")
	require.Contains(t, view, "b.lua")
	require.Contains(t, view, "c.lua: denied")

	lm = feed(lm,
		workspace.Event{File: "/w/b.lua", Stage: workspace.StageParse, Status: workspace.StatusDone},
		workspace.Event{File: "/w/a.lua", Stage: workspace.StageCommit, Status: workspace.StatusDone},
		workspace.Event{File: "/w/b.lua", Stage: workspace.StageCommit, Status: workspace.StatusDone},
	)
	require.Equal(t, 2, lm.committed)
	require.Empty(t, lm.active)
	require.InDelta(t, 1.0, lm.fraction(), 1e-9)

	next, cmd := lm.Update(loadClosed{})
	require.NotNil(t, cmd)
	require.True(t, next.(*loadModel).finished)
}

func TestLoadModelEmpty(t *testing.T) {
	m := NewProgressModel("nothing", nil, nil, make(chan workspace.Event))
	require.Empty(t, m.View())
	require.InDelta(t, 1.0, m.(*loadModel).fraction(), 1e-9)
}

func TestFit(t *testing.T) {
	require.Equal(t, "short", fit("short", 10))
	require.LessOrEqual(t, runewidth.StringWidth(fit("scripts/long_name.lua", 6)), 6)
}
