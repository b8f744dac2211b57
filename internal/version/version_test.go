package version

import (
	"runtime/debug"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

func TestGetPrefersLdflags(t *testing.T) {
	saved := [...]string{Version, GitCommit, BuildDate}
	defer func() { Version, GitCommit, BuildDate = saved[0], saved[1], saved[2] }()

	Version, GitCommit, BuildDate = " 1.2.3 ", "abc123", "2026-01-02"
	info := Get()
	require.Equal(t, "1.2.3", info.Version)
	require.Equal(t, "abc123", info.Commit)
	require.Equal(t, "2026-01-02", info.Date)

	Version = ""
	require.Equal(t, "dev", Get().Version)
}

func TestFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		GoVersion: "go1.25.1",
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "deadbeef"},
			{Key: "vcs.time", Value: "2026-03-04T05:06:07Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}
	info := Info{Commit: "pinned"}
	fromBuildInfo(&info, bi)
	require.Equal(t, Info{
		Commit:    "pinned",
		Date:      "2026-03-04T05:06:07Z",
		GoVersion: "go1.25.1",
		Modified:  true,
	}, info)
}

func TestPretty(t *testing.T) {
	saved := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = saved }()

	for _, v := range []string{"0.1.0-dev", "1.2.3", "1.2.3-rc.1+build.123", "dev", "1.2"} {
		require.Equal(t, v, Pretty(v))
	}
}

func TestPrettyColorsComponents(t *testing.T) {
	saved := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = saved }()

	got := Pretty("1.2.3-dev")
	require.NotEqual(t, "1.2.3-dev", got)
	require.Contains(t, got, "\x1b[")
	require.Regexp(t, `-dev$`, got)
}
