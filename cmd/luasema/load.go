package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"luasema/internal/config"
	"luasema/internal/observ"
	"luasema/internal/trace"
	"luasema/internal/ui"
	"luasema/internal/workspace"
)

// session is a loaded workspace together with what produced it.
type session struct {
	ws     *workspace.Workspace
	cfg    config.Config
	result workspace.LoadResult
	timer  *observ.Timer
}

// loadConfig resolves --config, or discovers the configuration upward from dir.
func loadConfig(cmd *cobra.Command, dir string) (config.Config, error) {
	flags := cmd.Root().PersistentFlags()
	path, err := flags.GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	var cfg config.Config
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.Discover(dir)
	}
	if err != nil {
		return config.Config{}, err
	}
	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if jobs > 0 {
		cfg.Jobs = jobs
	}

	// уровень трассировки из конфига, если флаг не задан
	if lvl, _ := flags.GetString("trace-level"); lvl == "" {
		if err := installTracer(cmd, cfg.TraceLevel()); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

// loadWorkspace discovers the configuration for dir and indexes every
// matching file.
func loadWorkspace(cmd *cobra.Command, dir string) (*session, error) {
	s := &session{timer: observ.NewTimer()}

	err := s.timer.Measure("config", func() (string, error) {
		cfg, err := loadConfig(cmd, dir)
		s.cfg = cfg
		return cfg.Path, err
	})
	if err != nil {
		return nil, err
	}
	s.ws = workspace.New(workspace.WithConfig(s.cfg), workspace.WithLogger(logger))

	withUI, err := useProgressUI(cmd)
	if err != nil {
		return nil, err
	}

	err = s.timer.Measure("load", func() (string, error) {
		var err error
		if withUI {
			s.result, err = runLoadWithUI(cmd.Context(), s.ws, s.cfg)
		} else {
			s.result, err = s.ws.LoadDir(cmd.Context(), s.cfg, nil)
		}
		return strconv.Itoa(s.result.Committed) + " files", err
	})
	if err != nil {
		return nil, err
	}
	for path, ferr := range s.result.Failed {
		logger.Warn().Err(ferr).Str("path", s.cfg.Rel(path)).Msg("file not indexed")
	}
	return s, nil
}

// finish prints the phase timings when --timings is set.
func (s *session) finish(cmd *cobra.Command) {
	s.timer.Log(logger)
	if on, _ := cmd.Root().PersistentFlags().GetBool("timings"); on {
		fmt.Fprint(cmd.ErrOrStderr(), s.timer.Summary())
	}
	trace.Point(trace.FromContext(cmd.Context()), trace.ScopeWorkspace, "done", "", 0)
}

func runLoadWithUI(ctx context.Context, ws *workspace.Workspace, cfg config.Config) (workspace.LoadResult, error) {
	files, err := cfg.Files()
	if err != nil {
		return workspace.LoadResult{}, err
	}
	type outcome struct {
		result workspace.LoadResult
		err    error
	}
	events := make(chan workspace.Event, 256)
	outcomeCh := make(chan outcome, 1)

	go func() {
		res, err := ws.LoadDir(ctx, cfg, workspace.ChannelSink{Ch: events})
		outcomeCh <- outcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("indexing "+cfg.Root, files, cfg.Rel, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	// дочитываем события, если UI вышел раньше
	for range events {
	}
	out := <-outcomeCh
	if uiErr != nil {
		return out.result, uiErr
	}
	return out.result, out.err
}
