package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"luasema/internal/trace"
)

// cleanup closes the tracer installed by setupTracing.
var cleanup func()

// setupTracing reads the trace flags, installs the tracer into the command
// context and registers cleanup. An empty --trace-level defers to the
// configuration file, which is applied later by loadWorkspace.
func setupTracing(cmd *cobra.Command) error {
	root := cmd.Root()

	levelStr, err := root.PersistentFlags().GetString("trace-level")
	if err != nil {
		return fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return fmt.Errorf("invalid trace level: %w", err)
	}
	return installTracer(cmd, level)
}

func installTracer(cmd *cobra.Command, level trace.Level) error {
	root := cmd.Root()
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return nil
	}

	modeStr, err := root.PersistentFlags().GetString("trace-mode")
	if err != nil {
		return fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return fmt.Errorf("invalid trace mode: %w", err)
	}
	ringSize, err := root.PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	tracer, err := trace.New(trace.Config{
		Level:    level,
		Mode:     mode,
		Logger:   logger,
		RingSize: ringSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	if cleanup != nil {
		cleanup()
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	cleanup = func() {
		// кольцевой буфер выводим только в конце
		if d, ok := tracer.(trace.Dumper); ok {
			d.Dump(logger)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return nil
}
