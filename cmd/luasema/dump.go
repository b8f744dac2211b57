package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"luasema/internal/workspace"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] [directory]",
	Short: "Write a snapshot of the index (types, members, globals)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().String("format", "json", "snapshot encoding (json|msgpack)")
	dumpCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
}

func runDump(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	f := workspace.Format(strings.ToLower(format))
	if f != workspace.FormatJSON && f != workspace.FormatMsgpack {
		return fmt.Errorf("unsupported format %q (must be json or msgpack)", format)
	}
	if output == "" && f == workspace.FormatMsgpack && isTerminal(os.Stdout) {
		return fmt.Errorf("refusing to write msgpack to a terminal; use --output")
	}

	s, err := loadWorkspace(cmd, dirArg(args))
	if err != nil {
		return err
	}
	defer s.finish(cmd)

	var snap workspace.Snapshot
	_ = s.timer.Measure("snapshot", func() (string, error) {
		snap = s.ws.Snapshot()
		return fmt.Sprintf("%d types", len(snap.Types)), nil
	})

	if output == "" {
		return snap.Encode(cmd.OutOrStdout(), f)
	}
	file, err := os.Create(output)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(file)
	if err := snap.Encode(w, f); err != nil {
		file.Close()
		return fmt.Errorf("%s: %w", output, err)
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("%s: %w", output, err)
	}
	return file.Close()
}
