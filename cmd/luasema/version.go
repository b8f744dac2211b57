package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"luasema/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show luasema build metadata",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	versionCmd.Flags().Bool("full", false, "include commit, build date and toolchain")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	format, err := outputFormat(cmd, "pretty", "json")
	if err != nil {
		return err
	}
	full, err := cmd.Flags().GetBool("full")
	if err != nil {
		return fmt.Errorf("failed to get full flag: %w", err)
	}
	info := version.Get()
	if !full {
		info = version.Info{Version: info.Version}
	}
	if format == "json" {
		return writeJSON(cmd.OutOrStdout(), info)
	}
	writeVersion(cmd.OutOrStdout(), info)
	return nil
}

func writeVersion(out io.Writer, info version.Info) {
	fmt.Fprintf(out, "luasema %s\n", version.Pretty(info.Version))
	t := newTable(dimColor)
	if info.Commit != "" {
		commit := info.Commit
		if info.Modified {
			commit += " (modified)"
		}
		t.add("commit", commit)
	}
	if info.Message != "" {
		t.add("message", info.Message)
	}
	if info.Date != "" {
		t.add("built", info.Date)
	}
	if info.GoVersion != "" {
		t.add("go", info.GoVersion)
	}
	t.write(out)
}
