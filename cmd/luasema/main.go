package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"luasema/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "luasema",
	Short: "Semantic index for Lua workspaces",
	Long: `luasema builds the scope tree, global index and type graph of a Lua
workspace annotated with EmmyLua comments and answers queries against it`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(membersCmd)
	rootCmd.AddCommand(typeCmd)
	rootCmd.AddCommand(globalsCmd)
	rootCmd.AddCommand(scopesCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	flags := rootCmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.String("log-level", "warn", "log level (debug|info|warn|error)")
	flags.String("config", "", "path to luasema.toml or .luasema.yaml (default: discovered)")
	flags.Int("jobs", 0, "max parallel workers while loading (0=config or auto)")
	flags.String("ui", "auto", "progress UI (auto|on|off)")
	flags.String("trace-level", "", "trace level (off|phase|detail|debug); overrides the config")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	flags.Int("trace-ring-size", 4096, "events kept by the ring tracer")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := setupLogging(cmd); err != nil {
		return err
	}
	return setupTracing(cmd)
}

func teardown(cmd *cobra.Command, _ []string) {
	if cleanup != nil {
		cleanup()
		cleanup = nil
	}
}
