package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// useProgressUI resolves --ui: auto shows the progress view only when stderr
// is a terminal and --quiet is not set.
func useProgressUI(cmd *cobra.Command) (bool, error) {
	flags := cmd.Root().PersistentFlags()
	value, err := flags.GetString("ui")
	if err != nil {
		return false, fmt.Errorf("failed to get ui flag: %w", err)
	}
	quiet, err := flags.GetBool("quiet")
	if err != nil {
		return false, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return !quiet && isTerminal(os.Stderr), nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}
