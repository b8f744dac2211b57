package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index [flags] [directory]",
	Short: "Index a workspace and print a summary",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	indexCmd.Flags().Bool("list", false, "list indexed documents")
}

type indexSummary struct {
	Root      string            `json:"root"`
	Config    string            `json:"config,omitempty"`
	Documents int               `json:"documents"`
	Globals   int               `json:"globals"`
	Owners    int               `json:"owners"`
	Types     int               `json:"types"`
	Failed    map[string]string `json:"failed,omitempty"`
	Files     []string          `json:"files,omitempty"`
}

func dirArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

func runIndex(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd, "pretty", "json")
	if err != nil {
		return err
	}
	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return fmt.Errorf("failed to get list flag: %w", err)
	}
	s, err := loadWorkspace(cmd, dirArg(args))
	if err != nil {
		return err
	}
	defer s.finish(cmd)

	st := s.ws.Stats()
	sum := indexSummary{
		Root:      s.cfg.Root,
		Config:    s.cfg.Path,
		Documents: st.Docs,
		Globals:   st.Globals,
		Owners:    st.Owners,
		Types:     st.Types,
	}
	for path, ferr := range s.result.Failed {
		if sum.Failed == nil {
			sum.Failed = make(map[string]string)
		}
		sum.Failed[s.cfg.Rel(path)] = ferr.Error()
	}
	if list {
		for _, path := range s.result.Files {
			if _, failed := s.result.Failed[path]; !failed {
				sum.Files = append(sum.Files, s.cfg.Rel(path))
			}
		}
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		return writeJSON(out, sum)
	}
	fmt.Fprintf(out, "%s %s\n", nameColor.Sprint("indexed"), sum.Root)
	if sum.Config != "" {
		fmt.Fprintf(out, "%s %s\n", dimColor.Sprint("config "), sum.Config)
	}
	tab := newTable(dimColor, nil)
	tab.add("documents", fmt.Sprint(sum.Documents))
	tab.add("globals", fmt.Sprint(sum.Globals))
	tab.add("owners", fmt.Sprint(sum.Owners))
	tab.add("types", fmt.Sprint(sum.Types))
	tab.write(out)
	if len(sum.Failed) > 0 {
		failed := make([]string, 0, len(sum.Failed))
		for rel := range sum.Failed {
			failed = append(failed, rel)
		}
		sort.Strings(failed)
		fmt.Fprintf(out, "%s\n", errColor.Sprint("failed"))
		for _, rel := range failed {
			fmt.Fprintf(out, "  %s: %s\n", rel, sum.Failed[rel])
		}
	}
	for _, f := range sum.Files {
		fmt.Fprintf(out, "  %s\n", f)
	}
	return nil
}
