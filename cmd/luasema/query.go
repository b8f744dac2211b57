package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"luasema/internal/config"
	"luasema/internal/types"
	"luasema/internal/workspace"
)

var membersCmd = &cobra.Command{
	Use:   "members [flags] <directory> <type-or-global>",
	Short: "List the resolved members of a type or global table",
	Args:  cobra.ExactArgs(2),
	RunE:  runMembers,
}

var typeCmd = &cobra.Command{
	Use:   "type [flags] <directory> <name>",
	Short: "Show a named type with its supers, subtypes and definitions",
	Args:  cobra.ExactArgs(2),
	RunE:  runType,
}

var globalsCmd = &cobra.Command{
	Use:   "globals [flags] [directory]",
	Short: "List every global with its inferred type",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGlobals,
}

func init() {
	for _, c := range []*cobra.Command{membersCmd, typeCmd, globalsCmd} {
		c.Flags().String("format", "pretty", "output format (pretty|json)")
	}
	typeCmd.Flags().Bool("members", false, "include resolved members")
}

// location renders a location as path:line:col relative to the workspace root.
func location(cfg config.Config, loc protocol.Location) string {
	path := uri.URI(loc.URI).Filename()
	if path == "" {
		path = string(loc.URI)
	} else {
		path = cfg.Rel(path)
	}
	return fmt.Sprintf("%s:%d:%d", path, loc.Range.Start.Line+1, loc.Range.Start.Character+1)
}

func typeLabel(t *types.Type) string {
	if t == nil {
		return types.Unknown.String()
	}
	return t.String()
}

type memberView struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Owner    string `json:"owner"`
	Declared bool   `json:"declared,omitempty"`
	Location string `json:"location,omitempty"`
}

func memberViews(cfg config.Config, ms []workspace.MemberInfo) []memberView {
	out := make([]memberView, len(ms))
	for i, m := range ms {
		out[i] = memberView{Name: m.Name, Type: typeLabel(m.Type), Owner: m.Owner, Declared: m.Declared}
		if m.Location.URI != "" {
			out[i].Location = location(cfg, m.Location)
		}
	}
	return out
}

func writeMembers(out io.Writer, views []memberView) {
	tab := newTable(nameColor, typeColor, ownerColor, dimColor)
	for _, v := range views {
		tab.add(v.Name, v.Type, v.Owner, v.Location)
	}
	tab.write(out)
}

func runMembers(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd, "pretty", "json")
	if err != nil {
		return err
	}
	s, err := loadWorkspace(cmd, args[0])
	if err != nil {
		return err
	}
	defer s.finish(cmd)

	views := memberViews(s.cfg, s.ws.GetMembers(args[1]))
	if format == "json" {
		return writeJSON(cmd.OutOrStdout(), views)
	}
	if len(views) == 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "no members found for %s\n", args[1])
		return nil
	}
	writeMembers(cmd.OutOrStdout(), views)
	return nil
}

type typeView struct {
	Name     string       `json:"name"`
	Kind     string       `json:"kind"`
	Attrs    []string     `json:"attrs,omitempty"`
	Generics []string     `json:"generics,omitempty"`
	Base     string       `json:"base,omitempty"`
	Supers   []string     `json:"supers,omitempty"`
	Resolved []string     `json:"resolved_supers,omitempty"`
	SubTypes []string     `json:"subtypes,omitempty"`
	Defs     []string     `json:"definitions,omitempty"`
	Members  []memberView `json:"members,omitempty"`
}

func runType(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd, "pretty", "json")
	if err != nil {
		return err
	}
	withMembers, err := cmd.Flags().GetBool("members")
	if err != nil {
		return fmt.Errorf("failed to get members flag: %w", err)
	}
	s, err := loadWorkspace(cmd, args[0])
	if err != nil {
		return err
	}
	defer s.finish(cmd)

	info, ok := s.ws.FindTypeInfo(args[1])
	if !ok {
		return fmt.Errorf("type %q not found", args[1])
	}
	view := typeView{
		Name:     info.Name,
		Kind:     info.Kind,
		Attrs:    info.Attrs,
		Generics: info.Generics,
		Supers:   info.Supers,
		Resolved: s.ws.QuerySupers(info.Name),
		SubTypes: s.ws.QuerySubTypes(info.Name),
	}
	if info.Base != nil {
		view.Base = info.Base.String()
	}
	for _, loc := range info.Locations {
		view.Defs = append(view.Defs, location(s.cfg, loc))
	}
	if withMembers {
		view.Members = memberViews(s.cfg, s.ws.GetMembers(info.Name))
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		return writeJSON(out, view)
	}
	header := nameColor.Sprint(view.Name)
	if len(view.Generics) > 0 {
		header += "<" + strings.Join(view.Generics, ", ") + ">"
	}
	fmt.Fprintf(out, "%s %s", dimColor.Sprint(view.Kind), header)
	if len(view.Attrs) > 0 {
		fmt.Fprintf(out, " (%s)", strings.Join(view.Attrs, ", "))
	}
	if len(view.Supers) > 0 {
		fmt.Fprintf(out, " : %s", typeColor.Sprint(strings.Join(view.Supers, ", ")))
	}
	fmt.Fprintln(out)
	tab := newTable(dimColor, nil)
	if view.Base != "" {
		tab.add("base", typeColor.Sprint(view.Base))
	}
	if len(view.SubTypes) > 0 {
		tab.add("subtypes", strings.Join(view.SubTypes, ", "))
	}
	for _, def := range view.Defs {
		tab.add("defined", def)
	}
	tab.write(out)
	if len(view.Members) > 0 {
		fmt.Fprintln(out)
		writeMembers(out, view.Members)
	}
	return nil
}

type globalView struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Locations []string `json:"locations,omitempty"`
}

func runGlobals(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd, "pretty", "json")
	if err != nil {
		return err
	}
	s, err := loadWorkspace(cmd, dirArg(args))
	if err != nil {
		return err
	}
	defer s.finish(cmd)

	infos := s.ws.GetAllGlobalInfos()
	views := make([]globalView, len(infos))
	for i, g := range infos {
		views[i] = globalView{Name: g.Name, Type: typeLabel(g.Type)}
		for _, loc := range g.Locations {
			views[i].Locations = append(views[i].Locations, location(s.cfg, loc))
		}
	}
	if format == "json" {
		return writeJSON(cmd.OutOrStdout(), views)
	}
	tab := newTable(nameColor, typeColor, dimColor)
	for _, v := range views {
		first := ""
		if len(v.Locations) > 0 {
			first = v.Locations[0]
			if n := len(v.Locations) - 1; n > 0 {
				first = fmt.Sprintf("%s (+%d)", first, n)
			}
		}
		tab.add(v.Name, v.Type, first)
	}
	tab.write(cmd.OutOrStdout())
	return nil
}
