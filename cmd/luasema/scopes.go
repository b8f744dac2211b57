package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"luasema/internal/source"
	"luasema/internal/symbols"
	"luasema/internal/workspace"
)

var scopesCmd = &cobra.Command{
	Use:   "scopes [flags] <file.lua>",
	Short: "Print the scope tree of a file, or what is visible at a position",
	Long: `Scopes indexes the workspace around a Lua file and prints its scope tree.
With --at line:col (1-based) it prints the declarations visible there, the
type of the expression under the cursor and its definition instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runScopes,
}

func init() {
	scopesCmd.Flags().String("at", "", "position as line:col, 1-based")
	scopesCmd.Flags().Bool("symbols", false, "print the document outline instead of scopes")
}

func runScopes(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	atFlag, err := cmd.Flags().GetString("at")
	if err != nil {
		return fmt.Errorf("failed to get at flag: %w", err)
	}
	outline, err := cmd.Flags().GetBool("symbols")
	if err != nil {
		return fmt.Errorf("failed to get symbols flag: %w", err)
	}

	s, err := loadWorkspace(cmd, filepath.Dir(path))
	if err != nil {
		return err
	}
	defer s.finish(cmd)

	u := uri.File(path)
	tab, err := s.ws.Table(u)
	if errors.Is(err, workspace.ErrUnknownDocument) {
		// файл вне include-шаблонов: открываем как буфер
		text, rerr := os.ReadFile(path)
		if rerr != nil {
			return rerr
		}
		s.ws.Open(u, string(text), 0)
		tab, err = s.ws.Table(u)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	switch {
	case atFlag != "":
		pos, err := parsePosition(atFlag)
		if err != nil {
			return err
		}
		return writeAt(out, s, u, pos)
	case outline:
		syms, err := s.ws.DocumentSymbols(u)
		if err != nil {
			return err
		}
		writeSymbols(out, syms, 0)
		return nil
	default:
		writeScope(out, tab, tab.Root, 0)
		return nil
	}
}

func parsePosition(s string) (protocol.Position, error) {
	lineStr, colStr, ok := strings.Cut(s, ":")
	if !ok {
		colStr = "1"
		lineStr = s
	}
	line, err := strconv.ParseUint(lineStr, 10, 32)
	if err != nil || line == 0 {
		return protocol.Position{}, fmt.Errorf("invalid --at line %q", lineStr)
	}
	col, err := strconv.ParseUint(colStr, 10, 32)
	if err != nil || col == 0 {
		return protocol.Position{}, fmt.Errorf("invalid --at column %q", colStr)
	}
	return protocol.Position{Line: uint32(line - 1), Character: uint32(col - 1)}, nil
}

func writeAt(out io.Writer, s *session, u uri.URI, pos protocol.Position) error {
	typ, err := s.ws.InferTypeAt(u, pos)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s\n", dimColor.Sprint("type"), typeColor.Sprint(typeLabel(typ)))

	defs, err := s.ws.DefinitionAt(u, pos)
	if err != nil {
		return err
	}
	for _, loc := range defs {
		fmt.Fprintf(out, "%s %s\n", dimColor.Sprint("defined"), location(s.cfg, loc))
	}

	decls, err := s.ws.GetDeclarationsBefore(u, pos)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	tab := newTable(nameColor, typeColor, dimColor, dimColor)
	for _, d := range decls {
		tab.add(d.Name, typeLabel(d.Type), strings.Join(d.Flags, ","), location(s.cfg, d.Location))
	}
	tab.write(out)
	return nil
}

func writeSymbols(out io.Writer, syms []protocol.DocumentSymbol, depth int) {
	for _, sym := range syms {
		fmt.Fprintf(out, "%s%s %s", strings.Repeat("  ", depth), nameColor.Sprint(sym.Name), dimColor.Sprint(sym.Kind.String()))
		if sym.Detail != "" {
			fmt.Fprintf(out, " %s", typeColor.Sprint(sym.Detail))
		}
		fmt.Fprintf(out, " %d:%d\n", sym.SelectionRange.Start.Line+1, sym.SelectionRange.Start.Character+1)
		writeSymbols(out, sym.Children, depth+1)
	}
}

func writeScope(out io.Writer, tab *symbols.Table, id symbols.ScopeID, depth int) {
	sc := tab.Scope(id)
	if sc == nil {
		return
	}
	doc := tab.Syntax.Doc
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(out, "%s%s %s\n", indent, dimColor.Sprint(sc.Kind.String()), spanLabel(doc, sc.Span))
	for _, it := range sc.Items {
		if it.Scope.IsValid() {
			writeScope(out, tab, it.Scope, depth+1)
			continue
		}
		d := tab.Decl(it.Decl)
		if d == nil {
			continue
		}
		fmt.Fprintf(out, "%s  %s [%s]", indent, nameColor.Sprint(d.Name), strings.Join(d.Flags.Strings(), ","))
		if d.Type != nil {
			fmt.Fprintf(out, " %s", typeColor.Sprint(d.Type.String()))
		}
		if d.Owner != "" {
			fmt.Fprintf(out, " %s", ownerColor.Sprint(d.Owner.Name()))
		}
		fmt.Fprintf(out, " %s\n", spanLabel(doc, d.Span))
	}
}

func spanLabel(doc *source.Document, span source.Span) string {
	sl, sc := doc.Position(span.Start)
	el, ec := doc.Position(span.End)
	return fmt.Sprintf("%d:%d-%d:%d", sl+1, sc+1, el+1, ec+1)
}
