package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

var (
	nameColor  = color.New(color.FgCyan, color.Bold)
	typeColor  = color.New(color.FgYellow)
	ownerColor = color.New(color.FgMagenta)
	dimColor   = color.New(color.Faint)
	errColor   = color.New(color.FgRed, color.Bold)
)

// outputFormat reads the command's --format flag.
func outputFormat(cmd *cobra.Command, allowed ...string) (string, error) {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(format)
	for _, a := range allowed {
		if a == format {
			return format, nil
		}
	}
	return "", fmt.Errorf("unsupported format %q (must be %s)", format, strings.Join(allowed, " or "))
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table prints aligned columns; the width of wide runes is respected.
type table struct {
	rows   [][]string
	colors []*color.Color
}

func newTable(colors ...*color.Color) *table {
	return &table{colors: colors}
}

func (t *table) add(cells ...string) { t.rows = append(t.rows, cells) }

func (t *table) write(out io.Writer) {
	var widths []int
	for _, row := range t.rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	for _, row := range t.rows {
		var b strings.Builder
		for i, cell := range row {
			text := cell
			if i < len(row)-1 {
				text = runewidth.FillRight(cell, widths[i])
			}
			if i < len(t.colors) && t.colors[i] != nil {
				text = t.colors[i].Sprint(text)
			}
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(text)
		}
		fmt.Fprintln(out, strings.TrimRight(b.String(), " "))
	}
}
