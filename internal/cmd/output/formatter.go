// Package output renders command results as tables, TSV, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/agentstation/ordersync/internal/cmd/table"
)

// Format selects how results are rendered.
type Format string

// Supported formats. Table and TSV render table.Data; JSON and YAML render
// structured reports.
const (
	FormatTable Format = "table"
	FormatTSV   Format = "tsv"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// IsTabular reports whether f expects table.Data.
func (f Format) IsTabular() bool {
	return f == FormatTable || f == FormatTSV || f == ""
}

// ParseFormat validates s, case-insensitively. Empty means auto-detect.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatTable, FormatTSV, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want table, tsv, json or yaml)", s)
}

// DetectFormat returns explicit when set. Otherwise stdout on a terminal gets
// a table and anything else gets TSV, ready to paste into a sheet.
func DetectFormat(explicit string) Format {
	if explicit != "" {
		return Format(strings.ToLower(explicit))
	}
	fd := os.Stdout.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return FormatTable
	}
	return FormatTSV
}

// Write renders data to w. Tabular formats given anything but table.Data
// fall back to YAML.
func Write(w io.Writer, format Format, data any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		return writeYAML(w, data)
	}

	d, ok := data.(table.Data)
	if !ok {
		return writeYAML(w, data)
	}
	if format == FormatTSV {
		return writeTSV(w, d)
	}
	return writeTable(w, d)
}

func writeYAML(w io.Writer, data any) error {
	b, err := yaml.MarshalWithOptions(data, yaml.Indent(2), yaml.IndentSequence(false))
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func writeTSV(w io.Writer, d table.Data) error {
	lines := d.Rows
	if len(d.Headers) > 0 {
		lines = append([][]string{d.Headers}, d.Rows...)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, strings.Join(line, "\t")); err != nil {
			return err
		}
	}
	return nil
}

var alignments = map[table.Align]tw.Align{
	table.AlignLeft:   tw.AlignLeft,
	table.AlignCenter: tw.AlignCenter,
	table.AlignRight:  tw.AlignRight,
}

func writeTable(w io.Writer, d table.Data) error {
	var cfg tablewriter.Config
	if len(d.ColumnAlignment) > 0 {
		perColumn := make([]tw.Align, len(d.ColumnAlignment))
		for i, a := range d.ColumnAlignment {
			align, ok := alignments[a]
			if !ok {
				align = tw.Skip
			}
			perColumn[i] = align
		}
		cfg.Header.Alignment = tw.CellAlignment{PerColumn: perColumn}
		cfg.Row.Alignment = tw.CellAlignment{PerColumn: perColumn}
	}

	t := tablewriter.NewTable(w, tablewriter.WithConfig(cfg))
	if len(d.Headers) > 0 {
		t.Header(cells(d.Headers)...)
	}
	for _, row := range d.Rows {
		if err := t.Append(cells(row)...); err != nil {
			return err
		}
	}
	return t.Render()
}

func cells(row []string) []any {
	out := make([]any, len(row))
	for i, c := range row {
		out[i] = c
	}
	return out
}
