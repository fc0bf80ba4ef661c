package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/compose-network/orbit-audit/configs"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// Table is the tabular view of a result.
type Table struct {
	Header []string
	Rows   [][]string
}

// Tabular results can be rendered as a table.
type Tabular interface {
	Table() Table
}

// Render formats v as table, json or yaml. An empty format means table.
func Render(w io.Writer, format configs.OutputFormat, v any) error {
	switch format {
	case configs.OutputFormatJSON:
		content, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = w.Write(append(content, '\n'))
		return err

	case configs.OutputFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return enc.Close()

	case configs.OutputFormatTable, "":
		t, ok := v.(Tabular)
		if !ok {
			return fmt.Errorf("%T has no table view", v)
		}
		renderTable(w, t.Table())
		return nil

	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func renderTable(w io.Writer, t Table) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(t.Header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.AppendBulk(t.Rows)
	table.Render()
}

// Emit renders v and writes it to path, or to stdout when path is empty.
func Emit(stdout io.Writer, format configs.OutputFormat, path string, v any) error {
	buf := new(bytes.Buffer)
	if err := Render(buf, format, v); err != nil {
		return err
	}

	if path == "" {
		_, err := stdout.Write(buf.Bytes())
		return err
	}
	return NewWriter().WriteBytes(path, buf.Bytes())
}
