package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/kbukum/restorm/value"
)

// renderRecords writes records as a table or a JSON array. Table columns
// are the given ones, or every key in first-seen order.
func renderRecords(w io.Writer, format string, recs []*Record, columns []string) error {
	if format == "json" {
		out := make([]*value.Object, len(recs))
		for i, r := range recs {
			out[i] = r.Fields()
		}
		return writeJSON(w, out)
	}

	if len(columns) == 0 {
		columns = columnsOf(recs)
	}
	t := newTable(w)
	header := make(table.Row, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	t.AppendHeader(header)
	for _, r := range recs {
		row := make(table.Row, len(columns))
		for i, c := range columns {
			row[i] = cell(r, c)
		}
		t.AppendRow(row)
	}
	t.Render()
	_, err := fmt.Fprintf(w, "(%d rows)\n", len(recs))
	return err
}

// renderRecord writes a single record as a field/value table or a JSON
// object.
func renderRecord(w io.Writer, format string, r *Record) error {
	if format == "json" {
		return writeJSON(w, r.Fields())
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"field", "value"})
	for _, k := range r.Keys() {
		t.AppendRow(table.Row{k, r.Get(k).String()})
	}
	t.Render()
	return nil
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func columnsOf(recs []*Record) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, r := range recs {
		for _, k := range r.Keys() {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	return cols
}

// cell renders a column; dotted names reach into nested objects. Missing
// values render empty.
func cell(r *Record, column string) string {
	v, ok := r.Path(strings.Split(column, ".")...)
	if !ok {
		return ""
	}
	return v.String()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
