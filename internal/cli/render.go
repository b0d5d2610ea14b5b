package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

func checkOutput(o string) error {
	if o != outputTable && o != outputJSON {
		return fmt.Errorf("unknown output %q: want %s or %s", o, outputTable, outputJSON)
	}

	return nil
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	// Footers carry sentences such as "Matched 2 of 4"; keep their case.
	t.Style().Format.Footer = text.FormatDefault

	return t
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
