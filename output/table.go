package output

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/vegasq/danceable/table"
)

// TableWriter renders a table as an aligned text grid for terminals
type TableWriter struct {
	writer io.Writer
}

// NewTableWriter creates a new text table writer
func NewTableWriter(w io.Writer) *TableWriter {
	return &TableWriter{writer: w}
}

// Write renders the header and every row
func (tw *TableWriter) Write(t *table.Table) error {
	grid := tablewriter.NewWriter(tw.writer)
	grid.SetAutoFormatHeaders(false)
	grid.SetAutoWrapText(false)
	grid.SetHeader(t.ColumnNames())

	columns := t.Columns()
	for i := 0; i < t.NumRows(); i++ {
		record := make([]string, len(columns))
		for j, col := range columns {
			record[j] = formatValue(col.Values[i])
		}
		grid.Append(record)
	}

	grid.Render()
	return nil
}
