package output

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/vegasq/danceable/table"
)

// CSVWriter outputs a table as CSV with a header row
type CSVWriter struct {
	writer io.Writer
}

// NewCSVWriter creates a new CSV writer
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{writer: w}
}

// Write writes the header and one record per row, columns in table order
func (c *CSVWriter) Write(t *table.Table) error {
	csvWriter := csv.NewWriter(c.writer)

	if err := csvWriter.Write(t.ColumnNames()); err != nil {
		return err
	}

	columns := t.Columns()
	record := make([]string, len(columns))
	for i := 0; i < t.NumRows(); i++ {
		for j, col := range columns {
			record[j] = formatValue(col.Values[i])
		}
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}

	// Flush and check for errors
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}

	return nil
}
