package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/vegasq/danceable/table"
)

// JSONWriter outputs a table as JSON Lines, one object per row with keys in
// column order
type JSONWriter struct {
	writer io.Writer
}

// NewJSONWriter creates a new JSON Lines writer
func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{writer: w}
}

// Write writes one JSON object per row
func (j *JSONWriter) Write(t *table.Table) error {
	columns := t.Columns()

	keys := make([][]byte, len(columns))
	for i, col := range columns {
		k, err := json.Marshal(col.Name)
		if err != nil {
			return err
		}
		keys[i] = k
	}

	bw := bufio.NewWriter(j.writer)
	for row := 0; row < t.NumRows(); row++ {
		_ = bw.WriteByte('{')
		for i, col := range columns {
			if i > 0 {
				_ = bw.WriteByte(',')
			}
			_, _ = bw.Write(keys[i])
			_ = bw.WriteByte(':')
			v, err := json.Marshal(col.Values[row])
			if err != nil {
				return fmt.Errorf("row %d column %q: %w", row, col.Name, err)
			}
			_, _ = bw.Write(v)
		}
		_, _ = bw.WriteString("}\n")
	}
	return bw.Flush()
}
