package output

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/danceable/table"
)

// ParquetWriter outputs a table as a zstd-compressed Parquet file.
//
// Every column is written as an optional leaf so nulls survive. Parquet
// groups order their fields by name, so readers see the columns sorted.
type ParquetWriter struct {
	writer io.Writer
}

// NewParquetWriter creates a new Parquet writer
func NewParquetWriter(w io.Writer) *ParquetWriter {
	return &ParquetWriter{writer: w}
}

// Write writes the table as a single row group
func (p *ParquetWriter) Write(t *table.Table) error {
	columns := t.Columns()

	group := make(parquet.Group, len(columns))
	for _, col := range columns {
		group[col.Name] = parquet.Optional(parquetNode(col.Type))
	}
	schema := parquet.NewSchema("danceable", group)

	// Leaf index of every table column in the schema
	leafIndex := make(map[string]int, len(columns))
	for i, path := range schema.Columns() {
		leafIndex[path[0]] = i
	}

	w := parquet.NewWriter(p.writer, schema, parquet.Compression(&parquet.Zstd))

	rows := make([]parquet.Row, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		row := make(parquet.Row, len(columns))
		for _, col := range columns {
			idx := leafIndex[col.Name]
			v, err := parquetValue(col, i)
			if err != nil {
				return err
			}
			if v.IsNull() {
				row[idx] = v.Level(0, 0, idx)
			} else {
				row[idx] = v.Level(0, 1, idx)
			}
		}
		rows = append(rows, row)
	}

	if _, err := w.WriteRows(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

func parquetNode(typ table.Type) parquet.Node {
	switch typ {
	case table.TypeInt:
		return parquet.Int(64)
	case table.TypeFloat:
		return parquet.Leaf(parquet.DoubleType)
	case table.TypeBool:
		return parquet.Leaf(parquet.BooleanType)
	default:
		return parquet.String()
	}
}

func parquetValue(col *table.Column, row int) (parquet.Value, error) {
	v := col.Values[row]
	if v == nil {
		return parquet.NullValue(), nil
	}

	switch col.Type {
	case table.TypeInt:
		n, ok := v.(int64)
		if !ok {
			return parquet.Value{}, fmt.Errorf("column %q row %d: expected int64, got %T", col.Name, row, v)
		}
		return parquet.Int64Value(n), nil
	case table.TypeFloat:
		f, ok := v.(float64)
		if !ok {
			return parquet.Value{}, fmt.Errorf("column %q row %d: expected float64, got %T", col.Name, row, v)
		}
		return parquet.DoubleValue(f), nil
	case table.TypeBool:
		b, ok := v.(bool)
		if !ok {
			return parquet.Value{}, fmt.Errorf("column %q row %d: expected bool, got %T", col.Name, row, v)
		}
		return parquet.BooleanValue(b), nil
	default:
		return parquet.ByteArrayValue([]byte(formatValue(v))), nil
	}
}
