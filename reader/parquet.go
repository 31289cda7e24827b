package reader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/danceable/table"
)

// ParquetSource is a Parquet file whose top-level columns are exposed as a
// table. Opening reads only the footer; rows are read by Load.
type ParquetSource struct {
	path    string
	name    string
	columns []string
	schema  []ColumnInfo
}

// OpenParquet opens a parquet file and reads its schema.
//
// Returns a LoadError if the file doesn't exist or is not a valid parquet file.
func OpenParquet(path string) (*ParquetSource, error) {
	file, pqFile, err := openParquetFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer func() { _ = file.Close() }()

	schema := describeSchema(pqFile.Schema())
	columns := make([]string, len(schema))
	for i, c := range schema {
		columns[i] = c.Name
	}

	return &ParquetSource{path: path, name: sourceName(path), columns: columns, schema: schema}, nil
}

// openParquetFile maintains both an OS file handle and a parquet file
// handle; the caller closes the OS file.
func openParquetFile(path string) (*os.File, *parquet.File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	return file, pqFile, nil
}

// Name returns the file name without directory and extension
func (s *ParquetSource) Name() string {
	return s.name
}

// Path returns the file path
func (s *ParquetSource) Path() string {
	return s.path
}

// Columns returns the top-level column names in schema order
func (s *ParquetSource) Columns() []string {
	return append([]string(nil), s.columns...)
}

// Schema returns the column metadata read from the footer
func (s *ParquetSource) Schema() []ColumnInfo {
	return append([]ColumnInfo(nil), s.schema...)
}

// Load reads all rows into memory. A non-nil columns list keeps only those
// columns, in schema order.
func (s *ParquetSource) Load(ctx context.Context, columns []string) (*table.Table, error) {
	keep := s.columns
	if columns != nil {
		want := make(map[string]bool, len(columns))
		for _, c := range columns {
			want[c] = true
		}
		keep = make([]string, 0, len(columns))
		for _, c := range s.columns {
			if want[c] {
				keep = append(keep, c)
				delete(want, c)
			}
		}
		for _, c := range columns {
			if want[c] {
				return nil, &LoadError{Path: s.path, Err: fmt.Errorf("column %q not in schema (available: %s)", c, strings.Join(s.columns, ", "))}
			}
		}
	}

	file, pqFile, err := openParquetFile(s.path)
	if err != nil {
		return nil, &LoadError{Path: s.path, Err: err}
	}
	defer func() { _ = file.Close() }()

	values := make([][]interface{}, len(keep))

	reader := parquet.NewReader(pqFile)
	defer func() { _ = reader.Close() }()

	for n := 0; ; n++ {
		if n%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row := make(map[string]interface{})
		err := reader.Read(&row)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &LoadError{Path: s.path, Line: n + 1, Err: fmt.Errorf("failed to read row: %w", err)}
		}
		for i, name := range keep {
			values[i] = append(values[i], normalizeValue(row[name]))
		}
	}

	cols := make([]*table.Column, len(keep))
	for i, name := range keep {
		if values[i] == nil {
			values[i] = []interface{}{}
		}
		cols[i] = table.NewColumn(name, values[i])
	}

	t, err := table.New(cols...)
	if err != nil {
		return nil, &LoadError{Path: s.path, Err: err}
	}
	return t, nil
}

// normalizeValue maps parquet-go values onto the table cell types
func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case string, int64, float64, bool:
		return val
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case uint64:
		return int64(val)
	case float32:
		return widenFloat32(val)
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}

// widenFloat32 converts through the shortest decimal form of the float32, so
// a stored 0.45 loads as 0.45 and not 0.44999998807907104
func widenFloat32(f float32) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(float64(f), 'g', -1, 32), 64)
	if err != nil {
		return float64(f)
	}
	return v
}
