package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/vegasq/danceable/table"
)

// Writer serializes a whole table to its destination
type Writer interface {
	Write(t *table.Table) error
}

// Format names an output encoding
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSONL   Format = "jsonl"
	FormatParquet Format = "parquet"
	FormatTable   Format = "table"
)

// Formats lists the supported formats
var Formats = []Format{FormatCSV, FormatJSONL, FormatParquet, FormatTable}

// ParseFormat validates a format name (case-insensitive)
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	names := make([]string, len(Formats))
	for i, known := range Formats {
		names[i] = string(known)
	}
	return "", fmt.Errorf("unknown output format %q (supported: %s)", s, strings.Join(names, ", "))
}

// NewWriter returns the writer for a format
func NewWriter(format Format, w io.Writer) (Writer, error) {
	switch format {
	case FormatCSV:
		return NewCSVWriter(w), nil
	case FormatJSONL:
		return NewJSONWriter(w), nil
	case FormatParquet:
		return NewParquetWriter(w), nil
	case FormatTable:
		return NewTableWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// WriteError reports an output destination that cannot be created or written
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// File is a Writer bound to a file on disk
type File struct {
	path    string
	writer  Writer
	closers []func() error
}

// Create creates (or truncates) the file at path and prepares a writer for
// the format. A ".gz" suffix compresses the output with gzip.
//
// Example:
//
//	f, err := output.Create("result.csv", output.FormatCSV)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := f.Write(result); err != nil {
//	    log.Fatal(err)
//	}
//	if err := f.Close(); err != nil {
//	    log.Fatal(err)
//	}
func Create(path string, format Format) (*File, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, &WriteError{Path: path, Err: err}
	}

	var w io.Writer = file
	closers := []func() error{file.Close}
	if strings.EqualFold(filepath.Ext(path), ".gz") {
		gz := gzip.NewWriter(file)
		w = gz
		closers = []func() error{gz.Close, file.Close}
	}

	writer, err := NewWriter(format, w)
	if err != nil {
		_ = file.Close()
		return nil, &WriteError{Path: path, Err: err}
	}

	return &File{path: path, writer: writer, closers: closers}, nil
}

// Write serializes the table into the file
func (f *File) Write(t *table.Table) error {
	if err := f.writer.Write(t); err != nil {
		return &WriteError{Path: f.path, Err: err}
	}
	return nil
}

// Close flushes compression and closes the file
func (f *File) Close() error {
	var first error
	for _, c := range f.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	if first != nil {
		return &WriteError{Path: f.path, Err: first}
	}
	return nil
}

// formatValue converts a cell to its text form. Null is the empty string and
// floats use the shortest representation that round-trips.
func formatValue(v interface{}) string {
	if v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return val
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", val)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
