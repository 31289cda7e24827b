package reader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vegasq/danceable/table"
)

// CSVSource is a headered CSV file, optionally gzip or zstd compressed.
//
// Opening a source reads only the header; rows are parsed by Load.
type CSVSource struct {
	path    string
	name    string
	columns []string
}

// OpenCSV opens a CSV file and reads its header.
//
// Example:
//
//	src, err := reader.OpenCSV("artists.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(src.Columns()) // [id name ...]
func OpenCSV(path string) (*CSVSource, error) {
	rc, err := openDecompressed(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer func() { _ = rc.Close() }()

	r := newCSVReader(rc)
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("missing header row")
		}
		return nil, &LoadError{Path: path, Line: 1, Err: err}
	}

	columns, err := cleanHeader(header)
	if err != nil {
		return nil, &LoadError{Path: path, Line: 1, Err: err}
	}

	return &CSVSource{path: path, name: sourceName(path), columns: columns}, nil
}

// Name returns the file name without directory and extensions
func (s *CSVSource) Name() string {
	return s.name
}

// Path returns the file path
func (s *CSVSource) Path() string {
	return s.path
}

// Columns returns the header names in file order
func (s *CSVSource) Columns() []string {
	return append([]string(nil), s.columns...)
}

// Load parses the file into a table. A non-nil columns list keeps only those
// columns, in file order. Types are inferred per column; empty cells are null.
func (s *CSVSource) Load(ctx context.Context, columns []string) (*table.Table, error) {
	keep, err := s.selectColumns(columns)
	if err != nil {
		return nil, err
	}

	rc, err := openDecompressed(s.path)
	if err != nil {
		return nil, &LoadError{Path: s.path, Err: err}
	}
	defer func() { _ = rc.Close() }()

	r := newCSVReader(rc)
	r.FieldsPerRecord = len(s.columns)
	r.ReuseRecord = true

	if _, err := r.Read(); err != nil {
		return nil, &LoadError{Path: s.path, Line: 1, Err: err}
	}

	raw := make([][]string, len(keep))
	for n := 0; ; n++ {
		if n%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, &LoadError{Path: s.path, Line: parseErr.StartLine, Err: parseErr.Err}
			}
			return nil, &LoadError{Path: s.path, Err: err}
		}

		for i, idx := range keep {
			raw[i] = append(raw[i], record[idx])
		}
	}

	cols := make([]*table.Column, len(keep))
	for i, idx := range keep {
		cols[i] = table.ParseColumn(s.columns[idx], raw[i])
	}

	t, err := table.New(cols...)
	if err != nil {
		return nil, &LoadError{Path: s.path, Err: err}
	}
	return t, nil
}

// selectColumns maps requested names to header positions, in header order
func (s *CSVSource) selectColumns(columns []string) ([]int, error) {
	if columns == nil {
		keep := make([]int, len(s.columns))
		for i := range keep {
			keep[i] = i
		}
		return keep, nil
	}

	want := make(map[string]bool, len(columns))
	for _, c := range columns {
		want[c] = true
	}
	keep := make([]int, 0, len(columns))
	for i, c := range s.columns {
		if want[c] {
			keep = append(keep, i)
			delete(want, c)
		}
	}
	for _, c := range columns {
		if want[c] {
			return nil, &LoadError{Path: s.path, Err: fmt.Errorf("column %q not in header (available: %s)", c, strings.Join(s.columns, ", "))}
		}
	}
	return keep, nil
}

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	return cr
}

// cleanHeader strips a byte order mark and surrounding spaces and rejects
// empty or repeated names
func cleanHeader(header []string) ([]string, error) {
	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		if h == "" {
			return nil, fmt.Errorf("empty column name at position %d", i+1)
		}
		if seen[h] {
			return nil, fmt.Errorf("duplicate column name %q", h)
		}
		seen[h] = true
		columns[i] = h
	}
	return columns, nil
}
