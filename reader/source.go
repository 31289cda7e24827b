package reader

import (
	"path/filepath"
	"strings"

	"github.com/vegasq/danceable/query"
)

// Open opens a tabular input by extension: ".parquet" files are read as
// Parquet, everything else as CSV. A trailing ".gz" or ".zst" is decoded
// on the fly for CSV inputs.
func Open(path string) (query.Source, error) {
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		src, err := OpenParquet(path)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	src, err := OpenCSV(path)
	if err != nil {
		return nil, err
	}
	return src, nil
}

// sourceName is the file name without directory, compression and format extensions
func sourceName(path string) string {
	base := filepath.Base(baseName(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

var (
	_ query.Source = (*CSVSource)(nil)
	_ query.Source = (*ParquetSource)(nil)
)
