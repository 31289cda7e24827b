// Package reader opens tabular input files as query sources.
//
// Opening a file only describes it: CSV sources read the header row and
// Parquet sources read the footer. Rows are parsed when the query engine
// calls Load, and only the columns the plan uses are kept.
//
// # Basic Usage
//
//	src, err := reader.Open("tracks.csv.gz")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	lf := query.Scan(src).Select(query.Item(query.Col("id")))
//
// # Formats
//
//   - CSV with a header row. Column types are inferred per column (int,
//     float, bool, otherwise string) and empty cells are null.
//   - CSV compressed with gzip (.gz) or zstd (.zst).
//   - Apache Parquet (.parquet), top-level columns only.
//
// Failures to open or parse a file are reported as *LoadError.
package reader
