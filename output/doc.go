// Package output serializes result tables.
//
// Every format implements the Writer interface and writes the columns in
// table order (Parquet excepted, whose schema orders fields by name).
//
// # Supported Formats
//
//   - CSV: header row, then one record per row. Nulls are empty cells and
//     floats use the shortest form that round-trips.
//   - JSON Lines: one JSON object per line.
//   - Parquet: zstd-compressed, every column optional.
//   - Table: an aligned text grid for previews in a terminal.
//
// # Basic Usage
//
// Writing to any io.Writer:
//
//	w := output.NewCSVWriter(os.Stdout)
//	if err := w.Write(result); err != nil {
//	    log.Fatal(err)
//	}
//
// Writing to a file, gzip-compressed because of the suffix:
//
//	f, err := output.Create("result.csv.gz", output.FormatCSV)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Close()
//
//	if err := f.Write(result); err != nil {
//	    log.Fatal(err)
//	}
//
// Failures to create or write the destination are reported as *WriteError.
package output
