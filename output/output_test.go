package output

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/vegasq/danceable/reader"
	"github.com/vegasq/danceable/table"
)

func resultTable() *table.Table {
	return table.MustNew(
		table.Strings("artist_name", "test artist", "björk"),
		table.Strings("track_name", "test song", "army of me"),
		table.Floats("danceability", 0.9, 0.5),
		table.NewColumn("energy", []interface{}{0.25, nil}),
		table.Strings("track_id", "https://open.spotify.com/track/10", "https://open.spotify.com/track/11"),
	)
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"nil", nil, ""},
		{"string", "love", "love"},
		{"formula-like string kept", "=SUM(A1)", "=SUM(A1)"},
		{"int64", int64(42), "42"},
		{"float shortest", 0.5, "0.5"},
		{"float whole", 120.0, "120"},
		{"float precise", 0.123456789, "0.123456789"},
		{"float32", float32(0.25), "0.25"},
		{"bool", false, "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatValue(tt.value); got != tt.want {
				t.Errorf("formatValue(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestCSVWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCSVWriter(&buf).Write(resultTable()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	want := "artist_name,track_name,danceability,energy,track_id\n" +
		"test artist,test song,0.9,0.25,https://open.spotify.com/track/10\n" +
		"björk,army of me,0.5,,https://open.spotify.com/track/11\n"
	if buf.String() != want {
		t.Errorf("Write() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestCSVWriter_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	empty := table.Empty("artist_name", "track_name", "danceability", "energy", "track_id")
	if err := NewCSVWriter(&buf).Write(empty); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if buf.String() != "artist_name,track_name,danceability,energy,track_id\n" {
		t.Errorf("Write() = %q, want header only", buf.String())
	}
}

func TestCSVWriter_Quoting(t *testing.T) {
	var buf bytes.Buffer
	tbl := table.MustNew(table.Strings("title", "a, b", "say \"hi\"", "multi\nline"))
	if err := NewCSVWriter(&buf).Write(tbl); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 4 || records[3][0] != "multi\nline" {
		t.Errorf("records = %q", records)
	}
}

func TestJSONWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONWriter(&buf).Write(resultTable()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	// keys keep column order
	if !strings.HasPrefix(lines[0], `{"artist_name":"test artist","track_name":"test song","danceability":0.9`) {
		t.Errorf("line 0 = %s", lines[0])
	}

	var row map[string]interface{}
	if err := json.Unmarshal([]byte(lines[1]), &row); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if row["energy"] != nil {
		t.Errorf("energy = %v, want null", row["energy"])
	}
	if row["artist_name"] != "björk" {
		t.Errorf("artist_name = %v, want björk", row["artist_name"])
	}
}

func TestTableWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTableWriter(&buf).Write(resultTable()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"artist_name", "test artist", "0.9", "https://open.spotify.com/track/11"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestParquetWriter_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.parquet")
	f, err := Create(path, FormatParquet)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := f.Write(resultTable()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	src, err := reader.OpenParquet(path)
	if err != nil {
		t.Fatalf("OpenParquet() error = %v", err)
	}
	got, err := src.Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.NumRows() != 2 || got.NumColumns() != 5 {
		t.Fatalf("round trip = %s, want 2 rows and 5 columns", got)
	}

	dance, _ := got.Column("danceability")
	if dance.Values[0] != 0.9 || dance.Values[1] != 0.5 {
		t.Errorf("danceability = %v, want [0.9 0.5]", dance.Values)
	}
	energy, _ := got.Column("energy")
	if energy.Values[1] != nil {
		t.Errorf("energy[1] = %v, want null", energy.Values[1])
	}
	names, _ := got.Column("artist_name")
	if names.Values[1] != "björk" {
		t.Errorf("artist_name[1] = %v, want björk", names.Values[1])
	}
}

func TestCreate_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.csv.gz")
	f, err := Create(path, FormatCSV)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := f.Write(resultTable()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	raw, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer raw.Close()
	gz, err := gzip.NewReader(raw)
	if err != nil {
		t.Fatalf("output is not gzip: %v", err)
	}
	data, err := io.ReadAll(gz)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "artist_name,track_name,") {
		t.Errorf("decompressed output = %q", data)
	}
}

func TestCreate_Errors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, err := Create(filepath.Join(t.TempDir(), "nope", "out.csv"), FormatCSV)
		var writeErr *WriteError
		if !errors.As(err, &writeErr) {
			t.Fatalf("Create() error = %v, want *WriteError", err)
		}
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("error %v should wrap os.ErrNotExist", err)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := Create(filepath.Join(t.TempDir(), "out.xml"), Format("xml"))
		var writeErr *WriteError
		if !errors.As(err, &writeErr) {
			t.Errorf("Create() error = %v, want *WriteError", err)
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"JSONL", FormatJSONL, false},
		{" parquet ", FormatParquet, false},
		{"table", FormatTable, false},
		{"xlsx", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}
