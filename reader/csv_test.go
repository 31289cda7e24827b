package reader

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/vegasq/danceable/table"
)

const tracksCSV = `id,name,explicit,popularity,duration
10,Test Song,false,55,201.5
11,"Song, With Comma",true,,180
12,"Multi
Line",False,70,
`

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestOpenCSV_HeaderOnly(t *testing.T) {
	path := writeFile(t, "tracks.csv", []byte(tracksCSV))

	src, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("OpenCSV() error = %v", err)
	}

	want := []string{"id", "name", "explicit", "popularity", "duration"}
	if strings.Join(src.Columns(), ",") != strings.Join(want, ",") {
		t.Errorf("Columns() = %v, want %v", src.Columns(), want)
	}
	if src.Name() != "tracks" {
		t.Errorf("Name() = %q, want tracks", src.Name())
	}

	// Removing the file after opening only fails at load time
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	_, err = src.Load(context.Background(), nil)
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Errorf("Load() error = %v, want *LoadError", err)
	}
}

func TestCSVSource_Load(t *testing.T) {
	src, err := OpenCSV(writeFile(t, "tracks.csv", []byte(tracksCSV)))
	if err != nil {
		t.Fatalf("OpenCSV() error = %v", err)
	}

	tbl, err := src.Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if tbl.NumRows() != 3 {
		t.Fatalf("NumRows() = %d, want 3", tbl.NumRows())
	}

	tests := []struct {
		column   string
		wantType table.Type
		want     []interface{}
	}{
		{"id", table.TypeInt, []interface{}{int64(10), int64(11), int64(12)}},
		{"name", table.TypeString, []interface{}{"Test Song", "Song, With Comma", "Multi\nLine"}},
		{"explicit", table.TypeBool, []interface{}{false, true, false}},
		{"popularity", table.TypeInt, []interface{}{int64(55), nil, int64(70)}},
		{"duration", table.TypeFloat, []interface{}{201.5, 180.0, nil}},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			col, ok := tbl.Column(tt.column)
			if !ok {
				t.Fatalf("column %q missing", tt.column)
			}
			if col.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", col.Type, tt.wantType)
			}
			for i, w := range tt.want {
				if col.Values[i] != w {
					t.Errorf("row %d = %#v, want %#v", i, col.Values[i], w)
				}
			}
		})
	}
}

func TestCSVSource_LoadColumns(t *testing.T) {
	src, err := OpenCSV(writeFile(t, "tracks.csv", []byte(tracksCSV)))
	if err != nil {
		t.Fatalf("OpenCSV() error = %v", err)
	}

	// Requested order does not matter; file order is kept
	tbl, err := src.Load(context.Background(), []string{"explicit", "id"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := strings.Join(tbl.ColumnNames(), ","); got != "id,explicit" {
		t.Errorf("ColumnNames() = %s, want id,explicit", got)
	}

	_, err = src.Load(context.Background(), []string{"tempo"})
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Load(tempo) error = %v, want *LoadError", err)
	}
	if !strings.Contains(err.Error(), "tempo") {
		t.Errorf("error %q should name the missing column", err)
	}
}

func TestOpenCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty file", ""},
		{"empty column name", "id,,name\n1,2,3\n"},
		{"duplicate column", "id,id\n1,2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OpenCSV(writeFile(t, "bad.csv", []byte(tt.data)))
			var loadErr *LoadError
			if !errors.As(err, &loadErr) {
				t.Errorf("OpenCSV() error = %v, want *LoadError", err)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := OpenCSV(filepath.Join(t.TempDir(), "nope.csv"))
		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			t.Fatalf("OpenCSV() error = %v, want *LoadError", err)
		}
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("error %v should wrap os.ErrNotExist", err)
		}
	})
}

func TestCSVSource_RaggedRow(t *testing.T) {
	src, err := OpenCSV(writeFile(t, "links.csv", []byte("track_id,artist_id\n10,1\n11\n")))
	if err != nil {
		t.Fatalf("OpenCSV() error = %v", err)
	}

	_, err = src.Load(context.Background(), nil)
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Load() error = %v, want *LoadError", err)
	}
	if loadErr.Line != 3 {
		t.Errorf("Line = %d, want 3", loadErr.Line)
	}
}

func TestCSVSource_BOM(t *testing.T) {
	src, err := OpenCSV(writeFile(t, "artists.csv", []byte("\ufeffid,name\n1,Test Artist\n")))
	if err != nil {
		t.Fatalf("OpenCSV() error = %v", err)
	}
	if src.Columns()[0] != "id" {
		t.Errorf("Columns()[0] = %q, want id", src.Columns()[0])
	}
}

func TestCSVSource_Compressed(t *testing.T) {
	data := "id,name\n1,Test Artist\n2,BjÖrk\n"

	var gzBuf bytes.Buffer
	gw := gzip.NewWriter(&gzBuf)
	if _, err := gw.Write([]byte(data)); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}

	zw, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	zstData := zw.EncodeAll([]byte(data), nil)
	_ = zw.Close()

	tests := []struct {
		name string
		file string
		data []byte
	}{
		{"gzip", "artists.csv.gz", gzBuf.Bytes()},
		{"zstd", "artists.csv.zst", zstData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := OpenCSV(writeFile(t, tt.file, tt.data))
			if err != nil {
				t.Fatalf("OpenCSV() error = %v", err)
			}
			if src.Name() != "artists" {
				t.Errorf("Name() = %q, want artists", src.Name())
			}
			tbl, err := src.Load(context.Background(), nil)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			col, _ := tbl.Column("name")
			if tbl.NumRows() != 2 || col.Values[1] != "BjÖrk" {
				t.Errorf("name = %v, want [Test Artist BjÖrk]", col.Values)
			}
		})
	}

	t.Run("corrupt gzip", func(t *testing.T) {
		_, err := OpenCSV(writeFile(t, "bad.csv.gz", []byte("not gzip")))
		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			t.Errorf("OpenCSV() error = %v, want *LoadError", err)
		}
	})
}

func TestCSVSource_CanceledContext(t *testing.T) {
	src, err := OpenCSV(writeFile(t, "tracks.csv", []byte(tracksCSV)))
	if err != nil {
		t.Fatalf("OpenCSV() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Load(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestDetectCompression(t *testing.T) {
	tests := []struct {
		path string
		want Compression
		name string
	}{
		{"a/b/tracks.csv", CompressionNone, "tracks"},
		{"tracks.CSV.GZ", CompressionGzip, "tracks"},
		{"tracks.csv.zst", CompressionZstd, "tracks"},
		{"tracks.parquet", CompressionNone, "tracks"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := DetectCompression(tt.path); got != tt.want {
				t.Errorf("DetectCompression() = %v, want %v", got, tt.want)
			}
			if got := sourceName(tt.path); got != tt.name {
				t.Errorf("sourceName() = %q, want %q", got, tt.name)
			}
		})
	}
}
