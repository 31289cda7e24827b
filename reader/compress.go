package reader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression is the codec an input file is wrapped in
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	default:
		return "none"
	}
}

// DetectCompression picks the codec from the file extension
func DetectCompression(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return CompressionGzip
	case ".zst", ".zstd":
		return CompressionZstd
	default:
		return CompressionNone
	}
}

// baseName strips a compression extension, so "songs.csv.gz" gives "songs.csv"
func baseName(path string) string {
	if DetectCompression(path) == CompressionNone {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// decodingReader closes both the decoder and the underlying file
type decodingReader struct {
	io.Reader
	closers []func() error
}

func (r *decodingReader) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openDecompressed opens a file and transparently decodes it
func openDecompressed(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	switch DetectCompression(path) {
	case CompressionGzip:
		gz, err := gzip.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		return &decodingReader{Reader: gz, closers: []func() error{gz.Close, file.Close}}, nil

	case CompressionZstd:
		zr, err := zstd.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		return &decodingReader{Reader: zr, closers: []func() error{func() error { zr.Close(); return nil }, file.Close}}, nil

	default:
		return file, nil
	}
}
