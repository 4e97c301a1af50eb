package dataset

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/KenkenGoda/trapi/pkg/errors"
)

// Compression is the codec of a data file, chosen from its extension.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return "none"
	}
}

// DetectCompression maps .gz, .zst and .lz4 to their codec.
func DetectCompression(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return CompressionGzip
	case ".zst", ".zstd":
		return CompressionZstd
	case ".lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

type multiCloser struct {
	io.Reader
	closers []func() error
}

func (m *multiCloser) Close() error {
	var first error
	for _, c := range m.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openFile opens path and wraps it in a decompressor matching its extension.
func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	switch DetectCompression(path) {
	case CompressionGzip:
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "gzip header of %s", path)
		}
		return &multiCloser{Reader: zr, closers: []func() error{zr.Close, f.Close}}, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "zstd reader for %s", path)
		}
		return &multiCloser{Reader: zr, closers: []func() error{func() error { zr.Close(); return nil }, f.Close}}, nil
	case CompressionLZ4:
		return &multiCloser{Reader: lz4.NewReader(f), closers: []func() error{f.Close}}, nil
	}
	return f, nil
}

type multiWriteCloser struct {
	io.Writer
	closers []func() error
}

func (m *multiWriteCloser) Close() error {
	var first error
	for _, c := range m.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// createFile creates path and wraps it in a compressor matching its
// extension. Close flushes the compressor before closing the file.
func createFile(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s", path)
	}
	switch DetectCompression(path) {
	case CompressionGzip:
		zw := gzip.NewWriter(f)
		return &multiWriteCloser{Writer: zw, closers: []func() error{zw.Close, f.Close}}, nil
	case CompressionZstd:
		zw, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "zstd writer for %s", path)
		}
		return &multiWriteCloser{Writer: zw, closers: []func() error{zw.Close, f.Close}}, nil
	case CompressionLZ4:
		zw := lz4.NewWriter(f)
		return &multiWriteCloser{Writer: zw, closers: []func() error{zw.Close, f.Close}}, nil
	}
	return f, nil
}
