// Package codec provides compression for checkpoint documents.
package codec

import (
	"compress/gzip"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Codec wraps readers and writers with a compression scheme.
type Codec interface {
	// Reader wraps r to decompress data read from it.
	Reader(r io.Reader) (io.ReadCloser, error)
	// Writer wraps w to compress data written to it.
	Writer(w io.Writer) (io.WriteCloser, error)
	// Extension returns the file extension without dot (e.g., "zst", "gz").
	// Returns empty string for no compression.
	Extension() string
}

// ByName returns the codec registered under the given name.
// Known names are "zstd", "gzip", and "none". The second return is false for
// unknown names.
func ByName(name string) (Codec, bool) {
	switch name {
	case "zstd", "zst":
		return Zstd{}, true
	case "gzip", "gz":
		return Gzip{}, true
	case "none", "":
		return Noop{}, true
	}
	return nil, false
}

// Zstd implements zstd compression.
type Zstd struct{}

var _ Codec = Zstd{}

// Reader wraps r to decompress zstd data.
func (Zstd) Reader(r io.Reader) (io.ReadCloser, error) {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return decoder.IOReadCloser(), nil
}

// Writer wraps w to compress data with zstd.
func (Zstd) Writer(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w)
}

// Extension returns "zst".
func (Zstd) Extension() string { return "zst" }

// Gzip implements gzip compression.
type Gzip struct{}

var _ Codec = Gzip{}

// Reader wraps r to decompress gzip data.
func (Gzip) Reader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

// Writer wraps w to compress data with gzip.
func (Gzip) Writer(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriter(w), nil
}

// Extension returns "gz".
func (Gzip) Extension() string { return "gz" }

// Noop passes data through uncompressed.
type Noop struct{}

var _ Codec = Noop{}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// Reader returns r unchanged.
func (Noop) Reader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

// Writer returns w unchanged.
func (Noop) Writer(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

// Extension returns "".
func (Noop) Extension() string { return "" }
