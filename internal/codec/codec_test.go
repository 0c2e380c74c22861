package codec

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func roundTrip(t *testing.T, c Codec, payload []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := c.Writer(&buf)
	if err != nil {
		t.Fatalf("Writer() error = %v", err)
	}
	if _, err := w.Write(payload); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	r, err := c.Reader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Reader() error = %v", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	return out
}

func TestRoundTrip(t *testing.T) {
	payload := []byte(strings.Repeat(`{"replies":{"fen|e2e4":{"uci":"e7e5"}}}`, 50))

	cases := []struct {
		name  string
		codec Codec
	}{
		{"zstd", Zstd{}},
		{"gzip", Gzip{}},
		{"noop", Noop{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := roundTrip(t, tc.codec, payload)
			if !bytes.Equal(got, payload) {
				t.Errorf("round trip mismatch: got %d bytes, want %d", len(got), len(payload))
			}
		})
	}
}

func TestCompressionShrinks(t *testing.T) {
	payload := []byte(strings.Repeat("repetitive checkpoint content ", 200))

	for _, c := range []Codec{Zstd{}, Gzip{}} {
		var buf bytes.Buffer
		w, err := c.Writer(&buf)
		if err != nil {
			t.Fatalf("Writer() error = %v", err)
		}
		if _, err := w.Write(payload); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if buf.Len() >= len(payload) {
			t.Errorf("%s: compressed %d bytes to %d, want smaller", c.Extension(), len(payload), buf.Len())
		}
	}
}

func TestByName(t *testing.T) {
	cases := []struct {
		name string
		want string
		ok   bool
	}{
		{"zstd", "zst", true},
		{"zst", "zst", true},
		{"gzip", "gz", true},
		{"gz", "gz", true},
		{"none", "", true},
		{"", "", true},
		{"brotli", "", false},
	}
	for _, tc := range cases {
		c, ok := ByName(tc.name)
		if ok != tc.ok {
			t.Errorf("ByName(%q) ok = %v, want %v", tc.name, ok, tc.ok)
			continue
		}
		if ok && c.Extension() != tc.want {
			t.Errorf("ByName(%q).Extension() = %q, want %q", tc.name, c.Extension(), tc.want)
		}
	}
}
