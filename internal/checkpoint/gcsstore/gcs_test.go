package gcsstore

import (
	"testing"

	"github.com/discochess/bookminer/internal/codec"
)

func TestWithPrefix(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"prefix", "prefix/"},
		{"prefix/", "prefix/"},
		{"a/b/c", "a/b/c/"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := &Store{}
			WithPrefix(tt.input)(s)
			if s.prefix != tt.want {
				t.Errorf("prefix = %q, want %q", s.prefix, tt.want)
			}
		})
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		codec  codec.Codec
		want   string
	}{
		{"no prefix zstd", "", codec.Zstd{}, "progress.json.zst"},
		{"no prefix plain", "", codec.Noop{}, "progress.json"},
		{"prefixed gzip", "runs/caro-kann/", codec.Gzip{}, "runs/caro-kann/progress.json.gz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Store{prefix: tt.prefix, codec: tt.codec}
			if got := s.key(); got != tt.want {
				t.Errorf("key() = %q, want %q", got, tt.want)
			}
		})
	}
}
