// Package checkpoint defines the storage backend interface for durable
// exploration snapshots.
package checkpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/discochess/bookminer/internal/codec"
	"github.com/discochess/bookminer/internal/state"
)

// ErrNotFound is returned by Load when no checkpoint exists yet.
// Callers treat it as "start fresh", not as a failure.
var ErrNotFound = errors.New("checkpoint: not found")

// Store defines the interface for checkpoint backends.
// Save must be atomic from the caller's perspective: a crash mid-write or a
// concurrent load must never observe a partially written document.
type Store interface {
	// Load reads the most recent checkpoint document.
	// Returns ErrNotFound if no checkpoint has been saved.
	Load(ctx context.Context) (*state.Document, error)

	// Save durably replaces the checkpoint document.
	Save(ctx context.Context, doc *state.Document) error

	// Close releases any resources held by the store.
	Close() error
}

// Encode serializes a document through the given codec.
func Encode(doc *state.Document, c codec.Codec) ([]byte, error) {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling checkpoint: %w", err)
	}

	var buf bytes.Buffer
	w, err := c.Writer(&buf)
	if err != nil {
		return nil, fmt.Errorf("creating compressor: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return nil, fmt.Errorf("compressing checkpoint: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("flushing compressor: %w", err)
	}

	return buf.Bytes(), nil
}

// Decode deserializes a document written by Encode.
func Decode(data []byte, c codec.Codec) (*state.Document, error) {
	r, err := c.Reader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating decompressor: %w", err)
	}
	defer r.Close()

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompressing checkpoint: %w", err)
	}

	var doc state.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing checkpoint: %w", err)
	}
	return &doc, nil
}
