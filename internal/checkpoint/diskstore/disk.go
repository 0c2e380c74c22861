// Package diskstore implements a disk-based checkpoint backend.
//
// Saves are atomic: the document is written to a temporary file in the same
// directory and renamed over the previous checkpoint, so a reader or a
// crashed writer can never observe a half-written document.
package diskstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/discochess/bookminer/internal/checkpoint"
	"github.com/discochess/bookminer/internal/codec"
	"github.com/discochess/bookminer/internal/state"
)

// Compile-time check that Store implements checkpoint.Store.
var _ checkpoint.Store = (*Store)(nil)

const baseName = "progress.json"

// Store is a disk-based checkpoint backend.
type Store struct {
	dir   string
	codec codec.Codec
}

// New creates a new disk store rooted at the given directory, creating the
// directory if needed. The codec handles compression of the document.
func New(dir string, c codec.Codec) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating checkpoint directory: %w", err)
	}
	return &Store{dir: dir, codec: c}, nil
}

// Load reads and decodes the checkpoint file.
func (s *Store) Load(ctx context.Context) (*state.Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, checkpoint.ErrNotFound
		}
		return nil, fmt.Errorf("reading checkpoint: %w", err)
	}

	return checkpoint.Decode(data, s.codec)
}

// Save writes the document to a temporary file and renames it into place.
func (s *Store) Save(ctx context.Context, doc *state.Document) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	data, err := checkpoint.Encode(doc, s.codec)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, baseName+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp checkpoint: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp checkpoint: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing temp checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp checkpoint: %w", err)
	}

	if err := os.Rename(tmpPath, s.path()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing checkpoint: %w", err)
	}

	return nil
}

// Close releases any resources held by the store.
func (s *Store) Close() error {
	return nil
}

// Path returns the checkpoint file path.
func (s *Store) Path() string {
	return s.path()
}

func (s *Store) path() string {
	name := baseName
	if ext := s.codec.Extension(); ext != "" {
		name += "." + ext
	}
	return filepath.Join(s.dir, name)
}
