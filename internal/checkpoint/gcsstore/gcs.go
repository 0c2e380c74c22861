// Package gcsstore implements a Google Cloud Storage checkpoint backend.
//
// GCS object writes only become visible when the upload commits, so a Save
// is atomic without a rename step: readers see either the previous document
// or the new one, never a partial write.
package gcsstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/discochess/bookminer/internal/checkpoint"
	"github.com/discochess/bookminer/internal/codec"
	"github.com/discochess/bookminer/internal/state"
)

// Compile-time check that Store implements checkpoint.Store.
var _ checkpoint.Store = (*Store)(nil)

const baseName = "progress.json"

// Store is a Google Cloud Storage checkpoint backend.
type Store struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
	codec  codec.Codec
}

// New creates a new GCS store. The bucket must already exist.
func New(ctx context.Context, bucketName string, c codec.Codec, opts ...Option) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}

	s := &Store{
		client: client,
		bucket: client.Bucket(bucketName),
		codec:  c,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets a key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = strings.TrimSuffix(prefix, "/")
		if s.prefix != "" {
			s.prefix += "/"
		}
	}
}

// Load reads and decodes the checkpoint object.
func (s *Store) Load(ctx context.Context) (*state.Document, error) {
	obj := s.bucket.Object(s.key())

	reader, err := obj.NewReader(ctx)
	if err != nil {
		if err == storage.ErrObjectNotExist {
			return nil, checkpoint.ErrNotFound
		}
		return nil, fmt.Errorf("creating reader: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading checkpoint object: %w", err)
	}

	return checkpoint.Decode(data, s.codec)
}

// Save uploads the encoded document, replacing any previous checkpoint.
func (s *Store) Save(ctx context.Context, doc *state.Document) error {
	data, err := checkpoint.Encode(doc, s.codec)
	if err != nil {
		return err
	}

	w := s.bucket.Object(s.key()).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("writing checkpoint object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("committing checkpoint object: %w", err)
	}

	return nil
}

// Close releases the underlying GCS client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key() string {
	name := baseName
	if ext := s.codec.Extension(); ext != "" {
		name += "." + ext
	}
	return s.prefix + name
}
