// Package storage persists emitted gaze samples.
package storage

import (
	"context"

	"github.com/google/uuid"
)

// Driver defines the interface for persisting and retrieving samples in a
// storage backend.
type Driver interface {
	// Put stores a record. Returns true if the record was newly inserted,
	// false if a record with the same ID already exists.
	Put(ctx context.Context, rec *Record) (bool, error)

	// Get retrieves a record by its ID.
	Get(ctx context.Context, id uuid.UUID) (*Record, error)

	// List returns up to limit records, most recent first. A limit <= 0
	// returns every record.
	List(ctx context.Context, limit int) ([]*Record, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Close closes the store and releases any resources.
	Close() error
}
