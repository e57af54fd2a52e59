// Package inmemory provides a bounded in-memory storage driver.
package inmemory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/papercomputeco/gazetap/pkg/storage"
)

// DefaultCapacity is the number of samples retained when no capacity is given.
const DefaultCapacity = 4096

// Driver implements storage.Driver using a fixed-size ring. Once full, the
// oldest record is evicted for every new one.
type Driver struct {
	// mu is a read write sync mutex guarding the ring and index
	mu sync.RWMutex

	ring []*storage.Record

	// next is the ring slot the next record is written to
	next int
	size int

	// index maps record IDs to ring slots
	index map[uuid.UUID]int
}

// NewDriver creates a new in-memory storer retaining up to capacity records.
func NewDriver(capacity int) *Driver {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Driver{
		ring:  make([]*storage.Record, capacity),
		index: make(map[uuid.UUID]int, capacity),
	}
}

// Put stores a record. Returns false if a record with the same ID is
// already retained.
func (s *Driver) Put(_ context.Context, rec *storage.Record) (bool, error) {
	if rec == nil {
		return false, storage.ErrNilRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[rec.ID]; ok {
		return false, nil
	}

	if evicted := s.ring[s.next]; evicted != nil {
		delete(s.index, evicted.ID)
	}

	s.ring[s.next] = rec
	s.index[rec.ID] = s.next
	s.next = (s.next + 1) % len(s.ring)
	if s.size < len(s.ring) {
		s.size++
	}

	return true, nil
}

// Get retrieves a record by its ID.
func (s *Driver) Get(_ context.Context, id uuid.UUID) (*storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.index[id]
	if !ok {
		return nil, storage.NotFoundError{ID: id.String()}
	}

	return s.ring[slot], nil
}

// List returns up to limit records, most recent first.
func (s *Driver) List(_ context.Context, limit int) ([]*storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := s.size
	if limit > 0 && limit < n {
		n = limit
	}

	records := make([]*storage.Record, 0, n)
	for i := 1; i <= n; i++ {
		slot := (s.next - i + len(s.ring)) % len(s.ring)
		records = append(records, s.ring[slot])
	}

	return records, nil
}

// Count returns the number of retained records.
func (s *Driver) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size, nil
}

// Close is a no-op for the in-memory storer.
func (s *Driver) Close() error {
	return nil
}
