// Package store implements the durable collection abstraction every entity
// kind persists through: a JSON file per collection, serialized writers, and
// atomic replace-on-write so readers never observe a torn file.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/multierr"
)

var (
	// ErrStorageUnavailable signals the backing file could not be read or
	// written for a reason other than first use.
	ErrStorageUnavailable = errors.New("store: storage unavailable")
	// ErrNotFound signals an update target that does not exist.
	ErrNotFound = errors.New("store: record not found")
	// ErrDuplicateKey signals an insert whose id is already taken.
	ErrDuplicateKey = errors.New("store: duplicate key")
)

// Record is the minimal shape every persisted entity exposes.
type Record interface {
	RecordID() string
}

// Meta carries the identity and bookkeeping fields embedded by every model.
// The id is always supplied by the caller before insertion; the store only
// ever stamps UpdatedAt, and only on Update.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RecordID implements Record.
func (m Meta) RecordID() string { return m.ID }

// SetUpdatedAt is invoked by the store after a successful patch.
func (m *Meta) SetUpdatedAt(at time.Time) { m.UpdatedAt = at }

type timestamped interface {
	SetUpdatedAt(time.Time)
}

// Observer receives a callback per store operation, for metrics.
type Observer interface {
	ObserveOp(collection, op string, err error)
}

type options struct {
	observer Observer
}

// Option customizes a Store.
type Option func(*options)

// WithObserver wires operation metrics into the store.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// Store is a file-backed collection of records of one kind. Mutations are
// serialized on a per-collection lock; reads decode a fresh snapshot from
// disk, so callers always hold value copies and never alias live state.
type Store[T Record] struct {
	name string
	path string
	mu   sync.RWMutex
	obs  Observer
}

// New builds a store persisting the named collection at path.
func New[T Record](name, path string, opts ...Option) *Store[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{name: name, path: path, obs: o.observer}
}

// Name returns the collection name.
func (s *Store[T]) Name() string { return s.name }

// Load returns the full collection in storage order. On first use the backing
// file is created with an empty collection.
func (s *Store[T]) Load(ctx context.Context) ([]T, error) {
	items, err := s.read(ctx)
	s.observe("load", err)
	return items, err
}

// Find returns the first record matching pred in storage order. A miss is
// reported through the boolean, not as an error.
func (s *Store[T]) Find(ctx context.Context, pred func(T) bool) (T, bool, error) {
	var zero T
	items, err := s.read(ctx)
	s.observe("find", err)
	if err != nil {
		return zero, false, err
	}
	for _, item := range items {
		if pred(item) {
			return item, true, nil
		}
	}
	return zero, false, nil
}

// Filter returns every record matching pred, preserving storage order.
func (s *Store[T]) Filter(ctx context.Context, pred func(T) bool) ([]T, error) {
	items, err := s.read(ctx)
	s.observe("filter", err)
	if err != nil {
		return nil, err
	}
	matches := make([]T, 0, len(items))
	for _, item := range items {
		if pred(item) {
			matches = append(matches, item)
		}
	}
	return matches, nil
}

// FindByID returns the record with the given id.
func (s *Store[T]) FindByID(ctx context.Context, id string) (T, bool, error) {
	return s.Find(ctx, func(item T) bool { return item.RecordID() == id })
}

// Insert appends the record and persists the collection. Records whose id is
// already present are rejected with ErrDuplicateKey.
func (s *Store[T]) Insert(ctx context.Context, record T) error {
	err := s.insert(ctx, record)
	s.observe("insert", err)
	return err
}

func (s *Store[T]) insert(ctx context.Context, record T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.readLocked()
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.RecordID() == record.RecordID() {
			return fmt.Errorf("%w: %s %q", ErrDuplicateKey, s.name, record.RecordID())
		}
	}
	return s.persist(append(items, record))
}

// Update locates the record by id, applies the patch callback to it, stamps
// UpdatedAt, persists the collection, and returns the updated record. Fields
// the callback does not touch are preserved.
func (s *Store[T]) Update(ctx context.Context, id string, apply func(*T)) (T, error) {
	record, err := s.update(ctx, id, apply)
	s.observe("update", err)
	return record, err
}

func (s *Store[T]) update(ctx context.Context, id string, apply func(*T)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.readLocked()
	if err != nil {
		return zero, err
	}

	idx := -1
	for i, item := range items {
		if item.RecordID() == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return zero, fmt.Errorf("%w: %s %q", ErrNotFound, s.name, id)
	}

	apply(&items[idx])
	if rec, ok := any(&items[idx]).(timestamped); ok {
		rec.SetUpdatedAt(time.Now().UTC())
	}

	if err := s.persist(items); err != nil {
		return zero, err
	}
	return items[idx], nil
}

func (s *Store[T]) read(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	raw, err := os.ReadFile(s.path)
	s.mu.RUnlock()

	if errors.Is(err, os.ErrNotExist) {
		// First use: initialize the collection under the write lock, checking
		// again in case a concurrent caller beat us to it.
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, statErr := os.Stat(s.path); errors.Is(statErr, os.ErrNotExist) {
			if initErr := s.persist([]T{}); initErr != nil {
				return nil, initErr
			}
		}
		return s.readLocked()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrStorageUnavailable, s.path, err)
	}
	return s.decode(raw)
}

// readLocked re-reads the collection while the write lock is held.
func (s *Store[T]) readLocked() ([]T, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		if initErr := s.persist([]T{}); initErr != nil {
			return nil, initErr
		}
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrStorageUnavailable, s.path, err)
	}
	return s.decode(raw)
}

func (s *Store[T]) decode(raw []byte) ([]T, error) {
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrStorageUnavailable, s.path, err)
	}
	return items, nil
}

// persist writes the whole collection to a temp file and renames it over the
// live one, so a crash mid-write leaves the previous snapshot intact.
func (s *Store[T]) persist(items []T) error {
	buf, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrStorageUnavailable, s.name, err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: stage %s: %v", ErrStorageUnavailable, s.path, err)
	}

	_, writeErr := tmp.Write(buf)
	if writeErr == nil {
		writeErr = tmp.Sync()
	}
	closeErr := tmp.Close()
	if err := multierr.Append(writeErr, closeErr); err != nil {
		err = multierr.Append(err, os.Remove(tmp.Name()))
		return fmt.Errorf("%w: stage %s: %v", ErrStorageUnavailable, s.path, err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		err = multierr.Append(err, os.Remove(tmp.Name()))
		return fmt.Errorf("%w: replace %s: %v", ErrStorageUnavailable, s.path, err)
	}
	return nil
}

func (s *Store[T]) observe(op string, err error) {
	if s.obs != nil {
		s.obs.ObserveOp(s.name, op, err)
	}
}
