// ABOUTME: Generic entity store with id allocation, change versioning and durable writes
// ABOUTME: Mutations are serialized and only become visible after the backend accepted them

package store

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sort"
	"sync"
)

// Version is an opaque change token. It advances exactly once per committed
// mutation and never moves on reads.
type Version uint64

// EntityStore holds the canonical collection of entities of type T.
//
// Writers hold writeMu for the whole mutation, including the durable write,
// so ids are never double-assigned. The published map is never modified in
// place: a mutation builds a copy, persists it, and only then swaps it in
// under mu. Readers therefore see either the old or the new state.
type EntityStore[T Entity[T]] struct {
	writeMu sync.Mutex

	mu      sync.RWMutex
	items   map[int]T
	nextID  int
	version Version

	backend Backend[T]
	logger  *slog.Logger
}

// Open loads the backend's snapshot and returns a ready store. A backend that
// cannot be read or holds inconsistent data yields a *PersistenceError.
func Open[T Entity[T]](ctx context.Context, backend Backend[T]) (*EntityStore[T], error) {
	logger := slog.Default().With("component", "store", "location", backend.Location())

	snap, err := backend.Load(ctx)
	if err != nil {
		return nil, persistenceError("load", backend.Location(), err)
	}

	items := make(map[int]T, len(snap.Items))
	maxID := 0
	for _, item := range snap.Items {
		id := item.EntityID()
		if id <= 0 {
			return nil, persistenceError("load", backend.Location(), fmt.Errorf("entity with invalid id %d", id))
		}
		if _, dup := items[id]; dup {
			return nil, persistenceError("load", backend.Location(), fmt.Errorf("duplicate entity id %d", id))
		}
		items[id] = item
		maxID = max(maxID, id)
	}

	s := &EntityStore[T]{
		items:   items,
		nextID:  max(snap.NextID, maxID+1, 1),
		version: 1,
		backend: backend,
		logger:  logger,
	}

	logger.Info("entity store loaded", "count", len(items), "next_id", s.nextID)
	return s, nil
}

// List returns all entities ordered by id. The slice is a copy owned by the caller.
func (s *EntityStore[T]) List() []T {
	items, _ := s.Current()
	return items
}

// Current returns all entities ordered by id together with the version they
// belong to, read under a single lock.
func (s *EntityStore[T]) Current() ([]T, Version) {
	s.mu.RLock()
	items := s.items
	version := s.version
	s.mu.RUnlock()

	// items is never mutated after publication, so copying outside the lock is safe
	return sortedValues(items), version
}

// Get returns the entity with the given id, or ErrNotFound.
func (s *EntityStore[T]) Get(id int) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return item, nil
}

// Len returns the number of stored entities.
func (s *EntityStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Version returns the current change token.
func (s *EntityStore[T]) Version() Version {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// HasChanged reports whether any mutation committed since the caller observed since.
func (s *EntityStore[T]) HasChanged(since Version) bool {
	return s.Version() != since
}

// Add stores entity under a freshly allocated id, ignoring any id it carries,
// and returns the stored entity.
func (s *EntityStore[T]) Add(ctx context.Context, entity T) (T, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	id := s.nextID
	stored := entity.WithID(id)

	next := maps.Clone(s.items)
	next[id] = stored

	if err := s.commit(ctx, "add", next, id+1); err != nil {
		var zero T
		return zero, err
	}

	s.logger.Debug("entity added", "id", id)
	return stored, nil
}

// Update replaces the entity whose id matches entity's id. It returns
// ErrNotFound, leaving the store untouched, if no such entity exists.
func (s *EntityStore[T]) Update(ctx context.Context, entity T) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	id := entity.EntityID()
	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}

	next := maps.Clone(s.items)
	next[id] = entity

	if err := s.commit(ctx, "update", next, s.nextID); err != nil {
		return err
	}

	s.logger.Debug("entity updated", "id", id)
	return nil
}

// Delete removes the entity with the given id. Deleting an absent id is a
// no-op and does not change the version.
func (s *EntityStore[T]) Delete(ctx context.Context, id int) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, ok := s.items[id]; !ok {
		return nil
	}

	next := maps.Clone(s.items)
	delete(next, id)

	if err := s.commit(ctx, "delete", next, s.nextID); err != nil {
		return err
	}

	s.logger.Debug("entity deleted", "id", id)
	return nil
}

// Close releases the backend.
func (s *EntityStore[T]) Close() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.backend.Close()
}

// commit persists next and publishes it. Must be called with writeMu held.
// On failure nothing is published.
func (s *EntityStore[T]) commit(ctx context.Context, op string, next map[int]T, nextID int) error {
	snap := Snapshot[T]{
		NextID: nextID,
		Items:  sortedValues(next),
	}

	if err := s.backend.Save(ctx, snap); err != nil {
		s.logger.Error("durable write failed, mutation discarded", "op", op, "error", err)
		return persistenceError(op, s.backend.Location(), err)
	}

	s.mu.Lock()
	s.items = next
	s.nextID = nextID
	s.version++
	s.mu.Unlock()

	return nil
}

func sortedValues[T Entity[T]](items map[int]T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].EntityID() < out[j].EntityID()
	})
	return out
}
