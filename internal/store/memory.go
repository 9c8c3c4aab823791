// ABOUTME: In-memory Backend implementation for tests and ephemeral stores
// ABOUTME: Keeps a private copy of the last saved snapshot

package store

import (
	"context"
	"sync"
)

// MemoryBackend keeps the saved snapshot in process memory. Nothing survives
// a restart; it is used for tests and the "memory" storage backend.
type MemoryBackend[T any] struct {
	mu    sync.RWMutex
	snap  Snapshot[T]
	saves int
}

// NewMemoryBackend creates a MemoryBackend, optionally seeded with snap.
func NewMemoryBackend[T any](seed ...Snapshot[T]) *MemoryBackend[T] {
	m := &MemoryBackend[T]{}
	if len(seed) > 0 {
		m.snap = copySnapshot(seed[0])
	}
	return m
}

// Load returns a copy of the last saved snapshot.
func (m *MemoryBackend[T]) Load(ctx context.Context) (Snapshot[T], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copySnapshot(m.snap), nil
}

// Save stores a copy of snap.
func (m *MemoryBackend[T]) Save(ctx context.Context, snap Snapshot[T]) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = copySnapshot(snap)
	m.saves++
	return nil
}

// Saves returns how many snapshots were saved.
func (m *MemoryBackend[T]) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

// Location identifies the backend in logs.
func (m *MemoryBackend[T]) Location() string {
	return ":memory:"
}

// Close is a no-op.
func (m *MemoryBackend[T]) Close() error {
	return nil
}

func copySnapshot[T any](snap Snapshot[T]) Snapshot[T] {
	out := Snapshot[T]{NextID: snap.NextID}
	if snap.Items != nil {
		out.Items = make([]T, len(snap.Items))
		copy(out.Items, snap.Items)
	}
	return out
}
