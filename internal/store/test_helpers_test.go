// ABOUTME: Shared fixtures for store tests
// ABOUTME: A small entity type and a backend whose saves can be made to fail

package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// note is a minimal entity used across store tests.
type note struct {
	ID       int    `json:"id" yaml:"id" toml:"id"`
	Title    string `json:"title" yaml:"title" toml:"title"`
	Category string `json:"category" yaml:"category" toml:"category"`
}

func (n note) EntityID() int { return n.ID }

func (n note) WithID(id int) note {
	n.ID = id
	return n
}

var errDiskFull = errors.New("no space left on device")

// flakyBackend delegates to a MemoryBackend but fails saves while failing is set.
type flakyBackend struct {
	*MemoryBackend[note]
	failing atomic.Bool
}

func (f *flakyBackend) Save(ctx context.Context, snap Snapshot[note]) error {
	if f.failing.Load() {
		return errDiskFull
	}
	return f.MemoryBackend.Save(ctx, snap)
}

// newTestStore opens a store over a fresh in-memory backend.
func newTestStore(t *testing.T) (*EntityStore[note], *MemoryBackend[note]) {
	t.Helper()
	backend := NewMemoryBackend[note]()
	s, err := Open[note](context.Background(), backend)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, backend
}

// newFlakyStore opens a store over a backend whose saves can be failed on demand.
func newFlakyStore(t *testing.T) (*EntityStore[note], *flakyBackend) {
	t.Helper()
	backend := &flakyBackend{MemoryBackend: NewMemoryBackend[note]()}
	s, err := Open[note](context.Background(), backend)
	require.NoError(t, err)
	return s, backend
}
