// ABOUTME: Tests for the SQLite backend
// ABOUTME: Covers schema creation, restart round trips and the persisted id counter

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLiteBackend_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "bookmarks.db")

	backend, err := NewSQLiteBackend[note](dbPath)
	require.NoError(t, err)
	defer backend.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "database file was not created in nested directory")
}

func TestSQLiteBackend_EmptyLoad(t *testing.T) {
	backend, err := NewSQLiteBackend[note](filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	defer backend.Close()

	snap, err := backend.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, snap.NextID)
	assert.Empty(t, snap.Items)
}

func TestSQLiteBackend_RestartRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bookmarks.db")
	ctx := context.Background()

	backend, err := NewSQLiteBackend[note](dbPath)
	require.NoError(t, err)

	s, err := Open[note](ctx, backend)
	require.NoError(t, err)

	for _, title := range []string{"a", "b", "c"} {
		_, err := s.Add(ctx, note{Title: title, Category: "x"})
		require.NoError(t, err)
	}
	require.NoError(t, s.Delete(ctx, 3))
	before := s.List()
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteBackend[note](dbPath)
	require.NoError(t, err)

	restarted, err := Open[note](ctx, reopened)
	require.NoError(t, err)
	defer restarted.Close()

	assert.Equal(t, before, restarted.List())

	stored, err := restarted.Add(ctx, note{Title: "d"})
	require.NoError(t, err)
	assert.Equal(t, 4, stored.ID)
}

func TestSQLiteBackend_SaveReplacesCollection(t *testing.T) {
	backend, err := NewSQLiteBackend[note](filepath.Join(t.TempDir(), "replace.db"))
	require.NoError(t, err)
	defer backend.Close()
	ctx := context.Background()

	require.NoError(t, backend.Save(ctx, Snapshot[note]{
		NextID: 3,
		Items:  []note{{ID: 1, Title: "one"}, {ID: 2, Title: "two"}},
	}))
	require.NoError(t, backend.Save(ctx, Snapshot[note]{
		NextID: 4,
		Items:  []note{{ID: 3, Title: "three"}},
	}))

	snap, err := backend.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, snap.NextID)
	assert.Equal(t, []note{{ID: 3, Title: "three"}}, snap.Items)
}

func TestSQLiteBackend_CanceledSaveKeepsPreviousState(t *testing.T) {
	backend, err := NewSQLiteBackend[note](filepath.Join(t.TempDir(), "cancel.db"))
	require.NoError(t, err)
	defer backend.Close()

	require.NoError(t, backend.Save(context.Background(), Snapshot[note]{
		NextID: 2,
		Items:  []note{{ID: 1, Title: "kept"}},
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = backend.Save(ctx, Snapshot[note]{NextID: 3, Items: []note{{ID: 2, Title: "dropped"}}})
	assert.Error(t, err)

	snap, err := backend.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, snap.NextID)
	assert.Equal(t, []note{{ID: 1, Title: "kept"}}, snap.Items)
}

func TestSQLiteBackend_InMemory(t *testing.T) {
	backend, err := NewSQLiteBackend[note](":memory:")
	require.NoError(t, err)
	defer backend.Close()

	s, err := Open[note](context.Background(), backend)
	require.NoError(t, err)

	_, err = s.Add(context.Background(), note{Title: "ephemeral"})
	require.NoError(t, err)

	snap, err := backend.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Items, 1)
}
