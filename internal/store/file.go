// ABOUTME: Flat-file backend writing whole snapshots with temp-file-then-rename
// ABOUTME: Accepts the legacy bare JSON array layout on load

package store

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileBackend stores a snapshot in a single file. A crash during Save leaves
// either the previous file or the new one, never a partial write.
type FileBackend[T any] struct {
	path  string
	codec Codec
	perm  os.FileMode
}

// NewFileBackend creates a backend for path using codec. The file and its
// parent directories are created on first Save.
func NewFileBackend[T any](path string, codec Codec) *FileBackend[T] {
	return &FileBackend[T]{
		path:  path,
		codec: codec,
		perm:  0644,
	}
}

// Load reads the snapshot. A missing or empty file is an empty snapshot.
func (b *FileBackend[T]) Load(ctx context.Context) (Snapshot[T], error) {
	var snap Snapshot[T]

	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return snap, nil
		}
		return snap, fmt.Errorf("reading %s: %w", b.path, err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return snap, nil
	}

	// Legacy files hold just the collection: [{"Id":1,...}]
	if b.codec.Name() == FormatJSON && trimmed[0] == '[' {
		if err := b.codec.Decode(trimmed, &snap.Items); err != nil {
			return snap, fmt.Errorf("decoding %s: %w", b.path, err)
		}
		return snap, nil
	}

	if err := b.codec.Decode(trimmed, &snap); err != nil {
		return snap, fmt.Errorf("decoding %s: %w", b.path, err)
	}
	return snap, nil
}

// Save encodes snap and atomically replaces the file.
func (b *FileBackend[T]) Save(ctx context.Context, snap Snapshot[T]) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snap.Items == nil {
		snap.Items = []T{}
	}

	data, err := b.codec.Encode(snap)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", b.codec.Name(), err)
	}

	return writeFileAtomic(b.path, data, b.perm)
}

// Location returns the file path.
func (b *FileBackend[T]) Location() string {
	return b.path
}

// Close is a no-op; the file is only open during Load and Save.
func (b *FileBackend[T]) Close() error {
	return nil
}

// writeFileAtomic writes data to a temp file next to path, syncs it and
// renames it over path.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	// The rename is already visible; a failed directory sync only weakens
	// durability across power loss, so it is not reported.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		d.Close()
	}

	return nil
}
