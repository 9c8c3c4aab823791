// ABOUTME: Backend abstraction for durable entity storage
// ABOUTME: Defines the Entity constraint, Snapshot document and Backend interface

package store

import "context"

// Entity is the constraint for values held by an EntityStore. The store owns
// id assignment, so entities only need to report and accept an id.
type Entity[T any] interface {
	EntityID() int
	WithID(id int) T
}

// Snapshot is the durable representation of a store: the id counter plus one
// top-level collection of entities.
type Snapshot[T any] struct {
	NextID int `json:"next_id" yaml:"next_id" toml:"next_id"`
	Items  []T `json:"items" yaml:"items" toml:"items"`
}

// Backend persists whole snapshots. Save must be all-or-nothing: after a
// failed Save, Load returns the previously saved snapshot.
type Backend[T any] interface {
	// Load returns the last saved snapshot, or an empty one if nothing was saved yet.
	Load(ctx context.Context) (Snapshot[T], error)

	// Save atomically replaces the durable snapshot.
	Save(ctx context.Context, snap Snapshot[T]) error

	// Location describes where the data lives, for logs and errors.
	Location() string

	// Close releases any resources held by the backend
	Close() error
}
