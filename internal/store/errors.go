// ABOUTME: Error taxonomy for the entity store
// ABOUTME: ErrNotFound for missing ids, PersistenceError for failed durable reads/writes

package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrPersistence matches any *PersistenceError via errors.Is
var ErrPersistence = errors.New("persistence failure")

// PersistenceError reports that the backing storage could not be read or
// written. When returned from a mutation, the in-memory state is unchanged.
type PersistenceError struct {
	Op       string // "load", "add", "update", "delete"
	Location string // backend location (file path or database path)
	Err      error
}

func (e *PersistenceError) Error() string {
	if e.Location == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Location, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrPersistence.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// persistenceError wraps err for op unless it already is a *PersistenceError.
func persistenceError(op, location string, err error) error {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Location: location, Err: err}
}
