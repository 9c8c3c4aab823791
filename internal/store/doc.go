// Package store provides the generic, durable entity store behind bookmarkd.
//
// # Architecture
//
// EntityStore[T] owns the canonical in-memory collection, the id counter and
// the change version. Durability is delegated to a Backend:
//
//   - FileBackend: one flat file, rewritten atomically (temp file + rename)
//   - SQLiteBackend: modernc.org/sqlite, whole collection replaced per transaction
//   - MemoryBackend: process memory, for tests and throwaway instances
//
// Any type with EntityID and WithID methods can be stored:
//
//	type Bookmark struct{ ID int; Title string }
//
//	func (b Bookmark) EntityID() int             { return b.ID }
//	func (b Bookmark) WithID(id int) Bookmark    { b.ID = id; return b }
//
// # Identifiers
//
// Add ignores any id on its input and assigns the next counter value. The
// counter is saved with the collection and never goes backwards, so ids of
// deleted entities are not reused, even after a restart.
//
// # Concurrency
//
// Mutations (Add, Update, Delete) are serialized. Each builds a new map,
// saves it through the backend, and only then publishes it. Readers (List,
// Get, Current) take a read lock and see either the state before or after a
// mutation, never a mix.
//
// # Change Detection
//
// Version advances exactly once per committed mutation. Callers keep the
// last Version they rendered and poll HasChanged; there is no push channel.
//
// # File Format
//
// The file codec is picked from the extension (.json, .yaml/.yml, .toml) or
// set explicitly:
//
//	{
//	  "next_id": 3,
//	  "items": [
//	    {"id": 1, "title": "Go", "url": "https://go.dev", "category": "Lang"}
//	  ]
//	}
//
// A bare JSON array of entities is accepted on load for compatibility with
// older files; the next save rewrites it in the layout above.
//
// # Error Handling
//
//   - ErrNotFound: id not present (Get, Update)
//   - *PersistenceError: load or save failed; errors.Is(err, ErrPersistence)
//
// A failed save leaves memory exactly as it was before the call.
package store
