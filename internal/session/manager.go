// ABOUTME: Thread-safe, TTL-based, size-limited store of per-visitor session state
// ABOUTME: Replaces ambient session dictionaries with explicit State values

package session

import (
	"container/list"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/2389/bookmarkd/internal/bookmark"
	"github.com/2389/bookmarkd/internal/store"
)

// State is everything the web layer remembers about one visitor.
type State struct {
	// CurrentID is the bookmark last opened in the details view. Edit and
	// delete act on it instead of an id supplied by the client.
	CurrentID    int
	CurrentTitle string

	Query bookmark.Query

	// SeenVersion is the store version the visitor's list was last rendered from.
	SeenVersion store.Version
}

// NewState returns the state of a visitor that has not done anything yet.
func NewState() State {
	return State{Query: bookmark.DefaultQuery()}
}

// ClearCurrent forgets the current bookmark.
func (s State) ClearCurrent() State {
	s.CurrentID = 0
	s.CurrentTitle = ""
	return s
}

// entry stores a session's state, last access time and list element.
type entry struct {
	state    State
	lastSeen time.Time
	element  *list.Element
}

// Manager keeps session state in memory. Sessions expire after ttl without
// access; when maxSize is reached the least recently used session is evicted.
// Uses a doubly-linked list ordered by last access for O(1) eviction.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry
	order    *list.List // session ids, least recently used at front
	ttl      time.Duration
	maxSize  int
	now      func() time.Time
	done     chan struct{}
	closed   bool
}

// NewManager creates a Manager. A background goroutine periodically removes
// expired sessions until Close is called.
func NewManager(ttl time.Duration, maxSize int) *Manager {
	m := &Manager{
		sessions: make(map[string]*entry),
		order:    list.New(),
		ttl:      ttl,
		maxSize:  maxSize,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	go m.cleanup()
	return m
}

// Create starts a new session and returns its id.
func (m *Manager) Create() (string, State) {
	id := uuid.New().String()
	state := NewState()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxSize > 0 && len(m.sessions) >= m.maxSize {
		m.evictOldest()
	}

	elem := m.order.PushBack(id)
	m.sessions[id] = &entry{
		state:    state,
		lastSeen: m.now(),
		element:  elem,
	}
	return id, state
}

// Get returns the session's state and refreshes its expiry.
func (m *Manager) Get(id string) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.liveLocked(id)
	if !ok {
		return State{}, false
	}
	m.touchLocked(e)
	return e.state, true
}

// Update replaces the session's state with fn's result, atomically with
// respect to other updates of the same session. It returns false if the
// session does not exist or has expired.
func (m *Manager) Update(id string, fn func(State) State) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.liveLocked(id)
	if !ok {
		return State{}, false
	}
	e.state = fn(e.state)
	m.touchLocked(e)
	return e.state, true
}

// Delete ends a session.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.sessions[id]; ok {
		m.order.Remove(e.element)
		delete(m.sessions, id)
	}
}

// Len returns the number of sessions held, including expired ones not yet cleaned up.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// liveLocked returns the entry for id if it exists and has not expired.
// Must be called with mu held.
func (m *Manager) liveLocked(id string) (*entry, bool) {
	e, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	if m.now().Sub(e.lastSeen) >= m.ttl {
		m.order.Remove(e.element)
		delete(m.sessions, id)
		return nil, false
	}
	return e, true
}

// touchLocked marks e as just used. Must be called with mu held.
func (m *Manager) touchLocked(e *entry) {
	e.lastSeen = m.now()
	m.order.MoveToBack(e.element)
}

// evictOldest removes the least recently used session.
// Must be called with mu held.
func (m *Manager) evictOldest() {
	front := m.order.Front()
	if front == nil {
		return
	}

	id, _ := front.Value.(string)
	m.order.Remove(front)
	delete(m.sessions, id)
}

// cleanup runs in a background goroutine, periodically removing expired sessions.
func (m *Manager) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.runCleanup()
		case <-m.done:
			return
		}
	}
}

// runCleanup removes all expired sessions. The access list is ordered by
// last use, so it stops at the first live session.
func (m *Manager) runCleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for front := m.order.Front(); front != nil; front = m.order.Front() {
		id, _ := front.Value.(string)
		e := m.sessions[id]
		if now.Sub(e.lastSeen) < m.ttl {
			return
		}
		m.order.Remove(front)
		delete(m.sessions, id)
	}
}

// Close stops the background cleanup goroutine. It is safe to call multiple times.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		close(m.done)
		m.closed = true
	}
}
