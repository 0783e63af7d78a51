// Package session holds chat sessions in memory. Sessions are lost on restart.
package session

import (
	"container/list"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/24kshah/nemhem-ai/services"
)

// storeEntry represents a single session with its LRU position
type storeEntry struct {
	session *Session
	element *list.Element
}

// isExpired checks if the session has been idle longer than ttl
func (e *storeEntry) isExpired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(e.session.UpdatedAt) > ttl
}

// Store is an in-memory LRU of sessions with an idle TTL.
// Thread-safe implementation using sync.RWMutex
type Store struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*storeEntry
	lruList *list.List    // Doubly linked list for LRU tracking
	maxSize int           // Maximum number of sessions, 0 for unbounded
	ttl     time.Duration // Idle time-to-live, 0 disables expiry
	now     func() time.Time
}

// NewStore creates a new Store with specified max size and idle TTL
func NewStore(maxSize int, ttl time.Duration) *Store {
	return &Store{
		entries: make(map[uuid.UUID]*storeEntry),
		lruList: list.New(),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Create stores a new session with the given options
func (s *Store) Create(opts Options) (*Session, error) {
	opts = opts.Normalize()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	sess := &Session{
		ID:        uuid.New(),
		Options:   opts,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxSize > 0 && s.lruList.Len() >= s.maxSize {
		s.evictLRU()
	}

	entry := &storeEntry{session: sess}
	entry.element = s.lruList.PushFront(sess.ID)
	s.entries[sess.ID] = entry

	return sess.clone(), nil
}

// Get returns a snapshot of the session
func (s *Store) Get(id uuid.UUID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	s.lruList.MoveToFront(entry.element)
	return entry.session.clone(), nil
}

// UpdateOptions replaces the session options
func (s *Store) UpdateOptions(id uuid.UUID, opts Options) (*Session, error) {
	opts = opts.Normalize()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return s.mutate(id, func(sess *Session) {
		sess.Options = opts
	})
}

// Append adds messages to the session history
func (s *Store) Append(id uuid.UUID, msgs ...Message) (*Session, error) {
	return s.mutate(id, func(sess *Session) {
		for _, m := range msgs {
			if m.CreatedAt.IsZero() {
				m.CreatedAt = s.now()
			}
			sess.Messages = append(sess.Messages, m)
		}
	})
}

// Clear drops the session history and keeps its options
func (s *Store) Clear(id uuid.UUID) (*Session, error) {
	return s.mutate(id, func(sess *Session) {
		sess.Messages = []Message{}
	})
}

// Delete removes the session
func (s *Store) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookup(id); err != nil {
		return err
	}
	s.removeEntry(id)
	return nil
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lruList.Len()
}

func (s *Store) mutate(id uuid.UUID, fn func(*Session)) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	fn(entry.session)
	entry.session.UpdatedAt = s.now()
	s.lruList.MoveToFront(entry.element)
	return entry.session.clone(), nil
}

// lookup finds a live entry, dropping it if expired (must be called with lock held)
func (s *Store) lookup(id uuid.UUID) (*storeEntry, error) {
	entry, exists := s.entries[id]
	if !exists {
		return nil, services.ErrSessionNotFound
	}
	if entry.isExpired(s.now(), s.ttl) {
		s.removeEntry(id)
		return nil, services.ErrSessionNotFound
	}
	return entry, nil
}

// removeEntry removes an entry from the store (must be called with lock held)
func (s *Store) removeEntry(id uuid.UUID) {
	if entry, exists := s.entries[id]; exists {
		s.lruList.Remove(entry.element)
		delete(s.entries, id)
	}
}

// evictLRU evicts the least recently used session (must be called with lock held)
func (s *Store) evictLRU() {
	back := s.lruList.Back()
	if back == nil {
		return
	}
	s.removeEntry(back.Value.(uuid.UUID))
}

// CleanupExpired removes all expired sessions
func (s *Store) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	expired := make([]uuid.UUID, 0)
	for id, entry := range s.entries {
		if entry.isExpired(s.now(), s.ttl) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		s.removeEntry(id)
	}
	return len(expired)
}

// StartCleanupWorker periodically removes expired sessions until stopCh closes
func (s *Store) StartCleanupWorker(interval time.Duration, stopCh <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.CleanupExpired()
		case <-stopCh:
			return
		}
	}
}
