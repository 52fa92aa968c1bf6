// Package dedupe provides the insertion-ordered key sets that make
// notifications one-shot. Sets can be loaded from and persisted to any
// key-value store as a JSON array, oldest key first. The cap applies to the
// persisted copy only; a running set never forgets a key on its own.
package dedupe

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
)

const defaultMaxSize = 800

// Store is the slice of a key-value store a Set needs for persistence.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
}

// node is one entry of the insertion-ordered list.
type node struct {
	key        string
	prev, next *node
}

// Set is a set of keys that remembers insertion order. Persist and Load keep
// only the newest maxSize keys.
type Set struct {
	mu      sync.Mutex
	index   map[string]*node
	oldest  *node
	newest  *node
	maxSize int // persisted keys; 0 or negative = all
	size    atomic.Int64

	store      Store
	storageKey string
}

// New creates an empty Set.
func New(opts ...Option) *Set {
	s := &Set{
		index:   make(map[string]*node),
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Contains reports whether key is in the set.
func (s *Set) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[key]
	return ok
}

// Add inserts key and reports whether it was absent.
func (s *Set) Add(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(key)
}

// SeenAndRecord atomically checks for id and records it if absent.
// It returns true when id was already present.
func (s *Set) SeenAndRecord(_ context.Context, id string) bool {
	return !s.Add(id)
}

// Unrecord removes id from the set.
func (s *Set) Unrecord(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.index[id]; ok {
		s.unlinkLocked(n)
	}
}

// EvictOldest removes and returns the oldest key.
func (s *Set) EvictOldest() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.oldest == nil {
		return "", false
	}
	key := s.oldest.key
	s.unlinkLocked(s.oldest)
	return key, true
}

// Keys returns the keys oldest first.
func (s *Set) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.index))
	for n := s.oldest; n != nil; n = n.next {
		out = append(out, n.key)
	}
	return out
}

// Size returns the number of keys held.
func (s *Set) Size() int64 {
	return s.size.Load()
}

// Load replaces the in-memory keys with the persisted array. A missing or
// unreadable value leaves the set empty and is not an error; only a
// malformed payload is reported.
func (s *Set) Load(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	raw, err := s.store.Get(ctx, s.storageKey)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = make(map[string]*node)
	s.oldest, s.newest = nil, nil
	s.size.Store(0)

	if err != nil || raw == "" {
		return nil //nolint:nilerr // absent storage means an empty set
	}
	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCorrupt, s.storageKey, err)
	}
	for _, k := range s.trim(keys) {
		s.addLocked(k)
	}
	return nil
}

// Persist writes the newest maxSize keys, oldest first, to the store.
func (s *Set) Persist(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	b, err := json.Marshal(s.trim(s.Keys()))
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, s.storageKey, string(b)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPersist, s.storageKey, err)
	}
	return nil
}

// StorageKey is the key the set persists under.
func (s *Set) StorageKey() string { return s.storageKey }

// trim cuts keys, ordered oldest first, to the last maxSize entries.
func (s *Set) trim(keys []string) []string {
	if s.maxSize > 0 && len(keys) > s.maxSize {
		return keys[len(keys)-s.maxSize:]
	}
	return keys
}

func (s *Set) addLocked(key string) bool {
	if _, ok := s.index[key]; ok {
		return false
	}
	n := &node{key: key, prev: s.newest}
	if s.newest != nil {
		s.newest.next = n
	} else {
		s.oldest = n
	}
	s.newest = n
	s.index[key] = n
	s.size.Add(1)
	return true
}

func (s *Set) unlinkLocked(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		s.oldest = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		s.newest = n.prev
	}
	n.prev, n.next = nil, nil
	delete(s.index, n.key)
	s.size.Add(-1)
}
