package dedupe

import "errors"

// Option applies a configuration option to a Set.
type Option func(*Set)

// WithMaxSize caps the number of keys persisted and loaded. When maxSize <= 0
// every key is kept.
func WithMaxSize(maxSize int) Option {
	return func(s *Set) {
		s.maxSize = maxSize
	}
}

// WithStore persists the set under key in store.
func WithStore(store Store, key string) Option {
	return func(s *Set) {
		s.store = store
		s.storageKey = key
	}
}

// Sentinel errors.
var (
	ErrCorrupt = errors.New("seen set payload corrupt")
	ErrPersist = errors.New("seen set persist failed")
)
