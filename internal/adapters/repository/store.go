// Package repository provides the key-value store that holds the seen sets
// and the admin credential, with memory, SQLite and Redis backends.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/bonusboard/pkg/metrics"
)

// Drivers accepted by Open.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Store is a string key-value store. Concurrent writers from separate
// processes race with last-write-wins semantics.
type Store interface {
	// Get returns ErrNotFound when key is absent.
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	// Remove is a no-op for absent keys.
	Remove(ctx context.Context, key string) error
	Close() error
}

// Open builds the store selected by driver.
func Open(ctx context.Context, driver string, opts ...Option) (Store, error) {
	s := settings{
		sqlitePath:  "bonusboard.db",
		redisPrefix: "bonusboard:",
	}
	for _, opt := range opts {
		opt(&s)
	}

	var (
		st  Store
		err error
	)
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverMemory:
		st = NewMemoryStore()
	case DriverSQLite:
		st, err = NewSQLiteStore(ctx, s.sqlitePath)
	case DriverRedis:
		st, err = NewRedisStore(ctx, s.redisAddr, s.redisPassword, s.redisDB, s.redisPrefix)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	if err != nil {
		return nil, err
	}
	return &instrumented{next: st}, nil
}

// instrumented counts backend failures. A missing key is not a failure.
type instrumented struct {
	next Store
}

func (i *instrumented) Get(ctx context.Context, key string) (string, error) {
	v, err := i.next.Get(ctx, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		metrics.RecordStoreError("get")
	}
	return v, err
}

func (i *instrumented) Put(ctx context.Context, key, value string) error {
	err := i.next.Put(ctx, key, value)
	if err != nil {
		metrics.RecordStoreError("put")
	}
	return err
}

func (i *instrumented) Remove(ctx context.Context, key string) error {
	err := i.next.Remove(ctx, key)
	if err != nil {
		metrics.RecordStoreError("remove")
	}
	return err
}

func (i *instrumented) Close() error { return i.next.Close() }
