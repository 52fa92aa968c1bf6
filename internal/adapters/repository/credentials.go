package repository

import (
	"context"
	"errors"
	"strings"
)

// AdminKeyName is the store key holding the admin credential.
const AdminKeyName = "ADMIN_KEY"

// AdminKey returns the stored admin key, or "" when none is set.
func AdminKey(ctx context.Context, s Store) (string, error) {
	v, err := s.Get(ctx, AdminKeyName)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}

// SetAdminKey stores key verbatim after trimming whitespace. An empty key
// clears the credential.
func SetAdminKey(ctx context.Context, s Store, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ClearAdminKey(ctx, s)
	}
	return s.Put(ctx, AdminKeyName, key)
}

// ClearAdminKey removes the stored credential.
func ClearAdminKey(ctx context.Context, s Store) error {
	return s.Remove(ctx, AdminKeyName)
}
