// Package cache provides the key/value storages that back the customer
// manager's persisted mirrors.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
)

// Storage is a string key/value store with browser-storage semantics:
// values are opaque text, a missing key is not an error.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// ParseError reports a stored value that is not valid JSON for the target type
type ParseError struct {
	Key string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse stored value %q: %v", e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// GetJSON reads key and decodes it into T. A decode failure is returned as
// *ParseError so callers can tell it apart from storage failures.
func GetJSON[T any](ctx context.Context, s Storage, key string) (T, bool, error) {
	var out T
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return out, false, err
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, true, &ParseError{Key: key, Err: err}
	}
	return out, true, nil
}

// SetJSON encodes v and writes it under key
func SetJSON(ctx context.Context, s Storage, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return s.Set(ctx, key, string(raw))
}
