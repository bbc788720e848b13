package databases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// maxUpdateAttempts bounds the optimistic retries of Update
const maxUpdateAttempts = 10

// ErrConflict is returned when an atomic update kept losing against concurrent writers
var ErrConflict = errors.New("concurrent update conflict")

// UpdateFunc receives the current raw value of a key and returns the value to
// store. Returning a nil slice leaves the key untouched; returning an error
// aborts the update and the error is passed through.
type UpdateFunc func(current []byte, found bool) ([]byte, error)

// KeyValueStore is the persistent key/value storage every record lives in.
// Values are JSON documents.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	// Update runs an atomic read-modify-write on a single key
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Delete(ctx context.Context, key string) error
}

// GetJSON decodes the value stored under key into v. found is false when the key
// is missing, in which case v is left as the caller's default.
func GetJSON(ctx context.Context, s KeyValueStore, key string, v interface{}) (bool, error) {
	raw, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key
func SetJSON(ctx context.Context, s KeyValueStore, key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Set(ctx, key, b)
}

// UpdateJSON runs an atomic read-modify-write over a JSON value. fn gets the
// decoded value (zero value when missing) and returns whether it changed.
func UpdateJSON[T any](ctx context.Context, s KeyValueStore, key string, fn func(v *T, found bool) (bool, error)) error {
	return s.Update(ctx, key, func(current []byte, found bool) ([]byte, error) {
		v := new(T)
		if found {
			if err := json.Unmarshal(current, v); err != nil {
				return nil, fmt.Errorf("failed to decode %s: %w", key, err)
			}
		}
		changed, err := fn(v, found)
		if err != nil || !changed {
			return nil, err
		}
		return json.Marshal(v)
	})
}

type scopedStore struct {
	KeyValueStore
	prefix string
}

// Scoped returns a view of s whose keys belong to a single client session, the
// way each browser used to own its own storage.
func Scoped(s KeyValueStore, clientID string) KeyValueStore {
	return &scopedStore{KeyValueStore: s, prefix: "session_" + clientID + ":"}
}

func (s *scopedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.KeyValueStore.Get(ctx, s.prefix+key)
}

func (s *scopedStore) Set(ctx context.Context, key string, value []byte) error {
	return s.KeyValueStore.Set(ctx, s.prefix+key, value)
}

func (s *scopedStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	return s.KeyValueStore.Update(ctx, s.prefix+key, fn)
}

func (s *scopedStore) Delete(ctx context.Context, key string) error {
	return s.KeyValueStore.Delete(ctx, s.prefix+key)
}
