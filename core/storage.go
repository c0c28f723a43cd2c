package core

import (
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/mohae/deepcopy"
	"github.com/spf13/cast"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Storage is the persistent key/value context handed to every task
// invocation. Keys are strings, values are heterogeneous, and iteration
// follows insertion order.
//
// Storage is deliberately unsynchronized: it is single-writer by contract.
// Only the execution loop's current task invocation mutates it, and the
// controller side must only read it while the runner is paused or dead.
// Values shared through an un-copied Storage (see WithSharedStorage) must
// be externally synchronized, e.g. channels.
type Storage struct {
	entries *orderedmap.OrderedMap[string, any]
}

// NewStorage creates an empty Storage.
func NewStorage() *Storage {
	return &Storage{entries: orderedmap.New[string, any]()}
}

// StorageFromMap creates a Storage seeded from a plain map. Keys are
// inserted in sorted order so iteration is deterministic regardless of Go's
// randomized map ordering. Values are referenced, not copied; use Clone for
// an isolated copy.
func StorageFromMap(values map[string]any) *Storage {
	s := NewStorage()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.entries.Set(k, values[k])
	}
	return s
}

// Set stores value under key, appending the key to the iteration order if
// it is new.
func (s *Storage) Set(key string, value any) {
	s.entries.Set(key, value)
}

// Get returns the value stored under key.
func (s *Storage) Get(key string) (any, bool) {
	return s.entries.Get(key)
}

// GetDefault returns the value stored under key, or fallback when the key
// is absent.
func (s *Storage) GetDefault(key string, fallback any) any {
	if v, ok := s.entries.Get(key); ok {
		return v
	}
	return fallback
}

// SetDefault stores fallback under key only when the key is absent, and
// returns the value now present.
func (s *Storage) SetDefault(key string, fallback any) any {
	if v, ok := s.entries.Get(key); ok {
		return v
	}
	s.entries.Set(key, fallback)
	return fallback
}

// Delete removes key and reports whether it was present.
func (s *Storage) Delete(key string) bool {
	_, present := s.entries.Delete(key)
	return present
}

// Len returns the number of stored keys.
func (s *Storage) Len() int {
	return s.entries.Len()
}

// Keys returns all keys in insertion order.
func (s *Storage) Keys() []string {
	keys := make([]string, 0, s.entries.Len())
	for pair := s.entries.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Range calls fn for each entry in insertion order until fn returns false.
func (s *Storage) Range(fn func(key string, value any) bool) {
	for pair := s.entries.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Snapshot returns a plain map copy of the current entries. The values are
// shared, not deep-copied.
func (s *Storage) Snapshot() map[string]any {
	out := make(map[string]any, s.entries.Len())
	for pair := s.entries.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = pair.Value
	}
	return out
}

// GetString returns the value under key converted to a string.
func (s *Storage) GetString(key string) (string, error) {
	v, ok := s.entries.Get(key)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return cast.ToStringE(v)
}

// GetInt returns the value under key converted to an int.
func (s *Storage) GetInt(key string) (int, error) {
	v, ok := s.entries.Get(key)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return cast.ToIntE(v)
}

// GetBool returns the value under key converted to a bool.
func (s *Storage) GetBool(key string) (bool, error) {
	v, ok := s.entries.Get(key)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return cast.ToBoolE(v)
}

// GetFloat64 returns the value under key converted to a float64.
func (s *Storage) GetFloat64(key string) (float64, error) {
	v, ok := s.entries.Get(key)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return cast.ToFloat64E(v)
}

// GetDuration returns the value under key converted to a time.Duration.
func (s *Storage) GetDuration(key string) (time.Duration, error) {
	v, ok := s.entries.Get(key)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return cast.ToDurationE(v)
}

// Clone returns a deep copy of the Storage, so mutations on either side
// never affect the other. It fails with ErrUncopyableStorage when any value
// holds a channel, function, or unsafe pointer anywhere in its structure.
func (s *Storage) Clone() (*Storage, error) {
	out := NewStorage()
	for pair := s.entries.Oldest(); pair != nil; pair = pair.Next() {
		if err := checkCopyable(pair.Key, reflect.ValueOf(pair.Value)); err != nil {
			return nil, err
		}
		out.entries.Set(pair.Key, deepcopy.Copy(pair.Value))
	}
	return out, nil
}

// checkCopyable walks a value and rejects kinds that deep-copy cannot
// duplicate meaningfully. Sharing such values requires WithSharedStorage.
func checkCopyable(key string, v reflect.Value) error {
	if !v.IsValid() {
		return nil
	}
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return fmt.Errorf("%w: key %q holds a %s", ErrUncopyableStorage, key, v.Kind())
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		return checkCopyable(key, v.Elem())
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if err := checkCopyable(key, iter.Key()); err != nil {
				return err
			}
			if err := checkCopyable(key, iter.Value()); err != nil {
				return err
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := checkCopyable(key, v.Index(i)); err != nil {
				return err
			}
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if err := checkCopyable(key, v.Field(i)); err != nil {
				return err
			}
		}
	}
	return nil
}
