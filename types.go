package tether

import (
	"context"
	"net/url"
	"reflect"
	"strings"
)

// Loader reads one kind of configuration location into a flat key/value map.
//
// Implementations must never fail past their own boundary: an unreadable,
// missing or malformed location yields an empty map plus a logged diagnostic.
type Loader interface {
	// Accept reports whether this loader understands the location.
	Accept(loc *url.URL) bool

	// Load returns the key/value pairs stored at the location.
	Load(ctx context.Context, loc *url.URL) map[string]string
}

// Lookup is the read side of a key/value store consumed by the resolution engine.
type Lookup interface {
	Lookup(key string) (string, bool)
}

// Map adapts a plain map to Lookup.
type Map map[string]string

// Lookup returns the value stored under key.
func (m Map) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Optional distinguishes "not set" from "zero value".
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the wrapped value and whether it was set.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Set
}

// OrDefault returns the wrapped value or the provided default.
func (o Optional[T]) OrDefault(defaultVal T) T {
	if o.Set {
		return o.Value
	}
	return defaultVal
}

// Set is an unordered collection of distinct values.
type Set[T comparable] map[T]struct{}

// Has reports whether v is a member of the set.
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// Len returns the number of members.
func (s Set[T]) Len() int { return len(s) }

// SortedSet holds distinct values in ascending order.
type SortedSet[T any] []T

// Len returns the number of members.
func (s SortedSet[T]) Len() int { return len(s) }

// Entry is one key/value pair of a SortedMap.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// SortedMap holds key/value pairs in ascending key order with distinct keys.
type SortedMap[K comparable, V any] []Entry[K, V]

// Get returns the value stored under k.
func (m SortedMap[K, V]) Get(k K) (V, bool) {
	for _, e := range m {
		if e.Key == k {
			return e.Value, true
		}
	}
	var zero V
	return zero, false
}

// Keys returns the keys in ascending order.
func (m SortedMap[K, V]) Keys() []K {
	keys := make([]K, len(m))
	for i, e := range m {
		keys[i] = e.Key
	}
	return keys
}

// Len returns the number of entries.
func (m SortedMap[K, V]) Len() int { return len(m) }

var shapePkgPath = reflect.TypeOf(Map(nil)).PkgPath()

// isShape reports whether t is an instantiation of the generic type named
// generic declared in this package.
func isShape(t reflect.Type, generic string) bool {
	return t.PkgPath() == shapePkgPath && strings.HasPrefix(t.Name(), generic+"[")
}
