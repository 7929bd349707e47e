package tether

import (
	"errors"
	"regexp"
	"slices"
	"strings"
	"sync"
)

// pairSeparator divides the key from the value of one map token.
const pairSeparator = "|"

var splitters sync.Map // split expression -> *regexp.Regexp

func splitter(expr string) (*regexp.Regexp, error) {
	if re, ok := splitters.Load(expr); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	actual, _ := splitters.LoadOrStore(expr, re)
	return actual.(*regexp.Regexp), nil
}

func missing(key string) error {
	return &ValueError{Key: key, Code: ErrCodeRequired}
}

func convert[T any](key, raw string, conv Converter[T]) (T, error) {
	v, err := conv(raw)
	if err != nil {
		var zero T
		return zero, &ValueError{Key: key, Raw: raw, Code: ErrCodeInvalidType, Cause: err}
	}
	return v, nil
}

func tokens(key, raw, split string) ([]string, error) {
	re, err := splitter(split)
	if err != nil {
		return nil, &ValueError{Key: key, Raw: split, Code: ErrCodeInvalidSplit, Cause: err}
	}
	return re.Split(raw, -1), nil
}

func convertList[T any](key, raw, split string, conv Converter[T]) ([]T, error) {
	parts, err := tokens(key, raw, split)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(parts))
	for _, part := range parts {
		v, err := convert(key, part, conv)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func toSet[T comparable](values []T) Set[T] {
	s := make(Set[T], len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func toSortedSet[T any](values []T, cmp func(a, b T) int) SortedSet[T] {
	sorted := slices.Clone(values)
	slices.SortStableFunc(sorted, cmp)
	sorted = slices.CompactFunc(sorted, func(a, b T) bool { return cmp(a, b) == 0 })
	return SortedSet[T](sorted)
}

func convertMap[K comparable, V any](key, raw, split string, kconv Converter[K], vconv Converter[V]) (map[K]V, error) {
	parts, err := tokens(key, raw, split)
	if err != nil {
		return nil, err
	}
	out := make(map[K]V, len(parts))
	for _, part := range parts {
		rk, rv, ok := strings.Cut(part, pairSeparator)
		if !ok {
			return nil, &ValueError{Key: key, Raw: part, Code: ErrCodeInvalidType, Cause: errors.New("missing '|' between key and value")}
		}
		k, err := convert(key, rk, kconv)
		if err != nil {
			return nil, err
		}
		if _, dup := out[k]; dup {
			return nil, &ValueError{Key: key, Raw: raw, Code: ErrCodeDuplicateKey, Cause: errors.New("repeated key " + rk)}
		}
		v, err := convert(key, rv, vconv)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func toSortedMap[K comparable, V any](m map[K]V, cmp func(a, b K) int) SortedMap[K, V] {
	out := make(SortedMap[K, V], 0, len(m))
	for k, v := range m {
		out = append(out, Entry[K, V]{Key: k, Value: v})
	}
	slices.SortFunc(out, func(a, b Entry[K, V]) int { return cmp(a.Key, b.Key) })
	return out
}

// Get returns the converted value of key, failing when it is absent.
func Get[T any](p Lookup, conv Converter[T], key string) (T, error) {
	raw, ok := p.Lookup(key)
	if !ok {
		var zero T
		return zero, missing(key)
	}
	return convert(key, raw, conv)
}

// GetDefault returns the converted value of key, or of def when key is absent.
func GetDefault[T any](p Lookup, conv Converter[T], key, def string) (T, error) {
	raw, ok := p.Lookup(key)
	if !ok {
		raw = def
	}
	return convert(key, raw, conv)
}

// GetOptional returns the converted value of key, or an absent Optional.
func GetOptional[T any](p Lookup, conv Converter[T], key string) (Optional[T], error) {
	raw, ok := p.Lookup(key)
	if !ok {
		return None[T](), nil
	}
	v, err := convert(key, raw, conv)
	if err != nil {
		return None[T](), err
	}
	return Some(v), nil
}

// GetList splits the value of key and converts every token, keeping order
// and duplicates.
func GetList[T any](p Lookup, conv Converter[T], key, split string) ([]T, error) {
	raw, ok := p.Lookup(key)
	if !ok {
		return nil, missing(key)
	}
	return convertList(key, raw, split, conv)
}

// GetListDefault is GetList with def as the raw text of an absent key.
func GetListDefault[T any](p Lookup, conv Converter[T], key, split, def string) ([]T, error) {
	raw, ok := p.Lookup(key)
	if !ok {
		raw = def
	}
	return convertList(key, raw, split, conv)
}

// GetOptionalList is GetList returning an absent Optional for an absent key.
func GetOptionalList[T any](p Lookup, conv Converter[T], key, split string) (Optional[[]T], error) {
	raw, ok := p.Lookup(key)
	if !ok {
		return None[[]T](), nil
	}
	list, err := convertList(key, raw, split, conv)
	if err != nil {
		return None[[]T](), err
	}
	return Some(list), nil
}

// GetSet is GetList with duplicates removed.
func GetSet[T comparable](p Lookup, conv Converter[T], key, split string) (Set[T], error) {
	list, err := GetList(p, conv, key, split)
	if err != nil {
		return nil, err
	}
	return toSet(list), nil
}

// GetSetDefault is GetListDefault with duplicates removed.
func GetSetDefault[T comparable](p Lookup, conv Converter[T], key, split, def string) (Set[T], error) {
	list, err := GetListDefault(p, conv, key, split, def)
	if err != nil {
		return nil, err
	}
	return toSet(list), nil
}

// GetOptionalSet is GetOptionalList with duplicates removed.
func GetOptionalSet[T comparable](p Lookup, conv Converter[T], key, split string) (Optional[Set[T]], error) {
	list, err := GetOptionalList(p, conv, key, split)
	if err != nil || !list.Set {
		return None[Set[T]](), err
	}
	return Some(toSet(list.Value)), nil
}

// GetSortedSet is GetSet ordered by cmp.
func GetSortedSet[T any](p Lookup, conv Converter[T], key, split string, cmp func(a, b T) int) (SortedSet[T], error) {
	list, err := GetList(p, conv, key, split)
	if err != nil {
		return nil, err
	}
	return toSortedSet(list, cmp), nil
}

// GetSortedSetDefault is GetSetDefault ordered by cmp.
func GetSortedSetDefault[T any](p Lookup, conv Converter[T], key, split, def string, cmp func(a, b T) int) (SortedSet[T], error) {
	list, err := GetListDefault(p, conv, key, split, def)
	if err != nil {
		return nil, err
	}
	return toSortedSet(list, cmp), nil
}

// GetOptionalSortedSet is GetOptionalSet ordered by cmp.
func GetOptionalSortedSet[T any](p Lookup, conv Converter[T], key, split string, cmp func(a, b T) int) (Optional[SortedSet[T]], error) {
	list, err := GetOptionalList(p, conv, key, split)
	if err != nil || !list.Set {
		return None[SortedSet[T]](), err
	}
	return Some(toSortedSet(list.Value, cmp)), nil
}

// GetMap splits the value of key into key|value tokens. A repeated entry
// key fails with ErrDuplicateKey.
func GetMap[K comparable, V any](p Lookup, kconv Converter[K], vconv Converter[V], key, split string) (map[K]V, error) {
	raw, ok := p.Lookup(key)
	if !ok {
		return nil, missing(key)
	}
	return convertMap(key, raw, split, kconv, vconv)
}

// GetMapDefault is GetMap with def as the raw text of an absent key.
func GetMapDefault[K comparable, V any](p Lookup, kconv Converter[K], vconv Converter[V], key, split, def string) (map[K]V, error) {
	raw, ok := p.Lookup(key)
	if !ok {
		raw = def
	}
	return convertMap(key, raw, split, kconv, vconv)
}

// GetOptionalMap is GetMap returning an absent Optional for an absent key.
func GetOptionalMap[K comparable, V any](p Lookup, kconv Converter[K], vconv Converter[V], key, split string) (Optional[map[K]V], error) {
	raw, ok := p.Lookup(key)
	if !ok {
		return None[map[K]V](), nil
	}
	m, err := convertMap(key, raw, split, kconv, vconv)
	if err != nil {
		return None[map[K]V](), err
	}
	return Some(m), nil
}

// GetSortedMap is GetMap ordered by cmp on the entry keys.
func GetSortedMap[K comparable, V any](p Lookup, kconv Converter[K], vconv Converter[V], key, split string, cmp func(a, b K) int) (SortedMap[K, V], error) {
	m, err := GetMap(p, kconv, vconv, key, split)
	if err != nil {
		return nil, err
	}
	return toSortedMap(m, cmp), nil
}

// GetSortedMapDefault is GetMapDefault ordered by cmp on the entry keys.
func GetSortedMapDefault[K comparable, V any](p Lookup, kconv Converter[K], vconv Converter[V], key, split, def string, cmp func(a, b K) int) (SortedMap[K, V], error) {
	m, err := GetMapDefault(p, kconv, vconv, key, split, def)
	if err != nil {
		return nil, err
	}
	return toSortedMap(m, cmp), nil
}

// GetOptionalSortedMap is GetOptionalMap ordered by cmp on the entry keys.
func GetOptionalSortedMap[K comparable, V any](p Lookup, kconv Converter[K], vconv Converter[V], key, split string, cmp func(a, b K) int) (Optional[SortedMap[K, V]], error) {
	m, err := GetOptionalMap(p, kconv, vconv, key, split)
	if err != nil || !m.Set {
		return None[SortedMap[K, V]](), err
	}
	return Some(toSortedMap(m.Value, cmp)), nil
}
