package tether

import (
	"maps"
	"slices"
)

// OverridesLocation is the origin reported for in-memory override keys.
const OverridesLocation = "overrides"

// Properties is the immutable result of merging every source. Keys iterate
// in ascending order and each key remembers the location that supplied it.
// A nil *Properties reads as empty.
type Properties struct {
	values    map[string]string
	origins   map[string]string
	keys      []string
	normalize func(string) string
}

// NewProperties returns Properties holding a copy of values.
func NewProperties(values map[string]string) *Properties {
	return newProperties(maps.Clone(values), nil, nil)
}

func newProperties(values, origins map[string]string, normalize func(string) string) *Properties {
	if values == nil {
		values = map[string]string{}
	}
	if origins == nil {
		origins = map[string]string{}
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return &Properties{
		values:    values,
		origins:   origins,
		keys:      keys,
		normalize: normalize,
	}
}

func (p *Properties) key(k string) string {
	if p.normalize == nil {
		return k
	}
	return p.normalize(k)
}

// Lookup returns the value stored under key.
func (p *Properties) Lookup(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	v, ok := p.values[p.key(key)]
	return v, ok
}

// Get returns the value stored under key, or the empty string.
func (p *Properties) Get(key string) string {
	if p == nil {
		return ""
	}
	return p.values[p.key(key)]
}

// Origin returns the location that supplied key.
func (p *Properties) Origin(key string) string {
	if p == nil {
		return ""
	}
	return p.origins[p.key(key)]
}

// Keys returns every key in ascending order.
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	return slices.Clone(p.keys)
}

// Len returns the number of keys.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Map returns a copy of the key/value pairs.
func (p *Properties) Map() map[string]string {
	if p == nil {
		return map[string]string{}
	}
	return maps.Clone(p.values)
}
