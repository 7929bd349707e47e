package tether

import (
	"maps"
	"sync"
)

// SystemProperties is a concurrency-safe registry of process-level
// properties. They take part in location templating and are served by the
// `system:properties` loader.
type SystemProperties struct {
	mu sync.RWMutex
	m  map[string]string
}

// System is the process-wide registry used unless an aggregator is given another.
var System = NewSystemProperties()

// NewSystemProperties returns an empty registry.
func NewSystemProperties() *SystemProperties {
	return &SystemProperties{m: make(map[string]string)}
}

// Set stores value under key.
func (s *SystemProperties) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
}

// Get returns the value stored under key.
func (s *SystemProperties) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok
}

// Delete removes key.
func (s *SystemProperties) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}

// Snapshot returns a copy of every property.
func (s *SystemProperties) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.m)
}
