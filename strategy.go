package tether

import (
	"fmt"
	"strings"

	"github.com/Azhovan/tether/internal/normalize"
)

// SourceValues is what one source location produced.
type SourceValues struct {
	Location string
	Values   map[string]string
}

// MergePolicy combines per-source maps, in declaration order, with the
// in-memory overrides into the final Properties. Overrides always win.
type MergePolicy interface {
	Combine(sources []SourceValues, overrides map[string]string) *Properties
}

// Precedence decides which source wins a key present in several sources.
type Precedence int

const (
	// FirstWins keeps the value of the earliest declared source.
	FirstWins Precedence = iota
	// LastWins keeps the value of the latest declared source.
	LastWins
	// FirstNonEmpty uses only the first source that produced any key.
	FirstNonEmpty
)

func (p Precedence) String() string {
	switch p {
	case FirstWins:
		return "first-wins"
	case LastWins:
		return "last-wins"
	case FirstNonEmpty:
		return "first-non-empty"
	default:
		return fmt.Sprintf("Precedence(%d)", int(p))
	}
}

// ParsePrecedence parses the String form of a Precedence.
func ParsePrecedence(s string) (Precedence, error) {
	for _, p := range []Precedence{FirstWins, LastWins, FirstNonEmpty} {
		if strings.EqualFold(s, p.String()) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("tether: unknown precedence %q", s)
}

// KeyMode decides how keys are compared.
type KeyMode int

const (
	// ExactKeys compares keys byte for byte.
	ExactKeys KeyMode = iota
	// CaseInsensitiveKeys lower-cases keys.
	CaseInsensitiveKeys
	// RelaxedKeys lower-cases keys and treats '-' and '_' as '.'.
	RelaxedKeys
)

func (m KeyMode) String() string {
	switch m {
	case ExactKeys:
		return "exact"
	case CaseInsensitiveKeys:
		return "case-insensitive"
	case RelaxedKeys:
		return "relaxed"
	default:
		return fmt.Sprintf("KeyMode(%d)", int(m))
	}
}

// ParseKeyMode parses the String form of a KeyMode.
func ParseKeyMode(s string) (KeyMode, error) {
	for _, m := range []KeyMode{ExactKeys, CaseInsensitiveKeys, RelaxedKeys} {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("tether: unknown key mode %q", s)
}

func (m KeyMode) normalizer() func(string) string {
	switch m {
	case CaseInsensitiveKeys:
		return strings.ToLower
	case RelaxedKeys:
		return normalize.Relaxed
	default:
		return nil
	}
}

// LoadStrategy is the built-in MergePolicy.
type LoadStrategy struct {
	Precedence Precedence
	Keys       KeyMode
}

// DefaultStrategy lets earlier sources win and compares keys exactly.
func DefaultStrategy() LoadStrategy {
	return LoadStrategy{Precedence: FirstWins, Keys: ExactKeys}
}

// Combine implements MergePolicy.
func (s LoadStrategy) Combine(sources []SourceValues, overrides map[string]string) *Properties {
	norm := s.Keys.normalizer()
	values := make(map[string]string)
	origins := make(map[string]string)

	put := func(location string, m map[string]string, replace bool) {
		for k, v := range m {
			if norm != nil {
				k = norm(k)
			}
			if _, exists := values[k]; exists && !replace {
				continue
			}
			values[k] = v
			origins[k] = location
		}
	}

	switch s.Precedence {
	case LastWins:
		for _, src := range sources {
			put(src.Location, src.Values, true)
		}
	case FirstNonEmpty:
		for _, src := range sources {
			if len(src.Values) > 0 {
				put(src.Location, src.Values, true)
				break
			}
		}
	default:
		for _, src := range sources {
			put(src.Location, src.Values, false)
		}
	}

	put(OverridesLocation, overrides, true)
	return newProperties(values, origins, norm)
}
