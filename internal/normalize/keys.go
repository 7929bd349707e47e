// Package normalize holds the key spelling rules shared by the binder, the
// merge policies and the environment loader.
package normalize

import (
	"strings"
	"unicode"
)

// ToLowerDotPath turns an environment variable name into a lowercase dot path.
// Double underscores separate levels, single underscores are kept.
// Examples:
//   - "FOO__BAR" → "foo.bar"
//   - "DB_MAX_CONNECTIONS" → "db_max_connections"
func ToLowerDotPath(key string) string {
	return strings.ToLower(strings.ReplaceAll(key, "__", "."))
}

// DeriveFieldPath derives a lookup key from an accessor method name by
// lower-casing its first rune: "IntValue" → "intValue".
func DeriveFieldPath(name string) string {
	if name == "" {
		return ""
	}
	runes := []rune(name)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// ApplyPrefix joins prefix and key with a dot. An empty side is dropped.
func ApplyPrefix(prefix, key string) string {
	if prefix == "" {
		return key
	}
	if key == "" {
		return prefix
	}
	return prefix + "." + key
}

// Relaxed lower-cases key and spells '-' and '_' as '.', so "App_Name",
// "app-name" and "app.name" compare equal.
func Relaxed(key string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_':
			return '.'
		}
		return unicode.ToLower(r)
	}, key)
}
