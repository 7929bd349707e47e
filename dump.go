package tether

import (
	"encoding"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const redacted = "***redacted***"

// DumpOption configures dump behavior using the functional options pattern.
type DumpOption func(*dumpConfig)

// dumpConfig holds options for DumpEffective.
type dumpConfig struct {
	withSources bool   // Include source attribution for each accessor
	asJSON      bool   // Output as JSON instead of text format
	indent      string // Indentation for JSON output (default: "  ")
}

// WithSources includes source attribution for each accessor in the output.
func WithSources() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.withSources = true
	}
}

// AsJSON outputs configuration as JSON instead of text format.
func AsJSON() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.asJSON = true
	}
}

// WithIndent sets the indentation for JSON output.
// Default is two spaces ("  ").
func WithIndent(indent string) DumpOption {
	return func(cfg *dumpConfig) {
		cfg.indent = indent
	}
}

// DumpEffective writes the bound value of every accessor, keyed by lookup
// key. Secret accessors are redacted as "***redacted***".
func DumpEffective(w io.Writer, cfg *Config, opts ...DumpOption) error {
	if cfg == nil {
		return ErrNilConfig
	}

	config := dumpConfig{indent: "  "}
	for _, opt := range opts {
		opt(&config)
	}

	if config.asJSON {
		return dumpAsJSON(w, cfg, config)
	}
	return dumpAsText(w, cfg, config)
}

// dumpAsText outputs one "key: value" line per accessor.
func dumpAsText(w io.Writer, cfg *Config, config dumpConfig) error {
	for _, prov := range cfg.Provenance() {
		value := redacted
		if !prov.Secret {
			value = formatValueAsString(cfg.values[prov.Accessor])
		}

		line := prov.KeyPath + ": " + value
		if config.withSources && prov.SourceName != "" {
			line += " (source: " + prov.SourceName + ")"
		}
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return fmt.Errorf("write error: %w", err)
		}
	}
	return nil
}

// dumpAsJSON outputs a flat JSON object keyed by lookup key.
func dumpAsJSON(w io.Writer, cfg *Config, config dumpConfig) error {
	result := make(map[string]any, len(cfg.values))
	for _, prov := range cfg.Provenance() {
		var value any = redacted
		if !prov.Secret {
			value = formatValueForJSON(cfg.values[prov.Accessor])
		}
		if config.withSources {
			value = map[string]any{"value": value, "source": prov.SourceName}
		}
		result[prov.KeyPath] = value
	}

	var data []byte
	var err error
	if config.indent != "" {
		data, err = json.MarshalIndent(result, "", config.indent)
	} else {
		data, err = json.Marshal(result)
	}
	if err != nil {
		return fmt.Errorf("json marshal error: %w", err)
	}

	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	return nil
}

var (
	timeType          = reflect.TypeOf(time.Time{})
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// formatScalar renders a single element without quoting.
func formatScalar(v reflect.Value) string {
	if !v.IsValid() || ((v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil()) {
		return "<nil>"
	}
	switch {
	case v.Type() == durationType:
		return time.Duration(v.Int()).String()
	case v.Type() == timeType:
		return v.Interface().(time.Time).Format(time.RFC3339)
	case v.Type().Implements(textMarshalerType):
		if text, err := v.Interface().(encoding.TextMarshaler).MarshalText(); err == nil {
			return string(text)
		}
	}
	return fmt.Sprintf("%v", v.Interface())
}

// formatValueAsString formats a bound value for text output.
func formatValueAsString(v reflect.Value) string {
	if !v.IsValid() {
		return "<nil>"
	}

	t := v.Type()
	switch {
	case isShape(t, "Optional"):
		if !v.Field(1).Bool() {
			return "<not set>"
		}
		return formatValueAsString(v.Field(0))
	case isShape(t, "SortedMap"):
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = formatScalar(v.Index(i).Field(0)) + "|" + formatScalar(v.Index(i).Field(1))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case isShape(t, "Set"):
		parts := make([]string, 0, v.Len())
		for _, k := range v.MapKeys() {
			parts = append(parts, formatScalar(k))
		}
		slices.Sort(parts)
		return "[" + strings.Join(parts, ", ") + "]"
	case t.Kind() == reflect.String && t.PkgPath() == "":
		return fmt.Sprintf("%q", v.String())
	case t.Kind() == reflect.Slice && !isAtomic(t, nil):
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = formatScalar(v.Index(i))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case t.Kind() == reflect.Map && !isAtomic(t, nil):
		parts := make([]string, 0, v.Len())
		for _, k := range v.MapKeys() {
			parts = append(parts, formatScalar(k)+"|"+formatScalar(v.MapIndex(k)))
		}
		slices.Sort(parts)
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return formatScalar(v)
}

// formatValueForJSON converts a bound value to something JSON can encode.
func formatValueForJSON(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}

	t := v.Type()
	switch {
	case isShape(t, "Optional"):
		if !v.Field(1).Bool() {
			return nil
		}
		return formatValueForJSON(v.Field(0))
	case isShape(t, "SortedMap"):
		out := make(map[string]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			out[formatScalar(v.Index(i).Field(0))] = jsonScalar(v.Index(i).Field(1))
		}
		return out
	case isShape(t, "Set"):
		out := make([]string, 0, v.Len())
		for _, k := range v.MapKeys() {
			out = append(out, formatScalar(k))
		}
		slices.Sort(out)
		return out
	case t.Kind() == reflect.Slice && !isAtomic(t, nil):
		out := make([]any, v.Len())
		for i := range out {
			out[i] = jsonScalar(v.Index(i))
		}
		return out
	case t.Kind() == reflect.Map && !isAtomic(t, nil):
		out := make(map[string]any, v.Len())
		for _, k := range v.MapKeys() {
			out[formatScalar(k)] = jsonScalar(v.MapIndex(k))
		}
		return out
	}
	return jsonScalar(v)
}

// jsonScalar keeps numbers and booleans native and renders the rest as text.
func jsonScalar(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.Type() == durationType {
			return formatScalar(v)
		}
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	return formatScalar(v)
}
