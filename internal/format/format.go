// Package format turns configuration documents into flat key/value maps.
package format

import (
	"bytes"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/magiconair/properties"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"golang.org/x/text/encoding/ianaindex"
	"gopkg.in/yaml.v3"
)

// Supported format names.
const (
	Properties = "properties"
	TOML       = "toml"
	YAML       = "yaml"
	JSON       = "json"
	INI        = "ini"
	HCL        = "hcl"
	DotEnv     = "env"
)

// Detect infers the format from the extension of p. It returns "" for
// unknown extensions.
func Detect(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".properties":
		return Properties
	case ".toml":
		return TOML
	case ".yaml", ".yml":
		return YAML
	case ".json":
		return JSON
	case ".ini":
		return INI
	case ".hcl":
		return HCL
	case ".env":
		return DotEnv
	default:
		return ""
	}
}

// Decode converts data from the named charset to UTF-8. An empty charset
// means the data already is UTF-8.
func Decode(data []byte, charset string) ([]byte, error) {
	if charset == "" || strings.EqualFold(charset, "UTF-8") || strings.EqualFold(charset, "UTF8") {
		return data, nil
	}
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", charset, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", charset)
	}
	return enc.NewDecoder().Bytes(data)
}

// Parse decodes data in the given format and flattens nested documents to
// dot-separated keys. Array elements are joined with ",".
func Parse(format string, data []byte) (map[string]string, error) {
	if format == Properties {
		return parseProperties(data)
	}

	var raw map[string]any
	switch format {
	case YAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
	case TOML:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse TOML: %w", err)
		}
	case INI, HCL, DotEnv:
		v := viper.New()
		v.SetConfigType(format)
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("parse %s: %w", strings.ToUpper(format), err)
		}
		raw = v.AllSettings()
	default:
		return nil, fmt.Errorf("unsupported format %q (supported: properties, toml, yaml, json, ini, hcl, env)", format)
	}

	result := make(map[string]string)
	flatten("", raw, result)
	return result, nil
}

func parseProperties(data []byte) (map[string]string, error) {
	l := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := l.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse properties: %w", err)
	}
	return p.Map(), nil
}

// flatten walks nested maps, writing leaves under dot-separated keys.
func flatten(prefix string, value any, result map[string]string) {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			flatten(join(prefix, key), val, result)
		}
	case map[any]any:
		for key, val := range v {
			flatten(join(prefix, fmt.Sprint(key)), val, result)
		}
	case []map[string]any:
		for i, val := range v {
			flatten(join(prefix, strconv.Itoa(i)), val, result)
		}
	default:
		if prefix != "" {
			result[prefix] = scalar(value)
		}
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func scalar(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = scalar(e)
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(v, ",")
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case map[string]any:
		// inline table inside an array: render deterministically
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "|" + scalar(v[k])
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}
