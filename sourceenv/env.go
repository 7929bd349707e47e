package sourceenv

import (
	"context"
	"net/url"
	"os"
	"strings"

	"github.com/Azhovan/tether"
	"github.com/Azhovan/tether/internal/normalize"
)

const (
	envLocation        = "env"
	propertiesLocation = "properties"
)

// Options configures the environment loader.
type Options struct {
	// Prefix filters vars starting with prefix (stripped from the key).
	// Empty = load all vars.
	Prefix string

	// CaseSensitive controls prefix matching (default: false).
	CaseSensitive bool

	// Normalize rewrites keys to lowercase dot paths: FOO__BAR → foo.bar.
	Normalize bool

	// Environ replaces os.Environ.
	Environ func() []string
}

type envLoader struct {
	opts Options
}

// New creates a loader for the `system:env` location.
func New(opts Options) tether.Loader {
	if opts.Environ == nil {
		opts.Environ = os.Environ
	}
	return &envLoader{opts: opts}
}

// Accept matches `system:env`.
func (e *envLoader) Accept(loc *url.URL) bool {
	return loc.Scheme == "system" && loc.Opaque == envLocation
}

// Load scans the environment, filters by prefix, and optionally normalizes keys.
func (e *envLoader) Load(_ context.Context, _ *url.URL) map[string]string {
	result := make(map[string]string)

	for _, env := range e.opts.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}

		if e.opts.Prefix != "" {
			var hasPrefix bool
			if e.opts.CaseSensitive {
				hasPrefix = strings.HasPrefix(key, e.opts.Prefix)
			} else {
				hasPrefix = strings.HasPrefix(strings.ToUpper(key), strings.ToUpper(e.opts.Prefix))
			}
			if !hasPrefix {
				continue
			}
			key = key[len(e.opts.Prefix):]
		}

		if key == "" {
			continue
		}
		if e.opts.Normalize {
			key = normalize.ToLowerDotPath(key)
		}
		result[key] = value
	}

	return result
}

type propertiesLoader struct {
	props *tether.SystemProperties
}

// NewProperties creates a loader for the `system:properties` location
// backed by props.
func NewProperties(props *tether.SystemProperties) tether.Loader {
	return &propertiesLoader{props: props}
}

// Accept matches `system:properties`.
func (p *propertiesLoader) Accept(loc *url.URL) bool {
	return loc.Scheme == "system" && loc.Opaque == propertiesLocation
}

// Load returns a copy of the registry.
func (p *propertiesLoader) Load(_ context.Context, _ *url.URL) map[string]string {
	if snap := p.props.Snapshot(); snap != nil {
		return snap
	}
	return map[string]string{}
}
