package tether

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net/url"
	"os"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Azhovan/tether/internal/noop"
)

type source struct {
	tmpl     locationTemplate
	cachable bool
}

// Aggregator resolves an ordered list of source locations into one
// Properties. Locations are templates, each is served by the first
// registered Loader that accepts it, and cachable locations are loaded once
// per aggregator. Configure it before the first Load; Load itself is safe
// for concurrent use.
type Aggregator struct {
	loaders   []Loader
	sources   []source
	policy    MergePolicy
	overrides map[string]string
	environ   func() []string
	system    *SystemProperties
	homeDir   func() (string, error)
	logger    *slog.Logger

	cache sync.Map // resolved location -> map[string]string
	group singleflight.Group
}

// NewAggregator creates an Aggregator with no loaders and no sources.
func NewAggregator() *Aggregator {
	return &Aggregator{
		policy:    DefaultStrategy(),
		overrides: make(map[string]string),
		environ:   os.Environ,
		system:    System,
		homeDir:   os.UserHomeDir,
		logger:    noop.Logger(),
	}
}

// WithLoader registers loaders. Earlier loaders are asked first.
func (a *Aggregator) WithLoader(loaders ...Loader) *Aggregator {
	a.loaders = append(a.loaders, loaders...)
	return a
}

// WithSource adds a cachable source location. Sources keep declaration order.
func (a *Aggregator) WithSource(location string) *Aggregator {
	a.sources = append(a.sources, source{tmpl: newLocationTemplate(location), cachable: true})
	return a
}

// WithUncachedSource adds a source location that is re-read on every Load.
func (a *Aggregator) WithUncachedSource(location string) *Aggregator {
	a.sources = append(a.sources, source{tmpl: newLocationTemplate(location)})
	return a
}

// WithStrategy sets the merge policy. Default: DefaultStrategy().
func (a *Aggregator) WithStrategy(policy MergePolicy) *Aggregator {
	a.policy = policy
	return a
}

// WithProperties adds in-memory overrides. They are applied after every
// source and always win.
func (a *Aggregator) WithProperties(props map[string]string) *Aggregator {
	maps.Copy(a.overrides, props)
	return a
}

// WithProperty adds one in-memory override.
func (a *Aggregator) WithProperty(key, value string) *Aggregator {
	a.overrides[key] = value
	return a
}

// WithLogger sets the logger used for loader diagnostics.
func (a *Aggregator) WithLogger(logger *slog.Logger) *Aggregator {
	a.logger = logger
	return a
}

// WithEnviron replaces os.Environ as the environment seen by templates.
func (a *Aggregator) WithEnviron(environ func() []string) *Aggregator {
	a.environ = environ
	return a
}

// WithSystemProperties replaces System as the registry seen by templates.
func (a *Aggregator) WithSystemProperties(props *SystemProperties) *Aggregator {
	a.system = props
	return a
}

// WithHomeDir replaces os.UserHomeDir for `file:~/` locations.
func (a *Aggregator) WithHomeDir(homeDir func() (string, error)) *Aggregator {
	a.homeDir = homeDir
	return a
}

// ClearCache forgets every cached source map.
func (a *Aggregator) ClearCache() {
	a.cache.Range(func(k, _ any) bool {
		a.cache.Delete(k)
		return true
	})
}

// Load reads every source in declaration order and merges the results.
//
// A location no loader accepts, or one that does not resolve to a URI, is
// fatal. Failures inside a loader are not: that source contributes nothing.
func (a *Aggregator) Load(ctx context.Context) (*Properties, error) {
	var vars map[string]string
	variables := func() map[string]string {
		if vars == nil {
			vars = templateVariables(a.environ(), a.system.Snapshot())
		}
		return vars
	}

	loaded := make([]SourceValues, 0, len(a.sources))
	for _, src := range a.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		u, location, err := src.tmpl.expand(a.homeDir, variables)
		if err != nil {
			return nil, err
		}

		loader := a.loaderFor(u)
		if loader == nil {
			return nil, &SourceError{Location: location, Err: ErrLoaderNotFound}
		}

		var values map[string]string
		if src.cachable {
			values = a.cached(ctx, loader, u, location)
		} else {
			values = a.load(ctx, loader, u, location)
		}
		loaded = append(loaded, SourceValues{Location: location, Values: values})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return a.policy.Combine(loaded, a.overrides), nil
}

func (a *Aggregator) loaderFor(u *url.URL) Loader {
	for _, l := range a.loaders {
		if l.Accept(u) {
			return l
		}
	}
	return nil
}

// cached returns the map stored for location, loading it at most once even
// under concurrent callers. Every caller sees the same map instance. A load
// whose context ends before it returns is handed back but not stored.
func (a *Aggregator) cached(ctx context.Context, loader Loader, u *url.URL, location string) map[string]string {
	if v, ok := a.cache.Load(location); ok {
		return v.(map[string]string)
	}
	v, _, _ := a.group.Do(location, func() (any, error) {
		if v, ok := a.cache.Load(location); ok {
			return v, nil
		}
		values := a.load(ctx, loader, u, location)
		if ctx.Err() != nil {
			// A canceled load may be partial; the next caller reads again.
			return values, nil
		}
		a.cache.Store(location, values)
		return values, nil
	})
	return v.(map[string]string)
}

// load calls the loader, turning a panic into an empty map.
func (a *Aggregator) load(ctx context.Context, loader Loader, u *url.URL, location string) (values map[string]string) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.WarnContext(ctx, "loader panicked",
				slog.String("location", location),
				slog.String("error", fmt.Sprint(r)),
			)
			values = map[string]string{}
		}
	}()

	values = loader.Load(ctx, u)
	if values == nil {
		values = map[string]string{}
	}
	a.logger.DebugContext(ctx, "source loaded",
		slog.String("location", location),
		slog.Int("keys", len(values)),
	)
	return values
}
