// Package sourcebuild exposes the build information embedded in the running
// binary as a configuration source.
//
// Location: `build:info?name` or `build:info?name=value`. The attributes are
// returned only when attribute name exists (and equals value, when given),
// which lets a program pick up build metadata only from the binary it
// expects.
//
// Attributes: go.version, path, main.path, main.version, main.sum, every
// build setting under its own key (vcs.revision, GOOS, ...) and one
// dep.<module path> entry per dependency holding its version.
package sourcebuild

import (
	"context"
	"log/slog"
	"net/url"
	"runtime/debug"
	"strings"

	"github.com/Azhovan/tether"
	"github.com/Azhovan/tether/internal/noop"
)

// Options configures the build information loader.
type Options struct {
	// ReadBuildInfo replaces debug.ReadBuildInfo.
	ReadBuildInfo func() (*debug.BuildInfo, bool)

	// Logger receives lookup failures. Default: discard.
	Logger *slog.Logger
}

type buildLoader struct {
	read func() (*debug.BuildInfo, bool)
	log  *slog.Logger
}

// New creates a loader for `build:info?...` locations.
func New(opts Options) tether.Loader {
	l := &buildLoader{read: opts.ReadBuildInfo, log: opts.Logger}
	if l.read == nil {
		l.read = debug.ReadBuildInfo
	}
	if l.log == nil {
		l.log = noop.Logger()
	}
	return l
}

// Accept matches `build:info` with a non-empty query.
func (b *buildLoader) Accept(loc *url.URL) bool {
	return loc.Scheme == "build" && loc.Opaque == "info" && loc.RawQuery != ""
}

// Load returns every attribute when the query condition holds.
func (b *buildLoader) Load(ctx context.Context, loc *url.URL) map[string]string {
	query, err := url.QueryUnescape(loc.RawQuery)
	if err != nil {
		query = loc.RawQuery
	}
	name, value, hasValue := strings.Cut(query, "=")

	info, ok := b.read()
	if !ok {
		b.log.WarnContext(ctx, "build information not available", slog.String("location", loc.String()))
		return map[string]string{}
	}

	attrs := Attributes(info)
	got, found := attrs[name]
	if !found || (hasValue && got != value) {
		b.log.WarnContext(ctx, "build information does not match",
			slog.String("location", loc.String()),
			slog.String("attribute", name),
		)
		return map[string]string{}
	}
	return attrs
}

// Attributes flattens info into key/value pairs.
func Attributes(info *debug.BuildInfo) map[string]string {
	attrs := map[string]string{
		"go.version":   info.GoVersion,
		"path":         info.Path,
		"main.path":    info.Main.Path,
		"main.version": info.Main.Version,
		"main.sum":     info.Main.Sum,
	}
	for _, s := range info.Settings {
		attrs[s.Key] = s.Value
	}
	for _, dep := range info.Deps {
		version := dep.Version
		if dep.Replace != nil {
			version = dep.Replace.Version
		}
		attrs["dep."+dep.Path] = version
	}
	return attrs
}
