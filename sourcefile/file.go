package sourcefile

import (
	"context"
	"io/fs"
	"log/slog"
	"net/url"
	"strings"

	"github.com/spf13/afero"

	"github.com/Azhovan/tether"
	"github.com/Azhovan/tether/internal/format"
	"github.com/Azhovan/tether/internal/noop"
)

// Options configures file and classpath loaders.
type Options struct {
	// Format restricts the loader to one format ("toml", "yaml", ...).
	// Empty accepts every supported extension.
	Format string

	// Fs is the filesystem read by New. Default: the OS filesystem.
	Fs afero.Fs

	// Logger receives load failures. Default: discard.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return noop.Logger()
	}
	return o.Logger
}

type fileLoader struct {
	scheme string
	read   func(name string) ([]byte, error)
	opts   Options
	log    *slog.Logger
}

// New creates a loader for `file:` locations, e.g. `file:./app.toml`,
// `file:/etc/app/app.yaml` or `file:///etc/app/app.json#UTF-16`.
func New(opts Options) tether.Loader {
	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &fileLoader{
		scheme: "file",
		read:   func(name string) ([]byte, error) { return afero.ReadFile(fsys, name) },
		opts:   opts,
		log:    opts.logger(),
	}
}

// NewClasspath creates a loader for `classpath:` locations resolved inside
// fsys, e.g. `classpath:config/app.properties`.
func NewClasspath(fsys fs.FS, opts Options) tether.Loader {
	return &fileLoader{
		scheme: "classpath",
		read: func(name string) ([]byte, error) {
			return fs.ReadFile(fsys, strings.TrimPrefix(name, "/"))
		},
		opts: opts,
		log:  opts.logger(),
	}
}

// Accept reports whether loc has this loader's scheme and a supported extension.
func (f *fileLoader) Accept(loc *url.URL) bool {
	if loc.Scheme != f.scheme {
		return false
	}
	detected := format.Detect(locationPath(loc))
	if detected == "" {
		return false
	}
	return f.opts.Format == "" || f.opts.Format == detected
}

// Load reads and parses the document. Any failure yields an empty map.
func (f *fileLoader) Load(ctx context.Context, loc *url.URL) map[string]string {
	name := locationPath(loc)

	data, err := f.read(name)
	if err != nil {
		return f.fail(ctx, loc, err)
	}
	if data, err = format.Decode(data, loc.Fragment); err != nil {
		return f.fail(ctx, loc, err)
	}
	values, err := format.Parse(format.Detect(name), data)
	if err != nil {
		return f.fail(ctx, loc, err)
	}
	return values
}

func (f *fileLoader) fail(ctx context.Context, loc *url.URL, err error) map[string]string {
	f.log.WarnContext(ctx, "can't load resource",
		slog.String("location", loc.String()),
		slog.String("error", err.Error()),
	)
	return map[string]string{}
}

// locationPath returns the path part of an opaque (`file:./x`) or
// hierarchical (`file:///x`) location.
func locationPath(loc *url.URL) string {
	if loc.Opaque != "" {
		if p, err := url.PathUnescape(loc.Opaque); err == nil {
			return p
		}
		return loc.Opaque
	}
	return loc.Path
}
