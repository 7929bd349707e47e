// Package standard assembles the default loader set.
package standard

import (
	"io/fs"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/Azhovan/tether"
	"github.com/Azhovan/tether/sourcebuild"
	"github.com/Azhovan/tether/sourceenv"
	"github.com/Azhovan/tether/sourcefile"
	"github.com/Azhovan/tether/sourcehttp"
)

// Options configures the default loaders.
type Options struct {
	// Fs backs `file:` locations. Default: the OS filesystem.
	Fs afero.Fs

	// Resources backs `classpath:` locations. Nil disables them.
	Resources fs.FS

	// System backs `system:properties`. Default: tether.System.
	System *tether.SystemProperties

	// HTTP configures `http(s):` locations.
	HTTP sourcehttp.Options

	// Logger receives every loader diagnostic.
	Logger *slog.Logger
}

// Loaders returns, in order: system properties, environment, build info,
// classpath (when Resources is set), file, and HTTP loaders.
func Loaders(opts Options) []tether.Loader {
	system := opts.System
	if system == nil {
		system = tether.System
	}
	if opts.HTTP.Logger == nil {
		opts.HTTP.Logger = opts.Logger
	}

	loaders := []tether.Loader{
		sourceenv.NewProperties(system),
		sourceenv.New(sourceenv.Options{}),
		sourcebuild.New(sourcebuild.Options{Logger: opts.Logger}),
	}
	if opts.Resources != nil {
		loaders = append(loaders, sourcefile.NewClasspath(opts.Resources, sourcefile.Options{Logger: opts.Logger}))
	}
	return append(loaders,
		sourcefile.New(sourcefile.Options{Fs: opts.Fs, Logger: opts.Logger}),
		sourcehttp.New(opts.HTTP),
	)
}
