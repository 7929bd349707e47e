// Package cli implements the tether command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Azhovan/tether"
	"github.com/Azhovan/tether/standard"
)

// New builds the root command. Output goes to out, diagnostics to errOut.
func New(out, errOut io.Writer) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("TETHER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "tether",
		Short: "Resolve layered configuration sources",
		Long: `tether loads configuration locations (file:, classpath:, http(s):,
system:env, system:properties, build:info?...) and merges them the same way
the library does.`,
		Example: `  # merged view of two files and the environment
  tether resolve file:./app.properties file:~/app.toml system:env

  # one value through the resolution engine
  tether get app.hosts file:./app.properties --shape sorted-set --split ';'`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().String("log-level", "warn", "diagnostic level: debug, info, warn, error")
	root.PersistentFlags().String("log-format", "text", "diagnostic format: text or json")
	_ = v.BindPFlags(root.PersistentFlags())

	logger := func() *slog.Logger {
		return newLogger(errOut, v.GetString("log-level"), v.GetString("log-format"))
	}

	root.AddCommand(newResolveCmd(logger), newGetCmd(logger))
	return root
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// sourceFlags are shared by every command that builds an aggregator.
type sourceFlags struct {
	defines    []string
	overrides  []string
	precedence string
	keys       string
	noCache    bool
	classpath  string
}

func (f *sourceFlags) register(fs *pflag.FlagSet) {
	fs.StringArrayVarP(&f.defines, "define", "D", nil, "system property key=value (repeatable)")
	fs.StringArrayVar(&f.overrides, "set", nil, "in-memory override key=value, always wins (repeatable)")
	fs.StringVar(&f.precedence, "precedence", tether.FirstWins.String(), "first-wins, last-wins or first-non-empty")
	fs.StringVar(&f.keys, "keys", tether.ExactKeys.String(), "exact, case-insensitive or relaxed")
	fs.BoolVar(&f.noCache, "no-cache", false, "re-read every location")
	fs.StringVar(&f.classpath, "classpath", "", "directory serving classpath: locations")
}

func (f *sourceFlags) aggregator(locations []string, logger *slog.Logger) (*tether.Aggregator, error) {
	precedence, err := tether.ParsePrecedence(f.precedence)
	if err != nil {
		return nil, err
	}
	keys, err := tether.ParseKeyMode(f.keys)
	if err != nil {
		return nil, err
	}

	system := tether.NewSystemProperties()
	for k, v := range tether.System.Snapshot() {
		system.Set(k, v)
	}
	for _, d := range f.defines {
		k, v, err := pair(d)
		if err != nil {
			return nil, fmt.Errorf("--define: %w", err)
		}
		system.Set(k, v)
	}

	opts := standard.Options{System: system, Logger: logger}
	if f.classpath != "" {
		opts.Resources = os.DirFS(f.classpath)
	}

	agg := tether.NewAggregator().
		WithLoader(standard.Loaders(opts)...).
		WithSystemProperties(system).
		WithStrategy(tether.LoadStrategy{Precedence: precedence, Keys: keys}).
		WithLogger(logger)

	for _, o := range f.overrides {
		k, v, err := pair(o)
		if err != nil {
			return nil, fmt.Errorf("--set: %w", err)
		}
		agg.WithProperty(k, v)
	}
	for _, loc := range locations {
		if f.noCache {
			agg.WithUncachedSource(loc)
		} else {
			agg.WithSource(loc)
		}
	}
	return agg, nil
}

func pair(s string) (string, string, error) {
	k, v, ok := strings.Cut(s, "=")
	if !ok || k == "" {
		return "", "", fmt.Errorf("expected key=value, got %q", s)
	}
	return k, v, nil
}
