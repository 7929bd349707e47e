package cli

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Azhovan/tether"
)

// Shapes accepted by `get --shape`.
const (
	shapeScalar    = "scalar"
	shapeList      = "list"
	shapeSet       = "set"
	shapeSortedSet = "sorted-set"
	shapeMap       = "map"
	shapeSortedMap = "sorted-map"
)

type getOptions struct {
	shape    string
	split    string
	def      string
	hasDef   bool
	optional bool
}

func newGetCmd(logger func() *slog.Logger) *cobra.Command {
	var (
		flags sourceFlags
		opts  getOptions
	)

	cmd := &cobra.Command{
		Use:   "get KEY [locations...]",
		Short: "Resolve one key through the resolution engine",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.hasDef = cmd.Flags().Changed("default"); opts.hasDef && opts.optional {
				return fmt.Errorf("--default and --optional are mutually exclusive")
			}

			agg, err := flags.aggregator(args[1:], logger())
			if err != nil {
				return err
			}
			props, err := agg.Load(cmd.Context())
			if err != nil {
				return err
			}

			lines, present, err := resolveKey(props, args[0], opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !present {
				_, err = fmt.Fprintln(out, "<absent>")
				return err
			}
			for _, line := range lines {
				if _, err := fmt.Fprintln(out, line); err != nil {
					return err
				}
			}
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&opts.shape, "shape", shapeScalar,
		strings.Join([]string{shapeScalar, shapeList, shapeSet, shapeSortedSet, shapeMap, shapeSortedMap}, ", "))
	cmd.Flags().StringVar(&opts.split, "split", ",", "regular expression separating tokens")
	cmd.Flags().StringVar(&opts.def, "default", "", "raw text used when the key is absent")
	cmd.Flags().BoolVar(&opts.optional, "optional", false, "print <absent> instead of failing on a missing key")
	return cmd
}

// resolveKey runs the engine operation matching opts and renders the result
// one element per line. present is false only for an absent optional.
func resolveKey(p tether.Lookup, key string, opts getOptions) ([]string, bool, error) {
	conv := tether.Converter[string](tether.String)
	split, def := opts.split, opts.def

	switch opts.shape {
	case shapeScalar:
		return dispatch(opts,
			func() (tether.Optional[string], error) { return tether.GetOptional(p, conv, key) },
			func() (string, error) { return tether.GetDefault(p, conv, key, def) },
			func() (string, error) { return tether.Get(p, conv, key) },
			func(v string) []string { return []string{v} },
		)
	case shapeList:
		return dispatch(opts,
			func() (tether.Optional[[]string], error) { return tether.GetOptionalList(p, conv, key, split) },
			func() ([]string, error) { return tether.GetListDefault(p, conv, key, split, def) },
			func() ([]string, error) { return tether.GetList(p, conv, key, split) },
			func(v []string) []string { return v },
		)
	case shapeSet:
		return dispatch(opts,
			func() (tether.Optional[tether.Set[string]], error) { return tether.GetOptionalSet(p, conv, key, split) },
			func() (tether.Set[string], error) { return tether.GetSetDefault(p, conv, key, split, def) },
			func() (tether.Set[string], error) { return tether.GetSet(p, conv, key, split) },
			setLines,
		)
	case shapeSortedSet:
		return dispatch(opts,
			func() (tether.Optional[tether.SortedSet[string]], error) {
				return tether.GetOptionalSortedSet(p, conv, key, split, cmp.Compare[string])
			},
			func() (tether.SortedSet[string], error) {
				return tether.GetSortedSetDefault(p, conv, key, split, def, cmp.Compare[string])
			},
			func() (tether.SortedSet[string], error) {
				return tether.GetSortedSet(p, conv, key, split, cmp.Compare[string])
			},
			func(v tether.SortedSet[string]) []string { return v },
		)
	case shapeMap:
		return dispatch(opts,
			func() (tether.Optional[map[string]string], error) { return tether.GetOptionalMap(p, conv, conv, key, split) },
			func() (map[string]string, error) { return tether.GetMapDefault(p, conv, conv, key, split, def) },
			func() (map[string]string, error) { return tether.GetMap(p, conv, conv, key, split) },
			mapLines,
		)
	case shapeSortedMap:
		return dispatch(opts,
			func() (tether.Optional[tether.SortedMap[string, string]], error) {
				return tether.GetOptionalSortedMap(p, conv, conv, key, split, cmp.Compare[string])
			},
			func() (tether.SortedMap[string, string], error) {
				return tether.GetSortedMapDefault(p, conv, conv, key, split, def, cmp.Compare[string])
			},
			func() (tether.SortedMap[string, string], error) {
				return tether.GetSortedMap(p, conv, conv, key, split, cmp.Compare[string])
			},
			sortedMapLines,
		)
	}

	return nil, false, fmt.Errorf("unknown shape %q", opts.shape)
}

// dispatch picks the optional, default or required variant of one operation.
func dispatch[T any](
	opts getOptions,
	optional func() (tether.Optional[T], error),
	withDefault func() (T, error),
	required func() (T, error),
	render func(T) []string,
) ([]string, bool, error) {
	var (
		v   T
		err error
	)
	switch {
	case opts.optional:
		var o tether.Optional[T]
		if o, err = optional(); err != nil || !o.Set {
			return nil, false, err
		}
		v = o.Value
	case opts.hasDef:
		v, err = withDefault()
	default:
		v, err = required()
	}
	if err != nil {
		return nil, false, err
	}
	return render(v), true, nil
}

// setLines prints members in ascending order since a Set has none of its own.
func setLines(s tether.Set[string]) []string {
	lines := make([]string, 0, len(s))
	for v := range s {
		lines = append(lines, v)
	}
	slices.Sort(lines)
	return lines
}

func mapLines(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+m[k])
	}
	return lines
}

func sortedMapLines(m tether.SortedMap[string, string]) []string {
	lines := make([]string, 0, len(m))
	for _, e := range m {
		lines = append(lines, e.Key+"="+e.Value)
	}
	return lines
}
