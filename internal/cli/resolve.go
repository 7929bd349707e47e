package cli

import (
	"fmt"
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func newResolveCmd(logger func() *slog.Logger) *cobra.Command {
	var (
		flags  sourceFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "resolve [locations...]",
		Short: "Print the merged properties of the given locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			agg, err := flags.aggregator(args, logger())
			if err != nil {
				return err
			}
			props, err := agg.Load(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				type entry struct {
					Value  string `json:"value"`
					Source string `json:"source"`
				}
				result := make(map[string]entry, props.Len())
				for _, k := range props.Keys() {
					result[k] = entry{Value: props.Get(k), Source: props.Origin(k)}
				}
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			}

			for _, k := range props.Keys() {
				if _, err := fmt.Fprintf(out, "%s=%s (source: %s)\n", k, props.Get(k), props.Origin(k)); err != nil {
					return err
				}
			}
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of key=value lines")
	return cmd
}
