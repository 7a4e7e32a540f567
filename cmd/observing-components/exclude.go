package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newExcludeCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "exclude <path>",
		Short: "Explain whether a path is excluded",
		Long:  "Print whether the wrapping pass skips a path and which rule decided it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.newPlugin()
			if err != nil {
				return err
			}
			defer p.Close()

			d := p.Decide(args[0])
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(d)
			}

			if !d.Excluded {
				fmt.Fprintf(out, "%s: included\n", args[0])
				return nil
			}
			fmt.Fprintf(out, "%s: excluded (%s", args[0], d.Strategy)
			if d.Pattern != "" {
				fmt.Fprintf(out, ", pattern %q", d.Pattern)
			}
			fmt.Fprintln(out, ")")
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the decision as JSON")
	return cmd
}
