package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvtables/internal/core"
)

type projectionOutput struct {
	Table   int           `json:"table"`
	Shape   string        `json:"shape"`
	Records []core.Record `json:"records"`
}

func newProjectCmd(opts *options) *cobra.Command {
	var binds []string

	cmd := &cobra.Command{
		Use:   "project FILE",
		Short: "Project tables onto record types and print them as JSON",
		Long: `Projects tables onto registered record types. Each --bind flag takes
TABLE:SHAPE, for example --bind 0:account --bind 1:transaction.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bindings, err := core.ParseBindings(binds)
			if err != nil {
				return err
			}

			tables, err := opts.readTables(cmd.Context(), cmd, args[0])
			if err != nil {
				return err
			}

			projections, err := opts.service().ProjectAll(cmd.Context(), tables, bindings)
			if err != nil {
				return err
			}

			out := make([]projectionOutput, len(projections))
			for i, p := range projections {
				out[i] = projectionOutput{Table: p.Binding.Table, Shape: p.Shape.Key, Records: p.Records}
			}

			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal records: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&binds, "bind", "b", defaultBindings, "TABLE:SHAPE binding (repeatable)")
	return cmd
}
