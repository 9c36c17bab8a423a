package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvtables/internal/core"
	"github.com/JonMunkholm/csvtables/internal/export"
)

func newExportCmd(opts *options) *cobra.Command {
	var (
		output string
		binds  []string
	)

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write the tables of a file to an XLSX workbook",
		Long: `Writes one sheet per table. With --bind, writes one sheet per bound
table holding the projected records instead.`,
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

			var projections []core.Projection
			if len(bindings) > 0 {
				projections, err = opts.service().ProjectAll(cmd.Context(), tables, bindings)
				if err != nil {
					return err
				}
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}

			if projections != nil {
				err = export.WriteRecords(f, projections)
			} else {
				err = export.WriteTables(f, tables)
			}
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				os.Remove(output)
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d sheets to %s\n", max(1, sheetCount(tables, projections)), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "tables.xlsx", "output workbook path")
	cmd.Flags().StringArrayVarP(&binds, "bind", "b", nil, "TABLE:SHAPE binding (repeatable)")
	return cmd
}

func sheetCount(tables core.TableSet, projections []core.Projection) int {
	if projections != nil {
		return len(projections)
	}
	return len(tables)
}
