package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type tableSummary struct {
	Index  int      `json:"index"`
	Header []string `json:"header"`
	Rows   int      `json:"rows"`
}

func newTablesCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tables FILE",
		Short: "List the tables found in a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := opts.readTables(cmd.Context(), cmd, args[0])
			if err != nil {
				return err
			}

			summaries := make([]tableSummary, len(tables))
			for i, t := range tables {
				summaries[i] = tableSummary{Index: i, Header: t.Header, Rows: len(t.Rows)}
			}

			if asJSON {
				data, err := json.MarshalIndent(summaries, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal tables: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			if len(summaries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tables found.")
				return nil
			}
			for _, s := range summaries {
				fmt.Fprintf(cmd.OutOrStdout(), "[%d] %d rows: %s\n", s.Index, s.Rows, strings.Join(s.Header, " | "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output tables as JSON")
	return cmd
}
