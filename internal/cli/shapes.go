package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvtables/internal/core"
)

func newShapesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shapes",
		Short: "List registered record types",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, s := range core.Shapes() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", s.Key, s.Label)
				for _, f := range s.Fields {
					req := ""
					if f.Required {
						req = ", required"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "  %-24s %s%s  [%s]\n", f.Name, f.Type, req, strings.Join(f.Spellings(), ", "))
				}
			}
		},
	}
}
