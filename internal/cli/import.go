package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvtables/internal/core"
	"github.com/JonMunkholm/csvtables/internal/store"
)

func newImportCmd(opts *options) *cobra.Command {
	var binds []string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Store projected tables in PostgreSQL",
		Long: `Projects the bound tables and stores them in the database named by
DATABASE_URL. Every record of one run shares a batch ID.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bindings, err := core.ParseBindings(binds)
			if err != nil {
				return err
			}
			if !opts.cfg.Database.Enabled() {
				return fmt.Errorf("%w: DATABASE_URL is not set", core.ErrStoreDisabled)
			}

			ctx := cmd.Context()
			pool, err := store.Open(ctx, opts.cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			r, closeFn, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer closeFn()

			svc := opts.service(
				core.WithSink(store.New(pool)),
				core.WithImportTimeout(opts.cfg.Upload.Timeout),
			)
			result, err := svc.Import(ctx, args[0], r, bindings)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Batch %s\n", result.BatchID)
			for _, t := range result.Imported {
				fmt.Fprintf(cmd.OutOrStdout(), "  table %d as %s: %d rows\n", t.Table, t.Shape, t.Inserted)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&binds, "bind", "b", defaultBindings, "TABLE:SHAPE binding (repeatable)")
	return cmd
}
