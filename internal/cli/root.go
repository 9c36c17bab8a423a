// Package cli implements the csvtables command line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvtables/internal/config"
	"github.com/JonMunkholm/csvtables/internal/core"
	"github.com/JonMunkholm/csvtables/internal/logging"
)

// defaultBindings projects the first table as accounts and the second as
// transactions, the layout of a brokerage statement export.
var defaultBindings = []string{"0:account", "1:transaction"}

// options holds the persistent flags shared by every command.
type options struct {
	delimiter  string
	lazyQuotes bool
	logLevel   string

	cfg *config.Config
}

// NewRootCmd builds the command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "csvtables",
		Short: "Split multi-table CSV exports into typed tables",
		Long: `csvtables reads CSV files that hold several tables one after another,
separated by three empty lines, and projects each table onto a record type.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&opts.delimiter, "delimiter", "d", ",", "field delimiter (single character)")
	root.PersistentFlags().BoolVar(&opts.lazyQuotes, "lazy-quotes", false, "allow bare quotes inside unquoted fields")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(
		newTablesCmd(opts),
		newProjectCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newShapesCmd(),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorMessage(err))
		os.Exit(1)
	}
}

// errorMessage leads with the mapped user message when err has one.
func errorMessage(err error) string {
	if core.IsUserFacing(err) {
		return fmt.Sprintf("Error: %s\n  %v", core.FormatUserError(err), err)
	}
	return fmt.Sprintf("Error: %v", err)
}

// load merges environment configuration with flags. Flags win when set.
func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("delimiter") {
		cfg.CSV.Delimiter = o.delimiter
	}
	if flags.Changed("lazy-quotes") {
		cfg.CSV.LazyQuotes = o.lazyQuotes
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := o.logLevel
	if !flags.Changed("log-level") && os.Getenv("LOG_LEVEL") != "" {
		level = cfg.Logging.Level
	}
	logging.Setup(cmd.ErrOrStderr(), level, cfg.Logging.Format)

	o.cfg = cfg
	return nil
}

// service builds a core.Service from the loaded configuration.
func (o *options) service(extra ...core.ServiceOption) *core.Service {
	opts := []core.ServiceOption{
		core.WithReaderOptions(core.ReaderOptions{
			Comma:      o.cfg.CSV.Comma(),
			LazyQuotes: o.cfg.CSV.LazyQuotes,
		}),
	}
	return core.NewService(append(opts, extra...)...)
}

// readTables segments the named file, or stdin when name is "-".
func (o *options) readTables(ctx context.Context, cmd *cobra.Command, name string) (core.TableSet, error) {
	r, closeFn, err := openInput(cmd, name)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	return o.service().Segment(ctx, name, r)
}

func openInput(cmd *cobra.Command, name string) (io.Reader, func(), error) {
	if name == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { f.Close() }, nil
}
