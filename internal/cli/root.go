package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/syssam/sqlcond/dialect"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile  string
	Dialect     string
	Schema      string // attribute metadata file
	Prefix      string // table alias qualifying every column
	Underscored bool
	Timezone    string
	Verbose     bool
	Format      string // "json" | "text"
	LogFormat   string // "json" | "text"

	logger *slog.Logger
	config *viper.Viper
}

// Version is reported by --version.
var Version = "dev"

// ValidFormats defines the allowed output and log formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the sqlcond CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "sqlcond",
		Version: Version,
		Short:   "Compile declarative filter conditions to SQL",
		Long: `sqlcond compiles condition documents (JSON, YAML or MessagePack) into
SQL WHERE predicates for a target dialect, and checks them against a live
database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.load(cmd); err != nil {
				return WrapExitError(ExitCommandError, "load config", err)
			}
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if !slices.Contains(ValidFormats, opts.LogFormat) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid log format %q: must be one of %v", opts.LogFormat, ValidFormats))
			}
			opts.logger = newLogger(cmd.ErrOrStderr(), opts.LogFormat, opts.Verbose)
			return nil
		},
	}

	// Global flags
	f := cmd.PersistentFlags()
	f.StringVar(&opts.ConfigFile, "config", "", "config file (default ./sqlcond.yaml)")
	f.StringVarP(&opts.Dialect, "dialect", "d", dialect.Default, "target dialect")
	f.StringVarP(&opts.Schema, "schema", "s", "", "attribute metadata file")
	f.StringVar(&opts.Prefix, "prefix", "", "table alias qualifying every column")
	f.BoolVar(&opts.Underscored, "underscored", false, "map keys to snake_case columns when no schema is given")
	f.StringVar(&opts.Timezone, "timezone", "UTC", "time zone of timestamp literals")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	f.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	f.StringVar(&opts.LogFormat, "log-format", "text", "log format (json|text)")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewDialectsCommand(opts))

	return cmd
}

// Execute runs the CLI with the given arguments and returns the process
// exit code.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		var exitErr *ExitError
		if !errors.As(err, &exitErr) || !exitErr.reported {
			fmt.Fprintln(stderr, "Error:", err)
		}
		return GetExitCode(err)
	}
	return ExitSuccess
}
