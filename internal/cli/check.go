package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	sqldrv "github.com/syssam/sqlcond/dialect/sql"
	"github.com/syssam/sqlcond/schema/field"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	InputFormat   string
	DSN           string
	Table         string
	Vars          []string // name=value session variables
	Inspect       bool
	SlowThreshold time.Duration
}

// CheckResult is the outcome of checking one document.
type CheckResult struct {
	File  string `json:"file"`
	SQL   string `json:"sql"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check [file...]",
		Short: "Check compiled conditions against a database",
		Long: `Compile condition documents and let the database prepare a query
selecting from the table with each WHERE clause. The query is prepared, never
executed, so checks have no effect on the data.

Attributes come from the schema file, or from the database catalog with
--inspect.`,
		Example: `  sqlcond check -d postgres --dsn "postgres://localhost/app" -s schema.yaml filter.yaml
  sqlcond check -d sqlite --dsn app.db --table users --inspect filter.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.InputFormat, "input-format", "i", "", "input format (json|yaml|msgpack), by file extension when empty")
	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "database connection string")
	cmd.Flags().StringVarP(&opts.Table, "table", "t", "", "table to check against (default from the schema file)")
	cmd.Flags().StringArrayVar(&opts.Vars, "var", nil, "session variable to set before checking, as name=value")
	cmd.Flags().BoolVar(&opts.Inspect, "inspect", false, "read attributes from the database catalog")
	cmd.Flags().DurationVar(&opts.SlowThreshold, "slow-threshold", 100*time.Millisecond, "log checks slower than this")

	return cmd
}

func runCheck(cmd *cobra.Command, opts *CheckOptions, args []string) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	ctx := cmd.Context()

	dsn, table := opts.setting("dsn"), opts.setting("table")
	if dsn == "" {
		return outputError(formatter, ExitCommandError, ErrCodeConfig, "--dsn is required")
	}
	for _, kv := range opts.Vars {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return outputError(formatter, ExitCommandError, ErrCodeConfig, fmt.Sprintf("invalid --var %q: expected name=value", kv))
		}
		ctx = sqldrv.WithVar(ctx, name, value)
	}

	drv, err := sqldrv.Open(opts.Dialect, dsn)
	if err != nil {
		return outputError(formatter, ExitCommandError, ErrCodeConfig, err.Error())
	}
	defer drv.Close()

	var attrs field.Attributes
	if opts.Inspect {
		if table == "" {
			return outputError(formatter, ExitCommandError, ErrCodeConfig, "--inspect requires --table")
		}
		if attrs, err = inspectTable(ctx, drv.Dialect(), drv.DB(), table); err != nil {
			return outputError(formatter, ExitCommandError, ErrCodeConfig, err.Error())
		}
		opts.logger.Debug("inspected table", "table", table, "attributes", len(attrs))
	}
	c, err := opts.newCompiler(attrs)
	if err != nil {
		return outputError(formatter, ExitCommandError, ErrCodeConfig, err.Error())
	}
	if table == "" {
		table = c.table
	}
	if table == "" {
		return outputError(formatter, ExitCommandError, ErrCodeConfig, "no table: set --table or name it in the schema file")
	}

	docs, err := readDocuments(args, opts.InputFormat, cmd.InOrStdin())
	if err != nil {
		return outputError(formatter, ExitCommandError, ErrCodeInput, err.Error())
	}
	preds, err := c.CompileAll(ctx, conditions(docs))
	if err != nil {
		return outputError(formatter, ExitFailure, compileErrorCode(err), describe(err, docs))
	}

	sd := sqldrv.NewStatsDriver(drv,
		sqldrv.WithSlowThreshold(opts.SlowThreshold),
		sqldrv.WithSlowCheckLog(opts.logger),
	)
	results := make([]CheckResult, len(docs))
	for i, doc := range docs {
		clause := preds[i]
		if clause != "" {
			clause = "WHERE " + clause
		}
		results[i] = CheckResult{File: doc.Name, SQL: clause, OK: true}
		if err := sd.Check(ctx, table, clause); err != nil {
			if !sqldrv.IsCheckError(err) {
				return outputError(formatter, ExitCommandError, ErrCodeGeneric, err.Error())
			}
			results[i].OK, results[i].Error = false, err.Error()
		}
	}
	stats := sd.CheckStats().Stats()
	opts.logger.Debug("checked", "table", table, "stats", stats.String())

	if formatter.Format == "json" {
		if err := formatter.Success(results); err != nil {
			return WrapExitError(ExitCommandError, "write output", err)
		}
	} else if err := formatter.Success(formatChecks(results)); err != nil {
		return WrapExitError(ExitCommandError, "write output", err)
	}
	if stats.Rejected > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d conditions rejected", stats.Rejected, stats.TotalChecks))
	}
	return nil
}

func formatChecks(results []CheckResult) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteByte('\n')
		}
		if r.OK {
			fmt.Fprintf(&b, "ok    %s", r.File)
		} else {
			fmt.Fprintf(&b, "FAIL  %s: %s", r.File, r.Error)
		}
	}
	return b.String()
}
