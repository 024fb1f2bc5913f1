package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/syssam/sqlcond/where"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	InputFormat string
	Clause      bool
	Statement   string
	Watch       bool
}

// CompileResult is the compiled predicate of one document.
type CompileResult struct {
	File string `json:"file"`
	SQL  string `json:"sql"`
}

// statementKinds maps --statement values to statement kinds.
var statementKinds = map[string]where.StatementKind{
	"select":      where.Select,
	"update":      where.Update,
	"delete":      where.Delete,
	"bulk-update": where.BulkUpdate,
	"bulk-delete": where.BulkDelete,
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile [file...]",
		Short: "Compile condition documents to SQL",
		Long: `Compile condition documents to SQL predicates.

Documents are read from the given files, or from standard input when no file
is given ("-" also names standard input). The decoder is picked by file
extension (.json, .msgpack, .mpk, YAML otherwise) unless --input-format is set.`,
		Example: `  sqlcond compile -d postgres -s schema.yaml filter.yaml
  echo '{"age": {"$gt": 30}}' | sqlcond compile --input-format json --clause
  sqlcond compile --watch -s schema.yaml filters/*.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.InputFormat, "input-format", "i", "", "input format (json|yaml|msgpack), by file extension when empty")
	cmd.Flags().BoolVar(&opts.Clause, "clause", false, "print complete WHERE clauses")
	cmd.Flags().StringVar(&opts.Statement, "statement", "", "statement kind named in errors (select|update|delete|bulk-update|bulk-delete)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "recompile files when they change")

	return cmd
}

func runCompile(cmd *cobra.Command, opts *CompileOptions, args []string) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	var extra []where.Option
	if opts.Statement != "" {
		kind, ok := statementKinds[opts.Statement]
		if !ok {
			return outputError(formatter, ExitCommandError, ErrCodeConfig, fmt.Sprintf("invalid statement %q", opts.Statement))
		}
		extra = append(extra, where.WithStatement(kind))
	}
	c, err := opts.newCompiler(nil, extra...)
	if err != nil {
		return outputError(formatter, ExitCommandError, ErrCodeConfig, err.Error())
	}

	if !opts.Watch {
		return compileFiles(cmd, opts, c, formatter, args)
	}
	if len(args) == 0 || slices.Contains(args, stdinName) {
		return outputError(formatter, ExitCommandError, ErrCodeInput, "--watch requires condition files")
	}
	// Report the initial state, then keep going regardless of its outcome.
	_ = compileFiles(cmd, opts, c, formatter, args)
	return watchFiles(cmd.Context(), opts.RootOptions, args, func(name string) error {
		return compileFiles(cmd, opts, c, formatter, []string{name})
	})
}

func compileFiles(cmd *cobra.Command, opts *CompileOptions, c *compiler, formatter *OutputFormatter, args []string) error {
	docs, err := readDocuments(args, opts.InputFormat, cmd.InOrStdin())
	if err != nil {
		return outputError(formatter, ExitCommandError, ErrCodeInput, err.Error())
	}
	preds, err := c.CompileAll(cmd.Context(), conditions(docs))
	if err != nil {
		return outputError(formatter, ExitFailure, compileErrorCode(err), describe(err, docs))
	}

	results := make([]CompileResult, len(docs))
	for i, doc := range docs {
		sql := preds[i]
		if opts.Clause && sql != "" {
			sql = "WHERE " + sql
		}
		results[i] = CompileResult{File: doc.Name, SQL: sql}
	}
	opts.logger.Debug("compiled", "documents", len(docs))

	if formatter.Format == "json" {
		return formatter.Success(results)
	}
	return formatter.Success(formatResults(results))
}

// formatResults renders results as text. Each predicate is preceded by a
// comment naming its file when there are several.
func formatResults(results []CompileResult) string {
	if len(results) == 1 {
		return results[0].SQL
	}
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "-- %s\n%s", r.File, r.SQL)
	}
	return b.String()
}

// describe names the failing document in place of its index.
func describe(err error, docs []document) string {
	msg := err.Error()
	for i, doc := range docs {
		prefix := fmt.Sprintf("sqlcond: condition %d: ", i)
		if rest, ok := strings.CutPrefix(msg, prefix); ok {
			return doc.Name + ": " + rest
		}
	}
	return msg
}

// outputError reports the error in the configured format and returns the
// matching exit error. The message is not repeated by Execute.
func outputError(formatter *OutputFormatter, exitCode int, code, message string) error {
	if err := formatter.Error(code, message, nil); err != nil {
		return WrapExitError(ExitCommandError, "write output", err)
	}
	return &ExitError{Code: exitCode, Message: message, reported: true}
}

// watchFiles runs the callback for every change of the named files until
// the context is canceled.
func watchFiles(ctx context.Context, opts *RootOptions, names []string, callback func(name string) error) error {
	w, err := NewWatcher(names, opts.logger, callback)
	if err != nil {
		return WrapExitError(ExitCommandError, "watch", err)
	}
	opts.logger.Info("watching for changes", "files", len(names))
	return w.Run(ctx)
}
