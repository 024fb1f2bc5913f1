package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/syssam/sqlcond/dialect"
)

// validIdentifierRe validates session variable names (alphanumeric, underscores, dots).
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// isValidIdentifier checks if the string is a valid SQL identifier.
func isValidIdentifier(s string) bool {
	return s != "" && len(s) <= 128 && validIdentifierRe.MatchString(s)
}

// drivers maps dialect names to the database/sql driver serving them.
var drivers = map[string]string{
	dialect.Postgres: "postgres",
	dialect.MySQL:    "mysql",
	dialect.MariaDB:  "mysql",
	dialect.SQLite:   "sqlite",
}

// Driver checks compiled conditions against a live database.
type Driver struct {
	Conn
	dialect string
}

// NewDriver creates a new Driver with the given Conn and dialect.
func NewDriver(dialect string, c Conn) *Driver {
	return &Driver{dialect: dialect, Conn: c}
}

// Open opens a database of the given dialect. MySQL and MariaDB sources are
// validated before the pool is created, since database/sql connects lazily.
// The database/sql driver of the dialect must be registered by the caller.
func Open(name, source string) (*Driver, error) {
	p, err := dialect.Get(name)
	if err != nil {
		return nil, err
	}
	drv, ok := drivers[p.Name]
	if !ok {
		return nil, fmt.Errorf("dialect/sql: no database driver for dialect %q", p.Name)
	}
	if drv == "mysql" {
		if _, err := mysql.ParseDSN(source); err != nil {
			return nil, fmt.Errorf("dialect/sql: invalid %s source: %w", p.Name, err)
		}
	}
	db, err := sql.Open(drv, source)
	if err != nil {
		return nil, err
	}
	return NewDriver(p.Name, Conn{db, p.Name}), nil
}

// OpenDB wraps the given database/sql.DB method with a Driver.
func OpenDB(dialect string, db *sql.DB) *Driver {
	return NewDriver(dialect, Conn{db, dialect})
}

// DB returns the underlying *sql.DB instance.
func (d Driver) DB() *sql.DB {
	return d.ExecQuerier.(*sql.DB)
}

// Dialect returns the dialect name of the driver.
func (d Driver) Dialect() string {
	// If the underlying driver is wrapped with a telemetry driver.
	for _, name := range []string{dialect.MySQL, dialect.MariaDB, dialect.SQLite, dialect.Postgres} {
		if strings.HasPrefix(d.dialect, name) {
			return name
		}
	}
	return d.dialect
}

// Profile returns the capability profile of the driver dialect.
func (d Driver) Profile() (dialect.Profile, error) {
	return dialect.Get(d.Dialect())
}

// Close closes the underlying connection.
func (d *Driver) Close() error { return d.DB().Close() }

// CheckError reports a clause rejected by the database.
type CheckError struct {
	Query string
	Err   error
}

// Error returns the error string.
func (e *CheckError) Error() string {
	return fmt.Sprintf("dialect/sql: check %q: %v", e.Query, e.Err)
}

// Unwrap returns the database error.
func (e *CheckError) Unwrap() error {
	return e.Err
}

// IsCheckError returns true if the error is a CheckError.
func IsCheckError(err error) bool {
	var e *CheckError
	return errors.As(err, &e)
}

// Check prepares a query selecting from table with the given clause, so
// the database parses the clause and resolves its columns without running
// it. The clause is a compiled WHERE clause, or empty.
func (d *Driver) Check(ctx context.Context, table, clause string) error {
	p, err := d.Profile()
	if err != nil {
		return err
	}
	query := CheckQuery(p, table, clause)
	if err := d.Prepare(ctx, query); err != nil {
		return &CheckError{Query: query, Err: err}
	}
	return nil
}

// CheckQuery returns the statement prepared by Check. Dotted table names
// are schema qualified.
func CheckQuery(p dialect.Profile, table, clause string) string {
	parts := strings.Split(table, ".")
	for i := range parts {
		parts[i] = p.Quote(parts[i])
	}
	var b strings.Builder
	b.WriteString("SELECT 1 FROM ")
	b.WriteString(strings.Join(parts, "."))
	if clause != "" {
		b.WriteByte(' ')
		b.WriteString(clause)
	}
	return b.String()
}

// ctxVarsKey is the key used for attaching and reading the context variables.
type ctxVarsKey struct{}

// sessionVars holds session variables to set before every check.
type sessionVars struct {
	vars []struct{ k, v string }
}

// WithVar returns a new context that holds a session variable to set before
// the check statement is prepared, e.g. the postgres search_path.
func WithVar(ctx context.Context, name, value string) context.Context {
	sv, _ := ctx.Value(ctxVarsKey{}).(sessionVars)
	sv.vars = append(sv.vars[:len(sv.vars):len(sv.vars)], struct {
		k, v string
	}{
		k: name,
		v: value,
	})
	return context.WithValue(ctx, ctxVarsKey{}, sv)
}

// VarFromContext returns the session variable value from the context.
func VarFromContext(ctx context.Context, name string) (string, bool) {
	sv, _ := ctx.Value(ctxVarsKey{}).(sessionVars)
	for i := len(sv.vars) - 1; i >= 0; i-- {
		if sv.vars[i].k == name {
			return sv.vars[i].v, true
		}
	}
	return "", false
}

// ExecQuerier wraps the standard Exec and Prepare methods.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// Conn implements the check statements over an ExecQuerier.
type Conn struct {
	ExecQuerier
	dialect string
}

// Prepare prepares the query and closes the statement right away.
func (c Conn) Prepare(ctx context.Context, query string) (rerr error) {
	ex, cf, err := c.maySetVars(ctx)
	if err != nil {
		return fmt.Errorf("dialect/sql: prepare: set session vars: %w", err)
	}
	if cf != nil {
		defer func() { rerr = errors.Join(rerr, cf()) }()
	}
	stmt, err := ex.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	return stmt.Close()
}

// maySetVars sets the session variables before preparing a statement.
func (c Conn) maySetVars(ctx context.Context) (ExecQuerier, func() error, error) {
	sv, _ := ctx.Value(ctxVarsKey{}).(sessionVars)
	if len(sv.vars) == 0 {
		return c, nil, nil
	}
	var (
		ex    ExecQuerier  // Underlying ExecQuerier.
		cf    func() error // Close function.
		reset []string     // Reset variables.
		seen  = make(map[string]struct{}, len(sv.vars))
	)
	switch e := c.ExecQuerier.(type) {
	case *sql.Tx:
		ex = e
	case *sql.DB:
		conn, err := e.Conn(ctx)
		if err != nil {
			return nil, nil, err
		}
		ex, cf = conn, conn.Close
	default:
		return nil, nil, fmt.Errorf("unsupported ExecQuerier type: %T", c.ExecQuerier)
	}
	p, err := dialect.Get(c.dialect)
	if err != nil {
		p = dialect.MustGet(dialect.Default)
	}
	for _, s := range sv.vars {
		if !isValidIdentifier(s.k) {
			if cf != nil {
				_ = cf()
			}
			return nil, nil, fmt.Errorf("invalid session variable name: %q", s.k)
		}
		if _, ok := seen[s.k]; !ok {
			switch p.Name {
			case dialect.Postgres:
				reset = append(reset, fmt.Sprintf("RESET %s", s.k))
			case dialect.MySQL, dialect.MariaDB:
				reset = append(reset, fmt.Sprintf("SET %s = NULL", s.k))
			}
			seen[s.k] = struct{}{}
		}
		if _, err := ex.ExecContext(ctx, fmt.Sprintf("SET %s = %s", s.k, p.QuoteString(s.v))); err != nil {
			if cf != nil {
				err = errors.Join(err, cf())
			}
			return nil, nil, err
		}
	}
	// Reset the variables before the connection returns to the pool, even
	// if the check context was canceled.
	if cls := cf; cf != nil && len(reset) > 0 {
		cf = func() error {
			cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			for _, q := range reset {
				if _, err := ex.ExecContext(cleanupCtx, q); err != nil {
					return errors.Join(err, cls())
				}
			}
			return cls()
		}
	}
	return ex, cf, nil
}
