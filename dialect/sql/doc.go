// Package sql checks compiled conditions against a live database.
//
// A Driver wraps a database/sql pool of one dialect. Check prepares
// SELECT 1 FROM <table> <clause>, so the database parses the clause and
// resolves its columns without reading a row:
//
//	import _ "github.com/lib/pq"
//
//	drv, err := sql.Open(dialect.Postgres, dsn)
//	if err != nil {
//		return err
//	}
//	defer drv.Close()
//	clause, err := where.Clause(cond, where.WithDialect(dialect.MustGet(drv.Dialect())))
//	if err != nil {
//		return err
//	}
//	if err := drv.Check(ctx, "users", clause); err != nil {
//		// The database rejected the clause.
//	}
//
// Session variables set with WithVar are applied on a dedicated connection
// before the statement is prepared and reset afterwards:
//
//	ctx = sql.WithVar(ctx, "search_path", "tenant_42")
//
// NewStatsDriver wraps a Driver with check counters and slow check hooks.
package sql
