// Package dialect describes the SQL dialects supported by sqlcond.
//
// Each dialect is one Profile: a read-only row of capability flags and
// literal spellings consulted while a condition is compiled. Adding a dialect
// means adding one profile, not new branches in the compiler.
//
// # Supported Dialects
//
//   - Postgres: PostgreSQL (arrays, ranges, JSON/JSONB, regular expressions, full-text search)
//   - MySQL and MariaDB: backtick identifiers, backslash string escapes, JSON paths
//   - SQLite: backtick identifiers, 1/0 booleans, JSON paths
//   - MSSQL: bracket identifiers, N'' string literals
//   - Snowflake and DB2
//   - Default: a Postgres-like profile that leaves identifiers unquoted
//
// # Dialect Constants
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// # Usage
//
//	p, err := dialect.Get(dialect.Postgres)
//	if err != nil {
//	    return err
//	}
//	p.Quote("users")        // "users"
//	p.QuoteString("it's")   // 'it''s'
//
// Synthetic profiles for tests are plain struct literals:
//
//	p := dialect.Profile{Name: "test", SupportsArray: true, NullComparisonUsesIs: true}
package dialect
