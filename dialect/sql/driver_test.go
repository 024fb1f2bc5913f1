package sql

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/syssam/sqlcond/dialect"
)

func newMock(t *testing.T, name string) (*Driver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return OpenDB(name, db), mock
}

func TestCheck(t *testing.T) {
	drv, mock := newMock(t, dialect.Postgres)
	mock.ExpectPrepare(`SELECT 1 FROM "public"."users" WHERE "age" > 18`)
	require.NoError(t, drv.Check(context.Background(), "public.users", `WHERE "age" > 18`))
	require.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectPrepare(`SELECT 1 FROM "users" WHERE "nope" = 1`).WillReturnError(errors.New(`column "nope" does not exist`))
	err := drv.Check(context.Background(), "users", `WHERE "nope" = 1`)
	require.Error(t, err)
	assert.True(t, IsCheckError(err))
	var cerr *CheckError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, `SELECT 1 FROM "users" WHERE "nope" = 1`, cerr.Query)
	assert.EqualError(t, err, `dialect/sql: check "SELECT 1 FROM \"users\" WHERE \"nope\" = 1": column "nope" does not exist`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckUnknownDialect(t *testing.T) {
	drv, _ := newMock(t, "oracle")
	err := drv.Check(context.Background(), "users", "")
	require.Error(t, err)
	assert.False(t, IsCheckError(err))
}

// TestCheckQuery tests the statement built for every dialect.
func TestCheckQuery(t *testing.T) {
	tests := []struct {
		dialect string
		table   string
		clause  string
		want    string
	}{
		{dialect.Postgres, "users", "", `SELECT 1 FROM "users"`},
		{dialect.Postgres, "app.users", "WHERE 0 = 1", `SELECT 1 FROM "app"."users" WHERE 0 = 1`},
		{dialect.MySQL, "users", "WHERE `a` = 1", "SELECT 1 FROM `users` WHERE `a` = 1"},
		{dialect.MSSQL, "dbo.users", "", "SELECT 1 FROM [dbo].[users]"},
		{dialect.Default, "users", "", "SELECT 1 FROM users"},
	}
	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckQuery(dialect.MustGet(tt.dialect), tt.table, tt.clause))
		})
	}
}

func TestCheckWithVars(t *testing.T) {
	drv, mock := newMock(t, dialect.Postgres)
	mock.ExpectExec("SET search_path = 'tenant'").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare(`SELECT 1 FROM "users"`)
	mock.ExpectExec("RESET search_path").WillReturnResult(sqlmock.NewResult(0, 0))
	ctx := WithVar(context.Background(), "search_path", "tenant")
	require.NoError(t, drv.Check(ctx, "users", ""))
	require.NoError(t, mock.ExpectationsWereMet())

	drv, mock = newMock(t, dialect.MySQL)
	mock.ExpectExec("SET sql_mode = 'it\\'s'").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare("SELECT 1 FROM `users`")
	mock.ExpectExec("SET sql_mode = NULL").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, drv.Check(WithVar(context.Background(), "sql_mode", "it's"), "users", ""))
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestWithVarsInvalidIdentifier tests that invalid variable names are rejected.
func TestWithVarsInvalidIdentifier(t *testing.T) {
	drv, mock := newMock(t, dialect.Postgres)
	ctx := WithVar(context.Background(), "foo; DROP TABLE users", "bar")
	err := drv.Check(ctx, "users", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid session variable name")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVarFromContext(t *testing.T) {
	ctx := WithVar(context.Background(), "a", "1")
	other := WithVar(ctx, "a", "2")
	v, ok := VarFromContext(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	v, ok = VarFromContext(other, "a")
	assert.True(t, ok)
	assert.Equal(t, "2", v)
	_, ok = VarFromContext(ctx, "b")
	assert.False(t, ok)
}

// TestIsValidIdentifier tests the session variable name validation.
func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"search_path", true},
		{"app.tenant_id", true},
		{"_x1", true},
		{"", false},
		{"1abc", false},
		{"a-b", false},
		{"a b", false},
		{"a;b", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isValidIdentifier(tt.input), tt.input)
	}
}

// TestDialectMethod tests the dialect detection of wrapped driver names.
func TestDialectMethod(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{dialect.Postgres, dialect.Postgres},
		{"postgres-otel", dialect.Postgres},
		{"mysql", dialect.MySQL},
		{"mariadb", dialect.MariaDB},
		{"sqlite3", dialect.SQLite},
		{"mssql", dialect.MSSQL},
	}
	for _, tt := range tests {
		drv := NewDriver(tt.name, Conn{})
		assert.Equal(t, tt.want, drv.Dialect())
		p, err := drv.Profile()
		require.NoError(t, err)
		assert.Equal(t, tt.want, p.Name)
	}
}

func TestOpen(t *testing.T) {
	drv, err := Open("postgresql", "postgres://localhost/db?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, dialect.Postgres, drv.Dialect())
	require.NoError(t, drv.Close())

	drv, err = Open(dialect.MariaDB, "user:pass@tcp(localhost:3306)/db")
	require.NoError(t, err)
	assert.Equal(t, dialect.MariaDB, drv.Dialect())
	require.NoError(t, drv.Close())

	_, err = Open(dialect.MySQL, "not a dsn")
	assert.ErrorContains(t, err, "invalid mysql source")

	_, err = Open(dialect.MSSQL, "sqlserver://localhost")
	assert.ErrorContains(t, err, "no database driver")

	_, err = Open("oracle", "")
	assert.Error(t, err)
}

func TestCheckSQLite(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()
	_, err = db.Exec("CREATE TABLE `users` (`id` INTEGER PRIMARY KEY, `age` INTEGER)")
	require.NoError(t, err)

	drv := OpenDB(dialect.SQLite, db)
	ctx := context.Background()
	require.NoError(t, drv.Check(ctx, "users", "WHERE `age` > 18 AND `id` IN (1, 2)"))
	require.NoError(t, drv.Check(ctx, "users", ""))
	assert.True(t, IsCheckError(drv.Check(ctx, "users", "WHERE `nope` = 1")))
	assert.True(t, IsCheckError(drv.Check(ctx, "users", "WHERE `age` >")))
	assert.True(t, IsCheckError(drv.Check(ctx, "missing", "")))
}

func TestStatsDriver(t *testing.T) {
	drv, mock := newMock(t, dialect.Postgres)
	var slow []string
	sd := NewStatsDriver(drv,
		WithSlowThreshold(time.Hour),
		WithSlowCheckHook(func(_ context.Context, query string, _ time.Duration) {
			slow = append(slow, query)
		}),
	)
	assert.Equal(t, time.Hour, sd.SlowThreshold())

	mock.ExpectPrepare(`SELECT 1 FROM "users" WHERE a`)
	mock.ExpectPrepare(`SELECT 1 FROM "users" WHERE b`).WillReturnError(errors.New("syntax error"))
	require.NoError(t, sd.Check(context.Background(), "users", "WHERE a"))
	require.Error(t, sd.Check(context.Background(), "users", "WHERE b"))

	sd.SetSlowThreshold(-1)
	mock.ExpectPrepare(`SELECT 1 FROM "users" WHERE c`)
	require.NoError(t, sd.Check(context.Background(), "users", "WHERE c"))
	require.NoError(t, mock.ExpectationsWereMet())

	s := sd.CheckStats().Stats()
	assert.EqualValues(t, 3, s.TotalChecks)
	assert.EqualValues(t, 1, s.Rejected)
	assert.EqualValues(t, 1, s.SlowChecks)
	assert.Equal(t, []string{"WHERE c"}, slow)
	assert.Contains(t, s.String(), "checks=3")
	assert.Contains(t, s.String(), "rejected=1")

	sd.CheckStats().Reset()
	assert.Zero(t, sd.CheckStats().Stats().TotalChecks)
	assert.Zero(t, StatsSnapshot{}.AvgDuration())
}
