package cli

import (
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSQLiteDB creates a database file holding the users table.
func newSQLiteDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec("CREATE TABLE `users` (`id` INTEGER PRIMARY KEY, `name` TEXT NOT NULL, `age` INTEGER NOT NULL, `active` BOOLEAN NOT NULL, `deleted_at` DATETIME)")
	require.NoError(t, err)
	return path
}

func TestCheck(t *testing.T) {
	dsn := newSQLiteDB(t)

	stdout, stderr, code := execute(t, "", "-d", "sqlite", "-s", "testdata/schema.yaml", "check", "--dsn", dsn, "testdata/filter.yaml", "testdata/range.json")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "ok    testdata/filter.yaml\nok    testdata/range.json\n", stdout)
}

func TestCheckRejected(t *testing.T) {
	dsn := newSQLiteDB(t)
	doc := writeFile(t, "score.yaml", "score:\n  $gt: 1\n")

	stdout, stderr, code := execute(t, "", "-d", "sqlite", "check", "--dsn", dsn, "--table", "users", "testdata/range.json", doc)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "ok    testdata/range.json\n")
	assert.Contains(t, stdout, "FAIL  "+doc+": ")
	assert.Contains(t, stdout, "no such column: score")
	assert.Contains(t, stderr, "Error: 1 of 2 conditions rejected")
}

func TestCheckJSON(t *testing.T) {
	dsn := newSQLiteDB(t)
	doc := writeFile(t, "score.json", `{"score": {"$gt": 1}}`)

	stdout, _, code := execute(t, "", "--format", "json", "-d", "sqlite", "check", "--dsn", dsn, "--table", "users", doc)
	assert.Equal(t, ExitFailure, code)

	var resp struct {
		Status string        `json:"status"`
		Data   []CheckResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp), stdout)
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, doc, resp.Data[0].File)
	assert.Equal(t, "WHERE `score` > 1", resp.Data[0].SQL)
	assert.False(t, resp.Data[0].OK)
	assert.Contains(t, resp.Data[0].Error, "no such column: score")
}

func TestCheckInspect(t *testing.T) {
	dsn := newSQLiteDB(t)
	doc := writeFile(t, "filter.yaml", "age:\n  $gte: 18\ndeleted_at: null\n")

	stdout, stderr, code := execute(t, "", "-d", "sqlite", "check", "--dsn", dsn, "--table", "users", "--inspect", doc)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "ok    "+doc+"\n", stdout)

	// Inspected attributes reject keys that are not columns.
	unknown := writeFile(t, "unknown.yaml", "score: 1\n")
	stdout, _, code = execute(t, "", "-d", "sqlite", "check", "--dsn", dsn, "--table", "users", "--inspect", unknown)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "Error [E101]: "+unknown+`: sqlcond: unknown attribute "score"`)
}

func TestCheckSettingsFromEnv(t *testing.T) {
	dsn := newSQLiteDB(t)
	t.Setenv("SQLCOND_DSN", dsn)
	t.Setenv("SQLCOND_TABLE", "users")

	stdout, stderr, code := execute(t, "", "-d", "sqlite", "check", "testdata/range.json")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "ok    testdata/range.json\n", stdout)
}

func TestCheckCommandErrors(t *testing.T) {
	dsn := newSQLiteDB(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no dsn", []string{"check", "testdata/filter.yaml"}, "Error [E002]: --dsn is required"},
		{"no table", []string{"-d", "sqlite", "check", "--dsn", dsn, "testdata/filter.yaml"}, "Error [E002]: no table"},
		{"inspect without table", []string{"-d", "sqlite", "check", "--dsn", dsn, "--inspect", "testdata/filter.yaml"}, "Error [E002]: --inspect requires --table"},
		{"bad var", []string{"-d", "sqlite", "check", "--dsn", dsn, "--var", "search_path", "testdata/filter.yaml"}, `Error [E002]: invalid --var "search_path"`},
		{"no driver", []string{"-d", "mssql", "check", "--dsn", "sqlserver://localhost", "testdata/filter.yaml"}, `Error [E002]: dialect/sql: no database driver for dialect "mssql"`},
		{"bad mysql dsn", []string{"-d", "mysql", "check", "--dsn", "localhost:3306", "testdata/filter.yaml"}, "Error [E002]: dialect/sql: invalid mysql source"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, code := execute(t, "", tt.args...)
			assert.Equal(t, ExitCommandError, code)
			assert.Contains(t, stdout, tt.want)
		})
	}
}

func TestFormatChecks(t *testing.T) {
	got := formatChecks([]CheckResult{
		{File: "a.yaml", OK: true},
		{File: "b.yaml", Error: "boom"},
	})
	assert.Equal(t, "ok    a.yaml\nFAIL  b.yaml: boom", got)
}
