package dialect_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlcond/dialect"
	"github.com/syssam/sqlcond/schema/field"
)

func TestGet(t *testing.T) {
	t.Parallel()
	for _, name := range dialect.Names() {
		p, err := dialect.Get(name)
		require.NoError(t, err)
		assert.Equal(t, name, p.Name)
		assert.True(t, p.NullComparisonUsesIs, name)
	}

	p, err := dialect.Get("PostgreSQL")
	require.NoError(t, err)
	assert.Equal(t, dialect.Postgres, p.Name)
	p, err = dialect.Get("sqlite3")
	require.NoError(t, err)
	assert.Equal(t, dialect.SQLite, p.Name)

	_, err = dialect.Get("oracle")
	require.EqualError(t, err, `dialect: unknown dialect "oracle"`)
	assert.Panics(t, func() { dialect.MustGet("oracle") })
}

func TestNames(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"db2", "default", "mariadb", "mssql", "mysql", "postgres", "snowflake", "sqlite"}, dialect.Names())
}

func TestProfile_Quote(t *testing.T) {
	t.Parallel()
	tests := []struct {
		dialect string
		ident   string
		want    string
	}{
		{dialect.Default, "users", "users"},
		{dialect.Postgres, "users", `"users"`},
		{dialect.Postgres, `we"ird`, `"we""ird"`},
		{dialect.MySQL, "users", "`users`"},
		{dialect.MySQL, "we`ird", "`we``ird`"},
		{dialect.SQLite, "users", "`users`"},
		{dialect.MSSQL, "users", "[users]"},
		{dialect.MSSQL, "a]b", "[a]]b]"},
		{dialect.Snowflake, "users", `"users"`},
		{dialect.Postgres, "*", "*"},
	}
	for _, tt := range tests {
		t.Run(tt.dialect+"/"+tt.ident, func(t *testing.T) {
			assert.Equal(t, tt.want, dialect.MustGet(tt.dialect).Quote(tt.ident))
		})
	}
}

func TestProfile_QuoteString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		dialect string
		in      string
		want    string
	}{
		{dialect.Postgres, "abc", "'abc'"},
		{dialect.Postgres, "it's", "'it''s'"},
		{dialect.Postgres, "a\x00b", `'a\0b'`},
		{dialect.Postgres, `back\slash`, `'back\slash'`},
		{dialect.SQLite, "a\x00b", "'a\x00b'"},
		{dialect.MySQL, "it's", `'it\'s'`},
		{dialect.MySQL, "a\x00b\n\"c\\", `'a\0b\n\"c\\'`},
		{dialect.MariaDB, "\t\r\b\x1a", `'\t\r\b\Z'`},
		{dialect.MSSQL, "it's", "N'it''s'"},
	}
	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			assert.Equal(t, tt.want, dialect.MustGet(tt.dialect).QuoteString(tt.in))
		})
	}
}

func TestProfile_Literals(t *testing.T) {
	t.Parallel()
	pg, my, lite, ms := dialect.MustGet(dialect.Postgres), dialect.MustGet(dialect.MySQL), dialect.MustGet(dialect.SQLite), dialect.MustGet(dialect.MSSQL)

	assert.Equal(t, "true", pg.Bool(true))
	assert.Equal(t, "false", my.Bool(false))
	assert.Equal(t, "1", lite.Bool(true))
	assert.Equal(t, "0", ms.Bool(false))

	b := []byte{0x01, 0xab}
	assert.Equal(t, `'\x01ab'`, pg.BytesLiteral(b))
	assert.Equal(t, "X'01ab'", my.BytesLiteral(b))
	assert.Equal(t, "0x01ab", ms.BytesLiteral(b))
	assert.Equal(t, "BX'01ab'", dialect.MustGet(dialect.DB2).BytesLiteral(b))

	ts := time.Date(2021, 3, 4, 5, 6, 7, 8_000_000, time.UTC)
	assert.Equal(t, "'2021-03-04 05:06:07.008 +00:00'", pg.TimeLiteral(ts))
	assert.Equal(t, "'2021-03-04 05:06:07.008'", my.TimeLiteral(ts))
	assert.Equal(t, "N'2021-03-04 05:06:07.008 +00:00'", ms.TimeLiteral(ts))
	assert.Equal(t, "'2021-03-04'", pg.DateLiteral(ts))
}

func TestProfile_TypeName(t *testing.T) {
	t.Parallel()
	pg := dialect.MustGet(dialect.Postgres)
	name, ok := pg.TypeName(field.Int("a").Array().Descriptor())
	require.True(t, ok)
	assert.Equal(t, "INTEGER", name)
	name, ok = pg.TypeName(field.String("a").Descriptor())
	require.True(t, ok)
	assert.Equal(t, "VARCHAR(255)", name)
	name, ok = pg.TypeName(field.Enum("status").SchemaType(map[string]string{dialect.Postgres: "enum_users_status"}).Descriptor())
	require.True(t, ok)
	assert.Equal(t, "enum_users_status", name)
	_, ok = pg.TypeName(field.Enum("status").Descriptor())
	assert.False(t, ok)
	_, ok = pg.TypeName(nil)
	assert.False(t, ok)
	_, ok = dialect.MustGet(dialect.MySQL).TypeName(field.Int("a").Descriptor())
	assert.False(t, ok)
}

func TestProfile_Capabilities(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"array", "range", "json", "jsonb", "regexp", "iregexp", "fulltext"}, dialect.MustGet(dialect.Postgres).Capabilities())
	assert.Equal(t, []string{"json", "regexp"}, dialect.MustGet(dialect.MySQL).Capabilities())
	assert.Equal(t, []string{"json"}, dialect.MustGet(dialect.SQLite).Capabilities())
	assert.Empty(t, dialect.MustGet(dialect.MSSQL).Capabilities())
}
