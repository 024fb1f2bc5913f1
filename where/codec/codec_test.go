package codec_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/sqlcond/dialect"
	"github.com/syssam/sqlcond/schema/field"
	"github.com/syssam/sqlcond/where"
	"github.com/syssam/sqlcond/where/codec"
)

func TestDecodeJSON(t *testing.T) {
	t.Parallel()
	v, err := codec.DecodeJSON(strings.NewReader(`{"b": 1, "a": {"$gt": 2.5}, "c": [1, "x", null, true]}`))
	require.NoError(t, err)
	assert.Equal(t, where.M(
		"b", json.Number("1"),
		"a", where.M("$gt", json.Number("2.5")),
		"c", []any{json.Number("1"), "x", nil, true},
	), v)

	v, err = codec.DecodeJSON(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = codec.DecodeJSON(strings.NewReader(`{}`))
	require.NoError(t, err)
	assert.Equal(t, where.Map{}, v)

	_, err = codec.DecodeJSON(strings.NewReader(`{} {}`))
	assert.Error(t, err)
	_, err = codec.DecodeJSON(strings.NewReader(`{"a": [1,`))
	assert.Error(t, err)
}

func TestDecodeYAML(t *testing.T) {
	t.Parallel()
	doc := `
status: active
age:
  $gte: 18
  $lt: 65
$or:
  - role: [admin, owner]
  - deleted_at: null
base: &b 1
copy: *b
`
	v, err := codec.DecodeYAML(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, where.M(
		"status", "active",
		"age", where.M("$gte", 18, "$lt", 65),
		"$or", []any{
			where.M("role", []any{"admin", "owner"}),
			where.M("deleted_at", nil),
		},
		"base", 1,
		"copy", 1,
	), v)

	v, err = codec.DecodeYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = codec.DecodeYAML(strings.NewReader("? [a, b]\n: 1\n"))
	assert.Error(t, err)
}

func TestDecodeMsgpack(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	require.NoError(t, enc.EncodeMapLen(3))
	require.NoError(t, enc.EncodeString("b"))
	require.NoError(t, enc.EncodeInt(1))
	require.NoError(t, enc.EncodeString("a"))
	require.NoError(t, enc.EncodeMapLen(1))
	require.NoError(t, enc.EncodeString("$in"))
	require.NoError(t, enc.Encode([]string{"x", "y"}))
	require.NoError(t, enc.EncodeString("c"))
	require.NoError(t, enc.EncodeNil())

	v, err := codec.DecodeMsgpack(&buf)
	require.NoError(t, err)
	assert.Equal(t, where.M(
		"b", int64(1),
		"a", where.M("$in", []any{"x", "y"}),
		"c", nil,
	), v)

	buf.Reset()
	require.NoError(t, enc.EncodeMapLen(1))
	require.NoError(t, enc.EncodeInt(1))
	require.NoError(t, enc.EncodeInt(2))
	_, err = codec.DecodeMsgpack(&buf)
	assert.Error(t, err)
}

func TestWrappers(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		doc  string
		want any
	}{
		{
			name: "literal",
			doc:  `{"$literal": "a > now()"}`,
			want: where.Literal("a > now()"),
		},
		{
			name: "function",
			doc:  `{"name": {"$fn": ["lower", {"$col": "other"}]}}`,
			want: where.M("name", where.Fn("lower", where.M("$col", "other"))),
		},
		{
			name: "cast",
			doc:  `{"id": {"$eq": {"$cast": ["42", "integer"]}}}`,
			want: where.M("id", where.M("$eq", where.Cast("42", "integer"))),
		},
		{
			name: "where",
			doc:  `[{"$where": ["name", "$ne", "x"]}]`,
			want: []any{where.Where("name", where.Ne, "x")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := codec.DecodeJSON(strings.NewReader(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, doc := range []string{
		`{"$literal": 1}`,
		`{"$fn": "lower"}`,
		`{"$fn": []}`,
		`{"$fn": [1]}`,
		`{"$cast": ["1"]}`,
		`{"$cast": ["1", 2]}`,
		`{"$where": ["a", "$eq"]}`,
		`{"$where": ["a", "$nope", 1]}`,
		`{"$where": ["a", 1, 1]}`,
	} {
		_, err := codec.DecodeJSON(strings.NewReader(doc))
		assert.ErrorIs(t, err, codec.ErrWrapper, doc)
	}
}

func TestDecode_Compile(t *testing.T) {
	t.Parallel()
	want := "b = 1 AND a > 2 AND (role IN ('admin', 'owner') OR deleted_at IS NULL) AND lower(name) = 'a8m'"
	docs := map[codec.Format]string{
		codec.JSON: `{
			"b": 1,
			"a": {"$gt": 2},
			"$or": [{"role": ["admin", "owner"]}, {"deleted_at": null}],
			"$and": [{"$where": [{"$fn": ["lower", {"$col": "name"}]}, "$eq", "a8m"]}]
		}`,
		codec.YAML: `
b: 1
a: {$gt: 2}
$or:
  - role: [admin, owner]
  - deleted_at: ~
$and:
  - $where: [{$fn: [lower, {$col: name}]}, $eq, a8m]
`,
	}
	for f, doc := range docs {
		t.Run(f.String(), func(t *testing.T) {
			v, err := codec.Unmarshal([]byte(doc), f)
			require.NoError(t, err)
			got, err := where.Compile(v)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestDecodeJSON_Numbers(t *testing.T) {
	t.Parallel()
	v, err := codec.Unmarshal([]byte(`{"meta.score": {"$gt": 5}, "created_at": 1356998400000}`), codec.JSON)
	require.NoError(t, err)
	got, err := where.Compile(v,
		where.WithDialect(dialect.MustGet(dialect.Postgres)),
		where.WithAttributes(field.NewAttributes(field.JSONB("meta"), field.Time("created_at"))),
	)
	require.NoError(t, err)
	assert.Equal(t, `("meta"#>>'{score}')::double precision > 5 AND "created_at" = '2013-01-01 00:00:00.000 +00:00'`, got)
}

func TestFormat(t *testing.T) {
	t.Parallel()
	assert.Equal(t, codec.JSON, codec.FormatOf("a/cond.json"))
	assert.Equal(t, codec.YAML, codec.FormatOf("cond.yml"))
	assert.Equal(t, codec.YAML, codec.FormatOf("cond"))
	assert.Equal(t, codec.Msgpack, codec.FormatOf("cond.MPK"))
	for _, name := range []string{"json", "yaml", "yml", "msgpack", "mpk"} {
		f, err := codec.ParseFormat(name)
		require.NoError(t, err)
		assert.NotEqual(t, "unknown", f.String())
	}
	_, err := codec.ParseFormat("toml")
	assert.Error(t, err)
	assert.Equal(t, "unknown", codec.Format(0).String())
	_, err = codec.Decode(strings.NewReader("{}"), codec.Format(9))
	assert.Error(t, err)
}
