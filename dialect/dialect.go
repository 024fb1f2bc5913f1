package dialect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lib/pq"

	"github.com/syssam/sqlcond/schema/field"
)

// Dialect names for external usage.
const (
	Default   = "default"
	Postgres  = "postgres"
	MySQL     = "mysql"
	MariaDB   = "mariadb"
	SQLite    = "sqlite"
	MSSQL     = "mssql"
	Snowflake = "snowflake"
	DB2       = "db2"
)

// EscapeStyle selects how quotes and control characters inside string
// literals are escaped.
type EscapeStyle uint8

// Escape styles.
const (
	// EscapeDoubling doubles embedded single quotes.
	EscapeDoubling EscapeStyle = iota
	// EscapeBackslash escapes quotes and control characters with a backslash.
	EscapeBackslash
)

// BoolStyle selects the boolean literal form.
type BoolStyle uint8

// Boolean literal forms.
const (
	BoolKeyword BoolStyle = iota // true / false
	BoolNumeric                  // 1 / 0
)

// BytesStyle selects the binary literal form.
type BytesStyle uint8

// Binary literal forms.
const (
	BytesEscapedHex BytesStyle = iota // '\x0102'
	BytesXHex                         // X'0102'
	Bytes0x                           // 0x0102
	BytesBXHex                        // BX'0102'
)

// ILikeStyle selects how case-insensitive pattern matching is rendered.
type ILikeStyle uint8

// Case-insensitive LIKE forms.
const (
	// ILikeNative uses the ILIKE keyword.
	ILikeNative ILikeStyle = iota
	// ILikeCollation uses LIKE, relying on a case-insensitive default collation.
	ILikeCollation
	// ILikeLower lower-cases both sides of a LIKE.
	ILikeLower
)

// JSONPathStyle selects how a JSON path is extracted from a column.
type JSONPathStyle uint8

// JSON path extraction forms.
const (
	JSONPathNone     JSONPathStyle = iota
	JSONPathOperator                // ("col"#>>'{a,b}')
	JSONPathUnquote                 // json_unquote(json_extract(`col`,'$.a.b'))
	JSONPathExtract                 // json_extract(`col`,'$.a.b')
)

// ConcatStyle selects how strings are concatenated.
type ConcatStyle uint8

// String concatenation forms.
const (
	ConcatFunc  ConcatStyle = iota // CONCAT(a, b)
	ConcatPipes                    // a || b
)

// Profile describes what one SQL dialect supports and how its literals are
// spelled. Profiles are plain values: they are built once and copied, never
// mutated while a condition is being compiled.
type Profile struct {
	Name string

	// QuoteOpen and QuoteClose delimit identifiers. Identifiers are left
	// bare when both are empty.
	QuoteOpen, QuoteClose string
	// Quoter, if set, replaces the delimiter based identifier quoting.
	Quoter func(string) string

	// StringPrefix is written before every string literal (N for MSSQL).
	StringPrefix string
	Escape       EscapeStyle
	// NUL replaces NUL bytes inside string literals. Empty keeps them.
	NUL string

	Booleans BoolStyle
	Bytes    BytesStyle
	// TimeOffset reports whether timestamp literals carry a UTC offset.
	TimeOffset bool

	SupportsArray    bool
	SupportsRange    bool
	SupportsJSON     bool
	SupportsJSONB    bool
	SupportsRegexp   bool
	SupportsIRegexp  bool
	SupportsFullText bool

	// NullComparisonUsesIs rewrites equality against NULL to IS NULL.
	NullComparisonUsesIs bool
	// ArrayCast annotates array constructors with their element type.
	ArrayCast bool

	ILike ILikeStyle
	// Regexp operators, in the order regexp, not regexp, iregexp, not iregexp.
	RegexpOps [4]string

	JSONPath JSONPathStyle
	// JSONCast casts JSON path extractions to the type of the compared value.
	JSONCast bool

	// PathSeparator joins association path segments in qualified column references.
	PathSeparator string
	Concat        ConcatStyle

	// Types maps field types to their SQL spelling, used by array annotations.
	Types map[field.Type]string
}

var postgresTypes = map[field.Type]string{
	field.TypeBool:     "BOOLEAN",
	field.TypeTime:     "TIMESTAMP WITH TIME ZONE",
	field.TypeDate:     "DATE",
	field.TypeJSON:     "JSON",
	field.TypeJSONB:    "JSONB",
	field.TypeUUID:     "UUID",
	field.TypeBytes:    "BYTEA",
	field.TypeString:   "VARCHAR(255)",
	field.TypeText:     "TEXT",
	field.TypeInt8:     "SMALLINT",
	field.TypeInt16:    "SMALLINT",
	field.TypeInt32:    "INTEGER",
	field.TypeInt:      "INTEGER",
	field.TypeInt64:    "BIGINT",
	field.TypeUint8:    "SMALLINT",
	field.TypeUint16:   "INTEGER",
	field.TypeUint32:   "BIGINT",
	field.TypeUint:     "BIGINT",
	field.TypeUint64:   "BIGINT",
	field.TypeFloat32:  "REAL",
	field.TypeFloat64:  "DOUBLE PRECISION",
	field.TypeDecimal:  "DECIMAL",
	field.TypeTSVector: "TSVECTOR",
}

var profiles = map[string]Profile{
	Default: {
		Name:                 Default,
		Booleans:             BoolKeyword,
		Bytes:                BytesEscapedHex,
		TimeOffset:           true,
		SupportsArray:        true,
		SupportsRange:        true,
		SupportsJSON:         true,
		SupportsJSONB:        true,
		SupportsRegexp:       true,
		SupportsIRegexp:      true,
		SupportsFullText:     true,
		NullComparisonUsesIs: true,
		ArrayCast:            true,
		ILike:                ILikeNative,
		RegexpOps:            [4]string{"~", "!~", "~*", "!~*"},
		JSONPath:             JSONPathOperator,
		JSONCast:             true,
		PathSeparator:        "->",
		Concat:               ConcatFunc,
		Types:                postgresTypes,
	},
	Postgres: {
		Name:                 Postgres,
		QuoteOpen:            `"`,
		QuoteClose:           `"`,
		Quoter:               pq.QuoteIdentifier,
		NUL:                  `\0`,
		Booleans:             BoolKeyword,
		Bytes:                BytesEscapedHex,
		TimeOffset:           true,
		SupportsArray:        true,
		SupportsRange:        true,
		SupportsJSON:         true,
		SupportsJSONB:        true,
		SupportsRegexp:       true,
		SupportsIRegexp:      true,
		SupportsFullText:     true,
		NullComparisonUsesIs: true,
		ArrayCast:            true,
		ILike:                ILikeNative,
		RegexpOps:            [4]string{"~", "!~", "~*", "!~*"},
		JSONPath:             JSONPathOperator,
		JSONCast:             true,
		PathSeparator:        "->",
		Concat:               ConcatFunc,
		Types:                postgresTypes,
	},
	MySQL: {
		Name:                 MySQL,
		QuoteOpen:            "`",
		QuoteClose:           "`",
		Escape:               EscapeBackslash,
		Booleans:             BoolKeyword,
		Bytes:                BytesXHex,
		SupportsJSON:         true,
		SupportsRegexp:       true,
		NullComparisonUsesIs: true,
		ILike:                ILikeCollation,
		RegexpOps:            [4]string{"REGEXP", "NOT REGEXP"},
		JSONPath:             JSONPathUnquote,
		PathSeparator:        "->",
		Concat:               ConcatFunc,
	},
	MariaDB: {
		Name:                 MariaDB,
		QuoteOpen:            "`",
		QuoteClose:           "`",
		Escape:               EscapeBackslash,
		Booleans:             BoolKeyword,
		Bytes:                BytesXHex,
		SupportsJSON:         true,
		SupportsRegexp:       true,
		NullComparisonUsesIs: true,
		ILike:                ILikeCollation,
		RegexpOps:            [4]string{"REGEXP", "NOT REGEXP"},
		JSONPath:             JSONPathUnquote,
		PathSeparator:        "->",
		Concat:               ConcatFunc,
	},
	SQLite: {
		Name:                 SQLite,
		QuoteOpen:            "`",
		QuoteClose:           "`",
		Booleans:             BoolNumeric,
		Bytes:                BytesXHex,
		TimeOffset:           true,
		SupportsJSON:         true,
		NullComparisonUsesIs: true,
		ILike:                ILikeCollation,
		JSONPath:             JSONPathExtract,
		PathSeparator:        "->",
		Concat:               ConcatPipes,
	},
	MSSQL: {
		Name:                 MSSQL,
		QuoteOpen:            "[",
		QuoteClose:           "]",
		StringPrefix:         "N",
		Booleans:             BoolNumeric,
		Bytes:                Bytes0x,
		TimeOffset:           true,
		NullComparisonUsesIs: true,
		ILike:                ILikeCollation,
		PathSeparator:        "->",
		Concat:               ConcatFunc,
	},
	Snowflake: {
		Name:                 Snowflake,
		QuoteOpen:            `"`,
		QuoteClose:           `"`,
		Booleans:             BoolKeyword,
		Bytes:                BytesXHex,
		TimeOffset:           true,
		SupportsRegexp:       true,
		NullComparisonUsesIs: true,
		ILike:                ILikeNative,
		RegexpOps:            [4]string{"REGEXP", "NOT REGEXP"},
		PathSeparator:        "->",
		Concat:               ConcatFunc,
	},
	DB2: {
		Name:                 DB2,
		QuoteOpen:            `"`,
		QuoteClose:           `"`,
		Booleans:             BoolNumeric,
		Bytes:                BytesBXHex,
		NullComparisonUsesIs: true,
		ILike:                ILikeLower,
		PathSeparator:        "->",
		Concat:               ConcatFunc,
	},
}

// aliases maps alternative dialect spellings to profile names.
var aliases = map[string]string{
	"postgresql": Postgres,
	"pg":         Postgres,
	"pgx":        Postgres,
	"sqlite3":    SQLite,
	"sqlserver":  MSSQL,
	"ibmi":       DB2,
}

// Get returns the profile of the named dialect.
func Get(name string) (Profile, error) {
	name = strings.ToLower(name)
	if alias, ok := aliases[name]; ok {
		name = alias
	}
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("dialect: unknown dialect %q", name)
	}
	return p, nil
}

// MustGet is like Get but panics if the dialect is unknown.
func MustGet(name string) Profile {
	p, err := Get(name)
	if err != nil {
		panic(err)
	}
	return p
}

// Names returns the names of all registered profiles in sorted order.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
