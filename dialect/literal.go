package dialect

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/syssam/sqlcond/schema/field"
)

// Layouts of timestamp and date literals.
const (
	TimeLayout       = "2006-01-02 15:04:05.000 -07:00"
	LocalTimeLayout  = "2006-01-02 15:04:05.000"
	DateLayout       = "2006-01-02"
	nulByte          = "\x00"
	backslashEscapes = "\x00\n\r\b\t\x1a\\'\""
)

// Quote quotes an identifier. The star wildcard is never quoted.
func (p Profile) Quote(ident string) string {
	switch {
	case ident == "*":
		return ident
	case p.Quoter != nil:
		return p.Quoter(ident)
	case p.QuoteOpen == "" && p.QuoteClose == "":
		return ident
	default:
		return p.QuoteOpen + strings.ReplaceAll(ident, p.QuoteClose, p.QuoteClose+p.QuoteClose) + p.QuoteClose
	}
}

// QuoteString returns s as a string literal of the dialect.
func (p Profile) QuoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(p.StringPrefix) + 2)
	b.WriteString(p.StringPrefix)
	b.WriteByte('\'')
	switch p.Escape {
	case EscapeBackslash:
		for i := 0; i < len(s); i++ {
			c := s[i]
			if strings.IndexByte(backslashEscapes, c) < 0 {
				b.WriteByte(c)
				continue
			}
			b.WriteByte('\\')
			switch c {
			case 0:
				b.WriteByte('0')
			case '\n':
				b.WriteByte('n')
			case '\r':
				b.WriteByte('r')
			case '\b':
				b.WriteByte('b')
			case '\t':
				b.WriteByte('t')
			case 0x1a:
				b.WriteByte('Z')
			default:
				b.WriteByte(c)
			}
		}
	default:
		s = strings.ReplaceAll(s, "'", "''")
		if p.NUL != "" {
			s = strings.ReplaceAll(s, nulByte, p.NUL)
		}
		b.WriteString(s)
	}
	b.WriteByte('\'')
	return b.String()
}

// Bool returns the boolean literal of the dialect.
func (p Profile) Bool(v bool) string {
	switch {
	case p.Booleans == BoolNumeric && v:
		return "1"
	case p.Booleans == BoolNumeric:
		return "0"
	case v:
		return "true"
	default:
		return "false"
	}
}

// BytesLiteral returns the binary literal of the dialect.
func (p Profile) BytesLiteral(v []byte) string {
	h := hex.EncodeToString(v)
	switch p.Bytes {
	case BytesXHex:
		return "X'" + h + "'"
	case Bytes0x:
		return "0x" + h
	case BytesBXHex:
		return "BX'" + h + "'"
	default:
		return `'\x` + h + "'"
	}
}

// TimeLiteral returns the timestamp literal of the dialect for t, which is
// expected to be in the target time zone already.
func (p Profile) TimeLiteral(t time.Time) string {
	if p.TimeOffset {
		return p.QuoteString(t.Format(TimeLayout))
	}
	return p.QuoteString(t.Format(LocalTimeLayout))
}

// DateLiteral returns the calendar date literal of the dialect.
func (p Profile) DateLiteral(t time.Time) string {
	return p.QuoteString(t.Format(DateLayout))
}

// TypeName returns the SQL type of the attribute's values, preferring the
// attribute's schema type for the dialect.
func (p Profile) TypeName(d *field.Descriptor) (string, bool) {
	if d == nil {
		return "", false
	}
	if t, ok := d.SchemaType[p.Name]; ok && t != "" {
		return t, true
	}
	t, ok := p.Types[d.Type]
	return t, ok
}

// Capabilities returns the names of the optional features the dialect supports.
func (p Profile) Capabilities() []string {
	var caps []string
	for _, c := range []struct {
		name string
		ok   bool
	}{
		{"array", p.SupportsArray},
		{"range", p.SupportsRange},
		{"json", p.SupportsJSON},
		{"jsonb", p.SupportsJSONB},
		{"regexp", p.SupportsRegexp},
		{"iregexp", p.SupportsIRegexp},
		{"fulltext", p.SupportsFullText},
	} {
		if c.ok {
			caps = append(caps, c.name)
		}
	}
	return caps
}
