package field

import (
	"fmt"
	"strings"
)

// A Type represents a field type.
type Type uint8

// List of field types.
const (
	TypeInvalid Type = iota
	TypeBool
	TypeTime
	TypeDate
	TypeJSON
	TypeJSONB
	TypeUUID
	TypeBytes
	TypeEnum
	TypeString
	TypeText
	TypeOther
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt
	TypeInt64
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint
	TypeUint64
	TypeFloat32
	TypeFloat64
	TypeDecimal
	TypeRange
	TypeTSVector
	endTypes
)

var typeNames = [...]string{
	TypeInvalid:  "invalid",
	TypeBool:     "bool",
	TypeTime:     "time",
	TypeDate:     "date",
	TypeJSON:     "json",
	TypeJSONB:    "jsonb",
	TypeUUID:     "uuid",
	TypeBytes:    "bytes",
	TypeEnum:     "enum",
	TypeString:   "string",
	TypeText:     "text",
	TypeOther:    "other",
	TypeInt8:     "int8",
	TypeInt16:    "int16",
	TypeInt32:    "int32",
	TypeInt:      "int",
	TypeInt64:    "int64",
	TypeUint8:    "uint8",
	TypeUint16:   "uint16",
	TypeUint32:   "uint32",
	TypeUint:     "uint",
	TypeUint64:   "uint64",
	TypeFloat32:  "float32",
	TypeFloat64:  "float64",
	TypeDecimal:  "decimal",
	TypeRange:    "range",
	TypeTSVector: "tsvector",
}

// typeAliases maps SQL-ish spellings accepted by ParseType to field types.
var typeAliases = map[string]Type{
	"boolean":          TypeBool,
	"integer":          TypeInt,
	"smallint":         TypeInt16,
	"bigint":           TypeInt64,
	"tinyint":          TypeInt8,
	"float":            TypeFloat64,
	"double":           TypeFloat64,
	"double precision": TypeFloat64,
	"real":             TypeFloat32,
	"numeric":          TypeDecimal,
	"varchar":          TypeString,
	"timestamp":        TypeTime,
	"timestamptz":      TypeTime,
	"datetime":         TypeTime,
	"dateonly":         TypeDate,
	"blob":             TypeBytes,
	"bytea":            TypeBytes,
}

// String returns the string representation of a type.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return typeNames[TypeInvalid]
}

// Valid reports if the given type if known type.
func (t Type) Valid() bool {
	return t > TypeInvalid && t < endTypes
}

// Numeric reports if the given type is a numeric type.
func (t Type) Numeric() bool {
	return t >= TypeInt8 && t <= TypeDecimal
}

// Integer reports if the given type is an integer type.
func (t Type) Integer() bool {
	return t >= TypeInt8 && t <= TypeUint64
}

// Temporal reports if the given type holds a point in time or a calendar date.
func (t Type) Temporal() bool {
	return t == TypeTime || t == TypeDate
}

// ParseType returns the Type for the given name. Names are matched
// case-insensitively against the type names and a few common SQL spellings.
func ParseType(s string) (Type, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for t, n := range typeNames {
		if n == name && Type(t) != TypeInvalid {
			return Type(t), nil
		}
	}
	if t, ok := typeAliases[name]; ok {
		return t, nil
	}
	return TypeInvalid, fmt.Errorf("field: unknown type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	v, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
