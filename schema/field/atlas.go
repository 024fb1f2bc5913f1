package field

import (
	"strings"

	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
)

// FromTable returns the attribute table of an inspected atlas table. Column
// names are used as attribute names.
func FromTable(t *schema.Table) Attributes {
	attrs := make(Attributes, len(t.Columns))
	for _, c := range t.Columns {
		d := FromColumn(c)
		attrs[d.Name] = d
	}
	return attrs
}

// FromColumn returns the attribute descriptor of an atlas column.
func FromColumn(c *schema.Column) *Descriptor {
	d := &Descriptor{Name: c.Name}
	if c.Type == nil {
		d.Type = TypeOther
		return d
	}
	d.Nillable = c.Type.Null
	typ := c.Type.Type
	if at, ok := typ.(*postgres.ArrayType); ok {
		d.Array = true
		typ = at.Type
	}
	d.Type = atlasType(typ, c.Type.Raw)
	if d.Type == TypeOther && c.Type.Raw != "" {
		d.SchemaType = map[string]string{"postgres": c.Type.Raw}
	}
	return d
}

func atlasType(t schema.Type, raw string) Type {
	switch t := t.(type) {
	case *schema.BoolType:
		return TypeBool
	case *schema.IntegerType:
		return integerType(strings.ToLower(t.T), t.Unsigned)
	case *schema.FloatType:
		if lt := strings.ToLower(t.T); lt == "real" || lt == "float4" {
			return TypeFloat32
		}
		return TypeFloat64
	case *schema.DecimalType:
		return TypeDecimal
	case *schema.StringType:
		if strings.Contains(strings.ToLower(t.T), "text") {
			return TypeText
		}
		return TypeString
	case *schema.BinaryType:
		return TypeBytes
	case *schema.TimeType:
		if strings.ToLower(t.T) == "date" {
			return TypeDate
		}
		return TypeTime
	case *schema.JSONType:
		if strings.ToLower(t.T) == "jsonb" {
			return TypeJSONB
		}
		return TypeJSON
	case *schema.UUIDType:
		return TypeUUID
	case *schema.EnumType:
		return TypeEnum
	case *schema.UnsupportedType:
		return rawType(t.T)
	default:
		return rawType(raw)
	}
}

func integerType(t string, unsigned bool) Type {
	switch t {
	case "tinyint":
		if unsigned {
			return TypeUint8
		}
		return TypeInt8
	case "smallint", "int2", "smallserial":
		if unsigned {
			return TypeUint16
		}
		return TypeInt16
	case "bigint", "int8", "bigserial":
		if unsigned {
			return TypeUint64
		}
		return TypeInt64
	default:
		if unsigned {
			return TypeUint32
		}
		return TypeInt
	}
}

func rawType(raw string) Type {
	raw = strings.ToLower(raw)
	switch {
	case strings.HasSuffix(raw, "range"):
		return TypeRange
	case raw == "tsvector":
		return TypeTSVector
	case raw == "citext":
		return TypeText
	default:
		return TypeOther
	}
}
