package field

import (
	"sort"

	"github.com/go-openapi/inflect"
)

// A Descriptor for attribute configuration.
type Descriptor struct {
	Name       string            `yaml:"name"`                  // attribute name.
	StorageKey string            `yaml:"column,omitempty"`      // column name, defaults to Name.
	Type       Type              `yaml:"type"`                  // column or array element type.
	Array      bool              `yaml:"array,omitempty"`       // column holds an array of Type.
	Nillable   bool              `yaml:"nillable,omitempty"`    // nullable column.
	SchemaType map[string]string `yaml:"schema_type,omitempty"` // SQL type overrides keyed by dialect name.
}

// Column returns the column name of the attribute.
func (d *Descriptor) Column() string {
	if d.StorageKey != "" {
		return d.StorageKey
	}
	return d.Name
}

// IsJSON reports if the attribute is stored as JSON or JSONB.
func (d *Descriptor) IsJSON() bool {
	return d != nil && !d.Array && (d.Type == TypeJSON || d.Type == TypeJSONB)
}

// IsRange reports if the attribute is a range column.
func (d *Descriptor) IsRange() bool {
	return d != nil && !d.Array && d.Type == TypeRange
}

// Elem returns the descriptor of a single element of an array attribute.
// Non-array descriptors are returned as is.
func (d *Descriptor) Elem() *Descriptor {
	if d == nil || !d.Array {
		return d
	}
	elem := *d
	elem.Array = false
	return &elem
}

// Builder is the fluent builder for attribute descriptors.
type Builder struct {
	desc *Descriptor
}

func newBuilder(name string, t Type) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Type: t}}
}

// Bool returns a new builder for a boolean attribute.
func Bool(name string) *Builder { return newBuilder(name, TypeBool) }

// Int returns a new builder for an int attribute.
func Int(name string) *Builder { return newBuilder(name, TypeInt) }

// Int8 returns a new builder for an int8 attribute.
func Int8(name string) *Builder { return newBuilder(name, TypeInt8) }

// Int16 returns a new builder for an int16 attribute.
func Int16(name string) *Builder { return newBuilder(name, TypeInt16) }

// Int32 returns a new builder for an int32 attribute.
func Int32(name string) *Builder { return newBuilder(name, TypeInt32) }

// Int64 returns a new builder for an int64 attribute.
func Int64(name string) *Builder { return newBuilder(name, TypeInt64) }

// Uint returns a new builder for an uint attribute.
func Uint(name string) *Builder { return newBuilder(name, TypeUint) }

// Uint64 returns a new builder for an uint64 attribute.
func Uint64(name string) *Builder { return newBuilder(name, TypeUint64) }

// Float returns a new builder for a float64 attribute.
func Float(name string) *Builder { return newBuilder(name, TypeFloat64) }

// Float32 returns a new builder for a float32 attribute.
func Float32(name string) *Builder { return newBuilder(name, TypeFloat32) }

// Decimal returns a new builder for an arbitrary precision numeric attribute.
func Decimal(name string) *Builder { return newBuilder(name, TypeDecimal) }

// String returns a new builder for a string attribute.
func String(name string) *Builder { return newBuilder(name, TypeString) }

// Text returns a new builder for an unbounded text attribute.
func Text(name string) *Builder { return newBuilder(name, TypeText) }

// Time returns a new builder for a timestamp attribute.
func Time(name string) *Builder { return newBuilder(name, TypeTime) }

// Date returns a new builder for a calendar date attribute.
func Date(name string) *Builder { return newBuilder(name, TypeDate) }

// JSON returns a new builder for a JSON attribute.
func JSON(name string) *Builder { return newBuilder(name, TypeJSON) }

// JSONB returns a new builder for a binary JSON attribute.
func JSONB(name string) *Builder { return newBuilder(name, TypeJSONB) }

// UUID returns a new builder for a UUID attribute.
func UUID(name string) *Builder { return newBuilder(name, TypeUUID) }

// Bytes returns a new builder for a binary attribute.
func Bytes(name string) *Builder { return newBuilder(name, TypeBytes) }

// Enum returns a new builder for an enum attribute.
func Enum(name string) *Builder { return newBuilder(name, TypeEnum) }

// Range returns a new builder for a range attribute.
func Range(name string) *Builder { return newBuilder(name, TypeRange) }

// TSVector returns a new builder for a full-text search document attribute.
func TSVector(name string) *Builder { return newBuilder(name, TypeTSVector) }

// Other returns a new builder for an attribute of a custom SQL type.
//
//	field.Other("location", map[string]string{
//		dialect.Postgres: "geometry",
//	})
func Other(name string, types map[string]string) *Builder {
	return newBuilder(name, TypeOther).SchemaType(types)
}

// Array marks the attribute as an array of its type.
func (b *Builder) Array() *Builder {
	b.desc.Array = true
	return b
}

// Nillable indicates that the column may hold NULL.
func (b *Builder) Nillable() *Builder {
	b.desc.Nillable = true
	return b
}

// StorageKey sets the column name of the attribute.
func (b *Builder) StorageKey(key string) *Builder {
	b.desc.StorageKey = key
	return b
}

// SchemaType overrides the default database type with a custom
// schema type (per dialect) for the attribute.
func (b *Builder) SchemaType(types map[string]string) *Builder {
	b.desc.SchemaType = types
	return b
}

// Descriptor implements the Field interface by returning its descriptor.
func (b *Builder) Descriptor() *Descriptor {
	return b.desc
}

// Field is implemented by attribute builders.
type Field interface {
	Descriptor() *Descriptor
}

// Attributes is the attribute metadata table of one model, keyed by
// attribute name. It is built once and only read afterwards.
type Attributes map[string]*Descriptor

// NewAttributes returns the attribute table for the given fields.
func NewAttributes(fields ...Field) Attributes {
	attrs := make(Attributes, len(fields))
	for _, f := range fields {
		d := f.Descriptor()
		attrs[d.Name] = d
	}
	return attrs
}

// Lookup returns the descriptor of the named attribute.
func (a Attributes) Lookup(name string) (*Descriptor, bool) {
	d, ok := a[name]
	return d, ok
}

// Names returns the attribute names in sorted order.
func (a Attributes) Names() []string {
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Underscored returns a copy of the table in which every attribute without an
// explicit storage key is stored in the snake_case form of its name.
func (a Attributes) Underscored() Attributes {
	attrs := make(Attributes, len(a))
	for name, d := range a {
		c := *d
		if c.StorageKey == "" {
			c.StorageKey = inflect.Underscore(c.Name)
		}
		attrs[name] = &c
	}
	return attrs
}
