package where

import (
	"time"

	"github.com/syssam/sqlcond/dialect"
	"github.com/syssam/sqlcond/schema/field"
)

// StatementKind is the kind of statement a condition is compiled for.
type StatementKind uint8

// Statement kinds. The zero value leaves compile errors unwrapped.
const (
	Select StatementKind = iota + 1
	Update
	Delete
	BulkUpdate
	BulkDelete
)

var statementNames = [...]string{
	Select:     "select",
	Update:     "update",
	Delete:     "delete",
	BulkUpdate: "bulk update",
	BulkDelete: "bulk delete",
}

func (k StatementKind) String() string {
	if k > 0 && int(k) < len(statementNames) {
		return statementNames[k]
	}
	return "unspecified"
}

// AttributeSource provides attribute metadata of a model.
// field.Attributes implements it.
type AttributeSource interface {
	Lookup(name string) (*field.Descriptor, bool)
}

// AssociationResolver resolves "$assoc.attr$" keys to a qualified column.
// path holds the association names, attribute the final segment.
type AssociationResolver interface {
	ResolveAssociation(path []string, attribute string) (column string, desc *field.Descriptor, err error)
}

// The AssociationFunc type is an adapter to allow the use of ordinary
// functions as association resolvers.
type AssociationFunc func(path []string, attribute string) (string, *field.Descriptor, error)

// ResolveAssociation calls f(path, attribute).
func (f AssociationFunc) ResolveAssociation(path []string, attribute string) (string, *field.Descriptor, error) {
	return f(path, attribute)
}

type config struct {
	profile     dialect.Profile
	attrs       AttributeSource
	prefix      string
	rawPrefix   bool
	statement   StatementKind
	field       *field.Descriptor
	assoc       AssociationResolver
	underscored bool
	loc         *time.Location
}

func defaultConfig() config {
	return config{
		profile: dialect.MustGet(dialect.Default),
		loc:     time.UTC,
	}
}

// Option configures a Compiler.
type Option func(*config)

// WithDialect sets the dialect profile. Defaults to dialect.Default.
func WithDialect(p dialect.Profile) Option {
	return func(c *config) {
		c.profile = p
	}
}

// WithAttributes sets the attribute metadata of the model. Keys that name
// no attribute fail with an UnknownAttributeError once metadata is set;
// without it the compiler runs in degraded mode and treats every key as a
// column name.
func WithAttributes(attrs AttributeSource) Option {
	return func(c *config) {
		c.attrs = attrs
	}
}

// WithPrefix qualifies unqualified columns with a table name or alias.
// Dotted prefixes ("schema.table") are quoted per segment.
func WithPrefix(prefix string) Option {
	return func(c *config) {
		c.prefix, c.rawPrefix = prefix, false
	}
}

// WithRawPrefix qualifies unqualified columns with raw SQL.
func WithRawPrefix(prefix LiteralExpr) Option {
	return func(c *config) {
		c.prefix, c.rawPrefix = prefix.SQL, true
	}
}

// WithStatement sets the statement kind the condition belongs to. Compile
// errors are then wrapped in a CompileError naming it.
func WithStatement(k StatementKind) Option {
	return func(c *config) {
		c.statement = k
	}
}

// WithField sets an explicit descriptor used for keys matching its name or
// column, ahead of the attribute metadata.
func WithField(d *field.Descriptor) Option {
	return func(c *config) {
		c.field = d
	}
}

// WithAssociations sets the resolver of "$assoc.attr$" keys.
func WithAssociations(r AssociationResolver) Option {
	return func(c *config) {
		c.assoc = r
	}
}

// WithUnderscored stores columns in snake_case when no metadata is set.
func WithUnderscored() Option {
	return func(c *config) {
		c.underscored = true
	}
}

// WithTimezone sets the zone timestamps are rendered in. Defaults to UTC.
func WithTimezone(loc *time.Location) Option {
	return func(c *config) {
		if loc != nil {
			c.loc = loc
		}
	}
}
