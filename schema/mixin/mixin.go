// Package mixin provides reusable sets of attributes.
//
// A mixin is a named group of attributes shared by many tables, such as
// timestamps or a soft-delete marker. Mixins are merged into an attribute
// table with Apply:
//
//	attrs, err := mixin.Apply(
//	    field.NewAttributes(field.String("name")),
//	    mixin.Time{},
//	    mixin.SoftDelete{},
//	)
//
// Custom mixins embed Schema and override Fields:
//
//	type Audit struct {
//	    mixin.Schema
//	}
//
//	func (Audit) Fields() []field.Field {
//	    return []field.Field{
//	        field.String("createdBy").StorageKey("created_by"),
//	    }
//	}
//
// Attribute files name the built-in mixins under "mixins", see Lookup.
package mixin

import (
	"fmt"
	"sort"

	"github.com/syssam/sqlcond/schema/field"
)

// Mixin is a reusable set of attributes.
type Mixin interface {
	Fields() []field.Field
}

// Schema is the default implementation for the Mixin interface.
// It should be embedded in all custom mixin definitions.
type Schema struct{}

// Fields returns the fields of the mixin.
// Override this method to add custom fields.
func (Schema) Fields() []field.Field { return nil }

// schema mixin must implement `Mixin` interface.
var _ Mixin = (*Schema)(nil)

// Time adds the createdAt and updatedAt timestamps.
type Time struct {
	Schema
}

// Fields returns the time tracking fields.
func (Time) Fields() []field.Field {
	return append(CreateTime{}.Fields(), UpdateTime{}.Fields()...)
}

// CreateTime adds only the createdAt timestamp.
type CreateTime struct {
	Schema
}

// Fields returns the createdAt field.
func (CreateTime) Fields() []field.Field {
	return []field.Field{
		field.Time("createdAt").StorageKey("created_at"),
	}
}

// UpdateTime adds only the updatedAt timestamp.
type UpdateTime struct {
	Schema
}

// Fields returns the updatedAt field.
func (UpdateTime) Fields() []field.Field {
	return []field.Field{
		field.Time("updatedAt").StorageKey("updated_at"),
	}
}

// SoftDelete adds the nullable deletedAt timestamp. Rows with a deletedAt
// are considered deleted.
type SoftDelete struct {
	Schema
}

// Fields returns the soft delete field.
func (SoftDelete) Fields() []field.Field {
	return []field.Field{
		field.Time("deletedAt").StorageKey("deleted_at").Nillable(),
	}
}

// TimeSoftDelete combines Time and SoftDelete.
type TimeSoftDelete struct {
	Schema
}

// Fields returns all timestamp and soft delete fields.
func (TimeSoftDelete) Fields() []field.Field {
	return append(Time{}.Fields(), SoftDelete{}.Fields()...)
}

// TenantID adds the tenantId UUID used to scope rows of a multi-tenant table.
type TenantID struct {
	Schema
}

// Fields returns the tenant field.
func (TenantID) Fields() []field.Field {
	return []field.Field{
		field.UUID("tenantId").StorageKey("tenant_id"),
	}
}

// builtin maps the names used in attribute files to the built-in mixins.
var builtin = map[string]Mixin{
	"time":             Time{},
	"create_time":      CreateTime{},
	"update_time":      UpdateTime{},
	"soft_delete":      SoftDelete{},
	"time_soft_delete": TimeSoftDelete{},
	"tenant_id":        TenantID{},
}

// Lookup returns the built-in mixin with the given name.
func Lookup(name string) (Mixin, bool) {
	m, ok := builtin[name]
	return m, ok
}

// Names returns the names of the built-in mixins in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply returns a copy of attrs extended with the fields of the mixins. An
// attribute declared twice is an error.
func Apply(attrs field.Attributes, mixins ...Mixin) (field.Attributes, error) {
	out := make(field.Attributes, len(attrs))
	for name, d := range attrs {
		out[name] = d
	}
	for _, m := range mixins {
		for _, f := range m.Fields() {
			d := f.Descriptor()
			if _, ok := out[d.Name]; ok {
				return nil, fmt.Errorf("mixin: attribute %q is declared twice", d.Name)
			}
			out[d.Name] = d
		}
	}
	return out, nil
}
