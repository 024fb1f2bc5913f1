package where

import (
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/syssam/sqlcond/schema/field"
)

// AttributeRef is a resolved attribute key.
type AttributeRef struct {
	Key       string            // key as written in the condition.
	Column    string            // column name, unquoted.
	Qualifier []string          // table or association segments, unquoted.
	Qualified string            // column already rendered by an AssociationResolver.
	Path      []string          // JSON path below the column.
	Cast      string            // explicit "::type" cast.
	Field     *field.Descriptor // nil in degraded mode.
}

// IsArray reports if the referenced value is an array.
func (r *AttributeRef) IsArray() bool {
	return r.Field != nil && r.Field.Array && len(r.Path) == 0 && r.Cast == ""
}

// IsJSON reports if the referenced column is JSON and not yet traversed.
func (r *AttributeRef) IsJSON() bool {
	return r.Field.IsJSON() && r.Cast == ""
}

// child returns the reference of a JSON path below r.
func (r *AttributeRef) child(segments []string, cast string) *AttributeRef {
	c := *r
	c.Key = r.Key + "." + strings.Join(segments, ".")
	c.Path = append(append([]string(nil), r.Path...), segments...)
	c.Cast = cast
	return &c
}

// resolve maps a condition key to the column it references.
//
// Keys are looked up in the attribute metadata first. A dotted key whose
// first segment is a JSON attribute is a path into it. Without metadata,
// a dotted key is a table qualified column.
func (c *config) resolve(key string) (*AttributeRef, error) {
	ref := &AttributeRef{Key: key}
	if isAssociationKey(key) {
		return c.association(ref, key[1:len(key)-1])
	}
	name, cast := splitCast(key)
	ref.Cast = cast
	if d, ok := c.lookup(name); ok {
		ref.Column, ref.Field = d.Column(), d
		return ref, nil
	}
	if base, rest, ok := strings.Cut(name, "."); ok {
		if d, ok := c.lookup(base); ok && d.IsJSON() {
			ref.Column, ref.Field, ref.Path = d.Column(), d, strings.Split(rest, ".")
			return ref, nil
		}
	}
	if c.attrs != nil {
		return nil, &UnknownAttributeError{Attribute: name}
	}
	parts := strings.Split(name, ".")
	ref.Column, ref.Qualifier = parts[len(parts)-1], parts[:len(parts)-1]
	if c.underscored {
		ref.Column = inflect.Underscore(ref.Column)
	}
	return ref, nil
}

func (c *config) association(ref *AttributeRef, name string) (*AttributeRef, error) {
	name, ref.Cast = splitCast(name)
	parts := strings.Split(name, ".")
	path, attr := parts[:len(parts)-1], parts[len(parts)-1]
	if c.assoc != nil {
		col, d, err := c.assoc.ResolveAssociation(path, attr)
		if err != nil {
			return nil, err
		}
		ref.Qualified, ref.Column, ref.Field = col, attr, d
		return ref, nil
	}
	ref.Column = attr
	if len(path) > 0 {
		ref.Qualifier = []string{strings.Join(path, c.profile.PathSeparator)}
	}
	return ref, nil
}

func (c *config) lookup(name string) (*field.Descriptor, bool) {
	if d := c.field; d != nil && (d.Name == name || d.Column() == name) {
		return d, true
	}
	if c.attrs == nil {
		return nil, false
	}
	return c.attrs.Lookup(name)
}
