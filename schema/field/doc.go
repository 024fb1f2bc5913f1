// Package field describes the attributes a condition may reference.
//
// An attribute maps a name used in conditions to a column, and carries the
// column type the compiler needs to render operands and pick operators:
//
//	attrs := field.NewAttributes(
//	    field.Int("age"),
//	    field.String("firstName").StorageKey("first_name"),
//	    field.String("tags").Array(),
//	    field.JSONB("meta").Nillable(),
//	    field.Other("period", map[string]string{dialect.Postgres: "tstzrange"}),
//	)
//
// # Attribute Tables
//
// Attributes is a plain map keyed by attribute name. Underscored returns a
// copy in which attributes without an explicit storage key are stored in
// the snake_case form of their name:
//
//	attrs.Underscored()["firstName"].Column() // first_name
//
// # Schema Types
//
// SchemaType overrides the SQL type named in casts per dialect. Types are
// also parsed from their names, so descriptors decode from YAML:
//
//	- name: tags
//	  type: string
//	  array: true
//
// # Inspected Tables
//
// FromTable builds the attributes of a table inspected with atlas, keyed by
// column name. Postgres array columns yield array attributes of their
// element type.
package field
