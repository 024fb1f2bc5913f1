package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"
	"gopkg.in/yaml.v3"

	"github.com/syssam/sqlcond/dialect"
	"github.com/syssam/sqlcond/schema/field"
	"github.com/syssam/sqlcond/schema/mixin"
)

// schemaFile is the attribute metadata file:
//
//	table: users
//	attributes:
//	  - name: firstName
//	    column: first_name
//	    type: string
//	  - name: tags
//	    type: string
//	    array: true
//	mixins: [soft_delete]
type schemaFile struct {
	Table      string              `yaml:"table,omitempty"`
	Attributes []*field.Descriptor `yaml:"attributes"`
	Mixins     []string            `yaml:"mixins,omitempty"`

	attrs field.Attributes
}

func loadSchema(path string) (*schemaFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	var s schemaFile
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", path, err)
	}
	seen := make(map[string]bool, len(s.Attributes))
	for i, d := range s.Attributes {
		switch {
		case d == nil || d.Name == "":
			return nil, fmt.Errorf("schema %s: attribute %d has no name", path, i)
		case !d.Type.Valid():
			return nil, fmt.Errorf("schema %s: attribute %q has no type", path, d.Name)
		case seen[d.Name]:
			return nil, fmt.Errorf("schema %s: attribute %q is declared twice", path, d.Name)
		}
		seen[d.Name] = true
	}
	mixins := make([]mixin.Mixin, len(s.Mixins))
	for i, name := range s.Mixins {
		m, ok := mixin.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("schema %s: unknown mixin %q, expected one of %v", path, name, mixin.Names())
		}
		mixins[i] = m
	}
	attrs := make(field.Attributes, len(s.Attributes))
	for _, d := range s.Attributes {
		attrs[d.Name] = d
	}
	if s.attrs, err = mixin.Apply(attrs, mixins...); err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return &s, nil
}

func (s *schemaFile) attributes() field.Attributes {
	return s.attrs
}

// inspectTable reads the attributes of a table from the database catalog.
func inspectTable(ctx context.Context, name string, db *sql.DB, table string) (field.Attributes, error) {
	var (
		drv migrate.Driver
		err error
		ns  string // empty for the connection schema.
	)
	switch name {
	case dialect.Postgres:
		drv, err = postgres.Open(db)
	case dialect.MySQL, dialect.MariaDB:
		drv, err = mysql.Open(db)
	case dialect.SQLite:
		drv, err = sqlite.Open(db)
		ns = "main"
	default:
		return nil, fmt.Errorf("inspect: dialect %q is not supported", name)
	}
	if err != nil {
		return nil, fmt.Errorf("inspect: %w", err)
	}
	return inspect(ctx, drv, ns, table)
}

func inspect(ctx context.Context, drv migrate.Driver, name, table string) (field.Attributes, error) {
	s, err := drv.InspectSchema(ctx, name, &schema.InspectOptions{Tables: []string{table}})
	if err != nil {
		return nil, fmt.Errorf("inspect: %w", err)
	}
	t, ok := s.Table(table)
	if !ok {
		return nil, fmt.Errorf("inspect: table %q was not found", table)
	}
	return field.FromTable(t), nil
}
