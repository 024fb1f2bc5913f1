package mixin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlcond/dialect"
	"github.com/syssam/sqlcond/schema/field"
	"github.com/syssam/sqlcond/schema/mixin"
	"github.com/syssam/sqlcond/where"
)

// TestSchemaBaseMixin tests the base Schema mixin.
func TestSchemaBaseMixin(t *testing.T) {
	assert.Nil(t, mixin.Schema{}.Fields())

	var _ mixin.Mixin = mixin.Schema{}
	var _ mixin.Mixin = &mixin.Schema{}
}

// TestCustomMixin is a custom mixin for testing.
type TestCustomMixin struct {
	mixin.Schema
}

func (TestCustomMixin) Fields() []field.Field {
	return []field.Field{
		field.String("field1"),
		field.String("field2"),
	}
}

func TestBuiltinMixins(t *testing.T) {
	tests := []struct {
		mixin   mixin.Mixin
		columns []string
	}{
		{mixin.Time{}, []string{"created_at", "updated_at"}},
		{mixin.CreateTime{}, []string{"created_at"}},
		{mixin.UpdateTime{}, []string{"updated_at"}},
		{mixin.SoftDelete{}, []string{"deleted_at"}},
		{mixin.TimeSoftDelete{}, []string{"created_at", "updated_at", "deleted_at"}},
		{mixin.TenantID{}, []string{"tenant_id"}},
		{TestCustomMixin{}, []string{"field1", "field2"}},
	}
	for _, tt := range tests {
		var columns []string
		for _, f := range tt.mixin.Fields() {
			columns = append(columns, f.Descriptor().Column())
		}
		assert.Equal(t, tt.columns, columns)
	}
	d := mixin.SoftDelete{}.Fields()[0].Descriptor()
	assert.True(t, d.Nillable)
	assert.Equal(t, field.TypeTime, d.Type)
	assert.Equal(t, field.TypeUUID, mixin.TenantID{}.Fields()[0].Descriptor().Type)
}

func TestApply(t *testing.T) {
	base := field.NewAttributes(field.String("name"))
	attrs, err := mixin.Apply(base, mixin.TimeSoftDelete{}, TestCustomMixin{})
	require.NoError(t, err)
	assert.Equal(t, []string{"createdAt", "deletedAt", "field1", "field2", "name", "updatedAt"}, attrs.Names())
	assert.Equal(t, []string{"name"}, base.Names(), "base table is not modified")

	_, err = mixin.Apply(base, mixin.Time{}, mixin.CreateTime{})
	assert.EqualError(t, err, `mixin: attribute "createdAt" is declared twice`)
}

func TestApply_Compile(t *testing.T) {
	attrs, err := mixin.Apply(field.NewAttributes(field.String("name")), mixin.SoftDelete{})
	require.NoError(t, err)
	got, err := where.Compile(
		where.M("name", "a8m", "deletedAt", nil),
		where.WithDialect(dialect.MustGet(dialect.Postgres)),
		where.WithAttributes(attrs),
	)
	require.NoError(t, err)
	assert.Equal(t, `"name" = 'a8m' AND "deleted_at" IS NULL`, got)
}

func TestLookup(t *testing.T) {
	m, ok := mixin.Lookup("soft_delete")
	require.True(t, ok)
	assert.Equal(t, mixin.SoftDelete{}, m)
	_, ok = mixin.Lookup("audit")
	assert.False(t, ok)
	assert.Equal(t, []string{"create_time", "soft_delete", "tenant_id", "time", "time_soft_delete", "update_time"}, mixin.Names())
}
