// Package where compiles declarative filter conditions into SQL predicates.
//
// A condition is a tree of ordered maps and lists. Map keys are attribute
// names or operators; values are operands, nested operator maps, or nested
// conditions:
//
//	where.M(
//		"status", "active",                          // status = 'active'
//		"age", where.M(where.Gte, 18, where.Lt, 65), // age >= 18 AND age < 65
//		"role", []any{"admin", "owner"},             // role IN ('admin', 'owner')
//		where.Or, []any{
//			where.M("deletedAt", nil),                 // deletedAt IS NULL
//			where.M("deletedAt", where.M(where.Gt, now)),
//		},
//	)
//
// Operator keys are Op values or their "$name" string aliases, so
// conditions decoded from JSON or YAML (see package codec) compile the same
// as conditions built in Go.
//
// Compilation runs in two passes. The parse pass resolves attribute keys
// against the model metadata, normalizes shorthands (implicit IN, negation)
// and rejects undefined operands. The render pass walks the parsed tree and
// emits SQL for the configured dialect profile. Parentheses are added only
// where precedence requires them.
//
// # Attributes
//
// With WithAttributes set, every key must name an attribute, a JSON path
// below a JSON attribute ("meta.address.city"), or an association
// ("$owner.name$"). Without metadata the compiler runs in degraded mode:
// keys are column names, and dotted keys are table qualified.
//
// # Errors
//
// Compile errors match the sentinel errors of this package with errors.Is:
//
//	_, err := where.Compile(where.M("age", where.M(where.Between, []int{1})))
//	errors.Is(err, where.ErrOperatorArity) // true
package where
