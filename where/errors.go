package where

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the typed compile errors below.
var (
	// ErrUnknownAttribute is returned when metadata is configured and a key
	// names no attribute of the model.
	ErrUnknownAttribute = errors.New("sqlcond: unknown attribute")

	// ErrUndefinedValue is returned when a condition holds an Undefined operand.
	ErrUndefinedValue = errors.New("sqlcond: undefined value")

	// ErrUnsupportedOperator is returned when an operator or value kind needs
	// a capability the dialect lacks.
	ErrUnsupportedOperator = errors.New("sqlcond: unsupported operator")

	// ErrOperatorArity is returned when an operand has the wrong shape for its
	// operator, e.g. a BETWEEN with three bounds.
	ErrOperatorArity = errors.New("sqlcond: invalid operand shape")

	// ErrTypeMismatch is returned when an operand cannot be compared with the
	// attribute, e.g. an array against a scalar column.
	ErrTypeMismatch = errors.New("sqlcond: type mismatch")

	// ErrInvalidOperandKind is returned when an operator does not accept the
	// kind of operand given, e.g. IS with a number.
	ErrInvalidOperandKind = errors.New("sqlcond: invalid operand kind")
)

// UnknownAttributeError reports a key that names no attribute of the model.
type UnknownAttributeError struct {
	Attribute string
}

// Error returns the error string.
func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("sqlcond: unknown attribute %q", e.Attribute)
}

// Is reports whether the target error matches UnknownAttributeError.
func (e *UnknownAttributeError) Is(err error) bool {
	return err == ErrUnknownAttribute
}

// IsUnknownAttribute returns true if the error is an UnknownAttributeError.
func IsUnknownAttribute(err error) bool {
	return errors.Is(err, ErrUnknownAttribute)
}

// UndefinedValueError reports an Undefined operand.
type UndefinedValueError struct {
	Key string // key holding the undefined value, empty at the root.
}

// Error returns the error string.
func (e *UndefinedValueError) Error() string {
	if e.Key == "" {
		return "sqlcond: undefined value in condition"
	}
	return fmt.Sprintf("sqlcond: undefined value for key %q", e.Key)
}

// Is reports whether the target error matches UndefinedValueError.
func (e *UndefinedValueError) Is(err error) bool {
	return err == ErrUndefinedValue
}

// IsUndefinedValue returns true if the error is an UndefinedValueError.
func IsUndefinedValue(err error) bool {
	return errors.Is(err, ErrUndefinedValue)
}

// UnsupportedOperatorError reports an operator, or a value kind, that needs a
// dialect capability the active profile lacks.
type UnsupportedOperatorError struct {
	Op      Op     // zero when a value kind, not an operator, is unsupported.
	Feature string // capability name, e.g. "array" or "jsonb".
	Dialect string
}

// Error returns the error string.
func (e *UnsupportedOperatorError) Error() string {
	if e.Op.Valid() {
		return fmt.Sprintf("sqlcond: operator %q requires %s support, not available in dialect %q", e.Op, e.Feature, e.Dialect)
	}
	return fmt.Sprintf("sqlcond: %s support is not available in dialect %q", e.Feature, e.Dialect)
}

// Is reports whether the target error matches UnsupportedOperatorError.
func (e *UnsupportedOperatorError) Is(err error) bool {
	return err == ErrUnsupportedOperator
}

// IsUnsupportedOperator returns true if the error is an UnsupportedOperatorError.
func IsUnsupportedOperator(err error) bool {
	return errors.Is(err, ErrUnsupportedOperator)
}

// OperatorArityError reports an operand whose shape does not fit its operator.
type OperatorArityError struct {
	Op  Op
	Key string
	Msg string
}

// Error returns the error string.
func (e *OperatorArityError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("sqlcond: operator %q: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("sqlcond: operator %q on %q: %s", e.Op, e.Key, e.Msg)
}

// Is reports whether the target error matches OperatorArityError.
func (e *OperatorArityError) Is(err error) bool {
	return err == ErrOperatorArity
}

// IsOperatorArity returns true if the error is an OperatorArityError.
func IsOperatorArity(err error) bool {
	return errors.Is(err, ErrOperatorArity)
}

// TypeMismatchError reports an operand that cannot be compared with its attribute.
type TypeMismatchError struct {
	Key string
	Msg string
}

// Error returns the error string.
func (e *TypeMismatchError) Error() string {
	if e.Key == "" {
		return "sqlcond: type mismatch: " + e.Msg
	}
	return fmt.Sprintf("sqlcond: type mismatch on %q: %s", e.Key, e.Msg)
}

// Is reports whether the target error matches TypeMismatchError.
func (e *TypeMismatchError) Is(err error) bool {
	return err == ErrTypeMismatch
}

// IsTypeMismatch returns true if the error is a TypeMismatchError.
func IsTypeMismatch(err error) bool {
	return errors.Is(err, ErrTypeMismatch)
}

// InvalidOperandKindError reports an operand kind its operator rejects.
type InvalidOperandKindError struct {
	Op  Op
	Key string
	Msg string
}

// Error returns the error string.
func (e *InvalidOperandKindError) Error() string {
	switch {
	case !e.Op.Valid():
		return fmt.Sprintf("sqlcond: invalid operand for %q: %s", e.Key, e.Msg)
	case e.Key == "":
		return fmt.Sprintf("sqlcond: operator %q %s", e.Op, e.Msg)
	default:
		return fmt.Sprintf("sqlcond: operator %q on %q %s", e.Op, e.Key, e.Msg)
	}
}

// Is reports whether the target error matches InvalidOperandKindError.
func (e *InvalidOperandKindError) Is(err error) bool {
	return err == ErrInvalidOperandKind
}

// IsInvalidOperandKind returns true if the error is an InvalidOperandKindError.
func IsInvalidOperandKind(err error) bool {
	return errors.Is(err, ErrInvalidOperandKind)
}

// CompileError wraps an error raised while compiling the condition of a
// statement kind configured with WithStatement.
type CompileError struct {
	Statement StatementKind
	Err       error
}

// Error returns the error string.
func (e *CompileError) Error() string {
	return fmt.Sprintf("sqlcond: %s condition: %v", e.Statement, e.Err)
}

// Unwrap returns the underlying error.
func (e *CompileError) Unwrap() error {
	return e.Err
}

// keyed fills in the key of a key-less error raised while rendering a value.
func keyed(err error, key string) error {
	var (
		tm *TypeMismatchError
		ik *InvalidOperandKindError
		ar *OperatorArityError
	)
	switch {
	case errors.As(err, &tm) && tm.Key == "":
		tm.Key = key
	case errors.As(err, &ik) && ik.Key == "":
		ik.Key = key
	case errors.As(err, &ar) && ar.Key == "":
		ar.Key = key
	}
	return err
}
