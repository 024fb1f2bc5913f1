package where

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/syssam/sqlcond/schema/field"
)

// value renders an operand as a SQL literal or expression. d is the
// descriptor of the compared attribute, used to pick array annotations,
// JSON encoding and timestamp handling. It may be nil.
func (r *renderer) value(v any, d *field.Descriptor) (string, error) {
	switch v := v.(type) {
	case nil:
		return "NULL", nil
	case undefinedValue:
		return "", &UndefinedValueError{}
	case bool:
		return r.p.Bool(v), nil
	case string:
		return r.p.QuoteString(v), nil
	case []byte:
		return r.p.BytesLiteral(v), nil
	case json.RawMessage:
		return r.p.QuoteString(string(v)), nil
	case time.Time:
		return r.time(v, d), nil
	case uuid.UUID:
		return r.p.QuoteString(v.String()), nil
	case decimal.Decimal:
		return v.String(), nil
	case json.Number:
		if n, err := v.Int64(); err == nil && d != nil && d.Type.Temporal() {
			return r.time(time.UnixMilli(n), d), nil
		}
		if _, err := v.Float64(); err != nil {
			return "", &TypeMismatchError{Msg: fmt.Sprintf("invalid number %q", v)}
		}
		return v.String(), nil
	case ColumnRef:
		return r.columnName(v.Name), nil
	case LiteralExpr:
		return v.SQL, nil
	case FuncCall:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			s, err := r.value(a, nil)
			if err != nil {
				return "", err
			}
			args[i] = s
		}
		return v.Name + "(" + strings.Join(args, ", ") + ")", nil
	case CastExpr:
		s, err := r.value(v.Value, nil)
		if err != nil {
			return "", err
		}
		return "CAST(" + s + " AS " + upper(v.Type) + ")", nil
	case SetExpr:
		return r.set(v, d)
	case ValuesList:
		return r.values(v)
	case Comparison:
		return "", &InvalidOperandKindError{Msg: "a comparison is not a value"}
	case driver.Valuer:
		dv, err := v.Value()
		if err != nil {
			return "", &TypeMismatchError{Msg: err.Error()}
		}
		return r.value(dv, d)
	}
	if d.IsJSON() {
		if _, ok := mapOf(v); ok {
			return r.jsonLiteral(v)
		}
		if _, ok := listOf(v); ok {
			return r.jsonLiteral(v)
		}
	}
	if d.IsRange() {
		if l, ok := listOf(v); ok {
			return r.rangeLiteral(l)
		}
	}
	if _, ok := mapOf(v); ok {
		return "", &TypeMismatchError{Msg: "map operand against a non-JSON attribute"}
	}
	if l, ok := listOf(v); ok {
		return r.array(l, d)
	}
	return r.scalar(v, d)
}

// scalar renders numbers and named basic types through reflection.
func (r *renderer) scalar(v any, d *field.Descriptor) (string, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if d != nil && d.Type.Temporal() {
			return r.time(time.UnixMilli(n), d), nil
		}
		return strconv.FormatInt(n, 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := rv.Uint()
		if d != nil && d.Type.Temporal() && n <= math.MaxInt64 {
			return r.time(time.UnixMilli(int64(n)), d), nil
		}
		return strconv.FormatUint(n, 10), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		switch {
		case math.IsNaN(f):
			return r.p.QuoteString("NaN"), nil
		case math.IsInf(f, 1):
			return r.p.QuoteString("Infinity"), nil
		case math.IsInf(f, -1):
			return r.p.QuoteString("-Infinity"), nil
		}
		bits := 64
		if rv.Kind() == reflect.Float32 {
			bits = 32
		}
		return strconv.FormatFloat(f, 'f', -1, bits), nil
	case reflect.Bool:
		return r.p.Bool(rv.Bool()), nil
	case reflect.String:
		return r.p.QuoteString(rv.String()), nil
	case reflect.Pointer:
		if rv.IsNil() {
			return "NULL", nil
		}
		return r.value(rv.Elem().Interface(), d)
	case reflect.Struct:
		if d.IsJSON() {
			return r.jsonLiteral(v)
		}
	}
	return "", &TypeMismatchError{Msg: fmt.Sprintf("cannot render value of type %T", v)}
}

func (r *renderer) time(t time.Time, d *field.Descriptor) string {
	t = t.In(r.cfg.loc)
	if d != nil && d.Type == field.TypeDate {
		return r.p.DateLiteral(t)
	}
	return r.p.TimeLiteral(t)
}

// array renders a list as an array constructor, annotated with the element
// type when the dialect requires it and the type is known.
func (r *renderer) array(l []any, d *field.Descriptor) (string, error) {
	if !r.p.SupportsArray {
		return "", &TypeMismatchError{Msg: fmt.Sprintf("array values are not supported by dialect %q", r.p.Name)}
	}
	elem := d.Elem()
	items := make([]string, len(l))
	for i, e := range l {
		s, err := r.value(e, elem)
		if err != nil {
			return "", err
		}
		items[i] = s
	}
	s := "ARRAY[" + strings.Join(items, ",") + "]"
	if r.p.ArrayCast {
		if t, ok := r.p.TypeName(elem); ok {
			s += "::" + t + "[]"
		}
	}
	return s, nil
}

// set renders ANY (...) and ALL (...).
func (r *renderer) set(v SetExpr, d *field.Descriptor) (string, error) {
	kw := v.Kind.String()
	switch inner := v.Value.(type) {
	case LiteralExpr:
		return kw + " (" + inner.SQL + ")", nil
	case ValuesList:
		s, err := r.values(inner)
		if err != nil {
			return "", err
		}
		return kw + " (" + s + ")", nil
	case ColumnRef, FuncCall, CastExpr:
		s, err := r.value(inner, nil)
		if err != nil {
			return "", err
		}
		return kw + " (" + s + ")", nil
	}
	l, ok := listOf(v.Value)
	if !ok {
		return "", &InvalidOperandKindError{Msg: fmt.Sprintf("%s expects a list, a literal or values, got %T", strings.ToLower(kw), v.Value)}
	}
	if !r.p.SupportsArray {
		op := EqAny
		if v.Kind == SetAll {
			op = EqAll
		}
		return "", &UnsupportedOperatorError{Op: op, Feature: "array", Dialect: r.p.Name}
	}
	s, err := r.array(l, d)
	if err != nil {
		return "", err
	}
	return kw + " (" + s + ")", nil
}

// values renders VALUES (a), (b).
func (r *renderer) values(v ValuesList) (string, error) {
	if len(v.Items) == 0 {
		return "", &OperatorArityError{Op: ValuesOf, Msg: "expects at least one value"}
	}
	rows := make([]string, len(v.Items))
	for i, e := range v.Items {
		s, err := r.value(e, nil)
		if err != nil {
			return "", err
		}
		rows[i] = "(" + s + ")"
	}
	return "VALUES " + strings.Join(rows, ", "), nil
}

func (r *renderer) jsonLiteral(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", &TypeMismatchError{Msg: err.Error()}
	}
	return r.p.QuoteString(string(b)), nil
}

// rangeLiteral renders a [lower, upper) range. Nil bounds are unbounded.
func (r *renderer) rangeLiteral(l []any) (string, error) {
	if len(l) != 2 {
		return "", &OperatorArityError{Op: Contains, Msg: fmt.Sprintf("a range expects 2 bounds, got %d", len(l))}
	}
	bounds := make([]string, 2)
	for i, b := range l {
		switch b := b.(type) {
		case nil:
		case time.Time:
			bounds[i] = b.In(r.cfg.loc).Format(time.RFC3339Nano)
		default:
			bounds[i] = fmt.Sprint(b)
		}
	}
	return r.p.QuoteString("[" + bounds[0] + "," + bounds[1] + ")"), nil
}
