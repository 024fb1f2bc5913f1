package where

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sort"
	"strings"
)

// Pair is one entry of a Map. Key is either an attribute name, an Op, or a
// "$op" string alias of an Op.
type Pair struct {
	Key   any
	Value any
}

// Map is an ordered condition mapping. Its entries are compiled in order,
// so the generated SQL is stable for a given input.
//
//	where.Map{
//		{Key: "name", Value: "a8m"},
//		{Key: "age", Value: where.M(where.Gt, 30)},
//	}
type Map []Pair

// M returns a Map built from alternating keys and values:
//
//	where.M("name", "a8m", "age", where.M(where.Gt, 30))
//
// A trailing key without a value maps to Undefined.
func M(kv ...any) Map {
	m := make(Map, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		p := Pair{Key: kv[i], Value: Undefined}
		if i+1 < len(kv) {
			p.Value = kv[i+1]
		}
		m = append(m, p)
	}
	return m
}

// MarshalJSON encodes the map as a JSON object, keeping the entry order.
func (m Map) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, p := range m {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(keyString(p.Key))
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func keyString(k any) string {
	switch k := k.(type) {
	case string:
		return k
	case Op:
		return "$" + k.String()
	default:
		return ""
	}
}

type undefinedValue struct{}

func (undefinedValue) String() string { return "undefined" }

// Undefined marks an operand as explicitly undefined. Compiling a condition
// that holds it anywhere fails with an UndefinedValueError, unlike nil which
// compiles to NULL.
var Undefined any = undefinedValue{}

// ColumnRef references a column by name, optionally qualified ("t.col").
type ColumnRef struct{ Name string }

// Col returns a column reference operand.
func Col(name string) ColumnRef { return ColumnRef{Name: name} }

// LiteralExpr is raw SQL emitted verbatim.
type LiteralExpr struct{ SQL string }

// Literal returns a raw SQL fragment. It is emitted as is, without escaping.
func Literal(sql string) LiteralExpr { return LiteralExpr{SQL: sql} }

// FuncCall is a SQL function call.
type FuncCall struct {
	Name string
	Args []any
}

// Fn returns a function call operand. Arguments are rendered as values.
func Fn(name string, args ...any) FuncCall { return FuncCall{Name: name, Args: args} }

// CastExpr is a value cast to a SQL type.
type CastExpr struct {
	Value any
	Type  string
}

// Cast returns CAST(v AS typ). The type name is upper-cased.
func Cast(v any, typ string) CastExpr { return CastExpr{Value: v, Type: typ} }

// SetKind selects the quantifier of a SetExpr.
type SetKind uint8

// Set quantifiers.
const (
	SetAny SetKind = iota
	SetAll
)

func (k SetKind) String() string {
	if k == SetAll {
		return "ALL"
	}
	return "ANY"
}

// SetExpr is a quantified set operand: ANY (...) or ALL (...).
type SetExpr struct {
	Kind  SetKind
	Value any
}

// Any returns ANY (v). v is a list, a Literal or a Values list.
func Any(v any) SetExpr { return SetExpr{Kind: SetAny, Value: v} }

// All returns ALL (v). v is a list, a Literal or a Values list.
func All(v any) SetExpr { return SetExpr{Kind: SetAll, Value: v} }

// ValuesList is a VALUES (a), (b) list, valid inside Any and All.
type ValuesList struct{ Items []any }

// Values returns a VALUES list operand.
func Values(items ...any) ValuesList { return ValuesList{Items: items} }

// Comparison is a standalone comparison whose left side may be any
// expression, not only an attribute.
type Comparison struct {
	Left  any
	Op    Op
	Right any
}

// Where returns a comparison of left and right. A string left side is
// resolved as an attribute key; a wrapper (Col, Fn, Cast, Literal) is
// rendered as an expression. A Map right side with op Eq is applied as an
// operator map:
//
//	where.Where(where.Fn("lower", where.Col("name")), where.Eq, "a8m")
//	where.Where("age", where.Eq, where.M(where.Gt, 10, where.Lt, 20))
func Where(left any, op Op, right any) Comparison {
	return Comparison{Left: left, Op: op, Right: right}
}

// mapOf returns v as an ordered map. Native maps are visited in sorted key order.
func mapOf(v any) (Map, bool) {
	switch v := v.(type) {
	case Map:
		return v, true
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := make(Map, len(keys))
		for i, k := range keys {
			m[i] = Pair{Key: k, Value: v[k]}
		}
		return m, true
	case map[Op]any:
		keys := make([]Op, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		m := make(Map, len(keys))
		for i, k := range keys {
			m[i] = Pair{Key: k, Value: v[k]}
		}
		return m, true
	}
	return nil, false
}

// listOf returns v as a list. Strings, byte slices and fixed size byte
// arrays (such as UUIDs) are scalars, not lists.
func listOf(v any) ([]any, bool) {
	switch v := v.(type) {
	case []any:
		return v, true
	case nil, Map, []byte, json.RawMessage, string:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if k := rv.Kind(); k != reflect.Slice && k != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	l := make([]any, rv.Len())
	for i := range l {
		l[i] = rv.Index(i).Interface()
	}
	return l, true
}

// keyOp classifies a map key. It reports the operator of operator keys, and
// fails on "$name" keys that name no operator.
func keyOp(key any) (Op, bool, error) {
	switch k := key.(type) {
	case Op:
		if !k.Valid() {
			return 0, false, &OperatorArityError{Op: k, Msg: "unknown operator"}
		}
		return k, true, nil
	case string:
		if len(k) < 2 || k[0] != '$' || isAssociationKey(k) {
			return 0, false, nil
		}
		op, ok := ParseOp(k)
		if !ok {
			return 0, false, &InvalidOperandKindError{Key: k, Msg: "unknown operator " + k}
		}
		return op, true, nil
	default:
		return 0, false, &InvalidOperandKindError{Key: keyString(key), Msg: "map keys must be strings or operators"}
	}
}

// isAssociationKey reports if key has the "$assoc.attr$" form.
func isAssociationKey(key string) bool {
	return len(key) > 2 && key[0] == '$' && key[len(key)-1] == '$'
}

// splitCast splits a trailing "::type" cast from a key.
func splitCast(key string) (string, string) {
	if name, typ, ok := strings.Cut(key, "::"); ok && name != "" {
		return name, typ
	}
	return key, ""
}
