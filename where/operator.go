package where

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/syssam/sqlcond/dialect"
)

// operators renders the operator map of one subject. Several operators are
// an implicit AND.
func (r *renderer) operators(s *subject, m operatorMap, parent Op) (string, error) {
	if len(m) == 1 {
		return r.entry(s, m[0], parent)
	}
	parts := make([]string, 0, len(m))
	var live []operatorEntry
	for _, e := range m {
		p, err := r.entry(s, e, And)
		if err != nil {
			return "", err
		}
		if p != "" {
			parts = append(parts, p)
			live = append(live, e)
		}
	}
	if len(live) == 1 {
		return r.entry(s, live[0], parent)
	}
	return group(And, parts, parent, true), nil
}

func (r *renderer) entry(s *subject, e operatorEntry, parent Op) (string, error) {
	switch e.op {
	case And, Or:
		switch len(e.nested) {
		case 0:
			return falsePredicate, nil
		case 1:
			return r.operators(s, e.nested[0], parent)
		}
		parts := make([]string, 0, len(e.nested))
		var live []operatorMap
		for _, m := range e.nested {
			p, err := r.operators(s, m, e.op)
			if err != nil {
				return "", err
			}
			if p != "" {
				parts = append(parts, p)
				live = append(live, m)
			}
		}
		if len(live) == 1 {
			return r.operators(s, live[0], parent)
		}
		return group(e.op, parts, parent, false), nil
	case Not:
		if len(e.nested) == 0 {
			return falsePredicate, nil
		}
		inner, err := r.operators(s, e.nested[0], Not)
		if err != nil {
			return "", err
		}
		if inner == "" {
			return falsePredicate, nil
		}
		return "NOT (" + inner + ")", nil
	default:
		sql, err := r.compare(s, e.op, e.operand)
		if err != nil {
			return "", keyed(err, s.key)
		}
		return sql, nil
	}
}

// compare renders a single comparison of the subject.
func (r *renderer) compare(s *subject, op Op, operand any) (string, error) {
	if err := r.supports(s, op); err != nil {
		return "", err
	}
	info := ops[op]
	if _, ok := operand.(SetExpr); ok && !info.sets {
		return "", &InvalidOperandKindError{Op: op, Msg: "does not accept any or all operands"}
	}
	if err := checkArity(op, operand); err != nil {
		return "", err
	}
	lhs := r.lhs(s, operand)
	switch op {
	case Eq, Ne:
		if operand == nil && r.p.NullComparisonUsesIs {
			if op == Eq {
				return lhs + " IS NULL", nil
			}
			return lhs + " IS NOT NULL", nil
		}
		return r.binary(lhs, info.sql, s, operand)
	case Is, IsNot:
		switch v := operand.(type) {
		case nil:
			return lhs + " " + info.sql + " NULL", nil
		case bool:
			return lhs + " " + info.sql + " " + r.p.Bool(v), nil
		}
		return "", &InvalidOperandKindError{Op: op, Msg: "expects a boolean or null operand"}
	case Gt, Gte, Lt, Lte:
		if operand == nil {
			return "", &InvalidOperandKindError{Op: op, Msg: "cannot compare with null"}
		}
		return r.binary(lhs, info.sql, s, operand)
	case Between, NotBetween:
		l, _ := listOf(operand)
		lo, err := r.value(l[0], s.field)
		if err != nil {
			return "", err
		}
		hi, err := r.value(l[1], s.field)
		if err != nil {
			return "", err
		}
		return lhs + " " + info.sql + " " + lo + " AND " + hi, nil
	case In, NotIn:
		return r.in(lhs, op, s, operand)
	case Like, NotLike, ILike, NotILike:
		return r.like(lhs, op, operand)
	case StartsWith, EndsWith, Substring, NotStartsWith, NotEndsWith, NotSubstring:
		return r.pattern(lhs, op, operand)
	case Regexp, NotRegexp, IRegexp, NotIRegexp:
		if operand == nil {
			return "", &InvalidOperandKindError{Op: op, Msg: "cannot match null"}
		}
		return r.binary(lhs, r.p.RegexpOps[op-Regexp], nil, operand)
	case Overlap, Contains, Contained, Adjacent, StrictLeft, StrictRight, NoExtendLeft, NoExtendRight, Match:
		if operand == nil {
			return "", &InvalidOperandKindError{Op: op, Msg: "cannot compare with null"}
		}
		return r.binary(lhs, info.sql, s, operand)
	case AnyKeyExists, AllKeysExist:
		l, ok := listOf(operand)
		if !ok {
			return "", &OperatorArityError{Op: op, Msg: fmt.Sprintf("expects a list of keys, got %T", operand)}
		}
		keys, err := r.array(l, nil)
		if err != nil {
			return "", err
		}
		return lhs + " " + info.sql + " " + keys, nil
	case EqAny, EqAll:
		if _, ok := operand.(SetExpr); ok {
			return "", &InvalidOperandKindError{Op: op, Msg: "cannot nest any and all"}
		}
		kind := SetAny
		if op == EqAll {
			kind = SetAll
		}
		return r.binary(lhs, info.sql, s, SetExpr{Kind: kind, Value: operand})
	case EqCol:
		name, ok := operand.(string)
		if !ok {
			return "", &InvalidOperandKindError{Op: op, Msg: "expects a column name"}
		}
		return lhs + " = " + r.columnName(name), nil
	case ValuesOf:
		return "", &OperatorArityError{Op: op, Msg: "is not a comparison operator"}
	default:
		return "", &OperatorArityError{Op: op, Msg: "unknown operator"}
	}
}

// checkArity checks the operand shape against the arity of the operator.
func checkArity(op Op, operand any) error {
	switch ops[op].arity {
	case arityPair:
		if l, ok := listOf(operand); !ok || len(l) != 2 {
			return &OperatorArityError{Op: op, Msg: fmt.Sprintf("expects exactly 2 bounds, got %s", count(operand))}
		}
	case arityList:
		switch operand.(type) {
		case LiteralExpr, ValuesList:
			return nil
		}
		if _, ok := listOf(operand); !ok {
			return &OperatorArityError{Op: op, Msg: fmt.Sprintf("expects a list, got %T", operand)}
		}
	case arityNested:
		return &OperatorArityError{Op: op, Msg: "is not a comparison operator"}
	}
	return nil
}

// supports checks the dialect capability the operator depends on.
// Containment operators depend on the attribute type: ranges, JSONB or arrays.
func (r *renderer) supports(s *subject, op Op) error {
	var (
		feature string
		ok      bool
	)
	switch ops[op].cap {
	case capNone:
		return nil
	case capContainment:
		switch {
		case s.attr.IsRange():
			feature, ok = "range", r.p.SupportsRange
		case s.attr.IsJSON():
			feature, ok = "jsonb", r.p.SupportsJSONB
		default:
			feature, ok = "array", r.p.SupportsArray
		}
	case capRange:
		feature, ok = "range", r.p.SupportsRange
	case capJSONB:
		feature, ok = "jsonb", r.p.SupportsJSONB
	case capRegexp:
		feature, ok = "regexp", r.p.SupportsRegexp
	case capIRegexp:
		feature, ok = "iregexp", r.p.SupportsIRegexp
	case capFullText:
		feature, ok = "fulltext", r.p.SupportsFullText
	}
	if !ok {
		return &UnsupportedOperatorError{Op: op, Feature: feature, Dialect: r.p.Name}
	}
	return nil
}

// lhs returns the left side of a comparison. An uncast JSON path is cast to
// the type of the operand on dialects that extract paths as text.
func (r *renderer) lhs(s *subject, operand any) string {
	if !s.json || !r.p.JSONCast {
		return s.sql
	}
	v := operand
	if set, ok := v.(SetExpr); ok {
		v = set.Value
	}
	if l, ok := listOf(v); ok && len(l) > 0 {
		v = l[0]
	}
	switch v.(type) {
	case bool:
		return s.sql + "::boolean"
	case time.Time:
		return s.sql + "::timestamptz"
	case decimal.Decimal, json.Number:
		return s.sql + "::double precision"
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return s.sql + "::double precision"
	}
	return s.sql
}

func (r *renderer) binary(lhs, sym string, s *subject, operand any) (string, error) {
	hint := s
	if hint == nil {
		hint = &subject{}
	}
	if _, ok := listOf(operand); ok && hint.field != nil && !hint.array && !hint.field.IsJSON() && !hint.field.IsRange() {
		return "", &TypeMismatchError{Msg: "list operand against a non-array attribute"}
	}
	rhs, err := r.value(operand, hint.field)
	if err != nil {
		return "", err
	}
	return lhs + " " + sym + " " + rhs, nil
}

func (r *renderer) in(lhs string, op Op, s *subject, operand any) (string, error) {
	sym := ops[op].sql
	switch v := operand.(type) {
	case LiteralExpr:
		return lhs + " " + sym + " " + v.SQL, nil
	case ValuesList:
		values, err := r.values(v)
		if err != nil {
			return "", err
		}
		return lhs + " " + sym + " (" + values + ")", nil
	case SetExpr:
		return "", &InvalidOperandKindError{Op: op, Msg: "does not accept any or all operands"}
	}
	l, _ := listOf(operand)
	if len(l) == 0 {
		if op == In {
			return lhs + " IN (NULL)", nil
		}
		return "", nil
	}
	items := make([]string, len(l))
	for i, e := range l {
		v, err := r.value(e, s.field)
		if err != nil {
			return "", err
		}
		items[i] = v
	}
	return lhs + " " + sym + " (" + strings.Join(items, ", ") + ")", nil
}

func (r *renderer) like(lhs string, op Op, operand any) (string, error) {
	if operand == nil {
		return "", &InvalidOperandKindError{Op: op, Msg: "cannot match null"}
	}
	sym := ops[op].sql
	if op == ILike || op == NotILike {
		switch r.p.ILike {
		case dialect.ILikeCollation:
			sym = ops[op-2].sql
		case dialect.ILikeLower:
			sym = ops[op-2].sql
			rhs, err := r.value(operand, nil)
			if err != nil {
				return "", err
			}
			if _, ok := operand.(SetExpr); !ok {
				rhs = "LOWER(" + rhs + ")"
			}
			return "LOWER(" + lhs + ") " + sym + " " + rhs, nil
		}
	}
	return r.binary(lhs, sym, nil, operand)
}

// pattern renders startsWith and its relatives as LIKE patterns. Wildcards
// inside the operand are not escaped.
func (r *renderer) pattern(lhs string, op Op, operand any) (string, error) {
	var before, after string
	switch op {
	case StartsWith, NotStartsWith:
		after = "%"
	case EndsWith, NotEndsWith:
		before = "%"
	default:
		before, after = "%", "%"
	}
	sym := ops[op].sql
	switch v := operand.(type) {
	case nil:
		return "", &InvalidOperandKindError{Op: op, Msg: "cannot match null"}
	case string:
		return lhs + " " + sym + " " + r.p.QuoteString(before+v+after), nil
	case ColumnRef, LiteralExpr, FuncCall, CastExpr:
		inner, err := r.value(v, nil)
		if err != nil {
			return "", err
		}
		parts := make([]string, 0, 3)
		if before != "" {
			parts = append(parts, r.p.QuoteString(before))
		}
		parts = append(parts, inner)
		if after != "" {
			parts = append(parts, r.p.QuoteString(after))
		}
		return lhs + " " + sym + " " + r.concat(parts), nil
	case SetExpr, ValuesList, []byte:
		return "", &InvalidOperandKindError{Op: op, Msg: fmt.Sprintf("does not accept %T operands", operand)}
	}
	if _, ok := listOf(operand); ok {
		return "", &InvalidOperandKindError{Op: op, Msg: "does not accept list operands"}
	}
	if _, ok := mapOf(operand); ok {
		return "", &InvalidOperandKindError{Op: op, Msg: "does not accept map operands"}
	}
	return lhs + " " + sym + " " + r.p.QuoteString(before+fmt.Sprint(operand)+after), nil
}

func (r *renderer) concat(parts []string) string {
	if r.p.Concat == dialect.ConcatPipes {
		return "(" + strings.Join(parts, " || ") + ")"
	}
	return "CONCAT(" + strings.Join(parts, ", ") + ")"
}

// count describes the size of an operand for error messages.
func count(v any) string {
	if l, ok := listOf(v); ok {
		return fmt.Sprint(len(l))
	}
	return fmt.Sprintf("%T", v)
}
