package where

import (
	"fmt"
	"reflect"
	"strings"
)

// The parse pass turns a condition input into a tree of nodes. It resolves
// attribute keys, normalizes operand shorthands and rejects undefined
// values. Rendering never sees the raw input.
type (
	node interface{ node() }

	// combinator is an AND, OR or NOT group. Implicit groups come from
	// mappings and nested lists rather than from an explicit and/or key.
	combinator struct {
		kind     Op
		children []node
		implicit bool
	}

	// leaf applies an operator map to one attribute.
	leaf struct {
		attr *AttributeRef
		ops  operatorMap
	}

	// comparison applies an operator map to an arbitrary left expression.
	comparison struct {
		left any
		ref  *AttributeRef // synthetic, for error keys.
		ops  operatorMap
	}

	// raw is verbatim SQL.
	raw struct{ sql string }

	// expr is a condition given as a function call, cast or column.
	expr struct{ value any }
)

func (*combinator) node() {}
func (*leaf) node()       {}
func (*comparison) node() {}
func (*raw) node()        {}
func (*expr) node()       {}

type (
	// operatorMap holds the operators applied to one subject, implicitly ANDed.
	operatorMap []operatorEntry

	operatorEntry struct {
		op      Op
		operand any
		nested  []operatorMap // and, or and not.
	}
)

type parser struct {
	cfg *config
}

// parse returns the root node of the input. A nil input is an empty condition.
func (p *parser) parse(input any) (node, error) {
	switch v := input.(type) {
	case nil:
		return &combinator{kind: And, implicit: true}, nil
	case string:
		return nil, &InvalidOperandKindError{Key: v, Msg: "a bare string is not a condition, use Literal for raw SQL"}
	}
	return p.item("", input)
}

// item parses one element of a condition list.
func (p *parser) item(key string, v any) (node, error) {
	switch v := v.(type) {
	case undefinedValue:
		return nil, &UndefinedValueError{Key: key}
	case LiteralExpr:
		return &raw{sql: v.SQL}, nil
	case FuncCall, CastExpr, ColumnRef:
		if err := checkDefined(key, v); err != nil {
			return nil, err
		}
		n, err := normalize(v)
		if err != nil {
			return nil, err
		}
		return &expr{value: n}, nil
	case Comparison:
		return p.comparison(v)
	}
	if m, ok := mapOf(v); ok {
		return p.mapping(m)
	}
	if l, ok := listOf(v); ok {
		g := &combinator{kind: And, implicit: true}
		for _, e := range l {
			n, err := p.item(key, e)
			if err != nil {
				return nil, err
			}
			g.children = append(g.children, n)
		}
		return g, nil
	}
	return nil, &InvalidOperandKindError{Key: key, Msg: fmt.Sprintf("%T is not a condition", v)}
}

// mapping parses a condition mapping into an implicit AND of its entries.
func (p *parser) mapping(m Map) (node, error) {
	g := &combinator{kind: And, implicit: true, children: make([]node, 0, len(m))}
	for _, e := range m {
		n, err := p.entry(e)
		if err != nil {
			return nil, err
		}
		g.children = append(g.children, n)
	}
	return g, nil
}

func (p *parser) entry(e Pair) (node, error) {
	op, isOp, err := keyOp(e.Key)
	if err != nil {
		return nil, err
	}
	if isOp {
		if !op.logical() {
			return nil, &OperatorArityError{Op: op, Msg: "requires an attribute"}
		}
		return p.combinator(op, e.Value)
	}
	key := e.Key.(string)
	if err := checkDefined(key, e.Value); err != nil {
		return nil, err
	}
	ref, err := p.cfg.resolve(key)
	if err != nil {
		return nil, err
	}
	return p.attribute(ref, e.Value)
}

func (p *parser) combinator(op Op, v any) (node, error) {
	g := &combinator{kind: op}
	if _, ok := v.(undefinedValue); ok {
		return nil, &UndefinedValueError{Key: op.String()}
	}
	if m, ok := mapOf(v); ok {
		if op == Not {
			if len(m) > 0 {
				n, err := p.mapping(m)
				if err != nil {
					return nil, err
				}
				g.children = []node{n}
			}
			return g, nil
		}
		for _, e := range m {
			n, err := p.entry(e)
			if err != nil {
				return nil, err
			}
			g.children = append(g.children, n)
		}
		return g, nil
	}
	if l, ok := listOf(v); ok {
		for _, e := range l {
			n, err := p.item(op.String(), e)
			if err != nil {
				return nil, err
			}
			g.children = append(g.children, n)
		}
		return g, nil
	}
	n, err := p.item(op.String(), v)
	if err != nil {
		return nil, err
	}
	g.children = []node{n}
	return g, nil
}

// attribute parses the value of an attribute key.
func (p *parser) attribute(ref *AttributeRef, v any) (node, error) {
	if len(ref.Path) > 0 && !p.cfg.profile.SupportsJSON {
		return nil, &UnsupportedOperatorError{Feature: "json", Dialect: p.cfg.profile.Name}
	}
	if m, ok := mapOf(v); ok && ref.IsJSON() && hasPathKeys(m) {
		if !p.cfg.profile.SupportsJSON {
			return nil, &UnsupportedOperatorError{Feature: "json", Dialect: p.cfg.profile.Name}
		}
		return p.traverse(ref, m)
	}
	ops, err := p.operatorMap(ref, v)
	if err != nil {
		return nil, err
	}
	return &leaf{attr: ref, ops: ops}, nil
}

// traverse expands a nested mapping on a JSON attribute into one leaf per path.
func (p *parser) traverse(ref *AttributeRef, m Map) (node, error) {
	g := &combinator{kind: And, implicit: true, children: make([]node, 0, len(m))}
	for _, e := range m {
		_, isOp, err := keyOp(e.Key)
		if err != nil {
			return nil, err
		}
		if isOp {
			ops, err := p.operatorMap(ref, Map{e})
			if err != nil {
				return nil, err
			}
			g.children = append(g.children, &leaf{attr: ref, ops: ops})
			continue
		}
		name, cast := splitCast(e.Key.(string))
		sub := ref.child(strings.Split(name, "."), cast)
		if sm, ok := mapOf(e.Value); ok && cast == "" && hasPathKeys(sm) {
			n, err := p.traverse(sub, sm)
			if err != nil {
				return nil, err
			}
			g.children = append(g.children, n)
			continue
		}
		ops, err := p.operatorMap(sub, e.Value)
		if err != nil {
			return nil, err
		}
		g.children = append(g.children, &leaf{attr: sub, ops: ops})
	}
	return g, nil
}

// hasPathKeys reports if the mapping holds keys that are not operators.
func hasPathKeys(m Map) bool {
	for _, e := range m {
		if _, isOp, err := keyOp(e.Key); err == nil && !isOp {
			return true
		}
	}
	return false
}

// operatorMap parses the value of an attribute into its operators.
func (p *parser) operatorMap(ref *AttributeRef, v any) (operatorMap, error) {
	m, ok := mapOf(v)
	if !ok {
		operand, err := normalize(v)
		if err != nil {
			return nil, keyed(err, ref.Key)
		}
		return operatorMap{p.implicit(ref, operand)}, nil
	}
	if len(m) == 0 {
		if ref.IsJSON() {
			return operatorMap{{op: Eq, operand: m}}, nil
		}
		return nil, &TypeMismatchError{Key: ref.Key, Msg: "empty operator map"}
	}
	ops := make(operatorMap, 0, len(m))
	for _, e := range m {
		op, isOp, err := keyOp(e.Key)
		if err != nil {
			return nil, err
		}
		if !isOp {
			return nil, &TypeMismatchError{Key: ref.Key, Msg: fmt.Sprintf("nested key %q on a non-JSON attribute", keyString(e.Key))}
		}
		entry, err := p.operatorEntry(ref, op, e.Value)
		if err != nil {
			return nil, err
		}
		ops = append(ops, entry)
	}
	return ops, nil
}

// implicit returns the operator of a bare operand: IN for lists against
// scalar attributes, equality otherwise.
func (p *parser) implicit(ref *AttributeRef, v any) operatorEntry {
	if _, ok := listOf(v); ok && !ref.IsArray() {
		return operatorEntry{op: In, operand: v}
	}
	return operatorEntry{op: Eq, operand: v}
}

func (p *parser) operatorEntry(ref *AttributeRef, op Op, v any) (operatorEntry, error) {
	switch op {
	case And, Or:
		nested, err := p.nested(ref, op, v)
		if err != nil {
			return operatorEntry{}, err
		}
		return operatorEntry{op: op, nested: nested}, nil
	case Not:
		return p.negate(ref, v)
	case ValuesOf:
		return operatorEntry{}, &OperatorArityError{Op: op, Key: ref.Key, Msg: "is only valid inside any or all"}
	}
	operand, err := normalize(v)
	if err != nil {
		return operatorEntry{}, keyed(err, ref.Key)
	}
	return operatorEntry{op: op, operand: operand}, nil
}

// nested parses the operand of an attribute level and/or. A list holds one
// operator map per element, a map one per entry.
func (p *parser) nested(ref *AttributeRef, op Op, v any) ([]operatorMap, error) {
	if m, ok := mapOf(v); ok {
		out := make([]operatorMap, 0, len(m))
		for _, e := range m {
			ops, err := p.operatorMap(ref, Map{e})
			if err != nil {
				return nil, err
			}
			out = append(out, ops)
		}
		return out, nil
	}
	if l, ok := listOf(v); ok {
		out := make([]operatorMap, 0, len(l))
		for _, e := range l {
			ops, err := p.operatorMap(ref, e)
			if err != nil {
				return nil, err
			}
			out = append(out, ops)
		}
		return out, nil
	}
	return nil, &OperatorArityError{Op: op, Key: ref.Key, Msg: "expects a list or a map of operators"}
}

// negate parses an attribute level not. Bare operands become the negated
// comparison; operator maps are wrapped in NOT (...).
func (p *parser) negate(ref *AttributeRef, v any) (operatorEntry, error) {
	if m, ok := mapOf(v); ok {
		if len(m) == 0 {
			return operatorEntry{op: Not}, nil
		}
		ops, err := p.operatorMap(ref, m)
		if err != nil {
			return operatorEntry{}, err
		}
		return operatorEntry{op: Not, nested: []operatorMap{ops}}, nil
	}
	operand, err := normalize(v)
	if err != nil {
		return operatorEntry{}, keyed(err, ref.Key)
	}
	if _, ok := listOf(operand); ok {
		if ref.IsArray() {
			return operatorEntry{op: Ne, operand: operand}, nil
		}
		return operatorEntry{op: NotIn, operand: operand}, nil
	}
	switch operand.(type) {
	case nil, bool:
		return operatorEntry{op: IsNot, operand: operand}, nil
	}
	return operatorEntry{op: Ne, operand: operand}, nil
}

// comparison parses a standalone Where comparison.
func (p *parser) comparison(c Comparison) (node, error) {
	if err := checkDefined("where", c.Left); err != nil {
		return nil, err
	}
	if err := checkDefined("where", c.Right); err != nil {
		return nil, err
	}
	if c.Op == And || c.Op == Or || !c.Op.Valid() {
		return nil, &OperatorArityError{Op: c.Op, Key: "where", Msg: "is not a comparison operator"}
	}
	if key, ok := c.Left.(string); ok {
		ref, err := p.cfg.resolve(key)
		if err != nil {
			return nil, err
		}
		ops, err := p.compared(ref, c.Op, c.Right)
		if err != nil {
			return nil, err
		}
		return &leaf{attr: ref, ops: ops}, nil
	}
	left, err := normalize(c.Left)
	if err != nil {
		return nil, err
	}
	switch left.(type) {
	case ColumnRef, LiteralExpr, FuncCall, CastExpr:
	default:
		return nil, &InvalidOperandKindError{Key: "where", Msg: fmt.Sprintf("left side %T is not an expression", c.Left)}
	}
	ref := &AttributeRef{Key: "where"}
	ops, err := p.compared(ref, c.Op, c.Right)
	if err != nil {
		return nil, err
	}
	return &comparison{left: left, ref: ref, ops: ops}, nil
}

func (p *parser) compared(ref *AttributeRef, op Op, right any) (operatorMap, error) {
	if m, ok := mapOf(right); ok && op == Eq && !ref.IsJSON() {
		if len(m) == 0 {
			return nil, &TypeMismatchError{Key: ref.Key, Msg: "empty operator map"}
		}
		return p.operatorMap(ref, m)
	}
	entry, err := p.operatorEntry(ref, op, right)
	if err != nil {
		return nil, err
	}
	return operatorMap{entry}, nil
}

// normalize replaces single entry wrapper maps ({"$col": "x"}, {"$any": [...]},
// {"$values": [...]}) by their wrapper values, recursively.
func normalize(v any) (any, error) {
	switch w := v.(type) {
	case nil, string, LiteralExpr, ColumnRef:
		return v, nil
	case SetExpr:
		inner, err := normalize(w.Value)
		if err != nil {
			return nil, err
		}
		if _, ok := inner.(SetExpr); ok {
			return nil, &InvalidOperandKindError{Op: EqAny, Msg: "cannot nest any and all"}
		}
		w.Value = inner
		return w, nil
	case ValuesList:
		items, err := normalizeAll(w.Items)
		if err != nil {
			return nil, err
		}
		return ValuesList{Items: items}, nil
	case FuncCall:
		args, err := normalizeAll(w.Args)
		if err != nil {
			return nil, err
		}
		return FuncCall{Name: w.Name, Args: args}, nil
	case CastExpr:
		inner, err := normalize(w.Value)
		if err != nil {
			return nil, err
		}
		w.Value = inner
		return w, nil
	}
	if m, ok := mapOf(v); ok {
		if len(m) != 1 {
			return v, nil
		}
		op, isOp, err := keyOp(m[0].Key)
		if err != nil || !isOp {
			return v, nil
		}
		return wrapper(op, m[0].Value)
	}
	if l, ok := listOf(v); ok {
		return normalizeAll(l)
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, nil
	}
	return v, nil
}

func normalizeAll(l []any) ([]any, error) {
	out := make([]any, len(l))
	for i, e := range l {
		n, err := normalize(e)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// wrapper decodes the operand form of a wrapper map.
func wrapper(op Op, v any) (any, error) {
	switch op {
	case EqCol:
		name, ok := v.(string)
		if !ok {
			return nil, &InvalidOperandKindError{Op: op, Msg: "expects a column name"}
		}
		return Col(name), nil
	case EqAny, EqAll:
		inner, err := normalize(v)
		if err != nil {
			return nil, err
		}
		kind := SetAny
		if op == EqAll {
			kind = SetAll
		}
		return SetExpr{Kind: kind, Value: inner}, nil
	case ValuesOf:
		l, ok := listOf(v)
		if !ok {
			return nil, &OperatorArityError{Op: op, Msg: "expects a list"}
		}
		items, err := normalizeAll(l)
		if err != nil {
			return nil, err
		}
		return ValuesList{Items: items}, nil
	}
	return Map{{Key: op, Value: v}}, nil
}

// checkDefined fails if v holds Undefined at any depth.
func checkDefined(key string, v any) error {
	switch v := v.(type) {
	case undefinedValue:
		return &UndefinedValueError{Key: key}
	case nil, string, []byte, LiteralExpr, ColumnRef:
		return nil
	case SetExpr:
		return checkDefined(key, v.Value)
	case CastExpr:
		return checkDefined(key, v.Value)
	case FuncCall:
		return checkAll(key, v.Args)
	case ValuesList:
		return checkAll(key, v.Items)
	case Comparison:
		if err := checkDefined(key, v.Left); err != nil {
			return err
		}
		return checkDefined(key, v.Right)
	}
	if m, ok := mapOf(v); ok {
		for _, e := range m {
			k := key
			if s, ok := e.Key.(string); ok {
				k = s
			}
			if err := checkDefined(k, e.Value); err != nil {
				return err
			}
		}
		return nil
	}
	if l, ok := listOf(v); ok {
		return checkAll(key, l)
	}
	return nil
}

func checkAll(key string, l []any) error {
	for _, e := range l {
		if err := checkDefined(key, e); err != nil {
			return err
		}
	}
	return nil
}
