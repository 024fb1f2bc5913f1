package where

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/sqlcond/dialect"
	"github.com/syssam/sqlcond/schema/field"
)

// falsePredicate is the rendering of a group that can never match.
const falsePredicate = "0 = 1"

// noParent is the parent of the root node.
const noParent = opInvalid

// renderer renders one parsed condition. It is not safe for concurrent use;
// a Compiler creates one per call.
type renderer struct {
	cfg *config
	p   dialect.Profile
}

func newRenderer(cfg *config) *renderer {
	return &renderer{cfg: cfg, p: cfg.profile}
}

// node renders n. parent is the kind of the enclosing group and decides
// whether a multi-part result is parenthesized.
func (r *renderer) node(n node, parent Op) (string, error) {
	switch n := n.(type) {
	case *combinator:
		return r.combinator(n, parent)
	case *leaf:
		s, err := r.subject(n.attr)
		if err != nil {
			return "", err
		}
		return r.operators(s, n.ops, parent)
	case *comparison:
		lhs, err := r.value(n.left, nil)
		if err != nil {
			return "", keyed(err, n.ref.Key)
		}
		return r.operators(&subject{key: n.ref.Key, sql: lhs}, n.ops, parent)
	case *raw:
		return n.sql, nil
	case *expr:
		return r.value(n.value, nil)
	default:
		return "", fmt.Errorf("sqlcond: unexpected node %T", n)
	}
}

func (r *renderer) combinator(g *combinator, parent Op) (string, error) {
	if g.kind == Not {
		var (
			inner string
			err   error
		)
		if len(g.children) == 1 {
			inner, err = r.node(g.children[0], Not)
		} else {
			inner, err = r.join(g.children, And)
		}
		if err != nil {
			return "", err
		}
		if inner == "" {
			return falsePredicate, nil
		}
		return "NOT (" + inner + ")", nil
	}
	switch {
	case len(g.children) == 0 && g.implicit:
		return "", nil
	case len(g.children) == 0:
		return falsePredicate, nil
	case len(g.children) == 1 && g.implicit:
		return r.node(g.children[0], parent)
	}
	parts, live, err := r.parts(g.children, g.kind)
	if err != nil {
		return "", err
	}
	if len(live) == 1 {
		// The group collapses into its only child, which takes the
		// group's place below parent.
		return r.node(live[0], parent)
	}
	return group(g.kind, parts, parent, g.implicit), nil
}

// parts renders children below a group of the given kind and returns the
// non-empty renderings with the children they came from.
func (r *renderer) parts(children []node, kind Op) ([]string, []node, error) {
	parts := make([]string, 0, len(children))
	live := make([]node, 0, len(children))
	for _, c := range children {
		s, err := r.node(c, kind)
		if err != nil {
			return nil, nil, err
		}
		if s != "" {
			parts = append(parts, s)
			live = append(live, c)
		}
	}
	return parts, live, nil
}

func (r *renderer) join(children []node, kind Op) (string, error) {
	parts, _, err := r.parts(children, kind)
	if err != nil {
		return "", err
	}
	return strings.Join(parts, " "+ops[kind].sql+" "), nil
}

// group joins the rendered parts of an AND or OR group. Implicit groups are
// parenthesized only inside an OR. Explicit groups are parenthesized unless
// their parent is a NOT or a group of the same kind.
func group(kind Op, parts []string, parent Op, implicit bool) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	s := strings.Join(parts, " "+ops[kind].sql+" ")
	switch {
	case implicit && parent != Or:
		return s
	case !implicit && (parent == Not || parent == kind):
		return s
	default:
		return "(" + s + ")"
	}
}

// subject is the left side of the comparisons of one leaf.
type subject struct {
	key   string            // for errors.
	sql   string            // rendered column or expression.
	field *field.Descriptor // type of the compared values, nil if unknown.
	attr  *field.Descriptor // attribute descriptor, nil below a JSON path.
	array bool
	json  bool // sql is an uncast JSON path extraction.
}

func (r *renderer) subject(ref *AttributeRef) (*subject, error) {
	col := r.column(ref)
	s := &subject{key: ref.Key}
	if len(ref.Path) > 0 {
		path, err := r.jsonPath(col, ref.Path)
		if err != nil {
			return nil, err
		}
		col, s.json = path, ref.Cast == ""
	} else {
		s.field, s.attr, s.array = ref.Field, ref.Field, ref.IsArray()
	}
	if ref.Cast != "" {
		col = "CAST(" + col + " AS " + upper(ref.Cast) + ")"
		s.field, s.attr = nil, nil
	}
	s.sql = col
	return s, nil
}

// column renders the qualified column of an attribute.
func (r *renderer) column(ref *AttributeRef) string {
	switch {
	case ref.Qualified != "":
		return ref.Qualified
	case len(ref.Qualifier) > 0:
		var b strings.Builder
		for _, q := range ref.Qualifier {
			b.WriteString(r.p.Quote(q))
			b.WriteByte('.')
		}
		b.WriteString(r.p.Quote(ref.Column))
		return b.String()
	default:
		return r.prefixed(r.p.Quote(ref.Column))
	}
}

// columnName renders a Col reference. Dotted names are table qualified.
func (r *renderer) columnName(name string) string {
	if isAssociationKey(name) {
		name = name[1 : len(name)-1]
	}
	if name == "*" {
		return r.prefixed(name)
	}
	parts := strings.Split(name, ".")
	if len(parts) == 1 {
		return r.prefixed(r.p.Quote(name))
	}
	table := strings.Join(parts[:len(parts)-1], r.p.PathSeparator)
	return r.p.Quote(table) + "." + r.p.Quote(parts[len(parts)-1])
}

func (r *renderer) prefixed(col string) string {
	switch {
	case r.cfg.prefix == "":
		return col
	case r.cfg.rawPrefix:
		return r.cfg.prefix + "." + col
	default:
		parts := strings.Split(r.cfg.prefix, ".")
		for i := range parts {
			parts[i] = r.p.Quote(parts[i])
		}
		return strings.Join(parts, ".") + "." + col
	}
}

// jsonPath renders the extraction of a path from a JSON column as text.
func (r *renderer) jsonPath(col string, path []string) (string, error) {
	switch r.p.JSONPath {
	case dialect.JSONPathOperator:
		segs := make([]string, len(path))
		for i, s := range path {
			segs[i] = pgPathSegment(s)
		}
		return "(" + col + "#>>" + r.p.QuoteString("{"+strings.Join(segs, ",")+"}") + ")", nil
	case dialect.JSONPathUnquote:
		return "json_unquote(json_extract(" + col + "," + r.p.QuoteString(sqlJSONPath(path)) + "))", nil
	case dialect.JSONPathExtract:
		return "json_extract(" + col + "," + r.p.QuoteString(sqlJSONPath(path)) + ")", nil
	default:
		return "", &UnsupportedOperatorError{Feature: "json", Dialect: r.p.Name}
	}
}

// pgPathSegment quotes a text[] path element when needed.
func pgPathSegment(s string) string {
	if s != "" && !strings.ContainsAny(s, `,{}"\ `) {
		return s
	}
	s = strings.ReplaceAll(s, `\`, `\\`)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// sqlJSONPath renders a SQL/JSON path expression: $.a.b[0].
func sqlJSONPath(path []string) string {
	var b strings.Builder
	b.WriteByte('$')
	for _, s := range path {
		switch {
		case isIndex(s):
			b.WriteString("[" + s + "]")
		case isIdent(s):
			b.WriteString("." + s)
		default:
			b.WriteString("." + strconv.Quote(s))
		}
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// upper upper-cases a SQL type name.
func upper(s string) string {
	return cases.Upper(language.Und).String(s)
}
