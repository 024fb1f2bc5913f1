package where

// Op is a condition operator. The set of operators is closed: every Op is
// rendered by the same switch that checks its dialect capability.
type Op uint8

// Comparison, set and logical operators.
const (
	opInvalid Op = iota

	Eq    // =
	Ne    // !=
	Is    // IS
	IsNot // IS NOT
	Not   // NOT (...), or the negated form of a bare comparison.

	Gt  // >
	Gte // >=
	Lt  // <
	Lte // <=

	Between    // BETWEEN a AND b
	NotBetween // NOT BETWEEN a AND b
	In         // IN (...)
	NotIn      // NOT IN (...)

	Like          // LIKE
	NotLike       // NOT LIKE
	ILike         // ILIKE
	NotILike      // NOT ILIKE
	StartsWith    // LIKE 'v%'
	EndsWith      // LIKE '%v'
	Substring     // LIKE '%v%'
	NotStartsWith // NOT LIKE 'v%'
	NotEndsWith   // NOT LIKE '%v'
	NotSubstring  // NOT LIKE '%v%'

	Regexp     // ~
	NotRegexp  // !~
	IRegexp    // ~*
	NotIRegexp // !~*

	Overlap   // &&
	Contains  // @>
	Contained // <@

	Adjacent      // -|-
	StrictLeft    // <<
	StrictRight   // >>
	NoExtendLeft  // &>
	NoExtendRight // &<

	Match        // @@
	AnyKeyExists // ?|
	AllKeysExist // ?&

	EqAny    // = ANY (...)
	EqAll    // = ALL (...)
	EqCol    // = column
	ValuesOf // VALUES (...), only inside ANY and ALL.

	And // AND
	Or  // OR

	opCount
)

type arity uint8

const (
	arityOne    arity = iota // a single operand.
	arityPair                // exactly two operands.
	arityList                // zero or more operands.
	arityNested              // nested operator maps.
)

// capability is the dialect feature an operator depends on.
type capability uint8

const (
	capNone capability = iota
	capContainment
	capRange
	capJSONB
	capRegexp
	capIRegexp
	capFullText
)

type opInfo struct {
	name  string
	sql   string
	arity arity
	cap   capability
	sets  bool // accepts ANY and ALL operands.
}

var ops = [...]opInfo{
	opInvalid:     {name: "invalid"},
	Eq:            {name: "eq", sql: "=", sets: true},
	Ne:            {name: "ne", sql: "!=", sets: true},
	Is:            {name: "is", sql: "IS"},
	IsNot:         {name: "isNot", sql: "IS NOT"},
	Not:           {name: "not", sql: "NOT", arity: arityNested},
	Gt:            {name: "gt", sql: ">", sets: true},
	Gte:           {name: "gte", sql: ">=", sets: true},
	Lt:            {name: "lt", sql: "<", sets: true},
	Lte:           {name: "lte", sql: "<=", sets: true},
	Between:       {name: "between", sql: "BETWEEN", arity: arityPair},
	NotBetween:    {name: "notBetween", sql: "NOT BETWEEN", arity: arityPair},
	In:            {name: "in", sql: "IN", arity: arityList},
	NotIn:         {name: "notIn", sql: "NOT IN", arity: arityList},
	Like:          {name: "like", sql: "LIKE", sets: true},
	NotLike:       {name: "notLike", sql: "NOT LIKE", sets: true},
	ILike:         {name: "iLike", sql: "ILIKE", sets: true},
	NotILike:      {name: "notILike", sql: "NOT ILIKE", sets: true},
	StartsWith:    {name: "startsWith", sql: "LIKE"},
	EndsWith:      {name: "endsWith", sql: "LIKE"},
	Substring:     {name: "substring", sql: "LIKE"},
	NotStartsWith: {name: "notStartsWith", sql: "NOT LIKE"},
	NotEndsWith:   {name: "notEndsWith", sql: "NOT LIKE"},
	NotSubstring:  {name: "notSubstring", sql: "NOT LIKE"},
	Regexp:        {name: "regexp", cap: capRegexp, sets: true},
	NotRegexp:     {name: "notRegexp", cap: capRegexp, sets: true},
	IRegexp:       {name: "iRegexp", cap: capIRegexp, sets: true},
	NotIRegexp:    {name: "notIRegexp", cap: capIRegexp, sets: true},
	Overlap:       {name: "overlap", sql: "&&", cap: capContainment},
	Contains:      {name: "contains", sql: "@>", cap: capContainment},
	Contained:     {name: "contained", sql: "<@", cap: capContainment},
	Adjacent:      {name: "adjacent", sql: "-|-", cap: capRange},
	StrictLeft:    {name: "strictLeft", sql: "<<", cap: capRange},
	StrictRight:   {name: "strictRight", sql: ">>", cap: capRange},
	NoExtendLeft:  {name: "noExtendLeft", sql: "&>", cap: capRange},
	NoExtendRight: {name: "noExtendRight", sql: "&<", cap: capRange},
	Match:         {name: "match", sql: "@@", cap: capFullText},
	AnyKeyExists:  {name: "anyKeyExists", sql: "?|", arity: arityList, cap: capJSONB},
	AllKeysExist:  {name: "allKeysExist", sql: "?&", arity: arityList, cap: capJSONB},
	EqAny:         {name: "any", sql: "="},
	EqAll:         {name: "all", sql: "="},
	EqCol:         {name: "col", sql: "="},
	ValuesOf:      {name: "values", sql: "VALUES", arity: arityList},
	And:           {name: "and", sql: "AND", arity: arityNested},
	Or:            {name: "or", sql: "OR", arity: arityNested},
}

var opsByName = func() map[string]Op {
	m := make(map[string]Op, len(ops))
	for op := Op(1); op < opCount; op++ {
		m[ops[op].name] = op
	}
	return m
}()

// String returns the operator tag, e.g. "notIn".
func (o Op) String() string {
	if o < opCount {
		return ops[o].name
	}
	return ops[opInvalid].name
}

// Valid reports if the operator is known.
func (o Op) Valid() bool {
	return o > opInvalid && o < opCount
}

// ParseOp returns the operator with the given tag. A leading '$' is ignored,
// so both "gt" and "$gt" yield Gt.
func ParseOp(name string) (Op, bool) {
	if len(name) > 1 && name[0] == '$' {
		name = name[1:]
	}
	op, ok := opsByName[name]
	return op, ok
}

// logical reports if the operator combines conditions rather than comparing values.
func (o Op) logical() bool {
	return o == And || o == Or || o == Not
}
