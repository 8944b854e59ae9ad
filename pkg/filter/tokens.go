package filter

type Token int

const (
	illegal Token = iota
	eol
	and
	or
	in
	equal
	gte
	greater
	lte
	less
	notEqual
	like
	notLike
	lbracket
	rbracket
	comma
	stringLit
	number
	identifier
)

var tokenNames = map[Token]string{
	illegal:    "illegal",
	eol:        "eol",
	and:        "and",
	or:         "or",
	in:         "in",
	equal:      "equal",
	gte:        "gte",
	greater:    "greater",
	lte:        "lte",
	less:       "less",
	notEqual:   "notEqual",
	like:       "like",
	notLike:    "notLike",
	lbracket:   "lbracket",
	rbracket:   "rbracket",
	comma:      "comma",
	stringLit:  "stringLit",
	number:     "number",
	identifier: "identifier",
}

func (t Token) String() string {
	return tokenNames[t]
}

// tokenOperators maps comparison tokens to rule operators.
var tokenOperators = map[Token]Operator{
	equal:    OpEqual,
	notEqual: OpNotEqual,
	gte:      OpGreaterEqual,
	greater:  OpGreater,
	lte:      OpLessEqual,
	less:     OpLess,
	like:     OpContains,
	notLike:  OpNotContains,
	in:       OpIn,
}

func (t Token) Operator() Operator {
	return tokenOperators[t]
}
