package ast

// Pattern is used in `let`, `for`, and `match` arms.
type Pattern interface {
	Node
	patternNode()
}

// WildcardPattern matches anything and binds nothing: `_`.
type WildcardPattern struct{ Base }

func (*WildcardPattern) patternNode() {}

// BindPattern binds the matched value to Name, e.g. `x` or `mut x`.
type BindPattern struct {
	Base
	Name string
	Mut  bool
}

func (*BindPattern) patternNode() {}

// LiteralPattern matches an exact literal value.
type LiteralPattern struct {
	Base
	Value Expr // one of the *Lit expression nodes
}

func (*LiteralPattern) patternNode() {}

// TuplePattern destructures a tuple positionally.
type TuplePattern struct {
	Base
	Elems []Pattern
}

func (*TuplePattern) patternNode() {}

// VectorPattern destructures a vector by position, with an optional `..rest` tail
// captured as Rest (empty string if there is no rest binding).
type VectorPattern struct {
	Base
	Elems []Pattern
	Rest  string
}

func (*VectorPattern) patternNode() {}

type FieldPattern struct {
	Name    string
	Pattern Pattern
}

// StructPattern destructures a struct or object by field name.
type StructPattern struct {
	Base
	TypeName string // "" when destructuring an Object rather than a named struct
	Fields   []FieldPattern
}

func (*StructPattern) patternNode() {}

// VariantPattern matches an enum variant (including Result::Ok/Err,
// Option::Some/None) and destructures its payload positionally.
type VariantPattern struct {
	Base
	TypeName string
	Variant  string
	Payload  []Pattern
}

func (*VariantPattern) patternNode() {}

// OrPattern matches if any alternative matches: `A | B`.
type OrPattern struct {
	Base
	Alts []Pattern
}

func (*OrPattern) patternNode() {}
