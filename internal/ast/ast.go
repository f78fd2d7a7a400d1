// Package ast defines the syntax tree produced by internal/parser: items,
// statements, expressions, and patterns (spec.md §4.2).
package ast

import "github.com/wisp-lang/wisp/internal/diag"

// Node is implemented by every syntax tree node.
type Node interface {
	Span() diag.Span
}

// File is the root of one parsed source file: a sequence of top-level items.
type File struct {
	Path  string
	Items []Item
}

func (f *File) Span() diag.Span { return diag.Span{File: f.Path} }

// --- Items ---------------------------------------------------------------

// Item is a top-level declaration: fn, struct, enum, impl, mod, use, const.
type Item interface {
	Node
	itemNode()
}

type Visibility uint8

const (
	Priv Visibility = iota
	PubCrate
	Pub
)

// Attribute is a `#[...]` annotation attached to the following item or statement.
type Attribute struct {
	Name string
	Args []string
	Sp   diag.Span
}

type Param struct {
	Name string
	Sp   diag.Span
}

type FnItem struct {
	Vis     Visibility
	Attrs   []Attribute
	Name    string
	Params  []Param
	IsAsync bool
	Body    *BlockExpr
	Sp      diag.Span
}

func (f *FnItem) Span() diag.Span { return f.Sp }
func (*FnItem) itemNode()         {}

type FieldDecl struct {
	Name string
	Sp   diag.Span
}

type StructItem struct {
	Vis    Visibility
	Attrs  []Attribute
	Name   string
	Fields []FieldDecl
	Sp     diag.Span
}

func (s *StructItem) Span() diag.Span { return s.Sp }
func (*StructItem) itemNode()         {}

type VariantDecl struct {
	Name   string
	Fields []FieldDecl
	Sp     diag.Span
}

type EnumItem struct {
	Vis      Visibility
	Attrs    []Attribute
	Name     string
	Variants []VariantDecl
	Sp       diag.Span
}

func (e *EnumItem) Span() diag.Span { return e.Sp }
func (*EnumItem) itemNode()         {}

type ImplItem struct {
	TypeName string
	Methods  []*FnItem
	Sp       diag.Span
}

func (i *ImplItem) Span() diag.Span { return i.Sp }
func (*ImplItem) itemNode()         {}

type ModItem struct {
	Vis   Visibility
	Name  string
	Items []Item
	Sp    diag.Span
}

func (m *ModItem) Span() diag.Span { return m.Sp }
func (*ModItem) itemNode()         {}

type UseItem struct {
	Path  []string
	Alias string
	Sp    diag.Span
}

func (u *UseItem) Span() diag.Span { return u.Sp }
func (*UseItem) itemNode()         {}

type ConstItem struct {
	Vis   Visibility
	Name  string
	Value Expr
	Sp    diag.Span
}

func (c *ConstItem) Span() diag.Span { return c.Sp }
func (*ConstItem) itemNode()         {}

// LetItem is a top-level `let`, valid only in script mode (spec.md §6).
type LetItem struct {
	Pattern Pattern
	Mut     bool
	Value   Expr
	Sp      diag.Span
}

func (l *LetItem) Span() diag.Span { return l.Sp }
func (*LetItem) itemNode()         {}

// ExprItem is a top-level expression, valid only in script mode (spec.md §6):
// a file that is a sequence of statements rather than a library of
// declarations, as `wisp run` and the REPL both accept.
type ExprItem struct {
	X  Expr
	Sp diag.Span
}

func (e *ExprItem) Span() diag.Span { return e.Sp }
func (*ExprItem) itemNode()         {}

// --- Statements ------------------------------------------------------------

type Stmt interface {
	Node
	stmtNode()
}

// LetStmt binds a pattern to the value of an expression. Mut marks the binding
// as reassignable.
type LetStmt struct {
	Pattern Pattern
	Mut     bool
	Value   Expr
	Sp      diag.Span
}

func (l *LetStmt) Span() diag.Span { return l.Sp }
func (*LetStmt) stmtNode()         {}

// ExprStmt is an expression used as a statement. Semi records whether it was
// terminated with `;` — per spec.md §4.2, a block's final expression without a
// semicolon is the block's value, so this flag matters during lowering.
type ExprStmt struct {
	X    Expr
	Semi bool
	Sp   diag.Span
}

func (e *ExprStmt) Span() diag.Span { return e.Sp }
func (*ExprStmt) stmtNode()         {}

type ItemStmt struct {
	X  Item
	Sp diag.Span
}

func (i *ItemStmt) Span() diag.Span { return i.Sp }
func (*ItemStmt) stmtNode()         {}

// --- Expressions -------------------------------------------------------------

type Expr interface {
	Node
	exprNode()
}

// Base carries the source span shared by every expression and pattern node.
type Base struct{ Sp diag.Span }

func (b Base) Span() diag.Span { return b.Sp }

// NewBase is a convenience constructor so parser code can write
// ast.NewBase(sp) instead of the more verbose ast.Base{Sp: sp}.
func NewBase(sp diag.Span) Base { return Base{Sp: sp} }

type Ident struct {
	Base
	Name string
}

func (*Ident) exprNode() {}

type IntLit struct {
	Base
	Value int64
}

func (*IntLit) exprNode() {}

type FloatLit struct {
	Base
	Value float64
}

func (*FloatLit) exprNode() {}

type BoolLit struct {
	Base
	Value bool
}

func (*BoolLit) exprNode() {}

type CharLit struct {
	Base
	Value rune
}

func (*CharLit) exprNode() {}

type ByteLit struct {
	Base
	Value byte
}

func (*ByteLit) exprNode() {}

type StringLit struct {
	Base
	Value string
}

func (*StringLit) exprNode() {}

type ByteStringLit struct {
	Base
	Value []byte
}

func (*ByteStringLit) exprNode() {}

type UnitLit struct{ Base }

func (*UnitLit) exprNode() {}

type TupleExpr struct {
	Base
	Elems []Expr
}

func (*TupleExpr) exprNode() {}

type VectorExpr struct {
	Base
	Elems []Expr
}

func (*VectorExpr) exprNode() {}

type ObjectField struct {
	Name  string
	Value Expr
}

type ObjectExpr struct {
	Base
	Fields []ObjectField
}

func (*ObjectExpr) exprNode() {}

type StructExpr struct {
	Base
	TypeName string
	Fields   []ObjectField
}

func (*StructExpr) exprNode() {}

type RangeExpr struct {
	Base
	Start, End Expr // either may be nil for open ranges
	Inclusive  bool
}

func (*RangeExpr) exprNode() {}

// BinOp is the operator spelling, e.g. "+", "==", "&&".
type BinOp string

type BinaryExpr struct {
	Base
	Op          BinOp
	Left, Right Expr
}

func (*BinaryExpr) exprNode() {}

type UnaryOp string

type UnaryExpr struct {
	Base
	Op BinOp
	X  Expr
}

func (*UnaryExpr) exprNode() {}

type AssignExpr struct {
	Base
	Op     BinOp // "=" or a compound-assignment spelling, e.g. "+="
	Target Expr  // place expression: Ident, FieldExpr, or IndexExpr
	Value  Expr
}

func (*AssignExpr) exprNode() {}

type CallExpr struct {
	Base
	Callee Expr
	Args   []Expr
}

func (*CallExpr) exprNode() {}

type MethodCallExpr struct {
	Base
	Receiver Expr
	Method   string
	Args     []Expr
}

func (*MethodCallExpr) exprNode() {}

type FieldExpr struct {
	Base
	X     Expr
	Field string
}

func (*FieldExpr) exprNode() {}

type IndexExpr struct {
	Base
	X     Expr
	Index Expr
}

func (*IndexExpr) exprNode() {}

// TryExpr is the postfix `?` operator (spec.md §4.2, §4.4).
type TryExpr struct {
	Base
	X Expr
}

func (*TryExpr) exprNode() {}

type BlockExpr struct {
	Base
	Stmts []Stmt
}

func (*BlockExpr) exprNode() {}

type IfExpr struct {
	Base
	Cond       Expr
	Then       *BlockExpr
	Else       Expr // *BlockExpr or *IfExpr, or nil
}

func (*IfExpr) exprNode() {}

// WhileExpr evaluates Body repeatedly while Cond is truthy. Label is "" if
// unlabelled.
type WhileExpr struct {
	Base
	Label string
	Cond  Expr
	Body  *BlockExpr
}

func (*WhileExpr) exprNode() {}

// LoopExpr is an unconditional loop; `break 'L value` exits with a value
// (spec.md §4.2, §4.4).
type LoopExpr struct {
	Base
	Label string
	Body  *BlockExpr
}

func (*LoopExpr) exprNode() {}

// ForExpr desugars per spec.md §4.4 into iterator protocol calls during lowering;
// the parser keeps it structured.
type ForExpr struct {
	Base
	Label   string
	Pattern Pattern
	Iter    Expr
	Body    *BlockExpr
}

func (*ForExpr) exprNode() {}

type MatchArm struct {
	Pattern Pattern
	Guard   Expr // nil if no `if` guard
	Body    Expr
}

type MatchExpr struct {
	Base
	Scrutinee Expr
	Arms      []MatchArm
}

func (*MatchExpr) exprNode() {}

// BreakExpr exits a loop; Label is "" to break the innermost loop. Value is nil
// for a valueless break.
type BreakExpr struct {
	Base
	Label string
	Value Expr
}

func (*BreakExpr) exprNode() {}

type ContinueExpr struct {
	Base
	Label string
}

func (*ContinueExpr) exprNode() {}

type ReturnExpr struct {
	Base
	Value Expr // nil for bare `return`
}

func (*ReturnExpr) exprNode() {}

type YieldExpr struct {
	Base
	Value Expr
}

func (*YieldExpr) exprNode() {}

type AwaitExpr struct {
	Base
	X Expr
}

func (*AwaitExpr) exprNode() {}

type ClosureExpr struct {
	Base
	Params  []Param
	IsAsync bool
	Body    Expr
}

func (*ClosureExpr) exprNode() {}
