package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisp-lang/wisp/internal/ast"
	"github.com/wisp-lang/wisp/internal/diag"
	"github.com/wisp-lang/wisp/internal/parser"
)

func parse(t *testing.T, src string) (*ast.File, *diag.Bag) {
	t.Helper()

	bag := &diag.Bag{}
	file := parser.Parse("test.wisp", src, bag)

	return file, bag
}

func TestParseFnItem(t *testing.T) {
	file, bag := parse(t, `
fn add(a, b) {
    a + b
}
`)

	require.False(t, bag.HasErrors(), bag.All())
	require.Len(t, file.Items, 1)

	fn, ok := file.Items[0].(*ast.FnItem)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	assert.Len(t, fn.Params, 2)
	require.Len(t, fn.Body.Stmts, 1)

	exprStmt, ok := fn.Body.Stmts[0].(*ast.ExprStmt)
	require.True(t, ok)
	assert.False(t, exprStmt.Semi)

	bin, ok := exprStmt.X.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.BinOp("+"), bin.Op)
}

func TestParseStructAndImpl(t *testing.T) {
	file, bag := parse(t, `
pub struct Point {
    x,
    y,
}

impl Point {
    fn len(self) {
        self.x * self.x + self.y * self.y
    }
}
`)

	require.False(t, bag.HasErrors(), bag.All())
	require.Len(t, file.Items, 2)

	st, ok := file.Items[0].(*ast.StructItem)
	require.True(t, ok)
	assert.Equal(t, "Point", st.Name)
	assert.Equal(t, ast.Pub, st.Vis)
	assert.Len(t, st.Fields, 2)

	impl, ok := file.Items[1].(*ast.ImplItem)
	require.True(t, ok)
	assert.Equal(t, "Point", impl.TypeName)
	require.Len(t, impl.Methods, 1)
	assert.Equal(t, "len", impl.Methods[0].Name)
}

func TestParseEnum(t *testing.T) {
	file, bag := parse(t, `
enum Shape {
    Circle(radius),
    Square(side),
    Point,
}
`)

	require.False(t, bag.HasErrors(), bag.All())

	en, ok := file.Items[0].(*ast.EnumItem)
	require.True(t, ok)
	require.Len(t, en.Variants, 3)
	assert.Equal(t, "Circle", en.Variants[0].Name)
	assert.Len(t, en.Variants[0].Fields, 1)
	assert.Empty(t, en.Variants[2].Fields)
}

func TestBinaryPrecedence(t *testing.T) {
	file, bag := parse(t, `fn f() { 1 + 2 * 3 }`)
	require.False(t, bag.HasErrors(), bag.All())

	fn := file.Items[0].(*ast.FnItem)
	stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	top, ok := stmt.X.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.BinOp("+"), top.Op)

	// "*" binds tighter, so it nests on the right of "+".
	_, ok = top.Left.(*ast.IntLit)
	assert.True(t, ok)

	right, ok := top.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.BinOp("*"), right.Op)
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	file, bag := parse(t, `fn f() { a = b = 1 }`)
	require.False(t, bag.HasErrors(), bag.All())

	fn := file.Items[0].(*ast.FnItem)
	stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	outer, ok := stmt.X.(*ast.AssignExpr)
	require.True(t, ok)

	_, ok = outer.Value.(*ast.AssignExpr)
	assert.True(t, ok)
}

func TestRangeExpr(t *testing.T) {
	file, bag := parse(t, `fn f() { 0..10 }`)
	require.False(t, bag.HasErrors(), bag.All())

	fn := file.Items[0].(*ast.FnItem)
	stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	rng, ok := stmt.X.(*ast.RangeExpr)
	require.True(t, ok)
	assert.False(t, rng.Inclusive)

	file2, bag2 := parse(t, `fn f() { 0..=10 }`)
	require.False(t, bag2.HasErrors(), bag2.All())

	fn2 := file2.Items[0].(*ast.FnItem)
	stmt2 := fn2.Body.Stmts[0].(*ast.ExprStmt)
	rng2 := stmt2.X.(*ast.RangeExpr)
	assert.True(t, rng2.Inclusive)
}

func TestIfElseChain(t *testing.T) {
	file, bag := parse(t, `
fn classify(n) {
    if n < 0 {
        "negative"
    } else if n == 0 {
        "zero"
    } else {
        "positive"
    }
}
`)

	require.False(t, bag.HasErrors(), bag.All())

	fn := file.Items[0].(*ast.FnItem)
	stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	top, ok := stmt.X.(*ast.IfExpr)
	require.True(t, ok)

	elseIf, ok := top.Else.(*ast.IfExpr)
	require.True(t, ok)

	_, ok = elseIf.Else.(*ast.BlockExpr)
	assert.True(t, ok)
}

func TestForLoopWithLabel(t *testing.T) {
	file, bag := parse(t, `
fn f() {
    'outer: for x in 0..10 {
        break 'outer x;
    }
}
`)

	require.False(t, bag.HasErrors(), bag.All())

	fn := file.Items[0].(*ast.FnItem)
	stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	loop, ok := stmt.X.(*ast.ForExpr)
	require.True(t, ok)
	assert.Equal(t, "'outer", loop.Label)

	brk, ok := loop.Body.Stmts[0].(*ast.ExprStmt)
	require.True(t, ok)

	b, ok := brk.X.(*ast.BreakExpr)
	require.True(t, ok)
	assert.Equal(t, "'outer", b.Label)
}

func TestMatchExprWithGuardAndVariant(t *testing.T) {
	file, bag := parse(t, `
fn f(x) {
    match x {
        Option::Some(n) if n > 0 => n,
        Option::Some(n) => 0 - n,
        Option::None => 0,
    }
}
`)

	require.False(t, bag.HasErrors(), bag.All())

	fn := file.Items[0].(*ast.FnItem)
	stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	m, ok := stmt.X.(*ast.MatchExpr)
	require.True(t, ok)
	require.Len(t, m.Arms, 3)

	vp, ok := m.Arms[0].Pattern.(*ast.VariantPattern)
	require.True(t, ok)
	assert.Equal(t, "Option", vp.TypeName)
	assert.Equal(t, "Some", vp.Variant)
	assert.NotNil(t, m.Arms[0].Guard)
	assert.Nil(t, m.Arms[2].Guard)
}

func TestStructLiteralAndFieldAccess(t *testing.T) {
	file, bag := parse(t, `
fn f() {
    let p = Point { x: 1, y: 2 };
    p.x
}
`)

	require.False(t, bag.HasErrors(), bag.All())

	fn := file.Items[0].(*ast.FnItem)
	let := fn.Body.Stmts[0].(*ast.LetStmt)

	lit, ok := let.Value.(*ast.StructExpr)
	require.True(t, ok)
	assert.Equal(t, "Point", lit.TypeName)
	require.Len(t, lit.Fields, 2)

	tail := fn.Body.Stmts[1].(*ast.ExprStmt)
	field, ok := tail.X.(*ast.FieldExpr)
	require.True(t, ok)
	assert.Equal(t, "x", field.Field)
}

func TestClosureExpr(t *testing.T) {
	file, bag := parse(t, `fn f() { let add = |a, b| a + b; add(1, 2) }`)
	require.False(t, bag.HasErrors(), bag.All())

	fn := file.Items[0].(*ast.FnItem)
	let := fn.Body.Stmts[0].(*ast.LetStmt)
	cl, ok := let.Value.(*ast.ClosureExpr)
	require.True(t, ok)
	assert.Len(t, cl.Params, 2)
}

func TestTryOperatorAndAwait(t *testing.T) {
	file, bag := parse(t, `
async fn f() {
    let x = await g()?;
}
`)

	require.False(t, bag.HasErrors(), bag.All())

	fn := file.Items[0].(*ast.FnItem)
	assert.True(t, fn.IsAsync)

	let := fn.Body.Stmts[0].(*ast.LetStmt)
	await, ok := let.Value.(*ast.AwaitExpr)
	require.True(t, ok)

	_, ok = await.X.(*ast.TryExpr)
	assert.True(t, ok)
}

func TestVectorAndTuplePatterns(t *testing.T) {
	file, bag := parse(t, `
fn f() {
    let [first, second, ..rest] = xs;
    let (a, b) = pair;
}
`)

	require.False(t, bag.HasErrors(), bag.All())

	fn := file.Items[0].(*ast.FnItem)

	vp, ok := fn.Body.Stmts[0].(*ast.LetStmt).Pattern.(*ast.VectorPattern)
	require.True(t, ok)
	assert.Len(t, vp.Elems, 2)
	assert.Equal(t, "rest", vp.Rest)

	tp, ok := fn.Body.Stmts[1].(*ast.LetStmt).Pattern.(*ast.TuplePattern)
	require.True(t, ok)
	assert.Len(t, tp.Elems, 2)
}

func TestOrPattern(t *testing.T) {
	file, bag := parse(t, `
fn f(x) {
    match x {
        1 | 2 | 3 => "small",
        _ => "large",
    }
}
`)

	require.False(t, bag.HasErrors(), bag.All())

	fn := file.Items[0].(*ast.FnItem)
	m := fn.Body.Stmts[0].(*ast.ExprStmt).X.(*ast.MatchExpr)

	or, ok := m.Arms[0].Pattern.(*ast.OrPattern)
	require.True(t, ok)
	assert.Len(t, or.Alts, 3)
}

func TestSyntaxErrorRecoveryDoesNotCascade(t *testing.T) {
	_, bag := parse(t, `
fn broken( {
    1
}

fn ok() {
    2
}
`)

	require.True(t, bag.HasErrors())
	// Recovery should not spray one error per leftover token; a handful of
	// diagnostics around the malformed parameter list is expected, not
	// hundreds.
	assert.Less(t, bag.Len(), 10)
}

func TestUseAndConstItems(t *testing.T) {
	file, bag := parse(t, `
use std::collections::Vector as Vec;

const PI = 3;
`)

	require.False(t, bag.HasErrors(), bag.All())
	require.Len(t, file.Items, 2)

	use, ok := file.Items[0].(*ast.UseItem)
	require.True(t, ok)
	assert.Equal(t, []string{"std", "collections", "Vector"}, use.Path)
	assert.Equal(t, "Vec", use.Alias)

	c, ok := file.Items[1].(*ast.ConstItem)
	require.True(t, ok)
	assert.Equal(t, "PI", c.Name)
}
