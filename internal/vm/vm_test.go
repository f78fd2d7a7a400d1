package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisp-lang/wisp/internal/bytecode"
	"github.com/wisp-lang/wisp/internal/hir"
	"github.com/wisp-lang/wisp/internal/isa"
	"github.com/wisp-lang/wisp/internal/items"
	"github.com/wisp-lang/wisp/internal/value"
)

func assemble(t *testing.T, prog *hir.Program) *bytecode.Unit {
	t.Helper()

	u, err := bytecode.Assemble(prog)
	require.NoError(t, err)

	return u
}

// TestArithmeticAndCall runs main() = add(2, 3) * 2, exercising a resolved
// cross-function CALL and the ADD/MUL primitive fallbacks.
func TestArithmeticAndCall(t *testing.T) {
	addHash := items.HashPath(items.Path{"add"})
	mainHash := items.HashPath(items.Path{"$main"})

	addFunc := &hir.Func{
		Name: "add", Hash: addHash, NumParams: 2, NumLocals: 2,
		Labels: map[string]int{},
		Ops: []hir.Op{
			{Op: isa.LOADLOCAL, A: 0},
			{Op: isa.LOADLOCAL, A: 1},
			{Op: isa.ADD},
			{Op: isa.RETURN},
		},
	}

	mainFunc := &hir.Func{
		Name: "$main", Hash: mainHash,
		Labels: map[string]int{},
		Ops: []hir.Op{
			{Op: isa.LOADCONST, A: 0},
			{Op: isa.LOADCONST, A: 1},
			{Op: isa.CALL, Target: addHash.String(), B: 2},
			{Op: isa.LOADCONST, A: 2},
			{Op: isa.MUL},
			{Op: isa.RETURN},
		},
	}

	prog := &hir.Program{
		Funcs:     []*hir.Func{addFunc, mainFunc},
		Constants: []value.Value{value.Int(2), value.Int(3), value.Int(2)},
		MainHash:  mainHash,
		HasMain:   true,
	}

	m := New(assemble(t, prog))

	result, err := m.RunMain()
	require.NoError(t, err)
	assert.Equal(t, int64(10), result.Int())
}

// TestClosureCapture builds a closure over a local, then calls it dynamically
// through CALLNATIVE's -1 "unnamed callee" form, exercising CAPTURE,
// MAKECLOSURE, and the closure branch of Machine.callValue.
func TestClosureCapture(t *testing.T) {
	incHash := items.HashPath(items.Path{"$closure", "inc"})
	mainHash := items.HashPath(items.Path{"$main"})

	incFunc := &hir.Func{
		Name: "inc", Hash: incHash, NumParams: 1, NumLocals: 1, EnvSize: 1,
		Labels: map[string]int{},
		Ops: []hir.Op{
			{Op: isa.LOADLOCAL, A: -1}, // captured cell 0
			{Op: isa.LOADLOCAL, A: 0},  // param 0
			{Op: isa.ADD},
			{Op: isa.RETURN},
		},
	}

	mainFunc := &hir.Func{
		Name: "$main", Hash: mainHash, NumLocals: 1,
		Labels: map[string]int{},
		Ops: []hir.Op{
			{Op: isa.LOADCONST, A: 0},
			{Op: isa.STORELOCAL, A: 0},
			{Op: isa.CAPTURE, A: 0},
			{Op: isa.MAKECLOSURE, Target: incHash.String(), B: 1},
			{Op: isa.LOADCONST, A: 1},
			{Op: isa.CALLNATIVE, A: -1, B: 1},
			{Op: isa.RETURN},
		},
	}

	prog := &hir.Program{
		Funcs:     []*hir.Func{incFunc, mainFunc},
		Constants: []value.Value{value.Int(10), value.Int(5)},
		MainHash:  mainHash,
		HasMain:   true,
	}

	m := New(assemble(t, prog))

	result, err := m.RunMain()
	require.NoError(t, err)
	assert.Equal(t, int64(15), result.Int())
}

// TestVariantFieldAccess builds Some(42) and reads its discriminant back
// through the synthetic "$tag" field the pattern-match lowerer relies on.
func TestVariantFieldAccess(t *testing.T) {
	mainHash := items.HashPath(items.Path{"$main"})

	mainFunc := &hir.Func{
		Name: "$main", Hash: mainHash, NumLocals: 1,
		Labels: map[string]int{},
		Ops: []hir.Op{
			{Op: isa.LOADCONST, A: 0},
			{Op: isa.BUILDVARIANT, A: 0, B: int32(value.OptionSome), C: 1},
			{Op: isa.STORELOCAL, A: 0},
			{Op: isa.LOADLOCAL, A: 0},
			{Op: isa.LOADFIELD, A: 0}, // "$tag"
			{Op: isa.RETURN},
		},
	}

	prog := &hir.Program{
		Funcs:     []*hir.Func{mainFunc},
		Constants: []value.Value{value.Int(42)},
		Names:     []string{"$tag"},
		Types: []*items.Item{{
			Path: items.Path{"std", "Option"}, Hash: value.OptionTypeHash, Kind: items.KindEnum,
			Variants: map[string]uint32{"Some": value.OptionSome, "None": value.OptionNone},
		}},
		MainHash: mainHash,
		HasMain:  true,
	}

	m := New(assemble(t, prog))

	result, err := m.RunMain()
	require.NoError(t, err)
	assert.Equal(t, int64(value.OptionSome), result.Int())
}

// TestGeneratorRoundTrip calls a function containing two yields and drives it
// to exhaustion, checking the Some/Some/None sequence Generator.Resume
// produces and that a fourth Resume after exhaustion stays None.
func TestGeneratorRoundTrip(t *testing.T) {
	genHash := items.HashPath(items.Path{"gen"})

	genFunc := &hir.Func{
		Name: "gen", Hash: genHash,
		Labels: map[string]int{},
		Ops: []hir.Op{
			{Op: isa.LOADCONST, A: 0},
			{Op: isa.YIELD},
			{Op: isa.LOADCONST, A: 1},
			{Op: isa.YIELD},
			{Op: isa.LOADCONST, A: 2},
			{Op: isa.RETURN},
		},
	}

	prog := &hir.Program{
		Funcs:     []*hir.Func{genFunc},
		Constants: []value.Value{value.Int(1), value.Int(2), value.Int(3)},
	}

	m := New(assemble(t, prog))

	gv, err := m.Call(genHash, nil)
	require.NoError(t, err)
	require.Equal(t, value.KindGenerator, gv.Kind())

	gen := gv.Generator()

	first, err := gen.Resume(value.Unit)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Variant().Payload[0].Int())

	second, err := gen.Resume(value.Unit)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Variant().Payload[0].Int())

	third, err := gen.Resume(value.Unit)
	require.NoError(t, err)
	assert.True(t, value.IsErr(third))

	fourth, err := gen.Resume(value.Unit)
	require.NoError(t, err)
	assert.True(t, value.IsErr(fourth))
}

// TestBuiltinVectorMethod exercises CALLNATIVE's named-method form against
// the VM's built-in Vector fallback (no impl block registered).
func TestBuiltinVectorMethod(t *testing.T) {
	mainHash := items.HashPath(items.Path{"$main"})

	mainFunc := &hir.Func{
		Name: "$main", Hash: mainHash,
		Labels: map[string]int{},
		Ops: []hir.Op{
			{Op: isa.BUILDVECTOR, A: 0},
			{Op: isa.DUP},
			{Op: isa.LOADCONST, A: 0},
			{Op: isa.CALLNATIVE, A: 0, B: 2}, // v.push(7), leaves push's Unit result
			{Op: isa.POP},
			{Op: isa.CALLNATIVE, A: 1, B: 1}, // v.len()
			{Op: isa.RETURN},
		},
	}

	prog := &hir.Program{
		Funcs:     []*hir.Func{mainFunc},
		Constants: []value.Value{value.Int(7)},
		Names:     []string{"push", "len"},
		MainHash:  mainHash,
		HasMain:   true,
	}

	m := New(assemble(t, prog))

	result, err := m.RunMain()
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Int())
}

// TestDivisionByZeroIsRuntimeError checks that a primitive arithmetic failure
// surfaces as a *RuntimeError carrying the failing function's name.
func TestDivisionByZeroIsRuntimeError(t *testing.T) {
	mainHash := items.HashPath(items.Path{"$main"})

	mainFunc := &hir.Func{
		Name: "$main", Hash: mainHash,
		Labels: map[string]int{},
		Ops: []hir.Op{
			{Op: isa.LOADCONST, A: 0},
			{Op: isa.LOADCONST, A: 1},
			{Op: isa.DIV},
			{Op: isa.RETURN},
		},
	}

	prog := &hir.Program{
		Funcs:     []*hir.Func{mainFunc},
		Constants: []value.Value{value.Int(1), value.Int(0)},
		MainHash:  mainHash,
		HasMain:   true,
	}

	m := New(assemble(t, prog))

	_, err := m.RunMain()
	require.Error(t, err)

	var rerr *RuntimeError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "$main", rerr.Func)
}
