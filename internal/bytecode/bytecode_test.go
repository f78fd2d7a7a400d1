package bytecode

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisp-lang/wisp/internal/diag"
	"github.com/wisp-lang/wisp/internal/hir"
	"github.com/wisp-lang/wisp/internal/isa"
	"github.com/wisp-lang/wisp/internal/items"
	"github.com/wisp-lang/wisp/internal/value"
)

// buildProgram constructs a tiny two-function program by hand: main calls
// add(1, 2) and returns the result, add sums its two locals. Exercises a
// cross-function CALL target, a label-resolved jump, and every constant-pool
// primitive kind Encode/Decode must round-trip.
func buildProgram() *hir.Program {
	addHash := items.HashPath(items.Path{"add"})
	mainHash := items.HashPath(items.Path{"$main"})

	addFunc := &hir.Func{
		Name: "add", Hash: addHash, NumParams: 2, NumLocals: 2,
		Labels: map[string]int{},
		Ops: []hir.Op{
			{Op: isa.LOADLOCAL, A: 0, Span: diag.Span{File: "main.wisp", Start: 0, End: 1}},
			{Op: isa.LOADLOCAL, A: 1, Span: diag.Span{File: "main.wisp", Start: 1, End: 2}},
			{Op: isa.ADD, Span: diag.Span{File: "main.wisp", Start: 2, End: 3}},
			{Op: isa.RETURN, Span: diag.Span{File: "main.wisp", Start: 3, End: 4}},
		},
	}

	mainFunc := &hir.Func{
		Name: "$main", Hash: mainHash, NumParams: 0, NumLocals: 0,
		Labels: map[string]int{"skip": 4},
		Ops: []hir.Op{
			{Op: isa.LOADCONST, A: 0, Span: diag.Span{File: "main.wisp", Start: 10, End: 11}},
			{Op: isa.LOADCONST, A: 1, Span: diag.Span{File: "main.wisp", Start: 11, End: 12}},
			{Op: isa.CALL, Target: addHash.String(), B: 2, Span: diag.Span{File: "main.wisp", Start: 12, End: 13}},
			{Op: isa.JUMP, Target: "skip", Span: diag.Span{File: "main.wisp", Start: 13, End: 14}},
			{Op: isa.RETURN, Span: diag.Span{File: "main.wisp", Start: 14, End: 15}},
		},
	}

	return &hir.Program{
		Funcs: []*hir.Func{addFunc, mainFunc},
		Constants: []value.Value{
			value.Int(1), value.Int(2), value.Unit, value.Bool(true),
			value.Float(1.5), value.Char('x'), value.Byte(7),
			value.String("hi"), value.Bytes([]byte{1, 2, 3}),
		},
		Names: []string{"$type", "$tag"},
		Types: []*items.Item{
			{Path: items.Path{"Point"}, Hash: items.HashPath(items.Path{"Point"}), Kind: items.KindStruct, Fields: []string{"x", "y"}},
		},
		Methods: map[items.Hash]map[string]items.Hash{
			items.HashPath(items.Path{"Point"}): {"len": addHash},
		},
		MainHash: mainHash,
		HasMain:  true,
	}
}

func TestAssembleResolvesTargets(t *testing.T) {
	u, err := Assemble(buildProgram())
	require.NoError(t, err)

	// add occupies offsets 0-3, main starts at offset 4.
	assert.Equal(t, int32(0), u.Funcs[0].Offset)
	assert.Equal(t, int32(4), u.Funcs[1].Offset)

	callInstr := u.Code[6] // main's CALL, third op in main, offset 4+2
	assert.Equal(t, isa.CALL, callInstr.Op)
	assert.Equal(t, int32(0), callInstr.A) // add's base offset

	jumpInstr := u.Code[7]
	assert.Equal(t, isa.JUMP, jumpInstr.Op)
	assert.Equal(t, int32(8), jumpInstr.A) // main's local label 4 + base 4
}

func TestAssembleUnresolvedLabelErrors(t *testing.T) {
	prog := &hir.Program{
		Funcs: []*hir.Func{{
			Name: "f", Hash: items.HashPath(items.Path{"f"}), Labels: map[string]int{},
			Ops: []hir.Op{{Op: isa.JUMP, Target: "nowhere"}},
		}},
	}

	_, err := Assemble(prog)
	assert.ErrorContains(t, err, "unresolved label")
}

func TestAssembleUnresolvedCallErrors(t *testing.T) {
	prog := &hir.Program{
		Funcs: []*hir.Func{{
			Name: "f", Hash: items.HashPath(items.Path{"f"}), Labels: map[string]int{},
			Ops: []hir.Op{{Op: isa.CALL, Target: "ghost"}},
		}},
	}

	_, err := Assemble(prog)
	assert.ErrorContains(t, err, "unresolved function reference")
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	u, err := Assemble(buildProgram())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, u))

	got, err := Decode(&buf)
	require.NoError(t, err)

	assert.Equal(t, u.Version, got.Version)
	assert.Equal(t, u.Names, got.Names)
	assert.Equal(t, u.Constants, got.Constants)
	assert.Equal(t, u.Code, got.Code)
	assert.Equal(t, u.Spans, got.Spans)
	assert.Equal(t, u.Methods, got.Methods)
	assert.Equal(t, u.MainHash, got.MainHash)
	assert.Equal(t, u.HasMain, got.HasMain)
	require.Len(t, got.Funcs, len(u.Funcs))

	for i, f := range u.Funcs {
		assert.Equal(t, f, got.Funcs[i])
	}

	require.Len(t, got.Types, len(u.Types))
	assert.Equal(t, u.Types[0].Hash, got.Types[0].Hash)
	assert.Equal(t, u.Types[0].Path, got.Types[0].Path)
	assert.Equal(t, u.Types[0].Fields, got.Types[0].Fields)

	meta, ok := got.FuncMeta(u.Funcs[1].Hash)
	assert.True(t, ok)
	assert.Equal(t, u.Funcs[1], meta)
}

func TestCompatibleVersion(t *testing.T) {
	assert.True(t, CompatibleVersion("v1.0.0"))
	assert.True(t, CompatibleVersion("v1.2.0"))
	assert.False(t, CompatibleVersion("v2.0.0"))
	assert.False(t, CompatibleVersion("v0.9.0"))
	assert.False(t, CompatibleVersion("not-a-version"))
}
