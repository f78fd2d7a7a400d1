// Package bytecode assembles internal/hir's symbolic Program into a flat,
// executable Unit (spec.md §4.5 "Instruction set / encoding") and persists
// Units to a binary format internal/vm and internal/module load and run.
//
// Assembly is two-pass, mirroring the teacher's own two-pass assembler
// (internal/asm in smoynes-elsie): pass one walks every function in a
// Program to compute its absolute base offset in the final flat Code array;
// pass two copies each function's instructions into Code, rewriting symbolic
// jump labels and cross-function call/closure targets into resolved
// absolute offsets now that every function's position is known.
package bytecode

import (
	"fmt"

	"github.com/wisp-lang/wisp/internal/hir"
	"github.com/wisp-lang/wisp/internal/isa"
	"github.com/wisp-lang/wisp/internal/items"
	"github.com/wisp-lang/wisp/internal/value"
)

// FormatVersion is the Unit encoding's semantic version, checked against a
// reader's supported range via golang.org/x/mod/semver.
const FormatVersion = "v1.0.0"

// FuncMeta is one function's metadata in an assembled Unit: name, identity
// hash, and its absolute entry offset into Unit.Code.
type FuncMeta struct {
	Name      string
	Hash      items.Hash
	Offset    int32
	NumParams int32
	NumLocals int32
	EnvSize   int32
	IsAsync   bool
}

// Unit is one compiled, self-contained wisp module: flat code, its constant
// and name pools, type metadata, and an index of callable functions by hash.
type Unit struct {
	Version string

	Code  []isa.Instruction
	Spans []isa.Span

	Constants []value.Value
	Names     []string
	Types     []*items.Item
	Methods   map[items.Hash]map[string]items.Hash

	Funcs      []FuncMeta
	FuncByHash map[items.Hash]int32

	MainHash items.Hash
	HasMain  bool
}

// FuncMeta looks up a callable's metadata (offset and param/local/capture
// counts) by item hash. internal/vm resolves CALL/LOADITEM/MAKECLOSURE's
// offset operands through its own offset-keyed table instead.
func (u *Unit) FuncMeta(hash items.Hash) (FuncMeta, bool) {
	idx, ok := u.FuncByHash[hash]
	if !ok {
		return FuncMeta{}, false
	}

	return u.Funcs[idx], true
}

// FuncAt finds the function whose code range contains offset, used to report
// a runtime panic's originating function name.
func (u *Unit) FuncAt(offset int32) (FuncMeta, bool) {
	var best FuncMeta

	found := false

	for _, f := range u.Funcs {
		if f.Offset <= offset && (!found || f.Offset > best.Offset) {
			best = f
			found = true
		}
	}

	return best, found
}

// Assemble lays out every function in prog into one flat Unit, resolving
// intra-function labels and cross-function call/closure targets.
func Assemble(prog *hir.Program) (*Unit, error) {
	u := &Unit{
		Version:    FormatVersion,
		Constants:  prog.Constants,
		Names:      prog.Names,
		Types:      prog.Types,
		Methods:    prog.Methods,
		MainHash:   prog.MainHash,
		HasMain:    prog.HasMain,
		FuncByHash: make(map[items.Hash]int32, len(prog.Funcs)),
	}

	base := make([]int32, len(prog.Funcs))
	offsetByTarget := make(map[string]int32, len(prog.Funcs))

	var cum int32

	for i, f := range prog.Funcs {
		base[i] = cum
		offsetByTarget[f.Hash.String()] = cum
		cum += int32(len(f.Ops))
	}

	for i, f := range prog.Funcs {
		u.Funcs = append(u.Funcs, FuncMeta{
			Name: f.Name, Hash: f.Hash, Offset: base[i],
			NumParams: int32(f.NumParams), NumLocals: int32(f.NumLocals),
			EnvSize: int32(f.EnvSize), IsAsync: f.IsAsync,
		})
		u.FuncByHash[f.Hash] = int32(i)

		for _, op := range f.Ops {
			instr := isa.Instruction{Op: op.Op, A: op.A, B: op.B, C: op.C}

			if op.Target != "" {
				switch op.Op {
				case isa.JUMP, isa.JUMPIFTRUE, isa.JUMPIFFALSE:
					local, ok := f.Labels[op.Target]
					if !ok {
						return nil, fmt.Errorf("bytecode: %s: unresolved label %q", f.Name, op.Target)
					}

					instr.A = base[i] + int32(local)
				case isa.CALL, isa.LOADITEM, isa.MAKECLOSURE:
					off, ok := offsetByTarget[op.Target]
					if !ok {
						return nil, fmt.Errorf("bytecode: %s: unresolved function reference %q", f.Name, op.Target)
					}

					instr.A = off
				}
			}

			u.Code = append(u.Code, instr)
			u.Spans = append(u.Spans, isa.Span{File: op.Span.File, Start: op.Span.Start, End: op.Span.End})
		}
	}

	return u, nil
}
