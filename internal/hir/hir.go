// Package hir lowers a resolved AST into the control-flow-aware intermediate
// form spec.md §4.4 describes: for loops desugar to iterator-protocol calls,
// match compiles to a chain of pattern tests ("decision forest"), the `?`
// operator expands to an early-return test, and compound assignment lowers to a
// plain assignment of a binary expression. Nodes carry no divergence flag; a
// syntactic check (diverges) recognizes return/break/continue, blocks holding
// one, and if/else whose both branches diverge, and is used only to warn on
// dead code.
//
// HIR keeps control flow symbolic: branches and loop exits reference named
// labels rather than numeric offsets. internal/bytecode resolves those labels
// to instruction offsets in a second pass once every function in a unit has
// been laid out, which is the "two-pass" half of the assembler spec.md §4.5
// calls for.
package hir

import (
	"github.com/wisp-lang/wisp/internal/diag"
	"github.com/wisp-lang/wisp/internal/isa"
	"github.com/wisp-lang/wisp/internal/items"
	"github.com/wisp-lang/wisp/internal/value"
)

// Op is one symbolic instruction: like isa.Instruction, but a jump/branch/loop
// opcode's target is a label name instead of a resolved offset.
type Op struct {
	Op     isa.Opcode
	A, B, C int32
	Target string
	Span   diag.Span
}

// Func is one lowered function or closure body, labels and all.
type Func struct {
	Name      string
	Hash      items.Hash
	NumParams int
	NumLocals int
	EnvSize   int // number of captured cells a closure instance carries
	IsAsync   bool
	Ops       []Op
	Labels    map[string]int // label name -> index into Ops
}

// Program is every function lowered from one compilation, plus the constants
// and type metadata the assembler needs to build a bytecode.Unit.
type Program struct {
	Funcs     []*Func
	Constants []value.Value
	Names     []string // interned strings for field/method names, shared across functions
	Types     []*items.Item
	Methods   map[items.Hash]map[string]items.Hash // receiver type hash -> method name -> function hash
	MainHash  items.Hash                           // entry point for script-mode top-level statements
	HasMain   bool
}
