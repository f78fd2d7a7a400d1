// Package isa defines the wisp bytecode instruction set: opcodes, the in-memory
// operand layout, and a disassembler (spec.md §4.5 "Instruction set / encoding").
package isa

import "fmt"

// Opcode identifies the operation an Instruction performs. Opcodes are grouped by
// the categories spec.md §4.5 lists: stack manipulation, arithmetic/comparison,
// control flow, data construction, access, iteration, closure, and error-flow.
type Opcode uint16

//go:generate go run golang.org/x/tools/cmd/stringer -type Opcode -output opcode_string.go

const (
	// Stack manipulation.
	PUSH Opcode = iota
	POP
	DUP
	COPY // COPY A pushes a copy of the value A slots below the current top (A=0 behaves like DUP)
	SWAP

	// Arithmetic and comparison, dispatched generically through the value
	// protocol table; the VM does not special-case primitive types in the
	// opcode space the way the encoding for a register machine would.
	ADD
	SUB
	MUL
	DIV
	REM
	NEG
	EQ
	NEQ
	CMP
	NOT

	// Control flow.
	JUMP
	JUMPIFTRUE
	JUMPIFFALSE
	CALL
	CALLNATIVE
	RETURN
	YIELD
	AWAIT

	// Data construction.
	BUILDTUPLE
	BUILDVECTOR
	BUILDOBJECT
	BUILDSTRUCT
	BUILDVARIANT
	BUILDRANGE

	// Access.
	LOADLOCAL
	STORELOCAL
	LOADFIELD
	STOREFIELD
	LOADINDEX
	STOREINDEX
	LOADCONST
	LOADITEM

	// Iteration.
	ITERFROM
	ITERNEXT

	// Closures.
	CAPTURE
	MAKECLOSURE

	// Error flow.
	PROPAGATE
	PANIC
)

// Instruction is the in-memory (interpreter-facing) representation of one
// bytecode instruction. Operands are stored widened to a machine word here, and
// the VM's hot loop works against this flat, fixed-stride representation for
// simple, branch-predictable decoding. The persisted/serialized form
// (internal/bytecode) is fixed-stride too: it writes every operand as a
// four-byte big-endian word and does not pack small operands into fewer bytes.
type Instruction struct {
	Op   Opcode
	A, B, C int32
}

func (in Instruction) String() string {
	return fmt.Sprintf("%s %d, %d, %d", in.Op, in.A, in.B, in.C)
}

// Operand layout, by opcode — consulted by the disassembler to decide how many
// operands of an instruction it prints.
type Arity uint8

const (
	Arity0 Arity = iota
	Arity1
	Arity2
	Arity3
)

// Arities maps each opcode to the number of meaningful operand fields it uses.
var Arities = map[Opcode]Arity{
	PUSH: Arity1, POP: Arity0, DUP: Arity0, COPY: Arity1, SWAP: Arity0,
	ADD: Arity0, SUB: Arity0, MUL: Arity0, DIV: Arity0, REM: Arity0, NEG: Arity0,
	EQ: Arity0, NEQ: Arity0, CMP: Arity0, NOT: Arity0,
	JUMP: Arity1, JUMPIFTRUE: Arity1, JUMPIFFALSE: Arity1,
	CALL: Arity2, CALLNATIVE: Arity2, RETURN: Arity0, YIELD: Arity0, AWAIT: Arity0,
	BUILDTUPLE: Arity1, BUILDVECTOR: Arity1, BUILDOBJECT: Arity1,
	BUILDSTRUCT: Arity2, BUILDVARIANT: Arity3, BUILDRANGE: Arity1,
	LOADLOCAL: Arity1, STORELOCAL: Arity1, LOADFIELD: Arity1, STOREFIELD: Arity1,
	LOADINDEX: Arity0, STOREINDEX: Arity0, LOADCONST: Arity1, LOADITEM: Arity1,
	ITERFROM: Arity0, ITERNEXT: Arity0,
	CAPTURE: Arity1, MAKECLOSURE: Arity2,
	PROPAGATE: Arity0, PANIC: Arity0,
}
