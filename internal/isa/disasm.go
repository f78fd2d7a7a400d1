package isa

import (
	"fmt"
	"io"
)

// Program is a flat instruction stream paired with a per-instruction source span
// side table, as spec.md §4.5 requires ("Each instruction records its source span
// in a side table for diagnostics and backtraces").
type Program struct {
	Code  []Instruction
	Spans []Span // len(Spans) == len(Code)
}

// Span locates an instruction's origin in source text; kept independent of
// internal/diag.Span to avoid a dependency from the lowest compiler layer
// upward, and converted at the diagnostics boundary.
type Span struct {
	File       string
	Start, End int
}

// Disassemble renders a human-readable listing: offset, mnemonic, operands, and
// source span, mirroring the teacher's instruction String() methods and the
// `emit_instructions` compiler option (spec.md §6).
func Disassemble(w io.Writer, name string, p Program) error {
	if _, err := fmt.Fprintf(w, "; %s\n", name); err != nil {
		return err
	}

	for offset, in := range p.Code {
		arity := Arities[in.Op]

		operands := ""

		switch arity {
		case Arity1:
			operands = fmt.Sprintf("%d", in.A)
		case Arity2:
			operands = fmt.Sprintf("%d, %d", in.A, in.B)
		case Arity3:
			operands = fmt.Sprintf("%d, %d, %d", in.A, in.B, in.C)
		}

		span := ""
		if offset < len(p.Spans) {
			span = fmt.Sprintf("%s:%d-%d", p.Spans[offset].File, p.Spans[offset].Start, p.Spans[offset].End)
		}

		if _, err := fmt.Fprintf(w, "%6d  %-12s %-16s ; %s\n", offset, in.Op, operands, span); err != nil {
			return err
		}
	}

	return nil
}
