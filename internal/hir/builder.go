package hir

import (
	"strconv"

	"github.com/wisp-lang/wisp/internal/isa"
)

// builder accumulates one function's Ops, assigning label positions as they
// are defined and leaving jump targets symbolic for the assembler to resolve.
type builder struct {
	ops    []Op
	labels map[string]int
	next   int
}

func newBuilder() *builder {
	return &builder{labels: map[string]int{}}
}

func (b *builder) freshLabel(prefix string) string {
	b.next++
	return prefix + "$" + strconv.Itoa(b.next)
}

func (b *builder) defineLabel(name string) {
	b.labels[name] = len(b.ops)
}

func (b *builder) emit(op Op) int {
	b.ops = append(b.ops, op)
	return len(b.ops) - 1
}

func (b *builder) push(opc isa.Opcode, a int32) int {
	return b.emit(Op{Op: opc, A: a})
}

func (b *builder) push0(opc isa.Opcode) int {
	return b.emit(Op{Op: opc})
}

func (b *builder) push2(opc isa.Opcode, a, c int32) int {
	return b.emit(Op{Op: opc, A: a, B: c})
}

func (b *builder) push3(opc isa.Opcode, a, c, d int32) int {
	return b.emit(Op{Op: opc, A: a, B: c, C: d})
}

func (b *builder) jump(opc isa.Opcode, target string) int {
	return b.emit(Op{Op: opc, Target: target})
}

func (b *builder) finish(name string, params, locals, env int, async bool) *Func {
	return &Func{
		Name: name, NumParams: params, NumLocals: locals, EnvSize: env, IsAsync: async,
		Ops: b.ops, Labels: b.labels,
	}
}
