package hir

import (
	"github.com/wisp-lang/wisp/internal/ast"
	"github.com/wisp-lang/wisp/internal/diag"
	"github.com/wisp-lang/wisp/internal/isa"
	"github.com/wisp-lang/wisp/internal/items"
	"github.com/wisp-lang/wisp/internal/resolve"
	"github.com/wisp-lang/wisp/internal/value"
)

// funcLower lowers one function or closure body. It owns a local-slot counter
// that continues from where resolve left off, allocating synthetic temps
// (match scrutinees, loop sinks, for-loop iterators) resolve never sees.
type funcLower struct {
	l        *lowerer
	res      *resolve.FuncInfo
	b        *builder
	nextSlot int32
	loops    []loopFrame
}

type loopFrame struct {
	label    string
	sink     int32
	endLabel string
	contLabel string
}

func (fc *funcLower) newTemp() int32 {
	s := fc.nextSlot
	fc.nextSlot++

	return s
}

func (fc *funcLower) constVal(v value.Value) int32 {
	fc.l.prog.Constants = append(fc.l.prog.Constants, v)
	return int32(len(fc.l.prog.Constants) - 1)
}

func (fc *funcLower) constInt(n int64) int32    { return fc.constVal(value.Int(n)) }
func (fc *funcLower) constUnit() int32          { return fc.constVal(value.Unit) }
func (fc *funcLower) constBool(b bool) int32     { return fc.constVal(value.Bool(b)) }

func (fc *funcLower) name(n string) int32 {
	for i, existing := range fc.l.prog.Names {
		if existing == n {
			return int32(i)
		}
	}

	fc.l.prog.Names = append(fc.l.prog.Names, n)

	return int32(len(fc.l.prog.Names) - 1)
}

// lowerBlockTail lowers b, leaving its tail value (or Unit) on the stack.
func (fc *funcLower) lowerBlockTail(b *ast.BlockExpr) {
	diverged := false

	for i, stmt := range b.Stmts {
		if diverged {
			fc.l.bag.Warnf(stmt.Span(), diag.UnreachableCode, "unreachable code after a diverging expression")
		}

		isTail := i == len(b.Stmts)-1

		switch s := stmt.(type) {
		case *ast.LetStmt:
			fc.lowerExpr(s.Value)
			fc.storePattern(s.Pattern)

			if isTail {
				fc.b.push(isa.LOADCONST, fc.constUnit())
			}
		case *ast.ExprStmt:
			fc.lowerExpr(s.X)

			if !isTail || s.Semi {
				fc.b.push0(isa.POP)

				if isTail {
					fc.b.push(isa.LOADCONST, fc.constUnit())
				}
			}

			diverged = diverges(s.X)
		case *ast.ItemStmt:
			if isTail {
				fc.b.push(isa.LOADCONST, fc.constUnit())
			}
		}
	}

	if len(b.Stmts) == 0 {
		fc.b.push(isa.LOADCONST, fc.constUnit())
	}
}

// lowerBlockDiscard lowers b purely for effect, leaving nothing on the stack.
func (fc *funcLower) lowerBlockDiscard(b *ast.BlockExpr) {
	fc.lowerBlockTail(b)
	fc.b.push0(isa.POP)
}

// diverges is a conservative, syntactic check for whether evaluating e always
// transfers control away rather than producing a value — used only to flag
// unreachable code, never to change codegen (RETURN/BREAK/CONTINUE already
// short-circuit the instruction stream on their own).
func diverges(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.ReturnExpr, *ast.BreakExpr, *ast.ContinueExpr:
		return true
	case *ast.BlockExpr:
		for _, s := range n.Stmts {
			if es, ok := s.(*ast.ExprStmt); ok && diverges(es.X) {
				return true
			}
		}

		return false
	case *ast.IfExpr:
		return n.Else != nil && diverges(n.Then) && diverges(n.Else)
	}

	return false
}

func (fc *funcLower) lowerExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.Ident:
		fc.lowerIdent(n)
	case *ast.IntLit:
		fc.b.push(isa.LOADCONST, fc.constInt(n.Value))
	case *ast.FloatLit:
		fc.b.push(isa.LOADCONST, fc.constVal(value.Float(n.Value)))
	case *ast.BoolLit:
		fc.b.push(isa.LOADCONST, fc.constBool(n.Value))
	case *ast.CharLit:
		fc.b.push(isa.LOADCONST, fc.constVal(value.Char(n.Value)))
	case *ast.ByteLit:
		fc.b.push(isa.LOADCONST, fc.constVal(value.Byte(n.Value)))
	case *ast.StringLit:
		fc.b.push(isa.LOADCONST, fc.constVal(value.String(n.Value)))
	case *ast.ByteStringLit:
		fc.b.push(isa.LOADCONST, fc.constVal(value.Bytes(n.Value)))
	case *ast.UnitLit:
		fc.b.push(isa.LOADCONST, fc.constUnit())
	case *ast.TupleExpr:
		for _, el := range n.Elems {
			fc.lowerExpr(el)
		}

		fc.b.push(isa.BUILDTUPLE, int32(len(n.Elems)))
	case *ast.VectorExpr:
		for _, el := range n.Elems {
			fc.lowerExpr(el)
		}

		fc.b.push(isa.BUILDVECTOR, int32(len(n.Elems)))
	case *ast.ObjectExpr:
		for _, f := range n.Fields {
			fc.b.push(isa.LOADCONST, fc.constVal(value.String(f.Name)))
			fc.lowerExpr(f.Value)
		}

		fc.b.push(isa.BUILDOBJECT, int32(len(n.Fields)))
	case *ast.StructExpr:
		fc.lowerStructLit(n)
	case *ast.RangeExpr:
		fc.lowerRange(n)
	case *ast.BinaryExpr:
		fc.lowerBinary(n)
	case *ast.UnaryExpr:
		fc.lowerExpr(n.X)

		switch n.Op {
		case "-":
			fc.b.push0(isa.NEG)
		case "!":
			fc.b.push0(isa.NOT)
		}
	case *ast.AssignExpr:
		fc.lowerAssign(n)
	case *ast.CallExpr:
		fc.lowerCall(n)
	case *ast.MethodCallExpr:
		fc.lowerMethodCall(n)
	case *ast.FieldExpr:
		fc.lowerExpr(n.X)
		fc.b.push(isa.LOADFIELD, fc.name(n.Field))
	case *ast.IndexExpr:
		fc.lowerExpr(n.X)
		fc.lowerExpr(n.Index)
		fc.b.push0(isa.LOADINDEX)
	case *ast.TryExpr:
		fc.lowerExpr(n.X)
		fc.b.push0(isa.PROPAGATE)
	case *ast.BlockExpr:
		fc.lowerBlockTail(n)
	case *ast.IfExpr:
		fc.lowerIf(n)
	case *ast.WhileExpr:
		fc.lowerWhile(n)
	case *ast.LoopExpr:
		fc.lowerLoop(n)
	case *ast.ForExpr:
		fc.lowerFor(n)
	case *ast.MatchExpr:
		fc.lowerMatch(n)
	case *ast.BreakExpr:
		fc.lowerBreak(n)
	case *ast.ContinueExpr:
		fc.lowerContinue(n)
	case *ast.ReturnExpr:
		if n.Value != nil {
			fc.lowerExpr(n.Value)
		} else {
			fc.b.push(isa.LOADCONST, fc.constUnit())
		}

		fc.b.push0(isa.RETURN)
	case *ast.YieldExpr:
		if n.Value != nil {
			fc.lowerExpr(n.Value)
		} else {
			fc.b.push(isa.LOADCONST, fc.constUnit())
		}

		fc.b.push0(isa.YIELD)
	case *ast.AwaitExpr:
		fc.lowerExpr(n.X)
		fc.b.push0(isa.AWAIT)
	case *ast.ClosureExpr:
		fc.lowerClosure(n)
	default:
		fc.b.push(isa.LOADCONST, fc.constUnit())
	}
}

func (fc *funcLower) lowerIdent(id *ast.Ident) {
	b, ok := fc.l.res.Bindings[id]
	if !ok {
		if bv, ok := builtinVariants[id.Name]; ok {
			variants := map[string]uint32{"Some": value.OptionSome, "None": value.OptionNone}
			if bv.typeName == "Result" {
				variants = map[string]uint32{"Ok": value.ResultOk, "Err": value.ResultErr}
			}

			idx := fc.l.builtinTypeIndex(bv.typeHash, bv.typeName, variants)
			fc.b.push3(isa.BUILDVARIANT, idx, int32(bv.discr), 0)

			return
		}

		fc.b.push(isa.LOADCONST, fc.constUnit())
		return
	}

	switch b.Kind {
	case resolve.BindLocal:
		fc.b.push(isa.LOADLOCAL, int32(b.Slot))
	case resolve.BindCapture:
		fc.b.push(isa.LOADLOCAL, -(int32(b.Slot) + 1))
	case resolve.BindItem:
		idx := fc.l.funcIndexTarget(b.Hash)
		fc.b.emit(Op{Op: isa.LOADITEM, Target: idx})
	}
}

func (fc *funcLower) lowerStructLit(n *ast.StructExpr) {
	hash, _ := fc.l.res.TypeHash(n.TypeName)

	it, _ := fc.l.res.Items.ByHash(hash)

	order := n.Fields
	if it != nil {
		ordered := make([]ast.ObjectField, 0, len(it.Fields))

		for _, fname := range it.Fields {
			for _, f := range n.Fields {
				if f.Name == fname {
					ordered = append(ordered, f)
				}
			}
		}

		if len(ordered) == len(n.Fields) {
			order = ordered
		}
	}

	for _, f := range order {
		fc.lowerExpr(f.Value)
	}

	fc.b.push2(isa.BUILDSTRUCT, fc.l.typeIndex(hash), int32(len(order)))
}

func (fc *funcLower) lowerRange(n *ast.RangeExpr) {
	if n.Start != nil {
		fc.lowerExpr(n.Start)
	} else {
		fc.b.push(isa.LOADCONST, fc.constInt(0))
	}

	if n.End != nil {
		fc.lowerExpr(n.End)
	} else {
		fc.b.push(isa.LOADCONST, fc.constUnit())
	}

	flags := int32(0)
	if n.Inclusive {
		flags |= 1
	}

	fc.b.push(isa.BUILDRANGE, flags)
}

func (fc *funcLower) lowerBinary(n *ast.BinaryExpr) {
	switch n.Op {
	case "&&":
		fc.lowerExpr(n.Left)

		elseL, endL := fc.b.freshLabel("and_else"), fc.b.freshLabel("and_end")
		fc.b.push0(isa.DUP)
		fc.b.jump(isa.JUMPIFFALSE, elseL)
		fc.b.push0(isa.POP)
		fc.lowerExpr(n.Right)
		fc.b.jump(isa.JUMP, endL)
		fc.b.defineLabel(elseL)
		fc.b.defineLabel(endL)

		return
	case "||":
		fc.lowerExpr(n.Left)

		elseL, endL := fc.b.freshLabel("or_else"), fc.b.freshLabel("or_end")
		fc.b.push0(isa.DUP)
		fc.b.jump(isa.JUMPIFTRUE, endL)
		fc.b.push0(isa.POP)
		fc.lowerExpr(n.Right)
		fc.b.defineLabel(elseL)
		fc.b.defineLabel(endL)

		return
	}

	if folded, ok := foldConstBinary(n); ok {
		fc.b.push(isa.LOADCONST, fc.constVal(folded))
		return
	}

	fc.lowerExpr(n.Left)
	fc.lowerExpr(n.Right)

	switch n.Op {
	case "+":
		fc.b.push0(isa.ADD)
	case "-":
		fc.b.push0(isa.SUB)
	case "*":
		fc.b.push0(isa.MUL)
	case "/":
		fc.b.push0(isa.DIV)
	case "%":
		fc.b.push0(isa.REM)
	case "==":
		fc.b.push0(isa.EQ)
	case "!=":
		fc.b.push0(isa.NEQ)
	case "<":
		fc.b.push0(isa.CMP)
		fc.b.push(isa.LOADCONST, fc.constInt(-1))
		fc.b.push0(isa.EQ)
	case "<=":
		fc.b.push0(isa.CMP)
		fc.b.push(isa.LOADCONST, fc.constInt(1))
		fc.b.push0(isa.NEQ)
	case ">":
		fc.b.push0(isa.CMP)
		fc.b.push(isa.LOADCONST, fc.constInt(1))
		fc.b.push0(isa.EQ)
	case ">=":
		fc.b.push0(isa.CMP)
		fc.b.push(isa.LOADCONST, fc.constInt(-1))
		fc.b.push0(isa.NEQ)
	default:
		// Bitwise operators (&, |, ^, <<, >>) parse but have no opcode in
		// this instruction set yet (spec.md §4.5 doesn't define one); flagged
		// here rather than miscompiled.
		fc.l.bag.Errorf(n.Span(), diag.Syntactic, "operator %q has no instruction", n.Op)
		fc.b.push0(isa.POP)
		fc.b.push0(isa.POP)
		fc.b.push(isa.LOADCONST, fc.constUnit())
	}
}

func foldConstBinary(n *ast.BinaryExpr) (value.Value, bool) {
	li, lok := n.Left.(*ast.IntLit)
	ri, rok := n.Right.(*ast.IntLit)

	if !lok || !rok {
		return value.Unit, false
	}

	switch n.Op {
	case "+":
		return value.Int(li.Value + ri.Value), true
	case "-":
		return value.Int(li.Value - ri.Value), true
	case "*":
		return value.Int(li.Value * ri.Value), true
	}

	return value.Unit, false
}

func (fc *funcLower) lowerAssign(n *ast.AssignExpr) {
	op := string(n.Op)

	var binOp string
	if op != "=" {
		binOp = op[:len(op)-1]
	}

	switch target := n.Target.(type) {
	case *ast.Ident:
		b, ok := fc.l.res.Bindings[target]
		if !ok {
			return
		}

		if binOp != "" {
			fc.lowerIdent(target)
			fc.lowerExpr(n.Value)
			fc.emitBinOp(binOp)
		} else {
			fc.lowerExpr(n.Value)
		}

		switch b.Kind {
		case resolve.BindLocal:
			fc.b.push(isa.STORELOCAL, int32(b.Slot))
		case resolve.BindCapture:
			fc.b.push(isa.STORELOCAL, -(int32(b.Slot) + 1))
		}
	case *ast.FieldExpr:
		fc.lowerExpr(target.X)

		if binOp != "" {
			fc.b.push0(isa.DUP)
			fc.b.push(isa.LOADFIELD, fc.name(target.Field))
			fc.lowerExpr(n.Value)
			fc.emitBinOp(binOp)
		} else {
			fc.lowerExpr(n.Value)
		}

		fc.b.push(isa.STOREFIELD, fc.name(target.Field))
	case *ast.IndexExpr:
		fc.lowerExpr(target.X)
		fc.lowerExpr(target.Index)

		if binOp != "" {
			// Stack is [coll, idx]; copy both below so LOADINDEX can read the
			// current element while the originals survive for STOREINDEX.
			fc.b.push(isa.COPY, 1)
			fc.b.push(isa.COPY, 1)
			fc.b.push0(isa.LOADINDEX)
			fc.lowerExpr(n.Value)
			fc.emitBinOp(binOp)
		} else {
			fc.lowerExpr(n.Value)
		}

		fc.b.push0(isa.STOREINDEX)
	}

	fc.b.push(isa.LOADCONST, fc.constUnit())
}

func (fc *funcLower) emitBinOp(op string) {
	switch op {
	case "+":
		fc.b.push0(isa.ADD)
	case "-":
		fc.b.push0(isa.SUB)
	case "*":
		fc.b.push0(isa.MUL)
	case "/":
		fc.b.push0(isa.DIV)
	case "%":
		fc.b.push0(isa.REM)
	}
}

// builtinVariants names the Option/Some/None and Result/Ok/Err constructors
// spec.md §4.3 treats as always in scope, never declared via an enum item.
var builtinVariants = map[string]struct {
	typeHash items.Hash
	typeName string
	discr    uint32
}{
	"Some": {value.OptionTypeHash, "Option", value.OptionSome},
	"None": {value.OptionTypeHash, "Option", value.OptionNone},
	"Ok":   {value.ResultTypeHash, "Result", value.ResultOk},
	"Err":  {value.ResultTypeHash, "Result", value.ResultErr},
}

func (fc *funcLower) lowerCall(n *ast.CallExpr) {
	if id, ok := n.Callee.(*ast.Ident); ok {
		if bv, ok := builtinVariants[id.Name]; ok {
			for _, a := range n.Args {
				fc.lowerExpr(a)
			}

			variants := map[string]uint32{"Some": value.OptionSome, "None": value.OptionNone}
			if bv.typeName == "Result" {
				variants = map[string]uint32{"Ok": value.ResultOk, "Err": value.ResultErr}
			}

			idx := fc.l.builtinTypeIndex(bv.typeHash, bv.typeName, variants)
			fc.b.push3(isa.BUILDVARIANT, idx, int32(bv.discr), int32(len(n.Args)))

			return
		}

		if b, ok := fc.l.res.Bindings[id]; ok && b.Kind == resolve.BindItem {
			for _, a := range n.Args {
				fc.lowerExpr(a)
			}

			idx := fc.l.funcIndexTarget(b.Hash)
			fc.b.emit(Op{Op: isa.CALL, Target: idx, B: int32(len(n.Args))})

			return
		}
	}

	// Dynamic call: the callee is an arbitrary expression evaluating to a
	// function value (e.g. a closure bound to a local).
	fc.lowerExpr(n.Callee)

	for _, a := range n.Args {
		fc.lowerExpr(a)
	}

	fc.b.push2(isa.CALLNATIVE, -1, int32(len(n.Args)))
}

func (fc *funcLower) lowerMethodCall(n *ast.MethodCallExpr) {
	fc.lowerExpr(n.Receiver)

	for _, a := range n.Args {
		fc.lowerExpr(a)
	}

	fc.b.push2(isa.CALLNATIVE, fc.name(n.Method), int32(len(n.Args)+1))
}

func (fc *funcLower) lowerIf(n *ast.IfExpr) {
	fc.lowerExpr(n.Cond)

	elseL := fc.b.freshLabel("if_else")
	endL := fc.b.freshLabel("if_end")

	fc.b.jump(isa.JUMPIFFALSE, elseL)
	fc.lowerBlockTail(n.Then)
	fc.b.jump(isa.JUMP, endL)
	fc.b.defineLabel(elseL)

	if n.Else != nil {
		fc.lowerExpr(n.Else)
	} else {
		fc.b.push(isa.LOADCONST, fc.constUnit())
	}

	fc.b.defineLabel(endL)
}

func (fc *funcLower) pushLoop(label string) (int32, string, string) {
	sink := fc.newTemp()
	endL := fc.b.freshLabel("loop_end")
	contL := fc.b.freshLabel("loop_cont")

	fc.loops = append(fc.loops, loopFrame{label: label, sink: sink, endLabel: endL, contLabel: contL})

	return sink, endL, contL
}

func (fc *funcLower) popLoop() { fc.loops = fc.loops[:len(fc.loops)-1] }

func (fc *funcLower) lowerLoop(n *ast.LoopExpr) {
	sink, endL, contL := fc.pushLoop(n.Label)

	fc.b.defineLabel(contL)
	fc.lowerBlockDiscard(n.Body)
	fc.b.jump(isa.JUMP, contL)
	fc.b.defineLabel(endL)
	fc.b.push(isa.LOADLOCAL, sink)

	fc.popLoop()
}

func (fc *funcLower) lowerWhile(n *ast.WhileExpr) {
	sink, endL, contL := fc.pushLoop(n.Label)

	fc.b.defineLabel(contL)
	fc.lowerExpr(n.Cond)
	fc.b.jump(isa.JUMPIFFALSE, endL)
	fc.lowerBlockDiscard(n.Body)
	fc.b.jump(isa.JUMP, contL)
	fc.b.defineLabel(endL)
	fc.b.push(isa.LOADLOCAL, sink)

	fc.popLoop()
}

// lowerFor desugars `for pat in iter { body }` to repeated ITERFROM/ITERNEXT
// calls against the iterator protocol, per spec.md §4.4.
func (fc *funcLower) lowerFor(n *ast.ForExpr) {
	fc.lowerExpr(n.Iter)
	fc.b.push0(isa.ITERFROM)

	iterSlot := fc.newTemp()
	fc.b.push(isa.STORELOCAL, iterSlot)

	sink, endL, contL := fc.pushLoop(n.Label)

	fc.b.defineLabel(contL)
	fc.b.push(isa.LOADLOCAL, iterSlot)
	fc.b.push0(isa.ITERNEXT)

	optSlot := fc.newTemp()
	fc.b.push(isa.STORELOCAL, optSlot)

	optionPat := &ast.VariantPattern{TypeName: "Option", Variant: "Some", Payload: []ast.Pattern{n.Pattern}}
	fc.testPattern(optionPat, optSlot, endL)
	fc.lowerBlockDiscard(n.Body)
	fc.b.jump(isa.JUMP, contL)
	fc.b.defineLabel(endL)
	fc.b.push(isa.LOADLOCAL, sink)

	fc.popLoop()
}

func (fc *funcLower) loopFor(label string) *loopFrame {
	if label == "" {
		return &fc.loops[len(fc.loops)-1]
	}

	for i := len(fc.loops) - 1; i >= 0; i-- {
		if fc.loops[i].label == label {
			return &fc.loops[i]
		}
	}

	return &fc.loops[len(fc.loops)-1]
}

func (fc *funcLower) lowerBreak(n *ast.BreakExpr) {
	if len(fc.loops) == 0 {
		return
	}

	lf := fc.loopFor(n.Label)

	if n.Value != nil {
		fc.lowerExpr(n.Value)
	} else {
		fc.b.push(isa.LOADCONST, fc.constUnit())
	}

	fc.b.push(isa.STORELOCAL, lf.sink)
	fc.b.jump(isa.JUMP, lf.endLabel)
	fc.b.push(isa.LOADCONST, fc.constUnit())
}

func (fc *funcLower) lowerContinue(n *ast.ContinueExpr) {
	if len(fc.loops) == 0 {
		return
	}

	lf := fc.loopFor(n.Label)
	fc.b.jump(isa.JUMP, lf.contLabel)
	fc.b.push(isa.LOADCONST, fc.constUnit())
}

// lowerMatch compiles arms into a straight-line chain of pattern tests: each
// arm either falls through to its body or jumps to the next arm's test,
// spec.md §4.4's "decision forest" realized as sequential rather than
// shared-prefix tests.
func (fc *funcLower) lowerMatch(n *ast.MatchExpr) {
	fc.lowerExpr(n.Scrutinee)

	scrut := fc.newTemp()
	fc.b.push(isa.STORELOCAL, scrut)

	endL := fc.b.freshLabel("match_end")

	for _, arm := range n.Arms {
		nextL := fc.b.freshLabel("match_arm")

		fc.testPattern(arm.Pattern, scrut, nextL)

		if arm.Guard != nil {
			fc.lowerExpr(arm.Guard)
			fc.b.jump(isa.JUMPIFFALSE, nextL)
		}

		fc.lowerExpr(arm.Body)
		fc.b.jump(isa.JUMP, endL)
		fc.b.defineLabel(nextL)
	}

	fc.b.push(isa.LOADCONST, fc.constVal(value.String("no pattern matched")))
	fc.b.push0(isa.PANIC)

	fc.b.defineLabel(endL)
}

// testPattern emits code testing the value in slot against p; on mismatch it
// jumps to failLabel, otherwise falls through having stored every binding p
// introduces.
func (fc *funcLower) testPattern(p ast.Pattern, slot int32, failLabel string) {
	switch pt := p.(type) {
	case *ast.WildcardPattern:
	case *ast.BindPattern:
		bslot, ok := fc.l.res.PatternSlots[pt]
		if ok {
			fc.b.push(isa.LOADLOCAL, slot)
			fc.b.push(isa.STORELOCAL, int32(bslot))
		}
	case *ast.LiteralPattern:
		fc.b.push(isa.LOADLOCAL, slot)
		fc.lowerExpr(pt.Value)
		fc.b.push0(isa.EQ)
		fc.b.jump(isa.JUMPIFFALSE, failLabel)
	case *ast.TuplePattern:
		for i, el := range pt.Elems {
			sub := fc.newTemp()
			fc.b.push(isa.LOADLOCAL, slot)
			fc.b.push(isa.LOADCONST, fc.constInt(int64(i)))
			fc.b.push0(isa.LOADINDEX)
			fc.b.push(isa.STORELOCAL, sub)
			fc.testPattern(el, sub, failLabel)
		}
	case *ast.VectorPattern:
		for i, el := range pt.Elems {
			sub := fc.newTemp()
			fc.b.push(isa.LOADLOCAL, slot)
			fc.b.push(isa.LOADCONST, fc.constInt(int64(i)))
			fc.b.push0(isa.LOADINDEX)
			fc.b.push(isa.STORELOCAL, sub)
			fc.testPattern(el, sub, failLabel)
		}

		if restSlot, ok := fc.l.res.RestSlots[pt]; ok {
			// Binds the rest to Unit: this resolver/lowerer pass supports
			// fixed-position vector patterns but not a dynamic-length slice
			// of the remaining tail.
			fc.b.push(isa.LOADCONST, fc.constUnit())
			fc.b.push(isa.STORELOCAL, int32(restSlot))
		}
	case *ast.StructPattern:
		for _, f := range pt.Fields {
			sub := fc.newTemp()
			fc.b.push(isa.LOADLOCAL, slot)
			fc.b.push(isa.LOADFIELD, fc.name(f.Name))
			fc.b.push(isa.STORELOCAL, sub)
			fc.testPattern(f.Pattern, sub, failLabel)
		}
	case *ast.VariantPattern:
		fc.testVariant(pt, slot, failLabel)
	case *ast.OrPattern:
		end := fc.b.freshLabel("or_match")

		for i, alt := range pt.Alts {
			if i == len(pt.Alts)-1 {
				fc.testPattern(alt, slot, failLabel)
				break
			}

			nextAlt := fc.b.freshLabel("or_alt")
			fc.testPattern(alt, slot, nextAlt)
			fc.b.jump(isa.JUMP, end)
			fc.b.defineLabel(nextAlt)
		}

		fc.b.defineLabel(end)
	}
}

// typeHashConst resolves a pattern's type name, recognizing the built-in
// Option and Result enums that aren't declared in any items.Table and may be
// written without an explicit "Option::"/"Result::" qualifier.
func (fc *funcLower) typeHashConst(typeName, variant string) items.Hash {
	switch typeName {
	case "Option":
		return value.OptionTypeHash
	case "Result":
		return value.ResultTypeHash
	}

	switch variant {
	case "Some", "None":
		return value.OptionTypeHash
	case "Ok", "Err":
		return value.ResultTypeHash
	}

	h, _ := fc.l.res.TypeHash(typeName)

	return h
}

func (fc *funcLower) testVariant(pt *ast.VariantPattern, slot int32, failLabel string) {
	typeHash := fc.typeHashConst(pt.TypeName, pt.Variant)

	var discr uint32

	switch pt.Variant {
	case "Some":
		discr = value.OptionSome
	case "None":
		discr = value.OptionNone
	case "Ok":
		discr = value.ResultOk
	case "Err":
		discr = value.ResultErr
	default:
		if it, ok := fc.l.res.Items.ByHash(typeHash); ok {
			discr = it.Variants[pt.Variant]
		}
	}

	fc.b.push(isa.LOADLOCAL, slot)
	fc.b.push(isa.LOADFIELD, fc.name("$type"))
	fc.b.push(isa.LOADCONST, fc.constInt(int64(typeHash)))
	fc.b.push0(isa.EQ)
	fc.b.jump(isa.JUMPIFFALSE, failLabel)

	fc.b.push(isa.LOADLOCAL, slot)
	fc.b.push(isa.LOADFIELD, fc.name("$tag"))
	fc.b.push(isa.LOADCONST, fc.constInt(int64(discr)))
	fc.b.push0(isa.EQ)
	fc.b.jump(isa.JUMPIFFALSE, failLabel)

	for i, sub := range pt.Payload {
		subSlot := fc.newTemp()
		fc.b.push(isa.LOADLOCAL, slot)
		fc.b.push(isa.LOADFIELD, fc.name("$"+itoaSmall(i)))
		fc.b.push(isa.STORELOCAL, subSlot)
		fc.testPattern(sub, subSlot, failLabel)
	}
}

func itoaSmall(n int) string {
	if n < 10 {
		return string(rune('0' + n))
	}

	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}

	return string(digits)
}

// storePattern consumes the value on top of the stack, destructuring it into
// p's bound locals.
func (fc *funcLower) storePattern(p ast.Pattern) {
	switch pt := p.(type) {
	case *ast.WildcardPattern:
		fc.b.push0(isa.POP)
	case *ast.BindPattern:
		slot, ok := fc.l.res.PatternSlots[pt]
		if !ok {
			fc.b.push0(isa.POP)
			return
		}

		fc.b.push(isa.STORELOCAL, int32(slot))
	case *ast.TuplePattern:
		tmp := fc.newTemp()
		fc.b.push(isa.STORELOCAL, tmp)

		for i, el := range pt.Elems {
			fc.b.push(isa.LOADLOCAL, tmp)
			fc.b.push(isa.LOADCONST, fc.constInt(int64(i)))
			fc.b.push0(isa.LOADINDEX)
			fc.storePattern(el)
		}
	case *ast.VectorPattern:
		tmp := fc.newTemp()
		fc.b.push(isa.STORELOCAL, tmp)

		for i, el := range pt.Elems {
			fc.b.push(isa.LOADLOCAL, tmp)
			fc.b.push(isa.LOADCONST, fc.constInt(int64(i)))
			fc.b.push0(isa.LOADINDEX)
			fc.storePattern(el)
		}

		if rest, ok := fc.l.res.RestSlots[pt]; ok {
			fc.b.push(isa.LOADCONST, fc.constUnit())
			fc.b.push(isa.STORELOCAL, int32(rest))
		}
	case *ast.StructPattern:
		tmp := fc.newTemp()
		fc.b.push(isa.STORELOCAL, tmp)

		for _, f := range pt.Fields {
			fc.b.push(isa.LOADLOCAL, tmp)
			fc.b.push(isa.LOADFIELD, fc.name(f.Name))
			fc.storePattern(f.Pattern)
		}
	default:
		fc.b.push0(isa.POP)
	}
}

func (fc *funcLower) lowerClosure(n *ast.ClosureExpr) {
	info := fc.l.res.Funcs[n]
	if info == nil {
		info = &resolve.FuncInfo{}
	}

	inner := &funcLower{l: fc.l, res: info, b: newBuilder(), nextSlot: int32(info.NumLocals)}

	switch body := n.Body.(type) {
	case *ast.BlockExpr:
		inner.lowerBlockTail(body)
	default:
		inner.lowerExpr(body)
	}

	inner.b.push0(isa.RETURN)

	name := fc.l.freshClosureName()
	hash := items.HashPath(items.Path{"$closure", name})

	f := inner.b.finish(name, len(n.Params), int(inner.nextSlot), len(info.Captures), n.IsAsync)
	f.Hash = hash
	fc.l.prog.Funcs = append(fc.l.prog.Funcs, f)

	for _, c := range info.Captures {
		src := int32(c.OuterSlot)
		if c.OuterIsCapture {
			src = -(src + 1)
		}

		fc.b.push(isa.CAPTURE, src)
	}

	idx := fc.l.funcIndexTarget(hash)
	fc.b.emit(Op{Op: isa.MAKECLOSURE, Target: idx, B: int32(len(info.Captures))})
}

func (l *lowerer) freshClosureName() string {
	l.closureSeq++
	return "closure" + itoaSmall(l.closureSeq)
}

// funcIndexTarget stringifies a function's hash as the symbolic Target for
// CALL/LOADITEM/MAKECLOSURE ops; internal/bytecode resolves it to the
// function's absolute code offset once every function in the unit is laid out.
func (l *lowerer) funcIndexTarget(hash items.Hash) string {
	return hash.String()
}

// builtinTypeIndex registers Option/Result's synthetic type metadata into the
// program's type pool on first use, since neither is declared through an
// ast.EnumItem or interned in an items.Table.
func (l *lowerer) builtinTypeIndex(hash items.Hash, name string, variants map[string]uint32) int32 {
	for i, t := range l.prog.Types {
		if t.Hash == hash {
			return int32(i)
		}
	}

	l.prog.Types = append(l.prog.Types, &items.Item{
		Path:     items.Path{"std", name},
		Hash:     hash,
		Kind:     items.KindEnum,
		Variants: variants,
	})

	return int32(len(l.prog.Types) - 1)
}

func (l *lowerer) typeIndex(hash items.Hash) int32 {
	for i, t := range l.prog.Types {
		if t.Hash == hash {
			return int32(i)
		}
	}

	it, ok := l.res.Items.ByHash(hash)
	if !ok {
		return -1
	}

	l.prog.Types = append(l.prog.Types, it)

	return int32(len(l.prog.Types) - 1)
}
