package hir

import (
	"github.com/wisp-lang/wisp/internal/ast"
	"github.com/wisp-lang/wisp/internal/diag"
	"github.com/wisp-lang/wisp/internal/isa"
	"github.com/wisp-lang/wisp/internal/items"
	"github.com/wisp-lang/wisp/internal/resolve"
	"github.com/wisp-lang/wisp/internal/value"
)

// Lower walks file against the bindings res computed and produces a Program
// ready for internal/bytecode to assemble. Diagnostics (unreachable code
// after a diverging statement, binary operators with no instruction) are
// reported to bag; lowering itself never
// fails outright, matching resolve's best-effort posture.
func Lower(file *ast.File, res *resolve.Result, bag *diag.Bag) *Program {
	l := &lowerer{res: res, bag: bag, prog: &Program{Methods: map[items.Hash]map[string]items.Hash{}}}

	for _, it := range file.Items {
		switch n := it.(type) {
		case *ast.FnItem:
			l.lowerTopFn(n)
		case *ast.StructItem:
			l.declareType(n.Name, n)
		case *ast.EnumItem:
			l.declareType(n.Name, n)
		case *ast.ImplItem:
			l.lowerImpl(n)
		}
	}

	l.lowerScript(file)

	return l.prog
}

func (l *lowerer) declareType(name string, node any) {
	hash, ok := l.res.TypeHash(name)
	if !ok {
		return
	}

	it, ok := l.res.Items.ByHash(hash)
	if ok {
		l.prog.Types = append(l.prog.Types, it)
	}
}

type lowerer struct {
	res        *resolve.Result
	bag        *diag.Bag
	prog       *Program
	closureSeq int
}

func (l *lowerer) lowerTopFn(fn *ast.FnItem) {
	hash, _ := l.res.FuncHash(fn.Name)
	l.lowerFunc(fn.Name, hash, fn.Params, fn.IsAsync, fn.Body, fn)
}

func (l *lowerer) lowerImpl(im *ast.ImplItem) {
	typeHash, _ := l.res.TypeHash(im.TypeName)
	if l.prog.Methods[typeHash] == nil {
		l.prog.Methods[typeHash] = map[string]items.Hash{}
	}

	for _, m := range im.Methods {
		hash, _ := l.res.MethodHash(im.TypeName, m.Name)
		l.prog.Methods[typeHash][m.Name] = hash
		l.lowerFunc(im.TypeName+"::"+m.Name, hash, m.Params, m.IsAsync, m.Body, m)
	}
}

// lowerScript compiles top-level `let`/expression items into a synthetic
// "$main" entry function, per spec.md §6 script mode.
func (l *lowerer) lowerScript(file *ast.File) {
	info := l.res.Funcs[file]
	if info == nil {
		return
	}

	fc := &funcLower{l: l, res: info, b: newBuilder(), nextSlot: int32(info.NumLocals)}

	last := -1
	for i, it := range file.Items {
		switch it.(type) {
		case *ast.LetItem, *ast.ExprItem:
			last = i
		}
	}

	for i, it := range file.Items {
		switch n := it.(type) {
		case *ast.LetItem:
			fc.lowerExpr(n.Value)
			fc.storePattern(n.Pattern)

			if i == last {
				fc.b.push(isa.LOADCONST, fc.constUnit())
			}
		case *ast.ExprItem:
			fc.lowerExpr(n.X)

			if i != last {
				fc.b.push0(isa.POP)
			}
		}
	}

	fc.b.push0(isa.RETURN)

	l.prog.MainHash = items.HashPath(items.Path{"$main"})
	l.prog.HasMain = true
	l.prog.Funcs = append(l.prog.Funcs, fc.b.finish("$main", 0, int(fc.nextSlot), 0, false))
	l.prog.Funcs[len(l.prog.Funcs)-1].Hash = l.prog.MainHash
}

func (l *lowerer) lowerFunc(name string, hash items.Hash, params []ast.Param, async bool, body *ast.BlockExpr, key any) {
	info := l.res.Funcs[key]
	if info == nil {
		info = &resolve.FuncInfo{}
	}

	fc := &funcLower{l: l, res: info, b: newBuilder(), nextSlot: int32(info.NumLocals)}

	fc.lowerBlockTail(body)
	fc.b.push0(isa.RETURN)

	f := fc.b.finish(name, len(params), int(fc.nextSlot), len(info.Captures), async)
	f.Hash = hash
	l.prog.Funcs = append(l.prog.Funcs, f)
}
