// Package resolve implements the two-pass name & scope resolver (spec.md §4.3):
// pass one interns every top-level item into an items.Table; pass two walks
// function and closure bodies with a scope stack, binds identifiers to locals,
// captures, or items, and flags unresolved names as diagnostics. `use`
// aliases are not resolved, and ambiguous imports and locals that shadow
// items are not diagnosed. Its output drives internal/hir's lowering.
package resolve

import (
	"github.com/wisp-lang/wisp/internal/ast"
	"github.com/wisp-lang/wisp/internal/diag"
	"github.com/wisp-lang/wisp/internal/items"
)

// BindingKind classifies what an identifier resolved to.
type BindingKind uint8

const (
	BindLocal BindingKind = iota
	BindCapture
	BindItem
)

// Binding is what a resolved *ast.Ident refers to.
type Binding struct {
	Kind BindingKind
	Slot int        // stack-frame slot for BindLocal, capture index for BindCapture
	Hash items.Hash // item hash for BindItem
}

// Capture records one variable a closure pulls in from an enclosing function.
type Capture struct {
	Name           string
	OuterSlot      int  // slot or capture index in the enclosing function
	OuterIsCapture bool // true if OuterSlot indexes the enclosing function's own Captures
}

// FuncInfo is the resolver's summary of one function or closure body.
type FuncInfo struct {
	NumParams int
	NumLocals int // total local slots, including params, ever allocated
	Captures  []Capture
	IsAsync   bool
}

// Result is the resolver's output: the item table plus every identifier
// binding and per-function summary discovered while walking the tree.
type Result struct {
	Items    *items.Table
	Bindings map[*ast.Ident]Binding
	Funcs    map[any]*FuncInfo // keyed by *ast.FnItem, *ast.ClosureExpr, or *ast.File (script mode)

	// ParamSlots and PatternSlots let internal/hir recover the exact local
	// slot resolve assigned to a parameter or a pattern's bound name, without
	// re-deriving the allocation order itself.
	ParamSlots   map[*ast.Param]int
	PatternSlots map[ast.Pattern]int          // *ast.BindPattern -> its slot
	RestSlots    map[*ast.VectorPattern]int   // slot for a `..rest` binding
}

// TypeHash resolves a bare type name (struct or enum) to its item hash.
func (r *Result) TypeHash(name string) (items.Hash, bool) {
	it, ok := r.Items.Lookup(items.Path{name})
	if !ok {
		return 0, false
	}

	return it.Hash, true
}

// FuncHash resolves a bare top-level function name to its item hash.
func (r *Result) FuncHash(name string) (items.Hash, bool) {
	it, ok := r.Items.Lookup(items.Path{name})
	if !ok || it.Kind != items.KindFunction {
		return 0, false
	}

	return it.Hash, true
}

// MethodHash resolves an `impl TypeName { fn Method(...) }` method to its
// synthesized item hash, addressable as items.Path{TypeName, Method}.
func (r *Result) MethodHash(typeName, method string) (items.Hash, bool) {
	it, ok := r.Items.Lookup(items.Path{typeName, method})
	if !ok {
		return 0, false
	}

	return it.Hash, true
}

type scope map[string]int

type funcCtx struct {
	node         any
	scopes       []scope
	nextSlot     int
	maxSlot      int
	captures     []Capture
	captureIndex map[string]int
	isAsync      bool
	parent       *funcCtx
}

func newFuncCtx(node any, isAsync bool, parent *funcCtx) *funcCtx {
	return &funcCtx{
		node:         node,
		scopes:       []scope{{}},
		captureIndex: map[string]int{},
		isAsync:      isAsync,
		parent:       parent,
	}
}

func (fc *funcCtx) push() { fc.scopes = append(fc.scopes, scope{}) }
func (fc *funcCtx) pop()  { fc.scopes = fc.scopes[:len(fc.scopes)-1] }

func (fc *funcCtx) declare(name string) int {
	slot := fc.nextSlot
	fc.nextSlot++

	if fc.nextSlot > fc.maxSlot {
		fc.maxSlot = fc.nextSlot
	}

	fc.scopes[len(fc.scopes)-1][name] = slot

	return slot
}

func (fc *funcCtx) lookupLocal(name string) (int, bool) {
	for i := len(fc.scopes) - 1; i >= 0; i-- {
		if slot, ok := fc.scopes[i][name]; ok {
			return slot, true
		}
	}

	return 0, false
}

// resolveOuter looks up name in an enclosing function, recording a capture
// chain through every intervening closure so nested closures each capture
// from their immediate parent.
func (fc *funcCtx) resolveOuter(name string) (Binding, bool) {
	if fc.parent == nil {
		return Binding{}, false
	}

	if slot, ok := fc.parent.lookupLocal(name); ok {
		return Binding{Kind: BindCapture, Slot: fc.addCapture(name, slot, false)}, true
	}

	if idx, ok := fc.parent.captureIndex[name]; ok {
		return Binding{Kind: BindCapture, Slot: fc.addCapture(name, idx, true)}, true
	}

	if b, ok := fc.parent.resolveOuter(name); ok && b.Kind == BindCapture {
		return Binding{Kind: BindCapture, Slot: fc.addCapture(name, b.Slot, true)}, true
	}

	return Binding{}, false
}

func (fc *funcCtx) addCapture(name string, outerSlot int, outerIsCapture bool) int {
	if idx, ok := fc.captureIndex[name]; ok {
		return idx
	}

	idx := len(fc.captures)
	fc.captures = append(fc.captures, Capture{Name: name, OuterSlot: outerSlot, OuterIsCapture: outerIsCapture})
	fc.captureIndex[name] = idx

	return idx
}

type resolver struct {
	bag          *diag.Bag
	items        *items.Table
	bindings     map[*ast.Ident]Binding
	funcs        map[any]*FuncInfo
	paramSlots   map[*ast.Param]int
	patternSlots map[ast.Pattern]int
	restSlots    map[*ast.VectorPattern]int
	cur          *funcCtx
}

// Resolve runs both passes over file and returns the bindings needed to lower
// it to HIR. Errors are reported to bag; Resolve always returns a non-nil
// Result so lowering can proceed best-effort for IDE-style partial tooling.
func Resolve(file *ast.File, bag *diag.Bag) *Result {
	r := &resolver{
		bag:          bag,
		items:        items.NewTable(),
		bindings:     map[*ast.Ident]Binding{},
		funcs:        map[any]*FuncInfo{},
		paramSlots:   map[*ast.Param]int{},
		patternSlots: map[ast.Pattern]int{},
		restSlots:    map[*ast.VectorPattern]int{},
	}

	r.declareItems(file.Items)
	r.resolveItems(file.Items)
	r.resolveScript(file)

	return &Result{
		Items: r.items, Bindings: r.bindings, Funcs: r.funcs,
		ParamSlots: r.paramSlots, PatternSlots: r.patternSlots, RestSlots: r.restSlots,
	}
}

// resolveScript resolves top-level `let`/expression items (script mode,
// spec.md §6) as the body of a synthetic entry function keyed by file itself,
// so internal/hir can find its FuncInfo the same way it looks up any other
// function.
func (r *resolver) resolveScript(file *ast.File) {
	hasScript := false

	for _, it := range file.Items {
		switch it.(type) {
		case *ast.LetItem, *ast.ExprItem:
			hasScript = true
		}
	}

	if !hasScript {
		return
	}

	outer := r.cur
	r.cur = newFuncCtx(file, false, nil)

	for _, it := range file.Items {
		switch n := it.(type) {
		case *ast.LetItem:
			r.resolveExpr(n.Value)
			r.bindPattern(n.Pattern)
		case *ast.ExprItem:
			r.resolveExpr(n.X)
		}
	}

	r.funcs[file] = &FuncInfo{NumLocals: r.cur.maxSlot}
	r.cur = outer
}

func (r *resolver) declareItems(items_ []ast.Item) {
	for _, it := range items_ {
		r.declareItem(it)
	}
}

func (r *resolver) declareItem(it ast.Item) {
	switch n := it.(type) {
	case *ast.FnItem:
		r.declare(&items.Item{Path: items.Path{n.Name}, Kind: items.KindFunction, Visibility: vis(n.Vis)}, n.Sp)
	case *ast.StructItem:
		fields := make([]string, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = f.Name
		}

		r.declare(&items.Item{Path: items.Path{n.Name}, Kind: items.KindStruct, Visibility: vis(n.Vis), Fields: fields}, n.Sp)
	case *ast.EnumItem:
		variants := make(map[string]uint32, len(n.Variants))
		for i, v := range n.Variants {
			variants[v.Name] = uint32(i)
		}

		r.declare(&items.Item{Path: items.Path{n.Name}, Kind: items.KindEnum, Visibility: vis(n.Vis), Variants: variants}, n.Sp)
	case *ast.ConstItem:
		r.declare(&items.Item{Path: items.Path{n.Name}, Kind: items.KindConst, Visibility: vis(n.Vis)}, n.Sp)
	case *ast.ImplItem:
		for _, m := range n.Methods {
			r.declare(&items.Item{Path: items.Path{n.TypeName, m.Name}, Kind: items.KindFunction, Visibility: vis(m.Vis)}, m.Sp)
		}
	case *ast.ModItem:
		r.declareItems(n.Items)
	case *ast.UseItem:
		// Use items are not recorded, so no lookup resolves through their
		// aliases.
	}
}

func (r *resolver) declare(it *items.Item, sp diag.Span) {
	if err := r.items.Declare(it); err != nil {
		kind := diag.HashCollision
		if _, ok := r.items.Lookup(it.Path); ok {
			kind = diag.DuplicateItem
		}

		r.bag.Errorf(sp, kind, "%s", err)
	}
}

func vis(v ast.Visibility) items.Visibility {
	switch v {
	case ast.Pub:
		return items.Public
	case ast.PubCrate:
		return items.PubCrate
	default:
		return items.Private
	}
}

func (r *resolver) resolveItems(items_ []ast.Item) {
	for _, it := range items_ {
		switch n := it.(type) {
		case *ast.FnItem:
			r.resolveFn(n)
		case *ast.ImplItem:
			for _, m := range n.Methods {
				r.resolveFn(m)
			}
		case *ast.ModItem:
			r.resolveItems(n.Items)
		case *ast.ConstItem:
			r.resolveExpr(n.Value)
		}
	}
}

func (r *resolver) resolveFn(fn *ast.FnItem) {
	outer := r.cur
	r.cur = newFuncCtx(fn, fn.IsAsync, outer)

	for i := range fn.Params {
		r.paramSlots[&fn.Params[i]] = r.cur.declare(fn.Params[i].Name)
	}

	r.resolveBlock(fn.Body)

	r.funcs[fn] = &FuncInfo{NumParams: len(fn.Params), NumLocals: r.cur.maxSlot, Captures: r.cur.captures, IsAsync: fn.IsAsync}
	r.cur = outer
}

func (r *resolver) resolveBlock(b *ast.BlockExpr) {
	r.cur.push()
	defer r.cur.pop()

	for _, stmt := range b.Stmts {
		r.resolveStmt(stmt)
	}
}

func (r *resolver) resolveStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		r.resolveExpr(s.Value)
		r.bindPattern(s.Pattern)
	case *ast.ExprStmt:
		r.resolveExpr(s.X)
	case *ast.ItemStmt:
		r.declareItem(s.X)
		r.resolveItems([]ast.Item{s.X})
	}
}

// bindPattern declares every name a pattern binds as a fresh local slot and
// records the slot against the pattern node itself, so internal/hir can read
// it back directly instead of re-deriving resolve's allocation order.
func (r *resolver) bindPattern(p ast.Pattern) {
	switch pt := p.(type) {
	case *ast.BindPattern:
		r.patternSlots[pt] = r.cur.declare(pt.Name)
	case *ast.TuplePattern:
		for _, e := range pt.Elems {
			r.bindPattern(e)
		}
	case *ast.VectorPattern:
		for _, e := range pt.Elems {
			r.bindPattern(e)
		}

		if pt.Rest != "" {
			r.restSlots[pt] = r.cur.declare(pt.Rest)
		}
	case *ast.StructPattern:
		for _, f := range pt.Fields {
			r.bindPattern(f.Pattern)
		}
	case *ast.VariantPattern:
		for _, e := range pt.Payload {
			r.bindPattern(e)
		}
	case *ast.OrPattern:
		// Every alternative must bind the same names to the same slots; bind
		// only the first so repeated names aren't declared more than once.
		if len(pt.Alts) > 0 {
			r.bindPattern(pt.Alts[0])

			for _, a := range pt.Alts[1:] {
				r.aliasPattern(a, pt.Alts[0])
			}
		}
	}
}

// aliasPattern records slots for alt using the already-declared slots from
// the or-pattern's first alternative, named-positionally, without declaring
// fresh locals.
func (r *resolver) aliasPattern(alt, first ast.Pattern) {
	switch pt := alt.(type) {
	case *ast.BindPattern:
		if fp, ok := first.(*ast.BindPattern); ok {
			r.patternSlots[pt] = r.patternSlots[fp]
		}
	}
}

func (r *resolver) resolveExpr(e ast.Expr) {
	if e == nil {
		return
	}

	switch n := e.(type) {
	case *ast.Ident:
		r.resolveIdent(n)
	case *ast.TupleExpr:
		r.resolveExprs(n.Elems)
	case *ast.VectorExpr:
		r.resolveExprs(n.Elems)
	case *ast.ObjectExpr:
		for _, f := range n.Fields {
			r.resolveExpr(f.Value)
		}
	case *ast.StructExpr:
		for _, f := range n.Fields {
			r.resolveExpr(f.Value)
		}
	case *ast.RangeExpr:
		r.resolveExpr(n.Start)
		r.resolveExpr(n.End)
	case *ast.BinaryExpr:
		r.resolveExpr(n.Left)
		r.resolveExpr(n.Right)
	case *ast.UnaryExpr:
		r.resolveExpr(n.X)
	case *ast.AssignExpr:
		r.resolveExpr(n.Target)
		r.resolveExpr(n.Value)
	case *ast.CallExpr:
		r.resolveExpr(n.Callee)
		r.resolveExprs(n.Args)
	case *ast.MethodCallExpr:
		r.resolveExpr(n.Receiver)
		r.resolveExprs(n.Args)
	case *ast.FieldExpr:
		r.resolveExpr(n.X)
	case *ast.IndexExpr:
		r.resolveExpr(n.X)
		r.resolveExpr(n.Index)
	case *ast.TryExpr:
		r.resolveExpr(n.X)
	case *ast.BlockExpr:
		r.resolveBlock(n)
	case *ast.IfExpr:
		r.resolveExpr(n.Cond)
		r.resolveBlock(n.Then)
		r.resolveExpr(n.Else)
	case *ast.WhileExpr:
		r.resolveExpr(n.Cond)
		r.resolveBlock(n.Body)
	case *ast.LoopExpr:
		r.resolveBlock(n.Body)
	case *ast.ForExpr:
		r.resolveExpr(n.Iter)
		r.cur.push()
		r.bindPattern(n.Pattern)
		r.resolveBlock(n.Body)
		r.cur.pop()
	case *ast.MatchExpr:
		r.resolveExpr(n.Scrutinee)

		for _, arm := range n.Arms {
			r.cur.push()
			r.bindPattern(arm.Pattern)
			r.resolveExpr(arm.Guard)
			r.resolveExpr(arm.Body)
			r.cur.pop()
		}
	case *ast.BreakExpr:
		r.resolveExpr(n.Value)
	case *ast.ReturnExpr:
		r.resolveExpr(n.Value)
	case *ast.YieldExpr:
		r.resolveExpr(n.Value)
	case *ast.AwaitExpr:
		r.resolveExpr(n.X)
	case *ast.ClosureExpr:
		r.resolveClosure(n)
	}
}

func (r *resolver) resolveExprs(es []ast.Expr) {
	for _, e := range es {
		r.resolveExpr(e)
	}
}

func (r *resolver) resolveClosure(cl *ast.ClosureExpr) {
	outer := r.cur
	r.cur = newFuncCtx(cl, cl.IsAsync, outer)

	for i := range cl.Params {
		r.paramSlots[&cl.Params[i]] = r.cur.declare(cl.Params[i].Name)
	}

	switch body := cl.Body.(type) {
	case *ast.BlockExpr:
		r.resolveBlock(body)
	default:
		r.resolveExpr(body)
	}

	r.funcs[cl] = &FuncInfo{NumParams: len(cl.Params), NumLocals: r.cur.maxSlot, Captures: r.cur.captures, IsAsync: cl.IsAsync}
	r.cur = outer
}

func (r *resolver) resolveIdent(id *ast.Ident) {
	if r.cur != nil {
		if slot, ok := r.cur.lookupLocal(id.Name); ok {
			r.bindings[id] = Binding{Kind: BindLocal, Slot: slot}
			return
		}

		if b, ok := r.cur.resolveOuter(id.Name); ok {
			r.bindings[id] = b
			return
		}
	}

	if it, ok := r.items.Lookup(items.Path{id.Name}); ok {
		r.bindings[id] = Binding{Kind: BindItem, Hash: it.Hash}
		return
	}

	switch id.Name {
	case "Some", "None", "Ok", "Err":
		// Always-in-scope Option/Result constructors (spec.md §4.3); hir
		// recognizes them by name rather than through a Binding.
		return
	}

	r.bag.Errorf(id.Sp, diag.NameResolution, "cannot find %q in this scope", id.Name)
}
