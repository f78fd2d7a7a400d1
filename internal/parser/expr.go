package parser

import (
	"github.com/wisp-lang/wisp/internal/ast"
	"github.com/wisp-lang/wisp/internal/lexer"
)

// parseBlock parses a `{ ... }` block. The final statement, if it is an
// expression with no trailing `;`, becomes the block's value during lowering.
func (p *Parser) parseBlock() *ast.BlockExpr {
	start := p.cur().Start
	p.expectPunct("{")

	var stmts []ast.Stmt

	for !p.atPunct("}") && p.cur().Kind != lexer.EOF {
		s := p.parseStmt()
		if s != nil {
			stmts = append(stmts, s)
		} else {
			p.syncTo(";", "}")

			if p.atPunct(";") {
				p.advance()
			}
		}
	}

	p.expectPunct("}")

	return &ast.BlockExpr{Stmts: stmts, Base: ast.NewBase(p.span(start))}
}

func (p *Parser) parseStmt() ast.Stmt {
	start := p.cur().Start

	switch {
	case p.atKeyword("let"):
		return p.parseLetStmt(start)
	case p.atKeyword("fn"), p.atKeyword("struct"), p.atKeyword("enum"), p.atKeyword("use"), p.atKeyword("const"):
		it := p.parseItem()
		if it == nil {
			return nil
		}

		return &ast.ItemStmt{X: it, Sp: p.span(start)}
	default:
		x := p.parseExpr()
		if x == nil {
			return nil
		}

		semi := false
		if p.atPunct(";") {
			p.advance()

			semi = true
		}

		return &ast.ExprStmt{X: x, Semi: semi, Sp: p.span(start)}
	}
}

func (p *Parser) parseLetStmt(start int) ast.Stmt {
	p.advance() // 'let'

	mut := false
	if p.atKeyword("mut") {
		mut = true

		p.advance()
	}

	pat := p.parsePattern()

	var value ast.Expr

	if p.atPunct("=") {
		p.advance()

		value = p.parseExpr()
	}

	p.expectPunct(";")

	return &ast.LetStmt{Pattern: pat, Mut: mut, Value: value, Sp: p.span(start)}
}

// --- Expressions: precedence climbing --------------------------------------

// binPrec gives the binding power of left-associative binary operators;
// assignment and range are handled separately since they don't chain the
// same way.
var binPrec = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3, "<": 3, "<=": 3, ">": 3, ">=": 3,
	"|": 4,
	"^": 5,
	"&": 6,
	"<<": 7, ">>": 7,
	"+": 8, "-": 8,
	"*": 9, "/": 9, "%": 9,
}

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
}

func (p *Parser) parseExpr() ast.Expr {
	return p.parseAssign()
}

func (p *Parser) parseAssign() ast.Expr {
	start := p.cur().Start
	lhs := p.parseRange()

	if lhs == nil {
		return nil
	}

	if p.cur().Kind == lexer.Punct && assignOps[p.cur().Text] {
		op := p.advance().Text
		rhs := p.parseAssign()

		return &ast.AssignExpr{Op: ast.BinOp(op), Target: lhs, Value: rhs, Base: ast.NewBase(p.span(start))}
	}

	return lhs
}

func (p *Parser) parseRange() ast.Expr {
	start := p.cur().Start

	var lo ast.Expr

	if !p.atPunct("..") && !p.atPunct("..=") {
		lo = p.parseBinary(1)
	}

	if p.atPunct("..") || p.atPunct("..=") {
		incl := p.cur().Text == "..="
		p.advance()

		var hi ast.Expr
		if !isExprTerminator(p.cur()) {
			hi = p.parseBinary(1)
		}

		return &ast.RangeExpr{Start: lo, End: hi, Inclusive: incl, Base: ast.NewBase(p.span(start))}
	}

	return lo
}

func isExprTerminator(t lexer.Token) bool {
	if t.Kind == lexer.EOF {
		return true
	}

	if t.Kind != lexer.Punct {
		return false
	}

	switch t.Text {
	case ";", ",", ")", "]", "}", "{":
		return true
	}

	return false
}

func (p *Parser) parseBinary(minPrec int) ast.Expr {
	start := p.cur().Start
	left := p.parseUnary()

	for {
		if p.cur().Kind != lexer.Punct {
			break
		}

		prec, ok := binPrec[p.cur().Text]
		if !ok || prec < minPrec {
			break
		}

		op := p.advance().Text
		right := p.parseBinary(prec + 1)
		left = &ast.BinaryExpr{Op: ast.BinOp(op), Left: left, Right: right, Base: ast.NewBase(p.span(start))}
	}

	return left
}

func (p *Parser) parseUnary() ast.Expr {
	start := p.cur().Start

	if p.cur().Kind == lexer.Punct && (p.cur().Text == "-" || p.cur().Text == "!") {
		op := p.advance().Text
		x := p.parseUnary()

		return &ast.UnaryExpr{Op: ast.BinOp(op), X: x, Base: ast.NewBase(p.span(start))}
	}

	if p.atKeyword("await") {
		p.advance()
		x := p.parseUnary()

		return &ast.AwaitExpr{X: x, Base: ast.NewBase(p.span(start))}
	}

	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expr {
	start := p.cur().Start
	x := p.parsePrimary()

	for {
		switch {
		case p.atPunct("."):
			p.advance()

			name := p.advance().Text
			if p.atPunct("(") {
				args := p.parseArgList()
				x = &ast.MethodCallExpr{Receiver: x, Method: name, Args: args, Base: ast.NewBase(p.span(start))}
			} else {
				x = &ast.FieldExpr{X: x, Field: name, Base: ast.NewBase(p.span(start))}
			}
		case p.atPunct("("):
			args := p.parseArgList()
			x = &ast.CallExpr{Callee: x, Args: args, Base: ast.NewBase(p.span(start))}
		case p.atPunct("["):
			p.advance()

			idx := p.parseExpr()
			p.expectPunct("]")

			x = &ast.IndexExpr{X: x, Index: idx, Base: ast.NewBase(p.span(start))}
		case p.atPunct("?"):
			p.advance()

			x = &ast.TryExpr{X: x, Base: ast.NewBase(p.span(start))}
		default:
			return x
		}
	}
}

func (p *Parser) parseArgList() []ast.Expr {
	p.expectPunct("(")

	var args []ast.Expr

	for !p.atPunct(")") && p.cur().Kind != lexer.EOF {
		args = append(args, p.parseExpr())

		if p.atPunct(",") {
			p.advance()
		}
	}

	p.expectPunct(")")

	return args
}

func (p *Parser) parsePrimary() ast.Expr {
	start := p.cur().Start
	t := p.cur()

	switch {
	case t.Kind == lexer.Int:
		p.advance()

		return &ast.IntLit{Value: parseIntText(t.Text), Base: ast.NewBase(p.span(start))}
	case t.Kind == lexer.Float:
		p.advance()

		return &ast.FloatLit{Value: parseFloatText(t.Text), Base: ast.NewBase(p.span(start))}
	case t.Kind == lexer.String:
		p.advance()

		return &ast.StringLit{Value: unescapeString(t.Text), Base: ast.NewBase(p.span(start))}
	case t.Kind == lexer.ByteString:
		p.advance()

		return &ast.ByteStringLit{Value: []byte(unescapeString(t.Text)), Base: ast.NewBase(p.span(start))}
	case t.Kind == lexer.Char:
		p.advance()

		r := []rune(unescapeString(t.Text))
		if len(r) == 0 {
			return &ast.CharLit{Base: ast.NewBase(p.span(start))}
		}

		return &ast.CharLit{Value: r[0], Base: ast.NewBase(p.span(start))}
	case t.Kind == lexer.ByteLit:
		p.advance()

		b := []byte(unescapeString(t.Text))
		if len(b) == 0 {
			return &ast.ByteLit{Base: ast.NewBase(p.span(start))}
		}

		return &ast.ByteLit{Value: b[0], Base: ast.NewBase(p.span(start))}
	case p.atKeyword("true"):
		p.advance()

		return &ast.BoolLit{Value: true, Base: ast.NewBase(p.span(start))}
	case p.atKeyword("false"):
		p.advance()

		return &ast.BoolLit{Value: false, Base: ast.NewBase(p.span(start))}
	case p.atKeyword("if"):
		return p.parseIf()
	case p.atKeyword("while"):
		return p.parseWhile("")
	case p.atKeyword("loop"):
		return p.parseLoop("")
	case p.atKeyword("for"):
		return p.parseFor("")
	case t.Kind == lexer.Label:
		return p.parseLabelled(t.Text)
	case p.atKeyword("match"):
		return p.parseMatch()
	case p.atKeyword("break"):
		return p.parseBreak()
	case p.atKeyword("continue"):
		p.advance()

		label := ""
		if p.cur().Kind == lexer.Label {
			label = p.advance().Text
		}

		return &ast.ContinueExpr{Label: label, Base: ast.NewBase(p.span(start))}
	case p.atKeyword("return"):
		p.advance()

		var v ast.Expr
		if !isExprTerminator(p.cur()) {
			v = p.parseExpr()
		}

		return &ast.ReturnExpr{Value: v, Base: ast.NewBase(p.span(start))}
	case p.atKeyword("yield"):
		p.advance()

		var v ast.Expr
		if !isExprTerminator(p.cur()) {
			v = p.parseExpr()
		}

		return &ast.YieldExpr{Value: v, Base: ast.NewBase(p.span(start))}
	case p.atPunct("|") || p.atKeyword("move") || p.atKeyword("async"):
		return p.parseClosure()
	case p.atPunct("{"):
		return p.parseBlock()
	case p.atPunct("("):
		return p.parseParenOrTuple(start)
	case p.atPunct("["):
		return p.parseVector(start)
	case t.Kind == lexer.Ident || p.atKeyword("self"):
		name := p.advance().Text
		if p.atPunct("{") && !p.noStruct {
			return p.parseStructOrObjectLiteral(name, start)
		}

		return &ast.Ident{Name: name, Base: ast.NewBase(p.span(start))}
	default:
		p.errAt("expected expression, found %q", t.Text)
		p.advance()

		return nil
	}
}

func (p *Parser) parseStructOrObjectLiteral(name string, start int) ast.Expr {
	p.advance() // '{'

	var fields []ast.ObjectField

	for !p.atPunct("}") && p.cur().Kind != lexer.EOF {
		fname := p.advance().Text
		p.expectPunct(":")
		fval := p.parseExpr()
		fields = append(fields, ast.ObjectField{Name: fname, Value: fval})

		if p.atPunct(",") {
			p.advance()
		}
	}

	p.expectPunct("}")

	return &ast.StructExpr{TypeName: name, Fields: fields, Base: ast.NewBase(p.span(start))}
}

func (p *Parser) parseParenOrTuple(start int) ast.Expr {
	p.advance() // '('

	prev := p.noStruct
	p.noStruct = false

	defer func() { p.noStruct = prev }()

	if p.atPunct(")") {
		p.advance()

		return &ast.UnitLit{Base: ast.NewBase(p.span(start))}
	}

	first := p.parseExpr()

	if p.atPunct(",") {
		elems := []ast.Expr{first}

		for p.atPunct(",") {
			p.advance()

			if p.atPunct(")") {
				break
			}

			elems = append(elems, p.parseExpr())
		}

		p.expectPunct(")")

		return &ast.TupleExpr{Elems: elems, Base: ast.NewBase(p.span(start))}
	}

	p.expectPunct(")")

	return first
}

func (p *Parser) parseVector(start int) ast.Expr {
	p.advance() // '['

	var elems []ast.Expr

	for !p.atPunct("]") && p.cur().Kind != lexer.EOF {
		elems = append(elems, p.parseExpr())

		if p.atPunct(",") {
			p.advance()
		}
	}

	p.expectPunct("]")

	return &ast.VectorExpr{Elems: elems, Base: ast.NewBase(p.span(start))}
}

func (p *Parser) parseIf() ast.Expr {
	start := p.cur().Start
	p.advance() // 'if'

	cond := p.parseNoStructExpr()
	then := p.parseBlock()

	var elseExpr ast.Expr

	if p.atKeyword("else") {
		p.advance()

		if p.atKeyword("if") {
			elseExpr = p.parseIf()
		} else {
			elseExpr = p.parseBlock()
		}
	}

	return &ast.IfExpr{Cond: cond, Then: then, Else: elseExpr, Base: ast.NewBase(p.span(start))}
}

// parseNoStructExpr parses a condition expression. Struct literals are
// ambiguous with the following block in `if x {`, so struct-literal parsing
// is suppressed (noStruct) while the condition is parsed; a parenthesized
// struct literal is still allowed, since parseParenOrTuple lifts the
// suppression inside the parentheses.
func (p *Parser) parseNoStructExpr() ast.Expr {
	prev := p.noStruct
	p.noStruct = true
	x := p.parseExpr()
	p.noStruct = prev

	return x
}

func (p *Parser) parseWhile(label string) ast.Expr {
	start := p.cur().Start
	p.advance() // 'while'

	cond := p.parseNoStructExpr()
	body := p.parseBlock()

	return &ast.WhileExpr{Label: label, Cond: cond, Body: body, Base: ast.NewBase(p.span(start))}
}

func (p *Parser) parseLoop(label string) ast.Expr {
	start := p.cur().Start
	p.advance() // 'loop'

	body := p.parseBlock()

	return &ast.LoopExpr{Label: label, Body: body, Base: ast.NewBase(p.span(start))}
}

func (p *Parser) parseFor(label string) ast.Expr {
	start := p.cur().Start
	p.advance() // 'for'

	pat := p.parsePattern()
	p.advance() // 'in' (assumed present; errAt if not would require lookahead)

	iter := p.parseNoStructExpr()
	body := p.parseBlock()

	return &ast.ForExpr{Label: label, Pattern: pat, Iter: iter, Body: body, Base: ast.NewBase(p.span(start))}
}

func (p *Parser) parseLabelled(label string) ast.Expr {
	p.advance() // label token
	p.expectPunct(":")

	switch {
	case p.atKeyword("while"):
		return p.parseWhile(label)
	case p.atKeyword("loop"):
		return p.parseLoop(label)
	case p.atKeyword("for"):
		return p.parseFor(label)
	default:
		p.errAt("expected loop after label, found %q", p.cur().Text)

		return nil
	}
}

func (p *Parser) parseMatch() ast.Expr {
	start := p.cur().Start
	p.advance() // 'match'

	scrut := p.parseNoStructExpr()
	p.expectPunct("{")

	var arms []ast.MatchArm

	for !p.atPunct("}") && p.cur().Kind != lexer.EOF {
		pat := p.parsePattern()

		var guard ast.Expr

		if p.atKeyword("if") {
			p.advance()

			guard = p.parseExpr()
		}

		p.expectPunct("=>")
		body := p.parseExpr()

		arms = append(arms, ast.MatchArm{Pattern: pat, Guard: guard, Body: body})

		if p.atPunct(",") {
			p.advance()
		}
	}

	p.expectPunct("}")

	return &ast.MatchExpr{Scrutinee: scrut, Arms: arms, Base: ast.NewBase(p.span(start))}
}

func (p *Parser) parseBreak() ast.Expr {
	start := p.cur().Start
	p.advance() // 'break'

	label := ""
	if p.cur().Kind == lexer.Label {
		label = p.advance().Text
	}

	var value ast.Expr

	if !isExprTerminator(p.cur()) {
		value = p.parseExpr()
	}

	return &ast.BreakExpr{Label: label, Value: value, Base: ast.NewBase(p.span(start))}
}

func (p *Parser) parseClosure() ast.Expr {
	start := p.cur().Start

	isAsync := false
	if p.atKeyword("async") {
		isAsync = true

		p.advance()
	}

	if p.atKeyword("move") {
		p.advance()
	}

	var params []ast.Param

	if p.atPunct("||") {
		p.advance()
	} else {
		p.expectPunct("|")

		for !p.atPunct("|") && p.cur().Kind != lexer.EOF {
			pstart := p.cur().Start
			params = append(params, ast.Param{Name: p.advance().Text, Sp: p.span(pstart)})

			if p.atPunct(",") {
				p.advance()
			}
		}

		p.expectPunct("|")
	}

	body := p.parseExpr()

	return &ast.ClosureExpr{Params: params, IsAsync: isAsync, Body: body, Base: ast.NewBase(p.span(start))}
}

// --- Patterns ----------------------------------------------------------------

func (p *Parser) parsePattern() ast.Pattern {
	first := p.parsePatternPrimary()

	if !p.atPunct("|") {
		return first
	}

	alts := []ast.Pattern{first}

	for p.atPunct("|") {
		p.advance()

		alts = append(alts, p.parsePatternPrimary())
	}

	return &ast.OrPattern{Alts: alts}
}

func (p *Parser) parsePatternPrimary() ast.Pattern {
	start := p.cur().Start
	t := p.cur()

	switch {
	case t.Kind == lexer.Ident && t.Text == "_":
		p.advance()

		return &ast.WildcardPattern{}
	case t.Kind == lexer.Int || t.Kind == lexer.Float || t.Kind == lexer.String ||
		t.Kind == lexer.Char || t.Kind == lexer.ByteLit:
		lit := p.parsePrimary()

		return &ast.LiteralPattern{Value: lit}
	case p.atKeyword("true") || p.atKeyword("false"):
		lit := p.parsePrimary()

		return &ast.LiteralPattern{Value: lit}
	case p.atKeyword("mut"):
		p.advance()

		name := p.advance().Text

		return &ast.BindPattern{Name: name, Mut: true}
	case p.atPunct("("):
		p.advance()

		var elems []ast.Pattern

		for !p.atPunct(")") && p.cur().Kind != lexer.EOF {
			elems = append(elems, p.parsePattern())

			if p.atPunct(",") {
				p.advance()
			}
		}

		p.expectPunct(")")

		return &ast.TuplePattern{Elems: elems}
	case p.atPunct("["):
		p.advance()

		var elems []ast.Pattern

		rest := ""

		for !p.atPunct("]") && p.cur().Kind != lexer.EOF {
			if p.atPunct("..") {
				p.advance()

				if p.cur().Kind == lexer.Ident {
					rest = p.advance().Text
				} else {
					rest = "_"
				}

				continue
			}

			elems = append(elems, p.parsePattern())

			if p.atPunct(",") {
				p.advance()
			}
		}

		p.expectPunct("]")

		return &ast.VectorPattern{Elems: elems, Rest: rest}
	case t.Kind == lexer.Ident:
		name := p.advance().Text

		if p.atPunct("::") {
			p.advance()

			variant := p.advance().Text
			payload := p.parseVariantPayload()

			return &ast.VariantPattern{TypeName: name, Variant: variant, Payload: payload}
		}

		if p.atPunct("{") {
			return p.parseStructPattern(name)
		}

		if p.atPunct("(") {
			payload := p.parseVariantPayload()

			return &ast.VariantPattern{Variant: name, Payload: payload}
		}

		return &ast.BindPattern{Name: name}
	default:
		p.errAt("expected pattern, found %q", t.Text)
		p.advance()

		return &ast.WildcardPattern{Base: ast.NewBase(p.span(start))}
	}
}

func (p *Parser) parseVariantPayload() []ast.Pattern {
	if !p.atPunct("(") {
		return nil
	}

	p.advance()

	var payload []ast.Pattern

	for !p.atPunct(")") && p.cur().Kind != lexer.EOF {
		payload = append(payload, p.parsePattern())

		if p.atPunct(",") {
			p.advance()
		}
	}

	p.expectPunct(")")

	return payload
}

func (p *Parser) parseStructPattern(name string) ast.Pattern {
	p.advance() // '{'

	var fields []ast.FieldPattern

	for !p.atPunct("}") && p.cur().Kind != lexer.EOF {
		fname := p.advance().Text

		var fpat ast.Pattern

		if p.atPunct(":") {
			p.advance()

			fpat = p.parsePattern()
		} else {
			fpat = &ast.BindPattern{Name: fname}
		}

		fields = append(fields, ast.FieldPattern{Name: fname, Pattern: fpat})

		if p.atPunct(",") {
			p.advance()
		}
	}

	p.expectPunct("}")

	return &ast.StructPattern{TypeName: name, Fields: fields}
}
