// Package parser builds a syntax tree for items, statements, expressions, and
// patterns (spec.md §4.2). It recovers from syntax errors by synchronizing on
// statement and item boundaries so one error does not cascade, matching the
// teacher's errors.Join-based diagnostic collection in its text assembler.
package parser

import (
	"strconv"
	"strings"

	"github.com/wisp-lang/wisp/internal/ast"
	"github.com/wisp-lang/wisp/internal/diag"
	"github.com/wisp-lang/wisp/internal/lexer"
)

// Parser consumes a token stream and produces a syntax tree, collecting
// diagnostics rather than panicking on malformed input.
type Parser struct {
	file     string
	toks     []lexer.Token
	pos      int
	bag      *diag.Bag
	noStruct bool // suppresses struct-literal parsing inside if/while/match/for conditions
}

// Parse lexes and parses one source file, returning the resulting tree. Lexical
// errors become Lexical diagnostics in bag; the returned *ast.File may be
// partial if bag.HasErrors().
func Parse(path, src string, bag *diag.Bag) *ast.File {
	lx := lexer.New(src)
	toks, _, errs := lx.Tokens()

	for _, e := range errs {
		bag.Errorf(diag.Span{File: path}, diag.Lexical, "%s", e.Error())
	}

	p := &Parser{file: path, toks: toks, bag: bag}

	return p.parseFile()
}

func (p *Parser) span(start int) diag.Span {
	end := start
	if p.pos > 0 {
		end = p.toks[p.pos-1].End
	}

	return diag.Span{File: p.file, Start: start, End: end}
}

func (p *Parser) cur() lexer.Token { return p.toks[p.pos] }

func (p *Parser) at(kind lexer.Kind, text string) bool {
	t := p.cur()
	return t.Kind == kind && (text == "" || t.Text == text)
}

func (p *Parser) atKeyword(kw string) bool { return p.at(lexer.Keyword, kw) }
func (p *Parser) atPunct(p2 string) bool   { return p.at(lexer.Punct, p2) }

func (p *Parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if t.Kind != lexer.EOF {
		p.pos++
	}

	return t
}

func (p *Parser) expectPunct(s string) bool {
	if p.atPunct(s) {
		p.advance()
		return true
	}

	p.errAt("expected %q, found %q", s, p.cur().Text)

	return false
}

func (p *Parser) errAt(format string, args ...any) {
	p.bag.Errorf(diag.Span{File: p.file, Start: p.cur().Start, End: p.cur().End}, diag.Syntactic, format, args...)
}

// syncTo advances until it finds one of the given punctuators/keywords or EOF,
// the token-synchronizing error recovery spec.md §4.2 requires.
func (p *Parser) syncTo(stops ...string) {
	for p.cur().Kind != lexer.EOF {
		t := p.cur()

		for _, s := range stops {
			if t.Text == s {
				return
			}
		}

		p.advance()
	}
}

func (p *Parser) parseFile() *ast.File {
	f := &ast.File{Path: p.file}

	for p.cur().Kind != lexer.EOF {
		it := p.parseItem()
		if it != nil {
			f.Items = append(f.Items, it)
		} else {
			p.syncTo("fn", "struct", "enum", "impl", "mod", "use", "const")
		}
	}

	return f
}

func (p *Parser) parseAttributes() []ast.Attribute {
	var attrs []ast.Attribute

	for p.atPunct("#") {
		start := p.cur().Start
		p.advance()
		p.expectPunct("[")

		name := ""
		if p.cur().Kind == lexer.Ident || p.cur().Kind == lexer.Keyword {
			name = p.advance().Text
		}

		var args []string

		if p.atPunct("(") {
			p.advance()

			for !p.atPunct(")") && p.cur().Kind != lexer.EOF {
				args = append(args, p.advance().Text)

				if p.atPunct(",") {
					p.advance()
				}
			}

			p.expectPunct(")")
		}

		p.expectPunct("]")
		attrs = append(attrs, ast.Attribute{Name: name, Args: args, Sp: p.span(start)})
	}

	return attrs
}

func (p *Parser) parseVisibility() ast.Visibility {
	if p.atKeyword("pub") {
		p.advance()

		if p.atPunct("(") {
			p.advance()
			p.advance() // "crate" or similar
			p.expectPunct(")")

			return ast.PubCrate
		}

		return ast.Pub
	}

	return ast.Priv
}

func (p *Parser) parseItem() ast.Item {
	attrs := p.parseAttributes()
	start := p.cur().Start
	vis := p.parseVisibility()

	switch {
	case p.atKeyword("fn") || p.atKeyword("async"):
		return p.parseFn(attrs, vis, start)
	case p.atKeyword("struct"):
		return p.parseStruct(attrs, vis, start)
	case p.atKeyword("enum"):
		return p.parseEnum(attrs, vis, start)
	case p.atKeyword("impl"):
		return p.parseImpl(start)
	case p.atKeyword("mod"):
		return p.parseMod(vis, start)
	case p.atKeyword("use"):
		return p.parseUse(start)
	case p.atKeyword("const"):
		return p.parseConstItem(vis, start)
	case p.atKeyword("let"):
		s := p.parseLetStmt(start).(*ast.LetStmt)
		return &ast.LetItem{Pattern: s.Pattern, Mut: s.Mut, Value: s.Value, Sp: s.Sp}
	default:
		// Script mode (spec.md §6 "run" with no subcommand, and the REPL):
		// a top-level expression is itself a valid item, evaluated in
		// declaration order alongside fn/struct/etc. definitions.
		x := p.parseExpr()
		if x == nil {
			return nil
		}

		if p.atPunct(";") {
			p.advance()
		}

		return &ast.ExprItem{X: x, Sp: p.span(start)}
	}
}

func (p *Parser) parseFn(attrs []ast.Attribute, vis ast.Visibility, start int) *ast.FnItem {
	isAsync := false
	if p.atKeyword("async") {
		isAsync = true

		p.advance()
	}

	p.advance() // 'fn'

	name := ""
	if p.cur().Kind == lexer.Ident {
		name = p.advance().Text
	} else {
		p.errAt("expected function name")
	}

	p.expectPunct("(")

	var params []ast.Param

	for !p.atPunct(")") && p.cur().Kind != lexer.EOF {
		if p.cur().Kind != lexer.Ident && !p.atKeyword("self") {
			p.errAt("expected parameter name, found %q", p.cur().Text)

			break
		}

		pstart := p.cur().Start
		pname := p.advance().Text
		params = append(params, ast.Param{Name: pname, Sp: p.span(pstart)})

		if p.atPunct(",") {
			p.advance()
		}
	}

	p.expectPunct(")")

	body := p.parseBlock()

	return &ast.FnItem{
		Vis: vis, Attrs: attrs, Name: name, Params: params, IsAsync: isAsync,
		Body: body, Sp: p.span(start),
	}
}

func (p *Parser) parseStruct(attrs []ast.Attribute, vis ast.Visibility, start int) *ast.StructItem {
	p.advance() // 'struct'

	name := p.advance().Text

	var fields []ast.FieldDecl

	if p.atPunct("{") {
		p.advance()

		for !p.atPunct("}") && p.cur().Kind != lexer.EOF {
			fstart := p.cur().Start
			fname := p.advance().Text
			fields = append(fields, ast.FieldDecl{Name: fname, Sp: p.span(fstart)})

			if p.atPunct(",") {
				p.advance()
			}
		}

		p.expectPunct("}")
	} else {
		p.expectPunct(";")
	}

	return &ast.StructItem{Vis: vis, Attrs: attrs, Name: name, Fields: fields, Sp: p.span(start)}
}

func (p *Parser) parseEnum(attrs []ast.Attribute, vis ast.Visibility, start int) *ast.EnumItem {
	p.advance() // 'enum'
	name := p.advance().Text

	p.expectPunct("{")

	var variants []ast.VariantDecl

	for !p.atPunct("}") && p.cur().Kind != lexer.EOF {
		vstart := p.cur().Start
		vname := p.advance().Text

		var fields []ast.FieldDecl

		if p.atPunct("(") {
			p.advance()

			for !p.atPunct(")") && p.cur().Kind != lexer.EOF {
				fstart := p.cur().Start
				fields = append(fields, ast.FieldDecl{Name: p.advance().Text, Sp: p.span(fstart)})

				if p.atPunct(",") {
					p.advance()
				}
			}

			p.expectPunct(")")
		}

		variants = append(variants, ast.VariantDecl{Name: vname, Fields: fields, Sp: p.span(vstart)})

		if p.atPunct(",") {
			p.advance()
		}
	}

	p.expectPunct("}")

	return &ast.EnumItem{Vis: vis, Attrs: attrs, Name: name, Variants: variants, Sp: p.span(start)}
}

func (p *Parser) parseImpl(start int) *ast.ImplItem {
	p.advance() // 'impl'
	typeName := p.advance().Text

	p.expectPunct("{")

	var methods []*ast.FnItem

	for !p.atPunct("}") && p.cur().Kind != lexer.EOF {
		attrs := p.parseAttributes()
		mstart := p.cur().Start
		vis := p.parseVisibility()

		if p.atKeyword("fn") || p.atKeyword("async") {
			methods = append(methods, p.parseFn(attrs, vis, mstart))
		} else {
			p.errAt("expected method in impl block")
			p.syncTo("fn", "}")
		}
	}

	p.expectPunct("}")

	return &ast.ImplItem{TypeName: typeName, Methods: methods, Sp: p.span(start)}
}

func (p *Parser) parseMod(vis ast.Visibility, start int) *ast.ModItem {
	p.advance() // 'mod'
	name := p.advance().Text

	p.expectPunct("{")

	var items []ast.Item

	for !p.atPunct("}") && p.cur().Kind != lexer.EOF {
		it := p.parseItem()
		if it != nil {
			items = append(items, it)
		} else {
			p.syncTo("fn", "struct", "enum", "impl", "mod", "use", "const", "}")
		}
	}

	p.expectPunct("}")

	return &ast.ModItem{Vis: vis, Name: name, Items: items, Sp: p.span(start)}
}

func (p *Parser) parseUse(start int) *ast.UseItem {
	p.advance() // 'use'

	var path []string

	for {
		path = append(path, p.advance().Text)

		if p.atPunct("::") {
			p.advance()

			continue
		}

		break
	}

	alias := ""

	if p.atKeyword("as") {
		p.advance()
		alias = p.advance().Text
	}

	p.expectPunct(";")

	return &ast.UseItem{Path: path, Alias: alias, Sp: p.span(start)}
}

func (p *Parser) parseConstItem(vis ast.Visibility, start int) *ast.ConstItem {
	p.advance() // 'const'
	name := p.advance().Text
	p.expectPunct("=")
	value := p.parseExpr()
	p.expectPunct(";")

	return &ast.ConstItem{Vis: vis, Name: name, Value: value, Sp: p.span(start)}
}

// --- Numeric / string literal conversion helpers ---------------------------

func parseIntText(text string) int64 {
	clean := strings.ReplaceAll(text, "_", "")
	base := 10

	switch {
	case strings.HasPrefix(clean, "0x"):
		base = 16
		clean = clean[2:]
	case strings.HasPrefix(clean, "0o"):
		base = 8
		clean = clean[2:]
	case strings.HasPrefix(clean, "0b"):
		base = 2
		clean = clean[2:]
	}

	n, _ := strconv.ParseInt(clean, base, 64)

	return n
}

func parseFloatText(text string) float64 {
	clean := strings.ReplaceAll(text, "_", "")
	f, _ := strconv.ParseFloat(clean, 64)

	return f
}

func unescapeString(lit string) string {
	// lit includes surrounding quotes.
	if len(lit) >= 2 {
		lit = lit[1 : len(lit)-1]
	}

	var b strings.Builder

	for i := 0; i < len(lit); i++ {
		if lit[i] != '\\' || i+1 >= len(lit) {
			b.WriteByte(lit[i])

			continue
		}

		i++

		switch lit[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '0':
			b.WriteByte(0)
		case '\\', '\'', '"':
			b.WriteByte(lit[i])
		default:
			b.WriteByte(lit[i])
		}
	}

	return b.String()
}
