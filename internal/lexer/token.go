// Package lexer consumes UTF-8 source and emits a token stream tagged with
// half-open byte spans (spec.md §4.1).
package lexer

import "fmt"

// Kind classifies a token.
type Kind uint8

const (
	EOF Kind = iota
	Ident
	RawIdent
	Label // 'name, a loop label
	Int
	Float
	Char
	String
	ByteLit
	ByteString
	Doc     // doc comment token, e.g. "/// ..."
	Keyword
	Punct
	Invalid
)

// Token is one lexical unit.
type Token struct {
	Kind  Kind
	Text  string // literal text, or keyword/punctuator spelling
	Start int
	End   int
}

func (t Token) String() string {
	return fmt.Sprintf("%v(%q)@%d:%d", t.Kind, t.Text, t.Start, t.End)
}

// Keywords recognized by the lexer. Anything else lexes as Ident.
var Keywords = map[string]bool{
	"fn": true, "let": true, "mut": true, "const": true, "struct": true,
	"enum": true, "impl": true, "mod": true, "use": true, "pub": true,
	"if": true, "else": true, "while": true, "loop": true, "for": true, "in": true,
	"match": true, "break": true, "continue": true, "return": true, "yield": true,
	"async": true, "await": true, "true": true, "false": true, "self": true,
	"Self": true, "as": true, "crate": true, "move": true, "ref": true,
}

// TriviaKind classifies whitespace and comment trivia, preserved in a sibling
// channel so the formatter can round-trip source exactly (spec.md §4.1).
type TriviaKind uint8

const (
	Whitespace TriviaKind = iota
	LineComment
	BlockComment
)

// Trivia is one piece of skipped-but-recorded input.
type Trivia struct {
	Kind       TriviaKind
	Start, End int
}
