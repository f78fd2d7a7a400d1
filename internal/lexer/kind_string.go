package lexer

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Ident:
		return "ident"
	case RawIdent:
		return "raw-ident"
	case Label:
		return "label"
	case Int:
		return "int"
	case Float:
		return "float"
	case Char:
		return "char"
	case String:
		return "string"
	case ByteLit:
		return "byte"
	case ByteString:
		return "byte-string"
	case Doc:
		return "doc"
	case Keyword:
		return "keyword"
	case Punct:
		return "punct"
	default:
		return "invalid"
	}
}
