package lexer

import "fmt"

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenNumber
	TokenString
	TokenIdent
	TokenKeyword
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenCaret
	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenComma
	TokenColon
	TokenBang
	TokenAmp
	TokenPipe
	TokenEq
	TokenEqEq
	TokenNotEq
	TokenGT
	TokenLT
	TokenGTE
	TokenLTE
)

// Token is one lexical unit. Keyword tokens keep their lexeme so the parser
// can disambiguate the phrase grammar on the exact word.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Line   int
	Col    int
}

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "eof"
	case TokenNumber:
		return "number"
	case TokenString:
		return "string"
	case TokenIdent:
		return "ident"
	case TokenKeyword:
		return "keyword"
	case TokenPlus:
		return "+"
	case TokenMinus:
		return "-"
	case TokenStar:
		return "*"
	case TokenSlash:
		return "/"
	case TokenCaret:
		return "^"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	case TokenLBracket:
		return "["
	case TokenRBracket:
		return "]"
	case TokenComma:
		return ","
	case TokenColon:
		return ":"
	case TokenBang:
		return "!"
	case TokenAmp:
		return "&"
	case TokenPipe:
		return "|"
	case TokenEq:
		return "="
	case TokenEqEq:
		return "=="
	case TokenNotEq:
		return "!="
	case TokenGT:
		return ">"
	case TokenLT:
		return "<"
	case TokenGTE:
		return ">="
	case TokenLTE:
		return "<="
	default:
		return fmt.Sprintf("token(%d)", int(k))
	}
}

// keywords is the reserved word set. A matching identifier always lexes as
// TokenKeyword; the parser decides what each word means in context.
// "aguments" is a misspelling kept so old sources keep parsing.
var keywords = map[string]bool{
	"set":          true,
	"to":           true,
	"print":        true,
	"make":         true,
	"input":        true,
	"as":           true,
	"of":           true,
	"size":         true,
	"if":           true,
	"then":         true,
	"else":         true,
	"end":          true,
	"while":        true,
	"do":           true,
	"for":          true,
	"from":         true,
	"and":          true,
	"or":           true,
	"not":          true,
	"is":           true,
	"greater":      true,
	"less":         true,
	"equal":        true,
	"than":         true,
	"add":          true,
	"subtract":     true,
	"sub":          true,
	"multiply":     true,
	"divide":       true,
	"power":        true,
	"int":          true,
	"float":        true,
	"string":       true,
	"bool":         true,
	"list":         true,
	"array":        true,
	"function":     true,
	"func":         true,
	"end_function": true,
	"end_func":     true,
	"call":         true,
	"with":         true,
	"arguments":    true,
	"aguments":     true,
	"return":       true,
}

// IsKeyword reports whether word is part of the reserved set.
func IsKeyword(word string) bool {
	return keywords[word]
}
