package lexer

import "fmt"

// Error is a lexical error at a known source position.
type Error struct {
	Msg  string
	Line int
	Col  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %d:%d", e.Msg, e.Line, e.Col)
}

// Lexer turns Write source text into a flat token slice. A Lexer is
// single-use; build a new one per compile.
type Lexer struct {
	src    string
	pos    int
	start  int
	line   int
	col    int
	tokens []Token
}

func New(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Scan tokenizes the whole input. The returned slice always ends with exactly
// one EOF token.
func (l *Lexer) Scan() ([]Token, error) {
	for !l.eof() {
		l.start = l.pos
		ch := l.advance()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r':
		case ch == '\n':
			l.line++
			l.col = 1
		case ch == '#':
			l.skipLineComment()
		case ch == '"':
			if err := l.scanString(); err != nil {
				return nil, err
			}
		case isDigit(ch):
			l.scanNumber()
		case isIdentStart(ch):
			l.scanIdent()
		case ch == '=':
			if l.match('=') {
				l.add(TokenEqEq)
			} else {
				l.add(TokenEq)
			}
		case ch == '!':
			if l.match('=') {
				l.add(TokenNotEq)
			} else {
				l.add(TokenBang)
			}
		case ch == '>':
			if l.match('=') {
				l.add(TokenGTE)
			} else {
				l.add(TokenGT)
			}
		case ch == '<':
			if l.match('=') {
				l.add(TokenLTE)
			} else {
				l.add(TokenLT)
			}
		case ch == '&':
			l.add(TokenAmp)
		case ch == '|':
			l.add(TokenPipe)
		case ch == '+':
			l.add(TokenPlus)
		case ch == '-':
			l.add(TokenMinus)
		case ch == '*':
			l.add(TokenStar)
		case ch == '/':
			l.add(TokenSlash)
		case ch == '^':
			l.add(TokenCaret)
		case ch == '(':
			l.add(TokenLParen)
		case ch == ')':
			l.add(TokenRParen)
		case ch == '[':
			l.add(TokenLBracket)
		case ch == ']':
			l.add(TokenRBracket)
		case ch == ',':
			l.add(TokenComma)
		case ch == ':':
			l.add(TokenColon)
		default:
			return nil, &Error{Msg: fmt.Sprintf("unexpected character %q", ch), Line: l.line, Col: l.col}
		}
	}
	l.tokens = append(l.tokens, Token{Kind: TokenEOF, Line: l.line, Col: l.col})
	return l.tokens, nil
}

func (l *Lexer) add(kind TokenKind) {
	l.addLexeme(kind, l.src[l.start:l.pos])
}

func (l *Lexer) addLexeme(kind TokenKind, lexeme string) {
	l.tokens = append(l.tokens, Token{Kind: kind, Lexeme: lexeme, Line: l.line, Col: l.col})
}

func (l *Lexer) skipLineComment() {
	for !l.eof() && l.peek() != '\n' {
		l.advance()
	}
}

// scanString is called after the opening quote. The lexeme is the raw content
// between the quotes with escape sequences left intact; the generator passes
// them through to the target language verbatim.
func (l *Lexer) scanString() error {
	escaped := false
	for !l.eof() {
		ch := l.advance()
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			escaped = true
		case '"':
			l.addLexeme(TokenString, l.src[l.start+1:l.pos-1])
			return nil
		case '\n':
			// Count the line before failing so the reported position is
			// where the scan actually stopped.
			l.line++
			l.col = 1
			return &Error{Msg: "unterminated string", Line: l.line, Col: l.col}
		}
	}
	return &Error{Msg: "unterminated string", Line: l.line, Col: l.col}
}

func (l *Lexer) scanNumber() {
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	l.add(TokenNumber)
}

func (l *Lexer) scanIdent() {
	for isIdentPart(l.peek()) {
		l.advance()
	}
	word := l.src[l.start:l.pos]
	if keywords[word] {
		l.addLexeme(TokenKeyword, word)
	} else {
		l.addLexeme(TokenIdent, word)
	}
}

func (l *Lexer) advance() byte {
	ch := l.src[l.pos]
	l.pos++
	l.col++
	return ch
}

func (l *Lexer) match(expected byte) bool {
	if l.eof() || l.src[l.pos] != expected {
		return false
	}
	l.pos++
	l.col++
	return true
}

func (l *Lexer) peek() byte {
	if l.eof() {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekNext() byte {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

func (l *Lexer) eof() bool {
	return l.pos >= len(l.src)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
