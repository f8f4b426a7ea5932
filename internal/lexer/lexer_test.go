package lexer

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func kinds(t *testing.T, src string) []TokenKind {
	t.Helper()
	tokens, err := New(src).Scan()
	be.Err(t, err, nil)
	out := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func TestAssignmentAndAdd(t *testing.T) {
	got := kinds(t, "set x to add y and 3")
	want := []TokenKind{
		TokenKeyword, // set
		TokenIdent,   // x
		TokenKeyword, // to
		TokenKeyword, // add
		TokenIdent,   // y
		TokenKeyword, // and
		TokenNumber,  // 3
		TokenEOF,
	}
	be.Equal(t, got, want)
}

func TestIfMixedOps(t *testing.T) {
	src := `
if x is greater than 2 and y <= 5 then
    print "ok"
end if
`
	got := kinds(t, src)
	want := []TokenKind{
		TokenKeyword, // if
		TokenIdent,   // x
		TokenKeyword, // is
		TokenKeyword, // greater
		TokenKeyword, // than
		TokenNumber,  // 2
		TokenKeyword, // and
		TokenIdent,   // y
		TokenLTE,
		TokenNumber, // 5
	}
	be.Equal(t, got[:10], want)
	be.Equal(t, got[len(got)-1], TokenEOF)
}

func TestSymbolOperators(t *testing.T) {
	got := kinds(t, "while !(a == 0 | b == 0) do\nend while")
	be.Equal(t, got[1], TokenBang)
	be.Equal(t, got[2], TokenLParen)
	be.Equal(t, got[4], TokenEqEq)
	be.Equal(t, got[6], TokenPipe)
	be.Equal(t, got[len(got)-1], TokenEOF)
}

func TestTwoCharOperatorsGreedy(t *testing.T) {
	tokens, err := New("== != >= <= = > <").Scan()
	be.Err(t, err, nil)
	want := []TokenKind{TokenEqEq, TokenNotEq, TokenGTE, TokenLTE, TokenEq, TokenGT, TokenLT, TokenEOF}
	got := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		got[i] = tok.Kind
	}
	be.Equal(t, got, want)
}

func TestPowerAndEquals(t *testing.T) {
	got := kinds(t, "set p = x ^ 2")
	be.Equal(t, got[2], TokenEq)
	be.Equal(t, got[4], TokenCaret)
}

func TestNumbers(t *testing.T) {
	tokens, err := New("1 3.14").Scan()
	be.Err(t, err, nil)
	be.Equal(t, tokens[0].Lexeme, "1")
	be.Equal(t, tokens[1].Lexeme, "3.14")
	// A dot not followed by a digit is not part of a number, and nothing
	// else accepts it either.
	_, err = New("2.").Scan()
	be.Err(t, err)
}

func TestStringLexemeExcludesQuotes(t *testing.T) {
	tokens, err := New(`print "hello there"`).Scan()
	be.Err(t, err, nil)
	be.Equal(t, tokens[1].Kind, TokenString)
	be.Equal(t, tokens[1].Lexeme, "hello there")
}

func TestComments(t *testing.T) {
	got := kinds(t, "# a comment\nprint 1 # trailing\nprint 2")
	want := []TokenKind{TokenKeyword, TokenNumber, TokenKeyword, TokenNumber, TokenEOF}
	be.Equal(t, got, want)
}

func TestLinePositions(t *testing.T) {
	tokens, err := New("print 1\nprint 2").Scan()
	be.Err(t, err, nil)
	be.Equal(t, tokens[0].Line, 1)
	be.Equal(t, tokens[2].Line, 2)
	be.Equal(t, tokens[2].Col, 6)
}

func TestUnterminatedString(t *testing.T) {
	_, err := New(`print "oops`).Scan()
	be.Err(t, err)
	le, ok := err.(*Error)
	be.True(t, ok)
	be.Equal(t, le.Msg, "unterminated string")
	be.True(t, strings.Contains(le.Error(), "at 1:"))
}

func TestUnterminatedStringAtNewline(t *testing.T) {
	_, err := New("print \"oops\nprint 2").Scan()
	be.Err(t, err)
	le := err.(*Error)
	be.Equal(t, le.Line, 2)
	be.Equal(t, le.Col, 1)
}

func TestUnexpectedCharacter(t *testing.T) {
	_, err := New("print @").Scan()
	be.Err(t, err)
	le := err.(*Error)
	be.True(t, strings.HasPrefix(le.Msg, "unexpected character"))
}

func TestFunctionTokens(t *testing.T) {
	got := kinds(t, "function \"f\" (a:int, b, c=\"hi\")\nend function")
	be.Equal(t, got[0], TokenKeyword)
	be.Equal(t, got[1], TokenString)
	be.Equal(t, got[4], TokenColon)
	be.Equal(t, got[len(got)-3], TokenKeyword) // end
	be.Equal(t, got[len(got)-2], TokenKeyword) // function
}

func TestExactlyOneEOF(t *testing.T) {
	for _, src := range []string{"", "print 1", "set x to 1\nset y to 2\n", "# only a comment"} {
		tokens, err := New(src).Scan()
		be.Err(t, err, nil)
		count := 0
		for _, tok := range tokens {
			if tok.Kind == TokenEOF {
				count++
			}
		}
		be.Equal(t, count, 1)
		be.Equal(t, tokens[len(tokens)-1].Kind, TokenEOF)
	}
}

func TestLegacyMisspelledKeyword(t *testing.T) {
	got := kinds(t, "call f with aguments (1)")
	be.Equal(t, got[2], TokenKeyword)
	be.Equal(t, got[3], TokenKeyword)
}
