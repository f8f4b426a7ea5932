package compiler

import (
	"regexp"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"writec/internal/lexer"
	"writec/internal/parser"
	"writec/internal/sem"
)

func TestHelloWorld(t *testing.T) {
	out, err := Compile(`print "hi"`)
	be.Err(t, err, nil)
	be.True(t, strings.Contains(out, "int main() {"))
	be.True(t, strings.Contains(out, `cout << "hi" << endl;`))
}

func TestFullProgram(t *testing.T) {
	src := `
function factorial arguments: (n : int)
    set result to 1
    for i from 1 to n do
        set result to result * i
    end for
    return result
end function

make limit as int
set limit to 5
call factorial with arguments: (limit)
`
	out, err := Compile(src)
	be.Err(t, err, nil)
	be.True(t, strings.Contains(out, "auto factorial(int n) {"))
	be.True(t, strings.Contains(out, "factorial(limit);"))
}

func TestDeterministic(t *testing.T) {
	src := "make x as int\nset x to 2 + 3\nprint x"
	first, err := Compile(src)
	be.Err(t, err, nil)
	second, err := Compile(src)
	be.Err(t, err, nil)
	be.Equal(t, first, second)
}

func TestLexerErrorShape(t *testing.T) {
	_, err := Compile(`print "oops`)
	be.Err(t, err)
	_, ok := err.(*lexer.Error)
	be.True(t, ok)
	be.Equal(t, strings.Count(err.Error(), "\n"), 0)
}

func TestParserErrorShape(t *testing.T) {
	_, err := Compile("make 5")
	be.Err(t, err)
	_, ok := err.(*parser.Error)
	be.True(t, ok)
	be.Equal(t, strings.Count(err.Error(), "\n"), 0)
}

func TestSemanticErrorShape(t *testing.T) {
	_, err := Compile("print nope")
	be.Err(t, err)
	_, ok := err.(*sem.Error)
	be.True(t, ok)
	lines := strings.Split(err.Error(), "\n")
	be.Equal(t, len(lines), 3)
	be.True(t, strings.HasPrefix(lines[1], "    "))
	be.True(t, strings.HasSuffix(lines[2], "^"))
}

// Editors locate errors by scraping this pattern out of the message text.
func TestErrorPositionsScrapeable(t *testing.T) {
	re := regexp.MustCompile(`at (\d+):(\d+)`)
	for _, src := range []string{
		`print "oops`,
		"make 5",
		"print nope",
		"make xs as list of size 3\nset y to xs[3]",
	} {
		_, err := Compile(src)
		be.Err(t, err)
		m := re.FindStringSubmatch(err.Error())
		be.True(t, m != nil)
	}
}

func TestRedeclarationRejected(t *testing.T) {
	_, err := Compile("make x as int\nmake x as int")
	be.Err(t, err)
	be.True(t, strings.Contains(err.Error(), "variable 'x' already declared"))
}

func TestOutOfBoundsRejected(t *testing.T) {
	_, err := Compile("make xs as list of size 3\nset y to xs[3]")
	be.Err(t, err)
	be.True(t, strings.Contains(err.Error(), "index 3 out of bounds for 'xs' of size 3"))
}

func TestOmittedDefaultArgument(t *testing.T) {
	src := `
function scale arguments: (x : int, factor = 2.0)
    return x * factor
end function
call scale with arguments: (5)
`
	out, err := Compile(src)
	be.Err(t, err, nil)
	be.True(t, strings.Contains(out, "scale(5);"))
}

func TestFoldingVisibleInOutput(t *testing.T) {
	out, err := Compile("set x to 2 + 3 * 4\nprint x")
	be.Err(t, err, nil)
	be.True(t, strings.Contains(out, "auto x = 14;"))
}

func TestFreshStatePerCompile(t *testing.T) {
	// A function defined in one compile must not leak into the next.
	src := "function f arguments: ()\nend function\ncall f with arguments: ()"
	_, err := Compile(src)
	be.Err(t, err, nil)
	_, err = Compile("call f with arguments: ()")
	be.Err(t, err)
	be.True(t, strings.Contains(err.Error(), "undefined function 'f'"))
}
