package sem

import (
	"regexp"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"writec/internal/ast"
	"writec/internal/lexer"
	"writec/internal/parser"
)

func analyze(t *testing.T, src string) (*ast.Program, error) {
	t.Helper()
	tokens, err := lexer.New(src).Scan()
	be.Err(t, err, nil)
	prog, err := parser.New(tokens).Parse()
	be.Err(t, err, nil)
	return prog, New(src).Analyze(prog)
}

func analyzeOK(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := analyze(t, src)
	be.Err(t, err, nil)
	return prog
}

func analyzeErr(t *testing.T, src string) *Error {
	t.Helper()
	_, err := analyze(t, src)
	be.Err(t, err)
	se, ok := err.(*Error)
	be.True(t, ok)
	return se
}

func TestUndefinedVariable(t *testing.T) {
	se := analyzeErr(t, "print nope")
	be.True(t, strings.HasPrefix(se.Msg, "undefined variable 'nope'"))
}

func TestUndefinedVariableSuggestion(t *testing.T) {
	se := analyzeErr(t, "set total to 1\nprint totl")
	be.True(t, strings.Contains(se.Msg, "did you mean 'total'?"))
}

func TestRedeclareSameScope(t *testing.T) {
	se := analyzeErr(t, "make x as int\nmake x as int")
	be.Equal(t, se.Msg, "variable 'x' already declared")
	be.Equal(t, se.Line, 2)
}

func TestShadowInInnerBlock(t *testing.T) {
	analyzeOK(t, `
make x as int
for i from 1 to 3 do
    make x as float
end for
`)
}

func TestAssignTypePromotion(t *testing.T) {
	analyzeOK(t, "make x as float\nset x to 5")
}

func TestAssignTypeMismatch(t *testing.T) {
	se := analyzeErr(t, "make s as string\nset s to 5")
	be.Equal(t, se.Msg, "cannot assign int to string")
}

func TestStringArithmeticRejected(t *testing.T) {
	se := analyzeErr(t, `set x to "a" + 1`)
	be.True(t, strings.Contains(se.Msg, "arithmetic '+' requires numeric operands"))
}

func TestInputRequiresDeclarationWhenUntyped(t *testing.T) {
	se := analyzeErr(t, "input x")
	be.Equal(t, se.Msg, "variable 'x' not declared before input")
	analyzeOK(t, "make x as int\ninput x")
	analyzeOK(t, "input y as string")
}

func TestIndexBoundsLiteral(t *testing.T) {
	se := analyzeErr(t, "make xs as list of size 3\nset xs[3] to 1")
	be.Equal(t, se.Msg, "index 3 out of bounds for 'xs' of size 3")
	analyzeOK(t, "make xs as list of size 3\nset xs[2] to 1")
}

func TestIndexRequiresContainer(t *testing.T) {
	se := analyzeErr(t, "make x as int\nprint x[0]")
	be.Equal(t, se.Msg, "indexing requires list/array (got int)")
}

func TestReturnOutsideFunction(t *testing.T) {
	se := analyzeErr(t, "return 1")
	be.Equal(t, se.Msg, "'return' outside function")
}

func TestDuplicateFunction(t *testing.T) {
	src := "function f arguments: ()\nend function\nfunction f arguments: ()\nend function"
	se := analyzeErr(t, src)
	be.Equal(t, se.Msg, "function 'f' already defined")
}

func TestCallBeforeDefinition(t *testing.T) {
	analyzeOK(t, `
call f with arguments: (1)
function f arguments: (x : int)
    print x
end function
`)
}

func TestCallUnknownFunctionListsKnown(t *testing.T) {
	src := "function f arguments: ()\nend function\ncall g with arguments: ()"
	se := analyzeErr(t, src)
	be.Equal(t, se.Msg, "undefined function 'g'. known: f")
}

func TestCallArgChecks(t *testing.T) {
	def := "function f arguments: (a : int, b : int = 2)\nprint a\nend function\n"
	se := analyzeErr(t, def+"call f with arguments: (1, 2, 3)")
	be.Equal(t, se.Msg, "too many arguments for 'f'")

	se = analyzeErr(t, def+"call f with arguments: (c=1)")
	be.Equal(t, se.Msg, "unknown parameter 'c' for function 'f'")

	se = analyzeErr(t, def+"call f with arguments: (a=1, a=2)")
	be.Equal(t, se.Msg, "duplicate argument for 'a'")

	se = analyzeErr(t, def+"call f with arguments: ()")
	be.Equal(t, se.Msg, "missing argument for 'a' in call to 'f'")

	se = analyzeErr(t, def+`call f with arguments: ("x")`)
	be.Equal(t, se.Msg, "cannot assign string to int")

	analyzeOK(t, def+"call f with arguments: (b=3, a=1)")
}

func TestParamTypeInferredFromDefault(t *testing.T) {
	prog := analyzeOK(t, "function f arguments: (x = 1.5)\nprint x\nend function")
	be.Equal(t, prog.Functions[0].Params[0].Type, "float")
}

func TestDefaultMayUseEarlierParam(t *testing.T) {
	analyzeOK(t, "function f arguments: (a : int, b = a + 1)\nprint b\nend function")
}

func TestDuplicateParameter(t *testing.T) {
	se := analyzeErr(t, "function f arguments: (a, a)\nend function")
	be.Equal(t, se.Msg, "duplicate parameter 'a'")
}

func TestConstantFolding(t *testing.T) {
	prog := analyzeOK(t, "set x to 2 + 3 * 4")
	as := prog.Statements[0].(*ast.Assign)
	num, ok := as.Expr.(*ast.Number)
	be.True(t, ok)
	be.Equal(t, num.Value, "14")
}

func TestFoldWholeValuesDropFraction(t *testing.T) {
	prog := analyzeOK(t, "set x to 5.0 + 3.0")
	as := prog.Statements[0].(*ast.Assign)
	be.Equal(t, as.Expr.(*ast.Number).Value, "8")
}

func TestFoldWordOperators(t *testing.T) {
	prog := analyzeOK(t, "set x to multiply 6 and 7")
	as := prog.Statements[0].(*ast.Assign)
	be.Equal(t, as.Expr.(*ast.Number).Value, "42")
}

func TestFoldPower(t *testing.T) {
	prog := analyzeOK(t, "set x to 2 ^ 10")
	as := prog.Statements[0].(*ast.Assign)
	be.Equal(t, as.Expr.(*ast.Number).Value, "1024")
}

func TestFoldSkipsDivisionByZero(t *testing.T) {
	prog := analyzeOK(t, "set x to 1 / 0")
	as := prog.Statements[0].(*ast.Assign)
	_, ok := as.Expr.(*ast.Binary)
	be.True(t, ok)
}

func TestFoldIdempotent(t *testing.T) {
	src := "set x to 2 + 3"
	prog := analyzeOK(t, src)
	err := New(src).Analyze(prog)
	be.Err(t, err, nil)
	as := prog.Statements[0].(*ast.Assign)
	be.Equal(t, as.Expr.(*ast.Number).Value, "5")
}

func TestUnknownFunctionSuggestion(t *testing.T) {
	src := "function greet arguments: ()\nend function\ncall gret with arguments: ()"
	se := analyzeErr(t, src)
	be.True(t, strings.Contains(se.Msg, "did you mean 'greet'?"))
}

func TestUnknownParameterSuggestion(t *testing.T) {
	src := "function f arguments: (count : int = 0)\nend function\ncall f with arguments: (cout=1)"
	se := analyzeErr(t, src)
	be.True(t, strings.Contains(se.Msg, "unknown parameter 'cout'"))
	be.True(t, strings.Contains(se.Msg, "did you mean 'count'?"))
}

func TestFoldUnaryNegation(t *testing.T) {
	prog := analyzeOK(t, "set x to -(2 + 3)")
	as := prog.Statements[0].(*ast.Assign)
	be.Equal(t, as.Expr.(*ast.Number).Value, "-5")
}

func TestErrorCaretPointsAtColumn(t *testing.T) {
	se := analyzeErr(t, "print nope")
	rendered := se.Error()
	lines := strings.Split(rendered, "\n")
	be.Equal(t, len(lines), 3)
	be.Equal(t, lines[1], "    print nope")
	caret := strings.TrimSuffix(lines[2], "^")
	be.Equal(t, len(caret)-4, se.Col-1)
}

func TestErrorPositionScrapeable(t *testing.T) {
	se := analyzeErr(t, "make x as int\nset x to y")
	re := regexp.MustCompile(`at (\d+):(\d+)`)
	m := re.FindStringSubmatch(se.Error())
	be.True(t, m != nil)
	be.Equal(t, m[1], "2")
}
