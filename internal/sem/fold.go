package sem

import (
	"math"
	"strconv"

	"writec/internal/ast"
)

// foldProgram rewrites constant numeric subexpressions into literal nodes.
// Folding walks bottom-up: operands fold first, and an operation folds only
// when both sides ended up as number literals. Anything that cannot be
// evaluated cleanly (division by zero, a power with no real result) is left
// as written for the C++ compiler to deal with.
func (a *Analyzer) foldProgram(prog *ast.Program) {
	for _, fn := range prog.Functions {
		for i, s := range fn.Body {
			fn.Body[i] = a.foldStmt(s)
		}
	}
	for i, s := range prog.Statements {
		prog.Statements[i] = a.foldStmt(s)
	}
}

func (a *Analyzer) foldStmt(stmt ast.Stmt) ast.Stmt {
	switch s := stmt.(type) {
	case *ast.Assign:
		s.Expr = a.foldExpr(s.Expr)
	case *ast.IndexAssign:
		s.Index = a.foldExpr(s.Index)
		s.Expr = a.foldExpr(s.Expr)
	case *ast.Print:
		for i, v := range s.Values {
			s.Values[i] = a.foldExpr(v)
		}
	case *ast.Call:
		for _, arg := range s.Args {
			arg.Value = a.foldExpr(arg.Value)
		}
	case *ast.If:
		s.First.Cond = a.foldExpr(s.First.Cond)
		for i, b := range s.First.Body {
			s.First.Body[i] = a.foldStmt(b)
		}
		for _, br := range s.Elifs {
			br.Cond = a.foldExpr(br.Cond)
			for i, b := range br.Body {
				br.Body[i] = a.foldStmt(b)
			}
		}
		for i, b := range s.ElseBody {
			s.ElseBody[i] = a.foldStmt(b)
		}
	case *ast.While:
		s.Cond = a.foldExpr(s.Cond)
		for i, b := range s.Body {
			s.Body[i] = a.foldStmt(b)
		}
	case *ast.For:
		s.Start = a.foldExpr(s.Start)
		s.End = a.foldExpr(s.End)
		for i, b := range s.Body {
			s.Body[i] = a.foldStmt(b)
		}
	case *ast.Return:
		for i, v := range s.Values {
			s.Values[i] = a.foldExpr(v)
		}
	}
	return stmt
}

func (a *Analyzer) foldExpr(expr ast.Expr) ast.Expr {
	switch e := expr.(type) {
	case *ast.Binary:
		e.Left = a.foldExpr(e.Left)
		e.Right = a.foldExpr(e.Right)
		left, lok := e.Left.(*ast.Number)
		right, rok := e.Right.(*ast.Number)
		if lok && rok {
			if val, ok := evalBinary(e.Op, left.Value, right.Value); ok {
				return &ast.Number{Value: val, Pos: e.Pos}
			}
		}
	case *ast.Unary:
		e.Right = a.foldExpr(e.Right)
		if num, ok := e.Right.(*ast.Number); ok && (e.Op == "+" || e.Op == "-") {
			v, err := strconv.ParseFloat(num.Value, 64)
			if err == nil {
				if e.Op == "-" {
					v = -v
				}
				return &ast.Number{Value: numToLexeme(v), Pos: e.Pos}
			}
		}
	case *ast.Power:
		e.Base = a.foldExpr(e.Base)
		e.Exponent = a.foldExpr(e.Exponent)
		base, bok := e.Base.(*ast.Number)
		exp, eok := e.Exponent.(*ast.Number)
		if bok && eok {
			bv, berr := strconv.ParseFloat(base.Value, 64)
			ev, eerr := strconv.ParseFloat(exp.Value, 64)
			if berr == nil && eerr == nil {
				val := math.Pow(bv, ev)
				if !math.IsNaN(val) && !math.IsInf(val, 0) {
					return &ast.Number{Value: numToLexeme(val), Pos: e.Pos}
				}
			}
		}
	}
	return expr
}

func evalBinary(op, l, r string) (string, bool) {
	lf, lerr := strconv.ParseFloat(l, 64)
	rf, rerr := strconv.ParseFloat(r, 64)
	if lerr != nil || rerr != nil {
		return "", false
	}
	var val float64
	switch op {
	case "+", "add":
		val = lf + rf
	case "-", "subtract":
		val = lf - rf
	case "*", "multiply":
		val = lf * rf
	case "/", "divide":
		if rf == 0 {
			return "", false
		}
		val = lf / rf
	default:
		return "", false
	}
	return numToLexeme(val), true
}

// numToLexeme renders a folded value back into literal text: whole values
// drop the fractional part, everything else uses the shortest round-trip
// form.
func numToLexeme(val float64) string {
	if val == math.Trunc(val) {
		return strconv.FormatFloat(val, 'f', -1, 64)
	}
	return strconv.FormatFloat(val, 'g', -1, 64)
}

// literalIntValue reports the value of an integer literal node. Float
// literals and non-literal expressions have no usable value at analysis
// time.
func literalIntValue(expr ast.Expr) (int, bool) {
	if num, ok := expr.(*ast.Number); ok && !isFloatLiteral(num.Value) {
		if v, err := strconv.Atoi(num.Value); err == nil {
			return v, true
		}
	}
	return 0, false
}
