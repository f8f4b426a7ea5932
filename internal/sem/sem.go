// Package sem analyzes a parsed Write program: scope tracking across nested
// blocks, type tagging and compatibility checks, call signature validation,
// and constant folding of numeric literal expressions. Analysis stops at the
// first error.
package sem

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"writec/internal/ast"
)

// Error is a semantic diagnostic. When the offending node carries a position
// inside the source, the rendered error includes the source line and a caret
// under the offending column.
type Error struct {
	Msg     string
	Line    int
	Col     int
	SrcLine string
	HasLoc  bool
}

func (e *Error) Error() string {
	if !e.HasLoc {
		return e.Msg
	}
	indent := e.Col - 1
	if indent < 0 {
		indent = 0
	}
	caret := strings.Repeat(" ", indent) + "^"
	return fmt.Sprintf("%s at %d:%d\n    %s\n    %s", e.Msg, e.Line, e.Col, e.SrcLine, caret)
}

type typeInfo struct {
	name    string // int, float, string, bool, list, array, auto
	size    int    // container size when known from a literal
	hasSize bool
}

type paramInfo struct {
	name       string
	typ        string
	hasDefault bool
}

type funcSig struct {
	name   string
	params []paramInfo
}

func isNumericType(t string) bool {
	return t == "int" || t == "float" || t == "auto" || t == ""
}

func isLogicType(t string) bool {
	return t == "int" || t == "float" || t == "bool" || t == "auto" || t == ""
}

func isKnownType(t string) bool {
	switch t {
	case "int", "float", "string", "bool", "list", "array":
		return true
	}
	return false
}

func isContainerType(t string) bool {
	return t == "list" || t == "array"
}

// Analyzer holds the scope stack and registered function signatures for one
// analysis run. Single-use.
type Analyzer struct {
	envs        []map[string]*typeInfo
	functions   map[string]*funcSig
	depth       int
	sourceLines []string
}

func New(source string) *Analyzer {
	return &Analyzer{
		envs:        []map[string]*typeInfo{{}},
		functions:   map[string]*funcSig{},
		sourceLines: strings.Split(source, "\n"),
	}
}

// Analyze checks the program and rewrites constant subexpressions in place.
// Function signatures are registered before any body is checked, so calls may
// reference functions defined later in the file.
func (a *Analyzer) Analyze(prog *ast.Program) (err error) {
	defer func() {
		if r := recover(); r != nil {
			se, ok := r.(*Error)
			if !ok {
				panic(r)
			}
			err = se
		}
	}()
	a.registerFunctions(prog.Functions)
	for _, fn := range prog.Functions {
		a.analyzeFunction(fn)
	}
	for _, stmt := range prog.Statements {
		a.stmt(stmt)
	}
	a.foldProgram(prog)
	return nil
}

func (a *Analyzer) registerFunctions(functions []*ast.Function) {
	for _, fn := range functions {
		if _, ok := a.functions[fn.Name]; ok {
			a.fail(fn.Pos, fmt.Sprintf("function '%s' already defined", fn.Name))
		}
		var params []paramInfo
		seen := map[string]bool{}
		for _, p := range fn.Params {
			if seen[p.Name] {
				a.fail(p.Pos, fmt.Sprintf("duplicate parameter '%s'", p.Name))
			}
			seen[p.Name] = true
			inferred := p.Type
			if p.Default != nil {
				// Defaults may refer to earlier parameters, so type the
				// expression in a scratch scope seeded with them.
				a.pushEnv()
				for _, earlier := range params {
					t := earlier.typ
					if t == "" {
						t = "auto"
					}
					a.env()[earlier.name] = &typeInfo{name: t}
				}
				defaultType := a.expr(p.Default)
				a.popEnv()
				if inferred != "" {
					a.ensureAssignable(p.Pos, inferred, defaultType)
				} else {
					inferred = defaultType
				}
			}
			params = append(params, paramInfo{name: p.Name, typ: inferred, hasDefault: p.Default != nil})
			p.Type = inferred
		}
		a.functions[fn.Name] = &funcSig{name: fn.Name, params: params}
	}
}

func (a *Analyzer) analyzeFunction(fn *ast.Function) {
	sig, ok := a.functions[fn.Name]
	if !ok {
		return
	}
	a.pushEnv()
	a.depth++
	for _, p := range sig.params {
		t := p.typ
		if t == "" {
			t = "auto"
		}
		a.env()[p.name] = &typeInfo{name: t}
	}
	for _, stmt := range fn.Body {
		a.stmt(stmt)
	}
	a.depth--
	a.popEnv()
}

func (a *Analyzer) checkCall(node *ast.Call) {
	sig, ok := a.functions[node.Name]
	if !ok {
		names := make([]string, 0, len(a.functions))
		for name := range a.functions {
			names = append(names, name)
		}
		sort.Strings(names)
		known := strings.Join(names, ", ")
		if known == "" {
			known = "none"
		}
		msg := fmt.Sprintf("undefined function '%s'. known: %s", node.Name, known)
		if hint := closestName(node.Name, names); hint != "" {
			msg = fmt.Sprintf("%s (did you mean '%s'?)", msg, hint)
		}
		a.fail(node.Pos, msg)
	}
	provided := map[string]bool{}
	positional := 0
	for _, arg := range node.Args {
		argType := a.expr(arg.Value)
		var param *paramInfo
		if arg.Name != "" {
			for i := range sig.params {
				if sig.params[i].name == arg.Name {
					param = &sig.params[i]
					break
				}
			}
			if param == nil {
				msg := fmt.Sprintf("unknown parameter '%s' for function '%s'", arg.Name, node.Name)
				var paramNames []string
				for _, p := range sig.params {
					paramNames = append(paramNames, p.name)
				}
				if hint := closestName(arg.Name, paramNames); hint != "" {
					msg = fmt.Sprintf("%s (did you mean '%s'?)", msg, hint)
				}
				a.fail(arg.Pos, msg)
			}
			if provided[arg.Name] {
				a.fail(arg.Pos, fmt.Sprintf("duplicate argument for '%s'", arg.Name))
			}
		} else {
			if positional >= len(sig.params) {
				a.fail(arg.Pos, fmt.Sprintf("too many arguments for '%s'", node.Name))
			}
			param = &sig.params[positional]
			positional++
		}
		if param.typ != "" {
			a.ensureAssignable(arg.Pos, param.typ, argType)
		}
		provided[param.name] = true
	}
	for _, p := range sig.params {
		if !provided[p.name] && !p.hasDefault {
			a.fail(node.Pos, fmt.Sprintf("missing argument for '%s' in call to '%s'", p.name, node.Name))
		}
	}
}

func (a *Analyzer) block(body []ast.Stmt) {
	a.pushEnv()
	for _, stmt := range body {
		a.stmt(stmt)
	}
	a.popEnv()
}

func (a *Analyzer) stmt(node ast.Stmt) {
	switch n := node.(type) {
	case *ast.Declaration:
		if _, ok := a.env()[n.Name]; ok {
			a.fail(n.Pos, fmt.Sprintf("variable '%s' already declared", n.Name))
		}
		if n.Type != "" && !isKnownType(n.Type) {
			a.fail(n.Pos, fmt.Sprintf("unknown type '%s'", n.Type))
		}
		info := &typeInfo{name: n.Type}
		if info.name == "" {
			info.name = "auto"
		}
		if isContainerType(n.Type) && n.Size != nil {
			if !isNumericLiteralType(a.expr(n.Size)) {
				a.fail(n.Pos, "container size must be numeric")
			}
			if v, ok := literalIntValue(n.Size); ok {
				info.size = v
				info.hasSize = true
			}
		}
		a.env()[n.Name] = info
	case *ast.Input:
		if n.Type != "" {
			if _, ok := a.env()[n.Name]; ok {
				a.fail(n.Pos, fmt.Sprintf("variable '%s' already declared", n.Name))
			}
			if !isKnownType(n.Type) {
				a.fail(n.Pos, fmt.Sprintf("unknown type '%s'", n.Type))
			}
			a.env()[n.Name] = &typeInfo{name: n.Type}
		} else if a.lookup(n.Name) == nil {
			a.fail(n.Pos, fmt.Sprintf("variable '%s' not declared before input", n.Name))
		}
	case *ast.Assign:
		t := a.expr(n.Expr)
		if n.Type != "" {
			if !isKnownType(n.Type) {
				a.fail(n.Pos, fmt.Sprintf("unknown type '%s'", n.Type))
			}
			if existing := a.lookup(n.Name); existing != nil && existing.name != "auto" && existing.name != n.Type {
				a.ensureAssignable(n.Pos, existing.name, n.Type)
			}
			a.ensureAssignable(n.Pos, n.Type, t)
			a.env()[n.Name] = &typeInfo{name: n.Type}
		} else if existing := a.lookup(n.Name); existing != nil {
			a.ensureAssignable(n.Pos, existing.name, t)
			// Rebind in the current scope so inner blocks see it directly.
			a.env()[n.Name] = existing
		} else {
			a.env()[n.Name] = &typeInfo{name: t}
		}
	case *ast.IndexAssign:
		a.checkIndexable(n.Name, n.Index, n.Pos)
		if !isNumericLiteralType(a.expr(n.Expr)) {
			a.fail(n.Pos, "container elements must be numeric")
		}
	case *ast.Print:
		for _, v := range n.Values {
			a.expr(v)
		}
	case *ast.If:
		a.expr(n.First.Cond)
		a.block(n.First.Body)
		for _, br := range n.Elifs {
			a.expr(br.Cond)
			a.block(br.Body)
		}
		if len(n.ElseBody) > 0 {
			a.block(n.ElseBody)
		}
	case *ast.While:
		a.expr(n.Cond)
		a.block(n.Body)
	case *ast.For:
		startT := a.expr(n.Start)
		endT := a.expr(n.End)
		if !isNumericType(startT) || !isNumericType(endT) {
			a.fail(n.Pos, fmt.Sprintf("for bounds must be numeric (got %s, %s)", startT, endT))
		}
		a.pushEnv()
		a.env()[n.Var] = &typeInfo{name: "int"}
		for _, s := range n.Body {
			a.stmt(s)
		}
		a.popEnv()
	case *ast.Call:
		a.checkCall(n)
	case *ast.Return:
		if a.depth <= 0 {
			a.fail(n.Pos, "'return' outside function")
		}
		for _, v := range n.Values {
			a.expr(v)
		}
	default:
		a.fail(node.GetPos(), fmt.Sprintf("unhandled statement %T", node))
	}
}

func (a *Analyzer) expr(node ast.Expr) string {
	switch n := node.(type) {
	case *ast.Number:
		if isFloatLiteral(n.Value) {
			return "float"
		}
		return "int"
	case *ast.String:
		return "string"
	case *ast.Var:
		t := a.lookup(n.Name)
		if t == nil {
			msg := fmt.Sprintf("undefined variable '%s'", n.Name)
			if hint := a.closestVariable(n.Name); hint != "" {
				msg = fmt.Sprintf("%s (did you mean '%s'?)", msg, hint)
			}
			a.fail(n.Pos, msg)
		}
		if t.name == "" {
			return "auto"
		}
		return t.name
	case *ast.Index:
		a.checkIndexable(n.Name, n.Index, n.Pos)
		return "float"
	case *ast.Unary:
		t := a.expr(n.Right)
		switch n.Op {
		case "+", "-":
			if !isNumericType(t) {
				a.fail(n.Pos, fmt.Sprintf("unary %s requires numeric operand (got %s)", n.Op, t))
			}
			return t
		case "!", "not":
			if !isLogicType(t) {
				a.fail(n.Pos, fmt.Sprintf("unary %s requires numeric/bool-like operand (got %s)", n.Op, t))
			}
			return "bool"
		}
		a.fail(n.Pos, fmt.Sprintf("unhandled unary op %s", n.Op))
	case *ast.Binary:
		lt := a.expr(n.Left)
		rt := a.expr(n.Right)
		switch n.Op {
		case "+", "-", "*", "/", "add", "subtract", "multiply", "divide":
			if !isNumericType(lt) || !isNumericType(rt) {
				a.fail(n.Pos, fmt.Sprintf("arithmetic '%s' requires numeric operands (got %s, %s)", n.Op, lt, rt))
			}
			if lt == "float" || rt == "float" {
				return "float"
			}
			if lt != "" {
				return lt
			}
			if rt != "" {
				return rt
			}
			return "int"
		case "==", "!=":
			if lt == rt {
				return "bool"
			}
			if isNumericType(lt) && isNumericType(rt) {
				return "bool"
			}
			a.fail(n.Pos, fmt.Sprintf("incompatible types for equality: %s vs %s", lt, rt))
		case ">", "<", ">=", "<=":
			if isNumericType(lt) && isNumericType(rt) {
				return "bool"
			}
			a.fail(n.Pos, fmt.Sprintf("ordering comparison requires numeric operands (got %s, %s)", lt, rt))
		case "and", "&", "or", "|":
			if !isLogicType(lt) || !isLogicType(rt) {
				a.fail(n.Pos, fmt.Sprintf("logical '%s' requires numeric/bool-like operands (got %s, %s)", n.Op, lt, rt))
			}
			return "bool"
		}
		a.fail(n.Pos, fmt.Sprintf("unhandled binary op %s", n.Op))
	case *ast.Power:
		bt := a.expr(n.Base)
		et := a.expr(n.Exponent)
		if !isNumericType(bt) || !isNumericType(et) {
			a.fail(n.Pos, fmt.Sprintf("power requires numeric operands (got %s, %s)", bt, et))
		}
		if bt == "float" || et == "float" {
			return "float"
		}
		return "int"
	}
	a.fail(node.GetPos(), fmt.Sprintf("unhandled expr %T", node))
	return ""
}

// checkIndexable validates both index reads and index writes: the base must
// be a declared container, the index numeric, and a literal index must fall
// inside a literal declared size.
func (a *Analyzer) checkIndexable(name string, index ast.Expr, pos ast.Pos) *typeInfo {
	base := a.lookup(name)
	if base == nil {
		a.fail(pos, fmt.Sprintf("variable '%s' not declared", name))
	}
	if !isContainerType(base.name) {
		a.fail(pos, fmt.Sprintf("indexing requires list/array (got %s)", base.name))
	}
	if !isNumericLiteralType(a.expr(index)) {
		a.fail(pos, "index must be numeric")
	}
	if idx, ok := literalIntValue(index); ok && base.hasSize {
		if idx < 0 || idx >= base.size {
			a.fail(pos, fmt.Sprintf("index %d out of bounds for '%s' of size %d", idx, name, base.size))
		}
	}
	return base
}

// --- env helpers ---

func (a *Analyzer) env() map[string]*typeInfo {
	return a.envs[len(a.envs)-1]
}

func (a *Analyzer) pushEnv() {
	a.envs = append(a.envs, map[string]*typeInfo{})
}

func (a *Analyzer) popEnv() {
	if len(a.envs) > 1 {
		a.envs = a.envs[:len(a.envs)-1]
	}
}

func (a *Analyzer) lookup(name string) *typeInfo {
	for i := len(a.envs) - 1; i >= 0; i-- {
		if info, ok := a.envs[i][name]; ok {
			return info
		}
	}
	return nil
}

// closestVariable suggests a visible name for a typo'd variable reference.
func (a *Analyzer) closestVariable(name string) string {
	var candidates []string
	for _, env := range a.envs {
		for n := range env {
			candidates = append(candidates, n)
		}
	}
	return closestName(name, candidates)
}

func closestName(name string, candidates []string) string {
	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}

func (a *Analyzer) ensureAssignable(pos ast.Pos, targetType, exprType string) {
	if targetType == "" || targetType == "auto" {
		return
	}
	if exprType == "" || exprType == "auto" {
		return
	}
	if targetType == exprType {
		return
	}
	if targetType == "float" && (exprType == "int" || exprType == "float") {
		return
	}
	if isNumericStrict(targetType) && isNumericStrict(exprType) {
		return
	}
	a.fail(pos, fmt.Sprintf("cannot assign %s to %s", exprType, targetType))
}

func isNumericStrict(t string) bool {
	return t == "int" || t == "float"
}

// isNumericLiteralType matches the loose numeric check used for sizes,
// indexes and container elements: int or float only, auto excluded.
func isNumericLiteralType(t string) bool {
	return t == "int" || t == "float"
}

func isFloatLiteral(lexeme string) bool {
	return strings.Contains(lexeme, ".")
}

// --- error reporting ---

func (a *Analyzer) fail(pos ast.Pos, msg string) {
	if pos.Line >= 1 && pos.Line <= len(a.sourceLines) {
		panic(&Error{
			Msg:     msg,
			Line:    pos.Line,
			Col:     pos.Col,
			SrcLine: a.sourceLines[pos.Line-1],
			HasLoc:  true,
		})
	}
	panic(&Error{Msg: msg})
}
