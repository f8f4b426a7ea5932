// Package codegen turns a validated Write AST into a self-contained C++17
// translation unit. The generator never fails: it only runs on trees the
// analyzer has accepted, so an inconsistency here is an analyzer bug.
package codegen

import (
	"fmt"
	"strings"

	"writec/internal/ast"
)

const helperBlock = `template <typename T>
void read_input(T &value) {
    cin >> value;
}

void read_input(string &value) {
    getline(cin, value);
}

string format_list(const vector<double> &values) {
    string out = "[";
    for (size_t i = 0; i < values.size(); ++i) {
        if (i > 0) {
            out += ", ";
        }
        out += to_string(values[i]);
    }
    out += "]";
    return out;
}`

// Generator accumulates output lines for one program. Single-use.
type Generator struct {
	lines  []string
	indent int
	funcs  map[string]*ast.Function
	env    map[string]string // variable name -> source type
}

func New() *Generator {
	return &Generator{funcs: map[string]*ast.Function{}}
}

// Generate emits the full translation unit: includes, runtime helpers, one
// C++ function per source function in source order, then main() for the
// top-level statements.
func (g *Generator) Generate(prog *ast.Program) string {
	for _, fn := range prog.Functions {
		g.funcs[fn.Name] = fn
	}
	g.emit("#include <iostream>")
	g.emit("#include <cmath>")
	g.emit("#include <string>")
	g.emit("#include <vector>")
	g.emit("#include <tuple>")
	g.emit("")
	g.emit("using namespace std;")
	g.emit("")
	for _, line := range strings.Split(helperBlock, "\n") {
		g.emit(line)
	}
	g.emit("")
	for _, fn := range prog.Functions {
		g.function(fn)
		g.emit("")
	}
	g.emit("int main() {")
	g.push()
	g.env = map[string]string{}
	for _, stmt := range prog.Statements {
		g.stmt(stmt)
	}
	g.emit("return 0;")
	g.pop()
	g.emit("}")
	return strings.Join(g.lines, "\n")
}

func (g *Generator) function(fn *ast.Function) {
	retType := "void"
	if returnsValue(fn.Body) {
		retType = "auto"
	}
	var params []string
	for _, p := range fn.Params {
		decl := cppType(p.Type) + " " + p.Name
		if p.Default != nil {
			decl += " = " + g.expr(p.Default)
		}
		params = append(params, decl)
	}
	g.emit(fmt.Sprintf("%s %s(%s) {", retType, sanitizeName(fn.Name), strings.Join(params, ", ")))
	g.push()
	g.env = map[string]string{}
	for _, p := range fn.Params {
		g.env[p.Name] = p.Type
	}
	for _, stmt := range fn.Body {
		g.stmt(stmt)
	}
	g.pop()
	g.emit("}")
}

// returnsValue reports whether any return statement in the body, including
// inside nested blocks, carries values.
func returnsValue(body []ast.Stmt) bool {
	for _, stmt := range body {
		switch s := stmt.(type) {
		case *ast.Return:
			if len(s.Values) > 0 {
				return true
			}
		case *ast.If:
			if returnsValue(s.First.Body) {
				return true
			}
			for _, br := range s.Elifs {
				if returnsValue(br.Body) {
					return true
				}
			}
			if returnsValue(s.ElseBody) {
				return true
			}
		case *ast.While:
			if returnsValue(s.Body) {
				return true
			}
		case *ast.For:
			if returnsValue(s.Body) {
				return true
			}
		}
	}
	return false
}

// --- statements ---

func (g *Generator) stmt(node ast.Stmt) {
	switch n := node.(type) {
	case *ast.Declaration:
		g.env[n.Name] = n.Type
		if n.Type == "list" || n.Type == "array" {
			if size, ok := literalSize(n.Size); ok {
				g.emit(fmt.Sprintf("vector<double> %s(%s, 0.0);", n.Name, size))
			} else {
				g.emit(fmt.Sprintf("vector<double> %s;", n.Name))
			}
			return
		}
		g.emit(fmt.Sprintf("%s %s;", cppType(n.Type), n.Name))
	case *ast.Input:
		if n.Type != "" {
			g.env[n.Name] = n.Type
			g.emit(fmt.Sprintf("%s %s;", cppType(n.Type), n.Name))
		}
		if n.HasPrompt {
			g.emit(fmt.Sprintf(`cout << "%s";`, n.Prompt))
		}
		g.emit(fmt.Sprintf("read_input(%s);", n.Name))
	case *ast.Assign:
		expr := g.expr(n.Expr)
		if _, declared := g.env[n.Name]; declared {
			g.emit(fmt.Sprintf("%s = %s;", n.Name, expr))
			return
		}
		if n.Type != "" {
			g.env[n.Name] = n.Type
			g.emit(fmt.Sprintf("%s %s = %s;", cppType(n.Type), n.Name, expr))
			return
		}
		g.env[n.Name] = "auto"
		g.emit(fmt.Sprintf("auto %s = %s;", n.Name, expr))
	case *ast.IndexAssign:
		g.emit(fmt.Sprintf("%s[%s] = %s;", n.Name, g.expr(n.Index), g.expr(n.Expr)))
	case *ast.Print:
		var parts []string
		for _, v := range n.Values {
			if vr, ok := v.(*ast.Var); ok && isContainer(g.env[vr.Name]) {
				parts = append(parts, fmt.Sprintf("format_list(%s)", vr.Name))
				continue
			}
			parts = append(parts, g.expr(v))
		}
		joined := `""`
		if len(parts) > 0 {
			joined = strings.Join(parts, " << ")
		}
		g.emit(fmt.Sprintf("cout << %s << endl;", joined))
	case *ast.If:
		g.emit(fmt.Sprintf("if (%s) {", g.expr(n.First.Cond)))
		g.block(n.First.Body)
		g.emit("}")
		for _, br := range n.Elifs {
			g.emit(fmt.Sprintf("else if (%s) {", g.expr(br.Cond)))
			g.block(br.Body)
			g.emit("}")
		}
		if n.HasElse {
			g.emit("else {")
			g.block(n.ElseBody)
			g.emit("}")
		}
	case *ast.While:
		g.emit(fmt.Sprintf("while (%s) {", g.expr(n.Cond)))
		g.block(n.Body)
		g.emit("}")
	case *ast.For:
		start := g.expr(n.Start)
		end := g.expr(n.End)
		// Upper bound is inclusive.
		g.emit(fmt.Sprintf("for (auto %s = %s; %s <= %s; ++%s) {", n.Var, start, n.Var, end, n.Var))
		g.push()
		g.env[n.Var] = "int"
		for _, s := range n.Body {
			g.stmt(s)
		}
		g.pop()
		g.emit("}")
	case *ast.Call:
		g.emit(g.call(n) + ";")
	case *ast.Return:
		switch len(n.Values) {
		case 0:
			g.emit("return;")
		case 1:
			g.emit(fmt.Sprintf("return %s;", g.expr(n.Values[0])))
		default:
			var parts []string
			for _, v := range n.Values {
				parts = append(parts, g.expr(v))
			}
			g.emit(fmt.Sprintf("return make_tuple(%s);", strings.Join(parts, ", ")))
		}
	}
}

func (g *Generator) block(body []ast.Stmt) {
	g.push()
	for _, s := range body {
		g.stmt(s)
	}
	g.pop()
}

// call renders a call with arguments back in declaration order. Named
// arguments land in their parameter's slot; a skipped parameter before a
// provided one has its default expression inlined, while trailing omissions
// fall through to the C++ default arguments.
func (g *Generator) call(node *ast.Call) string {
	fn := g.funcs[node.Name]
	if fn == nil {
		var args []string
		for _, a := range node.Args {
			args = append(args, g.expr(a.Value))
		}
		return fmt.Sprintf("%s(%s)", sanitizeName(node.Name), strings.Join(args, ", "))
	}
	slots := make([]ast.Expr, len(fn.Params))
	positional := 0
	for _, a := range node.Args {
		if a.Name == "" {
			if positional < len(slots) {
				slots[positional] = a.Value
				positional++
			}
			continue
		}
		for i, p := range fn.Params {
			if p.Name == a.Name {
				slots[i] = a.Value
				break
			}
		}
	}
	last := -1
	for i, s := range slots {
		if s != nil {
			last = i
		}
	}
	var args []string
	for i := 0; i <= last; i++ {
		if slots[i] != nil {
			args = append(args, g.expr(slots[i]))
		} else {
			args = append(args, g.expr(fn.Params[i].Default))
		}
	}
	return fmt.Sprintf("%s(%s)", sanitizeName(node.Name), strings.Join(args, ", "))
}

// --- expressions ---

func (g *Generator) expr(node ast.Expr) string {
	switch n := node.(type) {
	case *ast.Number:
		return n.Value
	case *ast.String:
		return `"` + n.Value + `"`
	case *ast.Var:
		return n.Name
	case *ast.Index:
		return fmt.Sprintf("%s[%s]", n.Name, g.expr(n.Index))
	case *ast.Unary:
		return fmt.Sprintf("(%s%s)", unaryOp(n.Op), g.expr(n.Right))
	case *ast.Binary:
		return fmt.Sprintf("(%s %s %s)", g.expr(n.Left), binaryOp(n.Op), g.expr(n.Right))
	case *ast.Power:
		return fmt.Sprintf("pow(%s, %s)", g.expr(n.Base), g.expr(n.Exponent))
	}
	return ""
}

// binaryOp maps the word operators onto symbols. Logical connectives pass
// through unchanged: "and", "or" and "not" are valid C++ alternative tokens,
// and "&"/"|" keep their bitwise meaning.
func binaryOp(op string) string {
	switch op {
	case "add":
		return "+"
	case "subtract":
		return "-"
	case "multiply":
		return "*"
	case "divide":
		return "/"
	}
	return op
}

func unaryOp(op string) string {
	if op == "not" {
		return "not "
	}
	return op
}

func cppType(t string) string {
	switch t {
	case "int":
		return "int"
	case "float":
		return "float"
	case "string":
		return "string"
	case "bool":
		return "bool"
	case "list", "array":
		return "vector<double>"
	}
	return "double"
}

func isContainer(t string) bool {
	return t == "list" || t == "array"
}

func literalSize(size ast.Expr) (string, bool) {
	num, ok := size.(*ast.Number)
	if !ok || strings.Contains(num.Value, ".") {
		return "", false
	}
	return num.Value, true
}

// sanitizeName makes a quoted function name usable as a C++ identifier.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func (g *Generator) emit(line string) {
	g.lines = append(g.lines, strings.Repeat("    ", g.indent)+line)
}

func (g *Generator) push() { g.indent++ }

func (g *Generator) pop() {
	if g.indent > 0 {
		g.indent--
	}
}
