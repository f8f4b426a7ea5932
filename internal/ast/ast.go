// Package ast defines the tree produced by the parser and consumed by the
// analyzer and the code generator. Node positions are 1-based and optional;
// a zero Pos means "no location" and diagnostics fall back to a bare message.
package ast

// Pos is a source location carried by every node for diagnostics.
type Pos struct {
	Line int
	Col  int
}

// Program is the root: function definitions plus top-level statements,
// both in source order.
type Program struct {
	Functions  []*Function
	Statements []Stmt
	Pos        Pos
}

type Function struct {
	Name   string
	Params []*Param
	Body   []Stmt
	Pos    Pos
}

// Param is a function parameter. Type is filled in by the analyzer when it is
// inferred from the default expression rather than annotated.
type Param struct {
	Name    string
	Type    string
	Default Expr
	Pos     Pos
}

// Arg is one call argument, named or positional (Name empty).
type Arg struct {
	Name  string
	Value Expr
	Pos   Pos
}

type Stmt interface {
	stmtNode()
	GetPos() Pos
}

// Declaration is "make NAME [as TYPE [of size EXPR]]". Size is non-nil only
// for container types.
type Declaration struct {
	Name string
	Type string
	Size Expr
	Pos  Pos
}

func (*Declaration) stmtNode() {}
func (s *Declaration) GetPos() Pos { return s.Pos }

// Input is "input [PROMPT] NAME [as TYPE]".
type Input struct {
	Name      string
	Type      string
	Prompt    string
	HasPrompt bool
	Pos       Pos
}

func (*Input) stmtNode() {}
func (s *Input) GetPos() Pos { return s.Pos }

// Assign is "set NAME [:TYPE] to EXPR" and the desugared add/sub phrases.
type Assign struct {
	Name string
	Expr Expr
	Type string
	Pos  Pos
}

func (*Assign) stmtNode() {}
func (s *Assign) GetPos() Pos { return s.Pos }

// IndexAssign is "set NAME[INDEX] to EXPR".
type IndexAssign struct {
	Name  string
	Index Expr
	Expr  Expr
	Pos   Pos
}

func (*IndexAssign) stmtNode() {}
func (s *IndexAssign) GetPos() Pos { return s.Pos }

type Print struct {
	Values []Expr
	Pos    Pos
}

func (*Print) stmtNode() {}
func (s *Print) GetPos() Pos { return s.Pos }

type IfBranch struct {
	Cond Expr
	Body []Stmt
	Pos  Pos
}

// If holds the first branch, any "else if" branches, and an optional else
// body (nil when absent, non-nil but possibly empty when present).
type If struct {
	First    *IfBranch
	Elifs    []*IfBranch
	ElseBody []Stmt
	HasElse  bool
	Pos      Pos
}

func (*If) stmtNode() {}
func (s *If) GetPos() Pos { return s.Pos }

type While struct {
	Cond Expr
	Body []Stmt
	Pos  Pos
}

func (*While) stmtNode() {}
func (s *While) GetPos() Pos { return s.Pos }

// For is "for VAR from START to END do ... end for"; the upper bound is
// inclusive.
type For struct {
	Var   string
	Start Expr
	End   Expr
	Body  []Stmt
	Pos   Pos
}

func (*For) stmtNode() {}
func (s *For) GetPos() Pos { return s.Pos }

type Call struct {
	Name string
	Args []*Arg
	Pos  Pos
}

func (*Call) stmtNode() {}
func (s *Call) GetPos() Pos { return s.Pos }

type Return struct {
	Values []Expr
	Pos    Pos
}

func (*Return) stmtNode() {}
func (s *Return) GetPos() Pos { return s.Pos }

type Expr interface {
	exprNode()
	GetPos() Pos
}

// Number keeps the raw lexeme; the analyzer classifies int vs float by the
// presence of '.' and rewrites the text when folding.
type Number struct {
	Value string
	Pos   Pos
}

func (*Number) exprNode() {}
func (e *Number) GetPos() Pos { return e.Pos }

type String struct {
	Value string
	Pos   Pos
}

func (*String) exprNode() {}
func (e *String) GetPos() Pos { return e.Pos }

type Var struct {
	Name string
	Pos  Pos
}

func (*Var) exprNode() {}
func (e *Var) GetPos() Pos { return e.Pos }

// Index is a container element read: NAME[EXPR].
type Index struct {
	Name  string
	Index Expr
	Pos   Pos
}

func (*Index) exprNode() {}
func (e *Index) GetPos() Pos { return e.Pos }

type Unary struct {
	Op    string
	Right Expr
	Pos   Pos
}

func (*Unary) exprNode() {}
func (e *Unary) GetPos() Pos { return e.Pos }

// Binary covers symbolic operators, word operators (add/subtract/multiply/
// divide), comparisons, and logic (and/or and their symbol forms).
type Binary struct {
	Left  Expr
	Op    string
	Right Expr
	Pos   Pos
}

func (*Binary) exprNode() {}
func (e *Binary) GetPos() Pos { return e.Pos }

// Power is right-associative exponentiation, "^" or the word form.
type Power struct {
	Base     Expr
	Exponent Expr
	Pos      Pos
}

func (*Power) exprNode() {}
func (e *Power) GetPos() Pos { return e.Pos }
