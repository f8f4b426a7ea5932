// Package parser builds a Write AST from the token stream. The grammar is an
// ambiguous keyword-phrase grammar, so a few productions are speculative:
// the parser saves the cursor, attempts a phrase, and rolls back when the
// phrase does not complete. Parsing halts at the first error.
package parser

import (
	"fmt"

	"writec/internal/ast"
	"writec/internal/lexer"
)

// Error is a syntax error at the offending token's position.
type Error struct {
	Msg  string
	Line int
	Col  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %d:%d", e.Msg, e.Line, e.Col)
}

// comparisonPhrases maps the multi-keyword forms after "is" onto comparison
// operators. Longest sequences come first so "greater than or equal to" wins
// over "greater than"; each row is attempted speculatively in order.
var comparisonPhrases = []struct {
	words []string
	op    string
}{
	{[]string{"greater", "than", "or", "equal", "to"}, ">="},
	{[]string{"less", "than", "or", "equal", "to"}, "<="},
	{[]string{"greater", "or", "equal", "to"}, ">="},
	{[]string{"less", "or", "equal", "to"}, "<="},
	{[]string{"greater", "than"}, ">"},
	{[]string{"less", "than"}, "<"},
	{[]string{"equal", "to"}, "=="},
	{[]string{"not", "equal", "to"}, "!="},
}

// typeNames are the accepted names after "as" and ":".
var typeNames = []string{"int", "float", "string", "bool", "list", "array"}

// Parser walks a finished token slice with a movable cursor. Single-use.
type Parser struct {
	tokens []lexer.Token
	cur    int
}

func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse consumes the whole token stream into a Program. Function definitions
// and top-level statements may interleave; each function header is recognized
// by its leading keyword.
func (p *Parser) Parse() (prog *ast.Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(*Error)
			if !ok {
				panic(r)
			}
			prog = nil
			err = pe
		}
	}()

	var functions []*ast.Function
	var statements []ast.Stmt
	for !p.isAtEnd() {
		if p.checkKw("function") || p.checkKw("func") {
			functions = append(functions, p.functionDef())
			continue
		}
		statements = append(statements, p.statement())
	}

	var pos ast.Pos
	if len(functions) > 0 {
		pos = functions[0].Pos
	} else if len(statements) > 0 {
		pos = statements[0].GetPos()
	}
	return &ast.Program{Functions: functions, Statements: statements, Pos: pos}, nil
}

// --- statements ---

func (p *Parser) statement() ast.Stmt {
	if p.matchKw("add") {
		return p.inplaceUpdate("add")
	}
	if p.matchKw("sub") || p.matchKw("subtract") {
		return p.inplaceUpdate("sub")
	}
	if p.matchKw("make") {
		return p.declaration()
	}
	if p.matchKw("call") {
		return p.callStatement()
	}
	if p.matchKw("return") {
		return p.returnStatement(p.previous())
	}
	if p.matchKw("input") {
		return p.inputStatement()
	}
	if p.matchKw("set") {
		return p.setStatement()
	}
	if p.matchKw("print") {
		return p.printStatement()
	}
	if p.matchKw("if") {
		return p.ifStatement()
	}
	if p.matchKw("while") {
		cond := p.condition()
		p.consumeKw("do", "expected 'do' after while condition")
		body := p.blockUntilEnd("while")
		return &ast.While{Cond: cond, Body: body, Pos: cond.GetPos()}
	}
	if p.matchKw("for") {
		varTok := p.consumeIdent("expected loop variable after 'for'")
		p.consumeKw("from", "expected 'from' in for loop")
		start := p.expression()
		p.consumeKw("to", "expected 'to' in for loop")
		end := p.expression()
		p.consumeKw("do", "expected 'do' after for header")
		body := p.blockUntilEnd("for")
		return &ast.For{Var: varTok.Lexeme, Start: start, End: end, Body: body, Pos: tokPos(varTok)}
	}
	tok := p.peek()
	panic(p.errAt(tok, fmt.Sprintf("unexpected token %q", tok.Lexeme)))
}

func (p *Parser) declaration() ast.Stmt {
	nameTok := p.consumeIdent("expected identifier after 'make'")
	var typ string
	var size ast.Expr
	if p.matchKw("as") {
		typ = p.typeName()
		if (typ == "list" || typ == "array") && p.matchKw("of") {
			p.consumeKw("size", "expected 'size' after 'of'")
			size = p.expression()
		}
	}
	return &ast.Declaration{Name: nameTok.Lexeme, Type: typ, Size: size, Pos: tokPos(nameTok)}
}

func (p *Parser) inputStatement() ast.Stmt {
	var prompt string
	hasPrompt := false
	if p.checkKind(lexer.TokenString) {
		prompt = p.advance().Lexeme
		hasPrompt = true
	}
	nameTok := p.consumeIdent("expected identifier after 'input'")
	var typ string
	if p.matchKw("as") {
		typ = p.typeName()
	}
	return &ast.Input{Name: nameTok.Lexeme, Type: typ, Prompt: prompt, HasPrompt: hasPrompt, Pos: tokPos(nameTok)}
}

func (p *Parser) setStatement() ast.Stmt {
	// "set return to EXPR" is an alternative spelling of return.
	if p.checkKw("return") {
		retTok := p.advance()
		p.consumeKw("to", "expected 'to' after 'set return'")
		return p.returnStatement(retTok)
	}
	nameTok := p.consumeIdent("expected identifier after 'set'")
	var index ast.Expr
	if p.matchOp(lexer.TokenLBracket) {
		index = p.expression()
		p.consume(lexer.TokenRBracket, "expected ']' after index")
	}
	var typ string
	if index == nil && p.matchOp(lexer.TokenColon) {
		typ = p.typeName()
	}
	p.consumeKw("to", "expected 'to' in assignment")
	expr := p.assignmentRHS(nameTok)
	if index != nil {
		return &ast.IndexAssign{Name: nameTok.Lexeme, Index: index, Expr: expr, Pos: tokPos(nameTok)}
	}
	return &ast.Assign{Name: nameTok.Lexeme, Expr: expr, Type: typ, Pos: tokPos(nameTok)}
}

func (p *Parser) printStatement() ast.Stmt {
	first := p.expression()
	values := []ast.Expr{first}
	for {
		if p.matchOp(lexer.TokenComma) {
			values = append(values, p.expression())
			continue
		}
		// Values may also be written adjacently without commas.
		if p.isExprStart() {
			values = append(values, p.expression())
			continue
		}
		break
	}
	return &ast.Print{Values: values, Pos: first.GetPos()}
}

func (p *Parser) ifStatement() ast.Stmt {
	cond := p.condition()
	p.consumeKw("then", "expected 'then' after if condition")
	first := &ast.IfBranch{Cond: cond, Body: p.blockUntilElseOrEnd(), Pos: cond.GetPos()}

	var elifs []*ast.IfBranch
	var elseBody []ast.Stmt
	hasElse := false
	for p.matchKw("else") {
		if p.matchKw("if") {
			c := p.condition()
			p.consumeKw("then", "expected 'then' after else if condition")
			elifs = append(elifs, &ast.IfBranch{Cond: c, Body: p.blockUntilElseOrEnd(), Pos: c.GetPos()})
			continue
		}
		elseBody = p.blockUntilEndIf()
		hasElse = true
		break
	}
	p.consumePairEnd("if")
	return &ast.If{First: first, Elifs: elifs, ElseBody: elseBody, HasElse: hasElse, Pos: first.Pos}
}

func (p *Parser) blockUntilElseOrEnd() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.isAtEnd() {
		if p.checkKw("else") || p.checkPairEnd("if") {
			break
		}
		stmts = append(stmts, p.statement())
	}
	return stmts
}

func (p *Parser) blockUntilEndIf() []ast.Stmt {
	stmts := []ast.Stmt{}
	for !p.isAtEnd() {
		if p.checkPairEnd("if") {
			break
		}
		stmts = append(stmts, p.statement())
	}
	return stmts
}

func (p *Parser) blockUntilEnd(kind string) []ast.Stmt {
	var stmts []ast.Stmt
	for !p.isAtEnd() {
		if p.checkPairEnd(kind) {
			break
		}
		stmts = append(stmts, p.statement())
	}
	p.consumePairEnd(kind)
	return stmts
}

// --- functions and calls ---

func (p *Parser) functionDef() *ast.Function {
	startKw := "func"
	if p.matchKw("function") {
		startKw = "function"
	} else {
		p.consumeKw("func", "expected 'function' or 'func'")
	}
	nameTok := p.functionName()
	// Legacy header marker, with or without the colon.
	if p.matchKw("arguments") || p.matchKw("aguments") {
		p.matchOp(lexer.TokenColon)
	}
	p.consume(lexer.TokenLParen, "expected '(' after function name")
	var params []*ast.Param
	if !p.checkKind(lexer.TokenRParen) {
		for {
			params = append(params, p.paramDecl())
			if !p.matchOp(lexer.TokenComma) {
				break
			}
		}
	}
	p.consume(lexer.TokenRParen, "expected ')' after parameters")

	var body []ast.Stmt
	for !p.isAtEnd() {
		if p.checkKw("end_function") || p.checkKw("end_func") {
			break
		}
		if p.checkKw("end") && p.nextKwIn("function", "func") {
			break
		}
		body = append(body, p.statement())
	}

	switch {
	case p.matchKw("end_function") || p.matchKw("end_func"):
	case p.matchKw("end"):
		if !p.matchKw("function") && !p.matchKw("func") {
			p.consumeKw(startKw, fmt.Sprintf("expected '%s' after end", startKw))
		}
	default:
		tok := p.peek()
		panic(p.errAt(tok, "expected function terminator"))
	}

	return &ast.Function{Name: nameTok.Lexeme, Params: params, Body: body, Pos: tokPos(nameTok)}
}

func (p *Parser) paramDecl() *ast.Param {
	nameTok := p.consumeIdent("expected parameter name")
	var typ string
	var def ast.Expr
	if p.matchOp(lexer.TokenColon) {
		typ = p.typeName()
	}
	if p.matchOp(lexer.TokenEq) {
		def = p.expression()
	}
	return &ast.Param{Name: nameTok.Lexeme, Type: typ, Default: def, Pos: tokPos(nameTok)}
}

func (p *Parser) callStatement() ast.Stmt {
	nameTok := p.functionName()
	p.consumeKw("with", "expected 'with' after function name")
	if !p.matchKw("arguments") && !p.matchKw("aguments") {
		panic(p.errAt(p.peek(), "expected 'arguments' after 'with'"))
	}
	p.matchOp(lexer.TokenColon)
	p.consume(lexer.TokenLParen, "expected '(' after arguments:")
	var args []*ast.Arg
	if !p.checkKind(lexer.TokenRParen) {
		for {
			if p.checkKind(lexer.TokenIdent) && p.peekNextIs(lexer.TokenEq) {
				nmTok := p.advance()
				p.consume(lexer.TokenEq, "expected '=' after argument name")
				value := p.expression()
				args = append(args, &ast.Arg{Name: nmTok.Lexeme, Value: value, Pos: tokPos(nmTok)})
			} else {
				value := p.expression()
				args = append(args, &ast.Arg{Value: value, Pos: value.GetPos()})
			}
			if !p.matchOp(lexer.TokenComma) {
				break
			}
		}
	}
	p.consume(lexer.TokenRParen, "expected ')' after call arguments")
	return &ast.Call{Name: nameTok.Lexeme, Args: args, Pos: tokPos(nameTok)}
}

func (p *Parser) returnStatement(startTok lexer.Token) ast.Stmt {
	var values []ast.Expr
	if p.isExprStart() {
		values = append(values, p.expression())
		for {
			if p.matchOp(lexer.TokenComma) {
				values = append(values, p.expression())
				continue
			}
			if p.isExprStart() {
				values = append(values, p.expression())
				continue
			}
			break
		}
	}
	return &ast.Return{Values: values, Pos: tokPos(startTok)}
}

// --- in-place updates and assignment phrases ---

// inplaceUpdate handles the standalone statements "add EXPR to NAME" and
// "sub EXPR from NAME", each desugaring to an assignment of a binary
// expression against the named target.
func (p *Parser) inplaceUpdate(kind string) ast.Stmt {
	value := p.expression()
	var op, joiner string
	if kind == "add" {
		op, joiner = "+", "to"
	} else {
		op, joiner = "-", "from"
	}
	p.consumeKw(joiner, fmt.Sprintf("expected '%s' after %s expression", joiner, kind))
	targetTok := p.consumeIdent(fmt.Sprintf("expected target variable after '%s'", joiner))
	target := &ast.Var{Name: targetTok.Lexeme, Pos: tokPos(targetTok)}
	expr := &ast.Binary{Left: target, Op: op, Right: value, Pos: tokPos(targetTok)}
	return &ast.Assign{Name: targetTok.Lexeme, Expr: expr, Pos: tokPos(targetTok)}
}

// assignmentRHS parses the right-hand side of "set NAME to ...". The phrase
// forms "add EXPR to NAME" and "sub EXPR from NAME" are tried first with a
// saved cursor so that ordinary expressions beginning with the same keywords
// ("add 1 and 2") still parse when the phrase does not complete.
func (p *Parser) assignmentRHS(lhsTok lexer.Token) ast.Expr {
	if p.checkKw("add") {
		save := p.mark()
		p.advance()
		if expr, ok := p.tryPhraseTail("+", "to", lhsTok); ok {
			return expr
		}
		p.reset(save)
	}
	if p.checkKw("sub") || p.checkKw("subtract") {
		save := p.mark()
		p.advance()
		if expr, ok := p.tryPhraseTail("-", "from", lhsTok); ok {
			return expr
		}
		p.reset(save)
	}
	return p.expression()
}

func (p *Parser) tryPhraseTail(op, joiner string, lhsTok lexer.Token) (expr ast.Expr, ok bool) {
	// The speculative value expression may itself fail; that also means
	// "not this phrase", so the rollback in the caller must still run.
	defer func() {
		if r := recover(); r != nil {
			if _, isParse := r.(*Error); !isParse {
				panic(r)
			}
			expr, ok = nil, false
		}
	}()
	value := p.expression()
	if !p.matchKw(joiner) {
		return nil, false
	}
	targetTok := p.consumeIdent(fmt.Sprintf("expected target variable after '%s'", joiner))
	target := &ast.Var{Name: targetTok.Lexeme, Pos: tokPos(targetTok)}
	return &ast.Binary{Left: target, Op: op, Right: value, Pos: tokPos(lhsTok)}, true
}

// --- conditions ---

// Conditions are a separate grammar from arithmetic so comparison operators
// only appear here: or/| over and/& over not/! over a single comparison.
func (p *Parser) condition() ast.Expr {
	return p.condOr()
}

func (p *Parser) condOr() ast.Expr {
	expr := p.condAnd()
	for p.matchKw("or") || p.matchOp(lexer.TokenPipe) {
		opTok := p.previous()
		right := p.condAnd()
		expr = &ast.Binary{Left: expr, Op: opTok.Lexeme, Right: right, Pos: tokPos(opTok)}
	}
	return expr
}

func (p *Parser) condAnd() ast.Expr {
	expr := p.condNot()
	for p.matchKw("and") || p.matchOp(lexer.TokenAmp) {
		opTok := p.previous()
		right := p.condNot()
		expr = &ast.Binary{Left: expr, Op: opTok.Lexeme, Right: right, Pos: tokPos(opTok)}
	}
	return expr
}

func (p *Parser) condNot() ast.Expr {
	if p.matchKw("not") || p.matchOp(lexer.TokenBang) {
		opTok := p.previous()
		right := p.condNot()
		return &ast.Unary{Op: opTok.Lexeme, Right: right, Pos: tokPos(opTok)}
	}
	return p.condCmp()
}

func (p *Parser) condCmp() ast.Expr {
	if p.matchOp(lexer.TokenLParen) {
		expr := p.condition()
		p.consume(lexer.TokenRParen, "expected ')' after condition")
		return expr
	}
	left := p.expression()
	op := p.comparisonOp()
	right := p.expression()
	return &ast.Binary{Left: left, Op: op, Right: right, Pos: left.GetPos()}
}

func (p *Parser) comparisonOp() string {
	switch {
	case p.matchOp(lexer.TokenEqEq):
		return "=="
	case p.matchOp(lexer.TokenNotEq):
		return "!="
	case p.matchOp(lexer.TokenGTE):
		return ">="
	case p.matchOp(lexer.TokenLTE):
		return "<="
	case p.matchOp(lexer.TokenGT):
		return ">"
	case p.matchOp(lexer.TokenLT):
		return "<"
	}
	if p.matchKw("is") {
		for _, phrase := range comparisonPhrases {
			if p.tryKeywords(phrase.words) {
				return phrase.op
			}
		}
	}
	tok := p.peek()
	panic(p.errAt(tok, "expected comparison operator"))
}

// --- expressions ---

func (p *Parser) expression() ast.Expr {
	return p.addExpr()
}

func (p *Parser) addExpr() ast.Expr {
	expr := p.mulExpr()
	for p.matchOp(lexer.TokenPlus) || p.matchOp(lexer.TokenMinus) {
		opTok := p.previous()
		right := p.mulExpr()
		expr = &ast.Binary{Left: expr, Op: opTok.Lexeme, Right: right, Pos: tokPos(opTok)}
	}
	return expr
}

func (p *Parser) mulExpr() ast.Expr {
	expr := p.powerExpr()
	for p.matchOp(lexer.TokenStar) || p.matchOp(lexer.TokenSlash) {
		opTok := p.previous()
		right := p.powerExpr()
		expr = &ast.Binary{Left: expr, Op: opTok.Lexeme, Right: right, Pos: tokPos(opTok)}
	}
	return expr
}

func (p *Parser) powerExpr() ast.Expr {
	base := p.unaryExpr()
	if p.matchOp(lexer.TokenCaret) {
		opTok := p.previous()
		// Right associative.
		exponent := p.powerExpr()
		return &ast.Power{Base: base, Exponent: exponent, Pos: tokPos(opTok)}
	}
	return base
}

func (p *Parser) unaryExpr() ast.Expr {
	if p.matchOp(lexer.TokenPlus) {
		opTok := p.previous()
		return &ast.Unary{Op: "+", Right: p.unaryExpr(), Pos: tokPos(opTok)}
	}
	if p.matchOp(lexer.TokenMinus) {
		opTok := p.previous()
		return &ast.Unary{Op: "-", Right: p.unaryExpr(), Pos: tokPos(opTok)}
	}
	return p.primary()
}

func (p *Parser) primary() ast.Expr {
	// Word operators in primary position: "add X and Y" etc.
	for _, word := range [...]string{"add", "subtract", "multiply", "divide"} {
		if p.checkKw(word) {
			opTok := p.advance()
			left := p.unaryExpr()
			p.consumeKw("and", "expected 'and' after left operand")
			right := p.unaryExpr()
			return &ast.Binary{Left: left, Op: word, Right: right, Pos: tokPos(opTok)}
		}
	}
	if p.matchKw("power") {
		opTok := p.previous()
		base := p.unaryExpr()
		p.consumeKw("and", "expected 'and' after base")
		exponent := p.unaryExpr()
		return &ast.Power{Base: base, Exponent: exponent, Pos: tokPos(opTok)}
	}
	if p.matchKind(lexer.TokenNumber) {
		tok := p.previous()
		return &ast.Number{Value: tok.Lexeme, Pos: tokPos(tok)}
	}
	if p.matchKind(lexer.TokenString) {
		tok := p.previous()
		return &ast.String{Value: tok.Lexeme, Pos: tokPos(tok)}
	}
	if p.matchKind(lexer.TokenIdent) {
		tok := p.previous()
		if p.matchOp(lexer.TokenLBracket) {
			index := p.expression()
			p.consume(lexer.TokenRBracket, "expected ']' after index")
			return &ast.Index{Name: tok.Lexeme, Index: index, Pos: tokPos(tok)}
		}
		return &ast.Var{Name: tok.Lexeme, Pos: tokPos(tok)}
	}
	if p.matchOp(lexer.TokenLParen) {
		expr := p.expression()
		p.consume(lexer.TokenRParen, "expected ')' after expression")
		return expr
	}
	tok := p.peek()
	panic(p.errAt(tok, "expected expression"))
}

// --- helpers ---

func (p *Parser) typeName() string {
	for _, t := range typeNames {
		if p.matchKw(t) {
			return t
		}
	}
	tok := p.peek()
	panic(p.errAt(tok, "expected type"))
}

func (p *Parser) functionName() lexer.Token {
	if p.checkKind(lexer.TokenString) || p.checkKind(lexer.TokenIdent) {
		return p.advance()
	}
	panic(p.errAt(p.peek(), "expected function name"))
}

func (p *Parser) isExprStart() bool {
	if p.isAtEnd() {
		return false
	}
	t := p.peek()
	switch t.Kind {
	case lexer.TokenNumber, lexer.TokenString, lexer.TokenIdent, lexer.TokenLParen, lexer.TokenPlus, lexer.TokenMinus:
		return true
	case lexer.TokenKeyword:
		switch t.Lexeme {
		case "add", "subtract", "multiply", "divide", "power", "not":
			return true
		}
	}
	return false
}

// checkPairEnd reports whether the next two tokens are "end" followed by the
// given closing keyword. It never consumes; callers decide whether the
// position is a block boundary before committing.
func (p *Parser) checkPairEnd(kind string) bool {
	if !p.checkKw("end") {
		return false
	}
	return p.nextKwIn(kind)
}

func (p *Parser) consumePairEnd(kind string) {
	p.consumeKw("end", fmt.Sprintf("expected 'end' to close %s", kind))
	p.consumeKw(kind, fmt.Sprintf("expected '%s' after end", kind))
}

// tryKeywords consumes the keyword sequence if it matches in full, restoring
// the cursor otherwise.
func (p *Parser) tryKeywords(seq []string) bool {
	save := p.mark()
	for _, kw := range seq {
		if !p.matchKw(kw) {
			p.reset(save)
			return false
		}
	}
	return true
}

func (p *Parser) matchKw(kw string) bool {
	if p.checkKw(kw) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) checkKw(kw string) bool {
	if p.isAtEnd() {
		return false
	}
	t := p.peek()
	return t.Kind == lexer.TokenKeyword && t.Lexeme == kw
}

func (p *Parser) consumeKw(kw, msg string) {
	if !p.matchKw(kw) {
		panic(p.errAt(p.peek(), msg))
	}
}

func (p *Parser) matchOp(kind lexer.TokenKind) bool {
	return p.matchKind(kind)
}

func (p *Parser) matchKind(kind lexer.TokenKind) bool {
	if p.checkKind(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) checkKind(kind lexer.TokenKind) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Kind == kind
}

func (p *Parser) consume(kind lexer.TokenKind, msg string) {
	if !p.matchKind(kind) {
		panic(p.errAt(p.peek(), msg))
	}
}

func (p *Parser) consumeIdent(msg string) lexer.Token {
	if p.checkKind(lexer.TokenIdent) {
		return p.advance()
	}
	panic(p.errAt(p.peek(), msg))
}

func (p *Parser) peekNextIs(kind lexer.TokenKind) bool {
	if p.cur+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.cur+1].Kind == kind
}

func (p *Parser) nextKwIn(kws ...string) bool {
	if p.cur+1 >= len(p.tokens) {
		return false
	}
	next := p.tokens[p.cur+1]
	if next.Kind != lexer.TokenKeyword {
		return false
	}
	for _, kw := range kws {
		if next.Lexeme == kw {
			return true
		}
	}
	return false
}

func (p *Parser) mark() int      { return p.cur }
func (p *Parser) reset(save int) { p.cur = save }

func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.cur++
	}
	return p.tokens[p.cur-1]
}

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.cur]
}

func (p *Parser) previous() lexer.Token {
	return p.tokens[p.cur-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == lexer.TokenEOF
}

func (p *Parser) errAt(tok lexer.Token, msg string) *Error {
	return &Error{Msg: msg, Line: tok.Line, Col: tok.Col}
}

func tokPos(tok lexer.Token) ast.Pos {
	return ast.Pos{Line: tok.Line, Col: tok.Col}
}
