// Package parser builds an untyped parse tree (package ast) from a
// preprocessed token stream, using a Pratt-style expression parser over a
// peeking token iterator. It performs no symbol resolution or typing; that
// is left to package lower.
package parser

import (
	"github.com/ignamv/veriloga/pkg/ast"
	"github.com/ignamv/veriloga/pkg/source"
	"github.com/ignamv/veriloga/pkg/token"
)

var directions = map[token.Kind]bool{token.INPUT: true, token.OUTPUT: true, token.INOUT: true}
var varTypes = map[token.Kind]bool{token.REAL: true, token.INTEGER: true, token.STRING: true}
var natureAttrs = map[token.Kind]bool{
	token.UNITS: true, token.ACCESS: true, token.IDT_NATURE: true,
	token.DDT_NATURE: true, token.ABSTOL: true,
}

// unaryOperators is the set of token kinds that may prefix a primary
// expression as a unary operator.
var unaryOperators = map[token.Kind]bool{
	token.MINUS: true, token.PLUS: true, token.LOGICALNEGATION: true, token.BITWISENEGATION: true,
}

type associativity int

const (
	leftAssoc associativity = iota
	rightAssoc
)

type opInfo struct {
	precedence int
	assoc      associativity
}

// operators gives the precedence/associativity table from spec.md §4.3.
// "**" is deliberately left-associative, matching the original's comment
// that this was "confirmed with Spectre" even though standard Verilog-A
// treats it right-associative (see spec.md §9).
var operators = map[token.Kind]opInfo{
	token.RAISED:             {13, leftAssoc},
	token.TIMES:              {12, leftAssoc},
	token.DIVIDED:            {12, leftAssoc},
	token.MODULUS:            {12, leftAssoc},
	token.PLUS:               {11, leftAssoc},
	token.MINUS:              {11, leftAssoc},
	token.LOGICRIGHTSHIFT:    {10, leftAssoc},
	token.LOGICLEFTSHIFT:     {10, leftAssoc},
	token.GREATEROREQUAL:     {9, leftAssoc},
	token.GREATER:            {9, leftAssoc},
	token.SMALLER:            {9, leftAssoc},
	token.SMALLEROREQUAL:     {9, leftAssoc},
	token.NOTEQUAL:           {8, leftAssoc},
	token.EQUALS:             {8, leftAssoc},
	token.BITWISEAND:         {7, leftAssoc},
	token.XOROP:              {6, leftAssoc},
	token.XNOROP:             {6, leftAssoc},
	token.BITWISEOR:          {5, leftAssoc},
	token.LOGICALAND:         {4, leftAssoc},
	token.LOGICALOR:          {3, leftAssoc},
	token.TERNARY:            {2, rightAssoc},
}

// Parser consumes a flat token slice with unbounded lookahead (the whole
// slice is already in memory, unlike the reference's lazy peeking
// iterator) but otherwise mirrors its structure: an index plus a record of
// the most recently consumed token for error origins.
type Parser struct {
	tokens []token.Token
	idx    int
	last   token.Token
}

// New constructs a Parser over an already-preprocessed token stream.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

func (p *Parser) eof() bool { return p.idx >= len(p.tokens) }

func (p *Parser) peek() token.Token {
	if p.eof() {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.idx]
}

func (p *Parser) peekAt(ahead int) token.Token {
	i := p.idx + ahead
	if i >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[i]
}

func (p *Parser) peekType() token.Kind { return p.peek().Kind }

func (p *Parser) next() token.Token {
	tok := p.peek()
	if !p.eof() {
		p.idx++
	}
	p.last = tok
	return tok
}

func (p *Parser) fail(format string, args ...any) *source.SyntaxError {
	return source.NewSyntaxError(p.last.Origin, format, args...)
}

func (p *Parser) expectTypes(kinds []token.Kind, why string) (token.Token, *source.SyntaxError) {
	tok := p.next()
	for _, k := range kinds {
		if tok.Kind == k {
			return tok, nil
		}
	}
	return token.Token{}, source.NewSyntaxError(tok.Origin, "unexpected token %s; expected one of %v %s", tok.Kind, kinds, why)
}

func (p *Parser) expectType(kind token.Kind, why string) (token.Token, *source.SyntaxError) {
	return p.expectTypes([]token.Kind{kind}, why)
}

// Expression parses a full expression at the lowest precedence.
func (p *Parser) Expression() (ast.Expr, *source.SyntaxError) {
	return p.expression(0)
}

func (p *Parser) expression(minPrecedence int) (ast.Expr, *source.SyntaxError) {
	var result ast.Expr
	var err *source.SyntaxError
	if unaryOperators[p.peekType()] {
		op := p.next()
		operand, e := p.expressionPrimary()
		if e != nil {
			return nil, e
		}
		result = &ast.Operation{Operator: op, Operands: []ast.Expr{operand}}
	} else {
		result, err = p.expressionPrimary()
		if err != nil {
			return nil, err
		}
	}
	for {
		op := p.peek()
		info, ok := operators[op.Kind]
		if !ok || info.precedence < minPrecedence {
			return result, nil
		}
		p.next()
		childMin := info.precedence
		if info.assoc == leftAssoc {
			childMin++
		}
		rhs, e := p.expression(childMin)
		if e != nil {
			return nil, e
		}
		operands := []ast.Expr{result, rhs}
		if op.Kind == token.TERNARY {
			if _, e := p.expectType(token.COLON, "separating ternary expression arguments"); e != nil {
				return nil, e
			}
			third, e := p.expression(childMin)
			if e != nil {
				return nil, e
			}
			operands = append(operands, third)
		}
		result = &ast.Operation{Operator: op, Operands: operands}
	}
}

var builtinFunctionKinds = token.BuiltinFunctionKinds

func (p *Parser) expressionPrimary() (ast.Expr, *source.SyntaxError) {
	tok := p.next()
	switch tok.Kind {
	case token.LPAREN:
		e, err := p.Expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectType(token.RPAREN, "to close parenthesized expression"); err != nil {
			return nil, err
		}
		return e, nil
	case token.REAL_NUMBER, token.UNSIGNED_NUMBER, token.STRING_LITERAL:
		return &ast.Literal{Token: tok}, nil
	case token.SIMPLE_IDENTIFIER, token.SYSTEM_IDENTIFIER:
		return p.maybeCall(tok)
	}
	if _, ok := builtinFunctionKinds[tok.Kind]; ok {
		return p.maybeCall(tok)
	}
	return nil, source.NewSyntaxError(tok.Origin, "expected expression, got %s", tok.Kind)
}

func (p *Parser) maybeCall(nameTok token.Token) (ast.Expr, *source.SyntaxError) {
	id := &ast.Identifier{Token: nameTok}
	if p.peekType() != token.LPAREN {
		return id, nil
	}
	p.next()
	var args []ast.Expr
	for p.peekType() != token.RPAREN {
		arg, err := p.Expression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.peekType() == token.RPAREN {
			break
		}
		if _, err := p.expectType(token.COMMA, "separating function arguments"); err != nil {
			return nil, err
		}
	}
	p.next()
	return &ast.FunctionCall{Function: id, Args: args}, nil
}

// Nature parses `nature name; attr...; endnature`.
func (p *Parser) Nature() (*ast.Nature, *source.SyntaxError) {
	if _, err := p.expectType(token.NATURE, ""); err != nil {
		return nil, err
	}
	name, err := p.expectType(token.SIMPLE_IDENTIFIER, "for nature name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectType(token.SEMICOLON, ""); err != nil {
		return nil, err
	}
	var attrs []ast.NatureAttribute
	for p.peekType() != token.ENDNATURE {
		attr, err := p.natureAttribute()
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, attr)
	}
	p.next()
	return &ast.Nature{Name: name, Attributes: attrs}, nil
}

func (p *Parser) natureAttribute() (ast.NatureAttribute, *source.SyntaxError) {
	var keys []token.Kind
	for k := range natureAttrs {
		keys = append(keys, k)
	}
	key, err := p.expectTypes(keys, "for nature attribute name")
	if err != nil {
		return ast.NatureAttribute{}, err
	}
	if _, err := p.expectType(token.ASSIGNOP, ""); err != nil {
		return ast.NatureAttribute{}, err
	}
	value, err := p.Expression()
	if err != nil {
		return ast.NatureAttribute{}, err
	}
	if _, err := p.expectType(token.SEMICOLON, ""); err != nil {
		return ast.NatureAttribute{}, err
	}
	return ast.NatureAttribute{Key: key, Value: value}, nil
}

// Discipline parses `discipline name; attr...; enddiscipline`.
func (p *Parser) Discipline() (*ast.Discipline, *source.SyntaxError) {
	if _, err := p.expectType(token.DISCIPLINE, ""); err != nil {
		return nil, err
	}
	name, err := p.expectType(token.SIMPLE_IDENTIFIER, "for discipline name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectType(token.SEMICOLON, ""); err != nil {
		return nil, err
	}
	var attrs []ast.DisciplineAttribute
	for p.peekType() != token.ENDDISCIPLINE {
		attr, err := p.disciplineAttribute()
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, attr)
	}
	p.next()
	return &ast.Discipline{Name: name, Attributes: attrs}, nil
}

func (p *Parser) disciplineAttribute() (ast.DisciplineAttribute, *source.SyntaxError) {
	key, err := p.expectTypes([]token.Kind{token.FLOW, token.POTENTIAL, token.DOMAIN}, "for discipline attribute")
	if err != nil {
		return ast.DisciplineAttribute{}, err
	}
	if _, err := p.expectType(token.ASSIGNOP, ""); err != nil {
		return ast.DisciplineAttribute{}, err
	}
	var value token.Token
	if key.Kind == token.DOMAIN {
		value, err = p.expectTypes([]token.Kind{token.DISCRETE, token.CONTINUOUS}, "")
	} else {
		value, err = p.expectType(token.SIMPLE_IDENTIFIER, "")
	}
	if err != nil {
		return ast.DisciplineAttribute{}, err
	}
	if _, err := p.expectType(token.SEMICOLON, ""); err != nil {
		return ast.DisciplineAttribute{}, err
	}
	return ast.DisciplineAttribute{Key: key, Value: value}, nil
}

// Module parses `module name(ports...); items... endmodule`.
func (p *Parser) Module() (*ast.Module, *source.SyntaxError) {
	if _, err := p.expectType(token.MODULE, ""); err != nil {
		return nil, err
	}
	name, err := p.expectType(token.SIMPLE_IDENTIFIER, "for module name")
	if err != nil {
		return nil, err
	}
	var ports []ast.Port
	var nets []ast.Net
	if p.peekType() == token.LPAREN {
		ports, nets, err = p.listOfPorts()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expectType(token.SEMICOLON, ""); err != nil {
		return nil, err
	}
	var variables []ast.Variable
	var statements []ast.Stmt
	var branches []ast.Branch
	var parameters []ast.Parameter
	for {
		switch kind := p.peekType(); {
		case kind == token.ENDMODULE:
			p.next()
			return &ast.Module{
				Name: name, Ports: ports, Nets: nets, Variables: variables,
				Statements: statements, Branches: branches, Parameters: parameters,
			}, nil
		case kind == token.SIMPLE_IDENTIFIER:
			newNets, err := p.netDeclaration()
			if err != nil {
				return nil, err
			}
			nets = append(nets, newNets...)
		case directions[kind]:
			newNets, newPorts, err := p.portDeclaration()
			if err != nil {
				return nil, err
			}
			nets = append(nets, newNets...)
			ports = append(ports, newPorts...)
		case varTypes[kind]:
			newVars, err := p.variableDeclaration()
			if err != nil {
				return nil, err
			}
			variables = append(variables, newVars...)
		case kind == token.ANALOG:
			p.next()
			stmt, err := p.Statement()
			if err != nil {
				return nil, err
			}
			statements = append(statements, stmt)
		case kind == token.BRANCH:
			branch, err := p.branch()
			if err != nil {
				return nil, err
			}
			branches = append(branches, branch)
		case kind == token.LATTR:
			if err := p.skipAttribute(); err != nil {
				return nil, err
			}
		case kind == token.PARAMETER:
			newParams, err := p.parameterDeclaration()
			if err != nil {
				return nil, err
			}
			parameters = append(parameters, newParams...)
		default:
			tok := p.next()
			return nil, source.NewSyntaxError(tok.Origin, "invalid module item %s", tok.Kind)
		}
	}
}

// skipAttribute discards a `(* name [=expr], ... *)` attribute instance, as
// spec.md §4.3 specifies (parsed and discarded).
func (p *Parser) skipAttribute() *source.SyntaxError {
	for {
		tok := p.next()
		if tok.Kind == token.RATTR {
			return nil
		}
		if tok.Kind == token.EOF {
			return p.fail("unterminated attribute instance")
		}
	}
}

func (p *Parser) parameterDeclaration() ([]ast.Parameter, *source.SyntaxError) {
	if _, err := p.expectType(token.PARAMETER, ""); err != nil {
		return nil, err
	}
	typeTok, err := p.expectTypes([]token.Kind{token.REAL, token.INTEGER, token.STRING}, "for parameter type")
	if err != nil {
		return nil, err
	}
	var params []ast.Parameter
	for {
		name, err := p.expectType(token.SIMPLE_IDENTIFIER, "for parameter name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expectType(token.ASSIGNOP, ""); err != nil {
			return nil, err
		}
		initializer, err := p.Expression()
		if err != nil {
			return nil, err
		}
		var ranges []ast.ParamRange
		for p.peekType() != token.COMMA && p.peekType() != token.SEMICOLON {
			r, err := p.paramRangePart()
			if err != nil {
				return nil, err
			}
			ranges = append(ranges, r)
		}
		params = append(params, ast.Parameter{Name: name, Type: typeTok, Initializer: initializer, Ranges: ranges})
		tok, err := p.expectTypes([]token.Kind{token.COMMA, token.SEMICOLON}, "")
		if err != nil {
			return nil, err
		}
		if tok.Kind == token.SEMICOLON {
			return params, nil
		}
	}
}

func (p *Parser) paramRangeBound() (ast.RangeBound, *source.SyntaxError) {
	if p.peekType() == token.INF {
		p.next()
		return ast.RangeBound{Inf: true}, nil
	}
	if p.peekType() == token.MINUS && p.peekAt(1).Kind == token.INF {
		p.next()
		p.next()
		return ast.RangeBound{NegInf: true}, nil
	}
	e, err := p.Expression()
	if err != nil {
		return ast.RangeBound{}, err
	}
	return ast.RangeBound{Value: e}, nil
}

func (p *Parser) paramRangePart() (ast.ParamRange, *source.SyntaxError) {
	kw, err := p.expectTypes([]token.Kind{token.FROM, token.EXCLUDE}, "")
	if err != nil {
		return ast.ParamRange{}, err
	}
	if p.peekType() == token.LPAREN || p.peekType() == token.LBRACKET {
		openTok := p.next()
		lowIncl := openTok.Kind == token.LBRACKET
		low, err := p.paramRangeBound()
		if err != nil {
			return ast.ParamRange{}, err
		}
		if _, err := p.expectType(token.COLON, ""); err != nil {
			return ast.ParamRange{}, err
		}
		high, err := p.paramRangeBound()
		if err != nil {
			return ast.ParamRange{}, err
		}
		closeTok, err := p.expectTypes([]token.Kind{token.RPAREN, token.RBRACKET}, "")
		if err != nil {
			return ast.ParamRange{}, err
		}
		highIncl := closeTok.Kind == token.RBRACKET
		return ast.ParamRange{Keyword: kw, Low: low, High: high, Inclusive: [2]bool{lowIncl, highIncl}}, nil
	}
	if kw.Kind != token.EXCLUDE {
		return ast.ParamRange{}, p.fail("from must be followed by an interval")
	}
	value, err := p.Expression()
	if err != nil {
		return ast.ParamRange{}, err
	}
	return ast.ParamRange{Keyword: kw, Value: value}, nil
}

func (p *Parser) listOfPorts() ([]ast.Port, []ast.Net, *source.SyntaxError) {
	if _, err := p.expectType(token.LPAREN, ""); err != nil {
		return nil, nil, err
	}
	var ports []ast.Port
	var nets []ast.Net
	for {
		kinds := []token.Kind{token.RPAREN, token.SIMPLE_IDENTIFIER, token.INPUT, token.OUTPUT, token.INOUT}
		tok1, err := p.expectTypes(kinds, "")
		if err != nil {
			return nil, nil, err
		}
		switch {
		case tok1.Kind == token.RPAREN:
			return ports, nets, nil
		case tok1.Kind == token.SIMPLE_IDENTIFIER:
			ports = append(ports, ast.Port{Name: tok1})
		case directions[tok1.Kind]:
			direction := tok1
			nameOrDiscipline, err := p.expectType(token.SIMPLE_IDENTIFIER, "")
			if err != nil {
				return nil, nil, err
			}
			var name token.Token
			if p.peekType() == token.SIMPLE_IDENTIFIER {
				discipline := nameOrDiscipline
				name = p.next()
				nets = append(nets, ast.Net{Name: name, Discipline: discipline})
			} else {
				name = nameOrDiscipline
			}
			ports = append(ports, ast.Port{Name: name, Direction: &direction})
		}
		tok, err := p.expectTypes([]token.Kind{token.RPAREN, token.COMMA}, "")
		if err != nil {
			return nil, nil, err
		}
		if tok.Kind == token.RPAREN {
			return ports, nets, nil
		}
	}
}

func (p *Parser) portDeclaration() ([]ast.Net, []ast.Port, *source.SyntaxError) {
	direction, err := p.expectTypes([]token.Kind{token.INPUT, token.OUTPUT, token.INOUT}, "")
	if err != nil {
		return nil, nil, err
	}
	nameOrDiscipline, err := p.expectType(token.SIMPLE_IDENTIFIER, "")
	if err != nil {
		return nil, nil, err
	}
	var discipline *token.Token
	var names []token.Token
	if p.peekType() == token.SIMPLE_IDENTIFIER {
		discipline = &nameOrDiscipline
	} else {
		names = append(names, nameOrDiscipline)
	}
	for {
		if len(names) > 0 {
			tok, err := p.expectTypes([]token.Kind{token.SEMICOLON, token.COMMA}, "")
			if err != nil {
				return nil, nil, err
			}
			if tok.Kind == token.SEMICOLON {
				break
			}
		}
		name, err := p.expectType(token.SIMPLE_IDENTIFIER, "")
		if err != nil {
			return nil, nil, err
		}
		names = append(names, name)
	}
	var nets []ast.Net
	var ports []ast.Port
	for _, name := range names {
		ports = append(ports, ast.Port{Name: name, Direction: &direction})
		if discipline != nil {
			nets = append(nets, ast.Net{Name: name, Discipline: *discipline})
		}
	}
	return nets, ports, nil
}

func (p *Parser) netDeclaration() ([]ast.Net, *source.SyntaxError) {
	discipline, err := p.expectType(token.SIMPLE_IDENTIFIER, "")
	if err != nil {
		return nil, err
	}
	var nets []ast.Net
	for {
		name, err := p.expectType(token.SIMPLE_IDENTIFIER, "for net name")
		if err != nil {
			return nil, err
		}
		nets = append(nets, ast.Net{Name: name, Discipline: discipline})
		tok, err := p.expectTypes([]token.Kind{token.SEMICOLON, token.COMMA}, "")
		if err != nil {
			return nil, err
		}
		if tok.Kind == token.SEMICOLON {
			return nets, nil
		}
	}
}

// Statement parses any analog statement.
func (p *Parser) Statement() (ast.Stmt, *source.SyntaxError) {
	switch p.peekType() {
	case token.SIMPLE_IDENTIFIER:
		stmt, err := p.assignmentOrContribution()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectType(token.SEMICOLON, ""); err != nil {
			return nil, err
		}
		return stmt, nil
	case token.BEGIN:
		return p.block()
	case token.IF:
		return p.ifStmt()
	case token.SYSTEM_IDENTIFIER:
		return p.systemTaskCall()
	case token.CASE:
		return p.caseStmt()
	case token.FOR:
		return p.forStmt()
	case token.SEMICOLON:
		return &ast.NullStatement{Semicolon: p.next()}, nil
	}
	tok := p.next()
	return nil, source.NewSyntaxError(tok.Origin, "expected analog statement, got %s", tok.Kind)
}

func (p *Parser) assignment() (*ast.Assignment, *source.SyntaxError) {
	lvalue, err := p.expectType(token.SIMPLE_IDENTIFIER, "")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectType(token.ASSIGNOP, ""); err != nil {
		return nil, err
	}
	value, err := p.Expression()
	if err != nil {
		return nil, err
	}
	return &ast.Assignment{Lvalue: lvalue, Value: value}, nil
}

func (p *Parser) assignmentOrContribution() (ast.Stmt, *source.SyntaxError) {
	lvalueOrAccessor, err := p.expectType(token.SIMPLE_IDENTIFIER, "")
	if err != nil {
		return nil, err
	}
	tok, err := p.expectTypes([]token.Kind{token.ASSIGNOP, token.LPAREN}, "")
	if err != nil {
		return nil, err
	}
	if tok.Kind == token.ASSIGNOP {
		value, err := p.Expression()
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Lvalue: lvalueOrAccessor, Value: value}, nil
	}
	arg1, err := p.expectType(token.SIMPLE_IDENTIFIER, "")
	if err != nil {
		return nil, err
	}
	tok, err = p.expectTypes([]token.Kind{token.COMMA, token.RPAREN}, "")
	if err != nil {
		return nil, err
	}
	var arg2 *token.Token
	if tok.Kind == token.COMMA {
		a2, err := p.expectType(token.SIMPLE_IDENTIFIER, "")
		if err != nil {
			return nil, err
		}
		arg2 = &a2
		if _, err := p.expectType(token.RPAREN, ""); err != nil {
			return nil, err
		}
	}
	if _, err := p.expectType(token.ANALOGCONTRIBUTION, ""); err != nil {
		return nil, err
	}
	value, err := p.Expression()
	if err != nil {
		return nil, err
	}
	return &ast.AnalogContribution{Accessor: lvalueOrAccessor, Arg1: arg1, Arg2: arg2, Value: value}, nil
}

func (p *Parser) block() (*ast.Block, *source.SyntaxError) {
	if _, err := p.expectType(token.BEGIN, ""); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for p.peekType() != token.END {
		stmt, err := p.Statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	p.next()
	return &ast.Block{Statements: stmts}, nil
}

func (p *Parser) ifStmt() (*ast.If, *source.SyntaxError) {
	if _, err := p.expectType(token.IF, ""); err != nil {
		return nil, err
	}
	if _, err := p.expectType(token.LPAREN, ""); err != nil {
		return nil, err
	}
	cond, err := p.Expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectType(token.RPAREN, ""); err != nil {
		return nil, err
	}
	then, err := p.Statement()
	if err != nil {
		return nil, err
	}
	var elseStmt ast.Stmt
	if p.peekType() == token.ELSE {
		p.next()
		elseStmt, err = p.Statement()
		if err != nil {
			return nil, err
		}
	}
	return &ast.If{Condition: cond, Then: then, Else: elseStmt}, nil
}

func (p *Parser) forStmt() (*ast.ForLoop, *source.SyntaxError) {
	if _, err := p.expectType(token.FOR, ""); err != nil {
		return nil, err
	}
	if _, err := p.expectType(token.LPAREN, ""); err != nil {
		return nil, err
	}
	initial, err := p.assignment()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectType(token.SEMICOLON, ""); err != nil {
		return nil, err
	}
	cond, err := p.Expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectType(token.SEMICOLON, ""); err != nil {
		return nil, err
	}
	change, err := p.assignment()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectType(token.RPAREN, ""); err != nil {
		return nil, err
	}
	stmt, err := p.Statement()
	if err != nil {
		return nil, err
	}
	return &ast.ForLoop{Initial: initial, Condition: cond, Change: change, Statement: stmt}, nil
}

func (p *Parser) caseStmt() (*ast.Case, *source.SyntaxError) {
	if _, err := p.expectType(token.CASE, ""); err != nil {
		return nil, err
	}
	if _, err := p.expectType(token.LPAREN, ""); err != nil {
		return nil, err
	}
	expr, err := p.Expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectType(token.RPAREN, ""); err != nil {
		return nil, err
	}
	var items []ast.CaseItem
	for len(items) == 0 || p.peekType() != token.ENDCASE {
		item, err := p.caseItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	p.next()
	return &ast.Case{Expr: expr, Items: items}, nil
}

func (p *Parser) caseItem() (ast.CaseItem, *source.SyntaxError) {
	var exprs []ast.Expr
	if p.peekType() == token.DEFAULT {
		p.next()
	} else {
		for {
			e, err := p.Expression()
			if err != nil {
				return ast.CaseItem{}, err
			}
			exprs = append(exprs, e)
			if p.peekType() == token.COLON {
				break
			}
			if _, err := p.expectType(token.COMMA, ""); err != nil {
				return ast.CaseItem{}, err
			}
		}
	}
	if _, err := p.expectType(token.COLON, ""); err != nil {
		return ast.CaseItem{}, err
	}
	stmt, err := p.Statement()
	if err != nil {
		return ast.CaseItem{}, err
	}
	return ast.CaseItem{Exprs: exprs, Statement: stmt}, nil
}

func (p *Parser) systemTaskCall() (*ast.SystemTaskCall, *source.SyntaxError) {
	name, err := p.expectType(token.SYSTEM_IDENTIFIER, "")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectType(token.LPAREN, ""); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for p.peekType() != token.RPAREN {
		arg, err := p.Expression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.peekType() == token.RPAREN {
			break
		}
		if _, err := p.expectType(token.COMMA, "separating function arguments"); err != nil {
			return nil, err
		}
	}
	p.next()
	if _, err := p.expectType(token.SEMICOLON, ""); err != nil {
		return nil, err
	}
	return &ast.SystemTaskCall{Name: name, Args: args}, nil
}

func (p *Parser) variableDeclaration() ([]ast.Variable, *source.SyntaxError) {
	typeTok, err := p.expectTypes([]token.Kind{token.REAL, token.INTEGER, token.STRING}, "")
	if err != nil {
		return nil, err
	}
	var vars []ast.Variable
	for {
		name, err := p.expectType(token.SIMPLE_IDENTIFIER, "")
		if err != nil {
			return nil, err
		}
		tok, err := p.expectTypes([]token.Kind{token.COMMA, token.SEMICOLON, token.ASSIGNOP}, "")
		if err != nil {
			return nil, err
		}
		var initializer ast.Expr
		if tok.Kind == token.ASSIGNOP {
			initializer, err = p.Expression()
			if err != nil {
				return nil, err
			}
			tok, err = p.expectTypes([]token.Kind{token.COMMA, token.SEMICOLON}, "")
			if err != nil {
				return nil, err
			}
		}
		vars = append(vars, ast.Variable{Name: name, Type: typeTok, Initializer: initializer})
		if tok.Kind == token.SEMICOLON {
			return vars, nil
		}
	}
}

func (p *Parser) branch() (ast.Branch, *source.SyntaxError) {
	if _, err := p.expectType(token.BRANCH, ""); err != nil {
		return ast.Branch{}, err
	}
	if _, err := p.expectType(token.LPAREN, ""); err != nil {
		return ast.Branch{}, err
	}
	net1, err := p.expectType(token.SIMPLE_IDENTIFIER, "")
	if err != nil {
		return ast.Branch{}, err
	}
	nets := []token.Token{net1}
	if p.peekType() != token.RPAREN {
		if _, err := p.expectType(token.COMMA, ""); err != nil {
			return ast.Branch{}, err
		}
		net2, err := p.expectType(token.SIMPLE_IDENTIFIER, "")
		if err != nil {
			return ast.Branch{}, err
		}
		nets = append(nets, net2)
	}
	if _, err := p.expectType(token.RPAREN, ""); err != nil {
		return ast.Branch{}, err
	}
	name, err := p.expectType(token.SIMPLE_IDENTIFIER, "")
	if err != nil {
		return ast.Branch{}, err
	}
	if _, err := p.expectType(token.SEMICOLON, ""); err != nil {
		return ast.Branch{}, err
	}
	return ast.Branch{Name: name, Nets: nets}, nil
}

// SourceFile parses an entire source file: every module, nature, and
// discipline declared at the top level, in source order.
func (p *Parser) SourceFile() (*ast.SourceFile, *source.SyntaxError) {
	sf := &ast.SourceFile{}
	for !p.eof() {
		switch p.peekType() {
		case token.MODULE:
			m, err := p.Module()
			if err != nil {
				return nil, err
			}
			sf.Modules = append(sf.Modules, *m)
		case token.NATURE:
			n, err := p.Nature()
			if err != nil {
				return nil, err
			}
			sf.Natures = append(sf.Natures, *n)
		case token.DISCIPLINE:
			d, err := p.Discipline()
			if err != nil {
				return nil, err
			}
			sf.Disciplines = append(sf.Disciplines, *d)
		default:
			tok := p.next()
			return nil, source.NewSyntaxError(tok.Origin, "expected module, nature or discipline, got %s", tok.Kind)
		}
	}
	return sf, nil
}
