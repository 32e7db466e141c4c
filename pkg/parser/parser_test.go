package parser

import (
	"testing"

	"github.com/ignamv/veriloga/pkg/ast"
	"github.com/ignamv/veriloga/pkg/source"
	"github.com/ignamv/veriloga/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseExpr(t *testing.T, text string) ast.Expr {
	t.Helper()
	file := source.NewFile("t.va", []byte(text))
	toks, lerr := token.Lex(file)
	require.Nil(t, lerr)
	var filtered []token.Token
	for _, tk := range toks {
		if tk.Kind != token.NEWLINE {
			filtered = append(filtered, tk)
		}
	}
	p := New(filtered)
	e, err := p.Expression()
	require.Nil(t, err)
	return e
}

// unparse renders an expression back to fully-parenthesized text so
// associativity/precedence are unambiguous in assertions.
func unparse(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.Literal:
		return n.Token.Text
	case *ast.Identifier:
		return n.Token.Text
	case *ast.Operation:
		if len(n.Operands) == 1 {
			return "(" + n.Operator.Text + unparse(n.Operands[0]) + ")"
		}
		if n.Operator.Kind == token.TERNARY {
			return "(" + unparse(n.Operands[0]) + " ? " + unparse(n.Operands[1]) + " : " + unparse(n.Operands[2]) + ")"
		}
		return "(" + unparse(n.Operands[0]) + n.Operator.Text + unparse(n.Operands[1]) + ")"
	}
	return "?"
}

// spec.md §4.3 deliberately keeps "**" left-associative (the source's own
// "confirmed with Spectre" comment), diverging from standard Verilog-A.
func TestPowerIsLeftAssociative(t *testing.T) {
	e := parseExpr(t, "a**b**c")
	assert.Equal(t, "((a**b)**c)", unparse(e))
}

func TestMultiplicationBindsTighterThanAddition(t *testing.T) {
	e := parseExpr(t, "a+b*c")
	assert.Equal(t, "(a+(b*c))", unparse(e))
}

func TestAdditionIsLeftAssociative(t *testing.T) {
	e := parseExpr(t, "a-b-c")
	assert.Equal(t, "((a-b)-c)", unparse(e))
}

func TestTernaryIsRightAssociativeAndLowestPrecedence(t *testing.T) {
	e := parseExpr(t, "a ? b : c ? d : e")
	assert.Equal(t, "(a ? b : (c ? d : e))", unparse(e))
}

func TestComparisonBelowArithmeticAboveEquality(t *testing.T) {
	e := parseExpr(t, "a+b < c == d")
	assert.Equal(t, "(((a+b)<c)==d)", unparse(e))
}

func TestLogicalOrBelowLogicalAnd(t *testing.T) {
	e := parseExpr(t, "a && b || c && d")
	assert.Equal(t, "((a&&b)||(c&&d))", unparse(e))
}

func TestParenthesesOverridePrecedence(t *testing.T) {
	e := parseExpr(t, "(a+b)*c")
	assert.Equal(t, "((a+b)*c)", unparse(e))
}

func parseStmt(t *testing.T, text string) ast.Stmt {
	t.Helper()
	file := source.NewFile("t.va", []byte(text))
	toks, lerr := token.Lex(file)
	require.Nil(t, lerr)
	var filtered []token.Token
	for _, tk := range toks {
		if tk.Kind != token.NEWLINE {
			filtered = append(filtered, tk)
		}
	}
	p := New(filtered)
	s, err := p.Statement()
	require.Nil(t, err)
	return s
}

// Dangling else binds to the nearest unmatched `if` (spec.md §4.3).
func TestDanglingElseBindsToNearestIf(t *testing.T) {
	s := parseStmt(t, "if (a) if (b) x=1; else x=2;")
	outer, ok := s.(*ast.If)
	require.True(t, ok)
	require.Nil(t, outer.Else)
	inner, ok := outer.Then.(*ast.If)
	require.True(t, ok)
	require.NotNil(t, inner.Else)
}

// A bare `;` is a valid, effect-free analog statement (the grammar's
// analog_statement_or_null production).
func TestBareSemicolonParsesAsNullStatement(t *testing.T) {
	s := parseStmt(t, ";")
	_, ok := s.(*ast.NullStatement)
	require.True(t, ok)
}

func TestUnexpectedTokenFailsWithOrigin(t *testing.T) {
	file := source.NewFile("t.va", []byte("a + ;"))
	toks, lerr := token.Lex(file)
	require.Nil(t, lerr)
	p := New(toks)
	_, err := p.Expression()
	require.NotNil(t, err)
	assert.NotEmpty(t, err.Origin)
}
