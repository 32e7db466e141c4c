package preprocess

import (
	"fmt"
	"testing"

	"github.com/ignamv/veriloga/pkg/source"
	"github.com/ignamv/veriloga/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noFiles(path string) (*source.File, error) {
	return nil, fmt.Errorf("no such file: %s", path)
}

func expandText(t *testing.T, text string) []token.Token {
	t.Helper()
	file := source.NewFile("t.va", []byte(text))
	toks, lerr := token.Lex(file)
	require.Nil(t, lerr)
	p := New(nil, noFiles)
	out, perr := p.Expand(toks, ".")
	require.Nil(t, perr)
	return out
}

func kindsOf(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestObjectMacro(t *testing.T) {
	out := expandText(t, "`define TWO 2\nx = `TWO;")
	assert.Equal(t, []token.Kind{token.SIMPLE_IDENTIFIER, token.ASSIGNOP, token.UNSIGNED_NUMBER, token.SEMICOLON}, kindsOf(out))
	assert.Equal(t, int64(2), out[2].Int)
}

func TestFunctionMacro(t *testing.T) {
	out := expandText(t, "`define ADD(a,b) a+b\nx = `ADD(1,y);")
	assert.Equal(t, []token.Kind{
		token.SIMPLE_IDENTIFIER, token.ASSIGNOP,
		token.UNSIGNED_NUMBER, token.PLUS, token.SIMPLE_IDENTIFIER,
		token.SEMICOLON,
	}, kindsOf(out))
	assert.Equal(t, "y", out[4].Text)
}

func TestIfdefTrue(t *testing.T) {
	out := expandText(t, "`define FOO 1\n`ifdef FOO\nx;\n`else\ny;\n`endif\n")
	assert.Equal(t, []token.Kind{token.SIMPLE_IDENTIFIER, token.SEMICOLON}, kindsOf(out))
	assert.Equal(t, "x", out[0].Text)
}

func TestIfdefFalse(t *testing.T) {
	out := expandText(t, "`ifdef FOO\nx;\n`else\ny;\n`endif\n")
	assert.Equal(t, "y", out[0].Text)
}

func TestIfdefNestedInDroppedBlock(t *testing.T) {
	// The dropped (false) branch contains a nested `ifdef/`endif pair; a
	// naive non-counting skip would stop at the nested `endif and treat the
	// following tokens as live.
	out := expandText(t, "`define OUTER 1\n`ifdef NOPE\n`ifdef OUTER\nbad;\n`endif\nalsobad;\n`endif\ngood;\n")
	assert.Equal(t, []token.Kind{token.SIMPLE_IDENTIFIER, token.SEMICOLON}, kindsOf(out))
	assert.Equal(t, "good", out[0].Text)
}

func TestUndefinedMacro(t *testing.T) {
	file := source.NewFile("t.va", []byte("`NOPE;"))
	toks, lerr := token.Lex(file)
	require.Nil(t, lerr)
	p := New(nil, noFiles)
	_, perr := p.Expand(toks, ".")
	require.NotNil(t, perr)
}
