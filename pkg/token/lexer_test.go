package token

import (
	"testing"

	"github.com/ignamv/veriloga/pkg/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexString(t *testing.T, text string) []Token {
	t.Helper()
	file := source.NewFile("test.va", []byte(text))
	toks, err := Lex(file)
	require.Nil(t, err)
	return toks
}

func TestLexNumbers(t *testing.T) {
	toks := lexString(t, "42 3.14 1K 2.5M 1e-3 7")
	kinds := make([]Kind, len(toks))
	for i, tk := range toks {
		kinds[i] = tk.Kind
	}
	assert.Equal(t, []Kind{UNSIGNED_NUMBER, REAL_NUMBER, REAL_NUMBER, REAL_NUMBER, REAL_NUMBER, UNSIGNED_NUMBER}, kinds)
	assert.Equal(t, int64(42), toks[0].Int)
	assert.InDelta(t, 3.14, toks[1].Real, 1e-9)
	assert.InDelta(t, 1e3, toks[2].Real, 1e-9)
	assert.InDelta(t, 2.5e6, toks[3].Real, 1e-9)
	assert.InDelta(t, 1e-3, toks[4].Real, 1e-12)
}

func TestLexIdentifiersAndKeywords(t *testing.T) {
	toks := lexString(t, "module foo input vout")
	require.Len(t, toks, 4)
	assert.Equal(t, MODULE, toks[0].Kind)
	assert.Equal(t, SIMPLE_IDENTIFIER, toks[1].Kind)
	assert.Equal(t, "foo", toks[1].Text)
	assert.Equal(t, INPUT, toks[2].Kind)
	assert.Equal(t, SIMPLE_IDENTIFIER, toks[3].Kind)
}

func TestLexOperatorsLongestMatchFirst(t *testing.T) {
	toks := lexString(t, "a <+ b <= c ** d")
	kinds := make([]Kind, len(toks))
	for i, tk := range toks {
		kinds[i] = tk.Kind
	}
	assert.Equal(t, []Kind{
		SIMPLE_IDENTIFIER, ANALOGCONTRIBUTION, SIMPLE_IDENTIFIER,
		SMALLEROREQUAL, SIMPLE_IDENTIFIER, RAISED, SIMPLE_IDENTIFIER,
	}, kinds)
}

func TestLexStringLiteral(t *testing.T) {
	toks := lexString(t, `"hello \"world\""`)
	require.Len(t, toks, 1)
	assert.Equal(t, STRING_LITERAL, toks[0].Kind)
	assert.Equal(t, `hello \"world\"`, toks[0].Text)
}

func TestLexMacroAndDirectives(t *testing.T) {
	toks := lexString(t, "`define FOO 1\n`ifdef FOO\n`endif\n`FOO")
	var kinds []Kind
	for _, tk := range toks {
		if tk.Kind == NEWLINE {
			continue
		}
		kinds = append(kinds, tk.Kind)
	}
	assert.Equal(t, []Kind{DEFINE, UNSIGNED_NUMBER, IFDEF, SIMPLE_IDENTIFIER, ENDIFDEF, MACROCALL}, kinds)
	assert.Equal(t, "FOO", toks[0].Text)
}

func TestLexUnknownCharacter(t *testing.T) {
	file := source.NewFile("bad.va", []byte("a @ b"))
	_, err := Lex(file)
	require.NotNil(t, err)
}
