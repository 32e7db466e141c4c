package lower

import (
	"testing"

	"github.com/ignamv/veriloga/pkg/hir"
	"github.com/ignamv/veriloga/pkg/parser"
	"github.com/ignamv/veriloga/pkg/preprocess"
	"github.com/ignamv/veriloga/pkg/source"
	"github.com/ignamv/veriloga/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lowerSource(t *testing.T, src string) (*hir.SourceFile, *source.SyntaxError) {
	t.Helper()
	file := source.NewFile("t.va", []byte(src))
	toks, lerr := token.Lex(file)
	require.Nil(t, lerr)
	expanded, perr := preprocess.New(nil, nil).Expand(toks, "")
	require.Nil(t, perr)
	p := parser.New(expanded)
	sf, serr := p.SourceFile()
	require.Nil(t, serr)
	return New().LowerSourceFile(sf)
}

// idt_nature/ddt_nature cross-references may be mutually cyclic, so every
// nature must exist (name-only) before any attribute is resolved (spec.md
// §4.4 item 1, §9).
func TestNaturesResolveCyclicIdtDdtReferences(t *testing.T) {
	src := `
nature Voltage;
  units = "V";
  access = V;
  ddt_nature = Flux;
endnature
nature Flux;
  units = "Wb";
  access = Phi;
  idt_nature = Voltage;
endnature
`
	hf, err := lowerSource(t, src)
	require.Nil(t, err, "%v", err)
	require.Len(t, hf.Natures, 2)
	var v, flux *hir.Nature
	for _, n := range hf.Natures {
		switch n.Name {
		case "Voltage":
			v = n
		case "Flux":
			flux = n
		}
	}
	require.NotNil(t, v)
	require.NotNil(t, flux)
	assert.Same(t, flux, v.DdtNature)
	assert.Same(t, v, flux.IdtNature)
}

func TestUndefinedNatureInIdtNatureFails(t *testing.T) {
	src := `
nature Voltage;
  units = "V";
  access = V;
  idt_nature = Bogus;
endnature
`
	_, err := lowerSource(t, src)
	require.NotNil(t, err)
}

const disciplinesPreamble = `
nature Voltage;
  units = "V";
  access = V;
  ddt_nature = Flux;
endnature
nature Current;
  units = "A";
  access = I;
  idt_nature = Charge;
endnature
nature Charge;
  units = "C";
  access = Q;
  ddt_nature = Current;
endnature
nature Flux;
  units = "Wb";
  access = Phi;
  idt_nature = Voltage;
endnature
discipline electrical;
  potential = Voltage;
  flow = Current;
enddiscipline
`

func lowerModuleSource(t *testing.T, body string) *hir.Module {
	t.Helper()
	hf, err := lowerSource(t, disciplinesPreamble+body)
	require.Nil(t, err, "%v", err)
	require.Len(t, hf.Modules, 1)
	return hf.Modules[0]
}

// A flow and a potential contribution naming the same net pair must resolve
// to the same branch, not two distinct ones (spec.md §4.2 branch keying by
// (net1,net2)).
func TestAccessorContributionsOnSameNetPairShareOneBranch(t *testing.T) {
	m := lowerModuleSource(t, `module m(a,b); inout electrical a,b;
analog I(a,b) <+ 1.0;
analog V(a,b) <+ 2.0;
endmodule`)
	require.Len(t, m.BranchOrder, 1, "both contributions must key to the same branch")
}

// A branch keyed (a,b) must stay distinct from one keyed (b,a): endpoint
// order is part of the key.
func TestBranchKeyIsOrderSensitive(t *testing.T) {
	m := lowerModuleSource(t, `module m(a,b); inout electrical a,b;
analog I(a,b) <+ 1.0;
analog I(b,a) <+ 1.0;
endmodule`)
	require.Len(t, m.BranchOrder, 2)
}

// Assigning an integer expression to a real variable must insert an
// explicit coercion rather than silently reinterpreting the value
// (spec.md §4.4 item 4).
func TestIntToRealAssignmentInsertsCoercion(t *testing.T) {
	m := lowerModuleSource(t, `module m(); real r; analog r = 2; endmodule`)
	require.Len(t, m.Statements, 1)
	asg, ok := m.Statements[0].(*hir.Assignment)
	require.True(t, ok)
	assert.Equal(t, hir.Real, asg.Value.ExprType())
	_, isLiteral := asg.Value.(*hir.Literal)
	assert.False(t, isLiteral, "a bare integer literal must be wrapped in a coercion call, not left as-is")
}

func TestMixingStringWithRealIsAnError(t *testing.T) {
	src := disciplinesPreamble + `module m(); real r; analog r = "x"; endmodule`
	_, err := lowerSource(t, src)
	require.NotNil(t, err)
}

func TestUndefinedIdentifierInExpressionFails(t *testing.T) {
	src := disciplinesPreamble + `module m(); real r; analog r = nope; endmodule`
	_, err := lowerSource(t, src)
	require.NotNil(t, err)
}

func TestDuplicateVariableDeclarationFails(t *testing.T) {
	src := disciplinesPreamble + `module m(); real x; real x; analog x = 1; endmodule`
	_, err := lowerSource(t, src)
	require.NotNil(t, err)
}

func TestAssigningToParameterFails(t *testing.T) {
	src := disciplinesPreamble + `module m(); parameter real p=1; analog p = 2; endmodule`
	_, err := lowerSource(t, src)
	require.NotNil(t, err)
}

func TestAssigningToNonVariableFails(t *testing.T) {
	src := disciplinesPreamble + `module m(); analog electrical = 1; endmodule`
	_, err := lowerSource(t, src)
	require.NotNil(t, err)
}

// A `potential accessor call on something that isn't a net argument (the
// module name itself, here) must fail rather than silently resolve.
func TestProbeOnNonNetArgumentFails(t *testing.T) {
	src := disciplinesPreamble + `module m(); real r; analog r = V(m); endmodule`
	_, err := lowerSource(t, src)
	require.NotNil(t, err)
}
