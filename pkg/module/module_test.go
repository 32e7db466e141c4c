package module_test

import (
	"testing"

	"github.com/ignamv/veriloga/pkg/compiler"
	"github.com/ignamv/veriloga/pkg/module"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, src string) *module.CompiledModule {
	t.Helper()
	mods, err := compiler.CompileSourceFile("t.va", src, compiler.CompilationConfig{Stdlib: true}, nil)
	require.Nil(t, err, "%v", err)
	require.Len(t, mods, 1)
	return mods[0]
}

func TestVariableUnknownNameReturnsError(t *testing.T) {
	m := build(t, `module m(); real x; analog x = 1; endmodule`)
	_, err := m.Variable("nope")
	assert.NotNil(t, err)
}

func TestParameterUnknownNameReturnsError(t *testing.T) {
	m := build(t, `module m(); parameter real p=1; analog ; endmodule`)
	_, err := m.Parameter("nope")
	assert.NotNil(t, err)
}

// A declared parameter must not be reachable through the plain-variable
// accessor, and vice versa: the two views are disjoint (module.go's
// variableByName filters on GParameter).
func TestVariableAndParameterViewsAreDisjoint(t *testing.T) {
	m := build(t, `module m(); parameter real p=1; real v; analog v=p; endmodule`)
	_, err := m.Variable("p")
	assert.NotNil(t, err, "p is a parameter, not a plain variable")
	_, err = m.Parameter("v")
	assert.NotNil(t, err, "v is a plain variable, not a parameter")
}

func TestNetPotentialUnknownNetReturnsError(t *testing.T) {
	m := build(t, `module m(a); inout electrical a; analog ; endmodule`)
	_, err := m.NetPotential("b")
	assert.NotNil(t, err)
}

func TestNetFlowUnknownNetReturnsError(t *testing.T) {
	m := build(t, `module m(a); inout electrical a; analog ; endmodule`)
	_, err := m.NetFlow("b")
	assert.NotNil(t, err)
}

func TestBranchPotentialUnknownBranchReturnsError(t *testing.T) {
	m := build(t, `module m(a,b); inout electrical a,b; analog I(a,b) <+ 1.0; endmodule`)
	_, err := m.BranchPotential("a", "c")
	assert.NotNil(t, err)
}

func TestBranchFlowUnknownBranchReturnsError(t *testing.T) {
	m := build(t, `module m(a,b); inout electrical a,b; analog I(a,b) <+ 1.0; endmodule`)
	_, err := m.BranchFlow("a", "c")
	assert.NotNil(t, err)
}

// Implicit-ground branches key on Net2 == "" and must not collide with a
// same-named two-terminal branch (hir.BranchKey, spec.md §4.2 branch keying).
func TestImplicitGroundBranchIsDistinctFromTwoTerminal(t *testing.T) {
	m := build(t, `module m(a,b); inout electrical a,b;
analog I(a) <+ 1.0;
analog V(a,b) <+ 2.0;
endmodule`)
	require.Nil(t, m.RunAnalog())
	ground, err := m.BranchFlow("a", "")
	require.Nil(t, err)
	_ = ground
	pot, err := m.BranchPotential("a", "b")
	require.Nil(t, err)
	assert.Equal(t, 2.0, pot)
}

// Branches() lists every branch the module referenced, in first-use order.
func TestBranchesListsReferencedBranches(t *testing.T) {
	m := build(t, `module m(a,b,c); inout electrical a,b,c;
analog I(a,b) <+ 1.0;
analog I(b,c) <+ 1.0;
endmodule`)
	bs := m.Branches()
	require.Len(t, bs, 2)
	assert.Equal(t, "a", bs[0].Net1)
	assert.Equal(t, "b", bs[0].Net2)
	assert.Equal(t, "b", bs[1].Net1)
	assert.Equal(t, "c", bs[1].Net2)
}
