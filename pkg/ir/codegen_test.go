package ir

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ignamv/veriloga/pkg/hir"
	"github.com/stretchr/testify/require"
)

// globalShape is a structural projection of a Global used for cmp.Diff
// comparisons: the full Global also carries a slot Index, which is an
// implementation detail of allocation order, not something a test should
// pin down by hand.
type globalShape struct {
	Kind    GlobalKind
	Type    hir.Type
	Name    string
	NetName string
	Branch  hir.BranchKey
}

func shapesOf(globals []*Global) []globalShape {
	out := make([]globalShape, len(globals))
	for i, g := range globals {
		out[i] = globalShape{Kind: g.Kind, Type: g.Type, Name: g.Name, NetName: g.NetName, Branch: g.BranchKey}
	}
	return out
}

// Build must emit exactly one global per variable/parameter, two per net
// (potential, flow), and two per branch (potential, flow), in module
// declaration/first-use order (spec.md §4.5, "per uniquely identified
// symbol... exactly one IR global").
func TestBuildEmitsOneGlobalPerSlotInDeclarationOrder(t *testing.T) {
	electrical := &hir.Discipline{Name: "electrical"}
	n1 := &hir.Net{Name: "n1", Discipline: electrical}
	n2 := &hir.Net{Name: "n2", Discipline: electrical}
	x := hir.NewVariable("x", hir.Real, nil, false)
	r := hir.NewVariable("R", hir.Real, &hir.Literal{Value: 1.0, Type: hir.Real}, true)
	branch := &hir.Branch{Net1: n1, Net2: n2}

	m := &hir.Module{
		Name:       "m",
		Nets:       []*hir.Net{n1, n2},
		Variables:  []*hir.Variable{x},
		Parameters: []*hir.Variable{r},
		Branches:   map[hir.BranchKey]*hir.Branch{branch.Key(): branch},
		BranchOrder: []*hir.Branch{branch},
		Statements: []hir.Stmt{
			&hir.AnalogContribution{Branch: branch, Kind: hir.Flow, Value: x},
		},
	}

	irMod, err := Build(m)
	require.Nil(t, err)

	want := []globalShape{
		{Kind: GVariable, Type: hir.Real, Name: "x"},
		{Kind: GParameter, Type: hir.Real, Name: "R"},
		{Kind: GNetPotential, Type: hir.Real, Name: "n1", NetName: "n1"},
		{Kind: GNetFlow, Type: hir.Real, Name: "n1", NetName: "n1"},
		{Kind: GNetPotential, Type: hir.Real, Name: "n2", NetName: "n2"},
		{Kind: GNetFlow, Type: hir.Real, Name: "n2", NetName: "n2"},
		{Kind: GBranchPotential, Branch: branch.Key()},
		{Kind: GBranchFlow, Branch: branch.Key()},
	}
	if diff := cmp.Diff(want, shapesOf(irMod.Globals)); diff != "" {
		t.Errorf("global layout mismatch (-want +got):\n%s", diff)
	}
}

// run_analog must zero every net-flow and branch-potential global before
// running the module's statements, and nothing else (spec.md §4.5 step 1).
func TestBuildZeroesOnlyOutputGlobalsBeforeStatements(t *testing.T) {
	electrical := &hir.Discipline{Name: "electrical"}
	n1 := &hir.Net{Name: "n1", Discipline: electrical}
	branch := &hir.Branch{Net1: n1}
	m := &hir.Module{
		Name:        "m",
		Nets:        []*hir.Net{n1},
		Branches:    map[hir.BranchKey]*hir.Branch{branch.Key(): branch},
		BranchOrder: []*hir.Branch{branch},
	}

	irMod, err := Build(m)
	require.Nil(t, err)

	var zeroed []int
	for _, instr := range irMod.Function.Blocks[irMod.Function.Entry].Instrs {
		if z, ok := instr.(*ZeroGlobal); ok {
			zeroed = append(zeroed, z.Global)
		}
	}
	require.Len(t, zeroed, 2, "exactly the net-flow and branch-potential globals must be zeroed")
	for _, idx := range zeroed {
		kind := irMod.Globals[idx].Kind
		if kind != GNetFlow && kind != GBranchPotential {
			t.Errorf("zeroed global %d has kind %v, want GNetFlow or GBranchPotential", idx, kind)
		}
	}
}
