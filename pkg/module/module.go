// Package module provides the host-facing facade over one compiled
// Verilog-A module: typed get/set views onto its variables, parameters, net
// potentials/flows, and branch potentials/flows, plus run_analog() itself.
// Grounded on the original's src/compile_module.py, which wrapped a
// compiled module's ctypes globals the same way this wraps an engine.Engine's
// addressed slots.
package module

import (
	"fmt"

	"github.com/ignamv/veriloga/pkg/engine"
	"github.com/ignamv/veriloga/pkg/hir"
	"github.com/ignamv/veriloga/pkg/ir"
)

// CompiledModule is a ready-to-run module: its addressed IR, its owning
// engine, and the HIR it was built from (kept for name/identity lookups the
// IR layer does not retain, e.g. resolving a variable by its declared
// name rather than its synthetic id).
type CompiledModule struct {
	HIR    *hir.Module
	IR     *ir.Module
	Engine engine.Engine
}

// New wraps an already-built ir.Module and the engine executing it into a
// CompiledModule.
func New(h *hir.Module, m *ir.Module, eng engine.Engine) *CompiledModule {
	return &CompiledModule{HIR: h, IR: m, Engine: eng}
}

// RunAnalog executes the module's analog block once against current state.
func (m *CompiledModule) RunAnalog() error {
	return m.Engine.RunAnalog()
}

// BranchEndpoints names a branch's net pair (Net2 is "" for implicit
// ground), for listing a module's branches.
type BranchEndpoints struct {
	Name       string
	Net1, Net2 string
}

// Branches lists every branch this module's analog block referenced or
// declared, in first-use order.
func (m *CompiledModule) Branches() []BranchEndpoints {
	seen := map[hir.BranchKey]bool{}
	var out []BranchEndpoints
	for _, g := range m.IR.Globals {
		if g.Kind != ir.GBranchPotential || seen[g.BranchKey] {
			continue
		}
		seen[g.BranchKey] = true
		out = append(out, BranchEndpoints{Name: g.Name, Net1: g.BranchKey.Net1, Net2: g.BranchKey.Net2})
	}
	return out
}

func (m *CompiledModule) variableByName(name string, wantParam bool) (*ir.Global, error) {
	for _, g := range m.IR.Globals {
		if g.VariableID == 0 {
			continue
		}
		isParam := g.Kind == ir.GParameter
		if g.Name == name && isParam == wantParam {
			return g, nil
		}
	}
	kind := "variable"
	if wantParam {
		kind = "parameter"
	}
	return nil, fmt.Errorf("module %s: no %s named %q", m.HIR.Name, kind, name)
}

// Variable reads a module-scoped (non-parameter) variable's current value.
func (m *CompiledModule) Variable(name string) (ir.Value, error) {
	g, err := m.variableByName(name, false)
	if err != nil {
		return ir.Value{}, err
	}
	return m.Engine.Global(g.Index), nil
}

// SetVariable overwrites a module-scoped variable's value.
func (m *CompiledModule) SetVariable(name string, v ir.Value) error {
	g, err := m.variableByName(name, false)
	if err != nil {
		return err
	}
	m.Engine.SetGlobal(g.Index, v)
	return nil
}

// Parameter reads a parameter's current value.
func (m *CompiledModule) Parameter(name string) (ir.Value, error) {
	g, err := m.variableByName(name, true)
	if err != nil {
		return ir.Value{}, err
	}
	return m.Engine.Global(g.Index), nil
}

// SetParameter overwrites a parameter's value. Unlike an assignment inside
// the module's own analog block (which package lower rejects at compile
// time), the host is always allowed to set parameters between runs.
func (m *CompiledModule) SetParameter(name string, v ir.Value) error {
	g, err := m.variableByName(name, true)
	if err != nil {
		return err
	}
	m.Engine.SetGlobal(g.Index, v)
	return nil
}

func (m *CompiledModule) netGlobal(name string, kind ir.GlobalKind) (*ir.Global, error) {
	g, ok := m.IR.NetGlobal(name, kind)
	if !ok {
		return nil, fmt.Errorf("module %s: no net named %q", m.HIR.Name, name)
	}
	return g, nil
}

// NetPotential reads a net's potential slot, which only the host writes.
func (m *CompiledModule) NetPotential(name string) (float64, error) {
	g, err := m.netGlobal(name, ir.GNetPotential)
	if err != nil {
		return 0, err
	}
	return m.Engine.Global(g.Index).F, nil
}

// SetNetPotential overwrites a net's potential: the per-step stimulus the
// host simulator writes before calling RunAnalog.
func (m *CompiledModule) SetNetPotential(name string, v float64) error {
	g, err := m.netGlobal(name, ir.GNetPotential)
	if err != nil {
		return err
	}
	m.Engine.SetGlobal(g.Index, ir.Value{Kind: hir.Real, F: v})
	return nil
}

// NetFlow reads a net's accumulated flow.
func (m *CompiledModule) NetFlow(name string) (float64, error) {
	g, err := m.netGlobal(name, ir.GNetFlow)
	if err != nil {
		return 0, err
	}
	return m.Engine.Global(g.Index).F, nil
}

// SetNetFlow overwrites a net's flow accumulator directly. Exposed for
// completeness with the Compiled-module API (spec.md §6); since RunAnalog
// zeroes every net-flow slot before re-running the module's contributions
// (spec.md §4.5 step 1), a value set here only persists until the next call.
func (m *CompiledModule) SetNetFlow(name string, v float64) error {
	g, err := m.netGlobal(name, ir.GNetFlow)
	if err != nil {
		return err
	}
	m.Engine.SetGlobal(g.Index, ir.Value{Kind: hir.Real, F: v})
	return nil
}

func (m *CompiledModule) branchGlobal(net1, net2 string, kind ir.GlobalKind) (*ir.Global, error) {
	key := hir.BranchKey{Net1: net1, Net2: net2}
	g, ok := m.IR.BranchGlobal(key, kind)
	if !ok {
		return nil, fmt.Errorf("module %s: no branch (%s,%s)", m.HIR.Name, net1, net2)
	}
	return g, nil
}

// BranchPotential reads the potential contributed directly to a branch
// (not the net-accumulated potential, which this core's contribution
// semantics never populates for `potential` kind contributions — spec.md §9).
func (m *CompiledModule) BranchPotential(net1, net2 string) (float64, error) {
	g, err := m.branchGlobal(net1, net2, ir.GBranchPotential)
	if err != nil {
		return 0, err
	}
	return m.Engine.Global(g.Index).F, nil
}

// BranchFlow reads a branch's flow slot: the per-step stimulus the host
// simulator writes, read back inside the module by an I(·) probe.
func (m *CompiledModule) BranchFlow(net1, net2 string) (float64, error) {
	g, err := m.branchGlobal(net1, net2, ir.GBranchFlow)
	if err != nil {
		return 0, err
	}
	return m.Engine.Global(g.Index).F, nil
}

// SetBranchFlow overwrites a branch's flow slot: the host simulator's
// per-step stimulus for any I(·) probe reading this branch.
func (m *CompiledModule) SetBranchFlow(net1, net2 string, v float64) error {
	g, err := m.branchGlobal(net1, net2, ir.GBranchFlow)
	if err != nil {
		return err
	}
	m.Engine.SetGlobal(g.Index, ir.Value{Kind: hir.Real, F: v})
	return nil
}
