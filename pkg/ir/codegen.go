package ir

import (
	"fmt"

	"github.com/ignamv/veriloga/pkg/builtins"
	"github.com/ignamv/veriloga/pkg/hir"
)

// builder accumulates blocks and registers while translating one hir.Module
// into its run_analog Function.
type builder struct {
	module *Module
	blocks []*Block
	cur    int
	regs   int

	varGlobal     map[int64]int
	netPotential  map[string]int
	netFlow       map[string]int
	branchPotent  map[hir.BranchKey]int
	branchFlow    map[hir.BranchKey]int
}

// Build translates a fully-lowered hir.Module into its addressed,
// block-structured ir.Module.
func Build(m *hir.Module) (*Module, error) {
	out := &Module{Name: m.Name}
	b := &builder{
		module:       out,
		varGlobal:    map[int64]int{},
		netPotential: map[string]int{},
		netFlow:      map[string]int{},
		branchPotent: map[hir.BranchKey]int{},
		branchFlow:   map[hir.BranchKey]int{},
	}

	for _, v := range m.Variables {
		b.addVariableGlobal(v, GVariable)
	}
	for _, p := range m.Parameters {
		b.addVariableGlobal(p, GParameter)
	}
	for _, n := range m.Nets {
		b.addGlobal(&Global{Kind: GNetPotential, Type: hir.Real, Name: n.Name, NetName: n.Name})
		b.netPotential[n.Name] = len(out.Globals) - 1
		b.addGlobal(&Global{Kind: GNetFlow, Type: hir.Real, Name: n.Name, NetName: n.Name})
		b.netFlow[n.Name] = len(out.Globals) - 1
	}
	for _, br := range m.BranchOrder {
		key := br.Key()
		b.addGlobal(&Global{Kind: GBranchPotential, Type: hir.Real, Name: br.Name, BranchKey: key})
		b.branchPotent[key] = len(out.Globals) - 1
		b.addGlobal(&Global{Kind: GBranchFlow, Type: hir.Real, Name: br.Name, BranchKey: key})
		b.branchFlow[key] = len(out.Globals) - 1
	}

	b.blocks = append(b.blocks, &Block{})
	b.cur = 0
	// Zero every output global before running the block, so contributions
	// accumulate from zero on each call rather than across calls (spec.md
	// §4.5 step 1). Net potential, branch flow, variables, and parameters
	// are host/module-owned inputs and are left untouched here.
	for _, g := range out.Globals {
		if g.Kind == GNetFlow || g.Kind == GBranchPotential {
			b.emit(&ZeroGlobal{Global: g.Index})
		}
	}
	for _, s := range m.Statements {
		if err := b.stmt(s); err != nil {
			return nil, err
		}
	}
	if b.blocks[b.cur].Term == nil {
		b.blocks[b.cur].Term = &Return{}
	}

	out.Function = &Function{Name: "run_analog", Blocks: b.blocks, Entry: 0, NumRegs: b.regs}
	return out, nil
}

func (b *builder) addGlobal(g *Global) {
	g.Index = len(b.module.Globals)
	b.module.Globals = append(b.module.Globals, g)
}

func (b *builder) addVariableGlobal(v *hir.Variable, kind GlobalKind) {
	g := &Global{Kind: kind, Type: v.Type, Name: v.Name, VariableID: v.ID(), Initial: zeroValue(v.Type)}
	if v.Initializer != nil {
		if lit, ok := v.Initializer.(*hir.Literal); ok {
			g.Initial = literalValue(lit)
		}
	}
	b.addGlobal(g)
	b.varGlobal[v.ID()] = g.Index
}

func zeroValue(t hir.Type) Value {
	if t == hir.Integer {
		return Value{Kind: hir.Integer}
	}
	return Value{Kind: hir.Real}
}

func literalValue(lit *hir.Literal) Value {
	switch lit.Type {
	case hir.Integer:
		return Value{Kind: hir.Integer, I: truncInt32(lit.Value.(int64))}
	case hir.Real:
		return Value{Kind: hir.Real, F: lit.Value.(float64)}
	default:
		return Value{}
	}
}

func (b *builder) newReg() Reg {
	r := Reg(b.regs)
	b.regs++
	return r
}

func (b *builder) emit(i Instr) {
	blk := b.blocks[b.cur]
	blk.Instrs = append(blk.Instrs, i)
}

func (b *builder) newBlock() int {
	b.blocks = append(b.blocks, &Block{})
	return len(b.blocks) - 1
}

func (b *builder) setTerm(idx int, t Terminator) {
	if b.blocks[idx].Term == nil {
		b.blocks[idx].Term = t
	}
}

// expr emits the instructions computing e and returns the register holding
// its result.
func (b *builder) expr(e hir.Expr) (Reg, error) {
	switch n := e.(type) {
	case *hir.Literal:
		if n.Type == hir.String {
			return 0, fmt.Errorf("codegen: unsupported HIR node: string literal")
		}
		dst := b.newReg()
		b.emit(&Const{Dst: dst, Value: literalValue(n)})
		return dst, nil
	case *hir.Variable:
		idx, ok := b.varGlobal[n.ID()]
		if !ok {
			return 0, fmt.Errorf("codegen: unresolved variable %q", n.Name)
		}
		dst := b.newReg()
		b.emit(&LoadGlobal{Dst: dst, Global: idx})
		return dst, nil
	case *hir.FunctionCall:
		return b.call(n)
	}
	return 0, fmt.Errorf("codegen: unsupported expression %T", e)
}

func (b *builder) call(fc *hir.FunctionCall) (Reg, error) {
	if fc.Function == builtins.Potential {
		return b.potentialProbe(fc)
	}
	if fc.Function == builtins.FlowProbe {
		ref, ok := fc.Args[0].(*hir.BranchRef)
		if !ok {
			return 0, fmt.Errorf("codegen: probe argument is not a branch reference")
		}
		key := ref.Branch.Key()
		idx, ok := b.branchFlow[key]
		if !ok {
			return 0, fmt.Errorf("codegen: unresolved branch %v", key)
		}
		dst := b.newReg()
		b.emit(&LoadBranch{Dst: dst, Branch: idx})
		return dst, nil
	}
	args := make([]Reg, len(fc.Args))
	for i, a := range fc.Args {
		reg, err := b.expr(a)
		if err != nil {
			return 0, err
		}
		args[i] = reg
	}
	dst := b.newReg()
	b.emit(&Call{Dst: dst, Fn: fc.Function, Args: args})
	return dst, nil
}

// potentialProbe lowers V(branch) to net_potential[net1] - net_potential[net2],
// or just net_potential[net1] when net2 is implicit ground (spec.md §4.5:
// "FunctionCall(potential, (branch,))" bullet). Unlike I(·), V(·) never
// touches the branch-potential global: that slot is written only by a
// `potential` contribution, not read back by a probe on the same branch.
func (b *builder) potentialProbe(fc *hir.FunctionCall) (Reg, error) {
	ref, ok := fc.Args[0].(*hir.BranchRef)
	if !ok {
		return 0, fmt.Errorf("codegen: probe argument is not a branch reference")
	}
	net1Idx, ok := b.netPotential[ref.Branch.Net1.Name]
	if !ok {
		return 0, fmt.Errorf("codegen: unresolved net %q", ref.Branch.Net1.Name)
	}
	pot1 := b.newReg()
	b.emit(&LoadGlobal{Dst: pot1, Global: net1Idx})
	if ref.Branch.Net2 == nil {
		return pot1, nil
	}
	net2Idx, ok := b.netPotential[ref.Branch.Net2.Name]
	if !ok {
		return 0, fmt.Errorf("codegen: unresolved net %q", ref.Branch.Net2.Name)
	}
	pot2 := b.newReg()
	b.emit(&LoadGlobal{Dst: pot2, Global: net2Idx})
	dst := b.newReg()
	b.emit(&Call{Dst: dst, Fn: builtins.RealSubtraction, Args: []Reg{pot1, pot2}})
	return dst, nil
}

func (b *builder) stmt(s hir.Stmt) error {
	switch n := s.(type) {
	case *hir.Assignment:
		reg, err := b.expr(n.Value)
		if err != nil {
			return err
		}
		idx, ok := b.varGlobal[n.Lvalue.ID()]
		if !ok {
			return fmt.Errorf("codegen: unresolved assignment target %q", n.Lvalue.Name)
		}
		b.emit(&StoreGlobal{Global: idx, Src: reg})
		return nil
	case *hir.AnalogContribution:
		return b.contribution(n)
	case *hir.Block:
		for _, sub := range n.Statements {
			if err := b.stmt(sub); err != nil {
				return err
			}
		}
		return nil
	case *hir.If:
		return b.ifStmt(n)
	case *hir.ForLoop:
		return b.forStmt(n)
	case *hir.Nop:
		return nil
	}
	return fmt.Errorf("codegen: unsupported statement %T", s)
}

func (b *builder) contribution(n *hir.AnalogContribution) error {
	reg, err := b.expr(n.Value)
	if err != nil {
		return err
	}
	key := n.Branch.Key()
	if n.Kind == hir.Potential {
		idx, ok := b.branchPotent[key]
		if !ok {
			return fmt.Errorf("codegen: unresolved branch %v", key)
		}
		b.emit(&ContributePotential{Branch: idx, Src: reg})
		return nil
	}
	net1Idx, ok := b.netFlow[n.Branch.Net1.Name]
	if !ok {
		return fmt.Errorf("codegen: unresolved net %q", n.Branch.Net1.Name)
	}
	net2Idx := -1
	if n.Branch.Net2 != nil {
		net2Idx, ok = b.netFlow[n.Branch.Net2.Name]
		if !ok {
			return fmt.Errorf("codegen: unresolved net %q", n.Branch.Net2.Name)
		}
	}
	b.emit(&ContributeFlow{Net1: net1Idx, Net2: net2Idx, Src: reg})
	return nil
}

func (b *builder) ifStmt(n *hir.If) error {
	cond, err := b.expr(n.Condition)
	if err != nil {
		return err
	}
	entry := b.cur
	thenIdx := b.newBlock()
	b.cur = thenIdx
	if err := b.stmt(n.Then); err != nil {
		return err
	}
	thenEnd := b.cur

	falseTarget := -1 // resolved to merge below when there is no else branch
	elseEnd := -1
	if n.Else != nil {
		elseIdx := b.newBlock()
		b.cur = elseIdx
		if err := b.stmt(n.Else); err != nil {
			return err
		}
		elseEnd = b.cur
		falseTarget = elseIdx
	}

	merge := b.newBlock()
	if falseTarget == -1 {
		falseTarget = merge
	}
	b.setTerm(entry, &CondJump{Cond: cond, True: thenIdx, False: falseTarget})
	b.setTerm(thenEnd, &Jump{Target: merge})
	if elseEnd != -1 {
		b.setTerm(elseEnd, &Jump{Target: merge})
	}
	b.cur = merge
	return nil
}

func (b *builder) forStmt(n *hir.ForLoop) error {
	if err := b.stmt(n.Initial); err != nil {
		return err
	}
	condIdx := b.newBlock()
	b.setTerm(b.cur, &Jump{Target: condIdx})
	b.cur = condIdx
	cond, err := b.expr(n.Condition)
	if err != nil {
		return err
	}
	bodyIdx := b.newBlock()
	afterIdx := b.newBlock()
	b.setTerm(condIdx, &CondJump{Cond: cond, True: bodyIdx, False: afterIdx})
	b.cur = bodyIdx
	if err := b.stmt(n.Statement); err != nil {
		return err
	}
	if err := b.stmt(n.Change); err != nil {
		return err
	}
	b.setTerm(b.cur, &Jump{Target: condIdx})
	b.cur = afterIdx
	return nil
}
