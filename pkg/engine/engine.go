// Package engine defines the Engine interface a compiled module runs
// against, and ships the one concrete implementation this core provides: a
// direct interpreter over package ir's basic blocks. A real JIT backend
// (the original's llvmlite-based compiler.py target) is out of scope; this
// package specifies the interface such a backend would implement and gives
// package module something to run today (spec.md §1).
package engine

import (
	"fmt"
	"math"

	"github.com/ignamv/veriloga/pkg/builtins"
	"github.com/ignamv/veriloga/pkg/hir"
	"github.com/ignamv/veriloga/pkg/ir"
)

// Engine is the execution surface a compiled module needs: persistent
// global storage plus the ability to invoke run_analog. Implementations
// other than Interpreter (e.g. a real native JIT) would satisfy the same
// interface.
type Engine interface {
	// Global reads the current value of the global at index idx.
	Global(idx int) ir.Value
	// SetGlobal overwrites the global at index idx.
	SetGlobal(idx int, v ir.Value)
	// RunAnalog executes the module's run_analog function once against
	// current global state.
	RunAnalog() error
}

// Interpreter is a direct, non-JIT Engine: it walks ir.Block instructions
// one at a time against a flat global-value slice and a per-call register
// file. Grounded on the control-flow/slot layout of the original's
// src/compiler.py, minus the llvmlite codegen step it performed there.
type Interpreter struct {
	module  *ir.Module
	globals []ir.Value
}

// NewInterpreter constructs an Interpreter with every global initialised to
// its module-declared default.
func NewInterpreter(m *ir.Module) *Interpreter {
	globals := make([]ir.Value, len(m.Globals))
	for i, g := range m.Globals {
		globals[i] = g.Initial
	}
	return &Interpreter{module: m, globals: globals}
}

func (in *Interpreter) Global(idx int) ir.Value     { return in.globals[idx] }
func (in *Interpreter) SetGlobal(idx int, v ir.Value) { in.globals[idx] = v }

// RunAnalog executes run_analog's blocks from Entry until a Return.
func (in *Interpreter) RunAnalog() error {
	fn := in.module.Function
	regs := make([]ir.Value, fn.NumRegs)
	block := fn.Entry
	for {
		blk := fn.Blocks[block]
		for _, instr := range blk.Instrs {
			if err := in.exec(instr, regs); err != nil {
				return err
			}
		}
		switch term := blk.Term.(type) {
		case *ir.Jump:
			block = term.Target
		case *ir.CondJump:
			if truthy(regs[term.Cond]) {
				block = term.True
			} else {
				block = term.False
			}
		case *ir.Return:
			return nil
		default:
			return fmt.Errorf("engine: block %d has no terminator", block)
		}
	}
}

func truthy(v ir.Value) bool {
	if v.Kind == hir.Integer {
		return v.I != 0
	}
	return v.F != 0
}

func (in *Interpreter) exec(instr ir.Instr, regs []ir.Value) error {
	switch n := instr.(type) {
	case *ir.Const:
		regs[n.Dst] = n.Value
	case *ir.LoadGlobal:
		regs[n.Dst] = in.globals[n.Global]
	case *ir.StoreGlobal:
		in.globals[n.Global] = regs[n.Src]
	case *ir.LoadBranch:
		regs[n.Dst] = in.globals[n.Branch]
	case *ir.ZeroGlobal:
		in.globals[n.Global] = ir.Value{Kind: hir.Real}
	case *ir.ContributePotential:
		in.globals[n.Branch] = regs[n.Src]
	case *ir.ContributeFlow:
		v := regs[n.Src]
		in.globals[n.Net1] = addReal(in.globals[n.Net1], v)
		if n.Net2 >= 0 {
			in.globals[n.Net2] = addReal(in.globals[n.Net2], negate(v))
		}
	case *ir.Call:
		return in.call(n, regs)
	default:
		return fmt.Errorf("engine: unsupported instruction %T", instr)
	}
	return nil
}

func addReal(a, b ir.Value) ir.Value { return ir.Value{Kind: hir.Real, F: a.F + b.F} }
func negate(v ir.Value) ir.Value     { return ir.Value{Kind: hir.Real, F: -v.F} }

// call dispatches a Call instruction by the canonical *hir.Function
// identity its operand names (spec.md §4.7: built-ins are compared and
// dispatched by pointer, never by name).
func (in *Interpreter) call(n *ir.Call, regs []ir.Value) error {
	args := make([]ir.Value, len(n.Args))
	for i, r := range n.Args {
		args[i] = regs[r]
	}
	result, err := evalBuiltin(n.Fn, args)
	if err != nil {
		return err
	}
	regs[n.Dst] = result
	return nil
}

func evalBuiltin(fn *hir.Function, args []ir.Value) (ir.Value, error) {
	switch fn {
	case builtins.CastIntToReal:
		return ir.Value{Kind: hir.Real, F: float64(args[0].I)}, nil
	case builtins.CastRealToInt:
		return intVal(realToInt32(args[0].F)), nil
	case builtins.IntegerProduct:
		return intVal(truncInt32(args[0].I * args[1].I)), nil
	case builtins.IntegerAddition:
		return intVal(truncInt32(args[0].I + args[1].I)), nil
	case builtins.IntegerSubtraction:
		return intVal(truncInt32(args[0].I - args[1].I)), nil
	case builtins.IntegerDivision:
		return intVal(truncInt32(args[0].I / args[1].I)), nil
	case builtins.IntegerEquality:
		return boolInt(args[0].I == args[1].I), nil
	case builtins.IntegerInequality:
		return boolInt(args[0].I != args[1].I), nil
	case builtins.RealProduct:
		return realVal(args[0].F * args[1].F), nil
	case builtins.RealAddition:
		return realVal(args[0].F + args[1].F), nil
	case builtins.RealSubtraction:
		return realVal(args[0].F - args[1].F), nil
	case builtins.RealDivision:
		return realVal(args[0].F / args[1].F), nil
	case builtins.RealEquality:
		return boolInt(args[0].F == args[1].F), nil
	case builtins.RealInequality:
		return boolInt(args[0].F != args[1].F), nil
	case builtins.Sin:
		return realVal(math.Sin(args[0].F)), nil
	case builtins.Cos:
		return realVal(math.Cos(args[0].F)), nil
	case builtins.Tan:
		return realVal(math.Tan(args[0].F)), nil
	case builtins.Asin:
		return realVal(math.Asin(args[0].F)), nil
	case builtins.Acos:
		return realVal(math.Acos(args[0].F)), nil
	case builtins.Atan:
		return realVal(math.Atan(args[0].F)), nil
	case builtins.Atan2:
		return realVal(math.Atan2(args[0].F, args[1].F)), nil
	case builtins.Hypot:
		return realVal(math.Hypot(args[0].F, args[1].F)), nil
	case builtins.Sinh:
		return realVal(math.Sinh(args[0].F)), nil
	case builtins.Cosh:
		return realVal(math.Cosh(args[0].F)), nil
	case builtins.Tanh:
		return realVal(math.Tanh(args[0].F)), nil
	case builtins.Asinh:
		return realVal(math.Asinh(args[0].F)), nil
	case builtins.Acosh:
		return realVal(math.Acosh(args[0].F)), nil
	case builtins.Atanh:
		return realVal(math.Atanh(args[0].F)), nil
	case builtins.Ln:
		return realVal(math.Log(args[0].F)), nil
	case builtins.Log:
		return realVal(math.Log10(args[0].F)), nil
	case builtins.Exp:
		return realVal(math.Exp(args[0].F)), nil
	case builtins.Sqrt:
		return realVal(math.Sqrt(args[0].F)), nil
	case builtins.Pow:
		return realVal(math.Pow(args[0].F, args[1].F)), nil
	case builtins.Min:
		return realVal(math.Min(args[0].F, args[1].F)), nil
	case builtins.Max:
		return realVal(math.Max(args[0].F, args[1].F)), nil
	case builtins.Abs:
		return realVal(math.Abs(args[0].F)), nil
	case builtins.Floor:
		return realVal(math.Floor(args[0].F)), nil
	case builtins.Ceil:
		return realVal(math.Ceil(args[0].F)), nil
	}
	return ir.Value{}, fmt.Errorf("engine: unrecognised builtin %q", fn.Name)
}

// truncInt32 wraps a Go int64 result into two's-complement 32-bit range
// (spec.md:118 "integer -> 32-bit signed integer", spec.md:210 "integer
// arithmetic in HIR matches two's-complement 32-bit semantics"), mirroring
// the original's ctypes.c_int32-backed storage (original_source/src/compiler.py:4)
// and the LLVM IntType(32) arithmetic it replaces (original_source/antlr/codegen.py:10).
func truncInt32(i int64) int64 { return int64(int32(i)) }

// realToInt32 truncates a real value toward zero and wraps it into int32
// range, matching fptosi-then-store-into-c_int32 semantics rather than Go's
// undefined behavior for float-to-int conversions that overflow int64.
func realToInt32(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return truncInt32(math.MaxInt64)
	case f <= math.MinInt64:
		return truncInt32(math.MinInt64)
	default:
		return truncInt32(int64(f))
	}
}

func intVal(i int64) ir.Value   { return ir.Value{Kind: hir.Integer, I: i} }
func realVal(f float64) ir.Value { return ir.Value{Kind: hir.Real, F: f} }
func boolInt(b bool) ir.Value {
	if b {
		return ir.Value{Kind: hir.Integer, I: 1}
	}
	return ir.Value{Kind: hir.Integer, I: 0}
}
