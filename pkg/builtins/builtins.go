// Package builtins holds the process-wide, immutable set of canonical
// Function and Variable symbols lowering refers to by identity: arithmetic,
// comparisons, casts, math intrinsics, nature probes, and $temperature
// (spec.md §4.7). Because hir.Function/hir.Variable equality in tests is
// structural, two *separately constructed* symbols with the same name would
// otherwise be indistinguishable from these canonical ones; every built-in
// referenced anywhere in this module is one of the package-level pointers
// declared here, never a freshly constructed equivalent.
package builtins

import "github.com/ignamv/veriloga/pkg/hir"

var (
	binaryInt  = hir.FunctionSignature{Return: hir.Integer, Params: []hir.Type{hir.Integer, hir.Integer}}
	binaryReal = hir.FunctionSignature{Return: hir.Real, Params: []hir.Type{hir.Real, hir.Real}}
	unaryReal  = hir.FunctionSignature{Return: hir.Real, Params: []hir.Type{hir.Real}}
	binaryRealCompare = hir.FunctionSignature{Return: hir.Integer, Params: []hir.Type{hir.Real, hir.Real}}
	binaryRealBinary  = hir.FunctionSignature{Return: hir.Real, Params: []hir.Type{hir.Real, hir.Real}}
)

// Casts.
var (
	CastIntToReal = &hir.Function{Name: "builtin.cast_int_to_real", Sig: hir.FunctionSignature{Return: hir.Real, Params: []hir.Type{hir.Integer}}}
	CastRealToInt = &hir.Function{Name: "builtin.cast_real_to_int", Sig: hir.FunctionSignature{Return: hir.Integer, Params: []hir.Type{hir.Real}}}
)

// Arithmetic.
var (
	IntegerProduct     = &hir.Function{Name: "builtin.integer_product", Sig: binaryInt}
	RealProduct        = &hir.Function{Name: "builtin.real_product", Sig: binaryReal}
	IntegerAddition    = &hir.Function{Name: "builtin.integer_addition", Sig: binaryInt}
	RealAddition       = &hir.Function{Name: "builtin.real_addition", Sig: binaryReal}
	IntegerDivision    = &hir.Function{Name: "builtin.integer_division", Sig: binaryInt}
	RealDivision       = &hir.Function{Name: "builtin.real_division", Sig: binaryReal}
	IntegerSubtraction = &hir.Function{Name: "builtin.integer_subtraction", Sig: binaryInt}
	RealSubtraction    = &hir.Function{Name: "builtin.real_subtraction", Sig: binaryReal}
)

// Comparisons: both operands of the same type, result is always integer
// (0/1), matching the original's real_equality/integer_equality split.
var (
	IntegerEquality   = &hir.Function{Name: "builtin.integer_equality", Sig: binaryInt}
	IntegerInequality = &hir.Function{Name: "builtin.integer_inequality", Sig: binaryInt}
	RealEquality      = &hir.Function{Name: "builtin.real_equality", Sig: binaryRealCompare}
	RealInequality    = &hir.Function{Name: "builtin.real_inequality", Sig: binaryRealCompare}
)

// Math intrinsics. The code generator emits an IR call naming one of these
// functions and package engine evaluates it; the IR has no external
// function declarations.
var (
	Sin   = &hir.Function{Name: "builtin.sin", Sig: unaryReal}
	Pow   = &hir.Function{Name: "builtin.pow", Sig: binaryRealBinary}
	Ln    = &hir.Function{Name: "builtin.ln", Sig: unaryReal}
	Log   = &hir.Function{Name: "builtin.log", Sig: unaryReal}
	Exp   = &hir.Function{Name: "builtin.exp", Sig: unaryReal}
	Sqrt  = &hir.Function{Name: "builtin.sqrt", Sig: unaryReal}
	Min   = &hir.Function{Name: "builtin.min", Sig: binaryReal}
	Max   = &hir.Function{Name: "builtin.max", Sig: binaryReal}
	Abs   = &hir.Function{Name: "builtin.abs", Sig: unaryReal}
	Floor = &hir.Function{Name: "builtin.floor", Sig: unaryReal}
	Ceil  = &hir.Function{Name: "builtin.ceil", Sig: unaryReal}
	Cos   = &hir.Function{Name: "builtin.cos", Sig: unaryReal}
	Tan   = &hir.Function{Name: "builtin.tan", Sig: unaryReal}
	Asin  = &hir.Function{Name: "builtin.asin", Sig: unaryReal}
	Acos  = &hir.Function{Name: "builtin.acos", Sig: unaryReal}
	Atan  = &hir.Function{Name: "builtin.atan", Sig: unaryReal}
	Atan2 = &hir.Function{Name: "builtin.atan2", Sig: binaryReal}
	Hypot = &hir.Function{Name: "builtin.hypot", Sig: binaryReal}
	Sinh  = &hir.Function{Name: "builtin.sinh", Sig: unaryReal}
	Cosh  = &hir.Function{Name: "builtin.cosh", Sig: unaryReal}
	Tanh  = &hir.Function{Name: "builtin.tanh", Sig: unaryReal}
	Asinh = &hir.Function{Name: "builtin.asinh", Sig: unaryReal}
	Acosh = &hir.Function{Name: "builtin.acosh", Sig: unaryReal}
	Atanh = &hir.Function{Name: "builtin.atanh", Sig: unaryReal}
)

// MathFunctions maps a source spelling (from token.BuiltinFunctionKinds) to
// its canonical builtin.Function, for lowering pt.FunctionCall nodes whose
// callee is a built-in math name.
var MathFunctions = map[string]*hir.Function{
	"ln": Ln, "log": Log, "exp": Exp, "sqrt": Sqrt, "min": Min, "max": Max,
	"abs": Abs, "pow": Pow, "floor": Floor, "ceil": Ceil, "sin": Sin, "cos": Cos,
	"tan": Tan, "asin": Asin, "acos": Acos, "atan": Atan, "atan2": Atan2,
	"hypot": Hypot, "sinh": Sinh, "cosh": Cosh, "tanh": Tanh, "asinh": Asinh,
	"acosh": Acosh, "atanh": Atanh,
}

// Potential and Flow are the canonical probe functions accessor-to-branch
// lowering produces a FunctionCall against (spec.md §4.4 item 4). Their
// signatures declare no parameters since branches are not an hir.Type;
// lowering builds their FunctionCall (with a BranchRef argument) by hand
// rather than through the general argument-coercion path.
var (
	Potential = &hir.Function{Name: "builtin.potential", Sig: hir.FunctionSignature{Return: hir.Real}}
	FlowProbe = &hir.Function{Name: "builtin.flow", Sig: hir.FunctionSignature{Return: hir.Real}}
)

// Temperature is the canonical $temperature symbol: a parameter-like
// built-in variable, defaulting to 25 (degrees C), resolved identically
// across every source file (spec.md §8, "idempotent... $temperature").
var Temperature = hir.NewVariable("$temperature", hir.Real, &hir.Literal{Value: 25.0, Type: hir.Real}, true)
