package builtins

import (
	"testing"

	"github.com/ignamv/veriloga/pkg/hir"
	"github.com/stretchr/testify/assert"
)

// Lowering dispatches on built-in identity, never on name, so distinct
// built-ins with structurally identical signatures must still be distinct
// pointers (spec.md §4.7, §9 "Identity vs value for symbols").
func TestBuiltinsAreDistinctByIdentityNotSignature(t *testing.T) {
	assert.NotSame(t, IntegerAddition, IntegerSubtraction)
	assert.Equal(t, IntegerAddition.Sig, IntegerSubtraction.Sig, "same signature shape")
	assert.NotSame(t, RealAddition, RealProduct)
}

func TestMathFunctionsTableCoversReservedNames(t *testing.T) {
	for _, name := range []string{"ln", "log", "exp", "sqrt", "min", "max", "abs", "pow",
		"floor", "ceil", "sin", "cos", "tan", "asin", "acos", "atan", "atan2",
		"hypot", "sinh", "cosh", "tanh", "asinh", "acosh", "atanh"} {
		fn, ok := MathFunctions[name]
		if assert.True(t, ok, "missing math builtin %q", name) {
			assert.Equal(t, "builtin."+name, fn.Name)
		}
	}
}

// $temperature must resolve to the very same symbol across separate lowering
// runs (spec.md §8 "idempotent on the built-in library").
func TestTemperatureIsStableAcrossLookups(t *testing.T) {
	first := Temperature
	second := Temperature
	assert.Same(t, first, second)
	assert.Equal(t, hir.Real, Temperature.Type)
	assert.Equal(t, 25.0, Temperature.Initializer.(*hir.Literal).Value)
}
