package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefineRejectsDuplicateInSameTable(t *testing.T) {
	tbl := NewTable()
	require.Nil(t, tbl.Define("x", 1))
	err := tbl.Define("x", 2)
	require.NotNil(t, err)
}

func TestLookupOnlySearchesOwnTable(t *testing.T) {
	tbl := NewTable()
	require.Nil(t, tbl.Define("x", 1))
	_, ok := tbl.Lookup("y")
	assert.False(t, ok)
	v, ok := tbl.Lookup("x")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestStackResolveWalksInnerToOuter(t *testing.T) {
	s := NewStack()
	outer := NewTable()
	require.Nil(t, outer.Define("x", "outer"))
	inner := NewTable()
	require.Nil(t, inner.Define("x", "inner"))
	require.Nil(t, inner.Define("y", "inner-only"))
	s.Push(outer)
	s.Push(inner)

	v, ok := s.Resolve("x")
	require.True(t, ok)
	assert.Equal(t, "inner", v, "inner scope shadows outer")

	v, ok = s.Resolve("y")
	require.True(t, ok)
	assert.Equal(t, "inner-only", v)

	s.Pop()
	v, ok = s.Resolve("x")
	require.True(t, ok)
	assert.Equal(t, "outer", v, "after popping the inner scope, outer is visible again")

	_, ok = s.Resolve("y")
	assert.False(t, ok, "inner-only symbol is gone once its scope is popped")
}

func TestNamesPreservesDefinitionOrder(t *testing.T) {
	tbl := NewTable()
	require.Nil(t, tbl.Define("b", 1))
	require.Nil(t, tbl.Define("a", 2))
	assert.Equal(t, []string{"b", "a"}, tbl.Names())
}
