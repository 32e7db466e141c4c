// Package scope implements the nested-frame symbol table used during
// lowering: each source file, module, and block pushes a fresh table, and
// resolution walks the stack from innermost to outermost (spec.md §4.4,
// grounded on the original's antlr/symboltable.py and generalized to a
// pushable stack the way pkg/corset/scope.go nests frames in the teacher).
package scope

import "fmt"

// Symbol is anything a scope.Table can hold: an hir.Nature, hir.Discipline,
// hir.Net, hir.Branch, hir.Variable, hir.Accessor, or hir.Function. The table itself is
// untyped over Symbol so package hir need not depend on package scope.
type Symbol any

// Table is a single scope's ordered name→symbol map. Redefinition within
// the same table is rejected (spec.md §7, "duplicate identifier in same
// scope").
type Table struct {
	order   []string
	symbols map[string]Symbol
}

// NewTable constructs an empty scope.
func NewTable() *Table {
	return &Table{symbols: map[string]Symbol{}}
}

// Define registers a symbol under name. It returns an error if name is
// already defined in this table (not in an enclosing one — shadowing
// outer scopes is permitted).
func (t *Table) Define(name string, sym Symbol) error {
	if _, ok := t.symbols[name]; ok {
		return fmt.Errorf("duplicate identifier %q in this scope", name)
	}
	t.symbols[name] = sym
	t.order = append(t.order, name)
	return nil
}

// Lookup resolves name within this table only (no outer scopes).
func (t *Table) Lookup(name string) (Symbol, bool) {
	s, ok := t.symbols[name]
	return s, ok
}

// Names returns every name defined in this table, in definition order.
func (t *Table) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Stack is a push-down list of scopes, innermost last; Resolve walks it from
// the end backwards, mirroring LowerParseTree.resolve's reversed(contexts)
// walk in the original implementation.
type Stack struct {
	frames []*Table
}

// NewStack constructs an empty stack.
func NewStack() *Stack {
	return &Stack{}
}

// Push adds a new innermost scope.
func (s *Stack) Push(t *Table) {
	s.frames = append(s.frames, t)
}

// Pop removes the innermost scope.
func (s *Stack) Pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

// Top returns the innermost (currently active) scope.
func (s *Stack) Top() *Table {
	return s.frames[len(s.frames)-1]
}

// Resolve looks up name starting from the innermost scope and walking
// outward, returning the first match.
func (s *Stack) Resolve(name string) (Symbol, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if sym, ok := s.frames[i].Lookup(name); ok {
			return sym, true
		}
	}
	return nil, false
}
