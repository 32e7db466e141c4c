// Package hir defines the typed, symbol-resolved intermediate representation
// produced by package lower: natures, disciplines, nets, branches, variables,
// parameters, and the statement/expression trees of each module's analog
// block. Every HIR expression carries an explicit Type, and every implicit
// numeric coercion has already been made an explicit FunctionCall wrapping
// its operand (spec.md §3, §4.4).
package hir

import "github.com/ignamv/veriloga/pkg/ast"

// Type is the scalar type of an HIR expression or variable.
type Type int

const (
	Integer Type = iota
	Real
	String
)

func (t Type) String() string {
	switch t {
	case Integer:
		return "integer"
	case Real:
		return "real"
	case String:
		return "string"
	}
	return "unknown"
}

// Nature is a physical quantity kind: a name, absolute tolerance, units, the
// accessor identifier used to probe it, and optional idt/ddt cross
// references (possibly cyclic; see lower.lowerNatures).
type Nature struct {
	Name      string
	Abstol    float64
	Units     string
	Access    *Accessor
	IdtNature *Nature
	DdtNature *Nature
	Parsed    *ast.Nature
}

// Accessor is the identifier (e.g. V, I) used in source to probe a nature's
// quantity at a branch. It is itself a resolvable symbol, linked back to its
// owning nature.
type Accessor struct {
	Name   string
	Nature *Nature
}

// Discipline names a domain (e.g. electrical) as a pair of natures.
type Discipline struct {
	Name      string
	Domain    string // "discrete" or "continuous"
	Potential *Nature
	Flow      *Nature
	Parsed    *ast.Discipline
}

// Net is a circuit node with a discipline.
type Net struct {
	Name       string
	Discipline *Discipline
	Parsed     *ast.Net
}

// Port is a module terminal with a direction; ports sharing a name with a
// disciplined declaration also have a corresponding Net.
type Port struct {
	Name      string
	Direction string // "input", "output", or "inout"
	Parsed    *ast.Port
}

// BranchKey identifies a branch by its ordered net-name pair; Net2 is ""
// for an implicit ground reference. Branches are keyed by this pair in a
// module's branch table so V(a,b) and I(a,b) share a slot (spec.md §3).
type BranchKey struct {
	Net1 string
	Net2 string // "" means implicit ground
}

// Branch is an ordered pair of nets (or net + implicit ground), the unit
// contributions and probes attach to.
type Branch struct {
	Name string // "" if the branch has no explicit `branch` declaration alias
	Net1 *Net
	Net2 *Net // nil denotes implicit ground
}

// Key returns the BranchKey this branch is stored under in its module's
// branch table.
func (b *Branch) Key() BranchKey {
	k := BranchKey{Net1: b.Net1.Name}
	if b.Net2 != nil {
		k.Net2 = b.Net2.Name
	}
	return k
}

// Expr is any HIR expression node. Every node exposes its own static type so
// lowering can refuse to build ill-typed trees (spec.md §3).
type Expr interface {
	ExprType() Type
}

// Literal is a numeric or string constant.
type Literal struct {
	Value  any // int64, float64, or string
	Type   Type
	Parsed *ast.Literal
}

func (l *Literal) ExprType() Type { return l.Type }

// FunctionSignature is a callable's arity and parameter/return types.
type FunctionSignature struct {
	Return Type
	Params []Type
}

// Function is a canonical built-in or user-defined callable symbol. Built-in
// functions are compared by identity (pointer equality), never by name, so
// lowering can refer to them the way package builtins intends (spec.md §4.7).
type Function struct {
	Name string
	Sig  FunctionSignature
}

// FunctionCall applies a Function to arguments whose types exactly match its
// signature; any coercion needed has already been inserted as a nested
// FunctionCall around the mismatched argument.
type FunctionCall struct {
	Function *Function
	Args     []Expr
	Parsed   *ast.FunctionCall
}

func (f *FunctionCall) ExprType() Type { return f.Function.Sig.Return }

// BranchRef wraps a Branch so it can appear as the sole argument of a
// builtin.Potential/builtin.flow FunctionCall (spec.md §4.4 item 4,
// "FunctionCall(potential_builtin|flow_builtin, (branch,))"). Its static
// type is Real: codegen reads the nets' potential slots for a potential
// probe and the branch's flow slot for a flow probe, and never evaluates
// BranchRef as an ordinary expression.
type BranchRef struct {
	Branch *Branch
}

func (*BranchRef) ExprType() Type { return Real }

// symbolID is assigned to every Variable/Parameter at construction so code
// generation can key per-instance IR globals on identity rather than
// structural equality, per spec.md §4.5/§9 ("Identity vs value for
// symbols").
var nextSymbolID int64

func newSymbolID() int64 {
	nextSymbolID++
	return nextSymbolID
}

// Variable is a module- or block-scoped variable, or (when IsParameter is
// set) a module-scoped parameter: externally writable at runtime, read-only
// from within run_analog.
type Variable struct {
	id          int64
	Name        string
	Type        Type
	Initializer Expr
	IsParameter bool
	Ranges      []ast.ParamRange // set only for parameters (spec.md §5 supplement)
	Parsed      ast.Expr
}

// NewVariable constructs a Variable (or, with isParameter, a Parameter) with
// a fresh identity, for use as a map key distinct from any other variable of
// the same name/type/initializer.
func NewVariable(name string, typ Type, initializer Expr, isParameter bool) *Variable {
	return &Variable{id: newSymbolID(), Name: name, Type: typ, Initializer: initializer, IsParameter: isParameter}
}

// ID returns this variable's stable synthetic identity.
func (v *Variable) ID() int64 { return v.id }

func (v *Variable) ExprType() Type { return v.Type }

// Stmt is any HIR statement node.
type Stmt interface{ stmtNode() }

// Assignment stores value (whose type equals lvalue's) into lvalue.
type Assignment struct {
	Lvalue *Variable
	Value  Expr
}

// Block runs its statements in order.
type Block struct {
	Statements []Stmt
}

// If evaluates condition (integer or real; nonzero is truthy) and runs Then
// or Else accordingly.
type If struct {
	Condition Expr
	Then      Stmt
	Else      Stmt // nil if absent
}

// ContributionKind distinguishes a flow contribution from a potential
// contribution (spec.md §3, §4.5).
type ContributionKind int

const (
	Flow ContributionKind = iota
	Potential
)

func (k ContributionKind) String() string {
	if k == Flow {
		return "flow"
	}
	return "potential"
}

// AnalogContribution is `accessor(branch) <+ value;`, additive with a sign
// flip on the branch's second net for flow contributions (spec.md §4.5).
type AnalogContribution struct {
	Branch *Branch
	Kind   ContributionKind
	Value  Expr
}

// ForLoop is `for (initial; condition; change) statement`, restored from
// the original implementation per SPEC_FULL §5 (dropped by spec.md's
// distillation; spec.md's Non-goals do not name it).
type ForLoop struct {
	Initial   *Assignment
	Condition Expr
	Change    *Assignment
	Statement Stmt
}

// Nop is a statement with no run-time effect: the lowered form of a system
// task call, which spec.md explicitly keeps out of scope for diagnostic
// output but which SPEC_FULL §5 still accepts syntactically.
type Nop struct{}

func (*Assignment) stmtNode()         {}
func (*Block) stmtNode()              {}
func (*If) stmtNode()                 {}
func (*AnalogContribution) stmtNode() {}
func (*ForLoop) stmtNode()            {}
func (*Nop) stmtNode()                {}

// Module is a fully-lowered Verilog-A module: its port list, net list,
// branch table (keyed by net-name pair), parameters, variables, and analog
// statements.
type Module struct {
	Name       string
	Ports      []*Port
	Nets       []*Net
	Branches   map[BranchKey]*Branch // insertion order not significant; codegen iterates Nets/BranchOrder
	BranchOrder []*Branch            // branches in first-use order, for deterministic codegen
	Parameters []*Variable
	Variables  []*Variable
	Statements []Stmt
	Parsed     *ast.Module
}

// SourceFile is every module, nature, and discipline declared in one file.
type SourceFile struct {
	Modules     []*Module
	Natures     []*Nature
	Disciplines []*Discipline
}
