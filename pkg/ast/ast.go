// Package ast defines the parse tree produced by package parser: an
// untyped, unresolved syntactic representation of a Verilog-A source file,
// carrying only the tokens the grammar recognised and their structure.
package ast

import "github.com/ignamv/veriloga/pkg/token"

// Expr is any expression node.
type Expr interface{ exprNode() }

// Literal is a numeric or string literal, keeping the originating token so
// later stages can read its kind/value without re-deriving it.
type Literal struct {
	Token token.Token
}

// Identifier is a bare name reference: a variable, parameter, net, accessor,
// built-in, or system identifier, disambiguated during lowering.
type Identifier struct {
	Token token.Token
}

// Operation is a unary or binary (or ternary, for `?:`) application of an
// operator token to its operand expressions, in source order.
type Operation struct {
	Operator token.Token
	Operands []Expr
}

// FunctionCall is a call `function(args...)`, used for both ordinary
// function/system-task calls and accessor probes like V(a,b).
type FunctionCall struct {
	Function *Identifier
	Args     []Expr
}

func (*Literal) exprNode()      {}
func (*Identifier) exprNode()   {}
func (*Operation) exprNode()    {}
func (*FunctionCall) exprNode() {}

// Stmt is any statement node.
type Stmt interface{ stmtNode() }

// Assignment is `lvalue = value;`.
type Assignment struct {
	Lvalue token.Token
	Value  Expr
}

// AnalogContribution is `accessor(arg1[,arg2]) <+ value;`.
type AnalogContribution struct {
	Accessor token.Token
	Arg1     token.Token
	Arg2     *token.Token
	Value    Expr
}

// Block is `begin stmt* end`.
type Block struct {
	Statements []Stmt
}

// If is `if (condition) then [else else_]`.
type If struct {
	Condition Expr
	Then      Stmt
	Else      Stmt // nil if absent
}

// CaseItem is one `expr,... : statement` arm of a Case, or a `default:` arm
// when Exprs is nil.
type CaseItem struct {
	Exprs     []Expr // nil for the default arm
	Statement Stmt
}

// Case is `case (expr) item... endcase`.
type Case struct {
	Expr  Expr
	Items []CaseItem
}

// ForLoop is `for (initial; condition; change) statement`.
type ForLoop struct {
	Initial   *Assignment
	Condition Expr
	Change    *Assignment
	Statement Stmt
}

// SystemTaskCall is `$name(args...);`, parsed as a statement rather than an
// expression since it appears only in statement position.
type SystemTaskCall struct {
	Name token.Token
	Args []Expr
}

// NullStatement is a bare `;` with no effect (the grammar's
// analog_statement_or_null production), e.g. an `analog ;` block used to
// declare a module with no behavior yet.
type NullStatement struct {
	Semicolon token.Token
}

func (*Assignment) stmtNode()         {}
func (*AnalogContribution) stmtNode() {}
func (*Block) stmtNode()              {}
func (*If) stmtNode()                 {}
func (*Case) stmtNode()               {}
func (*ForLoop) stmtNode()            {}
func (*SystemTaskCall) stmtNode()     {}
func (*NullStatement) stmtNode()      {}

// Port is one entry of a module's port list: a name and an optional direction
// (nil for a plain, directionless port name). A port declared with a
// discipline also produces a Net of the same name in Module.Nets.
type Port struct {
	Name      token.Token
	Direction *token.Token // nil if undirected
}

// Net is a standalone net declaration, or one induced by a disciplined port.
type Net struct {
	Name       token.Token
	Discipline token.Token
}

// Variable is a module- or block-scoped variable declaration, with an
// optional initializer.
type Variable struct {
	Name        token.Token
	Type        token.Token
	Initializer Expr // nil if absent
}

// RangeBound is one endpoint of a `from [a:b]` interval: either a literal
// `inf`/`-inf` sentinel or an expression.
type RangeBound struct {
	Inf    bool // true for "inf"
	NegInf bool // true for "-inf"
	Value  Expr // set unless Inf or NegInf
}

// ParamRange is one `from (a:b]` or `exclude x` constraint following a
// parameter's initializer. Kept on the HIR parameter per SPEC_FULL so a
// future validator has the data, though range checking itself stays out of
// scope (spec.md §9).
type ParamRange struct {
	Keyword   token.Token // FROM or EXCLUDE
	Inclusive [2]bool     // bracket vs paren at [Low, High]; unused for EXCLUDE
	Low, High RangeBound  // set for FROM
	Value     Expr        // set for EXCLUDE
}

// Parameter is a `parameter type name = expr [range];` declaration.
type Parameter struct {
	Name        token.Token
	Type        token.Token
	Initializer Expr
	Ranges      []ParamRange
}

// Branch is a `branch (n1[,n2]) name;` declaration.
type Branch struct {
	Name token.Token
	Nets []token.Token // length 1 or 2
}

// NatureAttribute is one `key = expr;` line inside a nature block.
type NatureAttribute struct {
	Key   token.Token
	Value Expr
}

// Nature is a `nature name; attr...; endnature` block.
type Nature struct {
	Name       token.Token
	Attributes []NatureAttribute
}

// DisciplineAttribute is one `potential|flow|domain = value;` line inside a
// discipline block. Value is the identifier or keyword token naming the
// nature or domain.
type DisciplineAttribute struct {
	Key   token.Token
	Value token.Token
}

// Discipline is a `discipline name; attr...; enddiscipline` block.
type Discipline struct {
	Name       token.Token
	Attributes []DisciplineAttribute
}

// Module is a `module name(ports...); items... endmodule` block.
type Module struct {
	Name       token.Token
	Ports      []Port
	Nets       []Net
	Variables  []Variable
	Parameters []Parameter
	Branches   []Branch
	Statements []Stmt
}

// SourceFile is the root of a parsed file: every module, nature, and
// discipline declared at the top level, in source order.
type SourceFile struct {
	Modules     []Module
	Natures     []Nature
	Disciplines []Discipline
}
