package ast

// Expr is the tagged sum of expression kinds (spec §3/§4.5). GetType
// returns the node's static type: for most kinds that type comes from
// the external semantic analyzer that produced this (assumed-valid)
// AST and is simply stored on the node; constants know their own type
// outright.
type Expr interface {
	Node
	GetType() Type
	isExpr()
}

// LValue is implemented only by FieldAccess and ArrayAccess — the two
// expression kinds spec §4.5 allows on the left of an assignment.
type LValue interface {
	Expr
	isLValue()
}

type exprBase struct{ base }

func (*exprBase) isExpr() {}

// --- constants ---

type IntConstant struct {
	exprBase
	Value int
}

func (*IntConstant) GetType() Type { return IntType }

type BoolConstant struct {
	exprBase
	Value bool
}

func (*BoolConstant) GetType() Type { return BoolType }

type StringConstant struct {
	exprBase
	Value string
}

func (*StringConstant) GetType() Type { return StringType }

type NullConstant struct{ exprBase }

func (*NullConstant) GetType() Type { return NullType }

// DoubleConstant exists only so an encounter with one can be rejected
// explicitly during lowering (spec §1 Non-goals, §7): doubles are
// parsed but never codegen'd.
type DoubleConstant struct {
	exprBase
	Value float64
}

func (*DoubleConstant) GetType() Type { return DoubleType }

// --- arithmetic / relational / equality / logical ---

// ArithmeticExpr is binary (+ - * / %) when Left != nil, unary negation
// (-Right) when Left == nil.
type ArithmeticExpr struct {
	exprBase
	Op          string
	Left, Right Expr
	Typ         Type
}

func (e *ArithmeticExpr) GetType() Type { return e.Typ }

// RelationalExpr covers < <= > >=; only < is a CodeGenerator primitive,
// the rest are synthesized by the lowering pass (spec §4.5).
type RelationalExpr struct {
	exprBase
	Op          string
	Left, Right Expr
}

func (*RelationalExpr) GetType() Type { return BoolType }

// EqualityExpr covers == !=.
type EqualityExpr struct {
	exprBase
	Op          string
	Left, Right Expr
}

func (*EqualityExpr) GetType() Type { return BoolType }

// LogicalExpr covers && ||.
type LogicalExpr struct {
	exprBase
	Op          string
	Left, Right Expr
}

func (*LogicalExpr) GetType() Type { return BoolType }

type NotExpr struct {
	exprBase
	Operand Expr
}

func (*NotExpr) GetType() Type { return BoolType }

type AssignExpr struct {
	exprBase
	Left, Right Expr
}

func (e *AssignExpr) GetType() Type { return e.Left.GetType() }

// --- lvalues, this, calls, allocation ---

type This struct {
	exprBase
	Typ Type // the enclosing class's type
}

func (e *This) GetType() Type { return e.Typ }

// FieldAccess covers both a bare variable/field name and an explicit
// base.field; Base is nil for the former (spec §4.5).
type FieldAccess struct {
	exprBase
	Base  Expr // nil: no explicit base
	Field *Identifier
	Typ   Type
}

func (e *FieldAccess) GetType() Type { return e.Typ }
func (*FieldAccess) isLValue()       {}

type ArrayAccess struct {
	exprBase
	Base      Expr
	Subscript Expr
	Typ       Type // element type
}

func (e *ArrayAccess) GetType() Type { return e.Typ }
func (*ArrayAccess) isLValue()       {}

// Call covers arr.length(), free/static calls, and method calls; Base
// is nil for the unqualified free/static-or-implicit-method form.
type Call struct {
	exprBase
	Base      Expr
	Method    *Identifier
	Args      []Expr
	Typ       Type
}

func (e *Call) GetType() Type { return e.Typ }

type NewExpr struct {
	exprBase
	ClassName string
}

func (e *NewExpr) GetType() Type { return &NamedType{Name: e.ClassName} }

type NewArrayExpr struct {
	exprBase
	Size     Expr
	ElemType Type
}

func (e *NewArrayExpr) GetType() Type { return &ArrayType{Elem: e.ElemType} }

type ReadIntegerExpr struct{ exprBase }

func (*ReadIntegerExpr) GetType() Type { return IntType }

type ReadLineExpr struct{ exprBase }

func (*ReadLineExpr) GetType() Type { return StringType }
