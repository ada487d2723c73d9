package ast

import "github.com/veld-lang/veld/compiler/errors"

// Expr is the interface for all expression nodes
type Expr interface {
	Node
	expr()
}

// Ident represents a name
type Ident struct {
	Name string
	Loc  errors.Position
}

func (i *Ident) node() {}
func (i *Ident) expr() {}

// Pos returns the source position of the identifier.
func (i *Ident) Pos() errors.Position { return i.Loc }

// LitKind discriminates basic literal values
type LitKind int

const (
	// LitInt is an integer literal.
	LitInt LitKind = iota
	// LitFloat is a floating-point literal.
	LitFloat
	// LitString is a string literal.
	LitString
	// LitBool is true or false.
	LitBool
	// LitNull is the null literal.
	LitNull
)

// BasicLit represents a literal constant
type BasicLit struct {
	Kind  LitKind
	Value interface{} // int64, float64, string, bool, or nil for null
	Loc   errors.Position
}

func (b *BasicLit) node() {}
func (b *BasicLit) expr() {}

// Pos returns the source position of the literal.
func (b *BasicLit) Pos() errors.Position { return b.Loc }

// MemberExpr represents `X.Name`
type MemberExpr struct {
	X    Expr
	Name string
	Loc  errors.Position
}

func (m *MemberExpr) node() {}
func (m *MemberExpr) expr() {}

// Pos returns the source position of the access.
func (m *MemberExpr) Pos() errors.Position { return m.Loc }

// CallExpr represents `Fun(Args...)`
type CallExpr struct {
	Fun  Expr
	Args []Expr
	Loc  errors.Position
}

func (c *CallExpr) node() {}
func (c *CallExpr) expr() {}

// Pos returns the source position of the call.
func (c *CallExpr) Pos() errors.Position { return c.Loc }

// CompareOp enumerates the single-operator relational comparisons
type CompareOp int

const (
	// OpEq is ==.
	OpEq CompareOp = iota
	// OpNeq is !=.
	OpNeq
	// OpLt is <.
	OpLt
	// OpLte is <=.
	OpLte
	// OpGt is >.
	OpGt
	// OpGte is >=.
	OpGte
)

// String returns the operator's surface syntax.
func (op CompareOp) String() string {
	switch op {
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	default:
		return "?"
	}
}

// CompareExpr represents a single-operator comparison
type CompareExpr struct {
	Op    CompareOp
	Left  Expr
	Right Expr
	Loc   errors.Position
}

func (c *CompareExpr) node() {}
func (c *CompareExpr) expr() {}

// Pos returns the source position of the comparison.
func (c *CompareExpr) Pos() errors.Position { return c.Loc }

// LogicalOp discriminates `and` from `or`
type LogicalOp int

const (
	// OpAnd is a conjunction.
	OpAnd LogicalOp = iota
	// OpOr is a disjunction.
	OpOr
)

// LogicalExpr represents an n-ary `and`/`or` chain. The parser flattens
// chains of the same operator, so Operands always has two or more entries.
type LogicalExpr struct {
	Op       LogicalOp
	Operands []Expr
	Loc      errors.Position
}

func (l *LogicalExpr) node() {}
func (l *LogicalExpr) expr() {}

// Pos returns the source position of the chain.
func (l *LogicalExpr) Pos() errors.Position { return l.Loc }

// NotExpr represents `not X`
type NotExpr struct {
	X   Expr
	Loc errors.Position
}

func (n *NotExpr) node() {}
func (n *NotExpr) expr() {}

// Pos returns the source position of the negation.
func (n *NotExpr) Pos() errors.Position { return n.Loc }

// CoalesceExpr represents `X ?? Default`, the assignment-with-default
// idiom recognized in constructor bodies
type CoalesceExpr struct {
	X       Expr
	Default Expr
	Loc     errors.Position
}

func (c *CoalesceExpr) node() {}
func (c *CoalesceExpr) expr() {}

// Pos returns the source position of the expression.
func (c *CoalesceExpr) Pos() errors.Position { return c.Loc }

// ListLit represents a list literal; only the empty list `[]` is meaningful
// to the pipeline (as a constructor default)
type ListLit struct {
	Elements []Expr
	Loc      errors.Position
}

func (l *ListLit) node() {}
func (l *ListLit) expr() {}

// Pos returns the source position of the literal.
func (l *ListLit) Pos() errors.Position { return l.Loc }

// LetDecl is one `name = value` binding within a let expression
type LetDecl struct {
	Name  string
	Value Expr
	Loc   errors.Position
}

func (l *LetDecl) node() {}

// Pos returns the source position of the binding.
func (l *LetDecl) Pos() errors.Position { return l.Loc }

// LetExpr represents the declare-and-bind-then-use idiom
// `let x = e1, y = e2 in body`
type LetExpr struct {
	Decls []*LetDecl
	Body  Expr
	Loc   errors.Position
}

func (l *LetExpr) node() {}
func (l *LetExpr) expr() {}

// Pos returns the source position of the expression.
func (l *LetExpr) Pos() errors.Position { return l.Loc }

// Stmt is the interface for method-body statements
type Stmt interface {
	Node
	stmt()
}

// AssignStmt represents `target = value`
type AssignStmt struct {
	Target Expr
	Value  Expr
	Loc    errors.Position
}

func (a *AssignStmt) node() {}
func (a *AssignStmt) stmt() {}

// Pos returns the source position of the statement.
func (a *AssignStmt) Pos() errors.Position { return a.Loc }

// ReturnStmt represents `return [value]`
type ReturnStmt struct {
	Value Expr // nil for a bare return
	Loc   errors.Position
}

func (r *ReturnStmt) node() {}
func (r *ReturnStmt) stmt() {}

// Pos returns the source position of the statement.
func (r *ReturnStmt) Pos() errors.Position { return r.Loc }

// ExprStmt represents an expression used as a statement
type ExprStmt struct {
	X   Expr
	Loc errors.Position
}

func (e *ExprStmt) node() {}
func (e *ExprStmt) stmt() {}

// Pos returns the source position of the statement.
func (e *ExprStmt) Pos() errors.Position { return e.Loc }

// PassStmt represents the no-op `pass` statement
type PassStmt struct {
	Loc errors.Position
}

func (p *PassStmt) node() {}
func (p *PassStmt) stmt() {}

// Pos returns the source position of the statement.
func (p *PassStmt) Pos() errors.Position { return p.Loc }
