// Package exprtree defines the expression tree used for contract conditions,
// snapshot captures and invariants. The syntax parser produces generic
// expressions; this package re-shapes them into a small vocabulary that the
// later stages can analyze without caring about surface syntax.
package exprtree

import "github.com/veld-lang/veld/compiler/errors"

// Node is implemented by every expression tree node
type Node interface {
	Pos() errors.Position
	node()
}

// Expression is implemented by every node that yields a value
type Expression interface {
	Node
	expression()
}

// Member is an access to a member of an instance, e.g. self.items
type Member struct {
	Instance Expression
	Name     string
	Loc      errors.Position
}

func (m *Member) node()                {}
func (m *Member) expression()          {}
func (m *Member) Pos() errors.Position { return m.Loc }

// Comparator enumerates the comparison operators
type Comparator int

const (
	Lt Comparator = iota
	Le
	Gt
	Ge
	Eq
	Ne
)

var comparatorNames = map[Comparator]string{
	Lt: "<", Le: "<=", Gt: ">", Ge: ">=", Eq: "==", Ne: "!=",
}

func (c Comparator) String() string { return comparatorNames[c] }

// Comparison is a single comparison between two expressions
type Comparison struct {
	Op    Comparator
	Left  Expression
	Right Expression
	Loc   errors.Position
}

func (c *Comparison) node()                {}
func (c *Comparison) expression()          {}
func (c *Comparison) Pos() errors.Position { return c.Loc }

// Implication captures 'not antecedent or consequent' as a logical
// implication so that downstream code can render it as such
type Implication struct {
	Antecedent Expression
	Consequent Expression
	Loc        errors.Position
}

func (i *Implication) node()                {}
func (i *Implication) expression()          {}
func (i *Implication) Pos() errors.Position { return i.Loc }

// MethodCall is an invocation of a method on an instance
type MethodCall struct {
	Member *Member
	Args   []Expression
	Loc    errors.Position
}

func (m *MethodCall) node()                {}
func (m *MethodCall) expression()          {}
func (m *MethodCall) Pos() errors.Position { return m.Loc }

// FunctionCall is an invocation of a free function
type FunctionCall struct {
	Name *Name
	Args []Expression
	Loc  errors.Position
}

func (f *FunctionCall) node()                {}
func (f *FunctionCall) expression()          {}
func (f *FunctionCall) Pos() errors.Position { return f.Loc }

// Constant is a literal value: int64, float64, string, bool, or nil
type Constant struct {
	Value interface{}
	Loc   errors.Position
}

func (c *Constant) node()                {}
func (c *Constant) expression()          {}
func (c *Constant) Pos() errors.Position { return c.Loc }

// IsNone tests whether the value is null
type IsNone struct {
	Value Expression
	Loc   errors.Position
}

func (i *IsNone) node()                {}
func (i *IsNone) expression()          {}
func (i *IsNone) Pos() errors.Position { return i.Loc }

// IsNotNone tests whether the value is set
type IsNotNone struct {
	Value Expression
	Loc   errors.Position
}

func (i *IsNotNone) node()                {}
func (i *IsNotNone) expression()          {}
func (i *IsNotNone) Pos() errors.Position { return i.Loc }

// Name is a reference to a variable or parameter
type Name struct {
	Identifier string
	Loc        errors.Position
}

func (n *Name) node()                {}
func (n *Name) expression()          {}
func (n *Name) Pos() errors.Position { return n.Loc }

// And is an n-ary conjunction
type And struct {
	Values []Expression
	Loc    errors.Position
}

func (a *And) node()                {}
func (a *And) expression()          {}
func (a *And) Pos() errors.Position { return a.Loc }

// Or is an n-ary disjunction
type Or struct {
	Values []Expression
	Loc    errors.Position
}

func (o *Or) node()                {}
func (o *Or) expression()          {}
func (o *Or) Pos() errors.Position { return o.Loc }

// Not is a logical negation that is not part of an implication
type Not struct {
	Operand Expression
	Loc     errors.Position
}

func (n *Not) node()                {}
func (n *Not) expression()          {}
func (n *Not) Pos() errors.Position { return n.Loc }

// Declaration binds a name to a value within an expression
type Declaration struct {
	Name  string
	Value Expression
	Loc   errors.Position
}

func (d *Declaration) node()                {}
func (d *Declaration) Pos() errors.Position { return d.Loc }

// ExpressionWithDeclarations is a let-in expression: the declarations are
// bound in order and visible in the body
type ExpressionWithDeclarations struct {
	Declarations []*Declaration
	Body         Expression
	Loc          errors.Position
}

func (e *ExpressionWithDeclarations) node()                {}
func (e *ExpressionWithDeclarations) expression()          {}
func (e *ExpressionWithDeclarations) Pos() errors.Position { return e.Loc }

// Walk traverses the tree in pre-order. It descends into a node's
// children only if fn returns true for that node.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	switch n := node.(type) {
	case *Member:
		Walk(n.Instance, fn)
	case *Comparison:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Implication:
		Walk(n.Antecedent, fn)
		Walk(n.Consequent, fn)
	case *MethodCall:
		Walk(n.Member, fn)
		for _, arg := range n.Args {
			Walk(arg, fn)
		}
	case *FunctionCall:
		Walk(n.Name, fn)
		for _, arg := range n.Args {
			Walk(arg, fn)
		}
	case *IsNone:
		Walk(n.Value, fn)
	case *IsNotNone:
		Walk(n.Value, fn)
	case *And:
		for _, value := range n.Values {
			Walk(value, fn)
		}
	case *Or:
		for _, value := range n.Values {
			Walk(value, fn)
		}
	case *Not:
		Walk(n.Operand, fn)
	case *Declaration:
		Walk(n.Value, fn)
	case *ExpressionWithDeclarations:
		for _, decl := range n.Declarations {
			Walk(decl, fn)
		}
		Walk(n.Body, fn)
	case *Constant, *Name:
		// leaves
	}
}
