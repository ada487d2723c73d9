// Package ast defines the concrete syntax tree for Veld meta-model source
// documents: use directives, enumeration and class definitions, properties,
// methods with their contract annotations, and method-body statements.
package ast

import (
	"github.com/veld-lang/veld/compiler/errors"
	"github.com/veld-lang/veld/compiler/lexer"
)

// Node is the base interface for all syntax tree nodes
type Node interface {
	Pos() errors.Position
	node()
}

// Document is the root node: one parsed source document
type Document struct {
	Uses []*UseDirective
	Defs []Def
}

func (d *Document) node() {}

// Pos returns the position of the document's first construct.
func (d *Document) Pos() errors.Position {
	if len(d.Uses) > 0 {
		return d.Uses[0].Pos()
	}
	if len(d.Defs) > 0 {
		return d.Defs[0].Pos()
	}
	return errors.Position{}
}

// UseDirective represents `use <name> from <module>`
type UseDirective struct {
	Name   string
	Module string
	Loc    errors.Position
}

func (u *UseDirective) node() {}

// Pos returns the source position of the directive.
func (u *UseDirective) Pos() errors.Position { return u.Loc }

// Def is the interface for top-level definitions
type Def interface {
	Node
	DefName() string
	def()
}

// EnumDef represents an enumeration definition
type EnumDef struct {
	Name     string
	Doc      []string // raw /// lines preceding the definition
	Literals []*EnumLiteralDef
	Loc      errors.Position
}

func (e *EnumDef) node() {}
func (e *EnumDef) def()  {}

// DefName returns the defined name.
func (e *EnumDef) DefName() string { return e.Name }

// Pos returns the source position of the definition.
func (e *EnumDef) Pos() errors.Position { return e.Loc }

// EnumLiteralDef represents one `name = "value"` literal within an enum
type EnumLiteralDef struct {
	Name  string
	Value string
	Doc   []string
	Loc   errors.Position
}

func (e *EnumLiteralDef) node() {}

// Pos returns the source position of the literal.
func (e *EnumLiteralDef) Pos() errors.Position { return e.Loc }

// ClassDef represents a structured type definition
type ClassDef struct {
	Name                   string
	Doc                    []string
	Abstract               bool // @abstract marker
	ImplementationSpecific bool // @implementation_specific marker
	WithModelType          bool // @serialization(model_type) marker
	Extends                []*TypeName
	Properties             []*PropertyDef
	Methods                []*MethodDef
	Invariants             []*InvariantDef
	Loc                    errors.Position
}

func (c *ClassDef) node() {}
func (c *ClassDef) def()  {}

// DefName returns the defined name.
func (c *ClassDef) DefName() string { return c.Name }

// Pos returns the source position of the definition.
func (c *ClassDef) Pos() errors.Position { return c.Loc }

// TypeName is a named reference to another definition
type TypeName struct {
	Name string
	Loc  errors.Position
}

func (t *TypeName) node() {}

// Pos returns the source position of the reference.
func (t *TypeName) Pos() errors.Position { return t.Loc }

// PropertyDef represents a `name: TypeAnnotation` member
type PropertyDef struct {
	Name string
	Type TypeExpr
	Doc  []string
	Loc  errors.Position
}

func (p *PropertyDef) node() {}

// Pos returns the source position of the property.
func (p *PropertyDef) Pos() errors.Position { return p.Loc }

// TypeExpr is the interface for type annotation expressions
type TypeExpr interface {
	Node
	typeExpr()
}

// AtomicType is a bare type name: a primitive or a reference to another
// definition
type AtomicType struct {
	Name string
	Loc  errors.Position
}

func (a *AtomicType) node()     {}
func (a *AtomicType) typeExpr() {}

// Pos returns the source position of the annotation.
func (a *AtomicType) Pos() errors.Position { return a.Loc }

// SubscriptedType is a container shape such as List[T] or Mapping[K, V]
type SubscriptedType struct {
	Name       string
	Subscripts []TypeExpr
	Loc        errors.Position
}

func (s *SubscriptedType) node()     {}
func (s *SubscriptedType) typeExpr() {}

// Pos returns the source position of the annotation.
func (s *SubscriptedType) Pos() errors.Position { return s.Loc }

// MethodDef represents a method (the constructor `init` included)
type MethodDef struct {
	Name                   string
	Doc                    []string
	ImplementationSpecific bool // @implementation_specific marker
	Params                 []*ParamDef
	Returns                TypeExpr // nil for procedures
	// Contract annotations in declaration order, i.e. top-down as written.
	Requires  []*ContractDef
	Ensures   []*ContractDef
	Snapshots []*SnapshotDef
	Body      []Stmt
	Loc       errors.Position
}

func (m *MethodDef) node() {}

// Pos returns the source position of the method.
func (m *MethodDef) Pos() errors.Position { return m.Loc }

// ParamDef represents one method parameter. The receiver parameter has a
// nil Type; `= null` is the only permitted default.
type ParamDef struct {
	Name        string
	Type        TypeExpr
	NullDefault bool
	Loc         errors.Position
}

func (p *ParamDef) node() {}

// Pos returns the source position of the parameter.
func (p *ParamDef) Pos() errors.Position { return p.Loc }

// ContractDef represents a @require or @ensure annotation:
// a parameter list, a condition expression and an optional description.
type ContractDef struct {
	Params    []string
	Condition Expr
	Text      string
	Loc       errors.Position
}

func (c *ContractDef) node() {}

// Pos returns the source position of the annotation.
func (c *ContractDef) Pos() errors.Position { return c.Loc }

// SnapshotDef represents a @snapshot annotation: a capture expression and
// the name under which the prior value is available to postconditions.
type SnapshotDef struct {
	Params  []string
	Capture Expr
	Name    string
	Loc     errors.Position
}

func (s *SnapshotDef) node() {}

// Pos returns the source position of the annotation.
func (s *SnapshotDef) Pos() errors.Position { return s.Loc }

// InvariantDef represents an @invariant annotation within a class body
type InvariantDef struct {
	Params    []string
	Condition Expr
	Text      string
	Loc       errors.Position
}

func (i *InvariantDef) node() {}

// Pos returns the source position of the annotation.
func (i *InvariantDef) Pos() errors.Position { return i.Loc }

// TokenPos creates a Position from a lexer token
func TokenPos(token lexer.Token) errors.Position {
	return errors.Position{Offset: token.Offset}
}
