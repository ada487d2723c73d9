// Package ir defines the intermediate representation: the resolved,
// immutable view of the meta-model handed to downstream generators. Unlike
// the syntax-level model, entities here reference each other by object, all
// inherited members are stacked onto their heirs, and every constructor is
// flattened to a plain list of argument assignments.
package ir

import (
	"github.com/veld-lang/veld/compiler/ast"
	"github.com/veld-lang/veld/compiler/construct"
	"github.com/veld-lang/veld/compiler/exprtree"
	"github.com/veld-lang/veld/compiler/model"
)

// PrimitiveType enumerates the built-in primitive types
type PrimitiveType int

const (
	Bool PrimitiveType = iota
	Int
	Float
	Str
	ByteArray
)

var primitiveTypeNames = map[PrimitiveType]string{
	Bool: "bool", Int: "int", Float: "float", Str: "str", ByteArray: "bytes",
}

func (p PrimitiveType) String() string { return primitiveTypeNames[p] }

// PrimitiveTypeByName maps the source spelling of a primitive type to its
// enumeration value
var PrimitiveTypeByName = map[model.Identifier]PrimitiveType{
	"bool": Bool, "int": Int, "float": Float, "str": Str, "bytes": ByteArray,
}

// TypeAnnotation is the resolved view of a type. A fully resolved
// annotation never contains an unresolved reference and never nests Final;
// read-only-ness lives on the property instead.
type TypeAnnotation interface {
	typeAnnotation()
	String() string
}

// PrimitiveTypeAnnotation is a built-in primitive type
type PrimitiveTypeAnnotation struct {
	Kind PrimitiveType
}

func (p *PrimitiveTypeAnnotation) typeAnnotation() {}
func (p *PrimitiveTypeAnnotation) String() string  { return p.Kind.String() }

// OurTypeAnnotation is a reference to an entity defined in the document.
// During pass one of the translation the reference is a placeholder keyed
// by name; pass two fills the target in place. All annotations referring to
// the same name share one cell.
type OurTypeAnnotation struct {
	Ref *EntityRef
}

func (o *OurTypeAnnotation) typeAnnotation() {}
func (o *OurTypeAnnotation) String() string  { return string(o.Ref.Name) }

// ListTypeAnnotation is a list of items
type ListTypeAnnotation struct {
	Items TypeAnnotation
}

func (l *ListTypeAnnotation) typeAnnotation() {}
func (l *ListTypeAnnotation) String() string  { return "List[" + l.Items.String() + "]" }

// OptionalTypeAnnotation is a value that may be unset
type OptionalTypeAnnotation struct {
	Value TypeAnnotation
}

func (o *OptionalTypeAnnotation) typeAnnotation() {}
func (o *OptionalTypeAnnotation) String() string  { return "Optional[" + o.Value.String() + "]" }

// IsOptional reports whether the annotation is Optional at the top level
func IsOptional(annotation TypeAnnotation) bool {
	_, ok := annotation.(*OptionalTypeAnnotation)
	return ok
}

// EntityRef is a shared, write-once cell resolving a name to an entity.
// The translator creates one cell per distinct name and overwrites Target
// once every entity has an identity.
type EntityRef struct {
	Name   model.Identifier
	Target Entity // nil until pass two of the translation
}

// Entity is either a *Class or an *Enumeration
type Entity interface {
	EntityName() model.Identifier
}

// Property is a property of a class, possibly inherited. ReadOnly
// properties were declared with a Final-wrapped type.
type Property struct {
	Name           model.Identifier
	TypeAnnotation TypeAnnotation
	ReadOnly       bool
	Description    *model.Description
	// SpecifiedIn names the class that declared the property, which differs
	// from the owning class for inherited properties.
	SpecifiedIn model.Identifier
}

// Argument is an argument of a method or constructor
type Argument struct {
	Name           model.Identifier
	TypeAnnotation TypeAnnotation
	HasNullDefault bool
}

// Contract is a pre- or postcondition
type Contract struct {
	Args        []model.Identifier
	Description string
	Body        exprtree.Expression
}

// Snapshot captures a value before execution for OLD in postconditions
type Snapshot struct {
	Args []model.Identifier
	Name model.Identifier
	Body exprtree.Expression
}

// Contracts is the stacked contract set: inherited conditions come before
// the entity's own, antecedents first
type Contracts struct {
	Preconditions  []*Contract
	Snapshots      []*Snapshot
	Postconditions []*Contract
}

// Invariant is a class invariant, possibly inherited
type Invariant struct {
	Description string
	Body        exprtree.Expression
	// SpecifiedIn names the class that declared the invariant
	SpecifiedIn model.Identifier
}

// Constructor is the flattened constructor of a class: its own arguments
// and contracts stacked with the ancestors', and the in-lined list of
// argument assignments with all delegations substituted
type Constructor struct {
	Arguments              []*Argument
	ImplementationSpecific bool
	Contracts              Contracts
	Description            *model.Description
	Statements             []*construct.AssignArgument
}

// Method is a method of a class, possibly inherited. The body is kept as an
// opaque statement list; the IR never evaluates it.
type Method struct {
	Name                   model.Identifier
	ImplementationSpecific bool
	Arguments              []*Argument
	Returns                TypeAnnotation // nil for procedures
	Description            *model.Description
	Contracts              Contracts
	Body                   []ast.Stmt
}

// Serialization carries the resolved serialization settings of a class
type Serialization struct {
	WithModelType bool
}

// Class is a structured type with all inherited members stacked on
type Class struct {
	Name                   model.Identifier
	Abstract               bool
	ImplementationSpecific bool
	// Inheritances are the direct parents, resolved
	Inheritances []*Class
	// Properties contains the inherited properties first, antecedents
	// first, followed by the class's own
	Properties []*Property
	// Methods likewise, constructors excluded
	Methods []*Method
	// Constructor is never nil; a class without a declared constructor
	// gets one with no arguments and no statements
	Constructor *Constructor
	// Invariants contains the inherited invariants first
	Invariants    []*Invariant
	Serialization *Serialization
	Description   *model.Description

	propertiesByName map[model.Identifier]*Property
	methodsByName    map[model.Identifier]*Method
}

func (c *Class) EntityName() model.Identifier { return c.Name }

// IndexMembers builds the name indices once all members are stacked
func (c *Class) IndexMembers() {
	c.propertiesByName = make(map[model.Identifier]*Property, len(c.Properties))
	for _, prop := range c.Properties {
		c.propertiesByName[prop.Name] = prop
	}
	c.methodsByName = make(map[model.Identifier]*Method, len(c.Methods))
	for _, method := range c.Methods {
		c.methodsByName[method.Name] = method
	}
}

// PropertyByName looks up a property, own or inherited
func (c *Class) PropertyByName(name model.Identifier) (*Property, bool) {
	prop, ok := c.propertiesByName[name]
	return prop, ok
}

// MethodByName looks up a method, own or inherited
func (c *Class) MethodByName(name model.Identifier) (*Method, bool) {
	method, ok := c.methodsByName[name]
	return method, ok
}

// EnumerationLiteral is a single literal of an enumeration
type EnumerationLiteral struct {
	Name        model.Identifier
	Value       string
	Description *model.Description
}

// Enumeration is an enumeration of string-valued literals
type Enumeration struct {
	Name        model.Identifier
	Literals    []*EnumerationLiteral
	Description *model.Description

	literalsByName map[model.Identifier]*EnumerationLiteral
}

func (e *Enumeration) EntityName() model.Identifier { return e.Name }

// IndexLiterals builds the literal index
func (e *Enumeration) IndexLiterals() {
	e.literalsByName = make(map[model.Identifier]*EnumerationLiteral, len(e.Literals))
	for _, literal := range e.Literals {
		e.literalsByName[literal.Name] = literal
	}
}

// LiteralByName looks up a literal by name
func (e *Enumeration) LiteralByName(name model.Identifier) (*EnumerationLiteral, bool) {
	literal, ok := e.literalsByName[name]
	return literal, ok
}

// SymbolTable is the final, immutable registry of all entities, in
// declaration order and indexed by name
type SymbolTable struct {
	entities []Entity
	byName   map[model.Identifier]Entity
}

// NewSymbolTable creates the symbol table. Names must be unique.
func NewSymbolTable(entities []Entity) *SymbolTable {
	byName := make(map[model.Identifier]Entity, len(entities))
	for _, entity := range entities {
		byName[entity.EntityName()] = entity
	}
	return &SymbolTable{entities: entities, byName: byName}
}

// Entities returns all entities in declaration order
func (t *SymbolTable) Entities() []Entity {
	return t.entities
}

// Find looks up an entity by name
func (t *SymbolTable) Find(name model.Identifier) (Entity, bool) {
	entity, ok := t.byName[name]
	return entity, ok
}

// MustFindClass looks up a class by name and panics if it is absent or not
// a class
func (t *SymbolTable) MustFindClass(name model.Identifier) *Class {
	entity, ok := t.byName[name]
	if !ok {
		panic("expected the class " + string(name) + " in the symbol table")
	}
	class, ok := entity.(*Class)
	if !ok {
		panic("expected " + string(name) + " to be a class")
	}
	return class
}

// Classes returns all classes in declaration order
func (t *SymbolTable) Classes() []*Class {
	var classes []*Class
	for _, entity := range t.entities {
		if class, ok := entity.(*Class); ok {
			classes = append(classes, class)
		}
	}
	return classes
}

// ConcreteClasses returns all non-abstract classes in declaration order
func (t *SymbolTable) ConcreteClasses() []*Class {
	var classes []*Class
	for _, entity := range t.entities {
		if class, ok := entity.(*Class); ok && !class.Abstract {
			classes = append(classes, class)
		}
	}
	return classes
}

// Enumerations returns all enumerations in declaration order
func (t *SymbolTable) Enumerations() []*Enumeration {
	var enums []*Enumeration
	for _, entity := range t.entities {
		if enum, ok := entity.(*Enumeration); ok {
			enums = append(enums, enum)
		}
	}
	return enums
}
