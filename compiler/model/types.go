// Package model defines the syntax-level meta-model: the validated but not
// yet resolved view of the source document. Entities at this level still
// refer to each other by name; resolution to object references happens in
// the intermediate representation.
package model

import (
	"regexp"
	"strings"

	"github.com/veld-lang/veld/compiler/ast"
	"github.com/veld-lang/veld/compiler/errors"
	"github.com/veld-lang/veld/compiler/exprtree"
)

// Identifier is a validated name: non-empty, alphanumeric or underscore,
// not starting with a digit
type Identifier string

var identifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// IsValidIdentifier reports whether the string satisfies the identifier rules
func IsValidIdentifier(s string) bool {
	return identifierRe.MatchString(s)
}

// TypeAnnotation is the syntax-level view of a type: names are not yet
// resolved to entities
type TypeAnnotation interface {
	typeAnnotation()
	Pos() errors.Position
	String() string
}

// AtomicTypeAnnotation is a bare type name, primitive or user-defined
type AtomicTypeAnnotation struct {
	Identifier Identifier
	Loc        errors.Position
}

func (a *AtomicTypeAnnotation) typeAnnotation()      {}
func (a *AtomicTypeAnnotation) Pos() errors.Position { return a.Loc }
func (a *AtomicTypeAnnotation) String() string       { return string(a.Identifier) }

// SubscriptedTypeAnnotation is a generic type applied to arguments,
// e.g. List[Reference] or Mapping[str, Submodel]
type SubscriptedTypeAnnotation struct {
	Identifier Identifier
	Subscripts []TypeAnnotation
	Loc        errors.Position
}

func (s *SubscriptedTypeAnnotation) typeAnnotation()      {}
func (s *SubscriptedTypeAnnotation) Pos() errors.Position { return s.Loc }

func (s *SubscriptedTypeAnnotation) String() string {
	parts := make([]string, len(s.Subscripts))
	for i, sub := range s.Subscripts {
		parts[i] = sub.String()
	}
	return string(s.Identifier) + "[" + strings.Join(parts, ", ") + "]"
}

// SelfTypeAnnotation marks the receiver argument of a method
type SelfTypeAnnotation struct{}

func (s *SelfTypeAnnotation) typeAnnotation()      {}
func (s *SelfTypeAnnotation) Pos() errors.Position { return errors.Position{} }
func (s *SelfTypeAnnotation) String() string       { return "self" }

// Property is a property of a class. Optional properties carry an Optional
// type annotation; read-only properties carry a Final annotation.
type Property struct {
	Name           Identifier
	TypeAnnotation TypeAnnotation
	Description    *Description
	Loc            errors.Position
}

// Default marks an argument that defaults to null when omitted
type Default struct {
	Loc errors.Position
}

// Argument is a method argument
type Argument struct {
	Name           Identifier
	TypeAnnotation TypeAnnotation
	Default        *Default
	Loc            errors.Position
}

// Invariant is a class invariant: a condition over self with a description
type Invariant struct {
	Args        []Identifier
	Description string
	Body        exprtree.Expression
	Loc         errors.Position
}

// Contract is a pre- or postcondition of a method
type Contract struct {
	Args        []Identifier
	Description string
	Body        exprtree.Expression
	Loc         errors.Position
}

// Snapshot captures a value before the method executes, for use in
// postconditions through OLD
type Snapshot struct {
	Args []Identifier
	Name Identifier
	Body exprtree.Expression
	Loc  errors.Position
}

// Contracts is the full contract set of a method
type Contracts struct {
	Preconditions  []*Contract
	Snapshots      []*Snapshot
	Postconditions []*Contract
}

// Method is a method of a class. The constructor is a method like any other
// at this level; its body is understood separately in a later stage.
// Implementation-specific methods have no body here.
type Method struct {
	Name                   Identifier
	ImplementationSpecific bool
	Arguments              []*Argument
	Returns                TypeAnnotation // nil for procedures
	Description            *Description
	Contracts              Contracts
	Body                   []ast.Stmt
	Loc                    errors.Position

	argumentsByName map[Identifier]*Argument
}

// ConstructorName is the reserved name of the constructor method
const ConstructorName Identifier = "init"

// NewMethod creates a method and indexes its arguments by name.
// The arguments must already be validated for uniqueness.
func NewMethod(
	name Identifier,
	implementationSpecific bool,
	arguments []*Argument,
	returns TypeAnnotation,
	description *Description,
	contracts Contracts,
	body []ast.Stmt,
	loc errors.Position,
) *Method {
	byName := make(map[Identifier]*Argument, len(arguments))
	for _, arg := range arguments {
		byName[arg.Name] = arg
	}
	return &Method{
		Name:                   name,
		ImplementationSpecific: implementationSpecific,
		Arguments:              arguments,
		Returns:                returns,
		Description:            description,
		Contracts:              contracts,
		Body:                   body,
		Loc:                    loc,
		argumentsByName:        byName,
	}
}

// ArgumentByName looks up an argument by name
func (m *Method) ArgumentByName(name Identifier) (*Argument, bool) {
	arg, ok := m.argumentsByName[name]
	return arg, ok
}

// IsConstructor reports whether the method is the constructor
func (m *Method) IsConstructor() bool {
	return m.Name == ConstructorName
}

// Serialization carries the serialization settings of a class
type Serialization struct {
	WithModelType bool
}

// Class is a structured type of the meta-model
type Class struct {
	Name                   Identifier
	Abstract               bool
	ImplementationSpecific bool
	Inheritances           []Identifier
	Properties             []*Property
	Methods                []*Method
	Invariants             []*Invariant
	Serialization          *Serialization
	Description            *Description
	Loc                    errors.Position

	propertiesByName map[Identifier]*Property
	methodsByName    map[Identifier]*Method
}

// NewClass creates a class and indexes its members by name.
// The members must already be validated for uniqueness.
func NewClass(
	name Identifier,
	abstract bool,
	implementationSpecific bool,
	inheritances []Identifier,
	properties []*Property,
	methods []*Method,
	invariants []*Invariant,
	serialization *Serialization,
	description *Description,
	loc errors.Position,
) *Class {
	propsByName := make(map[Identifier]*Property, len(properties))
	for _, prop := range properties {
		propsByName[prop.Name] = prop
	}
	methodsByName := make(map[Identifier]*Method, len(methods))
	for _, method := range methods {
		methodsByName[method.Name] = method
	}
	return &Class{
		Name:                   name,
		Abstract:               abstract,
		ImplementationSpecific: implementationSpecific,
		Inheritances:           inheritances,
		Properties:             properties,
		Methods:                methods,
		Invariants:             invariants,
		Serialization:          serialization,
		Description:            description,
		Loc:                    loc,
		propertiesByName:       propsByName,
		methodsByName:          methodsByName,
	}
}

// PropertyByName looks up a property by name
func (c *Class) PropertyByName(name Identifier) (*Property, bool) {
	prop, ok := c.propertiesByName[name]
	return prop, ok
}

// MethodByName looks up a method by name
func (c *Class) MethodByName(name Identifier) (*Method, bool) {
	method, ok := c.methodsByName[name]
	return method, ok
}

// Constructor returns the constructor method, or nil if the class does not
// define one
func (c *Class) Constructor() *Method {
	method, ok := c.methodsByName[ConstructorName]
	if !ok {
		return nil
	}
	return method
}

// EnumerationLiteral is a single literal of an enumeration
type EnumerationLiteral struct {
	Name        Identifier
	Value       string
	Description *Description
	Loc         errors.Position
}

// Enumeration is an enumeration of string-valued literals
type Enumeration struct {
	Name        Identifier
	Literals    []*EnumerationLiteral
	Description *Description
	Loc         errors.Position

	literalsByName map[Identifier]*EnumerationLiteral
}

// NewEnumeration creates an enumeration and indexes the literals by name.
// The literals must already be validated for uniqueness.
func NewEnumeration(
	name Identifier,
	literals []*EnumerationLiteral,
	description *Description,
	loc errors.Position,
) *Enumeration {
	byName := make(map[Identifier]*EnumerationLiteral, len(literals))
	for _, literal := range literals {
		byName[literal.Name] = literal
	}
	return &Enumeration{
		Name:           name,
		Literals:       literals,
		Description:    description,
		Loc:            loc,
		literalsByName: byName,
	}
}

// LiteralByName looks up a literal by name
func (e *Enumeration) LiteralByName(name Identifier) (*EnumerationLiteral, bool) {
	literal, ok := e.literalsByName[name]
	return literal, ok
}

// Entity is either a *Class or an *Enumeration
type Entity interface {
	EntityName() Identifier
	Pos() errors.Position
}

func (c *Class) EntityName() Identifier { return c.Name }
func (c *Class) Pos() errors.Position  { return c.Loc }

func (e *Enumeration) EntityName() Identifier { return e.Name }
func (e *Enumeration) Pos() errors.Position   { return e.Loc }

// SymbolTable holds all entities of the document in declaration order,
// indexed by name
type SymbolTable struct {
	entities []Entity
	byName   map[Identifier]Entity
}

// NewSymbolTable creates a symbol table. Entity names must already be
// validated for uniqueness.
func NewSymbolTable(entities []Entity) *SymbolTable {
	byName := make(map[Identifier]Entity, len(entities))
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
func (t *SymbolTable) Find(name Identifier) (Entity, bool) {
	entity, ok := t.byName[name]
	return entity, ok
}

// MustFindClass looks up a class by name and panics if it is absent or not
// a class. It is meant for callers that have already validated the name.
func (t *SymbolTable) MustFindClass(name Identifier) *Class {
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
