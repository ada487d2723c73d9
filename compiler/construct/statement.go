// Package construct understands constructor bodies. A constructor may only
// delegate to super constructors and assign arguments to same-named
// properties, optionally with a default for omitted optional arguments; this
// package recognizes exactly those shapes and rejects everything else.
package construct

import (
	"github.com/veld-lang/veld/compiler/errors"
	"github.com/veld-lang/veld/compiler/model"
)

// Statement is one understood constructor statement: either a
// *CallSuperConstructor or an *AssignArgument
type Statement interface {
	statement()
	Pos() errors.Position
}

// CallSuperConstructor is a delegation to the constructor of a super class.
// Every argument of the super constructor is forwarded under its own name.
type CallSuperConstructor struct {
	SuperName model.Identifier
	Loc       errors.Position
}

func (c *CallSuperConstructor) statement()           {}
func (c *CallSuperConstructor) Pos() errors.Position { return c.Loc }

// Default is the value substituted when an optional argument is omitted:
// either an *EmptyList or a *DefaultEnumLiteral
type Default interface {
	defaultValue()
	Pos() errors.Position
}

// EmptyList defaults the property to an empty list
type EmptyList struct {
	Loc errors.Position
}

func (e *EmptyList) defaultValue()        {}
func (e *EmptyList) Pos() errors.Position { return e.Loc }

// DefaultEnumLiteral defaults the property to a literal of an enumeration
type DefaultEnumLiteral struct {
	Enum    *model.Enumeration
	Literal *model.EnumerationLiteral
	Loc     errors.Position
}

func (d *DefaultEnumLiteral) defaultValue()        {}
func (d *DefaultEnumLiteral) Pos() errors.Position { return d.Loc }

// AssignArgument assigns a constructor argument to the same-named property.
// If Default is set, the argument is optional and the default is substituted
// when the argument is omitted.
type AssignArgument struct {
	Name     model.Identifier
	Argument model.Identifier
	Default  Default
	Loc      errors.Position
}

func (a *AssignArgument) statement()           {}
func (a *AssignArgument) Pos() errors.Position { return a.Loc }
