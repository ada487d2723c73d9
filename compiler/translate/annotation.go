package translate

import (
	"fmt"

	"github.com/veld-lang/veld/compiler/errors"
	"github.com/veld-lang/veld/compiler/ir"
	"github.com/veld-lang/veld/compiler/model"
)

// subscriptArity maps each generic type to the number of subscripts it takes
var subscriptArity = map[model.Identifier]int{
	"Optional": 1,
	"List":     1,
	"Final":    1,
	"Set":      1,
	"Mapping":  2,
}

// translateAnnotation resolves a syntax-level type annotation into the
// intermediate representation. Final is valid only at the outermost level
// of a property type and is handled by the caller; here it is an error.
// Set and Mapping are checked for arity but rejected since the
// representation does not support them.
func (t *translator) translateAnnotation(
	annotation model.TypeAnnotation,
) (ir.TypeAnnotation, bool) {
	switch a := annotation.(type) {
	case *model.AtomicTypeAnnotation:
		if primitive, ok := ir.PrimitiveTypeByName[a.Identifier]; ok {
			return &ir.PrimitiveTypeAnnotation{Kind: primitive}, true
		}
		if _, generic := subscriptArity[a.Identifier]; generic {
			pos := a.Pos()
			t.errs = append(t.errs, errors.New("translate",
				fmt.Sprintf("expected subscripts for the generic type %s", a.Identifier),
				&pos))
			return nil, false
		}
		return &ir.OurTypeAnnotation{Ref: t.refFor(a.Identifier, a.Pos())}, true

	case *model.SubscriptedTypeAnnotation:
		return t.translateSubscripted(a)

	case *model.SelfTypeAnnotation:
		panic("unexpected receiver annotation outside of an argument list")

	default:
		panic(fmt.Sprintf("unexpected type annotation %T", annotation))
	}
}

func (t *translator) translateSubscripted(
	a *model.SubscriptedTypeAnnotation,
) (ir.TypeAnnotation, bool) {
	pos := a.Pos()

	arity, ok := subscriptArity[a.Identifier]
	if !ok {
		t.errs = append(t.errs, errors.New("translate",
			fmt.Sprintf("expected Optional, List, Set, Mapping or Final as the generic type, but got %s",
				a.Identifier),
			&pos))
		return nil, false
	}

	if len(a.Subscripts) != arity {
		t.errs = append(t.errs, errors.New("translate",
			fmt.Sprintf("expected exactly %d subscript(s) for %s, but got %d",
				arity, a.Identifier, len(a.Subscripts)),
			&pos))
		return nil, false
	}

	switch a.Identifier {
	case "Optional":
		value, ok := t.translateAnnotation(a.Subscripts[0])
		if !ok {
			return nil, false
		}
		return &ir.OptionalTypeAnnotation{Value: value}, true

	case "List":
		items, ok := t.translateAnnotation(a.Subscripts[0])
		if !ok {
			return nil, false
		}
		return &ir.ListTypeAnnotation{Items: items}, true

	case "Final":
		t.errs = append(t.errs, errors.New("translate",
			"expected Final only at the outermost level of a property type",
			&pos))
		return nil, false

	case "Set", "Mapping":
		t.errs = append(t.errs, errors.New("translate",
			fmt.Sprintf("the type %s is not supported in the intermediate representation",
				a.Identifier),
			&pos))
		return nil, false

	default:
		panic("unhandled generic type " + string(a.Identifier))
	}
}

// translatePropertyAnnotation handles the outermost Final wrapper of a
// property type and reports whether the property is read-only.
func (t *translator) translatePropertyAnnotation(
	annotation model.TypeAnnotation,
) (ir.TypeAnnotation, bool, bool) {
	if subscripted, ok := annotation.(*model.SubscriptedTypeAnnotation); ok &&
		subscripted.Identifier == "Final" {
		if len(subscripted.Subscripts) != 1 {
			pos := subscripted.Pos()
			t.errs = append(t.errs, errors.New("translate",
				fmt.Sprintf("expected exactly 1 subscript(s) for Final, but got %d",
					len(subscripted.Subscripts)),
				&pos))
			return nil, false, false
		}
		inner, ok := t.translateAnnotation(subscripted.Subscripts[0])
		return inner, true, ok
	}

	translated, ok := t.translateAnnotation(annotation)
	return translated, false, ok
}

// translateArguments converts the argument list of a method or constructor,
// dropping the receiver.
func (t *translator) translateArguments(
	method *model.Method,
) ([]*ir.Argument, bool) {
	allOk := true
	var arguments []*ir.Argument
	for _, arg := range method.Arguments {
		if _, isSelf := arg.TypeAnnotation.(*model.SelfTypeAnnotation); isSelf {
			continue
		}
		annotation, ok := t.translateAnnotation(arg.TypeAnnotation)
		if !ok {
			allOk = false
			continue
		}
		arguments = append(arguments, &ir.Argument{
			Name:           arg.Name,
			TypeAnnotation: annotation,
			HasNullDefault: arg.Default != nil,
		})
	}
	return arguments, allOk
}
