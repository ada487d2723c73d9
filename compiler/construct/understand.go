package construct

import (
	"fmt"

	"github.com/veld-lang/veld/compiler/ast"
	"github.com/veld-lang/veld/compiler/errors"
	"github.com/veld-lang/veld/compiler/model"
)

// ConstructorTable maps every class to its understood constructor body.
// Classes without a constructor map to an empty body.
type ConstructorTable struct {
	statements map[model.Identifier][]Statement
}

// Has reports whether the table holds an entry for the class
func (t *ConstructorTable) Has(class *model.Class) bool {
	_, ok := t.statements[class.Name]
	return ok
}

// MustFind returns the understood constructor body of the class. It panics
// if the class has no entry, which cannot happen for a table produced by
// UnderstandAll.
func (t *ConstructorTable) MustFind(class *model.Class) []Statement {
	statements, ok := t.statements[class.Name]
	if !ok {
		panic(fmt.Sprintf("no entry in the constructor table for the class %s", class.Name))
	}
	return statements
}

// UnderstandAll understands the constructors of all the classes in the
// symbol table. Classes are processed independently and the failures
// collected under one umbrella error.
func UnderstandAll(table *model.SymbolTable) (*ConstructorTable, *errors.CompilerError) {
	statements := make(map[model.Identifier][]Statement)
	var underlying []*errors.CompilerError

	for _, class := range table.Classes() {
		body, err := understandBody(class, table)
		if err != nil {
			underlying = append(underlying, err)
			continue
		}
		statements[class.Name] = body
	}

	if len(underlying) > 0 {
		err := errors.New("construct", "failed to understand the constructors", nil)
		return nil, err.WithUnderlying(underlying...)
	}
	return &ConstructorTable{statements: statements}, nil
}

// understandBody understands the constructor body of one class. A class
// without a constructor yields an empty body.
func understandBody(class *model.Class, table *model.SymbolTable) ([]Statement, *errors.CompilerError) {
	init := class.Constructor()
	if init == nil {
		return nil, nil
	}

	var result []Statement
	var underlying []*errors.CompilerError

	for _, stmt := range init.Body {
		switch s := stmt.(type) {
		case *ast.PassStmt:
			continue
		case *ast.ExprStmt:
			call, ok := s.X.(*ast.CallExpr)
			if !ok {
				pos := s.Pos()
				underlying = append(underlying, errors.New("construct",
					"unexpected statement in the constructor body; only super constructor calls and property assignments are expected",
					&pos))
				continue
			}
			delegation, err := callAsCallToSuperInit(call, class, init, table)
			if err != nil {
				underlying = append(underlying, err)
				continue
			}
			result = append(result, delegation)
		case *ast.AssignStmt:
			assignment, err := understandAssignment(s, init, class, table)
			if err != nil {
				underlying = append(underlying, err)
				continue
			}
			result = append(result, assignment)
		default:
			pos := stmt.Pos()
			underlying = append(underlying, errors.New("construct",
				"unexpected statement in the constructor body; only super constructor calls and property assignments are expected",
				&pos))
		}
	}

	if len(underlying) > 0 {
		pos := init.Loc
		err := errors.New("construct",
			fmt.Sprintf("failed to understand the constructor of the class %s", class.Name),
			&pos)
		return nil, err.WithUnderlying(underlying...)
	}
	return result, nil
}

// callAsCallToSuperInit understands a call as a delegation to a super
// constructor: SuperClass.init(self, a, b, ...) where every argument of the
// super constructor is forwarded positionally under its own name.
func callAsCallToSuperInit(
	call *ast.CallExpr,
	class *model.Class,
	init *model.Method,
	table *model.SymbolTable,
) (*CallSuperConstructor, *errors.CompilerError) {
	pos := call.Pos()

	member, ok := call.Fun.(*ast.MemberExpr)
	if !ok || member.Name != string(model.ConstructorName) {
		return nil, errors.New("construct",
			"unexpected call in the constructor body; only calls to super constructors are expected",
			&pos)
	}

	superIdent, ok := member.X.(*ast.Ident)
	if !ok {
		memberPos := member.Pos()
		return nil, errors.New("construct",
			"expected a super class name in the call to a super constructor",
			&memberPos)
	}

	superName := model.Identifier(superIdent.Name)
	if !contains(class.Inheritances, superName) {
		return nil, errors.New("construct",
			fmt.Sprintf("expected a super class in the call to a super constructor, but %s does not inherit from %s",
				class.Name, superName),
			&pos)
	}

	superClass := table.MustFindClass(superName)
	superInit := superClass.Constructor()
	if superInit == nil {
		return nil, errors.New("construct",
			fmt.Sprintf("the super class %s does not define a constructor", superName),
			&pos)
	}

	var underlying []*errors.CompilerError

	if len(call.Args) != len(superInit.Arguments) {
		underlying = append(underlying, errors.New("construct",
			fmt.Sprintf("the constructor of %s expects %d argument(s), but the call provides %d",
				superName, len(superInit.Arguments), len(call.Args)),
			&pos))
	} else {
		for i, argNode := range call.Args {
			argIdent, ok := argNode.(*ast.Ident)
			if !ok {
				argPos := argNode.Pos()
				underlying = append(underlying, errors.New("construct",
					"expected only names in the arguments to the super constructor",
					&argPos))
				continue
			}

			argName := model.Identifier(argIdent.Name)
			expected := superInit.Arguments[i].Name

			if _, isOwn := init.ArgumentByName(argName); !isOwn {
				underlying = append(underlying, errors.New("construct",
					fmt.Sprintf("expected all the arguments to the constructor of %s to be propagated, but %s is not an argument of the constructor of %s",
						superName, argName, class.Name),
					&pos))
			} else if argName != expected {
				underlying = append(underlying, errors.New("construct",
					fmt.Sprintf("expected the arguments to the super constructor to be passed under the same names, but the argument %s is passed as %s",
						expected, argName),
					&pos))
			}
		}
	}

	if len(underlying) > 0 {
		err := errors.New("construct",
			fmt.Sprintf("failed to understand the arguments to the constructor of %s", superName),
			&pos)
		return nil, err.WithUnderlying(underlying...)
	}
	return &CallSuperConstructor{SuperName: superName, Loc: pos}, nil
}

// understandAssignment understands a property assignment: self.name = name,
// or self.name = name ?? default for an optional argument.
func understandAssignment(
	assign *ast.AssignStmt,
	init *model.Method,
	class *model.Class,
	table *model.SymbolTable,
) (*AssignArgument, *errors.CompilerError) {
	pos := assign.Pos()

	target, ok := assign.Target.(*ast.MemberExpr)
	if !ok {
		return nil, errors.New("construct",
			"expected a property of self as the target of the assignment", &pos)
	}
	if self, ok := target.X.(*ast.Ident); !ok || self.Name != "self" {
		return nil, errors.New("construct",
			"expected a property of self as the target of the assignment", &pos)
	}

	propName := model.Identifier(target.Name)
	if _, ok := class.PropertyByName(propName); !ok {
		return nil, errors.New("construct",
			fmt.Sprintf("the property %s has not been defined in the class %s",
				propName, class.Name),
			&pos)
	}

	switch value := assign.Value.(type) {
	case *ast.Ident:
		argName := model.Identifier(value.Name)
		if _, ok := init.ArgumentByName(argName); !ok {
			return nil, errors.New("construct",
				fmt.Sprintf("expected the property %s to be assigned an argument, but %s is not an argument of the constructor",
					propName, argName),
				&pos)
		}
		if argName != propName {
			return nil, errors.New("construct",
				fmt.Sprintf("expected the property %s to be assigned exactly the argument with the same name, but got %s",
					propName, argName),
				&pos)
		}
		return &AssignArgument{Name: propName, Argument: argName, Loc: pos}, nil

	case *ast.CoalesceExpr:
		argIdent, ok := value.X.(*ast.Ident)
		if !ok {
			return nil, errors.New("construct",
				fmt.Sprintf("expected an argument on the left of '??' in the assignment of the property %s",
					propName),
				&pos)
		}
		argName := model.Identifier(argIdent.Name)
		if _, ok := init.ArgumentByName(argName); !ok {
			return nil, errors.New("construct",
				fmt.Sprintf("expected an argument on the left of '??', but %s is not an argument of the constructor",
					argName),
				&pos)
		}

		deflt, err := understandDefault(value.Default, propName, table)
		if err != nil {
			return nil, err
		}
		return &AssignArgument{Name: propName, Argument: argName, Default: deflt, Loc: pos}, nil

	default:
		return nil, errors.New("construct",
			fmt.Sprintf("the handling of this constructor statement has not been implemented for the property %s",
				propName),
			&pos)
	}
}

// understandDefault understands the right side of '??': an empty list
// literal or an enumeration literal.
func understandDefault(
	expr ast.Expr,
	propName model.Identifier,
	table *model.SymbolTable,
) (Default, *errors.CompilerError) {
	pos := expr.Pos()

	switch value := expr.(type) {
	case *ast.ListLit:
		if len(value.Elements) == 0 {
			return &EmptyList{Loc: pos}, nil
		}
	case *ast.MemberExpr:
		enumIdent, ok := value.X.(*ast.Ident)
		if !ok {
			break
		}
		entity, found := table.Find(model.Identifier(enumIdent.Name))
		if !found {
			break
		}
		enum, isEnum := entity.(*model.Enumeration)
		if !isEnum {
			break
		}
		literal, hasLiteral := enum.LiteralByName(model.Identifier(value.Name))
		if !hasLiteral {
			return nil, errors.New("construct",
				fmt.Sprintf("the enumeration %s has no literal %s", enum.Name, value.Name),
				&pos)
		}
		return &DefaultEnumLiteral{Enum: enum, Literal: literal, Loc: pos}, nil
	}

	return nil, errors.New("construct",
		fmt.Sprintf("the handling of this default value for the property %s has not been implemented; only an empty list or an enumeration literal is supported",
			propName),
		&pos)
}

func contains(names []model.Identifier, name model.Identifier) bool {
	for _, candidate := range names {
		if candidate == name {
			return true
		}
	}
	return false
}
