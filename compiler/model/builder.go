package model

import (
	"fmt"

	"github.com/veld-lang/veld/compiler/ast"
	"github.com/veld-lang/veld/compiler/errors"
	"github.com/veld-lang/veld/compiler/exprtree"
)

// useWhitelist maps each importable name to the module it must come from.
// Anything outside this table is rejected up front.
var useWhitelist = map[string]string{
	"List":     "types",
	"Optional": "types",
	"Set":      "types",
	"Mapping":  "types",
	"Final":    "types",

	"abstract":                "marker",
	"implementation_specific": "marker",
	"serialization":           "marker",

	"require":   "contracts",
	"ensure":    "contracts",
	"snapshot":  "contracts",
	"invariant": "contracts",
}

// Build validates the syntax tree and produces the syntax-level symbol
// table. Definitions are processed independently so that one broken
// definition does not hide problems in the others; the build fails if any
// definition failed.
func Build(doc *ast.Document) (*SymbolTable, []*errors.CompilerError) {
	var errs []*errors.CompilerError

	for _, use := range doc.Uses {
		if err := checkUse(use); err != nil {
			errs = append(errs, err)
		}
	}

	var entities []Entity
	seen := make(map[Identifier]errors.Position)

	for _, def := range doc.Defs {
		var entity Entity
		var defErrs []*errors.CompilerError

		switch d := def.(type) {
		case *ast.EnumDef:
			entity, defErrs = buildEnumeration(d)
		case *ast.ClassDef:
			entity, defErrs = buildClass(d)
		}
		if len(defErrs) > 0 {
			errs = append(errs, defErrs...)
			continue
		}

		name := entity.EntityName()
		if _, dup := seen[name]; dup {
			pos := def.Pos()
			errs = append(errs, errors.New("model",
				fmt.Sprintf("the name %s is defined more than once", name), &pos))
			continue
		}
		seen[name] = def.Pos()
		entities = append(entities, entity)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return NewSymbolTable(entities), nil
}

func checkUse(use *ast.UseDirective) *errors.CompilerError {
	module, known := useWhitelist[use.Name]
	if !known {
		return errors.New("model",
			fmt.Sprintf("unexpected import of the name %q", use.Name), &use.Loc)
	}
	if module != use.Module {
		return errors.New("model",
			fmt.Sprintf("the name %q must be imported from the module %q, not %q",
				use.Name, module, use.Module),
			&use.Loc)
	}
	return nil
}

func buildEnumeration(def *ast.EnumDef) (*Enumeration, []*errors.CompilerError) {
	var errs []*errors.CompilerError

	description, err := ParseDescription(def.Doc, def.Loc)
	if err != nil {
		errs = append(errs, err)
	}

	var literals []*EnumerationLiteral
	seen := make(map[Identifier]bool)
	for _, litDef := range def.Literals {
		name := Identifier(litDef.Name)
		if seen[name] {
			errs = append(errs, errors.New("model",
				fmt.Sprintf("the literal %s appears more than once in the enumeration %s",
					name, def.Name),
				&litDef.Loc))
			continue
		}
		seen[name] = true

		litDescription, err := ParseDescription(litDef.Doc, litDef.Loc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		literals = append(literals, &EnumerationLiteral{
			Name:        name,
			Value:       litDef.Value,
			Description: litDescription,
			Loc:         litDef.Loc,
		})
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return NewEnumeration(Identifier(def.Name), literals, description, def.Loc), nil
}

func buildClass(def *ast.ClassDef) (*Class, []*errors.CompilerError) {
	var errs []*errors.CompilerError

	if def.Abstract && def.ImplementationSpecific {
		errs = append(errs, errors.New("model",
			fmt.Sprintf("the class %s cannot be both abstract and implementation-specific",
				def.Name),
			&def.Loc))
	}

	description, err := ParseDescription(def.Doc, def.Loc)
	if err != nil {
		errs = append(errs, err)
	}

	var inheritances []Identifier
	seenParents := make(map[Identifier]bool)
	for _, parent := range def.Extends {
		name := Identifier(parent.Name)
		if seenParents[name] {
			errs = append(errs, errors.New("model",
				fmt.Sprintf("the class %s extends %s more than once", def.Name, name),
				&parent.Loc))
			continue
		}
		seenParents[name] = true
		inheritances = append(inheritances, name)
	}

	properties, propErrs := buildProperties(def)
	errs = append(errs, propErrs...)

	methods, methodErrs := buildMethods(def)
	errs = append(errs, methodErrs...)

	var invariants []*Invariant
	for _, invDef := range def.Invariants {
		invariant, invErrs := buildInvariant(invDef)
		if len(invErrs) > 0 {
			errs = append(errs, invErrs...)
			continue
		}
		invariants = append(invariants, invariant)
	}

	var serialization *Serialization
	if def.WithModelType {
		serialization = &Serialization{WithModelType: true}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return NewClass(
		Identifier(def.Name),
		def.Abstract,
		def.ImplementationSpecific,
		inheritances,
		properties,
		methods,
		invariants,
		serialization,
		description,
		def.Loc,
	), nil
}

func buildProperties(def *ast.ClassDef) ([]*Property, []*errors.CompilerError) {
	var errs []*errors.CompilerError
	var properties []*Property
	seen := make(map[Identifier]bool)

	for _, propDef := range def.Properties {
		name := Identifier(propDef.Name)
		if seen[name] {
			errs = append(errs, errors.New("model",
				fmt.Sprintf("the property %s appears more than once in the class %s",
					name, def.Name),
				&propDef.Loc))
			continue
		}
		seen[name] = true

		annotation, err := buildTypeAnnotation(propDef.Type, true)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		propDescription, err := ParseDescription(propDef.Doc, propDef.Loc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		properties = append(properties, &Property{
			Name:           name,
			TypeAnnotation: annotation,
			Description:    propDescription,
			Loc:            propDef.Loc,
		})
	}
	return properties, errs
}

// buildTypeAnnotation converts a syntax type expression. Final may only
// wrap the outermost annotation of a property, never a nested position and
// never an argument or return type.
func buildTypeAnnotation(expr ast.TypeExpr, finalAllowed bool) (TypeAnnotation, *errors.CompilerError) {
	switch t := expr.(type) {
	case *ast.AtomicType:
		if t.Name == "Final" {
			return nil, errors.New("model",
				"Final requires exactly one subscript", &t.Loc)
		}
		return &AtomicTypeAnnotation{Identifier: Identifier(t.Name), Loc: t.Loc}, nil

	case *ast.SubscriptedType:
		if t.Name == "Final" && !finalAllowed {
			return nil, errors.New("model",
				"Final may only wrap the type of a property directly, it must not be nested",
				&t.Loc)
		}

		subscripts := make([]TypeAnnotation, 0, len(t.Subscripts))
		for _, subExpr := range t.Subscripts {
			sub, err := buildTypeAnnotation(subExpr, false)
			if err != nil {
				return nil, err
			}
			subscripts = append(subscripts, sub)
		}
		return &SubscriptedTypeAnnotation{
			Identifier: Identifier(t.Name),
			Subscripts: subscripts,
			Loc:        t.Loc,
		}, nil

	default:
		pos := expr.Pos()
		return nil, errors.New("model", "unexpected type annotation shape", &pos)
	}
}

func buildMethods(def *ast.ClassDef) ([]*Method, []*errors.CompilerError) {
	var errs []*errors.CompilerError
	var methods []*Method
	seen := make(map[Identifier]bool)

	for _, methodDef := range def.Methods {
		name := Identifier(methodDef.Name)
		if seen[name] {
			errs = append(errs, errors.New("model",
				fmt.Sprintf("the method %s appears more than once in the class %s",
					name, def.Name),
				&methodDef.Loc))
			continue
		}
		seen[name] = true

		method, methodErrs := buildMethod(methodDef)
		if len(methodErrs) > 0 {
			errs = append(errs, methodErrs...)
			continue
		}
		methods = append(methods, method)
	}
	return methods, errs
}

func buildMethod(def *ast.MethodDef) (*Method, []*errors.CompilerError) {
	var errs []*errors.CompilerError
	name := Identifier(def.Name)

	arguments, argErrs := buildArguments(def)
	errs = append(errs, argErrs...)

	var returns TypeAnnotation
	if def.Returns != nil {
		annotation, err := buildTypeAnnotation(def.Returns, false)
		if err != nil {
			errs = append(errs, err)
		} else {
			returns = annotation
		}
	}

	if name == ConstructorName && returns != nil {
		errs = append(errs, errors.New("model",
			"the constructor must not declare a return type", &def.Loc))
	}

	description, err := ParseDescription(def.Doc, def.Loc)
	if err != nil {
		errs = append(errs, err)
	}

	contracts, contractErrs := buildContracts(def, arguments)
	errs = append(errs, contractErrs...)

	body := def.Body
	if def.ImplementationSpecific {
		if !bodyIsEmpty(def.Body) {
			errs = append(errs, errors.New("model",
				fmt.Sprintf("the implementation-specific method %s must have an empty body", name),
				&def.Loc))
		}
		body = nil
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return NewMethod(
		name, def.ImplementationSpecific, arguments, returns,
		description, contracts, body, def.Loc,
	), nil
}

// bodyIsEmpty reports whether the body contains nothing but pass statements
func bodyIsEmpty(body []ast.Stmt) bool {
	for _, stmt := range body {
		if _, ok := stmt.(*ast.PassStmt); !ok {
			return false
		}
	}
	return true
}

func buildArguments(def *ast.MethodDef) ([]*Argument, []*errors.CompilerError) {
	var errs []*errors.CompilerError

	if len(def.Params) == 0 || def.Params[0].Name != "self" || def.Params[0].Type != nil {
		errs = append(errs, errors.New("model",
			fmt.Sprintf("the method %s must take an unannotated receiver 'self' as the first parameter",
				def.Name),
			&def.Loc))
		return nil, errs
	}

	arguments := []*Argument{{
		Name:           "self",
		TypeAnnotation: &SelfTypeAnnotation{},
		Loc:            def.Params[0].Loc,
	}}
	seen := map[Identifier]bool{"self": true}

	for _, param := range def.Params[1:] {
		name := Identifier(param.Name)
		if seen[name] {
			errs = append(errs, errors.New("model",
				fmt.Sprintf("the parameter %s appears more than once in the method %s",
					name, def.Name),
				&param.Loc))
			continue
		}
		seen[name] = true

		if param.Type == nil {
			errs = append(errs, errors.New("model",
				fmt.Sprintf("the parameter %s of the method %s lacks a type annotation",
					name, def.Name),
				&param.Loc))
			continue
		}
		annotation, err := buildTypeAnnotation(param.Type, false)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		var deflt *Default
		if param.NullDefault {
			deflt = &Default{Loc: param.Loc}
		}
		arguments = append(arguments, &Argument{
			Name:           name,
			TypeAnnotation: annotation,
			Default:        deflt,
			Loc:            param.Loc,
		})
	}
	return arguments, errs
}

func buildContracts(def *ast.MethodDef, arguments []*Argument) (Contracts, []*errors.CompilerError) {
	var errs []*errors.CompilerError
	contracts := Contracts{}

	argSet := make(map[Identifier]bool, len(arguments))
	for _, arg := range arguments {
		argSet[arg.Name] = true
	}

	for _, contractDef := range def.Requires {
		contract, err := buildContract(contractDef)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, arg := range contract.Args {
			if !argSet[arg] {
				errs = append(errs, errors.New("model",
					fmt.Sprintf("the argument %s of the precondition is not a parameter of the method %s",
						arg, def.Name),
					&contract.Loc))
			}
		}
		contracts.Preconditions = append(contracts.Preconditions, contract)
	}

	for _, snapDef := range def.Snapshots {
		body, err := exprtree.Transform(snapDef.Capture)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		snapshot := &Snapshot{
			Args: identifiers(snapDef.Params),
			Name: Identifier(snapDef.Name),
			Body: body,
			Loc:  snapDef.Loc,
		}
		for _, arg := range snapshot.Args {
			if !argSet[arg] {
				errs = append(errs, errors.New("model",
					fmt.Sprintf("the argument %s of the snapshot is not a parameter of the method %s",
						arg, def.Name),
					&snapshot.Loc))
			}
		}
		contracts.Snapshots = append(contracts.Snapshots, snapshot)
	}

	hasSnapshots := len(contracts.Snapshots) > 0
	for _, contractDef := range def.Ensures {
		contract, err := buildContract(contractDef)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, arg := range contract.Args {
			switch {
			case arg == "OLD":
				if !hasSnapshots {
					errs = append(errs, errors.New("model",
						fmt.Sprintf("the postcondition of the method %s refers to OLD, but no snapshot is defined",
							def.Name),
						&contract.Loc))
				}
			case arg == "result":
				// always available in postconditions
			case !argSet[arg]:
				errs = append(errs, errors.New("model",
					fmt.Sprintf("the argument %s of the postcondition is not a parameter of the method %s",
						arg, def.Name),
					&contract.Loc))
			}
		}
		contracts.Postconditions = append(contracts.Postconditions, contract)
	}

	return contracts, errs
}

func buildContract(def *ast.ContractDef) (*Contract, *errors.CompilerError) {
	body, err := exprtree.Transform(def.Condition)
	if err != nil {
		return nil, err
	}
	return &Contract{
		Args:        identifiers(def.Params),
		Description: def.Text,
		Body:        body,
		Loc:         def.Loc,
	}, nil
}

func buildInvariant(def *ast.InvariantDef) (*Invariant, []*errors.CompilerError) {
	var errs []*errors.CompilerError

	if len(def.Params) != 1 || def.Params[0] != "self" {
		errs = append(errs, errors.New("model",
			"an invariant condition must take exactly the parameter 'self'", &def.Loc))
	}
	if def.Text == "" {
		errs = append(errs, errors.New("model",
			"an invariant requires a description", &def.Loc))
	}

	body, err := exprtree.Transform(def.Condition)
	if err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return &Invariant{
		Args:        identifiers(def.Params),
		Description: def.Text,
		Body:        body,
		Loc:         def.Loc,
	}, nil
}

func identifiers(names []string) []Identifier {
	result := make([]Identifier, len(names))
	for i, name := range names {
		result[i] = Identifier(name)
	}
	return result
}
