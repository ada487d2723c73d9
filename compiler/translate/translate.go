// Package translate turns the syntax-level symbol table into the final
// intermediate representation. The translation runs in two passes: the
// first builds every entity and leaves type references as named
// placeholders, the second resolves the placeholders in place once every
// entity has an identity. Inherited members are stacked onto their heirs,
// antecedents first, and constructors are flattened with the in-lined
// assignments.
package translate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/veld-lang/veld/compiler/construct"
	"github.com/veld-lang/veld/compiler/errors"
	"github.com/veld-lang/veld/compiler/ir"
	"github.com/veld-lang/veld/compiler/model"
	"github.com/veld-lang/veld/compiler/ontology"
)

// reservedTypeNames can not be used for entities since the generated code
// claims them
var reservedTypeNames = map[string]bool{
	"visitor": true, "transformer": true, "verification": true, "jsonization": true,
}

// reservedMemberNames can not be used for properties and methods since the
// generated code claims them
var reservedMemberNames = map[model.Identifier]bool{
	"model_type": true, "descend": true, "accept": true, "transform": true, "visit": true,
}

type translator struct {
	table   *model.SymbolTable
	graph   *ontology.Ontology
	inLined *construct.InLinedConstructors

	registry map[model.Identifier]*ir.EntityRef
	firstUse map[model.Identifier]errors.Position

	// own members per class, before stacking
	ownProperties    map[model.Identifier][]*ir.Property
	ownMethods       map[model.Identifier][]*ir.Method
	ownInvariants    map[model.Identifier][]*ir.Invariant
	ownCtorContracts map[model.Identifier]ir.Contracts

	errs []*errors.CompilerError
}

// Translate produces the final symbol table from the syntax-level one. The
// ontology and the in-lined constructors must come from the same table. On
// failure the errors are accumulated and the symbol table is nil.
func Translate(
	table *model.SymbolTable,
	graph *ontology.Ontology,
	inLined *construct.InLinedConstructors,
) (*ir.SymbolTable, []*errors.CompilerError) {
	t := &translator{
		table:            table,
		graph:            graph,
		inLined:          inLined,
		registry:         make(map[model.Identifier]*ir.EntityRef),
		firstUse:         make(map[model.Identifier]errors.Position),
		ownProperties:    make(map[model.Identifier][]*ir.Property),
		ownMethods:       make(map[model.Identifier][]*ir.Method),
		ownInvariants:    make(map[model.Identifier][]*ir.Invariant),
		ownCtorContracts: make(map[model.Identifier]ir.Contracts),
	}

	t.checkTypeNames()

	serializations := t.resolveSerializations()

	entitiesByName := make(map[model.Identifier]ir.Entity, len(table.Entities()))

	for _, enum := range table.Enumerations() {
		entitiesByName[enum.Name] = t.translateEnumeration(enum)
	}

	// antecedents before descendants, so that parents are always built
	// when a class refers to them
	for _, class := range t.graph.Classes {
		entitiesByName[class.Name] = t.translateClass(
			class, entitiesByName, serializations[class.Name])
	}

	t.resolveReferences(entitiesByName)

	if len(t.errs) > 0 {
		return nil, t.errs
	}

	entities := make([]ir.Entity, 0, len(table.Entities()))
	for _, entity := range table.Entities() {
		entities = append(entities, entitiesByName[entity.EntityName()])
	}
	return ir.NewSymbolTable(entities), nil
}

// refFor returns the shared placeholder cell for the name, creating it on
// first use and remembering the position for dangling-reference reports
func (t *translator) refFor(
	name model.Identifier, pos errors.Position,
) *ir.EntityRef {
	if ref, ok := t.registry[name]; ok {
		return ref
	}
	ref := &ir.EntityRef{Name: name}
	t.registry[name] = ref
	t.firstUse[name] = pos
	return ref
}

// resolveReferences is the second pass: every placeholder must now point to
// a built entity
func (t *translator) resolveReferences(entitiesByName map[model.Identifier]ir.Entity) {
	names := make([]model.Identifier, 0, len(t.registry))
	for name := range t.registry {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	for _, name := range names {
		entity, ok := entitiesByName[name]
		if !ok {
			pos := t.firstUse[name]
			t.errs = append(t.errs, errors.New("translate",
				fmt.Sprintf("the type %s has not been defined in the document", name),
				&pos))
			continue
		}
		t.registry[name].Target = entity
	}
}

func (t *translator) checkTypeNames() {
	for _, entity := range t.table.Entities() {
		name := entity.EntityName()
		if reservedTypeNames[strings.ToLower(string(name))] {
			pos := entity.Pos()
			t.errs = append(t.errs, errors.New("translate",
				fmt.Sprintf("the name %s is reserved for the generated code and can not be used for a type",
					name),
				&pos))
		}
	}
}

func (t *translator) translateEnumeration(enum *model.Enumeration) *ir.Enumeration {
	literals := make([]*ir.EnumerationLiteral, len(enum.Literals))
	for i, literal := range enum.Literals {
		literals[i] = &ir.EnumerationLiteral{
			Name:        literal.Name,
			Value:       literal.Value,
			Description: literal.Description,
		}
	}
	out := &ir.Enumeration{
		Name:        enum.Name,
		Literals:    literals,
		Description: enum.Description,
	}
	out.IndexLiterals()
	return out
}

func (t *translator) translateClass(
	class *model.Class,
	entitiesByName map[model.Identifier]ir.Entity,
	withModelType bool,
) *ir.Class {
	t.translateOwnMembers(class)

	out := &ir.Class{
		Name:                   class.Name,
		Abstract:               class.Abstract,
		ImplementationSpecific: class.ImplementationSpecific,
		Serialization:          &ir.Serialization{WithModelType: withModelType},
		Description:            class.Description,
	}

	for _, parentName := range class.Inheritances {
		parent, ok := entitiesByName[parentName].(*ir.Class)
		if !ok {
			panic("expected the parent " + string(parentName) + " to be built before " + string(class.Name))
		}
		out.Inheritances = append(out.Inheritances, parent)
	}

	// stack the inherited members, antecedents first, then the own ones
	lineage := append(
		append([]*model.Class{}, t.graph.Ancestors(class)...), class)
	for _, antecedent := range lineage {
		out.Properties = append(out.Properties, t.ownProperties[antecedent.Name]...)
		out.Methods = append(out.Methods, t.ownMethods[antecedent.Name]...)
		out.Invariants = append(out.Invariants, t.ownInvariants[antecedent.Name]...)
	}

	out.Constructor = t.translateConstructor(class, lineage)
	out.IndexMembers()

	t.checkInitialization(class, out)

	return out
}

// translateOwnMembers converts the members the class itself declares; the
// stacking over the lineage happens afterwards
func (t *translator) translateOwnMembers(class *model.Class) {
	for _, prop := range class.Properties {
		if reservedMemberNames[prop.Name] {
			pos := prop.Loc
			t.errs = append(t.errs, errors.New("translate",
				fmt.Sprintf("the name %s is reserved for the generated code and can not be used for a property",
					prop.Name),
				&pos))
			continue
		}
		annotation, readOnly, ok := t.translatePropertyAnnotation(prop.TypeAnnotation)
		if !ok {
			continue
		}
		t.ownProperties[class.Name] = append(t.ownProperties[class.Name], &ir.Property{
			Name:           prop.Name,
			TypeAnnotation: annotation,
			ReadOnly:       readOnly,
			Description:    prop.Description,
			SpecifiedIn:    class.Name,
		})
	}

	for _, method := range class.Methods {
		if method.IsConstructor() {
			t.ownCtorContracts[class.Name] = t.translateContracts(method.Contracts)
			continue
		}
		if reservedMemberNames[method.Name] {
			pos := method.Loc
			t.errs = append(t.errs, errors.New("translate",
				fmt.Sprintf("the name %s is reserved for the generated code and can not be used for a method",
					method.Name),
				&pos))
			continue
		}
		arguments, ok := t.translateArguments(method)
		if !ok {
			continue
		}
		var returns ir.TypeAnnotation
		if method.Returns != nil {
			returns, ok = t.translateAnnotation(method.Returns)
			if !ok {
				continue
			}
		}
		t.ownMethods[class.Name] = append(t.ownMethods[class.Name], &ir.Method{
			Name:                   method.Name,
			ImplementationSpecific: method.ImplementationSpecific,
			Arguments:              arguments,
			Returns:                returns,
			Description:            method.Description,
			Contracts:              t.translateContracts(method.Contracts),
			Body:                   method.Body,
		})
	}

	for _, invariant := range class.Invariants {
		t.ownInvariants[class.Name] = append(t.ownInvariants[class.Name], &ir.Invariant{
			Description: invariant.Description,
			Body:        invariant.Body,
			SpecifiedIn: class.Name,
		})
	}
}

// translateConstructor flattens the constructor: the arguments come from
// the class's own declaration, the contracts are stacked over the lineage
// and the statements are the in-lined assignments
func (t *translator) translateConstructor(
	class *model.Class, lineage []*model.Class,
) *ir.Constructor {
	out := &ir.Constructor{
		Statements: t.inLined.MustFind(class),
	}

	for _, antecedent := range lineage {
		contracts := t.ownCtorContracts[antecedent.Name]
		out.Contracts.Preconditions = append(
			out.Contracts.Preconditions, contracts.Preconditions...)
		out.Contracts.Snapshots = append(
			out.Contracts.Snapshots, contracts.Snapshots...)
		out.Contracts.Postconditions = append(
			out.Contracts.Postconditions, contracts.Postconditions...)
	}

	ctor := class.Constructor()
	if ctor == nil {
		// implicit constructor with no arguments; the ontology has already
		// verified that no ancestor requires one
		for _, antecedent := range lineage[:len(lineage)-1] {
			if inherited := antecedent.Constructor(); inherited != nil &&
				inherited.ImplementationSpecific {
				out.ImplementationSpecific = true
			}
		}
		return out
	}

	out.ImplementationSpecific = ctor.ImplementationSpecific
	out.Description = ctor.Description
	out.Arguments, _ = t.translateArguments(ctor)
	return out
}

func (t *translator) translateContracts(contracts model.Contracts) ir.Contracts {
	var out ir.Contracts
	for _, pre := range contracts.Preconditions {
		out.Preconditions = append(out.Preconditions, &ir.Contract{
			Args:        pre.Args,
			Description: pre.Description,
			Body:        pre.Body,
		})
	}
	for _, snap := range contracts.Snapshots {
		out.Snapshots = append(out.Snapshots, &ir.Snapshot{
			Args: snap.Args,
			Name: snap.Name,
			Body: snap.Body,
		})
	}
	for _, post := range contracts.Postconditions {
		out.Postconditions = append(out.Postconditions, &ir.Contract{
			Args:        post.Args,
			Description: post.Description,
			Body:        post.Body,
		})
	}
	return out
}

// checkInitialization verifies that the in-lined constructor assigns every
// non-optional property exactly once and every optional property at most
// once. Implementation-specific constructors initialize their properties in
// hand-written code, so they are exempt.
func (t *translator) checkInitialization(class *model.Class, out *ir.Class) {
	if class.ImplementationSpecific || out.Constructor.ImplementationSpecific {
		return
	}

	assigned := make(map[model.Identifier]int)
	for _, stmt := range out.Constructor.Statements {
		assigned[stmt.Name]++
	}

	pos := class.Loc
	for _, prop := range out.Properties {
		count := assigned[prop.Name]
		if ir.IsOptional(prop.TypeAnnotation) {
			if count > 1 {
				t.errs = append(t.errs, errors.New("translate",
					fmt.Sprintf("expected the optional property %s of the class %s to be initialized at most once in the constructor, but it is initialized %d times",
						prop.Name, class.Name, count),
					&pos))
			}
			continue
		}
		switch {
		case count == 0:
			t.errs = append(t.errs, errors.New("translate",
				fmt.Sprintf("expected the property %s of the class %s to be initialized in the constructor, but it never is",
					prop.Name, class.Name),
				&pos))
		case count > 1:
			t.errs = append(t.errs, errors.New("translate",
				fmt.Sprintf("expected the property %s of the class %s to be initialized exactly once in the constructor, but it is initialized %d times",
					prop.Name, class.Name, count),
				&pos))
		}
	}
}
