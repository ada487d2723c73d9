// Package ontology understands the inheritance hierarchy of the classes in
// a symbol table: it sorts the classes topologically, precomputes ancestors
// and descendants, and verifies that members do not conflict across the
// hierarchy.
package ontology

import (
	"fmt"
	"sort"
	"strings"

	"github.com/veld-lang/veld/compiler/errors"
	"github.com/veld-lang/veld/compiler/model"
)

// Ontology is the verified view of the class hierarchy. Classes are
// topologically sorted, antecedents before descendants.
type Ontology struct {
	// Classes in topological order
	Classes []*model.Class

	ancestorsOf   map[model.Identifier][]*model.Class
	descendantsOf map[model.Identifier][]*model.Class
}

// Ancestors returns the ancestors of the class in topological order
func (o *Ontology) Ancestors(class *model.Class) []*model.Class {
	return o.ancestorsOf[class.Name]
}

// Descendants returns all classes that inherit from the class, directly or
// transitively, in topological order
func (o *Ontology) Descendants(class *model.Class) []*model.Class {
	return o.descendantsOf[class.Name]
}

// FromSymbolTable infers the ontology from the symbol table. A cycle in the
// inheritance is fatal and reported alone, since ancestor lists are
// meaningless without a total order; all other problems are accumulated.
func FromSymbolTable(table *model.SymbolTable) (*Ontology, []*errors.CompilerError) {
	if errs := checkInheritancesResolve(table); len(errs) > 0 {
		return nil, errs
	}

	sorted, inCycle := topologicallySort(table)
	if inCycle != nil {
		pos := inCycle.Loc
		return nil, []*errors.CompilerError{errors.NewFatal("ontology",
			fmt.Sprintf("expected no cycles in the inheritance, but the class %s has been observed in a cycle",
				inCycle.Name),
			&pos)}
	}

	ontology := precompute(sorted, table)

	var errs []*errors.CompilerError
	errs = append(errs, checkMemberCollisions(table, ontology)...)
	errs = append(errs, checkRequiredConstructors(table, ontology)...)
	if len(errs) > 0 {
		return nil, errs
	}
	return ontology, nil
}

func checkInheritancesResolve(table *model.SymbolTable) []*errors.CompilerError {
	var errs []*errors.CompilerError
	for _, class := range table.Classes() {
		for _, parentName := range class.Inheritances {
			entity, ok := table.Find(parentName)
			if !ok {
				pos := class.Loc
				errs = append(errs, errors.New("ontology",
					fmt.Sprintf("the class %s inherits from %s, but %s is not defined",
						class.Name, parentName, parentName),
					&pos))
				continue
			}
			if _, isClass := entity.(*model.Class); !isClass {
				pos := class.Loc
				errs = append(errs, errors.New("ontology",
					fmt.Sprintf("the class %s inherits from %s, which is not a class",
						class.Name, parentName),
					&pos))
			}
		}
	}
	return errs
}

// topologicallySort sorts the classes depth-first. The worklist and hence
// the resulting order is keyed on class names, so the order is stable across
// runs regardless of declaration order. If the hierarchy contains a cycle,
// the first class observed twice on the visiting stack is returned.
func topologicallySort(table *model.SymbolTable) ([]*model.Class, *model.Class) {
	classes := table.Classes()
	byName := sortedByName(classes)

	var result []*model.Class
	permanent := make(map[model.Identifier]bool, len(classes))
	temporary := make(map[model.Identifier]bool)

	var inCycle *model.Class

	var visit func(class *model.Class)
	visit = func(class *model.Class) {
		if inCycle != nil || permanent[class.Name] {
			return
		}
		if temporary[class.Name] {
			inCycle = class
			return
		}
		temporary[class.Name] = true

		for _, parentName := range class.Inheritances {
			visit(table.MustFindClass(parentName))
		}

		delete(temporary, class.Name)
		permanent[class.Name] = true
		result = append(result, class)
	}

	for _, class := range byName {
		if inCycle != nil {
			break
		}
		if !permanent[class.Name] {
			visit(class)
		}
	}

	if inCycle != nil {
		return nil, inCycle
	}
	return result, nil
}

func sortedByName(classes []*model.Class) []*model.Class {
	byName := make([]*model.Class, len(classes))
	copy(byName, classes)
	sort.Slice(byName, func(i, j int) bool {
		return byName[i].Name < byName[j].Name
	})
	return byName
}

// precompute derives the ancestor and descendant lists from the
// topologically sorted classes. A class's ancestors are its parents'
// ancestors followed by the parent itself, with the parents considered in
// topological order.
func precompute(sorted []*model.Class, table *model.SymbolTable) *Ontology {
	orderOf := make(map[model.Identifier]int, len(sorted))
	for i, class := range sorted {
		orderOf[class.Name] = i
	}

	ancestorsOf := make(map[model.Identifier][]*model.Class, len(sorted))
	for _, class := range sorted {
		parents := make([]*model.Class, 0, len(class.Inheritances))
		for _, parentName := range class.Inheritances {
			parents = append(parents, table.MustFindClass(parentName))
		}
		sort.Slice(parents, func(i, j int) bool {
			return orderOf[parents[i].Name] < orderOf[parents[j].Name]
		})

		var ancestors []*model.Class
		seen := make(map[model.Identifier]bool)
		for _, parent := range parents {
			for _, ancestor := range ancestorsOf[parent.Name] {
				if !seen[ancestor.Name] {
					seen[ancestor.Name] = true
					ancestors = append(ancestors, ancestor)
				}
			}
			if !seen[parent.Name] {
				seen[parent.Name] = true
				ancestors = append(ancestors, parent)
			}
		}
		ancestorsOf[class.Name] = ancestors
	}

	descendantsOf := make(map[model.Identifier][]*model.Class, len(sorted))
	for _, class := range sorted {
		for _, ancestor := range ancestorsOf[class.Name] {
			descendantsOf[ancestor.Name] = append(descendantsOf[ancestor.Name], class)
		}
	}

	return &Ontology{
		Classes:       sorted,
		ancestorsOf:   ancestorsOf,
		descendantsOf: descendantsOf,
	}
}

// checkMemberCollisions verifies that no class redefines a property or a
// method already defined in one of its ancestors. The constructor is exempt
// since every class may define its own.
func checkMemberCollisions(table *model.SymbolTable, ontology *Ontology) []*errors.CompilerError {
	var errs []*errors.CompilerError

	for _, class := range table.Classes() {
		observedProperties := make(map[model.Identifier]*model.Class)
		observedMethods := make(map[model.Identifier]*model.Class)

		for _, ancestor := range ontology.Ancestors(class) {
			for _, prop := range ancestor.Properties {
				if _, ok := observedProperties[prop.Name]; !ok {
					observedProperties[prop.Name] = ancestor
				}
			}
			for _, method := range ancestor.Methods {
				if method.IsConstructor() {
					continue
				}
				if _, ok := observedMethods[method.Name]; !ok {
					observedMethods[method.Name] = ancestor
				}
			}
		}

		for _, prop := range class.Properties {
			if offender, ok := observedProperties[prop.Name]; ok {
				pos := prop.Loc
				errs = append(errs, errors.New("ontology",
					fmt.Sprintf("the property %s has already been defined in the ancestor class %s",
						prop.Name, offender.Name),
					&pos))
			}
		}
		for _, method := range class.Methods {
			if method.IsConstructor() {
				continue
			}
			if offender, ok := observedMethods[method.Name]; ok {
				pos := method.Loc
				errs = append(errs, errors.New("ontology",
					fmt.Sprintf("the method %s has already been defined in the ancestor class %s",
						method.Name, offender.Name),
					&pos))
			}
		}
	}
	return errs
}

// checkRequiredConstructors verifies that a class without a constructor has
// no ancestor whose constructor takes arguments beyond the receiver. Such an
// ancestor's arguments could never be supplied.
func checkRequiredConstructors(table *model.SymbolTable, ontology *Ontology) []*errors.CompilerError {
	var errs []*errors.CompilerError

	for _, class := range table.Classes() {
		if class.Constructor() != nil {
			continue
		}
		for _, ancestor := range ontology.Ancestors(class) {
			ancestorInit := ancestor.Constructor()
			if ancestorInit == nil || len(ancestorInit.Arguments) <= 1 {
				continue
			}

			// skip the receiver, only the real arguments matter
			names := make([]string, 0, len(ancestorInit.Arguments)-1)
			for _, arg := range ancestorInit.Arguments[1:] {
				names = append(names, string(arg.Name))
			}
			pos := class.Loc
			errs = append(errs, errors.New("ontology",
				fmt.Sprintf("the class %s does not specify a constructor, but the ancestor class %s specifies a constructor with arguments: %s",
					class.Name, ancestor.Name, strings.Join(names, ", ")),
				&pos))
		}
	}
	return errs
}
