package construct

import (
	"fmt"

	"github.com/veld-lang/veld/compiler/model"
	"github.com/veld-lang/veld/compiler/ontology"
)

// InLinedConstructors maps every class to its flattened constructor body:
// a list of argument assignments with all delegations substituted
type InLinedConstructors struct {
	assignments map[model.Identifier][]*AssignArgument
}

// MustFind returns the flattened constructor body of the class
func (i *InLinedConstructors) MustFind(class *model.Class) []*AssignArgument {
	assignments, ok := i.assignments[class.Name]
	if !ok {
		panic(fmt.Sprintf("no in-lined constructor for the class %s", class.Name))
	}
	return assignments
}

// InLine flattens all the constructor bodies by substituting each super
// constructor call with the already-flattened body of the super class. The
// fold follows the topological order of the ontology, so a super class is
// always flattened before its heirs; it is pure data flow, with no
// re-validation. Every class is flattened exactly once.
func InLine(
	table *model.SymbolTable,
	classOntology *ontology.Ontology,
	constructors *ConstructorTable,
) *InLinedConstructors {
	assignments := make(map[model.Identifier][]*AssignArgument, len(classOntology.Classes))

	for _, class := range classOntology.Classes {
		body := constructors.MustFind(class)

		inLined := make([]*AssignArgument, 0, len(body))
		for _, statement := range body {
			switch s := statement.(type) {
			case *CallSuperConstructor:
				ancestor := table.MustFindClass(s.SuperName)
				ancestorInLined, ok := assignments[ancestor.Name]
				if !ok {
					panic(fmt.Sprintf(
						"expected the constructor of the ancestor %s to have been in-lined before the class %s due to the topological order",
						ancestor.Name, class.Name))
				}
				inLined = append(inLined, ancestorInLined...)
			case *AssignArgument:
				inLined = append(inLined, s)
			}
		}
		assignments[class.Name] = inLined
	}

	return &InLinedConstructors{assignments: assignments}
}
