package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veld-lang/veld/compiler/construct"
	"github.com/veld-lang/veld/compiler/errors"
	"github.com/veld-lang/veld/compiler/exprtree"
	"github.com/veld-lang/veld/compiler/ir"
	"github.com/veld-lang/veld/compiler/lexer"
	"github.com/veld-lang/veld/compiler/model"
	"github.com/veld-lang/veld/compiler/ontology"
	"github.com/veld-lang/veld/compiler/parser"
)

func translateSource(t *testing.T, source string) (*ir.SymbolTable, []*errors.CompilerError) {
	t.Helper()
	lx := lexer.New(source)
	tokens, lexErrs := lx.ScanTokens()
	require.Empty(t, lexErrs)
	doc, parseErrs := parser.New(tokens).Parse()
	require.Empty(t, parseErrs)
	table, buildErrs := model.Build(doc)
	require.Empty(t, buildErrs)
	graph, ontErrs := ontology.FromSymbolTable(table)
	require.Empty(t, ontErrs)
	constructors, err := construct.UnderstandAll(table)
	require.Nil(t, err)
	inLined := construct.InLine(table, graph, constructors)
	return Translate(table, graph, inLined)
}

func mustTranslate(t *testing.T, source string) *ir.SymbolTable {
	t.Helper()
	table, errs := translateSource(t, source)
	require.Empty(t, errs)
	require.NotNil(t, table)
	return table
}

func messages(errs []*errors.CompilerError) []string {
	result := make([]string, len(errs))
	for i, err := range errs {
		result[i] = err.Message
	}
	return result
}

func TestEnumerationIsTranslated(t *testing.T) {
	table := mustTranslate(t, `/// Kind of a model element.
enum ModellingKind {
    /// Template of a model element.
    TEMPLATE = "Template"
    INSTANCE = "Instance"
}`)

	entity, ok := table.Find("ModellingKind")
	require.True(t, ok)
	enum, ok := entity.(*ir.Enumeration)
	require.True(t, ok)

	assert.Equal(t, "Kind of a model element.", enum.Description.Summary)
	require.Len(t, enum.Literals, 2)
	assert.Equal(t, "Template", enum.Literals[0].Value)

	literal, ok := enum.LiteralByName("INSTANCE")
	require.True(t, ok)
	assert.Equal(t, "Instance", literal.Value)
}

func TestForwardReferenceIsResolved(t *testing.T) {
	table := mustTranslate(t, `use List from types

class Environment {
    submodels: List[Submodel]

    fn init(self, submodels: List[Submodel]) {
        self.submodels = submodels
    }
}

class Submodel {
    id: str

    fn init(self, id: str) {
        self.id = id
    }
}`)

	environment := table.MustFindClass("Environment")
	list, ok := environment.Properties[0].TypeAnnotation.(*ir.ListTypeAnnotation)
	require.True(t, ok)
	our, ok := list.Items.(*ir.OurTypeAnnotation)
	require.True(t, ok)

	require.NotNil(t, our.Ref.Target)
	assert.Same(t, table.MustFindClass("Submodel"), our.Ref.Target)
}

func TestReferencesToTheSameNameShareOneCell(t *testing.T) {
	table := mustTranslate(t, `use Optional from types

class Wrapper {
    first: Submodel
    second: Optional[Submodel]

    fn init(self, first: Submodel, second: Optional[Submodel] = null) {
        self.first = first
        self.second = second
    }
}

class Submodel {
    fn init(self) { pass }
}`)

	wrapper := table.MustFindClass("Wrapper")
	first := wrapper.Properties[0].TypeAnnotation.(*ir.OurTypeAnnotation)
	second := wrapper.Properties[1].TypeAnnotation.(*ir.OptionalTypeAnnotation).
		Value.(*ir.OurTypeAnnotation)

	assert.Same(t, first.Ref, second.Ref)
}

func TestDanglingReferenceIsReported(t *testing.T) {
	_, errs := translateSource(t, `class Environment {
    submodel: Submodel

    fn init(self, submodel: Submodel) {
        self.submodel = submodel
    }
}`)

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "the type Submodel has not been defined")
}

func TestInheritedMembersAreStackedAntecedentsFirst(t *testing.T) {
	table := mustTranslate(t, `use Optional from types

@abstract
@invariant((self) => self.id_short != null, "ID-short must be set.")
class Referable {
    id_short: Optional[str]

    fn init(self, id_short: Optional[str] = null) {
        self.id_short = id_short
    }
}

class Property extends Referable {
    value: Optional[str]

    fn init(self, id_short: Optional[str] = null, value: Optional[str] = null) {
        Referable.init(self, id_short)
        self.value = value
    }
}`)

	property := table.MustFindClass("Property")

	require.Len(t, property.Properties, 2)
	assert.Equal(t, model.Identifier("id_short"), property.Properties[0].Name)
	assert.Equal(t, model.Identifier("Referable"), property.Properties[0].SpecifiedIn)
	assert.Equal(t, model.Identifier("value"), property.Properties[1].Name)
	assert.Equal(t, model.Identifier("Property"), property.Properties[1].SpecifiedIn)

	// the inherited property is shared with the antecedent
	referable := table.MustFindClass("Referable")
	assert.Same(t, referable.Properties[0], property.Properties[0])

	require.Len(t, property.Invariants, 1)
	assert.Equal(t, model.Identifier("Referable"), property.Invariants[0].SpecifiedIn)

	require.Len(t, property.Constructor.Statements, 2)
	assert.Equal(t, model.Identifier("id_short"), property.Constructor.Statements[0].Name)
	assert.Equal(t, model.Identifier("value"), property.Constructor.Statements[1].Name)
}

func TestFinalPropertyBecomesReadOnly(t *testing.T) {
	table := mustTranslate(t, `use Final from types

class Key {
    value: Final[str]

    fn init(self, value: str) {
        self.value = value
    }
}`)

	key := table.MustFindClass("Key")
	prop, ok := key.PropertyByName("value")
	require.True(t, ok)
	assert.True(t, prop.ReadOnly)

	primitive, ok := prop.TypeAnnotation.(*ir.PrimitiveTypeAnnotation)
	require.True(t, ok)
	assert.Equal(t, ir.Str, primitive.Kind)
}

func TestSetAndMappingAreRejected(t *testing.T) {
	_, errs := translateSource(t, `use Set from types
use Mapping from types

class Registry {
    tags: Set[str]
    index: Mapping[str, int]

    fn init(self, tags: Set[str], index: Mapping[str, int]) {
        self.tags = tags
        self.index = index
    }
}`)

	require.NotEmpty(t, errs)
	assert.Contains(t, messages(errs),
		"the type Set is not supported in the intermediate representation")
	assert.Contains(t, messages(errs),
		"the type Mapping is not supported in the intermediate representation")
}

func TestWrongArityIsRejected(t *testing.T) {
	_, errs := translateSource(t, `use Mapping from types

class Registry {
    index: Mapping[str]

    fn init(self, index: Mapping[str]) {
        self.index = index
    }
}`)

	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message,
		"expected exactly 2 subscript(s) for Mapping, but got 1")
}

func TestReservedTypeNameIsRejected(t *testing.T) {
	_, errs := translateSource(t, `class Visitor {
    fn init(self) { pass }
}`)

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message,
		"the name Visitor is reserved for the generated code")
}

func TestReservedMemberNamesAreRejected(t *testing.T) {
	_, errs := translateSource(t, `class Element {
    model_type: str

    fn init(self, model_type: str) {
        self.model_type = model_type
    }

    fn descend(self) {
        pass
    }
}`)

	require.NotEmpty(t, errs)
	assert.Contains(t, messages(errs),
		"the name model_type is reserved for the generated code and can not be used for a property")
	assert.Contains(t, messages(errs),
		"the name descend is reserved for the generated code and can not be used for a method")
}

func TestUninitializedPropertyIsReported(t *testing.T) {
	_, errs := translateSource(t, `class Submodel {
    id: str
    kind: str

    fn init(self, id: str) {
        self.id = id
    }
}`)

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message,
		"expected the property kind of the class Submodel to be initialized in the constructor, but it never is")
}

func TestOptionalPropertyMayStayUninitialized(t *testing.T) {
	table := mustTranslate(t, `use Optional from types

class Submodel {
    id: str
    category: Optional[str]

    fn init(self, id: str) {
        self.id = id
    }
}`)

	submodel := table.MustFindClass("Submodel")
	prop, ok := submodel.PropertyByName("category")
	require.True(t, ok)
	assert.True(t, ir.IsOptional(prop.TypeAnnotation))
}

func TestImplementationSpecificConstructorSkipsInitializationCheck(t *testing.T) {
	table := mustTranslate(t, `class Submodel {
    id: str

    @implementation_specific
    fn init(self, id: str) {
        pass
    }
}`)

	submodel := table.MustFindClass("Submodel")
	assert.True(t, submodel.Constructor.ImplementationSpecific)
	assert.Empty(t, submodel.Constructor.Statements)
}

func TestSerializationIsInherited(t *testing.T) {
	table := mustTranslate(t, `@abstract
@serialization(with_model_type = true)
class HasSemantics {
    fn init(self) { pass }
}

class Extension extends HasSemantics {
    fn init(self) {
        HasSemantics.init(self)
    }
}`)

	extension := table.MustFindClass("Extension")
	require.NotNil(t, extension.Serialization)
	assert.True(t, extension.Serialization.WithModelType)
}

func TestSerializationDefaultsToFalse(t *testing.T) {
	table := mustTranslate(t, `class Plain {
    fn init(self) { pass }
}`)

	plain := table.MustFindClass("Plain")
	require.NotNil(t, plain.Serialization)
	assert.False(t, plain.Serialization.WithModelType)
}

func TestConflictingSerializationIsReported(t *testing.T) {
	_, errs := translateSource(t, `@abstract
@serialization(with_model_type = true)
class HasSemantics {
    fn init(self) { pass }
}

@serialization(with_model_type = false)
class Extension extends HasSemantics {
    fn init(self) {
        HasSemantics.init(self)
    }
}`)

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message,
		"the serialization setting with_model_type of the class Extension conflicts with the one inherited from HasSemantics")
}

func TestConstructorContractsAreStacked(t *testing.T) {
	table := mustTranslate(t, `@abstract
class Referable {
    id_short: str

    @require((id_short) => len(id_short) > 0, "ID-short must not be empty.")
    fn init(self, id_short: str) {
        self.id_short = id_short
    }
}

class Property extends Referable {
    value: str

    @require((value) => len(value) > 0, "Value must not be empty.")
    fn init(self, id_short: str, value: str) {
        Referable.init(self, id_short)
        self.value = value
    }
}`)

	property := table.MustFindClass("Property")
	pres := property.Constructor.Contracts.Preconditions
	require.Len(t, pres, 2)
	assert.Equal(t, "ID-short must not be empty.", pres[0].Description)
	assert.Equal(t, "Value must not be empty.", pres[1].Description)
}

func TestMethodIsTranslatedWithContracts(t *testing.T) {
	table := mustTranslate(t, `class Submodel {
    id: str

    fn init(self, id: str) {
        self.id = id
    }

    @ensure((self, result) => result >= 0, "Length is non-negative.")
    fn id_length(self) -> int {
        return len(self.id)
    }
}`)

	submodel := table.MustFindClass("Submodel")
	method, ok := submodel.MethodByName("id_length")
	require.True(t, ok)

	returns, ok := method.Returns.(*ir.PrimitiveTypeAnnotation)
	require.True(t, ok)
	assert.Equal(t, ir.Int, returns.Kind)

	require.Len(t, method.Contracts.Postconditions, 1)
	body := method.Contracts.Postconditions[0].Body
	_, ok = body.(*exprtree.Comparison)
	assert.True(t, ok)
}

func TestEntitiesKeepDeclarationOrder(t *testing.T) {
	table := mustTranslate(t, `class Second extends First {
    fn init(self) {
        First.init(self)
    }
}

@abstract
class First {
    fn init(self) { pass }
}

enum Kind {
    A = "a"
}`)

	entities := table.Entities()
	require.Len(t, entities, 3)
	assert.Equal(t, model.Identifier("Second"), entities[0].EntityName())
	assert.Equal(t, model.Identifier("First"), entities[1].EntityName())
	assert.Equal(t, model.Identifier("Kind"), entities[2].EntityName())
}
