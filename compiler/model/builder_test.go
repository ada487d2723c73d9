package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veld-lang/veld/compiler/errors"
	"github.com/veld-lang/veld/compiler/exprtree"
	"github.com/veld-lang/veld/compiler/lexer"
	"github.com/veld-lang/veld/compiler/parser"
)

func build(t *testing.T, source string) *SymbolTable {
	t.Helper()
	table, errs := tryBuild(t, source)
	require.Empty(t, errs)
	return table
}

func tryBuild(t *testing.T, source string) (*SymbolTable, []*errors.CompilerError) {
	t.Helper()
	lx := lexer.New(source)
	tokens, lexErrs := lx.ScanTokens()
	require.Empty(t, lexErrs)
	doc, parseErrs := parser.New(tokens).Parse()
	require.Empty(t, parseErrs)
	return Build(doc)
}

func TestBuildEnumeration(t *testing.T) {
	table := build(t, `/// Kinds of modeling elements.
enum ModelingKind {
    /// A template.
    Template = "Template"
    Instance = "Instance"
}`)

	require.Len(t, table.Entities(), 1)
	enum, ok := table.Entities()[0].(*Enumeration)
	require.True(t, ok)

	assert.Equal(t, Identifier("ModelingKind"), enum.Name)
	assert.Equal(t, "Kinds of modeling elements.", enum.Description.Summary)
	require.Len(t, enum.Literals, 2)

	template, ok := enum.LiteralByName("Template")
	require.True(t, ok)
	assert.Equal(t, "Template", template.Value)
	assert.Equal(t, "A template.", template.Description.Summary)

	instance, ok := enum.LiteralByName("Instance")
	require.True(t, ok)
	assert.Nil(t, instance.Description)
}

func TestBuildClass(t *testing.T) {
	table := build(t, `use Optional from types
use List from types

/// An environment groups shells and submodels.
///
/// The environment owns the lifetime of its members.
///
/// :field shells: The shells of the environment.
@serialization(with_model_type = true)
class Environment extends Referable {
    shells: Optional[List[str]]
}`)

	class, ok := table.Find("Environment")
	require.True(t, ok)
	env := class.(*Class)

	assert.False(t, env.Abstract)
	assert.Equal(t, []Identifier{"Referable"}, env.Inheritances)
	require.NotNil(t, env.Serialization)
	assert.True(t, env.Serialization.WithModelType)

	require.NotNil(t, env.Description)
	assert.Equal(t, "An environment groups shells and submodels.", env.Description.Summary)
	require.Len(t, env.Description.Remarks, 1)
	assert.Equal(t, "The environment owns the lifetime of its members.", env.Description.Remarks[0])
	field, ok := env.Description.FieldFor("shells")
	require.True(t, ok)
	assert.Equal(t, "field", field.Directive)
	assert.Equal(t, "The shells of the environment.", field.Body)

	prop, ok := env.PropertyByName("shells")
	require.True(t, ok)
	sub, ok := prop.TypeAnnotation.(*SubscriptedTypeAnnotation)
	require.True(t, ok)
	assert.Equal(t, Identifier("Optional"), sub.Identifier)
}

func TestBuildMethodWithContracts(t *testing.T) {
	table := build(t, `class Registry {
    count: int

    @require((self, amount) => amount > 0, "Amount must be positive")
    @snapshot((self) => self.count, old_count)
    @ensure((self, OLD, result) => self.count > OLD.old_count)
    fn bump(self, amount: int) -> int {
        return self.count
    }
}`)

	registry := table.MustFindClass("Registry")
	method, ok := registry.MethodByName("bump")
	require.True(t, ok)

	require.Len(t, method.Arguments, 2)
	assert.Equal(t, Identifier("self"), method.Arguments[0].Name)
	_, isSelf := method.Arguments[0].TypeAnnotation.(*SelfTypeAnnotation)
	assert.True(t, isSelf)

	amount, ok := method.ArgumentByName("amount")
	require.True(t, ok)
	assert.Nil(t, amount.Default)

	require.Len(t, method.Contracts.Preconditions, 1)
	pre := method.Contracts.Preconditions[0]
	assert.Equal(t, "Amount must be positive", pre.Description)
	_, isComparison := pre.Body.(*exprtree.Comparison)
	assert.True(t, isComparison)

	require.Len(t, method.Contracts.Snapshots, 1)
	assert.Equal(t, Identifier("old_count"), method.Contracts.Snapshots[0].Name)
	require.Len(t, method.Contracts.Postconditions, 1)
}

func TestContractOrderIsDeclarationOrder(t *testing.T) {
	table := build(t, `class T {
    a: bool

    @require((self) => self.a, "first")
    @require((self) => self.a, "second")
    fn check(self) { pass }
}`)

	method, _ := table.MustFindClass("T").MethodByName("check")
	require.Len(t, method.Contracts.Preconditions, 2)
	assert.Equal(t, "first", method.Contracts.Preconditions[0].Description)
	assert.Equal(t, "second", method.Contracts.Preconditions[1].Description)
}

func TestConstructorIsOrdinaryMethodHere(t *testing.T) {
	table := build(t, `class Submodel {
    id: str

    fn init(self, id: str) {
        self.id = id
    }
}`)

	submodel := table.MustFindClass("Submodel")
	ctor := submodel.Constructor()
	require.NotNil(t, ctor)
	assert.True(t, ctor.IsConstructor())
	assert.Nil(t, ctor.Returns)
	assert.Len(t, ctor.Body, 1)
}

func TestFinalOnlyDirectlyOnProperty(t *testing.T) {
	_, errs := tryBuild(t, `use Final from types
use List from types

class T {
    items: List[Final[str]]
}`)

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "must not be nested")

	table := build(t, `use Final from types

class T {
    id: Final[str]
}`)
	prop, _ := table.MustFindClass("T").PropertyByName("id")
	sub, ok := prop.TypeAnnotation.(*SubscriptedTypeAnnotation)
	require.True(t, ok)
	assert.Equal(t, Identifier("Final"), sub.Identifier)
}

func TestFinalRejectedOnArguments(t *testing.T) {
	_, errs := tryBuild(t, `class T {
    id: str

    fn set_id(self, id: Final[str]) { pass }
}`)

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "Final may only wrap the type of a property")
}

func TestAbstractAndImplementationSpecificConflict(t *testing.T) {
	_, errs := tryBuild(t, `@abstract
@implementation_specific
class T {
    x: int
}`)

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "cannot be both abstract and implementation-specific")
}

func TestUseWhitelist(t *testing.T) {
	_, errs := tryBuild(t, `use Banana from types
class T { x: int }`)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, `unexpected import of the name "Banana"`)

	_, errs = tryBuild(t, `use Final from marker
class T { x: int }`)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, `must be imported from the module "types"`)
}

func TestReceiverRequired(t *testing.T) {
	_, errs := tryBuild(t, `class T {
    x: int

    fn check(value: int) { pass }
}`)

	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message, "unannotated receiver 'self'")
}

func TestContractArgumentsMustBeParameters(t *testing.T) {
	_, errs := tryBuild(t, `class T {
    x: int

    @require((self, amount) => amount > 0)
    fn check(self) { pass }
}`)

	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message, "the argument amount of the precondition is not a parameter")
}

func TestOldRequiresSnapshot(t *testing.T) {
	_, errs := tryBuild(t, `class T {
    x: int

    @ensure((self, OLD) => self.x > 0)
    fn bump(self) { pass }
}`)

	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message, "refers to OLD, but no snapshot is defined")
}

func TestResultAllowedInPostconditions(t *testing.T) {
	build(t, `class T {
    x: int

    @ensure((self, result) => result > 0)
    fn get(self) -> int { return self.x }
}`)
}

func TestConstructorMustNotReturn(t *testing.T) {
	_, errs := tryBuild(t, `class T {
    x: int

    fn init(self) -> int { pass }
}`)

	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message, "constructor must not declare a return type")
}

func TestImplementationSpecificMethodBodyMustBeEmpty(t *testing.T) {
	_, errs := tryBuild(t, `class T {
    x: int

    @implementation_specific
    fn compute(self) -> int { return 1 }
}`)

	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message, "must have an empty body")

	table := build(t, `class T {
    x: int

    @implementation_specific
    fn compute(self) -> int { pass }
}`)
	method, _ := table.MustFindClass("T").MethodByName("compute")
	assert.True(t, method.ImplementationSpecific)
	assert.Nil(t, method.Body)
}

func TestDuplicateDefinitionsAccumulate(t *testing.T) {
	_, errs := tryBuild(t, `class T { x: int }
class T { y: int }
enum E { A = "a" A = "a2" }`)

	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Message, "the name T is defined more than once")
	assert.Contains(t, errs[1].Message, "the literal A appears more than once")
}

func TestInvariantRequiresSelfAndText(t *testing.T) {
	_, errs := tryBuild(t, `@invariant((self, other) => self.x > 0, "x")
class T { x: int }`)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message, "exactly the parameter 'self'")
}

func TestIsValidIdentifier(t *testing.T) {
	assert.True(t, IsValidIdentifier("Environment"))
	assert.True(t, IsValidIdentifier("_hidden"))
	assert.True(t, IsValidIdentifier("model_type2"))
	assert.False(t, IsValidIdentifier(""))
	assert.False(t, IsValidIdentifier("2fast"))
	assert.False(t, IsValidIdentifier("with-dash"))
}

func TestTypeAnnotationRoundTrip(t *testing.T) {
	for _, typeText := range []string{
		"str",
		"ModellingKind",
		"List[Reference]",
		"Optional[List[str]]",
		"Mapping[str, Submodel]",
		"Final[Optional[int]]",
	} {
		table := build(t, "class T {\n    x: "+typeText+"\n}")
		prop, ok := table.MustFindClass("T").PropertyByName("x")
		require.True(t, ok)
		printed := prop.TypeAnnotation.String()
		assert.Equal(t, typeText, printed)

		reparsed := build(t, "class T {\n    x: "+printed+"\n}")
		again, ok := reparsed.MustFindClass("T").PropertyByName("x")
		require.True(t, ok)
		assert.Equal(t, printed, again.TypeAnnotation.String())
	}
}
