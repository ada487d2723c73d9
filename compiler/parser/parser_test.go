package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veld-lang/veld/compiler/ast"
	"github.com/veld-lang/veld/compiler/lexer"
)

func parse(t *testing.T, source string) *ast.Document {
	t.Helper()
	lx := lexer.New(source)
	tokens, lexErrs := lx.ScanTokens()
	require.Empty(t, lexErrs)

	doc, errs := New(tokens).Parse()
	require.Empty(t, errs)
	return doc
}

func parseWithErrors(t *testing.T, source string) (*ast.Document, []ParseError) {
	t.Helper()
	lx := lexer.New(source)
	tokens, lexErrs := lx.ScanTokens()
	require.Empty(t, lexErrs)
	return New(tokens).Parse()
}

func TestParseUseDirective(t *testing.T) {
	doc := parse(t, `use Final from types
use Optional from types`)

	require.Len(t, doc.Uses, 2)
	assert.Equal(t, "Final", doc.Uses[0].Name)
	assert.Equal(t, "types", doc.Uses[0].Module)
	assert.Equal(t, "Optional", doc.Uses[1].Name)
}

func TestParseEnum(t *testing.T) {
	doc := parse(t, `/// Direction of a relationship.
enum Direction {
    /// From the source to the target.
    Forward = "forward"
    Backward = "backward"
}`)

	require.Len(t, doc.Defs, 1)
	enum, ok := doc.Defs[0].(*ast.EnumDef)
	require.True(t, ok)

	assert.Equal(t, "Direction", enum.Name)
	assert.Equal(t, []string{"Direction of a relationship."}, enum.Doc)
	require.Len(t, enum.Literals, 2)
	assert.Equal(t, "Forward", enum.Literals[0].Name)
	assert.Equal(t, "forward", enum.Literals[0].Value)
	assert.Equal(t, []string{"From the source to the target."}, enum.Literals[0].Doc)
	assert.Equal(t, "Backward", enum.Literals[1].Name)
	assert.Empty(t, enum.Literals[1].Doc)
}

func TestParseClassHeader(t *testing.T) {
	doc := parse(t, `@abstract
@serialization(with_model_type = true)
class Referable extends HasExtensions, HasSemantics {
}`)

	require.Len(t, doc.Defs, 1)
	class, ok := doc.Defs[0].(*ast.ClassDef)
	require.True(t, ok)

	assert.Equal(t, "Referable", class.Name)
	assert.True(t, class.Abstract)
	assert.False(t, class.ImplementationSpecific)
	assert.True(t, class.WithModelType)
	require.Len(t, class.Extends, 2)
	assert.Equal(t, "HasExtensions", class.Extends[0].Name)
	assert.Equal(t, "HasSemantics", class.Extends[1].Name)
}

func TestParseProperties(t *testing.T) {
	doc := parse(t, `class Environment {
    /// Submodels in the environment.
    submodels: Optional[List[Submodel]]
    id: Final[str]
    lookup: Mapping[str, Referable]
}`)

	class := doc.Defs[0].(*ast.ClassDef)
	require.Len(t, class.Properties, 3)

	sub := class.Properties[0]
	assert.Equal(t, "submodels", sub.Name)
	assert.Equal(t, []string{"Submodels in the environment."}, sub.Doc)
	outer, ok := sub.Type.(*ast.SubscriptedType)
	require.True(t, ok)
	assert.Equal(t, "Optional", outer.Name)
	require.Len(t, outer.Subscripts, 1)
	inner, ok := outer.Subscripts[0].(*ast.SubscriptedType)
	require.True(t, ok)
	assert.Equal(t, "List", inner.Name)
	atom, ok := inner.Subscripts[0].(*ast.AtomicType)
	require.True(t, ok)
	assert.Equal(t, "Submodel", atom.Name)

	mapping, ok := class.Properties[2].Type.(*ast.SubscriptedType)
	require.True(t, ok)
	assert.Equal(t, "Mapping", mapping.Name)
	assert.Len(t, mapping.Subscripts, 2)
}

func TestParseMethodWithContracts(t *testing.T) {
	doc := parse(t, `class Registry {
    items: List[str]

    @require((self, item) => item != null, "Item must be provided")
    @snapshot((self) => self.items, old_items)
    @ensure((self, OLD, result) => result == true)
    fn add(self, item: str, weight: int = null) -> bool {
        return true
    }
}`)

	class := doc.Defs[0].(*ast.ClassDef)
	require.Len(t, class.Methods, 1)
	method := class.Methods[0]

	assert.Equal(t, "add", method.Name)
	require.Len(t, method.Params, 3)
	assert.Equal(t, "self", method.Params[0].Name)
	assert.Nil(t, method.Params[0].Type)
	assert.Equal(t, "item", method.Params[1].Name)
	assert.False(t, method.Params[1].NullDefault)
	assert.Equal(t, "weight", method.Params[2].Name)
	assert.True(t, method.Params[2].NullDefault)

	ret, ok := method.Returns.(*ast.AtomicType)
	require.True(t, ok)
	assert.Equal(t, "bool", ret.Name)

	require.Len(t, method.Requires, 1)
	assert.Equal(t, []string{"self", "item"}, method.Requires[0].Params)
	assert.Equal(t, "Item must be provided", method.Requires[0].Text)
	cmp, ok := method.Requires[0].Condition.(*ast.CompareExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpNeq, cmp.Op)

	require.Len(t, method.Snapshots, 1)
	assert.Equal(t, "old_items", method.Snapshots[0].Name)
	member, ok := method.Snapshots[0].Capture.(*ast.MemberExpr)
	require.True(t, ok)
	assert.Equal(t, "items", member.Name)

	require.Len(t, method.Ensures, 1)
	assert.Equal(t, []string{"self", "OLD", "result"}, method.Ensures[0].Params)

	require.Len(t, method.Body, 1)
	retStmt, ok := method.Body[0].(*ast.ReturnStmt)
	require.True(t, ok)
	lit, ok := retStmt.Value.(*ast.BasicLit)
	require.True(t, ok)
	assert.Equal(t, ast.LitBool, lit.Kind)
}

func TestParseInvariant(t *testing.T) {
	doc := parse(t, `@invariant((self) => self.value > 0, "Value must be positive")
class Measure {
    value: int
}`)

	class := doc.Defs[0].(*ast.ClassDef)
	require.Len(t, class.Invariants, 1)
	inv := class.Invariants[0]

	assert.Equal(t, []string{"self"}, inv.Params)
	assert.Equal(t, "Value must be positive", inv.Text)
	cmp, ok := inv.Condition.(*ast.CompareExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpGt, cmp.Op)
}

func TestParseInvariantInClassBody(t *testing.T) {
	doc := parse(t, `class Measure {
    value: int

    @invariant((self) => self.value > 0, "Value must be positive")

    fn init(self, value: int) {
        self.value = value
    }
}`)

	class := doc.Defs[0].(*ast.ClassDef)
	assert.Len(t, class.Properties, 1)
	assert.Len(t, class.Methods, 1)
	require.Len(t, class.Invariants, 1)
	inv := class.Invariants[0]

	assert.Equal(t, []string{"self"}, inv.Params)
	assert.Equal(t, "Value must be positive", inv.Text)
	_, ok := inv.Condition.(*ast.CompareExpr)
	assert.True(t, ok)
}

func TestParseConstructorStatements(t *testing.T) {
	doc := parse(t, `class Submodel extends Identifiable {
    elements: List[SubmodelElement]

    fn init(self, id: str, elements: List[SubmodelElement] = null) {
        Identifiable.init(self, id)
        self.elements = elements ?? []
    }
}`)

	class := doc.Defs[0].(*ast.ClassDef)
	method := class.Methods[0]
	require.Len(t, method.Body, 2)

	exprStmt, ok := method.Body[0].(*ast.ExprStmt)
	require.True(t, ok)
	call, ok := exprStmt.X.(*ast.CallExpr)
	require.True(t, ok)
	fun, ok := call.Fun.(*ast.MemberExpr)
	require.True(t, ok)
	assert.Equal(t, "init", fun.Name)
	recv, ok := fun.X.(*ast.Ident)
	require.True(t, ok)
	assert.Equal(t, "Identifiable", recv.Name)
	assert.Len(t, call.Args, 2)

	assign, ok := method.Body[1].(*ast.AssignStmt)
	require.True(t, ok)
	target, ok := assign.Target.(*ast.MemberExpr)
	require.True(t, ok)
	assert.Equal(t, "elements", target.Name)
	coalesce, ok := assign.Value.(*ast.CoalesceExpr)
	require.True(t, ok)
	list, ok := coalesce.Default.(*ast.ListLit)
	require.True(t, ok)
	assert.Empty(t, list.Elements)
}

func TestParseLogicalChainsFlattened(t *testing.T) {
	doc := parse(t, `@invariant((self) => self.a and self.b and self.c or not self.d, "x")
class T { a: bool }`)

	inv := doc.Defs[0].(*ast.ClassDef).Invariants[0]
	or, ok := inv.Condition.(*ast.LogicalExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpOr, or.Op)
	require.Len(t, or.Operands, 2)

	and, ok := or.Operands[0].(*ast.LogicalExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpAnd, and.Op)
	assert.Len(t, and.Operands, 3)

	_, ok = or.Operands[1].(*ast.NotExpr)
	assert.True(t, ok)
}

func TestParseLetIn(t *testing.T) {
	doc := parse(t, `@invariant((self) => let n = self.count() in n > 0 and n < 10, "x")
class T { a: bool }`)

	inv := doc.Defs[0].(*ast.ClassDef).Invariants[0]
	letExpr, ok := inv.Condition.(*ast.LetExpr)
	require.True(t, ok)
	require.Len(t, letExpr.Decls, 1)
	assert.Equal(t, "n", letExpr.Decls[0].Name)
	_, ok = letExpr.Decls[0].Value.(*ast.CallExpr)
	assert.True(t, ok)
	_, ok = letExpr.Body.(*ast.LogicalExpr)
	assert.True(t, ok)
}

func TestParseAnnotationOrderPreserved(t *testing.T) {
	doc := parse(t, `class T {
    @require((self) => self.a, "first")
    @require((self) => self.b, "second")
    fn check(self) { pass }
}`)

	method := doc.Defs[0].(*ast.ClassDef).Methods[0]
	require.Len(t, method.Requires, 2)
	assert.Equal(t, "first", method.Requires[0].Text)
	assert.Equal(t, "second", method.Requires[1].Text)
}

func TestParseChainedComparisonRejected(t *testing.T) {
	_, errs := parseWithErrors(t, `@invariant((self) => 1 < self.x < 10, "x")
class T { x: int }`)

	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message, "cannot be chained")
}

func TestParseChainedCoalesceRejected(t *testing.T) {
	_, errs := parseWithErrors(t, `class T {
    x: int
    fn init(self, x: int = null) {
        self.x = x ?? y ?? 0
    }
}`)

	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message, "'??' cannot be chained")
}

func TestParseRecoversAcrossDefinitions(t *testing.T) {
	doc, errs := parseWithErrors(t, `enum Broken {
    A =
}

class Kept {
    name: str
}`)

	require.NotEmpty(t, errs)
	// the broken enum is reported, the following class still parses
	found := false
	for _, def := range doc.Defs {
		if class, ok := def.(*ast.ClassDef); ok && class.Name == "Kept" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestParseErrorCarriesPosition(t *testing.T) {
	_, errs := parseWithErrors(t, `class T {
    name str
}`)

	require.NotEmpty(t, errs)
	assert.Equal(t, 2, errs[0].Token.Line)
	assert.Contains(t, errs[0].Error(), "Parse error at 2:")
}

func TestParseUnknownMarkerRejected(t *testing.T) {
	_, errs := parseWithErrors(t, `@frozen
class T { x: int }`)

	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message, "unknown class marker '@frozen'")
}
