package exprtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veld-lang/veld/compiler/ast"
	"github.com/veld-lang/veld/compiler/lexer"
	"github.com/veld-lang/veld/compiler/parser"
)

// condition parses source as an invariant condition and transforms it
func condition(t *testing.T, expr string) Expression {
	t.Helper()
	source := "@invariant((self) => " + expr + ", \"x\")\nclass T { a: bool }"

	lx := lexer.New(source)
	tokens, lexErrs := lx.ScanTokens()
	require.Empty(t, lexErrs)
	doc, parseErrs := parser.New(tokens).Parse()
	require.Empty(t, parseErrs)

	class := doc.Defs[0].(*ast.ClassDef)
	require.Len(t, class.Invariants, 1)

	result, err := Transform(class.Invariants[0].Condition)
	require.Nil(t, err)
	return result
}

func TestRuleChainFollowsCanonicalOrder(t *testing.T) {
	assert.Equal(t, CanonicalRuleOrder, RuleNames())
}

func TestNullComparisonBecomesNoneCheck(t *testing.T) {
	isNone, ok := condition(t, "self.extension == null").(*IsNone)
	require.True(t, ok)
	member, ok := isNone.Value.(*Member)
	require.True(t, ok)
	assert.Equal(t, "extension", member.Name)

	isNotNone, ok := condition(t, "self.extension != null").(*IsNotNone)
	require.True(t, ok)
	_, ok = isNotNone.Value.(*Member)
	assert.True(t, ok)
}

func TestNullOnLeftSideAlsoMatches(t *testing.T) {
	isNone, ok := condition(t, "null == self.extension").(*IsNone)
	require.True(t, ok)
	_, ok = isNone.Value.(*Member)
	assert.True(t, ok)
}

func TestComparison(t *testing.T) {
	cmp, ok := condition(t, "self.count <= 10").(*Comparison)
	require.True(t, ok)
	assert.Equal(t, Le, cmp.Op)
	_, ok = cmp.Left.(*Member)
	assert.True(t, ok)
	constant, ok := cmp.Right.(*Constant)
	require.True(t, ok)
	assert.Equal(t, int64(10), constant.Value)
}

func TestMethodAndFunctionCalls(t *testing.T) {
	method, ok := condition(t, "self.items.contains(x)").(*MethodCall)
	require.True(t, ok)
	assert.Equal(t, "contains", method.Member.Name)
	require.Len(t, method.Args, 1)
	name, ok := method.Args[0].(*Name)
	require.True(t, ok)
	assert.Equal(t, "x", name.Identifier)

	function, ok := condition(t, "len(self.items)").(*FunctionCall)
	require.True(t, ok)
	assert.Equal(t, "len", function.Name.Identifier)
	assert.Len(t, function.Args, 1)
}

func TestNotAOrBBecomesImplication(t *testing.T) {
	impl, ok := condition(t, "not self.closed or self.count > 0").(*Implication)
	require.True(t, ok)

	member, ok := impl.Antecedent.(*Member)
	require.True(t, ok)
	assert.Equal(t, "closed", member.Name)

	_, ok = impl.Consequent.(*Comparison)
	assert.True(t, ok)
}

func TestThreeWayOrStaysDisjunction(t *testing.T) {
	or, ok := condition(t, "not self.a or self.b or self.c").(*Or)
	require.True(t, ok)
	require.Len(t, or.Values, 3)
	_, ok = or.Values[0].(*Not)
	assert.True(t, ok)
}

func TestPlainOrAndAnd(t *testing.T) {
	or, ok := condition(t, "self.a or self.b").(*Or)
	require.True(t, ok)
	assert.Len(t, or.Values, 2)

	and, ok := condition(t, "self.a and self.b and self.c").(*And)
	require.True(t, ok)
	assert.Len(t, and.Values, 3)
}

func TestStandaloneNot(t *testing.T) {
	not, ok := condition(t, "not self.a").(*Not)
	require.True(t, ok)
	_, ok = not.Operand.(*Member)
	assert.True(t, ok)
}

func TestConstants(t *testing.T) {
	assert.Equal(t, int64(42), condition(t, "42").(*Constant).Value)
	assert.Equal(t, 3.14, condition(t, "3.14").(*Constant).Value)
	assert.Equal(t, "hello", condition(t, "\"hello\"").(*Constant).Value)
	assert.Equal(t, true, condition(t, "true").(*Constant).Value)
	assert.Nil(t, condition(t, "null").(*Constant).Value)
}

func TestLetInBecomesExpressionWithDeclarations(t *testing.T) {
	expr, ok := condition(t, "let n = self.count() in n > 0").(*ExpressionWithDeclarations)
	require.True(t, ok)
	require.Len(t, expr.Declarations, 1)
	assert.Equal(t, "n", expr.Declarations[0].Name)
	_, ok = expr.Declarations[0].Value.(*MethodCall)
	assert.True(t, ok)
	_, ok = expr.Body.(*Comparison)
	assert.True(t, ok)
}

func TestNestedMemberChain(t *testing.T) {
	member, ok := condition(t, "self.parent.name").(*Member)
	require.True(t, ok)
	assert.Equal(t, "name", member.Name)
	inner, ok := member.Instance.(*Member)
	require.True(t, ok)
	assert.Equal(t, "parent", inner.Name)
	name, ok := inner.Instance.(*Name)
	require.True(t, ok)
	assert.Equal(t, "self", name.Identifier)
}

func TestWalkVisitsAllNodes(t *testing.T) {
	expr := condition(t, "not self.closed or len(self.items) > 0")

	var names []string
	Walk(expr, func(node Node) bool {
		if name, ok := node.(*Name); ok {
			names = append(names, name.Identifier)
		}
		return true
	})
	assert.Equal(t, []string{"self", "len", "self"}, names)
}

func TestCoalesceRejectedInConditions(t *testing.T) {
	source := "@invariant((self) => self.a ?? true, \"x\")\nclass T { a: bool }"

	lx := lexer.New(source)
	tokens, lexErrs := lx.ScanTokens()
	require.Empty(t, lexErrs)
	doc, parseErrs := parser.New(tokens).Parse()
	require.Empty(t, parseErrs)

	class := doc.Defs[0].(*ast.ClassDef)
	_, err := Transform(class.Invariants[0].Condition)
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "cannot be used in a condition")
}
