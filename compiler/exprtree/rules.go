package exprtree

import (
	"fmt"

	"github.com/veld-lang/veld/compiler/ast"
	"github.com/veld-lang/veld/compiler/errors"
)

// Each rule recognizes one shape of syntax expression and transforms it.
// The rules are tried strictly in the order of chainOfRules; the first rule
// whose matches reports true handles the node. The order matters: a null
// comparison must be claimed by the none-check rule before the generic
// comparison rule sees it, and 'not A or B' must become an implication
// before the negation and disjunction rules can claim its pieces.

type rule interface {
	name() string
	matches(node ast.Expr) bool
	transform(node ast.Expr) (Expression, *errors.CompilerError)
}

type noneCheckRule struct{}

func (noneCheckRule) name() string { return "NoneCheck" }

func (noneCheckRule) matches(node ast.Expr) bool {
	cmp, ok := node.(*ast.CompareExpr)
	if !ok || (cmp.Op != ast.OpEq && cmp.Op != ast.OpNeq) {
		return false
	}
	return isNullLit(cmp.Left) || isNullLit(cmp.Right)
}

func (noneCheckRule) transform(node ast.Expr) (Expression, *errors.CompilerError) {
	cmp := node.(*ast.CompareExpr)

	side := cmp.Left
	if isNullLit(side) {
		side = cmp.Right
	}
	value, err := Transform(side)
	if err != nil {
		return nil, err
	}
	if cmp.Op == ast.OpEq {
		return &IsNone{Value: value, Loc: cmp.Pos()}, nil
	}
	return &IsNotNone{Value: value, Loc: cmp.Pos()}, nil
}

type comparisonRule struct{}

func (comparisonRule) name() string { return "Comparison" }

func (comparisonRule) matches(node ast.Expr) bool {
	_, ok := node.(*ast.CompareExpr)
	return ok
}

func (comparisonRule) transform(node ast.Expr) (Expression, *errors.CompilerError) {
	cmp := node.(*ast.CompareExpr)

	left, err := Transform(cmp.Left)
	if err != nil {
		return nil, err
	}
	right, err := Transform(cmp.Right)
	if err != nil {
		return nil, err
	}

	var op Comparator
	switch cmp.Op {
	case ast.OpLt:
		op = Lt
	case ast.OpLte:
		op = Le
	case ast.OpGt:
		op = Gt
	case ast.OpGte:
		op = Ge
	case ast.OpEq:
		op = Eq
	case ast.OpNeq:
		op = Ne
	}
	return &Comparison{Op: op, Left: left, Right: right, Loc: cmp.Pos()}, nil
}

type callRule struct{}

func (callRule) name() string { return "Call" }

func (callRule) matches(node ast.Expr) bool {
	_, ok := node.(*ast.CallExpr)
	return ok
}

func (callRule) transform(node ast.Expr) (Expression, *errors.CompilerError) {
	call := node.(*ast.CallExpr)

	args := make([]Expression, 0, len(call.Args))
	for _, argNode := range call.Args {
		arg, err := Transform(argNode)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	switch fun := call.Fun.(type) {
	case *ast.MemberExpr:
		instance, err := Transform(fun.X)
		if err != nil {
			return nil, err
		}
		member := &Member{Instance: instance, Name: fun.Name, Loc: fun.Pos()}
		return &MethodCall{Member: member, Args: args, Loc: call.Pos()}, nil
	case *ast.Ident:
		name := &Name{Identifier: fun.Name, Loc: fun.Pos()}
		return &FunctionCall{Name: name, Args: args, Loc: call.Pos()}, nil
	default:
		pos := call.Pos()
		return nil, errors.New("expression",
			"expected a method or a function call, but the callee is neither a member access nor a name",
			&pos)
	}
}

type constantRule struct{}

func (constantRule) name() string { return "Constant" }

func (constantRule) matches(node ast.Expr) bool {
	_, ok := node.(*ast.BasicLit)
	return ok
}

func (constantRule) transform(node ast.Expr) (Expression, *errors.CompilerError) {
	lit := node.(*ast.BasicLit)
	if lit.Kind == ast.LitNull {
		return &Constant{Value: nil, Loc: lit.Pos()}, nil
	}
	return &Constant{Value: lit.Value, Loc: lit.Pos()}, nil
}

type implicationRule struct{}

func (implicationRule) name() string { return "Implication" }

func (implicationRule) matches(node ast.Expr) bool {
	or, ok := node.(*ast.LogicalExpr)
	if !ok || or.Op != ast.OpOr || len(or.Operands) != 2 {
		return false
	}
	_, ok = or.Operands[0].(*ast.NotExpr)
	return ok
}

func (implicationRule) transform(node ast.Expr) (Expression, *errors.CompilerError) {
	or := node.(*ast.LogicalExpr)
	neg := or.Operands[0].(*ast.NotExpr)

	antecedent, err := Transform(neg.X)
	if err != nil {
		return nil, err
	}
	consequent, err := Transform(or.Operands[1])
	if err != nil {
		return nil, err
	}
	return &Implication{Antecedent: antecedent, Consequent: consequent, Loc: or.Pos()}, nil
}

type notRule struct{}

func (notRule) name() string { return "Not" }

func (notRule) matches(node ast.Expr) bool {
	_, ok := node.(*ast.NotExpr)
	return ok
}

func (notRule) transform(node ast.Expr) (Expression, *errors.CompilerError) {
	neg := node.(*ast.NotExpr)
	operand, err := Transform(neg.X)
	if err != nil {
		return nil, err
	}
	return &Not{Operand: operand, Loc: neg.Pos()}, nil
}

type memberRule struct{}

func (memberRule) name() string { return "Member" }

func (memberRule) matches(node ast.Expr) bool {
	_, ok := node.(*ast.MemberExpr)
	return ok
}

func (memberRule) transform(node ast.Expr) (Expression, *errors.CompilerError) {
	member := node.(*ast.MemberExpr)
	instance, err := Transform(member.X)
	if err != nil {
		return nil, err
	}
	return &Member{Instance: instance, Name: member.Name, Loc: member.Pos()}, nil
}

type nameRule struct{}

func (nameRule) name() string { return "Name" }

func (nameRule) matches(node ast.Expr) bool {
	_, ok := node.(*ast.Ident)
	return ok
}

func (nameRule) transform(node ast.Expr) (Expression, *errors.CompilerError) {
	ident := node.(*ast.Ident)
	return &Name{Identifier: ident.Name, Loc: ident.Pos()}, nil
}

type andOrRule struct{}

func (andOrRule) name() string { return "AndOr" }

func (andOrRule) matches(node ast.Expr) bool {
	_, ok := node.(*ast.LogicalExpr)
	return ok
}

func (andOrRule) transform(node ast.Expr) (Expression, *errors.CompilerError) {
	logical := node.(*ast.LogicalExpr)

	values := make([]Expression, 0, len(logical.Operands))
	for _, operandNode := range logical.Operands {
		operand, err := Transform(operandNode)
		if err != nil {
			return nil, err
		}
		values = append(values, operand)
	}
	if logical.Op == ast.OpAnd {
		return &And{Values: values, Loc: logical.Pos()}, nil
	}
	return &Or{Values: values, Loc: logical.Pos()}, nil
}

type letInRule struct{}

func (letInRule) name() string { return "LetIn" }

func (letInRule) matches(node ast.Expr) bool {
	_, ok := node.(*ast.LetExpr)
	return ok
}

func (letInRule) transform(node ast.Expr) (Expression, *errors.CompilerError) {
	letExpr := node.(*ast.LetExpr)

	decls := make([]*Declaration, 0, len(letExpr.Decls))
	for _, declNode := range letExpr.Decls {
		value, err := Transform(declNode.Value)
		if err != nil {
			return nil, err
		}
		decls = append(decls, &Declaration{Name: declNode.Name, Value: value, Loc: declNode.Pos()})
	}

	body, err := Transform(letExpr.Body)
	if err != nil {
		return nil, err
	}
	return &ExpressionWithDeclarations{Declarations: decls, Body: body, Loc: letExpr.Pos()}, nil
}

var chainOfRules = []rule{
	noneCheckRule{},
	comparisonRule{},
	callRule{},
	constantRule{},
	implicationRule{},
	notRule{},
	memberRule{},
	nameRule{},
	andOrRule{},
	letInRule{},
}

// CanonicalRuleOrder is the required order of the rule chain. Changing the
// chain without updating this list trips the init assertion, so reorderings
// are always deliberate.
var CanonicalRuleOrder = []string{
	"NoneCheck", "Comparison", "Call", "Constant", "Implication",
	"Not", "Member", "Name", "AndOr", "LetIn",
}

func init() {
	if len(chainOfRules) != len(CanonicalRuleOrder) {
		panic(fmt.Sprintf("rule chain has %d rules, canonical order lists %d",
			len(chainOfRules), len(CanonicalRuleOrder)))
	}
	for i, r := range chainOfRules {
		if r.name() != CanonicalRuleOrder[i] {
			panic(fmt.Sprintf("rule %d is %q, canonical order requires %q",
				i, r.name(), CanonicalRuleOrder[i]))
		}
	}
}

// RuleNames returns the names of the rules in chain order.
func RuleNames() []string {
	names := make([]string, len(chainOfRules))
	for i, r := range chainOfRules {
		names[i] = r.name()
	}
	return names
}

// Transform converts a syntax expression into the expression tree. The first
// matching rule in the chain handles the node; expressions no rule claims
// are reported as errors.
func Transform(node ast.Expr) (Expression, *errors.CompilerError) {
	for _, r := range chainOfRules {
		if r.matches(node) {
			return r.transform(node)
		}
	}
	pos := node.Pos()
	return nil, errors.New("expression",
		fmt.Sprintf("the expression %T cannot be used in a condition", node), &pos)
}

func isNullLit(node ast.Expr) bool {
	lit, ok := node.(*ast.BasicLit)
	return ok && lit.Kind == ast.LitNull
}
