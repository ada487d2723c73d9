package exprtree

import (
	"fmt"
	"strconv"
	"strings"
)

// Dump renders the tree as a compact, deterministic one-line form used in
// textual dumps of the meta-model and in test expectations.
func Dump(node Node) string {
	var builder strings.Builder
	dumpInto(&builder, node)
	return builder.String()
}

func dumpInto(builder *strings.Builder, node Node) {
	switch n := node.(type) {
	case *Member:
		builder.WriteString("Member(")
		dumpInto(builder, n.Instance)
		builder.WriteString(", ")
		builder.WriteString(n.Name)
		builder.WriteByte(')')
	case *Comparison:
		builder.WriteString("Comparison(")
		builder.WriteString(n.Op.String())
		builder.WriteString(", ")
		dumpInto(builder, n.Left)
		builder.WriteString(", ")
		dumpInto(builder, n.Right)
		builder.WriteByte(')')
	case *Implication:
		builder.WriteString("Implication(")
		dumpInto(builder, n.Antecedent)
		builder.WriteString(", ")
		dumpInto(builder, n.Consequent)
		builder.WriteByte(')')
	case *MethodCall:
		builder.WriteString("MethodCall(")
		dumpInto(builder, n.Member)
		dumpArgs(builder, n.Args)
		builder.WriteByte(')')
	case *FunctionCall:
		builder.WriteString("FunctionCall(")
		builder.WriteString(n.Name.Identifier)
		dumpArgs(builder, n.Args)
		builder.WriteByte(')')
	case *Constant:
		builder.WriteString("Constant(")
		dumpConstant(builder, n.Value)
		builder.WriteByte(')')
	case *IsNone:
		builder.WriteString("IsNone(")
		dumpInto(builder, n.Value)
		builder.WriteByte(')')
	case *IsNotNone:
		builder.WriteString("IsNotNone(")
		dumpInto(builder, n.Value)
		builder.WriteByte(')')
	case *Name:
		builder.WriteString("Name(")
		builder.WriteString(n.Identifier)
		builder.WriteByte(')')
	case *And:
		builder.WriteString("And(")
		dumpList(builder, n.Values)
		builder.WriteByte(')')
	case *Or:
		builder.WriteString("Or(")
		dumpList(builder, n.Values)
		builder.WriteByte(')')
	case *Not:
		builder.WriteString("Not(")
		dumpInto(builder, n.Operand)
		builder.WriteByte(')')
	case *Declaration:
		builder.WriteString("Declaration(")
		builder.WriteString(n.Name)
		builder.WriteString(", ")
		dumpInto(builder, n.Value)
		builder.WriteByte(')')
	case *ExpressionWithDeclarations:
		builder.WriteString("Let(")
		for _, decl := range n.Declarations {
			dumpInto(builder, decl)
			builder.WriteString(", ")
		}
		dumpInto(builder, n.Body)
		builder.WriteByte(')')
	default:
		panic(fmt.Sprintf("unexpected node %T in the expression tree dump", node))
	}
}

func dumpArgs(builder *strings.Builder, args []Expression) {
	for _, arg := range args {
		builder.WriteString(", ")
		dumpInto(builder, arg)
	}
}

func dumpList(builder *strings.Builder, values []Expression) {
	for i, value := range values {
		if i > 0 {
			builder.WriteString(", ")
		}
		dumpInto(builder, value)
	}
}

func dumpConstant(builder *strings.Builder, value interface{}) {
	switch v := value.(type) {
	case nil:
		builder.WriteString("null")
	case string:
		builder.WriteString(strconv.Quote(v))
	case bool:
		builder.WriteString(strconv.FormatBool(v))
	case int64:
		builder.WriteString(strconv.FormatInt(v, 10))
	case float64:
		builder.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	default:
		fmt.Fprintf(builder, "%v", v)
	}
}
