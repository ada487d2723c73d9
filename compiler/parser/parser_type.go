package parser

import (
	"github.com/veld-lang/veld/compiler/ast"
	"github.com/veld-lang/veld/compiler/lexer"
)

// parseTypeExpr parses a type expression: a bare name, or a name subscripted
// with one or more type arguments, e.g. Mapping[str, Reference]
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	name, ok := p.consume(lexer.TOKEN_IDENTIFIER, "expected a type name")
	if !ok {
		return nil
	}

	if !p.check(lexer.TOKEN_LBRACKET) {
		return &ast.AtomicType{Name: name.Lexeme, Loc: ast.TokenPos(name)}
	}
	p.advance()

	sub := &ast.SubscriptedType{Name: name.Lexeme, Loc: ast.TokenPos(name)}
	for {
		arg := p.parseTypeExpr()
		if arg == nil {
			return nil
		}
		sub.Subscripts = append(sub.Subscripts, arg)
		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}
	if _, ok := p.consume(lexer.TOKEN_RBRACKET, "expected ']' to close type subscripts"); !ok {
		return nil
	}
	return sub
}
