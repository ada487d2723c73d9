package parser

import (
	"fmt"

	"github.com/veld-lang/veld/compiler/ast"
	"github.com/veld-lang/veld/compiler/lexer"
)

// Expression precedence, loosest to tightest:
//
//	let-in
//	or
//	and
//	not
//	??
//	comparison (non-associative)
//	postfix (member access, call)
//	primary
//
// and/or chains are flattened into a single n-ary node so downstream
// analysis sees the operand list the way the author wrote it.

// parseExpression is the entry point for expression parsing
func (p *Parser) parseExpression() ast.Expr {
	if p.check(lexer.TOKEN_LET) {
		return p.parseLetIn()
	}
	return p.parseOr()
}

// parseLetIn parses let name = expr (, name = expr)* in body
func (p *Parser) parseLetIn() ast.Expr {
	letTok := p.advance()

	var decls []*ast.LetDecl
	for {
		name, ok := p.consume(lexer.TOKEN_IDENTIFIER, "expected a variable name after 'let'")
		if !ok {
			return nil
		}
		if _, ok := p.consume(lexer.TOKEN_EQUALS, "expected '=' after let variable name"); !ok {
			return nil
		}
		value := p.parseOr()
		if value == nil {
			return nil
		}
		decls = append(decls, &ast.LetDecl{Name: name.Lexeme, Value: value, Loc: ast.TokenPos(name)})

		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}

	if _, ok := p.consume(lexer.TOKEN_IN, "expected 'in' after let declarations"); !ok {
		return nil
	}
	body := p.parseExpression()
	if body == nil {
		return nil
	}
	return &ast.LetExpr{Decls: decls, Body: body, Loc: ast.TokenPos(letTok)}
}

// parseOr parses an or-chain, flattening nested operands
func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	if left == nil {
		return nil
	}
	if !p.check(lexer.TOKEN_OR) {
		return left
	}

	operands := []ast.Expr{left}
	for p.match(lexer.TOKEN_OR) {
		operand := p.parseAnd()
		if operand == nil {
			return nil
		}
		operands = append(operands, operand)
	}
	return &ast.LogicalExpr{Op: ast.OpOr, Operands: operands, Loc: left.Pos()}
}

// parseAnd parses an and-chain, flattening nested operands
func (p *Parser) parseAnd() ast.Expr {
	left := p.parseNot()
	if left == nil {
		return nil
	}
	if !p.check(lexer.TOKEN_AND) {
		return left
	}

	operands := []ast.Expr{left}
	for p.match(lexer.TOKEN_AND) {
		operand := p.parseNot()
		if operand == nil {
			return nil
		}
		operands = append(operands, operand)
	}
	return &ast.LogicalExpr{Op: ast.OpAnd, Operands: operands, Loc: left.Pos()}
}

// parseNot parses a prefix negation
func (p *Parser) parseNot() ast.Expr {
	if p.check(lexer.TOKEN_NOT) {
		notTok := p.advance()
		operand := p.parseNot()
		if operand == nil {
			return nil
		}
		return &ast.NotExpr{X: operand, Loc: ast.TokenPos(notTok)}
	}
	return p.parseCoalesce()
}

// parseCoalesce parses at most one '??'. Chained coalescing is rejected so
// the default of an argument stays a single expression.
func (p *Parser) parseCoalesce() ast.Expr {
	left := p.parseComparison()
	if left == nil {
		return nil
	}
	if !p.match(lexer.TOKEN_DOUBLE_QUESTION) {
		return left
	}

	deflt := p.parseComparison()
	if deflt == nil {
		return nil
	}
	if p.check(lexer.TOKEN_DOUBLE_QUESTION) {
		p.error(p.peek(), "'??' cannot be chained")
		return nil
	}
	return &ast.CoalesceExpr{X: left, Default: deflt, Loc: left.Pos()}
}

// parseComparison parses a single, non-associative comparison
func (p *Parser) parseComparison() ast.Expr {
	left := p.parsePostfix()
	if left == nil {
		return nil
	}

	var op ast.CompareOp
	switch p.peek().Type {
	case lexer.TOKEN_EQ:
		op = ast.OpEq
	case lexer.TOKEN_NEQ:
		op = ast.OpNeq
	case lexer.TOKEN_LT:
		op = ast.OpLt
	case lexer.TOKEN_LTE:
		op = ast.OpLte
	case lexer.TOKEN_GT:
		op = ast.OpGt
	case lexer.TOKEN_GTE:
		op = ast.OpGte
	default:
		return left
	}
	p.advance()

	right := p.parsePostfix()
	if right == nil {
		return nil
	}
	switch p.peek().Type {
	case lexer.TOKEN_EQ, lexer.TOKEN_NEQ, lexer.TOKEN_LT,
		lexer.TOKEN_LTE, lexer.TOKEN_GT, lexer.TOKEN_GTE:
		p.error(p.peek(), "comparisons cannot be chained, parenthesize the sub-comparisons")
		return nil
	}
	return &ast.CompareExpr{Op: op, Left: left, Right: right, Loc: left.Pos()}
}

// parsePostfix parses member access and call suffixes
func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}

	for {
		switch {
		case p.match(lexer.TOKEN_DOT):
			name, ok := p.consume(lexer.TOKEN_IDENTIFIER, "expected a member name after '.'")
			if !ok {
				return nil
			}
			expr = &ast.MemberExpr{X: expr, Name: name.Lexeme, Loc: expr.Pos()}
		case p.check(lexer.TOKEN_LPAREN):
			p.advance()
			call := &ast.CallExpr{Fun: expr, Loc: expr.Pos()}
			if !p.check(lexer.TOKEN_RPAREN) {
				for {
					arg := p.parseExpression()
					if arg == nil {
						return nil
					}
					call.Args = append(call.Args, arg)
					if !p.match(lexer.TOKEN_COMMA) {
						break
					}
				}
			}
			if _, ok := p.consume(lexer.TOKEN_RPAREN, "expected ')' to close argument list"); !ok {
				return nil
			}
			expr = call
		default:
			return expr
		}
	}
}

// parsePrimary parses literals, identifiers, parenthesized expressions and
// list literals
func (p *Parser) parsePrimary() ast.Expr {
	tok := p.peek()
	switch tok.Type {
	case lexer.TOKEN_INT_LITERAL:
		p.advance()
		return &ast.BasicLit{Kind: ast.LitInt, Value: tok.Literal, Loc: ast.TokenPos(tok)}
	case lexer.TOKEN_FLOAT_LITERAL:
		p.advance()
		return &ast.BasicLit{Kind: ast.LitFloat, Value: tok.Literal, Loc: ast.TokenPos(tok)}
	case lexer.TOKEN_STRING_LITERAL:
		p.advance()
		return &ast.BasicLit{Kind: ast.LitString, Value: tok.Literal, Loc: ast.TokenPos(tok)}
	case lexer.TOKEN_TRUE:
		p.advance()
		return &ast.BasicLit{Kind: ast.LitBool, Value: true, Loc: ast.TokenPos(tok)}
	case lexer.TOKEN_FALSE:
		p.advance()
		return &ast.BasicLit{Kind: ast.LitBool, Value: false, Loc: ast.TokenPos(tok)}
	case lexer.TOKEN_NULL:
		p.advance()
		return &ast.BasicLit{Kind: ast.LitNull, Loc: ast.TokenPos(tok)}
	case lexer.TOKEN_IDENTIFIER:
		p.advance()
		return &ast.Ident{Name: tok.Lexeme, Loc: ast.TokenPos(tok)}
	case lexer.TOKEN_LPAREN:
		p.advance()
		expr := p.parseExpression()
		if expr == nil {
			return nil
		}
		if _, ok := p.consume(lexer.TOKEN_RPAREN, "expected ')' to close the expression"); !ok {
			return nil
		}
		return expr
	case lexer.TOKEN_LBRACKET:
		p.advance()
		list := &ast.ListLit{Loc: ast.TokenPos(tok)}
		if !p.check(lexer.TOKEN_RBRACKET) {
			for {
				element := p.parseExpression()
				if element == nil {
					return nil
				}
				list.Elements = append(list.Elements, element)
				if !p.match(lexer.TOKEN_COMMA) {
					break
				}
			}
		}
		if _, ok := p.consume(lexer.TOKEN_RBRACKET, "expected ']' to close list literal"); !ok {
			return nil
		}
		return list
	default:
		p.error(tok, fmt.Sprintf("expected an expression, got %s", lexer.TokenTypeNames[tok.Type]))
		return nil
	}
}
