package parser

import (
	"fmt"

	"github.com/veld-lang/veld/compiler/ast"
	"github.com/veld-lang/veld/compiler/lexer"
)

// Parser holds the state for recursive descent parsing
type Parser struct {
	tokens  []lexer.Token
	current int
	errors  []ParseError
}

// New creates a parser for the given token stream
func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse consumes the token stream and produces a document.
// The returned document contains every definition that parsed cleanly;
// broken definitions are reported and skipped.
func (p *Parser) Parse() (*ast.Document, []ParseError) {
	doc := &ast.Document{}

	for !p.isAtEnd() {
		docs := p.collectDocComments()

		switch {
		case p.check(lexer.TOKEN_USE):
			if use := p.parseUse(); use != nil {
				doc.Uses = append(doc.Uses, use)
			}
		case p.check(lexer.TOKEN_ENUM):
			if enum := p.parseEnum(docs); enum != nil {
				doc.Defs = append(doc.Defs, enum)
			}
		case p.check(lexer.TOKEN_AT), p.check(lexer.TOKEN_CLASS):
			if class := p.parseClass(docs); class != nil {
				doc.Defs = append(doc.Defs, class)
			}
		default:
			p.error(p.peek(), fmt.Sprintf("expected 'use', 'enum', 'class', or a class marker, got %s",
				lexer.TokenTypeNames[p.peek().Type]))
			p.advance()
			p.synchronize()
		}
	}

	return doc, p.errors
}

// collectDocComments gathers consecutive doc comments preceding a definition
func (p *Parser) collectDocComments() []string {
	var docs []string
	for p.check(lexer.TOKEN_DOC_COMMENT) {
		tok := p.advance()
		if text, ok := tok.Literal.(string); ok {
			docs = append(docs, text)
		}
	}
	return docs
}

// parseUse parses a use directive: use Name from module
func (p *Parser) parseUse() *ast.UseDirective {
	useTok := p.advance()

	name, ok := p.consume(lexer.TOKEN_IDENTIFIER, "expected a name after 'use'")
	if !ok {
		p.synchronize()
		return nil
	}
	if _, ok := p.consume(lexer.TOKEN_FROM, "expected 'from' in use directive"); !ok {
		p.synchronize()
		return nil
	}
	module, ok := p.consume(lexer.TOKEN_IDENTIFIER, "expected a module name after 'from'")
	if !ok {
		p.synchronize()
		return nil
	}

	return &ast.UseDirective{Name: name.Lexeme, Module: module.Lexeme, Loc: ast.TokenPos(useTok)}
}

// parseEnum parses an enumeration definition
func (p *Parser) parseEnum(docs []string) *ast.EnumDef {
	enumTok := p.advance()

	name, ok := p.consume(lexer.TOKEN_IDENTIFIER, "expected an enumeration name")
	if !ok {
		p.synchronize()
		return nil
	}
	if _, ok := p.consume(lexer.TOKEN_LBRACE, "expected '{' after enumeration name"); !ok {
		p.synchronize()
		return nil
	}

	enum := &ast.EnumDef{Name: name.Lexeme, Doc: docs, Loc: ast.TokenPos(enumTok)}

	for !p.check(lexer.TOKEN_RBRACE) && !p.isAtEnd() {
		litDocs := p.collectDocComments()

		litName, ok := p.consume(lexer.TOKEN_IDENTIFIER, "expected a literal name in enumeration body")
		if !ok {
			p.synchronize()
			return enum
		}
		if _, ok := p.consume(lexer.TOKEN_EQUALS, "expected '=' after literal name"); !ok {
			p.synchronize()
			return enum
		}
		value, ok := p.consume(lexer.TOKEN_STRING_LITERAL, "expected a string value for the literal")
		if !ok {
			p.synchronize()
			return enum
		}

		valueText, _ := value.Literal.(string)
		enum.Literals = append(enum.Literals, &ast.EnumLiteralDef{
			Name:  litName.Lexeme,
			Value: valueText,
			Doc:   litDocs,
			Loc:   ast.TokenPos(litName),
		})
	}

	if _, ok := p.consume(lexer.TOKEN_RBRACE, "expected '}' to close enumeration body"); !ok {
		p.synchronize()
	}
	return enum
}

// parseClass parses a class definition, including any markers stacked above
// the class keyword
func (p *Parser) parseClass(docs []string) *ast.ClassDef {
	class := &ast.ClassDef{Doc: docs}

	firstTok := p.peek()
	for p.check(lexer.TOKEN_AT) {
		p.advance()
		marker, ok := p.consume(lexer.TOKEN_IDENTIFIER, "expected a marker name after '@'")
		if !ok {
			p.synchronize()
			return nil
		}
		switch marker.Lexeme {
		case "abstract":
			class.Abstract = true
		case "implementation_specific":
			class.ImplementationSpecific = true
		case "serialization":
			if !p.parseSerializationMarker(class) {
				return nil
			}
		case "invariant":
			inv := p.parseInvariant()
			if inv == nil {
				return nil
			}
			class.Invariants = append(class.Invariants, inv)
		default:
			p.error(marker, fmt.Sprintf("unknown class marker '@%s'", marker.Lexeme))
			p.synchronize()
			return nil
		}
	}

	if _, ok := p.consume(lexer.TOKEN_CLASS, "expected 'class' after class markers"); !ok {
		p.synchronize()
		return nil
	}
	name, ok := p.consume(lexer.TOKEN_IDENTIFIER, "expected a class name")
	if !ok {
		p.synchronize()
		return nil
	}
	class.Name = name.Lexeme
	class.Loc = ast.TokenPos(firstTok)

	if p.match(lexer.TOKEN_EXTENDS) {
		for {
			parent, ok := p.consume(lexer.TOKEN_IDENTIFIER, "expected a parent class name after 'extends'")
			if !ok {
				p.synchronize()
				return nil
			}
			class.Extends = append(class.Extends, &ast.TypeName{Name: parent.Lexeme, Loc: ast.TokenPos(parent)})
			if !p.match(lexer.TOKEN_COMMA) {
				break
			}
		}
	}

	if _, ok := p.consume(lexer.TOKEN_LBRACE, "expected '{' to open class body"); !ok {
		p.synchronize()
		return nil
	}

	p.parseClassBody(class)

	if _, ok := p.consume(lexer.TOKEN_RBRACE, "expected '}' to close class body"); !ok {
		p.synchronize()
	}
	return class
}

// parseSerializationMarker parses @serialization(with_model_type = true)
func (p *Parser) parseSerializationMarker(class *ast.ClassDef) bool {
	if _, ok := p.consume(lexer.TOKEN_LPAREN, "expected '(' after '@serialization'"); !ok {
		p.synchronize()
		return false
	}
	arg, ok := p.consume(lexer.TOKEN_IDENTIFIER, "expected 'with_model_type' in serialization marker")
	if !ok {
		p.synchronize()
		return false
	}
	if arg.Lexeme != "with_model_type" {
		p.error(arg, fmt.Sprintf("unknown serialization setting '%s', expected 'with_model_type'", arg.Lexeme))
		p.synchronize()
		return false
	}
	if _, ok := p.consume(lexer.TOKEN_EQUALS, "expected '=' in serialization marker"); !ok {
		p.synchronize()
		return false
	}
	value := p.peek()
	switch value.Type {
	case lexer.TOKEN_TRUE:
		class.WithModelType = true
	case lexer.TOKEN_FALSE:
		class.WithModelType = false
	default:
		p.error(value, "expected 'true' or 'false' for with_model_type")
		p.synchronize()
		return false
	}
	p.advance()
	if _, ok := p.consume(lexer.TOKEN_RPAREN, "expected ')' to close serialization marker"); !ok {
		p.synchronize()
		return false
	}
	return true
}

// parseInvariant parses @invariant((lambda params) => condition, "text"),
// accepted both above the class keyword and inside the class body
func (p *Parser) parseInvariant() *ast.InvariantDef {
	loc := ast.TokenPos(p.previous())

	if _, ok := p.consume(lexer.TOKEN_LPAREN, "expected '(' after '@invariant'"); !ok {
		p.synchronize()
		return nil
	}
	params, condition, ok := p.parseContractLambda()
	if !ok {
		return nil
	}
	if _, ok := p.consume(lexer.TOKEN_COMMA, "expected ',' before invariant description"); !ok {
		p.synchronize()
		return nil
	}
	text, ok := p.consume(lexer.TOKEN_STRING_LITERAL, "expected a description string for the invariant")
	if !ok {
		p.synchronize()
		return nil
	}
	if _, ok := p.consume(lexer.TOKEN_RPAREN, "expected ')' to close invariant marker"); !ok {
		p.synchronize()
		return nil
	}

	textValue, _ := text.Literal.(string)
	return &ast.InvariantDef{Params: params, Condition: condition, Text: textValue, Loc: loc}
}

// parseContractLambda parses (param, ...) => expr, shared by invariants,
// contracts and snapshots
func (p *Parser) parseContractLambda() ([]string, ast.Expr, bool) {
	if _, ok := p.consume(lexer.TOKEN_LPAREN, "expected '(' to open condition parameters"); !ok {
		p.synchronize()
		return nil, nil, false
	}

	var params []string
	if !p.check(lexer.TOKEN_RPAREN) {
		for {
			param, ok := p.consume(lexer.TOKEN_IDENTIFIER, "expected a parameter name")
			if !ok {
				p.synchronize()
				return nil, nil, false
			}
			params = append(params, param.Lexeme)
			if !p.match(lexer.TOKEN_COMMA) {
				break
			}
		}
	}
	if _, ok := p.consume(lexer.TOKEN_RPAREN, "expected ')' after condition parameters"); !ok {
		p.synchronize()
		return nil, nil, false
	}
	if _, ok := p.consume(lexer.TOKEN_FAT_ARROW, "expected '=>' before condition body"); !ok {
		p.synchronize()
		return nil, nil, false
	}

	condition := p.parseExpression()
	if condition == nil {
		p.synchronize()
		return nil, nil, false
	}
	return params, condition, true
}

// parseClassBody parses properties, invariants, and methods until the
// closing brace
func (p *Parser) parseClassBody(class *ast.ClassDef) {
	for !p.check(lexer.TOKEN_RBRACE) && !p.isAtEnd() {
		docs := p.collectDocComments()

		switch {
		case p.check(lexer.TOKEN_IDENTIFIER) && p.peekNext().Type == lexer.TOKEN_COLON:
			if prop := p.parseProperty(docs); prop != nil {
				class.Properties = append(class.Properties, prop)
			} else {
				p.synchronizeToClassMember()
			}
		case p.check(lexer.TOKEN_AT) && p.peekNext().Lexeme == "invariant":
			p.advance()
			p.advance()
			if inv := p.parseInvariant(); inv != nil {
				class.Invariants = append(class.Invariants, inv)
			} else {
				p.synchronizeToClassMember()
			}
		case p.check(lexer.TOKEN_AT), p.check(lexer.TOKEN_FN):
			if method := p.parseMethod(docs); method != nil {
				class.Methods = append(class.Methods, method)
			} else {
				p.synchronizeToClassMember()
			}
		default:
			p.error(p.peek(), fmt.Sprintf("expected a property, invariant, or method in class body, got %s",
				lexer.TokenTypeNames[p.peek().Type]))
			p.advance()
			p.synchronizeToClassMember()
		}
	}
}

// parseProperty parses name: TypeExpr
func (p *Parser) parseProperty(docs []string) *ast.PropertyDef {
	name := p.advance()
	p.advance() // the colon, already checked by the caller

	typeExpr := p.parseTypeExpr()
	if typeExpr == nil {
		return nil
	}
	return &ast.PropertyDef{Name: name.Lexeme, Type: typeExpr, Doc: docs, Loc: ast.TokenPos(name)}
}

// parseMethod parses contract annotations followed by a fn definition.
// Annotations are collected in source order, top-down as written.
func (p *Parser) parseMethod(docs []string) *ast.MethodDef {
	method := &ast.MethodDef{Doc: docs}

	for p.check(lexer.TOKEN_AT) {
		p.advance()
		marker, ok := p.consume(lexer.TOKEN_IDENTIFIER, "expected an annotation name after '@'")
		if !ok {
			return nil
		}
		switch marker.Lexeme {
		case "implementation_specific":
			method.ImplementationSpecific = true
		case "require":
			contract := p.parseContractAnnotation()
			if contract == nil {
				return nil
			}
			method.Requires = append(method.Requires, contract)
		case "ensure":
			contract := p.parseContractAnnotation()
			if contract == nil {
				return nil
			}
			method.Ensures = append(method.Ensures, contract)
		case "snapshot":
			snap := p.parseSnapshotAnnotation()
			if snap == nil {
				return nil
			}
			method.Snapshots = append(method.Snapshots, snap)
		default:
			p.error(marker, fmt.Sprintf("unknown method annotation '@%s'", marker.Lexeme))
			return nil
		}
	}

	fnTok, ok := p.consume(lexer.TOKEN_FN, "expected 'fn' after method annotations")
	if !ok {
		return nil
	}
	name, ok := p.consume(lexer.TOKEN_IDENTIFIER, "expected a method name")
	if !ok {
		return nil
	}
	method.Name = name.Lexeme
	method.Loc = ast.TokenPos(fnTok)

	if !p.parseParams(method) {
		return nil
	}

	if p.match(lexer.TOKEN_ARROW) {
		method.Returns = p.parseTypeExpr()
		if method.Returns == nil {
			return nil
		}
	}

	if _, ok := p.consume(lexer.TOKEN_LBRACE, "expected '{' to open method body"); !ok {
		return nil
	}
	for !p.check(lexer.TOKEN_RBRACE) && !p.isAtEnd() {
		stmt := p.parseStatement()
		if stmt == nil {
			return nil
		}
		method.Body = append(method.Body, stmt)
	}
	if _, ok := p.consume(lexer.TOKEN_RBRACE, "expected '}' to close method body"); !ok {
		return nil
	}
	return method
}

// parseContractAnnotation parses ((params) => condition, "text")
func (p *Parser) parseContractAnnotation() *ast.ContractDef {
	loc := ast.TokenPos(p.previous())

	if _, ok := p.consume(lexer.TOKEN_LPAREN, "expected '(' after contract annotation"); !ok {
		return nil
	}
	params, condition, ok := p.parseContractLambda()
	if !ok {
		return nil
	}

	var text string
	if p.match(lexer.TOKEN_COMMA) {
		textTok, ok := p.consume(lexer.TOKEN_STRING_LITERAL, "expected a description string for the contract")
		if !ok {
			return nil
		}
		text, _ = textTok.Literal.(string)
	}
	if _, ok := p.consume(lexer.TOKEN_RPAREN, "expected ')' to close contract annotation"); !ok {
		return nil
	}
	return &ast.ContractDef{Params: params, Condition: condition, Text: text, Loc: loc}
}

// parseSnapshotAnnotation parses ((params) => capture, name)
func (p *Parser) parseSnapshotAnnotation() *ast.SnapshotDef {
	loc := ast.TokenPos(p.previous())

	if _, ok := p.consume(lexer.TOKEN_LPAREN, "expected '(' after '@snapshot'"); !ok {
		return nil
	}
	params, capture, ok := p.parseContractLambda()
	if !ok {
		return nil
	}
	if _, ok := p.consume(lexer.TOKEN_COMMA, "expected ',' before snapshot name"); !ok {
		return nil
	}
	name, ok := p.consume(lexer.TOKEN_IDENTIFIER, "expected a name for the snapshot")
	if !ok {
		return nil
	}
	if _, ok := p.consume(lexer.TOKEN_RPAREN, "expected ')' to close snapshot annotation"); !ok {
		return nil
	}
	return &ast.SnapshotDef{Params: params, Capture: capture, Name: name.Lexeme, Loc: loc}
}

// parseParams parses a method parameter list. The first parameter may be a
// bare 'self' receiver; all others carry a type and optionally '= null'.
func (p *Parser) parseParams(method *ast.MethodDef) bool {
	if _, ok := p.consume(lexer.TOKEN_LPAREN, "expected '(' after method name"); !ok {
		return false
	}
	if p.check(lexer.TOKEN_RPAREN) {
		p.advance()
		return true
	}

	first := true
	for {
		name, ok := p.consume(lexer.TOKEN_IDENTIFIER, "expected a parameter name")
		if !ok {
			return false
		}
		param := &ast.ParamDef{Name: name.Lexeme, Loc: ast.TokenPos(name)}

		if first && name.Lexeme == "self" && !p.check(lexer.TOKEN_COLON) {
			// bare receiver, no type annotation
		} else {
			if _, ok := p.consume(lexer.TOKEN_COLON, "expected ':' after parameter name"); !ok {
				return false
			}
			param.Type = p.parseTypeExpr()
			if param.Type == nil {
				return false
			}
			if p.match(lexer.TOKEN_EQUALS) {
				if _, ok := p.consume(lexer.TOKEN_NULL, "only 'null' is allowed as a parameter default"); !ok {
					return false
				}
				param.NullDefault = true
			}
		}
		method.Params = append(method.Params, param)
		first = false

		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}

	if _, ok := p.consume(lexer.TOKEN_RPAREN, "expected ')' after parameter list"); !ok {
		return false
	}
	return true
}

// parseStatement parses a single method-body statement
func (p *Parser) parseStatement() ast.Stmt {
	switch {
	case p.check(lexer.TOKEN_PASS):
		tok := p.advance()
		return &ast.PassStmt{Loc: ast.TokenPos(tok)}
	case p.check(lexer.TOKEN_RETURN):
		tok := p.advance()
		stmt := &ast.ReturnStmt{Loc: ast.TokenPos(tok)}
		if !p.check(lexer.TOKEN_RBRACE) && !p.startsStatement() {
			stmt.Value = p.parseExpression()
			if stmt.Value == nil {
				return nil
			}
		}
		return stmt
	default:
		loc := ast.TokenPos(p.peek())
		expr := p.parseExpression()
		if expr == nil {
			return nil
		}
		if p.match(lexer.TOKEN_EQUALS) {
			value := p.parseExpression()
			if value == nil {
				return nil
			}
			return &ast.AssignStmt{Target: expr, Value: value, Loc: loc}
		}
		return &ast.ExprStmt{X: expr, Loc: loc}
	}
}

// startsStatement reports whether the current token begins a new statement,
// used to decide whether a return carries a value
func (p *Parser) startsStatement() bool {
	switch p.peek().Type {
	case lexer.TOKEN_PASS, lexer.TOKEN_RETURN:
		return true
	}
	return false
}

// peek returns the current token without consuming it
func (p *Parser) peek() lexer.Token {
	if p.current >= len(p.tokens) {
		return lexer.Token{Type: lexer.TOKEN_EOF}
	}
	return p.tokens[p.current]
}

// peekNext returns the token after the current one without consuming
func (p *Parser) peekNext() lexer.Token {
	if p.current+1 >= len(p.tokens) {
		return lexer.Token{Type: lexer.TOKEN_EOF}
	}
	return p.tokens[p.current+1]
}

// previous returns the most recently consumed token
func (p *Parser) previous() lexer.Token {
	return p.tokens[p.current-1]
}

// advance consumes and returns the current token
func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

// check tests the current token's type without consuming it
func (p *Parser) check(t lexer.TokenType) bool {
	return p.peek().Type == t
}

// match consumes the current token if it has the given type
func (p *Parser) match(t lexer.TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

// consume expects the current token to have the given type; on mismatch it
// records an error and reports failure
func (p *Parser) consume(t lexer.TokenType, message string) (lexer.Token, bool) {
	if p.check(t) {
		return p.advance(), true
	}
	p.error(p.peek(), message)
	return p.peek(), false
}

// isAtEnd reports whether all meaningful tokens have been consumed
func (p *Parser) isAtEnd() bool {
	return p.peek().Type == lexer.TOKEN_EOF
}
