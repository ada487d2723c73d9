// Package parser implements the Veld meta-model parser, transforming token
// streams into concrete syntax trees. It uses recursive descent parsing with
// panic-mode recovery so that one document surfaces errors for every broken
// definition, not just the first.
package parser

import (
	"fmt"

	"github.com/veld-lang/veld/compiler/errors"
	"github.com/veld-lang/veld/compiler/lexer"
)

// ParseError represents an error encountered during parsing
type ParseError struct {
	Message string
	Token   lexer.Token
}

// Error implements the error interface
func (e ParseError) Error() string {
	return fmt.Sprintf("Parse error at %d:%d: %s (near '%s')",
		e.Token.Line, e.Token.Column, e.Message, e.Token.Lexeme)
}

// CompilerError converts the parse error into the shared diagnostic form.
func (e ParseError) CompilerError() *errors.CompilerError {
	return errors.New("parser", e.Message, &errors.Position{Offset: e.Token.Offset})
}

// error records a parse error at the given token
func (p *Parser) error(token lexer.Token, message string) {
	p.errors = append(p.errors, ParseError{Message: message, Token: token})
}

// synchronize skips tokens until the start of the next definition so that
// one malformed definition does not swallow the rest of the document
func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		switch p.peek().Type {
		case lexer.TOKEN_USE, lexer.TOKEN_ENUM, lexer.TOKEN_CLASS, lexer.TOKEN_AT:
			return
		}
		p.advance()
	}
}

// synchronizeToClassMember skips tokens until the next plausible class-body
// member or the closing brace of the class
func (p *Parser) synchronizeToClassMember() {
	depth := 0
	for !p.isAtEnd() {
		switch p.peek().Type {
		case lexer.TOKEN_LBRACE:
			depth++
		case lexer.TOKEN_RBRACE:
			if depth == 0 {
				return
			}
			depth--
		case lexer.TOKEN_FN, lexer.TOKEN_AT:
			if depth == 0 {
				return
			}
		case lexer.TOKEN_IDENTIFIER:
			if depth == 0 && p.peekNext().Type == lexer.TOKEN_COLON {
				return
			}
		}
		p.advance()
	}
}
