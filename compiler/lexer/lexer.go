// Package lexer provides lexical analysis for Veld meta-model source code.
// It tokenizes a source document into a stream of tokens for the parser.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
)

// Lexer tokenizes Veld source code.
//
// Lexer instances are not safe for concurrent use; create one per source
// document via New().
type Lexer struct {
	source  string     // Source code to tokenize
	start   int        // Start position of current token
	current int        // Current position in source
	line    int        // Current line number (1-indexed)
	column  int        // Current column number (1-indexed)
	tokens  []Token    // Collected tokens
	errors  []LexError // Collected errors
}

// New creates a new Lexer for the given source code
func New(source string) *Lexer {
	return &Lexer{
		source:  source,
		start:   0,
		current: 0,
		line:    1,
		column:  1,
		tokens:  make([]Token, 0),
		errors:  make([]LexError, 0),
	}
}

// ScanTokens tokenizes the entire source and returns tokens and errors
func (l *Lexer) ScanTokens() ([]Token, []LexError) {
	for !l.isAtEnd() {
		l.start = l.current
		l.scanToken()
	}

	l.tokens = append(l.tokens, Token{
		Type:   TOKEN_EOF,
		Lexeme: "",
		Offset: l.current,
		Line:   l.line,
		Column: l.column,
	})

	return l.tokens, l.errors
}

// scanToken processes the next token, dispatching on the first character.
func (l *Lexer) scanToken() {
	c := l.advance()

	switch {
	case c == '(' || c == ')' || c == '{' || c == '}' || c == '[' || c == ']':
		l.scanDelimiter(c)
	case c == ',' || c == '.' || c == ':' || c == '@':
		l.scanSimpleOperator(c)
	case c == '=' || c == '!' || c == '<' || c == '>' || c == '-' || c == '?' || c == '/':
		l.scanCompoundOperator(c)
	case c == '"':
		l.string()
	case c == ' ' || c == '\r' || c == '\t':
		// Ignore whitespace
	case c == '\n':
		l.line++
		l.column = 1
	default:
		l.scanDefault(c)
	}
}

// scanDelimiter handles delimiter tokens: ( ) { } [ ]
func (l *Lexer) scanDelimiter(c byte) {
	switch c {
	case '(':
		l.addToken(TOKEN_LPAREN)
	case ')':
		l.addToken(TOKEN_RPAREN)
	case '{':
		l.addToken(TOKEN_LBRACE)
	case '}':
		l.addToken(TOKEN_RBRACE)
	case '[':
		l.addToken(TOKEN_LBRACKET)
	case ']':
		l.addToken(TOKEN_RBRACKET)
	}
}

// scanSimpleOperator handles single-character operators: , . : @
func (l *Lexer) scanSimpleOperator(c byte) {
	switch c {
	case ',':
		l.addToken(TOKEN_COMMA)
	case '.':
		l.addToken(TOKEN_DOT)
	case ':':
		l.addToken(TOKEN_COLON)
	case '@':
		l.addToken(TOKEN_AT)
	}
}

// scanCompoundOperator dispatches to multi-character operator handlers
func (l *Lexer) scanCompoundOperator(c byte) {
	switch c {
	case '=':
		l.scanEqualsToken()
	case '!':
		l.scanBangToken()
	case '<':
		l.scanLessThanToken()
	case '>':
		l.scanGreaterThanToken()
	case '-':
		l.scanMinusToken()
	case '?':
		l.scanQuestionToken()
	case '/':
		l.scanSlashToken()
	}
}

// scanEqualsToken handles =, ==, and =>
func (l *Lexer) scanEqualsToken() {
	if l.match('=') {
		l.addToken(TOKEN_EQ)
	} else if l.match('>') {
		l.addToken(TOKEN_FAT_ARROW)
	} else {
		l.addToken(TOKEN_EQUALS)
	}
}

// scanBangToken handles != (a bare ! is an error)
func (l *Lexer) scanBangToken() {
	if l.match('=') {
		l.addToken(TOKEN_NEQ)
	} else {
		l.addError("Unexpected character '!' (did you mean '!='?)")
	}
}

// scanLessThanToken handles < and <=
func (l *Lexer) scanLessThanToken() {
	if l.match('=') {
		l.addToken(TOKEN_LTE)
	} else {
		l.addToken(TOKEN_LT)
	}
}

// scanGreaterThanToken handles > and >=
func (l *Lexer) scanGreaterThanToken() {
	if l.match('=') {
		l.addToken(TOKEN_GTE)
	} else {
		l.addToken(TOKEN_GT)
	}
}

// scanMinusToken handles -> and negative number literals
func (l *Lexer) scanMinusToken() {
	if l.match('>') {
		l.addToken(TOKEN_ARROW)
	} else if l.isDigit(l.peek()) {
		l.number()
	} else {
		l.addError("Unexpected character '-'")
	}
}

// scanQuestionToken handles ?? (a bare ? is an error)
func (l *Lexer) scanQuestionToken() {
	if l.match('?') {
		l.addToken(TOKEN_DOUBLE_QUESTION)
	} else {
		l.addError("Unexpected character '?' (did you mean '??'?)")
	}
}

// scanSlashToken handles // comments and /// documentation comments
func (l *Lexer) scanSlashToken() {
	if !l.match('/') {
		l.addError("Unexpected character '/' (comments start with '//')")
		return
	}

	if l.match('/') {
		l.docComment()
	} else {
		l.comment()
	}
}

// comment consumes a // comment until the end of the line
func (l *Lexer) comment() {
	for l.peek() != '\n' && !l.isAtEnd() {
		l.advance()
	}
}

// docComment emits the text of one /// line, with the marker and one
// leading space stripped.
func (l *Lexer) docComment() {
	for l.peek() != '\n' && !l.isAtEnd() {
		l.advance()
	}

	text := l.source[l.start:l.current]
	text = strings.TrimPrefix(text, "///")
	text = strings.TrimPrefix(text, " ")
	l.addTokenWithLiteral(TOKEN_DOC_COMMENT, text)
}

// scanDefault handles numbers, identifiers, keywords, or errors
func (l *Lexer) scanDefault(c byte) {
	if l.isDigit(c) {
		l.number()
	} else if l.isAlpha(c) {
		l.identifier()
	} else {
		l.addError(fmt.Sprintf("Unexpected character: '%c'", c))
	}
}

// string handles string literals with escape sequences
func (l *Lexer) string() {
	startLine := l.line
	startColumn := l.column - 1
	value := strings.Builder{}

	for !l.isAtEnd() && l.peek() != '"' {
		if l.peek() == '\\' {
			l.advance()
			if l.isAtEnd() {
				break
			}

			escaped := l.advance()
			switch escaped {
			case 'n':
				value.WriteByte('\n')
			case 't':
				value.WriteByte('\t')
			case 'r':
				value.WriteByte('\r')
			case '\\':
				value.WriteByte('\\')
			case '"':
				value.WriteByte('"')
			default:
				// Unknown escape sequence - keep as-is
				value.WriteByte('\\')
				value.WriteByte(escaped)
			}
		} else if l.peek() == '\n' {
			break
		} else {
			value.WriteByte(l.advance())
		}
	}

	if l.isAtEnd() || l.peek() == '\n' {
		l.addError(fmt.Sprintf("Unterminated string starting at %d:%d", startLine, startColumn))
		return
	}

	// Consume closing "
	l.advance()

	l.tokens = append(l.tokens, Token{
		Type:    TOKEN_STRING_LITERAL,
		Lexeme:  l.source[l.start:l.current],
		Literal: value.String(),
		Offset:  l.start,
		Line:    startLine,
		Column:  startColumn,
	})
}

// number handles integer and float literals
func (l *Lexer) number() {
	for l.isDigit(l.peek()) {
		l.advance()
	}

	isFloat := false
	if l.peek() == '.' && l.isDigit(l.peekNext()) {
		isFloat = true
		l.advance() // consume .

		for l.isDigit(l.peek()) {
			l.advance()
		}
	}

	lexeme := l.source[l.start:l.current]

	if isFloat {
		value, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			l.addError(fmt.Sprintf("Invalid float literal: %s", lexeme))
			return
		}
		l.addTokenWithLiteral(TOKEN_FLOAT_LITERAL, value)
	} else {
		value, err := strconv.ParseInt(lexeme, 10, 64)
		if err != nil {
			l.addError(fmt.Sprintf("Invalid integer literal: %s", lexeme))
			return
		}
		l.addTokenWithLiteral(TOKEN_INT_LITERAL, value)
	}
}

// identifier handles identifiers and keywords
func (l *Lexer) identifier() {
	for l.isAlphaNumeric(l.peek()) {
		l.advance()
	}

	text := l.source[l.start:l.current]

	tokenType, isKeyword := Keywords[text]
	if !isKeyword {
		tokenType = TOKEN_IDENTIFIER
	}

	switch tokenType {
	case TOKEN_TRUE:
		l.addTokenWithLiteral(tokenType, true)
	case TOKEN_FALSE:
		l.addTokenWithLiteral(tokenType, false)
	default:
		l.addToken(tokenType)
	}
}

// Helper methods

// isAtEnd checks if we've reached the end of the source
func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

// advance consumes and returns the current character
func (l *Lexer) advance() byte {
	if l.isAtEnd() {
		return 0
	}
	c := l.source[l.current]
	l.current++
	l.column++
	return c
}

// match checks if the current character matches expected and consumes it
func (l *Lexer) match(expected byte) bool {
	if l.isAtEnd() {
		return false
	}
	if l.source[l.current] != expected {
		return false
	}
	l.current++
	l.column++
	return true
}

// peek returns the current character without consuming it
func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.current]
}

// peekNext returns the next character without consuming
func (l *Lexer) peekNext() byte {
	if l.current+1 >= len(l.source) {
		return 0
	}
	return l.source[l.current+1]
}

// isDigit checks if a character is a digit
func (l *Lexer) isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// isAlpha checks if a character is alphabetic or underscore
func (l *Lexer) isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		c == '_'
}

// isAlphaNumeric checks if a character is alphanumeric or underscore
func (l *Lexer) isAlphaNumeric(c byte) bool {
	return l.isAlpha(c) || l.isDigit(c)
}

// addToken adds a token with the current lexeme
func (l *Lexer) addToken(tokenType TokenType) {
	l.addTokenWithLiteral(tokenType, nil)
}

// addTokenWithLiteral adds a token with a literal value
func (l *Lexer) addTokenWithLiteral(tokenType TokenType, literal interface{}) {
	lexeme := l.source[l.start:l.current]
	l.tokens = append(l.tokens, Token{
		Type:    tokenType,
		Lexeme:  lexeme,
		Literal: literal,
		Offset:  l.start,
		Line:    l.line,
		Column:  l.column - (l.current - l.start),
	})
}

// addError records a lexical error
func (l *Lexer) addError(message string) {
	lexeme := ""
	if l.start < len(l.source) {
		end := l.current
		if end > l.start+20 {
			end = l.start + 20
		}
		lexeme = l.source[l.start:end]
	}

	l.errors = append(l.errors, LexError{
		Message: message,
		Offset:  l.start,
		Line:    l.line,
		Column:  l.column - (l.current - l.start),
		Lexeme:  lexeme,
	})
}
