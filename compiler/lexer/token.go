package lexer

import "fmt"

// TokenType represents the type of a token in the Veld meta-model language
type TokenType int

const (
	// TOKEN_EOF marks the end of the token stream.
	TOKEN_EOF TokenType = iota
	// TOKEN_ERROR represents a lexical error encountered during scanning.
	TOKEN_ERROR
	// TOKEN_DOC_COMMENT contains the text of one '///' documentation line.
	TOKEN_DOC_COMMENT

	// Keywords - document structure
	TOKEN_USE     // use
	TOKEN_FROM    // from
	TOKEN_ENUM    // enum
	TOKEN_CLASS   // class
	TOKEN_EXTENDS // extends
	TOKEN_FN      // fn

	// Keywords - statements
	TOKEN_PASS   // pass
	TOKEN_RETURN // return

	// Keywords - expressions
	TOKEN_AND // and
	TOKEN_OR  // or
	TOKEN_NOT // not
	TOKEN_LET // let
	TOKEN_IN  // in

	// Literals
	TOKEN_IDENTIFIER     // id_short, Modelling_kind, ...
	TOKEN_INT_LITERAL    // 42
	TOKEN_FLOAT_LITERAL  // 3.14
	TOKEN_STRING_LITERAL // "hello"
	TOKEN_TRUE           // true
	TOKEN_FALSE          // false
	TOKEN_NULL           // null

	// Operators - single character
	TOKEN_AT     // @
	TOKEN_COLON  // :
	TOKEN_DOT    // .
	TOKEN_COMMA  // ,
	TOKEN_EQUALS // =
	TOKEN_LT     // <
	TOKEN_GT     // >

	// Operators - two character
	TOKEN_EQ              // ==
	TOKEN_NEQ             // !=
	TOKEN_LTE             // <=
	TOKEN_GTE             // >=
	TOKEN_FAT_ARROW       // =>
	TOKEN_ARROW           // ->
	TOKEN_DOUBLE_QUESTION // ??

	// Delimiters
	TOKEN_LBRACE   // {
	TOKEN_RBRACE   // }
	TOKEN_LPAREN   // (
	TOKEN_RPAREN   // )
	TOKEN_LBRACKET // [
	TOKEN_RBRACKET // ]
)

// TokenTypeNames maps token types to their string representations
var TokenTypeNames = map[TokenType]string{
	TOKEN_EOF:             "EOF",
	TOKEN_ERROR:           "ERROR",
	TOKEN_DOC_COMMENT:     "DOC_COMMENT",
	TOKEN_USE:             "USE",
	TOKEN_FROM:            "FROM",
	TOKEN_ENUM:            "ENUM",
	TOKEN_CLASS:           "CLASS",
	TOKEN_EXTENDS:         "EXTENDS",
	TOKEN_FN:              "FN",
	TOKEN_PASS:            "PASS",
	TOKEN_RETURN:          "RETURN",
	TOKEN_AND:             "AND",
	TOKEN_OR:              "OR",
	TOKEN_NOT:             "NOT",
	TOKEN_LET:             "LET",
	TOKEN_IN:              "IN",
	TOKEN_IDENTIFIER:      "IDENTIFIER",
	TOKEN_INT_LITERAL:     "INT_LITERAL",
	TOKEN_FLOAT_LITERAL:   "FLOAT_LITERAL",
	TOKEN_STRING_LITERAL:  "STRING_LITERAL",
	TOKEN_TRUE:            "TRUE",
	TOKEN_FALSE:           "FALSE",
	TOKEN_NULL:            "NULL",
	TOKEN_AT:              "AT",
	TOKEN_COLON:           "COLON",
	TOKEN_DOT:             "DOT",
	TOKEN_COMMA:           "COMMA",
	TOKEN_EQUALS:          "EQUALS",
	TOKEN_LT:              "LT",
	TOKEN_GT:              "GT",
	TOKEN_EQ:              "EQ",
	TOKEN_NEQ:             "NEQ",
	TOKEN_LTE:             "LTE",
	TOKEN_GTE:             "GTE",
	TOKEN_FAT_ARROW:       "FAT_ARROW",
	TOKEN_ARROW:           "ARROW",
	TOKEN_DOUBLE_QUESTION: "DOUBLE_QUESTION",
	TOKEN_LBRACE:          "LBRACE",
	TOKEN_RBRACE:          "RBRACE",
	TOKEN_LPAREN:          "LPAREN",
	TOKEN_RPAREN:          "RPAREN",
	TOKEN_LBRACKET:        "LBRACKET",
	TOKEN_RBRACKET:        "RBRACKET",
}

// String returns the string representation of a TokenType
func (t TokenType) String() string {
	if name, ok := TokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", t)
}

// Token represents a single lexical token in Veld source code
type Token struct {
	Type    TokenType   // The type of the token
	Lexeme  string      // The raw text of the token
	Literal interface{} // The parsed value (for literals and doc comments)
	Offset  int         // Byte offset into the source (0-indexed)
	Line    int         // Line number (1-indexed)
	Column  int         // Column number (1-indexed)
}

// String returns a string representation of the token
func (t Token) String() string {
	if t.Literal != nil {
		return fmt.Sprintf("%s '%s' (%v) at %d:%d",
			t.Type.String(), t.Lexeme, t.Literal, t.Line, t.Column)
	}
	return fmt.Sprintf("%s '%s' at %d:%d",
		t.Type.String(), t.Lexeme, t.Line, t.Column)
}

// Keywords maps reserved words to their token types
var Keywords = map[string]TokenType{
	"use":     TOKEN_USE,
	"from":    TOKEN_FROM,
	"enum":    TOKEN_ENUM,
	"class":   TOKEN_CLASS,
	"extends": TOKEN_EXTENDS,
	"fn":      TOKEN_FN,

	"pass":   TOKEN_PASS,
	"return": TOKEN_RETURN,

	"and": TOKEN_AND,
	"or":  TOKEN_OR,
	"not": TOKEN_NOT,
	"let": TOKEN_LET,
	"in":  TOKEN_IN,

	"true":  TOKEN_TRUE,
	"false": TOKEN_FALSE,
	"null":  TOKEN_NULL,
}

// LexError represents an error encountered during lexical analysis
type LexError struct {
	Message string // Error message
	Offset  int    // Byte offset where the error occurred
	Line    int    // Line number where error occurred
	Column  int    // Column number where error occurred
	Lexeme  string // The problematic text
}

// Error implements the error interface
func (e LexError) Error() string {
	return fmt.Sprintf("Lexical error at %d:%d: %s (near '%s')",
		e.Line, e.Column, e.Message, e.Lexeme)
}

// IsKeyword checks if a string is a Veld keyword
func IsKeyword(s string) bool {
	_, ok := Keywords[s]
	return ok
}
