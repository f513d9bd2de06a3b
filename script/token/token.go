package token

import (
	"fmt"
	"strings"
)

const (
	ILLEGAL Type = iota
	END

	// Identifiers + literals
	IDENTIFIER
	BOOL

	// Operators
	AND
	OR
	NOT
	ASSIGN

	// Delimiters
	LPAREN
	RPAREN

	// Keywords
	PRINT
)

type Type int

var typeNames = [...]string{
	ILLEGAL:    "ILLEGAL",
	END:        "END",
	IDENTIFIER: "IDENTIFIER",
	BOOL:       "BOOL",
	AND:        "and",
	OR:         "or",
	NOT:        "not",
	ASSIGN:     "=",
	LPAREN:     "(",
	RPAREN:     ")",
	PRINT:      "print",
}

// String returns the token class name for IDENTIFIER, BOOL and END, and the
// source spelling for keywords and operators.
func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// Position is a 1-based line and column in the program text.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Token struct {
	Type    Type
	Literal string
	Pos     Position
}

var keywords = map[string]Type{
	"print": PRINT,
	"and":   AND,
	"or":    OR,
	"not":   NOT,
}

var boolLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"1":     true,
	"false": false,
	"f":     false,
	"0":     false,
}

// LookupIdent classifies a scanned word. Keywords are case-sensitive, boolean
// literals are not.
func LookupIdent(ident string) Type {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	if _, ok := DecodeBool(ident); ok {
		return BOOL
	}
	return IDENTIFIER
}

// DecodeBool decodes the text of a BOOL token. true/t/1 and false/f/0 are
// accepted in any letter case.
func DecodeBool(literal string) (value bool, ok bool) {
	value, ok = boolLiterals[strings.ToLower(literal)]
	return value, ok
}
