package lexer

import (
	"fmt"
	"io"

	"github.com/thisisjab/boolscript/fault"
	"github.com/thisisjab/boolscript/script/token"
)

// Lexer produces tokens lazily, one per NextToken call.
type Lexer struct {
	input   []rune
	pos     int  // position of the current character in the input
	readPos int  // position of the next character to be read
	char    rune // current character being processed

	line   int // line of the current character
	column int // column of the current character

	last token.Position // scan point of the last match or failure
}

func New(input string) *Lexer {
	l := &Lexer{input: []rune(input), line: 1}
	l.readChar()
	return l
}

// NewFromReader reads the whole program from r.
func NewFromReader(r io.Reader) (*Lexer, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fault.New(fault.IOCode, "cannot read program").WithOriginal(err)
	}
	return New(string(b)), nil
}

func (l *Lexer) readChar() {
	if l.char == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}

	if l.readPos >= len(l.input) {
		l.char = 0
	} else {
		l.char = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

// Position reports the scan point of the last token returned, or of the
// character that failed to scan.
func (l *Lexer) Position() token.Position {
	return l.last
}

// NextToken returns the next token, or an END token once the input is
// exhausted. A *ScanError is returned when no lexical rule matches.
func (l *Lexer) NextToken() (token.Token, error) {
	l.skipWhitespace()

	start := token.Position{Line: l.line, Column: l.column}
	l.last = start

	if l.atEnd() {
		return token.Token{Type: token.END, Literal: "", Pos: start}, nil
	}

	var tok token.Token
	switch l.char {
	case '=':
		tok = token.Token{Type: token.ASSIGN, Literal: "="}
	case '(':
		tok = token.Token{Type: token.LPAREN, Literal: "("}
	case ')':
		tok = token.Token{Type: token.RPAREN, Literal: ")"}
	case '0', '1':
		// Digits never start an identifier, so a lone 0/1 is the longest match.
		tok = token.Token{Type: token.BOOL, Literal: string(l.char)}
	default:
		if isLetter(l.char) {
			return l.readWord(start), nil
		}
		return token.Token{}, &ScanError{Pos: start, Char: l.char}
	}

	tok.Pos = start
	l.readChar()
	return tok, nil
}

func (l *Lexer) readWord(start token.Position) token.Token {
	pos := l.pos
	for !l.atEnd() && (isLetter(l.char) || isDigit(l.char)) {
		l.readChar()
	}

	literal := string(l.input[pos:l.pos])

	return token.Token{Type: token.LookupIdent(literal), Literal: literal, Pos: start}
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() && isWhitespace(l.char) {
		l.readChar()
	}
}

func isLetter(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z'
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// ScanError reports input that matches no lexical rule.
type ScanError struct {
	Pos  token.Position
	Char rune
}

func (e *ScanError) Error() string {
	return e.Message()
}

func (e *ScanError) Message() string {
	return fmt.Sprintf("unexpected character %q", e.Char)
}

func (e *ScanError) Code() fault.Code {
	return fault.ScanCode
}

func (e *ScanError) Location() (int, int) {
	return e.Pos.Line, e.Pos.Column
}
