package parser

import (
	"fmt"
	"slices"
	"strings"

	"github.com/thisisjab/boolscript/fault"
	"github.com/thisisjab/boolscript/script/lexer"
	"github.com/thisisjab/boolscript/script/terminal"
	"github.com/thisisjab/boolscript/script/token"
)

// StatementHandler receives the terminal record of every recognized statement.
// The record is reused after Execute returns.
type StatementHandler interface {
	Execute(rec *terminal.Record) error
}

// HandlerFunc adapts a function to StatementHandler.
type HandlerFunc func(rec *terminal.Record) error

func (f HandlerFunc) Execute(rec *terminal.Record) error {
	return f(rec)
}

// FIRST and FOLLOW sets of the grammar.
var (
	firstStmt     = []token.Type{token.IDENTIFIER, token.PRINT}
	firstExpr     = []token.Type{token.LPAREN, token.IDENTIFIER, token.BOOL, token.NOT}
	firstValue    = []token.Type{token.LPAREN, token.IDENTIFIER, token.BOOL}
	followExpr    = []token.Type{token.IDENTIFIER, token.PRINT, token.RPAREN, token.END}
	followTerm    = []token.Type{token.OR, token.IDENTIFIER, token.PRINT, token.RPAREN, token.END}
	stmtListSet   = []token.Type{token.IDENTIFIER, token.PRINT, token.END}
	termTailSet   = append([]token.Type{token.OR}, followExpr...)
	factorTailSet = append([]token.Type{token.AND}, followTerm...)
)

// Parser is a predictive recursive-descent recognizer with one token of
// lookahead. It records the terminals of each statement and hands them to
// its StatementHandler before moving on.
type Parser struct {
	l        *lexer.Lexer
	curToken token.Token
	record   terminal.Record
	handler  StatementHandler

	statements int
}

func New(l *lexer.Lexer, handler StatementHandler) *Parser {
	return &Parser{
		l:       l,
		handler: handler,
	}
}

// Statements reports how many statements were recognized and executed.
func (p *Parser) Statements() int {
	return p.statements
}

func (p *Parser) nextToken() error {
	tok, err := p.l.NextToken()
	if err != nil {
		return err
	}
	p.curToken = tok
	return nil
}

// Parse runs the program to completion. It stops at the first scan, syntax
// or handler error and returns it unchanged.
func (p *Parser) Parse() error {
	if err := p.nextToken(); err != nil {
		return err
	}
	return p.stmtList()
}

// match consumes the lookahead if it is of the expected type, recording its
// resolved symbol.
func (p *Parser) match(rule string, expected token.Type) error {
	if p.curToken.Type != expected {
		return p.unexpected(rule, expected)
	}

	p.record.Append(terminal.FromToken(p.curToken))
	return p.nextToken()
}

func (p *Parser) unexpected(rule string, expected ...token.Type) *SyntaxError {
	return &SyntaxError{
		Rule:     rule,
		Expected: expected,
		Found:    p.curToken,
	}
}

func (p *Parser) stmtList() error {
	for {
		switch p.curToken.Type {
		case token.IDENTIFIER, token.PRINT:
			if err := p.stmt(); err != nil {
				return err
			}
			if err := p.handler.Execute(&p.record); err != nil {
				return err
			}
			p.statements++
			p.record.Reset()
		case token.END:
			return nil
		default:
			return p.unexpected("stmt_list", stmtListSet...)
		}
	}
}

func (p *Parser) stmt() error {
	switch p.curToken.Type {
	case token.IDENTIFIER:
		if err := p.match("stmt", token.IDENTIFIER); err != nil {
			return err
		}
		if err := p.match("stmt", token.ASSIGN); err != nil {
			return err
		}
		return p.expr()
	case token.PRINT:
		if err := p.match("stmt", token.PRINT); err != nil {
			return err
		}
		return p.expr()
	default:
		return p.unexpected("stmt", firstStmt...)
	}
}

func (p *Parser) expr() error {
	if !slices.Contains(firstExpr, p.curToken.Type) {
		return p.unexpected("expr", firstExpr...)
	}
	if err := p.term(); err != nil {
		return err
	}
	return p.termTail()
}

func (p *Parser) termTail() error {
	for {
		switch {
		case p.curToken.Type == token.OR:
			if err := p.match("term_tail", token.OR); err != nil {
				return err
			}
			if err := p.term(); err != nil {
				return err
			}
		case slices.Contains(followExpr, p.curToken.Type):
			return nil
		default:
			return p.unexpected("term_tail", termTailSet...)
		}
	}
}

func (p *Parser) term() error {
	if !slices.Contains(firstExpr, p.curToken.Type) {
		return p.unexpected("term", firstExpr...)
	}
	if err := p.factor(); err != nil {
		return err
	}
	return p.factorTail()
}

func (p *Parser) factorTail() error {
	for {
		switch {
		case p.curToken.Type == token.AND:
			if err := p.match("factor_tail", token.AND); err != nil {
				return err
			}
			if err := p.factor(); err != nil {
				return err
			}
		case slices.Contains(followTerm, p.curToken.Type):
			return nil
		default:
			return p.unexpected("factor_tail", factorTailSet...)
		}
	}
}

func (p *Parser) factor() error {
	switch p.curToken.Type {
	case token.LPAREN, token.IDENTIFIER, token.BOOL:
		return p.value()
	case token.NOT:
		if err := p.match("factor", token.NOT); err != nil {
			return err
		}
		return p.value()
	default:
		return p.unexpected("factor", firstExpr...)
	}
}

func (p *Parser) value() error {
	switch p.curToken.Type {
	case token.LPAREN:
		if err := p.match("value", token.LPAREN); err != nil {
			return err
		}
		if err := p.expr(); err != nil {
			return err
		}
		return p.match("value", token.RPAREN)
	case token.IDENTIFIER:
		return p.match("value", token.IDENTIFIER)
	case token.BOOL:
		return p.match("value", token.BOOL)
	default:
		return p.unexpected("value", firstValue...)
	}
}

// SyntaxError reports a lookahead token outside the set a grammar rule accepts.
type SyntaxError struct {
	Rule     string
	Expected []token.Type
	Found    token.Token
}

func (e *SyntaxError) Error() string {
	return e.Message()
}

func (e *SyntaxError) Message() string {
	names := make([]string, len(e.Expected))
	for i, t := range e.Expected {
		names[i] = t.String()
	}

	want := names[0]
	if len(names) > 1 {
		want = "one of " + strings.Join(names, ", ")
	}

	found := e.Found.Type.String()
	if e.Found.Type != token.END && e.Found.Literal != found {
		found = fmt.Sprintf("%s %q", found, e.Found.Literal)
	}

	return fmt.Sprintf("in %s: expected %s but found %s", e.Rule, want, found)
}

func (e *SyntaxError) Code() fault.Code {
	return fault.SyntaxCode
}

func (e *SyntaxError) Location() (int, int) {
	return e.Found.Pos.Line, e.Found.Pos.Column
}
