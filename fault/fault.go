package fault

import (
	"errors"
	"fmt"
)

type Code string

const (
	UnknownCode         Code = "unknown"
	BadInputCode        Code = "bad_input"
	IOCode              Code = "io"
	ScanCode            Code = "scan_error"
	SyntaxCode          Code = "syntax_error"
	UnboundVariableCode Code = "unbound_variable"
	VerificationCode    Code = "verification_failed"
)

// Label is the category printed in front of a diagnostic line.
func (c Code) Label() string {
	switch c {
	case ScanCode:
		return "Scanner Error"
	case SyntaxCode:
		return "Parser Error"
	case UnboundVariableCode:
		return "Run Error"
	case VerificationCode:
		return "Verification Error"
	case BadInputCode:
		return "Input Error"
	case IOCode:
		return "IO Error"
	default:
		return "Error"
	}
}

// Diagnostic is implemented by every error that can be reported against a
// location in the program text. Location returns zero values when unknown.
type Diagnostic interface {
	error
	Code() Code
	Message() string
	Location() (line, column int)
}

type FieldErrorsMetadata map[string][]string

// Fault is the general purpose error value used outside the script packages.
type Fault struct {
	code     Code
	message  string
	line     int
	column   int
	metadata any
	original error
}

func New(code Code, message string) Fault {
	return Fault{
		code:    code,
		message: message,
	}
}

func (f Fault) WithMetadata(metadata any) Fault {
	e := f
	e.metadata = metadata
	return e
}

func (f Fault) WithOriginal(original error) Fault {
	e := f
	e.original = original
	return e
}

func (f Fault) WithLocation(line, column int) Fault {
	e := f
	e.line = line
	e.column = column
	return e
}

func (f Fault) Code() Code {
	return f.code
}

func (f Fault) Message() string {
	return f.message
}

func (f Fault) Location() (int, int) {
	return f.line, f.column
}

func (f Fault) Metadata() any {
	return f.metadata
}

func (f Fault) Original() error {
	return f.original
}

func (f Fault) Unwrap() error {
	return f.original
}

func (f Fault) Error() string {
	if f.original != nil {
		return fmt.Sprintf("%s: %v", f.message, f.original)
	}
	return f.message
}

// CodeOf returns the code of the first Diagnostic in err's chain.
func CodeOf(err error) Code {
	var d Diagnostic
	if errors.As(err, &d) {
		return d.Code()
	}
	return UnknownCode
}

// Format renders err as the single diagnostic line shown to users, e.g.
//
//	Parser Error: in value: expected one of (, IDENTIFIER, BOOL but found = at line 1 char 5
func Format(err error) string {
	if err == nil {
		return ""
	}

	var d Diagnostic
	if !errors.As(err, &d) {
		return fmt.Sprintf("%s: %v", UnknownCode.Label(), err)
	}

	out := fmt.Sprintf("%s: %s", d.Code().Label(), d.Error())
	if line, column := d.Location(); line > 0 {
		out += fmt.Sprintf(" at line %d char %d", line, column)
	}
	return out
}
