// Package diag carries the diagnostics produced while lowering declarations.
package diag

import (
	"fmt"

	"github.com/pkg/errors"
)

type Kind int

const (
	UnsupportedConstruct Kind = iota
	MalformedAttributes
	ContractMismatch
	ShapeMismatch
	DuplicateName
	VisibilityViolation
)

var kindNames = map[Kind]string{
	UnsupportedConstruct: "unsupported",
	MalformedAttributes:  "malformed-attributes",
	ContractMismatch:     "contract-mismatch",
	ShapeMismatch:        "shape-mismatch",
	DuplicateName:        "duplicate-name",
	VisibilityViolation:  "visibility",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Span locates a declaration or clause in the host's source files.
type Span struct {
	File string `yaml:"file,omitempty"`
	Line int    `yaml:"line,omitempty"`
	Col  int    `yaml:"col,omitempty"`
}

func (s Span) IsZero() bool {
	return s == Span{}
}

func (s Span) String() string {
	if s.IsZero() {
		return "<unknown>"
	}
	if s.Col == 0 {
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Col)
}

// Error is a single user-facing failure for one declaration.
type Error struct {
	Kind Kind
	Span Span
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Span, e.Msg)
}

// String renders the diagnostic the way the CLI prints it.
func (e *Error) String() string {
	head := Colour(31, fmt.Sprintf("error[%s]: %s\n", e.Kind, e.Msg))
	loc := Colour(33, fmt.Sprintf("  --> %s\n", e.Span))
	return head + loc
}

func Errorf(kind Kind, span Span, format string, args ...interface{}) error {
	return &Error{Kind: kind, Span: span, Msg: fmt.Sprintf(format, args...)}
}

func Err(span Span, msg string) error {
	return &Error{Kind: ContractMismatch, Span: span, Msg: msg}
}

// Unsupported reports a host construct the verifier does not model.
func Unsupported(span Span, what string) error {
	return &Error{
		Kind: UnsupportedConstruct,
		Span: span,
		Msg:  fmt.Sprintf("The verifier does not yet support the following feature: %s", what),
	}
}

// AsError digs the diagnostic out of a possibly wrapped error.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	de, ok := errors.Cause(err).(*Error)
	return de, ok
}

func Colour(color int, str string) string {
	return fmt.Sprintf("\033[%dm%s\033[0m", color, str)
}
