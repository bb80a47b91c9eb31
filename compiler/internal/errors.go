package internal

import (
	"errors"
	"fmt"
	"strings"
)

// LexicalError is returned by the tokenizer, scanning stops at the first one.
type LexicalError struct {
	Line   int
	Column int
	Msg    string
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("Tokenizer: tokenizer error at line %d, column %d, msg: %s", e.Line, e.Column, e.Msg)
}

// SyntaxError is returned by the parser. No partial ast is returned with it.
type SyntaxError struct {
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Parser: syntax error at line %d, column %d, msg: %s", e.Line, e.Column, e.Msg)
}

// SemanticError carries every diagnostic collected by the checker.
type SemanticError struct {
	Diagnostics []string
}

func (e *SemanticError) Error() string {
	return "Checker: " + strings.Join(e.Diagnostics, "\n")
}

// InternalError means an earlier stage handed over a malformed ast. It is never caused by
// user input that passed the checker.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string {
	return "Generator: internal error: " + e.Msg
}

func makeInternalError(format string, args ...interface{}) error {
	return &InternalError{Msg: fmt.Sprintf(format, args...)}
}

// Diagnostics returns the user facing messages of err, one per entry.
func Diagnostics(err error) []string {
	var semanticErr *SemanticError
	if errors.As(err, &semanticErr) {
		return semanticErr.Diagnostics
	}
	if err == nil {
		return nil
	}
	return []string{err.Error()}
}

// diagnostic is one semantic error, it renders as "line:column: msg".
type diagnostic struct {
	Pos
	Msg string
}

func (d *diagnostic) Error() string {
	return fmt.Sprintf("%d:%d: %s", d.Line, d.Column, d.Msg)
}

func makeSemanticError(pos Pos, format string, args ...interface{}) error {
	return &diagnostic{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
