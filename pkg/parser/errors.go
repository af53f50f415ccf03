package parser

import (
	"fmt"

	"github.com/pipelang/pipelang/pkg/token"
)

// ParseError represents a parsing error with position information.
type ParseError struct {
	Pos     token.Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Common error messages.
const (
	ErrUnterminatedString = "unterminated string literal"
	ErrUnexpectedToken    = "unexpected token %s, expected %s"
	ErrExpectedStage      = "expected a pipeline stage after |>"
	ErrJoinRequiresOn     = "%s requires an on = <condition> argument"
	ErrCrossJoinHasOn     = "cross_join does not take an on condition"
	ErrUnknownJoinType    = "unknown join type %q"
	ErrDuplicateLet       = "duplicate let binding %q"
)
