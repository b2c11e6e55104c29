package taq

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedTime      = errors.New("malformed time")
	ErrFieldCount         = errors.New("too few fields")
	ErrFieldParse         = errors.New("field parse error")
	ErrUnknownMessageType = errors.New("unknown message type")
)

// TimeError reports a source time that is not HH:MM:SS[.fraction].
type TimeError struct {
	Value  string
	Reason string
}

func (e *TimeError) Error() string {
	return fmt.Sprintf("malformed time %q: %s", e.Value, e.Reason)
}

func (e *TimeError) Is(target error) bool { return target == ErrMalformedTime }

// FieldCountError reports a line shorter than its decoder's schema.
type FieldCountError struct {
	Kind MsgKind
	Got  int
	Want int
}

func (e *FieldCountError) Error() string {
	return fmt.Sprintf("%s: got %d fields, want at least %d", e.Kind, e.Got, e.Want)
}

func (e *FieldCountError) Is(target error) bool { return target == ErrFieldCount }

// FieldParseError names the positional field that failed to parse.
type FieldParseError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldParseError) Error() string {
	return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldParseError) Unwrap() error { return e.Err }

func (e *FieldParseError) Is(target error) bool { return target == ErrFieldParse }
