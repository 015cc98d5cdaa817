// Package errz defines the structured error type returned by the decoder.
//
// Every failure carries an ErrorKind and, when known, the byte offset,
// region and function it relates to. Sentinel errors are attached as the
// cause so callers can match them with errors.Is.
package errz

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// ErrFormat indicates malformed input: a truncated region, a bad magic,
	// an unknown opcode or an out-of-range index.
	ErrFormat ErrorKind = iota
	// ErrConsistency indicates well-formed data that contradicts itself,
	// such as a jump to an offset that holds no instruction.
	ErrConsistency
	// ErrIndirection indicates that an overflow indirection was requested
	// on a record that is not marked as overflowed.
	ErrIndirection
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrFormat:
		return "format error"
	case ErrConsistency:
		return "consistency error"
	case ErrIndirection:
		return "indirection error"
	default:
		return "error"
	}
}

var (
	ErrOutOfRange    = errors.New("read out of range")
	ErrWordTooLarge  = errors.New("bit fields exceed 32 bits")
	ErrInvalidMagic  = errors.New("invalid magic")
	ErrUnknownOpcode = errors.New("unknown opcode")
	ErrNoInstruction = errors.New("no instruction at jump target")
	ErrNotOverflowed = errors.New("function header is not overflowed")
)

// Error is a decoding failure with its location in the container.
type Error struct {
	Kind    ErrorKind
	Message string

	// Region names the table region being decoded, if any.
	Region string

	// Offset is the absolute byte offset of the failure, or -1.
	Offset int

	// Function is the function id the failure belongs to, or -1.
	Function int

	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	b.WriteString(": ")
	b.WriteString(e.Message)
	var where []string
	if e.Region != "" {
		where = append(where, "region "+e.Region)
	}
	if e.Function >= 0 {
		where = append(where, fmt.Sprintf("function %d", e.Function))
	}
	if e.Offset >= 0 {
		where = append(where, fmt.Sprintf("offset 0x%x", e.Offset))
	}
	if len(where) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(where, ", "))
		b.WriteString(")")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithOffset sets the byte offset of the error.
func (e *Error) WithOffset(offset int) *Error {
	e.Offset = offset
	return e
}

// WithRegion sets the region name of the error.
func (e *Error) WithRegion(region string) *Error {
	e.Region = region
	return e
}

// WithFunction sets the function id of the error.
func (e *Error) WithFunction(id int) *Error {
	e.Function = id
	return e
}

func newError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Offset:   -1,
		Function: -1,
		Cause:    cause,
	}
}

// Format returns a new format error. The cause may be nil.
func Format(cause error, format string, args ...any) *Error {
	return newError(ErrFormat, cause, format, args...)
}

// Consistency returns a new consistency error. The cause may be nil.
func Consistency(cause error, format string, args ...any) *Error {
	return newError(ErrConsistency, cause, format, args...)
}

// Indirection returns a new indirection error. The cause may be nil.
func Indirection(cause error, format string, args ...any) *Error {
	return newError(ErrIndirection, cause, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Annotate attaches a region and function id to err when it is an *Error
// that does not carry them yet. Other errors are returned unchanged.
func Annotate(err error, region string, function int) error {
	var e *Error
	if !errors.As(err, &e) {
		return err
	}
	if e.Region == "" {
		e.Region = region
	}
	if e.Function < 0 {
		e.Function = function
	}
	return err
}
