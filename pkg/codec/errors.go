package codec

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Kind categorizes a decode failure.
type Kind string

const (
	// KindTruncated means the stream ended in the middle of a record.
	KindTruncated Kind = "truncated"
	// KindInvalidData means a complete record held bytes that could not be
	// turned into a value.
	KindInvalidData Kind = "invalid_data"
)

// Error is returned for decode failures the codec itself detects.
// Failures of the underlying reader or writer are returned unchanged.
type Error struct {
	Kind   Kind
	Detail string
	Cause  error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString("codec: ")
	b.WriteString(string(e.Kind))

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a codec error of the same kind
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Sentinels for errors.Is checks against the error kind.
var (
	ErrTruncated   = &Error{Kind: KindTruncated}
	ErrInvalidData = &Error{Kind: KindInvalidData}
)

// Causes attached to KindInvalidData errors from the compiled-function codec.
var (
	ErrMalformedPayload = errors.New("payload is not a bit-packed function")
	ErrUncompilable     = errors.New("function rejected by compiler")
)

func truncated(format string, args ...any) *Error {
	return &Error{
		Kind:   KindTruncated,
		Detail: fmt.Sprintf(format, args...),
		Cause:  io.ErrUnexpectedEOF,
	}
}

func invalidData(cause error, format string, args ...any) *Error {
	return &Error{
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf(format, args...),
		Cause:  cause,
	}
}
