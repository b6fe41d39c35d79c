package regex

import (
	"errors"
	"fmt"
)

// Compile-time failures. Compile returns them wrapped in an *Error.
var (
	ErrUnmatchedLParen   = errors.New("unmatched '('")
	ErrUnmatchedRParen   = errors.New("unmatched ')'")
	ErrMissingOperand    = errors.New("operator applies to nothing")
	ErrTrailingBackslash = errors.New("trailing backslash")
	ErrUnterminatedClass = errors.New("unterminated character class")
	ErrEmptyClass        = errors.New("empty character class")
	ErrBadRange          = errors.New("bad range in character class")
	ErrMalformed         = errors.New("malformed pattern")
)

// Error reports a pattern that could not be compiled.
type Error struct {
	Pattern string
	Offset  int // byte offset in Pattern, -1 when unknown
	Err     error
}

func (e *Error) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("regex %q: %v", e.Pattern, e.Err)
	}
	return fmt.Sprintf("regex %q at offset %d: %v", e.Pattern, e.Offset, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(pattern string, offset int, err error) *Error {
	return &Error{Pattern: pattern, Offset: offset, Err: err}
}
