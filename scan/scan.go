// Package scan is the runtime shared by every generated lexer.
//
// A generated lexer is a chain of automata, one per token definition, laid
// out in a single global state space. Scanning a token starts in state 0,
// the start state of the first definition. When a definition fails, the
// cursor is reset to the start of the lexeme and the next definition in the
// chain is tried. When the last definition fails the scan stops: at the end
// of input this is io.EOF, anywhere else it is a *ScanError.
//
// Example usage with a generated lexer:
//
//	lx := NewLexer(input)
//	for {
//	    tok, err := lx.NextToken()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(tok.Tag, tok.Text)
//	}
package scan

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// EOF is returned by Session.NextChar when the cursor is at the end of the
// input. It never equals a byte, so no condition matches it.
const EOF = -1

// Terminal is the fail target of every state in the last definition of a
// chain.
const Terminal = -1

// DefaultContextWindow is the number of bytes before the failure offset
// quoted by a ScanError.
const DefaultContextWindow = 20

// Config configures a Session.
type Config struct {
	// ContextWindow bounds the input quoted before the failure offset in a
	// ScanError. The quote is further clipped to start after the last
	// newline. Default: 20.
	ContextWindow int

	// Logger receives a debug record for every accepted and failed
	// definition. Default: discard.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with the default context window and a
// discarding logger.
func DefaultConfig() Config {
	return Config{
		ContextWindow: DefaultContextWindow,
		Logger:        slog.New(slog.DiscardHandler),
	}
}

// Validate returns an error if the Config is unusable.
func (c Config) Validate() error {
	if c.ContextWindow < 0 {
		return fmt.Errorf("scan: context window %d is negative", c.ContextWindow)
	}
	return nil
}

// ApplyDefaults returns a Config with defaults applied for any zero values.
func (c Config) ApplyDefaults() Config {
	result := c
	if result.ContextWindow == 0 {
		result.ContextWindow = DefaultContextWindow
	}
	if result.Logger == nil {
		result.Logger = slog.New(slog.DiscardHandler)
	}
	return result
}

// Token is one token produced by Session.NextToken.
type Token struct {
	// Tag is the numeric tag of the definition that matched.
	Tag int
	// Value is whatever the rule action returned.
	Value any
	// Text is the lexeme.
	Text string
	// Start and End delimit the lexeme in the input, End exclusive.
	Start, End int
}

func (t Token) String() string {
	return fmt.Sprintf("%d %q [%d:%d]", t.Tag, t.Text, t.Start, t.End)
}

// ErrNoMatch is wrapped by every ScanError.
var ErrNoMatch = errors.New("no definition matches")

// ScanError is returned when no definition matches at Offset and the input
// is not exhausted.
type ScanError struct {
	Offset int
	// Context is the input preceding Offset, up to the context window and
	// never crossing a newline, followed by the byte at Offset.
	Context string
	// Caret is a run of '-' as long as the part of Context before Offset,
	// followed by '^'.
	Caret string
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan: %v at offset %d:\n%s\n%s", ErrNoMatch, e.Offset, e.Context, e.Caret)
}

func (e *ScanError) Unwrap() error {
	return ErrNoMatch
}

func newScanError(input string, offset, window int) *ScanError {
	start := max(offset-window, 0)
	if nl := strings.LastIndexByte(input[start:offset], '\n'); nl >= 0 {
		start += nl + 1
	}
	end := min(offset+1, len(input))
	return &ScanError{
		Offset:  offset,
		Context: input[start:end],
		Caret:   strings.Repeat("-", offset-start) + "^",
	}
}

// ErrReadPastEnd is returned when a program reads beyond the EOF sentinel.
// It indicates a broken program, not bad input.
var ErrReadPastEnd = errors.New("scan: read past end of input")
