// Package regex compiles the extended regular expressions used by token
// definitions into deterministic automata.
//
// A pattern goes through four stages: character classes are rewritten into
// alternations, the infix pattern is converted to a postfix token stream,
// the postfix stream is turned into a Thompson NFA, and subset construction
// derives a DFA over the symbols the pattern actually uses.
package regex

import "errors"

// Regexp is a compiled pattern. It is read-only once Compile returns and
// may be shared between goroutines.
type Regexp struct {
	Pattern   string
	Rewritten string
	Postfix   []Token
	NFA       *NFA
	DFA       *DFA
}

// Compile runs the whole pipeline for one pattern.
func Compile(pattern string) (*Regexp, error) {
	rewritten, err := Rewrite(pattern)
	if err != nil {
		return nil, err
	}

	postfix, err := Postfix(rewritten)
	if err != nil {
		// Offsets refer to the rewritten text, report the user's pattern.
		var e *Error
		if errors.As(err, &e) {
			e.Pattern = pattern
			if rewritten != pattern {
				e.Offset = -1
			}
		}
		return nil, err
	}

	nfa, err := Thompson(postfix)
	if err != nil {
		return nil, newError(pattern, -1, err)
	}

	return &Regexp{
		Pattern:   pattern,
		Rewritten: rewritten,
		Postfix:   postfix,
		NFA:       nfa,
		DFA:       Determinize(nfa),
	}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(pattern string) *Regexp {
	re, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return re
}

// MatchNFA reports whether input as a whole matches, simulating the NFA.
func (re *Regexp) MatchNFA(input string) bool {
	return re.NFA.Match(input)
}

// MatchDFA reports whether input as a whole matches, walking the DFA.
func (re *Regexp) MatchDFA(input string) bool {
	return re.DFA.Match(input)
}
