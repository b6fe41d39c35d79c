package scan

import (
	"errors"
	"io"
	"log/slog"
)

// Session holds the state of one scan over one input. A Session is not safe
// for concurrent use; separate sessions over the same Program are
// independent.
type Session struct {
	input string
	prog  Program
	rules *Rules
	cfg   Config
	log   *slog.Logger

	cursor int // next byte to read
	begin  int // start of the lexeme being scanned
	state  int

	start, end int // last accepted lexeme
	text       string

	vars map[string]any
	err  error
}

// NewSession starts a scan of input with the default Config.
func NewSession(input string, prog Program, rules *Rules) *Session {
	s, _ := NewSessionWithConfig(input, prog, rules, DefaultConfig()) //nolint:errcheck // the default config is valid
	return s
}

// NewSessionWithConfig starts a scan of input. Zero fields of cfg take
// their defaults.
func NewSessionWithConfig(input string, prog Program, rules *Rules, cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.ApplyDefaults()
	return &Session{
		input: input,
		prog:  prog,
		rules: rules,
		cfg:   cfg,
		log:   cfg.Logger,
	}, nil
}

// NextToken scans the next token. Lexemes whose action returns a nil value
// are skipped. At the end of input it returns io.EOF, and keeps returning
// it. Errors returned by actions are passed through unchanged.
func (s *Session) NextToken() (Token, error) {
	if s.err != nil {
		return Token{}, s.err
	}
	for {
		out := s.prog.Step(s, s.state)
		if s.err != nil {
			return Token{}, s.err
		}

		switch out.kind {
		case outcomeGoto:
			s.state = out.arg
		case outcomeAccept:
			if s.cursor == s.begin {
				// An empty lexeme would never advance the scan.
				if err := s.fail(); err != nil {
					return Token{}, err
				}
				continue
			}
			tok, ok, err := s.accept(out.arg)
			if err != nil {
				return Token{}, err
			}
			if ok {
				return tok, nil
			}
		case outcomeFail:
			if err := s.fail(); err != nil {
				return Token{}, err
			}
		}
	}
}

// Tokens scans the rest of the input.
func (s *Session) Tokens() ([]Token, error) {
	var toks []Token
	for {
		tok, err := s.NextToken()
		if errors.Is(err, io.EOF) {
			return toks, nil
		}
		if err != nil {
			return toks, err
		}
		toks = append(toks, tok)
	}
}

func (s *Session) fail() error {
	next := s.prog.FailTarget(s.state)
	s.log.Debug("definition failed", "state", s.state, "next", next, "offset", s.begin)
	s.cursor = s.begin
	if next == Terminal {
		if s.begin >= len(s.input) {
			s.err = io.EOF
		} else {
			s.err = newScanError(s.input, s.begin, s.cfg.ContextWindow)
		}
		return s.err
	}
	s.state = next
	return nil
}

func (s *Session) accept(tag int) (Token, bool, error) {
	s.start, s.end = s.begin, s.cursor
	s.text = s.input[s.start:s.end]
	s.begin = s.cursor
	s.state = 0
	s.log.Debug("accepted", "tag", tag, "start", s.start, "end", s.end)

	action := s.rules.lookup(tag, s.text)
	if action == nil {
		return Token{}, false, nil
	}
	v, err := action(s)
	if err != nil || v == nil {
		return Token{}, false, err
	}
	return Token{Tag: tag, Value: v, Text: s.text, Start: s.start, End: s.end}, true, nil
}

// NextChar reads the byte under the cursor and advances. At the end of the
// input it returns EOF once; reading further is an error that ends the
// session.
func (s *Session) NextChar() int {
	i := s.cursor
	if i > len(s.input) {
		s.err = ErrReadPastEnd
		return EOF
	}
	s.cursor++
	if i == len(s.input) {
		return EOF
	}
	return int(s.input[i])
}

// Retract moves the cursor back one byte, never before the start of the
// current lexeme.
func (s *Session) Retract() {
	if s.cursor > s.begin {
		s.cursor--
	}
}

// Start returns the offset of the last accepted lexeme.
func (s *Session) Start() int { return s.start }

// End returns the exclusive end offset of the last accepted lexeme.
func (s *Session) End() int { return s.end }

// Text returns the last accepted lexeme.
func (s *Session) Text() string { return s.text }

// Cursor returns the offset of the next byte to read.
func (s *Session) Cursor() int { return s.cursor }

// AtEOF reports whether the cursor has consumed the whole input.
func (s *Session) AtEOF() bool { return s.cursor >= len(s.input) }

// Vars is a per-session scratch map for rule actions.
func (s *Session) Vars() map[string]any {
	if s.vars == nil {
		s.vars = map[string]any{}
	}
	return s.vars
}
