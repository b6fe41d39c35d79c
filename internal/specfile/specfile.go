// Package specfile reads lexer specification files.
//
// A specification has four sections, introduced by header lines in this
// order:
//
//	%%Constants%%
//	EOF = -1, VERSION = "1.0"
//
//	%%Definitions%%
//	NUMBER: [0-9]+
//	OPERATOR: [-+*/]
//	    \*\*
//
//	%%Rules%%
//	NUMBER: return lx.Text(), nil
//	+: return "plus", nil
//
//	%%Code%%
//	// verbatim Go
//
// Blank lines and lines starting with '#' are ignored outside the code
// section. Lines that fit no syntax are skipped with a warning.
package specfile

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode"

	"github.com/alecthomas/participle/v2"
)

// Section identifies a part of a specification file.
type Section int

const (
	SectionNone Section = iota
	SectionConstants
	SectionDefinitions
	SectionRules
	SectionCode
)

var sectionHeaders = map[Section]string{
	SectionConstants:   "%%constants%%",
	SectionDefinitions: "%%definitions%%",
	SectionRules:       "%%rules%%",
	SectionCode:        "%%code%%",
}

func (s Section) String() string {
	if h, ok := sectionHeaders[s]; ok {
		return strings.Trim(h, "%")
	}
	return "none"
}

// Constant is one name=value pair. Value is kept as written.
type Constant struct {
	Name  string
	Value string
}

// Definition is a named token definition with one or more patterns.
type Definition struct {
	Name     string
	Patterns []string
	Line     int
}

// Rule binds an action body to a definition name or a literal lexeme.
type Rule struct {
	Key  string
	Body string
	Line int
}

// Warning records a skipped line.
type Warning struct {
	Line   int
	Text   string
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s: %q", w.Line, w.Reason, w.Text)
}

// Spec is a parsed specification file.
type Spec struct {
	Name        string
	Constants   []Constant
	Definitions []Definition
	Rules       []Rule
	Code        []string
	Warnings    []Warning
}

// Constant returns the value of the constant called name.
func (s *Spec) Constant(name string) (string, bool) {
	for _, c := range s.Constants {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

type constantLine struct {
	Pairs []*constantPair `parser:"@@ ( (',' | ';')? @@ )*"`
}

type constantPair struct {
	Name  string `parser:"@Ident '='"`
	Value string `parser:"@( '-'? ( Int | Float ) | String | RawString | Char | Ident )"`
}

var constantParser = participle.MustBuild[constantLine]()

// Parser reads specification files, logging skipped lines to its logger.
type Parser struct {
	logger *slog.Logger
}

// NewParser returns a Parser logging to logger, or to slog.Default when
// logger is nil.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// ParseFile reads the specification file at path.
func (p *Parser) ParseFile(path string) (*Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.Parse(f, path)
}

// Parse reads a specification from r. name is used in warnings and
// errors. Only I/O failures are errors; malformed lines become warnings.
func (p *Parser) Parse(r io.Reader, name string) (*Spec, error) {
	st := &parseState{
		parser:  p,
		spec:    &Spec{Name: name},
		defined: map[string]int{},
		ruled:   map[string]int{},
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		st.line++
		st.feed(strings.TrimRightFunc(sc.Text(), unicode.IsSpace))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return st.spec, nil
}

type parseState struct {
	parser  *Parser
	spec    *Spec
	section Section
	line    int
	defined map[string]int // definition name -> index
	ruled   map[string]int // rule key -> index
}

func (st *parseState) warn(text, reason string) {
	w := Warning{Line: st.line, Text: text, Reason: reason}
	st.spec.Warnings = append(st.spec.Warnings, w)
	st.parser.logger.Warn("Ignoring specification line",
		slog.String("file", st.spec.Name),
		slog.Int("line", st.line),
		slog.String("section", st.section.String()),
		slog.String("reason", reason),
		slog.String("text", text))
}

func (st *parseState) feed(line string) {
	if st.section == SectionCode {
		st.spec.Code = append(st.spec.Code, line)
		return
	}
	if next, ok := header(line); ok {
		if next <= st.section {
			st.warn(line, fmt.Sprintf("section %s out of order", next))
			return
		}
		st.section = next
		st.parser.logger.Debug("Starting section", slog.String("file", st.spec.Name), slog.String("section", next.String()))
		return
	}

	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	switch st.section {
	case SectionConstants:
		st.constants(line)
	case SectionDefinitions:
		st.definition(line)
	case SectionRules:
		st.rule(line)
	default:
		st.warn(line, "text before the first section")
	}
}

func header(line string) (Section, bool) {
	lower := strings.ToLower(strings.TrimSpace(line))
	for _, s := range []Section{SectionConstants, SectionDefinitions, SectionRules, SectionCode} {
		if strings.HasPrefix(lower, sectionHeaders[s]) {
			return s, true
		}
	}
	return SectionNone, false
}

func (st *parseState) constants(line string) {
	parsed, err := constantParser.ParseString(st.spec.Name, line)
	if err != nil {
		st.warn(line, err.Error())
		return
	}
	for _, pair := range parsed.Pairs {
		st.spec.Constants = append(st.spec.Constants, Constant{Name: pair.Name, Value: pair.Value})
	}
}

func (st *parseState) definition(line string) {
	if line[0] == ' ' || line[0] == '\t' {
		if len(st.spec.Definitions) == 0 {
			st.warn(line, "continuation without a definition")
			return
		}
		last := &st.spec.Definitions[len(st.spec.Definitions)-1]
		last.Patterns = append(last.Patterns, strings.TrimSpace(line))
		return
	}

	name, pattern, ok := strings.Cut(line, ":")
	pattern = strings.TrimLeftFunc(pattern, unicode.IsSpace)
	if !ok || !isName(name) || pattern == "" {
		st.warn(line, "expected NAME: pattern")
		return
	}
	if _, dup := st.defined[name]; dup {
		st.warn(line, fmt.Sprintf("definition %s repeated", name))
		return
	}
	st.defined[name] = len(st.spec.Definitions)
	st.spec.Definitions = append(st.spec.Definitions, Definition{
		Name:     name,
		Patterns: []string{pattern},
		Line:     st.line,
	})
}

func (st *parseState) rule(line string) {
	key, body, ok := strings.Cut(line, ":")
	body = strings.TrimSpace(body)
	if !ok || key == "" || body == "" {
		st.warn(line, "expected KEY: body")
		return
	}
	r := Rule{Key: key, Body: body, Line: st.line}
	if i, dup := st.ruled[key]; dup {
		st.warn(line, fmt.Sprintf("rule %s replaces line %d", key, st.spec.Rules[i].Line))
		st.spec.Rules[i] = r
		return
	}
	st.ruled[key] = len(st.spec.Rules)
	st.spec.Rules = append(st.spec.Rules, r)
}

func isName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		case i > 0 && (r == '_' || r >= '0' && r <= '9'):
		default:
			return false
		}
	}
	return true
}
