// Package lexgen turns lexer specification files into scanners. Load builds
// the automaton chain and runs it directly; Generate writes it out as a Go
// lexer.
package lexgen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/KromDaniel/lexgen/internal/chain"
	"github.com/KromDaniel/lexgen/internal/codegen"
	"github.com/KromDaniel/lexgen/internal/compiler"
	"github.com/KromDaniel/lexgen/internal/regex"
	"github.com/KromDaniel/lexgen/internal/specfile"
	"github.com/KromDaniel/lexgen/scan"
)

// ErrNoDefinitions is returned for a specification without definitions.
var ErrNoDefinitions = errors.New("specification has no definitions")

// Options configures the generation process.
type Options struct {
	// SpecFile is the path of the specification file
	SpecFile string

	// OutputFile is the path where generated code will be written
	OutputFile string

	// Package is the Go package name for the generated code
	Package string

	// Name is the generated lexer type (default "Lexer")
	Name string

	// Parallelism bounds how many definitions are compiled at once (0 means no bound)
	Parallelism int

	// Verbose logs layout and generation decisions to stderr
	Verbose bool

	// Logger receives specification warnings (default slog.Default())
	Logger *slog.Logger

	// Cache holds compiled patterns across loads (default: a cache private to the call)
	Cache *Cache
}

// Validate checks if the options are valid.
func (o Options) Validate() error {
	if o.SpecFile == "" {
		return fmt.Errorf("spec file cannot be empty")
	}
	if o.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if o.Package == "" {
		return fmt.Errorf("package cannot be empty")
	}
	if !codegen.IsIdentifier(o.Package) {
		return fmt.Errorf("package %q is not an identifier", o.Package)
	}
	if o.Name != "" && !codegen.IsIdentifier(o.Name) {
		return fmt.Errorf("name %q is not an identifier", o.Name)
	}
	if o.Parallelism < 0 {
		return fmt.Errorf("parallelism cannot be negative")
	}
	return nil
}

// Lexer is a loaded specification with its laid-out chain.
type Lexer struct {
	Spec  *specfile.Spec
	Chain *chain.Chain
	Unit  *chain.Unit

	tags  map[int]string
	table *scan.Table
}

// LoadOptions controls Load and Build.
type LoadOptions struct {
	Parallelism int
	Logger      *slog.Logger
	// Cache is shared by every definition of the load. When nil, Build
	// uses a new cache of DefaultCacheSize patterns.
	Cache *Cache
}

// DefaultCacheSize is the capacity NewCache uses for a non-positive size.
const DefaultCacheSize = regex.DefaultCacheSize

// Cache keeps compiled patterns so that definitions with the same patterns,
// in one specification or across several, are compiled once. It is safe
// for concurrent use.
type Cache struct {
	re *regex.Cache
}

// NewCache returns a cache holding up to size compiled patterns.
func NewCache(size int) *Cache {
	return &Cache{re: regex.NewCache(size)}
}

// Compile returns the compiled pattern, compiling it on a miss.
func (c *Cache) Compile(pattern string) (*regex.Regexp, error) {
	return c.re.Compile(pattern)
}

// Len returns the number of cached patterns.
func (c *Cache) Len() int {
	return c.re.Len()
}

// Load parses the specification file at path and builds its chain.
func Load(ctx context.Context, path string, opts LoadOptions) (*Lexer, error) {
	spec, err := specfile.NewParser(opts.Logger).ParseFile(path)
	if err != nil {
		return nil, err
	}
	return Build(ctx, spec, opts)
}

// LoadReader parses a specification from r and builds its chain. name is
// used in warnings and errors.
func LoadReader(ctx context.Context, r io.Reader, name string, opts LoadOptions) (*Lexer, error) {
	spec, err := specfile.NewParser(opts.Logger).Parse(r, name)
	if err != nil {
		return nil, err
	}
	return Build(ctx, spec, opts)
}

// Build assigns tags to the definitions of spec, compiles them and lays out
// the chain.
func Build(ctx context.Context, spec *specfile.Spec, opts LoadOptions) (*Lexer, error) {
	if len(spec.Definitions) == 0 {
		return nil, fmt.Errorf("%s: %w", spec.Name, ErrNoDefinitions)
	}
	defs, auto, err := assignTags(spec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", spec.Name, err)
	}

	cache := opts.Cache
	if cache == nil {
		cache = NewCache(DefaultCacheSize)
	}
	compiled, err := chain.Compile(ctx, defs, chain.CompileOptions{
		Parallelism: opts.Parallelism,
		Cache:       cache.re,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", spec.Name, err)
	}
	c := chain.Build(compiled)

	lx := &Lexer{
		Spec:  spec,
		Chain: c,
		tags:  make(map[int]string, len(defs)),
		table: c.Table(),
	}
	for _, d := range defs {
		lx.tags[d.Tag] = d.Name
	}
	lx.Unit = lx.unit(auto)
	return lx, nil
}

// assignTags converts the definitions of spec into chain definitions. A
// constant named after a definition must be an integer and becomes its tag;
// the others are numbered from 1, skipping tags already taken, and their
// constants are returned in definition order.
func assignTags(spec *specfile.Spec) ([]chain.Definition, []chain.Constant, error) {
	defs := make([]chain.Definition, len(spec.Definitions))
	owner := map[int]string{}
	for i, d := range spec.Definitions {
		defs[i] = chain.Definition{Name: d.Name, Patterns: d.Patterns}
		value, ok := spec.Constant(d.Name)
		if !ok {
			continue
		}
		tag, err := strconv.ParseInt(value, 0, strconv.IntSize)
		if err != nil {
			return nil, nil, fmt.Errorf("constant %s = %s: definition tags must be integers", d.Name, value)
		}
		if tag == 0 {
			return nil, nil, fmt.Errorf("constant %s: definition tags must be nonzero", d.Name)
		}
		if prev, dup := owner[int(tag)]; dup {
			return nil, nil, fmt.Errorf("constant %s: tag %d already used by %s", d.Name, tag, prev)
		}
		owner[int(tag)] = d.Name
		defs[i].Tag = int(tag)
	}

	var auto []chain.Constant
	next := 1
	for i := range defs {
		if defs[i].Tag != 0 {
			continue
		}
		for owner[next] != "" {
			next++
		}
		owner[next] = defs[i].Name
		defs[i].Tag = next
		auto = append(auto, chain.Constant{Name: defs[i].Name, Value: strconv.Itoa(next)})
	}
	return defs, auto, nil
}

func (lx *Lexer) unit(auto []chain.Constant) *chain.Unit {
	u := &chain.Unit{Source: lx.Spec.Name, Code: lx.Spec.Code}
	for _, k := range lx.Spec.Constants {
		u.Constants = append(u.Constants, chain.Constant{Name: k.Name, Value: k.Value})
	}
	u.Constants = append(u.Constants, auto...)

	for _, r := range lx.Spec.Rules {
		rule := chain.Rule{Key: r.Key, Body: r.Body}
		for tag, name := range lx.tags {
			if name == r.Key {
				rule.Tag = tag
				break
			}
		}
		u.Rules = append(u.Rules, rule)
	}
	return u
}

// TagName returns the name of the definition tagged tag.
func (lx *Lexer) TagName(tag int) string {
	if name, ok := lx.tags[tag]; ok {
		return name
	}
	return strconv.Itoa(tag)
}

// TagNames returns a copy of the tag to definition name mapping.
func (lx *Lexer) TagNames() map[int]string {
	names := make(map[int]string, len(lx.tags))
	for tag, name := range lx.tags {
		names[tag] = name
	}
	return names
}

// Session starts an interpreted scan of input. Rule bodies are Go code and
// are not run; every token's value is its lexeme.
func (lx *Lexer) Session(input string, cfg scan.Config) (*scan.Session, error) {
	return scan.NewSessionWithConfig(input, lx.table, scan.NewRules().Default(scan.Text), cfg)
}

// Tokenize scans input to the end.
func (lx *Lexer) Tokenize(input string) ([]scan.Token, error) {
	s, err := lx.Session(input, scan.DefaultConfig())
	if err != nil {
		return nil, err
	}
	return s.Tokens()
}

// Generate reads the specification file and writes the generated lexer.
// It returns an error if the specification is invalid or code generation
// fails.
func Generate(ctx context.Context, opts Options) error {
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	lx, err := Load(ctx, opts.SpecFile, LoadOptions{
		Parallelism: opts.Parallelism,
		Logger:      opts.Logger,
		Cache:       opts.Cache,
	})
	if err != nil {
		return err
	}
	for _, d := range lx.Spec.Definitions {
		if !codegen.IsIdentifier(d.Name) {
			return fmt.Errorf("definition %s is not a Go identifier", d.Name)
		}
	}

	c := compiler.New(compiler.Config{
		Chain:      lx.Chain,
		Unit:       lx.Unit,
		OutputFile: opts.OutputFile,
		Package:    opts.Package,
		Name:       opts.Name,
		TagNames:   lx.TagNames(),
		Verbose:    opts.Verbose,
	})
	if err := c.Generate(); err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}
	return nil
}
