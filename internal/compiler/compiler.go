// Package compiler renders a laid-out automaton chain as Go source.
package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/KromDaniel/lexgen/internal/chain"
	"github.com/KromDaniel/lexgen/internal/codegen"
	"github.com/dave/jennifer/jen"
)

// Config holds the configuration for code generation.
type Config struct {
	Chain      *chain.Chain
	Unit       *chain.Unit
	OutputFile string
	Package    string
	Name       string         // Lexer type name, "Lexer" when empty
	TagNames   map[int]string // constant naming each definition tag
	Verbose    bool           // Enable verbose logging of layout decisions
}

// Compiler generates a Go lexer from a chain. It implements chain.Backend;
// Generate drives it through chain.Emit.
type Compiler struct {
	config  Config
	file    *jen.File
	logger  *Logger
	imports []userImport

	cases []jen.Code // one case per state of the Step switch
	row   *row       // state being emitted
}

// row collects the conditions of one state until RowEnd.
type row struct {
	id    int
	reads bool
	conds []chain.Cond
}

// New creates a new compiler instance.
func New(config Config) *Compiler {
	if config.Name == "" {
		config.Name = codegen.DefaultLexer
	}
	file := jen.NewFile(config.Package)
	file.ImportName(codegen.ScanPath, "scan")
	return &Compiler{
		config: config,
		file:   file,
		logger: NewLogger(config.Verbose),
	}
}

// Logger returns the compiler's verbose logger.
func (c *Compiler) Logger() *Logger {
	return c.logger
}

// Validate checks the configuration before anything is rendered.
func (c *Compiler) Validate() error {
	switch {
	case c.config.Chain == nil:
		return errors.New("no chain to generate")
	case c.config.Unit == nil:
		return errors.New("no unit to generate")
	case c.config.Package == "":
		return errors.New("package name is required")
	case !codegen.IsIdentifier(c.config.Package):
		return fmt.Errorf("package name %q is not an identifier", c.config.Package)
	case !codegen.IsIdentifier(c.config.Name):
		return fmt.Errorf("lexer name %q is not an identifier", c.config.Name)
	case c.config.Chain.Final() == 0:
		return errors.New("chain has no states")
	}
	return nil
}

// Source renders the lexer and returns formatted Go source.
func (c *Compiler) Source() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	c.logger.Section("Chain Layout")
	for _, e := range c.config.Chain.Entries {
		c.logger.Log("Definition %s: tag %d, states [%d,%d)", e.Name, e.Tag, e.First, e.First+e.Len)
	}
	c.logger.Log("Total states: %d", c.config.Chain.Final())

	chain.Emit(c.config.Chain, c.config.Unit, c)

	var buf bytes.Buffer
	if err := c.file.Render(&buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	c.logger.Section("Formatting")
	c.logger.Log("User imports: %d", len(c.imports))
	return formatSource(buf.Bytes(), c.imports)
}

// Generate generates the Go code and writes it to the output file.
func (c *Compiler) Generate() error {
	src, err := c.Source()
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.config.OutputFile, src, 0644); err != nil {
		return err
	}
	c.logger.Log("Wrote %s (%d bytes)", c.config.OutputFile, len(src))
	return nil
}

func (c *Compiler) method(name string) *jen.Statement {
	return c.file.Func().
		Params(jen.Id(codegen.ReceiverName).Op("*").Id(c.config.Name)).
		Id(name)
}

// tag renders a definition tag, by constant name when one is known.
func (c *Compiler) tag(tag int) jen.Code {
	if name, ok := c.config.TagNames[tag]; ok {
		return jen.Id(name)
	}
	return jen.Lit(tag)
}

func scanQual(name string) *jen.Statement {
	return jen.Qual(codegen.ScanPath, name)
}
