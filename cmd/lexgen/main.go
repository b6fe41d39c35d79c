// Command lexgen generates Go lexers from specification files.
//
// Usage:
//
//	lexgen generate calc.lex -o calc_lexer.go -p calc
//	lexgen tokenize calc.lex input.txt --format json
//	lexgen table '[0-9]+(\.[0-9]+)?'
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/KromDaniel/lexgen/internal/chain"
	"github.com/KromDaniel/lexgen/internal/regex"
	"github.com/KromDaniel/lexgen/pkg/lexgen"
	"github.com/KromDaniel/lexgen/scan"
	"github.com/alecthomas/kong"
	"sigs.k8s.io/yaml"
)

type cli struct {
	Verbose   bool `short:"v" help:"Log layout and generation decisions" env:"LEXGEN_VERBOSE"`
	CacheSize int  `default:"256" env:"LEXGEN_CACHE_SIZE" help:"Compiled patterns kept for reuse"`

	Generate generateCommand `cmd:"" help:"Generate a Go lexer from a specification file"`
	Tokenize tokenizeCommand `cmd:"" help:"Scan input with a specification without generating code"`
	Table    tableCommand    `cmd:"" help:"Print the automata built for a pattern"`
}

// streams are the standard streams commands read and write.
type streams struct {
	in  io.Reader
	out io.Writer
}

type generateCommand struct {
	Spec        string `arg:"" type:"existingfile" help:"Specification file"`
	Output      string `short:"o" required:"" placeholder:"FILE" help:"Output Go file"`
	Package     string `short:"p" default:"main" env:"LEXGEN_PACKAGE" help:"Package name of the generated code"`
	Name        string `default:"Lexer" env:"LEXGEN_NAME" help:"Name of the generated lexer type"`
	Parallelism int    `default:"0" env:"LEXGEN_PARALLELISM" help:"Definitions compiled at once (0 means no bound)"`
}

func (g *generateCommand) Run(root *cli, logger *slog.Logger, cache *lexgen.Cache) error {
	return lexgen.Generate(context.Background(), lexgen.Options{
		SpecFile:    g.Spec,
		OutputFile:  g.Output,
		Package:     g.Package,
		Name:        g.Name,
		Parallelism: g.Parallelism,
		Verbose:     root.Verbose,
		Logger:      logger,
		Cache:       cache,
	})
}

type tokenizeCommand struct {
	Spec   string `arg:"" type:"existingfile" help:"Specification file"`
	Input  string `arg:"" optional:"" help:"Input file (standard input when omitted)"`
	Format string `enum:"text,json,yaml" default:"text" help:"Output format (${enum})"`
}

// tokenRecord is the printed form of a token.
type tokenRecord struct {
	Tag   string `json:"tag"`
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

func (c *tokenizeCommand) Run(std *streams, logger *slog.Logger, cache *lexgen.Cache) error {
	lx, err := lexgen.Load(context.Background(), c.Spec, lexgen.LoadOptions{Logger: logger, Cache: cache})
	if err != nil {
		return err
	}

	var data []byte
	if c.Input != "" {
		data, err = os.ReadFile(c.Input)
	} else {
		data, err = io.ReadAll(std.in)
	}
	if err != nil {
		return err
	}

	s, err := lx.Session(string(data), scan.Config{Logger: logger})
	if err != nil {
		return err
	}
	toks, scanErr := s.Tokens()

	records := make([]tokenRecord, len(toks))
	for i, tok := range toks {
		records[i] = tokenRecord{Tag: lx.TagName(tok.Tag), Text: tok.Text, Start: tok.Start, End: tok.End}
	}
	if err := writeTokens(std.out, c.Format, records); err != nil {
		return err
	}
	return scanErr
}

func writeTokens(w io.Writer, format string, records []tokenRecord) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "yaml":
		bs, err := yaml.Marshal(records)
		if err != nil {
			return err
		}
		_, err = w.Write(bs)
		return err
	default:
		for _, r := range records {
			if _, err := fmt.Fprintf(w, "%s %q\n", r.Tag, r.Text); err != nil {
				return err
			}
		}
		return nil
	}
}

type tableCommand struct {
	Pattern string `arg:"" help:"Regular expression"`
	Name    string `default:"PATTERN" help:"Definition name used in the chain dump"`
}

func (c *tableCommand) Run(std *streams, cache *lexgen.Cache) error {
	re, err := cache.Compile(c.Pattern)
	if err != nil {
		return err
	}
	w := std.out

	fmt.Fprintf(w, "pattern:   %s\n", re.Pattern)
	fmt.Fprintf(w, "rewritten: %s\n", re.Rewritten)
	fmt.Fprintf(w, "postfix:   %s\n", regex.FormatPostfix(re.Postfix))

	fmt.Fprintln(w, "\nNFA")
	re.NFA.Table().Dump(w)
	fmt.Fprintln(w, "\nDFA")
	re.DFA.Dump(w)

	compiled := []chain.Compiled{{
		Definition: chain.Definition{Name: c.Name, Patterns: []string{c.Pattern}},
		Tag:        1,
		Regexp:     re,
	}}
	fmt.Fprintln(w, "\nChain")
	chain.Build(compiled).Dump(w)
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// run parses args and executes the selected command.
func run(args []string, std *streams, stderr io.Writer) error {
	var params cli
	parser, err := kong.New(&params,
		kong.Name("lexgen"),
		kong.Description("Generate Go lexers from specification files."),
		kong.Writers(std.out, stderr),
		kong.UsageOnError(),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return kctx.Run(&params, std, newLogger(stderr, params.Verbose), lexgen.NewCache(params.CacheSize))
}

func main() {
	std := &streams{in: os.Stdin, out: os.Stdout}
	if err := run(os.Args[1:], std, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "lexgen:", err)
		os.Exit(1)
	}
}
