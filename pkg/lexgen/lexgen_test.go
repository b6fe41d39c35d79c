package lexgen

import (
	"context"
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KromDaniel/lexgen/internal/chain"
	"github.com/KromDaniel/lexgen/internal/specfile"
	"github.com/KromDaniel/lexgen/scan"
	"github.com/d4l3k/messagediff"
)

const calc = `%%Constants%%
NUMBER = 10
NAME = "calc"

%%Definitions%%
NUMBER: [0-9]+
OP: [-+*/]
    \*\*
WS: [ ]+

%%Rules%%
NUMBER: return strconv.Atoi(lx.Text())
OP: return lx.Text(), nil
**: return "pow", nil

%%Code%%
import "strconv"

func double(n int) int { return 2 * n }
`

var quiet = slog.New(slog.DiscardHandler)

func parse(t *testing.T, src string) *specfile.Spec {
	t.Helper()
	spec, err := specfile.NewParser(quiet).Parse(strings.NewReader(src), "calc.lex")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return spec
}

func writeSpec(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calc.lex")
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOptionsValidate(t *testing.T) {
	good := Options{SpecFile: "calc.lex", OutputFile: "calc.go", Package: "calc"}
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"no spec", func(o *Options) { o.SpecFile = "" }},
		{"no output", func(o *Options) { o.OutputFile = "" }},
		{"no package", func(o *Options) { o.Package = "" }},
		{"bad package", func(o *Options) { o.Package = "calc-lexer" }},
		{"bad name", func(o *Options) { o.Name = "type" }},
		{"negative parallelism", func(o *Options) { o.Parallelism = -1 }},
	}

	if err := good.Validate(); err != nil {
		t.Fatalf("Validate() of good options: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := good
			tt.mutate(&opts)
			if err := opts.Validate(); err == nil {
				t.Error("Validate() succeeded")
			}
		})
	}
}

func TestBuildTags(t *testing.T) {
	lx, err := Build(context.Background(), parse(t, calc), LoadOptions{Logger: quiet})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	want := map[int]string{10: "NUMBER", 1: "OP", 2: "WS"}
	if diff, equal := messagediff.PrettyDiff(want, lx.TagNames()); !equal {
		t.Errorf("tags differ:\n%s", diff)
	}

	wantConsts := []chain.Constant{
		{Name: "NUMBER", Value: "10"},
		{Name: "NAME", Value: `"calc"`},
		{Name: "OP", Value: "1"},
		{Name: "WS", Value: "2"},
	}
	if diff, equal := messagediff.PrettyDiff(wantConsts, lx.Unit.Constants); !equal {
		t.Errorf("constants differ:\n%s", diff)
	}

	wantRules := []chain.Rule{
		{Key: "NUMBER", Tag: 10, Body: "return strconv.Atoi(lx.Text())"},
		{Key: "OP", Tag: 1, Body: "return lx.Text(), nil"},
		{Key: "**", Body: `return "pow", nil`},
	}
	if diff, equal := messagediff.PrettyDiff(wantRules, lx.Unit.Rules); !equal {
		t.Errorf("rules differ:\n%s", diff)
	}

	if got := lx.TagName(99); got != "99" {
		t.Errorf("TagName(99) = %q", got)
	}
}

func TestBuildTagErrors(t *testing.T) {
	tests := []struct {
		name   string
		consts string
		want   string
	}{
		{"not an integer", `A = "a"`, "must be integers"},
		{"zero", "A = 0", "nonzero"},
		{"duplicate", "A = 3, B = 3", "already used by A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "%%Constants%%\n" + tt.consts + "\n%%Definitions%%\nA: a\nB: b\n"
			_, err := Build(context.Background(), parse(t, src), LoadOptions{})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Build() error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestBuildErrors(t *testing.T) {
	_, err := Build(context.Background(), parse(t, "%%Rules%%\nA: return nil, nil\n"), LoadOptions{})
	if !errors.Is(err, ErrNoDefinitions) {
		t.Errorf("error = %v, want ErrNoDefinitions", err)
	}

	_, err = Build(context.Background(), parse(t, "%%Definitions%%\nA: (a\n"), LoadOptions{})
	if err == nil || !strings.Contains(err.Error(), "definition A") {
		t.Errorf("error = %v, want a failure naming definition A", err)
	}
}

func TestTokenize(t *testing.T) {
	lx, err := Load(context.Background(), writeSpec(t, calc), LoadOptions{Logger: quiet, Parallelism: 2})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	tests := []struct {
		input   string
		want    []string
		wantErr bool
	}{
		{input: "12+3 ** 4", want: []string{`NUMBER "12"`, `OP "+"`, `NUMBER "3"`, `WS " "`, `OP "**"`, `WS " "`, `NUMBER "4"`}},
		{input: "", want: nil},
		{input: "1 x", want: []string{`NUMBER "1"`, `WS " "`}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks, err := lx.Tokenize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Tokenize() error = %v, wantErr %v", err, tt.wantErr)
			}
			var got []string
			for _, tok := range toks {
				got = append(got, fmt.Sprintf("%s %q", lx.TagName(tok.Tag), tok.Value))
			}
			if diff, equal := messagediff.PrettyDiff(tt.want, got); !equal {
				t.Errorf("tokens differ:\n%s", diff)
			}
		})
	}
}

func TestSessionConfig(t *testing.T) {
	lx, err := Build(context.Background(), parse(t, calc), LoadOptions{Logger: quiet})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if _, err := lx.Session("1", scan.Config{ContextWindow: -1}); err == nil {
		t.Error("Session() accepted a negative context window")
	}

	s, err := lx.Session("12", scan.DefaultConfig())
	if err != nil {
		t.Fatalf("Session() error: %v", err)
	}
	if _, err := s.NextToken(); err != nil {
		t.Fatalf("NextToken() error: %v", err)
	}
	if _, err := s.NextToken(); !errors.Is(err, io.EOF) {
		t.Errorf("NextToken() at end = %v, want io.EOF", err)
	}
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "calc_lexer.go")
	err := Generate(context.Background(), Options{
		SpecFile:   writeSpec(t, calc),
		OutputFile: out,
		Package:    "calc",
		Name:       "CalcLexer",
		Logger:     quiet,
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	src, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output file was not created: %v", err)
	}
	if _, err := parser.ParseFile(token.NewFileSet(), out, src, 0); err != nil {
		t.Fatalf("generated code does not parse: %v\n%s", err, src)
	}
	for _, want := range []string{
		"type CalcLexer struct",
		"NUMBER = 10",
		"OP     = 1",
		"return scan.Accept(NUMBER)",
		`r.OnText("**", lx.rule2)`,
		`"strconv"`,
	} {
		if !strings.Contains(string(src), want) {
			t.Errorf("generated code lacks %q", want)
		}
	}
}

func TestGenerateErrors(t *testing.T) {
	if err := Generate(context.Background(), Options{Package: "calc"}); err == nil {
		t.Error("Generate() accepted options without a spec file")
	}

	err := Generate(context.Background(), Options{
		SpecFile:   writeSpec(t, "%%Definitions%%\nfunc: f\n"),
		OutputFile: filepath.Join(t.TempDir(), "out.go"),
		Package:    "calc",
		Logger:     quiet,
	})
	if err == nil || !strings.Contains(err.Error(), "not a Go identifier") {
		t.Errorf("Generate() error = %v, want a keyword definition to be rejected", err)
	}
}

func TestBuildSharesCache(t *testing.T) {
	const repeated = `%%Definitions%%
INT: [0-9]+
WORD: [a-z]+
DIGITS: [0-9]+
`
	cache := NewCache(8)
	opts := LoadOptions{Logger: quiet, Parallelism: 1, Cache: cache}

	lx, err := Build(context.Background(), parse(t, repeated), opts)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if cache.Len() != 2 {
		t.Errorf("cache holds %d patterns, want 2", cache.Len())
	}
	entries := lx.Chain.Entries
	if entries[0].DFA != entries[2].DFA {
		t.Error("INT and DIGITS were compiled separately")
	}

	again, err := Build(context.Background(), parse(t, repeated), opts)
	if err != nil {
		t.Fatalf("second Build() error: %v", err)
	}
	if again.Chain.Entries[1].DFA != entries[1].DFA {
		t.Error("second load did not reuse the cached WORD pattern")
	}
	if cache.Len() != 2 {
		t.Errorf("cache holds %d patterns after reload, want 2", cache.Len())
	}

	re, err := cache.Compile("[a-z]+")
	if err != nil || re.DFA != entries[1].DFA {
		t.Errorf("Compile() = %v, %v, want the cached WORD pattern", re, err)
	}
}
