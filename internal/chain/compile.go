package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KromDaniel/lexgen/internal/regex"
	"golang.org/x/sync/errgroup"
)

// ErrNoPatterns is returned for a definition without patterns.
var ErrNoPatterns = errors.New("definition has no patterns")

// Definition is a named token definition. Its patterns are alternatives of
// one another.
type Definition struct {
	Name     string
	Patterns []string
	Tag      int // zero means the 1-based position of the definition
}

// Pattern returns the definition's patterns joined into one alternation.
func (d Definition) Pattern() string {
	return strings.Join(d.Patterns, "|")
}

// Compiled is a definition together with its tag and compiled pattern.
type Compiled struct {
	Definition
	Tag    int
	Regexp *regex.Regexp
}

// CompileOptions controls Compile.
type CompileOptions struct {
	// Parallelism bounds the number of definitions compiled at once.
	// Zero or less means no bound.
	Parallelism int
	// Cache, if set, is consulted before compiling a pattern.
	Cache *regex.Cache
}

// Compile compiles every definition's pattern. Definitions are independent
// of one another and are compiled concurrently; the result is in
// definition order.
func Compile(ctx context.Context, defs []Definition, opts CompileOptions) ([]Compiled, error) {
	out := make([]Compiled, len(defs))

	g, ctx := errgroup.WithContext(ctx)
	if opts.Parallelism > 0 {
		g.SetLimit(opts.Parallelism)
	}
	for i, def := range defs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if len(def.Patterns) == 0 {
				return fmt.Errorf("definition %s: %w", def.Name, ErrNoPatterns)
			}
			re, err := compilePattern(opts.Cache, def.Pattern())
			if err != nil {
				return fmt.Errorf("definition %s: %w", def.Name, err)
			}
			tag := def.Tag
			if tag == 0 {
				tag = i + 1
			}
			out[i] = Compiled{Definition: def, Tag: tag, Regexp: re}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func compilePattern(cache *regex.Cache, pattern string) (*regex.Regexp, error) {
	if cache != nil {
		return cache.Compile(pattern)
	}
	return regex.Compile(pattern)
}
