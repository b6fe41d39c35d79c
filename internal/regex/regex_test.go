package regex

import (
	"errors"
	"strings"
	"testing"
)

func TestRewrite(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"abc", "abc"},
		{"[abc]", "(a|b|c)"},
		{"[a-c]x", "(a|b|c)x"},
		{"[c-a-]", ""},
		{"[.]", `(\.)`},
		{"[-+]", `(\+|-)`},
		{"[+-]", `(\+|-)`},
		{`[\]]`, `(\])`},
		{"[\\t ]", "(\t| )"},
		{`a\[b`, `a\[b`},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := Rewrite(tt.pattern)
			if tt.want == "" {
				if err == nil {
					t.Fatalf("Rewrite(%q) = %q, want error", tt.pattern, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Rewrite(%q) error: %v", tt.pattern, err)
			}
			if got != tt.want {
				t.Errorf("Rewrite(%q) = %q, want %q", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestPostfix(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"a", "a"},
		{"ab", "ab,"},
		{"abc", "ab,c,"},
		{"a|b", "ab|"},
		{"ab|cd", "ab,cd,|"},
		{"(a|b)*c", "ab|*c,"},
		{"a+b?", "a+b?,"},
		{"a.b", "a.,b,"},
		{"ab(c)", "ab,c,"},
		{`a\*`, `a\*,`},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			tokens, err := Postfix(tt.pattern)
			if err != nil {
				t.Fatalf("Postfix(%q) error: %v", tt.pattern, err)
			}
			if got := FormatPostfix(tokens); got != tt.want {
				t.Errorf("Postfix(%q) = %q, want %q", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		pattern string
		want    error
	}{
		{")", ErrUnmatchedRParen},
		{"a)", ErrUnmatchedRParen},
		{"(a", ErrUnmatchedLParen},
		{"*a", ErrMissingOperand},
		{"a|*", ErrMissingOperand},
		{"()", ErrMissingOperand},
		{"|a", ErrMissingOperand},
		{`a\`, ErrTrailingBackslash},
		{"[a", ErrUnterminatedClass},
		{"[]", ErrEmptyClass},
		{"[z-a]", ErrBadRange},
		{"", ErrMalformed},
		{"a|", ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			_, err := Compile(tt.pattern)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Compile(%q) error = %v, want %v", tt.pattern, err, tt.want)
			}
			var re *Error
			if !errors.As(err, &re) {
				t.Fatalf("Compile(%q) error %T is not *Error", tt.pattern, err)
			}
			if re.Pattern != tt.pattern {
				t.Errorf("error pattern = %q, want %q", re.Pattern, tt.pattern)
			}
			if !strings.Contains(err.Error(), tt.want.Error()) {
				t.Errorf("error message %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    bool
	}{
		{"a*", "", true},
		{"a*", "aaa", true},
		{"a*", "ab", false},
		{"a|b", "a", true},
		{"a|b", "b", true},
		{"a|b", "c", false},
		{"a|b", "ab", false},
		{"a|b", "", false},
		{"(a|b)*abb", "babb", true},
		{"(a|b)*abb", "abab", false},
		{".*x", "xax", true},
		{".*x", "xa", false},
		{"a.c", "abc", true},
		{"a.c", "ac", false},
		{`\.`, ".", true},
		{`\.`, "a", false},
		{"[0-9]+", "42", true},
		{"[0-9]+", "", false},
		{"(ab)+", "abab", true},
		{"(ab)+", "aba", false},
		{"a?b", "b", true},
		{"a?b", "ab", true},
		{"a?b", "aab", false},
		{`[^"]*`, "abc", true},
		{`[^"]*`, `a"c`, false},
		{`\t\n`, "\t\n", true},
		{"[\\t ]+", " \t ", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.input, func(t *testing.T) {
			re := MustCompile(tt.pattern)
			if got := re.MatchDFA(tt.input); got != tt.want {
				t.Errorf("MatchDFA(%q, %q) = %v, want %v", tt.pattern, tt.input, got, tt.want)
			}
			if got := re.MatchNFA(tt.input); got != tt.want {
				t.Errorf("MatchNFA(%q, %q) = %v, want %v", tt.pattern, tt.input, got, tt.want)
			}
		})
	}
}

// inputs enumerates every string over alphabet up to length n.
func inputs(alphabet string, n int) []string {
	out := []string{""}
	prev := []string{""}
	for i := 0; i < n; i++ {
		var next []string
		for _, p := range prev {
			for j := 0; j < len(alphabet); j++ {
				next = append(next, p+alphabet[j:j+1])
			}
		}
		out = append(out, next...)
		prev = next
	}
	return out
}

func TestDFAAgreesWithNFA(t *testing.T) {
	patterns := []string{
		"a", "ab", "a|b", "a*", "a+", "a?", "(a|b)*abb", "a.b", ".*a",
		"(a.)+", "(ab|a)(bc|c)", "((a|b)c?)*", "[a-c]+b", ".?.?a", "(.|a)b",
	}
	for _, p := range patterns {
		re := MustCompile(p)
		for _, in := range inputs("abcx", 5) {
			if nfa, dfa := re.MatchNFA(in), re.MatchDFA(in); nfa != dfa {
				t.Errorf("pattern %q input %q: nfa=%v dfa=%v", p, in, nfa, dfa)
			}
		}
	}
}

func TestDFADeterminism(t *testing.T) {
	for _, p := range []string{"(a|b)*abb", "[a-z]+|[0-9]+", ".*x.", "(a.)*|b+"} {
		re := MustCompile(p)
		seen := map[string]bool{}
		for i, st := range re.DFA.States {
			if seen[st.Key()] {
				t.Errorf("pattern %q: duplicate DFA state %d {%s}", p, i, st.Key())
			}
			seen[st.Key()] = true
			syms := st.Symbols()
			for j := 1; j < len(syms); j++ {
				if syms[j] <= syms[j-1] {
					t.Errorf("pattern %q: state %d symbols not strictly ordered: %v", p, i, syms)
				}
			}
			for sym, next := range st.Next {
				if next < 0 || next >= len(re.DFA.States) {
					t.Errorf("pattern %q: state %d on %s goes to %d", p, i, sym, next)
				}
			}
		}
	}
}

func TestTableAlphabet(t *testing.T) {
	re := MustCompile("b.a|c")
	tab := re.NFA.Table()
	want := []Symbol{'a', 'b', 'c', Wildcard}
	if len(tab.Alphabet) != len(want) {
		t.Fatalf("Alphabet = %v, want %v", tab.Alphabet, want)
	}
	for i := range want {
		if tab.Alphabet[i] != want[i] {
			t.Errorf("Alphabet[%d] = %v, want %v", i, tab.Alphabet[i], want[i])
		}
	}
	if !tab.HasWildcard() {
		t.Error("HasWildcard() = false, want true")
	}
	if _, ok := tab.Rows[MatchID]; !ok {
		t.Error("match state missing from table")
	}
}

func TestPatchTwicePanics(t *testing.T) {
	b := newBuilder()
	s := b.add(KindLiteral, 'a', none, none)
	b.patch([]slot{{state: s}}, MatchID)

	defer func() {
		if recover() == nil {
			t.Error("patching an edge twice did not panic")
		}
	}()
	b.patch([]slot{{state: s}}, MatchID)
}

func TestCache(t *testing.T) {
	c := NewCache(2)
	a1, err := c.Compile("a+")
	if err != nil {
		t.Fatal(err)
	}
	a2, _ := c.Compile("a+")
	if a1 != a2 {
		t.Error("second Compile did not return the cached pattern")
	}
	if _, err := c.Compile("(a"); err == nil {
		t.Error("expected error for (a")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}
