package regex

import (
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Symbol is an input byte, or Wildcard for the "any character" edge.
type Symbol int

// Wildcard is the symbol of '.' edges. It sorts after every byte.
const Wildcard Symbol = 256

func (s Symbol) String() string {
	if s == Wildcard {
		return "ANY"
	}
	return strconv.QuoteRune(rune(s))
}

// Row is the reachability entry of one NFA state: either two epsilon
// successors (split states) or one successor on Sym.
type Row struct {
	Epsilon []int
	Sym     Symbol
	Next    int
}

// Table is the reachability table of an NFA together with its alphabet.
type Table struct {
	Rows     map[int]Row
	Alphabet []Symbol
}

// Table walks the NFA from its start state and records the outgoing edges
// of every reachable state. The match state is terminal and gets an empty
// row.
func (n *NFA) Table() *Table {
	t := &Table{Rows: map[int]Row{MatchID: {Next: none}}}
	seen := map[Symbol]bool{}

	visited := make([]bool, len(n.States))
	stack := []int{n.Start}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == none || visited[id] || id == MatchID {
			continue
		}
		visited[id] = true

		st := n.States[id]
		switch st.Kind {
		case KindSplit:
			t.Rows[id] = Row{Epsilon: []int{st.Out, st.Out1}, Next: none}
			stack = append(stack, st.Out1, st.Out)
		case KindLiteral, KindAny:
			sym := Symbol(st.Char)
			if st.Kind == KindAny {
				sym = Wildcard
			}
			t.Rows[id] = Row{Sym: sym, Next: st.Out}
			seen[sym] = true
			stack = append(stack, st.Out)
		}
	}

	for sym := range seen {
		t.Alphabet = append(t.Alphabet, sym)
	}
	sort.Slice(t.Alphabet, func(i, j int) bool { return t.Alphabet[i] < t.Alphabet[j] })
	return t
}

// HasWildcard reports whether the alphabet contains Wildcard.
func (t *Table) HasWildcard() bool {
	return len(t.Alphabet) > 0 && t.Alphabet[len(t.Alphabet)-1] == Wildcard
}

// Dump writes the table in ascending state order.
func (t *Table) Dump(w io.Writer) {
	ids := make([]int, 0, len(t.Rows))
	for id := range t.Rows {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		row := t.Rows[id]
		switch {
		case row.Epsilon != nil:
			fmt.Fprintf(w, "%d eps -> %v\n", id, row.Epsilon)
		case row.Next == none:
			fmt.Fprintf(w, "%d match\n", id)
		default:
			fmt.Fprintf(w, "%d %s -> %d\n", id, row.Sym, row.Next)
		}
	}
}
