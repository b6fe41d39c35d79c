package regex

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// DState is one DFA state: a canonical set of NFA state ids.
type DState struct {
	Set       []int
	Accepting bool
	Next      map[Symbol]int
}

// Key returns the canonical identity of the state's NFA set.
func (d *DState) Key() string {
	return setKey(d.Set)
}

// Symbols returns the state's outgoing symbols in condition order:
// ascending bytes first, Wildcard last.
func (d *DState) Symbols() []Symbol {
	syms := make([]Symbol, 0, len(d.Next))
	for sym := range d.Next {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })
	return syms
}

// DFA is the result of subset construction. States[0] is the start state.
type DFA struct {
	States   []DState
	Alphabet []Symbol
}

func setKey(set []int) string {
	var b strings.Builder
	for i, id := range set {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(id))
	}
	return b.String()
}

// closure returns the sorted epsilon-closure of set.
func (t *Table) closure(set []int) []int {
	in := make(map[int]bool, len(set))
	stack := make([]int, 0, len(set))
	for _, id := range set {
		if !in[id] {
			in[id] = true
			stack = append(stack, id)
		}
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range t.Rows[id].Epsilon {
			if !in[next] {
				in[next] = true
				stack = append(stack, next)
			}
		}
	}
	out := make([]int, 0, len(in))
	for id := range in {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// move returns the states reachable from set on sym. A byte also follows
// wildcard edges; Wildcard itself only follows wildcard edges and stands
// for every byte outside the alphabet.
func (t *Table) move(set []int, sym Symbol) []int {
	var out []int
	for _, id := range set {
		row := t.Rows[id]
		if row.Epsilon != nil || row.Next == none {
			continue
		}
		if row.Sym == sym || (row.Sym == Wildcard && sym != Wildcard) {
			out = append(out, row.Next)
		}
	}
	return out
}

// Determinize runs subset construction over the table of an NFA.
func Determinize(n *NFA) *DFA {
	t := n.Table()
	d := &DFA{Alphabet: t.Alphabet}
	index := map[string]int{}

	add := func(set []int) int {
		key := setKey(set)
		if i, ok := index[key]; ok {
			return i
		}
		i := len(d.States)
		index[key] = i
		d.States = append(d.States, DState{
			Set:       set,
			Accepting: len(set) > 0 && set[0] == MatchID,
			Next:      map[Symbol]int{},
		})
		return i
	}

	add(t.closure([]int{n.Start}))
	for unmarked := 0; unmarked < len(d.States); unmarked++ {
		for _, sym := range t.Alphabet {
			moved := t.move(d.States[unmarked].Set, sym)
			if len(moved) == 0 {
				continue
			}
			target := add(t.closure(moved))
			d.States[unmarked].Next[sym] = target
		}
	}
	return d
}

// Match runs the DFA over input and reports whether the whole input is
// accepted.
func (d *DFA) Match(input string) bool {
	state := 0
	for i := 0; i < len(input); i++ {
		next, ok := d.States[state].Next[Symbol(input[i])]
		if !ok {
			next, ok = d.States[state].Next[Wildcard]
		}
		if !ok {
			return false
		}
		state = next
	}
	return d.States[state].Accepting
}

// Dump writes one line per DFA state.
func (d *DFA) Dump(w io.Writer) {
	for i := range d.States {
		st := &d.States[i]
		mark := " "
		if st.Accepting {
			mark = "*"
		}
		fmt.Fprintf(w, "%s%d {%s}", mark, i, st.Key())
		for _, sym := range st.Symbols() {
			fmt.Fprintf(w, " %s->%d", sym, st.Next[sym])
		}
		fmt.Fprintln(w)
	}
}
