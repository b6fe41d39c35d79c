// Package chain lays the DFAs of all token definitions out in one global
// state space and describes every state as a match record.
//
// Definition order is priority: scanning tries the first definition's
// automaton at the lexeme start, and when it dies without accepting, the
// same position is retried against the next definition. Within one
// definition the longest match wins.
package chain

import (
	"fmt"
	"io"
	"slices"

	"github.com/KromDaniel/lexgen/internal/regex"
	"github.com/KromDaniel/lexgen/scan"
)

// Terminal is the fail target of the last definition's states.
const Terminal = scan.Terminal

// Cond is one outgoing condition of a state.
type Cond struct {
	Sym  regex.Symbol
	Next int
}

// IsAny reports whether the condition matches any character.
func (c Cond) IsAny() bool {
	return c.Sym == regex.Wildcard
}

// Record describes one global state.
type Record struct {
	ID int
	// Tag is the tag of the definition the state belongs to.
	Tag int
	// Reads is false only for states without outgoing transitions.
	Reads bool
	// Conds are ordered: ascending bytes, then the wildcard if present.
	Conds     []Cond
	Accepting bool
	// Retract is set when the state read a character that must be given
	// back at the end of the row. It always equals Reads and is kept as
	// its own field because Backend.RowEnd takes it as an argument.
	Retract    bool
	FailTarget int
}

// Entry is one definition's automaton within the chain.
type Entry struct {
	Name  string
	Tag   int
	First int // global id of the start state
	Len   int
	DFA   *regex.DFA
}

// Chain is the complete global layout.
type Chain struct {
	Entries []Entry
	// Records is indexed by global id.
	Records []Record
}

// Final returns the first id past the chain.
func (c *Chain) Final() int {
	return len(c.Records)
}

// Build lays out compiled definitions in order. The first pass fixes the id
// range of every entry, the second emits records; fail targets are always
// the start of the next entry's range.
func Build(compiled []Compiled) *Chain {
	c := &Chain{Entries: make([]Entry, len(compiled))}
	numbering := make([][]int, len(compiled))

	next := 0
	for i, comp := range compiled {
		dfa := comp.Regexp.DFA
		numbering[i] = number(dfa)
		c.Entries[i] = Entry{
			Name:  comp.Name,
			Tag:   comp.Tag,
			First: next,
			Len:   len(dfa.States),
			DFA:   dfa,
		}
		next += len(dfa.States)
	}

	c.Records = make([]Record, next)
	for i, e := range c.Entries {
		fail := Terminal
		if i+1 < len(c.Entries) {
			fail = c.Entries[i+1].First
		}
		ids := numbering[i]
		for local := range e.DFA.States {
			st := &e.DFA.States[local]
			rec := Record{
				ID:         e.First + ids[local],
				Tag:        e.Tag,
				Reads:      len(st.Next) > 0,
				Accepting:  st.Accepting,
				FailTarget: fail,
			}
			rec.Retract = rec.Reads
			for _, sym := range st.Symbols() {
				rec.Conds = append(rec.Conds, Cond{Sym: sym, Next: e.First + ids[st.Next[sym]]})
			}
			c.Records[rec.ID] = rec
		}
	}
	return c
}

// number assigns entry-relative ids: the start state first, then states in
// sorted order of their NFA sets, each followed by its targets in condition
// order, every state taking the next id at its first encounter.
func number(d *regex.DFA) []int {
	ids := make([]int, len(d.States))
	for i := range ids {
		ids[i] = -1
	}
	n := 0
	visit := func(i int) {
		if ids[i] < 0 {
			ids[i] = n
			n++
		}
	}

	order := make([]int, len(d.States))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		return slices.Compare(d.States[a].Set, d.States[b].Set)
	})

	visit(0)
	for _, i := range order {
		visit(i)
		for _, sym := range d.States[i].Symbols() {
			visit(d.States[i].Next[sym])
		}
	}
	return ids
}

// EntryOf returns the entry owning global id, or false.
func (c *Chain) EntryOf(id int) (Entry, bool) {
	for _, e := range c.Entries {
		if id >= e.First && id < e.First+e.Len {
			return e, true
		}
	}
	return Entry{}, false
}

// Table converts the chain into a table the scan runtime interprets.
func (c *Chain) Table() *scan.Table {
	t := &scan.Table{States: make([]scan.State, len(c.Records))}
	for i, rec := range c.Records {
		st := scan.State{
			Reads:      rec.Reads,
			Accepting:  rec.Accepting,
			Tag:        rec.Tag,
			Retract:    rec.Retract,
			FailTarget: rec.FailTarget,
		}
		for _, cond := range rec.Conds {
			if cond.IsAny() {
				st.Conds = append(st.Conds, scan.Cond{Any: true, Next: cond.Next})
				continue
			}
			st.Conds = append(st.Conds, scan.Cond{Char: byte(cond.Sym), Next: cond.Next})
		}
		t.States[i] = st
	}
	return t
}

// Dump writes one line per record, prefixed with the owning definition at
// the start of each entry.
func (c *Chain) Dump(w io.Writer) {
	for _, e := range c.Entries {
		fmt.Fprintf(w, "# %s tag=%d ids=[%d,%d)\n", e.Name, e.Tag, e.First, e.First+e.Len)
		for _, rec := range c.Records[e.First : e.First+e.Len] {
			mark := " "
			if rec.Accepting {
				mark = "*"
			}
			fmt.Fprintf(w, "%s%d", mark, rec.ID)
			for _, cond := range rec.Conds {
				fmt.Fprintf(w, " %s->%d", cond.Sym, cond.Next)
			}
			if rec.Accepting {
				fmt.Fprintf(w, " accept %d\n", rec.Tag)
				continue
			}
			if rec.FailTarget == Terminal {
				fmt.Fprintln(w, " fail end")
				continue
			}
			fmt.Fprintf(w, " fail %d\n", rec.FailTarget)
		}
	}
}
