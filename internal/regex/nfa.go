package regex

import "fmt"

// Kind is the kind of an NFA state.
type Kind uint8

const (
	KindMatch Kind = iota
	KindLiteral
	KindAny
	KindSplit
)

// none marks an edge that has not been patched yet.
const none = -1

// MatchID is the arena index of the accepting sentinel in every NFA.
const MatchID = 0

// State is one NFA state. Out1 is only used by split states.
type State struct {
	ID   int
	Kind Kind
	Char byte
	Out  int
	Out1 int
}

// NFA is a Thompson automaton stored as an arena indexed by state id.
type NFA struct {
	States []State
	Start  int
}

// slot names one dangling edge: the state owning it and which of its two
// edges is open.
type slot struct {
	state int
	out1  bool
}

// fragment is a partially built sub-automaton on the construction stack.
type fragment struct {
	start int
	open  []slot
}

// builder owns the arena of a single compilation session.
type builder struct {
	states []State
}

func newBuilder() *builder {
	b := &builder{}
	b.states = append(b.states, State{ID: MatchID, Kind: KindMatch, Out: none, Out1: none})
	return b
}

func (b *builder) add(kind Kind, c byte, out, out1 int) int {
	id := len(b.states)
	b.states = append(b.states, State{ID: id, Kind: kind, Char: c, Out: out, Out1: out1})
	return id
}

// patch points every open edge in list at target. Each slot is written
// exactly once.
func (b *builder) patch(list []slot, target int) {
	for _, s := range list {
		edge := &b.states[s.state].Out
		if s.out1 {
			edge = &b.states[s.state].Out1
		}
		if *edge != none {
			panic(fmt.Sprintf("regex: edge of state %d patched twice", s.state))
		}
		*edge = target
	}
}

// Thompson builds an NFA from a postfix token stream.
func Thompson(postfix []Token) (*NFA, error) {
	b := newBuilder()
	var stack []fragment

	pop := func() (fragment, bool) {
		if len(stack) == 0 {
			return fragment{}, false
		}
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return f, true
	}
	pop2 := func() (fragment, fragment, bool) {
		e2, ok2 := pop()
		e1, ok1 := pop()
		return e1, e2, ok1 && ok2
	}

	for _, t := range postfix {
		switch t.Op {
		case OpLiteral, OpAny:
			kind := KindLiteral
			if t.Op == OpAny {
				kind = KindAny
			}
			s := b.add(kind, t.Char, none, none)
			stack = append(stack, fragment{start: s, open: []slot{{state: s}}})

		case OpConcat:
			e1, e2, ok := pop2()
			if !ok {
				return nil, ErrMalformed
			}
			b.patch(e1.open, e2.start)
			stack = append(stack, fragment{start: e1.start, open: e2.open})

		case OpAlt:
			e1, e2, ok := pop2()
			if !ok {
				return nil, ErrMalformed
			}
			s := b.add(KindSplit, 0, e1.start, e2.start)
			open := append(append([]slot{}, e1.open...), e2.open...)
			stack = append(stack, fragment{start: s, open: open})

		case OpQuest:
			e, ok := pop()
			if !ok {
				return nil, ErrMalformed
			}
			s := b.add(KindSplit, 0, e.start, none)
			open := append(append([]slot{}, e.open...), slot{state: s, out1: true})
			stack = append(stack, fragment{start: s, open: open})

		case OpStar:
			e, ok := pop()
			if !ok {
				return nil, ErrMalformed
			}
			s := b.add(KindSplit, 0, e.start, none)
			b.patch(e.open, s)
			stack = append(stack, fragment{start: s, open: []slot{{state: s, out1: true}}})

		case OpPlus:
			e, ok := pop()
			if !ok {
				return nil, ErrMalformed
			}
			s := b.add(KindSplit, 0, e.start, none)
			b.patch(e.open, s)
			stack = append(stack, fragment{start: e.start, open: []slot{{state: s, out1: true}}})
		}
	}

	if len(stack) != 1 {
		return nil, ErrMalformed
	}
	b.patch(stack[0].open, MatchID)
	return &NFA{States: b.states, Start: stack[0].start}, nil
}

// Match simulates the NFA over input and reports whether the whole input
// is accepted.
func (n *NFA) Match(input string) bool {
	sim := &simulation{nfa: n, mark: make([]int, len(n.States))}
	clist := sim.start()
	for i := 0; i < len(input); i++ {
		clist = sim.step(clist, input[i])
		if len(clist) == 0 {
			return false
		}
	}
	for _, s := range clist {
		if s == MatchID {
			return true
		}
	}
	return false
}

// simulation carries the generation stamps of one NFA run.
type simulation struct {
	nfa  *NFA
	mark []int
	gen  int
}

func (sim *simulation) add(list []int, id int) []int {
	stack := []int{id}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s == none || sim.mark[s] == sim.gen {
			continue
		}
		sim.mark[s] = sim.gen
		st := &sim.nfa.States[s]
		if st.Kind == KindSplit {
			// Out is explored first.
			stack = append(stack, st.Out1, st.Out)
			continue
		}
		list = append(list, s)
	}
	return list
}

func (sim *simulation) start() []int {
	sim.gen++
	return sim.add(nil, sim.nfa.Start)
}

func (sim *simulation) step(clist []int, c byte) []int {
	sim.gen++
	var nlist []int
	for _, id := range clist {
		st := &sim.nfa.States[id]
		if (st.Kind == KindLiteral && st.Char == c) || st.Kind == KindAny {
			nlist = sim.add(nlist, st.Out)
		}
	}
	return nlist
}
