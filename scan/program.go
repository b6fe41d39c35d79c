package scan

type outcomeKind uint8

const (
	outcomeGoto outcomeKind = iota
	outcomeAccept
	outcomeFail
)

// Outcome is the result of executing one state.
type Outcome struct {
	kind outcomeKind
	arg  int
}

// Goto continues the scan in state id.
func Goto(id int) Outcome { return Outcome{kind: outcomeGoto, arg: id} }

// Accept ends the lexeme and reports it under tag.
func Accept(tag int) Outcome { return Outcome{kind: outcomeAccept, arg: tag} }

// Fail abandons the current definition.
func Fail() Outcome { return Outcome{kind: outcomeFail} }

// Program is a compiled chain. Generated lexers implement it with a switch
// over state ids; Table implements it by interpretation.
type Program interface {
	// Step executes state: it may read one character through s.NextChar,
	// and returns where the scan goes next.
	Step(s *Session, state int) Outcome
	// FailTarget returns the first state of the next definition in the
	// chain, or Terminal.
	FailTarget(state int) int
}

// Cond is one outgoing condition of a table state. Any matches every byte
// and is always the last condition of a state.
type Cond struct {
	Char byte
	Any  bool
	Next int
}

// State is one entry of a transition table.
type State struct {
	Reads      bool
	Conds      []Cond
	Accepting  bool
	Tag        int
	Retract    bool
	FailTarget int
}

// Table is a Program stored as data.
type Table struct {
	States []State
}

// Step implements Program.
func (t *Table) Step(s *Session, state int) Outcome {
	st := &t.States[state]
	if st.Reads {
		if c := s.NextChar(); c != EOF {
			for _, cond := range st.Conds {
				if cond.Any || int(cond.Char) == c {
					return Goto(cond.Next)
				}
			}
		}
	}
	if st.Retract {
		s.Retract()
	}
	if st.Accepting {
		return Accept(st.Tag)
	}
	return Fail()
}

// FailTarget implements Program.
func (t *Table) FailTarget(state int) int {
	return t.States[state].FailTarget
}
