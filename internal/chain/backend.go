package chain

import "github.com/KromDaniel/lexgen/internal/regex"

// Constant is a named value emitted in the constant block.
type Constant struct {
	Name  string
	Value string
}

// Rule binds an action body to a definition tag or, when Tag is zero, to
// the literal lexeme Key.
type Rule struct {
	Key  string
	Tag  int
	Body string
}

// Unit is everything a backend needs besides the chain itself.
type Unit struct {
	Source    string
	Constants []Constant
	Rules     []Rule
	Code      []string
}

// Backend renders a chain into some artifact. Emit calls its methods in a
// fixed order; the backend never calls back into the chain.
type Backend interface {
	Header(source string)
	Constants(consts []Constant)
	// StateEntry opens the row of state id; Condition and RowEnd calls for
	// that state follow.
	StateEntry(id int, reads bool)
	Condition(sym regex.Symbol, target int)
	RowEnd(accepting bool, tag int, retract bool)
	TransitionTable(records []Record, final int)
	RuleDispatch(rules []Rule)
	UserCode(lines []string)
	EntryPoint()
}

// Emit walks the chain and unit through b.
func Emit(c *Chain, u *Unit, b Backend) {
	b.Header(u.Source)
	b.Constants(u.Constants)
	for _, rec := range c.Records {
		b.StateEntry(rec.ID, rec.Reads)
		for _, cond := range rec.Conds {
			b.Condition(cond.Sym, cond.Next)
		}
		// The EOF sentinel satisfies no condition, wildcard included, so
		// every row ends with an action.
		b.RowEnd(rec.Accepting, rec.Tag, rec.Retract)
	}
	b.TransitionTable(c.Records, c.Final())
	b.RuleDispatch(u.Rules)
	b.UserCode(u.Code)
	b.EntryPoint()
}
