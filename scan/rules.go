package scan

// Action runs when a lexeme is accepted. A nil value with a nil error skips
// the lexeme and the scan continues with the next one.
type Action func(s *Session) (any, error)

// Rules maps accepted lexemes to actions. A lexeme is looked up by the tag
// of its definition first, then by its literal text, then the default
// action applies. With no action at all the lexeme is skipped.
type Rules struct {
	byTag  map[int]Action
	byText map[string]Action
	def    Action
}

// NewRules returns an empty rule set.
func NewRules() *Rules {
	return &Rules{
		byTag:  map[int]Action{},
		byText: map[string]Action{},
	}
}

// OnTag sets the action for lexemes of the definition tagged tag.
func (r *Rules) OnTag(tag int, a Action) *Rules {
	r.byTag[tag] = a
	return r
}

// OnText sets the action for lexemes equal to text.
func (r *Rules) OnText(text string, a Action) *Rules {
	r.byText[text] = a
	return r
}

// Default sets the action for lexemes no other rule covers.
func (r *Rules) Default(a Action) *Rules {
	r.def = a
	return r
}

func (r *Rules) lookup(tag int, text string) Action {
	if r == nil {
		return nil
	}
	if a, ok := r.byTag[tag]; ok {
		return a
	}
	if a, ok := r.byText[text]; ok {
		return a
	}
	return r.def
}

// Text is an action that returns the lexeme.
func Text(s *Session) (any, error) {
	return s.Text(), nil
}
