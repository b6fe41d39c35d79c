package compiler

import (
	"fmt"
	"strings"

	"github.com/KromDaniel/lexgen/internal/chain"
	"github.com/KromDaniel/lexgen/internal/codegen"
	"github.com/KromDaniel/lexgen/internal/regex"
	"github.com/dave/jennifer/jen"
)

var _ chain.Backend = (*Compiler)(nil)

// Header emits the file comment, the Lexer type and its constructor.
func (c *Compiler) Header(source string) {
	c.file.HeaderComment(fmt.Sprintf("Code generated by lexgen from %s. DO NOT EDIT.", source))

	name := c.config.Name
	c.file.Commentf("%s scans the tokens defined in %s. It embeds the scan session, so", name, source)
	c.file.Comment("NextToken, Start, End, Text and AtEOF are available directly.")
	c.file.Type().Id(name).Struct(
		jen.Op("*").Add(scanQual("Session")),
	)
	c.file.Line()

	ctor := codegen.ConstructorName(name)
	c.file.Commentf("%s returns a %s over %s.", ctor, name, codegen.InputName)
	c.file.Func().Id(ctor).Params(jen.Id(codegen.InputName).String()).Op("*").Id(name).Block(
		jen.Id(codegen.ReceiverName).Op(":=").Op("&").Id(name).Values(),
		jen.Id(codegen.ReceiverName).Dot("Session").Op("=").Add(scanQual("NewSession")).Call(
			jen.Id(codegen.InputName),
			jen.Id(codegen.ProgramName(name)).Values(),
			jen.Id(codegen.ReceiverName).Dot("rules").Call(),
		),
		jen.Return(jen.Id(codegen.ReceiverName)),
	)
	c.file.Line()
}

// Constants emits the constant block in the given order.
func (c *Compiler) Constants(consts []chain.Constant) {
	if len(consts) == 0 {
		return
	}
	c.file.Const().DefsFunc(func(g *jen.Group) {
		for _, k := range consts {
			g.Id(k.Name).Op("=").Op(k.Value)
		}
	})
	c.file.Line()
}

// StateEntry starts the case of state id.
func (c *Compiler) StateEntry(id int, reads bool) {
	c.row = &row{id: id, reads: reads}
}

// Condition adds one condition to the current state.
func (c *Compiler) Condition(sym regex.Symbol, target int) {
	c.row.conds = append(c.row.conds, chain.Cond{Sym: sym, Next: target})
}

// RowEnd closes the current state. Conditions with the same target share a
// case of the byte switch; the wildcard comes after the switch and never
// matches EOF.
func (c *Compiler) RowEnd(accepting bool, tag int, retract bool) {
	r := c.row
	c.row = nil

	label := codegen.StateLabel(r.id)
	if e, ok := c.config.Chain.EntryOf(r.id); ok {
		label += " " + e.Name
		if r.id == e.First {
			label += " start"
		}
	}
	body := []jen.Code{jen.Comment(label)}
	if r.reads {
		ch := jen.Id(codegen.CharName)
		body = append(body, ch.Clone().Op(":=").Id(codegen.SessionName).Dot("NextChar").Call())

		var literal, wild []chain.Cond
		for _, cond := range r.conds {
			if cond.IsAny() {
				wild = append(wild, cond)
				continue
			}
			literal = append(literal, cond)
		}
		if len(literal) > 0 {
			body = append(body, jen.Switch(ch.Clone()).BlockFunc(func(g *jen.Group) {
				for _, grp := range groupByTarget(literal) {
					g.CaseFunc(func(cg *jen.Group) {
						for _, sym := range grp.syms {
							cg.LitRune(rune(sym))
						}
					}).Block(jen.Return(scanQual("Goto").Call(jen.Lit(grp.target))))
				}
			}))
		}
		for _, cond := range wild {
			body = append(body, jen.If(ch.Clone().Op("!=").Add(scanQual("EOF"))).Block(
				jen.Return(scanQual("Goto").Call(jen.Lit(cond.Next))),
			))
		}
	}
	if retract {
		body = append(body, jen.Id(codegen.SessionName).Dot("Retract").Call())
	}
	if accepting {
		body = append(body, jen.Return(scanQual("Accept").Call(c.tag(tag))))
	} else {
		body = append(body, jen.Return(scanQual("Fail").Call()))
	}

	c.cases = append(c.cases, jen.Case(jen.Lit(r.id)).Block(body...))
}

type targetGroup struct {
	target int
	syms   []regex.Symbol
}

// groupByTarget merges conditions by target, keeping the order in which
// targets first appear.
func groupByTarget(conds []chain.Cond) []targetGroup {
	var groups []targetGroup
	index := map[int]int{}
	for _, cond := range conds {
		i, ok := index[cond.Next]
		if !ok {
			i = len(groups)
			index[cond.Next] = i
			groups = append(groups, targetGroup{target: cond.Next})
		}
		groups[i].syms = append(groups[i].syms, cond.Sym)
	}
	return groups
}

// TransitionTable emits the program type with its Step switch and the
// fail-target array.
func (c *Compiler) TransitionTable(records []chain.Record, final int) {
	prog := codegen.ProgramName(c.config.Name)
	fails := codegen.FailTargetsName(c.config.Name)
	session := jen.Id(codegen.SessionName).Op("*").Add(scanQual("Session"))

	c.file.Type().Id(prog).Struct()
	c.file.Line()

	c.file.Comment("Step executes one state of the chain.")
	c.file.Func().Params(jen.Id(prog)).Id("Step").
		Params(session, jen.Id(codegen.StateName).Int()).
		Add(scanQual("Outcome")).
		Block(
			jen.Switch(jen.Id(codegen.StateName)).Block(c.cases...),
			jen.Return(scanQual("Fail").Call()),
		)
	c.file.Line()

	c.file.Var().Id(fails).Op("=").Index(jen.Lit(final)).Int().ValuesFunc(func(g *jen.Group) {
		for _, rec := range records {
			if rec.FailTarget == chain.Terminal {
				g.Add(scanQual("Terminal"))
				continue
			}
			g.Lit(rec.FailTarget)
		}
	})
	c.file.Line()

	c.file.Comment("FailTarget returns the state the next definition starts in.")
	c.file.Func().Params(jen.Id(prog)).Id("FailTarget").
		Params(jen.Id(codegen.StateName).Int()).Int().
		Block(jen.Return(jen.Id(fails).Index(jen.Id(codegen.StateName))))
	c.file.Line()
}

// RuleDispatch emits one method per rule and the rule table binding them.
func (c *Compiler) RuleDispatch(rules []chain.Rule) {
	used := map[string]bool{}
	names := make([]string, len(rules))
	for i, r := range rules {
		name := codegen.RuleMethodName(r.Key, i)
		if used[name] {
			name = fmt.Sprintf("rule%d", i)
		}
		used[name] = true
		names[i] = name
	}

	c.method("rules").Params().Op("*").Add(scanQual("Rules")).BlockFunc(func(g *jen.Group) {
		g.Id(codegen.RulesName).Op(":=").Add(scanQual("NewRules")).Call()
		for i, r := range rules {
			method := jen.Id(codegen.ReceiverName).Dot(names[i])
			if r.Tag != 0 {
				g.Id(codegen.RulesName).Dot("OnTag").Call(c.tag(r.Tag), method)
				continue
			}
			g.Id(codegen.RulesName).Dot("OnText").Call(jen.Lit(r.Key), method)
		}
		g.Return(jen.Id(codegen.RulesName))
	})
	c.file.Line()

	for i, r := range rules {
		c.file.Commentf("%s runs for %q.", names[i], r.Key)
		c.method(names[i]).
			Params(jen.Op("*").Add(scanQual("Session"))).
			Params(jen.Any(), jen.Error()).
			BlockFunc(func(g *jen.Group) {
				g.Op(r.Body)
				if !endsWithReturn(r.Body) {
					g.Return(jen.Nil(), jen.Nil())
				}
			})
		c.file.Line()
	}
}

func endsWithReturn(body string) bool {
	stmts := strings.Split(strings.TrimRight(strings.TrimSpace(body), ";"), ";")
	last := strings.TrimSpace(stmts[len(stmts)-1])
	return last == "return" || strings.HasPrefix(last, "return ")
}

// UserCode emits the code section verbatim. Import declarations at its top
// are merged into the file's imports.
func (c *Compiler) UserCode(lines []string) {
	imports, rest, err := splitImports(lines)
	if err != nil {
		c.logger.Log("Keeping code section imports in place: %v", err)
		imports, rest = nil, lines
	}
	c.imports = append(c.imports, imports...)

	code := strings.TrimSpace(strings.Join(rest, "\n"))
	if code == "" {
		return
	}
	c.file.Add(jen.Op(code))
	c.file.Line()
}

// EntryPoint emits Tokenize and, for package main, a main function that
// tokenizes a file or standard input.
func (c *Compiler) EntryPoint() {
	name := c.config.Name
	c.file.Commentf("Tokenize scans %s to the end with a fresh %s.", codegen.InputName, name)
	c.file.Func().Id("Tokenize").Params(jen.Id(codegen.InputName).String()).
		Params(jen.Index().Add(scanQual("Token")), jen.Error()).
		Block(jen.Return(jen.Id(codegen.ConstructorName(name)).Call(jen.Id(codegen.InputName)).Dot("Tokens").Call()))

	if c.config.Package != "main" {
		return
	}
	c.file.Line()
	c.file.Func().Id("main").Params().Block(
		jen.Var().Id("data").Index().Byte(),
		jen.Var().Err().Error(),
		jen.If(jen.Len(jen.Qual("os", "Args")).Op(">").Lit(1)).Block(
			jen.List(jen.Id("data"), jen.Err()).Op("=").Qual("os", "ReadFile").Call(jen.Qual("os", "Args").Index(jen.Lit(1))),
		).Else().Block(
			jen.List(jen.Id("data"), jen.Err()).Op("=").Qual("io", "ReadAll").Call(jen.Qual("os", "Stdin")),
		),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Qual("fmt", "Fprintln").Call(jen.Qual("os", "Stderr"), jen.Err()),
			jen.Qual("os", "Exit").Call(jen.Lit(1)),
		),
		jen.List(jen.Id("toks"), jen.Err()).Op(":=").Id("Tokenize").Call(jen.String().Call(jen.Id("data"))),
		jen.For(jen.List(jen.Id("_"), jen.Id("tok")).Op(":=").Range().Id("toks")).Block(
			jen.Qual("fmt", "Println").Call(jen.Id("tok")),
		),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Qual("fmt", "Fprintln").Call(jen.Qual("os", "Stderr"), jen.Err()),
			jen.Qual("os", "Exit").Call(jen.Lit(1)),
		),
	)
}
