// Package codegen provides code generation helpers and constants.
package codegen

import (
	"fmt"
	"go/token"
	"strings"
)

// ScanPath is the import path of the runtime generated lexers use.
const ScanPath = "github.com/KromDaniel/lexgen/scan"

// Variable names used in generated code
const (
	ReceiverName = "lx"
	SessionName  = "s"
	StateName    = "state"
	CharName     = "c"
	InputName    = "input"
	RulesName    = "r"
	DefaultLexer = "Lexer"
)

// StateLabel returns the comment label for a global state.
func StateLabel(id int) string {
	return fmt.Sprintf("State%d", id)
}

// ProgramName returns the name of the unexported program type of a lexer.
func ProgramName(lexer string) string {
	return LowerFirst(lexer) + "Program"
}

// ConstructorName returns the name of the lexer's constructor, exported
// only when the lexer type is.
func ConstructorName(lexer string) string {
	if IsExported(lexer) {
		return "New" + lexer
	}
	return "new" + UpperFirst(lexer)
}

// FailTargetsName returns the name of a lexer's fail-target array.
func FailTargetsName(lexer string) string {
	return LowerFirst(lexer) + "FailTargets"
}

// RuleMethodName returns the method implementing the rule at index. Keys
// that are identifiers keep their name, anything else is numbered.
func RuleMethodName(key string, index int) string {
	if IsIdentifier(key) {
		return "rule" + UpperFirst(key)
	}
	return fmt.Sprintf("rule%d", index)
}

// IsIdentifier reports whether s is a Go identifier that is not a keyword.
func IsIdentifier(s string) bool {
	return token.IsIdentifier(s)
}

// IsExported reports whether s starts with an upper-case ASCII letter.
func IsExported(s string) bool {
	return s != "" && s[0] >= 'A' && s[0] <= 'Z'
}

// LowerFirst converts the first character of a string to lowercase.
func LowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// UpperFirst converts the first character of a string to uppercase.
func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
