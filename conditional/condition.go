// Copyright 2025 The ccmatrix Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package conditional

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// removedMarker is the serialized form of an assignment whose macro must stay
// undefined on a path. "Undefined" cannot be expressed as a -D flag, so such
// assignments survive generation but are stripped by the final filter.
const removedMarker = "**remove**"

// staticallyFalseMarker is the serialized form of a condition that can never
// hold, e.g. "#if 0 == 1". A function whose external path carries it is
// excluded from the matrix entirely.
const staticallyFalseMarker = "0=1"

type (
	// Value is the right-hand side of a macro assignment: either a literal
	// token or the "must stay undefined" sentinel.
	Value struct {
		text      string
		undefined bool
	}

	// Assignment binds one macro name to a value for a single configuration.
	Assignment struct {
		Name  string
		Value Value
	}
)

// Literal returns a Value carrying a raw token.
func Literal(text string) Value { return Value{text: text} }

// LiteralInt returns a Value carrying a decimal integer.
func LiteralInt(v int) Value { return Value{text: strconv.Itoa(v)} }

// Undefined is the sentinel Value for macros that must be absent on a path,
// such as the #else arm of an #ifdef.
var Undefined = Value{text: removedMarker, undefined: true}

// IsUndefined reports whether the value is the undefined sentinel.
func (v Value) IsUndefined() bool { return v.undefined }

func (v Value) String() string { return v.text }

func (a Assignment) String() string { return a.Name + "=" + a.Value.String() }

// standardValues maps conventional boolean/status macro names to the integer
// each stands for. When a comparison puts the constant on the left
// ("#if (STD_ON == FEATURE_X)") the operands are swapped before translation
// so the macro name ends up on the left of the assignment.
var standardValues = map[string]int{
	"STD_ON":    1,
	"STD_OFF":   0,
	"TRUE":      1,
	"FALSE":     0,
	"E_OK":      0,
	"E_NOT_OK":  1,
	"NULL_PTR":  0,
	"ENABLED":   1,
	"DISABLED":  0,
	"ACTIVE":    1,
	"INACTIVE":  0,
	"AUTOMATIC": 0,
	"STATIC":    1,
	"TYPEDEF":   2,
	"CONST":     1,
	"VAR":       0,
	"ENABLE":    1,
	"DISABLE":   0,
}

// Translator converts branch conditions into macro assignments. The zero
// value uses the built-in standard-value table; Standard, when set, extends
// or overrides it.
type Translator struct {
	Standard map[string]int
}

func (t Translator) standardValue(name string) (int, bool) {
	if v, ok := t.Standard[name]; ok {
		return v, true
	}
	v, ok := standardValues[name]
	return v, ok
}

func (t Translator) isStandard(name string) bool {
	_, ok := t.standardValue(name)
	return ok
}

// A valid macro identifier must start with '_' or a letter, followed by
// letters, decimal digits, or '_'.
var macroIdentifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var (
	ifdefDirectiveRegex  = regexp.MustCompile(`#\s*ifdef\s+(\w+)`)
	ifndefDirectiveRegex = regexp.MustCompile(`#\s*ifndef\s+(\w+)`)
	ifExprRegex          = regexp.MustCompile(`#\s*(?:el)?if\s+(.+)`)
	definedCallRegex     = regexp.MustCompile(`^defined\s*\(\s*(\w+)\s*\)`)
	definedWordRegex     = regexp.MustCompile(`^defined\s+(\w+)`)
	functionCallRegex    = regexp.MustCompile(`\w+\s*\([^)]*\)`)
	leadingIdentRegex    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)
	decimalRegex         = regexp.MustCompile(`^\d+$`)

	// Sibling-branch patterns used to infer the configuration of #else arms.
	equalsClaimRegex      = regexp.MustCompile(`(\w+)\s*==\s*(\d+)`)
	definedSiblingRegex   = regexp.MustCompile(`defined[\s(]+\s*(\w+)`)
	greaterZeroRegex      = regexp.MustCompile(`(\w+)\s*>\s*0\b`)
	bareConditionRegex    = regexp.MustCompile(`^#\s*(?:el)?if\s+\(?\s*([A-Za-z_]\w*)\s*\)?\s*$`)
	comparisonOperatorSet = "<>=!"
)

// Translate converts one branch of enclosing into zero or more macro
// assignments. Conditions that cannot be represented yield nil rather than an
// error; the branch still contributes its children's combinations downstream.
func (t Translator) Translate(branch Branch, enclosing *Block) []Assignment {
	switch branch.Kind {
	case IfdefBranch:
		if m := ifdefDirectiveRegex.FindStringSubmatch(branch.RawText); m != nil {
			return []Assignment{{Name: m[1], Value: LiteralInt(1)}}
		}
	case IfndefBranch:
		if m := ifndefDirectiveRegex.FindStringSubmatch(branch.RawText); m != nil {
			return []Assignment{{Name: m[1], Value: LiteralInt(0)}}
		}
	case IfBranch, ElifBranch:
		if m := ifExprRegex.FindStringSubmatch(branch.RawText); m != nil {
			return t.translateExpr(m[1])
		}
	case ElseBranch:
		return t.translateElse(enclosing)
	}
	return nil
}

// translateExpr handles a full #if/#elif expression. One fully-enclosing
// parenthesis layer is stripped, a top-level || keeps only its first operand
// (the first listed alternative stands for the whole disjunction), and a
// top-level && contributes every operand.
func (t Translator) translateExpr(expr string) []Assignment {
	expr = strings.TrimSpace(expr)
	if !balancedParens(expr) {
		return nil
	}
	expr = stripOuterParens(expr)

	if pos := topLevelIndex(expr, "||"); pos >= 0 {
		return t.translateExpr(expr[:pos])
	}
	if parts := splitTopLevel(expr, "&&"); len(parts) > 1 {
		var out []Assignment
		for _, part := range parts {
			out = append(out, t.translateExpr(part)...)
		}
		return out
	}
	if a, ok := t.translateSingle(expr); ok {
		return []Assignment{a}
	}
	return nil
}

// translateSingle resolves one comparison or bare condition to an assignment.
// ok is false when the condition carries no representable macro constraint:
// function-call shapes, invalid names, and bare numeric literals.
func (t Translator) translateSingle(cond string) (Assignment, bool) {
	cond = strings.TrimSpace(cond)

	if !strings.HasPrefix(cond, "defined") && functionCallRegex.MatchString(cond) {
		return Assignment{}, false
	}
	for {
		stripped := stripOuterParens(cond)
		if stripped == cond {
			break
		}
		cond = stripped
	}

	if m := definedCallRegex.FindStringSubmatch(cond); m != nil {
		return Assignment{Name: m[1], Value: LiteralInt(1)}, true
	}
	if m := definedWordRegex.FindStringSubmatch(cond); m != nil {
		return Assignment{Name: m[1], Value: LiteralInt(1)}, true
	}

	for _, op := range []string{"!=", "==", ">=", "<=", ">", "<"} {
		idx := strings.Index(cond, op)
		if idx < 0 {
			continue
		}
		name := cleanMacroName(cond[:idx])
		value := strings.TrimSpace(cond[idx+len(op):])
		if t.isStandard(name) && !t.isStandard(value) {
			// The author wrote the conventional constant on the left.
			name, value = cleanMacroName(value), name
		}
		return t.translateComparison(name, op, value)
	}

	// Bare condition: a macro tested for truth.
	name := cleanMacroName(cond)
	if decimalRegex.MatchString(name) || !macroIdentifierRegex.MatchString(name) {
		return Assignment{}, false
	}
	return Assignment{Name: name, Value: LiteralInt(1)}, true
}

// translateComparison maps one comparison to the macro value that satisfies
// it. Value arithmetic (>, <, !=) applies to decimal literals only; anything
// else falls back to the literal or a conservative default.
func (t Translator) translateComparison(name, op, value string) (Assignment, bool) {
	switch op {
	case "==", ">=", "<=":
		return Assignment{Name: name, Value: Literal(value)}, true
	case ">":
		if n, err := strconv.Atoi(value); err == nil {
			return Assignment{Name: name, Value: LiteralInt(n + 1)}, true
		}
		return Assignment{Name: name, Value: Literal(value)}, true
	case "<":
		if n, err := strconv.Atoi(value); err == nil {
			return Assignment{Name: name, Value: LiteralInt(max(0, n-1))}, true
		}
		return Assignment{Name: name, Value: LiteralInt(0)}, true
	case "!=":
		if decimalRegex.MatchString(value) {
			n, _ := strconv.Atoi(value)
			switch n {
			case 0:
				return Assignment{Name: name, Value: LiteralInt(1)}, true
			case 1:
				return Assignment{Name: name, Value: LiteralInt(0)}, true
			default:
				return Assignment{Name: name, Value: LiteralInt(n + 1)}, true
			}
		}
		if std, ok := t.standardValue(value); ok {
			return Assignment{Name: name, Value: LiteralInt(std + 1)}, true
		}
		return Assignment{Name: name, Value: LiteralInt(0)}, true
	default:
		return Assignment{}, false
	}
}

// translateElse infers the configuration of an #else arm from its sibling
// branches: the governing macro name and the values those siblings already
// claim. When no governing macro can be recovered the arm contributes no
// assignment.
func (t Translator) translateElse(enclosing *Block) []Assignment {
	if enclosing == nil {
		return nil
	}

	var name string
	var claimed []int
	for _, sibling := range enclosing.Branches {
		switch sibling.Kind {
		case IfdefBranch:
			if m := ifdefDirectiveRegex.FindStringSubmatch(sibling.RawText); m != nil {
				return []Assignment{{Name: m[1], Value: Undefined}}
			}
		case IfndefBranch:
			if m := ifndefDirectiveRegex.FindStringSubmatch(sibling.RawText); m != nil {
				return []Assignment{{Name: m[1], Value: LiteralInt(1)}}
			}
		case IfBranch, ElifBranch:
			cond := sibling.RawText
			if m := equalsClaimRegex.FindStringSubmatch(cond); m != nil {
				name = m[1]
				if v, err := strconv.Atoi(m[2]); err == nil {
					claimed = append(claimed, v)
				}
			} else if m := definedSiblingRegex.FindStringSubmatch(cond); m != nil {
				// A sibling requires the macro defined, so the else path
				// leaves it at 0.
				return []Assignment{{Name: m[1], Value: LiteralInt(0)}}
			} else if m := greaterZeroRegex.FindStringSubmatch(cond); m != nil {
				name = m[1]
				claimed = append(claimed, 1)
			} else if !strings.ContainsAny(cond, comparisonOperatorSet) {
				if m := bareConditionRegex.FindStringSubmatch(cond); m != nil && name == "" {
					name = m[1]
					claimed = append(claimed, 1)
				}
			}
		}
	}

	if name == "" || len(claimed) == 0 {
		return nil
	}
	if !slices.Contains(claimed, 0) {
		return []Assignment{{Name: name, Value: LiteralInt(0)}}
	}
	return []Assignment{{Name: name, Value: LiteralInt(slices.Max(claimed) + 1)}}
}

// cleanMacroName strips defined(...) wrappers and parentheses from an operand
// and keeps its leading identifier. Operands without any identifier (such as
// the literal 0) are returned as-is.
func cleanMacroName(operand string) string {
	operand = strings.TrimSpace(operand)
	if m := definedCallRegex.FindStringSubmatch(operand); m != nil {
		return m[1]
	}
	if m := definedWordRegex.FindStringSubmatch(operand); m != nil {
		return m[1]
	}
	operand = strings.Trim(operand, "() \t")
	if m := leadingIdentRegex.FindString(operand); m != "" {
		return m
	}
	return operand
}

// balancedParens reports whether every ')' has a matching '('.
func balancedParens(s string) bool {
	depth := 0
	for _, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// stripOuterParens removes one pair of parentheses when they enclose the
// whole expression.
func stripOuterParens(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return s
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i < len(s)-1 {
				return s // the opening paren closes before the end
			}
		}
	}
	return strings.TrimSpace(s[1 : len(s)-1])
}

// topLevelIndex returns the first index of op outside any parentheses, or -1.
func topLevelIndex(s, op string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 && strings.HasPrefix(s[i:], op) {
			return i
		}
	}
	return -1
}

// splitTopLevel splits s on every occurrence of op at parenthesis depth zero.
func splitTopLevel(s, op string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 && strings.HasPrefix(s[i:], op) {
			parts = append(parts, strings.TrimSpace(s[start:i]))
			i += len(op) - 1
			start = i + 1
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}
