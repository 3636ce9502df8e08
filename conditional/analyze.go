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
	"strings"

	"github.com/ccmatrix/ccmatrix/internal/collections"
)

// LineRange is a 1-based inclusive span of source lines, typically one
// function body.
type LineRange struct {
	Start, End int
}

// Analyzer produces the full configuration matrix for functions within a
// source file.
type Analyzer struct {
	Translator Translator
}

// Analyze returns every macro combination under which the given line range is
// both reachable and fully covered: the external path enclosing the range
// crossed with all internal alternatives inside it. It returns nil when the
// range is invalid or when the external path is statically false.
func (a Analyzer) Analyze(lines []string, r LineRange) []Combination {
	if r.Start < 1 || r.End < r.Start || r.Start > len(lines) {
		return nil
	}

	forest := ParseBlocks(lines, 1)
	external := a.Translator.Locate(forest, r.Start)
	for _, assignment := range external {
		if assignment.String() == staticallyFalseMarker {
			return nil
		}
	}

	body := lines[r.Start-1 : min(r.End, len(lines))]
	gen := Generator{Translator: a.Translator}
	internal := gen.ExpandForest(ParseBlocks(body, r.Start))

	var combos []Combination
	if len(internal) == 0 {
		combos = []Combination{slices.Clone(external)}
	} else {
		combos = collections.Map(internal, func(inner Combination) Combination {
			merged := Combination(slices.Clone(external))
			return append(merged, inner...)
		})
	}

	combos = collections.Map(combos, normalizeOrder)
	combos = enforceUnique(combos)
	return filterCombinations(combos)
}

// AnalyzeFile analyzes every range and merges the results into the file-wide
// matrix.
func (a Analyzer) AnalyzeFile(lines []string, ranges []LineRange) []Combination {
	perFunction := collections.FlatMap(ranges, func(r LineRange) []Combination {
		return a.Analyze(lines, r)
	})
	return Aggregate(perFunction)
}

// conventionalMacroNameRegex matches the SCREAMING_SNAKE_CASE shape macro
// names conventionally take.
var conventionalMacroNameRegex = regexp.MustCompile(`^[A-Z][A-Z0-9]*(?:_[A-Z0-9]+)*$`)

// normalizeOrder repairs assignments whose sides ended up reversed, such as a
// value-position token that looks like a macro name while the name does not.
// The repair is idempotent.
func normalizeOrder(c Combination) Combination {
	return Combination(collections.Map(c, func(a Assignment) Assignment {
		if a.Value.IsUndefined() {
			return a
		}
		value := a.Value.String()
		if !conventionalMacroNameRegex.MatchString(a.Name) && conventionalMacroNameRegex.MatchString(value) {
			return Assignment{Name: value, Value: Literal(a.Name)}
		}
		return a
	}))
}

// enforceUnique splits any combination that binds the same macro name twice
// into sibling combinations, one per distinct value.
func enforceUnique(combos []Combination) []Combination {
	return dedupe(collections.FlatMap(combos, func(c Combination) []Combination {
		if len(c) == 0 {
			return []Combination{c}
		}
		return mergePool(c)
	}))
}

// cKeywords are names that can never be macro configuration knobs. A
// condition mentioning one came from code the symbolic translation
// misclassified.
var cKeywords = map[string]bool{
	"auto": true, "break": true, "case": true, "char": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true,
	"else": true, "enum": true, "extern": true, "float": true, "for": true,
	"goto": true, "if": true, "inline": true, "int": true, "long": true,
	"register": true, "restrict": true, "return": true, "short": true,
	"signed": true, "sizeof": true, "static": true, "struct": true,
	"switch": true, "typedef": true, "union": true, "unsigned": true,
	"void": true, "volatile": true, "while": true,
	"bool": true, "true": true, "false": true, "class": true,
	"namespace": true, "template": true, "typename": true, "using": true,
	"define": true, "include": true, "pragma": true, "defined": true,
}

// structuralChars in a name mean the "macro" is really an expression or code
// fragment.
const structuralChars = " \t\n\r.[]{}\"'"

// filterCombinations drops assignments that cannot become -D flags: invalid
// or keyword names, call shapes, and undefined-sentinel values. Combinations
// emptied by the filter are kept as empty combinations.
func filterCombinations(combos []Combination) []Combination {
	return collections.Map(combos, func(c Combination) Combination {
		kept := collections.Filter(c, func(a Assignment) bool {
			return validFlagName(a.Name) && !strings.Contains(a.Value.String(), "**")
		})
		return Combination(kept)
	})
}

func validFlagName(name string) bool {
	if strings.Contains(name, "(") || strings.Contains(name, ")") {
		return false
	}
	if strings.ContainsAny(name, structuralChars) {
		return false
	}
	if !macroIdentifierRegex.MatchString(name) {
		return false
	}
	return !cKeywords[strings.ToLower(name)]
}
