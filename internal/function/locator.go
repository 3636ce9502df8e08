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

// Package function locates C function definitions by lexical scanning, with
// no compiler involved. It expects comment-stripped input so brace counting
// is not confused by comment or string content in stripped positions.
package function

import (
	"regexp"
	"strings"
)

// Range is one function definition spanning 1-based inclusive source lines.
type Range struct {
	Name      string
	StartLine int
	EndLine   int
}

var (
	// signatureRegex matches a definition head: optional specifier/type
	// tokens, then the function name directly before '('.
	signatureRegex = regexp.MustCompile(`^(?:[A-Za-z_][\w\*]*[\s\*]+)*([A-Za-z_]\w*)\s*\(`)

	// funcMacroRegex strips a leading uppercase function-like macro wrapper,
	// e.g. FUNC(void, CODE) in AUTOSAR sources.
	funcMacroRegex = regexp.MustCompile(`^[A-Z_]+\s*\([^)]*\)\s*`)
)

// controlKeywords are statement keywords that look like call sites when
// followed by '('.
var controlKeywords = map[string]bool{
	"if": true, "else": true, "for": true, "while": true, "switch": true,
	"do": true, "return": true, "sizeof": true, "case": true, "typedef": true,
}

// maxSignatureLines bounds how far a signature may continue before its
// opening brace.
const maxSignatureLines = 16

// Locate scans the lines for function definitions at brace depth zero and
// returns their ranges in source order. Preprocessor lines do not affect
// depth tracking, so definitions split across conditional branches are still
// found.
func Locate(lines []string) []Range {
	var out []Range
	depth := 0

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "#") {
			continue
		}

		if depth == 0 {
			if name, ok := signatureName(line); ok {
				if end, ok := findBodyEnd(lines, i); ok {
					out = append(out, Range{Name: name, StartLine: i + 1, EndLine: end + 1})
					i = end
					continue
				}
			}
		}

		depth += strings.Count(line, "{") - strings.Count(line, "}")
		if depth < 0 {
			depth = 0
		}
	}
	return out
}

// signatureName extracts the function name when the line starts a definition
// head. Declarations, assignments, and control statements are rejected.
func signatureName(line string) (string, bool) {
	if line == "" || strings.HasSuffix(line, ";") {
		return "", false
	}
	if paren := strings.Index(line, "("); paren >= 0 {
		if eq := strings.Index(line, "="); eq >= 0 && eq < paren {
			return "", false
		}
	}

	head := funcMacroRegex.ReplaceAllString(line, "")
	m := signatureRegex.FindStringSubmatch(head)
	if m == nil {
		return "", false
	}
	name := m[1]
	if controlKeywords[name] {
		return "", false
	}
	return name, true
}

// findBodyEnd scans forward from the signature line for the brace that closes
// the function body and returns its 0-based line index. It reports false for
// declarations (a ';' before any '{') and for signatures whose brace never
// appears within maxSignatureLines.
func findBodyEnd(lines []string, start int) (int, bool) {
	depth := 0
	opened := false

	for i := start; i < len(lines); i++ {
		if !opened && i-start > maxSignatureLines {
			return 0, false
		}
		line := lines[i]
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		for _, c := range line {
			switch c {
			case '{':
				opened = true
				depth++
			case '}':
				depth--
				if opened && depth == 0 {
					return i, true
				}
			case ';':
				if !opened {
					return 0, false
				}
			}
		}
	}
	return 0, false
}
