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

// Package source prepares raw C/C++ source text for structural analysis.
package source

import "strings"

type scanState int

const (
	stateCode scanState = iota
	stateLineComment
	stateBlockComment
	stateString
	stateChar
)

// StripComments blanks out // and /* */ comments while leaving every other
// byte at its original line and column. Newlines inside block comments
// survive, so line numbers computed on the result match the input exactly.
// Comment markers inside string and character literals are left alone.
func StripComments(src string) string {
	out := []byte(src)
	state := stateCode

	for i := 0; i < len(out); i++ {
		c := out[i]
		switch state {
		case stateCode:
			switch {
			case c == '/' && i+1 < len(out) && out[i+1] == '/':
				out[i], out[i+1] = ' ', ' '
				i++
				state = stateLineComment
			case c == '/' && i+1 < len(out) && out[i+1] == '*':
				out[i], out[i+1] = ' ', ' '
				i++
				state = stateBlockComment
			case c == '"':
				state = stateString
			case c == '\'':
				state = stateChar
			}
		case stateLineComment:
			if c == '\n' {
				state = stateCode
			} else {
				out[i] = ' '
			}
		case stateBlockComment:
			if c == '*' && i+1 < len(out) && out[i+1] == '/' {
				out[i], out[i+1] = ' ', ' '
				i++
				state = stateCode
			} else if c != '\n' {
				out[i] = ' '
			}
		case stateString:
			if c == '\\' && i+1 < len(out) {
				i++
			} else if c == '"' {
				state = stateCode
			}
		case stateChar:
			if c == '\\' && i+1 < len(out) {
				i++
			} else if c == '\'' {
				state = stateCode
			}
		}
	}
	return string(out)
}

// Lines splits source text into its physical lines, normalizing Windows line
// endings first. The result is addressable by 1-based line number as
// lines[n-1].
func Lines(src string) []string {
	return strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
}
