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

// Package conditional resolves C preprocessor conditional-compilation
// structure into buildable macro configurations. It parses nested
// `#if`/`#ifdef`/`#ifndef`/`#elif`/`#else`/`#endif` chains into a branch
// tree, translates branch conditions into symbolic macro assignments, and
// enumerates every reachable assignment combination for a function or for a
// whole file. The resulting combinations drive an exhaustive test-build
// matrix: each one becomes a group of -DNAME=VALUE compiler flags.
//
// The package is not a C preprocessor. It does not expand macros, evaluate
// arbitrary integer-constant expressions, or track redefinition; it produces
// a best-effort symbolic configuration set sufficient for test-matrix
// generation.
package conditional

import (
	"fmt"
	"regexp"
	"strings"
)

// BranchKind identifies which directive opened a branch of a conditional
// block.
type BranchKind int

const (
	IfBranch     BranchKind = iota // #if EXPR
	IfdefBranch                    // #ifdef NAME
	IfndefBranch                   // #ifndef NAME
	ElifBranch                     // #elif EXPR
	ElseBranch                     // #else
)

func (k BranchKind) String() string {
	switch k {
	case IfBranch:
		return "#if"
	case IfdefBranch:
		return "#ifdef"
	case IfndefBranch:
		return "#ifndef"
	case ElifBranch:
		return "#elif"
	case ElseBranch:
		return "#else"
	default:
		return fmt.Sprintf("BranchKind(%d)", int(k))
	}
}

type (
	// Block is one full #if…#endif chain. Its branches are mutually
	// exclusive and appear in source order: the opening branch first, then
	// any #elif arms, then an optional trailing #else. Branches whose body
	// carries an unconditional #error are excluded while parsing: the author
	// declared them uncompilable, so they never join the matrix.
	Block struct {
		Branches  []Branch
		StartLine int // line of the opening directive
		EndLine   int // line of the matching #endif
	}

	// Branch is one arm of a conditional chain, spanning [StartLine, EndLine]
	// inclusive source lines. Children holds the chains nested lexically
	// inside this arm. Blocks and branches are built once per ParseBlocks
	// call and never mutated afterwards.
	Branch struct {
		Kind              BranchKind
		RawText           string // the trimmed directive line, e.g. "#if FOO == 1"
		StartLine         int
		EndLine           int
		Children          []*Block
		HasErrorDirective bool // an unconditional #error sits directly in this arm
	}
)

// Contains reports whether the 1-based source line falls inside this arm.
func (b Branch) Contains(line int) bool {
	return b.StartLine <= line && line <= b.EndLine
}

// directiveRegex captures the keyword of a preprocessor line, tolerating
// whitespace between '#' and the keyword.
var directiveRegex = regexp.MustCompile(`^#\s*([a-z]+)`)

// directiveWord returns the preprocessor keyword of a trimmed line, or "".
func directiveWord(line string) string {
	m := directiveRegex.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return m[1]
}

// blockBuilder is the in-progress state of one open #if…#endif chain on the
// parser stack.
type blockBuilder struct {
	block   *Block
	current Branch
}

// closeCurrent finalizes the in-progress branch at endLine and appends it to
// the block unless the branch body is an unconditional #error.
func (b *blockBuilder) closeCurrent(lines []string, firstLine, endLine int) {
	b.current.EndLine = endLine
	b.current.HasErrorDirective = branchHasError(lines, firstLine, b.current.StartLine, endLine)
	if !b.current.HasErrorDirective {
		b.block.Branches = append(b.block.Branches, b.current)
	}
}

// ParseBlocks scans source lines and builds the forest of top-level
// conditional blocks. firstLine is the 1-based source line number of
// lines[0], so the same parser runs over a whole file or over a single
// function body with correct absolute numbering.
//
// Unbalanced input is tolerated rather than rejected: a stray #endif is
// ignored, and any block still open at end of input is dropped from the
// forest. Downstream stages simply see less structure.
func ParseBlocks(lines []string, firstLine int) []*Block {
	var forest []*Block
	var stack []*blockBuilder

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		lineNo := firstLine + i

		switch word := directiveWord(line); word {
		case "if", "ifdef", "ifndef":
			kind := IfBranch
			switch word {
			case "ifdef":
				kind = IfdefBranch
			case "ifndef":
				kind = IfndefBranch
			}
			stack = append(stack, &blockBuilder{
				block:   &Block{StartLine: lineNo},
				current: Branch{Kind: kind, RawText: line, StartLine: lineNo},
			})

		case "elif", "else":
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			top.closeCurrent(lines, firstLine, lineNo-1)
			kind := ElifBranch
			if word == "else" {
				kind = ElseBranch
			}
			top.current = Branch{Kind: kind, RawText: line, StartLine: lineNo}

		case "endif":
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			top.closeCurrent(lines, firstLine, lineNo)
			top.block.EndLine = lineNo
			if len(stack) > 0 {
				parent := &stack[len(stack)-1].current
				parent.Children = append(parent.Children, top.block)
			} else {
				forest = append(forest, top.block)
			}
		}
	}
	return forest
}

// branchHasError reports whether an unconditional #error sits inside the
// branch's own lines, outside any nested conditional chain. The branch's
// opening directive line is skipped; the closing line may be the #endif.
func branchHasError(lines []string, firstLine, startLine, endLine int) bool {
	level := 0
	for lineNo := startLine; lineNo <= endLine; lineNo++ {
		idx := lineNo - firstLine
		if idx < 0 || idx >= len(lines) {
			break
		}
		word := directiveWord(strings.TrimSpace(lines[idx]))
		if lineNo == startLine {
			continue
		}
		switch word {
		case "if", "ifdef", "ifndef":
			level++
		case "endif":
			level--
		case "error":
			if level == 0 {
				return true
			}
		}
	}
	return false
}
