// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package source represents schema source text and positions within it:
// files decoded to runes, spans over them, lines recovered for diagnostic
// excerpts, and the syntax errors the lexer produces before any
// structured diagnostics exist.
package source

import (
	"fmt"
	"sort"
)

// File is one schema source file held in memory for the duration of a
// compilation. Line starts are indexed up front: every diagnostic with a
// span ends up here asking for its enclosing line, so the lookup is a
// binary search rather than a rescan of the text.
type File struct {
	filename string
	contents []rune
	// lineStarts[i] is the offset of the first rune of line i+1.
	lineStarts []int
}

// NewSourceFile decodes one schema file's bytes into a File.
func NewSourceFile(filename string, bytes []byte) *File {
	contents := []rune(string(bytes))
	lineStarts := []int{0}

	for i, c := range contents {
		if c == '\n' {
			lineStarts = append(lineStarts, i+1)
		}
	}

	return &File{filename, contents, lineStarts}
}

// Filename returns the name the file was read under, as diagnostics quote
// it.
func (s *File) Filename() string {
	return s.filename
}

// Contents returns the decoded text.
func (s *File) Contents() []rune {
	return s.contents
}

// SyntaxError constructs a syntax error over a given span of this file.
func (s *File) SyntaxError(span Span, msg string) *SyntaxError {
	return &SyntaxError{span, msg}
}

// FindFirstEnclosingLine returns the line containing the start of span. A
// span starting at or beyond the end of the text resolves to the last
// line, so a diagnostic at end-of-input still has an excerpt to point at.
func (s *File) FindFirstEnclosingLine(span Span) Line {
	idx := sort.Search(len(s.lineStarts), func(i int) bool {
		return s.lineStarts[i] > span.Start()
	}) - 1

	if idx < 0 {
		idx = 0
	}

	start := s.lineStarts[idx]
	end := len(s.contents)

	if idx+1 < len(s.lineStarts) {
		// Stop short of the newline that opened the next line.
		end = s.lineStarts[idx+1] - 1
	}

	return Line{s.contents, Span{start, end}, idx + 1}
}

// Line is one line of a source file, as quoted in a diagnostic excerpt.
type Line struct {
	// Full text of the owning file.
	text []rune
	// Span of this line within text, excluding its newline.
	span Span
	// 1-based line number.
	number int
}

// String returns the line's text.
func (p *Line) String() string {
	return string(p.text[p.span.start:p.span.end])
}

// Number returns the 1-based line number.
func (p *Line) Number() int {
	return p.number
}

// Start returns the offset of the line's first rune in the original text,
// which the renderer subtracts from a span to find its column.
func (p *Line) Start() int {
	return p.span.start
}

// SyntaxError is a lexical failure: a span of the input no token rule
// recognises, plus a message. The parser wraps it into the structured
// diagnostic model; nothing is ever thrown.
type SyntaxError struct {
	span Span
	msg  string
}

// Span returns the offending range of the original text.
func (p *SyntaxError) Span() Span {
	return p.span
}

// Message returns the message to be reported.
func (p *SyntaxError) Message() string {
	return p.msg
}

// Error implements the error interface.
func (p *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d:%s", p.span.Start(), p.span.End(), p.Message())
}
