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
package lex

import "github.com/netschema/zapc/pkg/source"

// Token tags a span of the source text with a token kind. Kinds are
// defined by the caller (pkg/parser); this package only guarantees that
// spans index contiguously into the original rune sequence.
type Token struct {
	Kind uint
	Span source.Span
}

// LexRule associates a scanner with the token kind it produces.
//
// nolint
type LexRule struct {
	scanner Scanner
	tag     uint
}

// Rule constructs a lexing rule mapping matched runes to a token kind.
func Rule(scanner Scanner, tag uint) LexRule {
	return LexRule{scanner, tag}
}

// Lexer tokenises one schema source text against an ordered rule set. A
// schema file is always lexed in one shot (the parser takes the full
// token slice up front for its lookahead), so the only operation is
// Collect; Index and Remaining exist to report where lexing stopped when
// some input matched no rule.
type Lexer struct {
	input []rune
	index int
	rules []LexRule
}

// NewLexer constructs a lexer over input with the given rules. Earlier
// rules win, which is how the schema grammar keeps `..` from being split
// into two malformed dots.
func NewLexer(input []rune, rules ...LexRule) *Lexer {
	return &Lexer{input: input, rules: rules}
}

// Index returns the position lexing has reached.
func (p *Lexer) Index() uint {
	return uint(p.index)
}

// Remaining returns how many runes were left unconsumed; non-zero after
// Collect means the input contained something no rule recognises.
func (p *Lexer) Remaining() uint {
	return uint(max(0, len(p.input)-p.index))
}

// Collect tokenises the whole input. The final token is the zero-width
// end-of-input match, provided the rule set contains an Eof rule; on
// unrecognised input Collect stops early, leaving Index/Remaining
// describing the offending tail.
func (p *Lexer) Collect() []Token {
	var tokens []Token

	for p.index <= len(p.input) {
		n, tag, ok := p.scan()
		if !ok {
			break
		}

		end := min(len(p.input), p.index+int(n))
		tokens = append(tokens, Token{tag, source.NewSpan(p.index, end)})

		if p.index == end {
			// Zero-width Eof match: step past the end so the loop ends.
			p.index++
		} else {
			p.index = end
		}
	}

	return tokens
}

// scan finds the first rule matching at the current position.
func (p *Lexer) scan() (uint, uint, bool) {
	for _, r := range p.rules {
		if n := r.scanner(p.input[p.index:]); n > 0 {
			return n, r.tag, true
		}
	}

	return 0, 0, false
}
