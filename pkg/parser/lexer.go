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

// Package parser implements the lexer and recursive-descent parser for the
// schema language (§4.1): source text in, syntax tree (pkg/ast) plus
// recoverable diagnostics out.
package parser

import (
	"github.com/netschema/zapc/pkg/source"
	"github.com/netschema/zapc/pkg/source/lex"
)

// Token kinds. Keywords (opt, type, event, funct, struct, enum, map, set,
// ...) are not given their own kinds: they lex as IDENT and are recognised
// contextually by the parser, since nearly every one of them is also a
// legal user identifier (a type could plausibly be named `data`).
const (
	END_OF uint = iota
	WSPACE
	COMMENT
	IDENT
	NUMBER
	STRING
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	COMMA
	COLON
	EQUALS
	QUESTION
	DOTDOT
)

var whitespace = lex.Many(lex.Or(lex.Unit(' '), lex.Unit('\t'), lex.Unit('\r'), lex.Unit('\n')))

var lineComment = lex.And(lex.Unit('/', '/'), lex.Until('\n'))

var digit = lex.Within('0', '9')

// digits1 requires at least one digit, unlike lex.Many(digit) which also
// matches zero digits. Without this, "1.." (a number followed by a range
// separator) would lex as the malformed float "1." plus a stray ".".
var digits1 = lex.And(digit, lex.Many(digit))

var number = lex.Or(
	lex.Sequence(lex.Unit('-'), digits1, lex.Unit('.'), digits1),
	lex.Sequence(digits1, lex.Unit('.'), digits1),
	lex.Sequence(lex.Unit('-'), digits1),
	digits1,
)

var identStart = lex.Or(lex.Unit('_'), lex.Within('a', 'z'), lex.Within('A', 'Z'))
var identRest = lex.Many(lex.Or(lex.Unit('_'), lex.Within('a', 'z'), lex.Within('A', 'Z'), digit))
var identifier = lex.And(identStart, identRest)

// A string literal is `"` followed by anything but `"`, followed by `"`.
// Escapes are not supported by the schema grammar. The empty literal is its
// own alternative since Sequence treats a zero-length Until match as
// failure.
var stringLit = lex.Or(
	lex.Unit('"', '"'),
	lex.Sequence(lex.Unit('"'), lex.Until('"'), lex.Unit('"')),
)

var rules = []lex.LexRule{
	lex.Rule(lineComment, COMMENT),
	lex.Rule(lex.Unit('.', '.'), DOTDOT),
	lex.Rule(lex.Unit('('), LPAREN),
	lex.Rule(lex.Unit(')'), RPAREN),
	lex.Rule(lex.Unit('{'), LBRACE),
	lex.Rule(lex.Unit('}'), RBRACE),
	lex.Rule(lex.Unit('['), LBRACKET),
	lex.Rule(lex.Unit(']'), RBRACKET),
	lex.Rule(lex.Unit(','), COMMA),
	lex.Rule(lex.Unit(':'), COLON),
	lex.Rule(lex.Unit('='), EQUALS),
	lex.Rule(lex.Unit('?'), QUESTION),
	lex.Rule(whitespace, WSPACE),
	lex.Rule(stringLit, STRING),
	lex.Rule(number, NUMBER),
	lex.Rule(identifier, IDENT),
	lex.Rule(lex.Eof(), END_OF),
}

// Lex tokenises a schema source file, dropping whitespace and comments. On
// success the final token is always END_OF, so callers can always take a
// lookahead; on input no rule recognises, it returns no tokens and one
// syntax error spanning the unconsumed tail.
func Lex(srcfile *source.File) ([]lex.Token, []source.SyntaxError) {
	var (
		lexer  = lex.NewLexer(srcfile.Contents(), rules...)
		tokens = lexer.Collect()
	)

	if lexer.Remaining() != 0 {
		start := int(lexer.Index())
		end := start + int(lexer.Remaining())
		err := srcfile.SyntaxError(source.NewSpan(start, end), "unrecognised characters in input")

		return nil, []source.SyntaxError{*err}
	}

	filtered := tokens[:0]

	for _, t := range tokens {
		if t.Kind != WSPACE && t.Kind != COMMENT {
			filtered = append(filtered, t)
		}
	}

	return filtered, nil
}
