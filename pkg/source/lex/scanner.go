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

// Package lex provides the rune scanners the schema lexer is assembled
// from. Schema source is always UTF-8 text decoded to runes (see
// pkg/source.File), so the combinators here are specialised to runes
// rather than generic over an item type; the set is exactly what the
// token rules in pkg/parser need.
package lex

// Scanner reports how many leading runes of its input it accepts; zero
// means no match. Scanners never report a partial success: a rule either
// claims a prefix or rejects.
type Scanner func(input []rune) uint

// Unit accepts exactly the given runes, in order.
func Unit(chars ...rune) Scanner {
	return func(input []rune) uint {
		if len(input) < len(chars) {
			return 0
		}

		for i, c := range chars {
			if input[i] != c {
				return 0
			}
		}

		return uint(len(chars))
	}
}

// Within accepts any single rune in the inclusive range [lowest, highest].
func Within(lowest, highest rune) Scanner {
	return func(input []rune) uint {
		if len(input) != 0 && lowest <= input[0] && input[0] <= highest {
			return 1
		}

		return 0
	}
}

// Or tries each scanner in order, returning the first match. Order
// matters: the schema lexer relies on it to try `..` before `.` would
// ever be considered part of a float, and the empty string literal before
// the general one.
func Or(scanners ...Scanner) Scanner {
	return func(input []rune) uint {
		for _, scanner := range scanners {
			if n := scanner(input); n > 0 {
				return n
			}
		}

		return 0
	}
}

// And succeeds only when every scanner matches at the start of the input,
// returning the longest match. It differs from Sequence in that the
// scanners all inspect the same position: the schema lexer uses it for
// "first rune then rest" identifier shapes where the second scanner
// re-reads from the start.
func And(scanners ...Scanner) Scanner {
	return func(input []rune) uint {
		n := uint(0)

		for _, scanner := range scanners {
			m := scanner(input)
			if m == 0 {
				return 0
			}

			n = max(n, m)
		}

		return n
	}
}

// Sequence matches the scanners one after another, each consuming the
// input where the previous one stopped; any failure rejects the whole
// sequence.
func Sequence(scanners ...Scanner) Scanner {
	return func(input []rune) uint {
		n := uint(0)

		for _, scanner := range scanners {
			if n == uint(len(input)) {
				return 0
			}

			m := scanner(input[n:])
			if m == 0 {
				return 0
			}

			n += m
		}

		return n
	}
}

// Many matches zero or more repetitions of the scanner.
func Many(scanner Scanner) Scanner {
	return func(input []rune) uint {
		index := uint(0)

		for index < uint(len(input)) {
			n := scanner(input[index:])
			if n == 0 {
				break
			}

			index += n
		}

		return index
	}
}

// Until consumes everything up to (but excluding) the given rune, or the
// whole input if it never occurs. A zero-length match is possible and,
// inside Sequence, counts as failure — callers wanting "possibly empty"
// bodies provide an explicit empty alternative via Or.
func Until(stop rune) Scanner {
	return func(input []rune) uint {
		for i, c := range input {
			if c == stop {
				return uint(i)
			}
		}

		return uint(len(input))
	}
}

// Eof matches only the exhausted input, letting the lexer emit a final
// end-of-input token with a zero-width span.
func Eof() Scanner {
	return func(input []rune) uint {
		if len(input) == 0 {
			return 1
		}

		return 0
	}
}
