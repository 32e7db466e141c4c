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

// Package lex provides small scanner combinators and a generic lexer built
// on top of them, in the style of a hand-written recursive-descent tokenizer
// rather than a regex engine: each rule is a function from a remaining item
// slice to the number of items it consumes, or NoMatch if it rejects the
// input outright.
package lex

import "cmp"

// NoMatch is the length a Scanner reports when it rejects its input. It is
// distinct from 0, which is a legitimate match length (e.g. Many matching
// zero repetitions): a combinator that conflates "matched nothing" with
// "failed to match" rejects any sequence ending in an optional, unmatched
// tail — a single-character identifier (name then zero more name
// characters), a plain "3.14" with no exponent/suffix, a lone digit "7" with
// nothing following it. Every Scanner below returns NoMatch for rejection
// and a real item count, possibly 0, for acceptance.
const NoMatch = ^uint(0)

// Scanner attempts to consume a prefix of items, returning the number of
// items consumed, or NoMatch if it does not match at all.
type Scanner[T any] func(items []T) uint

// And requires every scanner to accept the same prefix; the combined match
// length is the longest any single scanner reported, so a short alternative
// (e.g. a one-rune class) can be paired with a longer one covering the same
// span (e.g. that class repeated) without truncating the result.
func And[T any](scanners ...Scanner[T]) Scanner[T] {
	return func(items []T) uint {
		var longest uint
		for _, accept := range scanners {
			n := accept(items)
			if n == NoMatch {
				return NoMatch
			}
			if n > longest {
				longest = n
			}
		}
		return longest
	}
}

// Or tries each scanner in order against the same starting position and
// returns the first one that doesn't reject the input, even if it reports a
// zero-length match.
func Or[T any](scanners ...Scanner[T]) Scanner[T] {
	return func(items []T) uint {
		for _, accept := range scanners {
			if n := accept(items); n != NoMatch {
				return n
			}
		}
		return NoMatch
	}
}

// Sequence runs each scanner in turn, starting where the previous one left
// off, and fails as soon as any scanner in the chain rejects the remainder —
// a scanner that legitimately matches zero items (an optional trailing
// Many) does not end the sequence early. This is how a token pattern is
// built out of distinct parts in order: digits then an optional unit
// suffix, a backtick then a macro name, an opening delimiter then a body
// then a closing delimiter.
func Sequence[T any](scanners ...Scanner[T]) Scanner[T] {
	return func(items []T) uint {
		var consumed uint
		for _, accept := range scanners {
			n := accept(items[consumed:])
			if n == NoMatch {
				return NoMatch
			}
			consumed += n
		}
		return consumed
	}
}

// Unit matches a fixed, literal run of items.
func Unit[T comparable](seq ...T) Scanner[T] {
	return func(items []T) uint {
		if len(items) < len(seq) {
			return NoMatch
		}
		for i, want := range seq {
			if items[i] != want {
				return NoMatch
			}
		}
		return uint(len(seq))
	}
}

// Within matches a single item lying in an inclusive range.
func Within[T cmp.Ordered](lo, hi T) Scanner[T] {
	return func(items []T) uint {
		if len(items) == 0 || items[0] < lo || hi < items[0] {
			return NoMatch
		}
		return 1
	}
}

// Many matches zero or more repetitions of a scanner; it never rejects its
// input, since zero repetitions is always a valid match.
func Many[T any](accept Scanner[T]) Scanner[T] {
	return func(items []T) uint {
		var consumed uint
		for consumed < uint(len(items)) {
			n := accept(items[consumed:])
			if n == NoMatch {
				break
			}
			consumed += n
		}
		return consumed
	}
}

// Until matches every item up to, but not including, the first occurrence of
// stop, or the whole remaining input if stop never appears. Like Many, it
// never rejects its input.
func Until[T comparable](stop T) Scanner[T] {
	return func(items []T) uint {
		for n, item := range items {
			if item == stop {
				return uint(n)
			}
		}
		return uint(len(items))
	}
}

// UntilUnescaped is Until, except an occurrence of stop immediately preceded
// in the input by esc is not treated as the terminator: both items are
// consumed and scanning continues past them. This is what a quoted literal
// needs and Until alone cannot express — pkg/token/lexer.go's string-literal
// rule composes this with a pair of Unit('"') delimiters instead of
// hand-walking the rune slice itself.
func UntilUnescaped[T comparable](esc, stop T) Scanner[T] {
	return func(items []T) uint {
		var n uint
		for n < uint(len(items)) {
			if items[n] == esc && n+1 < uint(len(items)) && items[n+1] == stop {
				n += 2
				continue
			}
			if items[n] == stop {
				return n
			}
			n++
		}
		return n
	}
}

// Eof matches only the empty input.
func Eof[T any]() Scanner[T] {
	return func(items []T) uint {
		if len(items) == 0 {
			return 0
		}
		return NoMatch
	}
}
