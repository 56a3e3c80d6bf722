// Copyright 2025 The Rivaas Authors
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

package uon

import (
	"unicode"
	"unicode/utf8"
)

// Structural separators of a query string. They are produced only by the
// percent-decoder from raw '&' and '=' and lie outside the Unicode range,
// so decoded content can never be mistaken for them.
const (
	sepAmp rune = unicode.MaxRune + 1 + iota
	sepEq
)

// eof is returned by the reader past the end of input.
const eof rune = -1

// Reserved words of the notation.
const (
	tokenNull  = "null"
	tokenTrue  = "true"
	tokenFalse = "false"
)

// isSentinel reports whether r is a structural separator.
func isSentinel(r rune) bool {
	return r == sepAmp || r == sepEq
}

// literal maps a structural separator back to the character it replaced.
func literal(r rune) rune {
	switch r {
	case sepAmp:
		return '&'
	case sepEq:
		return '='
	default:
		return r
	}
}

// escapable reports whether a backslash before r is an escape.
// Before any other rune the backslash is kept as content.
func escapable(r rune) bool {
	switch r {
	case '\\', '(', ')', ',', '=', '\'', '@', '&', sepAmp, sepEq:
		return true
	default:
		return false
	}
}

// isSpace reports whether r is skipped around tokens.
func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// isLiteralToken reports whether a bare token would parse as null, a bool
// or a number.
func isLiteralToken(s string) bool {
	return s == tokenNull || s == tokenTrue || s == tokenFalse || isNumberToken(s)
}

// isNumberToken reports whether s is in JSON number syntax:
// -?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?
func isNumberToken(s string) bool {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	if i >= len(s) {
		return false
	}
	switch {
	case s[i] == '0':
		i++
	case s[i] >= '1' && s[i] <= '9':
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	default:
		return false
	}
	if i < len(s) && s[i] == '.' {
		i++
		start := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == start {
			return false
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		start := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == start {
			return false
		}
	}

	return i == len(s)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// isIndexKey reports whether s is a non-negative decimal integer, the form
// of positional keys in a collection written as a map.
func isIndexKey(s string) bool {
	if s == "" || len(s) > 18 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}

	return true
}

// needsQuotes reports whether s must be written as a quoted string to read
// back as the same string.
func needsQuotes(s string) bool {
	if s == "" || isLiteralToken(s) {
		return true
	}
	first, _ := utf8.DecodeRuneInString(s)
	last, _ := utf8.DecodeLastRuneInString(s)
	if first == '(' || first == '@' || first == '\'' || unicode.IsSpace(first) || unicode.IsSpace(last) {
		return true
	}
	for _, r := range s {
		switch r {
		case ',', '=', '(', ')', '&', '\\', '\'':
			return true
		}
		if unicode.IsControl(r) {
			return true
		}
	}

	return false
}

// quote returns s in notation form, quoted and escaped when needed.
func quote(s string) string {
	if !needsQuotes(s) {
		return s
	}
	buf := make([]byte, 0, len(s)+2)
	buf = append(buf, '\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' || s[i] == '\\' {
			buf = append(buf, '\\')
		}
		buf = append(buf, s[i])
	}
	buf = append(buf, '\'')

	return string(buf)
}
