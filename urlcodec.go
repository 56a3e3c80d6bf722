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
	"strings"
	"unicode/utf8"
)

// decodeURL percent-decodes s into a rune stream. Raw '&' and '=' become
// structural separators; their encoded forms %26 and %3D stay content.
// With plusAsSpace a raw '+' decodes to a space, as in form bodies.
func decodeURL(s string, plusAsSpace bool) ([]rune, error) {
	out := make([]rune, 0, len(s))
	var pending []byte
	flush := func() {
		for len(pending) > 0 {
			c, n := utf8.DecodeRune(pending)
			out = append(out, c)
			pending = pending[n:]
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '%':
			if i+2 >= len(s) || !isHex(s[i+1]) || !isHex(s[i+2]) {
				flush()
				return nil, newSyntaxError(ErrInvalidEncoding, positionInString(s, i),
					s[i:min(i+3, len(s))], "malformed percent-encoding")
			}
			pending = append(pending, unhex(s[i+1])<<4|unhex(s[i+2]))
			i += 2
		case '+':
			if plusAsSpace {
				pending = append(pending, ' ')
			} else {
				pending = append(pending, '+')
			}
		case '&':
			flush()
			out = append(out, sepAmp)
		case '=':
			flush()
			out = append(out, sepEq)
		default:
			pending = append(pending, c)
		}
	}
	flush()

	return out, nil
}

// markStructural turns raw '&' and '=' of an already decoded query into
// structural separators without touching anything else.
func markStructural(s string) []rune {
	out := make([]rune, 0, len(s))
	for _, c := range s {
		switch c {
		case '&':
			out = append(out, sepAmp)
		case '=':
			out = append(out, sepEq)
		default:
			out = append(out, c)
		}
	}

	return out
}

// positionInString computes the position of byte offset off in s.
func positionInString(s string, off int) Pos {
	prefix := s[:off]
	line := strings.Count(prefix, "\n") + 1
	col := utf8.RuneCountInString(prefix[strings.LastIndexByte(prefix, '\n')+1:]) + 1

	return Pos{Offset: utf8.RuneCountInString(prefix), Line: line, Column: col}
}

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case isDigit(c):
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// urlSafe reports whether c can appear unencoded in a query value without
// changing meaning after decoding.
func urlSafe(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', isDigit(c):
		return true
	}
	switch c {
	case '-', '_', '.', '~', '(', ')', ',', '@', '\'', '!', '*', ':', '/', ';', '$':
		return true
	default:
		return false
	}
}

const upperHex = "0123456789ABCDEF"

// appendEncoded percent-encodes every byte of s that is not url-safe,
// including '&', '=', '+' and '\'.
func appendEncoded(b *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if urlSafe(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0f])
	}
}
