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
	"sort"
	"strings"
)

// reader is a cursor over a decoded rune stream.
// It supports one rune of push-back, a mark for capturing the runes read
// since, and in-place replacement of the last rune read.
type reader struct {
	src        []rune
	pos        int
	markAt     int
	lineStarts []int
}

func newReader(src []rune) *reader {
	starts := []int{0}
	for i, r := range src {
		if r == '\n' {
			starts = append(starts, i+1)
		}
	}

	return &reader{src: src, markAt: -1, lineStarts: starts}
}

// peek returns the next rune without consuming it.
func (r *reader) peek() rune {
	if r.pos >= len(r.src) {
		return eof
	}

	return r.src[r.pos]
}

// peekSkipWs consumes whitespace and returns the next rune without
// consuming it.
func (r *reader) peekSkipWs() rune {
	for r.pos < len(r.src) && isSpace(r.src[r.pos]) {
		r.pos++
	}

	return r.peek()
}

// read consumes and returns the next rune.
func (r *reader) read() rune {
	if r.pos >= len(r.src) {
		r.pos = len(r.src) + 1
		return eof
	}
	c := r.src[r.pos]
	r.pos++

	return c
}

// unread pushes back the last rune read, including a read past the end.
func (r *reader) unread() {
	if r.pos > 0 {
		r.pos--
	}
}

// mark starts capturing at the current position.
func (r *reader) mark() {
	r.markAt = r.pos
}

// marked returns the runes read since mark, minus the last trim runes,
// with sentinels turned back into their literal characters.
func (r *reader) marked(trim int) string {
	if r.markAt < 0 {
		return ""
	}
	end := min(r.pos, len(r.src)) - trim
	if end < r.markAt {
		end = r.markAt
	}
	var b strings.Builder
	for _, c := range r.src[r.markAt:end] {
		b.WriteRune(literal(c))
	}
	r.markAt = -1

	return b.String()
}

// replace overwrites the last rune read.
func (r *reader) replace(c rune) {
	if r.pos > 0 && r.pos <= len(r.src) {
		r.src[r.pos-1] = c
	}
}

// offset returns the index of the next rune.
func (r *reader) offset() int {
	return min(r.pos, len(r.src))
}

// position converts a rune offset into a Pos.
func (r *reader) position(off int) Pos {
	line := sort.Search(len(r.lineStarts), func(i int) bool {
		return r.lineStarts[i] > off
	})

	return Pos{Offset: off, Line: line, Column: off - r.lineStarts[line-1] + 1}
}

// here returns the position of the next rune.
func (r *reader) here() Pos {
	return r.position(r.offset())
}
