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
	"strconv"
	"strings"
)

// context tells a token reader which runes terminate a bare token.
type context uint8

const (
	// ctxTop is a whole input holding one value; bare tokens run to the end.
	ctxTop context = iota

	// ctxNested is inside (...) or @(...); ',' and ')' terminate.
	ctxNested

	// ctxAttr is a value of a top-level attribute list; separators terminate.
	ctxAttr
)

// session holds the state of one parse call.
type session struct {
	r     *reader
	cfg   *config
	depth int
}

func newSession(src []rune, cfg *config) *session {
	return &session{r: newReader(src), cfg: cfg}
}

// errAt builds a SyntaxError at rune offset off.
func (s *session) errAt(kind error, off int, detail string) *SyntaxError {
	token := ""
	if off < len(s.r.src) {
		token = string(literal(s.r.src[off]))
	}

	return newSyntaxError(kind, s.r.position(off), token, detail)
}

// errHere builds a SyntaxError at the next rune.
func (s *session) errHere(kind error, detail string) *SyntaxError {
	return s.errAt(kind, s.r.offset(), detail)
}

// parseRoot parses an input holding exactly one value.
// Empty input is null.
func (s *session) parseRoot() (Value, error) {
	if s.r.peekSkipWs() == eof {
		return Null(), nil
	}
	v, err := s.parseValue(ctxTop)
	if err != nil {
		return Null(), err
	}
	if c := s.r.peekSkipWs(); c != eof {
		return Null(), s.errHere(ErrUnexpectedToken, "expected end of input")
	}

	return v, nil
}

// parseAttrList parses a flat k=v&k=v list whose separators were marked by
// the decoder. Repeated keys are kept as separate entries.
//
//	S1: expecting a key         S2: key read, expecting '=' or '&'
//	S3: '=' read, expecting a value     S4: value read, expecting '&'
func (s *session) parseAttrList() (Value, error) {
	r := s.r
	if r.peekSkipWs() == '?' {
		r.read()
	}
	m := NewMap()
	m.pos = r.here()

	for {
		// S1
		c := r.peekSkipWs()
		if c == eof {
			return m, nil
		}
		if c == sepAmp {
			r.read()
			continue
		}
		keyPos := r.here()
		key, err := s.parseKey(ctxAttr)
		if err != nil {
			return Null(), err
		}

		// S2
		c = r.peekSkipWs()
		switch c {
		case sepEq:
			r.read()
		case sepAmp, eof:
			m.entries = append(m.entries, Entry{Key: key, Value: Null().withPos(keyPos), Pos: keyPos})
			continue
		default:
			return Null(), s.errHere(ErrMissingSeparator, "expected '=' or '&' after key "+strconv.Quote(key))
		}

		// S3
		c = r.peekSkipWs()
		var val Value
		if c == sepAmp || c == eof {
			val = NewString("").withPos(r.here())
		} else if val, err = s.parseValue(ctxAttr); err != nil {
			return Null(), err
		}
		m.entries = append(m.entries, Entry{Key: key, Value: val, Pos: keyPos})

		// S4
		c = r.peekSkipWs()
		switch c {
		case sepAmp, eof:
		default:
			return Null(), s.errHere(ErrUnexpectedToken, "expected '&' after value of "+strconv.Quote(key))
		}
	}
}

// parseValue parses an object, an array or a scalar.
func (s *session) parseValue(ctx context) (Value, error) {
	r := s.r
	switch c := r.peekSkipWs(); c {
	case '(':
		return s.parseObject()
	case '@':
		r.read()
		next := r.peek()
		r.unread()
		if next == '(' {
			return s.parseArray()
		}
	case '\'':
		return s.parseQuoted()
	}

	return s.parseBare(ctx, false)
}

// enter increments the nesting depth, failing past the configured maximum.
func (s *session) enter() error {
	s.depth++
	if s.depth > s.cfg.maxDepth {
		return s.errHere(ErrNestingTooDeep, "maximum depth is "+strconv.Itoa(s.cfg.maxDepth))
	}

	return nil
}

// parseObject parses (k=v,...). Literal and structural '=' both separate a
// key from its value.
func (s *session) parseObject() (Value, error) {
	r := s.r
	m := NewMap()
	m.pos = r.here()
	open := r.offset()
	if err := s.enter(); err != nil {
		return Null(), err
	}
	defer func() { s.depth-- }()
	r.read() // '('

	if r.peekSkipWs() == ')' {
		r.read()
		return m, nil
	}

	for {
		// S1
		c := r.peekSkipWs()
		switch c {
		case eof:
			return Null(), s.errHere(ErrUnterminated, "object opened at offset "+strconv.Itoa(open)+" is never closed")
		case sepAmp:
			return Null(), s.errHere(ErrUnterminated, "'&' inside an object")
		case ',', ')':
			return Null(), s.errHere(ErrUnexpectedTerminator, "expected a key")
		}
		keyPos := r.here()
		key, err := s.parseKey(ctxNested)
		if err != nil {
			return Null(), err
		}

		// S2
		c = r.peekSkipWs()
		switch c {
		case '=', sepEq:
			r.read()
		case ',', ')':
			m.entries = append(m.entries, Entry{Key: key, Value: Null().withPos(keyPos), Pos: keyPos})
			r.read()
			if c == ')' {
				return m, nil
			}
			continue
		case eof:
			return Null(), s.errHere(ErrUnterminated, "object opened at offset "+strconv.Itoa(open)+" is never closed")
		case sepAmp:
			return Null(), s.errHere(ErrUnterminated, "'&' inside an object")
		default:
			return Null(), s.errHere(ErrMissingSeparator, "expected '=' after key "+strconv.Quote(key))
		}

		// S3
		c = r.peekSkipWs()
		var val Value
		switch c {
		case eof:
			return Null(), s.errHere(ErrDanglingAssignment, "no value after '=' for key "+strconv.Quote(key))
		case ',', ')':
			val = NewString("").withPos(r.here())
		default:
			if val, err = s.parseValue(ctxNested); err != nil {
				return Null(), err
			}
		}
		m.entries = append(m.entries, Entry{Key: key, Value: val, Pos: keyPos})

		// S4
		c = r.peekSkipWs()
		switch c {
		case ',':
			r.read()
		case ')':
			r.read()
			return m, nil
		case eof:
			return Null(), s.errHere(ErrUnterminated, "object opened at offset "+strconv.Itoa(open)+" is never closed")
		case sepAmp:
			return Null(), s.errHere(ErrUnterminated, "'&' inside an object")
		default:
			return Null(), s.errHere(ErrUnexpectedToken, "expected ',' or ')' after value of "+strconv.Quote(key))
		}
	}
}

// parseArray parses @(v,...).
func (s *session) parseArray() (Value, error) {
	r := s.r
	l := NewList()
	l.pos = r.here()
	open := r.offset()
	if err := s.enter(); err != nil {
		return Null(), err
	}
	defer func() { s.depth-- }()
	r.read() // '@'
	r.read() // '('

	if r.peekSkipWs() == ')' {
		r.read()
		return l, nil
	}

	for {
		c := r.peekSkipWs()
		var item Value
		switch c {
		case eof:
			return Null(), s.errHere(ErrUnterminated, "array opened at offset "+strconv.Itoa(open)+" is never closed")
		case sepAmp:
			return Null(), s.errHere(ErrUnterminated, "'&' inside an array")
		case ',', ')':
			item = NewString("").withPos(r.here())
		default:
			var err error
			if item, err = s.parseValue(ctxNested); err != nil {
				return Null(), err
			}
		}
		l.items = append(l.items, item)

		c = r.peekSkipWs()
		switch c {
		case ',':
			r.read()
		case ')':
			r.read()
			return l, nil
		case eof:
			return Null(), s.errHere(ErrUnterminated, "array opened at offset "+strconv.Itoa(open)+" is never closed")
		case sepAmp:
			return Null(), s.errHere(ErrUnterminated, "'&' inside an array")
		default:
			return Null(), s.errHere(ErrUnexpectedToken, "expected ',' or ')' after array item")
		}
	}
}

// parseKey reads an attribute name, quoted or bare.
func (s *session) parseKey(ctx context) (string, error) {
	if s.r.peekSkipWs() == '\'' {
		v, err := s.parseQuoted()
		return v.text, err
	}
	v, err := s.parseBare(ctx, true)

	return v.text, err
}

// parseQuoted reads '...'. Inside, \' and \\ are escapes and structural
// separators are restored to their literal characters.
func (s *session) parseQuoted() (Value, error) {
	r := s.r
	pos := r.here()
	r.read() // '\''
	var b strings.Builder
	escaped := false
	for {
		c := r.read()
		if c == eof {
			r.unread()
			return Null(), newSyntaxError(ErrUnterminated, pos, "'", "quoted string is never closed")
		}
		if isSentinel(c) {
			r.replace(literal(c))
			c = literal(c)
		}
		if escaped {
			if !escapable(c) {
				b.WriteByte('\\')
			}
			b.WriteRune(c)
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = true
		case '\'':
			v := NewString(b.String()).withPos(pos)
			v.quoted = true
			return v, nil
		default:
			b.WriteRune(c)
		}
	}
}

// parseBare reads an unquoted token up to the terminators of ctx and
// classifies it. Keys also stop at a literal '=' inside structures.
func (s *session) parseBare(ctx context, isKey bool) (Value, error) {
	r := s.r
	pos := r.here()
	var b strings.Builder
	escaped, hadEscape := false, false

loop:
	for {
		c := r.read()
		if c == eof {
			r.unread()
			break
		}
		if escaped {
			if !escapable(c) {
				b.WriteByte('\\')
			}
			b.WriteRune(literal(c))
			escaped = false
			continue
		}
		switch {
		case c == '\\':
			escaped, hadEscape = true, true
			continue
		case isSentinel(c):
			r.unread()
			break loop
		case ctx == ctxNested && (c == ',' || c == ')'):
			r.unread()
			break loop
		case ctx == ctxNested && isKey && c == '=':
			r.unread()
			break loop
		}
		b.WriteRune(c)
	}
	if escaped {
		b.WriteByte('\\')
	}

	text := strings.TrimSpace(b.String())
	if isKey || hadEscape {
		return NewString(text).withPos(pos), nil
	}

	return classify(text).withPos(pos), nil
}

// classify turns a bare token into null, a bool, a number or a string.
func classify(text string) Value {
	switch {
	case text == tokenNull:
		return Null()
	case text == tokenTrue || text == tokenFalse:
		return Value{kind: KindBool, text: text}
	case isNumberToken(text):
		return Value{kind: KindNumber, text: text}
	default:
		return NewString(text)
	}
}
