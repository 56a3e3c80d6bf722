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
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// ErrInvalidJSON is returned when JSON input cannot be turned into a Value.
var ErrInvalidJSON = errors.New("invalid JSON")

// MarshalJSON writes v as JSON. Map entry order is kept and repeated keys
// are folded into arrays first.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.Flatten().appendJSON(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (v Value) appendJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString(tokenNull)
	case KindNumber, KindBool:
		buf.WriteString(v.text)
	case KindString:
		return appendJSONString(buf, v.text)
	case KindMap:
		buf.WriteByte('{')
		for i, e := range v.entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendJSONString(buf, e.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := e.Value.appendJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case KindList:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.appendJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	}

	return nil
}

func appendJSONString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)

	return nil
}

// UnmarshalJSON reads any JSON document into v, keeping object key order
// and number text.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	out, err := readJSON(dec)
	if err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after value", ErrInvalidJSON)
	}
	*v = out

	return nil
}

// readJSON reads one value from the token stream.
func readJSON(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Null(), fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}

	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return NewBool(t), nil
	case json.Number:
		return NewNumber(t.String()), nil
	case float64:
		return NewFloat(t), nil
	case string:
		return NewString(t), nil
	case json.Delim:
		switch t {
		case '{':
			m := NewMap()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return Null(), fmt.Errorf("%w: %w", ErrInvalidJSON, err)
				}
				key, ok := kt.(string)
				if !ok {
					return Null(), fmt.Errorf("%w: object key %v", ErrInvalidJSON, kt)
				}
				val, err := readJSON(dec)
				if err != nil {
					return Null(), err
				}
				m.entries = append(m.entries, Entry{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil {
				return Null(), fmt.Errorf("%w: %w", ErrInvalidJSON, err)
			}

			return m, nil
		case '[':
			l := NewList()
			for dec.More() {
				item, err := readJSON(dec)
				if err != nil {
					return Null(), err
				}
				l.items = append(l.items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Null(), fmt.Errorf("%w: %w", ErrInvalidJSON, err)
			}

			return l, nil
		}
	}

	return Null(), fmt.Errorf("%w: unexpected token %v", ErrInvalidJSON, tok)
}

// FromJSON reads a JSON document into a Value.
//
// Example:
//
//	v, _ := uon.FromJSON([]byte(`{"q":"go","tags":["a","b"]}`))
//	v.String() // (q=go,tags=@(a,b))
func FromJSON(data []byte) (Value, error) {
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return Null(), err
	}

	return v, nil
}
