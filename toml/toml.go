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

// Package toml converts between UON values and TOML documents.
//
// This package extends rivaas.dev/uon with TOML support, using
// github.com/BurntSushi/toml. Reading keeps the key order of the document.
// Writing follows the encoder's layout (plain keys before tables, each
// group sorted), drops null properties since TOML has no null, and rejects
// documents whose root is not a map.
//
// Example:
//
//	s, err := toml.ToUON(body)
//	cfg, err := toml.Decode[Config](body)
package toml

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"rivaas.dev/uon"
)

// Static errors for writing.
var (
	ErrNotTable    = errors.New("TOML document root must be a map")
	ErrNullInArray = errors.New("TOML arrays cannot hold null")
)

// Option configures TOML conversion.
type Option func(*config)

// config holds TOML-specific configuration.
type config struct {
	codec    *uon.Codec
	indent   string
	maxDepth int
}

// WithCodec sets the codec used by Decode and Unmarshal to bind values.
func WithCodec(c *uon.Codec) Option {
	return func(cfg *config) {
		cfg.codec = c
	}
}

// WithIndent sets the indentation of keys inside tables when writing.
// The default is no indentation.
func WithIndent(indent string) Option {
	return func(cfg *config) {
		cfg.indent = indent
	}
}

// WithMaxDepth limits the nesting of tables and arrays.
func WithMaxDepth(depth int) Option {
	return func(cfg *config) {
		cfg.maxDepth = depth
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{maxDepth: uon.DefaultMaxDepth}
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

func (c *config) binder() *uon.Codec {
	if c.codec == nil {
		c.codec = uon.MustNew()
	}

	return c.codec
}

// pathSep joins key paths; it cannot appear in a decoded key.
const pathSep = "\x00"

// keyOrder lists the children of each table path in document order.
// Tables of one array share a path, so their keys are merged.
type keyOrder map[string][]string

func newKeyOrder(md toml.MetaData) keyOrder {
	order := make(keyOrder)
	seen := make(map[string]bool)
	for _, key := range md.Keys() {
		for i := 1; i <= len(key); i++ {
			full := strings.Join(key[:i], pathSep)
			if seen[full] {
				continue
			}
			seen[full] = true
			parent := strings.Join(key[:i-1], pathSep)
			order[parent] = append(order[parent], key[i-1])
		}
	}

	return order
}

// keys returns the keys of m: known keys in document order, then any
// others sorted.
func (o keyOrder) keys(path string, m map[string]any) []string {
	out := make([]string, 0, len(m))
	for _, k := range o[path] {
		if _, ok := m[k]; ok {
			out = append(out, k)
		}
	}
	if len(out) == len(m) {
		return out
	}
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if !slices.Contains(out, k) {
			out = append(out, k)
		}
	}

	return out
}

// Read parses a TOML document into a map Value.
//
// Example:
//
//	v, err := toml.Read(body)
func Read(data []byte, opts ...Option) (uon.Value, error) {
	return read(data, applyOptions(opts))
}

func read(data []byte, cfg *config) (uon.Value, error) {
	var doc map[string]any
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return uon.Null(), fmt.Errorf("toml: %w", err)
	}

	return fromAny(doc, "", newKeyOrder(md), cfg, 0)
}

func fromAny(x any, path string, order keyOrder, cfg *config, depth int) (uon.Value, error) {
	switch t := x.(type) {
	case nil:
		return uon.Null(), nil
	case string:
		return uon.NewString(t), nil
	case bool:
		return uon.NewBool(t), nil
	case int64:
		return uon.NewInt(t), nil
	case float64:
		return uon.NewFloat(t), nil
	case time.Time:
		return uon.NewString(formatTime(t)), nil
	}

	if depth > cfg.maxDepth {
		return uon.Null(), fmt.Errorf("toml: %w", uon.ErrMaxDepthExceeded)
	}

	switch t := x.(type) {
	case map[string]any:
		entries := make([]uon.Entry, 0, len(t))
		for _, k := range order.keys(path, t) {
			child := k
			if path != "" {
				child = path + pathSep + k
			}
			v, err := fromAny(t[k], child, order, cfg, depth+1)
			if err != nil {
				return uon.Null(), err
			}
			entries = append(entries, uon.Entry{Key: k, Value: v})
		}
		return uon.NewMap(entries...), nil

	case []map[string]any:
		items := make([]uon.Value, 0, len(t))
		for _, m := range t {
			v, err := fromAny(m, path, order, cfg, depth+1)
			if err != nil {
				return uon.Null(), err
			}
			items = append(items, v)
		}
		return uon.NewList(items...), nil

	case []any:
		items := make([]uon.Value, 0, len(t))
		for _, e := range t {
			v, err := fromAny(e, path, order, cfg, depth+1)
			if err != nil {
				return uon.Null(), err
			}
			items = append(items, v)
		}
		return uon.NewList(items...), nil
	}

	return uon.Null(), fmt.Errorf("toml: unexpected value of type %T", x)
}

// formatTime renders TOML date and time values. Local values carry a
// marker location from the decoder and are written without an offset.
func formatTime(t time.Time) string {
	switch t.Location().String() {
	case "date-local":
		return t.Format(time.DateOnly)
	case "time-local":
		return t.Format("15:04:05.999999999")
	case "datetime-local":
		return t.Format("2006-01-02T15:04:05.999999999")
	default:
		return t.Format(time.RFC3339Nano)
	}
}

// Write renders a map Value as a TOML document.
// Repeated keys are folded into arrays and null properties are dropped.
func Write(v uon.Value, opts ...Option) ([]byte, error) {
	return write(v, applyOptions(opts))
}

func write(v uon.Value, cfg *config) ([]byte, error) {
	if v.Kind() != uon.KindMap {
		return nil, fmt.Errorf("toml: %w, got %s", ErrNotTable, v.Kind())
	}
	doc, err := toAny(v.Flatten(), cfg, 0)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = cfg.indent
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("toml: %w", err)
	}

	return buf.Bytes(), nil
}

func toAny(v uon.Value, cfg *config, depth int) (any, error) {
	switch v.Kind() {
	case uon.KindString:
		return v.Text(), nil
	case uon.KindBool:
		return v.Bool()
	case uon.KindNumber:
		if i, err := v.Int(); err == nil {
			return i, nil
		}
		return v.Float()
	case uon.KindNull:
		return nil, nil
	}

	if depth > cfg.maxDepth {
		return nil, fmt.Errorf("toml: %w", uon.ErrMaxDepthExceeded)
	}

	if v.Kind() == uon.KindList {
		out := make([]any, 0, v.Len())
		for i, item := range v.Items() {
			if item.IsNull() {
				return nil, fmt.Errorf("toml: %w (index %d)", ErrNullInArray, i)
			}
			x, err := toAny(item, cfg, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, x)
		}
		return out, nil
	}

	out := make(map[string]any, v.Len())
	for _, e := range v.Entries() {
		if e.Value.IsNull() {
			continue
		}
		x, err := toAny(e.Value, cfg, depth+1)
		if err != nil {
			return nil, err
		}
		out[e.Key] = x
	}

	return out, nil
}

// ToUON converts a TOML document to UON text.
func ToUON(data []byte, opts ...Option) (string, error) {
	v, err := Read(data, opts...)
	if err != nil {
		return "", err
	}

	return v.String(), nil
}

// FromUON converts UON text holding a map to a TOML document.
func FromUON(s string, opts ...Option) ([]byte, error) {
	cfg := applyOptions(opts)
	v, err := cfg.binder().Parse(s)
	if err != nil {
		return nil, err
	}

	return write(v, cfg)
}

// Decode reads a TOML document into a new T using the UON binder.
//
// Example:
//
//	cfg, err := toml.Decode[Config](body)
func Decode[T any](data []byte, opts ...Option) (T, error) {
	var result T
	if err := Unmarshal(data, &result, opts...); err != nil {
		return result, err
	}

	return result, nil
}

// Unmarshal reads a TOML document into out using the UON binder.
func Unmarshal(data []byte, out any, opts ...Option) error {
	cfg := applyOptions(opts)
	v, err := read(data, cfg)
	if err != nil {
		return err
	}

	return cfg.binder().Bind(v, out)
}
