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

// Package yaml converts between UON values and YAML documents.
//
// This package extends rivaas.dev/uon with YAML support, using
// gopkg.in/yaml.v3 for parsing. Mapping order is kept in both directions,
// anchors, aliases and merge keys are resolved when reading, and repeated
// UON keys are folded into sequences when writing.
//
// Example:
//
//	s, err := yaml.ToUON([]byte("q: go\ntags: [a, b]\n"))
//	// s == "(q=go,tags=@(a,b))"
//
//	filter, err := yaml.Decode[Filter](body)
package yaml

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"rivaas.dev/uon"
)

const (
	tagNull  = "!!null"
	tagBool  = "!!bool"
	tagInt   = "!!int"
	tagFloat = "!!float"
	tagStr   = "!!str"
	tagMerge = "!!merge"
)

// ErrUnsupportedNode is returned for YAML content that has no UON
// counterpart, such as a mapping used as a key.
var ErrUnsupportedNode = errors.New("unsupported YAML node")

// Option configures YAML conversion.
type Option func(*config)

// config holds YAML-specific configuration.
type config struct {
	codec    *uon.Codec
	indent   int
	maxDepth int
}

// WithCodec sets the codec used by Decode and Unmarshal to bind values.
func WithCodec(c *uon.Codec) Option {
	return func(cfg *config) {
		cfg.codec = c
	}
}

// WithIndent sets the number of spaces used for indentation when writing.
func WithIndent(spaces int) Option {
	return func(cfg *config) {
		cfg.indent = spaces
	}
}

// WithMaxDepth limits the nesting of mappings and sequences, counting
// resolved aliases.
func WithMaxDepth(depth int) Option {
	return func(cfg *config) {
		cfg.maxDepth = depth
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{indent: 2, maxDepth: uon.DefaultMaxDepth}
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

// Read parses a YAML document into a Value. An empty document is null.
//
// Example:
//
//	v, err := yaml.Read(body)
func Read(data []byte, opts ...Option) (uon.Value, error) {
	return read(data, applyOptions(opts))
}

func read(data []byte, cfg *config) (uon.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return uon.Null(), fmt.Errorf("yaml: %w", err)
	}

	return fromNode(&doc, cfg, 0)
}

// FromNode converts a decoded YAML node into a Value.
func FromNode(n *yaml.Node, opts ...Option) (uon.Value, error) {
	return fromNode(n, applyOptions(opts), 0)
}

func fromNode(n *yaml.Node, cfg *config, depth int) (uon.Value, error) {
	if n == nil || n.Kind == 0 {
		return uon.Null(), nil
	}
	if depth > cfg.maxDepth && n.Kind != yaml.ScalarNode {
		return uon.Null(), fmt.Errorf("yaml: %w at line %d", uon.ErrMaxDepthExceeded, n.Line)
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return uon.Null(), nil
		}
		return fromNode(n.Content[0], cfg, depth)

	case yaml.AliasNode:
		return fromNode(n.Alias, cfg, depth+1)

	case yaml.SequenceNode:
		items := make([]uon.Value, 0, len(n.Content))
		for _, c := range n.Content {
			item, err := fromNode(c, cfg, depth+1)
			if err != nil {
				return uon.Null(), err
			}
			items = append(items, item)
		}
		return uon.NewList(items...), nil

	case yaml.MappingNode:
		entries, err := mappingEntries(n, cfg, depth)
		if err != nil {
			return uon.Null(), err
		}
		return uon.NewMap(entries...), nil

	case yaml.ScalarNode:
		return fromScalar(n)
	}

	return uon.Null(), fmt.Errorf("yaml: %w: kind %d at line %d", ErrUnsupportedNode, n.Kind, n.Line)
}

// mappingEntries collects the pairs of a mapping. Merged mappings come
// first so that keys written out in the mapping override them.
func mappingEntries(n *yaml.Node, cfg *config, depth int) ([]uon.Entry, error) {
	var merged, own []uon.Entry
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]

		if k.Kind == yaml.ScalarNode && k.ShortTag() == tagMerge {
			mv, err := fromNode(v, cfg, depth+1)
			if err != nil {
				return nil, err
			}
			switch mv.Kind() {
			case uon.KindMap:
				merged = append(merged, mv.Entries()...)
			case uon.KindList:
				for _, item := range mv.Items() {
					merged = append(merged, item.Entries()...)
				}
			default:
				return nil, fmt.Errorf("yaml: %w: merge of %s at line %d", ErrUnsupportedNode, mv.Kind(), v.Line)
			}
			continue
		}

		if k.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("yaml: %w: non-scalar key at line %d", ErrUnsupportedNode, k.Line)
		}
		val, err := fromNode(v, cfg, depth+1)
		if err != nil {
			return nil, err
		}
		own = append(own, uon.Entry{Key: k.Value, Value: val})
	}

	if len(merged) == 0 {
		return own, nil
	}
	out := make([]uon.Entry, 0, len(merged)+len(own))
	for _, e := range merged {
		if !hasKey(own, e.Key) && !hasKey(out, e.Key) {
			out = append(out, e)
		}
	}

	return append(out, own...), nil
}

func hasKey(entries []uon.Entry, key string) bool {
	for _, e := range entries {
		if e.Key == key {
			return true
		}
	}

	return false
}

// fromScalar maps a scalar by its resolved tag. Numbers keep their text
// when it is already valid number syntax.
func fromScalar(n *yaml.Node) (uon.Value, error) {
	switch n.ShortTag() {
	case tagNull:
		return uon.Null(), nil

	case tagBool:
		var b bool
		if err := n.Decode(&b); err != nil {
			return uon.Null(), fmt.Errorf("yaml: line %d: %w", n.Line, err)
		}
		return uon.NewBool(b), nil

	case tagInt:
		if v := uon.NewNumber(n.Value); v.Kind() == uon.KindNumber {
			return v, nil
		}
		var i int64
		if err := n.Decode(&i); err != nil {
			return uon.Null(), fmt.Errorf("yaml: line %d: %w", n.Line, err)
		}
		return uon.NewInt(i), nil

	case tagFloat:
		if v := uon.NewNumber(n.Value); v.Kind() == uon.KindNumber {
			return v, nil
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return uon.Null(), fmt.Errorf("yaml: line %d: %w", n.Line, err)
		}
		return uon.NewFloat(f), nil
	}

	return uon.NewString(n.Value), nil
}

// ToNode converts v into a YAML node. Repeated keys are folded into
// sequences first.
func ToNode(v uon.Value) *yaml.Node {
	return toNode(v.Flatten())
}

func toNode(v uon.Value) *yaml.Node {
	switch v.Kind() {
	case uon.KindMap:
		n := &yaml.Node{Kind: yaml.MappingNode}
		for _, e := range v.Entries() {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: tagStr, Value: e.Key},
				toNode(e.Value))
		}
		return n

	case uon.KindList:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range v.Items() {
			n.Content = append(n.Content, toNode(item))
		}
		return n

	case uon.KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagBool, Value: v.Text()}

	case uon.KindNumber:
		tag := tagFloat
		if _, err := v.Int(); err == nil {
			tag = tagInt
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.Text()}

	case uon.KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagStr, Value: v.Text()}

	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagNull, Value: "null"}
	}
}

// Write renders v as a YAML document.
//
// Example:
//
//	v, _ := uon.Parse("(name=Ada,tags=@(a,b))")
//	out, err := yaml.Write(v)
func Write(v uon.Value, opts ...Option) ([]byte, error) {
	return write(v, applyOptions(opts))
}

func write(v uon.Value, cfg *config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(cfg.indent)
	if err := enc.Encode(ToNode(v)); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}

	return buf.Bytes(), nil
}

// ToUON converts a YAML document to UON text.
func ToUON(data []byte, opts ...Option) (string, error) {
	v, err := Read(data, opts...)
	if err != nil {
		return "", err
	}

	return v.String(), nil
}

// FromUON converts UON text to a YAML document.
func FromUON(s string, opts ...Option) ([]byte, error) {
	cfg := applyOptions(opts)
	v, err := cfg.binder().Parse(s)
	if err != nil {
		return nil, err
	}

	return write(v, cfg)
}

// Decode reads a YAML document into a new T using the UON binder, so uon
// struct tags, converters and discriminators apply.
//
// Example:
//
//	cfg, err := yaml.Decode[Config](body, yaml.WithCodec(codec))
func Decode[T any](data []byte, opts ...Option) (T, error) {
	var result T
	if err := Unmarshal(data, &result, opts...); err != nil {
		return result, err
	}

	return result, nil
}

// Unmarshal reads a YAML document into out using the UON binder.
func Unmarshal(data []byte, out any, opts ...Option) error {
	cfg := applyOptions(opts)
	v, err := read(data, cfg)
	if err != nil {
		return err
	}

	return cfg.binder().Bind(v, out)
}
