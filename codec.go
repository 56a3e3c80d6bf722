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
	"fmt"
	"io"
	"net/url"
)

// Codec parses, binds and writes notation with a fixed configuration.
//
// Use [New] or [MustNew] to create one, or the package-level functions for
// the defaults. A Codec is safe for concurrent use by multiple goroutines.
//
// Generic methods are not possible in Go; use [DecodeWith] and friends for
// typed results.
//
// Example:
//
//	codec := uon.MustNew(
//	    uon.WithType[Circle]("circle"),
//	    uon.WithUnknownProperties(uon.UnknownError),
//	)
//
//	shape, err := uon.DecodeWith[Shape](codec, "(_type=circle,r=2)")
type Codec struct {
	cfg *config
}

// New creates a [Codec] with the given options.
// Returns an error if the configuration is invalid.
func New(opts ...Option) (*Codec, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Codec{cfg: cfg}, nil
}

// MustNew creates a [Codec] with the given options.
// Panics if the configuration is invalid.
func MustNew(opts ...Option) *Codec {
	c, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("uon.MustNew: %v", err))
	}

	return c
}

// Parse parses a single value using the Codec's config.
func (c *Codec) Parse(s string) (Value, error) {
	return parseInput(s, false, c.cfg)
}

// ParseAttrs parses a query string using the Codec's config.
func (c *Codec) ParseAttrs(s string) (Value, error) {
	return parseInput(s, true, c.cfg)
}

// Unmarshal parses s as a single value and binds it into out.
func (c *Codec) Unmarshal(s string, out any) error {
	return unmarshal(s, false, out, c.cfg)
}

// UnmarshalQuery parses a query string and binds it into out.
func (c *Codec) UnmarshalQuery(query string, out any) error {
	return unmarshal(query, true, out, c.cfg)
}

// UnmarshalValues binds already decoded parameters into out.
func (c *Codec) UnmarshalValues(values url.Values, out any) error {
	return unmarshalValues(values, out, c.cfg)
}

// UnmarshalReader reads r to the end and unmarshals it as a single value.
func (c *Codec) UnmarshalReader(r io.Reader, out any) error {
	return unmarshalReader(r, out, c.cfg)
}

// Bind binds an already parsed value into out, for example one built with
// [NewMap] or converted from another format.
func (c *Codec) Bind(v Value, out any) error {
	return unmarshalValue(v, false, out, c.cfg)
}

// Marshal writes v in value form.
func (c *Codec) Marshal(v any) (string, error) {
	return marshal(v, false, c.cfg)
}

// MarshalQuery writes v as a percent-encoded query string.
func (c *Codec) MarshalQuery(v any) (string, error) {
	return marshal(v, true, c.cfg)
}

// DecodeWith parses s as a single value into a new T using the Codec's
// config.
//
// Example:
//
//	filter, err := uon.DecodeWith[Filter](codec, s)
func DecodeWith[T any](c *Codec, s string) (T, error) {
	var result T
	if err := c.Unmarshal(s, &result); err != nil {
		return result, err
	}

	return result, nil
}

// DecodeQueryWith parses a query string into a new T using the Codec's
// config.
func DecodeQueryWith[T any](c *Codec, query string) (T, error) {
	var result T
	if err := c.UnmarshalQuery(query, &result); err != nil {
		return result, err
	}

	return result, nil
}

// DecodeValuesWith binds already decoded parameters into a new T using the
// Codec's config.
func DecodeValuesWith[T any](c *Codec, values url.Values) (T, error) {
	var result T
	if err := c.UnmarshalValues(values, &result); err != nil {
		return result, err
	}

	return result, nil
}
