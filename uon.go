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
	"io"
	"net/url"
)

// defaults is the configuration used by package-level functions.
var defaults = defaultConfig()

// Parse parses a single notation value such as "(a=1,b=@(x,y))".
// Input is not percent-decoded unless [WithURLDecoding] is set.
//
// Errors:
//   - [*SyntaxError]: malformed input, with [ErrUnterminated] and friends as Kind
//   - [ErrInvalidConfig]: invalid options
func Parse(s string, opts ...Option) (Value, error) {
	cfg, err := defaults.with(opts)
	if err != nil {
		return Null(), err
	}

	return parseInput(s, false, cfg)
}

// ParseAttrs parses a query string "a=1&b=(c=2)" into a map value. Repeated
// keys stay separate entries; use [Value.Flatten] to merge them into lists.
//
// Example:
//
//	v, err := uon.ParseAttrs(r.URL.RawQuery)
func ParseAttrs(s string, opts ...Option) (Value, error) {
	cfg, err := defaults.with(opts)
	if err != nil {
		return Null(), err
	}

	return parseInput(s, true, cfg)
}

// Unmarshal parses s as a single value and binds it into out, which must be
// a non-nil pointer. On error out is left unchanged.
//
// Errors:
//   - [ErrOutMustBePointer], [ErrOutPointerNil]: invalid out
//   - [*SyntaxError]: malformed input
//   - [*CoercionError]: a token could not be converted
//   - [*UnknownPropertyError]: with [UnknownError]
//   - [*InstantiationError]: the target type cannot be created
//   - [*MultiError]: with [WithAllErrors]
func Unmarshal(s string, out any, opts ...Option) error {
	cfg, err := defaults.with(opts)
	if err != nil {
		return err
	}

	return unmarshal(s, false, out, cfg)
}

// Decode parses s as a single value into a new T.
//
// Example:
//
//	filter, err := uon.Decode[Filter]("(status=open,tags=@(bug,ui))")
func Decode[T any](s string, opts ...Option) (T, error) {
	var result T
	if err := Unmarshal(s, &result, opts...); err != nil {
		return result, err
	}

	return result, nil
}

// UnmarshalQuery parses a query string and binds it into out.
// The query is percent-decoded unless [WithURLDecoding](false) is set.
//
// Example:
//
//	var params SearchParams
//	err := uon.UnmarshalQuery(r.URL.RawQuery, &params)
func UnmarshalQuery(query string, out any, opts ...Option) error {
	cfg, err := defaults.with(opts)
	if err != nil {
		return err
	}

	return unmarshal(query, true, out, cfg)
}

// DecodeQuery parses a query string into a new T.
//
// Example:
//
//	params, err := uon.DecodeQuery[SearchParams](r.URL.RawQuery)
func DecodeQuery[T any](query string, opts ...Option) (T, error) {
	var result T
	if err := UnmarshalQuery(query, &result, opts...); err != nil {
		return result, err
	}

	return result, nil
}

// UnmarshalValues binds already decoded parameters, such as r.URL.Query()
// or r.PostForm. Every value is parsed in value form.
func UnmarshalValues(values url.Values, out any, opts ...Option) error {
	cfg, err := defaults.with(opts)
	if err != nil {
		return err
	}

	return unmarshalValues(values, out, cfg)
}

// DecodeValues binds already decoded parameters into a new T.
//
// Example:
//
//	params, err := uon.DecodeValues[SearchParams](r.URL.Query())
func DecodeValues[T any](values url.Values, opts ...Option) (T, error) {
	var result T
	if err := UnmarshalValues(values, &result, opts...); err != nil {
		return result, err
	}

	return result, nil
}

// UnmarshalReader reads r to the end and unmarshals it as a single value.
func UnmarshalReader(r io.Reader, out any, opts ...Option) error {
	cfg, err := defaults.with(opts)
	if err != nil {
		return err
	}

	return unmarshalReader(r, out, cfg)
}

// Marshal writes v in value form.
//
// Errors:
//   - [ErrUnsupportedType]: channels, functions and complex numbers
//   - [ErrMaxDepthExceeded]: nesting deeper than the limit, usually a cycle
func Marshal(v any, opts ...Option) (string, error) {
	cfg, err := defaults.with(opts)
	if err != nil {
		return "", err
	}

	return marshal(v, false, cfg)
}

// MarshalQuery writes v as a percent-encoded query string. Structs and maps
// become key=value pairs, lists become 0=..&1=.. and scalars _value=...
//
// Example:
//
//	q, _ := uon.MarshalQuery(SearchParams{Query: "go", Tags: []string{"a", "b"}})
//	// q == "q=go&tags=@(a,b)"
func MarshalQuery(v any, opts ...Option) (string, error) {
	cfg, err := defaults.with(opts)
	if err != nil {
		return "", err
	}

	return marshal(v, true, cfg)
}
