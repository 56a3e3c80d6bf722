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

// Package uon implements UON, a compact URL-safe object notation for
// carrying object graphs in query strings, form bodies and path segments.
//
// The notation has three kinds of values:
//
//	(name=John,age=30)       object: ordered key/value pairs
//	@(red,green,blue)        array
//	'quoted string'          scalar; bare tokens work when unambiguous
//
// At the top level of a query string the pairs are separated by '&' and
// '=' instead of ',' and '=':
//
//	name=John&tags=@(a,b)&address=(city=Berlin,zip='10115')
//
// # Quick Start
//
// The package provides both generic and non-generic APIs:
//
//	// Generic (preferred when type is known)
//	params, err := uon.DecodeQuery[SearchParams](r.URL.RawQuery)
//
//	// Non-generic (when type comes from variable)
//	var params SearchParams
//	err := uon.UnmarshalQuery(r.URL.RawQuery, &params)
//
//	// Writing
//	qs, err := uon.MarshalQuery(params)
//	s, err := uon.Marshal(params.Filter)
//
// # Generic Values
//
// Parsing never requires a target type. [Parse] and [ParseAttrs] return a
// [Value] tree that keeps map entries in input order, including repeated
// keys. [Value.Flatten] promotes repeated keys into lists.
//
//	v, err := uon.ParseAttrs("k=1&k=2&k=3")
//	v.Flatten().String() // (k=@(1,2,3))
//
// # Binding
//
// Struct properties are matched by the "uon" tag, falling back to the
// "json" tag name and then to the field name:
//
//	type SearchParams struct {
//	    Query  string   `uon:"q"`
//	    Tags   []string `uon:"tag,expanded"`
//	    Limit  int      `uon:"limit,omitempty"`
//	    Filter Filter   `uon:"filter"`
//	}
//
// A key that repeats binds according to the declared property type. Slice
// properties collect every occurrence, scalar properties keep the first one
// (see [WithDuplicatePolicy]), and interface-typed targets receive a list.
//
// # Polymorphism
//
// Types registered with [WithType] are selected by the discriminator key
// (default "_type") when binding into an interface:
//
//	codec := uon.MustNew(
//	    uon.WithType[Circle]("circle"),
//	    uon.WithType[Square]("square"),
//	)
//	shapes, err := uon.DecodeWith[[]Shape](codec, "@((_type=circle,r=1),(_type=square,side=2))")
//
// # Configuration
//
// Use functional options to customize behavior:
//
//	params, err := uon.DecodeQuery[SearchParams](qs,
//	    uon.WithUnknownProperties(uon.UnknownError),
//	    uon.WithDuplicatePolicy(uon.DuplicateError),
//	    uon.WithMaxDepth(16),
//	)
//
// # Reusable Codec
//
// A [Codec] holds validated, immutable configuration and is safe for
// concurrent use:
//
//	codec := uon.MustNew(uon.WithExpandedParams(true))
//	params, err := uon.DecodeQueryWith[SearchParams](codec, qs)
//
// # Error Handling
//
// Grammar failures are reported as [*SyntaxError] with offset, line and
// column; conversion failures as [*CoercionError]:
//
//	var synErr *uon.SyntaxError
//	if errors.As(err, &synErr) && errors.Is(err, uon.ErrUnterminated) {
//	    fmt.Println(synErr.Line, synErr.Column)
//	}
//
// # Sub-Packages
//
// Transcoding to and from other formats lives in sub-packages:
//   - rivaas.dev/uon/yaml - YAML documents
//   - rivaas.dev/uon/toml - TOML documents
//   - rivaas.dev/uon/msgpack - MessagePack
//   - rivaas.dev/uon/proto - google.protobuf.Value
package uon
