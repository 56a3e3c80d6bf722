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
	"errors"
	"testing"
)

// TestCodec creates a Codec configured for testing: unknown properties and
// repeated scalar keys are errors, so tests notice typos in fixtures.
// Options passed in are applied last.
//
// Example:
//
//	func TestMyFeature(t *testing.T) {
//	    codec := uon.TestCodec(t, uon.WithType[Circle]("circle"))
//	    // use codec in test
//	}
func TestCodec(t *testing.T, opts ...Option) *Codec {
	t.Helper()

	defaultOpts := []Option{
		WithUnknownProperties(UnknownError),
		WithDuplicatePolicy(DuplicateError),
	}

	c, err := New(append(defaultOpts, opts...)...)
	if err != nil {
		t.Fatalf("TestCodec: failed to create codec: %v", err)
	}

	return c
}

// MustDecode decodes s into a T and fails the test on error.
//
// Example:
//
//	f := uon.MustDecode[Filter](t, "(status=open)")
func MustDecode[T any](t *testing.T, s string, opts ...Option) T {
	t.Helper()

	result, err := Decode[T](s, opts...)
	if err != nil {
		t.Fatalf("MustDecode[%T]: decoding %q failed: %v", result, s, err)
	}

	return result
}

// MustDecodeQuery decodes a query string into a T and fails the test on
// error.
//
// Example:
//
//	p := uon.MustDecodeQuery[SearchParams](t, "q=go&tags=@(a,b)")
func MustDecodeQuery[T any](t *testing.T, query string, opts ...Option) T {
	t.Helper()

	result, err := DecodeQuery[T](query, opts...)
	if err != nil {
		t.Fatalf("MustDecodeQuery[%T]: decoding %q failed: %v", result, query, err)
	}

	return result
}

// MustMarshal writes v and fails the test on error.
func MustMarshal(t *testing.T, v any, opts ...Option) string {
	t.Helper()

	s, err := Marshal(v, opts...)
	if err != nil {
		t.Fatalf("MustMarshal[%T]: %v", v, err)
	}

	return s
}

// AssertSyntaxError checks that err is a [*SyntaxError] of the given kind,
// such as [ErrUnterminated]. It returns the error for further checks and
// fails the test otherwise.
//
// Example:
//
//	_, err := uon.Parse("(a=1")
//	se := uon.AssertSyntaxError(t, err, uon.ErrUnterminated)
//	assert.Equal(t, 4, se.Offset)
func AssertSyntaxError(t *testing.T, err error, kind error) *SyntaxError {
	t.Helper()

	if err == nil {
		t.Fatalf("AssertSyntaxError: expected %v, got nil", kind)
	}

	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("AssertSyntaxError: expected *SyntaxError, got %T: %v", err, err)
	}
	if !errors.Is(se.Kind, kind) {
		t.Fatalf("AssertSyntaxError: expected kind %v, got %v", kind, se.Kind)
	}

	return se
}

// AssertCoercionError checks that err is a [*CoercionError] for the given
// field path and returns it.
//
// Example:
//
//	err := uon.Unmarshal("(age=old)", &p)
//	ce := uon.AssertCoercionError(t, err, "age")
func AssertCoercionError(t *testing.T, err error, field string) *CoercionError {
	t.Helper()

	if err == nil {
		t.Fatalf("AssertCoercionError: expected error for field %q, got nil", field)
	}

	var ce *CoercionError
	if !errors.As(err, &ce) {
		t.Fatalf("AssertCoercionError: expected *CoercionError, got %T: %v", err, err)
	}
	if ce.Field != field {
		t.Fatalf("AssertCoercionError: expected field %q, got %q", field, ce.Field)
	}

	return ce
}

// TestValidator is a [Validator] backed by a function, for testing the
// validation hook.
type TestValidator struct {
	ValidateFunc func(v any) error
}

// Validate implements [Validator].
func (tv *TestValidator) Validate(v any) error {
	if tv.ValidateFunc != nil {
		return tv.ValidateFunc(v)
	}

	return nil
}

// NewTestValidator creates a TestValidator with the given function.
func NewTestValidator(fn func(v any) error) *TestValidator {
	return &TestValidator{ValidateFunc: fn}
}
