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
	"fmt"
	"reflect"
	"strings"
)

// Grammar error kinds. A [*SyntaxError] unwraps to exactly one of them.
var (
	ErrMissingSeparator     = errors.New("missing separator")
	ErrDanglingAssignment   = errors.New("dangling assignment")
	ErrUnterminated         = errors.New("unterminated structure")
	ErrUnexpectedTerminator = errors.New("unexpected terminator")
	ErrUnexpectedToken      = errors.New("unexpected token")
	ErrNestingTooDeep       = errors.New("nesting too deep")
	ErrInvalidEncoding      = errors.New("invalid percent-encoding")
)

// Static errors for binding and writing.
var (
	ErrOutMustBePointer      = errors.New("out must be a non-nil pointer")
	ErrOutPointerNil         = errors.New("out pointer is nil")
	ErrUnsupportedType       = errors.New("unsupported type")
	ErrInvalidBooleanValue   = errors.New("invalid boolean value")
	ErrInvalidIPAddress      = errors.New("invalid IP address")
	ErrEmptyTimeValue        = errors.New("empty time value")
	ErrUnableToParseTime     = errors.New("unable to parse time")
	ErrSliceExceedsMaxLength = errors.New("slice exceeds max length")
	ErrMapExceedsMaxSize     = errors.New("map exceeds max size")
	ErrMaxDepthExceeded      = errors.New("exceeded maximum nesting depth")
	ErrDuplicateProperty     = errors.New("duplicate property")
	ErrNotAnObject           = errors.New("value is not an object")
	ErrNotAList              = errors.New("value is not a list")
	ErrUnknownTypeName       = errors.New("unknown type name")
	ErrValidationFailed      = errors.New("validation failed")
)

// SyntaxError reports input that does not follow the notation grammar.
//
// Use [errors.As] to get the location and [errors.Is] to check the kind:
//
//	var synErr *uon.SyntaxError
//	if errors.As(err, &synErr) && errors.Is(err, uon.ErrUnterminated) {
//	    fmt.Printf("line %d, column %d\n", synErr.Line, synErr.Column)
//	}
type SyntaxError struct {
	Kind   error  // One of the grammar error kinds
	Offset int    // Rune offset into the decoded input
	Line   int    // 1-based line
	Column int    // 1-based column
	Token  string // Offending text, empty at end of input
	Detail string // Human-readable context
}

func newSyntaxError(kind error, pos Pos, token, detail string) *SyntaxError {
	return &SyntaxError{
		Kind:   kind,
		Offset: pos.Offset,
		Line:   pos.Line,
		Column: pos.Column,
		Token:  token,
		Detail: detail,
	}
}

// Error returns a formatted error message.
func (e *SyntaxError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "uon: %v at line %d, column %d", e.Kind, e.Line, e.Column)
	if e.Token != "" {
		fmt.Fprintf(&b, " near %q", e.Token)
	} else {
		b.WriteString(" at end of input")
	}
	if e.Detail != "" {
		b.WriteString(": " + e.Detail)
	}

	return b.String()
}

// Unwrap returns the error kind for errors.Is compatibility.
func (e *SyntaxError) Unwrap() error {
	return e.Kind
}

// HTTPStatus implements rivaas.dev/errors.ErrorType.
func (e *SyntaxError) HTTPStatus() int {
	return 400 // Bad Request
}

// Code implements rivaas.dev/errors.ErrorCode.
func (e *SyntaxError) Code() string {
	return "syntax_error"
}

// CoercionError reports a token that cannot be converted to the declared
// type of the property it is bound to.
//
// Use [errors.As] to check for CoercionError:
//
//	var coErr *uon.CoercionError
//	if errors.As(err, &coErr) {
//	    fmt.Printf("Field: %s, Value: %s\n", coErr.Field, coErr.Value)
//	}
type CoercionError struct {
	Field  string       // Property path, e.g. "address.zip" or "tags[2]"
	Value  string       // The token that failed conversion
	Type   reflect.Type // Declared Go type
	Reason string       // Human-readable reason, used when Err is nil
	Err    error        // Underlying error
	Line   int          // 1-based line of the token, 0 if unknown
	Column int          // 1-based column of the token, 0 if unknown
}

// Error returns a formatted error message with contextual hints.
func (e *CoercionError) Error() string {
	typeName := "unknown"
	if e.Type != nil {
		typeName = e.Type.String()
	}
	field := e.Field
	if field == "" {
		field = "<root>"
	}

	var base string
	if e.Reason != "" {
		base = fmt.Sprintf("uon: binding %q to %s: %s", field, typeName, e.Reason)
	} else {
		base = fmt.Sprintf("uon: binding %q: failed to convert %q to %s: %v", field, e.Value, typeName, e.Err)
	}
	if e.Line > 0 {
		base += fmt.Sprintf(" (line %d, column %d)", e.Line, e.Column)
	}
	if hint := e.hint(); hint != "" {
		base += " (hint: " + hint + ")"
	}

	return base
}

// hint returns a contextual hint for common mistakes.
func (e *CoercionError) hint() string {
	if e.Type == nil {
		return ""
	}
	t := e.Type
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch {
	case isIntType(t) && strings.Contains(e.Value, "."):
		return "use a float type for decimal values"
	case t == timeType:
		return "use RFC3339 format (2006-01-02T15:04:05Z07:00) or register layouts with WithTimeLayouts"
	case t == durationType:
		return "use Go duration format (e.g., '1h30m', '500ms')"
	case t.Kind() == reflect.Bool:
		return "accepted values: true/false, yes/no, 1/0, on/off"
	case errors.Is(e.Err, ErrNotAnObject):
		return "objects are written as (key=value,...)"
	case errors.Is(e.Err, ErrNotAList):
		return "lists are written as @(a,b) or as repeated keys"
	case t.Kind() == reflect.String && strings.HasPrefix(e.Value, "("):
		return "quote strings that start with '(' as '(...)'"
	}

	return ""
}

// isIntType returns true if the type is any integer type.
func isIntType(t reflect.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	default:
		return false
	}
}

// Unwrap returns the underlying error for errors.Is/As compatibility.
func (e *CoercionError) Unwrap() error {
	return e.Err
}

// HTTPStatus implements rivaas.dev/errors.ErrorType.
func (e *CoercionError) HTTPStatus() int {
	return 400 // Bad Request
}

// Code implements rivaas.dev/errors.ErrorCode.
func (e *CoercionError) Code() string {
	return "coercion_error"
}

// UnknownPropertyError is returned under [UnknownError] when the input names
// a property the target struct does not declare.
type UnknownPropertyError struct {
	Type     reflect.Type // Target struct type
	Property string       // Key as written in the input
	Line     int          // 1-based line of the key
	Column   int          // 1-based column of the key
}

// Error returns a formatted error message.
func (e *UnknownPropertyError) Error() string {
	typeName := "unknown"
	if e.Type != nil {
		typeName = e.Type.String()
	}

	return fmt.Sprintf("uon: unknown property %q on %s at line %d, column %d",
		e.Property, typeName, e.Line, e.Column)
}

// HTTPStatus implements rivaas.dev/errors.ErrorType.
func (e *UnknownPropertyError) HTTPStatus() int {
	return 400 // Bad Request
}

// Code implements rivaas.dev/errors.ErrorCode.
func (e *UnknownPropertyError) Code() string {
	return "unknown_property"
}

// InstantiationError reports a target type the binder cannot create or fill,
// such as channels, functions, interfaces without a discriminator or a
// fixed-size array that is too short.
type InstantiationError struct {
	Type   reflect.Type
	Reason string
	Err    error
}

// Error returns a formatted error message.
func (e *InstantiationError) Error() string {
	typeName := "unknown"
	if e.Type != nil {
		typeName = e.Type.String()
	}
	msg := fmt.Sprintf("uon: cannot instantiate %s: %s", typeName, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap returns the underlying error.
func (e *InstantiationError) Unwrap() error {
	return e.Err
}

// HTTPStatus implements rivaas.dev/errors.ErrorType.
// A target the program cannot build is a server-side defect, except for an
// unregistered discriminator which the client chose.
func (e *InstantiationError) HTTPStatus() int {
	if errors.Is(e.Err, ErrUnknownTypeName) {
		return 400 // Bad Request
	}

	return 500 // Internal Server Error
}

// Code implements rivaas.dev/errors.ErrorCode.
func (e *InstantiationError) Code() string {
	return "instantiation_error"
}

// MultiError aggregates binding errors.
// It is returned when [WithAllErrors] is used and binding fails.
//
// Use [errors.As] to check for MultiError:
//
//	var multi *uon.MultiError
//	if errors.As(err, &multi) {
//	    for _, e := range multi.Errors {
//	        // Handle each error
//	    }
//	}
type MultiError struct {
	Errors []error
}

// Error returns a formatted error message.
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}

	return fmt.Sprintf("uon: %d binding errors occurred", len(m.Errors))
}

// Unwrap returns all errors for errors.Is/As compatibility.
func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// HTTPStatus implements rivaas.dev/errors.ErrorType.
func (m *MultiError) HTTPStatus() int {
	return 400 // Bad Request
}

// Details implements rivaas.dev/errors.ErrorDetails.
func (m *MultiError) Details() any {
	return m.Errors
}

// Code implements rivaas.dev/errors.ErrorCode.
func (m *MultiError) Code() string {
	return "multiple_binding_errors"
}

// Add appends an error to the MultiError.
func (m *MultiError) Add(err error) {
	m.Errors = append(m.Errors, err)
}

// HasErrors returns true if there are any errors.
func (m *MultiError) HasErrors() bool {
	return len(m.Errors) > 0
}

// ErrorOrNil returns nil if there are no errors, otherwise returns the MultiError.
func (m *MultiError) ErrorOrNil() error {
	if !m.HasErrors() {
		return nil
	}

	return m
}
