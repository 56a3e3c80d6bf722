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
	"encoding"
	"encoding/base64"
	"fmt"
	"net"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// setScalar converts a token into field.
// Priority: registered converters, special types, encoding.TextUnmarshaler,
// []byte as base64, then primitive kinds.
func setScalar(field reflect.Value, text string, cfg *config) error {
	fieldType := field.Type()

	if converter := findConverter(fieldType, cfg); converter != nil {
		converted, err := converter(text)
		if err != nil {
			return err
		}
		cv := reflect.ValueOf(converted)
		if !cv.IsValid() {
			field.SetZero()
			return nil
		}
		if cv.Type() != fieldType && cv.Type().ConvertibleTo(fieldType) {
			cv = cv.Convert(fieldType)
		}
		if !cv.Type().AssignableTo(fieldType) {
			return fmt.Errorf("%w: converter for %s returned %s", ErrUnsupportedType, fieldType, cv.Type())
		}
		field.Set(cv)

		return nil
	}

	// Special types come before TextUnmarshaler so time.Time gets the
	// configured layouts.
	switch fieldType {
	case timeType:
		t, err := parseTime(text, cfg.timeLayouts)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(t))

		return nil

	case durationType:
		d, err := time.ParseDuration(strings.TrimSpace(text))
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		field.SetInt(int64(d))

		return nil

	case urlType:
		u, err := url.Parse(text)
		if err != nil {
			return fmt.Errorf("invalid URL: %w", err)
		}
		field.Set(reflect.ValueOf(*u))

		return nil

	case ipType:
		ip := net.ParseIP(strings.TrimSpace(text))
		if ip == nil {
			return fmt.Errorf("%w: %s", ErrInvalidIPAddress, text)
		}
		field.Set(reflect.ValueOf(ip))

		return nil

	case ipNetType:
		_, ipnet, err := net.ParseCIDR(strings.TrimSpace(text))
		if err != nil {
			return fmt.Errorf("invalid CIDR notation: %w", err)
		}
		field.Set(reflect.ValueOf(*ipnet))

		return nil

	case regexpType:
		re, err := regexp.Compile(text)
		if err != nil {
			return fmt.Errorf("invalid regular expression: %w", err)
		}
		field.Set(reflect.ValueOf(re).Elem())

		return nil
	}

	if field.CanAddr() && field.Addr().Type().Implements(textUnmarshalerType) {
		unmarshaler, ok := field.Addr().Interface().(encoding.TextUnmarshaler)
		if !ok {
			return fmt.Errorf("%w: failed to assert TextUnmarshaler", ErrUnsupportedType)
		}

		return unmarshaler.UnmarshalText([]byte(text))
	}

	if fieldType.Kind() == reflect.Slice && fieldType.Elem().Kind() == reflect.Uint8 {
		b, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return fmt.Errorf("invalid base64: %w", err)
		}
		field.SetBytes(b)

		return nil
	}

	return setPrimitive(field, text)
}

// findConverter returns the converter registered for exactly t.
func findConverter(t reflect.Type, cfg *config) TypeConverter {
	if len(cfg.converters) == 0 {
		return nil
	}
	if conv, ok := cfg.converters[t]; ok {
		return conv
	}

	return nil
}

// setPrimitive converts text for the basic reflect kinds, rejecting values
// that overflow the field.
func setPrimitive(field reflect.Value, text string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(text)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(strings.TrimSpace(text), 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(i)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u, err := strconv.ParseUint(strings.TrimSpace(text), 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer: %w", err)
		}
		field.SetUint(u)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid float: %w", err)
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := parseBoolGenerous(text)
		if err != nil {
			return err
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedType, field.Kind())
	}

	return nil
}

// parseBoolGenerous parses various boolean string representations.
// It supports: true/false, 1/0, yes/no, on/off, t/f, y/n (case-insensitive).
// The empty string, as produced by "flag=", is false.
func parseBoolGenerous(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on", "t", "y":
		return true, nil
	case "false", "0", "no", "off", "f", "n", "":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidBooleanValue, s)
	}
}

// parseTime tries each layout in order.
func parseTime(value string, layouts []string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrEmptyTimeValue
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w %q (tried %d layouts)", ErrUnableToParseTime, value, len(layouts))
}

// formatScalar renders a value of a scalar type as token text.
// It reports false for types that are not written as a single token.
func formatScalar(v reflect.Value) (string, bool, error) {
	switch v.Type() {
	case timeType:
		return v.Interface().(time.Time).Format(time.RFC3339Nano), true, nil
	case durationType:
		return time.Duration(v.Int()).String(), true, nil
	case urlType:
		u := v.Interface().(url.URL)
		return u.String(), true, nil
	case ipType:
		if v.Len() == 0 {
			return "", true, nil
		}
		return v.Interface().(net.IP).String(), true, nil
	case ipNetType:
		n := v.Interface().(net.IPNet)
		return n.String(), true, nil
	case regexpType:
		if v.CanAddr() {
			return v.Addr().Interface().(*regexp.Regexp).String(), true, nil
		}
		re := v.Interface().(regexp.Regexp)
		return re.String(), true, nil
	}

	if v.Type().Implements(textMarshalerType) {
		b, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		return string(b), true, err
	}
	if v.CanAddr() && v.Addr().Type().Implements(textMarshalerType) {
		b, err := v.Addr().Interface().(encoding.TextMarshaler).MarshalText()
		return string(b), true, err
	}
	if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
		return base64.StdEncoding.EncodeToString(v.Bytes()), true, nil
	}

	return "", false, nil
}
