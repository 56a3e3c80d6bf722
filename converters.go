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
	"slices"
	"strings"
	"time"
)

// ErrNotAllowed is returned by converters built with [EnumConverter] for
// values outside the allowed set.
var ErrNotAllowed = errors.New("value not allowed")

// TimeConverter returns a converter for time.Time that accepts only the
// given layouts, tried in order. Use it with [WithConverter] to replace the
// default layouts; use [WithTimeLayouts] to extend them.
//
// Example:
//
//	codec := uon.MustNew(
//	    uon.WithConverter(uon.TimeConverter("02.01.2006", "2006-01-02 15:04")),
//	)
func TimeConverter(layouts ...string) func(string) (time.Time, error) {
	layouts = slices.Clone(layouts)

	return func(s string) (time.Time, error) {
		if len(layouts) == 0 {
			return time.Time{}, fmt.Errorf("%w: no layouts configured", ErrUnableToParseTime)
		}

		return parseTime(s, layouts)
	}
}

// DurationConverter returns a converter for time.Duration that also accepts
// named aliases (case-insensitive) before falling back to time.ParseDuration.
//
// Example:
//
//	uon.WithConverter(uon.DurationConverter(map[string]time.Duration{
//	    "short": 5 * time.Second,
//	    "long":  time.Minute,
//	}))
func DurationConverter(aliases map[string]time.Duration) func(string) (time.Duration, error) {
	lookup := make(map[string]time.Duration, len(aliases))
	names := make([]string, 0, len(aliases))
	for name, d := range aliases {
		lookup[strings.ToLower(name)] = d
		names = append(names, name)
	}
	slices.Sort(names)

	return func(s string) (time.Duration, error) {
		s = strings.TrimSpace(s)
		if d, ok := lookup[strings.ToLower(s)]; ok {
			return d, nil
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			if len(names) > 0 {
				return 0, fmt.Errorf("invalid duration %q (aliases: %s): %w", s, strings.Join(names, ", "), err)
			}

			return 0, fmt.Errorf("invalid duration: %w", err)
		}

		return d, nil
	}
}

// EnumConverter returns a converter that accepts only the given values,
// compared case-insensitively, and yields the canonical spelling.
//
// Example:
//
//	type Sort string
//
//	uon.WithConverter(uon.EnumConverter[Sort]("asc", "desc"))
func EnumConverter[T ~string](allowed ...T) func(string) (T, error) {
	lookup := make(map[string]T, len(allowed))
	names := make([]string, len(allowed))
	for i, v := range allowed {
		lookup[strings.ToLower(string(v))] = v
		names[i] = string(v)
	}

	return func(s string) (T, error) {
		if v, ok := lookup[strings.ToLower(strings.TrimSpace(s))]; ok {
			return v, nil
		}

		return "", fmt.Errorf("%w: %q must be one of: %s", ErrNotAllowed, s, strings.Join(names, ", "))
	}
}

// BoolConverter returns a converter with custom truthy and falsy words,
// compared case-insensitively. The empty token is false.
//
// Example:
//
//	uon.WithConverter(uon.BoolConverter(
//	    []string{"enabled", "active"},
//	    []string{"disabled", "inactive"},
//	))
func BoolConverter(truthy, falsy []string) func(string) (bool, error) {
	words := make(map[string]bool, len(truthy)+len(falsy))
	for _, w := range falsy {
		words[strings.ToLower(w)] = false
	}
	for _, w := range truthy {
		words[strings.ToLower(w)] = true
	}

	return func(s string) (bool, error) {
		lower := strings.ToLower(strings.TrimSpace(s))
		if lower == "" {
			return false, nil
		}
		if b, ok := words[lower]; ok {
			return b, nil
		}

		return false, fmt.Errorf("%w: %q (accepted: %s)", ErrInvalidBooleanValue, s,
			strings.Join(slices.Concat(truthy, falsy), ", "))
	}
}
