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

	"github.com/go-viper/mapstructure/v2"
)

// Settings is the declarative form of the codec options, for loading from a
// configuration file. Zero fields keep the defaults.
//
// Example (YAML):
//
//	uon:
//	  max_depth: 16
//	  unknown_properties: error
//	  duplicates: error
//	  time_layouts: "02.01.2006,2006-01-02"
type Settings struct {
	MaxDepth          int                   `mapstructure:"max_depth"`
	MaxSliceLen       int                   `mapstructure:"max_slice_len"`
	MaxMapSize        int                   `mapstructure:"max_map_size"`
	TypeKey           string                `mapstructure:"type_key"`
	ValueKey          string                `mapstructure:"value_key"`
	UnknownProperties UnknownPropertyPolicy `mapstructure:"unknown_properties"`
	Duplicates        DuplicatePolicy       `mapstructure:"duplicates"`
	AllErrors         bool                  `mapstructure:"all_errors"`
	ExpandedParams    bool                  `mapstructure:"expanded_params"`
	SortedKeys        bool                  `mapstructure:"sorted_keys"`
	TrimNulls         *bool                 `mapstructure:"trim_nulls"`
	URLEncoding       bool                  `mapstructure:"url_encoding"`
	URLDecoding       *bool                 `mapstructure:"url_decoding"`
	TimeLayouts       []string              `mapstructure:"time_layouts"`
}

// DecodeSettings decodes a generic map, such as a section of a YAML or TOML
// configuration file, into Settings. Policy names are parsed
// case-insensitively, comma-separated strings become lists and unknown keys
// are rejected.
func DecodeSettings(raw map[string]any) (Settings, error) {
	var s Settings
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &s,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return Settings{}, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return s, nil
}

// Options converts the settings into options for [New].
func (s Settings) Options() []Option {
	var opts []Option
	if s.MaxDepth != 0 {
		opts = append(opts, WithMaxDepth(s.MaxDepth))
	}
	if s.MaxSliceLen != 0 {
		opts = append(opts, WithMaxSliceLen(s.MaxSliceLen))
	}
	if s.MaxMapSize != 0 {
		opts = append(opts, WithMaxMapSize(s.MaxMapSize))
	}
	if s.TypeKey != "" {
		opts = append(opts, WithTypeKey(s.TypeKey))
	}
	if s.ValueKey != "" {
		opts = append(opts, WithValueKey(s.ValueKey))
	}
	if s.UnknownProperties != UnknownIgnore {
		opts = append(opts, WithUnknownProperties(s.UnknownProperties))
	}
	if s.Duplicates != DuplicateIgnore {
		opts = append(opts, WithDuplicatePolicy(s.Duplicates))
	}
	if s.AllErrors {
		opts = append(opts, WithAllErrors())
	}
	if s.ExpandedParams {
		opts = append(opts, WithExpandedParams(true))
	}
	if s.SortedKeys {
		opts = append(opts, WithSortedKeys())
	}
	if s.TrimNulls != nil {
		opts = append(opts, WithTrimNulls(*s.TrimNulls))
	}
	if s.URLEncoding {
		opts = append(opts, WithURLEncoding(true))
	}
	if s.URLDecoding != nil {
		opts = append(opts, WithURLDecoding(*s.URLDecoding))
	}
	if len(s.TimeLayouts) > 0 {
		opts = append(opts, WithTimeLayouts(s.TimeLayouts...))
	}

	return opts
}

// NewFromSettings creates a [Codec] from settings plus extra options, which
// are applied last.
func NewFromSettings(s Settings, opts ...Option) (*Codec, error) {
	return New(append(s.Options(), opts...)...)
}
