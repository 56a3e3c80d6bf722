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

//go:build !integration

package proto_test

import (
	"fmt"

	"rivaas.dev/uon"
	"rivaas.dev/uon/proto"
)

// ExampleToProto converts a parsed value to google.protobuf.Value.
func ExampleToProto() {
	v, err := uon.Parse("(q=go,page=2)")
	if err != nil {
		_, _ = fmt.Printf("Error: %v\n", err)
		return
	}

	pv, err := proto.ToProto(v)
	if err != nil {
		_, _ = fmt.Printf("Error: %v\n", err)
		return
	}

	fields := pv.GetStructValue().GetFields()
	_, _ = fmt.Println(fields["q"].GetStringValue(), fields["page"].GetNumberValue())
	// Output: go 2
}
