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

package yaml_test

import (
	"fmt"

	"rivaas.dev/uon/yaml"
)

// ExampleToUON converts a YAML document to UON text.
func ExampleToUON() {
	s, err := yaml.ToUON([]byte("q: go lang\ntags: [a, b]\npage: 2\n"))
	if err != nil {
		_, _ = fmt.Printf("Error: %v\n", err)
		return
	}

	_, _ = fmt.Println(s)
	// Output: (q=go lang,tags=@(a,b),page=2)
}

// ExampleFromUON converts UON text to YAML.
func ExampleFromUON() {
	out, err := yaml.FromUON("(name=api,port=8080)")
	if err != nil {
		_, _ = fmt.Printf("Error: %v\n", err)
		return
	}

	_, _ = fmt.Print(string(out))
	// Output:
	// name: api
	// port: 8080
}

// ExampleDecode binds a YAML document with uon struct tags.
func ExampleDecode() {
	type Server struct {
		Host string `uon:"host"`
		Port int    `uon:"port"`
	}

	s, err := yaml.Decode[Server]([]byte("host: localhost\nport: 3000\n"))
	if err != nil {
		_, _ = fmt.Printf("Error: %v\n", err)
		return
	}

	_, _ = fmt.Printf("%s:%d\n", s.Host, s.Port)
	// Output: localhost:3000
}
