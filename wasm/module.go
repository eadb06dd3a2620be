/*
 * Clarwasm - The Clarity-to-WebAssembly compiler
 *
 * Copyright Stacks Open Internet Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package wasm

// Module represents a WebAssembly module
type Module struct {
	Name      string
	Types     []*FunctionType
	Imports   []*Import
	Functions []*Function
	Memories  []*Memory
	Exports   []*Export
	Data      []*Data
}

// FunctionType is the type of a function:
// the types of its parameters and the types of its results
type FunctionType struct {
	Params  []ValueType
	Results []ValueType
}

// Import represents an import of a function from another module
type Import struct {
	Module    string
	Name      string
	TypeIndex uint32
}

// FullName returns the two-part name of the import, e.g. "stdlib.add-int"
func (imp *Import) FullName() string {
	return imp.Module + "." + imp.Name
}

// Function represents a function defined in the module
type Function struct {
	Name      string
	TypeIndex uint32
	Code      *Code
}

// Code is the body of a function: the types of its declared locals
// (parameters excluded), and its instruction sequence
type Code struct {
	Locals       []ValueType
	Instructions []Instruction
}

// Data is a data segment: bytes copied into a memory at a static offset
// when the module is instantiated
type Data struct {
	MemoryIndex uint32
	Offset      []Instruction
	Init        []byte
}
