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

// Export represents an export
type Export struct {
	Name       string
	Descriptor ExportDescriptor
}

// ExportDescriptor describes what kind of entity is exported
type ExportDescriptor interface {
	isExportDescriptor()
}

// FunctionExport is the export of a function
type FunctionExport struct {
	FunctionIndex uint32
}

func (FunctionExport) isExportDescriptor() {}

// MemoryExport is the export of a memory
type MemoryExport struct {
	MemoryIndex uint32
}

func (MemoryExport) isExportDescriptor() {}

// exportIndicator is the byte used to indicate the kind of export in the WASM binary
type exportIndicator byte

const (
	// exportIndicatorFunction is the byte used to indicate the export of a function in the WASM binary
	exportIndicatorFunction exportIndicator = 0x0
	// exportIndicatorMemory is the byte used to indicate the export of a memory in the WASM binary
	exportIndicatorMemory exportIndicator = 0x2
)
