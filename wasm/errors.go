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

import (
	"fmt"
)

// InvalidBlockSecondInstructionsError is returned when writing a
// block-kinded instruction that has a second set of instructions,
// but is not an 'if' instruction
type InvalidBlockSecondInstructionsError struct {
	Offset int
}

func (e InvalidBlockSecondInstructionsError) Error() string {
	return fmt.Sprintf(
		"invalid second set of instructions at offset %d",
		e.Offset,
	)
}

// InvalidExportDescriptorError is returned when writing an export
// with an unsupported descriptor
type InvalidExportDescriptorError struct {
	Descriptor ExportDescriptor
}

func (e InvalidExportDescriptorError) Error() string {
	return fmt.Sprintf(
		"invalid export descriptor: %#+v",
		e.Descriptor,
	)
}

// InvalidNonUTF8NameError is returned when writing a name
// which is not properly UTF-8 encoded
type InvalidNonUTF8NameError struct {
	Name   string
	Offset int
}

func (e InvalidNonUTF8NameError) Error() string {
	return fmt.Sprintf(
		"invalid non-UTF-8 name at offset %d: %s",
		e.Offset,
		e.Name,
	)
}
