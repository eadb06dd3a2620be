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

package generator

// A Config adjusts code generation.
// The zero value is the default configuration.
type Config struct {
	// TopLevelExportName overrides the export name
	// of the contract's top-level function
	TopLevelExportName string

	// MemoryExportName overrides the export name
	// of the contract's linear memory
	MemoryExportName string

	// Words are additional construct handlers for this generator,
	// consulted before the process-wide registry.
	// A word with a built-in keyword replaces the built-in.
	Words []Word
}

func (c *Config) topLevelExportName() string {
	if c.TopLevelExportName != "" {
		return c.TopLevelExportName
	}
	return TopLevelExportName
}

func (c *Config) memoryExportName() string {
	if c.MemoryExportName != "" {
		return c.MemoryExportName
	}
	return MemoryExportName
}
