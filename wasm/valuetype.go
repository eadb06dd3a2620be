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

// ValueType is the type of a value on the evaluation stack
type ValueType byte

const (
	// ValueTypeI32 is the value type of a 32-bit integer
	ValueTypeI32 ValueType = 0x7F
	// ValueTypeI64 is the value type of a 64-bit integer
	ValueTypeI64 ValueType = 0x7E
)

func (ValueType) isBlockType() {}

func (t ValueType) write(w *WASMWriter) error {
	return w.buf.WriteByte(byte(t))
}

// BlockType is the type of a block: either empty, a value type,
// or an index of a function type
type BlockType interface {
	isBlockType()
	write(w *WASMWriter) error
}

// emptyBlockType is the byte encoding an empty block type in the WASM binary
const emptyBlockType byte = 0x40

// TypeIndexBlockType is a block type which refers to a function type by index
type TypeIndexBlockType struct {
	TypeIndex uint32
}

var _ BlockType = TypeIndexBlockType{}

func (TypeIndexBlockType) isBlockType() {}

func (t TypeIndexBlockType) write(w *WASMWriter) error {
	// NOTE: the type index is encoded as a *signed* LEB128
	return w.buf.writeInt32LEB128(int32(t.TypeIndex))
}
