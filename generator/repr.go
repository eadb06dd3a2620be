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

import (
	"github.com/stacks-network/clarwasm/errors"
	"github.com/stacks-network/clarwasm/types"
	"github.com/stacks-network/clarwasm/wasm"
)

// ReprValueTypes returns the flattened operand-stack representation
// of a value of the given type:
//
//   - int and uint are two i64s, low half first
//   - bool is a single i32
//   - buffers, strings, principals and lists are an i32 offset
//     into linear memory and an i32 byte length
//   - an optional is an i32 indicator followed by the representation
//     of the inner type
//   - a response is an i32 indicator followed by the representations
//     of the ok type and the err type
//   - a tuple is the concatenation of its field representations,
//     in field order
func ReprValueTypes(ty types.TypeSignature) []wasm.ValueType {
	switch ty := ty.(type) {
	case types.IntType, types.UIntType:
		return []wasm.ValueType{
			wasm.ValueTypeI64,
			wasm.ValueTypeI64,
		}

	case types.BoolType:
		return []wasm.ValueType{
			wasm.ValueTypeI32,
		}

	case types.BufferType,
		types.StringASCIIType,
		types.StringUTF8Type,
		types.PrincipalType,
		types.ListType:

		return []wasm.ValueType{
			wasm.ValueTypeI32,
			wasm.ValueTypeI32,
		}

	case types.OptionalType:
		return append(
			[]wasm.ValueType{wasm.ValueTypeI32},
			ReprValueTypes(ty.Inner)...,
		)

	case types.ResponseType:
		repr := []wasm.ValueType{wasm.ValueTypeI32}
		repr = append(repr, ReprValueTypes(ty.Ok)...)
		repr = append(repr, ReprValueTypes(ty.Err)...)
		return repr

	case types.TupleType:
		var repr []wasm.ValueType
		for _, field := range ty.Fields {
			repr = append(repr, ReprValueTypes(field.Type)...)
		}
		return repr

	case types.NoType:
		return nil
	}

	panic(UnsupportedTypeError{Type: ty})
}

// readFromMemory emits instructions that load a value of the given type
// from linear memory at the given static offset,
// leaving its representation on the operand stack
func (gen *WasmGenerator) readFromMemory(ty types.TypeSignature, offset uint32) {
	switch ty := ty.(type) {
	case types.IntType, types.UIntType:
		gen.emitLoad(wasm.ValueTypeI64, offset)
		gen.emitLoad(wasm.ValueTypeI64, offset+types.IntSize/2)

	case types.BoolType:
		gen.emitLoad(wasm.ValueTypeI32, offset)

	case types.BufferType,
		types.StringASCIIType,
		types.StringUTF8Type,
		types.PrincipalType,
		types.ListType:

		// the data is stored in place, after the length prefix
		gen.emit(wasm.InstructionI32Const{
			Value: int32(offset + types.LengthPrefixSize),
		})
		gen.emitLoad(wasm.ValueTypeI32, offset)

	case types.OptionalType:
		gen.emitLoad(wasm.ValueTypeI32, offset)
		gen.readFromMemory(ty.Inner, offset+types.IndicatorSize)

	case types.ResponseType:
		gen.emitLoad(wasm.ValueTypeI32, offset)
		okOffset := offset + types.IndicatorSize
		gen.readFromMemory(ty.Ok, okOffset)
		gen.readFromMemory(ty.Err, okOffset+types.Size(ty.Ok))

	case types.TupleType:
		for _, field := range ty.FieldLayouts() {
			gen.readFromMemory(field.Type, offset+field.Offset)
		}

	case types.NoType:
		// no representation

	default:
		panic(UnsupportedTypeError{Type: ty})
	}
}

// writeToMemory emits instructions that pop the representation of a value
// of the given type off the operand stack and store it into linear memory
// at the given static offset.
// Sequence data is copied in place, after the length prefix.
func (gen *WasmGenerator) writeToMemory(ty types.TypeSignature, offset uint32) {
	valueTypes := ReprValueTypes(ty)

	locals := make([]uint32, len(valueTypes))
	for i, valueType := range valueTypes {
		locals[i] = gen.addLocal(valueType)
	}

	// the last scalar of the representation is on top of the stack
	for i := len(locals) - 1; i >= 0; i-- {
		gen.emit(wasm.InstructionLocalSet{LocalIndex: locals[i]})
	}

	gen.storeScalars(ty, offset, locals)
}

// storeScalars emits the stores for writeToMemory,
// consuming the given locals in representation order
func (gen *WasmGenerator) storeScalars(
	ty types.TypeSignature,
	offset uint32,
	locals []uint32,
) (rest []uint32) {

	switch ty := ty.(type) {
	case types.IntType, types.UIntType:
		gen.emitStore(wasm.ValueTypeI64, offset, locals[0])
		gen.emitStore(wasm.ValueTypeI64, offset+types.IntSize/2, locals[1])
		return locals[2:]

	case types.BoolType:
		gen.emitStore(wasm.ValueTypeI32, offset, locals[0])
		return locals[1:]

	case types.BufferType,
		types.StringASCIIType,
		types.StringUTF8Type,
		types.PrincipalType,
		types.ListType:

		srcLocal := locals[0]
		lengthLocal := locals[1]

		gen.emitStore(wasm.ValueTypeI32, offset, lengthLocal)

		gen.emit(
			wasm.InstructionI32Const{
				Value: int32(offset + types.LengthPrefixSize),
			},
			wasm.InstructionLocalGet{LocalIndex: srcLocal},
			wasm.InstructionLocalGet{LocalIndex: lengthLocal},
			wasm.InstructionMemoryCopy{},
		)
		return locals[2:]

	case types.OptionalType:
		gen.emitStore(wasm.ValueTypeI32, offset, locals[0])
		return gen.storeScalars(ty.Inner, offset+types.IndicatorSize, locals[1:])

	case types.ResponseType:
		gen.emitStore(wasm.ValueTypeI32, offset, locals[0])
		okOffset := offset + types.IndicatorSize
		locals = gen.storeScalars(ty.Ok, okOffset, locals[1:])
		return gen.storeScalars(ty.Err, okOffset+types.Size(ty.Ok), locals)

	case types.TupleType:
		for _, field := range ty.FieldLayouts() {
			locals = gen.storeScalars(field.Type, offset+field.Offset, locals)
		}
		return locals

	case types.NoType:
		return locals
	}

	panic(UnsupportedTypeError{Type: ty})
}

func (gen *WasmGenerator) emitLoad(valueType wasm.ValueType, offset uint32) {
	gen.emit(wasm.InstructionI32Const{Value: 0})

	memArg := wasm.MemArg{
		Align:  2,
		Offset: offset,
	}

	switch valueType {
	case wasm.ValueTypeI32:
		gen.emit(wasm.InstructionI32Load{MemArg: memArg})
	case wasm.ValueTypeI64:
		gen.emit(wasm.InstructionI64Load{MemArg: memArg})
	default:
		panic(errors.NewUnreachableError())
	}
}

func (gen *WasmGenerator) emitStore(valueType wasm.ValueType, offset uint32, local uint32) {
	gen.emit(
		wasm.InstructionI32Const{Value: 0},
		wasm.InstructionLocalGet{LocalIndex: local},
	)

	memArg := wasm.MemArg{
		Align:  2,
		Offset: offset,
	}

	switch valueType {
	case wasm.ValueTypeI32:
		gen.emit(wasm.InstructionI32Store{MemArg: memArg})
	case wasm.ValueTypeI64:
		gen.emit(wasm.InstructionI64Store{MemArg: memArg})
	default:
		panic(errors.NewUnreachableError())
	}
}
