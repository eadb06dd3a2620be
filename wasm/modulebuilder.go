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
	"errors"
	"math"
)

// ModuleBuilder allows building modules
type ModuleBuilder struct {
	name               string
	functionImports    []*Import
	types              []*FunctionType
	functions          []*Function
	data               []*Data
	requiredMemorySize uint32
	exports            []*Export
}

func NewModuleBuilder(name string) *ModuleBuilder {
	return &ModuleBuilder{name: name}
}

func (b *ModuleBuilder) AddFunction(name string, functionType *FunctionType, code *Code) uint32 {
	typeIndex := b.addType(functionType)
	// function indices include function imports
	funcIndex := uint32(len(b.functionImports) + len(b.functions))
	b.functions = append(
		b.functions,
		&Function{
			Name:      name,
			TypeIndex: typeIndex,
			Code:      code,
		},
	)
	return funcIndex
}

func (b *ModuleBuilder) AddFunctionImport(module string, name string, functionType *FunctionType) (uint32, error) {
	if len(b.functions) > 0 {
		return 0, errors.New("cannot add function imports after adding functions")
	}

	typeIndex := b.addType(functionType)
	funcIndex := uint32(len(b.functionImports))
	b.functionImports = append(
		b.functionImports,
		&Import{
			Module:    module,
			Name:      name,
			TypeIndex: typeIndex,
		},
	)

	return funcIndex, nil
}

func (b *ModuleBuilder) addType(functionType *FunctionType) uint32 {
	typeIndex := uint32(len(b.types))
	b.types = append(b.types, functionType)
	return typeIndex
}

// RequireMemory reserves the given number of bytes in the module's
// linear memory and returns the offset of the reservation.
//
// Offsets are never reused: the cursor only ever grows,
// and the total size is fixed when the module is built.
func (b *ModuleBuilder) RequireMemory(size uint32) uint32 {
	offset := b.requiredMemorySize
	b.requiredMemorySize += size
	return offset
}

// AddData adds a data segment initializing the module's memory
// at the given static offset
func (b *ModuleBuilder) AddData(offset uint32, value []byte) {
	b.data = append(b.data, &Data{
		// NOTE: currently only one memory is supported
		MemoryIndex: 0,
		Offset: []Instruction{
			InstructionI32Const{Value: int32(offset)},
		},
		Init: value,
	})
}

func (b *ModuleBuilder) Build() *Module {
	// NOTE: currently only one memory is supported
	memories := []*Memory{
		{
			Min: uint32(math.Ceil(float64(b.requiredMemorySize) / float64(MemoryPageSize))),
			Max: nil,
		},
	}

	return &Module{
		Name:      b.name,
		Types:     b.types,
		Imports:   b.functionImports,
		Functions: b.functions,
		Memories:  memories,
		Data:      b.data,
		Exports:   b.exports,
	}
}

func (b *ModuleBuilder) ExportMemory(name string) {
	b.AddExport(&Export{
		Name: name,
		Descriptor: MemoryExport{
			MemoryIndex: 0,
		},
	})
}

func (b *ModuleBuilder) ExportFunction(name string, funcIndex uint32) {
	b.AddExport(&Export{
		Name: name,
		Descriptor: FunctionExport{
			FunctionIndex: funcIndex,
		},
	})
}

func (b *ModuleBuilder) AddExport(export *Export) {
	b.exports = append(b.exports, export)
}
