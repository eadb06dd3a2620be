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

package generator_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stacks-network/clarwasm/ast"
	"github.com/stacks-network/clarwasm/generator"
	"github.com/stacks-network/clarwasm/types"
	"github.com/stacks-network/clarwasm/wasm"
)

func generate(
	t *testing.T,
	program []ast.SymbolicExpression,
	typeMap types.TypeMap,
) *generator.Contract {
	t.Helper()

	contract, err := generator.GenerateContract("test", program, typeMap)
	require.NoError(t, err)
	require.NotNil(t, contract)
	return contract
}

// topLevelInstructions returns the instructions of the contract's
// top-level function
func topLevelInstructions(t *testing.T, contract *generator.Contract) []wasm.Instruction {
	t.Helper()

	functions := contract.Module.Functions
	require.Len(t, functions, 1)
	require.Equal(t, ".top-level", functions[0].Name)
	return functions[0].Code.Instructions
}

// importIndex returns the function index of the import with the given
// name, i.e. its position in the import section
func importIndex(t *testing.T, contract *generator.Contract, name string) uint32 {
	t.Helper()

	for i, imp := range contract.Module.Imports {
		if imp.Name == name {
			return uint32(i)
		}
	}
	t.Fatalf("no import named %s", name)
	return 0
}

func hasImport(contract *generator.Contract, name string) bool {
	for _, imp := range contract.Module.Imports {
		if imp.Name == name {
			return true
		}
	}
	return false
}

// flatten expands nested blocks, depth-first,
// so calls inside branches are visible to the scans below
func flatten(instructions []wasm.Instruction) []wasm.Instruction {
	var result []wasm.Instruction
	for _, instruction := range instructions {
		result = append(result, instruction)

		var block wasm.Block
		switch instruction := instruction.(type) {
		case wasm.InstructionBlock:
			block = instruction.Block
		case wasm.InstructionLoop:
			block = instruction.Block
		case wasm.InstructionIf:
			block = instruction.Block
		default:
			continue
		}

		result = append(result, flatten(block.Instructions1)...)
		result = append(result, flatten(block.Instructions2)...)
	}
	return result
}

// callPositions returns the positions, in the flattened instruction
// sequence, of every call to the given function index
func callPositions(instructions []wasm.Instruction, funcIndex uint32) []int {
	var positions []int
	for i, instruction := range flatten(instructions) {
		if call, ok := instruction.(wasm.InstructionCall); ok && call.FuncIndex == funcIndex {
			positions = append(positions, i)
		}
	}
	return positions
}

// i32ConstsBefore returns the values of the n consecutive i32.const
// instructions immediately preceding the given position
func i32ConstsBefore(
	t *testing.T,
	instructions []wasm.Instruction,
	position int,
	n int,
) []int32 {
	t.Helper()

	flat := flatten(instructions)
	require.GreaterOrEqual(t, position, n)

	values := make([]int32, n)
	for i := 0; i < n; i++ {
		instruction := flat[position-n+i]
		konst, ok := instruction.(wasm.InstructionI32Const)
		require.True(t, ok, "expected i32.const, got %#v", instruction)
		values[i] = konst.Value
	}
	return values
}

// dataAt returns the bytes of the data segment at the given offset
func dataAt(t *testing.T, contract *generator.Contract, offset uint32) []byte {
	t.Helper()

	for _, segment := range contract.Module.Data {
		konst, ok := segment.Offset[0].(wasm.InstructionI32Const)
		require.True(t, ok)
		if uint32(konst.Value) == offset {
			return segment.Init
		}
	}
	t.Fatalf("no data segment at offset %d", offset)
	return nil
}
