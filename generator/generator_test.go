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
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacks-network/clarwasm/ast"
	"github.com/stacks-network/clarwasm/generator"
	"github.com/stacks-network/clarwasm/types"
	"github.com/stacks-network/clarwasm/wasm"
)

func TestGenerate_integerLiteral(t *testing.T) {

	t.Parallel()

	t.Run("positive", func(t *testing.T) {

		t.Parallel()

		literal := ast.NewIntLiteral(42)

		contract := generate(t,
			[]ast.SymbolicExpression{literal},
			types.TypeMap{literal: types.Int},
		)

		instructions := topLevelInstructions(t, contract)

		assert.Equal(t, wasm.InstructionI64Const{Value: 42}, instructions[0])
		assert.Equal(t, wasm.InstructionI64Const{Value: 0}, instructions[1])
	})

	t.Run("negative", func(t *testing.T) {

		t.Parallel()

		literal := ast.NewIntLiteral(-1)

		contract := generate(t,
			[]ast.SymbolicExpression{literal},
			types.TypeMap{literal: types.Int},
		)

		instructions := topLevelInstructions(t, contract)

		// -1 in 128-bit two's complement: both halves all ones
		assert.Equal(t, wasm.InstructionI64Const{Value: -1}, instructions[0])
		assert.Equal(t, wasm.InstructionI64Const{Value: -1}, instructions[1])
	})

	t.Run("above 64 bits", func(t *testing.T) {

		t.Parallel()

		value, ok := new(big.Int).SetString("18446744073709551617", 10) // 2^64 + 1
		require.True(t, ok)

		literal := &ast.UIntLiteral{Value: value}

		contract := generate(t,
			[]ast.SymbolicExpression{literal},
			types.TypeMap{literal: types.UInt},
		)

		instructions := topLevelInstructions(t, contract)

		assert.Equal(t, wasm.InstructionI64Const{Value: 1}, instructions[0])
		assert.Equal(t, wasm.InstructionI64Const{Value: 1}, instructions[1])
	})
}

func TestGenerate_stringLiteral(t *testing.T) {

	t.Parallel()

	t.Run("ascii", func(t *testing.T) {

		t.Parallel()

		literal := ast.NewStringLiteral("hi")

		contract := generate(t,
			[]ast.SymbolicExpression{literal},
			types.TypeMap{literal: types.StringASCIIType{MaxLength: 2}},
		)

		instructions := topLevelInstructions(t, contract)

		offset, ok := instructions[0].(wasm.InstructionI32Const)
		require.True(t, ok)
		assert.Equal(t, wasm.InstructionI32Const{Value: 2}, instructions[1])

		assert.Equal(t, []byte("hi"), dataAt(t, contract, uint32(offset.Value)))
	})

	t.Run("utf8", func(t *testing.T) {

		t.Parallel()

		// one big-endian 4-byte unit per Unicode scalar value
		literal := ast.NewUTF8StringLiteral("aé")

		contract := generate(t,
			[]ast.SymbolicExpression{literal},
			types.TypeMap{literal: types.StringUTF8Type{MaxLength: 2}},
		)

		instructions := topLevelInstructions(t, contract)

		offset, ok := instructions[0].(wasm.InstructionI32Const)
		require.True(t, ok)
		assert.Equal(t, wasm.InstructionI32Const{Value: 8}, instructions[1])

		assert.Equal(t,
			[]byte{0, 0, 0, 'a', 0, 0, 0, 0xe9},
			dataAt(t, contract, uint32(offset.Value)),
		)
	})
}

func TestGenerate_literalDeduplication(t *testing.T) {

	t.Parallel()

	a := ast.NewBufferLiteral([]byte{1, 2, 3})
	b := ast.NewBufferLiteral([]byte{1, 2, 3})

	bufferType := types.BufferType{MaxLength: 3}
	contract := generate(t,
		[]ast.SymbolicExpression{a, b},
		types.TypeMap{
			a: bufferType,
			b: bufferType,
		},
	)

	instructions := topLevelInstructions(t, contract)

	first, ok := instructions[0].(wasm.InstructionI32Const)
	require.True(t, ok)

	// the drops of the first expression's value sit in between
	var second wasm.InstructionI32Const
	found := false
	for _, instruction := range instructions[1:] {
		if konst, ok := instruction.(wasm.InstructionI32Const); ok && !found {
			if konst.Value == first.Value {
				second = konst
				found = true
			}
		}
	}
	require.True(t, found)
	assert.Equal(t, first.Value, second.Value)

	require.Len(t, contract.Module.Data, 1)
}

func TestGenerate_unknownWord(t *testing.T) {

	t.Parallel()

	expr := ast.NewList(ast.NewAtom("at-blokc"), ast.NewIntLiteral(1))

	_, err := generator.GenerateContract("test",
		[]ast.SymbolicExpression{expr},
		types.TypeMap{expr: types.Int},
	)
	require.Error(t, err)

	var unknownErr generator.UnknownWordError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "at-blokc", unknownErr.Keyword)
	assert.Contains(t, unknownErr.SecondaryError(), "at-block")
}

func TestGenerate_exports(t *testing.T) {

	t.Parallel()

	literal := ast.NewIntLiteral(1)

	contract := generate(t,
		[]ast.SymbolicExpression{literal},
		types.TypeMap{literal: types.Int},
	)

	var exportNames []string
	for _, export := range contract.Module.Exports {
		exportNames = append(exportNames, export.Name)
	}
	assert.Contains(t, exportNames, generator.TopLevelExportName)
	assert.Contains(t, exportNames, generator.MemoryExportName)

	assert.Equal(t, types.Int, contract.ResultType)
	assert.Equal(t, uint32(types.IntSize), contract.ResultSize)
}

func TestGenerate_discardsIntermediateResults(t *testing.T) {

	t.Parallel()

	first := ast.NewIntLiteral(1)
	second := ast.NewBoolLiteral(true)

	contract := generate(t,
		[]ast.SymbolicExpression{first, second},
		types.TypeMap{
			first:  types.Int,
			second: types.Bool,
		},
	)

	instructions := topLevelInstructions(t, contract)

	// the int spans two stack slots: both are dropped
	assert.Equal(t, wasm.InstructionDrop{}, instructions[2])
	assert.Equal(t, wasm.InstructionDrop{}, instructions[3])

	assert.Equal(t, types.Bool, contract.ResultType)
}

func TestGenerate_emptyProgram(t *testing.T) {

	t.Parallel()

	contract := generate(t, nil, types.TypeMap{})

	assert.Equal(t, types.None, contract.ResultType)
	assert.Equal(t, uint32(0), contract.ResultSize)
}
