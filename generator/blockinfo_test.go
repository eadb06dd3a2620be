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
	stdErrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacks-network/clarwasm/ast"
	"github.com/stacks-network/clarwasm/errors"
	"github.com/stacks-network/clarwasm/generator"
	"github.com/stacks-network/clarwasm/types"
)

func blockInfoQuery(keyword, property string) (
	program []ast.SymbolicExpression,
	height *ast.UIntLiteral,
	query *ast.List,
) {
	height = ast.NewUIntLiteral(0)
	query = ast.NewList(
		ast.NewAtom(keyword),
		ast.NewAtom(property),
		height,
	)
	return []ast.SymbolicExpression{query}, height, query
}

func TestGetBlockInfo(t *testing.T) {

	t.Parallel()

	tests := []struct {
		property   string
		resultType types.TypeSignature
		maxSize    int32
	}{
		{"time", types.UInt, 40},
		{"header-hash", types.BufferType{MaxLength: 32}, 56},
		{"burnchain-header-hash", types.BufferType{MaxLength: 32}, 56},
		{"id-header-hash", types.BufferType{MaxLength: 32}, 56},
		{"miner-address", types.Principal, 174},
		{"block-reward", types.UInt, 40},
		{"miner-spend-total", types.UInt, 40},
		{"miner-spend-winner", types.UInt, 40},
	}

	for _, test := range tests {
		test := test

		t.Run(test.property, func(t *testing.T) {

			t.Parallel()

			program, height, query := blockInfoQuery("get-block-info?", test.property)

			returnType := types.NewOptionalType(test.resultType)
			contract := generate(t,
				program,
				types.TypeMap{
					height: types.UInt,
					query:  returnType,
				},
			)

			instructions := topLevelInstructions(t, contract)

			routine := importIndex(t, contract, "get_block_info")
			calls := callPositions(instructions, routine)
			require.Len(t, calls, 1)

			// the scratch offset and the property's maximum size
			// immediately precede the call: the host's write bound is
			// the table entry, not the result layout size
			consts := i32ConstsBefore(t, instructions, calls[0], 2)
			assert.Equal(t, test.maxSize, consts[1])

			// the property name is placed in the data section,
			// and its length is passed verbatim.
			// the height operand (two i64 consts) sits between the name
			// and the scratch offset
			nameConsts := i32ConstsBefore(t, instructions, calls[0]-4, 2)
			assert.Equal(t, int32(len(test.property)), nameConsts[1])
			assert.Equal(t,
				[]byte(test.property),
				dataAt(t, contract, uint32(nameConsts[0])),
			)
		})
	}
}

func TestGetBlockInfo_scratchReservation(t *testing.T) {

	t.Parallel()

	// two queries for the same property: the name literal is shared,
	// but the scratch regions are distinct, and each reservation covers
	// the property's table entry even when the result layout is smaller
	height1 := ast.NewUIntLiteral(0)
	height2 := ast.NewUIntLiteral(1)
	query1 := ast.NewList(
		ast.NewAtom("get-block-info?"),
		ast.NewAtom("time"),
		height1,
	)
	query2 := ast.NewList(
		ast.NewAtom("get-block-info?"),
		ast.NewAtom("time"),
		height2,
	)

	returnType := types.NewOptionalType(types.UInt)
	contract := generate(t,
		[]ast.SymbolicExpression{query1, query2},
		types.TypeMap{
			height1: types.UInt,
			height2: types.UInt,
			query1:  returnType,
			query2:  returnType,
		},
	)

	instructions := topLevelInstructions(t, contract)

	routine := importIndex(t, contract, "get_block_info")
	calls := callPositions(instructions, routine)
	require.Len(t, calls, 2)

	consts1 := i32ConstsBefore(t, instructions, calls[0], 2)
	consts2 := i32ConstsBefore(t, instructions, calls[1], 2)

	// the name literal is deduplicated
	name1 := i32ConstsBefore(t, instructions, calls[0]-4, 2)
	name2 := i32ConstsBefore(t, instructions, calls[1]-4, 2)
	assert.Equal(t, name1, name2)

	// the result layout of (optional uint) is 20 bytes,
	// but the table entry for `time` is 40:
	// the second reservation starts at least 40 bytes after the first
	assert.GreaterOrEqual(t, consts2[0], consts1[0]+40)
}

func TestGetBlockInfo_unknownProperty(t *testing.T) {

	t.Parallel()

	program, height, query := blockInfoQuery("get-block-info?", "tim")

	_, err := generator.GenerateContract("test",
		program,
		types.TypeMap{
			height: types.UInt,
			query:  types.NewOptionalType(types.UInt),
		},
	)
	require.Error(t, err)

	var unknownPropertyErr generator.UnknownPropertyError
	require.ErrorAs(t, err, &unknownPropertyErr)
	assert.Equal(t, "tim", unknownPropertyErr.Property)

	// a defect in the earlier phases, not a user error
	var internalErr errors.InternalError
	assert.True(t, stdErrors.As(err, &internalErr))

	assert.Contains(t, unknownPropertyErr.SecondaryError(), "time")
}

func TestGetBurnBlockInfo(t *testing.T) {

	t.Parallel()

	poxAddrsType := types.NewTupleType(
		types.TupleField{
			Name: "addrs",
			Type: types.ListType{
				MaxLength: 2,
				Element: types.NewTupleType(
					types.TupleField{Name: "hashbytes", Type: types.BufferType{MaxLength: 32}},
					types.TupleField{Name: "version", Type: types.BufferType{MaxLength: 1}},
				),
			},
		},
		types.TupleField{Name: "payout", Type: types.UInt},
	)

	tests := []struct {
		property   string
		resultType types.TypeSignature
		maxSize    int32
	}{
		{"header-hash", types.BufferType{MaxLength: 32}, 56},
		{"pox-addrs", poxAddrsType, 154},
	}

	for _, test := range tests {
		test := test

		t.Run(test.property, func(t *testing.T) {

			t.Parallel()

			program, height, query := blockInfoQuery("get-burn-block-info?", test.property)

			returnType := types.NewOptionalType(test.resultType)
			contract := generate(t,
				program,
				types.TypeMap{
					height: types.UInt,
					query:  returnType,
				},
			)

			instructions := topLevelInstructions(t, contract)

			routine := importIndex(t, contract, "get_burn_block_info")
			calls := callPositions(instructions, routine)
			require.Len(t, calls, 1)

			assert.False(t, hasImport(contract, "get_block_info"))

			consts := i32ConstsBefore(t, instructions, calls[0], 2)
			assert.Equal(t, test.maxSize, consts[1])
		})
	}
}

func TestGetBurnBlockInfo_unknownProperty(t *testing.T) {

	t.Parallel()

	// a property of the block-metadata table is not valid
	// for the burn-block table
	program, height, query := blockInfoQuery("get-burn-block-info?", "time")

	_, err := generator.GenerateContract("test",
		program,
		types.TypeMap{
			height: types.UInt,
			query:  types.NewOptionalType(types.UInt),
		},
	)
	require.Error(t, err)

	var unknownPropertyErr generator.UnknownPropertyError
	require.ErrorAs(t, err, &unknownPropertyErr)
	assert.Equal(t, "time", unknownPropertyErr.Property)
}

func TestAtBlock(t *testing.T) {

	t.Parallel()

	hash := ast.NewBufferLiteral(make([]byte, 32))
	inner := ast.NewList(
		ast.NewAtom("+"),
		ast.NewIntLiteral(1),
		ast.NewIntLiteral(2),
	)
	expr := ast.NewList(ast.NewAtom("at-block"), hash, inner)

	contract := generate(t,
		[]ast.SymbolicExpression{expr},
		types.TypeMap{
			hash:              types.BufferType{MaxLength: 32},
			inner.Elements[1]: types.Int,
			inner.Elements[2]: types.Int,
			inner:             types.Int,
			expr:              types.Int,
		},
	)

	instructions := topLevelInstructions(t, contract)

	enters := callPositions(instructions, importIndex(t, contract, "enter_at_block"))
	exits := callPositions(instructions, importIndex(t, contract, "exit_at_block"))
	adds := callPositions(instructions, importIndex(t, contract, "add-int"))

	require.Len(t, enters, 1)
	require.Len(t, exits, 1)
	require.Len(t, adds, 1)

	// the inner expression is bracketed by the view calls
	assert.Less(t, enters[0], adds[0])
	assert.Less(t, adds[0], exits[0])
}

func TestAtBlock_undeclaredDataVar(t *testing.T) {

	t.Parallel()

	// the declaration check runs at generation time,
	// so the wrapping at-block cannot mask it
	hash := ast.NewBufferLiteral(make([]byte, 32))
	inner := ast.NewList(ast.NewAtom("var-get"), ast.NewAtom("missing"))
	expr := ast.NewList(ast.NewAtom("at-block"), hash, inner)

	_, err := generator.GenerateContract("test",
		[]ast.SymbolicExpression{expr},
		types.TypeMap{
			hash:  types.BufferType{MaxLength: 32},
			inner: types.Int,
			expr:  types.Int,
		},
	)
	require.Error(t, err)

	var undefinedErr generator.UndefinedDataVarError
	require.ErrorAs(t, err, &undefinedErr)
	assert.Equal(t, "missing", undefinedErr.Name)
}
