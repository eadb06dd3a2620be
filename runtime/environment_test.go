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

package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/stacks-network/clarwasm/ast"
	"github.com/stacks-network/clarwasm/generator"
	"github.com/stacks-network/clarwasm/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testChain() *Chain {
	block1 := BlockRecord{Time: 1_600_000_000}
	block1.IDHeaderHash[31] = 1
	block1.HeaderHash[0] = 0xaa

	block2 := BlockRecord{Time: 1_600_000_600}
	block2.IDHeaderHash[31] = 2

	return &Chain{
		Blocks: []BlockRecord{block1, block2},
		BurnBlocks: []BurnBlockRecord{
			{},
			{
				PoxAddrs: []PoxAddr{
					{HashBytes: make([]byte, 32), Version: 0},
				},
			},
		},
	}
}

func execute(
	t *testing.T,
	program []ast.SymbolicExpression,
	typeMap types.TypeMap,
) Value {
	t.Helper()

	contract, err := generator.GenerateContract("test", program, typeMap)
	require.NoError(t, err)

	env := NewEnvironment(testChain())
	value, err := env.Execute(contract)
	require.NoError(t, err)
	return value
}

func TestExecute_arithmetic(t *testing.T) {

	t.Parallel()

	t.Run("addition", func(t *testing.T) {

		t.Parallel()

		a := ast.NewIntLiteral(40)
		b := ast.NewIntLiteral(2)
		expr := ast.NewList(ast.NewAtom("+"), a, b)

		value := execute(t,
			[]ast.SymbolicExpression{expr},
			types.TypeMap{
				a:    types.Int,
				b:    types.Int,
				expr: types.Int,
			},
		)

		require.IsType(t, IntValue{}, value)
		assert.Equal(t, int64(42), value.(IntValue).Value.Int64())
	})

	t.Run("negative fold", func(t *testing.T) {

		t.Parallel()

		// (- 10 3 2) folds left: (10 - 3) - 2
		a := ast.NewIntLiteral(10)
		b := ast.NewIntLiteral(3)
		c := ast.NewIntLiteral(2)
		expr := ast.NewList(ast.NewAtom("-"), a, b, c)

		value := execute(t,
			[]ast.SymbolicExpression{expr},
			types.TypeMap{
				a:    types.Int,
				b:    types.Int,
				c:    types.Int,
				expr: types.Int,
			},
		)

		require.IsType(t, IntValue{}, value)
		assert.Equal(t, int64(5), value.(IntValue).Value.Int64())
	})

	t.Run("division by zero traps", func(t *testing.T) {

		t.Parallel()

		a := ast.NewIntLiteral(1)
		b := ast.NewIntLiteral(0)
		expr := ast.NewList(ast.NewAtom("/"), a, b)

		contract, err := generator.GenerateContract("test",
			[]ast.SymbolicExpression{expr},
			types.TypeMap{
				a:    types.Int,
				b:    types.Int,
				expr: types.Int,
			},
		)
		require.NoError(t, err)

		env := NewEnvironment(testChain())
		_, err = env.Execute(contract)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "division by zero")
	})
}

func TestExecute_comparison(t *testing.T) {

	t.Parallel()

	t.Run("integers", func(t *testing.T) {

		t.Parallel()

		a := ast.NewIntLiteral(-1)
		b := ast.NewIntLiteral(1)
		expr := ast.NewList(ast.NewAtom("<"), a, b)

		value := execute(t,
			[]ast.SymbolicExpression{expr},
			types.TypeMap{
				a:    types.Int,
				b:    types.Int,
				expr: types.Bool,
			},
		)

		assert.Equal(t, BoolValue(true), value)
	})

	t.Run("buffers", func(t *testing.T) {

		t.Parallel()

		a := ast.NewBufferLiteral([]byte{1, 2})
		b := ast.NewBufferLiteral([]byte{1, 3})
		expr := ast.NewList(ast.NewAtom(">="), a, b)

		bufferType := types.BufferType{MaxLength: 2}
		value := execute(t,
			[]ast.SymbolicExpression{expr},
			types.TypeMap{
				a:    bufferType,
				b:    bufferType,
				expr: types.Bool,
			},
		)

		assert.Equal(t, BoolValue(false), value)
	})
}

func TestExecute_buffToInteger(t *testing.T) {

	t.Parallel()

	t.Run("big endian", func(t *testing.T) {

		t.Parallel()

		operand := ast.NewBufferLiteral([]byte{0x01, 0x00})
		expr := ast.NewList(ast.NewAtom("buff-to-uint-be"), operand)

		value := execute(t,
			[]ast.SymbolicExpression{expr},
			types.TypeMap{
				operand: types.BufferType{MaxLength: 2},
				expr:    types.UInt,
			},
		)

		require.IsType(t, UIntValue{}, value)
		assert.Equal(t, uint64(256), value.(UIntValue).Value.Uint64())
	})

	t.Run("little endian", func(t *testing.T) {

		t.Parallel()

		operand := ast.NewBufferLiteral([]byte{0x01, 0x00})
		expr := ast.NewList(ast.NewAtom("buff-to-uint-le"), operand)

		value := execute(t,
			[]ast.SymbolicExpression{expr},
			types.TypeMap{
				operand: types.BufferType{MaxLength: 2},
				expr:    types.UInt,
			},
		)

		require.IsType(t, UIntValue{}, value)
		assert.Equal(t, uint64(1), value.(UIntValue).Value.Uint64())
	})
}

func blockQuery(keyword, property string, height uint64) (
	program []ast.SymbolicExpression,
	typeMap types.TypeMap,
	query *ast.List,
) {
	heightLiteral := ast.NewUIntLiteral(height)
	query = ast.NewList(
		ast.NewAtom(keyword),
		ast.NewAtom(property),
		heightLiteral,
	)
	typeMap = types.TypeMap{
		heightLiteral: types.UInt,
	}
	return []ast.SymbolicExpression{query}, typeMap, query
}

func TestExecute_getBlockInfo(t *testing.T) {

	t.Parallel()

	t.Run("time", func(t *testing.T) {

		t.Parallel()

		program, typeMap, query := blockQuery("get-block-info?", "time", 0)
		typeMap[query] = types.NewOptionalType(types.UInt)

		value := execute(t, program, typeMap)

		require.IsType(t, SomeValue{}, value)
		inner := value.(SomeValue).Inner
		require.IsType(t, UIntValue{}, inner)
		assert.Equal(t, uint64(1_600_000_000), inner.(UIntValue).Value.Uint64())
	})

	t.Run("header-hash", func(t *testing.T) {

		t.Parallel()

		program, typeMap, query := blockQuery("get-block-info?", "header-hash", 0)
		typeMap[query] = types.NewOptionalType(types.BufferType{MaxLength: 32})

		value := execute(t, program, typeMap)

		require.IsType(t, SomeValue{}, value)
		inner := value.(SomeValue).Inner
		require.IsType(t, BufferValue{}, inner)
		buffer := inner.(BufferValue)
		require.Len(t, buffer, 32)
		assert.Equal(t, byte(0xaa), buffer[0])
	})

	t.Run("height after the tip", func(t *testing.T) {

		t.Parallel()

		program, typeMap, query := blockQuery("get-block-info?", "time", 99)
		typeMap[query] = types.NewOptionalType(types.UInt)

		value := execute(t, program, typeMap)

		assert.Equal(t, NoneValue{}, value)
	})
}

func TestExecute_getBurnBlockInfo(t *testing.T) {

	t.Parallel()

	t.Run("header-hash defaults to zeroes", func(t *testing.T) {

		t.Parallel()

		program, typeMap, query := blockQuery("get-burn-block-info?", "header-hash", 0)
		typeMap[query] = types.NewOptionalType(types.BufferType{MaxLength: 32})

		value := execute(t, program, typeMap)

		require.IsType(t, SomeValue{}, value)
		inner := value.(SomeValue).Inner
		require.IsType(t, BufferValue{}, inner)
		assert.Equal(t, make(BufferValue, 32), inner)
	})

	t.Run("pox-addrs", func(t *testing.T) {

		t.Parallel()

		program, typeMap, query := blockQuery("get-burn-block-info?", "pox-addrs", 1)
		typeMap[query] = types.NewOptionalType(poxAddrsType())

		value := execute(t, program, typeMap)

		require.IsType(t, SomeValue{}, value)
		tuple, ok := value.(SomeValue).Inner.(TupleValue)
		require.True(t, ok)
		require.Len(t, tuple.Fields, 2)

		assert.Equal(t, "addrs", tuple.Fields[0].Name)
		addrs, ok := tuple.Fields[0].Value.(ListValue)
		require.True(t, ok)
		require.Len(t, addrs, 1)

		assert.Equal(t, "payout", tuple.Fields[1].Name)
		payout, ok := tuple.Fields[1].Value.(UIntValue)
		require.True(t, ok)
		assert.Equal(t, uint64(0), payout.Value.Uint64())
	})

	t.Run("pox-addrs without a payout", func(t *testing.T) {

		t.Parallel()

		program, typeMap, query := blockQuery("get-burn-block-info?", "pox-addrs", 0)
		typeMap[query] = types.NewOptionalType(poxAddrsType())

		value := execute(t, program, typeMap)

		require.IsType(t, SomeValue{}, value)
		tuple, ok := value.(SomeValue).Inner.(TupleValue)
		require.True(t, ok)

		addrs, ok := tuple.Fields[0].Value.(ListValue)
		require.True(t, ok)
		require.Len(t, addrs, 1)

		addr, ok := addrs[0].(TupleValue)
		require.True(t, ok)
		assert.Equal(t, BufferValue(make([]byte, 32)), addr.Fields[0].Value)
		assert.Equal(t, BufferValue{0}, addr.Fields[1].Value)

		payout, ok := tuple.Fields[1].Value.(UIntValue)
		require.True(t, ok)
		assert.Equal(t, uint64(0), payout.Value.Uint64())
	})
}

func TestExecute_atBlock(t *testing.T) {

	t.Parallel()

	// inside the view of block 0, the tip is block 0:
	// a query for block 1 sees nothing, even though the chain has it
	idHeaderHash := make([]byte, 32)
	idHeaderHash[31] = 1

	hash := ast.NewBufferLiteral(idHeaderHash)
	height := ast.NewUIntLiteral(1)
	query := ast.NewList(
		ast.NewAtom("get-block-info?"),
		ast.NewAtom("time"),
		height,
	)
	expr := ast.NewList(ast.NewAtom("at-block"), hash, query)

	queryType := types.NewOptionalType(types.UInt)
	value := execute(t,
		[]ast.SymbolicExpression{expr},
		types.TypeMap{
			hash:   types.BufferType{MaxLength: 32},
			height: types.UInt,
			query:  queryType,
			expr:   queryType,
		},
	)

	assert.Equal(t, NoneValue{}, value)
}

func TestExecute_dataVars(t *testing.T) {

	t.Parallel()

	initializer := ast.NewUIntLiteral(7)
	definition := ast.NewList(
		ast.NewAtom("define-data-var"),
		ast.NewAtom("counter"),
		ast.NewAtom("uint"),
		initializer,
	)

	newValue := ast.NewUIntLiteral(42)
	write := ast.NewList(ast.NewAtom("var-set"), ast.NewAtom("counter"), newValue)
	read := ast.NewList(ast.NewAtom("var-get"), ast.NewAtom("counter"))

	value := execute(t,
		[]ast.SymbolicExpression{definition, write, read},
		types.TypeMap{
			initializer: types.UInt,
			newValue:    types.UInt,
			write:       types.Bool,
			read:        types.UInt,
		},
	)

	require.IsType(t, UIntValue{}, value)
	assert.Equal(t, uint64(42), value.(UIntValue).Value.Uint64())
}

func TestExecute_logic(t *testing.T) {

	t.Parallel()

	// (if (and true (< u1 u2)) (+ u1 u2) u0)
	one := ast.NewUIntLiteral(1)
	two := ast.NewUIntLiteral(2)
	comparison := ast.NewList(ast.NewAtom("<"), one, two)
	trueLiteral := ast.NewBoolLiteral(true)
	condition := ast.NewList(ast.NewAtom("and"), trueLiteral, comparison)
	one2 := ast.NewUIntLiteral(1)
	two2 := ast.NewUIntLiteral(2)
	sum := ast.NewList(ast.NewAtom("+"), one2, two2)
	zero := ast.NewUIntLiteral(0)
	expr := ast.NewList(ast.NewAtom("if"), condition, sum, zero)

	value := execute(t,
		[]ast.SymbolicExpression{expr},
		types.TypeMap{
			one:         types.UInt,
			two:         types.UInt,
			comparison:  types.Bool,
			trueLiteral: types.Bool,
			condition:   types.Bool,
			one2:        types.UInt,
			two2:        types.UInt,
			sum:         types.UInt,
			zero:        types.UInt,
			expr:        types.UInt,
		},
	)

	require.IsType(t, UIntValue{}, value)
	assert.Equal(t, uint64(3), value.(UIntValue).Value.Uint64())
}
