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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacks-network/clarwasm/ast"
	"github.com/stacks-network/clarwasm/types"
	"github.com/stacks-network/clarwasm/wasm"
)

func TestArithmetic(t *testing.T) {

	t.Parallel()

	tests := []struct {
		keyword string
		routine string
	}{
		{"+", "add-int"},
		{"-", "sub-int"},
		{"*", "mul-int"},
		{"/", "div-int"},
		{"mod", "mod-int"},
	}

	for _, test := range tests {
		test := test

		t.Run(test.keyword, func(t *testing.T) {

			t.Parallel()

			a := ast.NewIntLiteral(1)
			b := ast.NewIntLiteral(2)
			expr := ast.NewList(ast.NewAtom(test.keyword), a, b)

			contract := generate(t,
				[]ast.SymbolicExpression{expr},
				types.TypeMap{
					a:    types.Int,
					b:    types.Int,
					expr: types.Int,
				},
			)

			instructions := topLevelInstructions(t, contract)

			calls := callPositions(instructions, importIndex(t, contract, test.routine))
			assert.Len(t, calls, 1)
		})
	}
}

func TestArithmetic_uint(t *testing.T) {

	t.Parallel()

	a := ast.NewUIntLiteral(1)
	b := ast.NewUIntLiteral(2)
	expr := ast.NewList(ast.NewAtom("+"), a, b)

	contract := generate(t,
		[]ast.SymbolicExpression{expr},
		types.TypeMap{
			a:    types.UInt,
			b:    types.UInt,
			expr: types.UInt,
		},
	)

	instructions := topLevelInstructions(t, contract)

	calls := callPositions(instructions, importIndex(t, contract, "add-uint"))
	assert.Len(t, calls, 1)
	assert.False(t, hasImport(contract, "add-int"))
}

// (- a b c) folds as (a - b) - c: one call per operand after the first
func TestArithmetic_variadic(t *testing.T) {

	t.Parallel()

	a := ast.NewIntLiteral(10)
	b := ast.NewIntLiteral(3)
	c := ast.NewIntLiteral(2)
	expr := ast.NewList(ast.NewAtom("-"), a, b, c)

	contract := generate(t,
		[]ast.SymbolicExpression{expr},
		types.TypeMap{
			a:    types.Int,
			b:    types.Int,
			c:    types.Int,
			expr: types.Int,
		},
	)

	instructions := topLevelInstructions(t, contract)

	subIndex := importIndex(t, contract, "sub-int")
	calls := callPositions(instructions, subIndex)
	require.Len(t, calls, 2)

	// the first call happens before the third operand's constants,
	// i.e. between the operands, not after all of them
	flat := flatten(instructions)
	sawThirdOperand := false
	for _, instruction := range flat[:calls[0]] {
		if konst, ok := instruction.(wasm.InstructionI64Const); ok && konst.Value == 2 {
			sawThirdOperand = true
		}
	}
	assert.False(t, sawThirdOperand)
}

// (- a) is 0 - a
func TestArithmetic_negation(t *testing.T) {

	t.Parallel()

	a := ast.NewIntLiteral(42)
	expr := ast.NewList(ast.NewAtom("-"), a)

	contract := generate(t,
		[]ast.SymbolicExpression{expr},
		types.TypeMap{
			a:    types.Int,
			expr: types.Int,
		},
	)

	instructions := topLevelInstructions(t, contract)

	calls := callPositions(instructions, importIndex(t, contract, "sub-int"))
	require.Len(t, calls, 1)

	flat := flatten(instructions)
	zero, ok := flat[0].(wasm.InstructionI64Const)
	require.True(t, ok)
	assert.Equal(t, int64(0), zero.Value)
}
