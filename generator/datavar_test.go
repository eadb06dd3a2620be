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
	"github.com/stacks-network/clarwasm/generator"
	"github.com/stacks-network/clarwasm/types"
	"github.com/stacks-network/clarwasm/wasm"
)

func counterProgram() (
	definition *ast.List,
	initializer ast.SymbolicExpression,
) {
	initializer = ast.NewUIntLiteral(0)
	definition = ast.NewList(
		ast.NewAtom("define-data-var"),
		ast.NewAtom("counter"),
		ast.NewAtom("uint"),
		initializer,
	)
	return
}

func TestDefineDataVar(t *testing.T) {

	t.Parallel()

	definition, initializer := counterProgram()

	contract := generate(t,
		[]ast.SymbolicExpression{definition},
		types.TypeMap{
			initializer: types.UInt,
		},
	)

	instructions := topLevelInstructions(t, contract)

	// the initial value is stored and handed to the host
	calls := callPositions(instructions, importIndex(t, contract, "set_variable"))
	require.Len(t, calls, 1)

	// the variable name is placed in the data section
	assert.Equal(t, []byte("counter"), dataAt(t, contract, 0))
}

func TestVarGet(t *testing.T) {

	t.Parallel()

	definition, initializer := counterProgram()
	read := ast.NewList(ast.NewAtom("var-get"), ast.NewAtom("counter"))

	contract := generate(t,
		[]ast.SymbolicExpression{definition, read},
		types.TypeMap{
			initializer: types.UInt,
			read:        types.UInt,
		},
	)

	instructions := topLevelInstructions(t, contract)

	calls := callPositions(instructions, importIndex(t, contract, "get_variable"))
	require.Len(t, calls, 1)

	// (name offset, name length, value offset, value size)
	consts := i32ConstsBefore(t, instructions, calls[0], 4)
	assert.Equal(t, int32(len("counter")), consts[1])
	assert.Equal(t, int32(types.IntSize), consts[3])
}

func TestVarGet_undeclared(t *testing.T) {

	t.Parallel()

	read := ast.NewList(ast.NewAtom("var-get"), ast.NewAtom("count"))

	definition, initializer := counterProgram()

	_, err := generator.GenerateContract("test",
		[]ast.SymbolicExpression{definition, read},
		types.TypeMap{
			initializer: types.UInt,
			read:        types.UInt,
		},
	)
	require.Error(t, err)

	var undefinedErr generator.UndefinedDataVarError
	require.ErrorAs(t, err, &undefinedErr)
	assert.Equal(t, "count", undefinedErr.Name)
	assert.Contains(t, undefinedErr.SecondaryError(), "counter")
}

func TestVarSet(t *testing.T) {

	t.Parallel()

	definition, initializer := counterProgram()
	value := ast.NewUIntLiteral(42)
	write := ast.NewList(ast.NewAtom("var-set"), ast.NewAtom("counter"), value)

	contract := generate(t,
		[]ast.SymbolicExpression{definition, write},
		types.TypeMap{
			initializer: types.UInt,
			value:       types.UInt,
			write:       types.Bool,
		},
	)

	instructions := topLevelInstructions(t, contract)

	// one call for the initialization, one for the var-set
	calls := callPositions(instructions, importIndex(t, contract, "set_variable"))
	require.Len(t, calls, 2)

	// var-set evaluates to true
	flat := flatten(instructions)
	assert.Equal(t,
		wasm.InstructionI32Const{Value: 1},
		flat[calls[1]+1],
	)
}
