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
	"github.com/stacks-network/clarwasm/wasm"
)

// StdlibModuleName is the import module of all host routines
const StdlibModuleName = "stdlib"

var i32 = wasm.ValueTypeI32
var i64 = wasm.ValueTypeI64

// stdlibSignatures maps each host routine to its WebAssembly type.
//
// The 128-bit arithmetic and comparison routines take each operand as
// a pair of i64s, low half first. The sequence-based routines take an
// i32 offset into linear memory and an i32 byte length per operand.
// The state-access routines write their result into a caller-provided
// region of linear memory instead of returning it.
var stdlibSignatures = map[string]*wasm.FunctionType{

	// arithmetic
	"add-int":  binaryArithmeticType,
	"add-uint": binaryArithmeticType,
	"sub-int":  binaryArithmeticType,
	"sub-uint": binaryArithmeticType,
	"mul-int":  binaryArithmeticType,
	"mul-uint": binaryArithmeticType,
	"div-int":  binaryArithmeticType,
	"div-uint": binaryArithmeticType,
	"mod-int":  binaryArithmeticType,
	"mod-uint": binaryArithmeticType,

	// comparison
	"lt-int":  integerComparisonType,
	"lt-uint": integerComparisonType,
	"lt-buff": sequenceComparisonType,
	"gt-int":  integerComparisonType,
	"gt-uint": integerComparisonType,
	"gt-buff": sequenceComparisonType,
	"le-int":  integerComparisonType,
	"le-uint": integerComparisonType,
	"le-buff": sequenceComparisonType,
	"ge-int":  integerComparisonType,
	"ge-uint": integerComparisonType,
	"ge-buff": sequenceComparisonType,

	// conversion.
	// Signed and unsigned conversions share a routine per endianness:
	// the resulting bit pattern is the same, only its interpretation differs.
	"buff-to-uint-be": {
		Params:  []wasm.ValueType{i32, i32},
		Results: []wasm.ValueType{i64, i64},
	},
	"buff-to-uint-le": {
		Params:  []wasm.ValueType{i32, i32},
		Results: []wasm.ValueType{i64, i64},
	},

	// block information.
	// (name offset, name length, height low, height high,
	//  result offset, result size)
	"get_block_info": {
		Params: []wasm.ValueType{i32, i32, i64, i64, i32, i32},
	},
	"get_burn_block_info": {
		Params: []wasm.ValueType{i32, i32, i64, i64, i32, i32},
	},

	// historical state views.
	// enter_at_block takes a block hash as (offset, length)
	"enter_at_block": {
		Params: []wasm.ValueType{i32, i32},
	},
	"exit_at_block": {},

	// data variables.
	// (name offset, name length, value offset, value size)
	"get_variable": {
		Params: []wasm.ValueType{i32, i32, i32, i32},
	},
	"set_variable": {
		Params: []wasm.ValueType{i32, i32, i32, i32},
	},
}

var binaryArithmeticType = &wasm.FunctionType{
	Params:  []wasm.ValueType{i64, i64, i64, i64},
	Results: []wasm.ValueType{i64, i64},
}

var integerComparisonType = &wasm.FunctionType{
	Params:  []wasm.ValueType{i64, i64, i64, i64},
	Results: []wasm.ValueType{i32},
}

var sequenceComparisonType = &wasm.FunctionType{
	Params:  []wasm.ValueType{i32, i32, i32, i32},
	Results: []wasm.ValueType{i32},
}

// stdlibFunc returns the function index of the given host routine,
// importing it on first use.
// Imports are only added before the contract's own functions,
// so all uses during expression generation are valid.
func (gen *WasmGenerator) stdlibFunc(name string) uint32 {
	if index, ok := gen.stdlibFuncs[name]; ok {
		return index
	}

	functionType, ok := stdlibSignatures[name]
	if !ok {
		panic(errors.NewUnexpectedError("unknown host routine: %s", name))
	}

	index, err := gen.builder.AddFunctionImport(
		StdlibModuleName,
		name,
		functionType,
	)
	if err != nil {
		panic(errors.NewUnexpectedErrorFromCause(err))
	}

	gen.stdlibFuncs[name] = index
	return index
}
