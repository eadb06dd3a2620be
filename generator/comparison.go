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
	"fmt"

	"github.com/stacks-network/clarwasm/ast"
	"github.com/stacks-network/clarwasm/types"
	"github.com/stacks-network/clarwasm/wasm"
)

// comparisonWord handles <, <=, > and >=.
// The host routine is selected by the operand type:
// signed and unsigned integers each have their own routine,
// and buffers and both string kinds share a bytewise one.
// UTF-8 strings are sequences of fixed-width big-endian scalars,
// so the bytewise routine orders them correctly too.
type comparisonWord struct {
	keyword string
	routine string
}

var _ SimpleWord = comparisonWord{}

func (w comparisonWord) Keyword() string {
	return w.keyword
}

func (w comparisonWord) Visit(
	gen *WasmGenerator,
	expr *ast.List,
	argTypes []types.TypeSignature,
	returnType types.TypeSignature,
) error {
	if len(argTypes) != 2 {
		return InvalidFormError{
			Keyword: w.keyword,
			Message: "expected two operands",
		}
	}

	var suffix string
	switch argTypes[0].(type) {
	case types.IntType:
		suffix = "int"
	case types.UIntType:
		suffix = "uint"
	case types.BufferType, types.StringASCIIType, types.StringUTF8Type:
		suffix = "buff"
	default:
		return TypeError{
			Message: fmt.Sprintf("invalid type for comparison: %s", argTypes[0]),
		}
	}

	gen.emit(wasm.InstructionCall{
		FuncIndex: gen.stdlibFunc(fmt.Sprintf("%s-%s", w.routine, suffix)),
	})
	return nil
}

func init() {
	registerWord(comparisonWord{keyword: "<", routine: "lt"})
	registerWord(comparisonWord{keyword: "<=", routine: "le"})
	registerWord(comparisonWord{keyword: ">", routine: "gt"})
	registerWord(comparisonWord{keyword: ">=", routine: "ge"})
}
