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
	"github.com/stacks-network/clarwasm/ast"
	"github.com/stacks-network/clarwasm/types"
	"github.com/stacks-network/clarwasm/wasm"
)

// buffToIntegerWord handles the buff-to-int and buff-to-uint conversions.
// The host routine produces the raw 128 bits from the buffer,
// so the signed and the unsigned conversion of one endianness share it:
// only the interpretation of the bits differs, never the bits.
type buffToIntegerWord struct {
	keyword string
	routine string
}

var _ SimpleWord = buffToIntegerWord{}

func (w buffToIntegerWord) Keyword() string {
	return w.keyword
}

func (w buffToIntegerWord) Visit(
	gen *WasmGenerator,
	expr *ast.List,
	argTypes []types.TypeSignature,
	returnType types.TypeSignature,
) error {
	if len(argTypes) != 1 {
		return InvalidFormError{
			Keyword: w.keyword,
			Message: "expected one operand",
		}
	}

	if _, ok := argTypes[0].(types.BufferType); !ok {
		return TypeError{
			Message: "expected a buffer operand",
		}
	}

	gen.emit(wasm.InstructionCall{
		FuncIndex: gen.stdlibFunc(w.routine),
	})
	return nil
}

func init() {
	registerWord(buffToIntegerWord{keyword: "buff-to-int-be", routine: "buff-to-uint-be"})
	registerWord(buffToIntegerWord{keyword: "buff-to-uint-be", routine: "buff-to-uint-be"})
	registerWord(buffToIntegerWord{keyword: "buff-to-int-le", routine: "buff-to-uint-le"})
	registerWord(buffToIntegerWord{keyword: "buff-to-uint-le", routine: "buff-to-uint-le"})
}
