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

// arithmeticWord handles the variadic arithmetic built-ins
// (+, -, *, /, mod) by folding the operands left-to-right through
// the type-suffixed host routine, e.g. (- a b c) is (a - b) - c.
//
// Left folding matters for the non-commutative operations,
// so the word controls its own operand traversal.
type arithmeticWord struct {
	keyword string
	routine string
}

var _ ComplexWord = arithmeticWord{}

func (w arithmeticWord) Keyword() string {
	return w.keyword
}

func (w arithmeticWord) Traverse(
	gen *WasmGenerator,
	expr *ast.List,
	returnType types.TypeSignature,
) error {
	operands := expr.Elements[1:]
	if len(operands) == 0 {
		return InvalidFormError{
			Keyword: w.keyword,
			Message: "expected at least one operand",
		}
	}

	var suffix string
	switch returnType.(type) {
	case types.IntType:
		suffix = "int"
	case types.UIntType:
		suffix = "uint"
	default:
		return TypeError{
			Message: fmt.Sprintf("invalid type for arithmetic: %s", returnType),
		}
	}

	routineIndex := gen.stdlibFunc(fmt.Sprintf("%s-%s", w.routine, suffix))

	// unary negation: (- a) is 0 - a
	if w.keyword == "-" && len(operands) == 1 {
		gen.emit(
			wasm.InstructionI64Const{Value: 0},
			wasm.InstructionI64Const{Value: 0},
		)
		err := gen.TraverseExpr(operands[0])
		if err != nil {
			return err
		}
		gen.emit(wasm.InstructionCall{FuncIndex: routineIndex})
		return nil
	}

	err := gen.TraverseExpr(operands[0])
	if err != nil {
		return err
	}

	for _, operand := range operands[1:] {
		err := gen.TraverseExpr(operand)
		if err != nil {
			return err
		}
		gen.emit(wasm.InstructionCall{FuncIndex: routineIndex})
	}

	return nil
}

func init() {
	registerWord(arithmeticWord{keyword: "+", routine: "add"})
	registerWord(arithmeticWord{keyword: "-", routine: "sub"})
	registerWord(arithmeticWord{keyword: "*", routine: "mul"})
	registerWord(arithmeticWord{keyword: "/", routine: "div"})
	registerWord(arithmeticWord{keyword: "mod", routine: "mod"})
}
