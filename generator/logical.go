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

// notWord handles (not b): a boolean is an i32,
// so negation is a test against zero
type notWord struct{}

var _ SimpleWord = notWord{}

func (notWord) Keyword() string {
	return "not"
}

func (w notWord) Visit(
	gen *WasmGenerator,
	expr *ast.List,
	argTypes []types.TypeSignature,
	returnType types.TypeSignature,
) error {
	if len(argTypes) != 1 {
		return InvalidFormError{
			Keyword: w.Keyword(),
			Message: "expected one operand",
		}
	}
	gen.emit(wasm.InstructionI32Eqz{})
	return nil
}

// shortCircuitWord handles the variadic `and` and `or`:
// later operands must only be evaluated when the earlier ones
// have not decided the outcome, so the word controls its own traversal
// and nests the remaining operands inside an `if`
type shortCircuitWord struct {
	keyword string
	// isAnd selects whether the remaining operands go into the then
	// branch (and) or the else branch (or)
	isAnd bool
}

var _ ComplexWord = shortCircuitWord{}

func (w shortCircuitWord) Keyword() string {
	return w.keyword
}

func (w shortCircuitWord) Traverse(
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
	return w.traverseOperands(gen, operands)
}

func (w shortCircuitWord) traverseOperands(
	gen *WasmGenerator,
	operands []ast.SymbolicExpression,
) error {
	err := gen.TraverseExpr(operands[0])
	if err != nil {
		return err
	}

	if len(operands) == 1 {
		return nil
	}

	rest, err := gen.capture(func() error {
		return w.traverseOperands(gen, operands[1:])
	})
	if err != nil {
		return err
	}

	decided := []wasm.Instruction{
		wasm.InstructionI32Const{Value: w.decidedValue()},
	}

	block := wasm.Block{
		BlockType: wasm.ValueTypeI32,
	}
	if w.isAnd {
		block.Instructions1 = rest
		block.Instructions2 = decided
	} else {
		block.Instructions1 = decided
		block.Instructions2 = rest
	}

	gen.emit(wasm.InstructionIf{Block: block})
	return nil
}

func (w shortCircuitWord) decidedValue() int32 {
	if w.isAnd {
		// a false operand decides `and`
		return 0
	}
	// a true operand decides `or`
	return 1
}

// ifWord handles (if cond then else).
//
// A value can span several stack slots, and a WebAssembly block yields
// at most one, so each branch writes its result into shared locals and
// the join reads them back.
type ifWord struct{}

var _ ComplexWord = ifWord{}

func (ifWord) Keyword() string {
	return "if"
}

func (w ifWord) Traverse(
	gen *WasmGenerator,
	expr *ast.List,
	returnType types.TypeSignature,
) error {
	if len(expr.Elements) != 4 {
		return InvalidFormError{
			Keyword: w.Keyword(),
			Message: "expected a condition and two branches",
		}
	}

	err := gen.TraverseExpr(expr.Elements[1])
	if err != nil {
		return err
	}

	valueTypes := ReprValueTypes(returnType)
	resultLocals := make([]uint32, len(valueTypes))
	for i, valueType := range valueTypes {
		resultLocals[i] = gen.addLocal(valueType)
	}

	traverseBranch := func(branch ast.SymbolicExpression) ([]wasm.Instruction, error) {
		return gen.capture(func() error {
			err := gen.TraverseExpr(branch)
			if err != nil {
				return err
			}
			for i := len(resultLocals) - 1; i >= 0; i-- {
				gen.emit(wasm.InstructionLocalSet{LocalIndex: resultLocals[i]})
			}
			return nil
		})
	}

	thenInstructions, err := traverseBranch(expr.Elements[2])
	if err != nil {
		return err
	}
	elseInstructions, err := traverseBranch(expr.Elements[3])
	if err != nil {
		return err
	}

	gen.emit(wasm.InstructionIf{
		Block: wasm.Block{
			// no block type: the branches yield through the locals
			Instructions1: thenInstructions,
			Instructions2: elseInstructions,
		},
	})

	for _, local := range resultLocals {
		gen.emit(wasm.InstructionLocalGet{LocalIndex: local})
	}

	return nil
}

func init() {
	registerWord(notWord{})
	registerWord(shortCircuitWord{keyword: "and", isAnd: true})
	registerWord(shortCircuitWord{keyword: "or", isAnd: false})
	registerWord(ifWord{})
}
