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

// varGetWord handles (var-get name).
//
// The variable must have been declared by a define-data-var earlier in
// the contract. The declaration check happens at generation time, so a
// var-get wrapped in any other form, e.g. an at-block, still fails to
// compile when the variable is undeclared.
type varGetWord struct{}

var _ ComplexWord = varGetWord{}

func (varGetWord) Keyword() string {
	return "var-get"
}

func (w varGetWord) Traverse(
	gen *WasmGenerator,
	expr *ast.List,
	returnType types.TypeSignature,
) error {
	variable, err := gen.lookupDataVar(w.Keyword(), expr)
	if err != nil {
		return err
	}

	size := types.Size(variable.typ)
	slot := gen.createScratchSlot(size)

	gen.emit(
		wasm.InstructionI32Const{Value: int32(variable.nameOffset)},
		wasm.InstructionI32Const{Value: int32(variable.nameLength)},
		wasm.InstructionI32Const{Value: int32(slot)},
		wasm.InstructionI32Const{Value: int32(size)},
		wasm.InstructionCall{FuncIndex: gen.stdlibFunc("get_variable")},
	)

	gen.readFromMemory(variable.typ, slot)
	return nil
}

// varSetWord handles (var-set name value), which always evaluates to true
type varSetWord struct{}

var _ ComplexWord = varSetWord{}

func (varSetWord) Keyword() string {
	return "var-set"
}

func (w varSetWord) Traverse(
	gen *WasmGenerator,
	expr *ast.List,
	returnType types.TypeSignature,
) error {
	if len(expr.Elements) != 3 {
		return InvalidFormError{
			Keyword: w.Keyword(),
			Message: "expected a variable name and a value",
		}
	}

	variable, err := gen.lookupDataVar(w.Keyword(), expr)
	if err != nil {
		return err
	}

	err = gen.TraverseExpr(expr.Elements[2])
	if err != nil {
		return err
	}

	size := types.Size(variable.typ)
	slot := gen.createScratchSlot(size)
	gen.writeToMemory(variable.typ, slot)

	gen.emit(
		wasm.InstructionI32Const{Value: int32(variable.nameOffset)},
		wasm.InstructionI32Const{Value: int32(variable.nameLength)},
		wasm.InstructionI32Const{Value: int32(slot)},
		wasm.InstructionI32Const{Value: int32(size)},
		wasm.InstructionCall{FuncIndex: gen.stdlibFunc("set_variable")},
	)

	gen.emitBool(true)
	return nil
}

func (gen *WasmGenerator) lookupDataVar(keyword string, expr *ast.List) (*dataVar, error) {
	if len(expr.Elements) < 2 {
		return nil, InvalidFormError{
			Keyword: keyword,
			Message: "expected a variable name",
		}
	}

	nameAtom, ok := expr.Elements[1].(*ast.Atom)
	if !ok {
		return nil, InvalidFormError{
			Keyword: keyword,
			Message: "expected a variable name",
		}
	}
	name := nameAtom.Identifier

	variable, ok := gen.dataVars[name]
	if !ok {
		declared := make([]string, 0, len(gen.dataVars))
		for declaredName := range gen.dataVars {
			declared = append(declared, declaredName)
		}
		return nil, UndefinedDataVarError{
			Name:     name,
			Declared: declared,
		}
	}

	return variable, nil
}

func init() {
	registerWord(varGetWord{})
	registerWord(varSetWord{})
}
