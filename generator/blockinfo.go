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

// blockMetaProperties is the fixed table of properties queryable with
// get-block-info?, mapping each property to the number of bytes the host
// may write back for it. The byte counts include the optional indicator
// and, for sequences, the length prefix.
var blockMetaProperties = map[string]uint32{
	"time":                  40,
	"header-hash":           56,
	"burnchain-header-hash": 56,
	"id-header-hash":        56,
	"miner-address":         174,
	"block-reward":          40,
	"miner-spend-total":     40,
	"miner-spend-winner":    40,
}

// burnBlockProperties is the fixed table of properties queryable with
// get-burn-block-info?
var burnBlockProperties = map[string]uint32{
	"header-hash": 56,
	"pox-addrs":   154,
}

// blockInfoWord handles get-block-info? and get-burn-block-info?.
//
// Both compile to the same calling convention: the property name is
// placed in the data section and passed as (offset, length), the height
// operand is evaluated onto the stack, and the host routine writes the
// optional result into a caller-provided scratch region, which is then
// read back onto the stack.
//
// The scratch region is sized to the larger of the result layout and
// the property's table entry, so the host can never write past it
// regardless of which of the two the runtime uses.
type blockInfoWord struct {
	keyword    string
	routine    string
	properties map[string]uint32
}

var _ ComplexWord = blockInfoWord{}

func (w blockInfoWord) Keyword() string {
	return w.keyword
}

func (w blockInfoWord) Traverse(
	gen *WasmGenerator,
	expr *ast.List,
	returnType types.TypeSignature,
) error {
	if len(expr.Elements) != 3 {
		return InvalidFormError{
			Keyword: w.keyword,
			Message: "expected a property name and a block height",
		}
	}

	propertyAtom, ok := expr.Elements[1].(*ast.Atom)
	if !ok {
		return InvalidFormError{
			Keyword: w.keyword,
			Message: "expected a property name",
		}
	}
	property := propertyAtom.Identifier

	// validate before emitting anything: an unknown property must not
	// leave a partial calling sequence behind
	maxPropertySize, ok := w.properties[property]
	if !ok {
		candidates := make([]string, 0, len(w.properties))
		for name := range w.properties {
			candidates = append(candidates, name)
		}
		return UnknownPropertyError{
			Property:   property,
			Candidates: candidates,
		}
	}

	nameRef := gen.addLiteral([]byte(property))
	gen.emitLiteralRef(nameRef)

	err := gen.TraverseExpr(expr.Elements[2])
	if err != nil {
		return err
	}

	scratchSize := types.Size(returnType)
	if maxPropertySize > scratchSize {
		scratchSize = maxPropertySize
	}
	scratch := gen.createScratchSlot(scratchSize)

	// the host is passed the full scratch size, not the result layout
	// size: the property table entry is its write bound
	gen.emit(
		wasm.InstructionI32Const{Value: int32(scratch)},
		wasm.InstructionI32Const{Value: int32(scratchSize)},
		wasm.InstructionCall{FuncIndex: gen.stdlibFunc(w.routine)},
	)

	gen.readFromMemory(returnType, scratch)
	return nil
}

// atBlockWord handles at-block, which evaluates an expression against
// the chain state as of a given block.
//
// The emitted code brackets the inner expression: the host enters the
// historical view before it and leaves it after. The inner value stays
// on the stack across the exit call, so errors surfaced by the exit
// cannot be masked by a partially-consumed result.
type atBlockWord struct{}

var _ ComplexWord = atBlockWord{}

func (atBlockWord) Keyword() string {
	return "at-block"
}

func (w atBlockWord) Traverse(
	gen *WasmGenerator,
	expr *ast.List,
	returnType types.TypeSignature,
) error {
	if len(expr.Elements) != 3 {
		return InvalidFormError{
			Keyword: w.Keyword(),
			Message: "expected a block hash and an expression",
		}
	}

	err := gen.TraverseExpr(expr.Elements[1])
	if err != nil {
		return err
	}
	gen.emit(wasm.InstructionCall{FuncIndex: gen.stdlibFunc("enter_at_block")})

	err = gen.TraverseExpr(expr.Elements[2])
	if err != nil {
		return err
	}
	gen.emit(wasm.InstructionCall{FuncIndex: gen.stdlibFunc("exit_at_block")})

	return nil
}

func init() {
	registerWord(blockInfoWord{
		keyword:    "get-block-info?",
		routine:    "get_block_info",
		properties: blockMetaProperties,
	})
	registerWord(blockInfoWord{
		keyword:    "get-burn-block-info?",
		routine:    "get_burn_block_info",
		properties: burnBlockProperties,
	})
	registerWord(atBlockWord{})
}
