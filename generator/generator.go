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
	"encoding/binary"
	"math/big"

	"github.com/stacks-network/clarwasm/ast"
	"github.com/stacks-network/clarwasm/types"
	"github.com/stacks-network/clarwasm/wasm"
)

const (
	// TopLevelFunctionName is the name of the function holding
	// the contract's top-level expressions
	TopLevelFunctionName = ".top-level"

	// TopLevelExportName is the export name of the top-level function
	TopLevelExportName = "top-level"

	// MemoryExportName is the export name of the contract's linear memory
	MemoryExportName = "memory"
)

// A Contract is a generated WebAssembly module,
// along with the location of the result of its top-level expression.
//
// The top-level function takes no parameters and returns no values:
// it writes the result of the last top-level expression into linear
// memory at ResultOffset, in the layout of ResultType.
type Contract struct {
	Module       *wasm.Module
	ResultType   types.TypeSignature
	ResultOffset uint32
	ResultSize   uint32
}

type literalRef struct {
	offset uint32
	length uint32
}

type dataVar struct {
	name       string
	nameOffset uint32
	nameLength uint32
	typ        types.TypeSignature
}

// WasmGenerator generates a WebAssembly module for one contract.
//
// Code generation runs after type checking: every expression already has
// an entry in the type map, and ill-typed programs have been rejected.
// The generator walks the expressions once, dispatching each list form
// to the word registered for its leading keyword, and emits instructions
// into the current instruction sink.
type WasmGenerator struct {
	config       *Config
	builder      *wasm.ModuleBuilder
	typeMap      types.TypeMap
	literals     map[string]literalRef
	stdlibFuncs  map[string]uint32
	dataVars     map[string]*dataVar
	wordOverride map[string]Word
	locals       []wasm.ValueType
	instructions []wasm.Instruction
}

func NewWasmGenerator(name string, typeMap types.TypeMap) *WasmGenerator {
	return NewWasmGeneratorWithConfig(name, typeMap, &Config{})
}

func NewWasmGeneratorWithConfig(
	name string,
	typeMap types.TypeMap,
	config *Config,
) *WasmGenerator {
	var wordOverride map[string]Word
	if len(config.Words) > 0 {
		wordOverride = make(map[string]Word, len(config.Words))
		for _, word := range config.Words {
			wordOverride[word.Keyword()] = word
		}
	}

	return &WasmGenerator{
		config:       config,
		builder:      wasm.NewModuleBuilder(name),
		typeMap:      typeMap,
		literals:     map[string]literalRef{},
		stdlibFuncs:  map[string]uint32{},
		dataVars:     map[string]*dataVar{},
		wordOverride: wordOverride,
	}
}

// GenerateContract generates the WebAssembly module for the given
// type-annotated program
func GenerateContract(
	name string,
	program []ast.SymbolicExpression,
	typeMap types.TypeMap,
) (*Contract, error) {
	return NewWasmGenerator(name, typeMap).Generate(program)
}

func (gen *WasmGenerator) Generate(program []ast.SymbolicExpression) (*Contract, error) {

	lastExpressionIndex := -1
	for i, expr := range program {
		if !isDefinition(expr) {
			lastExpressionIndex = i
		}
	}

	var resultType types.TypeSignature = types.None
	var resultOffset uint32

	for i, expr := range program {
		if isDefinition(expr) {
			err := gen.generateDefinition(expr.(*ast.List))
			if err != nil {
				return nil, err
			}
			continue
		}

		err := gen.TraverseExpr(expr)
		if err != nil {
			return nil, err
		}

		ty, err := gen.typeOf(expr)
		if err != nil {
			return nil, err
		}

		if i == lastExpressionIndex {
			resultType = ty
			resultOffset = gen.createScratchSlot(types.Size(ty))
			gen.writeToMemory(ty, resultOffset)
		} else {
			for range ReprValueTypes(ty) {
				gen.emit(wasm.InstructionDrop{})
			}
		}
	}

	functionIndex := gen.builder.AddFunction(
		TopLevelFunctionName,
		&wasm.FunctionType{},
		&wasm.Code{
			Locals:       gen.locals,
			Instructions: gen.instructions,
		},
	)
	gen.builder.ExportFunction(gen.config.topLevelExportName(), functionIndex)
	gen.builder.ExportMemory(gen.config.memoryExportName())

	return &Contract{
		Module:       gen.builder.Build(),
		ResultType:   resultType,
		ResultOffset: resultOffset,
		ResultSize:   types.Size(resultType),
	}, nil
}

// TraverseExpr emits the code for one expression,
// leaving the representation of its value on the operand stack
func (gen *WasmGenerator) TraverseExpr(expr ast.SymbolicExpression) error {
	switch expr := expr.(type) {
	case *ast.IntLiteral:
		gen.emitInteger(expr.Value)
		return nil

	case *ast.UIntLiteral:
		gen.emitInteger(expr.Value)
		return nil

	case *ast.BoolLiteral:
		gen.emitBool(expr.Value)
		return nil

	case *ast.BufferLiteral:
		ref := gen.addLiteral(expr.Value)
		gen.emitLiteralRef(ref)
		return nil

	case *ast.StringLiteral:
		var data []byte
		if expr.UTF8 {
			data = encodeUTF8Scalars(expr.Value)
		} else {
			data = []byte(expr.Value)
		}
		ref := gen.addLiteral(data)
		gen.emitLiteralRef(ref)
		return nil

	case *ast.Atom:
		return gen.visitAtom(expr)

	case *ast.List:
		return gen.traverseList(expr)
	}

	return UnknownIdentifierError{Identifier: expr.String()}
}

func (gen *WasmGenerator) visitAtom(atom *ast.Atom) error {
	switch atom.Identifier {
	case "true":
		gen.emitBool(true)
		return nil

	case "false":
		gen.emitBool(false)
		return nil

	case "none":
		// the `none` indicator, with no inner value
		gen.emit(wasm.InstructionI32Const{Value: 0})
		return nil
	}

	return UnknownIdentifierError{Identifier: atom.Identifier}
}

func (gen *WasmGenerator) traverseList(list *ast.List) error {
	if len(list.Elements) == 0 {
		return TypeError{Message: "expected a non-empty list expression"}
	}

	atom, ok := list.Elements[0].(*ast.Atom)
	if !ok {
		return TypeError{Message: "expected a keyword at the head of a list expression"}
	}
	keyword := atom.Identifier

	returnType, err := gen.typeOf(list)
	if err != nil {
		return err
	}

	if word, ok := gen.complexWord(keyword); ok {
		return word.Traverse(gen, list, returnType)
	}

	if word, ok := gen.simpleWord(keyword); ok {
		operands := list.Elements[1:]
		argTypes := make([]types.TypeSignature, len(operands))
		for i, operand := range operands {
			err := gen.TraverseExpr(operand)
			if err != nil {
				return err
			}
			argTypes[i], err = gen.typeOf(operand)
			if err != nil {
				return err
			}
		}
		return word.Visit(gen, list, argTypes, returnType)
	}

	return UnknownWordError{Keyword: keyword}
}

func isDefinition(expr ast.SymbolicExpression) bool {
	list, ok := expr.(*ast.List)
	if !ok || len(list.Elements) == 0 {
		return false
	}
	atom, ok := list.Elements[0].(*ast.Atom)
	return ok && atom.Identifier == "define-data-var"
}

// generateDefinition declares a data variable and emits its initialization:
// (define-data-var name type initial-value)
func (gen *WasmGenerator) generateDefinition(list *ast.List) error {
	const keyword = "define-data-var"

	if len(list.Elements) != 4 {
		return InvalidFormError{
			Keyword: keyword,
			Message: "expected a name, a type, and an initial value",
		}
	}

	nameAtom, ok := list.Elements[1].(*ast.Atom)
	if !ok {
		return InvalidFormError{
			Keyword: keyword,
			Message: "expected a variable name",
		}
	}
	name := nameAtom.Identifier

	initializer := list.Elements[3]
	ty, err := gen.typeOf(initializer)
	if err != nil {
		return err
	}

	nameRef := gen.addLiteral([]byte(name))
	gen.dataVars[name] = &dataVar{
		name:       name,
		nameOffset: nameRef.offset,
		nameLength: nameRef.length,
		typ:        ty,
	}

	err = gen.TraverseExpr(initializer)
	if err != nil {
		return err
	}

	size := types.Size(ty)
	slot := gen.createScratchSlot(size)
	gen.writeToMemory(ty, slot)

	gen.emit(
		wasm.InstructionI32Const{Value: int32(nameRef.offset)},
		wasm.InstructionI32Const{Value: int32(nameRef.length)},
		wasm.InstructionI32Const{Value: int32(slot)},
		wasm.InstructionI32Const{Value: int32(size)},
		wasm.InstructionCall{FuncIndex: gen.stdlibFunc("set_variable")},
	)

	return nil
}

func (gen *WasmGenerator) typeOf(expr ast.SymbolicExpression) (types.TypeSignature, error) {
	ty, ok := gen.typeMap[expr]
	if !ok {
		return nil, MissingTypeError{Expression: expr}
	}
	return ty, nil
}

// Emit appends instructions to the current instruction sink.
// Words configured from outside the package emit through it.
func (gen *WasmGenerator) Emit(instructions ...wasm.Instruction) {
	gen.emit(instructions...)
}

func (gen *WasmGenerator) emit(instructions ...wasm.Instruction) {
	gen.instructions = append(gen.instructions, instructions...)
}

// capture runs f with a fresh instruction sink and returns the
// instructions it emitted, e.g. the body of a nested block
func (gen *WasmGenerator) capture(f func() error) ([]wasm.Instruction, error) {
	saved := gen.instructions
	gen.instructions = nil
	err := f()
	captured := gen.instructions
	gen.instructions = saved
	return captured, err
}

// addLocal declares a new local of the given type in the current function
// and returns its index
func (gen *WasmGenerator) addLocal(valueType wasm.ValueType) uint32 {
	gen.locals = append(gen.locals, valueType)
	// the top-level function has no parameters,
	// so locals are numbered from zero
	return uint32(len(gen.locals) - 1)
}

// addLiteral places the given bytes into the module's data section
// and returns their location. Equal literals share one location.
func (gen *WasmGenerator) addLiteral(data []byte) literalRef {
	key := string(data)
	if ref, ok := gen.literals[key]; ok {
		return ref
	}

	ref := literalRef{
		offset: gen.builder.RequireMemory(uint32(len(data))),
		length: uint32(len(data)),
	}
	gen.builder.AddData(ref.offset, data)
	gen.literals[key] = ref
	return ref
}

// createScratchSlot reserves a region of linear memory of the given size.
// Reservations are never reused: each call returns a fresh offset,
// and the module's total memory is fixed once generation completes.
func (gen *WasmGenerator) createScratchSlot(size uint32) uint32 {
	return gen.builder.RequireMemory(size)
}

func (gen *WasmGenerator) emitLiteralRef(ref literalRef) {
	gen.emit(
		wasm.InstructionI32Const{Value: int32(ref.offset)},
		wasm.InstructionI32Const{Value: int32(ref.length)},
	)
}

func (gen *WasmGenerator) emitBool(value bool) {
	var repr int32
	if value {
		repr = 1
	}
	gen.emit(wasm.InstructionI32Const{Value: repr})
}

// emitInteger pushes the 128-bit two's-complement representation
// of the given integer, low half first
func (gen *WasmGenerator) emitInteger(value *big.Int) {
	low, high := int128Parts(value)
	gen.emit(
		wasm.InstructionI64Const{Value: low},
		wasm.InstructionI64Const{Value: high},
	)
}

var mask128 = new(big.Int).Sub(
	new(big.Int).Lsh(big.NewInt(1), 128),
	big.NewInt(1),
)

var mask64 = new(big.Int).SetUint64(^uint64(0))

// int128Parts splits the given integer into the two 64-bit halves of its
// 128-bit two's-complement representation.
// Bitwise operations on big integers already use two's-complement
// semantics for negative values.
func int128Parts(value *big.Int) (low, high int64) {
	bits := new(big.Int).And(value, mask128)
	low = int64(new(big.Int).And(bits, mask64).Uint64())
	high = int64(new(big.Int).Rsh(bits, 64).Uint64())
	return
}

// encodeUTF8Scalars encodes a string-utf8 value as its in-memory form:
// one big-endian 4-byte unit per Unicode scalar value
func encodeUTF8Scalars(value string) []byte {
	data := make([]byte, 0, len(value)*types.UTF8ScalarSize)
	for _, r := range value {
		data = binary.BigEndian.AppendUint32(data, uint32(r))
	}
	return data
}
