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

package tools

import (
	"fmt"
	"unicode/utf8"

	"github.com/stacks-network/clarwasm/ast"
	"github.com/stacks-network/clarwasm/types"
)

// AnnotationError is a failure to assign a static type to an expression.
type AnnotationError struct {
	Message string
}

var _ error = AnnotationError{}

func (e AnnotationError) Error() string {
	return e.Message
}

func annotationErrorf(message string, args ...any) error {
	return AnnotationError{Message: fmt.Sprintf(message, args...)}
}

// Annotate mechanically assigns a static type to every expression of
// the program, producing the type map the code generator consumes.
//
// This is not a checker: types are propagated bottom-up through the
// known construct forms and literal shapes, and only mismatches that
// would leave a node untyped are reported.
func Annotate(program []ast.SymbolicExpression) (types.TypeMap, error) {
	a := &annotator{
		typeMap:  types.TypeMap{},
		dataVars: map[string]types.TypeSignature{},
	}

	for _, expr := range program {
		if definition, ok := asDefinition(expr); ok {
			err := a.annotateDefinition(definition)
			if err != nil {
				return nil, err
			}
			continue
		}

		_, err := a.annotate(expr)
		if err != nil {
			return nil, err
		}
	}

	return a.typeMap, nil
}

type annotator struct {
	typeMap  types.TypeMap
	dataVars map[string]types.TypeSignature
}

func asDefinition(expr ast.SymbolicExpression) (*ast.List, bool) {
	list, ok := expr.(*ast.List)
	if !ok || len(list.Elements) == 0 {
		return nil, false
	}
	atom, ok := list.Elements[0].(*ast.Atom)
	if !ok || atom.Identifier != "define-data-var" {
		return nil, false
	}
	return list, true
}

func (a *annotator) annotateDefinition(definition *ast.List) error {
	if len(definition.Elements) != 4 {
		return annotationErrorf("define-data-var: expected a name, a type, and an initial value")
	}

	nameAtom, ok := definition.Elements[1].(*ast.Atom)
	if !ok {
		return annotationErrorf("define-data-var: expected a variable name")
	}

	ty, err := ParseTypeSignature(definition.Elements[2])
	if err != nil {
		return err
	}

	// the initial value takes the declared type, so that e.g. a short
	// string literal initializes a wider string variable
	a.typeMap[definition.Elements[3]] = ty
	_, err = a.annotate(definition.Elements[3])
	if err != nil {
		return err
	}

	a.dataVars[nameAtom.Identifier] = ty
	return nil
}

func (a *annotator) annotate(expr ast.SymbolicExpression) (types.TypeSignature, error) {
	// a type assigned from context (a declared variable type, the then
	// branch of an `if`) wins over the inferred one, but the children
	// still have to be visited
	assigned, hasAssigned := a.typeMap[expr]

	inferred, err := a.inferType(expr)
	if err != nil {
		return nil, err
	}

	if hasAssigned {
		return assigned, nil
	}

	a.typeMap[expr] = inferred
	return inferred, nil
}

func (a *annotator) inferType(expr ast.SymbolicExpression) (types.TypeSignature, error) {
	switch expr := expr.(type) {
	case *ast.IntLiteral:
		return types.Int, nil

	case *ast.UIntLiteral:
		return types.UInt, nil

	case *ast.BoolLiteral:
		return types.Bool, nil

	case *ast.BufferLiteral:
		return types.BufferType{MaxLength: uint32(len(expr.Value))}, nil

	case *ast.StringLiteral:
		if expr.UTF8 {
			length := uint32(utf8.RuneCountInString(expr.Value))
			return types.StringUTF8Type{MaxLength: length}, nil
		}
		return types.StringASCIIType{MaxLength: uint32(len(expr.Value))}, nil

	case *ast.Atom:
		return a.inferAtomType(expr)

	case *ast.List:
		return a.inferListType(expr)
	}

	return nil, annotationErrorf("cannot type expression %s", expr)
}

func (a *annotator) inferAtomType(atom *ast.Atom) (types.TypeSignature, error) {
	if atom.Identifier == "none" {
		return types.NewOptionalType(types.None), nil
	}
	return nil, annotationErrorf("cannot type identifier `%s`", atom.Identifier)
}

func (a *annotator) inferListType(list *ast.List) (types.TypeSignature, error) {
	if len(list.Elements) == 0 {
		return nil, annotationErrorf("cannot type an empty list expression")
	}
	atom, ok := list.Elements[0].(*ast.Atom)
	if !ok {
		return nil, annotationErrorf("expected a keyword at the head of a list expression")
	}
	keyword := atom.Identifier
	operands := list.Elements[1:]

	switch keyword {
	case "+", "-", "*", "/", "mod":
		if len(operands) == 0 {
			return nil, annotationErrorf("%s: expected at least one operand", keyword)
		}
		var result types.TypeSignature
		for i, operand := range operands {
			ty, err := a.annotate(operand)
			if err != nil {
				return nil, err
			}
			if i == 0 {
				result = ty
			}
		}
		return result, nil

	case "<", "<=", ">", ">=", "not", "and", "or":
		for _, operand := range operands {
			_, err := a.annotate(operand)
			if err != nil {
				return nil, err
			}
		}
		return types.Bool, nil

	case "buff-to-int-be", "buff-to-int-le":
		return a.annotateConversion(keyword, operands, types.Int)

	case "buff-to-uint-be", "buff-to-uint-le":
		return a.annotateConversion(keyword, operands, types.UInt)

	case "if":
		if len(operands) != 3 {
			return nil, annotationErrorf("if: expected a condition and two branches")
		}
		_, err := a.annotate(operands[0])
		if err != nil {
			return nil, err
		}
		thenType, err := a.annotate(operands[1])
		if err != nil {
			return nil, err
		}
		// the else branch takes the then branch's type, so that
		// e.g. string branches of different lengths agree
		a.typeMap[operands[2]] = thenType
		_, err = a.annotate(operands[2])
		if err != nil {
			return nil, err
		}
		return thenType, nil

	case "get-block-info?":
		return a.annotateBlockQuery(keyword, operands, blockPropertyType)

	case "get-burn-block-info?":
		return a.annotateBlockQuery(keyword, operands, burnBlockPropertyType)

	case "at-block":
		if len(operands) != 2 {
			return nil, annotationErrorf("at-block: expected a block hash and an expression")
		}
		_, err := a.annotate(operands[0])
		if err != nil {
			return nil, err
		}
		return a.annotate(operands[1])

	case "var-get":
		if len(operands) != 1 {
			return nil, annotationErrorf("var-get: expected a variable name")
		}
		return a.dataVarType(operands[0])

	case "var-set":
		if len(operands) != 2 {
			return nil, annotationErrorf("var-set: expected a variable name and a value")
		}
		ty, err := a.dataVarType(operands[0])
		if err != nil {
			return nil, err
		}
		// the value takes the variable's declared type
		a.typeMap[operands[1]] = ty
		_, err = a.annotate(operands[1])
		if err != nil {
			return nil, err
		}
		return types.Bool, nil
	}

	return nil, annotationErrorf("cannot type `%s` expression", keyword)
}

func (a *annotator) annotateConversion(
	keyword string,
	operands []ast.SymbolicExpression,
	result types.TypeSignature,
) (types.TypeSignature, error) {
	if len(operands) != 1 {
		return nil, annotationErrorf("%s: expected one operand", keyword)
	}
	_, err := a.annotate(operands[0])
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (a *annotator) annotateBlockQuery(
	keyword string,
	operands []ast.SymbolicExpression,
	propertyType func(string) (types.TypeSignature, bool),
) (types.TypeSignature, error) {
	if len(operands) != 2 {
		return nil, annotationErrorf("%s: expected a property name and a block height", keyword)
	}
	propertyAtom, ok := operands[0].(*ast.Atom)
	if !ok {
		return nil, annotationErrorf("%s: expected a property name", keyword)
	}
	ty, ok := propertyType(propertyAtom.Identifier)
	if !ok {
		return nil, annotationErrorf(
			"%s: unknown property `%s`",
			keyword,
			propertyAtom.Identifier,
		)
	}
	_, err := a.annotate(operands[1])
	if err != nil {
		return nil, err
	}
	return ty, nil
}

func (a *annotator) dataVarType(nameExpr ast.SymbolicExpression) (types.TypeSignature, error) {
	nameAtom, ok := nameExpr.(*ast.Atom)
	if !ok {
		return nil, annotationErrorf("expected a variable name")
	}
	ty, ok := a.dataVars[nameAtom.Identifier]
	if !ok {
		return nil, annotationErrorf("data variable `%s` is not defined", nameAtom.Identifier)
	}
	return ty, nil
}

func blockPropertyType(property string) (types.TypeSignature, bool) {
	var inner types.TypeSignature
	switch property {
	case "time", "block-reward", "miner-spend-total", "miner-spend-winner":
		inner = types.UInt
	case "header-hash", "burnchain-header-hash", "id-header-hash":
		inner = types.BufferType{MaxLength: 32}
	case "miner-address":
		inner = types.Principal
	default:
		return nil, false
	}
	return types.NewOptionalType(inner), true
}

func burnBlockPropertyType(property string) (types.TypeSignature, bool) {
	var inner types.TypeSignature
	switch property {
	case "header-hash":
		inner = types.BufferType{MaxLength: 32}
	case "pox-addrs":
		inner = types.NewTupleType(
			types.TupleField{
				Name: "addrs",
				Type: types.ListType{
					MaxLength: 2,
					Element: types.NewTupleType(
						types.TupleField{Name: "hashbytes", Type: types.BufferType{MaxLength: 32}},
						types.TupleField{Name: "version", Type: types.BufferType{MaxLength: 1}},
					),
				},
			},
			types.TupleField{Name: "payout", Type: types.UInt},
		)
	default:
		return nil, false
	}
	return types.NewOptionalType(inner), true
}
